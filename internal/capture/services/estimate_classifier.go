package services

import (
	"fmt"

	"github.com/jharden/divflow/internal/capture/domain"
)

const (
	// estimateMatchConfidence applies when a duration phrase matched.
	estimateMatchConfidence = 85

	// estimateFallbackConfidence applies to the word-count heuristic.
	estimateFallbackConfidence = 30

	// learnedEstimateFloor is the minimum confidence for a value taken
	// from learning history.
	learnedEstimateFloor = 80
)

// EstimateClassifier infers effort for actions. Notes and reminders carry
// no estimate.
type EstimateClassifier struct{}

func NewEstimateClassifier() *EstimateClassifier {
	return &EstimateClassifier{}
}

// Infer returns an estimate inference, or the zero value when itemType is
// not an action.
func (c *EstimateClassifier) Infer(text string, itemType domain.ItemType, history []domain.LearningRecord) domain.EstimateInference {
	if itemType != domain.ItemTypeAction {
		return domain.EstimateInference{}
	}

	if m := matchLearnedValue(text, history, domain.LearningKindEstimate, learnedEstimateFloor,
		func(v string) bool { return domain.Estimate(v).IsValid() }); m != nil {
		return domain.EstimateInference{
			Estimate:   domain.Estimate(m.value),
			Confidence: m.confidence,
			Reasoning:  "matches a previous estimate choice",
		}
	}

	lower := normalizeText(text)
	var best *estimateBucket
	bestCount := 0
	for i := range estimateBuckets {
		bucket := &estimateBuckets[i]
		count := 0
		for _, p := range bucket.Patterns {
			if p.FindString(lower) != "" {
				count++
			}
		}
		// Strictly greater, so ties keep the shorter bucket.
		if count > bestCount {
			best = bucket
			bestCount = count
		}
	}
	if best != nil {
		return domain.EstimateInference{
			Estimate:   best.Estimate,
			Confidence: estimateMatchConfidence,
			Reasoning:  "duration phrase matched",
		}
	}

	words := len(contentWords(text))
	var est domain.Estimate
	switch {
	case words < 5:
		est = domain.Estimate15Min
	case words < 15:
		est = domain.Estimate30Min
	default:
		est = domain.Estimate1Hour
	}
	return domain.EstimateInference{
		Estimate:   est,
		Confidence: estimateFallbackConfidence,
		Reasoning:  fmt.Sprintf("word-count heuristic (%d words)", words),
	}
}
