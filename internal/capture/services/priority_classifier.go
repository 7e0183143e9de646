package services

import (
	"math"
	"sort"

	"github.com/jharden/divflow/internal/capture/domain"
)

const (
	// urgencyMatchConfidence applies when one urgency direction clearly
	// outmatches the other.
	urgencyMatchConfidence = 85

	// urgencyTieConfidence applies when both directions matched equally.
	urgencyTieConfidence = 60

	// urgencyDefaultConfidence applies when no urgency language matched
	// at all.
	urgencyDefaultConfidence = 40

	// learnedPriorityFloor is the minimum confidence for a value taken
	// from learning history.
	learnedPriorityFloor = 80
)

// PriorityClassifier infers urgency for actions and reminders. Notes have
// no priority.
type PriorityClassifier struct{}

func NewPriorityClassifier() *PriorityClassifier {
	return &PriorityClassifier{}
}

// Infer returns a priority inference, or the zero value when itemType does
// not carry priority.
func (c *PriorityClassifier) Infer(text string, itemType domain.ItemType, history []domain.LearningRecord) domain.PriorityInference {
	if itemType != domain.ItemTypeAction && itemType != domain.ItemTypeReminder {
		return domain.PriorityInference{}
	}

	if m := matchLearnedValue(text, history, domain.LearningKindPriority, learnedPriorityFloor,
		func(v string) bool { return domain.Priority(v).IsValid() }); m != nil {
		return domain.PriorityInference{
			Priority:   domain.Priority(m.value),
			Confidence: m.confidence,
			Reasoning:  "matches a previous priority choice",
		}
	}

	high := scoreUrgency(text, highUrgencyPatterns)
	low := scoreUrgency(text, lowUrgencyPatterns)

	switch {
	case high > low:
		return domain.PriorityInference{
			Priority:   domain.PriorityHigh,
			Confidence: urgencyMatchConfidence,
			Reasoning:  "high-urgency language",
		}
	case low > high:
		return domain.PriorityInference{
			Priority:   domain.PriorityLow,
			Confidence: urgencyMatchConfidence,
			Reasoning:  "low-urgency language",
		}
	case high == 0:
		return domain.PriorityInference{
			Priority:   domain.PriorityMedium,
			Confidence: urgencyDefaultConfidence,
			Reasoning:  "no urgency signal",
		}
	default:
		return domain.PriorityInference{
			Priority:   domain.PriorityMedium,
			Confidence: urgencyTieConfidence,
			Reasoning:  "mixed urgency signals",
		}
	}
}

// scoreUrgency counts how many distinct patterns match; each pattern
// contributes at most once no matter how often its phrase repeats.
func scoreUrgency(text string, patterns []urgencyPattern) int {
	lower := normalizeText(text)
	count := 0
	for _, p := range patterns {
		if p.Pattern.FindString(lower) != "" {
			count++
		}
	}
	return count
}

type learnedMatch struct {
	value      string
	confidence float64
}

// matchLearnedValue finds the most recent usable history record whose
// pattern shares enough content words with the text, using the same
// overlap rule as collection matching.
func matchLearnedValue(text string, history []domain.LearningRecord, kind domain.LearningKind, floor float64, validValue func(string) bool) *learnedMatch {
	words := wordSet(contentWords(text))
	if len(words) == 0 {
		return nil
	}

	recent := make([]domain.LearningRecord, 0, len(history))
	for _, rec := range history {
		if rec.Kind != kind || !rec.CountsForScoring() {
			continue
		}
		recent = append(recent, rec)
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})

	for _, rec := range recent {
		if !validValue(rec.Value) {
			continue
		}
		patternWords := contentWords(rec.Pattern)
		if len(patternWords) == 0 {
			continue
		}
		matched := 0
		for _, w := range patternWords {
			if words[w] {
				matched++
			}
		}
		if matched < minInt(collectionMinMatches, len(patternWords)) {
			continue
		}
		confidence := math.Min(100, math.Max(floor, 65+rec.Confidence/3))
		return &learnedMatch{value: rec.Value, confidence: confidence}
	}
	return nil
}
