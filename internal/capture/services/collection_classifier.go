package services

import (
	"math"
	"sort"
	"strings"

	"github.com/jharden/divflow/internal/capture/domain"
)

const (
	// collectionMinWordLen filters out short glue words when matching
	// pattern words against the text.
	collectionMinWordLen = 3

	// collectionMinMatches is how many pattern words must appear in the
	// text, capped at the pattern's own word count.
	collectionMinMatches = 2

	// relevantCollectionConfidence is the threshold for a suggestion to
	// count as relevant on its own.
	relevantCollectionConfidence = 70
)

// CollectionClassifier suggests collections by overlapping the words of
// prior collection assignments with the words of new text. It has no
// built-in seeds; without history it suggests nothing.
type CollectionClassifier struct{}

func NewCollectionClassifier() *CollectionClassifier {
	return &CollectionClassifier{}
}

// Infer returns collection suggestions sorted by descending confidence.
// Each collection appears at most once, keeping its best-scoring record.
func (c *CollectionClassifier) Infer(text string, history []domain.LearningRecord) []domain.CollectionInference {
	words := wordSet(contentWords(text))
	if len(words) == 0 {
		return nil
	}

	best := map[string]domain.CollectionInference{}
	for _, rec := range history {
		if rec.Kind != domain.LearningKindCollection || !rec.CountsForScoring() {
			continue
		}
		patternWords := contentWords(rec.Pattern)
		if len(patternWords) == 0 {
			continue
		}

		var matched []string
		for _, w := range patternWords {
			if words[w] {
				matched = append(matched, w)
			}
		}
		needed := minInt(collectionMinMatches, len(patternWords))
		if len(matched) < needed {
			continue
		}

		confidence := math.Min(100, 65+rec.Confidence/3)
		prev, ok := best[rec.Value]
		if ok && prev.Confidence >= confidence {
			continue
		}
		best[rec.Value] = domain.CollectionInference{
			Collection:   rec.Value,
			Confidence:   confidence,
			MatchedWords: matched,
		}
	}

	if len(best) == 0 {
		return nil
	}
	out := make([]domain.CollectionInference, 0, len(best))
	for _, inf := range best {
		out = append(out, inf)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return strings.Compare(out[i].Collection, out[j].Collection) < 0
	})
	return out
}

// Relevant returns suggestions at or above the relevance threshold. When
// none qualify but suggestions exist, the single best one is returned so
// the caller always has something to offer.
func (c *CollectionClassifier) Relevant(text string, history []domain.LearningRecord) []domain.CollectionInference {
	all := c.Infer(text, history)
	if len(all) == 0 {
		return nil
	}
	var relevant []domain.CollectionInference
	for _, inf := range all {
		if inf.Confidence >= relevantCollectionConfidence {
			relevant = append(relevant, inf)
		}
	}
	if len(relevant) == 0 {
		return all[:1]
	}
	return relevant
}

// Best returns the top suggestion, or nil when nothing matched.
func (c *CollectionClassifier) Best(text string, history []domain.LearningRecord) *domain.CollectionInference {
	all := c.Infer(text, history)
	if len(all) == 0 {
		return nil
	}
	return &all[0]
}
