// Package services ranks captured items for review, surfacing the ones
// whose classification most needs a human look.
package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	capture "github.com/jharden/divflow/internal/capture/domain"
)

// DefaultReviewLimit is how many items a review session surfaces when the
// caller does not ask for a specific count.
const DefaultReviewLimit = 3

// resolvedConfidence is the threshold above which a field no longer needs
// review.
const resolvedConfidence = 95

// RankedItem is an item selected for review with its computed priority and
// the reasons it surfaced.
type RankedItem struct {
	Item      capture.CapturedItem
	Priority  float64
	Reasoning string
}

// Ranker orders items by how badly their classification needs attention.
type Ranker struct{}

func NewRanker() *Ranker {
	return &Ranker{}
}

// severityCheck contributes a weight when its condition holds. The
// highest-weight finding sets the item's base priority; all findings
// appear in the reasoning.
type severityCheck struct {
	applies func(item capture.CapturedItem) bool
	weight  float64
	reason  func(item capture.CapturedItem) string
}

var severityLadder = []severityCheck{
	{
		applies: func(it capture.CapturedItem) bool {
			return it.InferredType == nil || !it.InferredType.IsValid()
		},
		weight: 1000,
		reason: func(capture.CapturedItem) string { return "Missing or invalid type" },
	},
	{
		applies: func(it capture.CapturedItem) bool {
			return typeApplicable(it) && !validConfidence(it.TypeConfidence) && it.TypeConfidence != nil
		},
		weight: 950,
		reason: func(capture.CapturedItem) string { return "Invalid type confidence" },
	},
	{
		applies: func(it capture.CapturedItem) bool {
			return it.Collection == nil
		},
		weight: 900,
		reason: func(capture.CapturedItem) string { return "Missing collection" },
	},
	{
		applies: func(it capture.CapturedItem) bool {
			return typeApplicable(it) && !resolved(it.TypeConfidence)
		},
		weight: 800,
		reason: func(it capture.CapturedItem) string {
			return fmt.Sprintf("Low type confidence (%.0f%%)", deref(it.TypeConfidence))
		},
	},
	{
		applies: func(it capture.CapturedItem) bool {
			return it.Collection != nil && !validConfidence(it.CollectionConfidence) && it.CollectionConfidence != nil
		},
		weight: 875,
		reason: func(capture.CapturedItem) string { return "Invalid collection confidence" },
	},
	{
		applies: func(it capture.CapturedItem) bool {
			return it.Collection != nil && !resolved(it.CollectionConfidence)
		},
		weight: 750,
		reason: func(it capture.CapturedItem) string {
			return fmt.Sprintf("Low collection confidence (%.0f%%)", deref(it.CollectionConfidence))
		},
	},
	{
		applies: func(it capture.CapturedItem) bool {
			return priorityApplicable(it) && it.Priority == nil
		},
		weight: 700,
		reason: func(capture.CapturedItem) string { return "Missing priority" },
	},
	{
		applies: func(it capture.CapturedItem) bool {
			return priorityApplicable(it) && it.Priority != nil &&
				!validConfidence(it.PriorityConfidence) && it.PriorityConfidence != nil
		},
		weight: 650,
		reason: func(capture.CapturedItem) string { return "Invalid priority confidence" },
	},
	{
		applies: func(it capture.CapturedItem) bool {
			return priorityApplicable(it) && it.Priority != nil && !resolved(it.PriorityConfidence)
		},
		weight: 600,
		reason: func(it capture.CapturedItem) string {
			return fmt.Sprintf("Low priority confidence (%.0f%%)", deref(it.PriorityConfidence))
		},
	},
	{
		applies: func(it capture.CapturedItem) bool {
			return estimateApplicable(it) && it.Estimate == nil
		},
		weight: 500,
		reason: func(capture.CapturedItem) string { return "Missing estimate" },
	},
	{
		applies: func(it capture.CapturedItem) bool {
			return estimateApplicable(it) && it.Estimate != nil &&
				!validConfidence(it.EstimateConfidence) && it.EstimateConfidence != nil
		},
		weight: 450,
		reason: func(capture.CapturedItem) string { return "Invalid estimate confidence" },
	},
	{
		applies: func(it capture.CapturedItem) bool {
			return estimateApplicable(it) && it.Estimate != nil && !resolved(it.EstimateConfidence)
		},
		weight: 400,
		reason: func(it capture.CapturedItem) string {
			return fmt.Sprintf("Low estimate confidence (%.0f%%)", deref(it.EstimateConfidence))
		},
	},
}

// Rank selects up to limit items most in need of review. Already-reviewed
// and fully-resolved items are skipped. Older unreviewed items outrank
// newer ones at the same severity.
func (r *Ranker) Rank(items []capture.CapturedItem, now time.Time, limit int) []RankedItem {
	if limit <= 0 {
		limit = DefaultReviewLimit
	}

	var ranked []RankedItem
	for _, item := range items {
		if item.LastReviewedAt != nil && fullyResolved(item) {
			continue
		}

		var priority float64
		var reasons []string
		for _, check := range severityLadder {
			if !check.applies(item) {
				continue
			}
			if check.weight > priority {
				priority = check.weight
			}
			reasons = append(reasons, check.reason(item))
		}
		if priority == 0 {
			continue
		}

		priority += now.Sub(ageReference(item)).Hours()

		ranked = append(ranked, RankedItem{
			Item:      item,
			Priority:  priority,
			Reasoning: strings.Join(reasons, "; "),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Priority != ranked[j].Priority {
			return ranked[i].Priority > ranked[j].Priority
		}
		return ageReference(ranked[i].Item).Before(ageReference(ranked[j].Item))
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func fullyResolved(it capture.CapturedItem) bool {
	if it.InferredType == nil || !it.InferredType.IsValid() {
		return false
	}
	if typeApplicable(it) && !resolved(it.TypeConfidence) {
		return false
	}
	if it.Collection == nil || !resolved(it.CollectionConfidence) {
		return false
	}
	if priorityApplicable(it) && (it.Priority == nil || !resolved(it.PriorityConfidence)) {
		return false
	}
	if estimateApplicable(it) && (it.Estimate == nil || !resolved(it.EstimateConfidence)) {
		return false
	}
	return true
}

func resolved(confidence *float64) bool {
	return validConfidence(confidence) && *confidence >= resolvedConfidence
}

// validConfidence reports whether a confidence pointer holds a usable
// value in [0, 100].
func validConfidence(confidence *float64) bool {
	if confidence == nil {
		return false
	}
	v := *confidence
	return !math.IsNaN(v) && v >= 0 && v <= 100
}

func typeApplicable(it capture.CapturedItem) bool {
	return it.InferredType != nil && it.InferredType.IsValid()
}

func priorityApplicable(it capture.CapturedItem) bool {
	return it.InferredType != nil &&
		(*it.InferredType == capture.ItemTypeAction || *it.InferredType == capture.ItemTypeReminder)
}

func estimateApplicable(it capture.CapturedItem) bool {
	return it.InferredType != nil && *it.InferredType == capture.ItemTypeAction
}

func ageReference(it capture.CapturedItem) time.Time {
	if it.LastReviewedAt != nil {
		return *it.LastReviewedAt
	}
	return it.CreatedAt
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
