// Package services implements the capture inference pipeline: keyword
// type classification, collection and priority and estimate suggestions,
// and natural-language date extraction.
package services

import (
	"log/slog"
	"time"

	"github.com/jharden/divflow/internal/capture/domain"
)

// confirmedConfidence marks a field the user has explicitly set; the
// engine never overrides it.
const confirmedConfidence = 100

// InferenceEngine runs every classifier against a captured item, filling
// in fields the user has not confirmed.
type InferenceEngine struct {
	types       *TypeClassifier
	collections *CollectionClassifier
	priorities  *PriorityClassifier
	estimates   *EstimateClassifier
	logger      *slog.Logger
	now         func() time.Time
}

func NewInferenceEngine(logger *slog.Logger) *InferenceEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &InferenceEngine{
		types:       NewTypeClassifier(),
		collections: NewCollectionClassifier(),
		priorities:  NewPriorityClassifier(),
		estimates:   NewEstimateClassifier(),
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock fixes the engine's notion of now for date extraction.
func (e *InferenceEngine) WithClock(now func() time.Time) *InferenceEngine {
	e.now = now
	e.types.WithClock(now)
	return e
}

// Process mutates item in place: extracts a due date, classifies the item
// type, and suggests collection, priority, and estimate. Fields already
// confirmed by the user (confidence 100) are left alone.
func (e *InferenceEngine) Process(item *domain.CapturedItem, history domain.LearningHistory) {
	history = history.Truncate()
	now := e.now()

	extracted := ExtractDateTime(item.Text, now)
	if extracted.When != nil && item.DueAt == nil {
		item.DueAt = extracted.When
	}

	itemType := item.InferredType
	if !isConfirmed(item.TypeConfidence) {
		inf := e.types.Infer(item.Text, history.Type)
		item.InferredType = &inf.Type
		item.TypeConfidence = &inf.Confidence
		item.TypeReasoning = &inf.Reasoning
		itemType = &inf.Type
	}

	// Downstream classifiers see the text with temporal noise removed.
	cleaned := extracted.Remaining

	if !isConfirmed(item.CollectionConfidence) {
		if best := e.collections.Best(cleaned, history.Collection); best != nil {
			item.Collection = &best.Collection
			item.CollectionConfidence = &best.Confidence
		}
	}

	if itemType != nil {
		if !isConfirmed(item.PriorityConfidence) {
			if inf := e.priorities.Infer(cleaned, *itemType, history.Priority); inf.Priority != "" {
				item.Priority = &inf.Priority
				item.PriorityConfidence = &inf.Confidence
			}
		}
		if !isConfirmed(item.EstimateConfidence) {
			if inf := e.estimates.Infer(cleaned, *itemType, history.Estimate); inf.Estimate != "" {
				item.Estimate = &inf.Estimate
				item.EstimateConfidence = &inf.Confidence
			}
		}
	}

	e.logger.Debug("inference complete",
		"item_id", item.ID,
		"type", derefType(item.InferredType),
		"due_found", item.DueAt != nil,
	)
}

func isConfirmed(confidence *float64) bool {
	return confidence != nil && *confidence >= confirmedConfidence
}

func derefType(t *domain.ItemType) string {
	if t == nil {
		return ""
	}
	return string(*t)
}
