package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyText    = errors.New("captured text cannot be empty")
	ErrItemNotFound = errors.New("captured item not found")
)

// ItemType is the primary classification of a captured item.
type ItemType string

const (
	ItemTypeNote     ItemType = "note"
	ItemTypeAction   ItemType = "action"
	ItemTypeReminder ItemType = "reminder"
)

// IsValid returns true for one of the three known item types.
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeNote, ItemTypeAction, ItemTypeReminder:
		return true
	}
	return false
}

// Priority represents item urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid returns true for a known priority value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Estimate is an effort bucket. The first six buckets are inferable from
// text patterns; the larger two are only ever set by the user.
type Estimate string

const (
	Estimate5Min   Estimate = "5min"
	Estimate15Min  Estimate = "15min"
	Estimate30Min  Estimate = "30min"
	Estimate1Hour  Estimate = "1hour"
	Estimate2Hours Estimate = "2hours"
	EstimateDay    Estimate = "day"
	Estimate4Hours Estimate = "4hours"
	EstimateWeek   Estimate = "week"
)

// IsValid returns true for a known estimate bucket.
func (e Estimate) IsValid() bool {
	switch e {
	case Estimate5Min, Estimate15Min, Estimate30Min, Estimate1Hour,
		Estimate2Hours, Estimate4Hours, EstimateDay, EstimateWeek:
		return true
	}
	return false
}

// CapturedItem is a single piece of user-entered free text plus its
// inferred or confirmed attributes. Inferred fields are nil until a
// classifier runs; confidence 100 means user-confirmed.
type CapturedItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time

	InferredType   *ItemType
	TypeConfidence *float64
	TypeReasoning  *string

	Collection           *string
	CollectionConfidence *float64

	Priority           *Priority
	PriorityConfidence *float64

	Estimate           *Estimate
	EstimateConfidence *float64

	DueAt          *time.Time
	LastReviewedAt *time.Time

	Context string
	Tags    []string
}

// NewCapturedItem creates an item with empty inferred fields.
func NewCapturedItem(userID uuid.UUID, text string) (*CapturedItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	now := time.Now().UTC()
	return &CapturedItem{
		ID:        uuid.New(),
		UserID:    userID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Clone returns a deep copy so callers can hand snapshots to the
// inference engine without aliasing a stored item.
func (i *CapturedItem) Clone() *CapturedItem {
	out := *i
	out.InferredType = clonePtr(i.InferredType)
	out.TypeConfidence = clonePtr(i.TypeConfidence)
	out.TypeReasoning = clonePtr(i.TypeReasoning)
	out.Collection = clonePtr(i.Collection)
	out.CollectionConfidence = clonePtr(i.CollectionConfidence)
	out.Priority = clonePtr(i.Priority)
	out.PriorityConfidence = clonePtr(i.PriorityConfidence)
	out.Estimate = clonePtr(i.Estimate)
	out.EstimateConfidence = clonePtr(i.EstimateConfidence)
	out.DueAt = clonePtr(i.DueAt)
	out.LastReviewedAt = clonePtr(i.LastReviewedAt)
	if i.Tags != nil {
		out.Tags = append([]string(nil), i.Tags...)
	}
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
