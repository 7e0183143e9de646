package domain

import (
	"time"

	"github.com/google/uuid"
)

// LearningKind identifies which attribute a learning record corrects.
type LearningKind string

const (
	LearningKindType       LearningKind = "type"
	LearningKindCollection LearningKind = "collection"
	LearningKindPriority   LearningKind = "priority"
	LearningKindEstimate   LearningKind = "estimate"
)

// Window sizes bound how much history each classifier scans. Recent
// corrections dominate; older ones age out of the window.
const (
	TypeHistoryWindow       = 200
	CollectionHistoryWindow = 200
	PriorityHistoryWindow   = 50
	EstimateHistoryWindow   = 50
)

// LearningRecord stores one confirmed or corrected classification.
// Records are append-only and consulted most-recent-first.
type LearningRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Kind       LearningKind
	Pattern    string
	Value      string
	Confidence float64
	CreatedAt  time.Time

	// WasCorrect reports whether the original inference matched the
	// user's correction. Nil means the record predates tracking; such
	// records still count as positive signal.
	WasCorrect *bool

	// IsDefault marks built-in seed patterns shipped with the app.
	IsDefault bool
}

// CountsForScoring reports whether a record contributes to keyword
// scoring: defaults always do, learned records only when not known-wrong.
func (r LearningRecord) CountsForScoring() bool {
	if r.IsDefault {
		return true
	}
	return r.WasCorrect == nil || *r.WasCorrect
}

// LearningHistory is a snapshot of per-kind record windows handed to the
// inference engine. Slices are ordered most-recent-first.
type LearningHistory struct {
	Type       []LearningRecord
	Collection []LearningRecord
	Priority   []LearningRecord
	Estimate   []LearningRecord
}

// WindowFor returns the bounded window size for a learning kind.
func WindowFor(kind LearningKind) int {
	switch kind {
	case LearningKindPriority:
		return PriorityHistoryWindow
	case LearningKindEstimate:
		return EstimateHistoryWindow
	default:
		return TypeHistoryWindow
	}
}

// Truncate bounds each per-kind slice to its window.
func (h LearningHistory) Truncate() LearningHistory {
	return LearningHistory{
		Type:       truncate(h.Type, TypeHistoryWindow),
		Collection: truncate(h.Collection, CollectionHistoryWindow),
		Priority:   truncate(h.Priority, PriorityHistoryWindow),
		Estimate:   truncate(h.Estimate, EstimateHistoryWindow),
	}
}

func truncate(records []LearningRecord, window int) []LearningRecord {
	if len(records) <= window {
		return records
	}
	return records[:window]
}
