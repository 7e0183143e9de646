package domain

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository handles persistence for captured items.
type ItemRepository interface {
	Save(ctx context.Context, item CapturedItem) error
	Update(ctx context.Context, item CapturedItem) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*CapturedItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]CapturedItem, error)
}

// LearningRepository handles persistence for learning records.
type LearningRepository interface {
	Append(ctx context.Context, record LearningRecord) error
	// ListRecent returns up to limit records of the given kind,
	// most-recent-first.
	ListRecent(ctx context.Context, userID uuid.UUID, kind LearningKind, limit int) ([]LearningRecord, error)
}
