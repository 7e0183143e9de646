// Package persistence provides storage implementations for the capture
// context: in-memory for tests and ephemeral use, SQLite for local mode,
// and PostgreSQL for server mode.
package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jharden/divflow/internal/capture/domain"
)

// MemoryItemRepository keeps items in a map. Reads return clones so
// callers cannot mutate stored state.
type MemoryItemRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*domain.CapturedItem
}

func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{items: make(map[uuid.UUID]*domain.CapturedItem)}
}

func (r *MemoryItemRepository) Save(_ context.Context, item domain.CapturedItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item.Clone()
	return nil
}

func (r *MemoryItemRepository) Update(_ context.Context, item domain.CapturedItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	r.items[item.ID] = item.Clone()
	return nil
}

func (r *MemoryItemRepository) FindByID(_ context.Context, userID, id uuid.UUID) (*domain.CapturedItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return nil, domain.ErrItemNotFound
	}
	return item.Clone(), nil
}

func (r *MemoryItemRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.CapturedItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.CapturedItem
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, *item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// MemoryLearningRepository keeps learning records in an append-only slice.
type MemoryLearningRepository struct {
	mu      sync.RWMutex
	records []domain.LearningRecord
}

func NewMemoryLearningRepository() *MemoryLearningRepository {
	return &MemoryLearningRepository{}
}

func (r *MemoryLearningRepository) Append(_ context.Context, record domain.LearningRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *MemoryLearningRepository) ListRecent(_ context.Context, userID uuid.UUID, kind domain.LearningKind, limit int) ([]domain.LearningRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.LearningRecord
	for _, rec := range r.records {
		if rec.UserID == userID && rec.Kind == kind {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
