package queries

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	capture "github.com/jharden/divflow/internal/capture/domain"
	"github.com/jharden/divflow/internal/capture/persistence"
	"github.com/jharden/divflow/internal/review/services"
)

var queueNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

// fakeQueueCache records cache traffic and can be forced to fail.
type fakeQueueCache struct {
	entries map[string][]services.RankedItem
	getErr  error
	setErr  error
	sets    int
}

func newFakeQueueCache() *fakeQueueCache {
	return &fakeQueueCache{entries: make(map[string][]services.RankedItem)}
}

func cacheKey(userID uuid.UUID, limit int) string {
	return fmt.Sprintf("%s:%d", userID, limit)
}

func (c *fakeQueueCache) Get(_ context.Context, userID uuid.UUID, limit int) ([]services.RankedItem, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	items, ok := c.entries[cacheKey(userID, limit)]
	return items, ok, nil
}

func (c *fakeQueueCache) Set(_ context.Context, userID uuid.UUID, limit int, items []services.RankedItem) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.sets++
	c.entries[cacheKey(userID, limit)] = items
	return nil
}

func (c *fakeQueueCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	for k := range c.entries {
		if len(k) > len(userID.String()) && k[:len(userID.String())] == userID.String() {
			delete(c.entries, k)
		}
	}
	return nil
}

func unclassifiedItem(userID uuid.UUID, age time.Duration) capture.CapturedItem {
	return capture.CapturedItem{
		ID:        uuid.New(),
		UserID:    userID,
		Text:      "scribbled in a hurry",
		CreatedAt: queueNow.Add(-age),
		UpdatedAt: queueNow.Add(-age),
	}
}

func TestReviewQueueHandler_ComputesAndCaches(t *testing.T) {
	userID := uuid.New()
	repo := persistence.NewMemoryItemRepository()
	require.NoError(t, repo.Save(context.Background(), unclassifiedItem(userID, 2*time.Hour)))
	require.NoError(t, repo.Save(context.Background(), unclassifiedItem(userID, time.Hour)))

	qc := newFakeQueueCache()
	handler := NewReviewQueueHandler(repo, services.NewRanker(), qc, nil).
		WithClock(func() time.Time { return queueNow })

	result, err := handler.Handle(context.Background(), ReviewQueueQuery{UserID: userID, Limit: 5})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, 1, qc.sets)

	// Second call served from cache without recomputation.
	result, err = handler.Handle(context.Background(), ReviewQueueQuery{UserID: userID, Limit: 5})
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, 1, qc.sets)
}

func TestReviewQueueHandler_DefaultLimit(t *testing.T) {
	userID := uuid.New()
	repo := persistence.NewMemoryItemRepository()
	for i := 0; i < 6; i++ {
		require.NoError(t, repo.Save(context.Background(), unclassifiedItem(userID, time.Duration(i)*time.Hour)))
	}

	handler := NewReviewQueueHandler(repo, services.NewRanker(), newFakeQueueCache(), nil).
		WithClock(func() time.Time { return queueNow })

	result, err := handler.Handle(context.Background(), ReviewQueueQuery{UserID: userID})
	require.NoError(t, err)
	assert.Len(t, result.Items, services.DefaultReviewLimit)
}

func TestReviewQueueHandler_DegradesWhenCacheFails(t *testing.T) {
	userID := uuid.New()
	repo := persistence.NewMemoryItemRepository()
	require.NoError(t, repo.Save(context.Background(), unclassifiedItem(userID, time.Hour)))

	qc := newFakeQueueCache()
	qc.getErr = errors.New("redis: connection refused")
	qc.setErr = errors.New("redis: connection refused")

	handler := NewReviewQueueHandler(repo, services.NewRanker(), qc, nil).
		WithClock(func() time.Time { return queueNow })

	result, err := handler.Handle(context.Background(), ReviewQueueQuery{UserID: userID, Limit: 3})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, result.Items, 1)
}

func TestReviewQueueHandler_NilCacheMeansNoop(t *testing.T) {
	userID := uuid.New()
	repo := persistence.NewMemoryItemRepository()
	require.NoError(t, repo.Save(context.Background(), unclassifiedItem(userID, time.Hour)))

	handler := NewReviewQueueHandler(repo, services.NewRanker(), nil, nil).
		WithClock(func() time.Time { return queueNow })

	result, err := handler.Handle(context.Background(), ReviewQueueQuery{UserID: userID, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
}

func TestReviewQueueHandler_RequiresUser(t *testing.T) {
	handler := NewReviewQueueHandler(persistence.NewMemoryItemRepository(), services.NewRanker(), nil, nil)

	_, err := handler.Handle(context.Background(), ReviewQueueQuery{})
	require.Error(t, err)
}
