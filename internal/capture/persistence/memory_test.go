package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jharden/divflow/internal/capture/domain"
)

func TestMemoryItemRepository_SaveAndFind(t *testing.T) {
	repo := NewMemoryItemRepository()
	ctx := context.Background()

	item, err := domain.NewCapturedItem(uuid.New(), "water the plants")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, *item))

	found, err := repo.FindByID(ctx, item.UserID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Text, found.Text)

	// Mutating the returned copy must not affect stored state.
	found.Text = "changed"
	again, err := repo.FindByID(ctx, item.UserID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "water the plants", again.Text)
}

func TestMemoryItemRepository_UserIsolation(t *testing.T) {
	repo := NewMemoryItemRepository()
	ctx := context.Background()

	item, err := domain.NewCapturedItem(uuid.New(), "mine")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, *item))

	_, err = repo.FindByID(ctx, uuid.New(), item.ID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestMemoryItemRepository_UpdateMissing(t *testing.T) {
	repo := NewMemoryItemRepository()

	item, err := domain.NewCapturedItem(uuid.New(), "ghost")
	require.NoError(t, err)

	err = repo.Update(context.Background(), *item)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestMemoryItemRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemoryItemRepository()
	ctx := context.Background()
	userID := uuid.New()

	older, err := domain.NewCapturedItem(userID, "older")
	require.NoError(t, err)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer, err := domain.NewCapturedItem(userID, "newer")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, *older))
	require.NoError(t, repo.Save(ctx, *newer))

	items, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "newer", items[0].Text)
	assert.Equal(t, "older", items[1].Text)
}

func TestMemoryLearningRepository_ListRecent(t *testing.T) {
	repo := NewMemoryLearningRepository()
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		err := repo.Append(ctx, domain.LearningRecord{
			ID:        uuid.New(),
			UserID:    userID,
			Kind:      domain.LearningKindType,
			Pattern:   "p",
			Value:     "note",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	// A different kind and a different user stay out of the result.
	require.NoError(t, repo.Append(ctx, domain.LearningRecord{
		ID: uuid.New(), UserID: userID, Kind: domain.LearningKindPriority,
		CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.Append(ctx, domain.LearningRecord{
		ID: uuid.New(), UserID: uuid.New(), Kind: domain.LearningKindType,
		CreatedAt: time.Now(),
	}))

	records, err := repo.ListRecent(ctx, userID, domain.LearningKindType, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	// Most recent first.
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
	assert.True(t, records[1].CreatedAt.After(records[2].CreatedAt))
}
