package subscribers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	capture "github.com/jharden/divflow/internal/capture/domain"
	"github.com/jharden/divflow/internal/review/services"
	"github.com/jharden/divflow/internal/shared/infrastructure/eventbus"
)

type recordingCache struct {
	invalidated []uuid.UUID
	err         error
}

func (c *recordingCache) Get(context.Context, uuid.UUID, int) ([]services.RankedItem, bool, error) {
	return nil, false, nil
}

func (c *recordingCache) Set(context.Context, uuid.UUID, int, []services.RankedItem) error {
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	if c.err != nil {
		return c.err
	}
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func TestCacheInvalidator_InvalidatesOnEvents(t *testing.T) {
	cache := &recordingCache{}
	sub := NewCacheInvalidator(cache, nil)
	userID := uuid.New()

	for _, key := range sub.RoutingKeys() {
		err := sub.Handle(context.Background(), &eventbus.Envelope{
			EventID:    uuid.New(),
			RoutingKey: key,
			UserID:     userID,
		})
		require.NoError(t, err)
	}

	assert.Equal(t, []uuid.UUID{userID, userID, userID}, cache.invalidated)
}

func TestCacheInvalidator_SkipsEventsWithoutUser(t *testing.T) {
	cache := &recordingCache{}
	sub := NewCacheInvalidator(cache, nil)

	err := sub.Handle(context.Background(), &eventbus.Envelope{
		EventID:    uuid.New(),
		RoutingKey: capture.RoutingKeyItemCaptured,
	})
	require.NoError(t, err)
	assert.Empty(t, cache.invalidated)
}

func TestCacheInvalidator_PropagatesCacheErrors(t *testing.T) {
	cache := &recordingCache{err: errors.New("redis down")}
	sub := NewCacheInvalidator(cache, nil)

	err := sub.Handle(context.Background(), &eventbus.Envelope{
		EventID:    uuid.New(),
		RoutingKey: capture.RoutingKeyItemConfirmed,
		UserID:     uuid.New(),
	})
	require.Error(t, err)
}
