// Package subscribers reacts to capture events on behalf of the review context.
package subscribers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	capture "github.com/jharden/divflow/internal/capture/domain"
	"github.com/jharden/divflow/internal/review/cache"
	"github.com/jharden/divflow/internal/shared/infrastructure/eventbus"
)

// CacheInvalidator drops a user's cached review queue whenever an item
// changes, so the next review call sees the change instead of waiting
// out the TTL.
type CacheInvalidator struct {
	cache  cache.ReviewQueueCache
	logger *slog.Logger
}

// NewCacheInvalidator creates the invalidation subscriber.
func NewCacheInvalidator(queueCache cache.ReviewQueueCache, logger *slog.Logger) *CacheInvalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheInvalidator{cache: queueCache, logger: logger}
}

// RoutingKeys implements eventbus.Handler.
func (s *CacheInvalidator) RoutingKeys() []string {
	return []string{
		capture.RoutingKeyItemCaptured,
		capture.RoutingKeyItemConfirmed,
		capture.RoutingKeyItemReclassified,
	}
}

// Handle implements eventbus.Handler.
func (s *CacheInvalidator) Handle(ctx context.Context, env *eventbus.Envelope) error {
	if env.UserID == uuid.Nil {
		s.logger.Warn("event without user, skipping cache invalidation",
			"routing_key", env.RoutingKey)
		return nil
	}
	if err := s.cache.Invalidate(ctx, env.UserID); err != nil {
		return fmt.Errorf("invalidate review cache: %w", err)
	}
	return nil
}
