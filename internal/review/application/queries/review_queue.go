// Package queries contains read-side handlers for the review context.
package queries

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	capture "github.com/jharden/divflow/internal/capture/domain"
	"github.com/jharden/divflow/internal/review/cache"
	"github.com/jharden/divflow/internal/review/services"
)

// ReviewQueueQuery requests the ranked review queue for a user.
type ReviewQueueQuery struct {
	UserID uuid.UUID
	Limit  int
}

// ReviewQueueResult carries the ranked queue and whether it came from cache.
type ReviewQueueResult struct {
	Items     []services.RankedItem
	FromCache bool
}

// ReviewQueueHandler computes the review queue, serving from cache when a
// fresh copy exists and degrading to a direct computation when the cache
// is unavailable.
type ReviewQueueHandler struct {
	items  capture.ItemRepository
	ranker *services.Ranker
	cache  cache.ReviewQueueCache
	logger *slog.Logger
	now    func() time.Time
}

// NewReviewQueueHandler creates a review queue handler.
func NewReviewQueueHandler(
	items capture.ItemRepository,
	ranker *services.Ranker,
	queueCache cache.ReviewQueueCache,
	logger *slog.Logger,
) *ReviewQueueHandler {
	if queueCache == nil {
		queueCache = cache.NoopReviewQueueCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewQueueHandler{
		items:  items,
		ranker: ranker,
		cache:  queueCache,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Used in tests.
func (h *ReviewQueueHandler) WithClock(now func() time.Time) *ReviewQueueHandler {
	h.now = now
	return h
}

// Handle returns the ranked review queue for the user.
func (h *ReviewQueueHandler) Handle(ctx context.Context, query ReviewQueueQuery) (*ReviewQueueResult, error) {
	if query.UserID == uuid.Nil {
		return nil, fmt.Errorf("review queue: user id is required")
	}
	limit := query.Limit
	if limit <= 0 {
		limit = services.DefaultReviewLimit
	}

	if cached, ok, err := h.cache.Get(ctx, query.UserID, limit); err != nil {
		h.logger.Warn("review queue cache unavailable, computing directly",
			"user_id", query.UserID, "error", err)
	} else if ok {
		return &ReviewQueueResult{Items: cached, FromCache: true}, nil
	}

	items, err := h.items.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("list items for review: %w", err)
	}

	ranked := h.ranker.Rank(items, h.now().UTC(), limit)

	if err := h.cache.Set(ctx, query.UserID, limit, ranked); err != nil {
		h.logger.Warn("failed to cache review queue", "user_id", query.UserID, "error", err)
	}

	return &ReviewQueueResult{Items: ranked, FromCache: false}, nil
}
