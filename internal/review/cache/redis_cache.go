// Package cache provides a Redis-backed cache for ranked review queues.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/jharden/divflow/internal/review/services"
)

// DefaultTTL bounds how stale a cached review queue can get.
const DefaultTTL = 60 * time.Second

// ReviewQueueCache stores computed review queues keyed by user.
type ReviewQueueCache interface {
	Get(ctx context.Context, userID uuid.UUID, limit int) ([]services.RankedItem, bool, error)
	Set(ctx context.Context, userID uuid.UUID, limit int, items []services.RankedItem) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// RedisCacheConfig configures the Redis review queue cache.
type RedisCacheConfig struct {
	// TTL is how long a cached queue stays valid. Zero means DefaultTTL.
	TTL time.Duration

	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	Interval time.Duration

	// Timeout is the period of the open state.
	Timeout time.Duration

	// FailureThreshold trips the breaker after this many consecutive failures.
	FailureThreshold uint32
}

// DefaultRedisCacheConfig returns a sensible default configuration.
func DefaultRedisCacheConfig() RedisCacheConfig {
	return RedisCacheConfig{
		TTL:              DefaultTTL,
		MaxRequests:      3,
		Interval:         10 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// RedisReviewQueueCache caches ranked review queues in Redis behind a
// circuit breaker, so a flaky Redis never takes queue computation down
// with it.
type RedisReviewQueueCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	config  RedisCacheConfig
	logger  *slog.Logger
}

// NewRedisReviewQueueCache creates a Redis-backed review queue cache.
func NewRedisReviewQueueCache(client *redis.Client, config RedisCacheConfig, logger *slog.Logger) *RedisReviewQueueCache {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	return &RedisReviewQueueCache{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](breakerSettings(config, logger)),
		config:  config,
		logger:  logger,
	}
}

// breakerSettings builds the circuit breaker settings. A cache miss is a
// healthy Redis answering "not here": only real errors count as failures,
// so an empty cache can never trip the breaker.
func breakerSettings(config RedisCacheConfig, logger *slog.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "review-queue-cache",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
}

// queueKey namespaces cached queues per user and limit:
// divflow:review:{user_id}:limit:{n}
func queueKey(userID uuid.UUID, limit int) string {
	return fmt.Sprintf("divflow:review:%s:limit:%d", userID, limit)
}

func queuePattern(userID uuid.UUID) string {
	return fmt.Sprintf("divflow:review:%s:limit:*", userID)
}

// Get returns the cached queue for a user, reporting whether it was present.
func (c *RedisReviewQueueCache) Get(ctx context.Context, userID uuid.UUID, limit int) ([]services.RankedItem, bool, error) {
	payload, err := c.breaker.Execute(func() ([]byte, error) {
		return c.client.Get(ctx, queueKey(userID, limit)).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("review queue cache get: %w", err)
	}

	var items []services.RankedItem
	if err := json.Unmarshal(payload, &items); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		c.logger.Warn("discarding undecodable cached review queue", "user_id", userID, "error", err)
		return nil, false, nil
	}
	return items, true, nil
}

// Set stores a computed queue with the configured TTL.
func (c *RedisReviewQueueCache) Set(ctx context.Context, userID uuid.UUID, limit int, items []services.RankedItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode review queue: %w", err)
	}
	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, queueKey(userID, limit), payload, c.config.TTL).Err()
	})
	if err != nil {
		return fmt.Errorf("review queue cache set: %w", err)
	}
	return nil
}

// Invalidate drops every cached queue for a user. Called after a
// confirmation or reclassification changes what review should surface.
func (c *RedisReviewQueueCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		iter := c.client.Scan(ctx, 0, queuePattern(userID), 0).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				return nil, err
			}
		}
		return nil, iter.Err()
	})
	if err != nil {
		return fmt.Errorf("review queue cache invalidate: %w", err)
	}
	return nil
}

// NoopReviewQueueCache always misses. Used when Redis is not configured.
type NoopReviewQueueCache struct{}

func (NoopReviewQueueCache) Get(context.Context, uuid.UUID, int) ([]services.RankedItem, bool, error) {
	return nil, false, nil
}

func (NoopReviewQueueCache) Set(context.Context, uuid.UUID, int, []services.RankedItem) error {
	return nil
}

func (NoopReviewQueueCache) Invalidate(context.Context, uuid.UUID) error {
	return nil
}
