// Package app wires the application's dependencies.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	captureCommands "github.com/jharden/divflow/internal/capture/application/commands"
	captureQueries "github.com/jharden/divflow/internal/capture/application/queries"
	"github.com/jharden/divflow/internal/capture/application/subscribers"
	"github.com/jharden/divflow/internal/capture/domain"
	capturePersistence "github.com/jharden/divflow/internal/capture/persistence"
	captureServices "github.com/jharden/divflow/internal/capture/services"
	reviewQueries "github.com/jharden/divflow/internal/review/application/queries"
	reviewSubscribers "github.com/jharden/divflow/internal/review/application/subscribers"
	reviewCache "github.com/jharden/divflow/internal/review/cache"
	reviewServices "github.com/jharden/divflow/internal/review/services"
	sharedApplication "github.com/jharden/divflow/internal/shared/application"
	"github.com/jharden/divflow/internal/shared/infrastructure/database"
	"github.com/jharden/divflow/internal/shared/infrastructure/eventbus"
	"github.com/jharden/divflow/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/jharden/divflow/internal/shared/infrastructure/persistence"
	"github.com/jharden/divflow/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	Pool     *pgxpool.Pool
	SQLiteDB *sql.DB

	// Redis
	RedisClient *redis.Client

	// Repositories
	ItemRepo     domain.ItemRepository
	LearningRepo domain.LearningRepository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Events
	EventPublisher eventbus.Publisher
	InProcessBus   *eventbus.InProcessBus

	// Inference
	Engine *captureServices.InferenceEngine

	// Capture command handlers
	CaptureItemHandler    *captureCommands.CaptureItemHandler
	ConfirmItemHandler    *captureCommands.ConfirmItemHandler
	ReclassifyItemHandler *captureCommands.ReclassifyItemHandler

	// Capture query handlers
	ListItemsHandler *captureQueries.ListItemsHandler
	GetItemHandler   *captureQueries.GetItemHandler

	// Review
	ReviewQueueCache   reviewCache.ReviewQueueCache
	ReviewQueueHandler *reviewQueries.ReviewQueueHandler
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.setupStorage(ctx); err != nil {
		return nil, err
	}
	c.setupRedis(ctx)
	c.setupEvents()

	c.Engine = captureServices.NewInferenceEngine(logger)

	c.CaptureItemHandler = captureCommands.NewCaptureItemHandler(
		c.ItemRepo, c.LearningRepo, c.Engine, c.UnitOfWork, c.EventPublisher, logger)
	c.ConfirmItemHandler = captureCommands.NewConfirmItemHandler(
		c.ItemRepo, c.LearningRepo, c.UnitOfWork, c.EventPublisher, logger)
	c.ReclassifyItemHandler = captureCommands.NewReclassifyItemHandler(
		c.ItemRepo, c.LearningRepo, c.Engine, c.UnitOfWork, c.EventPublisher, logger)

	c.ListItemsHandler = captureQueries.NewListItemsHandler(c.ItemRepo)
	c.GetItemHandler = captureQueries.NewGetItemHandler(c.ItemRepo)

	c.ReviewQueueHandler = reviewQueries.NewReviewQueueHandler(
		c.ItemRepo, reviewServices.NewRanker(), c.ReviewQueueCache, logger)

	// Without a broker, confirmations propagate in-process and the
	// review cache is invalidated on every change.
	if c.InProcessBus != nil {
		c.InProcessBus.Register(subscribers.NewLearningPropagator(
			c.ItemRepo, c.ReclassifyItemHandler, logger))
		c.InProcessBus.Register(reviewSubscribers.NewCacheInvalidator(
			c.ReviewQueueCache, logger))
	}

	return c, nil
}

// setupStorage opens the configured database and binds the repositories
// and unit of work to it.
func (c *Container) setupStorage(ctx context.Context) error {
	switch c.Config.DatabaseDriver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, c.Config.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		c.Pool = pool
		c.ItemRepo = capturePersistence.NewPostgresItemRepository(pool)
		c.LearningRepo = capturePersistence.NewPostgresLearningRepository(pool)
		c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)
		c.Logger.Info("connected to postgres")

	case config.DriverMemory:
		c.ItemRepo = capturePersistence.NewMemoryItemRepository()
		c.LearningRepo = capturePersistence.NewMemoryLearningRepository()
		c.UnitOfWork = sharedApplication.NoopUnitOfWork{}
		c.Logger.Info("using in-memory storage")

	default: // sqlite
		db, err := database.OpenSQLite(ctx, c.Config.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		if err := migrations.RunSQLite(ctx, db); err != nil {
			db.Close()
			return fmt.Errorf("run migrations: %w", err)
		}
		c.SQLiteDB = db
		c.ItemRepo = capturePersistence.NewSQLiteItemRepository(db)
		c.LearningRepo = capturePersistence.NewSQLiteLearningRepository(db)
		c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)
		c.Logger.Info("opened sqlite database", "path", c.Config.SQLitePath)
	}
	return nil
}

// setupRedis connects to Redis when configured. Redis is never required:
// without it the review queue is computed on every call.
func (c *Container) setupRedis(ctx context.Context) {
	c.ReviewQueueCache = reviewCache.NoopReviewQueueCache{}
	if c.Config.RedisURL == "" {
		return
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		c.Logger.Warn("invalid Redis URL, review queue cache disabled", "error", err)
		return
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		c.Logger.Warn("Redis not available, review queue cache disabled", "error", err)
		client.Close()
		return
	}

	c.RedisClient = client
	cacheCfg := reviewCache.DefaultRedisCacheConfig()
	cacheCfg.TTL = c.Config.ReviewCacheTTL
	c.ReviewQueueCache = reviewCache.NewRedisReviewQueueCache(client, cacheCfg, c.Logger)
	c.Logger.Info("connected to Redis")
}

// setupEvents picks the event publisher. RabbitMQ when enabled and
// configured, an in-process bus when enabled without a broker, and a
// noop publisher otherwise.
func (c *Container) setupEvents() {
	if !c.Config.EventsEnabled {
		c.EventPublisher = eventbus.NoopPublisher{}
		return
	}

	if c.Config.RabbitMQURL == "" {
		c.InProcessBus = eventbus.NewInProcessBus(c.Logger)
		c.EventPublisher = c.InProcessBus
		c.Logger.Info("using in-process event bus")
		return
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Config.EventsExchange, c.Logger)
	if err != nil {
		c.Logger.Warn("RabbitMQ not available, falling back to in-process event bus", "error", err)
		c.InProcessBus = eventbus.NewInProcessBus(c.Logger)
		c.EventPublisher = c.InProcessBus
		return
	}
	c.EventPublisher = publisher
	c.Logger.Info("connected to RabbitMQ", "exchange", c.Config.EventsExchange)
}

// Close releases all held resources.
func (c *Container) Close() error {
	var firstErr error

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
	return firstErr
}
