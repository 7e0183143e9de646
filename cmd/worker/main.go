package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jharden/divflow/internal/app"
	"github.com/jharden/divflow/internal/capture/application/subscribers"
	reviewSubscribers "github.com/jharden/divflow/internal/review/application/subscribers"
	"github.com/jharden/divflow/internal/shared/infrastructure/eventbus"
	"github.com/jharden/divflow/pkg/config"
	"github.com/jharden/divflow/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting divflow worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:        cfg.RabbitMQURL,
		QueueName:  cfg.WorkerQueue,
		Exchange:   cfg.EventsExchange,
		Prefetch:   cfg.WorkerPrefetch,
		RetryDelay: cfg.WorkerRetryDelay,
		Logger:     logger,
	}, eventbus.NewRegistry(logger))
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	consumer.Register(subscribers.NewLearningPropagator(
		container.ItemRepo,
		container.ReclassifyItemHandler,
		logger,
	))
	consumer.Register(reviewSubscribers.NewCacheInvalidator(
		container.ReviewQueueCache,
		logger,
	))

	logger.Info("worker consuming",
		"queue", cfg.WorkerQueue,
		"exchange", cfg.EventsExchange,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("divflow worker stopped")
}
