package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/jharden/divflow/adapter/cli"
	"github.com/jharden/divflow/internal/app"
	"github.com/jharden/divflow/pkg/config"
	"github.com/jharden/divflow/pkg/observability"
)

// defaultUserID is the single-user identity used when none is configured.
var defaultUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		cfg = &config.Config{AppEnv: "development", DatabaseDriver: config.DriverMemory}
	}
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	userID := currentUserID(cfg, logger)
	cli.SetApp(&cli.App{
		CaptureItemHandler:    container.CaptureItemHandler,
		ConfirmItemHandler:    container.ConfirmItemHandler,
		ReclassifyItemHandler: container.ReclassifyItemHandler,
		ListItemsHandler:      container.ListItemsHandler,
		GetItemHandler:        container.GetItemHandler,
		ReviewQueueHandler:    container.ReviewQueueHandler,
		ReviewQueueCache:      container.ReviewQueueCache,
		CurrentUserID:         userID,
		ReviewLimit:           cfg.ReviewLimit,
	})

	// Every log line from this process carries the acting user.
	cli.Execute(observability.WithUserID(ctx, userID.String()))
}

func currentUserID(cfg *config.Config, logger *slog.Logger) uuid.UUID {
	if cfg.UserID == "" {
		return defaultUserID
	}
	id, err := uuid.Parse(cfg.UserID)
	if err != nil {
		logger.Warn("invalid DIVFLOW_USER_ID, using default user", "error", err)
		return defaultUserID
	}
	return id
}
