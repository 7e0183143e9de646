package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jharden/divflow/internal/capture/domain"
	"github.com/jharden/divflow/internal/capture/services"
	sharedApplication "github.com/jharden/divflow/internal/shared/application"
	"github.com/jharden/divflow/internal/shared/infrastructure/eventbus"
)

// CaptureItemCommand contains the data needed to capture free text.
type CaptureItemCommand struct {
	UserID  uuid.UUID
	Text    string
	Context string
	Tags    []string
}

// CaptureItemResult returns the stored, classified item.
type CaptureItemResult struct {
	Item domain.CapturedItem
}

// CaptureItemHandler handles the CaptureItemCommand: it stores the raw
// text, runs the inference pipeline, and announces the capture.
type CaptureItemHandler struct {
	items     domain.ItemRepository
	learning  domain.LearningRepository
	engine    *services.InferenceEngine
	uow       sharedApplication.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
}

func NewCaptureItemHandler(
	items domain.ItemRepository,
	learning domain.LearningRepository,
	engine *services.InferenceEngine,
	uow sharedApplication.UnitOfWork,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *CaptureItemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CaptureItemHandler{
		items:     items,
		learning:  learning,
		engine:    engine,
		uow:       uow,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the CaptureItemCommand.
func (h *CaptureItemHandler) Handle(ctx context.Context, cmd CaptureItemCommand) (*CaptureItemResult, error) {
	item, err := domain.NewCapturedItem(cmd.UserID, cmd.Text)
	if err != nil {
		return nil, err
	}
	item.Context = cmd.Context
	item.Tags = cmd.Tags

	history, err := loadHistory(ctx, h.learning, cmd.UserID)
	if err != nil {
		return nil, err
	}
	h.engine.Process(item, history)

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.items.Save(txCtx, *item)
	})
	if err != nil {
		return nil, err
	}

	event := domain.ItemCapturedEvent{
		ItemID:     item.ID,
		UserID:     item.UserID,
		Text:       item.Text,
		CapturedAt: time.Now().UTC(),
	}
	if item.InferredType != nil {
		event.ItemType = string(*item.InferredType)
	}
	if item.TypeConfidence != nil {
		event.Confidence = *item.TypeConfidence
	}
	if err := eventbus.PublishEvent(ctx, h.publisher, cmd.UserID, event); err != nil {
		// The capture already committed; a lost event is not worth
		// failing the command.
		h.logger.Warn("failed to publish capture event",
			"item_id", item.ID,
			"error", err,
		)
	}

	h.logger.Info("item captured",
		"item_id", item.ID,
		"type", event.ItemType,
	)
	return &CaptureItemResult{Item: *item}, nil
}
