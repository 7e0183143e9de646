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

// ReclassifyItemCommand reruns inference over a stored item, typically
// after new learning records have accumulated. User-confirmed fields are
// left untouched.
type ReclassifyItemCommand struct {
	UserID uuid.UUID
	ItemID uuid.UUID
}

// ReclassifyItemResult returns the re-classified item.
type ReclassifyItemResult struct {
	Item domain.CapturedItem
}

// ReclassifyItemHandler handles the ReclassifyItemCommand.
type ReclassifyItemHandler struct {
	items     domain.ItemRepository
	learning  domain.LearningRepository
	engine    *services.InferenceEngine
	uow       sharedApplication.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
}

func NewReclassifyItemHandler(
	items domain.ItemRepository,
	learning domain.LearningRepository,
	engine *services.InferenceEngine,
	uow sharedApplication.UnitOfWork,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *ReclassifyItemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReclassifyItemHandler{
		items:     items,
		learning:  learning,
		engine:    engine,
		uow:       uow,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the ReclassifyItemCommand.
func (h *ReclassifyItemHandler) Handle(ctx context.Context, cmd ReclassifyItemCommand) (*ReclassifyItemResult, error) {
	item, err := h.items.FindByID(ctx, cmd.UserID, cmd.ItemID)
	if err != nil {
		return nil, err
	}

	clearUnconfirmed(item)

	history, err := loadHistory(ctx, h.learning, cmd.UserID)
	if err != nil {
		return nil, err
	}
	h.engine.Process(item, history)
	item.UpdatedAt = time.Now().UTC()

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.items.Update(txCtx, *item)
	})
	if err != nil {
		return nil, err
	}

	event := domain.ItemReclassifiedEvent{
		ItemID:         item.ID,
		UserID:         item.UserID,
		ReclassifiedAt: item.UpdatedAt,
	}
	if item.InferredType != nil {
		event.ItemType = string(*item.InferredType)
	}
	if item.TypeConfidence != nil {
		event.Confidence = *item.TypeConfidence
	}
	if err := eventbus.PublishEvent(ctx, h.publisher, cmd.UserID, event); err != nil {
		h.logger.Warn("failed to publish reclassify event",
			"item_id", item.ID,
			"error", err,
		)
	}

	return &ReclassifyItemResult{Item: *item}, nil
}

// clearUnconfirmed wipes every inferred field the user has not pinned so
// the engine starts from a clean slate.
func clearUnconfirmed(item *domain.CapturedItem) {
	if !confirmed(item.TypeConfidence) {
		item.InferredType = nil
		item.TypeConfidence = nil
		item.TypeReasoning = nil
	}
	if !confirmed(item.CollectionConfidence) {
		item.Collection = nil
		item.CollectionConfidence = nil
	}
	if !confirmed(item.PriorityConfidence) {
		item.Priority = nil
		item.PriorityConfidence = nil
	}
	if !confirmed(item.EstimateConfidence) {
		item.Estimate = nil
		item.EstimateConfidence = nil
	}
}

func confirmed(confidence *float64) bool {
	return confidence != nil && *confidence >= confirmedRecordConfidence
}
