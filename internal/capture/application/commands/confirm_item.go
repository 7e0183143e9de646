package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jharden/divflow/internal/capture/domain"
	sharedApplication "github.com/jharden/divflow/internal/shared/application"
	"github.com/jharden/divflow/internal/shared/infrastructure/eventbus"
)

// Confirmable fields.
const (
	FieldType       = "type"
	FieldCollection = "collection"
	FieldPriority   = "priority"
	FieldEstimate   = "estimate"
)

// confirmedRecordConfidence is the weight a user confirmation carries in
// future inference.
const confirmedRecordConfidence = 100

// ConfirmItemCommand confirms or corrects one classified field.
type ConfirmItemCommand struct {
	UserID uuid.UUID
	ItemID uuid.UUID
	Field  string
	Value  string
}

// ConfirmItemResult reports whether the original inference was right.
type ConfirmItemResult struct {
	Item       domain.CapturedItem
	WasCorrect bool
}

// ConfirmItemHandler pins a field at confidence 100, appends a learning
// record so the correction feeds future inference, and stamps the review.
type ConfirmItemHandler struct {
	items     domain.ItemRepository
	learning  domain.LearningRepository
	uow       sharedApplication.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewConfirmItemHandler(
	items domain.ItemRepository,
	learning domain.LearningRepository,
	uow sharedApplication.UnitOfWork,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *ConfirmItemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfirmItemHandler{
		items:     items,
		learning:  learning,
		uow:       uow,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle executes the ConfirmItemCommand.
func (h *ConfirmItemHandler) Handle(ctx context.Context, cmd ConfirmItemCommand) (*ConfirmItemResult, error) {
	item, err := h.items.FindByID(ctx, cmd.UserID, cmd.ItemID)
	if err != nil {
		return nil, err
	}

	wasCorrect, err := applyConfirmation(item, cmd.Field, cmd.Value)
	if err != nil {
		return nil, err
	}

	now := h.now().UTC()
	item.LastReviewedAt = &now
	item.UpdatedAt = now

	record := domain.LearningRecord{
		ID:         uuid.New(),
		UserID:     cmd.UserID,
		Kind:       kindForField(cmd.Field),
		Pattern:    item.Text,
		Value:      cmd.Value,
		Confidence: confirmedRecordConfidence,
		CreatedAt:  now,
		WasCorrect: &wasCorrect,
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.items.Update(txCtx, *item); err != nil {
			return err
		}
		return h.learning.Append(txCtx, record)
	})
	if err != nil {
		return nil, err
	}

	event := domain.ItemConfirmedEvent{
		ItemID:      item.ID,
		UserID:      item.UserID,
		Field:       cmd.Field,
		Value:       cmd.Value,
		WasCorrect:  wasCorrect,
		ConfirmedAt: now,
	}
	if err := eventbus.PublishEvent(ctx, h.publisher, cmd.UserID, event); err != nil {
		h.logger.Warn("failed to publish confirm event",
			"item_id", item.ID,
			"error", err,
		)
	}

	h.logger.Info("field confirmed",
		"item_id", item.ID,
		"field", cmd.Field,
		"was_correct", wasCorrect,
	)
	return &ConfirmItemResult{Item: *item, WasCorrect: wasCorrect}, nil
}

// applyConfirmation sets the field to the user's value at confidence 100
// and reports whether the prior inference already matched.
func applyConfirmation(item *domain.CapturedItem, field, value string) (bool, error) {
	confirmed := float64(confirmedRecordConfidence)

	switch field {
	case FieldType:
		t := domain.ItemType(value)
		if !t.IsValid() {
			return false, fmt.Errorf("invalid item type %q", value)
		}
		wasCorrect := item.InferredType != nil && *item.InferredType == t
		item.InferredType = &t
		item.TypeConfidence = &confirmed
		return wasCorrect, nil

	case FieldCollection:
		if value == "" {
			return false, fmt.Errorf("collection cannot be empty")
		}
		wasCorrect := item.Collection != nil && *item.Collection == value
		item.Collection = &value
		item.CollectionConfidence = &confirmed
		return wasCorrect, nil

	case FieldPriority:
		p := domain.Priority(value)
		if !p.IsValid() {
			return false, fmt.Errorf("invalid priority %q", value)
		}
		wasCorrect := item.Priority != nil && *item.Priority == p
		item.Priority = &p
		item.PriorityConfidence = &confirmed
		return wasCorrect, nil

	case FieldEstimate:
		e := domain.Estimate(value)
		if !e.IsValid() {
			return false, fmt.Errorf("invalid estimate %q", value)
		}
		wasCorrect := item.Estimate != nil && *item.Estimate == e
		item.Estimate = &e
		item.EstimateConfidence = &confirmed
		return wasCorrect, nil

	default:
		return false, fmt.Errorf("unknown field %q", field)
	}
}

func kindForField(field string) domain.LearningKind {
	switch field {
	case FieldCollection:
		return domain.LearningKindCollection
	case FieldPriority:
		return domain.LearningKindPriority
	case FieldEstimate:
		return domain.LearningKindEstimate
	default:
		return domain.LearningKindType
	}
}
