// Package subscribers reacts to capture events delivered over the event bus.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jharden/divflow/internal/capture/application/commands"
	"github.com/jharden/divflow/internal/capture/domain"
	"github.com/jharden/divflow/internal/shared/infrastructure/eventbus"
)

// unconfirmedThreshold marks fields still open to change. Anything below
// it can be improved by newly learned corrections.
const unconfirmedThreshold = 100

// LearningPropagator reclassifies a user's unsettled items after a
// confirmation, so a correction made on one item reaches the others
// without waiting for their next manual reclassification.
type LearningPropagator struct {
	items      domain.ItemRepository
	reclassify *commands.ReclassifyItemHandler
	logger     *slog.Logger
}

// NewLearningPropagator creates a propagation subscriber.
func NewLearningPropagator(
	items domain.ItemRepository,
	reclassify *commands.ReclassifyItemHandler,
	logger *slog.Logger,
) *LearningPropagator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LearningPropagator{
		items:      items,
		reclassify: reclassify,
		logger:     logger,
	}
}

// RoutingKeys implements eventbus.Handler.
func (p *LearningPropagator) RoutingKeys() []string {
	return []string{domain.RoutingKeyItemConfirmed}
}

// Handle implements eventbus.Handler.
func (p *LearningPropagator) Handle(ctx context.Context, env *eventbus.Envelope) error {
	var event domain.ItemConfirmedEvent
	if err := json.Unmarshal(env.Payload, &event); err != nil {
		return fmt.Errorf("decode confirm event: %w", err)
	}

	items, err := p.items.ListByUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("list items for propagation: %w", err)
	}

	reclassified := 0
	for _, item := range items {
		if item.ID == event.ItemID || !openToChange(item) {
			continue
		}
		if _, err := p.reclassify.Handle(ctx, commands.ReclassifyItemCommand{
			UserID: event.UserID,
			ItemID: item.ID,
		}); err != nil {
			p.logger.Warn("propagation reclassify failed",
				"item_id", item.ID,
				"error", err,
			)
			continue
		}
		reclassified++
	}

	p.logger.Info("propagated confirmation",
		"source_item_id", event.ItemID,
		"field", event.Field,
		"reclassified", reclassified,
	)
	return nil
}

// openToChange reports whether any classified field is still unconfirmed.
func openToChange(item domain.CapturedItem) bool {
	for _, conf := range []*float64{
		item.TypeConfidence,
		item.CollectionConfidence,
		item.PriorityConfidence,
		item.EstimateConfidence,
	} {
		if conf == nil || *conf < unconfirmedThreshold {
			return true
		}
	}
	return false
}
