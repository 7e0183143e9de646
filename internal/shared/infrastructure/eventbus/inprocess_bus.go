package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
)

// InProcessBus delivers events synchronously to registered handlers. It
// replaces RabbitMQ when eventing runs inside a single process.
type InProcessBus struct {
	registry *Registry
	logger   *slog.Logger
}

func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		registry: NewRegistry(logger),
		logger:   logger,
	}
}

// Register adds a handler to the bus.
func (b *InProcessBus) Register(h Handler) {
	b.registry.Register(h)
}

// Publish decodes the envelope and dispatches it synchronously. Handler
// failures are logged, not surfaced; a local capture must not fail
// because a side effect did.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		b.logger.Error("malformed event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}
	if env.RoutingKey == "" {
		env.RoutingKey = routingKey
	}

	if err := b.registry.Dispatch(ctx, &env); err != nil {
		b.logger.Error("event dispatch failed",
			"routing_key", env.RoutingKey,
			"event_id", env.EventID,
			"error", err,
		)
	}
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessBus) Close() error {
	return nil
}
