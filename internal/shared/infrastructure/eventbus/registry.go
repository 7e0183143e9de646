package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

// Handler processes events for its declared routing keys.
type Handler interface {
	// RoutingKeys returns the keys this handler subscribes to,
	// e.g. ["capture.item.captured"].
	RoutingKeys() []string

	// Handle processes one event.
	Handle(ctx context.Context, env *Envelope) error
}

// Registry maps routing keys to handlers and dispatches envelopes.
type Registry struct {
	handlers map[string][]Handler
	mu       sync.RWMutex
	logger   *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Register adds a handler for its declared routing keys.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range h.RoutingKeys() {
		r.handlers[key] = append(r.handlers[key], h)
		r.logger.Debug("registered event handler", "routing_key", key)
	}
}

// RoutingKeys returns every key with at least one handler.
func (r *Registry) RoutingKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	return keys
}

// Dispatch delivers an envelope to every handler registered for its key.
// All handlers run even when one fails; the last error is returned.
func (r *Registry) Dispatch(ctx context.Context, env *Envelope) error {
	r.mu.RLock()
	handlers := r.handlers[env.RoutingKey]
	r.mu.RUnlock()

	if len(handlers) == 0 {
		r.logger.DebugContext(ctx, "no handlers for event", "routing_key", env.RoutingKey)
		return nil
	}

	var lastErr error
	for _, h := range handlers {
		if err := h.Handle(ctx, env); err != nil {
			r.logger.ErrorContext(ctx, "event handler failed",
				"routing_key", env.RoutingKey,
				"event_id", env.EventID,
				"error", err,
			)
			lastErr = err
		}
	}
	return lastErr
}
