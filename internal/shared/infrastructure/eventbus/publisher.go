// Package eventbus carries capture events between the CLI process and
// background workers, either in-process or over RabbitMQ.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Publisher sends events to the bus.
type Publisher interface {
	// Publish sends a payload under a routing key.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// DomainEvent is implemented by events that know their own routing key.
type DomainEvent interface {
	RoutingKey() string
}

// Envelope is the wire format for every event on the bus.
type Envelope struct {
	EventID    uuid.UUID       `json:"event_id"`
	RoutingKey string          `json:"routing_key"`
	OccurredAt time.Time       `json:"occurred_at"`
	UserID     uuid.UUID       `json:"user_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

// PublishEvent wraps a domain event in an envelope and publishes it.
func PublishEvent(ctx context.Context, pub Publisher, userID uuid.UUID, event DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	env := Envelope{
		EventID:    uuid.New(),
		RoutingKey: event.RoutingKey(),
		OccurredAt: time.Now().UTC(),
		UserID:     userID,
		Payload:    payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return pub.Publish(ctx, env.RoutingKey, body)
}

// NoopPublisher drops every event. Used when eventing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, []byte) error { return nil }
func (NoopPublisher) Close() error                                  { return nil }
