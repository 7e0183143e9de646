package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jharden/divflow/pkg/observability"
)

// DefaultQueueName is the queue the background worker consumes from.
const DefaultQueueName = "divflow.capture"

// RabbitMQConsumer drains a queue bound to the capture exchange and
// dispatches envelopes through a Registry.
type RabbitMQConsumer struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	queue      string
	exchange   string
	prefetch   int
	retryDelay time.Duration
	registry   *Registry
	logger     *slog.Logger
	mu         sync.Mutex
	running    bool
	closeOnce  sync.Once
	closeChan  chan struct{}
}

// RabbitMQConsumerConfig configures the consumer.
type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Exchange  string
	Prefetch  int

	// RetryDelay is waited before requeueing a failed message, so a
	// persistently failing handler does not spin the queue.
	RetryDelay time.Duration

	Logger *slog.Logger
}

// NewRabbitMQConsumer connects, declares the queue, and prepares the
// consumer. Register handlers before calling Start.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *Registry) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultQueueName
	}
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchangeName
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	cfg.Logger.Info("RabbitMQ consumer connected",
		"queue", cfg.QueueName,
		"exchange", cfg.Exchange,
	)

	return &RabbitMQConsumer{
		conn:       conn,
		channel:    ch,
		queue:      cfg.QueueName,
		exchange:   cfg.Exchange,
		prefetch:   cfg.Prefetch,
		retryDelay: cfg.RetryDelay,
		registry:   registry,
		logger:     cfg.Logger,
		closeChan:  make(chan struct{}),
	}, nil
}

// Register adds a handler and binds its routing keys to the queue.
func (c *RabbitMQConsumer) Register(h Handler) {
	c.registry.Register(h)

	for _, key := range h.RoutingKeys() {
		if err := c.bindQueue(key); err != nil {
			c.logger.Error("failed to bind queue",
				"routing_key", key,
				"error", err,
			)
		}
	}
}

func (c *RabbitMQConsumer) bindQueue(routingKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.QueueBind(
		c.queue,
		routingKey,
		c.exchange,
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	c.logger.Debug("bound queue to routing key",
		"queue", c.queue,
		"routing_key", routingKey,
	)
	return nil
}

// Start consumes messages until the context is cancelled or Close is
// called. Blocking.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	if err := c.channel.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("started consuming events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer context cancelled, stopping")
			return ctx.Err()

		case <-c.closeChan:
			c.logger.Info("consumer close requested, stopping")
			return nil

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed unexpectedly")
			}

			if err := c.processMessage(ctx, msg); err != nil {
				// Requeue for retry, after a pause so a failing
				// handler does not spin the queue.
				if c.retryDelay > 0 {
					select {
					case <-ctx.Done():
					case <-time.After(c.retryDelay):
					}
				}
				if nackErr := msg.Nack(false, true); nackErr != nil {
					c.logger.Error("failed to nack message", "error", nackErr)
				}
			} else {
				if ackErr := msg.Ack(false); ackErr != nil {
					c.logger.Error("failed to ack message", "error", ackErr)
				}
			}
		}
	}
}

func (c *RabbitMQConsumer) processMessage(ctx context.Context, msg amqp.Delivery) error {
	var env Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		// A message that cannot be decoded will never succeed; ack and
		// discard it.
		c.logger.Error("failed to unmarshal event",
			"routing_key", msg.RoutingKey,
			"error", err,
		)
		return nil
	}
	if env.RoutingKey == "" {
		env.RoutingKey = msg.RoutingKey
	}

	// Each message gets its own traced context so every log line from the
	// handlers can be tied back to the event that caused it.
	ctx = observability.NewRequestContext(ctx, env.EventID.String())
	if env.UserID != uuid.Nil {
		ctx = observability.WithUserID(ctx, env.UserID.String())
	}

	start := time.Now()
	if err := c.registry.Dispatch(ctx, &env); err != nil {
		c.logger.ErrorContext(ctx, "event dispatch failed",
			"routing_key", env.RoutingKey,
			"event_id", env.EventID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return err
	}

	observability.LogDuration(ctx, c.logger, "event "+env.RoutingKey, start)
	return nil
}

// Close stops consumption and closes the connection.
func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeOnce.Do(func() { close(c.closeChan) })
	c.running = false

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing channel", "error", err)
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
