package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	// OrderEventsQueue carries order.placed and order.status_changed events.
	OrderEventsQueue = "order_events"
	// BroadcastQueue carries broadcast mail jobs for the in-process worker.
	BroadcastQueue = "notification_broadcasts"
)

// publisher is the publishing half of *amqp.Channel.
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	pub     publisher
	mu      sync.Mutex // guards channel publishes
	logger  *zap.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// queues the service uses.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, name := range []string{OrderEventsQueue, BroadcastQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare %s: %w", name, err)
		}
	}

	logger.Info("RabbitMQ client connected", zap.Strings("queues", []string{OrderEventsQueue, BroadcastQueue}))

	return &Client{
		conn:    conn,
		channel: ch,
		pub:     ch,
		logger:  logger,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishEvent publishes an order lifecycle event, e.g. "order.placed".
func (c *Client) PublishEvent(ctx context.Context, eventType string, payload any) error {
	return c.publish(ctx, OrderEventsQueue, eventType, payload)
}

// PublishBroadcast queues a broadcast job.
func (c *Client) PublishBroadcast(ctx context.Context, job any) error {
	return c.publish(ctx, BroadcastQueue, "notification.broadcast", job)
}

// publish sends one persistent JSON message. amqp's Publish takes no context,
// so it runs on its own goroutine and the call returns when ctx is done even
// if the broker write is still blocked.
func (c *Client) publish(ctx context.Context, queue, eventType string, payload any) error {
	if c.pub == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Type:         eventType,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	done := make(chan error, 1)
	go func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		done <- c.pub.Publish("", queue, false, false, msg)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		return fmt.Errorf("failed to publish %s: %w", eventType, ctx.Err())
	}
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	c.logger.Debug("published message", zap.String("queue", queue), zap.String("type", eventType))
	return nil
}

// ConsumeBroadcasts starts a goroutine that passes each broadcast job body to
// handler. A handler error nacks the message without requeueing so a poison
// job cannot loop forever. The goroutine stops when ctx is done or the
// channel closes.
func (c *Client) ConsumeBroadcasts(ctx context.Context, handler func(ctx context.Context, body []byte) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		BroadcastQueue,
		"",    // consumer tag
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("waiting for broadcast jobs", zap.String("queue", BroadcastQueue))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if err := handler(ctx, msg.Body); err != nil {
					c.logger.Error("broadcast job failed", zap.Uint64("deliveryTag", msg.DeliveryTag), zap.Error(err))
					if nackErr := msg.Nack(false, false); nackErr != nil {
						c.logger.Error("failed to nack message", zap.Error(nackErr))
					}
					continue
				}
				if ackErr := msg.Ack(false); ackErr != nil {
					c.logger.Error("failed to ack message", zap.Error(ackErr))
				}
			}
		}
	}()

	return nil
}
