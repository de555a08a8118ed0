package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

// Event types published for product mutations.
const (
	EventProductCreated       = "product.created"
	EventProductUpdated       = "product.updated"
	EventProductStatusChanged = "product.status_changed"
	EventProductDeleted       = "product.deleted"
)

// ErrChannelUnavailable is returned when the client has no open channel.
var ErrChannelUnavailable = errors.New("RabbitMQ channel is not available")

// ProductEvent is the message body sent after a product mutation commits.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"productId"`
	SKU        string    `json:"sku"`
	Status     string    `json:"status"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Encode marshals the event as JSON.
func (e ProductEvent) Encode() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product event: %w", err)
	}
	return body, nil
}

// DecodeProductEvent parses a message body produced by Encode.
func DecodeProductEvent(body []byte) (ProductEvent, error) {
	var e ProductEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return ProductEvent{}, fmt.Errorf("failed to decode product event: %w", err)
	}
	if e.Type == "" || e.ProductID == "" {
		return ProductEvent{}, fmt.Errorf("failed to decode product event: missing type or productId")
	}
	return e, nil
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
	// amqp channels are not safe for concurrent publishers.
	mu sync.Mutex
}

// NewClient connects to RabbitMQ, opens a channel and declares the queue.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Queue == "" {
		cfg.Queue = "product_events"
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("RabbitMQ client connected", "queue", cfg.Queue)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		logger:  logger,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", name, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
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
	return errors.Join(errs...)
}

// PublishProductEvent sends event to the product queue as a persistent message.
func (c *Client) PublishProductEvent(ctx context.Context, event ProductEvent) error {
	if c == nil || c.channel == nil {
		return ErrChannelUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := event.Encode()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			MessageId:    event.ProductID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug("product event sent", "type", event.Type, "product_id", event.ProductID)
	return nil
}

// ConsumeProductEvents delivers every decoded event on the queue to handler
// from a background goroutine. Undecodable messages are dropped; handler
// errors requeue the message.
func (c *Client) ConsumeProductEvents(handler func(ProductEvent) error) error {
	if c == nil || c.channel == nil {
		return ErrChannelUnavailable
	}

	c.mu.Lock()
	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("waiting for product events", "queue", c.queue)

	go func() {
		for msg := range msgs {
			c.handleDelivery(msg, handler)
		}
	}()
	return nil
}

// acknowledger is the part of amqp.Delivery handleDelivery needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Client) handleDelivery(msg amqp.Delivery, handler func(ProductEvent) error) {
	c.dispatch(msg.Body, msg.DeliveryTag, msg, handler)
}

func (c *Client) dispatch(body []byte, tag uint64, ack acknowledger, handler func(ProductEvent) error) {
	event, err := DecodeProductEvent(body)
	if err != nil {
		c.logger.Warn("dropping malformed product event", "delivery_tag", tag, "error", err)
		if nackErr := ack.Nack(false, false); nackErr != nil {
			c.logger.Error("failed to nack message", "delivery_tag", tag, "error", nackErr)
		}
		return
	}

	if err := handler(event); err != nil {
		c.logger.Warn("failed to process product event", "delivery_tag", tag, "error", err)
		if nackErr := ack.Nack(false, true); nackErr != nil {
			c.logger.Error("failed to nack message", "delivery_tag", tag, "error", nackErr)
		}
		return
	}
	if ackErr := ack.Ack(false); ackErr != nil {
		c.logger.Error("failed to ack message", "delivery_tag", tag, "error", ackErr)
	}
}

// LogProductEvent is a consumer handler that records each event in the log.
func LogProductEvent(logger *slog.Logger) func(ProductEvent) error {
	return func(e ProductEvent) error {
		logger.Info("product event received",
			"type", e.Type, "product_id", e.ProductID, "sku", e.SKU, "status", e.Status, "user_id", e.Actor)
		return nil
	}
}
