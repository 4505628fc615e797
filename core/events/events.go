package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"channel-manager/core/booking"
	"channel-manager/core/queue"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	TypeRunCompleted = "sync.run.completed"
	TypeItemFailed   = "queue.item.failed"
)

// Config holds configuration for the event publisher.
type Config struct {
	// AMQPURL is the broker URL. Empty disables publishing.
	AMQPURL string `mapstructure:"amqp_url" default:""`
	// Exchange is the durable topic exchange events are published to.
	Exchange string `mapstructure:"exchange" default:"channel-sync"`
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool {
	return c.AMQPURL != ""
}

// Event is the envelope of every published message.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher publishes events to one exchange.
type Publisher struct {
	ch       Channel
	conn     *amqp.Connection
	exchange string
	logger   *zap.Logger
	now      func() time.Time
}

// Dial connects to the broker and declares the exchange.
func Dial(cfg Config, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: exchange declare failed: %w", err)
	}
	p := NewPublisher(ch, cfg.Exchange, logger)
	p.conn = conn
	return p, nil
}

// NewPublisher wraps an open channel.
func NewPublisher(ch Channel, exchange string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{ch: ch, exchange: exchange, logger: logger, now: time.Now}
}

// Publish sends one event routed by its type.
func (p *Publisher) Publish(ctx context.Context, eventType string, data any) error {
	evt := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		Data:       data,
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}

	return p.ch.PublishWithContext(ctx, p.exchange, eventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Timestamp:    evt.OccurredAt,
		Type:         eventType,
		Body:         body,
	})
}

// RunFinished publishes a sync.run.completed event.
func (p *Publisher) RunFinished(ctx context.Context, run *booking.SyncRunLog) {
	if err := p.Publish(ctx, TypeRunCompleted, run); err != nil {
		p.logger.Warn("Failed to publish run event",
			zap.String("channel", run.ChannelName),
			zap.Uint("run_id", run.ID),
			zap.Error(err))
	}
}

// ItemFailed publishes a queue.item.failed event.
func (p *Publisher) ItemFailed(ctx context.Context, item *queue.Item) {
	if err := p.Publish(ctx, TypeItemFailed, item); err != nil {
		p.logger.Warn("Failed to publish queue failure event",
			zap.Uint("queue_item_id", item.ID),
			zap.Error(err))
	}
}

// Close closes the channel and the connection, if owned.
func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
