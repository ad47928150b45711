package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	publishTimeout  = 5 * time.Second
	publishAttempts = 3
	appID           = "forum-server"
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// rabbitMQEventPublisher publishes forum events to a topic exchange. The
// routing key is the event type, e.g. "post.created".
type rabbitMQEventPublisher struct {
	mu       sync.Mutex
	channel  amqpChannel
	exchange string
	logger   *zap.Logger
}

// Compile-time check
var _ interfaces.ForumEventPublisher = (*rabbitMQEventPublisher)(nil)

// NewRabbitMQEventPublisher opens a channel on conn and declares the durable
// topic exchange events are published to.
func NewRabbitMQEventPublisher(conn *amqp.Connection, exchange string, logger *zap.Logger) (interfaces.ForumEventPublisher, func() error, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("event publisher: failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("event publisher: failed to declare exchange %q: %w", exchange, err)
	}
	logger.Info("Event exchange declared", zap.String("exchange", exchange))
	return newRabbitMQEventPublisher(ch, exchange, logger), ch.Close, nil
}

func newRabbitMQEventPublisher(ch amqpChannel, exchange string, logger *zap.Logger) *rabbitMQEventPublisher {
	return &rabbitMQEventPublisher{
		channel:  ch,
		exchange: exchange,
		logger:   logger.Named("EventPublisher"),
	}
}

func (p *rabbitMQEventPublisher) PublishForumEvent(ctx context.Context, event models.ForumEvent) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel is not initialized")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal forum event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		AppId:        appID,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for attempt := 1; attempt <= publishAttempts; attempt++ {
		err = p.channel.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, msg)
		if err == nil {
			p.logger.Debug("Forum event published", zap.String("eventID", event.ID), zap.String("type", string(event.Type)))
			return nil
		}
		p.logger.Warn("Failed to publish forum event",
			zap.Int("attempt", attempt),
			zap.String("eventID", event.ID),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("failed to publish forum event %s: %w", event.Type, err)
}
