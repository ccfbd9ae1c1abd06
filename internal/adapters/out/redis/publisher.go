package redis

import (
	"context"
	"encoding/json"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the pub/sub channel notification consumers subscribe to.
const DefaultChannel = "courierhub.events"

type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Message is the JSON shape of a published domain event.
type Message struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	AggregateID string         `json:"aggregate_id"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Payload     map[string]any `json:"payload,omitempty"`
}

func NewMessage(e kernel.DomainEvent) Message {
	return Message{
		ID:          e.ID.String(),
		Name:        e.Name,
		AggregateID: e.AggregateID.String(),
		OccurredAt:  e.OccurredAt,
		Payload:     e.Payload,
	}
}

// EventPublisher implements ports.EventPublisher on a Redis pub/sub channel.
// Failures are logged and dropped; a missed notification never fails a business operation.
type EventPublisher struct {
	client  publisher
	channel string
	log     *zap.Logger
}

func NewEventPublisher(client publisher, channel string, log *zap.Logger) *EventPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &EventPublisher{
		client:  client,
		channel: channel,
		log:     logger.Component(log, "event_publisher"),
	}
}

func (p *EventPublisher) Publish(ctx context.Context, events ...kernel.DomainEvent) {
	for _, e := range events {
		body, err := json.Marshal(NewMessage(e))
		if err != nil {
			p.log.Error("failed to encode event", zap.String("event", e.Name), zap.Error(err))
			continue
		}
		if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
			p.log.Warn("failed to publish event",
				zap.String("event", e.Name),
				zap.String("aggregate_id", e.AggregateID.String()),
				zap.Error(err))
			continue
		}
		p.log.Debug("event published", zap.String("event", e.Name), zap.String("aggregate_id", e.AggregateID.String()))
	}
}

// LogPublisher writes events to the log. It is used when Redis is not configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: logger.Component(log, "event_publisher")}
}

func (p *LogPublisher) Publish(_ context.Context, events ...kernel.DomainEvent) {
	for _, e := range events {
		p.log.Info("domain event",
			zap.String("event", e.Name),
			zap.String("aggregate_id", e.AggregateID.String()),
			zap.Time("occurred_at", e.OccurredAt),
			zap.Any("payload", e.Payload))
	}
}
