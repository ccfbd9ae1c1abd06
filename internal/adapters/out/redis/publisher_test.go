package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"courierhub/internal/core/domain/model/kernel"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	args := m.Called(ctx, channel, message)
	return redis.NewIntResult(int64(args.Int(0)), args.Error(1))
}

func TestEventPublisher_PublishesJSONPerEvent(t *testing.T) {
	ctx := context.Background()
	client := new(mockPublisher)
	var bodies [][]byte
	client.On("Publish", ctx, "events", mock.Anything).
		Run(func(args mock.Arguments) { bodies = append(bodies, args.Get(2).([]byte)) }).
		Return(1, nil)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	orderID := kernel.NewUUID()
	events := []kernel.DomainEvent{
		kernel.NewDomainEvent("OrderCreated", orderID, at, map[string]any{"total_price": 1600}),
		kernel.NewDomainEvent("OrderAssigned", orderID, at, nil),
	}

	NewEventPublisher(client, "events", zap.NewNop()).Publish(ctx, events...)

	require.Len(t, bodies, 2)
	var msg Message
	require.NoError(t, json.Unmarshal(bodies[0], &msg))
	assert.Equal(t, "OrderCreated", msg.Name)
	assert.Equal(t, orderID.String(), msg.AggregateID)
	assert.Equal(t, at, msg.OccurredAt)
	assert.InDelta(t, 1600, msg.Payload["total_price"], 0)
}

func TestEventPublisher_FailureIsLoggedNotReturned(t *testing.T) {
	ctx := context.Background()
	client := new(mockPublisher)
	client.On("Publish", ctx, DefaultChannel, mock.Anything).Return(0, errors.New("connection reset"))

	core, logs := observer.New(zapcore.WarnLevel)
	p := NewEventPublisher(client, "", zap.New(core))

	p.Publish(ctx, kernel.NewDomainEvent("WithdrawalApproved", kernel.NewUUID(), time.Now(), nil))

	entries := logs.FilterMessage("failed to publish event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "WithdrawalApproved", entries[0].ContextMap()["event"])
}

func TestLogPublisher_LogsEachEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	p.Publish(context.Background(),
		kernel.NewDomainEvent("OrderDelivered", kernel.NewUUID(), time.Now(), nil),
		kernel.NewDomainEvent("CreditDispatchFailed", kernel.NewUUID(), time.Now(), map[string]any{"attempts": 4}),
	)

	assert.Equal(t, 2, logs.FilterMessage("domain event").Len())
	assert.Equal(t, "event_publisher", logs.All()[0].ContextMap()["component"])
}
