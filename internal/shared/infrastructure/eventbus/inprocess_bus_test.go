package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConsumer struct {
	eventTypes []string
	events     []*eventbus.ConsumedEvent
	err        error
}

func (c *mockConsumer) EventTypes() []string {
	return c.eventTypes
}

func (c *mockConsumer) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	c.events = append(c.events, event)
	return c.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestInProcessEventBus_Publish(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(testLogger())

	consumer := &mockConsumer{
		eventTypes: []string{"tracking.subscription.created"},
	}
	bus.RegisterConsumer(consumer)

	event := &eventbus.ConsumedEvent{
		EventID:       uuid.New(),
		AggregateID:   uuid.New(),
		AggregateType: "Subscription",
		RoutingKey:    "tracking.subscription.created",
		OccurredAt:    time.Now(),
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	err = bus.Publish(context.Background(), "tracking.subscription.created", payload)
	require.NoError(t, err)

	assert.Len(t, consumer.events, 1)
	assert.Equal(t, event.EventID, consumer.events[0].EventID)
}

func TestInProcessEventBus_MultipleConsumers(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(testLogger())

	consumer1 := &mockConsumer{eventTypes: []string{"tracking.subscription.created"}}
	consumer2 := &mockConsumer{eventTypes: []string{"tracking.subscription.created"}}

	bus.RegisterConsumer(consumer1)
	bus.RegisterConsumer(consumer2)

	event := &eventbus.ConsumedEvent{
		EventID:    uuid.New(),
		RoutingKey: "tracking.subscription.created",
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	err = bus.Publish(context.Background(), "tracking.subscription.created", payload)
	require.NoError(t, err)

	assert.Len(t, consumer1.events, 1)
	assert.Len(t, consumer2.events, 1)
}

func TestInProcessEventBus_NoConsumers(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(testLogger())

	event := &eventbus.ConsumedEvent{
		EventID:    uuid.New(),
		RoutingKey: "unknown.event.type",
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	err = bus.Publish(context.Background(), "unknown.event.type", payload)
	require.NoError(t, err)
}

func TestInProcessEventBus_ConsumerError(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(testLogger())

	consumer := &mockConsumer{
		eventTypes: []string{"tracking.subscription.created"},
		err:        errors.New("consumer error"),
	}
	bus.RegisterConsumer(consumer)

	event := &eventbus.ConsumedEvent{
		EventID:    uuid.New(),
		RoutingKey: "tracking.subscription.created",
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	// Local mode logs the failure but does not fail the publish.
	err = bus.Publish(context.Background(), "tracking.subscription.created", payload)
	require.NoError(t, err)
	assert.Len(t, consumer.events, 1)
}

func TestInProcessEventBus_InvalidPayload(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(testLogger())

	consumer := &mockConsumer{
		eventTypes: []string{"tracking.subscription.created"},
	}
	bus.RegisterConsumer(consumer)

	err := bus.Publish(context.Background(), "tracking.subscription.created", []byte("invalid json"))

	require.NoError(t, err)
	assert.Empty(t, consumer.events)
}

func TestConsumerRegistry_Dispatch(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(testLogger())

	ok := &mockConsumer{eventTypes: []string{"tracking.subscription.ended"}}
	failing := &mockConsumer{
		eventTypes: []string{"tracking.subscription.ended"},
		err:        errors.New("boom"),
	}
	registry.Register(failing)
	registry.Register(ok)

	event := &eventbus.ConsumedEvent{
		EventID:    uuid.New(),
		RoutingKey: "tracking.subscription.ended",
	}

	err := registry.Dispatch(context.Background(), event)

	// The error surfaces but all consumers still run.
	assert.Error(t, err)
	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1)
	assert.Equal(t, 2, registry.ConsumerCount())
}
