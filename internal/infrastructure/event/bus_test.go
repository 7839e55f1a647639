package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) testEvent {
	return testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, uuid.New(), uuid.New(), time.Now()),
	}
}

func TestInMemoryBusDispatchesToSubscribers(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())

	var received []string
	bus.Subscribe(HandlerFunc(func(ctx context.Context, evt shared.DomainEvent) error {
		received = append(received, evt.EventType())
		return nil
	}), "inventory.stock_adjusted", "inventory.stock_debited")

	err := bus.Publish(context.Background(),
		newTestEvent("inventory.stock_adjusted"),
		newTestEvent("inventory.stock_reserved"),
		newTestEvent("inventory.stock_debited"),
	)

	assert.NoError(t, err)
	assert.Equal(t, []string{"inventory.stock_adjusted", "inventory.stock_debited"}, received)
}

func TestInMemoryBusHandlerFailureDoesNotStopFanout(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())

	bus.Subscribe(HandlerFunc(func(ctx context.Context, evt shared.DomainEvent) error {
		return errors.New("boom")
	}), "inventory.stock_adjusted")

	called := false
	bus.Subscribe(HandlerFunc(func(ctx context.Context, evt shared.DomainEvent) error {
		called = true
		return nil
	}), "inventory.stock_adjusted")

	err := bus.Publish(context.Background(), newTestEvent("inventory.stock_adjusted"))

	assert.NoError(t, err)
	assert.True(t, called)
}

func TestInMemoryBusRecoversFromHandlerPanic(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())

	bus.Subscribe(HandlerFunc(func(ctx context.Context, evt shared.DomainEvent) error {
		panic("handler bug")
	}), "inventory.stock_adjusted")

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("inventory.stock_adjusted"))
	})
}

func TestInMemoryBusNoSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())

	err := bus.Publish(context.Background(), newTestEvent("inventory.stock_counted"))

	assert.NoError(t, err)
}
