package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// Handler processes a published domain event. Handlers run synchronously on
// the publisher's goroutine; slow work belongs behind the handler's own queue.
type Handler interface {
	Handle(ctx context.Context, event shared.DomainEvent) error
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, event shared.DomainEvent) error

// Handle calls the wrapped function
func (f HandlerFunc) Handle(ctx context.Context, event shared.DomainEvent) error {
	return f(ctx, event)
}

// InMemoryBus is an in-process pub/sub dispatcher for domain events.
// Publishing is best effort: a failing or panicking handler is logged and the
// remaining handlers still run, so event fan-out never rolls back a committed
// ledger change.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

var _ shared.EventPublisher = (*InMemoryBus)(nil)

// NewInMemoryBus creates an empty event bus
func NewInMemoryBus(logger *zap.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the given event types
func (b *InMemoryBus) Subscribe(handler Handler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
}

// Publish dispatches events to all registered handlers synchronously
func (b *InMemoryBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		b.mu.RLock()
		handlers := b.handlers[evt.EventType()]
		b.mu.RUnlock()

		b.logger.Debug("publishing event",
			zap.String("event_type", evt.EventType()),
			zap.String("event_id", evt.EventID().String()),
			zap.String("tenant_id", evt.TenantID().String()),
			zap.Int("handlers", len(handlers)),
		)

		for _, handler := range handlers {
			if err := b.dispatch(ctx, handler, evt); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (b *InMemoryBus) dispatch(ctx context.Context, handler Handler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", evt.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, evt)
}
