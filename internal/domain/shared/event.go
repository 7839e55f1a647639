package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface implemented by all domain events
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	TenantID() uuid.UUID
	OccurredAt() time.Time
}

// BaseDomainEvent provides common fields for domain events
type BaseDomainEvent struct {
	ID          uuid.UUID `json:"event_id"`
	Type        string    `json:"event_type"`
	Aggregate   uuid.UUID `json:"aggregate_id"`
	Tenant      uuid.UUID `json:"tenant_id"`
	OccurredAtT time.Time `json:"occurred_at"`
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType string, tenantID, aggregateID uuid.UUID, occurredAt time.Time) BaseDomainEvent {
	return BaseDomainEvent{
		ID:          uuid.New(),
		Type:        eventType,
		Aggregate:   aggregateID,
		Tenant:      tenantID,
		OccurredAtT: occurredAt,
	}
}

// EventID returns the unique event ID
func (e BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the event type name
func (e BaseDomainEvent) EventType() string {
	return e.Type
}

// AggregateID returns the ID of the aggregate that emitted the event
func (e BaseDomainEvent) AggregateID() uuid.UUID {
	return e.Aggregate
}

// TenantID returns the tenant the event belongs to
func (e BaseDomainEvent) TenantID() uuid.UUID {
	return e.Tenant
}

// OccurredAt returns when the event occurred
func (e BaseDomainEvent) OccurredAt() time.Time {
	return e.OccurredAtT
}

// EventPublisher publishes domain events after an aggregate change has been
// persisted. Publishing is best effort; failures must not roll back the change.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}
