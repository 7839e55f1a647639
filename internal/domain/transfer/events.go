package transfer

import (
	"time"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// Event type names for the transfer context
const (
	EventTypeTransferCreated   = "transfer.created"
	EventTypeTransferShipped   = "transfer.shipped"
	EventTypeTransferCompleted = "transfer.completed"
	EventTypeTransferCancelled = "transfer.cancelled"
)

// TransferCreatedEvent is emitted when a transfer enters PENDING
type TransferCreatedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
	FromLocationID string `json:"from_location_id"`
	ToLocationID   string `json:"to_location_id"`
}

// NewTransferCreatedEvent creates a TransferCreatedEvent
func NewTransferCreatedEvent(t *Transfer, now time.Time) *TransferCreatedEvent {
	return &TransferCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCreated, t.TenantID, t.ID, now),
		TransferNumber:  t.TransferNumber,
		FromLocationID:  t.FromLocationID.String(),
		ToLocationID:    t.ToLocationID.String(),
	}
}

// TransferShippedEvent is emitted on PENDING -> IN_TRANSIT
type TransferShippedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
}

// NewTransferShippedEvent creates a TransferShippedEvent
func NewTransferShippedEvent(t *Transfer, now time.Time) *TransferShippedEvent {
	return &TransferShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferShipped, t.TenantID, t.ID, now),
		TransferNumber:  t.TransferNumber,
	}
}

// TransferCompletedEvent is emitted on IN_TRANSIT -> COMPLETED
type TransferCompletedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
}

// NewTransferCompletedEvent creates a TransferCompletedEvent
func NewTransferCompletedEvent(t *Transfer, now time.Time) *TransferCompletedEvent {
	return &TransferCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCompleted, t.TenantID, t.ID, now),
		TransferNumber:  t.TransferNumber,
	}
}

// TransferCancelledEvent is emitted when a transfer is cancelled; PriorStatus
// records which compensation ran
type TransferCancelledEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
	PriorStatus    string `json:"prior_status"`
}

// NewTransferCancelledEvent creates a TransferCancelledEvent
func NewTransferCancelledEvent(t *Transfer, priorStatus TransferStatus, now time.Time) *TransferCancelledEvent {
	return &TransferCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCancelled, t.TenantID, t.ID, now),
		TransferNumber:  t.TransferNumber,
		PriorStatus:     priorStatus.String(),
	}
}
