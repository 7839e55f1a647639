package procurement

import (
	"time"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// Event type names for the procurement context
const (
	EventTypePurchaseOrderCreated   = "procurement.purchase_order_created"
	EventTypePurchaseOrderSubmitted = "procurement.purchase_order_submitted"
	EventTypePurchaseOrderConfirmed = "procurement.purchase_order_confirmed"
	EventTypePurchaseOrderReceived  = "procurement.purchase_order_received"
	EventTypePurchaseOrderCancelled = "procurement.purchase_order_cancelled"
)

// PurchaseOrderCreatedEvent is emitted when a draft order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	PONumber   string `json:"po_number"`
	SupplierID string `json:"supplier_id"`
}

// NewPurchaseOrderCreatedEvent creates a PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder, now time.Time) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, order.TenantID, order.ID, now),
		PONumber:        order.PONumber,
		SupplierID:      order.SupplierID.String(),
	}
}

// PurchaseOrderSubmittedEvent is emitted on DRAFT -> SUBMITTED
type PurchaseOrderSubmittedEvent struct {
	shared.BaseDomainEvent
	PONumber    string `json:"po_number"`
	TotalAmount string `json:"total_amount"`
}

// NewPurchaseOrderSubmittedEvent creates a PurchaseOrderSubmittedEvent
func NewPurchaseOrderSubmittedEvent(order *PurchaseOrder, now time.Time) *PurchaseOrderSubmittedEvent {
	return &PurchaseOrderSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderSubmitted, order.TenantID, order.ID, now),
		PONumber:        order.PONumber,
		TotalAmount:     order.TotalAmount.String(),
	}
}

// PurchaseOrderConfirmedEvent is emitted on SUBMITTED -> CONFIRMED
type PurchaseOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	PONumber string `json:"po_number"`
}

// NewPurchaseOrderConfirmedEvent creates a PurchaseOrderConfirmedEvent
func NewPurchaseOrderConfirmedEvent(order *PurchaseOrder, now time.Time) *PurchaseOrderConfirmedEvent {
	return &PurchaseOrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderConfirmed, order.TenantID, order.ID, now),
		PONumber:        order.PONumber,
	}
}

// PurchaseOrderReceivedEvent is emitted when a receipt is applied, whether the
// order ends PARTIALLY_RECEIVED or RECEIVED
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	PONumber     string               `json:"po_number"`
	Status       string               `json:"status"`
	Applications []ReceiptApplication `json:"applications"`
}

// NewPurchaseOrderReceivedEvent creates a PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(order *PurchaseOrder, applications []ReceiptApplication, now time.Time) *PurchaseOrderReceivedEvent {
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, order.TenantID, order.ID, now),
		PONumber:        order.PONumber,
		Status:          order.Status.String(),
		Applications:    applications,
	}
}

// PurchaseOrderCancelledEvent is emitted when an order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	PONumber string `json:"po_number"`
}

// NewPurchaseOrderCancelledEvent creates a PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(order *PurchaseOrder, now time.Time) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, order.TenantID, order.ID, now),
		PONumber:        order.PONumber,
	}
}
