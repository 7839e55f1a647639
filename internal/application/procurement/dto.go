package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/procurement"
)

// OrderLineInput is one requested line on a new purchase order
type OrderLineInput struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderCommand creates a draft order
type CreatePurchaseOrderCommand struct {
	SupplierID   uuid.UUID        `json:"supplier_id" binding:"required"`
	Lines        []OrderLineInput `json:"lines" binding:"required,min=1,dive"`
	TaxAmount    decimal.Decimal  `json:"tax_amount"`
	ShippingCost decimal.Decimal  `json:"shipping_cost"`
}

// ReceiveOrderCommand applies a full or partial receipt to a confirmed order
type ReceiveOrderCommand struct {
	OrderID    uuid.UUID                 `json:"order_id" binding:"required"`
	LocationID uuid.UUID                 `json:"location_id" binding:"required"`
	Lines      []procurement.ReceiveLine `json:"lines" binding:"required,min=1,dive"`
}

// PurchaseOrderLineView is the read model for an order line
type PurchaseOrderLineView struct {
	ID               uuid.UUID       `json:"id"`
	ItemID           uuid.UUID       `json:"item_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	LineTotal        decimal.Decimal `json:"line_total"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
}

// PurchaseOrderView is the read model for an order
type PurchaseOrderView struct {
	ID           uuid.UUID               `json:"id"`
	PONumber     string                  `json:"po_number"`
	SupplierID   uuid.UUID               `json:"supplier_id"`
	Status       string                  `json:"status"`
	Lines        []PurchaseOrderLineView `json:"lines"`
	Subtotal     decimal.Decimal         `json:"subtotal"`
	TaxAmount    decimal.Decimal         `json:"tax_amount"`
	ShippingCost decimal.Decimal         `json:"shipping_cost"`
	TotalAmount  decimal.Decimal         `json:"total_amount"`
	CreatedAt    time.Time               `json:"created_at"`
	ReceivedAt   *time.Time              `json:"received_at,omitempty"`
}

// NewPurchaseOrderView builds the read model from an order
func NewPurchaseOrderView(order *procurement.PurchaseOrder) PurchaseOrderView {
	lines := make([]PurchaseOrderLineView, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, PurchaseOrderLineView{
			ID:               line.ID,
			ItemID:           line.ItemID,
			Quantity:         line.Quantity,
			UnitCost:         line.UnitCost,
			LineTotal:        line.LineTotal,
			QuantityReceived: line.QuantityReceived,
		})
	}
	return PurchaseOrderView{
		ID:           order.ID,
		PONumber:     order.PONumber,
		SupplierID:   order.SupplierID,
		Status:       order.Status.String(),
		Lines:        lines,
		Subtotal:     order.Subtotal,
		TaxAmount:    order.TaxAmount,
		ShippingCost: order.ShippingCost,
		TotalAmount:  order.TotalAmount,
		CreatedAt:    order.CreatedAt,
		ReceivedAt:   order.ReceivedAt,
	}
}
