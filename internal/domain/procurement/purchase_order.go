package procurement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// PurchaseOrderStatus represents the lifecycle state of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft             PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusSubmitted         PurchaseOrderStatus = "SUBMITTED"
	PurchaseOrderStatusConfirmed         PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusReceived          PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a known PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSubmitted, PurchaseOrderStatusConfirmed,
		PurchaseOrderStatusPartiallyReceived, PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that permit no further transitions
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderStatusReceived || s == PurchaseOrderStatusCancelled
}

// CanReceive returns true if goods may be received in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusConfirmed || s == PurchaseOrderStatusPartiallyReceived
}

// PurchaseOrderLine is a line item on a purchase order. Lines are mutable only
// while the order is DRAFT; QuantityReceived accumulates across receipts.
type PurchaseOrderLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID           uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// NewPurchaseOrderLine creates a purchase order line
func NewPurchaseOrderLine(orderID, itemID uuid.UUID, quantity, unitCost decimal.Decimal, now time.Time) (*PurchaseOrderLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	return &PurchaseOrderLine{
		ID:               uuid.New(),
		OrderID:          orderID,
		ItemID:           itemID,
		Quantity:         quantity,
		UnitCost:         unitCost,
		LineTotal:        quantity.Mul(unitCost).Round(4),
		QuantityReceived: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Outstanding returns the quantity still to be received on this line
func (l *PurchaseOrderLine) Outstanding() decimal.Decimal {
	return l.Quantity.Sub(l.QuantityReceived)
}

// IsFullyReceived returns true when the full ordered quantity has arrived
func (l *PurchaseOrderLine) IsFullyReceived() bool {
	return l.QuantityReceived.GreaterThanOrEqual(l.Quantity)
}

// addReceived accumulates a receipt; receiving beyond the outstanding
// quantity is rejected with OverReceipt.
func (l *PurchaseOrderLine) addReceived(qty decimal.Decimal, now time.Time) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Receive quantity must be positive")
	}
	if qty.GreaterThan(l.Outstanding()) {
		return shared.ErrOverReceipt
	}
	l.QuantityReceived = l.QuantityReceived.Add(qty)
	l.UpdatedAt = now
	return nil
}

// ReceiveLine is one line of a receiving request
type ReceiveLine struct {
	ItemID       uuid.UUID       `json:"item_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	LotNumber    string          `json:"lot_number,omitempty"`
	SerialNumber string          `json:"serial_number,omitempty"`
}

// ReceiptApplication describes a ledger credit produced by applying a receipt
type ReceiptApplication struct {
	LineID       uuid.UUID
	ItemID       uuid.UUID
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
	LotNumber    string
	SerialNumber string
}

// PurchaseOrder is the aggregate root for a supplier order. It is a state
// machine: DRAFT -> SUBMITTED -> CONFIRMED -> PARTIALLY_RECEIVED -> RECEIVED,
// with CANCELLED reachable from every non-terminal state.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	PONumber     string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_order_tenant_number,priority:2"`
	SupplierID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status       PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Lines        []PurchaseOrderLine `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal     decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingCost decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	SubmittedAt  *time.Time
	ConfirmedAt  *time.Time
	ReceivedAt   *time.Time
	CancelledAt  *time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a purchase order in DRAFT
func NewPurchaseOrder(tenantID uuid.UUID, poNumber string, supplierID uuid.UUID, now time.Time) (*PurchaseOrder, error) {
	if poNumber == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}

	order := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, now),
		PONumber:            poNumber,
		SupplierID:          supplierID,
		Status:              PurchaseOrderStatusDraft,
		Lines:               make([]PurchaseOrderLine, 0),
		Subtotal:            decimal.Zero,
		TaxAmount:           decimal.Zero,
		ShippingCost:        decimal.Zero,
		TotalAmount:         decimal.Zero,
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order, now))
	return order, nil
}

// AddLine adds a line; only legal in DRAFT
func (o *PurchaseOrder) AddLine(itemID uuid.UUID, quantity, unitCost decimal.Decimal, now time.Time) (*PurchaseOrderLine, error) {
	if o.Status != PurchaseOrderStatusDraft {
		return nil, shared.ErrInvalidState
	}
	for _, line := range o.Lines {
		if line.ItemID == itemID {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "Item already on order; remove the line and re-add it")
		}
	}

	line, err := NewPurchaseOrderLine(o.ID, itemID, quantity, unitCost, now)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.recalculateTotals()
	o.touch(now)
	return line, nil
}

// RemoveLine removes a line; only legal in DRAFT
func (o *PurchaseOrder) RemoveLine(lineID uuid.UUID, now time.Time) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.ErrInvalidState
	}
	for idx, line := range o.Lines {
		if line.ID == lineID {
			o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
			o.recalculateTotals()
			o.touch(now)
			return nil
		}
	}
	return shared.ErrNotFound
}

// SetCharges sets order-level tax and shipping; only legal in DRAFT
func (o *PurchaseOrder) SetCharges(taxAmount, shippingCost decimal.Decimal, now time.Time) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.ErrInvalidState
	}
	if taxAmount.IsNegative() || shippingCost.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Charges cannot be negative")
	}
	o.TaxAmount = taxAmount
	o.ShippingCost = shippingCost
	o.recalculateTotals()
	o.touch(now)
	return nil
}

// Submit transitions DRAFT -> SUBMITTED; requires at least one line
func (o *PurchaseOrder) Submit(now time.Time) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.ErrInvalidState
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot submit an order without lines")
	}

	o.Status = PurchaseOrderStatusSubmitted
	o.SubmittedAt = &now
	o.touch(now)

	o.AddDomainEvent(NewPurchaseOrderSubmittedEvent(o, now))
	return nil
}

// Confirm transitions SUBMITTED -> CONFIRMED (supplier acknowledgment)
func (o *PurchaseOrder) Confirm(now time.Time) error {
	if o.Status != PurchaseOrderStatusSubmitted {
		return shared.ErrInvalidState
	}

	o.Status = PurchaseOrderStatusConfirmed
	o.ConfirmedAt = &now
	o.touch(now)

	o.AddDomainEvent(NewPurchaseOrderConfirmedEvent(o, now))
	return nil
}

// ApplyReceipt accumulates received quantities and advances the status. The
// caller applies the returned ledger credits in the same atomic unit; a
// failure on any line leaves the aggregate unusable and must not be persisted.
func (o *PurchaseOrder) ApplyReceipt(lines []ReceiveLine, now time.Time) ([]ReceiptApplication, error) {
	if !o.Status.CanReceive() {
		return nil, shared.ErrInvalidState
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "Receive lines cannot be empty")
	}

	applications := make([]ReceiptApplication, 0, len(lines))
	for _, rl := range lines {
		line := o.lineByItem(rl.ItemID)
		if line == nil {
			return nil, shared.NewDomainError("LINE_NOT_FOUND", fmt.Sprintf("Item %s is not on this order", rl.ItemID))
		}
		if err := line.addReceived(rl.Quantity, now); err != nil {
			return nil, err
		}
		applications = append(applications, ReceiptApplication{
			LineID:       line.ID,
			ItemID:       line.ItemID,
			Quantity:     rl.Quantity,
			UnitCost:     line.UnitCost,
			LotNumber:    rl.LotNumber,
			SerialNumber: rl.SerialNumber,
		})
	}

	if o.allLinesReceived() {
		o.Status = PurchaseOrderStatusReceived
		o.ReceivedAt = &now
	} else {
		o.Status = PurchaseOrderStatusPartiallyReceived
	}
	o.touch(now)

	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o, applications, now))
	return applications, nil
}

// Cancel transitions any non-terminal state to CANCELLED. Receipts already
// applied stay on the ledger; cancellation stops further receiving only.
func (o *PurchaseOrder) Cancel(now time.Time) error {
	if o.Status.IsTerminal() {
		return shared.ErrInvalidState
	}

	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.touch(now)

	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, now))
	return nil
}

// CanDelete returns true when hard removal is permitted (DRAFT only)
func (o *PurchaseOrder) CanDelete() bool {
	return o.Status == PurchaseOrderStatusDraft
}

// LineByID returns a line by its ID, or nil
func (o *PurchaseOrder) LineByID(lineID uuid.UUID) *PurchaseOrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			return &o.Lines[idx]
		}
	}
	return nil
}

func (o *PurchaseOrder) lineByItem(itemID uuid.UUID) *PurchaseOrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ItemID == itemID {
			return &o.Lines[idx]
		}
	}
	return nil
}

func (o *PurchaseOrder) allLinesReceived() bool {
	for _, line := range o.Lines {
		if !line.IsFullyReceived() {
			return false
		}
	}
	return len(o.Lines) > 0
}

func (o *PurchaseOrder) recalculateTotals() {
	subtotal := decimal.Zero
	for _, line := range o.Lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal.Add(o.TaxAmount).Add(o.ShippingCost)
}

func (o *PurchaseOrder) touch(now time.Time) {
	o.UpdatedAt = now
	o.IncrementVersion()
}
