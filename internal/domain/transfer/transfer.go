package transfer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// TransferStatus represents the lifecycle state of a stock transfer
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusInTransit TransferStatus = "IN_TRANSIT"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// IsValid checks if the status is a known TransferStatus
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusInTransit, TransferStatusCompleted, TransferStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TransferStatus
func (s TransferStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that permit no further transitions
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusCancelled
}

// TransferLine is one item moving between stock points. Requested is fixed at
// creation; Shipped and Received are stamped by the Ship and Receive steps.
type TransferLine struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	TransferID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID            uuid.UUID       `gorm:"type:uuid;not null"`
	LotNumber         string          `gorm:"type:varchar(100);not null;default:''"`
	SerialNumber      string          `gorm:"type:varchar(100);not null;default:''"`
	QuantityRequested decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityShipped   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityReceived  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransferLine) TableName() string {
	return "transfer_lines"
}

// NewTransferLine creates a transfer line
func NewTransferLine(transferID, itemID uuid.UUID, qty decimal.Decimal, lot, serial string, now time.Time) (*TransferLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Transfer quantity must be positive")
	}

	return &TransferLine{
		ID:                uuid.New(),
		TransferID:        transferID,
		ItemID:            itemID,
		LotNumber:         lot,
		SerialNumber:      serial,
		QuantityRequested: qty,
		QuantityShipped:   decimal.Zero,
		QuantityReceived:  decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ShipLine overrides the shipped quantity for one line of a Ship request
type ShipLine struct {
	ItemID       uuid.UUID       `json:"item_id"`
	LotNumber    string          `json:"lot_number,omitempty"`
	SerialNumber string          `json:"serial_number,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// ReceiveLine overrides the received quantity for one line of a Receive request
type ReceiveLine struct {
	ItemID       uuid.UUID       `json:"item_id"`
	LotNumber    string          `json:"lot_number,omitempty"`
	SerialNumber string          `json:"serial_number,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// LedgerEffect describes one ledger mutation a transfer step requires. The
// application layer applies effects in the same atomic unit as the aggregate
// save.
type LedgerEffect struct {
	LineID       uuid.UUID
	ItemID       uuid.UUID
	LocationID   uuid.UUID
	LotNumber    string
	SerialNumber string
	Quantity     decimal.Decimal
}

// Transfer moves stock between two locations of the same tenant. Create
// persists requested quantities only and touches no ledger row; Ship debits
// the source, Receive credits the destination, and Cancel of an in-transit
// transfer compensates by crediting the shipped quantities back.
type Transfer struct {
	shared.TenantAggregateRoot
	TransferNumber string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_transfer_tenant_number,priority:2"`
	FromLocationID uuid.UUID      `gorm:"type:uuid;not null;index"`
	ToLocationID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status         TransferStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Lines          []TransferLine `gorm:"foreignKey:TransferID;references:ID"`
	Notes          string         `gorm:"type:text"`
	ShippedAt      *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
}

// TableName returns the table name for GORM
func (Transfer) TableName() string {
	return "stock_transfers"
}

// NewTransfer creates a transfer in PENDING. Source and destination must
// differ.
func NewTransfer(tenantID uuid.UUID, transferNumber string, fromLocationID, toLocationID uuid.UUID, now time.Time) (*Transfer, error) {
	if transferNumber == "" {
		return nil, shared.NewDomainError("INVALID_TRANSFER_NUMBER", "Transfer number cannot be empty")
	}
	if fromLocationID == uuid.Nil || toLocationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Both locations are required")
	}
	if fromLocationID == toLocationID {
		return nil, shared.NewDomainError("SAME_LOCATION", "Source and destination must differ")
	}

	t := &Transfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, now),
		TransferNumber:      transferNumber,
		FromLocationID:      fromLocationID,
		ToLocationID:        toLocationID,
		Status:              TransferStatusPending,
		Lines:               make([]TransferLine, 0),
	}

	t.AddDomainEvent(NewTransferCreatedEvent(t, now))
	return t, nil
}

// AddLine adds a line; only legal in PENDING
func (t *Transfer) AddLine(itemID uuid.UUID, qty decimal.Decimal, lot, serial string, now time.Time) (*TransferLine, error) {
	if t.Status != TransferStatusPending {
		return nil, shared.ErrInvalidState
	}

	line, err := NewTransferLine(t.ID, itemID, qty, lot, serial, now)
	if err != nil {
		return nil, err
	}

	t.Lines = append(t.Lines, *line)
	t.touch(now)
	return line, nil
}

// Ship transitions PENDING -> IN_TRANSIT. Lines without an override ship the
// full requested quantity; an override may ship more or less than requested,
// the source ledger's availability check is the only quantity bound. The
// returned effects debit the source.
func (t *Transfer) Ship(overrides []ShipLine, now time.Time) ([]LedgerEffect, error) {
	if t.Status != TransferStatusPending {
		return nil, shared.ErrInvalidState
	}
	if len(t.Lines) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "Cannot ship a transfer without lines")
	}

	effects := make([]LedgerEffect, 0, len(t.Lines))
	for idx := range t.Lines {
		line := &t.Lines[idx]
		qty := line.QuantityRequested
		if o := findOverride(overrides, line); o != nil {
			if o.Quantity.LessThanOrEqual(decimal.Zero) {
				return nil, shared.NewDomainError("INVALID_QUANTITY",
					fmt.Sprintf("Shipped quantity for item %s must be positive", line.ItemID))
			}
			qty = o.Quantity
		}
		line.QuantityShipped = qty
		line.UpdatedAt = now
		effects = append(effects, LedgerEffect{
			LineID:       line.ID,
			ItemID:       line.ItemID,
			LocationID:   t.FromLocationID,
			LotNumber:    line.LotNumber,
			SerialNumber: line.SerialNumber,
			Quantity:     qty,
		})
	}

	t.Status = TransferStatusInTransit
	t.ShippedAt = &now
	t.touch(now)

	t.AddDomainEvent(NewTransferShippedEvent(t, now))
	return effects, nil
}

// Receive transitions IN_TRANSIT -> COMPLETED. Lines without an override
// receive the full shipped quantity. The returned effects credit the
// destination.
func (t *Transfer) Receive(overrides []ReceiveLine, now time.Time) ([]LedgerEffect, error) {
	if t.Status != TransferStatusInTransit {
		return nil, shared.ErrInvalidState
	}

	effects := make([]LedgerEffect, 0, len(t.Lines))
	for idx := range t.Lines {
		line := &t.Lines[idx]
		qty := line.QuantityShipped
		if o := findReceiveOverride(overrides, line); o != nil {
			if o.Quantity.LessThanOrEqual(decimal.Zero) || o.Quantity.GreaterThan(line.QuantityShipped) {
				return nil, shared.NewDomainError("INVALID_QUANTITY",
					fmt.Sprintf("Received quantity for item %s must be in (0, shipped]", line.ItemID))
			}
			qty = o.Quantity
		}
		line.QuantityReceived = qty
		line.UpdatedAt = now
		if qty.IsPositive() {
			effects = append(effects, LedgerEffect{
				LineID:       line.ID,
				ItemID:       line.ItemID,
				LocationID:   t.ToLocationID,
				LotNumber:    line.LotNumber,
				SerialNumber: line.SerialNumber,
				Quantity:     qty,
			})
		}
	}

	t.Status = TransferStatusCompleted
	t.CompletedAt = &now
	t.touch(now)

	t.AddDomainEvent(NewTransferCompletedEvent(t, now))
	return effects, nil
}

// Cancel transitions to CANCELLED. From PENDING nothing shipped, so there is
// no reversal; from IN_TRANSIT the returned effects credit the shipped
// quantities back to the source, undoing the Ship debit. Terminal states
// reject.
func (t *Transfer) Cancel(now time.Time) ([]LedgerEffect, error) {
	priorStatus := t.Status

	var effects []LedgerEffect
	switch t.Status {
	case TransferStatusPending:
		// no ledger effect before shipment
	case TransferStatusInTransit:
		effects = make([]LedgerEffect, 0, len(t.Lines))
		for _, line := range t.Lines {
			if line.QuantityShipped.IsPositive() {
				effects = append(effects, LedgerEffect{
					LineID:       line.ID,
					ItemID:       line.ItemID,
					LocationID:   t.FromLocationID,
					LotNumber:    line.LotNumber,
					SerialNumber: line.SerialNumber,
					Quantity:     line.QuantityShipped,
				})
			}
		}
	default:
		return nil, shared.ErrInvalidState
	}

	t.Status = TransferStatusCancelled
	t.CancelledAt = &now
	t.touch(now)

	t.AddDomainEvent(NewTransferCancelledEvent(t, priorStatus, now))
	return effects, nil
}

func findOverride(overrides []ShipLine, line *TransferLine) *ShipLine {
	for idx := range overrides {
		o := &overrides[idx]
		if o.ItemID == line.ItemID && o.LotNumber == line.LotNumber && o.SerialNumber == line.SerialNumber {
			return o
		}
	}
	return nil
}

func findReceiveOverride(overrides []ReceiveLine, line *TransferLine) *ReceiveLine {
	for idx := range overrides {
		o := &overrides[idx]
		if o.ItemID == line.ItemID && o.LotNumber == line.LotNumber && o.SerialNumber == line.SerialNumber {
			return o
		}
	}
	return nil
}

func (t *Transfer) touch(now time.Time) {
	t.UpdatedAt = now
	t.IncrementVersion()
}
