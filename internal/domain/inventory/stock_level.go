package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// StockKey identifies one ledger row: a distinct trackable unit of stock at a
// stock point. Untracked items use empty lot and serial numbers.
type StockKey struct {
	ItemID       uuid.UUID
	LocationID   uuid.UUID
	LotNumber    string
	SerialNumber string
}

// StockLevel is the per-(item, location, lot, serial) ledger row. It is the
// aggregate root for stock arithmetic and owns the invariant
//
//	QuantityAvailable == QuantityOnHand - QuantityReserved, both >= 0
//
// which must hold after every operation. Rows are created lazily on first
// stock movement and never hold negative quantities.
type StockLevel struct {
	shared.TenantAggregateRoot
	ItemID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_key,priority:2"`
	LocationID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_key,priority:3"`
	LotNumber         string          `gorm:"type:varchar(100);not null;default:'';uniqueIndex:idx_stock_level_key,priority:4"`
	SerialNumber      string          `gorm:"type:varchar(100);not null;default:'';uniqueIndex:idx_stock_level_key,priority:5"`
	QuantityOnHand    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityReserved  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityAvailable decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "inventory_levels"
}

// NewStockLevel creates an all-zero ledger row for a stock key
func NewStockLevel(tenantID uuid.UUID, key StockKey, now time.Time) (*StockLevel, error) {
	if key.ItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if key.LocationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}

	return &StockLevel{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, now),
		ItemID:              key.ItemID,
		LocationID:          key.LocationID,
		LotNumber:           key.LotNumber,
		SerialNumber:        key.SerialNumber,
		QuantityOnHand:      decimal.Zero,
		QuantityReserved:    decimal.Zero,
		QuantityAvailable:   decimal.Zero,
	}, nil
}

// Key returns the stock key of this row
func (s *StockLevel) Key() StockKey {
	return StockKey{
		ItemID:       s.ItemID,
		LocationID:   s.LocationID,
		LotNumber:    s.LotNumber,
		SerialNumber: s.SerialNumber,
	}
}

// Adjust applies a signed delta to on-hand and available quantities.
// Rejects a delta that would drive on-hand negative, or that would consume
// quantity currently held by reservations.
func (s *StockLevel) Adjust(delta decimal.Decimal, now time.Time) error {
	if delta.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}

	newOnHand := s.QuantityOnHand.Add(delta)
	if newOnHand.IsNegative() {
		return shared.ErrInvalidAdjustment
	}
	newAvailable := s.QuantityAvailable.Add(delta)
	if newAvailable.IsNegative() {
		return shared.ErrInsufficientStock
	}

	s.QuantityOnHand = newOnHand
	s.QuantityAvailable = newAvailable
	s.touch(now)

	s.AddDomainEvent(NewStockAdjustedEvent(s, delta, now))
	return nil
}

// Reserve places a hold on available stock without removing it from on-hand
func (s *StockLevel) Reserve(qty decimal.Decimal, now time.Time) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if s.QuantityAvailable.LessThan(qty) {
		return shared.ErrInsufficientStock
	}

	s.QuantityReserved = s.QuantityReserved.Add(qty)
	s.QuantityAvailable = s.QuantityAvailable.Sub(qty)
	s.touch(now)

	s.AddDomainEvent(NewStockReservedEvent(s, qty, now))
	return nil
}

// Release returns previously reserved stock to available
func (s *StockLevel) Release(qty decimal.Decimal, now time.Time) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	if s.QuantityReserved.LessThan(qty) {
		return shared.ErrInvalidAdjustment
	}

	s.QuantityReserved = s.QuantityReserved.Sub(qty)
	s.QuantityAvailable = s.QuantityAvailable.Add(qty)
	s.touch(now)

	s.AddDomainEvent(NewStockReleasedEvent(s, qty, now))
	return nil
}

// RecordCount sets on-hand to a physically counted quantity and returns the
// signed variance against the previous on-hand for audit. A count below the
// reserved quantity would force available negative; that anomaly is rejected,
// never clamped.
func (s *StockLevel) RecordCount(countedQty decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if countedQty.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}
	if countedQty.LessThan(s.QuantityReserved) {
		return decimal.Zero, shared.ErrInvalidAdjustment
	}

	variance := countedQty.Sub(s.QuantityOnHand)
	s.QuantityOnHand = countedQty
	s.QuantityAvailable = countedQty.Sub(s.QuantityReserved)
	s.touch(now)

	s.AddDomainEvent(NewStockCountedEvent(s, variance, now))
	return variance, nil
}

// Debit removes stock entirely (consumption), decrementing on-hand and
// available together. Unlike Reserve, debited stock is gone, not held.
func (s *StockLevel) Debit(qty decimal.Decimal, now time.Time) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Debit quantity must be positive")
	}
	if s.QuantityAvailable.LessThan(qty) {
		return shared.ErrInsufficientStock
	}

	s.QuantityOnHand = s.QuantityOnHand.Sub(qty)
	s.QuantityAvailable = s.QuantityAvailable.Sub(qty)
	s.touch(now)

	s.AddDomainEvent(NewStockDebitedEvent(s, qty, now))
	return nil
}

// CheckInvariant verifies the ledger row arithmetic. A violation indicates a
// bug, not a business error.
func (s *StockLevel) CheckInvariant() error {
	if !s.QuantityAvailable.Equal(s.QuantityOnHand.Sub(s.QuantityReserved)) {
		return shared.NewDomainError("LEDGER_INVARIANT_VIOLATED", "available != on-hand - reserved")
	}
	if s.QuantityOnHand.IsNegative() || s.QuantityAvailable.IsNegative() || s.QuantityReserved.IsNegative() {
		return shared.NewDomainError("LEDGER_INVARIANT_VIOLATED", "negative ledger quantity")
	}
	return nil
}

// IsBelowReorderPoint reports whether on-hand has fallen to or below the
// item's reorder point. Zero reorder points never trigger.
func (s *StockLevel) IsBelowReorderPoint(item *InventoryItem) bool {
	return item.ReorderPoint.GreaterThan(decimal.Zero) && s.QuantityOnHand.LessThanOrEqual(item.ReorderPoint)
}

func (s *StockLevel) touch(now time.Time) {
	s.UpdatedAt = now
	s.IncrementVersion()
}
