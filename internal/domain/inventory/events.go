package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// Event type names for the inventory context
const (
	EventTypeStockAdjusted          = "inventory.stock_adjusted"
	EventTypeStockReserved          = "inventory.stock_reserved"
	EventTypeStockReleased          = "inventory.stock_released"
	EventTypeStockCounted           = "inventory.stock_counted"
	EventTypeStockDebited           = "inventory.stock_debited"
	EventTypeStockBelowReorderPoint = "inventory.stock_below_reorder_point"
)

// StockAdjustedEvent is emitted when a signed adjustment is applied to a row
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	Key             StockKey        `json:"key"`
	Delta           decimal.Decimal `json:"delta"`
	ResultingOnHand decimal.Decimal `json:"resulting_on_hand"`
}

// NewStockAdjustedEvent creates a StockAdjustedEvent
func NewStockAdjustedEvent(level *StockLevel, delta decimal.Decimal, now time.Time) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, level.TenantID, level.ID, now),
		Key:             level.Key(),
		Delta:           delta,
		ResultingOnHand: level.QuantityOnHand,
	}
}

// StockReservedEvent is emitted when available stock is placed on hold
type StockReservedEvent struct {
	shared.BaseDomainEvent
	Key               StockKey        `json:"key"`
	Quantity          decimal.Decimal `json:"quantity"`
	ResultingReserved decimal.Decimal `json:"resulting_reserved"`
}

// NewStockReservedEvent creates a StockReservedEvent
func NewStockReservedEvent(level *StockLevel, qty decimal.Decimal, now time.Time) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeStockReserved, level.TenantID, level.ID, now),
		Key:               level.Key(),
		Quantity:          qty,
		ResultingReserved: level.QuantityReserved,
	}
}

// StockReleasedEvent is emitted when a hold is returned to available stock
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	Key      StockKey        `json:"key"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewStockReleasedEvent creates a StockReleasedEvent
func NewStockReleasedEvent(level *StockLevel, qty decimal.Decimal, now time.Time) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, level.TenantID, level.ID, now),
		Key:             level.Key(),
		Quantity:        qty,
	}
}

// StockCountedEvent is emitted when a physical count corrects a row
type StockCountedEvent struct {
	shared.BaseDomainEvent
	Key       StockKey        `json:"key"`
	Variance  decimal.Decimal `json:"variance"`
	NewOnHand decimal.Decimal `json:"new_on_hand"`
}

// NewStockCountedEvent creates a StockCountedEvent
func NewStockCountedEvent(level *StockLevel, variance decimal.Decimal, now time.Time) *StockCountedEvent {
	return &StockCountedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCounted, level.TenantID, level.ID, now),
		Key:             level.Key(),
		Variance:        variance,
		NewOnHand:       level.QuantityOnHand,
	}
}

// StockDebitedEvent is emitted when stock is consumed entirely
type StockDebitedEvent struct {
	shared.BaseDomainEvent
	Key      StockKey        `json:"key"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewStockDebitedEvent creates a StockDebitedEvent
func NewStockDebitedEvent(level *StockLevel, qty decimal.Decimal, now time.Time) *StockDebitedEvent {
	return &StockDebitedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDebited, level.TenantID, level.ID, now),
		Key:             level.Key(),
		Quantity:        qty,
	}
}

// StockBelowReorderPointEvent is emitted when on-hand falls to or below the
// item's reorder point after a debit or negative adjustment
type StockBelowReorderPointEvent struct {
	shared.BaseDomainEvent
	Key          StockKey        `json:"key"`
	OnHand       decimal.Decimal `json:"on_hand"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
}

// NewStockBelowReorderPointEvent creates a StockBelowReorderPointEvent
func NewStockBelowReorderPointEvent(level *StockLevel, item *InventoryItem, now time.Time) *StockBelowReorderPointEvent {
	return &StockBelowReorderPointEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowReorderPoint, level.TenantID, level.ID, now),
		Key:             level.Key(),
		OnHand:          level.QuantityOnHand,
		ReorderPoint:    item.ReorderPoint,
	}
}
