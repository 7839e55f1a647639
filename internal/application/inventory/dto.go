package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
)

// StockKeyInput identifies a ledger row in a request payload
type StockKeyInput struct {
	ItemID       uuid.UUID `json:"item_id" binding:"required"`
	LocationID   uuid.UUID `json:"location_id" binding:"required"`
	LotNumber    string    `json:"lot_number"`
	SerialNumber string    `json:"serial_number"`
}

// Key converts the input into a domain stock key
func (i StockKeyInput) Key() inventory.StockKey {
	return inventory.StockKey{
		ItemID:       i.ItemID,
		LocationID:   i.LocationID,
		LotNumber:    i.LotNumber,
		SerialNumber: i.SerialNumber,
	}
}

// AdjustStockCommand applies a signed manual adjustment
type AdjustStockCommand struct {
	StockKeyInput
	Delta  decimal.Decimal `json:"delta" binding:"required"`
	Reason string          `json:"reason"`
}

// ReserveStockCommand places a hold on available stock
type ReserveStockCommand struct {
	StockKeyInput
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Reference string          `json:"reference"`
}

// ReleaseStockCommand returns a hold to available stock
type ReleaseStockCommand struct {
	StockKeyInput
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Reference string          `json:"reference"`
}

// CountStockCommand records a physical count for a ledger row
type CountStockCommand struct {
	StockKeyInput
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
	CountReference  string          `json:"count_reference"`
}

// RecordUsageCommand consumes stock against a job
type RecordUsageCommand struct {
	StockKeyInput
	JobID    uuid.UUID       `json:"job_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// ReverseUsageCommand reverses a previously recorded usage
type ReverseUsageCommand struct {
	UsageID uuid.UUID `json:"usage_id" binding:"required"`
	Reason  string    `json:"reason"`
}

// StockLevelView is the read model for one ledger row
type StockLevelView struct {
	ID                uuid.UUID       `json:"id"`
	ItemID            uuid.UUID       `json:"item_id"`
	LocationID        uuid.UUID       `json:"location_id"`
	LotNumber         string          `json:"lot_number,omitempty"`
	SerialNumber      string          `json:"serial_number,omitempty"`
	QuantityOnHand    decimal.Decimal `json:"quantity_on_hand"`
	QuantityReserved  decimal.Decimal `json:"quantity_reserved"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
}

// NewStockLevelView builds the read model from a ledger row
func NewStockLevelView(level *inventory.StockLevel) StockLevelView {
	return StockLevelView{
		ID:                level.ID,
		ItemID:            level.ItemID,
		LocationID:        level.LocationID,
		LotNumber:         level.LotNumber,
		SerialNumber:      level.SerialNumber,
		QuantityOnHand:    level.QuantityOnHand,
		QuantityReserved:  level.QuantityReserved,
		QuantityAvailable: level.QuantityAvailable,
	}
}

// CountResultView is the outcome of a physical count
type CountResultView struct {
	StockLevelView
	Variance decimal.Decimal `json:"variance"`
}

// MaterialUsageView is the read model for a usage record
type MaterialUsageView struct {
	ID           uuid.UUID       `json:"id"`
	JobID        uuid.UUID       `json:"job_id"`
	ItemID       uuid.UUID       `json:"item_id"`
	LocationID   uuid.UUID       `json:"location_id"`
	LotNumber    string          `json:"lot_number,omitempty"`
	SerialNumber string          `json:"serial_number,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Reversed     bool            `json:"reversed"`
}

// NewMaterialUsageView builds the read model from a usage record
func NewMaterialUsageView(usage *inventory.MaterialUsage) MaterialUsageView {
	return MaterialUsageView{
		ID:           usage.ID,
		JobID:        usage.JobID,
		ItemID:       usage.ItemID,
		LocationID:   usage.LocationID,
		LotNumber:    usage.LotNumber,
		SerialNumber: usage.SerialNumber,
		Quantity:     usage.Quantity,
		UnitCost:     usage.UnitCost,
		TotalCost:    usage.TotalCost,
		Reversed:     usage.Reversed,
	}
}
