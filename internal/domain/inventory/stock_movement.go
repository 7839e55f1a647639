package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// MovementType classifies a ledger mutation for the audit trail
type MovementType string

const (
	// MovementTypeAdjustment is a manual signed adjustment
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	// MovementTypeReserve is a hold placed on available stock
	MovementTypeReserve MovementType = "RESERVE"
	// MovementTypeRelease is a hold returned to available stock
	MovementTypeRelease MovementType = "RELEASE"
	// MovementTypeCount is a physical count correction
	MovementTypeCount MovementType = "COUNT"
	// MovementTypeReceipt is stock received against a purchase order
	MovementTypeReceipt MovementType = "RECEIPT"
	// MovementTypeTransferOut is stock debited at a transfer source
	MovementTypeTransferOut MovementType = "TRANSFER_OUT"
	// MovementTypeTransferIn is stock credited at a transfer destination
	MovementTypeTransferIn MovementType = "TRANSFER_IN"
	// MovementTypeConsumption is stock consumed against a job
	MovementTypeConsumption MovementType = "CONSUMPTION"
	// MovementTypeReversal is a compensating credit (usage reversal, transfer cancel)
	MovementTypeReversal MovementType = "REVERSAL"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is a known value
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeAdjustment, MovementTypeReserve, MovementTypeRelease,
		MovementTypeCount, MovementTypeReceipt, MovementTypeTransferOut,
		MovementTypeTransferIn, MovementTypeConsumption, MovementTypeReversal:
		return true
	}
	return false
}

// MovementSource names the document that caused a ledger mutation
type MovementSource struct {
	Type string
	ID   string
}

// Well-known movement source types
const (
	SourceTypeManual        = "MANUAL"
	SourceTypePurchaseOrder = "PURCHASE_ORDER"
	SourceTypeTransfer      = "TRANSFER"
	SourceTypeMaterialUsage = "MATERIAL_USAGE"
	SourceTypeStockCount    = "STOCK_COUNT"
)

// StockMovement is an immutable audit record of one ledger mutation. Once
// created it is never updated; corrections append new movements.
type StockMovement struct {
	shared.BaseEntity
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_tenant_time,priority:1"`
	StockLevelID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	LocationID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type              MovementType    `gorm:"type:varchar(20);not null"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"` // signed for adjustments/counts
	ResultingOnHand   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ResultingReserved decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SourceType        string          `gorm:"type:varchar(50);not null;index:idx_stock_movement_src"`
	SourceID          string          `gorm:"type:varchar(100);not null;index:idx_stock_movement_src"`
	OccurredAt        time.Time       `gorm:"not null;index:idx_stock_movement_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement records one mutation of a ledger row
func NewStockMovement(level *StockLevel, movType MovementType, qty decimal.Decimal, source MovementSource, now time.Time) (*StockMovement, error) {
	if !movType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown movement type")
	}
	if source.Type == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Movement source type is required")
	}

	return &StockMovement{
		BaseEntity:        shared.NewBaseEntity(now),
		TenantID:          level.TenantID,
		StockLevelID:      level.ID,
		ItemID:            level.ItemID,
		LocationID:        level.LocationID,
		Type:              movType,
		Quantity:          qty,
		ResultingOnHand:   level.QuantityOnHand,
		ResultingReserved: level.QuantityReserved,
		SourceType:        source.Type,
		SourceID:          source.ID,
		OccurredAt:        now,
	}, nil
}
