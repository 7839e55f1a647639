package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// InventoryItem is the catalog identity of a stockable material or part.
// Identity fields are immutable after creation; UnitCost is maintained by item
// administration and read by the ledger, never written by ledger operations.
type InventoryItem struct {
	shared.TenantAggregateRoot
	SKU           string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_inventory_item_tenant_sku,priority:2"`
	Name          string          `gorm:"type:varchar(200);not null"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderPoint  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SerialTracked bool            `gorm:"not null;default:false"`
	LotTracked    bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NewInventoryItem creates a new catalog item
func NewInventoryItem(tenantID uuid.UUID, sku, name string, unitCost decimal.Decimal, now time.Time) (*InventoryItem, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	return &InventoryItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, now),
		SKU:                 sku,
		Name:                name,
		UnitCost:            unitCost,
		ReorderPoint:        decimal.Zero,
		MinStock:            decimal.Zero,
	}, nil
}

// SetUnitCost updates the unit cost (item administration, not a ledger effect)
func (i *InventoryItem) SetUnitCost(cost decimal.Decimal, now time.Time) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	i.UnitCost = cost
	i.UpdatedAt = now
	i.IncrementVersion()
	return nil
}

// SetThresholds updates the reorder point and minimum stock level
func (i *InventoryItem) SetThresholds(reorderPoint, minStock decimal.Decimal, now time.Time) error {
	if reorderPoint.IsNegative() || minStock.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Thresholds cannot be negative")
	}
	i.ReorderPoint = reorderPoint
	i.MinStock = minStock
	i.UpdatedAt = now
	i.IncrementVersion()
	return nil
}

// ValidateTracking checks that a stock key carries the lot/serial identifiers
// this item's tracking mode requires.
func (i *InventoryItem) ValidateTracking(key StockKey) error {
	if i.LotTracked && key.LotNumber == "" {
		return shared.NewDomainError("LOT_REQUIRED", "Item is lot tracked; a lot number is required")
	}
	if i.SerialTracked && key.SerialNumber == "" {
		return shared.NewDomainError("SERIAL_REQUIRED", "Item is serial tracked; a serial number is required")
	}
	if !i.LotTracked && key.LotNumber != "" {
		return shared.NewDomainError("LOT_NOT_TRACKED", "Item is not lot tracked; lot number must be empty")
	}
	if !i.SerialTracked && key.SerialNumber != "" {
		return shared.NewDomainError("SERIAL_NOT_TRACKED", "Item is not serial tracked; serial number must be empty")
	}
	return nil
}
