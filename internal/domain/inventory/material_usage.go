package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// MaterialUsage records consumption of stock against a job. The row is
// immutable once created; a reversal flags it and credits the stock back
// through a compensating ledger movement, it never mutates history.
type MaterialUsage struct {
	shared.TenantAggregateRoot
	JobID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	LocationID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LotNumber    string          `gorm:"type:varchar(100);not null;default:''"`
	SerialNumber string          `gorm:"type:varchar(100);not null;default:''"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UsedAt       time.Time       `gorm:"not null"`
	Reversed     bool            `gorm:"not null;default:false"`
	ReversedAt   *time.Time
}

// TableName returns the table name for GORM
func (MaterialUsage) TableName() string {
	return "material_usages"
}

// NewMaterialUsage creates a usage record; total cost is derived from the
// item's unit cost at recording time.
func NewMaterialUsage(tenantID, jobID uuid.UUID, key StockKey, qty, unitCost decimal.Decimal, now time.Time) (*MaterialUsage, error) {
	if jobID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_JOB", "Job ID cannot be empty")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Usage quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	return &MaterialUsage{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, now),
		JobID:               jobID,
		ItemID:              key.ItemID,
		LocationID:          key.LocationID,
		LotNumber:           key.LotNumber,
		SerialNumber:        key.SerialNumber,
		Quantity:            qty,
		UnitCost:            unitCost,
		TotalCost:           qty.Mul(unitCost).Round(4),
		UsedAt:              now,
	}, nil
}

// Key returns the stock key this usage debited
func (u *MaterialUsage) Key() StockKey {
	return StockKey{
		ItemID:       u.ItemID,
		LocationID:   u.LocationID,
		LotNumber:    u.LotNumber,
		SerialNumber: u.SerialNumber,
	}
}

// Reverse flags the usage as reversed. A usage can be reversed exactly once.
func (u *MaterialUsage) Reverse(now time.Time) error {
	if u.Reversed {
		return shared.ErrInvalidState
	}
	u.Reversed = true
	u.ReversedAt = &now
	u.UpdatedAt = now
	u.IncrementVersion()
	return nil
}
