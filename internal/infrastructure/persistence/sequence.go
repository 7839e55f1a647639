package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document kinds with their own per-tenant numbering sequence
const (
	sequenceKindPurchaseOrder = "PURCHASE_ORDER"
	sequenceKindTransfer      = "TRANSFER"
)

// DocumentSequence is a per-tenant counter backing document numbering
type DocumentSequence struct {
	TenantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind     string    `gorm:"type:varchar(30);primaryKey"`
	Value    int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// nextSequence increments and returns the counter for (tenant, kind). The
// counter row is locked for the rest of the transaction, so two documents of
// the same kind can never draw the same number.
func nextSequence(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, kind string) (int64, error) {
	query := db.WithContext(ctx).Where("tenant_id = ? AND kind = ?", tenantID, kind)
	if db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var seq DocumentSequence
	err := query.First(&seq).Error
	if err == nil {
		seq.Value++
		if err := db.WithContext(ctx).Save(&seq).Error; err != nil {
			return 0, translateError(err)
		}
		return seq.Value, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, translateError(err)
	}

	seq = DocumentSequence{TenantID: tenantID, Kind: kind, Value: 1}
	if err := db.WithContext(ctx).Create(&seq).Error; err != nil {
		return 0, translateError(err)
	}
	return seq.Value, nil
}
