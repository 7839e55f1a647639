package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/transfer"
)

type transferRepository struct {
	db *gorm.DB
}

var _ transfer.TransferRepository = (*transferRepository)(nil)

func (r *transferRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*transfer.Transfer, error) {
	var t transfer.Transfer
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&t).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

func (r *transferRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, transferNumber string) (*transfer.Transfer, error) {
	var t transfer.Transfer
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND transfer_number = ?", tenantID, transferNumber).
		First(&t).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

func (r *transferRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status transfer.TransferStatus) ([]transfer.Transfer, error) {
	var transfers []transfer.Transfer
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Order("created_at").
		Find(&transfers).Error
	if err != nil {
		return nil, translateError(err)
	}
	return transfers, nil
}

func (r *transferRepository) Save(ctx context.Context, t *transfer.Transfer) error {
	return translateError(r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(t).Error)
}

func (r *transferRepository) NextSequence(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return nextSequence(ctx, r.db, tenantID, sequenceKindTransfer)
}
