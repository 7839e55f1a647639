package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/procurement"
)

type purchaseOrderRepository struct {
	db *gorm.DB
}

var _ procurement.PurchaseOrderRepository = (*purchaseOrderRepository)(nil)

func (r *purchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

func (r *purchaseOrderRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, poNumber string) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND po_number = ?", tenantID, poNumber).
		First(&order).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

func (r *purchaseOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status procurement.PurchaseOrderStatus) ([]procurement.PurchaseOrder, error) {
	var orders []procurement.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Order("created_at").
		Find(&orders).Error
	if err != nil {
		return nil, translateError(err)
	}
	return orders, nil
}

func (r *purchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	return translateError(r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error)
}

func (r *purchaseOrderRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Delete(&procurement.PurchaseOrderLine{}).Error; err != nil {
		return translateError(err)
	}
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&procurement.PurchaseOrder{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *purchaseOrderRepository) NextSequence(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return nextSequence(ctx, r.db, tenantID, sequenceKindPurchaseOrder)
}
