package procurement

import (
	"context"

	"github.com/google/uuid"
)

// PurchaseOrderRepository defines persistence for purchase orders
type PurchaseOrderRepository interface {
	// FindByIDForTenant finds an order with its lines within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByNumber finds an order by its PO number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, poNumber string) (*PurchaseOrder, error)

	// FindByStatus lists orders in a status within a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status PurchaseOrderStatus) ([]PurchaseOrder, error)

	// Save creates or updates an order and its lines
	Save(ctx context.Context, order *PurchaseOrder) error

	// Delete hard-removes an order; callers check CanDelete first
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// NextSequence returns the next per-tenant sequence number for PO numbering
	NextSequence(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
