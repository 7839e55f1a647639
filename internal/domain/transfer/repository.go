package transfer

import (
	"context"

	"github.com/google/uuid"
)

// TransferRepository defines persistence for stock transfers
type TransferRepository interface {
	// FindByIDForTenant finds a transfer with its lines within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Transfer, error)

	// FindByNumber finds a transfer by its number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, transferNumber string) (*Transfer, error)

	// FindByStatus lists transfers in a status within a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status TransferStatus) ([]Transfer, error)

	// Save creates or updates a transfer and its lines
	Save(ctx context.Context, t *Transfer) error

	// NextSequence returns the next per-tenant sequence number for transfer numbering
	NextSequence(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
