package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository defines persistence for catalog items
type ItemRepository interface {
	// FindByIDForTenant finds an item by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*InventoryItem, error)

	// FindBySKU finds an item by SKU within a tenant
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*InventoryItem, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *InventoryItem) error
}

// LocationRepository defines persistence for stock points
type LocationRepository interface {
	// FindByIDForTenant finds a location by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*InventoryLocation, error)

	// Save creates or updates a location
	Save(ctx context.Context, location *InventoryLocation) error
}

// StockLevelRepository defines persistence for ledger rows. Implementations
// must serialize concurrent access per stock key: GetOrCreateForUpdate holds
// exclusive access to the row until the enclosing transaction commits.
type StockLevelRepository interface {
	// FindByKey finds a ledger row without locking it, for reads
	FindByKey(ctx context.Context, tenantID uuid.UUID, key StockKey) (*StockLevel, error)

	// GetOrCreateForUpdate finds the ledger row under an exclusive row lock,
	// creating an all-zero row if none exists yet
	GetOrCreateForUpdate(ctx context.Context, tenantID uuid.UUID, key StockKey) (*StockLevel, error)

	// FindByLocation lists all ledger rows at a stock point
	FindByLocation(ctx context.Context, tenantID, locationID uuid.UUID) ([]StockLevel, error)

	// Save persists a mutated ledger row
	Save(ctx context.Context, level *StockLevel) error
}

// StockMovementRepository defines append-only persistence for the audit trail
type StockMovementRepository interface {
	// Create appends a movement; movements are never updated or deleted
	Create(ctx context.Context, movement *StockMovement) error

	// FindBySource lists movements caused by one source document
	FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType, sourceID string) ([]StockMovement, error)
}

// MaterialUsageRepository defines persistence for job material consumption
type MaterialUsageRepository interface {
	// FindByIDForTenant finds a usage record by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*MaterialUsage, error)

	// FindByJob lists usage records for a job
	FindByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]MaterialUsage, error)

	// Create persists a new usage record
	Create(ctx context.Context, usage *MaterialUsage) error

	// Save persists a reversal flag update
	Save(ctx context.Context, usage *MaterialUsage) error
}
