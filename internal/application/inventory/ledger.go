package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
)

// The functions below are the only way ledger rows are mutated anywhere in
// the application layer. Each one locks the row, applies exactly one domain
// mutation, re-checks the ledger invariant, saves, and appends the audit
// movement, all against the repositories of the caller's atomic unit.

func mutateStock(
	ctx context.Context,
	repos workflow.Repositories,
	tenantID uuid.UUID,
	key inventory.StockKey,
	movType inventory.MovementType,
	movQty decimal.Decimal,
	source inventory.MovementSource,
	now time.Time,
	mutate func(level *inventory.StockLevel) error,
) (*inventory.StockLevel, error) {
	level, err := repos.StockLevels().GetOrCreateForUpdate(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}
	if err := mutate(level); err != nil {
		return nil, err
	}
	if err := level.CheckInvariant(); err != nil {
		return nil, err
	}
	if err := repos.StockLevels().Save(ctx, level); err != nil {
		return nil, err
	}

	movement, err := inventory.NewStockMovement(level, movType, movQty, source, now)
	if err != nil {
		return nil, err
	}
	if err := repos.Movements().Create(ctx, movement); err != nil {
		return nil, err
	}
	return level, nil
}

// CreditStock adds qty to on-hand and available
func CreditStock(ctx context.Context, repos workflow.Repositories, tenantID uuid.UUID, key inventory.StockKey, qty decimal.Decimal, movType inventory.MovementType, source inventory.MovementSource, now time.Time) (*inventory.StockLevel, error) {
	return mutateStock(ctx, repos, tenantID, key, movType, qty, source, now, func(level *inventory.StockLevel) error {
		return level.Adjust(qty, now)
	})
}

// AdjustStock applies a signed delta to on-hand and available
func AdjustStock(ctx context.Context, repos workflow.Repositories, tenantID uuid.UUID, key inventory.StockKey, delta decimal.Decimal, source inventory.MovementSource, now time.Time) (*inventory.StockLevel, error) {
	return mutateStock(ctx, repos, tenantID, key, inventory.MovementTypeAdjustment, delta, source, now, func(level *inventory.StockLevel) error {
		return level.Adjust(delta, now)
	})
}

// ReserveStock places a hold on available stock
func ReserveStock(ctx context.Context, repos workflow.Repositories, tenantID uuid.UUID, key inventory.StockKey, qty decimal.Decimal, source inventory.MovementSource, now time.Time) (*inventory.StockLevel, error) {
	return mutateStock(ctx, repos, tenantID, key, inventory.MovementTypeReserve, qty, source, now, func(level *inventory.StockLevel) error {
		return level.Reserve(qty, now)
	})
}

// ReleaseStock returns a hold to available stock
func ReleaseStock(ctx context.Context, repos workflow.Repositories, tenantID uuid.UUID, key inventory.StockKey, qty decimal.Decimal, source inventory.MovementSource, now time.Time) (*inventory.StockLevel, error) {
	return mutateStock(ctx, repos, tenantID, key, inventory.MovementTypeRelease, qty, source, now, func(level *inventory.StockLevel) error {
		return level.Release(qty, now)
	})
}

// DebitStock consumes available stock entirely
func DebitStock(ctx context.Context, repos workflow.Repositories, tenantID uuid.UUID, key inventory.StockKey, qty decimal.Decimal, movType inventory.MovementType, source inventory.MovementSource, now time.Time) (*inventory.StockLevel, error) {
	return mutateStock(ctx, repos, tenantID, key, movType, qty.Neg(), source, now, func(level *inventory.StockLevel) error {
		return level.Debit(qty, now)
	})
}

// CountStock records a physical count and returns the row plus the signed
// variance; the audit movement carries the variance, not the counted total
func CountStock(ctx context.Context, repos workflow.Repositories, tenantID uuid.UUID, key inventory.StockKey, countedQty decimal.Decimal, source inventory.MovementSource, now time.Time) (*inventory.StockLevel, decimal.Decimal, error) {
	level, err := repos.StockLevels().GetOrCreateForUpdate(ctx, tenantID, key)
	if err != nil {
		return nil, decimal.Zero, err
	}
	variance, err := level.RecordCount(countedQty, now)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if err := level.CheckInvariant(); err != nil {
		return nil, decimal.Zero, err
	}
	if err := repos.StockLevels().Save(ctx, level); err != nil {
		return nil, decimal.Zero, err
	}

	movement, err := inventory.NewStockMovement(level, inventory.MovementTypeCount, variance, source, now)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if err := repos.Movements().Create(ctx, movement); err != nil {
		return nil, decimal.Zero, err
	}
	return level, variance, nil
}

// checkReorderPoint appends a reorder signal to the level when a decrement
// left on-hand at or below the item's reorder point
func checkReorderPoint(level *inventory.StockLevel, item *inventory.InventoryItem, now time.Time) {
	if level.IsBelowReorderPoint(item) {
		level.AddDomainEvent(inventory.NewStockBelowReorderPointEvent(level, item, now))
	}
}

// resolveItem loads the item for a key and validates that the key's lot and
// serial fields match the item's tracking configuration
func resolveItem(ctx context.Context, repos workflow.Repositories, tenantID uuid.UUID, key inventory.StockKey) (*inventory.InventoryItem, error) {
	item, err := repos.Items().FindByIDForTenant(ctx, tenantID, key.ItemID)
	if err != nil {
		return nil, err
	}
	if err := item.ValidateTracking(key); err != nil {
		return nil, err
	}
	return item, nil
}

// resolveLocation verifies the location exists for the tenant
func resolveLocation(ctx context.Context, repos workflow.Repositories, tenantID, locationID uuid.UUID) (*inventory.InventoryLocation, error) {
	return repos.Locations().FindByIDForTenant(ctx, tenantID, locationID)
}
