package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

type itemRepository struct {
	db *gorm.DB
}

var _ inventory.ItemRepository = (*itemRepository)(nil)

func (r *itemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (r *itemRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&item).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (r *itemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	return translateError(r.db.WithContext(ctx).Save(item).Error)
}

type locationRepository struct {
	db *gorm.DB
}

var _ inventory.LocationRepository = (*locationRepository)(nil)

func (r *locationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.InventoryLocation, error) {
	var location inventory.InventoryLocation
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&location).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &location, nil
}

func (r *locationRepository) Save(ctx context.Context, location *inventory.InventoryLocation) error {
	return translateError(r.db.WithContext(ctx).Save(location).Error)
}

type stockLevelRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

var _ inventory.StockLevelRepository = (*stockLevelRepository)(nil)

func (r *stockLevelRepository) FindByKey(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	err := r.keyQuery(ctx, tenantID, key).First(&level).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &level, nil
}

// GetOrCreateForUpdate locks the ledger row for the rest of the transaction.
// SQLite serializes writers on its own, so the explicit lock clause is only
// issued on PostgreSQL.
func (r *stockLevelRepository) GetOrCreateForUpdate(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	err := r.lockingQuery(ctx, tenantID, key).First(&level).Error
	if err == nil {
		return &level, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translateError(err)
	}

	created, err := inventory.NewStockLevel(tenantID, key, r.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the creation race; lock the winner's row instead
			var existing inventory.StockLevel
			if err := r.lockingQuery(ctx, tenantID, key).First(&existing).Error; err != nil {
				return nil, translateError(err)
			}
			return &existing, nil
		}
		return nil, translateError(err)
	}
	return created, nil
}

func (r *stockLevelRepository) FindByLocation(ctx context.Context, tenantID, locationID uuid.UUID) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ?", tenantID, locationID).
		Order("item_id, lot_number, serial_number").
		Find(&levels).Error
	if err != nil {
		return nil, translateError(err)
	}
	return levels, nil
}

func (r *stockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	return translateError(r.db.WithContext(ctx).Save(level).Error)
}

func (r *stockLevelRepository) keyQuery(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND item_id = ? AND location_id = ? AND lot_number = ? AND serial_number = ?",
			tenantID, key.ItemID, key.LocationID, key.LotNumber, key.SerialNumber)
}

func (r *stockLevelRepository) lockingQuery(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) *gorm.DB {
	query := r.keyQuery(ctx, tenantID, key)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return query
}

type stockMovementRepository struct {
	db *gorm.DB
}

var _ inventory.StockMovementRepository = (*stockMovementRepository)(nil)

func (r *stockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return translateError(r.db.WithContext(ctx).Create(movement).Error)
}

func (r *stockMovementRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType, sourceID string) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_type = ? AND source_id = ?", tenantID, sourceType, sourceID).
		Order("occurred_at, created_at").
		Find(&movements).Error
	if err != nil {
		return nil, translateError(err)
	}
	return movements, nil
}

type materialUsageRepository struct {
	db *gorm.DB
}

var _ inventory.MaterialUsageRepository = (*materialUsageRepository)(nil)

func (r *materialUsageRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.MaterialUsage, error) {
	var usage inventory.MaterialUsage
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&usage).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &usage, nil
}

func (r *materialUsageRepository) FindByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]inventory.MaterialUsage, error) {
	var usages []inventory.MaterialUsage
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND job_id = ?", tenantID, jobID).
		Order("used_at").
		Find(&usages).Error
	if err != nil {
		return nil, translateError(err)
	}
	return usages, nil
}

func (r *materialUsageRepository) Create(ctx context.Context, usage *inventory.MaterialUsage) error {
	return translateError(r.db.WithContext(ctx).Create(usage).Error)
}

func (r *materialUsageRepository) Save(ctx context.Context, usage *inventory.MaterialUsage) error {
	return translateError(r.db.WithContext(ctx).Save(usage).Error)
}
