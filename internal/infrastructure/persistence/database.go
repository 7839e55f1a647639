package persistence

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/procurement"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/transfer"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/infrastructure/config"
)

// NewDatabase opens a PostgreSQL connection pool from configuration
func NewDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.LogQueries {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	return db, nil
}

// Migrate creates or updates the schema for every persisted aggregate
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&inventory.InventoryItem{},
		&inventory.InventoryLocation{},
		&inventory.StockLevel{},
		&inventory.StockMovement{},
		&inventory.MaterialUsage{},
		&procurement.PurchaseOrder{},
		&procurement.PurchaseOrderLine{},
		&transfer.Transfer{},
		&transfer.TransferLine{},
		&DocumentSequence{},
		&IdempotencyRecord{},
	)
}

// translateError maps storage errors to the domain's error taxonomy. Missing
// rows and constraint hits are business outcomes; everything else is a
// transient storage failure and safe to retry under the same idempotency key.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	if shared.IsDomainError(err) || shared.IsTransient(err) {
		return err
	}
	return shared.NewTransientError(err)
}
