package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/procurement"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/transfer"
)

// GormTransactionScope runs atomic units on a single database transaction.
// Row locks taken inside the unit are held until commit or rollback, which is
// what gives concurrent ledger mutations their one-at-a-time ordering.
type GormTransactionScope struct {
	db    *gorm.DB
	clock shared.Clock
}

var _ workflow.TransactionScope = (*GormTransactionScope)(nil)
var _ workflow.UnitRunner = (*GormTransactionScope)(nil)

// NewGormTransactionScope creates a scope over an open database handle
func NewGormTransactionScope(db *gorm.DB, clock shared.Clock) *GormTransactionScope {
	return &GormTransactionScope{db: db, clock: clock}
}

// txContextKey carries an open transaction through a context
type txContextKey struct{}

func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

func txFrom(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx
}

// Execute runs fn inside one database transaction. When the context already
// carries a transaction opened by RunInUnit, fn joins it instead; the opener
// owns commit and rollback.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos workflow.Repositories) error) error {
	if tx := txFrom(ctx); tx != nil {
		return fn(&gormRepositories{tx: tx, clock: s.clock})
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx, clock: s.clock})
	})
	if err == nil {
		return nil
	}
	// fn errors pass through untouched; commit failures become transient
	if shared.IsDomainError(err) || shared.IsTransient(err) {
		return err
	}
	return shared.NewTransientError(err)
}

// RunInUnit opens one transaction and runs fn with a context that carries it.
// Everything inside fn that honors the carried transaction, scope executions
// and idempotency outcome writes included, commits atomically.
func (s *GormTransactionScope) RunInUnit(ctx context.Context, fn func(ctx context.Context) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
	if err == nil {
		return nil
	}
	if shared.IsDomainError(err) || shared.IsTransient(err) {
		return err
	}
	return shared.NewTransientError(err)
}

// gormRepositories binds every repository to one transaction
type gormRepositories struct {
	tx    *gorm.DB
	clock shared.Clock
}

var _ workflow.Repositories = (*gormRepositories)(nil)

func (r *gormRepositories) Items() inventory.ItemRepository {
	return &itemRepository{db: r.tx}
}

func (r *gormRepositories) Locations() inventory.LocationRepository {
	return &locationRepository{db: r.tx}
}

func (r *gormRepositories) StockLevels() inventory.StockLevelRepository {
	return &stockLevelRepository{db: r.tx, clock: r.clock}
}

func (r *gormRepositories) Movements() inventory.StockMovementRepository {
	return &stockMovementRepository{db: r.tx}
}

func (r *gormRepositories) Usages() inventory.MaterialUsageRepository {
	return &materialUsageRepository{db: r.tx}
}

func (r *gormRepositories) PurchaseOrders() procurement.PurchaseOrderRepository {
	return &purchaseOrderRepository{db: r.tx}
}

func (r *gormRepositories) Transfers() transfer.TransferRepository {
	return &transferRepository{db: r.tx}
}
