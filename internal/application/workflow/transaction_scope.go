package workflow

import (
	"context"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/procurement"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/transfer"
)

// Repositories exposes every repository bound to one atomic unit. All reads
// and writes made through the same Repositories value commit or roll back
// together.
type Repositories interface {
	Items() inventory.ItemRepository
	Locations() inventory.LocationRepository
	StockLevels() inventory.StockLevelRepository
	Movements() inventory.StockMovementRepository
	Usages() inventory.MaterialUsageRepository
	PurchaseOrders() procurement.PurchaseOrderRepository
	Transfers() transfer.TransferRepository
}

// TransactionScope runs a function inside one atomic storage unit. If fn
// returns an error the unit rolls back and the error is returned unchanged;
// a commit failure surfaces as a transient error.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// UnitRunner opens one atomic storage unit and runs fn inside it. The context
// passed to fn carries the unit, so scope executions and idempotency writes
// made through it commit or roll back together.
type UnitRunner interface {
	RunInUnit(ctx context.Context, fn func(ctx context.Context) error) error
}
