package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// LedgerService exposes the manual ledger operations: adjustments, holds,
// releases, and physical counts. Every write runs in its own atomic unit and
// domain events are published only after the unit commits.
type LedgerService struct {
	scope     workflow.TransactionScope
	publisher shared.EventPublisher
	clock     shared.Clock
	logger    *zap.Logger
}

// NewLedgerService creates a LedgerService
func NewLedgerService(scope workflow.TransactionScope, publisher shared.EventPublisher, clock shared.Clock, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		scope:     scope,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Adjust applies a signed manual adjustment to a ledger row
func (s *LedgerService) Adjust(ctx context.Context, tenantID uuid.UUID, cmd AdjustStockCommand) (*StockLevelView, error) {
	now := s.clock.Now()
	source := inventory.MovementSource{Type: inventory.SourceTypeManual, ID: cmd.Reason}

	var view StockLevelView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		item, err := resolveItem(ctx, repos, tenantID, cmd.Key())
		if err != nil {
			return err
		}
		if _, err := resolveLocation(ctx, repos, tenantID, cmd.LocationID); err != nil {
			return err
		}

		level, err := AdjustStock(ctx, repos, tenantID, cmd.Key(), cmd.Delta, source, now)
		if err != nil {
			return err
		}
		if cmd.Delta.IsNegative() {
			checkReorderPoint(level, item, now)
		}

		events = level.GetDomainEvents()
		view = NewStockLevelView(level)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return &view, nil
}

// Reserve places a hold on available stock
func (s *LedgerService) Reserve(ctx context.Context, tenantID uuid.UUID, cmd ReserveStockCommand) (*StockLevelView, error) {
	now := s.clock.Now()
	source := inventory.MovementSource{Type: inventory.SourceTypeManual, ID: cmd.Reference}

	var view StockLevelView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		if _, err := resolveItem(ctx, repos, tenantID, cmd.Key()); err != nil {
			return err
		}
		if _, err := resolveLocation(ctx, repos, tenantID, cmd.LocationID); err != nil {
			return err
		}

		level, err := ReserveStock(ctx, repos, tenantID, cmd.Key(), cmd.Quantity, source, now)
		if err != nil {
			return err
		}

		events = level.GetDomainEvents()
		view = NewStockLevelView(level)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return &view, nil
}

// Release returns a hold to available stock
func (s *LedgerService) Release(ctx context.Context, tenantID uuid.UUID, cmd ReleaseStockCommand) (*StockLevelView, error) {
	now := s.clock.Now()
	source := inventory.MovementSource{Type: inventory.SourceTypeManual, ID: cmd.Reference}

	var view StockLevelView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		if _, err := resolveItem(ctx, repos, tenantID, cmd.Key()); err != nil {
			return err
		}

		level, err := ReleaseStock(ctx, repos, tenantID, cmd.Key(), cmd.Quantity, source, now)
		if err != nil {
			return err
		}

		events = level.GetDomainEvents()
		view = NewStockLevelView(level)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return &view, nil
}

// RecordCount records a physical count and returns the signed variance
func (s *LedgerService) RecordCount(ctx context.Context, tenantID uuid.UUID, cmd CountStockCommand) (*CountResultView, error) {
	now := s.clock.Now()
	source := inventory.MovementSource{Type: inventory.SourceTypeStockCount, ID: cmd.CountReference}

	var result CountResultView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		item, err := resolveItem(ctx, repos, tenantID, cmd.Key())
		if err != nil {
			return err
		}

		level, variance, err := CountStock(ctx, repos, tenantID, cmd.Key(), cmd.CountedQuantity, source, now)
		if err != nil {
			return err
		}
		if variance.IsNegative() {
			checkReorderPoint(level, item, now)
		}

		events = level.GetDomainEvents()
		result = CountResultView{StockLevelView: NewStockLevelView(level), Variance: variance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return &result, nil
}

// GetLevel reads one ledger row without locking it
func (s *LedgerService) GetLevel(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (*StockLevelView, error) {
	var view StockLevelView
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		level, err := repos.StockLevels().FindByKey(ctx, tenantID, key)
		if err != nil {
			return err
		}
		view = NewStockLevelView(level)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListByLocation reads every ledger row at a stock point
func (s *LedgerService) ListByLocation(ctx context.Context, tenantID, locationID uuid.UUID) ([]StockLevelView, error) {
	var views []StockLevelView
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		levels, err := repos.StockLevels().FindByLocation(ctx, tenantID, locationID)
		if err != nil {
			return err
		}
		views = make([]StockLevelView, 0, len(levels))
		for idx := range levels {
			views = append(views, NewStockLevelView(&levels[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *LedgerService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
