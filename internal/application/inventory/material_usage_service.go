package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// MaterialUsageService records stock consumed against jobs and handles
// reversals. A usage debits the ledger and snapshots the item's unit cost at
// recording time; a reversal credits the stock back at the original location
// and never mutates the original record beyond its reversal flag.
type MaterialUsageService struct {
	scope     workflow.TransactionScope
	publisher shared.EventPublisher
	clock     shared.Clock
	logger    *zap.Logger
}

// NewMaterialUsageService creates a MaterialUsageService
func NewMaterialUsageService(scope workflow.TransactionScope, publisher shared.EventPublisher, clock shared.Clock, logger *zap.Logger) *MaterialUsageService {
	return &MaterialUsageService{
		scope:     scope,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Record consumes stock against a job. The ledger debit and the usage row
// commit together.
func (s *MaterialUsageService) Record(ctx context.Context, tenantID uuid.UUID, cmd RecordUsageCommand) (*MaterialUsageView, error) {
	now := s.clock.Now()

	var view MaterialUsageView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		item, err := resolveItem(ctx, repos, tenantID, cmd.Key())
		if err != nil {
			return err
		}
		if _, err := resolveLocation(ctx, repos, tenantID, cmd.LocationID); err != nil {
			return err
		}

		usage, err := inventory.NewMaterialUsage(tenantID, cmd.JobID, cmd.Key(), cmd.Quantity, item.UnitCost, now)
		if err != nil {
			return err
		}

		source := inventory.MovementSource{Type: inventory.SourceTypeMaterialUsage, ID: usage.ID.String()}
		level, err := DebitStock(ctx, repos, tenantID, cmd.Key(), cmd.Quantity, inventory.MovementTypeConsumption, source, now)
		if err != nil {
			return err
		}
		checkReorderPoint(level, item, now)

		if err := repos.Usages().Create(ctx, usage); err != nil {
			return err
		}

		events = level.GetDomainEvents()
		view = NewMaterialUsageView(usage)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	s.logger.Info("material usage recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("usage_id", view.ID.String()),
		zap.String("job_id", view.JobID.String()))
	return &view, nil
}

// Reverse credits a recorded usage back to its original stock key. A usage
// can be reversed exactly once; a second attempt is an invalid transition.
func (s *MaterialUsageService) Reverse(ctx context.Context, tenantID uuid.UUID, cmd ReverseUsageCommand) (*MaterialUsageView, error) {
	now := s.clock.Now()

	var view MaterialUsageView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		usage, err := repos.Usages().FindByIDForTenant(ctx, tenantID, cmd.UsageID)
		if err != nil {
			return err
		}
		if err := usage.Reverse(now); err != nil {
			return err
		}

		source := inventory.MovementSource{Type: inventory.SourceTypeMaterialUsage, ID: usage.ID.String()}
		level, err := CreditStock(ctx, repos, tenantID, usage.Key(), usage.Quantity, inventory.MovementTypeReversal, source, now)
		if err != nil {
			return err
		}

		if err := repos.Usages().Save(ctx, usage); err != nil {
			return err
		}

		events = level.GetDomainEvents()
		view = NewMaterialUsageView(usage)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	s.logger.Info("material usage reversed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("usage_id", cmd.UsageID.String()))
	return &view, nil
}

// ListByJob reads all usage records for a job
func (s *MaterialUsageService) ListByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]MaterialUsageView, error) {
	var views []MaterialUsageView
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		usages, err := repos.Usages().FindByJob(ctx, tenantID, jobID)
		if err != nil {
			return err
		}
		views = make([]MaterialUsageView, 0, len(usages))
		for idx := range usages {
			views = append(views, NewMaterialUsageView(&usages[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *MaterialUsageService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
