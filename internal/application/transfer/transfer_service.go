package transfer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/transfer"
)

// TransferService drives the transfer saga. Each step pairs the aggregate
// transition with its ledger effects in one atomic unit: create records the
// request without touching the ledger, ship debits the source, receive
// credits the destination, and cancelling an in-transit transfer credits the
// shipped stock back to the source.
type TransferService struct {
	scope     workflow.TransactionScope
	publisher shared.EventPublisher
	clock     shared.Clock
	logger    *zap.Logger
}

// NewTransferService creates a TransferService
func NewTransferService(scope workflow.TransactionScope, publisher shared.EventPublisher, clock shared.Clock, logger *zap.Logger) *TransferService {
	return &TransferService{
		scope:     scope,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Create opens a transfer in PENDING. Requested quantities are persisted on
// the lines only; no ledger row changes until Ship.
func (s *TransferService) Create(ctx context.Context, tenantID uuid.UUID, cmd CreateTransferCommand) (*TransferView, error) {
	now := s.clock.Now()

	var view TransferView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		if _, err := repos.Locations().FindByIDForTenant(ctx, tenantID, cmd.FromLocationID); err != nil {
			return err
		}
		if _, err := repos.Locations().FindByIDForTenant(ctx, tenantID, cmd.ToLocationID); err != nil {
			return err
		}

		seq, err := repos.Transfers().NextSequence(ctx, tenantID)
		if err != nil {
			return err
		}

		trf, err := transfer.NewTransfer(tenantID, formatTransferNumber(seq), cmd.FromLocationID, cmd.ToLocationID, now)
		if err != nil {
			return err
		}
		trf.Notes = cmd.Notes

		for _, input := range cmd.Lines {
			key := inventory.StockKey{
				ItemID:       input.ItemID,
				LocationID:   cmd.FromLocationID,
				LotNumber:    input.LotNumber,
				SerialNumber: input.SerialNumber,
			}
			item, err := repos.Items().FindByIDForTenant(ctx, tenantID, input.ItemID)
			if err != nil {
				return err
			}
			if err := item.ValidateTracking(key); err != nil {
				return err
			}
			if _, err := trf.AddLine(input.ItemID, input.Quantity, input.LotNumber, input.SerialNumber, now); err != nil {
				return err
			}
		}
		if len(trf.Lines) == 0 {
			return shared.NewDomainError("NO_LINES", "Transfer lines cannot be empty")
		}

		if err := repos.Transfers().Save(ctx, trf); err != nil {
			return err
		}

		events = trf.GetDomainEvents()
		view = NewTransferView(trf)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	s.logger.Info("transfer created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("transfer_number", view.TransferNumber))
	return &view, nil
}

// Ship moves a pending transfer to IN_TRANSIT, debiting the shipped
// quantities from the source ledger. A source row short on available stock
// fails the whole ship.
func (s *TransferService) Ship(ctx context.Context, tenantID uuid.UUID, cmd ShipTransferCommand) (*TransferView, error) {
	now := s.clock.Now()

	var view TransferView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		trf, err := repos.Transfers().FindByIDForTenant(ctx, tenantID, cmd.TransferID)
		if err != nil {
			return err
		}

		effects, err := trf.Ship(cmd.Lines, now)
		if err != nil {
			return err
		}

		source := inventory.MovementSource{Type: inventory.SourceTypeTransfer, ID: trf.ID.String()}
		for _, effect := range effects {
			if _, err := appinventory.DebitStock(ctx, repos, tenantID, effectKey(effect), effect.Quantity, inventory.MovementTypeTransferOut, source, now); err != nil {
				return err
			}
		}

		if err := repos.Transfers().Save(ctx, trf); err != nil {
			return err
		}

		events = trf.GetDomainEvents()
		view = NewTransferView(trf)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return &view, nil
}

// Receive completes an in-transit transfer, crediting the destination
func (s *TransferService) Receive(ctx context.Context, tenantID uuid.UUID, cmd ReceiveTransferCommand) (*TransferView, error) {
	now := s.clock.Now()

	var view TransferView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		trf, err := repos.Transfers().FindByIDForTenant(ctx, tenantID, cmd.TransferID)
		if err != nil {
			return err
		}

		effects, err := trf.Receive(cmd.Lines, now)
		if err != nil {
			return err
		}

		source := inventory.MovementSource{Type: inventory.SourceTypeTransfer, ID: trf.ID.String()}
		for _, effect := range effects {
			if _, err := appinventory.CreditStock(ctx, repos, tenantID, effectKey(effect), effect.Quantity, inventory.MovementTypeTransferIn, source, now); err != nil {
				return err
			}
		}

		if err := repos.Transfers().Save(ctx, trf); err != nil {
			return err
		}

		events = trf.GetDomainEvents()
		view = NewTransferView(trf)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return &view, nil
}

// Cancel closes a non-terminal transfer. A pending cancel has no ledger
// effect; an in-transit cancel credits the shipped stock back to the source.
func (s *TransferService) Cancel(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferView, error) {
	now := s.clock.Now()

	var view TransferView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		trf, err := repos.Transfers().FindByIDForTenant(ctx, tenantID, transferID)
		if err != nil {
			return err
		}

		effects, err := trf.Cancel(now)
		if err != nil {
			return err
		}

		source := inventory.MovementSource{Type: inventory.SourceTypeTransfer, ID: trf.ID.String()}
		for _, effect := range effects {
			if _, err := appinventory.CreditStock(ctx, repos, tenantID, effectKey(effect), effect.Quantity, inventory.MovementTypeReversal, source, now); err != nil {
				return err
			}
		}

		if err := repos.Transfers().Save(ctx, trf); err != nil {
			return err
		}

		events = trf.GetDomainEvents()
		view = NewTransferView(trf)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	s.logger.Info("transfer cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("transfer_number", view.TransferNumber))
	return &view, nil
}

// Get reads one transfer
func (s *TransferService) Get(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferView, error) {
	var view TransferView
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		trf, err := repos.Transfers().FindByIDForTenant(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		view = NewTransferView(trf)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *TransferService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}

func effectKey(effect transfer.LedgerEffect) inventory.StockKey {
	return inventory.StockKey{
		ItemID:       effect.ItemID,
		LocationID:   effect.LocationID,
		LotNumber:    effect.LotNumber,
		SerialNumber: effect.SerialNumber,
	}
}

func formatTransferNumber(seq int64) string {
	return fmt.Sprintf("TRF-%06d", seq)
}
