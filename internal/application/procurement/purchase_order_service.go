package procurement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/procurement"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// PurchaseOrderService drives the purchase order lifecycle. Receiving credits
// the ledger in the same atomic unit that advances the order, so an
// over-receipt rejection leaves neither side changed.
type PurchaseOrderService struct {
	scope     workflow.TransactionScope
	publisher shared.EventPublisher
	clock     shared.Clock
	logger    *zap.Logger
}

// NewPurchaseOrderService creates a PurchaseOrderService
func NewPurchaseOrderService(scope workflow.TransactionScope, publisher shared.EventPublisher, clock shared.Clock, logger *zap.Logger) *PurchaseOrderService {
	return &PurchaseOrderService{
		scope:     scope,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Create opens a draft order with its lines
func (s *PurchaseOrderService) Create(ctx context.Context, tenantID uuid.UUID, cmd CreatePurchaseOrderCommand) (*PurchaseOrderView, error) {
	now := s.clock.Now()

	var view PurchaseOrderView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		seq, err := repos.PurchaseOrders().NextSequence(ctx, tenantID)
		if err != nil {
			return err
		}

		order, err := procurement.NewPurchaseOrder(tenantID, formatPONumber(seq), cmd.SupplierID, now)
		if err != nil {
			return err
		}

		for _, input := range cmd.Lines {
			if _, err := repos.Items().FindByIDForTenant(ctx, tenantID, input.ItemID); err != nil {
				return err
			}
			if _, err := order.AddLine(input.ItemID, input.Quantity, input.UnitCost, now); err != nil {
				return err
			}
		}
		if err := order.SetCharges(cmd.TaxAmount, cmd.ShippingCost, now); err != nil {
			return err
		}

		if err := repos.PurchaseOrders().Save(ctx, order); err != nil {
			return err
		}

		events = order.GetDomainEvents()
		view = NewPurchaseOrderView(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	s.logger.Info("purchase order created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("po_number", view.PONumber))
	return &view, nil
}

// Submit transitions a draft order to SUBMITTED
func (s *PurchaseOrderService) Submit(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderView, error) {
	return s.transition(ctx, tenantID, orderID, func(order *procurement.PurchaseOrder) error {
		return order.Submit(s.clock.Now())
	})
}

// Confirm marks a submitted order as acknowledged by the supplier
func (s *PurchaseOrderService) Confirm(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderView, error) {
	return s.transition(ctx, tenantID, orderID, func(order *procurement.PurchaseOrder) error {
		return order.Confirm(s.clock.Now())
	})
}

// Cancel stops further receiving on a non-terminal order
func (s *PurchaseOrderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderView, error) {
	return s.transition(ctx, tenantID, orderID, func(order *procurement.PurchaseOrder) error {
		return order.Cancel(s.clock.Now())
	})
}

// Receive applies a receipt: order lines accumulate and the ledger is
// credited at the receiving location, all in one atomic unit
func (s *PurchaseOrderService) Receive(ctx context.Context, tenantID uuid.UUID, cmd ReceiveOrderCommand) (*PurchaseOrderView, error) {
	now := s.clock.Now()

	var view PurchaseOrderView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		order, err := repos.PurchaseOrders().FindByIDForTenant(ctx, tenantID, cmd.OrderID)
		if err != nil {
			return err
		}
		if _, err := repos.Locations().FindByIDForTenant(ctx, tenantID, cmd.LocationID); err != nil {
			return err
		}

		applications, err := order.ApplyReceipt(cmd.Lines, now)
		if err != nil {
			return err
		}

		source := inventory.MovementSource{Type: inventory.SourceTypePurchaseOrder, ID: order.ID.String()}
		for _, app := range applications {
			key := inventory.StockKey{
				ItemID:       app.ItemID,
				LocationID:   cmd.LocationID,
				LotNumber:    app.LotNumber,
				SerialNumber: app.SerialNumber,
			}
			item, err := repos.Items().FindByIDForTenant(ctx, tenantID, app.ItemID)
			if err != nil {
				return err
			}
			if err := item.ValidateTracking(key); err != nil {
				return err
			}
			if _, err := appinventory.CreditStock(ctx, repos, tenantID, key, app.Quantity, inventory.MovementTypeReceipt, source, now); err != nil {
				return err
			}
		}

		if err := repos.PurchaseOrders().Save(ctx, order); err != nil {
			return err
		}

		events = order.GetDomainEvents()
		view = NewPurchaseOrderView(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	s.logger.Info("purchase order receipt applied",
		zap.String("tenant_id", tenantID.String()),
		zap.String("po_number", view.PONumber),
		zap.String("status", view.Status))
	return &view, nil
}

// Delete hard-removes a draft order
func (s *PurchaseOrderService) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		order, err := repos.PurchaseOrders().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if !order.CanDelete() {
			return shared.ErrInvalidState
		}
		return repos.PurchaseOrders().Delete(ctx, tenantID, orderID)
	})
}

// Get reads one order
func (s *PurchaseOrderService) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderView, error) {
	var view PurchaseOrderView
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		order, err := repos.PurchaseOrders().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		view = NewPurchaseOrderView(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *PurchaseOrderService) transition(ctx context.Context, tenantID, orderID uuid.UUID, apply func(order *procurement.PurchaseOrder) error) (*PurchaseOrderView, error) {
	var view PurchaseOrderView
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos workflow.Repositories) error {
		order, err := repos.PurchaseOrders().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := apply(order); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Save(ctx, order); err != nil {
			return err
		}
		events = order.GetDomainEvents()
		view = NewPurchaseOrderView(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return &view, nil
}

func (s *PurchaseOrderService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}

func formatPONumber(seq int64) string {
	return fmt.Sprintf("PO-%06d", seq)
}
