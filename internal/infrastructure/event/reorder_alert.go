package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// ReorderAlertHandler surfaces low-stock conditions in the service log so
// operations can replenish before trucks run dry. Replenishment itself stays
// a human decision.
type ReorderAlertHandler struct {
	logger *zap.Logger
}

var _ Handler = (*ReorderAlertHandler)(nil)

// NewReorderAlertHandler creates a handler for reorder point breaches
func NewReorderAlertHandler(logger *zap.Logger) *ReorderAlertHandler {
	return &ReorderAlertHandler{logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *ReorderAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowReorderPoint}
}

// Handle logs the reorder alert
func (h *ReorderAlertHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	alert, ok := evt.(*inventory.StockBelowReorderPointEvent)
	if !ok {
		return nil
	}
	h.logger.Warn("stock below reorder point",
		zap.String("tenant_id", alert.TenantID().String()),
		zap.String("item_id", alert.Key.ItemID.String()),
		zap.String("location_id", alert.Key.LocationID.String()),
		zap.String("on_hand", alert.OnHand.String()),
		zap.String("reorder_point", alert.ReorderPoint.String()),
	)
	return nil
}
