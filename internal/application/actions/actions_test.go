package actions

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinventory "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/inventory"
	appprocurement "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/procurement"
	apptransfer "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/transfer"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/infrastructure/cache"
	"github.com/hestami-ai/ai-home-maintenance-sub013/tests/testutil"
)

type actionsFixture struct {
	executor *workflow.Executor
	store    *testutil.MemoryStore
	tenantID uuid.UUID
	itemID   uuid.UUID
	truckID  uuid.UUID
}

func newActionsFixture(t *testing.T) *actionsFixture {
	t.Helper()
	clock := shared.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := zap.NewNop()
	store := testutil.NewMemoryStore(clock)
	scope := store.Scope()

	idempotency := cache.NewInMemoryIdempotencyStore(shared.DefaultIdempotencyConfig(), clock)
	t.Cleanup(func() { _ = idempotency.Close() })

	executor := workflow.NewExecutor(idempotency, shared.AllowAllAuthorizer{}, clock, logger, workflow.DefaultConfig())
	RegisterAll(executor, Services{
		Ledger:         appinventory.NewLedgerService(scope, nil, clock, logger),
		Usage:          appinventory.NewMaterialUsageService(scope, nil, clock, logger),
		PurchaseOrders: appprocurement.NewPurchaseOrderService(scope, nil, clock, logger),
		Transfers:      apptransfer.NewTransferService(scope, nil, clock, logger),
	})

	tenantID := uuid.New()
	item, err := inventory.NewInventoryItem(tenantID, "WIDGET-1", "Widget", decimal.NewFromFloat(3.5), clock.Now())
	require.NoError(t, err)
	store.SeedItem(item)

	truck, err := inventory.NewInventoryLocation(tenantID, "Van 3", inventory.LocationTypeTruck, clock.Now())
	require.NoError(t, err)
	store.SeedLocation(truck)

	return &actionsFixture{
		executor: executor,
		store:    store,
		tenantID: tenantID,
		itemID:   item.ID,
		truckID:  truck.ID,
	}
}

func (f *actionsFixture) execute(t *testing.T, action, key string, payload any) *workflow.Result {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	result, err := f.executor.Execute(context.Background(), workflow.Command{
		TenantID:       f.tenantID,
		ActorID:        uuid.New(),
		Action:         action,
		IdempotencyKey: key,
		Payload:        raw,
	})
	require.NoError(t, err)
	return result
}

func TestActionsStockAdjustEndToEnd(t *testing.T) {
	f := newActionsFixture(t)

	result := f.execute(t, workflow.ActionStockAdjust, "adj-1", appinventory.AdjustStockCommand{
		StockKeyInput: appinventory.StockKeyInput{ItemID: f.itemID, LocationID: f.truckID},
		Delta:         decimal.NewFromInt(20),
	})

	require.True(t, result.Success)
	var view appinventory.StockLevelView
	require.NoError(t, json.Unmarshal(result.Data, &view))
	assert.True(t, view.QuantityOnHand.Equal(decimal.NewFromInt(20)))

	// same key replays the stored outcome without a second mutation
	replay := f.execute(t, workflow.ActionStockAdjust, "adj-1", appinventory.AdjustStockCommand{
		StockKeyInput: appinventory.StockKeyInput{ItemID: f.itemID, LocationID: f.truckID},
		Delta:         decimal.NewFromInt(20),
	})
	assert.True(t, replay.Replayed)
}

func TestActionsBusinessFailureIsRecorded(t *testing.T) {
	f := newActionsFixture(t)

	result := f.execute(t, workflow.ActionStockReserve, "res-1", appinventory.ReserveStockCommand{
		StockKeyInput: appinventory.StockKeyInput{ItemID: f.itemID, LocationID: f.truckID},
		Quantity:      decimal.NewFromInt(5),
	})

	require.False(t, result.Success)
	assert.Equal(t, "INSUFFICIENT_STOCK", result.Error.Code)
}

func TestActionsPurchaseOrderLifecycle(t *testing.T) {
	f := newActionsFixture(t)

	created := f.execute(t, workflow.ActionPOCreate, "po-create", appprocurement.CreatePurchaseOrderCommand{
		SupplierID: uuid.New(),
		Lines: []appprocurement.OrderLineInput{
			{ItemID: f.itemID, Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(12)},
		},
	})
	require.True(t, created.Success)
	orderID := uuid.MustParse(created.EntityID)

	submitted := f.execute(t, workflow.ActionPOSubmit, "po-submit", orderRef{OrderID: orderID})
	require.True(t, submitted.Success)

	confirmed := f.execute(t, workflow.ActionPOConfirm, "po-confirm", orderRef{OrderID: orderID})
	require.True(t, confirmed.Success)

	var view appprocurement.PurchaseOrderView
	require.NoError(t, json.Unmarshal(confirmed.Data, &view))
	assert.Equal(t, "CONFIRMED", view.Status)
}

func TestActionsMalformedPayloadIsPermanentFailure(t *testing.T) {
	f := newActionsFixture(t)

	raw := json.RawMessage(`{"delta": "not-a-number"`)
	result, err := f.executor.Execute(context.Background(), workflow.Command{
		TenantID:       f.tenantID,
		ActorID:        uuid.New(),
		Action:         workflow.ActionStockAdjust,
		IdempotencyKey: "bad-1",
		Payload:        raw,
	})
	require.NoError(t, err)
	require.False(t, result.Success)
	assert.Equal(t, "INVALID_PAYLOAD", result.Error.Code)
}
