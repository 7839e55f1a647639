package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/actions"
	appinventory "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/inventory"
	appprocurement "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/procurement"
	apptransfer "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/transfer"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/infrastructure/cache"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/interfaces/http/router"
	"github.com/hestami-ai/ai-home-maintenance-sub013/tests/testutil"
)

type httpFixture struct {
	engine   *gin.Engine
	tenantID uuid.UUID
	itemID   uuid.UUID
	truckID  uuid.UUID
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := shared.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := zap.NewNop()
	store := testutil.NewMemoryStore(clock)
	scope := store.Scope()

	idempotency := cache.NewInMemoryIdempotencyStore(shared.DefaultIdempotencyConfig(), clock)
	t.Cleanup(func() { _ = idempotency.Close() })

	ledger := appinventory.NewLedgerService(scope, nil, clock, logger)
	usages := appinventory.NewMaterialUsageService(scope, nil, clock, logger)
	orders := appprocurement.NewPurchaseOrderService(scope, nil, clock, logger)
	transfers := apptransfer.NewTransferService(scope, nil, clock, logger)

	executor := workflow.NewExecutor(idempotency, shared.AllowAllAuthorizer{}, clock, logger, workflow.DefaultConfig())
	actions.RegisterAll(executor, actions.Services{
		Ledger: ledger, Usage: usages, PurchaseOrders: orders, Transfers: transfers,
	})

	engine := gin.New()
	router.NewRouter(engine).
		Register(NewWorkflowHandler(executor)).
		Register(NewQueryHandler(ledger, usages, orders, transfers)).
		Setup()

	tenantID := uuid.New()
	item, err := inventory.NewInventoryItem(tenantID, "WIDGET-1", "Widget", decimal.NewFromFloat(3.5), clock.Now())
	require.NoError(t, err)
	store.SeedItem(item)

	truck, err := inventory.NewInventoryLocation(tenantID, "Van 3", inventory.LocationTypeTruck, clock.Now())
	require.NoError(t, err)
	store.SeedLocation(truck)

	return &httpFixture{engine: engine, tenantID: tenantID, itemID: item.ID, truckID: truck.ID}
}

func (f *httpFixture) postAction(t *testing.T, action, key string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/actions/"+action, bytes.NewReader(body))
	req.Header.Set(HeaderTenantID, f.tenantID.String())
	req.Header.Set(HeaderActorID, uuid.NewString())
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func (f *httpFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(HeaderTenantID, f.tenantID.String())
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func adjustPayload(f *httpFixture, delta int64) appinventory.AdjustStockCommand {
	return appinventory.AdjustStockCommand{
		StockKeyInput: appinventory.StockKeyInput{ItemID: f.itemID, LocationID: f.truckID},
		Delta:         decimal.NewFromInt(delta),
	}
}

func TestExecuteActionCreatesAndReplays(t *testing.T) {
	f := newHTTPFixture(t)

	first := f.postAction(t, workflow.ActionStockAdjust, "adj-1", adjustPayload(f, 20))
	assert.Equal(t, http.StatusCreated, first.Code)

	// replaying the same key returns 200 with the stored outcome
	replay := f.postAction(t, workflow.ActionStockAdjust, "adj-1", adjustPayload(f, 20))
	assert.Equal(t, http.StatusOK, replay.Code)
}

func TestExecuteActionRequiresIdempotencyKey(t *testing.T) {
	f := newHTTPFixture(t)

	rec := f.postAction(t, workflow.ActionStockAdjust, "", adjustPayload(f, 20))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_IDEMPOTENCY_KEY", resp.Error.Code)
}

func TestExecuteActionBusinessFailure(t *testing.T) {
	f := newHTTPFixture(t)

	rec := f.postAction(t, workflow.ActionStockReserve, "res-1", appinventory.ReserveStockCommand{
		StockKeyInput: appinventory.StockKeyInput{ItemID: f.itemID, LocationID: f.truckID},
		Quantity:      decimal.NewFromInt(5),
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Code)
}

func TestExecuteActionConflictOnPayloadChange(t *testing.T) {
	f := newHTTPFixture(t)

	first := f.postAction(t, workflow.ActionStockAdjust, "adj-1", adjustPayload(f, 20))
	require.Equal(t, http.StatusCreated, first.Code)

	conflict := f.postAction(t, workflow.ActionStockAdjust, "adj-1", adjustPayload(f, 30))
	assert.Equal(t, http.StatusConflict, conflict.Code)
}

func TestExecuteActionUnknownAction(t *testing.T) {
	f := newHTTPFixture(t)

	rec := f.postAction(t, "inventory.no_such_action", "key-1", gin.H{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UNKNOWN_ACTION", resp.Error.Code)
}

func TestGetStockLevelAfterAdjust(t *testing.T) {
	f := newHTTPFixture(t)

	require.Equal(t, http.StatusCreated, f.postAction(t, workflow.ActionStockAdjust, "adj-1", adjustPayload(f, 20)).Code)

	rec := f.get(t, "/api/v1/stock-levels?item_id="+f.itemID.String()+"&location_id="+f.truckID.String())
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data appinventory.StockLevelView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.QuantityOnHand.Equal(decimal.NewFromInt(20)))
}

func TestGetStockLevelNotFound(t *testing.T) {
	f := newHTTPFixture(t)

	rec := f.get(t, "/api/v1/stock-levels?item_id="+uuid.NewString()+"&location_id="+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPurchaseOrderNotFound(t *testing.T) {
	f := newHTTPFixture(t)

	rec := f.get(t, "/api/v1/purchase-orders/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePurchaseOrderDraftOnly(t *testing.T) {
	f := newHTTPFixture(t)

	created := f.postAction(t, workflow.ActionPOCreate, "po-1", appprocurement.CreatePurchaseOrderCommand{
		SupplierID: uuid.New(),
		Lines: []appprocurement.OrderLineInput{
			{ItemID: f.itemID, Quantity: decimal.NewFromInt(4), UnitCost: decimal.NewFromInt(10)},
		},
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var resp struct {
		Data struct {
			EntityID string `json:"entity_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &resp))
	orderID := resp.Data.EntityID

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/purchase-orders/"+orderID, nil)
	req.Header.Set(HeaderTenantID, f.tenantID.String())
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/v1/purchase-orders/"+orderID).Code)
}

func TestTenantHeaderRequiredOnReads(t *testing.T) {
	f := newHTTPFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stock-levels?item_id="+f.itemID.String()+"&location_id="+f.truckID.String(), nil)
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
