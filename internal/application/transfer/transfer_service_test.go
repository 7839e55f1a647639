package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinventory "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/transfer"
	"github.com/hestami-ai/ai-home-maintenance-sub013/tests/testutil"
)

type transferFixture struct {
	service   *TransferService
	ledger    *appinventory.LedgerService
	store     *testutil.MemoryStore
	tenantID  uuid.UUID
	item      *inventory.InventoryItem
	warehouse *inventory.InventoryLocation
	truck     *inventory.InventoryLocation
	clock     shared.FixedClock
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()

	clock := shared.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := testutil.NewMemoryStore(clock)
	tenantID := uuid.New()

	item, err := inventory.NewInventoryItem(tenantID, "FILTER-20", "Air filter", decimal.NewFromInt(8), clock.Now())
	require.NoError(t, err)
	store.SeedItem(item)

	warehouse, err := inventory.NewInventoryLocation(tenantID, "Main warehouse", inventory.LocationTypeWarehouse, clock.Now())
	require.NoError(t, err)
	store.SeedLocation(warehouse)

	truck, err := inventory.NewInventoryLocation(tenantID, "Van 3", inventory.LocationTypeTruck, clock.Now())
	require.NoError(t, err)
	store.SeedLocation(truck)

	f := &transferFixture{
		service:   NewTransferService(store.Scope(), nil, clock, zap.NewNop()),
		ledger:    appinventory.NewLedgerService(store.Scope(), nil, clock, zap.NewNop()),
		store:     store,
		tenantID:  tenantID,
		item:      item,
		warehouse: warehouse,
		truck:     truck,
		clock:     clock,
	}

	// stock the warehouse
	_, err = f.ledger.Adjust(context.Background(), tenantID, appinventory.AdjustStockCommand{
		StockKeyInput: appinventory.StockKeyInput{ItemID: item.ID, LocationID: warehouse.ID},
		Delta:         decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	return f
}

func (f *transferFixture) levelAt(t *testing.T, locationID uuid.UUID) *appinventory.StockLevelView {
	t.Helper()
	view, err := f.ledger.GetLevel(context.Background(), f.tenantID, inventory.StockKey{
		ItemID:     f.item.ID,
		LocationID: locationID,
	})
	require.NoError(t, err)
	return view
}

func (f *transferFixture) createTransfer(t *testing.T, qty int64) *TransferView {
	t.Helper()
	view, err := f.service.Create(context.Background(), f.tenantID, CreateTransferCommand{
		FromLocationID: f.warehouse.ID,
		ToLocationID:   f.truck.ID,
		Lines: []TransferLineInput{
			{ItemID: f.item.ID, Quantity: decimal.NewFromInt(qty)},
		},
	})
	require.NoError(t, err)
	return view
}

func TestTransferService_CreateLeavesLedgerUntouched(t *testing.T) {
	f := newTransferFixture(t)
	movementsBefore := len(f.store.Movements())

	view := f.createTransfer(t, 6)
	assert.Equal(t, "PENDING", view.Status)
	assert.Equal(t, "TRF-000001", view.TransferNumber)
	assert.True(t, view.Lines[0].QuantityRequested.Equal(decimal.NewFromInt(6)))

	source := f.levelAt(t, f.warehouse.ID)
	assert.True(t, source.QuantityOnHand.Equal(decimal.NewFromInt(20)))
	assert.True(t, source.QuantityReserved.IsZero())
	assert.True(t, source.QuantityAvailable.Equal(decimal.NewFromInt(20)))
	assert.Len(t, f.store.Movements(), movementsBefore)
}

func TestTransferService_ShipInsufficientStock(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	// a request beyond the on-hand quantity is accepted at create
	created := f.createTransfer(t, 21)

	_, err := f.service.Ship(ctx, f.tenantID, ShipTransferCommand{TransferID: created.ID})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	// the failed ship changed nothing
	after, err := f.service.Get(ctx, f.tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", after.Status)

	source := f.levelAt(t, f.warehouse.ID)
	assert.True(t, source.QuantityAvailable.Equal(decimal.NewFromInt(20)))
}

func TestTransferService_CreateSameLocationRejected(t *testing.T) {
	f := newTransferFixture(t)

	_, err := f.service.Create(context.Background(), f.tenantID, CreateTransferCommand{
		FromLocationID: f.warehouse.ID,
		ToLocationID:   f.warehouse.ID,
		Lines: []TransferLineInput{
			{ItemID: f.item.ID, Quantity: decimal.NewFromInt(1)},
		},
	})
	require.Error(t, err)
	assert.Equal(t, "SAME_LOCATION", shared.AsDomainError(err).Code)
}

func TestTransferService_ShipThenReceive(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	created := f.createTransfer(t, 6)

	shipped, err := f.service.Ship(ctx, f.tenantID, ShipTransferCommand{TransferID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "IN_TRANSIT", shipped.Status)
	assert.True(t, shipped.Lines[0].QuantityShipped.Equal(decimal.NewFromInt(6)))

	source := f.levelAt(t, f.warehouse.ID)
	assert.True(t, source.QuantityOnHand.Equal(decimal.NewFromInt(14)))
	assert.True(t, source.QuantityReserved.IsZero())
	assert.True(t, source.QuantityAvailable.Equal(decimal.NewFromInt(14)))

	received, err := f.service.Receive(ctx, f.tenantID, ReceiveTransferCommand{TransferID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", received.Status)
	assert.True(t, received.Lines[0].QuantityReceived.Equal(decimal.NewFromInt(6)))

	dest := f.levelAt(t, f.truck.ID)
	assert.True(t, dest.QuantityOnHand.Equal(decimal.NewFromInt(6)))
	assert.True(t, dest.QuantityAvailable.Equal(decimal.NewFromInt(6)))
}

func TestTransferService_ShortShipmentDebitsOnlyShipped(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	created := f.createTransfer(t, 6)

	shipped, err := f.service.Ship(ctx, f.tenantID, ShipTransferCommand{
		TransferID: created.ID,
		Lines:      []transfer.ShipLine{{ItemID: f.item.ID, Quantity: decimal.NewFromInt(4)}},
	})
	require.NoError(t, err)
	assert.True(t, shipped.Lines[0].QuantityShipped.Equal(decimal.NewFromInt(4)))

	// only the 4 that shipped left the building
	source := f.levelAt(t, f.warehouse.ID)
	assert.True(t, source.QuantityOnHand.Equal(decimal.NewFromInt(16)))
	assert.True(t, source.QuantityReserved.IsZero())
	assert.True(t, source.QuantityAvailable.Equal(decimal.NewFromInt(16)))
}

func TestTransferService_ShipOverRequestedWhenStockAllows(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	created := f.createTransfer(t, 6)

	shipped, err := f.service.Ship(ctx, f.tenantID, ShipTransferCommand{
		TransferID: created.ID,
		Lines:      []transfer.ShipLine{{ItemID: f.item.ID, Quantity: decimal.NewFromInt(7)}},
	})
	require.NoError(t, err)
	assert.True(t, shipped.Lines[0].QuantityShipped.Equal(decimal.NewFromInt(7)))

	source := f.levelAt(t, f.warehouse.ID)
	assert.True(t, source.QuantityAvailable.Equal(decimal.NewFromInt(13)))
}

func TestTransferService_CancelPendingLeavesLedgerUntouched(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	created := f.createTransfer(t, 6)
	movementsBefore := len(f.store.Movements())

	cancelled, err := f.service.Cancel(ctx, f.tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)

	source := f.levelAt(t, f.warehouse.ID)
	assert.True(t, source.QuantityOnHand.Equal(decimal.NewFromInt(20)))
	assert.True(t, source.QuantityReserved.IsZero())
	assert.True(t, source.QuantityAvailable.Equal(decimal.NewFromInt(20)))
	assert.Len(t, f.store.Movements(), movementsBefore)
}

func TestTransferService_CancelInTransitRestoresSource(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	created := f.createTransfer(t, 5)

	_, err := f.service.Ship(ctx, f.tenantID, ShipTransferCommand{TransferID: created.ID})
	require.NoError(t, err)
	assert.True(t, f.levelAt(t, f.warehouse.ID).QuantityAvailable.Equal(decimal.NewFromInt(15)))

	cancelled, err := f.service.Cancel(ctx, f.tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)

	// the shipped stock came back to the source exactly
	source := f.levelAt(t, f.warehouse.ID)
	assert.True(t, source.QuantityOnHand.Equal(decimal.NewFromInt(20)))
	assert.True(t, source.QuantityAvailable.Equal(decimal.NewFromInt(20)))

	// the destination never saw a ledger row
	_, err = f.ledger.GetLevel(ctx, f.tenantID, inventory.StockKey{ItemID: f.item.ID, LocationID: f.truck.ID})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTransferService_TerminalCancelRejected(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	created := f.createTransfer(t, 6)
	_, err := f.service.Ship(ctx, f.tenantID, ShipTransferCommand{TransferID: created.ID})
	require.NoError(t, err)
	_, err = f.service.Receive(ctx, f.tenantID, ReceiveTransferCommand{TransferID: created.ID})
	require.NoError(t, err)

	_, err = f.service.Cancel(ctx, f.tenantID, created.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	// double cancel on an already cancelled transfer is also invalid
	second := f.createTransfer(t, 2)
	_, err = f.service.Cancel(ctx, f.tenantID, second.ID)
	require.NoError(t, err)
	_, err = f.service.Cancel(ctx, f.tenantID, second.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestTransferService_ReceiveBeforeShipRejected(t *testing.T) {
	f := newTransferFixture(t)

	created := f.createTransfer(t, 3)
	_, err := f.service.Receive(context.Background(), f.tenantID, ReceiveTransferCommand{TransferID: created.ID})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
