package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

func testKey() StockKey {
	return StockKey{ItemID: uuid.New(), LocationID: uuid.New()}
}

func newLevel(t *testing.T) (*StockLevel, time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	level, err := NewStockLevel(uuid.New(), testKey(), now)
	require.NoError(t, err)
	return level, now
}

func TestStockLevel_AdjustMaintainsInvariant(t *testing.T) {
	level, now := newLevel(t)

	require.NoError(t, level.Adjust(decimal.NewFromInt(20), now))
	assert.True(t, level.QuantityOnHand.Equal(decimal.NewFromInt(20)))
	assert.True(t, level.QuantityAvailable.Equal(decimal.NewFromInt(20)))
	assert.NoError(t, level.CheckInvariant())

	require.NoError(t, level.Adjust(decimal.NewFromInt(-5), now))
	assert.True(t, level.QuantityOnHand.Equal(decimal.NewFromInt(15)))
	assert.NoError(t, level.CheckInvariant())
}

func TestStockLevel_AdjustRejectsZeroDelta(t *testing.T) {
	level, now := newLevel(t)
	err := level.Adjust(decimal.Zero, now)
	require.Error(t, err)
	assert.Equal(t, "INVALID_QUANTITY", shared.AsDomainError(err).Code)
}

func TestStockLevel_AdjustNegativeOnHand(t *testing.T) {
	level, now := newLevel(t)
	require.NoError(t, level.Adjust(decimal.NewFromInt(3), now))

	err := level.Adjust(decimal.NewFromInt(-4), now)
	assert.ErrorIs(t, err, shared.ErrInvalidAdjustment)
	assert.True(t, level.QuantityOnHand.Equal(decimal.NewFromInt(3)), "rejected op must not mutate")
}

func TestStockLevel_AdjustCannotTouchReservedStock(t *testing.T) {
	level, now := newLevel(t)
	require.NoError(t, level.Adjust(decimal.NewFromInt(10), now))
	require.NoError(t, level.Reserve(decimal.NewFromInt(8), now))

	// on-hand stays positive but available would go negative
	err := level.Adjust(decimal.NewFromInt(-3), now)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestStockLevel_ReserveAndRelease(t *testing.T) {
	level, now := newLevel(t)
	require.NoError(t, level.Adjust(decimal.NewFromInt(10), now))

	require.NoError(t, level.Reserve(decimal.NewFromInt(4), now))
	assert.True(t, level.QuantityOnHand.Equal(decimal.NewFromInt(10)))
	assert.True(t, level.QuantityReserved.Equal(decimal.NewFromInt(4)))
	assert.True(t, level.QuantityAvailable.Equal(decimal.NewFromInt(6)))

	assert.ErrorIs(t, level.Reserve(decimal.NewFromInt(7), now), shared.ErrInsufficientStock)

	require.NoError(t, level.Release(decimal.NewFromInt(4), now))
	assert.True(t, level.QuantityReserved.IsZero())
	assert.True(t, level.QuantityAvailable.Equal(decimal.NewFromInt(10)))

	assert.ErrorIs(t, level.Release(decimal.NewFromInt(1), now), shared.ErrInvalidAdjustment)
}

func TestStockLevel_RecordCount(t *testing.T) {
	level, now := newLevel(t)
	require.NoError(t, level.Adjust(decimal.NewFromInt(20), now))
	require.NoError(t, level.Reserve(decimal.NewFromInt(5), now))

	variance, err := level.RecordCount(decimal.NewFromInt(18), now)
	require.NoError(t, err)
	assert.True(t, variance.Equal(decimal.NewFromInt(-2)))
	assert.True(t, level.QuantityOnHand.Equal(decimal.NewFromInt(18)))
	assert.True(t, level.QuantityReserved.Equal(decimal.NewFromInt(5)))
	assert.True(t, level.QuantityAvailable.Equal(decimal.NewFromInt(13)))
	assert.NoError(t, level.CheckInvariant())
}

func TestStockLevel_RecordCountBelowReservedRejected(t *testing.T) {
	level, now := newLevel(t)
	require.NoError(t, level.Adjust(decimal.NewFromInt(10), now))
	require.NoError(t, level.Reserve(decimal.NewFromInt(6), now))

	_, err := level.RecordCount(decimal.NewFromInt(5), now)
	assert.ErrorIs(t, err, shared.ErrInvalidAdjustment)
}

func TestStockLevel_RecordCountToZero(t *testing.T) {
	level, now := newLevel(t)
	require.NoError(t, level.Adjust(decimal.NewFromInt(7), now))

	variance, err := level.RecordCount(decimal.Zero, now)
	require.NoError(t, err)
	assert.True(t, variance.Equal(decimal.NewFromInt(-7)))
	assert.True(t, level.QuantityOnHand.IsZero())
}

func TestStockLevel_Debit(t *testing.T) {
	level, now := newLevel(t)
	require.NoError(t, level.Adjust(decimal.NewFromInt(5), now))
	require.NoError(t, level.Reserve(decimal.NewFromInt(2), now))

	require.NoError(t, level.Debit(decimal.NewFromInt(3), now))
	assert.True(t, level.QuantityOnHand.Equal(decimal.NewFromInt(2)))
	assert.True(t, level.QuantityAvailable.IsZero())
	assert.NoError(t, level.CheckInvariant())

	assert.ErrorIs(t, level.Debit(decimal.NewFromInt(1), now), shared.ErrInsufficientStock)
}

func TestStockLevel_FractionalQuantities(t *testing.T) {
	level, now := newLevel(t)

	require.NoError(t, level.Adjust(decimal.RequireFromString("2.5"), now))
	require.NoError(t, level.Reserve(decimal.RequireFromString("0.75"), now))
	assert.True(t, level.QuantityAvailable.Equal(decimal.RequireFromString("1.75")))
	assert.NoError(t, level.CheckInvariant())
}

func TestStockLevel_DistinctKeysPerLotAndSerial(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tenantID := uuid.New()
	itemID := uuid.New()
	locationID := uuid.New()

	plain, err := NewStockLevel(tenantID, StockKey{ItemID: itemID, LocationID: locationID}, now)
	require.NoError(t, err)
	lotted, err := NewStockLevel(tenantID, StockKey{ItemID: itemID, LocationID: locationID, LotNumber: "LOT-1"}, now)
	require.NoError(t, err)

	assert.NotEqual(t, plain.Key(), lotted.Key())
}

func TestStockLevel_EventsEmitted(t *testing.T) {
	level, now := newLevel(t)

	require.NoError(t, level.Adjust(decimal.NewFromInt(5), now))
	require.NoError(t, level.Reserve(decimal.NewFromInt(2), now))

	events := level.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeStockAdjusted, events[0].EventType())
	assert.Equal(t, EventTypeStockReserved, events[1].EventType())
}
