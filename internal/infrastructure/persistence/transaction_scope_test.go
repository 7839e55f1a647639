package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

func TestGormTransactionScopeCommitsOnSuccess(t *testing.T) {
	db := setupTestDB(t)
	clock := shared.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	scope := NewGormTransactionScope(db, clock)
	ctx := context.Background()

	tenantID := uuid.New()
	key := inventory.StockKey{ItemID: uuid.New(), LocationID: uuid.New()}

	err := scope.Execute(ctx, func(repos workflow.Repositories) error {
		level, err := repos.StockLevels().GetOrCreateForUpdate(ctx, tenantID, key)
		if err != nil {
			return err
		}
		if err := level.Adjust(decimal.NewFromInt(10), clock.Now()); err != nil {
			return err
		}
		return repos.StockLevels().Save(ctx, level)
	})
	require.NoError(t, err)

	level, err := (&stockLevelRepository{db: db, clock: clock}).FindByKey(ctx, tenantID, key)
	require.NoError(t, err)
	assert.True(t, level.QuantityOnHand.Equal(decimal.NewFromInt(10)))
}

func TestGormTransactionScopeRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	clock := shared.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	scope := NewGormTransactionScope(db, clock)
	ctx := context.Background()

	tenantID := uuid.New()
	key := inventory.StockKey{ItemID: uuid.New(), LocationID: uuid.New()}

	err := scope.Execute(ctx, func(repos workflow.Repositories) error {
		level, err := repos.StockLevels().GetOrCreateForUpdate(ctx, tenantID, key)
		if err != nil {
			return err
		}
		if err := level.Adjust(decimal.NewFromInt(10), clock.Now()); err != nil {
			return err
		}
		if err := repos.StockLevels().Save(ctx, level); err != nil {
			return err
		}
		// a business rejection after a write must discard the write
		return shared.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	_, err = (&stockLevelRepository{db: db, clock: clock}).FindByKey(ctx, tenantID, key)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTransactionScopePreservesDomainErrors(t *testing.T) {
	db := setupTestDB(t)
	clock := shared.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	scope := NewGormTransactionScope(db, clock)

	err := scope.Execute(context.Background(), func(repos workflow.Repositories) error {
		return shared.ErrOverReceipt
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrOverReceipt)
	assert.False(t, shared.IsTransient(err))
}
