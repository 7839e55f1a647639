package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// stepClock is a Clock whose instant tests can move forward
type stepClock struct {
	mu      sync.Mutex
	instant time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instant
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instant = c.instant.Add(d)
}

func newTestStore(t *testing.T) (*InMemoryIdempotencyStore, *stepClock) {
	t.Helper()
	clock := &stepClock{instant: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := NewInMemoryIdempotencyStore(shared.DefaultIdempotencyConfig(), clock)
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func testScope() shared.IdempotencyScope {
	return shared.IdempotencyScope{TenantID: uuid.New(), Action: "inventory.adjust_stock"}
}

func TestInMemoryStore_FreshClaimThenComplete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	scope := testScope()

	begin, err := store.Begin(ctx, scope, "key-1", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, shared.BeginFresh, begin.State)

	require.NoError(t, store.Complete(ctx, scope, "key-1", []byte(`{"success":true}`)))

	replay, err := store.Begin(ctx, scope, "key-1", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, shared.BeginCompleted, replay.State)
	assert.Equal(t, []byte(`{"success":true}`), replay.Result)
}

func TestInMemoryStore_FailedOutcomeReplayed(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	scope := testScope()

	_, err := store.Begin(ctx, scope, "key-1", "hash-a")
	require.NoError(t, err)
	require.NoError(t, store.Fail(ctx, scope, "key-1", shared.ErrInsufficientStock))

	replay, err := store.Begin(ctx, scope, "key-1", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, shared.BeginFailed, replay.State)
	assert.Equal(t, "INSUFFICIENT_STOCK", replay.ErrorCode)
}

func TestInMemoryStore_PayloadHashConflict(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	scope := testScope()

	_, err := store.Begin(ctx, scope, "key-1", "hash-a")
	require.NoError(t, err)

	_, err = store.Begin(ctx, scope, "key-1", "hash-b")
	assert.ErrorIs(t, err, shared.ErrIdempotencyConflict)
}

func TestInMemoryStore_PendingBlocksUntilLeaseExpires(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	scope := testScope()

	_, err := store.Begin(ctx, scope, "key-1", "hash-a")
	require.NoError(t, err)

	blocked, err := store.Begin(ctx, scope, "key-1", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, shared.BeginInProgress, blocked.State)

	// a crashed executor never completes; the lease frees the key
	clock.Advance(2 * time.Minute)
	reclaimed, err := store.Begin(ctx, scope, "key-1", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, shared.BeginFresh, reclaimed.State)
}

func TestInMemoryStore_ReleaseFreesClaim(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	scope := testScope()

	_, err := store.Begin(ctx, scope, "key-1", "hash-a")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, scope, "key-1"))

	again, err := store.Begin(ctx, scope, "key-1", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, shared.BeginFresh, again.State)
}

func TestInMemoryStore_OutcomeExpiresAfterTTL(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	scope := testScope()

	_, err := store.Begin(ctx, scope, "key-1", "hash-a")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, scope, "key-1", []byte(`{}`)))

	clock.Advance(25 * time.Hour)
	fresh, err := store.Begin(ctx, scope, "key-1", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, shared.BeginFresh, fresh.State, "expired outcomes are claimable again")
}

func TestInMemoryStore_ScopesAreIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	scopeA := shared.IdempotencyScope{TenantID: uuid.New(), Action: "inventory.adjust_stock"}
	scopeB := shared.IdempotencyScope{TenantID: scopeA.TenantID, Action: "inventory.reserve_stock"}

	_, err := store.Begin(ctx, scopeA, "key-1", "hash-a")
	require.NoError(t, err)

	// same key under a different action is an independent record
	fresh, err := store.Begin(ctx, scopeB, "key-1", "hash-b")
	require.NoError(t, err)
	assert.Equal(t, shared.BeginFresh, fresh.State)
}

func TestInMemoryStore_ConcurrentBeginSingleWinner(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	scope := testScope()

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	freshCount := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			begin, err := store.Begin(ctx, scope, "key-1", "hash-a")
			if err == nil && begin.State == shared.BeginFresh {
				mu.Lock()
				freshCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, freshCount, "exactly one caller may claim the key")
}
