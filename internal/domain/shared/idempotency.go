package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IdempotencyStatus is the lifecycle state of an idempotency record
type IdempotencyStatus string

const (
	// IdempotencyPending marks a record whose execution is in flight
	IdempotencyPending IdempotencyStatus = "PENDING"
	// IdempotencyCompleted marks a record with a stored successful result
	IdempotencyCompleted IdempotencyStatus = "COMPLETED"
	// IdempotencyFailed marks a record with a stored business failure
	IdempotencyFailed IdempotencyStatus = "FAILED"
)

// IdempotencyScope identifies the dedup namespace for a key. The same
// client-supplied key used for two different actions is never conflated.
type IdempotencyScope struct {
	TenantID uuid.UUID
	Action   string
}

// String returns the canonical scope encoding used as a storage key prefix
func (s IdempotencyScope) String() string {
	return fmt.Sprintf("%s:%s", s.TenantID, s.Action)
}

// BeginState is the outcome of an atomic Begin call
type BeginState int

const (
	// BeginFresh means this caller owns the key and must execute the action
	BeginFresh BeginState = iota
	// BeginInProgress means another caller holds the key; fail fast
	BeginInProgress
	// BeginCompleted means a stored result exists and must be replayed
	BeginCompleted
	// BeginFailed means a stored business failure exists and must be replayed
	BeginFailed
)

// BeginResult carries the stored outcome for replayed keys
type BeginResult struct {
	State        BeginState
	Result       []byte
	ErrorCode    string
	ErrorMessage string
}

// IdempotencyStore persists the mapping from (scope, key) to a recorded
// outcome. Begin is the sole synchronization point across concurrent retries
// of the same logical request: exactly one caller transitions a key from
// absent to PENDING, implemented with an atomic compare-and-set (unique
// constraint or SETNX), never read-then-write.
type IdempotencyStore interface {
	// Begin atomically claims (scope, key) for execution. Replays with a
	// different payload hash return ErrIdempotencyConflict.
	Begin(ctx context.Context, scope IdempotencyScope, key, payloadHash string) (*BeginResult, error)

	// Complete stores the successful result for a claimed key. Called at most
	// once per record.
	Complete(ctx context.Context, scope IdempotencyScope, key string, result []byte) error

	// Fail stores a business failure for a claimed key so replays surface the
	// same rejection without re-executing.
	Fail(ctx context.Context, scope IdempotencyScope, key string, cause *DomainError) error

	// Release discards a PENDING claim after a transient failure so a later
	// client retry re-executes the unit.
	Release(ctx context.Context, scope IdempotencyScope, key string) error

	// Close releases store resources
	Close() error
}

// IdempotencyConfig holds policy parameters for idempotency handling
type IdempotencyConfig struct {
	// TTL is the retention window for recorded outcomes. It must be at least
	// as long as the expected client retry window.
	TTL time.Duration

	// PendingLease bounds how long a PENDING claim blocks other callers. A
	// crashed executor leaves a PENDING record; after the lease expires the
	// key can be claimed again.
	PendingLease time.Duration
}

// DefaultIdempotencyConfig returns the default idempotency policy
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:          24 * time.Hour,
		PendingLease: time.Minute,
	}
}
