package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

type idempotencyRecord struct {
	status       shared.IdempotencyStatus
	payloadHash  string
	result       []byte
	errorCode    string
	errorMessage string
	expiresAt    time.Time
	leaseExpires time.Time
}

// InMemoryIdempotencyStore is a process-local IdempotencyStore for tests and
// single-instance deployments. Claims are serialized by a mutex, which gives
// the same atomic claim semantics a unique constraint does.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	records map[string]*idempotencyRecord
	config  shared.IdempotencyConfig
	clock   shared.Clock
	done    chan struct{}
	closed  sync.Once
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// NewInMemoryIdempotencyStore creates a store and starts its expiry sweeper
func NewInMemoryIdempotencyStore(config shared.IdempotencyConfig, clock shared.Clock) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		records: make(map[string]*idempotencyRecord),
		config:  config,
		clock:   clock,
		done:    make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Begin atomically claims (scope, key) for execution
func (s *InMemoryIdempotencyStore) Begin(ctx context.Context, scope shared.IdempotencyScope, key, payloadHash string) (*shared.BeginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	storageKey := s.storageKey(scope, key)

	rec, exists := s.records[storageKey]
	if exists && !rec.expiresAt.IsZero() && now.After(rec.expiresAt) {
		delete(s.records, storageKey)
		exists = false
	}

	if !exists {
		s.records[storageKey] = &idempotencyRecord{
			status:       shared.IdempotencyPending,
			payloadHash:  payloadHash,
			leaseExpires: now.Add(s.config.PendingLease),
		}
		return &shared.BeginResult{State: shared.BeginFresh}, nil
	}

	if rec.payloadHash != payloadHash {
		return nil, shared.ErrIdempotencyConflict
	}

	switch rec.status {
	case shared.IdempotencyCompleted:
		return &shared.BeginResult{State: shared.BeginCompleted, Result: rec.result}, nil
	case shared.IdempotencyFailed:
		return &shared.BeginResult{
			State:        shared.BeginFailed,
			ErrorCode:    rec.errorCode,
			ErrorMessage: rec.errorMessage,
		}, nil
	}

	// PENDING: a lapsed lease means the prior executor crashed mid-flight
	if now.After(rec.leaseExpires) {
		rec.leaseExpires = now.Add(s.config.PendingLease)
		return &shared.BeginResult{State: shared.BeginFresh}, nil
	}
	return &shared.BeginResult{State: shared.BeginInProgress}, nil
}

// Complete stores the successful result for a claimed key
func (s *InMemoryIdempotencyStore) Complete(ctx context.Context, scope shared.IdempotencyScope, key string, result []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.records[s.storageKey(scope, key)]
	if !exists || rec.status != shared.IdempotencyPending {
		return shared.NewDomainError("IDEMPOTENCY_NOT_CLAIMED", "No pending claim to complete")
	}
	rec.status = shared.IdempotencyCompleted
	rec.result = result
	rec.expiresAt = s.clock.Now().Add(s.config.TTL)
	return nil
}

// Fail stores a business failure for a claimed key
func (s *InMemoryIdempotencyStore) Fail(ctx context.Context, scope shared.IdempotencyScope, key string, cause *shared.DomainError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.records[s.storageKey(scope, key)]
	if !exists || rec.status != shared.IdempotencyPending {
		return shared.NewDomainError("IDEMPOTENCY_NOT_CLAIMED", "No pending claim to fail")
	}
	rec.status = shared.IdempotencyFailed
	rec.errorCode = cause.Code
	rec.errorMessage = cause.Message
	rec.expiresAt = s.clock.Now().Add(s.config.TTL)
	return nil
}

// Release discards a PENDING claim
func (s *InMemoryIdempotencyStore) Release(ctx context.Context, scope shared.IdempotencyScope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	storageKey := s.storageKey(scope, key)
	if rec, exists := s.records[storageKey]; exists && rec.status == shared.IdempotencyPending {
		delete(s.records, storageKey)
	}
	return nil
}

// Close stops the expiry sweeper
func (s *InMemoryIdempotencyStore) Close() error {
	s.closed.Do(func() { close(s.done) })
	return nil
}

// Len returns the number of live records, for tests
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *InMemoryIdempotencyStore) storageKey(scope shared.IdempotencyScope, key string) string {
	return scope.String() + ":" + key
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *InMemoryIdempotencyStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for key, rec := range s.records {
		if !rec.expiresAt.IsZero() && now.After(rec.expiresAt) {
			delete(s.records, key)
		}
	}
}
