package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

type redisIdempotencyRecord struct {
	Status       shared.IdempotencyStatus `json:"status"`
	PayloadHash  string                   `json:"payload_hash"`
	Result       []byte                   `json:"result,omitempty"`
	ErrorCode    string                   `json:"error_code,omitempty"`
	ErrorMessage string                   `json:"error_message,omitempty"`
	LeaseExpires time.Time                `json:"lease_expires"`
}

// RedisIdempotencyStore is the shared IdempotencyStore for multi-instance
// deployments. The atomic claim is Redis SETNX: exactly one caller creates
// the record for a key, every other concurrent caller reads the existing one.
//
// The outcome write cannot join the database transaction that commits the
// business effects, so a crash between that commit and Complete leaves the
// key PENDING until the lease lapses and a retry re-executes. Deployments
// where that window is unacceptable use the database-backed store, whose
// Complete commits with the effects.
type RedisIdempotencyStore struct {
	client *redis.Client
	config shared.IdempotencyConfig
	clock  shared.Clock
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)

// NewRedisIdempotencyStore creates a store over an existing Redis client
func NewRedisIdempotencyStore(client *redis.Client, config shared.IdempotencyConfig, clock shared.Clock) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		client: client,
		config: config,
		clock:  clock,
	}
}

// Begin atomically claims (scope, key) for execution
func (s *RedisIdempotencyStore) Begin(ctx context.Context, scope shared.IdempotencyScope, key, payloadHash string) (*shared.BeginResult, error) {
	now := s.clock.Now()
	storageKey := s.storageKey(scope, key)

	pending := redisIdempotencyRecord{
		Status:       shared.IdempotencyPending,
		PayloadHash:  payloadHash,
		LeaseExpires: now.Add(s.config.PendingLease),
	}
	data, err := json.Marshal(pending)
	if err != nil {
		return nil, fmt.Errorf("marshal idempotency record: %w", err)
	}

	claimed, err := s.client.SetNX(ctx, storageKey, data, s.config.TTL).Result()
	if err != nil {
		return nil, shared.NewTransientError(fmt.Errorf("redis setnx: %w", err))
	}
	if claimed {
		return &shared.BeginResult{State: shared.BeginFresh}, nil
	}

	record, err := s.load(ctx, storageKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// record expired between SETNX and GET; treat as a lost race
			return &shared.BeginResult{State: shared.BeginInProgress}, nil
		}
		return nil, err
	}

	if record.PayloadHash != payloadHash {
		return nil, shared.ErrIdempotencyConflict
	}

	switch record.Status {
	case shared.IdempotencyCompleted:
		return &shared.BeginResult{State: shared.BeginCompleted, Result: record.Result}, nil
	case shared.IdempotencyFailed:
		return &shared.BeginResult{
			State:        shared.BeginFailed,
			ErrorCode:    record.ErrorCode,
			ErrorMessage: record.ErrorMessage,
		}, nil
	}

	if now.After(record.LeaseExpires) {
		record.LeaseExpires = now.Add(s.config.PendingLease)
		if err := s.save(ctx, storageKey, record, redis.KeepTTL); err != nil {
			return nil, err
		}
		return &shared.BeginResult{State: shared.BeginFresh}, nil
	}
	return &shared.BeginResult{State: shared.BeginInProgress}, nil
}

// Complete stores the successful result for a claimed key
func (s *RedisIdempotencyStore) Complete(ctx context.Context, scope shared.IdempotencyScope, key string, result []byte) error {
	storageKey := s.storageKey(scope, key)

	record, err := s.load(ctx, storageKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.NewDomainError("IDEMPOTENCY_NOT_CLAIMED", "No pending claim to complete")
		}
		return err
	}
	if record.Status != shared.IdempotencyPending {
		return shared.NewDomainError("IDEMPOTENCY_NOT_CLAIMED", "No pending claim to complete")
	}

	record.Status = shared.IdempotencyCompleted
	record.Result = result
	return s.save(ctx, storageKey, record, s.config.TTL)
}

// Fail stores a business failure for a claimed key
func (s *RedisIdempotencyStore) Fail(ctx context.Context, scope shared.IdempotencyScope, key string, cause *shared.DomainError) error {
	storageKey := s.storageKey(scope, key)

	record, err := s.load(ctx, storageKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.NewDomainError("IDEMPOTENCY_NOT_CLAIMED", "No pending claim to fail")
		}
		return err
	}
	if record.Status != shared.IdempotencyPending {
		return shared.NewDomainError("IDEMPOTENCY_NOT_CLAIMED", "No pending claim to fail")
	}

	record.Status = shared.IdempotencyFailed
	record.ErrorCode = cause.Code
	record.ErrorMessage = cause.Message
	return s.save(ctx, storageKey, record, s.config.TTL)
}

// Release discards a PENDING claim
func (s *RedisIdempotencyStore) Release(ctx context.Context, scope shared.IdempotencyScope, key string) error {
	storageKey := s.storageKey(scope, key)

	record, err := s.load(ctx, storageKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if record.Status != shared.IdempotencyPending {
		return nil
	}
	if err := s.client.Del(ctx, storageKey).Err(); err != nil {
		return shared.NewTransientError(fmt.Errorf("redis del: %w", err))
	}
	return nil
}

// Close releases the underlying client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

func (s *RedisIdempotencyStore) storageKey(scope shared.IdempotencyScope, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", scope.String(), key)
}

func (s *RedisIdempotencyStore) load(ctx context.Context, storageKey string) (*redisIdempotencyRecord, error) {
	data, err := s.client.Get(ctx, storageKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, shared.NewTransientError(fmt.Errorf("redis get: %w", err))
	}
	var record redisIdempotencyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal idempotency record: %w", err)
	}
	return &record, nil
}

func (s *RedisIdempotencyStore) save(ctx context.Context, storageKey string, record *redisIdempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, storageKey, data, ttl).Err(); err != nil {
		return shared.NewTransientError(fmt.Errorf("redis set: %w", err))
	}
	return nil
}
