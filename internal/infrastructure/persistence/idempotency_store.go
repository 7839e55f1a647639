package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// IdempotencyRecord is the durable mapping from (scope, key) to an outcome.
// The unique index is the atomic claim: exactly one concurrent Begin inserts
// the row, everyone else hits the constraint and reads the existing record.
type IdempotencyRecord struct {
	ID             uuid.UUID                `gorm:"type:uuid;primary_key"`
	Scope          string                   `gorm:"type:varchar(150);not null;uniqueIndex:idx_idempotency_scope_key,priority:1"`
	Key            string                   `gorm:"type:varchar(200);not null;uniqueIndex:idx_idempotency_scope_key,priority:2"`
	Status         shared.IdempotencyStatus `gorm:"type:varchar(20);not null"`
	PayloadHash    string                   `gorm:"type:varchar(64);not null"`
	Result         []byte                   `gorm:"type:bytes"`
	ErrorCode      string                   `gorm:"type:varchar(100)"`
	ErrorMessage   string                   `gorm:"type:text"`
	LeaseExpiresAt time.Time                `gorm:"not null"`
	ExpiresAt      *time.Time               `gorm:"index"`
	CreatedAt      time.Time                `gorm:"not null"`
	UpdatedAt      time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (IdempotencyRecord) TableName() string {
	return "idempotency_records"
}

// GormIdempotencyStore is the database-backed IdempotencyStore. It shares
// the service's PostgreSQL instance, so deployments without Redis still get
// durable exactly-once semantics.
type GormIdempotencyStore struct {
	db     *gorm.DB
	config shared.IdempotencyConfig
	clock  shared.Clock
}

var _ shared.IdempotencyStore = (*GormIdempotencyStore)(nil)

// NewGormIdempotencyStore creates a store over an open database handle
func NewGormIdempotencyStore(db *gorm.DB, config shared.IdempotencyConfig, clock shared.Clock) *GormIdempotencyStore {
	return &GormIdempotencyStore{db: db, config: config, clock: clock}
}

// Begin atomically claims (scope, key) for execution
func (s *GormIdempotencyStore) Begin(ctx context.Context, scope shared.IdempotencyScope, key, payloadHash string) (*shared.BeginResult, error) {
	now := s.clock.Now()

	record := IdempotencyRecord{
		ID:             uuid.New(),
		Scope:          scope.String(),
		Key:            key,
		Status:         shared.IdempotencyPending,
		PayloadHash:    payloadHash,
		LeaseExpiresAt: now.Add(s.config.PendingLease),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := s.db.WithContext(ctx).Create(&record).Error
	if err == nil {
		return &shared.BeginResult{State: shared.BeginFresh}, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, translateError(err)
	}

	var existing IdempotencyRecord
	if err := s.db.WithContext(ctx).
		Where("scope = ? AND key = ?", scope.String(), key).
		First(&existing).Error; err != nil {
		return nil, translateError(err)
	}

	// an expired outcome is as good as absent; clear it and claim again
	if existing.ExpiresAt != nil && now.After(*existing.ExpiresAt) {
		if err := s.db.WithContext(ctx).Delete(&IdempotencyRecord{}, "id = ?", existing.ID).Error; err != nil {
			return nil, translateError(err)
		}
		return s.Begin(ctx, scope, key, payloadHash)
	}

	if existing.PayloadHash != payloadHash {
		return nil, shared.ErrIdempotencyConflict
	}

	switch existing.Status {
	case shared.IdempotencyCompleted:
		return &shared.BeginResult{State: shared.BeginCompleted, Result: existing.Result}, nil
	case shared.IdempotencyFailed:
		return &shared.BeginResult{
			State:        shared.BeginFailed,
			ErrorCode:    existing.ErrorCode,
			ErrorMessage: existing.ErrorMessage,
		}, nil
	}

	// PENDING: reclaim only if the lease lapsed, and only as the single
	// caller whose conditional update lands
	if now.After(existing.LeaseExpiresAt) {
		result := s.db.WithContext(ctx).
			Model(&IdempotencyRecord{}).
			Where("id = ? AND status = ? AND lease_expires_at = ?", existing.ID, shared.IdempotencyPending, existing.LeaseExpiresAt).
			Updates(map[string]interface{}{
				"lease_expires_at": now.Add(s.config.PendingLease),
				"updated_at":       now,
			})
		if result.Error != nil {
			return nil, translateError(result.Error)
		}
		if result.RowsAffected == 1 {
			return &shared.BeginResult{State: shared.BeginFresh}, nil
		}
	}
	return &shared.BeginResult{State: shared.BeginInProgress}, nil
}

// Complete stores the successful result for a claimed key. When the context
// carries an open transaction the write joins it, making the recorded outcome
// atomic with the business effects committed in the same unit.
func (s *GormIdempotencyStore) Complete(ctx context.Context, scope shared.IdempotencyScope, key string, result []byte) error {
	now := s.clock.Now()
	expiresAt := now.Add(s.config.TTL)

	db := s.db
	if tx := txFrom(ctx); tx != nil {
		db = tx
	}
	update := db.WithContext(ctx).
		Model(&IdempotencyRecord{}).
		Where("scope = ? AND key = ? AND status = ?", scope.String(), key, shared.IdempotencyPending).
		Updates(map[string]interface{}{
			"status":     shared.IdempotencyCompleted,
			"result":     result,
			"expires_at": expiresAt,
			"updated_at": now,
		})
	if update.Error != nil {
		return translateError(update.Error)
	}
	if update.RowsAffected == 0 {
		return shared.NewDomainError("IDEMPOTENCY_NOT_CLAIMED", "No pending claim to complete")
	}
	return nil
}

// Fail stores a business failure for a claimed key
func (s *GormIdempotencyStore) Fail(ctx context.Context, scope shared.IdempotencyScope, key string, cause *shared.DomainError) error {
	now := s.clock.Now()
	expiresAt := now.Add(s.config.TTL)

	update := s.db.WithContext(ctx).
		Model(&IdempotencyRecord{}).
		Where("scope = ? AND key = ? AND status = ?", scope.String(), key, shared.IdempotencyPending).
		Updates(map[string]interface{}{
			"status":        shared.IdempotencyFailed,
			"error_code":    cause.Code,
			"error_message": cause.Message,
			"expires_at":    expiresAt,
			"updated_at":    now,
		})
	if update.Error != nil {
		return translateError(update.Error)
	}
	if update.RowsAffected == 0 {
		return shared.NewDomainError("IDEMPOTENCY_NOT_CLAIMED", "No pending claim to fail")
	}
	return nil
}

// Release discards a PENDING claim
func (s *GormIdempotencyStore) Release(ctx context.Context, scope shared.IdempotencyScope, key string) error {
	err := s.db.WithContext(ctx).
		Where("scope = ? AND key = ? AND status = ?", scope.String(), key, shared.IdempotencyPending).
		Delete(&IdempotencyRecord{}).Error
	return translateError(err)
}

// Close is a no-op; the database handle is owned by the caller
func (s *GormIdempotencyStore) Close() error {
	return nil
}
