package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// Action names accepted by the executor. Every action runs as one idempotent
// atomic unit keyed by (tenant, action, idempotency key).
const (
	ActionStockAdjust     = "inventory.adjust_stock"
	ActionStockReserve    = "inventory.reserve_stock"
	ActionStockRelease    = "inventory.release_stock"
	ActionStockCount      = "inventory.count_stock"
	ActionPOCreate        = "procurement.create_order"
	ActionPOSubmit        = "procurement.submit_order"
	ActionPOConfirm       = "procurement.confirm_order"
	ActionPOReceive       = "procurement.receive_order"
	ActionPOCancel        = "procurement.cancel_order"
	ActionTransferCreate  = "transfer.create"
	ActionTransferShip    = "transfer.ship"
	ActionTransferReceive = "transfer.receive"
	ActionTransferCancel  = "transfer.cancel"
	ActionUsageRecord     = "inventory.record_usage"
	ActionUsageReverse    = "inventory.reverse_usage"
)

// Command is one request to run a business action exactly once
type Command struct {
	TenantID       uuid.UUID       `json:"tenant_id"`
	ActorID        uuid.UUID       `json:"actor_id"`
	Action         string          `json:"action"`
	IdempotencyKey string          `json:"idempotency_key"`
	Payload        json.RawMessage `json:"payload"`
}

// Result is the recorded outcome of a command. Replayed is true when the
// outcome came from the idempotency store instead of a fresh execution.
type Result struct {
	Success  bool                `json:"success"`
	EntityID string              `json:"entity_id,omitempty"`
	Data     json.RawMessage     `json:"data,omitempty"`
	Error    *shared.DomainError `json:"error,omitempty"`
	Replayed bool                `json:"-"`
}

// Handler executes the business logic for one action. A returned DomainError
// is recorded as the key's permanent outcome; a transient error makes the
// attempt retryable; any other error releases the key for a client retry.
type Handler func(ctx context.Context, cmd Command) (*Result, error)

// Config holds executor retry policy
type Config struct {
	// MaxAttempts bounds executions per command, first try included
	MaxAttempts int
	// RetryBackoff is the base delay between attempts, doubled each retry
	RetryBackoff time.Duration
}

// DefaultConfig returns the default executor policy
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		RetryBackoff: 50 * time.Millisecond,
	}
}

// Executor is the single entry point for business actions. It enforces
// authorization, idempotency, and bounded retry of transient storage
// failures around registered handlers.
type Executor struct {
	store      shared.IdempotencyStore
	authorizer shared.Authorizer
	clock      shared.Clock
	logger     *zap.Logger
	config     Config
	handlers   map[string]Handler
	units      UnitRunner
}

// NewExecutor creates an Executor with no handlers registered
func NewExecutor(store shared.IdempotencyStore, authorizer shared.Authorizer, clock shared.Clock, logger *zap.Logger, config Config) *Executor {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &Executor{
		store:      store,
		authorizer: authorizer,
		clock:      clock,
		logger:     logger,
		config:     config,
		handlers:   make(map[string]Handler),
	}
}

// WithUnitRunner makes each successful execution record its outcome inside
// the same atomic unit as the handler's effects. Without a runner the outcome
// is written after the business transaction commits, which leaves a window
// where a crash strands a committed action as PENDING and a later lease
// reclaim re-executes it. Use it whenever the idempotency store shares the
// unit runner's database.
func (e *Executor) WithUnitRunner(units UnitRunner) *Executor {
	e.units = units
	return e
}

// Register binds a handler to an action name. Registering twice panics; the
// handler table is assembled once at startup.
func (e *Executor) Register(action string, handler Handler) {
	if _, exists := e.handlers[action]; exists {
		panic(fmt.Sprintf("workflow: handler already registered for action %s", action))
	}
	e.handlers[action] = handler
}

// Execute runs a command exactly once per (tenant, action, idempotency key).
// Replays return the recorded outcome without touching the handler.
func (e *Executor) Execute(ctx context.Context, cmd Command) (*Result, error) {
	if err := e.validate(cmd); err != nil {
		return nil, err
	}
	handler := e.handlers[cmd.Action]

	if err := e.authorizer.Authorize(ctx, cmd.ActorID, cmd.Action, cmd.TenantID.String()); err != nil {
		e.logger.Warn("action not authorized",
			zap.String("action", cmd.Action),
			zap.String("actor_id", cmd.ActorID.String()),
			zap.String("tenant_id", cmd.TenantID.String()))
		return nil, err
	}

	scope := shared.IdempotencyScope{TenantID: cmd.TenantID, Action: cmd.Action}
	payloadHash := hashPayload(cmd.Payload)

	begin, err := e.store.Begin(ctx, scope, cmd.IdempotencyKey, payloadHash)
	if err != nil {
		return nil, err
	}

	switch begin.State {
	case shared.BeginCompleted:
		result := &Result{Replayed: true}
		if err := json.Unmarshal(begin.Result, result); err != nil {
			return nil, fmt.Errorf("decode stored result: %w", err)
		}
		result.Replayed = true
		e.logger.Debug("replayed stored result",
			zap.String("action", cmd.Action),
			zap.String("idempotency_key", cmd.IdempotencyKey))
		return result, nil

	case shared.BeginFailed:
		return &Result{
			Success:  false,
			Error:    shared.NewDomainError(begin.ErrorCode, begin.ErrorMessage),
			Replayed: true,
		}, nil

	case shared.BeginInProgress:
		return nil, shared.ErrIdempotencyInProgress
	}

	run := handler
	if e.units != nil {
		run = e.completeInUnit(handler, scope)
	}

	result, err := e.runWithRetry(ctx, run, cmd)
	if err != nil {
		if de := shared.AsDomainError(err); de != nil {
			if failErr := e.store.Fail(ctx, scope, cmd.IdempotencyKey, de); failErr != nil {
				e.logger.Error("failed to record business failure",
					zap.String("action", cmd.Action),
					zap.String("idempotency_key", cmd.IdempotencyKey),
					zap.Error(failErr))
			}
			return &Result{Success: false, Error: de}, nil
		}

		// transient exhaustion or unexpected failure: free the key so the
		// client's retry can re-execute
		if relErr := e.store.Release(ctx, scope, cmd.IdempotencyKey); relErr != nil {
			e.logger.Error("failed to release idempotency claim",
				zap.String("action", cmd.Action),
				zap.String("idempotency_key", cmd.IdempotencyKey),
				zap.Error(relErr))
		}
		return nil, err
	}

	if e.units == nil {
		stored, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		if err := e.store.Complete(ctx, scope, cmd.IdempotencyKey, stored); err != nil {
			e.logger.Error("failed to record result",
				zap.String("action", cmd.Action),
				zap.String("idempotency_key", cmd.IdempotencyKey),
				zap.Error(err))
			return nil, err
		}
	}

	e.logger.Info("action executed",
		zap.String("action", cmd.Action),
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("entity_id", result.EntityID))
	return result, nil
}

// completeInUnit wraps handler so the business effects and the stored outcome
// commit in one atomic unit. Errors roll the whole unit back, leaving the key
// PENDING for the surrounding Fail or Release handling.
func (e *Executor) completeInUnit(handler Handler, scope shared.IdempotencyScope) Handler {
	return func(ctx context.Context, cmd Command) (*Result, error) {
		var result *Result
		err := e.units.RunInUnit(ctx, func(ctx context.Context) error {
			r, err := handler(ctx, cmd)
			if err != nil {
				return err
			}
			stored, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			if err := e.store.Complete(ctx, scope, cmd.IdempotencyKey, stored); err != nil {
				return err
			}
			result = r
			return nil
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

func (e *Executor) runWithRetry(ctx context.Context, handler Handler, cmd Command) (*Result, error) {
	backoff := e.config.RetryBackoff
	var lastErr error

	for attempt := 1; attempt <= e.config.MaxAttempts; attempt++ {
		result, err := handler(ctx, cmd)
		if err == nil {
			return result, nil
		}
		if !shared.IsTransient(err) {
			return nil, err
		}

		lastErr = err
		e.logger.Warn("transient failure, retrying",
			zap.String("action", cmd.Action),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < e.config.MaxAttempts && backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, lastErr
}

func (e *Executor) validate(cmd Command) error {
	if cmd.TenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_TENANT", "Tenant ID is required")
	}
	if cmd.IdempotencyKey == "" {
		return shared.NewDomainError("INVALID_IDEMPOTENCY_KEY", "Idempotency key is required")
	}
	if _, ok := e.handlers[cmd.Action]; !ok {
		return shared.NewDomainError("UNKNOWN_ACTION", fmt.Sprintf("No handler registered for action %s", cmd.Action))
	}
	return nil
}

func hashPayload(payload json.RawMessage) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
