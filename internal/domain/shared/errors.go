package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a business-rule violation detected before any mutation.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound              = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists         = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput          = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized          = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrInvalidState          = NewDomainError("INVALID_STATE_TRANSITION", "Operation not allowed in current state")
	ErrInsufficientStock     = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrOverReceipt           = NewDomainError("OVER_RECEIPT", "Received quantity exceeds outstanding quantity")
	ErrInvalidAdjustment     = NewDomainError("INVALID_ADJUSTMENT", "Adjustment would make on-hand quantity negative")
	ErrIdempotencyConflict   = NewDomainError("IDEMPOTENCY_CONFLICT", "Idempotency key reused with a different payload")
	ErrIdempotencyInProgress = NewDomainError("IDEMPOTENCY_IN_PROGRESS", "Another request with this idempotency key is in progress")
)

// IsDomainError reports whether err is (or wraps) a DomainError.
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// AsDomainError extracts the DomainError from err, or nil if there is none.
func AsDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// TransientError wraps an underlying persistence failure. The whole atomic unit
// is safe to retry under the same idempotency key; every other error class must
// surface to the caller without a retry.
type TransientError struct {
	Err error
}

// Error implements the error interface
func (e *TransientError) Error() string {
	return fmt.Sprintf("transient storage error: %v", e.Err)
}

// Unwrap returns the underlying cause
func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as a retryable storage failure.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
