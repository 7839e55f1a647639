package shared

import (
	"context"

	"github.com/google/uuid"
)

// Authorizer is the policy decision point consumed by the core. The core trusts
// the boolean result and never re-derives permissions itself.
type Authorizer interface {
	// Authorize returns nil if the actor may perform the action on the resource,
	// ErrUnauthorized otherwise.
	Authorize(ctx context.Context, actorID uuid.UUID, action string, resource string) error
}

// AllowAllAuthorizer permits every action. Used when an external policy service
// is not wired, and in tests.
type AllowAllAuthorizer struct{}

// Authorize always allows
func (AllowAllAuthorizer) Authorize(_ context.Context, _ uuid.UUID, _ string, _ string) error {
	return nil
}
