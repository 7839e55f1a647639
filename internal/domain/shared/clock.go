package shared

import "time"

// Clock abstracts time for testability. All persisted timestamps in the core
// flow through an injected Clock rather than calling time.Now directly.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by the wall clock.
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a Clock that always returns the same instant. Intended for tests.
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.Instant
}

// NewFixedClock creates a FixedClock pinned to the given instant
func NewFixedClock(instant time.Time) FixedClock {
	return FixedClock{Instant: instant}
}
