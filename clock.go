package magiclink

import "time"

// Clock abstracts wall-clock time as seconds since epoch so tests can drive
// issue/verify through fixed instants without sleeping. It is deliberately
// not monotonic-aware: every timing check in this package (iat, nbf, exp) is
// a wall-clock comparison, never a duration measurement.
type Clock interface {
	Now() int64
}

// SystemClock is the production Clock, backed by time.Now().
type SystemClock struct{}

// Now returns the current time in seconds since epoch.
func (SystemClock) Now() int64 { return time.Now().Unix() }

// FixedClock is a Clock that always returns the same instant. Useful in
// tests that need deterministic issue/verify timing.
type FixedClock int64

// Now returns the fixed instant.
func (f FixedClock) Now() int64 { return int64(f) }
