package magiclink

import "errors"

// Programmer errors: caller misconfiguration, never returned from Verify.
// Verify funnels every attacker-controlled parsing failure into a Reason on
// VerifyResult instead (see reasons.go).
var (
	// ErrInvalidFormat indicates malformed input that should never originate
	// from a well-behaved caller: a bad base URL passed to CreateURL, a
	// non-finite float handed to canonical JSON, a non-object top-level JSON
	// value where an object was required.
	ErrInvalidFormat = errors.New("magiclink: invalid format")

	// ErrCrypto indicates a key-material or cipher failure: no signing key
	// available, a key shorter than the required minimum, encryption
	// requested without cipher support.
	ErrCrypto = errors.New("magiclink: crypto error")

	// ErrRateLimited is raised by LinkBuilder.Create when an IssueLimiter
	// denies the request. It is a programmer/operational error, not a verify
	// reason: the caller asked for a link, not for a verification decision.
	ErrRateLimited = errors.New("magiclink: issue rate limited")
)

// IsInvalidFormat reports whether err is or wraps ErrInvalidFormat.
func IsInvalidFormat(err error) bool { return errors.Is(err, ErrInvalidFormat) }

// IsCryptoError reports whether err is or wraps ErrCrypto.
func IsCryptoError(err error) bool { return errors.Is(err, ErrCrypto) }
