package magiclink

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

const (
	minKeySecretBytes  = 16
	minAEADSecretBytes = 32
)

// Key is immutable signing/verification key material: a keyed secret, the
// identifier carried in a token's header, and an optional validity window
// for signing.
type Key struct {
	kid       string
	secret    []byte
	createdAt int64
	expiresAt *int64 // nil means no expiry
}

// NewKey validates and constructs a Key. createdAt is seconds since epoch;
// expiresAt, if non-nil, is the last instant the key may be used to sign new
// tokens — expired keys remain valid for verification as long as the caller
// still holds them (KeySet.Find never filters by expiry).
func NewKey(kid string, secret []byte, createdAt int64, expiresAt *int64) (Key, error) {
	if kid == "" {
		return Key{}, fmt.Errorf("%w: key id must not be empty", ErrCrypto)
	}
	if createdAt <= 0 {
		return Key{}, fmt.Errorf("%w: key createdAt must be positive", ErrCrypto)
	}
	if len(secret) < minKeySecretBytes {
		return Key{}, fmt.Errorf("%w: key secret must be at least %d bytes, got %d", ErrCrypto, minKeySecretBytes, len(secret))
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return Key{kid: kid, secret: s, createdAt: createdAt, expiresAt: expiresAt}, nil
}

// GenerateKey creates a fresh Key with a random kid (the 16 raw bytes of a v4
// UUID, base64url encoded) and a random 32-byte secret, suitable for both HMAC signing and
// AES-256-GCM encryption. createdAt and expiresAt are supplied by the
// caller's clock; the function does no time I/O of its own.
func GenerateKey(createdAt int64, expiresAt *int64) (Key, error) {
	secret := make([]byte, minAEADSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return Key{}, fmt.Errorf("%w: generating key secret: %v", ErrCrypto, err)
	}
	id := uuid.New()
	kid := base64URLEncode(id[:])
	return NewKey(kid, secret, createdAt, expiresAt)
}

// KID returns the key identifier.
func (k Key) KID() string { return k.kid }

// CreatedAt returns the creation instant, seconds since epoch.
func (k Key) CreatedAt() int64 { return k.createdAt }

// ExpiresAt returns the expiry instant and whether one is set.
func (k Key) ExpiresAt() (int64, bool) {
	if k.expiresAt == nil {
		return 0, false
	}
	return *k.expiresAt, true
}

// Secret returns a copy of the raw key material. The library itself never
// persists a Key; a host that wants keys to survive a restart needs this to
// write them to its own store, so the cost of exposing it is borne once
// here rather than by every caller reimplementing key generation.
func (k Key) Secret() []byte {
	s := make([]byte, len(k.secret))
	copy(s, k.secret)
	return s
}

// signEligible reports whether the key may be selected for signing at now:
// unexpired, or with no expiry at all.
func (k Key) signEligible(now int64) bool {
	return k.expiresAt == nil || *k.expiresAt >= now
}

// aeadCapable reports whether the key secret is long enough for AES-256-GCM.
func (k Key) aeadCapable() bool { return len(k.secret) >= minAEADSecretBytes }
