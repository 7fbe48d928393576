package magiclink

import (
	"fmt"
	"sync"
)

// KeySet is a mutable, concurrency-safe collection of Keys, unique by kid.
// The issuing and verifying sides of a deployment typically share one
// KeySet instance so a newly rotated-in key is immediately available for
// both signing and lookup.
type KeySet struct {
	mu   sync.RWMutex
	keys map[string]Key
}

// NewKeySet builds a KeySet from zero or more initial keys.
func NewKeySet(keys ...Key) *KeySet {
	ks := &KeySet{keys: make(map[string]Key, len(keys))}
	for _, k := range keys {
		ks.keys[k.KID()] = k
	}
	return ks
}

// Add inserts or replaces a key by kid. Safe for concurrent use; callers
// rotating keys at runtime should Add the new key before retiring the old
// one so in-flight verifications never observe a gap.
func (ks *KeySet) Add(k Key) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.keys[k.KID()] = k
}

// Find looks up a key by kid, expired or not — tokens issued before a
// rotation must keep verifying until their own exp, so verification lookup
// never filters by key expiry.
func (ks *KeySet) Find(kid string) (Key, bool) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	k, ok := ks.keys[kid]
	return k, ok
}

// GetForSign selects the key to use for new tokens: the greatest createdAt
// among keys with no expiry or an expiry still valid at now. Ties break on
// kid codepoint order so selection is deterministic across processes that
// happen to create two keys in the same second.
func (ks *KeySet) GetForSign(now int64) (Key, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	var best Key
	found := false
	for _, k := range ks.keys {
		if !k.signEligible(now) {
			continue
		}
		if !found {
			best, found = k, true
			continue
		}
		if k.createdAt > best.createdAt || (k.createdAt == best.createdAt && k.kid > best.kid) {
			best = k
		}
	}
	if !found {
		return Key{}, fmt.Errorf("%w: no unexpired signing key available", ErrCrypto)
	}
	return best, nil
}
