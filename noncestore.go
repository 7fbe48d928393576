package magiclink

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// NonceStore is the replay ledger. Consume must return true the first time
// it sees a given jti and false on every subsequent call while the entry is
// still unexpired, atomically: it is the single linearization point for
// replay prevention, so implementations must make the check-and-set a
// single atomic operation, not a Get followed by a Set.
//
// expiresAt is seconds since epoch, matching Claims.Exp — it tells the store
// when it may reclaim the entry, not when to re-arm it.
type NonceStore interface {
	Consume(jti string, expiresAt int64) bool
}

// MemoryNonceStore is the reference in-memory NonceStore, backed by
// patrickmn/go-cache the same way the teacher's internal/cache/memory
// package backs its response cache: expired entries are swept opportunistically
// by the underlying cache's janitor, and a mutex makes the test-and-set in
// Consume atomic across goroutines (go-cache's own methods are individually
// safe, but "get or set" needs to be a single critical section).
type MemoryNonceStore struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// NewMemoryNonceStore builds a MemoryNonceStore. cleanupInterval controls
// how often go-cache's janitor sweeps expired entries; pass a few minutes
// in production, it has no bearing on correctness.
func NewMemoryNonceStore(cleanupInterval time.Duration) *MemoryNonceStore {
	return &MemoryNonceStore{c: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Consume implements NonceStore.
func (s *MemoryNonceStore) Consume(jti string, expiresAt int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.c.Get(jti); found {
		return false
	}
	ttl := time.Until(time.Unix(expiresAt, 0))
	if ttl <= 0 {
		ttl = time.Second
	}
	s.c.Set(jti, expiresAt, ttl)
	return true
}

// BlackholeNonceStore always returns true: every token verifies as if it
// were the first presentation. Use it for intentionally multi-use tokens
// (requireOneTime will still be enforced independently if set).
type BlackholeNonceStore struct{}

// Consume implements NonceStore.
func (BlackholeNonceStore) Consume(string, int64) bool { return true }
