package ratelimit

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is a single-process fixed-window limiter built on patrickmn/go-cache,
// the same library the teacher uses for its response cache
// (internal/cache/memory). Fine for a single instance; use Redis for a
// deployment with more than one process issuing links.
type Memory struct {
	mu     sync.Mutex
	c      *gocache.Cache
	max    int64
	window time.Duration
}

// NewMemory builds an in-memory limiter allowing max issuances per subject
// per window.
func NewMemory(max int64, window time.Duration) *Memory {
	return &Memory{c: gocache.New(window, window/2), max: max, window: window}
}

// Allow satisfies magiclink.IssueLimiter.
func (l *Memory) Allow(subject string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// IncrementInt64 keeps the entry's original expiration, so the window
	// ends a fixed time after the subject's first issuance in it.
	if count, err := l.c.IncrementInt64(subject, 1); err == nil {
		return count <= l.max, nil
	}
	l.c.Set(subject, int64(1), l.window)
	return l.max >= 1, nil
}
