package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_AllowsUpToMax(t *testing.T) {
	l := NewMemory(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, err := l.Allow("user-1")
		require.NoError(t, err)
		require.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := l.Allow("user-1")
	require.NoError(t, err)
	require.False(t, allowed, "4th request should be denied")
}

func TestMemory_IsolatesBySubject(t *testing.T) {
	l := NewMemory(1, time.Minute)

	allowed, err := l.Allow("user-1")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = l.Allow("user-2")
	require.NoError(t, err)
	require.True(t, allowed, "a different subject must have its own budget")
}
