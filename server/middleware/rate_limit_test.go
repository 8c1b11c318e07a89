package middleware

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	require.True(t, rl.Allow("user1"))
	require.True(t, rl.Allow("user1"))
	// Burst exhausted.
	require.False(t, rl.Allow("user1"))

	// Independent key has its own bucket.
	require.True(t, rl.Allow("user2"))
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 20; i++ {
		require.True(t, rl.Allow("k"))
	}
}
