package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allowN reports how many of n calls for key were let through.
func allowN(rl *KeyedRateLimiter, key string, n int) int {
	passed := 0
	for range n {
		if rl.Allow(key) {
			passed++
		}
	}
	return passed
}

func TestPerMinute_LoginAttemptsPerClient(t *testing.T) {
	tests := []struct {
		name      string
		perMinute int
		attempts  int
		want      int
	}{
		{"within budget", 10, 4, 4},
		{"budget exhausted", 10, 15, 10},
		{"zero budget still allows one", 0, 3, 1},
		{"negative budget still allows one", -5, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := PerMinute(tt.perMinute)
			defer rl.Stop()

			assert.Equal(t, tt.want, allowN(rl, "203.0.113.7", tt.attempts))
		})
	}
}

func TestAllow_ClientsHaveSeparateBudgets(t *testing.T) {
	rl := PerMinute(2)
	defer rl.Stop()

	assert.Equal(t, 2, allowN(rl, "203.0.113.7", 5))
	assert.True(t, rl.Allow("198.51.100.20"), "a second client is not charged for the first")
	assert.True(t, rl.Allow("2001:db8::1"))
	assert.Equal(t, 3, rl.Len())
}

func TestWait_DescribeRequestsQueueBehindBudget(t *testing.T) {
	rl := New(10, 1)
	defer rl.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "assistant"))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "first describe goes straight through")

	start = time.Now()
	require.NoError(t, rl.Wait(ctx, "assistant"))
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond, "second describe waits for a token")
}

func TestWait_GivesUpWhenSessionLeaves(t *testing.T) {
	rl := New(0.1, 1)
	defer rl.Stop()
	require.True(t, rl.Allow("assistant"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, rl.Wait(ctx, "assistant"))
}

func TestEvictIdle_ForgetsQuietClients(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("203.0.113.7")
	now = now.Add(DefaultIdleTTL / 2)
	rl.Allow("198.51.100.20")
	now = now.Add(DefaultIdleTTL/2 + time.Second)

	assert.Equal(t, 1, rl.evictIdle())
	assert.Equal(t, 1, rl.Len())
	assert.True(t, rl.Allow("203.0.113.7"), "an evicted client starts with a full bucket")
}

func TestStop_Idempotent(t *testing.T) {
	rl := PerMinute(1)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
