package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := rl.Check(ctx, "user-1")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	ctx := context.Background()

	rl.Check(ctx, "user-1")
	rl.Check(ctx, "user-1")
	result := rl.Check(ctx, "user-1")

	assert.False(t, result.Allowed)
	assert.Equal(t, "rate_limiter", result.Guard)
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	ctx := context.Background()

	assert.True(t, rl.Check(ctx, "user-a").Allowed)
	assert.True(t, rl.Check(ctx, "user-b").Allowed)
	assert.False(t, rl.Check(ctx, "user-a").Allowed)
}

func TestCircuitBreaker_ClosedByDefault(t *testing.T) {
	cb := NewCircuitBreaker(3, 5*time.Second)

	result := cb.Check(context.Background(), "getTransaction")
	assert.True(t, result.Allowed)
	assert.Equal(t, CircuitClosed, cb.State("getTransaction"))
}

func TestCircuitBreaker_OpensOnThreshold(t *testing.T) {
	cb := NewCircuitBreaker(2, 5*time.Second)
	ctx := context.Background()
	boom := errors.New("rpc 503")

	cb.Record("getTransaction", boom)
	cb.Record("getTransaction", boom)

	result := cb.Check(ctx, "getTransaction")
	assert.False(t, result.Allowed)
	assert.Equal(t, "circuit_breaker", result.Guard)
	assert.Equal(t, CircuitOpen, cb.State("getTransaction"))
}

func TestCircuitBreaker_SuccessResets(t *testing.T) {
	cb := NewCircuitBreaker(2, 5*time.Second)
	ctx := context.Background()

	cb.Record("getTransaction", errors.New("timeout"))
	cb.Record("getTransaction", nil)
	cb.Record("getTransaction", errors.New("timeout"))

	assert.True(t, cb.Check(ctx, "getTransaction").Allowed)
}

func TestCircuitBreaker_HalfOpenSingleProbe(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Second)
	now := time.Now()
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	cb.Record("rpc", errors.New("down"))
	require.False(t, cb.Check(ctx, "rpc").Allowed)

	now = now.Add(2 * time.Second)
	assert.True(t, cb.Check(ctx, "rpc").Allowed, "first probe after reset timeout")
	assert.False(t, cb.Check(ctx, "rpc").Allowed, "second concurrent probe")

	cb.Record("rpc", errors.New("still down"))
	assert.Equal(t, CircuitOpen, cb.State("rpc"))

	now = now.Add(2 * time.Second)
	require.True(t, cb.Check(ctx, "rpc").Allowed)
	cb.Record("rpc", nil)
	assert.Equal(t, CircuitClosed, cb.State("rpc"))
}

func TestSignatureCache_MarkSeenForget(t *testing.T) {
	c := NewSignatureCache(10, time.Hour)

	assert.False(t, c.Seen("sig-1"))
	assert.True(t, c.Mark("sig-1"))
	assert.False(t, c.Mark("sig-1"))
	assert.True(t, c.Seen("sig-1"))

	c.Forget("sig-1")
	assert.False(t, c.Seen("sig-1"))
	assert.True(t, c.Mark("sig-1"))
}

func TestSignatureCache_Bounded(t *testing.T) {
	c := NewSignatureCache(2, time.Hour)

	c.Mark("a")
	c.Mark("b")
	c.Mark("c")

	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Seen("a"), "oldest entry evicted")
	assert.True(t, c.Seen("c"))
}
