package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const maxTrackedKeys = 50_000

// RateLimiter is a per-key token bucket. Idle keys are evicted after one window.
type RateLimiter struct {
	mu      sync.Mutex
	buckets *expirable.LRU[string, *rate.Limiter]
	limit   int
	window  time.Duration
}

// NewRateLimiter allows limit events per window for each key, bursting up to limit.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	return &RateLimiter{
		buckets: expirable.NewLRU[string, *rate.Limiter](maxTrackedKeys, nil, window),
		limit:   limit,
		window:  window,
	}
}

// Check consumes one token for key.
func (rl *RateLimiter) Check(_ context.Context, key string) domain.GuardResult {
	rl.mu.Lock()
	lim, ok := rl.buckets.Get(key)
	if !ok {
		lim = rate.NewLimiter(rate.Every(rl.window/time.Duration(rl.limit)), rl.limit)
	}
	// Re-adding refreshes the idle TTL.
	rl.buckets.Add(key, lim)
	rl.mu.Unlock()

	if !lim.Allow() {
		return domain.GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %d/%s", rl.limit, rl.window),
			Guard:   "rate_limiter",
		}
	}
	return domain.GuardResult{Allowed: true}
}
