package guard

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SignatureCache is a bounded in-memory front for the processed_signatures
// table. A hit only means this process already handled the signature; the
// table stays authoritative across restarts.
type SignatureCache struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, struct{}]
}

// NewSignatureCache keeps at most size signatures, each for at most ttl.
func NewSignatureCache(size int, ttl time.Duration) *SignatureCache {
	if size <= 0 {
		size = 10_000
	}
	return &SignatureCache{lru: expirable.NewLRU[string, struct{}](size, nil, ttl)}
}

// Seen reports whether sig was marked and not yet evicted.
func (c *SignatureCache) Seen(sig string) bool {
	return c.lru.Contains(sig)
}

// Mark records sig. It returns false if sig was already present.
func (c *SignatureCache) Mark(sig string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lru.Contains(sig) {
		return false
	}
	c.lru.Add(sig, struct{}{})
	return true
}

// Forget evicts sig so a later delivery is processed again.
func (c *SignatureCache) Forget(sig string) {
	c.lru.Remove(sig)
}

// Len returns the number of cached signatures.
func (c *SignatureCache) Len() int {
	return c.lru.Len()
}
