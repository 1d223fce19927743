package provider

import (
	"context"
	"time"

	"github.com/seenimoa/macropulse/internal/infra"
)

// BaseAdapter provides common functionality for adapter implementations.
// Embed this in concrete adapters to get response caching and rate limiting
// for free.
type BaseAdapter struct {
	info    Info
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// NewBaseAdapter creates a base adapter with the given cache TTL and rate
// limit (rateLimit requests per rateWindow).
func NewBaseAdapter(info Info, cacheTTL time.Duration, rateLimit int, rateWindow time.Duration) BaseAdapter {
	return BaseAdapter{
		info:    info,
		cache:   infra.NewCache(cacheTTL),
		limiter: infra.NewRateLimiter(rateLimit, rateWindow),
	}
}

// Info returns the adapter's metadata.
func (b *BaseAdapter) Info() Info { return b.info }

// MarkDegraded records that the adapter runs without a required credential.
// Concrete adapters short-circuit every fetch with *ErrUnavailable while
// degraded, so indicators on them go absent instead of crashing the run.
func (b *BaseAdapter) MarkDegraded() { b.info.Degraded = true }

// CacheGet retrieves a value from the adapter's response cache.
func (b *BaseAdapter) CacheGet(key string) (any, bool) {
	return b.cache.Get(key)
}

// CacheSet stores a value in the adapter's response cache.
func (b *BaseAdapter) CacheSet(key string, value any) {
	b.cache.Set(key, value)
}

// RateLimit waits until a request slot is available.
func (b *BaseAdapter) RateLimit(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}
