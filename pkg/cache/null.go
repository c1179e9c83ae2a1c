package cache

import (
	"context"
	"time"
)

// NullCache discards everything and reports every lookup as a miss.
// Used when caching is disabled (--no-cache, backend "none") and as a
// degraded fallback when a remote backend is unreachable.
type NullCache struct{}

var _ Cache = (*NullCache)(nil)

// NewNullCache creates a no-op cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always misses.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the entry.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete is a no-op.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close is a no-op.
func (c *NullCache) Close() error {
	return nil
}
