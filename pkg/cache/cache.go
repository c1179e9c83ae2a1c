// Package cache provides pluggable caching for pipeline stages.
//
// Three backends are available: FileCache for CLI usage (entries on
// disk under a cache directory), RedisCache for shared deployments,
// and NullCache to disable caching entirely. Keys are generated by a
// Keyer so that every stage's inputs are part of its key.
package cache

import (
	"context"
	"time"
)

// Default TTLs per pipeline stage. Snapshots are the most volatile
// (the backend may re-answer a question differently); layouts and
// rendered artifacts are pure functions of their inputs and keep
// longer.
const (
	TTLSnapshot = 1 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry TTL.
// The bool result of Get distinguishes a miss from an empty value.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
