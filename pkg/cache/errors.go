package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBackendUnavailable is returned when a remote cache backend
	// cannot be reached. Callers should degrade to uncached operation.
	ErrBackendUnavailable = errors.New("cache backend unavailable")
)
