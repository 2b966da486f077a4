package cache

import (
	"context"
	"time"
)

// Cache is the contract for the read-side cache layer.
// The stats read path is the main consumer; implementations must be safe
// for concurrent use.
type Cache interface {
	// Get loads the value stored under key into dest.
	// Returns found=false on a cache miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys from the cache. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
