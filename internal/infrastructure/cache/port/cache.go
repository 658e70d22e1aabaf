package port

import (
	"context"
	"time"
)

// Cache is the minimal key-value contract the read path uses for short-lived
// result caching. Implementations must be concurrency-safe, and all methods
// context-aware for caller-driven timeouts.
type Cache interface {
	// Get fetches the value for key, returning ErrMiss when the key is absent
	// and a non-nil error only for transport or server failures.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. Zero or negative TTL persists until eviction.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes one or more keys and returns the number removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss signals a cache miss in a typed way so callers can differentiate
// misses from transport errors.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
