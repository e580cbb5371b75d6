/*
Package cache provides the read-through TTL cache in front of the query layer.

PURPOSE:
  Dashboard aggregates are recomputed at most once per TTL window per key.
  The cache stores serialized response bodies ([]byte), not domain values:
  whatever was cached is exactly what every hit within the window receives.

STALENESS MODEL:
  TTL-bounded staleness only. Writes never invalidate cache entries; a
  committed sale becomes visible in cached aggregates when their windows
  lapse. Operators can force the issue through Clear / Invalidate.

KEYS:
  <prefix>:<actor>:<path>[:<query>] - per-actor segmentation keeps one
  caller's parameterized views from leaking to another.

BACKENDS:
  - memory: process-local map, the default
  - redis: shared cache for multi-process deployments

SEE ALSO:
  - api/handlers.go: The only call sites
*/
package cache

import (
	"context"
	"strings"
	"time"
)

// Info describes a cache backend for the admin endpoint.
type Info struct {
	Backend    string        `json:"backend"`
	Keys       int           `json:"keys"`
	KeyPrefix  string        `json:"key_prefix"`
	DefaultTTL time.Duration `json:"default_ttl"`
}

// Cache is a read-through byte cache with per-call TTLs.
type Cache interface {
	// GetOrCompute returns the cached value for key, or runs compute, stores
	// the result for ttl, and returns it. Concurrent callers on a cold key
	// share one computation. Compute errors are returned, never cached.
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error)

	// Invalidate removes every key starting with prefix. Returns the number
	// of entries removed.
	Invalidate(ctx context.Context, prefix string) (int, error)

	// Clear removes every entry this cache owns.
	Clear(ctx context.Context) (int, error)

	// Info reports backend identity and entry count.
	Info(ctx context.Context) (Info, error)
}

// Key builds the canonical cache key for an actor's view of a path. The query
// segment is omitted when empty, so /api/dashboard/overview with and without
// an empty query string share one entry.
func Key(prefix, actor, path, query string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte(':')
	b.WriteString(actor)
	b.WriteByte(':')
	b.WriteString(path)
	if query != "" {
		b.WriteByte(':')
		b.WriteString(query)
	}
	return b.String()
}
