// Package cache provides pluggable byte-blob caching for pipeline results.
//
// Every pipeline stage (parse, layout, render) can be cached independently.
// The [Cache] interface abstracts the backend so the CLI can use a local
// file cache while a shared deployment uses Redis, and tests use the
// in-memory or null implementations.
//
// Keys are produced by a [Keyer] so that all consumers of a cache agree on
// the key schema and entries invalidate correctly when their inputs change.
package cache

import (
	"context"
	"time"
)

// TTLs for the different entry categories. Snapshots expire quickly since
// the source tree they describe changes often; layouts and artifacts are
// pure functions of their hashed inputs and can live longer.
const (
	TTLSnapshot = 5 * time.Minute
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte blobs with optional expiration.
//
// Implementations must be safe for concurrent use. A Get on a missing or
// expired key returns (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration; any other
	// ttl sets the deadline, so a negative ttl stores an entry that is
	// already expired.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
