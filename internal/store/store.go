// Package store implements the shared key-value layer that coordinates the
// request lifecycle across handler invocations and server instances. It
// exposes a minimal KV contract (get, set-with-expiry, set-if-absent,
// delete, prefix scan, and an ordered index), a Redis-backed implementation
// for production, an in-memory implementation for tests, and the typed
// RequestStore that owns the key-naming scheme.
//
// No multi-key operation is atomic; callers must design every multi-step
// sequence to be safely re-enterable from any partial-completion point.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested key does not exist or has expired.
var ErrNotFound = errors.New("key not found")

// KV is the key-value contract required by the request lifecycle. All
// methods must be safe for concurrent use; values are plain strings
// (JSON-encoded where the caller needs structure).
type KV interface {
	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value at key. A ttl of zero means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX writes value at key only when the key is absent, reporting
	// whether the write happened. This is the store's atomic
	// check-then-set primitive; dedup markers rely on it.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Scan returns all keys starting with prefix. Order is unspecified.
	Scan(ctx context.Context, prefix string) ([]string, error)

	// OrderedAdd inserts member into the ordered index at key with the
	// given score, refreshing the index expiry to ttl.
	OrderedAdd(ctx context.Context, key, member string, score float64, ttl time.Duration) error

	// OrderedRange returns up to n members of the index at key in
	// ascending score order. A missing index yields an empty slice.
	OrderedRange(ctx context.Context, key string, n int64) ([]string, error)

	// OrderedRemove removes members from the index at key.
	OrderedRemove(ctx context.Context, key string, members ...string) error
}
