package rowcache

import (
	"context"
)

// KeyConstraint is an interface for key constraints.
type KeyConstraint interface {
	comparable
}

// ValueConstraint is an interface for value constraints.
type ValueConstraint interface {
	any
}

// Entry is a key-value pair.
type Entry[K KeyConstraint, V ValueConstraint] struct {
	// Key is the key of the entry.
	Key K

	// Value is the row value associated with the key.
	Value V
}

// CacheEntry is the presence marker stored in the cache for a key.
// It records either a row found in the backing store or the confirmed
// absence of a row. Both variants are genuine cache entries: a negative
// entry expires on its own schedule and keeps repeated misses away from
// the backing store until new data may have appeared.
type CacheEntry[K KeyConstraint, V ValueConstraint] struct {
	Entry[K, V]

	// Negative indicates that the backing store confirmed that no row
	// exists for the key. If Negative is true, the Value field must be
	// the zero value of V.
	Negative bool
}

// CacheStorage is an interface for a concurrent expiring cache storage backend.
// Implementations must be thread-safe and are the sole owner of entry lifetimes:
// they decide when an entry expires and when capacity pressure evicts it.
type CacheStorage[K KeyConstraint, V ValueConstraint] interface {
	// Set stores a presence marker for the entry's key.
	// If the key already exists, it overwrites the existing marker.
	// It must clone the input entry before storing it.
	Set(context.Context, *CacheEntry[K, V]) error

	// Get retrieves the presence marker for a key.
	// If the key is not stored or its marker has expired, it returns nil as the CacheEntry.
	// If the key is cached as confirmed-absent, it returns a CacheEntry with Negative set to true.
	// It must clone the returned entry before returning it.
	Get(context.Context, K) (*CacheEntry[K, V], error)

	// Invalidate removes the presence marker for a key, regardless of variant.
	// Removing an unknown key is not an error.
	Invalidate(context.Context, K) error

	// InvalidateAll removes every presence marker.
	InvalidateAll(context.Context) error
}

// RowSource is an interface for the backing store of the cache.
// It performs a point lookup for a single key.
type RowSource[K KeyConstraint, V ValueConstraint] interface {
	// Get retrieves the row for a key.
	// It returns nil as the Entry when the backing store has no row for the key.
	// That outcome is legitimate and cacheable, distinct from an error.
	// The lookup must be idempotent and must return at most one row.
	Get(context.Context, K) (*Entry[K, V], error)
}

// SourceLoader is an interface for loading a row from the backing store and
// recording the outcome in the cache storage.
// Implementations must be thread-safe.
type SourceLoader[K KeyConstraint, V ValueConstraint] interface {
	// LoadAndStore loads the row for a key from the backing store, stores the
	// resulting presence marker (positive or negative), and returns it.
	// On a load failure nothing is stored and the error is returned.
	LoadAndStore(context.Context, K) (*CacheEntry[K, V], error)
}
