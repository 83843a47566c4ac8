package rowcache

import (
	"context"
)

// RowCache is a read-through cache for single-key point lookups.
// It memoizes both found rows and confirmed-absent rows, delegating entry
// lifetimes to the cache storage and load deduplication to the loader.
type RowCache[K KeyConstraint, V ValueConstraint] struct {
	Loader  SourceLoader[K, V]
	Storage CacheStorage[K, V]
}

// GetOrLoad retrieves the row associated with the given key from the cache.
// If there is no live presence marker for the key, it loads the row through
// the loader and returns the outcome.
// It returns nil as the Entry when the row is confirmed absent, either by a
// live negative marker or by the load itself.
// A load failure is returned as a *SourceError shared with every concurrent
// caller of the same load; it is never cached, so the next call retries.
func (c *RowCache[K, V]) GetOrLoad(ctx context.Context, key K) (*Entry[K, V], error) {
	if cacheEntry, err := c.Storage.Get(ctx, key); err != nil {
		return nil, err
	} else if cacheEntry != nil {
		return presentEntry(cacheEntry), nil
	}

	cacheEntry, err := c.Loader.LoadAndStore(ctx, key)
	if err != nil {
		return nil, err
	}
	return presentEntry(cacheEntry), nil
}

// GetOrLoadRef is a variant of GetOrLoad that borrows the caller's key.
// On the hit path the key is only read through the pointer for the lookup;
// an owned copy of the key is materialized only when a load must actually
// be issued and its outcome recorded. The semantics are identical to
// GetOrLoad. The pointee must not be mutated while the call is in flight.
func (c *RowCache[K, V]) GetOrLoadRef(ctx context.Context, key *K) (*Entry[K, V], error) {
	if cacheEntry, err := c.Storage.Get(ctx, *key); err != nil {
		return nil, err
	} else if cacheEntry != nil {
		return presentEntry(cacheEntry), nil
	}

	ownedKey := *key
	cacheEntry, err := c.Loader.LoadAndStore(ctx, ownedKey)
	if err != nil {
		return nil, err
	}
	return presentEntry(cacheEntry), nil
}

// Invalidate removes the presence marker for the key, regardless of variant.
// The next GetOrLoad for the key always re-triggers a load.
func (c *RowCache[K, V]) Invalidate(ctx context.Context, key K) error {
	return c.Storage.Invalidate(ctx, key)
}

// InvalidateAll removes every presence marker from the cache.
func (c *RowCache[K, V]) InvalidateAll(ctx context.Context) error {
	return c.Storage.InvalidateAll(ctx)
}

// presentEntry translates a presence marker into the caller-facing outcome:
// nil for a negative marker, the wrapped entry otherwise.
func presentEntry[K KeyConstraint, V ValueConstraint](cacheEntry *CacheEntry[K, V]) *Entry[K, V] {
	if cacheEntry == nil || cacheEntry.Negative {
		return nil
	}
	return &cacheEntry.Entry
}
