// Package pureloader provides a SourceLoader without load coalescing.
// Useful for sequential tasks and tests, or when the caller already
// serializes loads per key.
package pureloader

import (
	"context"

	rowcache "github.com/karupanerura/row-cache"
)

// PureLoader is a simple SourceLoader that performs the point lookup inline
// on the calling goroutine. Concurrent callers for the same key each hit the
// backing store; use singleflightloader when that matters.
type PureLoader[K rowcache.KeyConstraint, V rowcache.ValueConstraint] struct {
	source  rowcache.RowSource[K, V]
	storage rowcache.CacheStorage[K, V]
}

var _ rowcache.SourceLoader[uint8, struct{}] = (*PureLoader[uint8, struct{}])(nil)

// NewPureLoader creates a new PureLoader with the given storage and source.
func NewPureLoader[K rowcache.KeyConstraint, V rowcache.ValueConstraint](storage rowcache.CacheStorage[K, V], source rowcache.RowSource[K, V]) *PureLoader[K, V] {
	return &PureLoader[K, V]{
		storage: storage,
		source:  source,
	}
}

// LoadAndStore performs the point lookup for the given key, stores the
// resulting presence marker, and returns it. A load failure is returned as a
// *rowcache.SourceError and nothing is stored.
func (p *PureLoader[K, V]) LoadAndStore(ctx context.Context, key K) (*rowcache.CacheEntry[K, V], error) {
	entry, err := p.source.Get(ctx, key)
	if err != nil {
		return nil, &rowcache.SourceError{Key: key, Err: err}
	}

	marker := &rowcache.CacheEntry[K, V]{Entry: rowcache.Entry[K, V]{Key: key}, Negative: true}
	if entry != nil {
		marker = &rowcache.CacheEntry[K, V]{Entry: *entry}
	}
	if err := p.storage.Set(ctx, marker); err != nil {
		return nil, err
	}
	return marker, nil
}
