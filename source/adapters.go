package source

import (
	"context"

	rowcache "github.com/karupanerura/row-cache"
)

// FunctionSource is a RowSource that uses a function to perform the point lookup.
// The function returns nil as the Entry when no row exists for the key.
type FunctionSource[K rowcache.KeyConstraint, V rowcache.ValueConstraint] func(context.Context, K) (*rowcache.Entry[K, V], error)

var _ rowcache.RowSource[uint8, struct{}] = (FunctionSource[uint8, struct{}])(nil)

// Get calls the function to load the row for the given key.
func (s FunctionSource[K, V]) Get(ctx context.Context, key K) (*rowcache.Entry[K, V], error) {
	return s(ctx, key)
}

// LintSource is a RowSource decorator that is used for linting purposes.
// It validates the behavior of the wrapped source implementation, ensuring it
// properly follows the RowSource contract.
type LintSource[K rowcache.KeyConstraint, V rowcache.ValueConstraint] struct {
	Source rowcache.RowSource[K, V]
}

var _ rowcache.RowSource[uint8, struct{}] = (*LintSource[uint8, struct{}])(nil)

// Get retrieves the row for the given key from the wrapped source.
// It checks that a returned entry carries the requested key.
func (s *LintSource[K, V]) Get(ctx context.Context, key K) (*rowcache.Entry[K, V], error) {
	entry, err := s.Source.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	// nil entry means not found, so ignore it
	if entry == nil {
		return nil, nil
	}

	if entry.Key != key {
		panic("key mismatch")
	}
	return entry, nil
}
