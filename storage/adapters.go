package storage

import (
	"context"
	"fmt"

	rowcache "github.com/karupanerura/row-cache"
)

var _ rowcache.CacheStorage[uint8, struct{}] = (*SilentErrorStorage[uint8, struct{}])(nil)

// SilentErrorStorage is a decorator for a rowcache.CacheStorage that silently handles
// errors during operations. Instead of propagating the error, it calls the provided
// OnError function. A failing cache storage then degrades lookups to cache misses
// rather than failing them.
// Errors handed to OnError are wrapped with the matching operation sentinel
// (ErrGet, ErrSet, ErrInvalidate, ErrInvalidateAll) so the handler can classify
// them with errors.Is.
type SilentErrorStorage[K rowcache.KeyConstraint, V rowcache.ValueConstraint] struct {
	// Storage is the underlying storage that this decorator wraps.
	Storage rowcache.CacheStorage[K, V]

	// OnError is a function that is called when an error occurs during an operation.
	// The error is passed to the function as an argument.
	OnError func(error)
}

// Get retrieves the presence marker associated with the given key from the underlying
// storage. If an error occurs and an OnError handler is set, the error is passed to the
// handler and the method reports a cache miss (nil entry, nil error).
func (s *SilentErrorStorage[K, V]) Get(ctx context.Context, key K) (*rowcache.CacheEntry[K, V], error) {
	entry, err := s.Storage.Get(ctx, key)
	if err != nil {
		if s.OnError != nil {
			s.OnError(fmt.Errorf("%w: %w", ErrGet, err))
		}
		return nil, nil
	}
	return entry, nil
}

// Set stores the given presence marker in the underlying storage.
// If an error occurs and an OnError handler is set, the error is passed to the
// handler. The method itself always returns nil.
func (s *SilentErrorStorage[K, V]) Set(ctx context.Context, entry *rowcache.CacheEntry[K, V]) error {
	if err := s.Storage.Set(ctx, entry); err != nil && s.OnError != nil {
		s.OnError(fmt.Errorf("%w: %w", ErrSet, err))
	}
	return nil
}

// Invalidate removes the presence marker for the key from the underlying storage.
// If an error occurs and an OnError handler is set, the error is passed to the
// handler. The method itself always returns nil.
func (s *SilentErrorStorage[K, V]) Invalidate(ctx context.Context, key K) error {
	if err := s.Storage.Invalidate(ctx, key); err != nil && s.OnError != nil {
		s.OnError(fmt.Errorf("%w: %w", ErrInvalidate, err))
	}
	return nil
}

// InvalidateAll removes every presence marker from the underlying storage.
// If an error occurs and an OnError handler is set, the error is passed to the
// handler. The method itself always returns nil.
func (s *SilentErrorStorage[K, V]) InvalidateAll(ctx context.Context) error {
	if err := s.Storage.InvalidateAll(ctx); err != nil && s.OnError != nil {
		s.OnError(fmt.Errorf("%w: %w", ErrInvalidateAll, err))
	}
	return nil
}

var _ rowcache.CacheStorage[uint8, struct{}] = (*FunctionsStorage[uint8, struct{}])(nil)

// FunctionsStorage is a rowcache.CacheStorage implementation that uses functions
// to perform the storage operations.
type FunctionsStorage[K rowcache.KeyConstraint, V rowcache.ValueConstraint] struct {
	// SetFunc stores a presence marker for the entry's key.
	// If the key already exists, it should overwrite the existing marker.
	SetFunc func(context.Context, *rowcache.CacheEntry[K, V]) error

	// GetFunc retrieves the presence marker for a key.
	// If the key is not stored or expired, it should return nil as the CacheEntry.
	// If the key is cached as confirmed-absent, it should return a CacheEntry with
	// Negative set to true.
	GetFunc func(context.Context, K) (*rowcache.CacheEntry[K, V], error)

	// InvalidateFunc removes the presence marker for a key.
	InvalidateFunc func(context.Context, K) error

	// InvalidateAllFunc removes every presence marker.
	InvalidateAllFunc func(context.Context) error
}

// Set calls the SetFunc function to store the given presence marker.
func (s *FunctionsStorage[K, V]) Set(ctx context.Context, entry *rowcache.CacheEntry[K, V]) error {
	return s.SetFunc(ctx, entry)
}

// Get calls the GetFunc function to retrieve the presence marker for the given key.
func (s *FunctionsStorage[K, V]) Get(ctx context.Context, key K) (*rowcache.CacheEntry[K, V], error) {
	return s.GetFunc(ctx, key)
}

// Invalidate calls the InvalidateFunc function to remove the presence marker for the given key.
func (s *FunctionsStorage[K, V]) Invalidate(ctx context.Context, key K) error {
	return s.InvalidateFunc(ctx, key)
}

// InvalidateAll calls the InvalidateAllFunc function to remove every presence marker.
func (s *FunctionsStorage[K, V]) InvalidateAll(ctx context.Context) error {
	return s.InvalidateAllFunc(ctx)
}
