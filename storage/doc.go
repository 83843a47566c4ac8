// Package storage provides cache storage adapters and utilities for the row-cache library.
//
// This package contains adapters such as SilentErrorStorage, which wraps any
// CacheStorage implementation to report errors out-of-band instead of failing
// lookups, and FunctionsStorage, which allows building custom storage
// implementations from function callbacks.
//
// This package also defines common error values for storage operations:
// ErrGet, ErrSet, ErrInvalidate, and ErrInvalidateAll.
package storage
