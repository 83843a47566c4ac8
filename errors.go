package rowcache

import "fmt"

// SourceError is a shared snapshot of a backing store failure.
// Every caller waiting on the same in-flight load receives the identical
// *SourceError value. It is immutable once created and is never stored in
// the cache: after a failed load the key has no entry, so the next lookup
// retries the backing store.
type SourceError struct {
	// Key is the key whose load failed.
	Key any

	// Err is the failure reported by the backing store.
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("rowcache: load %v: %s", e.Key, e.Err)
}

// Unwrap returns the underlying backing store error.
func (e *SourceError) Unwrap() error {
	return e.Err
}
