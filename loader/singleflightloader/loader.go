package singleflightloader

import (
	"context"
	"errors"
	"runtime"
	"sync"

	rowcache "github.com/karupanerura/row-cache"
	"github.com/karupanerura/row-cache/internal/panicutil"
)

var errGoexit = errors.New("runtime.Goexit is called")

// SingleFlightLoader is a SourceLoader implementation that guarantees at most
// one backing store lookup per key per miss episode. Concurrent callers for
// the same key attach to the in-flight load and share its outcome.
type SingleFlightLoader[K rowcache.KeyConstraint, V rowcache.ValueConstraint] struct {
	storage rowcache.CacheStorage[K, V]
	source  rowcache.RowSource[K, V]
	cloner  rowcache.ValueCloner[V]
	context func() context.Context

	mu        sync.Mutex
	waitlists map[K][]chan either[error, *rowcache.CacheEntry[K, V]]
}

var _ rowcache.SourceLoader[uint8, struct{}] = (*SingleFlightLoader[uint8, struct{}])(nil)

// NewSingleFlightLoader creates a new SingleFlightLoader instance.
func NewSingleFlightLoader[K rowcache.KeyConstraint, V rowcache.ValueConstraint](storage rowcache.CacheStorage[K, V], source rowcache.RowSource[K, V], opts ...Option[K, V]) *SingleFlightLoader[K, V] {
	loader := &SingleFlightLoader[K, V]{
		storage:   storage,
		source:    source,
		cloner:    nil,
		context:   context.Background,
		waitlists: map[K][]chan either[error, *rowcache.CacheEntry[K, V]]{},
	}
	for _, o := range opts {
		o.apply(loader)
	}
	if loader.cloner == nil {
		loader.cloner = rowcache.DefaultValueCloner[V]()
	}
	return loader
}

type either[L any, R any] struct {
	L L
	R R
}

// LoadAndStore performs the point lookup for the given key, records the
// outcome as a presence marker, and returns it. If a load for the key is
// already in flight, it waits for that load instead of issuing another one.
// If the caller's context is cancelled while waiting, the caller gets the
// context error; the shared load keeps running for the remaining waiters.
func (l *SingleFlightLoader[K, V]) LoadAndStore(ctx context.Context, key K) (*rowcache.CacheEntry[K, V], error) {
	ch := l.registerKey(key)
	select {
	case e := <-ch:
		if e.L != nil {
			if e.L == errGoexit {
				runtime.Goexit()
			}
			return nil, e.L
		}
		return e.R, nil
	case <-ctx.Done():
		go func() {
			<-ch
		}()
		return nil, ctx.Err()
	}
}

// registerKey attaches to the key's waitlist and returns a channel to receive
// the result. The first registrant starts the load goroutine.
func (l *SingleFlightLoader[K, V]) registerKey(key K) chan either[error, *rowcache.CacheEntry[K, V]] {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan either[error, *rowcache.CacheEntry[K, V]], 1)
	l.waitlists[key] = append(l.waitlists[key], ch)
	if len(l.waitlists[key]) == 1 {
		go l.loadKeyAndStore(l.context(), key)
	}
	return ch
}

// loadKeyAndStore runs the backing store lookup and resolves the waitlist.
func (l *SingleFlightLoader[K, V]) loadKeyAndStore(ctx context.Context, key K) {
	dds := panicutil.DoubleDeferSandwich{
		OnGoexit: func() {
			l.throwError(key, errGoexit)
		},
	}

	var entry *rowcache.Entry[K, V]
	if err := dds.Invoke(func() (err error) {
		entry, err = l.source.Get(ctx, key)
		return
	}); err != nil {
		l.throwError(key, &rowcache.SourceError{Key: key, Err: err})
		return
	}

	marker := &rowcache.CacheEntry[K, V]{Entry: rowcache.Entry[K, V]{Key: key}, Negative: true}
	if entry != nil {
		marker = &rowcache.CacheEntry[K, V]{Entry: *entry}
	}
	if err := l.storage.Set(ctx, marker); err != nil {
		l.throwError(key, err)
		return
	}
	l.sendEntry(key, marker)
}

// sendEntry broadcasts the resolved presence marker to the waiting channels.
func (l *SingleFlightLoader[K, V]) sendEntry(key K, marker *rowcache.CacheEntry[K, V]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, wl := range l.waitlists[key] {
		resolved := *marker
		if !resolved.Negative && i != 0 {
			// note: the first receiver gets the loaded value itself;
			// later receivers get clones so callers never share a mutable value unknowingly.
			resolved.Value = l.cloner.CloneValue(resolved.Value)
		}
		wl <- either[error, *rowcache.CacheEntry[K, V]]{R: &resolved}
		close(wl)
	}
	l.waitlists[key] = l.waitlists[key][:0]
}

// throwError broadcasts the same error value to the waiting channels.
func (l *SingleFlightLoader[K, V]) throwError(key K, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, wl := range l.waitlists[key] {
		wl <- either[error, *rowcache.CacheEntry[K, V]]{L: err}
		close(wl)
	}
	l.waitlists[key] = l.waitlists[key][:0]
}
