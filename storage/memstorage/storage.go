package memstorage

import (
	"container/list"
	"context"
	"sync"
	"time"

	rowcache "github.com/karupanerura/row-cache"
)

// RemovalReason reports why an entry left the storage.
type RemovalReason int

const (
	// RemovalExpired means the entry's lifetime ran out.
	RemovalExpired RemovalReason = iota + 1

	// RemovalInvalidated means the entry was removed explicitly.
	RemovalInvalidated

	// RemovalCapacity means the entry was evicted under capacity pressure.
	RemovalCapacity

	// RemovalReplaced means the entry was overwritten by a newer one for the same key.
	RemovalReplaced
)

// String returns the name of the removal reason.
func (r RemovalReason) String() string {
	switch r {
	case RemovalExpired:
		return "expired"
	case RemovalInvalidated:
		return "invalidated"
	case RemovalCapacity:
		return "capacity"
	case RemovalReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// EvictionOrder selects which entry a full bucket evicts first.
type EvictionOrder int

const (
	// LRU evicts the least recently used entry. Reads refresh recency.
	LRU EvictionOrder = iota

	// FIFO evicts the oldest inserted entry, regardless of access.
	FIFO
)

// record is the bucket-internal bookkeeping around a stored presence marker.
type record[K rowcache.KeyConstraint, V rowcache.ValueConstraint] struct {
	entry      *rowcache.CacheEntry[K, V]
	createdAt  time.Time
	accessedAt time.Time
	deadline   time.Time // creation-time deadline; zero means none
	cost       int64
	elem       *list.Element
}

type bucket[K rowcache.KeyConstraint, V rowcache.ValueConstraint] struct {
	mu   sync.Mutex
	m    map[K]*record[K, V]
	ord  *list.List // front = most recent
	used int64
}

type removal[K rowcache.KeyConstraint, V rowcache.ValueConstraint] struct {
	key    K
	entry  *rowcache.CacheEntry[K, V]
	reason RemovalReason
}

type storage[K rowcache.KeyConstraint, V rowcache.ValueConstraint] struct {
	buckets   []*bucket[K, V]
	bucketCap int64 // per-bucket share of the capacity; 0 means unbounded
	options   options[K, V]
}

// NewInMemoryStorage creates a new in-memory cache storage.
// With no options it is unbounded, applies no TTL/TTI, and gives
// confirmed-absent entries the default negative lifetime.
func NewInMemoryStorage[K rowcache.KeyConstraint, V rowcache.ValueConstraint](opts ...Option[K, V]) rowcache.CacheStorage[K, V] {
	options := defaultOptions[K, V]()
	for _, opt := range opts {
		opt.apply(&options)
	}

	buckets := make([]*bucket[K, V], options.bucketsSize)
	for i := range buckets {
		buckets[i] = &bucket[K, V]{
			m:   map[K]*record[K, V]{},
			ord: list.New(),
		}
	}

	var bucketCap int64
	if options.maxCapacity > 0 {
		bucketCap = (options.maxCapacity + int64(len(buckets)) - 1) / int64(len(buckets))
	}

	return &storage[K, V]{
		buckets:   buckets,
		bucketCap: bucketCap,
		options:   options,
	}
}

var _ rowcache.CacheStorage[uint8, struct{}] = (*storage[uint8, struct{}])(nil)

// resolveBucket returns the bucket that corresponds to the given key.
func (s *storage[K, V]) resolveBucket(key K) *bucket[K, V] {
	if len(s.buckets) == 1 {
		return s.buckets[0]
	}
	index := s.options.hashKey(key) % len(s.buckets)
	if index < 0 {
		index *= -1
	}
	return s.buckets[index]
}

func (s *storage[K, V]) Get(_ context.Context, key K) (*rowcache.CacheEntry[K, V], error) {
	b := s.resolveBucket(key)
	now := s.options.clock.Now()

	b.mu.Lock()
	rec, ok := b.m[key]
	if !ok {
		b.mu.Unlock()
		return nil, nil
	}
	if s.isExpired(rec, now) {
		b.remove(rec, key)
		b.mu.Unlock()
		s.notify(removal[K, V]{key: key, entry: rec.entry, reason: RemovalExpired})
		return nil, nil
	}
	rec.accessedAt = now
	if s.options.order == LRU {
		b.ord.MoveToFront(rec.elem)
	}
	entry := cloneCacheEntry(s.options.cloner, rec.entry)
	b.mu.Unlock()
	return entry, nil
}

func (s *storage[K, V]) Set(_ context.Context, entry *rowcache.CacheEntry[K, V]) error {
	b := s.resolveBucket(entry.Key)
	now := s.options.clock.Now()
	stored := cloneCacheEntry(s.options.cloner, entry)

	rec := &record[K, V]{
		entry:      stored,
		createdAt:  now,
		accessedAt: now,
		cost:       1,
	}
	if d, ok := s.options.expiry.ExpireAfterCreate(stored.Negative); ok {
		rec.deadline = now.Add(d)
	} else if s.options.ttl > 0 {
		rec.deadline = now.Add(s.options.ttl)
	}
	if s.options.weigher != nil {
		rec.cost = s.options.weigher(stored.Key, stored)
		if rec.cost < 0 {
			rec.cost = 0
		}
	}

	var removals []removal[K, V]
	b.mu.Lock()
	if old, ok := b.m[stored.Key]; ok {
		b.remove(old, stored.Key)
		removals = append(removals, removal[K, V]{key: stored.Key, entry: old.entry, reason: RemovalReplaced})
	}
	rec.elem = b.ord.PushFront(stored.Key)
	b.m[stored.Key] = rec
	b.used += rec.cost
	if s.bucketCap > 0 {
		for b.used > s.bucketCap {
			back := b.ord.Back()
			if back == nil {
				break
			}
			victimKey := back.Value.(K)
			victim := b.m[victimKey]
			b.remove(victim, victimKey)
			removals = append(removals, removal[K, V]{key: victimKey, entry: victim.entry, reason: RemovalCapacity})
		}
	}
	b.mu.Unlock()

	for _, r := range removals {
		s.notify(r)
	}
	return nil
}

func (s *storage[K, V]) Invalidate(_ context.Context, key K) error {
	b := s.resolveBucket(key)

	b.mu.Lock()
	rec, ok := b.m[key]
	if ok {
		b.remove(rec, key)
	}
	b.mu.Unlock()

	if ok {
		s.notify(removal[K, V]{key: key, entry: rec.entry, reason: RemovalInvalidated})
	}
	return nil
}

func (s *storage[K, V]) InvalidateAll(_ context.Context) error {
	for _, b := range s.buckets {
		var removals []removal[K, V]
		b.mu.Lock()
		for key, rec := range b.m {
			removals = append(removals, removal[K, V]{key: key, entry: rec.entry, reason: RemovalInvalidated})
		}
		b.m = map[K]*record[K, V]{}
		b.ord.Init()
		b.used = 0
		b.mu.Unlock()

		for _, r := range removals {
			s.notify(r)
		}
	}
	return nil
}

// isExpired judges the record against its creation-time deadline and the
// idle deadline measured from last access.
func (s *storage[K, V]) isExpired(rec *record[K, V], now time.Time) bool {
	if !rec.deadline.IsZero() && s.options.policy.IsExpired(now, rec.deadline) {
		return true
	}
	if s.options.tti > 0 && s.options.policy.IsExpired(now, rec.accessedAt.Add(s.options.tti)) {
		return true
	}
	return false
}

// remove unlinks the record. The caller must hold the bucket lock.
func (b *bucket[K, V]) remove(rec *record[K, V], key K) {
	b.ord.Remove(rec.elem)
	delete(b.m, key)
	b.used -= rec.cost
}

// notify reports a removal to the eviction listener, outside the bucket lock.
// The entry handed to the listener is the stored one and must be treated as
// read-only.
func (s *storage[K, V]) notify(r removal[K, V]) {
	if s.options.listener == nil {
		return
	}
	s.options.listener(r.key, r.entry, r.reason)
}

func cloneCacheEntry[K rowcache.KeyConstraint, V rowcache.ValueConstraint](cloner rowcache.ValueCloner[V], v *rowcache.CacheEntry[K, V]) *rowcache.CacheEntry[K, V] {
	if v.Negative {
		return &rowcache.CacheEntry[K, V]{
			Entry:    rowcache.Entry[K, V]{Key: v.Key},
			Negative: true,
		}
	}
	return &rowcache.CacheEntry[K, V]{
		Entry: rowcache.Entry[K, V]{
			Key:   v.Key,
			Value: cloner.CloneValue(v.Value),
		},
	}
}
