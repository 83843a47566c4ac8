package memstorage

import (
	"time"

	rowcache "github.com/karupanerura/row-cache"
	"github.com/karupanerura/row-cache/expiration"
	"github.com/karupanerura/row-cache/internal/keyhash"
)

// DefaultBucketsSize is the default number of buckets in the storage.
var DefaultBucketsSize = 256

// Option is the interface for the options of the in-memory cache storage.
type Option[K rowcache.KeyConstraint, V rowcache.ValueConstraint] interface {
	apply(*options[K, V])
}

type optionFunc[K rowcache.KeyConstraint, V rowcache.ValueConstraint] func(*options[K, V])

func (f optionFunc[K, V]) apply(o *options[K, V]) {
	f(o)
}

// WithMaxCapacity bounds the total cost the storage may hold.
// The capacity is divided across buckets; each bucket evicts entries in the
// configured eviction order when its share overflows. Zero means unbounded.
func WithMaxCapacity[K rowcache.KeyConstraint, V rowcache.ValueConstraint](maxCapacity int64) Option[K, V] {
	if maxCapacity < 0 {
		panic("maxCapacity must not be negative")
	}
	return optionFunc[K, V](func(o *options[K, V]) {
		o.maxCapacity = maxCapacity
	})
}

// WithWeigher sets the cost function for entries.
// Without a weigher every entry costs 1, making the capacity an entry count.
func WithWeigher[K rowcache.KeyConstraint, V rowcache.ValueConstraint](weigher func(K, *rowcache.CacheEntry[K, V]) int64) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.weigher = weigher
	})
}

// WithTimeToLive sets the lifetime of entries measured from creation.
// The per-entry expiry override takes precedence where it applies.
func WithTimeToLive[K rowcache.KeyConstraint, V rowcache.ValueConstraint](ttl time.Duration) Option[K, V] {
	if ttl < 0 {
		panic("ttl must not be negative")
	}
	return optionFunc[K, V](func(o *options[K, V]) {
		o.ttl = ttl
	})
}

// WithTimeToIdle sets the lifetime of entries measured from last access.
func WithTimeToIdle[K rowcache.KeyConstraint, V rowcache.ValueConstraint](tti time.Duration) Option[K, V] {
	if tti < 0 {
		panic("tti must not be negative")
	}
	return optionFunc[K, V](func(o *options[K, V]) {
		o.tti = tti
	})
}

// WithExpiry sets the per-entry creation-time expiry override policy.
// The default is expiration.NegativeExpiry with the default negative lifetime.
func WithExpiry[K rowcache.KeyConstraint, V rowcache.ValueConstraint](expiry expiration.Expiry) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.expiry = expiry
	})
}

// WithExpirationPolicy sets the read-time deadline checker.
func WithExpirationPolicy[K rowcache.KeyConstraint, V rowcache.ValueConstraint](policy expiration.ExpirationPolicy) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.policy = policy
	})
}

// WithEvictionOrder selects the eviction order for full buckets.
// The default is LRU.
func WithEvictionOrder[K rowcache.KeyConstraint, V rowcache.ValueConstraint](order EvictionOrder) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.order = order
	})
}

// WithEvictionListener registers a callback observing every removal.
// The listener runs synchronously on the goroutine that triggered the
// removal, outside the bucket lock. The entry it receives must be treated
// as read-only.
func WithEvictionListener[K rowcache.KeyConstraint, V rowcache.ValueConstraint](listener func(K, *rowcache.CacheEntry[K, V], RemovalReason)) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.listener = listener
	})
}

// WithKeyHash sets the key hash function used to pick a bucket.
func WithKeyHash[K rowcache.KeyConstraint, V rowcache.ValueConstraint](f func(K) int) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.hashKey = func(key any) int {
			return f(key.(K))
		}
	})
}

// WithBucketsSize sets the number of buckets in the storage.
// The number of buckets must be a natural number.
func WithBucketsSize[K rowcache.KeyConstraint, V rowcache.ValueConstraint](bucketsSize int) Option[K, V] {
	if bucketsSize <= 0 {
		panic("bucketsSize must be natural number")
	}
	return optionFunc[K, V](func(o *options[K, V]) {
		o.bucketsSize = bucketsSize
	})
}

// WithClock sets the clock of the storage.
func WithClock[K rowcache.KeyConstraint, V rowcache.ValueConstraint](clock rowcache.Clock) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.clock = clock
	})
}

// WithCloner sets the value cloner of the storage.
func WithCloner[K rowcache.KeyConstraint, V rowcache.ValueConstraint](cloner rowcache.ValueCloner[V]) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.cloner = cloner
	})
}

type options[K rowcache.KeyConstraint, V rowcache.ValueConstraint] struct {
	maxCapacity int64
	weigher     func(K, *rowcache.CacheEntry[K, V]) int64
	ttl         time.Duration
	tti         time.Duration
	expiry      expiration.Expiry
	policy      expiration.ExpirationPolicy
	order       EvictionOrder
	listener    func(K, *rowcache.CacheEntry[K, V], RemovalReason)
	hashKey     func(any) int
	bucketsSize int
	clock       rowcache.Clock
	cloner      rowcache.ValueCloner[V]
}

func defaultOptions[K rowcache.KeyConstraint, V rowcache.ValueConstraint]() options[K, V] {
	return options[K, V]{
		expiry:      expiration.NegativeExpiry{},
		policy:      expiration.GeneralExpirationPolicy{},
		order:       LRU,
		hashKey:     keyhash.GetOrCreateKeyHash[K](),
		bucketsSize: DefaultBucketsSize,
		clock:       rowcache.SystemClock,
		cloner:      rowcache.DefaultValueCloner[V](),
	}
}
