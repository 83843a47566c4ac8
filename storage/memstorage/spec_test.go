package memstorage_test

import (
	"testing"
	"time"

	rowcache "github.com/karupanerura/row-cache"
	"github.com/karupanerura/row-cache/expiration"
	"github.com/karupanerura/row-cache/storage/memstorage"
	"github.com/karupanerura/row-cache/storage/storagetest"
)

func TestInMemoryStorage(t *testing.T) {
	t.Parallel()

	storagetest.TestCloneStruct(t, func() (rowcache.CacheStorage[uint8, *storagetest.TestClonerStruct], func()) {
		return memstorage.NewInMemoryStorage[uint8, *storagetest.TestClonerStruct](), func() {}
	})
	storagetest.TestConsistency(t, func() (rowcache.CacheStorage[uint8, int8], func()) {
		return memstorage.NewInMemoryStorage[uint8, int8](), func() {}
	})
	storagetest.TestExpiration(t, time.Minute, func(clock rowcache.Clock) (rowcache.CacheStorage[uint8, int8], func()) {
		return memstorage.NewInMemoryStorage[uint8, int8](
			memstorage.WithTimeToLive[uint8, int8](time.Minute),
			memstorage.WithClock[uint8, int8](clock),
		), func() {}
	})
	storagetest.TestNegativeCache(t, 10*time.Second, func(clock rowcache.Clock) (rowcache.CacheStorage[uint8, int8], func()) {
		return memstorage.NewInMemoryStorage[uint8, int8](
			memstorage.WithExpiry[uint8, int8](expiration.NegativeExpiry{TTLForNegative: 10 * time.Second}),
			memstorage.WithTimeToLive[uint8, int8](time.Hour),
			memstorage.WithClock[uint8, int8](clock),
		), func() {}
	})
	storagetest.TestInvalidation(t, func() (rowcache.CacheStorage[uint8, int8], func()) {
		return memstorage.NewInMemoryStorage[uint8, int8](), func() {}
	})
}

func TestInMemoryStorage_SingleBucket(t *testing.T) {
	t.Parallel()

	storagetest.TestConsistency(t, func() (rowcache.CacheStorage[uint8, int8], func()) {
		return memstorage.NewInMemoryStorage[uint8, int8](
			memstorage.WithBucketsSize[uint8, int8](1),
		), func() {}
	})
	storagetest.TestInvalidation(t, func() (rowcache.CacheStorage[uint8, int8], func()) {
		return memstorage.NewInMemoryStorage[uint8, int8](
			memstorage.WithBucketsSize[uint8, int8](1),
		), func() {}
	})
}

func TestInMemoryStorage_DefaultNegativeLifetime(t *testing.T) {
	t.Parallel()

	storagetest.TestNegativeCache(t, expiration.DefaultNegativeTTL, func(clock rowcache.Clock) (rowcache.CacheStorage[uint8, int8], func()) {
		return memstorage.NewInMemoryStorage[uint8, int8](
			memstorage.WithTimeToLive[uint8, int8](time.Hour),
			memstorage.WithClock[uint8, int8](clock),
		), func() {}
	})
}

func BenchmarkInMemoryStorage_Set(b *testing.B) {
	storage := memstorage.NewInMemoryStorage[uint8, int8]()
	keys := make([]uint8, 256)
	for i := range keys {
		keys[i] = uint8(i)
	}
	storagetest.BenchmarkSet(b, storage, keys)
}
