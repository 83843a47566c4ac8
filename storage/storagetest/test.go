// Package storagetest provides generic test cases for cache storage implementations.
package storagetest

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	rowcache "github.com/karupanerura/row-cache"
	"golang.org/x/sync/errgroup"
)

// FixedClock is a clock that returns a manually controlled time.
type FixedClock struct {
	Time time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.Time
}

// BenchmarkSet benchmarks the Set method of the cache storage.
func BenchmarkSet[K rowcache.KeyConstraint, V rowcache.ValueConstraint](b *testing.B, storage rowcache.CacheStorage[K, V], keys []K) {
	var zero V
	ctx := b.Context()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		storage.Set(ctx, &rowcache.CacheEntry[K, V]{
			Entry: rowcache.Entry[K, V]{Key: keys[i%len(keys)], Value: zero},
		})
	}
}

type TestClonerStruct struct {
	value int8
}

func NewTestClonerStruct(value int8) *TestClonerStruct {
	return &TestClonerStruct{value: value}
}

func (s *TestClonerStruct) Clone() *TestClonerStruct {
	return &TestClonerStruct{value: s.value}
}

// TestCloneStruct tests that the storage clones values on Set and Get through
// the value's Clone method.
func TestCloneStruct(t *testing.T, provider func() (rowcache.CacheStorage[uint8, *TestClonerStruct], func())) {
	t.Run("CloneStruct", func(t *testing.T) {
		t.Parallel()

		storage, release := provider()
		defer release()

		original := &rowcache.CacheEntry[uint8, *TestClonerStruct]{
			Entry: rowcache.Entry[uint8, *TestClonerStruct]{
				Key:   1,
				Value: &TestClonerStruct{value: 1},
			},
		}
		if err := storage.Set(t.Context(), original); err != nil {
			t.Fatal(err)
		}

		got, err := storage.Get(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if original == got || original.Value == got.Value {
			t.Error("struct must be cloned, but got the same one")
		}
		if df := cmp.Diff(original, got, cmp.AllowUnexported(TestClonerStruct{})); df != "" {
			t.Errorf("struct diff=%s", df)
		}

		before := got
		got, err = storage.Get(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if before == got || before.Value == got.Value {
			t.Error("struct must be cloned, but got the same one")
		}
		if df := cmp.Diff(before, got, cmp.AllowUnexported(TestClonerStruct{})); df != "" {
			t.Errorf("struct diff=%s", df)
		}
	})
}

// TestConsistency tests concurrent Set and Get operations for distinct keys.
func TestConsistency(t *testing.T, provider func() (rowcache.CacheStorage[uint8, int8], func())) {
	t.Run("Consistency", func(t *testing.T) {
		t.Parallel()

		storage, release := provider()
		defer release()

		patterns := []rowcache.Entry[uint8, int8]{
			{Key: 0, Value: 1},
			{Key: 1, Value: 2},
			{Key: 2, Value: 3},
			{Key: 3, Value: 4},
			{Key: 4, Value: 5},
			{Key: 251, Value: 124},
			{Key: 252, Value: 125},
			{Key: 253, Value: 126},
			{Key: 254, Value: 127},
			{Key: 255, Value: -128},
		}
		rand.Shuffle(len(patterns), func(i, j int) {
			patterns[i], patterns[j] = patterns[j], patterns[i]
		})

		var eg errgroup.Group
		for _, pattern := range patterns {
			eg.Go(func() error {
				entry, err := storage.Get(t.Context(), pattern.Key)
				if err != nil {
					return err
				} else if entry != nil {
					return fmt.Errorf("unexpected existing value for key %d", pattern.Key)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}

		eg = errgroup.Group{}
		for _, pattern := range patterns {
			eg.Go(func() error {
				return storage.Set(t.Context(), &rowcache.CacheEntry[uint8, int8]{
					Entry: pattern,
				})
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}

		eg = errgroup.Group{}
		entries := make([]*rowcache.CacheEntry[uint8, int8], len(patterns))
		for i, pattern := range patterns {
			eg.Go(func() error {
				entry, err := storage.Get(t.Context(), pattern.Key)
				if err != nil {
					return err
				}
				entries[i] = entry
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}

		for i, pattern := range patterns {
			if entries[i] == nil {
				t.Errorf("pattern[%d] key=%d entry is missing", i, pattern.Key)
				continue
			}
			if df := cmp.Diff(pattern, entries[i].Entry); df != "" {
				t.Errorf("pattern[%d] key=%d entry diff=%s", i, pattern.Key, df)
			}
		}
	})
}

// TestExpiration tests the lifetime of found entries against a controlled clock.
// The provider must build a storage whose found entries live exactly ttl from
// creation under the given clock.
func TestExpiration(t *testing.T, ttl time.Duration, provider func(rowcache.Clock) (rowcache.CacheStorage[uint8, int8], func())) {
	t.Run("Expiration", func(t *testing.T) {
		t.Parallel()

		base := time.Now()
		clock := &FixedClock{Time: base}
		storage, release := provider(clock)
		defer release()

		cacheEntry, err := storage.Get(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if cacheEntry != nil {
			t.Error("should not exist")
		}

		if err := storage.Set(t.Context(), &rowcache.CacheEntry[uint8, int8]{
			Entry: rowcache.Entry[uint8, int8]{Key: 1, Value: 1},
		}); err != nil {
			t.Fatal(err)
		}

		cacheEntry, err = storage.Get(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if df := cmp.Diff(&rowcache.CacheEntry[uint8, int8]{
			Entry: rowcache.Entry[uint8, int8]{Key: 1, Value: 1},
		}, cacheEntry); df != "" {
			t.Errorf("entry diff=%s", df)
		}

		clock.Time = base.Add(ttl - time.Millisecond)
		cacheEntry, err = storage.Get(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if cacheEntry == nil {
			t.Error("should still exist just before the deadline")
		}

		clock.Time = base.Add(ttl)
		cacheEntry, err = storage.Get(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		} else if cacheEntry != nil {
			t.Error("should be expired at exactly the deadline")
		}

		clock.Time = base.Add(ttl + time.Millisecond)
		cacheEntry, err = storage.Get(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		} else if cacheEntry != nil {
			t.Error("should be expired after the deadline")
		}
	})
}

// TestNegativeCache tests that confirmed-absent markers are stored, returned,
// and expired on their own lifetime. The provider must build a storage whose
// negative entries live exactly negativeTTL from creation under the given
// clock, while found entries live longer.
func TestNegativeCache(t *testing.T, negativeTTL time.Duration, provider func(rowcache.Clock) (rowcache.CacheStorage[uint8, int8], func())) {
	t.Run("NegativeCache", func(t *testing.T) {
		t.Parallel()

		base := time.Now()
		clock := &FixedClock{Time: base}
		storage, release := provider(clock)
		defer release()

		if err := storage.Set(t.Context(), &rowcache.CacheEntry[uint8, int8]{
			Entry:    rowcache.Entry[uint8, int8]{Key: 1},
			Negative: true,
		}); err != nil {
			t.Fatal(err)
		}
		if err := storage.Set(t.Context(), &rowcache.CacheEntry[uint8, int8]{
			Entry: rowcache.Entry[uint8, int8]{Key: 2, Value: 2},
		}); err != nil {
			t.Fatal(err)
		}

		cacheEntry, err := storage.Get(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if df := cmp.Diff(&rowcache.CacheEntry[uint8, int8]{
			Entry:    rowcache.Entry[uint8, int8]{Key: 1},
			Negative: true,
		}, cacheEntry); df != "" {
			t.Errorf("entry diff=%s", df)
		}

		clock.Time = base.Add(negativeTTL - time.Millisecond)
		cacheEntry, err = storage.Get(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if cacheEntry == nil || !cacheEntry.Negative {
			t.Error("negative entry should still exist just before its deadline")
		}

		clock.Time = base.Add(negativeTTL)
		cacheEntry, err = storage.Get(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		} else if cacheEntry != nil {
			t.Error("negative entry should be expired at its own deadline")
		}

		// the found entry follows the cache-wide rules, not the negative lifetime
		cacheEntry, err = storage.Get(t.Context(), 2)
		if err != nil {
			t.Fatal(err)
		}
		if cacheEntry == nil || cacheEntry.Negative {
			t.Error("found entry should outlive the negative lifetime")
		}
	})
}

// TestInvalidation tests Invalidate and InvalidateAll.
func TestInvalidation(t *testing.T, provider func() (rowcache.CacheStorage[uint8, int8], func())) {
	t.Run("Invalidation", func(t *testing.T) {
		t.Parallel()

		storage, release := provider()
		defer release()

		for _, entry := range []*rowcache.CacheEntry[uint8, int8]{
			{Entry: rowcache.Entry[uint8, int8]{Key: 1, Value: 1}},
			{Entry: rowcache.Entry[uint8, int8]{Key: 2, Value: 2}},
			{Entry: rowcache.Entry[uint8, int8]{Key: 3}, Negative: true},
		} {
			if err := storage.Set(t.Context(), entry); err != nil {
				t.Fatal(err)
			}
		}

		if err := storage.Invalidate(t.Context(), 1); err != nil {
			t.Fatal(err)
		}
		if entry, err := storage.Get(t.Context(), 1); err != nil {
			t.Fatal(err)
		} else if entry != nil {
			t.Error("invalidated entry should be gone")
		}
		if entry, err := storage.Get(t.Context(), 2); err != nil {
			t.Fatal(err)
		} else if entry == nil {
			t.Error("other entries should survive a single-key invalidation")
		}

		// invalidating an unknown key is not an error
		if err := storage.Invalidate(t.Context(), 100); err != nil {
			t.Fatal(err)
		}

		if err := storage.InvalidateAll(t.Context()); err != nil {
			t.Fatal(err)
		}
		for _, key := range []uint8{1, 2, 3} {
			if entry, err := storage.Get(t.Context(), key); err != nil {
				t.Fatal(err)
			} else if entry != nil {
				t.Errorf("entry for key %d should be gone after InvalidateAll", key)
			}
		}
	})
}
