package singleflightloader_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	rowcache "github.com/karupanerura/row-cache"
	"github.com/karupanerura/row-cache/loader/singleflightloader"
	"github.com/karupanerura/row-cache/source"
	"github.com/karupanerura/row-cache/storage"
	"github.com/karupanerura/row-cache/storage/memstorage"
)

func TestSingleFlightLoader_LoadAndStore(t *testing.T) {
	t.Parallel()

	t.Run("loads and stores a found row", func(t *testing.T) {
		t.Parallel()

		cacheStorage := memstorage.NewInMemoryStorage[uint8, string]()
		loader := singleflightloader.NewSingleFlightLoader[uint8, string](cacheStorage, source.FunctionSource[uint8, string](
			func(_ context.Context, key uint8) (*rowcache.Entry[uint8, string], error) {
				return &rowcache.Entry[uint8, string]{Key: key, Value: "value1"}, nil
			},
		))

		marker, err := loader.LoadAndStore(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if df := cmp.Diff(&rowcache.CacheEntry[uint8, string]{
			Entry: rowcache.Entry[uint8, string]{Key: 1, Value: "value1"},
		}, marker); df != "" {
			t.Errorf("marker diff=%s", df)
		}

		stored, err := cacheStorage.Get(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if df := cmp.Diff(marker, stored); df != "" {
			t.Errorf("stored diff=%s", df)
		}
	})

	t.Run("stores a negative marker for a missing row", func(t *testing.T) {
		t.Parallel()

		cacheStorage := memstorage.NewInMemoryStorage[uint8, string]()
		loader := singleflightloader.NewSingleFlightLoader[uint8, string](cacheStorage, source.FunctionSource[uint8, string](
			func(_ context.Context, _ uint8) (*rowcache.Entry[uint8, string], error) {
				return nil, nil
			},
		))

		marker, err := loader.LoadAndStore(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if df := cmp.Diff(&rowcache.CacheEntry[uint8, string]{
			Entry:    rowcache.Entry[uint8, string]{Key: 1},
			Negative: true,
		}, marker); df != "" {
			t.Errorf("marker diff=%s", df)
		}

		stored, err := cacheStorage.Get(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if stored == nil || !stored.Negative {
			t.Errorf("a negative marker must be stored: %+v", stored)
		}
	})

	t.Run("a failed load stores nothing and the next call retries", func(t *testing.T) {
		t.Parallel()

		sourceErr := errors.New("connection refused")
		var calls atomic.Int32
		cacheStorage := memstorage.NewInMemoryStorage[uint8, string]()
		loader := singleflightloader.NewSingleFlightLoader[uint8, string](cacheStorage, source.FunctionSource[uint8, string](
			func(_ context.Context, key uint8) (*rowcache.Entry[uint8, string], error) {
				if calls.Add(1) == 1 {
					return nil, sourceErr
				}
				return &rowcache.Entry[uint8, string]{Key: key, Value: "recovered"}, nil
			},
		))

		_, err := loader.LoadAndStore(t.Context(), 1)
		var srcErr *rowcache.SourceError
		if !errors.As(err, &srcErr) || !errors.Is(err, sourceErr) {
			t.Fatalf("unexpected error: %v", err)
		}
		if stored, err := cacheStorage.Get(t.Context(), 1); err != nil {
			t.Fatal(err)
		} else if stored != nil {
			t.Errorf("a failed load must not be recorded: %+v", stored)
		}

		marker, err := loader.LoadAndStore(t.Context(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if marker.Value != "recovered" {
			t.Errorf("unexpected marker: %+v", marker)
		}
		if calls.Load() != 2 {
			t.Errorf("unexpected source calls: %d", calls.Load())
		}
	})

	t.Run("propagates storage write failures", func(t *testing.T) {
		t.Parallel()

		storageErr := errors.New("storage is down")
		cacheStorage := &storage.FunctionsStorage[uint8, string]{
			SetFunc: func(_ context.Context, _ *rowcache.CacheEntry[uint8, string]) error {
				return storageErr
			},
		}
		loader := singleflightloader.NewSingleFlightLoader[uint8, string](cacheStorage, source.FunctionSource[uint8, string](
			func(_ context.Context, key uint8) (*rowcache.Entry[uint8, string], error) {
				return &rowcache.Entry[uint8, string]{Key: key, Value: "value1"}, nil
			},
		))

		_, err := loader.LoadAndStore(t.Context(), 1)
		if !errors.Is(err, storageErr) {
			t.Errorf("unexpected error: %v", err)
		}
		var srcErr *rowcache.SourceError
		if errors.As(err, &srcErr) {
			t.Error("a storage failure is not a load failure")
		}
	})
}

func TestSingleFlightLoader_Coalescing(t *testing.T) {
	t.Parallel()

	const waiters = 5

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	cacheStorage := memstorage.NewInMemoryStorage[uint8, string]()
	loader := singleflightloader.NewSingleFlightLoader[uint8, string](cacheStorage, source.FunctionSource[uint8, string](
		func(_ context.Context, key uint8) (*rowcache.Entry[uint8, string], error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			return &rowcache.Entry[uint8, string]{Key: key, Value: "value1"}, nil
		},
	))

	var wg sync.WaitGroup
	markers := make([]*rowcache.CacheEntry[uint8, string], waiters)
	errs := make([]error, waiters)
	wg.Add(1)
	go func() {
		defer wg.Done()
		markers[0], errs[0] = loader.LoadAndStore(t.Context(), 1)
	}()
	<-started

	for i := 1; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			markers[i], errs[i] = loader.LoadAndStore(t.Context(), 1)
		}()
	}
	time.Sleep(100 * time.Millisecond) // let the late callers attach to the in-flight load
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("unexpected source calls: %d", calls.Load())
	}
	for i := 0; i < waiters; i++ {
		if errs[i] != nil {
			t.Fatalf("unexpected error for waiter %d: %v", i, errs[i])
		}
		if df := cmp.Diff(&rowcache.CacheEntry[uint8, string]{
			Entry: rowcache.Entry[uint8, string]{Key: 1, Value: "value1"},
		}, markers[i]); df != "" {
			t.Errorf("marker diff for waiter %d=%s", i, df)
		}
	}
}

func TestSingleFlightLoader_PerKeyIndependence(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	cacheStorage := memstorage.NewInMemoryStorage[uint8, string]()
	loader := singleflightloader.NewSingleFlightLoader[uint8, string](cacheStorage, source.FunctionSource[uint8, string](
		func(_ context.Context, key uint8) (*rowcache.Entry[uint8, string], error) {
			calls.Add(1)
			return &rowcache.Entry[uint8, string]{Key: key, Value: "value"}, nil
		},
	))

	var wg sync.WaitGroup
	for _, key := range []uint8{1, 2, 3} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := loader.LoadAndStore(t.Context(), key); err != nil {
				t.Errorf("unexpected error for key %d: %v", key, err)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 3 {
		t.Errorf("unexpected source calls: %d", calls.Load())
	}
}

func TestSingleFlightLoader_SharedError(t *testing.T) {
	t.Parallel()

	const waiters = 3

	sourceErr := errors.New("connection refused")
	started := make(chan struct{})
	release := make(chan struct{})
	cacheStorage := memstorage.NewInMemoryStorage[uint8, string]()
	loader := singleflightloader.NewSingleFlightLoader[uint8, string](cacheStorage, source.FunctionSource[uint8, string](
		func(_ context.Context, _ uint8) (*rowcache.Entry[uint8, string], error) {
			close(started)
			<-release
			return nil, sourceErr
		},
	))

	var wg sync.WaitGroup
	errs := make([]error, waiters)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = loader.LoadAndStore(t.Context(), 1)
	}()
	<-started

	for i := 1; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = loader.LoadAndStore(t.Context(), 1)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < waiters; i++ {
		if !errors.Is(errs[i], sourceErr) {
			t.Fatalf("unexpected error for waiter %d: %v", i, errs[i])
		}
		// every waiter shares the same error value, not just an equivalent one
		if errs[i] != errs[0] {
			t.Errorf("waiter %d received a different error value: %v", i, errs[i])
		}
	}
	var srcErr *rowcache.SourceError
	if !errors.As(errs[0], &srcErr) {
		t.Fatalf("expected a *SourceError, got %T", errs[0])
	}
	if srcErr.Key != uint8(1) {
		t.Errorf("unexpected key in SourceError: %v", srcErr.Key)
	}
}

func TestSingleFlightLoader_CancelledWaiter(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	cacheStorage := memstorage.NewInMemoryStorage[uint8, string]()
	loader := singleflightloader.NewSingleFlightLoader[uint8, string](cacheStorage, source.FunctionSource[uint8, string](
		func(_ context.Context, key uint8) (*rowcache.Entry[uint8, string], error) {
			close(started)
			<-release
			return &rowcache.Entry[uint8, string]{Key: key, Value: "value1"}, nil
		},
	))

	var wg sync.WaitGroup
	var marker *rowcache.CacheEntry[uint8, string]
	var loadErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		marker, loadErr = loader.LoadAndStore(t.Context(), 1)
	}()
	<-started

	// a waiter whose context is already cancelled gives up without
	// disturbing the in-flight load
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := loader.LoadAndStore(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("unexpected error: %v", err)
	}

	close(release)
	wg.Wait()
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if marker == nil || marker.Value != "value1" {
		t.Errorf("the first waiter must still receive the outcome: %+v", marker)
	}
}

func TestSingleFlightLoader_PanicInSource(t *testing.T) {
	t.Parallel()

	cacheStorage := memstorage.NewInMemoryStorage[uint8, string]()
	loader := singleflightloader.NewSingleFlightLoader[uint8, string](cacheStorage, source.FunctionSource[uint8, string](
		func(_ context.Context, _ uint8) (*rowcache.Entry[uint8, string], error) {
			panic("boom")
		},
	))

	_, err := loader.LoadAndStore(t.Context(), 1)
	if err == nil {
		t.Fatal("expected an error")
	}
	var srcErr *rowcache.SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected a *SourceError, got %T: %v", err, err)
	}
	if stored, err := cacheStorage.Get(t.Context(), 1); err != nil {
		t.Fatal(err)
	} else if stored != nil {
		t.Errorf("a panicking load must not be recorded: %+v", stored)
	}
}
