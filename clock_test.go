package rowcache_test

import (
	"math/rand/v2"
	"testing"
	"time"

	rowcache "github.com/karupanerura/row-cache"
)

func TestJitterClock(t *testing.T) {
	t.Parallel()

	now := time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC)
	baseClock := rowcache.ClockFunc(func() time.Time {
		return now
	})

	t.Run("When MaxSkew is 0", func(t *testing.T) {
		t.Parallel()

		clock := rowcache.JitterClock{
			Clock:   baseClock,
			MaxSkew: 0,
			Random:  rand.New(rand.NewPCG(42, 54)),
		}
		for i := 0; i < 10; i++ {
			if got := clock.Now(); !got.Equal(now) {
				t.Errorf("unexpected time: %v (expected: %v)", got, now)
			}
		}
	})

	t.Run("When MaxSkew is positive", func(t *testing.T) {
		t.Parallel()

		const maxSkew = time.Minute
		clock := rowcache.JitterClock{
			Clock:   baseClock,
			MaxSkew: maxSkew,
			Random:  rand.New(rand.NewPCG(42, 54)),
		}
		for i := 0; i < 100; i++ {
			got := clock.Now()
			if got.Before(now) {
				t.Errorf("skew must not go backwards: %v", got)
			}
			if !got.Before(now.Add(maxSkew)) {
				t.Errorf("skew must stay below MaxSkew: %v", got)
			}
		}
	})
}

func TestSystemClock(t *testing.T) {
	t.Parallel()

	before := time.Now()
	got := rowcache.SystemClock.Now()
	after := time.Now()
	if got.Before(before) || got.After(after) {
		t.Errorf("unexpected time: %v (expected between %v and %v)", got, before, after)
	}
}
