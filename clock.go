package rowcache

import (
	"math/rand/v2"
	"time"
)

// Clock is an interface for getting the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc is a function type that implements the Clock interface.
type ClockFunc func() time.Time

// Now calls the function.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock is the default clock that uses time.Now.
var SystemClock Clock = ClockFunc(time.Now)

// JitterClock is a clock that randomly skews the observed current time
// forward by up to MaxSkew. Reading a skewed time makes deadline checks
// fire slightly early at random, so clients sharing a backing store do not
// all reload an entry at the same instant.
type JitterClock struct {
	// Clock is the clock that provides the current time.
	Clock Clock

	// MaxSkew is the upper bound of the random forward skew.
	MaxSkew time.Duration

	// Random is the random number generator.
	// If nil, the system default generator is used.
	Random *rand.Rand
}

// Now returns the current time skewed forward by a random duration in [0, MaxSkew).
func (j *JitterClock) Now() time.Time {
	if j.MaxSkew <= 0 {
		return j.Clock.Now()
	}
	return j.Clock.Now().Add(time.Duration(j.randFloat64() * float64(j.MaxSkew)))
}

func (j *JitterClock) randFloat64() float64 {
	if j.Random == nil {
		return rand.Float64()
	}
	return j.Random.Float64()
}
