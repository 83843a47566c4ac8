package expiration

import (
	"math/rand/v2"
	"time"
)

// ExpirationPolicy is the interface for the expiration time checker.
// Implementations determine when cached values should be considered expired.
type ExpirationPolicy interface {
	// IsExpired returns true if the value is expired.
	// The now parameter represents the current time, and expiresAt is the value's expiration time.
	IsExpired(now, expiresAt time.Time) bool
}

// GeneralExpirationPolicy is a policy that expires a value at a specific time.
// A value is considered expired once the current time reaches its deadline.
type GeneralExpirationPolicy struct{}

var _ ExpirationPolicy = GeneralExpirationPolicy{}

// IsExpired returns true if the current time is at or past the deadline.
func (GeneralExpirationPolicy) IsExpired(now, expiresAt time.Time) bool {
	return !expiresAt.After(now)
}

// NeverExpirationPolicy is a policy that never expires a value.
// Useful for permanent entries that should only leave the cache through
// invalidation or capacity pressure.
type NeverExpirationPolicy struct{}

var _ ExpirationPolicy = NeverExpirationPolicy{}

// IsExpired always returns false, ignoring the deadline completely.
func (NeverExpirationPolicy) IsExpired(now, expiresAt time.Time) bool {
	return false
}

// EarlyExpirationPolicy is a policy that can expire a value before its actual
// deadline. Randomizing the moment a value is treated as expired makes
// clients refresh at different times instead of stampeding the backing store
// the instant a hot entry expires.
type EarlyExpirationPolicy struct {
	// Duration is how much earlier the value can expire.
	Duration time.Duration

	// Percentage is the chance (between 0 and 1) that a given check treats
	// the value as expiring Duration early. 0 never expires early, 1 always
	// does.
	Percentage float64

	// Random is the random number generator used for the early-expiry roll.
	// If nil, the system default generator is used. Set a seeded generator
	// for deterministic behavior in tests.
	Random *rand.Rand
}

var _ ExpirationPolicy = (*EarlyExpirationPolicy)(nil)

// IsExpired checks the deadline, rolling the configured chance to judge the
// value against (now + Duration) instead of now.
func (p *EarlyExpirationPolicy) IsExpired(now, expiresAt time.Time) bool {
	if p.randFloat64() > p.Percentage {
		return now.After(expiresAt)
	}
	return now.Add(p.Duration).After(expiresAt)
}

func (p *EarlyExpirationPolicy) randFloat64() float64 {
	if p.Random == nil {
		return rand.Float64()
	}
	return p.Random.Float64()
}
