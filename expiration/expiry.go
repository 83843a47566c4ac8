package expiration

import "time"

// DefaultNegativeTTL is the default lifetime for confirmed-absent entries.
// It is a tunable default, not a load-bearing constant: pick a value short
// enough that newly created rows become visible promptly for your workload.
const DefaultNegativeTTL = 60 * time.Second

// Expiry computes a per-entry lifetime override when a presence marker is
// created. Implementations must be pure: the same inputs always yield the
// same override.
type Expiry interface {
	// ExpireAfterCreate returns the lifetime for a newly created entry and
	// true, or false to defer to the cache-wide TTL/TTI rules.
	// The negative parameter reports whether the entry is a confirmed-absent
	// marker.
	ExpireAfterCreate(negative bool) (time.Duration, bool)
}

// ExpiryFunc is a function type that implements the Expiry interface.
type ExpiryFunc func(negative bool) (time.Duration, bool)

// ExpireAfterCreate calls the function.
func (f ExpiryFunc) ExpireAfterCreate(negative bool) (time.Duration, bool) {
	return f(negative)
}

// NegativeExpiry gives confirmed-absent entries their own short lifetime and
// leaves found entries to the cache-wide TTL/TTI rules. Absent results tend
// to be transient (a not-yet-created row, a typo, a deleted record under
// retry), so they must drop out of the cache quickly.
type NegativeExpiry struct {
	// TTLForNegative is the lifetime of confirmed-absent entries.
	// If zero, DefaultNegativeTTL is used.
	TTLForNegative time.Duration
}

var _ Expiry = NegativeExpiry{}

// ExpireAfterCreate returns the negative lifetime for confirmed-absent
// entries and no override for found entries.
func (e NegativeExpiry) ExpireAfterCreate(negative bool) (time.Duration, bool) {
	if !negative {
		return 0, false
	}
	if e.TTLForNegative == 0 {
		return DefaultNegativeTTL, true
	}
	return e.TTLForNegative, true
}

// NoExpiry never overrides the cache-wide rules, for either entry variant.
// With NoExpiry, confirmed-absent entries live exactly as long as found ones.
type NoExpiry struct{}

var _ Expiry = NoExpiry{}

// ExpireAfterCreate always defers to the cache-wide TTL/TTI rules.
func (NoExpiry) ExpireAfterCreate(bool) (time.Duration, bool) {
	return 0, false
}
