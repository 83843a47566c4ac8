// Package expiration provides policies that control cache entry lifetimes.
//
// Two concerns live here. Expiry decides, at entry creation, whether a
// presence marker gets its own lifetime instead of the cache-wide TTL/TTI
// rules; NegativeExpiry is its default implementation, which gives
// confirmed-absent entries a short lifetime so new rows become visible
// promptly. ExpirationPolicy decides, at read time, whether a computed
// deadline has passed; the probabilistic EarlyExpirationPolicy spreads
// reloads of hot entries over time.
package expiration
