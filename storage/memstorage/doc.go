// Package memstorage provides the in-memory concurrent expiring cache engine
// of the row-cache library.
//
// The storage is sharded into buckets to reduce lock contention; a hash
// function distributes keys across buckets. Each bucket bounds its share of
// the configured capacity, evicting entries in LRU or FIFO order when a
// the weigher-computed cost of its entries overflows. Entry lifetimes combine a
// cache-wide time-to-live, a time-to-idle measured from last access, and a
// per-entry creation-time override computed by an expiration.Expiry policy
// (by default, a short lifetime for confirmed-absent entries). Expired
// entries are reaped lazily on read. An optional eviction listener observes
// every removal together with its reason.
package memstorage
