// Package singleflightloader provides a loader implementation that coalesces
// concurrent loads for the same key into a single execution.
//
// When several goroutines miss on the same key at once, only one point lookup
// reaches the backing store; every waiter receives the identical outcome. A
// successful outcome (a found row or a confirmed absence) is stored as a
// presence marker before it is broadcast. A failed load is broadcast as one
// shared *rowcache.SourceError and nothing is stored, so the next call for
// the key retries the backing store.
//
// The load itself runs on its own goroutine under a detached context: a
// waiter cancelling its own context abandons its wait but never the shared
// load. The SingleFlightLoader can be configured with options:
//   - WithCloner: sets the value cloner used when fanning a loaded value out to multiple waiters
//   - WithBackgroundContextProvider: sets the context provider for the detached load
package singleflightloader
