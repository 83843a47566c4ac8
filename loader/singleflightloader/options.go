package singleflightloader

import (
	"context"

	rowcache "github.com/karupanerura/row-cache"
)

// Option is the interface for the options of the SingleFlightLoader.
type Option[K rowcache.KeyConstraint, V rowcache.ValueConstraint] interface {
	apply(*SingleFlightLoader[K, V])
}

type optionFunc[K rowcache.KeyConstraint, V rowcache.ValueConstraint] func(*SingleFlightLoader[K, V])

func (f optionFunc[K, V]) apply(l *SingleFlightLoader[K, V]) {
	f(l)
}

// WithCloner sets the value cloner of the loader.
// The default is rowcache.DefaultValueCloner for the value type.
func WithCloner[K rowcache.KeyConstraint, V rowcache.ValueConstraint](cloner rowcache.ValueCloner[V]) Option[K, V] {
	return optionFunc[K, V](func(l *SingleFlightLoader[K, V]) {
		l.cloner = cloner
	})
}

// WithBackgroundContextProvider sets the context provider for the detached
// load goroutine. The provider must return a new context for each call.
// The default provider is context.Background. The in-flight load is not owned
// by any single caller, so it never runs under a caller's context.
func WithBackgroundContextProvider[K rowcache.KeyConstraint, V rowcache.ValueConstraint](provider func() context.Context) Option[K, V] {
	return optionFunc[K, V](func(l *SingleFlightLoader[K, V]) {
		l.context = provider
	})
}
