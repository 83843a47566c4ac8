package rowcache

import "github.com/goccy/go-reflect"

// ValueCloner is an interface for duplicating cached values.
// The cache hands each caller its own handle of a stored value; CloneValue
// must return a copy that is safe to use independently of the original.
type ValueCloner[V ValueConstraint] interface {
	CloneValue(V) V
}

// ValueClonerFunc is a function type that implements the ValueCloner interface.
type ValueClonerFunc[V ValueConstraint] func(v V) V

// CloneValue calls the function.
func (f ValueClonerFunc[V]) CloneValue(v V) V {
	return f(v)
}

// NopValueCloner returns values as-is.
// Use it when values are immutable after load, or when callers agree to
// treat the shared value as read-only. Pointer values stay shared across
// all callers, so a single loaded row is handed out without re-copying.
type NopValueCloner[V ValueConstraint] struct{}

// CloneValue returns the input value.
func (NopValueCloner[V]) CloneValue(v V) V {
	return v
}

// DefaultValueCloner returns a cloner for the given value type.
// Types with a Clone or DeepCopy method use that method. Primitive types
// need no cloning and get a NopValueCloner. Any other type panics: the
// caller must supply an explicit cloner for mutable composite values.
func DefaultValueCloner[V ValueConstraint]() ValueCloner[V] {
	var zero V
	return valueClonerFor[V](zero)
}

func valueClonerFor[V ValueConstraint](v any) ValueCloner[V] {
	type cloner interface {
		Clone() V
	}
	type deepCopier interface {
		DeepCopy() V
	}

	switch v.(type) {
	case cloner:
		return ValueClonerFunc[V](func(v V) V {
			var a any = v
			return a.(cloner).Clone()
		})

	case deepCopier:
		return ValueClonerFunc[V](func(v V) V {
			var a any = v
			return a.(deepCopier).DeepCopy()
		})
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String, reflect.UnsafePointer:
		return NopValueCloner[V]{}
	default:
		panic("rowcache: value type does not have a Clone or DeepCopy method")
	}
}
