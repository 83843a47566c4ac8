package panicutil

import (
	"github.com/sourcegraph/conc/panics"
)

// DoubleDeferSandwich runs a function and distinguishes its three possible
// exits: a normal return, a panic, and runtime.Goexit. The outer defer sees
// which of the three happened; the inner defer captures the panic value with
// its stack via conc's panics.Recovered.
type DoubleDeferSandwich struct {
	// OnGoexit is called when the function exits via runtime.Goexit.
	OnGoexit func()
}

// Invoke runs the function.
// A normal return yields the function's own error. A panic is recovered and
// returned as a *panics.ErrRecovered. On runtime.Goexit, OnGoexit is called
// (if set) and the Goexit continues unwinding afterwards.
func (dds *DoubleDeferSandwich) Invoke(f func() error) (err error) {
	var (
		normalReturn bool
		recovered    bool
		panicValue   panics.Recovered
	)
	defer func() {
		switch {
		case normalReturn:
			return
		case recovered:
			err = panicValue.AsError()
		default:
			if dds.OnGoexit != nil {
				dds.OnGoexit()
			}
		}
	}()
	func() {
		defer func() {
			panicValue = panics.NewRecovered(2, recover())
		}()
		err = f()
		normalReturn = true
	}()
	if !normalReturn {
		recovered = true
	}
	return
}

// Invoke runs f inside a fresh DoubleDeferSandwich without Goexit handling.
func Invoke(f func() error) error {
	var dds DoubleDeferSandwich
	return dds.Invoke(f)
}
