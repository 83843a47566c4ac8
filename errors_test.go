package rowcache_test

import (
	"errors"
	"testing"

	rowcache "github.com/karupanerura/row-cache"
)

func TestSourceError(t *testing.T) {
	t.Parallel()

	cause := errors.New("timeout")
	err := &rowcache.SourceError{Key: uint8(7), Err: cause}
	if got, expected := err.Error(), "rowcache: load 7: timeout"; got != expected {
		t.Errorf("unexpected message: %q (expected: %q)", got, expected)
	}
	if !errors.Is(err, cause) {
		t.Error("SourceError must unwrap to the cause")
	}
}
