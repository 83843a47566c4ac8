package storage

import "errors"

// Operation sentinels used to classify storage failures reported out-of-band.
var (
	ErrGet           = errors.New("unable to retrieve data from cache storage")
	ErrSet           = errors.New("unable to store data in cache storage")
	ErrInvalidate    = errors.New("unable to invalidate entry in cache storage")
	ErrInvalidateAll = errors.New("unable to invalidate all entries in cache storage")
)
