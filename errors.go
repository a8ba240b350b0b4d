package lksearch

import "errors"

var (
	// ErrNoData means a search matched no observations at the archive.
	ErrNoData = errors.New("no data found")

	// ErrIndexOutOfRange is returned when indexing a SearchResult outside
	// [-Len, Len).
	ErrIndexOutOfRange = errors.New("index out of range")
)
