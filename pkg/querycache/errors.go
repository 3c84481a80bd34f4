package querycache

import "errors"

var (
	// ErrNoCachePath indicates the configuration lacks a cache directory.
	ErrNoCachePath = errors.New("querycache: cache path is required")
	// ErrNoQueries indicates the configuration registered no query names.
	ErrNoQueries = errors.New("querycache: at least one query must be registered")
	// ErrUnknownQuery indicates a lookup for a name that was never registered.
	ErrUnknownQuery = errors.New("querycache: unknown query name")
	// ErrStorage wraps directory, read, write, and delete failures.
	ErrStorage = errors.New("querycache: storage failure")
	// ErrEncode wraps results that cannot be serialized.
	ErrEncode = errors.New("querycache: result cannot be encoded")
	// ErrCorruptEntry wraps stored bytes that no longer decode.
	ErrCorruptEntry = errors.New("querycache: cached entry cannot be decoded")
)
