package querycache

import (
	"github.com/goliatone/go-query-cache/pkg/codec"
	"github.com/goliatone/go-query-cache/pkg/interfaces/logger"
	"github.com/goliatone/go-query-cache/pkg/interfaces/store"
)

// Option customizes a Cache beyond its Config.
type Option func(*Cache)

// WithCodec replaces the default JSON codec. All entries of a cache
// share one codec; switching codecs on a populated directory makes the
// old entries corrupt.
func WithCodec(c codec.Codec) Option {
	return func(cache *Cache) {
		if c != nil {
			cache.codec = c
		}
	}
}

// WithLogger attaches a structured logger for hit/miss/clear lines.
func WithLogger(l logger.Logger) Option {
	return func(cache *Cache) {
		if l != nil {
			cache.log = l
		}
	}
}

// WithStore replaces the disk-backed entry store. When set, the
// Config cache path is ignored.
func WithStore(s store.EntryStore) Option {
	return func(cache *Cache) {
		if s != nil {
			cache.store = s
		}
	}
}

// WithRecoverCorrupt treats an undecodable entry as a miss: the entry
// is refetched and overwritten instead of surfacing ErrCorruptEntry.
func WithRecoverCorrupt(enabled bool) Option {
	return func(cache *Cache) {
		cache.recoverCorrupt = enabled
	}
}
