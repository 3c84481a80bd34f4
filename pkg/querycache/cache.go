// Package querycache memoizes named data-access queries on disk. Each
// registered query name maps to one file under the configured cache
// directory; file presence is the sole hit signal. Entries populate
// lazily on first read and are invalidated in bulk, never in place.
package querycache

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-query-cache/internal/storage/disk"
	"github.com/goliatone/go-query-cache/pkg/codec"
	"github.com/goliatone/go-query-cache/pkg/interfaces/logger"
	"github.com/goliatone/go-query-cache/pkg/interfaces/store"
)

// FetchFunc recomputes a query result on a cache miss. It receives the
// parameters registered for the query name and returns a value the
// cache codec can serialize. Failures are propagated to the Get caller
// unchanged; the cache never retries.
type FetchFunc func(ctx context.Context, params Params) (any, error)

// Cache serves registered queries from one file per name, populating
// lazily via the caller-supplied fetch function. A per-name mutex
// guarantees a single fetch per absent entry within the process; no
// cross-process coordination is attempted.
type Cache struct {
	queries        map[string]Params
	store          store.EntryStore
	codec          codec.Codec
	log            logger.Logger
	recoverCorrupt bool
	locks          map[string]*sync.Mutex
}

// New builds a cache for the registered queries. Unless WithStore
// overrides it, entries live on disk under cfg.CachePath, which is
// created when absent.
func New(cfg Config, opts ...Option) (*Cache, error) {
	if len(cfg.Queries) == 0 {
		return nil, ErrNoQueries
	}

	queries := make(map[string]Params, len(cfg.Queries))
	locks := make(map[string]*sync.Mutex, len(cfg.Queries))
	for name, params := range cfg.Queries {
		if name == "" {
			return nil, fmt.Errorf("%w: empty query name", ErrNoQueries)
		}
		queries[name] = append(Params(nil), params...)
		locks[name] = &sync.Mutex{}
	}

	c := &Cache{
		queries: queries,
		codec:   codec.JSON{},
		log:     &logger.Nop{},
		locks:   locks,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		if cfg.CachePath == "" {
			return nil, ErrNoCachePath
		}
		ds, err := disk.New(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		c.store = ds
	}
	return c, nil
}

// Get serves the result of a registered query into dest, which must be
// a pointer to the result type. On a hit the stored entry is decoded;
// on a miss fetch runs with the registered parameters and its result
// is written before being returned. Either way dest receives the
// serialization round-trip of the result, so hits and misses observe
// identical values. Once an entry exists, fetch is not invoked again
// for that name until ClearAll.
func (c *Cache) Get(ctx context.Context, name string, dest any, fetch FetchFunc) error {
	params, ok := c.queries[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuery, name)
	}

	lock := c.locks[name]
	lock.Lock()
	defer lock.Unlock()

	data, found, err := c.store.Read(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if found {
		if err := c.codec.Decode(data, dest); err != nil {
			if !c.recoverCorrupt {
				return fmt.Errorf("%w: %q: %w", ErrCorruptEntry, name, err)
			}
			c.log.Warn("discarding corrupt cache entry",
				logger.F("query", name), logger.F("error", err))
		} else {
			c.log.Debug("query cache hit", logger.F("query", name))
			return nil
		}
	}

	result, err := fetch(ctx, params)
	if err != nil {
		return err
	}

	encoded, err := c.codec.Encode(result)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrEncode, name, err)
	}
	if err := c.store.Write(ctx, name, encoded); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	c.log.Debug("query cache populated",
		logger.F("query", name), logger.F("codec", c.codec.Name()))

	if err := c.codec.Decode(encoded, dest); err != nil {
		return fmt.Errorf("%w: %q: round-trip decode: %w", ErrEncode, name, err)
	}
	return nil
}

// ClearAll deletes the entry of every registered query name. Names
// without an entry are skipped silently; the first real deletion
// failure aborts and surfaces, leaving later entries in place. The
// cache directory itself is not removed.
func (c *Cache) ClearAll(ctx context.Context) error {
	for _, name := range c.Names() {
		if err := c.store.Delete(ctx, name); err != nil {
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
	}
	c.log.Debug("query cache cleared", logger.F("queries", len(c.queries)))
	return nil
}

// Names returns the registered query names in sorted order.
func (c *Cache) Names() []string {
	names := make([]string, 0, len(c.queries))
	for name := range c.queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Params returns the fetch parameters registered for name.
func (c *Cache) Params(name string) (Params, bool) {
	params, ok := c.queries[name]
	if !ok {
		return nil, false
	}
	return append(Params(nil), params...), true
}
