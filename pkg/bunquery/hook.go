package bunquery

import (
	"context"

	"github.com/goliatone/go-query-cache/pkg/interfaces/logger"
	"github.com/uptrace/bun"
)

// Invalidator is the slice of querycache.Cache the hook needs.
type Invalidator interface {
	ClearAll(ctx context.Context) error
}

// InvalidationHook is a bun.QueryHook that clears the cache after any
// successful INSERT, UPDATE, or DELETE, so cached reads never outlive
// the data they were computed from. Attach it with db.AddQueryHook.
type InvalidationHook struct {
	cache  Invalidator
	log    logger.Logger
	accept func(*bun.QueryEvent) bool
}

var _ bun.QueryHook = (*InvalidationHook)(nil)

// HookOption customizes the invalidation hook.
type HookOption func(*InvalidationHook)

// WithHookLogger attaches a logger for invalidation failures.
func WithHookLogger(l logger.Logger) HookOption {
	return func(h *InvalidationHook) {
		if l != nil {
			h.log = l
		}
	}
}

// WithAccept filters which write events trigger invalidation, e.g. to
// scope clearing to the tables the cached queries read from.
func WithAccept(accept func(*bun.QueryEvent) bool) HookOption {
	return func(h *InvalidationHook) {
		h.accept = accept
	}
}

// NewInvalidationHook builds a hook that clears cache on writes.
func NewInvalidationHook(cache Invalidator, opts ...HookOption) *InvalidationHook {
	h := &InvalidationHook{
		cache: cache,
		log:   &logger.Nop{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *InvalidationHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *InvalidationHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if event == nil || event.Err != nil {
		return
	}
	switch event.Operation() {
	case "INSERT", "UPDATE", "DELETE":
	default:
		return
	}
	if h.accept != nil && !h.accept(event) {
		return
	}
	if err := h.cache.ClearAll(ctx); err != nil {
		h.log.Error("cache invalidation failed",
			logger.F("operation", event.Operation()), logger.F("error", err))
		return
	}
	h.log.Debug("cache cleared after write", logger.F("operation", event.Operation()))
}
