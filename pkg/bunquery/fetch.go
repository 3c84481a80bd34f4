// Package bunquery attaches querycache to the bun ORM: fetch-function
// builders that run bun queries on a miss, and a query hook that clears
// the cache after writes.
package bunquery

import (
	"context"

	"github.com/goliatone/go-query-cache/pkg/querycache"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Select builds a fetch function that scans a bun SELECT into []T.
// The apply callback shapes the query; nil selects every row.
func Select[T any](db bun.IDB, apply func(*bun.SelectQuery) *bun.SelectQuery) querycache.FetchFunc {
	return func(ctx context.Context, params querycache.Params) (any, error) {
		var rows []T
		q := db.NewSelect().Model(&rows)
		if apply != nil {
			q = apply(q)
		}
		if err := q.Scan(ctx); err != nil {
			return nil, err
		}
		return rows, nil
	}
}

// Count builds a fetch function that counts rows of model T under the
// given query shape.
func Count[T any](db bun.IDB, apply func(*bun.SelectQuery) *bun.SelectQuery) querycache.FetchFunc {
	return func(ctx context.Context, params querycache.Params) (any, error) {
		q := db.NewSelect().Model((*T)(nil))
		if apply != nil {
			q = apply(q)
		}
		count, err := q.Count(ctx)
		if err != nil {
			return nil, err
		}
		return count, nil
	}
}

// List builds a fetch function over a go-repository-bun repository,
// returning the matching records as []T. The registered criteria run
// on every miss; the cache parameters are not consulted.
func List[T any](repo repository.Repository[*T], criteria ...repository.SelectCriteria) querycache.FetchFunc {
	return func(ctx context.Context, params querycache.Params) (any, error) {
		records, _, err := repo.List(ctx, criteria...)
		if err != nil {
			return nil, err
		}
		items := make([]T, len(records))
		for i, rec := range records {
			items[i] = *rec
		}
		return items, nil
	}
}
