package pubg

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultFetchConcurrency is used by FetchAll when limit is not positive.
const DefaultFetchConcurrency = 3

// FetchAll fetches independent queries concurrently, at most limit at a time.
// Queries that already hold a payload are not fetched again. The first error
// cancels the remaining fetches and is returned.
func FetchAll(ctx context.Context, limit int, queries ...*Query) error {
	if limit <= 0 {
		limit = DefaultFetchConcurrency
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	for _, query := range queries {
		group.Go(func() error {
			return query.Fetch(ctx)
		})
	}

	err := group.Wait()
	if err != nil {
		return fmt.Errorf("batch fetch: %w", err)
	}

	return nil
}

// GetAll runs Get(ctx, id) for every id on independent queries derived from
// template, at most limit at a time, and returns the objects in id order.
func GetAll(ctx context.Context, limit int, template *Query, ids ...string) ([]Object, error) {
	if limit <= 0 {
		limit = DefaultFetchConcurrency
	}

	objects := make([]Object, len(ids))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	for i, id := range ids {
		query := template.derive(func(e *Endpoint) *Endpoint { return e })

		group.Go(func() error {
			obj, err := query.Get(ctx, id)
			if err != nil {
				return err
			}

			objects[i] = obj

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("batch get: %w", err)
	}

	return objects, nil
}
