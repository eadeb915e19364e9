// Package workpool runs a slice of jobs on a bounded set of workers.
package workpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run calls fn for every job with at most concurrency calls in flight and
// returns the results in job order. The first error cancels the jobs that
// have not started yet and is returned as is.
func Run[J, R any](
	ctx context.Context,
	jobs []J,
	concurrency int,
	fn func(ctx context.Context, index int, job J) (R, error),
) ([]R, error) {
	if len(jobs) == 0 {
		return []R{}, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]R, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			r, err := fn(gctx, i, job)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var chunks [][]T
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		chunks = append(chunks, items[i:end])
	}
	return chunks
}
