package simpleknn

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// parallelFor splits [0, n) into contiguous batches of dev.BatchSize() and
// runs fn on each batch with at most dev.Workers() goroutines. Batches never
// overlap, so fn may write to per-index output slots without
// synchronization. parallelFor returns only after every started batch has
// finished; callers rely on that as a barrier between stages.
//
// The first error cancels batches that have not started. A panic in fn is
// converted into ErrInternalInvariant.
func parallelFor(ctx context.Context, dev *Device, n int, fn func(start, end int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	batch := dev.BatchSize()

	// Single batch or single worker: run inline.
	if n <= batch || dev.Workers() <= 1 {
		for start := 0; start < n; start += batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := runBatch(fn, start, min(start+batch, n)); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dev.Workers())
	for start := 0; start < n; start += batch {
		if gctx.Err() != nil {
			break
		}
		start := start // per-iteration copy (go 1.21 loop semantics)
		end := min(start+batch, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return runBatch(fn, start, end)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// numBatches returns how many batches parallelFor will schedule for n items.
func numBatches(dev *Device, n int) int {
	return (n + dev.BatchSize() - 1) / dev.BatchSize()
}

func runBatch(fn func(start, end int) error, start, end int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: batch [%d,%d): %v", ErrInternalInvariant, start, end, r)
		}
	}()
	return fn(start, end)
}
