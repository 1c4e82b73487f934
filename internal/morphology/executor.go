package morphology

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

// RegionFunc processes one sub-region. Implementations must only write pixels
// inside sub.
type RegionFunc func(ctx context.Context, sub ndimage.Region) error

// Executor runs a RegionFunc over disjoint slabs of a region in parallel.
//
// The region is cut along its slowest-varying axis into at most Workers
// slabs. Run returns only after every launched slab has finished.
type Executor struct {
	Workers int
}

// NewExecutor returns an executor with the given worker count.
// Zero or negative means runtime.NumCPU().
func NewExecutor(workers int) Executor {
	return Executor{Workers: workers}
}

func (e Executor) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.NumCPU()
}

// Run invokes fn once per slab and waits for all of them.
//
// The first failing slab cancels the rest; its error is returned wrapped in a
// WorkerError. A panicking slab is reported the same way. If ctx ends before
// the batch finishes, no further slabs start and the returned error wraps
// ErrCanceled.
func (e Executor) Run(ctx context.Context, region ndimage.Region, fn RegionFunc) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	workers := e.workers()
	slabs := region.Split(workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, slab := range slabs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &WorkerError{Region: slab, Err: fmt.Errorf("panic: %v", r)}
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(gctx, slab); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return &WorkerError{Region: slab, Err: err}
			}
			return nil
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrCanceled, ctxErr)
	}
	return err
}
