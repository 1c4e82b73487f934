package morphology

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

// Result is the outcome of a geodesic erosion request.
type Result[T ndimage.Scalar] struct {
	// Output buffers exactly Regions.Output.
	Output *ndimage.Image[T]

	// IterationsUsed counts erosion passes, including the final pass that
	// confirmed the fixed point. A single-step request always uses 1.
	IterationsUsed int

	// Changed is the number of pixels the last pass modified. Zero means
	// the output is a fixed point of geodesic erosion.
	Changed int

	// Regions is the negotiation the output was computed under.
	Regions Regions
}

// Converged reports whether the last pass left every pixel unchanged.
func (r *Result[T]) Converged() bool { return r.Changed == 0 }

type driverState int

const (
	stateIdle driverState = iota
	stateIterating
	stateConverged
)

func (s driverState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateIterating:
		return "iterating"
	case stateConverged:
		return "converged"
	default:
		return "unknown"
	}
}

// Filter performs geodesic erosion of a marker image under a mask image.
//
// Use is two-phase: Negotiate tells the caller how much of each input must
// be buffered for a requested output region, then Compute produces the
// output. A Filter holds only configuration and is safe for concurrent use.
type Filter[T ndimage.Scalar] struct {
	opts     Options
	executor Executor
}

// NewFilter returns a filter configured by opts.
func NewFilter[T ndimage.Scalar](opts Options) *Filter[T] {
	return &Filter[T]{
		opts:     opts,
		executor: NewExecutor(opts.Workers),
	}
}

// Options returns the filter configuration.
func (f *Filter[T]) Options() Options { return f.opts }

// Negotiate returns the input and output regions for requested.
func (f *Filter[T]) Negotiate(requested, largest ndimage.Region) (Regions, error) {
	return NegotiateRegions(requested, largest, f.opts.RunOneIteration)
}

// Compute runs geodesic erosion of marker under mask over regions, which
// must come from Negotiate.
//
// The marker must be pixelwise greater than or equal to the mask; this is
// only verified when Options.CheckPreconditions is set. Neither input is
// modified. On any error no output is returned.
func (f *Filter[T]) Compute(ctx context.Context, marker, mask *ndimage.Image[T], regions Regions) (*Result[T], error) {
	if !marker.Geometry().Equal(mask.Geometry()) {
		return nil, &GeometryError{Marker: marker.Geometry(), Mask: mask.Geometry()}
	}
	geometry := marker.Geometry()
	if !regions.Output.IsInside(geometry.Largest) {
		return nil, fmt.Errorf("%w: output %s not inside %s", ErrRegionOutsideImage, regions.Output, geometry.Largest)
	}
	if !regions.Marker.IsInside(marker.BufferedRegion()) {
		return nil, fmt.Errorf("%w: marker buffers %s, need %s", ErrInsufficientInput, marker.BufferedRegion(), regions.Marker)
	}
	if !regions.Mask.IsInside(mask.BufferedRegion()) {
		return nil, fmt.Errorf("%w: mask buffers %s, need %s", ErrInsufficientInput, mask.BufferedRegion(), regions.Mask)
	}
	if f.opts.CheckPreconditions {
		if err := CheckPrecondition(marker, mask, regions.Mask); err != nil {
			return nil, err
		}
	}

	offsets := Neighborhood(geometry.Largest.Dimension(), f.opts.Connectivity)
	logger := f.opts.logger(ctx)

	if f.opts.RunOneIteration {
		out, err := ndimage.NewBuffered[T](geometry, regions.Output)
		if err != nil {
			return nil, err
		}
		changed, err := f.pass(ctx, out, marker, mask, regions.Output, offsets)
		if err != nil {
			return nil, err
		}
		out.SetRequestedRegion(regions.Output)
		logger.Debug("geodesic erosion step", "region", regions.Output, "changed", changed)
		return &Result[T]{Output: out, IterationsUsed: 1, Changed: changed, Regions: regions}, nil
	}

	return f.converge(ctx, marker, mask, regions, offsets)
}

// converge iterates erosion passes over the whole image until a pass
// changes nothing. Two buffers alternate as write targets; the caller's
// marker is only ever read.
func (f *Filter[T]) converge(ctx context.Context, marker, mask *ndimage.Image[T], regions Regions, offsets []ndimage.Offset) (*Result[T], error) {
	logger := f.opts.logger(ctx)
	geometry := marker.Geometry()
	whole := geometry.Largest

	state := stateIdle
	current := marker
	var spare *ndimage.Image[T]
	iterations := 0
	start := time.Now()
	logger.Debug("geodesic erosion start", "region", whole, "connectivity", f.opts.Connectivity, "state", state)

	state = stateIterating
	for state == stateIterating {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w after %d iterations: %w", ErrCanceled, iterations, err)
		}

		next := spare
		if next == nil {
			var err error
			next, err = ndimage.NewBuffered[T](geometry, whole)
			if err != nil {
				return nil, err
			}
		}

		changed, err := f.pass(ctx, next, current, mask, whole, offsets)
		if err != nil {
			return nil, err
		}
		iterations++
		logger.Debug("geodesic erosion pass", "iteration", iterations, "changed", changed, "state", state)

		if changed == 0 {
			state = stateConverged
			next.SetRequestedRegion(regions.Output)
			logger.Info("geodesic erosion converged",
				"iterations", iterations,
				"state", state,
				"elapsed", time.Since(start).Round(time.Millisecond))
			return &Result[T]{Output: next, IterationsUsed: iterations, Regions: regions}, nil
		}
		if f.opts.MaxIterations > 0 && iterations >= f.opts.MaxIterations {
			logger.Error("geodesic erosion did not converge", "iterations", iterations, "changed", changed)
			return nil, &IterationLimitError{Limit: iterations, Changed: changed}
		}

		if current != marker {
			spare = current
		}
		current = next
	}
	return nil, fmt.Errorf("morphology: driver left iteration in state %s", state)
}

// pass runs one erosion step over region on the executor and returns the
// total number of changed pixels.
func (f *Filter[T]) pass(ctx context.Context, out, marker, mask *ndimage.Image[T], region ndimage.Region, offsets []ndimage.Offset) (int, error) {
	if err := checkCoverage(out, marker, mask, region); err != nil {
		return 0, err
	}
	var changed atomic.Int64
	err := f.executor.Run(ctx, region, func(_ context.Context, sub ndimage.Region) error {
		changed.Add(int64(erodeRegion(out, marker, mask, sub, offsets)))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(changed.Load()), nil
}

// GeodesicErode computes geodesic erosion of marker under mask over the
// whole image.
func GeodesicErode[T ndimage.Scalar](ctx context.Context, marker, mask *ndimage.Image[T], opts Options) (*Result[T], error) {
	f := NewFilter[T](opts)
	largest := marker.LargestPossibleRegion()
	regions, err := f.Negotiate(largest, largest)
	if err != nil {
		return nil, err
	}
	return f.Compute(ctx, marker, mask, regions)
}
