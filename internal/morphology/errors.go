package morphology

import (
	"errors"
	"fmt"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

var (
	// ErrGeometryMismatch is returned when marker and mask do not share the
	// same largest region, spacing and origin.
	ErrGeometryMismatch = errors.New("morphology: marker and mask geometry differ")

	// ErrPreconditionViolated is returned by the optional precondition check
	// when the marker falls below the mask somewhere.
	ErrPreconditionViolated = errors.New("morphology: marker is below mask")

	// ErrRegionOutsideImage is returned when a requested region is not inside
	// the largest possible region.
	ErrRegionOutsideImage = errors.New("morphology: requested region outside image")

	// ErrInsufficientInput is returned when an input buffer does not cover the
	// region negotiated for it.
	ErrInsufficientInput = errors.New("morphology: input does not cover negotiated region")

	// ErrWorkerFailed marks a failure inside one sub-region worker.
	ErrWorkerFailed = errors.New("morphology: worker failed")

	// ErrCanceled is returned when the caller's context ends mid-request.
	ErrCanceled = errors.New("morphology: canceled")

	// ErrNotConverged is returned when the iteration cap is reached before a
	// fixed point.
	ErrNotConverged = errors.New("morphology: iteration limit reached before convergence")
)

// GeometryError carries both geometries of a marker/mask mismatch.
type GeometryError struct {
	Marker ndimage.Geometry
	Mask   ndimage.Geometry
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%v: marker %s spacing %v origin %v, mask %s spacing %v origin %v",
		ErrGeometryMismatch,
		e.Marker.Largest, e.Marker.Spacing, e.Marker.Origin,
		e.Mask.Largest, e.Mask.Spacing, e.Mask.Origin)
}

func (e *GeometryError) Unwrap() error { return ErrGeometryMismatch }

// PreconditionError reports the first coordinate where marker < mask.
type PreconditionError struct {
	Index  ndimage.Index
	Marker float64
	Mask   float64
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%v at %v: marker %g < mask %g", ErrPreconditionViolated, e.Index, e.Marker, e.Mask)
}

func (e *PreconditionError) Unwrap() error { return ErrPreconditionViolated }

// WorkerError wraps the failure of the worker that processed Region.
type WorkerError struct {
	Region ndimage.Region
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("%v on %s: %v", ErrWorkerFailed, e.Region, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

func (e *WorkerError) Is(target error) bool { return target == ErrWorkerFailed }

// IterationLimitError is returned when Limit passes ran without reaching a
// fixed point. Changed is the number of pixels the last pass modified.
type IterationLimitError struct {
	Limit   int
	Changed int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("%v: %d iterations, %d pixels still changing", ErrNotConverged, e.Limit, e.Changed)
}

func (e *IterationLimitError) Unwrap() error { return ErrNotConverged }
