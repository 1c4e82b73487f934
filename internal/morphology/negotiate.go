package morphology

import (
	"fmt"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

// Regions is the outcome of region negotiation: how much of each input must
// be buffered, and which output region will actually be produced.
type Regions struct {
	Marker ndimage.Region `json:"marker"`
	Mask   ndimage.Region `json:"mask"`
	Output ndimage.Region `json:"output"`
}

// RequiredInputRegions returns the marker and mask regions that must be
// buffered to produce requested.
//
// A single step reads the marker one pixel beyond requested (clipped to the
// image) and the mask only at requested. Running to convergence needs both
// inputs in full, since a fixed point can depend on any pixel.
func RequiredInputRegions(requested, largest ndimage.Region, runOneIteration bool) (marker, mask ndimage.Region, err error) {
	if err := checkRequested(requested, largest); err != nil {
		return ndimage.Region{}, ndimage.Region{}, err
	}
	if !runOneIteration {
		return largest.Clone(), largest.Clone(), nil
	}
	marker, ok := requested.PadByRadius(1).Crop(largest)
	if !ok {
		marker = requested.Clone()
	}
	return marker, requested.Clone(), nil
}

// EnlargeOutputRequestedRegion returns the output region that will be
// computed for requested: unchanged for a single step, the whole image when
// running to convergence.
func EnlargeOutputRequestedRegion(requested, largest ndimage.Region, runOneIteration bool) ndimage.Region {
	if runOneIteration {
		return requested.Clone()
	}
	return largest.Clone()
}

// NegotiateRegions combines RequiredInputRegions and
// EnlargeOutputRequestedRegion. It must run before any buffer is allocated.
func NegotiateRegions(requested, largest ndimage.Region, runOneIteration bool) (Regions, error) {
	marker, mask, err := RequiredInputRegions(requested, largest, runOneIteration)
	if err != nil {
		return Regions{}, err
	}
	return Regions{
		Marker: marker,
		Mask:   mask,
		Output: EnlargeOutputRequestedRegion(requested, largest, runOneIteration),
	}, nil
}

func checkRequested(requested, largest ndimage.Region) error {
	if requested.Dimension() != largest.Dimension() {
		return fmt.Errorf("%w: requested region has %d dimensions, image has %d",
			ErrRegionOutsideImage, requested.Dimension(), largest.Dimension())
	}
	if !requested.IsInside(largest) {
		return fmt.Errorf("%w: %s not inside %s", ErrRegionOutsideImage, requested, largest)
	}
	return nil
}
