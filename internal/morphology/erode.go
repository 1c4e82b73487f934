package morphology

import (
	"fmt"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

// ErodeRegion computes one geodesic erosion step for every pixel of region:
//
//	eroded(p) = min(marker(p), marker(p+o) for each offset o)
//	out(p)    = max(eroded(p), mask(p))
//
// Neighbors outside the largest possible region are left out of the
// minimum, so image borders never pull values down.
//
// marker must buffer region padded by one pixel (clipped to the image), mask
// and out must buffer region. Only pixels of region in out are written, which
// makes concurrent calls on disjoint regions safe. The returned count is the
// number of pixels whose output differs from the marker.
func ErodeRegion[T ndimage.Scalar](out, marker, mask *ndimage.Image[T], region ndimage.Region, offsets []ndimage.Offset) (int, error) {
	if err := checkCoverage(out, marker, mask, region); err != nil {
		return 0, err
	}
	return erodeRegion(out, marker, mask, region, offsets), nil
}

func checkCoverage[T ndimage.Scalar](out, marker, mask *ndimage.Image[T], region ndimage.Region) error {
	largest := marker.LargestPossibleRegion()
	if !mask.LargestPossibleRegion().Equal(largest) || !out.LargestPossibleRegion().Equal(largest) {
		return fmt.Errorf("%w: output, marker and mask extents differ", ErrGeometryMismatch)
	}
	if !region.IsInside(largest) {
		return fmt.Errorf("%w: %s not inside %s", ErrRegionOutsideImage, region, largest)
	}
	halo, ok := region.PadByRadius(1).Crop(largest)
	if ok && !halo.IsInside(marker.BufferedRegion()) {
		return fmt.Errorf("%w: marker buffers %s, need %s", ErrInsufficientInput, marker.BufferedRegion(), halo)
	}
	if !region.IsInside(mask.BufferedRegion()) {
		return fmt.Errorf("%w: mask buffers %s, need %s", ErrInsufficientInput, mask.BufferedRegion(), region)
	}
	if !region.IsInside(out.BufferedRegion()) {
		return fmt.Errorf("%w: output buffers %s, need %s", ErrInsufficientInput, out.BufferedRegion(), region)
	}
	return nil
}

// erodeRegion is ErodeRegion without the coverage checks.
func erodeRegion[T ndimage.Scalar](out, marker, mask *ndimage.Image[T], region ndimage.Region, offsets []ndimage.Offset) int {
	largest := marker.LargestPossibleRegion()
	dim := largest.Dimension()

	// flat displacement of each offset inside the marker buffer
	strides := marker.Strides()
	jumps := make([]int, len(offsets))
	for k, o := range offsets {
		for d := 0; d < dim; d++ {
			jumps[k] += o[d] * strides[d]
		}
	}

	src := marker.Pixels()
	lower := mask.Pixels()
	dst := out.Pixels()

	changed := 0
	region.ForEach(func(idx ndimage.Index) {
		at := marker.Offset(idx)
		own := src[at]
		v := own

		interior := true
		for d := 0; d < dim; d++ {
			if idx[d] <= largest.Index[d] || idx[d] >= largest.Upper(d)-1 {
				interior = false
				break
			}
		}

		for k, o := range offsets {
			if !interior && !insideAfterStep(idx, o, largest) {
				continue
			}
			if n := src[at+jumps[k]]; n < v {
				v = n
			}
		}

		if m := lower[mask.Offset(idx)]; m > v {
			v = m
		}
		dst[out.Offset(idx)] = v
		if !same(v, own) {
			changed++
		}
	})
	return changed
}

func insideAfterStep(idx ndimage.Index, o ndimage.Offset, largest ndimage.Region) bool {
	for d, v := range idx {
		n := v + o[d]
		if n < largest.Index[d] || n >= largest.Upper(d) {
			return false
		}
	}
	return true
}

// same is the fixed-point equality predicate: exact equality, with NaN
// considered equal to NaN so a NaN pixel cannot keep the loop alive.
func same[T ndimage.Scalar](a, b T) bool {
	return a == b || (a != a && b != b)
}
