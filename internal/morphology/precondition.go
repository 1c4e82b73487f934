package morphology

import (
	"fmt"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

// CheckPrecondition verifies marker >= mask at every pixel of region and
// returns a PreconditionError for the first violation in memory order.
//
// The engine does not call this on its own: the scan costs as much as an
// erosion pass. Enable it with Options.CheckPreconditions while debugging.
func CheckPrecondition[T ndimage.Scalar](marker, mask *ndimage.Image[T], region ndimage.Region) error {
	if !region.IsInside(marker.BufferedRegion()) || !region.IsInside(mask.BufferedRegion()) {
		return fmt.Errorf("%w: precondition region %s not buffered", ErrInsufficientInput, region)
	}
	var violation *PreconditionError
	region.ForEach(func(idx ndimage.Index) {
		if violation != nil {
			return
		}
		mk, ms := marker.At(idx), mask.At(idx)
		if mk < ms {
			violation = &PreconditionError{
				Index:  append(ndimage.Index(nil), idx...),
				Marker: float64(mk),
				Mask:   float64(ms),
			}
		}
	})
	if violation != nil {
		return violation
	}
	return nil
}
