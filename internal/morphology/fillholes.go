package morphology

import (
	"context"
	"fmt"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

// FillHoles fills every regional minimum of img that is not connected to
// the image border, using reconstruction by erosion.
//
// The marker equals the image maximum everywhere except on the border,
// where it keeps the image values; the mask is img itself. The marker
// dominates the mask by construction, so the precondition always holds.
// opts.RunOneIteration is ignored.
func FillHoles[T ndimage.Scalar](ctx context.Context, img *ndimage.Image[T], opts Options) (*Result[T], error) {
	largest := img.LargestPossibleRegion()
	if !img.BufferedRegion().Equal(largest) {
		return nil, fmt.Errorf("%w: fill holes needs the whole image, buffered %s of %s",
			ErrInsufficientInput, img.BufferedRegion(), largest)
	}
	pixels := img.Pixels()
	if len(pixels) == 0 {
		return &Result[T]{Output: img.Clone(), Regions: Regions{Marker: largest, Mask: largest, Output: largest}}, nil
	}

	peak := pixels[0]
	for _, v := range pixels[1:] {
		if v > peak {
			peak = v
		}
	}

	marker := img.Clone()
	largest.ForEach(func(idx ndimage.Index) {
		if !onBorder(idx, largest) {
			marker.Set(idx, peak)
		}
	})

	opts.RunOneIteration = false
	return GeodesicErode(ctx, marker, img, opts)
}

func onBorder(idx ndimage.Index, largest ndimage.Region) bool {
	for d, v := range idx {
		if v == largest.Index[d] || v == largest.Upper(d)-1 {
			return true
		}
	}
	return false
}
