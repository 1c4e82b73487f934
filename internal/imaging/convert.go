package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

// Grid is the 2-D, 8-bit image the morphology tools operate on.
// Axis 0 is X (columns) and axis 1 is Y (rows).
type Grid = ndimage.Image[uint8]

// Channel selects how a color image is reduced to one scalar per pixel.
type Channel string

const (
	// ChannelGray uses luma (ITU-R BT.601 weights) as computed by
	// disintegration/imaging.
	ChannelGray Channel = "gray"

	// ChannelLightness uses CIE L* scaled to 0-255. It follows perceived
	// brightness more closely than luma on saturated colors.
	ChannelLightness Channel = "lightness"
)

// ParseChannel maps a tool argument to a Channel. The empty string selects
// ChannelGray.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case "", ChannelGray:
		return ChannelGray, nil
	case ChannelLightness:
		return ChannelLightness, nil
	default:
		return "", fmt.Errorf("unknown channel %q (want gray or lightness)", s)
	}
}

// ToGrid converts img into a grid anchored at the origin.
//
// Parameters:
//   - img: Source image (any color model).
//   - channel: How colors are reduced to a single value.
//
// Returns:
//   - *Grid: A width×height grid with one byte per pixel.
//   - error: Non-nil for an unknown channel or an empty image.
func ToGrid(img image.Image, channel Channel) (*Grid, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}
	grid := ndimage.New[uint8](ndimage.RegionOfSize(bounds.Dx(), bounds.Dy()))
	pixels := grid.Pixels()
	width := bounds.Dx()

	switch channel {
	case "", ChannelGray:
		gray := imaging.Grayscale(img)
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < width; x++ {
				// R, G and B are equal after Grayscale
				pixels[y*width+x] = gray.Pix[y*gray.Stride+x*4]
			}
		}
	case ChannelLightness:
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < width; x++ {
				pixels[y*width+x] = lightness(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			}
		}
	default:
		return nil, fmt.Errorf("unknown channel %q", channel)
	}
	return grid, nil
}

// lightness returns CIE L* of c scaled to 0-255. Fully transparent pixels
// map to 0.
func lightness(c color.Color) uint8 {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return 0
	}
	l, _, _ := cf.Lab()
	return uint8(math.Round(math.Max(0, math.Min(1, l)) * 255))
}

// Binarize thresholds img at level: pixels whose luminance is at least level
// become 255, all others 0.
func Binarize(img image.Image, level uint8) (*Grid, error) {
	return ToGrid(segment.Threshold(img, level), ChannelGray)
}

// FromGrid renders the buffered region of a 2-D grid as a grayscale image.
// Image coordinates equal grid coordinates, so a grid that buffers only a
// sub-region produces an image whose Bounds start at that sub-region.
func FromGrid(grid *Grid) (*image.Gray, error) {
	if grid.Dimension() != 2 {
		return nil, fmt.Errorf("cannot render a %d-dimensional grid as an image", grid.Dimension())
	}
	buffered := grid.BufferedRegion()
	rect := image.Rect(buffered.Index[0], buffered.Index[1], buffered.Upper(0), buffered.Upper(1))
	out := image.NewGray(rect)
	width := buffered.Size[0]
	pixels := grid.Pixels()
	for y := 0; y < buffered.Size[1]; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+width], pixels[y*width:(y+1)*width])
	}
	return out, nil
}
