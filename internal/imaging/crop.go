package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

// Rect is a pixel rectangle in tool coordinates: (X1,Y1) inclusive,
// (X2,Y2) exclusive.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Region converts r into a 2-D ndimage region.
func (r Rect) Region() (ndimage.Region, error) {
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return ndimage.Region{}, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	return ndimage.NewRegion(ndimage.Index{r.X1, r.Y1}, ndimage.Size{r.X2 - r.X1, r.Y2 - r.Y1})
}

// RectOf converts a 2-D region back to tool coordinates.
func RectOf(region ndimage.Region) Rect {
	return Rect{X1: region.Index[0], Y1: region.Index[1], X2: region.Upper(0), Y2: region.Upper(1)}
}

// ImageResult contains a rendered grid as base64 PNG.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG renders img as a base64 PNG result.
func EncodePNG(img image.Image) (*ImageResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &ImageResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// CropRegion renders the part of grid inside region as a PNG, optionally
// scaled. region must lie inside the grid's buffered region.
func CropRegion(grid *Grid, region ndimage.Region, scale float64) (*ImageResult, error) {
	if !region.IsInside(grid.BufferedRegion()) {
		return nil, fmt.Errorf("crop region %s outside buffered region %s", region, grid.BufferedRegion())
	}
	img, err := FromGrid(grid)
	if err != nil {
		return nil, err
	}

	r := RectOf(region)
	var out image.Image = imaging.Crop(img, image.Rect(r.X1, r.Y1, r.X2, r.Y2))

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(out.Bounds().Dx()) * scale)
		newHeight := int(float64(out.Bounds().Dy()) * scale)
		// nearest neighbor keeps plateaus and edges of morphology output crisp
		out = imaging.Resize(out, newWidth, newHeight, imaging.NearestNeighbor)
	}
	return EncodePNG(out)
}

// NamedRegion returns a named part of a width×height image: top-left,
// top-right, bottom-left, bottom-right, top-half, bottom-half, left-half,
// right-half, center, or full.
func NamedRegion(name string, width, height int) (ndimage.Region, error) {
	midX := width / 2
	midY := height / 2

	var r Rect
	switch name {
	case "", "full":
		r = Rect{0, 0, width, height}
	case "top-left":
		r = Rect{0, 0, midX, midY}
	case "top-right":
		r = Rect{midX, 0, width, midY}
	case "bottom-left":
		r = Rect{0, midY, midX, height}
	case "bottom-right":
		r = Rect{midX, midY, width, height}
	case "top-half":
		r = Rect{0, 0, width, midY}
	case "bottom-half":
		r = Rect{0, midY, width, height}
	case "left-half":
		r = Rect{0, 0, midX, height}
	case "right-half":
		r = Rect{midX, 0, width, height}
	case "center":
		// Center 50% of the image
		qW := width / 4
		qH := height / 4
		r = Rect{qW, qH, width - qW, height - qH}
	default:
		return ndimage.Region{}, fmt.Errorf("unknown region: %s", name)
	}
	return r.Region()
}
