package ndimage

import (
	"fmt"
	"slices"
)

// Scalar is the set of totally ordered pixel value types an Image can hold.
type Scalar interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Geometry is the part of an image that two images must share to be combined
// pixel by pixel: the largest possible region, spacing, and origin.
type Geometry struct {
	Largest Region    `json:"largest"`
	Spacing []float64 `json:"spacing"`
	Origin  []float64 `json:"origin"`
}

// NewGeometry returns a geometry over largest with unit spacing and a zero origin.
func NewGeometry(largest Region) Geometry {
	spacing := make([]float64, largest.Dimension())
	for i := range spacing {
		spacing[i] = 1
	}
	return Geometry{
		Largest: largest.Clone(),
		Spacing: spacing,
		Origin:  make([]float64, largest.Dimension()),
	}
}

// Equal reports whether both geometries are identical.
func (g Geometry) Equal(other Geometry) bool {
	return g.Largest.Equal(other.Largest) &&
		slices.Equal(g.Spacing, other.Spacing) &&
		slices.Equal(g.Origin, other.Origin)
}

// Image is an N-dimensional grid of scalar pixels.
//
// Only the buffered region is materialized in memory; it is always a
// sub-region of the largest possible region. The requested region records
// what a consumer asked for and is informational.
type Image[T Scalar] struct {
	geometry  Geometry
	buffered  Region
	requested Region
	strides   []int
	pixels    []T
}

// New allocates an image whose buffered and requested regions equal the
// largest possible region.
func New[T Scalar](largest Region) *Image[T] {
	img, err := NewBuffered[T](NewGeometry(largest), largest)
	if err != nil {
		// largest is always inside itself; only a malformed region fails.
		panic(err)
	}
	return img
}

// NewBuffered allocates an image that materializes only buffered, which must
// lie inside geometry.Largest.
func NewBuffered[T Scalar](geometry Geometry, buffered Region) (*Image[T], error) {
	if buffered.Dimension() != geometry.Largest.Dimension() {
		return nil, fmt.Errorf("%w: buffered region has %d dimensions, image has %d",
			ErrInvalidRegion, buffered.Dimension(), geometry.Largest.Dimension())
	}
	if !buffered.IsInside(geometry.Largest) {
		return nil, fmt.Errorf("%w: buffered region %s outside largest region %s",
			ErrInvalidRegion, buffered, geometry.Largest)
	}
	strides := make([]int, buffered.Dimension())
	step := 1
	for d := range strides {
		strides[d] = step
		step *= buffered.Size[d]
	}
	return &Image[T]{
		geometry: Geometry{
			Largest: geometry.Largest.Clone(),
			Spacing: slices.Clone(geometry.Spacing),
			Origin:  slices.Clone(geometry.Origin),
		},
		buffered:  buffered.Clone(),
		requested: buffered.Clone(),
		strides:   strides,
		pixels:    make([]T, buffered.NumberOfPixels()),
	}, nil
}

// FromSlice builds an image over largest backed by a copy of values, which
// must be laid out in memory order (axis 0 fastest).
func FromSlice[T Scalar](largest Region, values []T) (*Image[T], error) {
	if len(values) != largest.NumberOfPixels() {
		return nil, fmt.Errorf("%w: %d values for region %s of %d pixels",
			ErrInvalidRegion, len(values), largest, largest.NumberOfPixels())
	}
	img := New[T](largest)
	copy(img.pixels, values)
	return img, nil
}

// Dimension returns the number of axes.
func (img *Image[T]) Dimension() int { return img.geometry.Largest.Dimension() }

// Geometry returns a copy of the image geometry.
func (img *Image[T]) Geometry() Geometry {
	return Geometry{
		Largest: img.geometry.Largest.Clone(),
		Spacing: slices.Clone(img.geometry.Spacing),
		Origin:  slices.Clone(img.geometry.Origin),
	}
}

// SetSpacing replaces the physical pixel spacing.
func (img *Image[T]) SetSpacing(spacing ...float64) {
	img.geometry.Spacing = slices.Clone(spacing)
}

// SetOrigin replaces the physical origin.
func (img *Image[T]) SetOrigin(origin ...float64) {
	img.geometry.Origin = slices.Clone(origin)
}

// LargestPossibleRegion returns the full extent of the image.
func (img *Image[T]) LargestPossibleRegion() Region { return img.geometry.Largest.Clone() }

// BufferedRegion returns the region held in memory.
func (img *Image[T]) BufferedRegion() Region { return img.buffered.Clone() }

// RequestedRegion returns the region a consumer last asked for.
func (img *Image[T]) RequestedRegion() Region { return img.requested.Clone() }

// SetRequestedRegion records the region a consumer wants.
func (img *Image[T]) SetRequestedRegion(r Region) { img.requested = r.Clone() }

// offset maps idx to its position in pixels. idx must be buffered.
func (img *Image[T]) offset(idx Index) int {
	off := 0
	for d, v := range idx {
		off += (v - img.buffered.Index[d]) * img.strides[d]
	}
	return off
}

// Strides returns the memory step for a unit move along each axis.
func (img *Image[T]) Strides() []int { return slices.Clone(img.strides) }

// Offset returns the position of idx in Pixels. idx must be buffered.
func (img *Image[T]) Offset(idx Index) int { return img.offset(idx) }

// At returns the pixel at idx. It panics if idx is not buffered.
func (img *Image[T]) At(idx Index) T {
	if !img.buffered.Contains(idx) {
		panic(fmt.Sprintf("ndimage: index %v outside buffered region %s", idx, img.buffered))
	}
	return img.pixels[img.offset(idx)]
}

// Set writes the pixel at idx. It panics if idx is not buffered.
func (img *Image[T]) Set(idx Index, v T) {
	if !img.buffered.Contains(idx) {
		panic(fmt.Sprintf("ndimage: index %v outside buffered region %s", idx, img.buffered))
	}
	img.pixels[img.offset(idx)] = v
}

// Fill sets every buffered pixel to v.
func (img *Image[T]) Fill(v T) {
	for i := range img.pixels {
		img.pixels[i] = v
	}
}

// Pixels exposes the buffered pixels in memory order. Writes through the
// returned slice modify the image.
func (img *Image[T]) Pixels() []T { return img.pixels }

// Clone returns a deep copy of the image.
func (img *Image[T]) Clone() *Image[T] {
	out := &Image[T]{
		geometry:  img.Geometry(),
		buffered:  img.buffered.Clone(),
		requested: img.requested.Clone(),
		strides:   slices.Clone(img.strides),
		pixels:    slices.Clone(img.pixels),
	}
	return out
}

// Equal reports whether both images buffer the same region with identical
// pixel values.
func (img *Image[T]) Equal(other *Image[T]) bool {
	if !img.buffered.Equal(other.buffered) {
		return false
	}
	return slices.Equal(img.pixels, other.pixels)
}

// Extract copies the pixels of region into a new image that buffers exactly
// region and shares this image's geometry.
func (img *Image[T]) Extract(region Region) (*Image[T], error) {
	if !region.IsInside(img.buffered) {
		return nil, fmt.Errorf("%w: region %s not buffered (buffered %s)", ErrInvalidRegion, region, img.buffered)
	}
	out, err := NewBuffered[T](img.geometry, region)
	if err != nil {
		return nil, err
	}
	region.ForEach(func(idx Index) {
		out.pixels[out.offset(idx)] = img.pixels[img.offset(idx)]
	})
	return out, nil
}
