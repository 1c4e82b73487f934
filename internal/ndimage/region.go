package ndimage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRegion is returned when a region or image is constructed with
// inconsistent dimensions, negative sizes, or a buffer that does not fit.
var ErrInvalidRegion = errors.New("ndimage: invalid region")

// Index is an N-dimensional integer pixel coordinate.
type Index []int

// Size is the extent of a region along each axis.
type Size []int

// Offset is a relative displacement between two indices.
type Offset []int

// Region is an axis-aligned box of pixel coordinates.
//
// Index is the first (inclusive) coordinate and Size the extent along each
// axis, so axis d covers [Index[d], Index[d]+Size[d]). Axis 0 varies fastest
// in memory; the last axis is the slowest-varying one.
type Region struct {
	Index Index `json:"index"`
	Size  Size  `json:"size"`
}

// NewRegion builds a region and validates that index and size agree in
// dimension and that no extent is negative.
func NewRegion(index Index, size Size) (Region, error) {
	if len(index) != len(size) {
		return Region{}, fmt.Errorf("%w: index has %d dimensions, size has %d", ErrInvalidRegion, len(index), len(size))
	}
	for d, s := range size {
		if s < 0 {
			return Region{}, fmt.Errorf("%w: negative size %d on axis %d", ErrInvalidRegion, s, d)
		}
	}
	return Region{Index: append(Index(nil), index...), Size: append(Size(nil), size...)}, nil
}

// RegionOfSize returns a region anchored at the origin with the given extents.
func RegionOfSize(size ...int) Region {
	return Region{Index: make(Index, len(size)), Size: append(Size(nil), size...)}
}

// Dimension returns the number of axes.
func (r Region) Dimension() int {
	return len(r.Size)
}

// NumberOfPixels returns the number of coordinates inside the region.
func (r Region) NumberOfPixels() int {
	if len(r.Size) == 0 {
		return 0
	}
	n := 1
	for _, s := range r.Size {
		n *= s
	}
	return n
}

// Empty reports whether the region holds no pixels.
func (r Region) Empty() bool {
	return r.NumberOfPixels() == 0
}

// Upper returns the exclusive upper bound along axis d.
func (r Region) Upper(d int) int {
	return r.Index[d] + r.Size[d]
}

// Contains reports whether idx lies inside the region.
func (r Region) Contains(idx Index) bool {
	if len(idx) != len(r.Index) {
		return false
	}
	for d, v := range idx {
		if v < r.Index[d] || v >= r.Upper(d) {
			return false
		}
	}
	return true
}

// IsInside reports whether r is entirely contained in other.
// An empty region is inside any region of the same dimension.
func (r Region) IsInside(other Region) bool {
	if r.Dimension() != other.Dimension() {
		return false
	}
	if r.Empty() {
		return true
	}
	for d := range r.Size {
		if r.Index[d] < other.Index[d] || r.Upper(d) > other.Upper(d) {
			return false
		}
	}
	return true
}

// Equal reports whether both regions describe the same box.
func (r Region) Equal(other Region) bool {
	if r.Dimension() != other.Dimension() {
		return false
	}
	for d := range r.Size {
		if r.Index[d] != other.Index[d] || r.Size[d] != other.Size[d] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of r.
func (r Region) Clone() Region {
	return Region{Index: append(Index(nil), r.Index...), Size: append(Size(nil), r.Size...)}
}

// PadByRadius grows the region by radius pixels on every side.
func (r Region) PadByRadius(radius int) Region {
	out := r.Clone()
	for d := range out.Size {
		out.Index[d] -= radius
		out.Size[d] += 2 * radius
	}
	return out
}

// Crop intersects r with bounds. The boolean is false when the intersection
// is empty, in which case the returned region is r unchanged.
func (r Region) Crop(bounds Region) (Region, bool) {
	if r.Dimension() != bounds.Dimension() {
		return r, false
	}
	out := r.Clone()
	for d := range out.Size {
		lo := max(r.Index[d], bounds.Index[d])
		hi := min(r.Upper(d), bounds.Upper(d))
		if hi <= lo {
			return r, false
		}
		out.Index[d] = lo
		out.Size[d] = hi - lo
	}
	return out, true
}

// Split partitions the region into at most n contiguous slabs along the
// slowest-varying axis that has more than one pixel. The slabs are disjoint,
// their union is exactly r, and their thicknesses differ by at most one.
func (r Region) Split(n int) []Region {
	if n < 1 {
		n = 1
	}
	if r.Empty() {
		return nil
	}
	axis := r.Dimension() - 1
	for axis > 0 && r.Size[axis] == 1 {
		axis--
	}
	extent := r.Size[axis]
	if n > extent {
		n = extent
	}

	slabs := make([]Region, 0, n)
	base, extra := extent/n, extent%n
	start := r.Index[axis]
	for i := 0; i < n; i++ {
		thickness := base
		if i < extra {
			thickness++
		}
		slab := r.Clone()
		slab.Index[axis] = start
		slab.Size[axis] = thickness
		slabs = append(slabs, slab)
		start += thickness
	}
	return slabs
}

// ForEach calls fn for every coordinate in the region in memory order
// (axis 0 fastest). The Index passed to fn is reused between calls; copy it
// if it must outlive the callback.
func (r Region) ForEach(fn func(idx Index)) {
	if r.Empty() {
		return
	}
	idx := append(Index(nil), r.Index...)
	for {
		fn(idx)
		d := 0
		for ; d < len(idx); d++ {
			idx[d]++
			if idx[d] < r.Upper(d) {
				break
			}
			idx[d] = r.Index[d]
		}
		if d == len(idx) {
			return
		}
	}
}

// String formats the region as "[i0,i1)x[j0,j1)...".
func (r Region) String() string {
	var b strings.Builder
	for d := range r.Size {
		if d > 0 {
			b.WriteByte('x')
		}
		fmt.Fprintf(&b, "[%d,%d)", r.Index[d], r.Upper(d))
	}
	return b.String()
}
