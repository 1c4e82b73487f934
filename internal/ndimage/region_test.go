package ndimage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegion(t *testing.T) {
	r, err := NewRegion(Index{1, 2}, Size{3, 4})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Dimension())
	assert.Equal(t, 12, r.NumberOfPixels())
	assert.Equal(t, 4, r.Upper(0))
	assert.Equal(t, 6, r.Upper(1))

	_, err = NewRegion(Index{0}, Size{1, 1})
	require.True(t, errors.Is(err, ErrInvalidRegion))

	_, err = NewRegion(Index{0, 0}, Size{1, -1})
	require.ErrorIs(t, err, ErrInvalidRegion)
}

func TestRegion_Contains(t *testing.T) {
	r := RegionOfSize(4, 3)
	tests := []struct {
		name string
		idx  Index
		want bool
	}{
		{"origin", Index{0, 0}, true},
		{"last", Index{3, 2}, true},
		{"past x", Index{4, 0}, false},
		{"negative y", Index{0, -1}, false},
		{"wrong dimension", Index{0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.idx))
		})
	}
}

func TestRegion_PadAndCrop(t *testing.T) {
	largest := RegionOfSize(10, 10)
	r, err := NewRegion(Index{0, 4}, Size{3, 2})
	require.NoError(t, err)

	padded := r.PadByRadius(1)
	assert.Equal(t, Index{-1, 3}, padded.Index)
	assert.Equal(t, Size{5, 4}, padded.Size)

	cropped, ok := padded.Crop(largest)
	require.True(t, ok)
	assert.Equal(t, Index{0, 3}, cropped.Index)
	assert.Equal(t, Size{4, 4}, cropped.Size)
	assert.True(t, cropped.IsInside(largest))

	// padding must not alias the original
	assert.Equal(t, Index{0, 4}, r.Index)

	outside, _ := NewRegion(Index{20, 20}, Size{2, 2})
	_, ok = outside.Crop(largest)
	assert.False(t, ok)
}

func TestRegion_IsInside(t *testing.T) {
	outer := RegionOfSize(5, 5)
	inner, _ := NewRegion(Index{1, 1}, Size{4, 4})
	over, _ := NewRegion(Index{1, 1}, Size{5, 4})

	assert.True(t, inner.IsInside(outer))
	assert.False(t, over.IsInside(outer))
	assert.True(t, outer.IsInside(outer))
	assert.False(t, RegionOfSize(5).IsInside(outer))
}

func TestRegion_Split(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		n      int
		want   int
	}{
		{"even rows", RegionOfSize(8, 8), 4, 4},
		{"uneven rows", RegionOfSize(3, 7), 3, 3},
		{"more workers than rows", RegionOfSize(16, 2), 8, 2},
		{"one dimensional", RegionOfSize(5), 2, 2},
		{"flat last axis", RegionOfSize(4, 6, 1), 3, 3},
		{"zero workers", RegionOfSize(4, 4), 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slabs := tt.region.Split(tt.n)
			require.Len(t, slabs, tt.want)

			seen := make(map[[3]int]int)
			total := 0
			for _, s := range slabs {
				require.True(t, s.IsInside(tt.region), "slab %s escapes %s", s, tt.region)
				total += s.NumberOfPixels()
				s.ForEach(func(idx Index) {
					var key [3]int
					copy(key[:], idx)
					seen[key]++
				})
			}
			assert.Equal(t, tt.region.NumberOfPixels(), total)
			assert.Len(t, seen, tt.region.NumberOfPixels())
			for k, c := range seen {
				assert.Equal(t, 1, c, "index %v covered %d times", k, c)
			}
		})
	}
}

func TestRegion_ForEachOrder(t *testing.T) {
	r, _ := NewRegion(Index{1, 5}, Size{2, 2})
	var got []Index
	r.ForEach(func(idx Index) {
		got = append(got, append(Index(nil), idx...))
	})
	assert.Equal(t, []Index{{1, 5}, {2, 5}, {1, 6}, {2, 6}}, got)

	calls := 0
	RegionOfSize(0, 3).ForEach(func(Index) { calls++ })
	assert.Zero(t, calls)
}

func TestRegion_String(t *testing.T) {
	r, _ := NewRegion(Index{0, 2}, Size{3, 1})
	assert.Equal(t, "[0,3)x[2,3)", r.String())
}
