package morphology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

func region(t *testing.T, index ndimage.Index, size ndimage.Size) ndimage.Region {
	t.Helper()
	r, err := ndimage.NewRegion(index, size)
	require.NoError(t, err)
	return r
}

func TestNegotiateRegions_SingleIteration(t *testing.T) {
	largest := ndimage.RegionOfSize(10, 10)
	tests := []struct {
		name       string
		requested  ndimage.Region
		wantMarker ndimage.Region
	}{
		{
			"interior",
			region(t, ndimage.Index{2, 2}, ndimage.Size{3, 3}),
			region(t, ndimage.Index{1, 1}, ndimage.Size{5, 5}),
		},
		{
			"corner clipped",
			region(t, ndimage.Index{0, 0}, ndimage.Size{2, 2}),
			region(t, ndimage.Index{0, 0}, ndimage.Size{3, 3}),
		},
		{
			"far edge clipped",
			region(t, ndimage.Index{8, 0}, ndimage.Size{2, 10}),
			region(t, ndimage.Index{7, 0}, ndimage.Size{3, 10}),
		},
		{
			"whole image",
			largest,
			largest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NegotiateRegions(tt.requested, largest, true)
			require.NoError(t, err)
			assert.True(t, got.Marker.Equal(tt.wantMarker), "marker: got %s, want %s", got.Marker, tt.wantMarker)
			assert.True(t, got.Mask.Equal(tt.requested), "mask: got %s, want %s", got.Mask, tt.requested)
			assert.True(t, got.Output.Equal(tt.requested), "output: got %s, want %s", got.Output, tt.requested)
		})
	}
}

func TestNegotiateRegions_Convergence(t *testing.T) {
	largest := ndimage.RegionOfSize(10, 8)
	requested := region(t, ndimage.Index{3, 3}, ndimage.Size{2, 2})

	got, err := NegotiateRegions(requested, largest, false)
	require.NoError(t, err)
	assert.True(t, got.Marker.Equal(largest))
	assert.True(t, got.Mask.Equal(largest))
	assert.True(t, got.Output.Equal(largest), "output must be enlarged to the whole image")

	// requested must not be modified in place
	assert.Equal(t, ndimage.Index{3, 3}, requested.Index)
}

func TestNegotiateRegions_OutsideImage(t *testing.T) {
	largest := ndimage.RegionOfSize(4, 4)

	_, err := NegotiateRegions(region(t, ndimage.Index{3, 3}, ndimage.Size{2, 2}), largest, true)
	require.ErrorIs(t, err, ErrRegionOutsideImage)

	_, err = NegotiateRegions(ndimage.RegionOfSize(4), largest, false)
	require.ErrorIs(t, err, ErrRegionOutsideImage)
}

func TestEnlargeOutputRequestedRegion(t *testing.T) {
	largest := ndimage.RegionOfSize(6)
	requested := region(t, ndimage.Index{2}, ndimage.Size{2})

	assert.True(t, EnlargeOutputRequestedRegion(requested, largest, true).Equal(requested))
	assert.True(t, EnlargeOutputRequestedRegion(requested, largest, false).Equal(largest))
}
