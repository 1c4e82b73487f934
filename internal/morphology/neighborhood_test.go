package morphology

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeighborhood_Counts(t *testing.T) {
	tests := []struct {
		dim  int
		conn Connectivity
		want int
	}{
		{1, FaceConnected, 2},
		{1, FullyConnected, 2},
		{2, FaceConnected, 4},
		{2, FullyConnected, 8},
		{3, FaceConnected, 6},
		{3, FullyConnected, 26},
		{4, FullyConnected, 80},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dd_%s", tt.dim, tt.conn), func(t *testing.T) {
			offsets := Neighborhood(tt.dim, tt.conn)
			require.Len(t, offsets, tt.want)

			seen := make(map[string]bool)
			for _, o := range offsets {
				require.Len(t, o, tt.dim)
				nonZero := 0
				for _, v := range o {
					require.True(t, v >= -1 && v <= 1, "offset %v leaves the unit cube", o)
					if v != 0 {
						nonZero++
					}
				}
				require.NotZero(t, nonZero, "zero offset included")
				if tt.conn == FaceConnected {
					assert.Equal(t, 1, nonZero, "face offset %v moves along several axes", o)
				}
				key := fmt.Sprint(o)
				require.False(t, seen[key], "duplicate offset %v", o)
				seen[key] = true
			}
		})
	}
}

func TestNeighborhood_FaceOrder(t *testing.T) {
	offsets := Neighborhood(2, FaceConnected)
	assert.Equal(t, "[[-1 0] [1 0] [0 -1] [0 1]]", fmt.Sprint(offsets))
}

func TestNeighborhood_ZeroDimension(t *testing.T) {
	assert.Nil(t, Neighborhood(0, FaceConnected))
	assert.Nil(t, Neighborhood(-1, FullyConnected))
}

func TestParseConnectivity(t *testing.T) {
	c, err := ParseConnectivity("full")
	require.NoError(t, err)
	assert.Equal(t, FullyConnected, c)

	c, err = ParseConnectivity("")
	require.NoError(t, err)
	assert.Equal(t, FaceConnected, c)

	_, err = ParseConnectivity("diagonal")
	assert.Error(t, err)

	assert.Equal(t, "face", FaceConnected.String())
	assert.Equal(t, "Connectivity(7)", Connectivity(7).String())
}
