package morphology

import "github.com/ironsheep/morphology-mcp/internal/ndimage"

// Neighborhood returns the offsets of the elementary structuring element in
// dim dimensions. The zero offset is never included.
//
// Face connectivity yields 2·dim offsets ordered axis by axis, negative step
// first. Full connectivity yields every offset in {-1,0,1}^dim except zero,
// in memory order (axis 0 fastest).
func Neighborhood(dim int, conn Connectivity) []ndimage.Offset {
	if dim <= 0 {
		return nil
	}
	if conn != FullyConnected {
		offsets := make([]ndimage.Offset, 0, 2*dim)
		for d := 0; d < dim; d++ {
			for _, step := range [2]int{-1, 1} {
				o := make(ndimage.Offset, dim)
				o[d] = step
				offsets = append(offsets, o)
			}
		}
		return offsets
	}

	total := 1
	for d := 0; d < dim; d++ {
		total *= 3
	}
	offsets := make([]ndimage.Offset, 0, total-1)
	cube := ndimage.Region{Index: make(ndimage.Index, dim), Size: make(ndimage.Size, dim)}
	for d := 0; d < dim; d++ {
		cube.Index[d] = -1
		cube.Size[d] = 3
	}
	cube.ForEach(func(idx ndimage.Index) {
		zero := true
		for _, v := range idx {
			if v != 0 {
				zero = false
				break
			}
		}
		if !zero {
			offsets = append(offsets, append(ndimage.Offset(nil), idx...))
		}
	})
	return offsets
}
