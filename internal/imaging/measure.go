package imaging

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

// Stats summarizes pixel values over a region.
type Stats struct {
	Pixels int     `json:"pixels"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Summarize computes statistics of grid over region, which must be buffered.
func Summarize(grid *Grid, region ndimage.Region) (*Stats, error) {
	if !region.IsInside(grid.BufferedRegion()) {
		return nil, fmt.Errorf("region %s outside buffered region %s", region, grid.BufferedRegion())
	}
	values := make([]float64, 0, region.NumberOfPixels())
	region.ForEach(func(idx ndimage.Index) {
		values = append(values, float64(grid.At(idx)))
	})
	if len(values) == 0 {
		return &Stats{}, nil
	}
	stats := &Stats{
		Pixels: len(values),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Mean:   math.Round(stat.Mean(values, nil)*100) / 100,
	}
	if len(values) > 1 {
		stats.StdDev = math.Round(stat.StdDev(values, nil)*100) / 100
	}
	return stats, nil
}

// DiffResult describes how two grids differ over a region.
type DiffResult struct {
	PixelsChanged   int     `json:"pixels_changed"`
	TotalPixels     int     `json:"total_pixels"`
	FractionChanged float64 `json:"fraction_changed"`
	MeanAbsDiff     float64 `json:"mean_abs_diff"`
	MaxAbsDiff      float64 `json:"max_abs_diff"`
}

// Compare counts the pixels of region where before and after differ and
// measures the size of the change. Both grids must buffer region.
func Compare(before, after *Grid, region ndimage.Region) (*DiffResult, error) {
	if !region.IsInside(before.BufferedRegion()) || !region.IsInside(after.BufferedRegion()) {
		return nil, fmt.Errorf("region %s not buffered by both grids", region)
	}
	diffs := make([]float64, 0, region.NumberOfPixels())
	changed := 0
	region.ForEach(func(idx ndimage.Index) {
		d := absDiff(before.At(idx), after.At(idx))
		if d != 0 {
			changed++
		}
		diffs = append(diffs, float64(d))
	})

	res := &DiffResult{PixelsChanged: changed, TotalPixels: len(diffs)}
	if len(diffs) == 0 {
		return res, nil
	}
	res.FractionChanged = math.Round(float64(changed)/float64(len(diffs))*1000) / 1000
	res.MeanAbsDiff = math.Round(stat.Mean(diffs, nil)*100) / 100
	res.MaxAbsDiff = floats.Max(diffs)
	return res, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
