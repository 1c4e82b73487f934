// Package morphology implements geodesic grayscale erosion on N-dimensional
// images.
//
// Geodesic erosion operates on a marker image and a mask image. The marker is
// eroded with the elementary structuring element (radius one, face or full
// connectivity) and the result is raised back to the mask by a pixelwise
// maximum. Run once, this is a single geodesic erosion step; iterated until
// nothing changes, it is reconstruction by erosion.
//
// The marker must be pixelwise greater than or equal to the mask. This is a
// caller obligation; Options.CheckPreconditions turns on an explicit check.
//
// # Components
//
//   - Neighborhood: the offsets of the structuring element
//   - ErodeRegion: one erosion step over a region
//   - Executor: runs a region function over disjoint slabs in parallel
//   - NegotiateRegions: how much input a requested output region needs
//   - Filter: negotiate-then-compute entry point and the convergence loop
//   - FillHoles: hole filling built on reconstruction by erosion
//
// # Borders
//
// Neighbors outside the largest possible region are skipped when taking the
// minimum, so the pixel's own value stands in for them.
//
// # Concurrency
//
// Each pass splits the output region into slabs along the slowest-varying
// axis and erodes them on separate goroutines. Passes are strictly
// sequential: pass k+1 reads the full output of pass k. Results do not
// depend on the worker count.
//
// # Example
//
//	opts := morphology.DefaultOptions()
//	res, err := morphology.GeodesicErode(ctx, marker, mask, opts)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.IterationsUsed)
package morphology
