// Package ndimage provides the N-dimensional image container used by the
// morphology engine.
//
// An Image is a grid of scalar pixels addressed by integer Index values. Three
// regions describe it:
//   - the largest possible region: the full extent of the image
//   - the buffered region: what is actually held in memory
//   - the requested region: what a downstream consumer asked for
//
// # Memory Layout
//
// Pixels are stored in a flat slice with axis 0 varying fastest, so in 2-D
// axis 0 is X (columns) and axis 1 is Y (rows). Region.Split cuts along the
// last axis, which keeps every slab contiguous in memory.
//
// # Thread Safety
//
// Images are not synchronized. Concurrent readers are safe; concurrent writers
// must touch disjoint regions.
package ndimage
