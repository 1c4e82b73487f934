// Package imaging bridges image files and the 2-D grids the morphology
// engine operates on.
//
// It decodes PNG, JPEG and GIF files, reduces them to one byte per pixel
// (luma, CIE lightness, or a thresholded binary mask), and renders grids back
// to PNG for tool responses. It also measures grids: summary statistics over a
// region and the difference between two grids.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner:
//   - X: grid axis 0, horizontal position (0 = leftmost pixel)
//   - Y: grid axis 1, vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// A grid that buffers only part of an image keeps the image's coordinates, so
// a crop of a result can be addressed with the same Rect as the original.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Grids returned from the cache
// are shared and must not be modified; the morphology engine only reads its
// inputs and always allocates its output.
//
// # Performance Considerations
//
// For repeated operations on the same image, use ImageCache to avoid redundant
// disk reads and conversions. Consider using Evict() or Clear() to manage
// memory for long-running processes.
package imaging
