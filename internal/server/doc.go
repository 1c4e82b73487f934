// Package server implements the MCP (Model Context Protocol) server for
// morphological image reconstruction.
//
// This package provides a JSON-RPC 2.0 server that exposes geodesic erosion
// and related grayscale morphology through the MCP protocol, so MCP clients
// can run reconstruction by erosion on image files and inspect the result.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Grid Inspection:
//   - image_crop: Render a region of the single-channel grid as PNG
//   - image_statistics: Min, max, mean and standard deviation over a region
//
// Morphology:
//   - morph_negotiate_regions: Input and output regions for a requested region
//   - morph_geodesic_erode: One step or full reconstruction by erosion
//   - morph_fill_holes: Fill minima not connected to the image border
//
// # Image Caching
//
// Decoded images and the grids derived from them are cached by path for the
// lifetime of the server process. The engine never writes its inputs, so
// cached grids are shared between calls.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses:
//   - -32602: invalid arguments (missing path, bad region, unknown tool)
//   - -32000: tool execution failure (unreadable image, marker below mask,
//     size mismatch, iteration cap reached, cancellation)
//   - -32700: a request line that is not JSON
//
// The data field carries the Go error string.
//
// # Usage
//
// The server is typically started by the morphology-mcp serve command:
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
