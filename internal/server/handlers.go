package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/morphology-mcp/internal/imaging"
	"github.com/ironsheep/morphology-mcp/internal/morphology"
	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

// errInvalidArguments marks tool failures caused by the caller's arguments
// rather than by the images or the engine.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "morph_geodesic_erode").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument errors return code -32602; other tool failures return -32000.
// Every call gets its own id so the engine's log lines can be attributed.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	logger := s.logger.With("call", uuid.NewString())
	ctx = morphology.WithLogger(ctx, logger)

	start := time.Now()
	logger.Debug("tool call", "tool", params.Name)
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		logger.Error("tool failed", "tool", params.Name, "err", err)
		if errors.Is(err, errInvalidArguments) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	logger.Debug("tool done", "tool", params.Name, "elapsed", time.Since(start))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies configured defaults for optional parameters
//  3. Loads grids from the cache
//  4. Calls the imaging or morphology function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Grid Inspection
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_statistics":
		return s.handleImageStatistics(args)

	// Morphology
	case "morph_negotiate_regions":
		return s.handleMorphNegotiateRegions(args)
	case "morph_geodesic_erode":
		return s.handleMorphGeodesicErode(ctx, args)
	case "morph_fill_holes":
		return s.handleMorphFillHoles(ctx, args)

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArguments, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments into v.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing arguments", errInvalidArguments)
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

func requirePath(name, path string) error {
	if path == "" {
		return fmt.Errorf("%w: %s is required", errInvalidArguments, name)
	}
	return nil
}

// resolveRegion picks the requested region of a width×height grid: an
// explicit rectangle wins over a named region, and neither means the whole
// grid.
func resolveRegion(rect *imaging.Rect, name string, width, height int) (ndimage.Region, error) {
	if rect != nil {
		region, err := rect.Region()
		if err != nil {
			return ndimage.Region{}, fmt.Errorf("%w: %v", errInvalidArguments, err)
		}
		return region, nil
	}
	region, err := imaging.NamedRegion(name, width, height)
	if err != nil {
		return ndimage.Region{}, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return region, nil
}

func gridSize(g *imaging.Grid) (width, height int) {
	size := g.LargestPossibleRegion().Size
	return size[0], size[1]
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Grid Inspection Handlers ===

type gridArgs struct {
	Path       string        `json:"path"`
	Channel    string        `json:"channel"`
	Region     *imaging.Rect `json:"region"`
	RegionName string        `json:"region_name"`
}

// load returns the grid for a.Path and the requested region of it.
func (s *Server) load(a gridArgs) (*imaging.Grid, ndimage.Region, error) {
	if err := requirePath("path", a.Path); err != nil {
		return nil, ndimage.Region{}, err
	}
	channel, err := imaging.ParseChannel(a.Channel)
	if err != nil {
		return nil, ndimage.Region{}, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	grid, err := s.cache.LoadGrid(a.Path, channel)
	if err != nil {
		return nil, ndimage.Region{}, err
	}
	w, h := gridSize(grid)
	region, err := resolveRegion(a.Region, a.RegionName, w, h)
	if err != nil {
		return nil, ndimage.Region{}, err
	}
	return grid, region, nil
}

type imageCropArgs struct {
	gridArgs
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	grid, region, err := s.load(a.gridArgs)
	if err != nil {
		return nil, err
	}
	return imaging.CropRegion(grid, region, a.Scale)
}

type statisticsResult struct {
	Region imaging.Rect   `json:"region"`
	Stats  *imaging.Stats `json:"stats"`
}

func (s *Server) handleImageStatistics(args json.RawMessage) (interface{}, error) {
	var a gridArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	grid, region, err := s.load(a)
	if err != nil {
		return nil, err
	}
	stats, err := imaging.Summarize(grid, region)
	if err != nil {
		return nil, err
	}
	return &statisticsResult{Region: imaging.RectOf(region), Stats: stats}, nil
}

// === Morphology Handlers ===

// regionsResult reports negotiated regions in tool coordinates.
type regionsResult struct {
	Marker       imaging.Rect `json:"marker"`
	Mask         imaging.Rect `json:"mask"`
	Output       imaging.Rect `json:"output"`
	MarkerPixels int          `json:"marker_pixels"`
	OutputPixels int          `json:"output_pixels"`
}

func newRegionsResult(r morphology.Regions) regionsResult {
	return regionsResult{
		Marker:       imaging.RectOf(r.Marker),
		Mask:         imaging.RectOf(r.Mask),
		Output:       imaging.RectOf(r.Output),
		MarkerPixels: r.Marker.NumberOfPixels(),
		OutputPixels: r.Output.NumberOfPixels(),
	}
}

type morphNegotiateArgs struct {
	Path            string        `json:"path"`
	Width           int           `json:"width"`
	Height          int           `json:"height"`
	Region          *imaging.Rect `json:"region"`
	RegionName      string        `json:"region_name"`
	RunOneIteration bool          `json:"run_one_iteration"`
}

func (s *Server) handleMorphNegotiateRegions(args json.RawMessage) (interface{}, error) {
	var a morphNegotiateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	width, height := a.Width, a.Height
	if a.Path != "" {
		dims, err := imaging.GetDimensions(s.cache, a.Path)
		if err != nil {
			return nil, err
		}
		width, height = dims.Width, dims.Height
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: need a path or a positive width and height", errInvalidArguments)
	}
	requested, err := resolveRegion(a.Region, a.RegionName, width, height)
	if err != nil {
		return nil, err
	}
	regions, err := morphology.NegotiateRegions(requested, ndimage.RegionOfSize(width, height), a.RunOneIteration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return newRegionsResult(regions), nil
}

type morphErodeArgs struct {
	MarkerPath      string        `json:"marker_path"`
	MaskPath        string        `json:"mask_path"`
	Channel         string        `json:"channel"`
	Region          *imaging.Rect `json:"region"`
	RegionName      string        `json:"region_name"`
	RunOneIteration bool          `json:"run_one_iteration"`
	FullyConnected  *bool         `json:"fully_connected"`
	MaxIterations   *int          `json:"max_iterations"`
	CheckMarker     *bool         `json:"check_marker"`
	Scale           float64       `json:"scale"`
}

// morphResult is returned by the morphology tools.
type morphResult struct {
	IterationsUsed int                  `json:"iterations_used"`
	Converged      bool                 `json:"converged"`
	LastChanged    int                  `json:"last_changed"`
	Connectivity   string               `json:"connectivity"`
	Regions        regionsResult        `json:"regions"`
	Requested      imaging.Rect         `json:"requested"`
	Stats          *imaging.Stats       `json:"stats"`
	Diff           *imaging.DiffResult  `json:"diff"`
	Image          *imaging.ImageResult `json:"image"`
}

// options applies per-call overrides to the configured engine options.
func (s *Server) options(fullyConnected *bool, maxIterations *int, checkMarker *bool) (morphology.Options, error) {
	opts := s.cfg.Processing.Options()
	if fullyConnected != nil {
		opts.Connectivity = morphology.FaceConnected
		if *fullyConnected {
			opts.Connectivity = morphology.FullyConnected
		}
	}
	if maxIterations != nil {
		if *maxIterations < 0 {
			return opts, fmt.Errorf("%w: max_iterations must be >= 0", errInvalidArguments)
		}
		opts.MaxIterations = *maxIterations
	}
	if checkMarker != nil {
		opts.CheckPreconditions = *checkMarker
	}
	return opts, nil
}

func (s *Server) handleMorphGeodesicErode(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a morphErodeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("marker_path", a.MarkerPath); err != nil {
		return nil, err
	}
	if err := requirePath("mask_path", a.MaskPath); err != nil {
		return nil, err
	}
	opts, err := s.options(a.FullyConnected, a.MaxIterations, a.CheckMarker)
	if err != nil {
		return nil, err
	}
	opts.RunOneIteration = a.RunOneIteration

	channel, err := imaging.ParseChannel(a.Channel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	marker, err := s.cache.LoadGrid(a.MarkerPath, channel)
	if err != nil {
		return nil, fmt.Errorf("marker: %w", err)
	}
	mask, err := s.cache.LoadGrid(a.MaskPath, channel)
	if err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}

	w, h := gridSize(marker)
	requested, err := resolveRegion(a.Region, a.RegionName, w, h)
	if err != nil {
		return nil, err
	}

	filter := morphology.NewFilter[uint8](opts)
	regions, err := filter.Negotiate(requested, marker.LargestPossibleRegion())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}

	// Hand the engine only what negotiation asked for.
	markerIn, err := marker.Extract(regions.Marker)
	if err != nil {
		return nil, fmt.Errorf("marker: %w", err)
	}
	maskIn, err := mask.Extract(regions.Mask)
	if err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}

	result, err := filter.Compute(ctx, markerIn, maskIn, regions)
	if err != nil {
		return nil, err
	}
	return s.report(result, marker, requested, opts, a.Scale)
}

type morphFillHolesArgs struct {
	gridArgs
	Threshold      *int    `json:"threshold"`
	FullyConnected *bool   `json:"fully_connected"`
	MaxIterations  *int    `json:"max_iterations"`
	Scale          float64 `json:"scale"`
}

func (s *Server) handleMorphFillHoles(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a morphFillHolesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.options(a.FullyConnected, a.MaxIterations, nil)
	if err != nil {
		return nil, err
	}

	var grid *imaging.Grid
	var requested ndimage.Region
	if a.Threshold != nil {
		if *a.Threshold < 0 || *a.Threshold > 255 {
			return nil, fmt.Errorf("%w: threshold must be within 0-255", errInvalidArguments)
		}
		if err := requirePath("path", a.Path); err != nil {
			return nil, err
		}
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		grid, err = imaging.Binarize(img, uint8(*a.Threshold))
		if err != nil {
			return nil, err
		}
		w, h := gridSize(grid)
		if requested, err = resolveRegion(a.Region, a.RegionName, w, h); err != nil {
			return nil, err
		}
	} else {
		if grid, requested, err = s.load(a.gridArgs); err != nil {
			return nil, err
		}
	}
	if !requested.IsInside(grid.LargestPossibleRegion()) {
		return nil, fmt.Errorf("%w: region %s outside image %s", errInvalidArguments, requested, grid.LargestPossibleRegion())
	}

	result, err := morphology.FillHoles(ctx, grid, opts)
	if err != nil {
		return nil, err
	}
	return s.report(result, grid, requested, opts, a.Scale)
}

// report summarizes result over requested and renders that part of the
// output. before is the grid the output is compared against.
func (s *Server) report(result *morphology.Result[uint8], before *imaging.Grid, requested ndimage.Region, opts morphology.Options, scale float64) (*morphResult, error) {
	stats, err := imaging.Summarize(result.Output, requested)
	if err != nil {
		return nil, err
	}
	diff, err := imaging.Compare(before, result.Output, requested)
	if err != nil {
		return nil, err
	}
	img, err := imaging.CropRegion(result.Output, requested, scale)
	if err != nil {
		return nil, err
	}
	return &morphResult{
		IterationsUsed: result.IterationsUsed,
		Converged:      result.Converged(),
		LastChanged:    result.Changed,
		Connectivity:   opts.Connectivity.String(),
		Regions:        newRegionsResult(result.Regions),
		Requested:      imaging.RectOf(requested),
		Stats:          stats,
		Diff:           diff,
		Image:          img,
	}, nil
}
