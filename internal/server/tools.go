package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// regionNames lists the values accepted by region_name.
var regionNames = []string{
	"full", "top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func boolProp(description string, def bool) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": description,
		"default":     def,
	}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func rectProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Requested region; (x1,y1) inclusive, (x2,y2) exclusive. Takes precedence over region_name.",
		"properties": map[string]interface{}{
			"x1": intProp("Left edge X coordinate (0-based)"),
			"y1": intProp("Top edge Y coordinate (0-based)"),
			"x2": intProp("Right edge X coordinate (exclusive)"),
			"y2": intProp("Bottom edge Y coordinate (exclusive)"),
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func regionNameProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Named region of the image. Default full.",
		"enum":        regionNames,
		"default":     "full",
	}
}

func channelProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "How colors become one value per pixel: gray (luma) or lightness (CIE L*). Default gray.",
		"enum":        []string{"gray", "lightness"},
		"default":     "gray",
	}
}

func scaleProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor for the returned PNG (e.g., 4.0 to enlarge small images). Default 1.0",
		"default":     1.0,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Grid Inspection
		{
			Name:        "image_crop",
			Description: "Render a region of an image, reduced to one channel, as base64-encoded PNG. Shows exactly what the morphology tools see.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        stringProp("Absolute path to the image file"),
					"channel":     channelProp(),
					"region":      rectProp(),
					"region_name": regionNameProp(),
					"scale":       scaleProp(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_statistics",
			Description: "Report min, max, mean and standard deviation of pixel values over a region of an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        stringProp("Absolute path to the image file"),
					"channel":     channelProp(),
					"region":      rectProp(),
					"region_name": regionNameProp(),
				},
				"required": []string{"path"},
			},
		},

		// Morphology
		{
			Name: "morph_negotiate_regions",
			Description: "Report which marker and mask regions must be available to compute a requested output region, " +
				"and which output region will actually be produced. A single step needs a 1-pixel halo of marker; " +
				"running to convergence needs and produces the whole image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":              stringProp("Optional image file supplying width and height"),
					"width":             intProp("Image width, used when path is not given"),
					"height":            intProp("Image height, used when path is not given"),
					"region":            rectProp(),
					"region_name":       regionNameProp(),
					"run_one_iteration": boolProp("Negotiate for a single erosion step instead of convergence", false),
				},
			},
		},
		{
			Name: "morph_geodesic_erode",
			Description: "Geodesic erosion of a marker image under a mask image. By default iterates to convergence " +
				"(reconstruction by erosion); with run_one_iteration performs one step. The marker must be >= the mask " +
				"at every pixel. Returns iterations used, negotiated regions, statistics, a diff against the marker " +
				"and the output over the requested region as PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"marker_path":       stringProp("Absolute path to the marker image"),
					"mask_path":         stringProp("Absolute path to the mask image (same size as the marker)"),
					"channel":           channelProp(),
					"region":            rectProp(),
					"region_name":       regionNameProp(),
					"run_one_iteration": boolProp("Perform a single geodesic erosion step", false),
					"fully_connected":   boolProp("Use 8-connectivity instead of 4-connectivity. Defaults to the server configuration", false),
					"max_iterations":    intProp("Iteration cap for convergence; 0 means unlimited. Defaults to the server configuration"),
					"check_marker":      boolProp("Verify marker >= mask before computing. Defaults to the server configuration", false),
					"scale":             scaleProp(),
				},
				"required": []string{"marker_path", "mask_path"},
			},
		},
		{
			Name: "morph_fill_holes",
			Description: "Fill dark regions of an image that do not touch the image border (reconstruction by erosion " +
				"from a border marker). With threshold the image is first binarized: pixels at or above threshold become 255.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":            stringProp("Absolute path to the image file"),
					"channel":         channelProp(),
					"threshold":       intProp("Optional binarization level 0-255 applied before filling"),
					"region":          rectProp(),
					"region_name":     regionNameProp(),
					"fully_connected": boolProp("Use 8-connectivity instead of 4-connectivity. Defaults to the server configuration", false),
					"max_iterations":  intProp("Iteration cap; 0 means unlimited. Defaults to the server configuration"),
					"scale":           scaleProp(),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
