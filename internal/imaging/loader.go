package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sync"
)

// ImageCache keeps decoded images, and the grids reduced from them, keyed by
// file path so repeated tool calls on the same marker or mask skip both the
// disk read and the conversion.
//
// ImageCache is safe for concurrent use. Entries live until Evict or Clear;
// the same file reached through two different path strings is cached twice.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]decoded
	grids  map[gridKey]*Grid
}

type decoded struct {
	img    image.Image
	format string
}

type gridKey struct {
	path    string
	channel Channel
}

// NewImageCache returns an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]decoded),
		grids:  make(map[gridKey]*Grid),
	}
}

// Load returns the decoded image at path, reading it on first use.
// PNG, JPEG and GIF are supported.
func (c *ImageCache) Load(path string) (image.Image, error) {
	d, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

func (c *ImageCache) load(path string) (decoded, error) {
	c.mu.RLock()
	d, ok := c.images[path]
	c.mu.RUnlock()
	if ok {
		return d, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return decoded{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return decoded{}, fmt.Errorf("failed to decode image: %w", err)
	}
	d = decoded{img: img, format: format}

	c.mu.Lock()
	c.images[path] = d
	c.mu.Unlock()

	return d, nil
}

// LoadGrid returns the grid for path reduced with channel, converting and
// caching it on first use.
//
// The returned grid is shared between callers and must be treated as
// read-only; the morphology engine never writes its inputs.
func (c *ImageCache) LoadGrid(path string, channel Channel) (*Grid, error) {
	key := gridKey{path: path, channel: channel}
	c.mu.RLock()
	g, ok := c.grids[key]
	c.mu.RUnlock()
	if ok {
		return g, nil
	}

	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	g, err = ToGrid(img, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", filepath.Base(path), err)
	}

	c.mu.Lock()
	c.grids[key] = g
	c.mu.Unlock()

	return g, nil
}

// Clear drops every cached image and grid.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]decoded)
	c.grids = make(map[gridKey]*Grid)
	c.mu.Unlock()
}

// Evict drops the image at path and every grid reduced from it. Unknown
// paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	for key := range c.grids {
		if key.path == path {
			delete(c.grids, key)
		}
	}
	c.mu.Unlock()
}

// ImageInfo describes an image file as the morphology tools see it.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Size is the grid size handed to the engine, x fastest: [width, height].
	Size []int `json:"size"`

	// Format is the name of the decoder that read the file ("png", "jpeg",
	// "gif"), independent of the file extension.
	Format string `json:"format"`

	// BitDepth is 16 for 16-bit color models, 8 otherwise.
	BitDepth int `json:"bit_depth"`

	// Grayscale is true when the file stores a single gray channel, so the
	// gray and lightness channels differ only by scale.
	Grayscale bool `json:"grayscale"`

	HasAlpha      bool  `json:"has_alpha"`
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads the image at path into cache and reports its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	d, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	info := &ImageInfo{
		Width:         d.img.Bounds().Dx(),
		Height:        d.img.Bounds().Dy(),
		Format:        d.format,
		BitDepth:      8,
		FileSizeBytes: stat.Size(),
	}
	info.Size = []int{info.Width, info.Height}

	switch d.img.(type) {
	case *image.Gray:
		info.Grayscale = true
	case *image.Gray16:
		info.Grayscale = true
		info.BitDepth = 16
	case *image.RGBA, *image.NRGBA, *image.Paletted:
		info.HasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		info.HasAlpha = true
		info.BitDepth = 16
	}

	return info, nil
}

// DimensionsResult is the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions loads the image at path into cache and returns its size.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
