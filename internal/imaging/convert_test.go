package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

// createInMemoryImage creates a solid-color RGBA image.
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestToGrid_Gray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 40)
	}

	grid, err := ToGrid(src, ChannelGray)
	if err != nil {
		t.Fatalf("ToGrid failed: %v", err)
	}

	size := grid.LargestPossibleRegion().Size
	if size[0] != 3 || size[1] != 2 {
		t.Fatalf("size: got %v, want [3 2]", size)
	}
	for i, v := range grid.Pixels() {
		if v != uint8(i*40) {
			t.Errorf("pixel %d: got %d, want %d", i, v, i*40)
		}
	}
}

func TestToGrid_OffsetBounds(t *testing.T) {
	src := image.NewGray(image.Rect(10, 20, 12, 21))
	src.SetGray(11, 20, color.Gray{Y: 99})

	grid, err := ToGrid(src, ChannelGray)
	if err != nil {
		t.Fatalf("ToGrid failed: %v", err)
	}
	if got := grid.At(ndimage.Index{1, 0}); got != 99 {
		t.Errorf("pixel (1,0): got %d, want 99", got)
	}
}

func TestToGrid_Lightness(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want uint8
	}{
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"transparent", color.RGBA{0, 0, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := ToGrid(createInMemoryImage(2, 2, tt.c), ChannelLightness)
			if err != nil {
				t.Fatalf("ToGrid failed: %v", err)
			}
			if got := grid.Pixels()[0]; got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestToGrid_LightnessOrdersColors(t *testing.T) {
	// pure blue is much darker than pure yellow in L*
	blue, _ := ToGrid(createInMemoryImage(1, 1, color.RGBA{0, 0, 255, 255}), ChannelLightness)
	yellow, _ := ToGrid(createInMemoryImage(1, 1, color.RGBA{255, 255, 0, 255}), ChannelLightness)
	if blue.Pixels()[0] >= yellow.Pixels()[0] {
		t.Errorf("blue L*=%d should be below yellow L*=%d", blue.Pixels()[0], yellow.Pixels()[0])
	}
}

func TestToGrid_Errors(t *testing.T) {
	if _, err := ToGrid(image.NewGray(image.Rect(0, 0, 0, 0)), ChannelGray); err == nil {
		t.Error("expected error for empty image")
	}
	if _, err := ToGrid(image.NewGray(image.Rect(0, 0, 1, 1)), Channel("hue")); err == nil {
		t.Error("expected error for unknown channel")
	}
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in      string
		want    Channel
		wantErr bool
	}{
		{"", ChannelGray, false},
		{"gray", ChannelGray, false},
		{"lightness", ChannelLightness, false},
		{"red", "", true},
	}

	for _, tt := range tests {
		got, err := ParseChannel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseChannel(%q) error: got %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseChannel(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBinarize(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 1))
	copy(src.Pix, []uint8{0, 100, 160, 250})

	grid, err := Binarize(src, 128)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}
	want := []uint8{0, 0, 255, 255}
	for i, v := range grid.Pixels() {
		if v != want[i] {
			t.Errorf("pixel %d: got %d, want %d", i, v, want[i])
		}
	}
}

func TestFromGrid(t *testing.T) {
	grid := createGradientGrid(3, 2)

	img, err := FromGrid(grid)
	if err != nil {
		t.Fatalf("FromGrid failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("bounds: got %v", img.Bounds())
	}
	if got := img.GrayAt(2, 1).Y; got != 12 {
		t.Errorf("pixel (2,1): got %d, want 12", got)
	}
}

func TestFromGrid_SubRegion(t *testing.T) {
	full := createGradientGrid(6, 6)
	sub, _ := full.Extract(mustRegion(t, Rect{2, 3, 5, 6}))

	img, err := FromGrid(sub)
	if err != nil {
		t.Fatalf("FromGrid failed: %v", err)
	}
	if img.Bounds() != image.Rect(2, 3, 5, 6) {
		t.Errorf("bounds: got %v, want (2,3)-(5,6)", img.Bounds())
	}
	if got := img.GrayAt(4, 5).Y; got != 54 {
		t.Errorf("pixel (4,5): got %d, want 54", got)
	}
}

func TestFromGrid_WrongDimension(t *testing.T) {
	grid := ndimage.New[uint8](ndimage.RegionOfSize(2, 2, 2))
	if _, err := FromGrid(grid); err == nil {
		t.Error("expected error for a 3-D grid")
	}
}
