package compose

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/haneul-lab/textmend/internal/region"
)

func uniform(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestCompose_ReplacesRegionOnly(t *testing.T) {
	src := uniform(100, 80, color.NRGBA{200, 200, 200, 255})
	reg := region.Region{X: 10, Y: 10, Width: 30, Height: 20}
	clean := uniform(30, 20, color.NRGBA{0, 120, 0, 255})

	out, err := Compose(src, reg, clean, nil)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if got := out.NRGBAAt(15, 15); got.G != 120 {
		t.Errorf("inside region: got %v, want clean background", got)
	}
	if got := out.NRGBAAt(0, 0); got.R != 200 {
		t.Errorf("outside region: got %v, want source pixel", got)
	}
	if got := out.NRGBAAt(50, 15); got.R != 200 {
		t.Errorf("right of region: got %v, want source pixel", got)
	}

	// Source must be untouched.
	if got := src.NRGBAAt(15, 15); got.R != 200 {
		t.Errorf("source mutated: %v", got)
	}
}

func TestCompose_AlphaBlendsGlyphLayer(t *testing.T) {
	src := uniform(50, 50, color.NRGBA{255, 255, 255, 255})
	reg := region.Region{X: 0, Y: 0, Width: 50, Height: 50}
	clean := uniform(50, 50, color.NRGBA{255, 255, 255, 255})

	glyphs := image.NewRGBA(image.Rect(0, 0, 50, 50))
	glyphs.Set(10, 10, color.RGBA{0, 0, 0, 255})   // opaque ink
	glyphs.Set(20, 20, color.RGBA{0, 0, 0, 128})   // half-covered edge pixel

	out, err := Compose(src, reg, clean, glyphs)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if got := out.NRGBAAt(10, 10); got.R != 0 {
		t.Errorf("opaque glyph pixel: got %v, want black", got)
	}
	if got := out.NRGBAAt(20, 20); got.R < 100 || got.R > 150 {
		t.Errorf("half-alpha glyph pixel: got %v, want mid-gray blend", got)
	}
	if got := out.NRGBAAt(30, 30); got.R != 255 {
		t.Errorf("transparent glyph pixel: got %v, want clean background", got)
	}
}

func TestCompose_Validation(t *testing.T) {
	src := uniform(50, 50, color.NRGBA{255, 255, 255, 255})

	_, err := Compose(src, region.Region{X: 40, Y: 0, Width: 20, Height: 20}, uniform(20, 20, color.NRGBA{}), nil)
	if !errors.Is(err, region.ErrInvalidRegion) {
		t.Errorf("expected ErrInvalidRegion, got %v", err)
	}

	_, err = Compose(src, region.Region{X: 0, Y: 0, Width: 20, Height: 20}, uniform(10, 10, color.NRGBA{}), nil)
	if err == nil {
		t.Error("expected error for mismatched clean background size")
	}
}

func TestExport_PNGDefault(t *testing.T) {
	img := uniform(20, 10, color.NRGBA{1, 2, 3, 255})

	var buf bytes.Buffer
	if err := Export(&buf, img, ""); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not valid png: %v", err)
	}
	if decoded.Bounds().Dx() != 20 || decoded.Bounds().Dy() != 10 {
		t.Errorf("dimensions: got %v, want 20x10", decoded.Bounds())
	}
}

func TestExport_JPEG(t *testing.T) {
	img := uniform(20, 10, color.NRGBA{100, 100, 100, 255})
	var buf bytes.Buffer
	if err := Export(&buf, img, "jpeg"); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty jpeg output")
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	img := uniform(5, 5, color.NRGBA{})
	var buf bytes.Buffer
	err := Export(&buf, img, "webp")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
