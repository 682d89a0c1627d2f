package inpaint

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/haneul-lab/textmend/internal/extract"
	"github.com/haneul-lab/textmend/internal/region"
)

func glyphImage(w, h int, strokes ...image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{250, 250, 250, 255})
		}
	}
	for _, s := range strokes {
		for y := s.Min.Y; y < s.Max.Y; y++ {
			for x := s.Min.X; x < s.Max.X; x++ {
				img.Set(x, y, color.RGBA{10, 10, 10, 255})
			}
		}
	}
	return img
}

func lineResult(boxes ...image.Rectangle) *extract.Result {
	r := &extract.Result{}
	for _, b := range boxes {
		r.Lines = append(r.Lines, extract.Line{Text: "획", Bounds: b, BaselineY: b.Max.Y, Confidence: 0.9})
	}
	return r
}

func TestInpaint_RemovesStrokesAndPreservesOutside(t *testing.T) {
	stroke := image.Rect(30, 20, 50, 40)
	src := glyphImage(120, 80, stroke)
	reg := region.Region{X: 0, Y: 0, Width: 120, Height: 80}
	ext := lineResult(image.Rect(25, 15, 55, 45))

	result, err := New().Inpaint(context.Background(), src, reg, ext)
	if err != nil {
		t.Fatalf("Inpaint failed: %v", err)
	}
	if result.MaskEmpty {
		t.Fatal("expected a non-empty mask")
	}
	if result.MaskCount == 0 {
		t.Fatal("expected reconstructed pixels")
	}

	// Former stroke pixels must now match the background.
	center := result.Image.NRGBAAt(40, 30)
	if center.R < 200 || center.G < 200 || center.B < 200 {
		t.Errorf("stroke center after inpaint: got %v, want near-white", center)
	}

	// Pixels outside the padded OCR box are untouched.
	for _, p := range []image.Point{{0, 0}, {119, 79}, {10, 70}, {100, 5}} {
		got := result.Image.NRGBAAt(p.X, p.Y)
		r, g, b, _ := src.At(p.X, p.Y).RGBA()
		if got.R != uint8(r>>8) || got.G != uint8(g>>8) || got.B != uint8(b>>8) {
			t.Errorf("pixel %v modified outside mask: got %v", p, got)
		}
	}
}

func TestInpaint_OutsideMaskPixelIdentical(t *testing.T) {
	stroke := image.Rect(30, 20, 50, 40)
	src := glyphImage(120, 80, stroke)
	reg := region.Region{X: 0, Y: 0, Width: 120, Height: 80}
	ext := lineResult(image.Rect(25, 15, 55, 45))

	ip := New()
	result, err := ip.Inpaint(context.Background(), src, reg, ext)
	if err != nil {
		t.Fatalf("Inpaint failed: %v", err)
	}

	// Every pixel that kept background luminance must be byte-identical to
	// the source; only high-contrast stroke pixels may differ.
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			sr, sg, sb, _ := src.At(x, y).RGBA()
			wasInk := uint8(sr>>8) < 100
			got := result.Image.NRGBAAt(x, y)
			if !wasInk && (got.R != uint8(sr>>8) || got.G != uint8(sg>>8) || got.B != uint8(sb>>8)) {
				t.Fatalf("background pixel (%d,%d) changed: got %v", x, y, got)
			}
		}
	}
}

func TestInpaint_Deterministic(t *testing.T) {
	stroke := image.Rect(10, 10, 25, 30)
	src := glyphImage(60, 40, stroke)
	reg := region.Region{X: 0, Y: 0, Width: 60, Height: 40}
	ext := lineResult(image.Rect(8, 8, 28, 32))

	ip := New()
	a, err := ip.Inpaint(context.Background(), src, reg, ext)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ip.Inpaint(context.Background(), src, reg, ext)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Image.Pix, b.Image.Pix) {
		t.Error("inpainting is not deterministic for identical inputs")
	}
}

func TestInpaint_EmptyMask(t *testing.T) {
	src := glyphImage(60, 40) // no strokes
	reg := region.Region{X: 0, Y: 0, Width: 60, Height: 40}

	result, err := New().Inpaint(context.Background(), src, reg, &extract.Result{})
	if err != nil {
		t.Fatalf("Inpaint failed: %v", err)
	}
	if !result.MaskEmpty {
		t.Error("expected MaskEmpty for a region without detected glyphs")
	}
}

func TestInpaint_UniformFillMethod(t *testing.T) {
	stroke := image.Rect(10, 10, 20, 20)
	src := glyphImage(40, 30, stroke)
	reg := region.Region{X: 0, Y: 0, Width: 40, Height: 30}
	ext := lineResult(image.Rect(8, 8, 22, 22))

	ip := &Inpainter{Method: MethodFill, Padding: 2, Contrast: 45}
	result, err := ip.Inpaint(context.Background(), src, reg, ext)
	if err != nil {
		t.Fatalf("Inpaint failed: %v", err)
	}

	got := result.Image.NRGBAAt(15, 15)
	if got.R < 200 {
		t.Errorf("uniform fill: got %v, want background color", got)
	}
}

func TestInpaint_InvalidRegion(t *testing.T) {
	src := glyphImage(40, 30)
	_, err := New().Inpaint(context.Background(), src, region.Region{X: 0, Y: 0, Width: 0, Height: 10}, nil)
	if err == nil {
		t.Error("expected error for zero-width region")
	}
}

func TestInpaint_Cancellation(t *testing.T) {
	stroke := image.Rect(10, 10, 40, 40)
	src := glyphImage(60, 60, stroke)
	reg := region.Region{X: 0, Y: 0, Width: 60, Height: 60}
	ext := lineResult(image.Rect(5, 5, 45, 45))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Inpaint(ctx, src, reg, ext); err == nil {
		t.Error("expected context cancellation error")
	}
}
