// Package render synthesizes the corrected-text glyph layer: a transparent
// region-sized buffer holding only the newly rasterized glyphs.
package render

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"

	"github.com/haneul-lab/textmend/internal/fonts"
	"github.com/haneul-lab/textmend/internal/style"
)

// DefaultFitTolerance allows rendered text to exceed the region width by 5%
// before an overflow is reported.
const DefaultFitTolerance = 0.05

// baselineRatio positions the fallback baseline when no extraction geometry
// is available: vertically centered, shifted down by a typical Hangul
// ascent fraction.
const baselineRatio = 0.35

// glyphPad leaves room for side bearings that extend past a glyph's advance.
const glyphPad = 2

// Geometry is the target placement for a glyph layer, in region-local
// coordinates. BaselineY <= 0 requests the region-centered fallback.
type Geometry struct {
	Width     int
	Height    int
	BaselineY int
}

// Layer is a rendered glyph layer. The image is exactly region-sized with a
// transparent background; glyphs extending past the region are clipped by
// the canvas, never silently: Overflow records the misfit.
type Layer struct {
	// Image holds the rasterized glyphs with alpha.
	Image *image.RGBA

	// TextWidth is the advance width of the laid-out text in pixels,
	// after horizontal scaling.
	TextWidth float64

	// Overflow reports that TextWidth exceeded the geometry width beyond
	// the renderer's tolerance. The caller decides whether to shrink the
	// point size or scale and re-render.
	Overflow bool
}

// Renderer rasterizes corrected text with a style profile. Rendering is a
// pure function of its inputs: identical text, profile, and geometry yield
// byte-identical layers.
type Renderer struct {
	Catalog *fonts.Catalog

	// FitTolerance is the fractional width excess allowed before Overflow
	// is set. Zero is strict; negative values fall back to
	// DefaultFitTolerance. NewRenderer starts it at the default.
	FitTolerance float64
}

// NewRenderer creates a renderer over the given font catalog.
func NewRenderer(cat *fonts.Catalog) *Renderer {
	return &Renderer{Catalog: cat, FitTolerance: DefaultFitTolerance}
}

// Render rasterizes text onto a transparent layer of the geometry's size,
// left-aligned on the baseline. The horizontal scale (장평) is applied per
// glyph: each glyph is rasterized unscaled and composited through a
// horizontal-only affine transform about its own pen position, and the pen
// advances by the scaled advance width. Vertical metrics are untouched.
// Empty text produces an empty transparent layer.
func (r *Renderer) Render(text string, p style.Profile, geom Geometry) (*Layer, error) {
	if geom.Width <= 0 || geom.Height <= 0 {
		return nil, fmt.Errorf("invalid target geometry %dx%d", geom.Width, geom.Height)
	}
	if p.PointSize <= 0 {
		return nil, fmt.Errorf("invalid point size %v", p.PointSize)
	}
	scale := p.HorizontalScale
	if scale <= 0 {
		scale = 1.0
	}

	layer := &Layer{Image: image.NewRGBA(image.Rect(0, 0, geom.Width, geom.Height))}
	if text == "" {
		return layer, nil
	}

	f, err := r.Catalog.Load(p.FontFamily)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve font: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    p.PointSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	defer face.Close()

	baseline := float64(geom.BaselineY)
	if geom.BaselineY <= 0 {
		baseline = float64(geom.Height)/2 + p.PointSize*baselineRatio
	}

	ink := p.FillColor.NRGBA()
	x := 0.0
	for _, g := range text {
		s := string(g)
		adv := float64(font.MeasureString(face, s)) / 64.0
		if adv <= 0 {
			continue
		}

		gw := int(math.Ceil(adv)) + glyphPad*2
		gdc := gg.NewContext(gw, geom.Height)
		gdc.SetFontFace(face)
		gdc.SetColor(ink)
		gdc.DrawString(s, glyphPad, baseline)

		aff := f64.Aff3{scale, 0, x - scale*glyphPad, 0, 1, 0}
		xdraw.ApproxBiLinear.Transform(layer.Image, aff, gdc.Image(), gdc.Image().Bounds(), xdraw.Over, nil)

		x += adv * scale
	}

	layer.TextWidth = x
	layer.Overflow = x > float64(geom.Width)*(1.0+r.tolerance())
	return layer, nil
}

// MeasureText returns the scaled advance width the renderer would lay out,
// without rasterizing. Useful for pre-flight fit checks.
func (r *Renderer) MeasureText(text string, p style.Profile) (float64, error) {
	if p.PointSize <= 0 {
		return 0, fmt.Errorf("invalid point size %v", p.PointSize)
	}
	f, err := r.Catalog.Load(p.FontFamily)
	if err != nil {
		return 0, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    p.PointSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	defer face.Close()

	scale := p.HorizontalScale
	if scale <= 0 {
		scale = 1.0
	}
	var w float64
	for _, g := range text {
		w += float64(font.MeasureString(face, string(g))) / 64.0 * scale
	}
	return w, nil
}

func (r *Renderer) tolerance() float64 {
	if r.FitTolerance < 0 {
		return DefaultFitTolerance
	}
	return r.FitTolerance
}
