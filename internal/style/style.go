// Package style infers the rendering parameters of the original text in a
// region: fill and background colors, point size, horizontal scale (장평),
// and a best-effort font candidate.
package style

import (
	"image"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/haneul-lab/textmend/internal/extract"
	"github.com/haneul-lab/textmend/internal/fonts"
	"github.com/haneul-lab/textmend/internal/raster"
	"github.com/haneul-lab/textmend/internal/region"
)

// Style tags assigned from relative line heights, mirroring the three-level
// hierarchy common in infographic layouts.
const (
	TagTitle    = "title"
	TagSubtitle = "subtitle"
	TagBody     = "body"
)

// glyphContrast is the minimum luminance difference from the background for
// a pixel inside an OCR box to count as glyph ink.
const glyphContrast = 60.0

// boldCoverage is the ink-coverage ratio above which strokes are treated as
// a bold weight when picking a font candidate.
const boldCoverage = 0.30

// fallbackSizeRatio scales the region height into a coarse point size when
// no text geometry is available.
const fallbackSizeRatio = 0.6

// Horizontal scale estimates outside this range are almost always
// measurement noise; clamp rather than propagate them.
const (
	minHorizontalScale = 0.5
	maxHorizontalScale = 1.5
)

// Profile is the set of rendering parameters used to synthesize corrected
// text. Operator overrides replace inferred fields and are never re-inferred.
type Profile struct {
	// FontFamily is a candidate family from the catalog, never a hard
	// requirement.
	FontFamily string `json:"font_family"`

	// PointSize is the inferred nominal size, always > 0.
	PointSize float64 `json:"point_size"`

	// HorizontalScale is the per-glyph width multiplier (장평); 1.0 means
	// unscaled.
	HorizontalScale float64 `json:"horizontal_scale"`

	// FillColor is the glyph ink color.
	FillColor raster.RGB `json:"fill_color"`

	// BackgroundColor is the dominant background color behind the text,
	// nil when no background could be estimated.
	BackgroundColor *raster.RGB `json:"background_color,omitempty"`

	// Tag is a title/subtitle/body hint derived from relative line height.
	Tag string `json:"tag"`
}

// Classify infers a Profile from the region's pixel statistics and the
// extraction geometry. With no extracted lines it degrades to region-global
// statistics instead of failing, so manual correction stays possible.
func Classify(src image.Image, reg region.Region, ext *extract.Result, cat *fonts.Catalog) Profile {
	rect := reg.Rect()

	var lineRects []image.Rectangle
	if ext != nil {
		for _, ln := range ext.Lines {
			lineRects = append(lineRects, ln.Bounds.Intersect(rect))
		}
	}

	inBoxes := func(x, y int) bool {
		for _, lr := range lineRects {
			if x >= lr.Min.X && x < lr.Max.X && y >= lr.Min.Y && y < lr.Max.Y {
				return true
			}
		}
		return false
	}

	// Background: most frequent color outside the text boxes.
	bg, bgOK := raster.ModeColor(src, rect, func(x, y int, c raster.RGB) bool {
		return !inBoxes(x, y)
	})
	if !bgOK {
		// Boxes cover the whole region; fall back to the full crop.
		bg, bgOK = raster.ModeColor(src, rect, nil)
	}
	bgLum := bg.Luminance()

	// Foreground: most frequent color among high-contrast pixels. Without
	// line geometry the contrast test runs over the whole region.
	inkPixels := 0
	boxPixels := 0
	fill, fillOK := raster.ModeColor(src, rect, func(x, y int, c raster.RGB) bool {
		if len(lineRects) > 0 && !inBoxes(x, y) {
			return false
		}
		boxPixels++
		if math.Abs(c.Luminance()-bgLum) <= glyphContrast {
			return false
		}
		inkPixels++
		return true
	})
	if !fillOK || tooSimilar(fill, bg) {
		fill = contrastingInk(bgLum)
	}

	p := Profile{
		FillColor:       fill,
		HorizontalScale: 1.0,
		FontFamily:      chooseFamily(cat, coverage(inkPixels, boxPixels) >= boldCoverage),
		Tag:             TagBody,
	}
	if bgOK {
		bgCopy := bg
		p.BackgroundColor = &bgCopy
	}

	if ext.Empty() {
		p.PointSize = math.Max(1, float64(reg.Height)*fallbackSizeRatio)
		return p
	}

	heights := make([]float64, len(ext.Lines))
	for i, ln := range ext.Lines {
		heights[i] = float64(ln.Bounds.Dy())
	}
	meanHeight := mean(heights)
	p.PointSize = math.Max(1, meanHeight/fonts.HangulInkRatio)
	p.Tag = tagForHeight(meanHeight, heights)
	p.HorizontalScale = inferHorizontalScale(ext.Lines, p.FontFamily, p.PointSize, cat)
	return p
}

// inferHorizontalScale compares each observed line width to the width a
// reference font would produce for the same text at the inferred size, and
// takes the median ratio. Measurement failures leave the scale at 1.0.
func inferHorizontalScale(lines []extract.Line, family string, size float64, cat *fonts.Catalog) float64 {
	if cat == nil {
		return 1.0
	}
	var ratios []float64
	for _, ln := range lines {
		text := strings.TrimSpace(ln.Text)
		if text == "" {
			continue
		}
		ref, err := cat.MeasureString(family, size, text)
		if err != nil || ref <= 0 {
			continue
		}
		ratios = append(ratios, float64(ln.Bounds.Dx())/ref)
	}
	if len(ratios) == 0 {
		return 1.0
	}
	sort.Float64s(ratios)
	scale := ratios[len(ratios)/2]
	return math.Min(maxHorizontalScale, math.Max(minHorizontalScale, scale))
}

// tooSimilar reports whether two colors are perceptually close enough that
// the foreground estimate cannot be trusted.
func tooSimilar(a, b raster.RGB) bool {
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	return ca.DistanceCIEDE2000(cb) < 0.1
}

// contrastingInk picks plain black or white ink against the background.
func contrastingInk(bgLum float64) raster.RGB {
	if bgLum >= 128 {
		return raster.RGB{}
	}
	return raster.RGB{R: 255, G: 255, B: 255}
}

func coverage(ink, box int) float64 {
	if box == 0 {
		return 0
	}
	return float64(ink) / float64(box)
}

// chooseFamily picks a candidate family from the catalog, preferring a bold
// face when the stroke coverage suggests one.
func chooseFamily(cat *fonts.Catalog, bold bool) string {
	if cat == nil {
		return fonts.DefaultFamily
	}
	families := cat.Families()
	if len(families) == 0 {
		return fonts.DefaultFamily
	}
	if bold {
		for _, f := range families {
			if strings.Contains(strings.ToLower(f), "bold") {
				return f
			}
		}
	}
	for _, f := range families {
		if f == fonts.DefaultFamily {
			return f
		}
	}
	for _, f := range families {
		if !strings.Contains(strings.ToLower(f), "bold") {
			return f
		}
	}
	return families[0]
}

func tagForHeight(meanHeight float64, heights []float64) string {
	std := stddev(heights, meanHeight)
	max := heights[0]
	for _, h := range heights[1:] {
		if h > max {
			max = h
		}
	}
	switch {
	case max >= meanHeight+std*0.8 && std > 0:
		return TagTitle
	case max >= meanHeight+std*0.3 && std > 0:
		return TagSubtitle
	default:
		return TagBody
	}
}

func mean(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func stddev(v []float64, mean float64) float64 {
	if len(v) < 2 {
		return 0
	}
	var sum float64
	for _, x := range v {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(v)))
}
