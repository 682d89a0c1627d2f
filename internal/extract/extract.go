package extract

import (
	"context"
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"

	"github.com/haneul-lab/textmend/internal/raster"
	"github.com/haneul-lab/textmend/internal/region"
)

// Engine is the OCR capability boundary: given an image, return recognized
// words with bounding boxes (in the image's own coordinates) and confidence.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) ([]Word, error)
}

// darkBackgroundLuminance is the mean-luminance cutoff below which a region
// is assumed to hold light-on-dark text and an inverted pass is attempted.
const darkBackgroundLuminance = 128

// denoiseRadius and contrastBoost tune the pre-OCR cleanup of region crops.
const (
	denoiseRadius = 0.6
	contrastBoost = 0.15
)

// Extractor crops a region, preprocesses it, and runs the configured engine,
// grouping the word-level output into ordered lines.
type Extractor struct {
	Engine Engine
}

// NewExtractor creates an extractor backed by the given engine.
func NewExtractor(engine Engine) *Extractor {
	return &Extractor{Engine: engine}
}

// Extract recognizes the text within reg. Bounding geometry in the result is
// expressed in source-image coordinates. A region where the engine finds no
// words yields an empty Result and a nil error.
func (e *Extractor) Extract(ctx context.Context, src image.Image, reg region.Region) (*Result, error) {
	if err := reg.Validate(src.Bounds()); err != nil {
		return nil, err
	}

	crop := imaging.Crop(src, reg.Rect())
	pre := preprocess(crop)

	words, err := e.Engine.Recognize(ctx, pre)
	if err != nil {
		return nil, fmt.Errorf("text recognition failed: %w", err)
	}

	inverted := false
	if raster.MeanLuminance(crop, crop.Bounds()) < darkBackgroundLuminance {
		invWords, invErr := e.Engine.Recognize(ctx, imaging.Invert(pre))
		if invErr == nil && meanConfidence(invWords) > meanConfidence(words) {
			words = invWords
			inverted = true
		}
	}

	// Translate from crop coordinates back to the source image.
	for i := range words {
		words[i].Bounds = words[i].Bounds.Add(image.Pt(reg.X, reg.Y))
	}

	return groupLines(words, inverted), nil
}

// preprocess applies a light Gaussian denoise followed by a contrast boost,
// tuned for small high-contrast glyph strokes.
func preprocess(img image.Image) image.Image {
	return adjust.Contrast(blur.Gaussian(img, denoiseRadius), contrastBoost)
}

func meanConfidence(words []Word) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}

// groupLines clusters words into text lines by vertical overlap: a word
// joins the current line when its box spans the line's vertical midpoint.
// Lines are ordered top to bottom, words within a line left to right.
func groupLines(words []Word, inverted bool) *Result {
	kept := words[:0]
	for _, w := range words {
		if strings.TrimSpace(w.Text) != "" {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return &Result{Inverted: inverted}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		ci := kept[i].Bounds.Min.Y + kept[i].Bounds.Max.Y
		cj := kept[j].Bounds.Min.Y + kept[j].Bounds.Max.Y
		if ci != cj {
			return ci < cj
		}
		return kept[i].Bounds.Min.X < kept[j].Bounds.Min.X
	})

	var groups [][]Word
	for _, w := range kept {
		if len(groups) == 0 {
			groups = append(groups, []Word{w})
			continue
		}
		last := groups[len(groups)-1]
		span := unionBounds(last)
		mid := (span.Min.Y + span.Max.Y) / 2
		if w.Bounds.Min.Y <= mid && w.Bounds.Max.Y >= mid {
			groups[len(groups)-1] = append(last, w)
		} else {
			groups = append(groups, []Word{w})
		}
	}

	result := &Result{Inverted: inverted}
	var texts []string
	var confSum float64
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Bounds.Min.X < group[j].Bounds.Min.X
		})
		bounds := unionBounds(group)
		parts := make([]string, len(group))
		var lineConf float64
		for i, w := range group {
			parts[i] = strings.TrimSpace(w.Text)
			lineConf += w.Confidence
		}
		lineConf /= float64(len(group))
		confSum += lineConf

		line := Line{
			Text:   strings.Join(parts, " "),
			Bounds: bounds,
			// Hangul glyphs carry almost no descender, so the bottom of
			// the ink box is a usable baseline estimate.
			BaselineY:  bounds.Max.Y,
			Confidence: lineConf,
		}
		result.Lines = append(result.Lines, line)
		texts = append(texts, line.Text)
	}

	result.Text = strings.Join(texts, "\n")
	result.Confidence = confSum / float64(len(groups))
	return result
}

func unionBounds(words []Word) image.Rectangle {
	b := words[0].Bounds
	for _, w := range words[1:] {
		b = b.Union(w.Bounds)
	}
	return b
}
