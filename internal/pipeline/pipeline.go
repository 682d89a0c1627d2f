// Package pipeline orchestrates a full correction pass: extraction, style
// classification, background reconstruction, glyph rendering, and
// compositing, with an audit record per applied correction.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/haneul-lab/textmend/internal/audit"
	"github.com/haneul-lab/textmend/internal/compose"
	"github.com/haneul-lab/textmend/internal/extract"
	"github.com/haneul-lab/textmend/internal/fonts"
	"github.com/haneul-lab/textmend/internal/inpaint"
	"github.com/haneul-lab/textmend/internal/raster"
	"github.com/haneul-lab/textmend/internal/region"
	"github.com/haneul-lab/textmend/internal/render"
	"github.com/haneul-lab/textmend/internal/style"
)

// Warning codes attached to an Outcome. Warnings never abort a correction;
// the operator decides whether the result is acceptable.
const (
	// WarnLowConfidence flags an extraction below the session's confidence
	// floor, or one that found no text at all.
	WarnLowConfidence = "low_confidence_extraction"

	// WarnMaskEmpty flags a region where no glyph pixels were detected, so
	// the background was used as-is.
	WarnMaskEmpty = "empty_glyph_mask"

	// WarnOverflow flags corrected text wider than the region beyond the
	// fit tolerance.
	WarnOverflow = "rendered_text_overflow"
)

// lineSpacingRatio spaces fallback baselines when the corrected text has
// more lines than the extraction observed.
const lineSpacingRatio = 1.4

// DefaultMinConfidence is the extraction confidence floor below which a
// correction is flagged but still applied.
const DefaultMinConfidence = 0.5

// Override carries operator-supplied style fields. A set field replaces the
// inferred value and is never second-guessed by classification.
type Override struct {
	FontFamily      string
	PointSize       float64
	HorizontalScale float64
	FillColor       *raster.RGB
	Tag             string
}

// Request is one region correction.
type Request struct {
	Region        region.Region
	CorrectedText string
	Override      *Override
}

// Outcome is the result of one correction.
type Outcome struct {
	// Image is the full composited image. CorrectAll leaves it nil on the
	// per-region outcomes and returns the accumulated image instead.
	Image *image.NRGBA

	// Extracted is the OCR result for the region.
	Extracted *extract.Result

	// Profile is the style the corrected text was rendered with, after
	// operator overrides.
	Profile style.Profile

	// Warnings lists the non-fatal conditions hit during this correction.
	Warnings []string

	// Record is the audit record for this correction.
	Record *audit.Record
}

// Session binds a source image to the pipeline stages. A session is safe for
// concurrent use: the source image is only read, and every stage is a pure
// function of its inputs.
type Session struct {
	Source    image.Image
	Extractor *extract.Extractor
	Inpainter *inpaint.Inpainter
	Renderer  *render.Renderer
	Catalog   *fonts.Catalog

	// MinConfidence is the extraction confidence floor;
	// DefaultMinConfidence when zero.
	MinConfidence float64

	// StageTimeout bounds each extraction and inpainting call; no bound
	// when zero.
	StageTimeout time.Duration

	// Logger receives stage warnings; log.Default() when nil.
	Logger *log.Logger
}

// NewSession creates a session with default stage settings.
func NewSession(src image.Image, engine extract.Engine, cat *fonts.Catalog) *Session {
	return &Session{
		Source:        src,
		Extractor:     extract.NewExtractor(engine),
		Inpainter:     inpaint.New(),
		Renderer:      render.NewRenderer(cat),
		Catalog:       cat,
		MinConfidence: DefaultMinConfidence,
	}
}

// Correct applies one correction and returns the fully composited image in
// the outcome. The source image is never mutated.
func (s *Session) Correct(ctx context.Context, req Request) (*Outcome, error) {
	st, err := s.runStages(ctx, req)
	if err != nil {
		return nil, err
	}
	img, err := compose.Compose(s.Source, req.Region, st.clean, st.glyphs)
	if err != nil {
		return nil, err
	}
	st.outcome.Image = img
	return st.outcome, nil
}

// CorrectAll applies several corrections to the same source image. Region
// stages run concurrently; composites are applied serially in request order,
// so overlapping regions resolve deterministically with later requests
// winning. It returns the accumulated image and the per-region outcomes.
func (s *Session) CorrectAll(ctx context.Context, reqs []Request) (*image.NRGBA, []*Outcome, error) {
	if len(reqs) == 0 {
		return nil, nil, fmt.Errorf("no corrections requested")
	}

	type result struct {
		st  *stages
		err error
	}
	results := make([]result, len(reqs))

	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st, err := s.runStages(ctx, reqs[i])
			results[i] = result{st: st, err: err}
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r.err != nil {
			return nil, nil, fmt.Errorf("correction %d: %w", i, r.err)
		}
	}

	var cur image.Image = s.Source
	var final *image.NRGBA
	outcomes := make([]*Outcome, len(reqs))
	for i, r := range results {
		img, err := compose.Compose(cur, reqs[i].Region, r.st.clean, r.st.glyphs)
		if err != nil {
			return nil, nil, fmt.Errorf("correction %d: %w", i, err)
		}
		cur, final = img, img
		outcomes[i] = r.st.outcome
	}
	return final, outcomes, nil
}

// stages holds the per-region intermediate products before compositing.
type stages struct {
	clean   *image.NRGBA
	glyphs  *image.RGBA
	outcome *Outcome
}

func (s *Session) runStages(ctx context.Context, req Request) (*stages, error) {
	if err := req.Region.Validate(s.Source.Bounds()); err != nil {
		return nil, err
	}

	var warnings []string

	ext, err := s.extractStage(ctx, req.Region)
	if err != nil {
		return nil, err
	}
	if ext.Empty() || ext.Confidence < s.minConfidence() {
		warnings = append(warnings, WarnLowConfidence)
		s.logger().Printf("region %+v: extraction confidence %.2f below %.2f",
			req.Region, ext.Confidence, s.minConfidence())
	}

	profile := style.Classify(s.Source, req.Region, ext, s.Catalog)
	profile = applyOverride(profile, req.Override)

	bg, err := s.inpaintStage(ctx, req.Region, ext)
	if err != nil {
		return nil, err
	}
	if bg.MaskEmpty {
		warnings = append(warnings, WarnMaskEmpty)
	}

	glyphs, overflow, err := s.renderText(req.CorrectedText, profile, req.Region, ext)
	if err != nil {
		return nil, err
	}
	if overflow {
		warnings = append(warnings, WarnOverflow)
		s.logger().Printf("region %+v: corrected text overflows the region", req.Region)
	}

	b := s.Source.Bounds()
	rec := audit.NewRecord(b.Dx(), b.Dy(), req.Region)
	rec.OriginalText = ext.Text
	rec.CorrectedText = req.CorrectedText
	rec.Confidence = ext.Confidence
	rec.Profile = profile
	rec.Warnings = warnings

	return &stages{
		clean:  bg.Image,
		glyphs: glyphs,
		outcome: &Outcome{
			Extracted: ext,
			Profile:   profile,
			Warnings:  warnings,
			Record:    rec,
		},
	}, nil
}

func (s *Session) extractStage(ctx context.Context, reg region.Region) (*extract.Result, error) {
	ctx, cancel := s.stageContext(ctx)
	defer cancel()
	return s.Extractor.Extract(ctx, s.Source, reg)
}

func (s *Session) inpaintStage(ctx context.Context, reg region.Region, ext *extract.Result) (*inpaint.Result, error) {
	ctx, cancel := s.stageContext(ctx)
	defer cancel()
	return s.Inpainter.Inpaint(ctx, s.Source, reg, ext)
}

// renderText renders the corrected text line by line into one region-sized
// layer. Lines reuse the extracted baselines where available; extra lines
// continue downward at a point-size-proportional spacing.
func (s *Session) renderText(text string, p style.Profile, reg region.Region, ext *extract.Result) (*image.RGBA, bool, error) {
	combined := image.NewRGBA(image.Rect(0, 0, reg.Width, reg.Height))
	lines := strings.Split(text, "\n")
	overflow := false

	prevBaseline := 0
	for i, line := range lines {
		baseline := 0
		switch {
		case ext != nil && i < len(ext.Lines):
			baseline = ext.Lines[i].BaselineY - reg.Y
		case prevBaseline > 0:
			baseline = prevBaseline + int(p.PointSize*lineSpacingRatio)
		}

		layer, err := s.Renderer.Render(line, p, render.Geometry{
			Width:     reg.Width,
			Height:    reg.Height,
			BaselineY: baseline,
		})
		if err != nil {
			return nil, false, fmt.Errorf("failed to render line %d: %w", i+1, err)
		}
		draw.Draw(combined, combined.Bounds(), layer.Image, image.Point{}, draw.Over)
		overflow = overflow || layer.Overflow

		if baseline > 0 {
			prevBaseline = baseline
		} else {
			// The renderer centered this line; carry its fallback
			// baseline forward so following lines stack below it.
			prevBaseline = reg.Height/2 + int(p.PointSize*0.35)
		}
	}
	return combined, overflow, nil
}

func applyOverride(p style.Profile, o *Override) style.Profile {
	if o == nil {
		return p
	}
	if o.FontFamily != "" {
		p.FontFamily = o.FontFamily
	}
	if o.PointSize > 0 {
		p.PointSize = o.PointSize
	}
	if o.HorizontalScale > 0 {
		p.HorizontalScale = o.HorizontalScale
	}
	if o.FillColor != nil {
		p.FillColor = *o.FillColor
	}
	if o.Tag != "" {
		p.Tag = o.Tag
	}
	return p
}

func (s *Session) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.StageTimeout)
}

func (s *Session) minConfidence() float64 {
	if s.MinConfidence <= 0 {
		return DefaultMinConfidence
	}
	return s.MinConfidence
}

func (s *Session) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}
