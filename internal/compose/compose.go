// Package compose merges a reconstructed background and a rendered glyph
// layer back into the source image, and serializes the result.
package compose

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/haneul-lab/textmend/internal/region"
)

// ErrUnsupportedFormat reports an export format outside the supported set.
// It is fatal for the export call only; the composited image stays valid.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// JPEGQuality is used for lossy export.
const JPEGQuality = 95

// Compose writes clean and glyphs into a copy of src at the region offset
// and returns the copy. The glyph layer is alpha-blended over the clean
// background using its own alpha channel; every pixel outside the region
// passes through unchanged. The source image is never mutated.
func Compose(src image.Image, reg region.Region, clean *image.NRGBA, glyphs image.Image) (*image.NRGBA, error) {
	if err := reg.Validate(src.Bounds()); err != nil {
		return nil, err
	}
	if clean == nil {
		return nil, errors.New("missing clean background")
	}
	if clean.Bounds().Dx() != reg.Width || clean.Bounds().Dy() != reg.Height {
		return nil, fmt.Errorf("clean background %v does not match region %dx%d",
			clean.Bounds(), reg.Width, reg.Height)
	}
	if glyphs != nil && (glyphs.Bounds().Dx() > reg.Width || glyphs.Bounds().Dy() > reg.Height) {
		return nil, fmt.Errorf("glyph layer %v exceeds region %dx%d",
			glyphs.Bounds(), reg.Width, reg.Height)
	}

	out := image.NewNRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)

	target := reg.Rect()
	draw.Draw(out, target, clean, clean.Bounds().Min, draw.Src)
	if glyphs != nil {
		draw.Draw(out, target, glyphs, glyphs.Bounds().Min, draw.Over)
	}
	return out, nil
}

// Export serializes img to w. Supported formats are "png" (lossless,
// the default for an empty format string) and "jpeg"/"jpg". Dimensions are
// preserved exactly.
func Export(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "", "png":
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	case "jpeg", "jpg":
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return fmt.Errorf("failed to encode jpeg: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}

// Formats lists the supported export formats.
func Formats() []string {
	return []string{"png", "jpeg"}
}
