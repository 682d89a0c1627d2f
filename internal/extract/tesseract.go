//go:build cgo

package extract

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine recognizes text through the system Tesseract installation
// via gosseract. The language data for each configured language must be
// installed (e.g. tesseract-ocr-kor for Hangul).
type TesseractEngine struct {
	// Language is the Tesseract language spec, e.g. "kor+eng".
	Language string
}

// NewTesseractEngine creates an engine for the given Tesseract language spec.
func NewTesseractEngine(language string) *TesseractEngine {
	return &TesseractEngine{Language: language}
}

// Recognize runs word-level OCR on img. Tesseract needs a file path, so the
// image is written to a temporary PNG that is removed before returning.
func (t *TesseractEngine) Recognize(ctx context.Context, img image.Image) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpFile, err := os.CreateTemp("", "textmend-ocr-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmpFile, img); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to encode temp image: %w", err)
	}
	tmpFile.Close()

	client := gosseract.NewClient()
	defer client.Close()

	if t.Language != "" {
		if err := client.SetLanguage(t.Language); err != nil {
			return nil, fmt.Errorf("failed to set language: %w", err)
		}
	}
	if err := client.SetImage(tmpPath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, Word{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds: image.Rect(
				box.Box.Min.X, box.Box.Min.Y,
				box.Box.Max.X, box.Box.Max.Y,
			),
		})
	}
	return words, nil
}
