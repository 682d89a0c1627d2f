//go:build !cgo

package extract

import (
	"context"
	"errors"
	"image"
)

// TesseractEngine is a stub in builds without CGO; Recognize always fails.
type TesseractEngine struct {
	Language string
}

// NewTesseractEngine creates the stub engine.
func NewTesseractEngine(language string) *TesseractEngine {
	return &TesseractEngine{Language: language}
}

// Recognize reports that the Tesseract backend is unavailable.
func (t *TesseractEngine) Recognize(ctx context.Context, img image.Image) ([]Word, error) {
	return nil, errors.New("tesseract backend requires a CGO build")
}
