// Package region defines the operator-selected rectangle that every pipeline
// stage consumes, together with its bounds validation.
package region

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidRegion reports a region that is zero-area or not fully contained
// within the source image. Callers should reject the correction request
// before running any pipeline stage.
var ErrInvalidRegion = errors.New("invalid region")

// Region is a rectangular sub-area of the source image in pixel coordinates.
// It is produced by the external selection UI and consumed read-only by all
// pipeline stages.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect returns the region as an image.Rectangle in source coordinates.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Validate checks that the region has positive area and lies fully inside
// bounds. It returns an error wrapping ErrInvalidRegion otherwise.
func (r Region) Validate(bounds image.Rectangle) error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: non-positive size %dx%d", ErrInvalidRegion, r.Width, r.Height)
	}
	if !r.Rect().In(bounds) {
		return fmt.Errorf("%w: %v outside image bounds %v", ErrInvalidRegion, r.Rect(), bounds)
	}
	return nil
}

// Contains reports whether the source-coordinate point (x, y) lies inside
// the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}
