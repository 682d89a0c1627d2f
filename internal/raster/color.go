// Package raster holds the pixel-level primitives shared by the correction
// pipeline: image loading, luminance math, and quantized color statistics.
package raster

import (
	"fmt"
	"image"
	"image/color"
)

// RGB represents an opaque color with 8-bit components.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color in "#RRGGBB" form.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// NRGBA returns the color as a fully opaque color.NRGBA.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Luminance returns the perceived brightness of the color in [0,255]
// using ITU-R BT.601 weights.
func (c RGB) Luminance() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// At samples the pixel at (x, y) as an 8-bit RGB value, discarding alpha.
func At(img image.Image, x, y int) RGB {
	r, g, b, _ := img.At(x, y).RGBA()
	return RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// Luminance returns the BT.601 luminance of the pixel at (x, y) in [0,255].
func Luminance(img image.Image, x, y int) float64 {
	return At(img, x, y).Luminance()
}

// MeanLuminance computes the average luminance over a rectangle.
// An empty rectangle yields 0.
func MeanLuminance(img image.Image, rect image.Rectangle) float64 {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return 0
	}
	var sum float64
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			sum += Luminance(img, x, y)
		}
	}
	return sum / float64(rect.Dx()*rect.Dy())
}

// quantize groups nearby color components so visually identical pixels that
// differ by compression noise count as one histogram bucket.
func quantize(c RGB) RGB {
	return RGB{R: c.R / 16 * 16, G: c.G / 16 * 16, B: c.B / 16 * 16}
}

// key packs a quantized color into a comparable histogram key.
func (c RGB) key() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// ModeColor returns the most frequent quantized color among the pixels of
// rect that satisfy keep. Ties break toward the numerically smaller color so
// the result is deterministic. The boolean result is false when no pixel
// satisfied the predicate.
func ModeColor(img image.Image, rect image.Rectangle, keep func(x, y int, c RGB) bool) (RGB, bool) {
	rect = rect.Intersect(img.Bounds())
	counts := make(map[uint32]int)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := At(img, x, y)
			if keep != nil && !keep(x, y, c) {
				continue
			}
			counts[quantize(c).key()]++
		}
	}
	if len(counts) == 0 {
		return RGB{}, false
	}

	var bestKey uint32
	bestCount := -1
	for k, n := range counts {
		if n > bestCount || (n == bestCount && k < bestKey) {
			bestKey = k
			bestCount = n
		}
	}
	return RGB{
		R: uint8(bestKey >> 16),
		G: uint8(bestKey >> 8),
		B: uint8(bestKey),
	}, true
}
