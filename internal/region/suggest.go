package region

import (
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"
)

// Candidate is a proposed text region with a heuristic confidence.
type Candidate struct {
	Region     Region  `json:"region"`
	Confidence float64 `json:"confidence"`
}

// edgeThreshold binarizes the Sobel magnitude image.
const edgeThreshold = 96

// Printed text sits in a medium edge-density band: sparser is background or
// flat fills, denser is photographic texture.
const (
	minEdgeDensity    = 0.05
	maxEdgeDensity    = 0.4
	targetEdgeDensity = 0.2
)

// suggestWindows are the sliding-window sizes scanned for text, roughly one
// per common infographic text size.
var suggestWindows = []struct{ w, h int }{
	{80, 25},
	{100, 30},
	{150, 40},
	{200, 50},
}

// Suggest proposes regions likely to contain text, for the operator to
// refine and confirm. The heuristic scans windows of typical text sizes for
// medium edge density with predominantly horizontal structure, then merges
// overlapping hits. Results are ordered by confidence, position breaking
// ties, so repeated calls on the same image agree.
func Suggest(img image.Image, minConfidence float64) []Candidate {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	edges := edgeMap(img)

	var candidates []Candidate
	for _, ws := range suggestWindows {
		stepX, stepY := ws.w/2, ws.h/2
		for y := 0; y+ws.h <= height; y += stepY {
			for x := 0; x+ws.w <= width; x += stepX {
				edgeCount := 0
				for wy := y; wy < y+ws.h; wy++ {
					for wx := x; wx < x+ws.w; wx++ {
						if edges[wy][wx] {
							edgeCount++
						}
					}
				}

				density := float64(edgeCount) / float64(ws.w*ws.h)
				if density < minEdgeDensity || density > maxEdgeDensity {
					continue
				}

				conf := horizontalScore(edges, x, y, ws.w, ws.h) *
					(1.0 - math.Abs(density-targetEdgeDensity)/targetEdgeDensity)
				if conf < minConfidence {
					continue
				}
				candidates = append(candidates, Candidate{
					Region:     Region{X: x + bounds.Min.X, Y: y + bounds.Min.Y, Width: ws.w, Height: ws.h},
					Confidence: math.Round(conf*1000) / 1000,
				})
			}
		}
	}

	merged := mergeCandidates(candidates)
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Confidence != merged[j].Confidence {
			return merged[i].Confidence > merged[j].Confidence
		}
		if merged[i].Region.Y != merged[j].Region.Y {
			return merged[i].Region.Y < merged[j].Region.Y
		}
		return merged[i].Region.X < merged[j].Region.X
	})
	return merged
}

// edgeMap binarizes a Sobel gradient image into a per-pixel edge grid.
func edgeMap(img image.Image) [][]bool {
	sobel := effect.Sobel(img)
	b := sobel.Bounds()
	edges := make([][]bool, b.Dy())
	for y := range edges {
		edges[y] = make([]bool, b.Dx())
		for x := range edges[y] {
			c := sobel.RGBAAt(x+b.Min.X, y+b.Min.Y)
			if c.R > edgeThreshold || c.G > edgeThreshold || c.B > edgeThreshold {
				edges[y][x] = true
			}
		}
	}
	return edges
}

// horizontalScore measures how horizontal the edge structure is. Text lines
// produce long horizontal runs; vertical structure suggests borders or bars.
func horizontalScore(edges [][]bool, x, y, w, h int) float64 {
	horizontal, vertical := 0, 0
	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if edges[row][col] && !inRun {
				horizontal++
			}
			inRun = edges[row][col]
		}
	}
	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if edges[row][col] && !inRun {
				vertical++
			}
			inRun = edges[row][col]
		}
	}
	if horizontal+vertical == 0 {
		return 0
	}
	return float64(horizontal) / float64(horizontal+vertical)
}

// mergeCandidates unions overlapping windows, keeping the best confidence.
func mergeCandidates(candidates []Candidate) []Candidate {
	var merged []Candidate
	for _, c := range candidates {
		found := false
		for i := range merged {
			if c.Region.Rect().Overlaps(merged[i].Region.Rect()) {
				u := c.Region.Rect().Union(merged[i].Region.Rect())
				merged[i].Region = Region{X: u.Min.X, Y: u.Min.Y, Width: u.Dx(), Height: u.Dy()}
				merged[i].Confidence = math.Max(c.Confidence, merged[i].Confidence)
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, c)
		}
	}
	return merged
}
