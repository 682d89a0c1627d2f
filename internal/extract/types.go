package extract

import "image"

// Word is a single recognized token with its bounding box in source-image
// coordinates and the backend's confidence in [0,1].
type Word struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"`
	Bounds     image.Rectangle `json:"bounds"`
}

// Line is an ordered group of words sharing a text line. Bounds is the union
// of the word boxes; BaselineY approximates the baseline the glyphs sit on,
// in source-image coordinates.
type Line struct {
	Text       string          `json:"text"`
	Bounds     image.Rectangle `json:"bounds"`
	BaselineY  int             `json:"baseline_y"`
	Confidence float64         `json:"confidence"`
}

// Result is the extraction outcome for one region. An empty result (no
// lines, zero confidence) is a valid outcome, not an error.
type Result struct {
	// Text is the recognized text, lines joined by newlines.
	Text string `json:"text"`

	// Lines are the recognized lines ordered top to bottom.
	Lines []Line `json:"lines"`

	// Confidence is the mean word confidence in [0,1], 0 when empty.
	Confidence float64 `json:"confidence"`

	// Inverted reports that the inverted-copy pass produced this result,
	// meaning the region is light text on a dark background.
	Inverted bool `json:"inverted"`
}

// Empty reports whether no text was recognized.
func (r *Result) Empty() bool {
	return r == nil || len(r.Lines) == 0
}
