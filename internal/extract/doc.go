// Package extract recognizes the text inside an operator-selected region.
//
// The OCR engine itself is a capability boundary: anything that can turn an
// image into positioned words satisfies the Engine interface. The default
// backend is Tesseract via gosseract/v2, compiled in only when CGO is
// available; without CGO a stub engine reports the backend as unavailable.
//
// Extraction is read-only and tolerant: a region with no recognizable text
// produces an empty, zero-confidence Result rather than an error, because
// the operator may still type the corrected text by hand.
//
// # Preprocessing
//
// Region crops are lightly denoised and contrast-boosted before recognition,
// which measurably helps Tesseract on the small, high-contrast glyph strokes
// typical of infographics. Dark regions are additionally recognized in an
// inverted copy and the better-scoring pass wins, which recovers white-on-
// color callout text.
package extract
