// Package audit builds the reproducibility record emitted alongside a
// correction: which region was edited, what the OCR read, what the operator
// wrote, and the exact style used to re-render it.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/haneul-lab/textmend/internal/region"
	"github.com/haneul-lab/textmend/internal/style"
)

// Record captures one applied correction.
type Record struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	ImageWidth    int           `json:"image_width"`
	ImageHeight   int           `json:"image_height"`
	Region        region.Region `json:"region"`
	OriginalText  string        `json:"original_text"`
	CorrectedText string        `json:"corrected_text"`
	Confidence    float64       `json:"confidence"`
	Profile       style.Profile `json:"style_profile"`
	Warnings      []string      `json:"warnings,omitempty"`
}

// NewRecord creates a record with a fresh UUID and the current time.
func NewRecord(imageWidth, imageHeight int, reg region.Region) *Record {
	return &Record{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		ImageWidth:  imageWidth,
		ImageHeight: imageHeight,
		Region:      reg,
	}
}

// WriteJSON serializes the record as indented JSON.
func (r *Record) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}
	return nil
}

// Summary aggregates records for a whole session.
type Summary struct {
	TotalCorrections int     `json:"total_corrections"`
	MeanConfidence   float64 `json:"mean_confidence"`
}

// Summarize computes session-level statistics over records.
func Summarize(records []*Record) Summary {
	s := Summary{TotalCorrections: len(records)}
	if len(records) == 0 {
		return s
	}
	var sum float64
	for _, r := range records {
		sum += r.Confidence
	}
	s.MeanConfidence = sum / float64(len(records))
	return s
}
