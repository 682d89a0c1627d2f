// Package config loads pipeline settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultLanguage      = "kor+eng"
	DefaultMinConfidence = 0.5
	DefaultFitTolerance  = 0.05
	DefaultStageTimeout  = 30 * time.Second
	DefaultFormat        = "png"
)

// Config holds the runtime settings of the correction pipeline.
type Config struct {
	// FontsDir is the directory holding the bundled font catalog.
	FontsDir string

	// Language is the Tesseract language spec for extraction.
	Language string

	// MinConfidence is the extraction confidence below which a
	// low-confidence warning is raised.
	MinConfidence float64

	// FitTolerance is the fractional width excess tolerated before a
	// render-overflow warning.
	FitTolerance float64

	// StageTimeout bounds each OCR and inpainting call.
	StageTimeout time.Duration

	// Format is the default export format.
	Format string
}

// Load reads configuration from TEXTMEND_* environment variables, first
// loading a .env file if one exists.
func Load() (*Config, error) {
	// Ignore a missing .env; the environment may be set by the host.
	_ = godotenv.Load()

	cfg := &Config{
		FontsDir:      getEnv("TEXTMEND_FONTS_DIR", "fonts"),
		Language:      getEnv("TEXTMEND_OCR_LANGUAGE", DefaultLanguage),
		MinConfidence: DefaultMinConfidence,
		FitTolerance:  DefaultFitTolerance,
		StageTimeout:  DefaultStageTimeout,
		Format:        getEnv("TEXTMEND_EXPORT_FORMAT", DefaultFormat),
	}

	if v := os.Getenv("TEXTMEND_MIN_CONFIDENCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return nil, fmt.Errorf("invalid TEXTMEND_MIN_CONFIDENCE %q", v)
		}
		cfg.MinConfidence = f
	}
	if v := os.Getenv("TEXTMEND_FIT_TOLERANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("invalid TEXTMEND_FIT_TOLERANCE %q", v)
		}
		cfg.FitTolerance = f
	}
	if v := os.Getenv("TEXTMEND_STAGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid TEXTMEND_STAGE_TIMEOUT %q", v)
		}
		cfg.StageTimeout = d
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
