package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"TEXTMEND_FONTS_DIR", "TEXTMEND_OCR_LANGUAGE", "TEXTMEND_MIN_CONFIDENCE",
		"TEXTMEND_FIT_TOLERANCE", "TEXTMEND_STAGE_TIMEOUT", "TEXTMEND_EXPORT_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Language != DefaultLanguage {
		t.Errorf("Language = %q, want %q", cfg.Language, DefaultLanguage)
	}
	if cfg.MinConfidence != DefaultMinConfidence {
		t.Errorf("MinConfidence = %v, want %v", cfg.MinConfidence, DefaultMinConfidence)
	}
	if cfg.StageTimeout != DefaultStageTimeout {
		t.Errorf("StageTimeout = %v, want %v", cfg.StageTimeout, DefaultStageTimeout)
	}
	if cfg.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", cfg.Format, DefaultFormat)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TEXTMEND_FONTS_DIR", "/opt/fonts")
	t.Setenv("TEXTMEND_OCR_LANGUAGE", "kor")
	t.Setenv("TEXTMEND_MIN_CONFIDENCE", "0.75")
	t.Setenv("TEXTMEND_STAGE_TIMEOUT", "10s")
	t.Setenv("TEXTMEND_EXPORT_FORMAT", "jpeg")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.FontsDir != "/opt/fonts" {
		t.Errorf("FontsDir = %q", cfg.FontsDir)
	}
	if cfg.Language != "kor" {
		t.Errorf("Language = %q", cfg.Language)
	}
	if cfg.MinConfidence != 0.75 {
		t.Errorf("MinConfidence = %v", cfg.MinConfidence)
	}
	if cfg.StageTimeout != 10*time.Second {
		t.Errorf("StageTimeout = %v", cfg.StageTimeout)
	}
	if cfg.Format != "jpeg" {
		t.Errorf("Format = %q", cfg.Format)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"TEXTMEND_MIN_CONFIDENCE", "1.5"},
		{"TEXTMEND_MIN_CONFIDENCE", "abc"},
		{"TEXTMEND_FIT_TOLERANCE", "-0.1"},
		{"TEXTMEND_STAGE_TIMEOUT", "0s"},
		{"TEXTMEND_STAGE_TIMEOUT", "soon"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%s succeeded, want error", tc.key, tc.value)
			} else if !strings.Contains(err.Error(), tc.key) {
				t.Errorf("error %q does not name %s", err, tc.key)
			}
		})
	}
}
