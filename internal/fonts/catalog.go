// Package fonts manages the small fixed catalog of font files supplied by
// the hosting environment and exposes the metric helpers the classifier and
// renderer share.
package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// HangulInkRatio is the typical ratio between the ink height of a Hangul
// syllable block and the nominal point size. Gothic-style Korean fonts fill
// roughly 72% of the em square vertically, so a measured glyph-box height h
// corresponds to a point size of about h / HangulInkRatio.
const HangulInkRatio = 0.72

// DefaultFamily is used whenever classification cannot name a candidate and
// no operator override is supplied.
const DefaultFamily = "Noto Sans KR"

// Catalog maps font family names to font files and caches parsed fonts.
// It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	families map[string]string
	parsed   map[string]*truetype.Font
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		families: make(map[string]string),
		parsed:   make(map[string]*truetype.Font),
	}
}

// Register associates a family name with a font file path. Registering an
// existing family replaces its path and drops any cached parse.
func (c *Catalog) Register(family, path string) {
	c.mu.Lock()
	c.families[family] = path
	delete(c.parsed, family)
	c.mu.Unlock()
}

// Scan registers every .ttf and .otf file in dir, deriving the family name
// from the file name: "NotoSansKR-Regular.ttf" becomes "NotoSansKR Regular".
func (c *Catalog) Scan(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read fonts directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		family := strings.ReplaceAll(base, "-", " ")
		c.Register(family, filepath.Join(dir, e.Name()))
	}
	return nil
}

// Families returns the registered family names in sorted order.
func (c *Catalog) Families() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.families))
	for name := range c.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load parses the font file registered for family, caching the result.
// An unknown family falls back to any registered family so a missing
// candidate never blocks rendering; an empty catalog is an error.
func (c *Catalog) Load(family string) (*truetype.Font, error) {
	c.mu.RLock()
	if f, ok := c.parsed[family]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	path, ok := c.families[family]
	c.mu.RUnlock()

	if !ok {
		families := c.Families()
		if len(families) == 0 {
			return nil, fmt.Errorf("font catalog is empty, cannot resolve %q", family)
		}
		// Fall back to the first registered family.
		return c.Load(families[0])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %q: %w", family, err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %q: %w", family, err)
	}

	c.mu.Lock()
	c.parsed[family] = f
	c.mu.Unlock()
	return f, nil
}

// Face returns a rasterization face for the family at the given point size.
// Hinting is disabled so output depends only on the font and size.
func (c *Catalog) Face(family string, size float64) (font.Face, error) {
	f, err := c.Load(family)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// MeasureString returns the advance width in pixels of text rendered with
// the family at the given point size.
func (c *Catalog) MeasureString(family string, size float64, text string) (float64, error) {
	face, err := c.Face(family, size)
	if err != nil {
		return 0, err
	}
	defer face.Close()
	adv := font.MeasureString(face, text)
	return float64(adv) / 64.0, nil
}
