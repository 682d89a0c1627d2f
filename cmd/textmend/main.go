package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/haneul-lab/textmend/internal/compose"
	"github.com/haneul-lab/textmend/internal/config"
	"github.com/haneul-lab/textmend/internal/extract"
	"github.com/haneul-lab/textmend/internal/fonts"
	"github.com/haneul-lab/textmend/internal/pipeline"
	"github.com/haneul-lab/textmend/internal/raster"
	"github.com/haneul-lab/textmend/internal/region"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("textmend %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	// Configure logging to stderr (stdout stays clean for scripting)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if os.Getenv("TEXTMEND_LOG_LEVEL") == "debug" {
		log.Printf("textmend v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("textmend: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("textmend", flag.ExitOnError)
	var (
		inPath     = fs.String("in", "", "source image (png, jpeg, or gif)")
		outPath    = fs.String("out", "", "output image path")
		regionSpec = fs.String("region", "", "correction region as x,y,w,h")
		text       = fs.String("text", "", "corrected text (use \\n for line breaks)")
		fontFamily = fs.String("font", "", "override the inferred font family")
		pointSize  = fs.Float64("size", 0, "override the inferred point size")
		hScale     = fs.Float64("scale", 0, "override the inferred horizontal scale")
		fillColor  = fs.String("color", "", "override the inferred ink color as #rrggbb")
		format     = fs.String("format", "", "export format: png or jpeg")
		auditPath  = fs.String("audit", "", "write the correction record as JSON to this path")
		suggest    = fs.Bool("suggest", false, "print likely text regions as JSON and exit")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "textmend - corrects text inside a marked region of a raster image")
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Usage: textmend -in src.png -region x,y,w,h -text \"corrected\" -out fixed.png")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Environment variables (TEXTMEND_*):")
		fmt.Fprintln(fs.Output(), "  TEXTMEND_FONTS_DIR        font catalog directory (default \"fonts\")")
		fmt.Fprintln(fs.Output(), "  TEXTMEND_OCR_LANGUAGE     Tesseract language spec (default \"kor+eng\")")
		fmt.Fprintln(fs.Output(), "  TEXTMEND_MIN_CONFIDENCE   extraction warning floor (default 0.5)")
		fmt.Fprintln(fs.Output(), "  TEXTMEND_FIT_TOLERANCE    overflow width tolerance (default 0.05)")
		fmt.Fprintln(fs.Output(), "  TEXTMEND_STAGE_TIMEOUT    per-stage timeout (default 30s)")
		fmt.Fprintln(fs.Output(), "  TEXTMEND_EXPORT_FORMAT    default export format (default \"png\")")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *inPath == "" {
		fs.Usage()
		return fmt.Errorf("-in is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cache := raster.NewImageCache()
	src, err := cache.Load(*inPath)
	if err != nil {
		return err
	}

	if *suggest {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(region.Suggest(src, cfg.MinConfidence))
	}

	if *outPath == "" || *regionSpec == "" {
		fs.Usage()
		return fmt.Errorf("-out and -region are required")
	}

	reg, err := parseRegion(*regionSpec)
	if err != nil {
		return err
	}

	catalog := fonts.NewCatalog()
	if err := catalog.Scan(cfg.FontsDir); err != nil {
		return fmt.Errorf("font catalog: %w", err)
	}

	session := pipeline.NewSession(src, extract.NewTesseractEngine(cfg.Language), catalog)
	session.MinConfidence = cfg.MinConfidence
	session.StageTimeout = cfg.StageTimeout
	session.Renderer.FitTolerance = cfg.FitTolerance

	override, err := buildOverride(*fontFamily, *pointSize, *hScale, *fillColor)
	if err != nil {
		return err
	}

	out, err := session.Correct(context.Background(), pipeline.Request{
		Region:        reg,
		CorrectedText: strings.ReplaceAll(*text, `\n`, "\n"),
		Override:      override,
	})
	if err != nil {
		return err
	}
	for _, w := range out.Warnings {
		log.Printf("warning: %s", w)
	}

	exportFormat := *format
	if exportFormat == "" {
		exportFormat = cfg.Format
	}
	f, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := compose.Export(f, out.Image, exportFormat); err != nil {
		return err
	}

	if *auditPath != "" {
		af, err := os.Create(*auditPath)
		if err != nil {
			return err
		}
		defer af.Close()
		if err := out.Record.WriteJSON(af); err != nil {
			return err
		}
	}

	log.Printf("corrected %q -> %q in region %d,%d %dx%d",
		out.Extracted.Text, *text, reg.X, reg.Y, reg.Width, reg.Height)
	return nil
}

// parseRegion parses the x,y,w,h region flag.
func parseRegion(spec string) (region.Region, error) {
	var r region.Region
	n, err := fmt.Sscanf(spec, "%d,%d,%d,%d", &r.X, &r.Y, &r.Width, &r.Height)
	if err != nil || n != 4 {
		return r, fmt.Errorf("invalid region %q, want x,y,w,h", spec)
	}
	return r, nil
}

func buildOverride(family string, size, scale float64, hexColor string) (*pipeline.Override, error) {
	if family == "" && size == 0 && scale == 0 && hexColor == "" {
		return nil, nil
	}
	o := &pipeline.Override{
		FontFamily:      family,
		PointSize:       size,
		HorizontalScale: scale,
	}
	if hexColor != "" {
		c, err := parseHexColor(hexColor)
		if err != nil {
			return nil, err
		}
		o.FillColor = &c
	}
	return o, nil
}

func parseHexColor(s string) (raster.RGB, error) {
	var c raster.RGB
	n, err := fmt.Sscanf(strings.ToLower(s), "#%02x%02x%02x", &c.R, &c.G, &c.B)
	if err != nil || n != 3 {
		return c, fmt.Errorf("invalid color %q, want #rrggbb", s)
	}
	return c, nil
}
