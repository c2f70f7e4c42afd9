// Package render turns PDF pages and embedded PDF images into preprocessed
// raster images ready for OCR. Rendering shells out to pdftoppm; embedded
// images come out through pdfcpu. Both paths fail soft: a missing tool or a
// broken document yields no images, never a hard error for the pipeline.
package render

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/staffingtools/sow-extractor/internal/execrun"
)

// DefaultMaxPages caps per-document page processing to bound OCR latency.
const DefaultMaxPages = 10

type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // rasterization DPI; default 600 to keep small table text legible
	MaxPages int    // 0 -> DefaultMaxPages
}

// Renderer rasterizes PDF pages for OCR.
type Renderer struct {
	cfg    Config
	runner execrun.Runner
	logger *slog.Logger
}

func NewRenderer(cfg Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 600
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	return &Renderer{cfg: cfg, runner: execrun.Exec{Logger: logger}, logger: logger}
}

// WithRunner swaps the command runner. Tests use this to avoid invoking
// pdftoppm.
func (r *Renderer) WithRunner(run execrun.Runner) *Renderer {
	r.runner = run
	return r
}

// RenderPages rasterizes up to maxPages pages (0 means the configured cap)
// and applies the OCR preprocessing chain to each. Page order is preserved.
func (r *Renderer) RenderPages(ctx context.Context, pdfPath string, maxPages int) ([]image.Image, error) {
	if maxPages <= 0 {
		maxPages = r.cfg.MaxPages
	}

	tmpDir, err := os.MkdirTemp("", "sow-render-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			r.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png -f 1 -l <maxPages> <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm,
		"-r", fmt.Sprintf("%d", r.cfg.DPI),
		"-png",
		"-f", "1",
		"-l", fmt.Sprintf("%d", maxPages),
		pdfPath, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (stderr: %s)", err, errb)
	}

	// pdftoppm writes prefix-1.png, prefix-2.png, ... zero-padded per count.
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) > maxPages {
		matches = matches[:maxPages]
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}

	pages := make([]image.Image, 0, len(matches))
	for _, path := range matches {
		img, err := imaging.Open(path)
		if err != nil {
			r.logger.Warn("skipping unreadable page image", "path", path, "error", err)
			continue
		}
		pages = append(pages, Preprocess(img))
	}
	return pages, nil
}
