// Package ocr shells out to tesseract and returns word-level tokens with
// bounding boxes, the raw material for tabular column reconstruction.
package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/staffingtools/sow-extractor/internal/execrun"
)

// ConfidenceFloor is the tesseract word confidence below which tokens are
// discarded before reconstruction. Empirically tuned; treat as a parameter,
// not a constant to re-derive.
const ConfidenceFloor = 20

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang        string // default "eng"
	PSM         int    // page segmentation mode; default 6 (uniform block of text)
	OEM         int    // 1 = LSTM; leave 0 to use tesseract's default
	TessdataDir string
}

// Engine runs OCR over in-memory images.
type Engine struct {
	cfg    Config
	runner execrun.Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.PSM == 0 {
		cfg.PSM = 6
	}
	return &Engine{cfg: cfg, runner: execrun.Exec{Logger: logger}, logger: logger}
}

// WithRunner swaps the command runner. Tests use this to avoid invoking
// tesseract.
func (e *Engine) WithRunner(r execrun.Runner) *Engine {
	e.runner = r
	return e
}

// Tokens OCRs one image and returns word tokens with positions and
// confidence. Empty-text rows are already filtered; callers apply
// ConfidenceFloor themselves.
func (e *Engine) Tokens(ctx context.Context, img image.Image) ([]Token, error) {
	tmpDir, err := os.MkdirTemp("", "sow-ocr-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", rmErr)
		}
	}()

	path := filepath.Join(tmpDir, "page.png")
	if err := writePNG(path, img); err != nil {
		return nil, fmt.Errorf("write ocr input: %w", err)
	}

	args := []string{path, "stdout", "-l", e.cfg.Lang, "--psm", fmt.Sprintf("%d", e.cfg.PSM)}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w (stderr: %s)", err, errb)
	}
	return parseTSV(string(out)), nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
