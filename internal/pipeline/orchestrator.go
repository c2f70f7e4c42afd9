// Package pipeline drives staffing extraction through a tiered fallback:
// native structured extraction first, then full-page render OCR, then OCR of
// embedded images. Each tier is best effort; tier failures are logged and the
// next tier runs. Only an unsupported input format is fatal.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"runtime"
	"sync"

	"github.com/staffingtools/sow-extractor/constants"
	"github.com/staffingtools/sow-extractor/internal/allocation"
	"github.com/staffingtools/sow-extractor/internal/layout"
	"github.com/staffingtools/sow-extractor/internal/ocr"
	"github.com/staffingtools/sow-extractor/internal/render"
	"github.com/staffingtools/sow-extractor/internal/source"
	"github.com/staffingtools/sow-extractor/internal/staffing"
	"github.com/staffingtools/sow-extractor/internal/tabular"
)

// ErrUnsupportedFormat is the only error Extract treats as fatal. Everything
// else degrades to the next tier or to an empty result.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Tier identifies which extraction stage produced the result.
type Tier string

const (
	TierNone        Tier = "none"
	TierNative      Tier = "native"
	TierRenderOCR   Tier = "render_ocr"
	TierEmbeddedOCR Tier = "embedded_image_ocr"
)

// Sourcer provides native structured extraction.
type Sourcer interface {
	ExtractNative(ctx context.Context, path, format string) (source.Native, error)
}

// Rasterizer provides page renders and embedded image objects for the OCR
// tiers.
type Rasterizer interface {
	RenderPages(ctx context.Context, pdfPath string, maxPages int) ([]image.Image, error)
	ExtractEmbeddedImages(ctx context.Context, pdfPath string, maxPages int) ([]render.Embedded, error)
}

// Recognizer provides word-level OCR and the anchor-based crop heuristic.
type Recognizer interface {
	Tokens(ctx context.Context, img image.Image) ([]ocr.Token, error)
	CropBelowAnchor(ctx context.Context, img image.Image, anchor *regexp.Regexp) image.Image
}

type Config struct {
	MaxPages       int     // 0 -> render.DefaultMaxPages
	FTEYearlyHours float64 // 0 -> allocation.DefaultFTEYearlyHours
	Layout         layout.Options
	Workers        int // concurrent page OCR; 0 -> runtime.NumCPU()
}

// Orchestrator runs the tiered extraction state machine. The rasterizer and
// recognizer are optional: a nil collaborator disables the tiers that need
// it, so a deployment without poppler or tesseract still serves native
// extraction.
type Orchestrator struct {
	cfg        Config
	source     Sourcer
	rasterizer Rasterizer
	recognizer Recognizer
	norm       allocation.Normalizer
	logger     *slog.Logger
}

// Extraction is the pipeline output: the normalized staffing result plus the
// tier that produced it.
type Extraction struct {
	Tier Tier
	staffing.Result
}

func NewOrchestrator(cfg Config, src Sourcer, ras Rasterizer, rec Recognizer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = render.DefaultMaxPages
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Layout == (layout.Options{}) {
		cfg.Layout = layout.DefaultOptions()
	}
	return &Orchestrator{
		cfg:        cfg,
		source:     src,
		rasterizer: ras,
		recognizer: rec,
		norm:       allocation.NewNormalizer(cfg.FTEYearlyHours),
		logger:     logger,
	}
}

// Extract runs the document through the tiers in order and stops at the
// first tier that yields entries. When several tiers were attempted the one
// with strictly more entries wins; ties keep the earlier tier. A document
// where no tier yields anything still produces a well formed empty result.
func (o *Orchestrator) Extract(ctx context.Context, path, format string) (Extraction, error) {
	mapped := constants.MapExtToFormat(format)
	if mapped == "" {
		return Extraction{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	format = mapped

	best := Extraction{Tier: TierNone}
	consider := func(tier Tier, entries []staffing.Entry) {
		if len(entries) > len(best.Entries) {
			best = Extraction{Tier: tier, Result: staffing.NewResult(entries, o.norm.Basis())}
		}
	}

	entries, native := o.runNative(ctx, path, format)
	consider(TierNative, entries)
	if len(best.Entries) > 0 {
		return best, nil
	}

	// OCR tiers apply to PDFs only; DOCX has no page raster to recognize.
	if format != constants.PDF || o.rasterizer == nil || o.recognizer == nil {
		return o.finish(best), nil
	}
	if native.Sufficient() {
		o.logger.Debug("native text sufficient but no staffing entries, trying OCR anyway",
			"path", path)
	}

	if err := ctx.Err(); err != nil {
		return o.finish(best), nil
	}
	consider(TierRenderOCR, o.runRenderOCR(ctx, path))
	if len(best.Entries) > 0 {
		return best, nil
	}

	if err := ctx.Err(); err != nil {
		return o.finish(best), nil
	}
	consider(TierEmbeddedOCR, o.runEmbeddedOCR(ctx, path))

	return o.finish(best), nil
}

// finish guarantees callers always get a well formed result, even when every
// tier came up empty.
func (o *Orchestrator) finish(e Extraction) Extraction {
	if len(e.Entries) == 0 {
		e.Result = staffing.NewResult(nil, o.norm.Basis())
	}
	return e
}

// runNative parses tables the document format exposes directly.
func (o *Orchestrator) runNative(ctx context.Context, path, format string) ([]staffing.Entry, source.Native) {
	if o.source == nil {
		return nil, source.Native{}
	}
	native, err := o.source.ExtractNative(ctx, path, format)
	if err != nil {
		o.logger.Warn("native extraction failed, falling back to OCR",
			"path", path, "error", err)
		return nil, source.Native{}
	}

	var entries []staffing.Entry
	for i, tbl := range native.Tables {
		entries = append(entries, o.parseMatrix(tbl.Matrix, tbl.Page, i+1)...)
	}
	o.logger.Info("native tier complete",
		"path", path, "tables", len(native.Tables), "entries", len(entries),
		"text_chars", len(native.Text))
	return entries, native
}

// runRenderOCR rasterizes pages and recognizes each one concurrently,
// bounded by cfg.Workers. Per-page results merge back in page order so
// output is deterministic regardless of scheduling.
func (o *Orchestrator) runRenderOCR(ctx context.Context, path string) []staffing.Entry {
	pages, err := o.rasterizer.RenderPages(ctx, path, o.cfg.MaxPages)
	if err != nil {
		o.logger.Warn("page rendering failed, skipping render OCR tier",
			"path", path, "error", err)
		return nil
	}

	perPage := make([][]staffing.Entry, len(pages))
	sem := make(chan struct{}, o.cfg.Workers)
	var wg sync.WaitGroup
	for i, img := range pages {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, img image.Image) {
			defer wg.Done()
			defer func() { <-sem }()
			perPage[i] = o.recognizeTable(ctx, img, i+1)
		}(i, img)
	}
	wg.Wait()

	var entries []staffing.Entry
	for _, pe := range perPage {
		entries = append(entries, pe...)
	}
	o.logger.Info("render OCR tier complete",
		"path", path, "pages", len(pages), "entries", len(entries))
	return entries
}

// runEmbeddedOCR recognizes image objects embedded in the PDF. SOWs often
// carry the staffing table as a pasted screenshot that page text never sees.
func (o *Orchestrator) runEmbeddedOCR(ctx context.Context, path string) []staffing.Entry {
	imgs, err := o.rasterizer.ExtractEmbeddedImages(ctx, path, o.cfg.MaxPages)
	if err != nil {
		o.logger.Warn("embedded image extraction failed, skipping tier",
			"path", path, "error", err)
		return nil
	}

	perImage := make([][]staffing.Entry, len(imgs))
	sem := make(chan struct{}, o.cfg.Workers)
	var wg sync.WaitGroup
	for i, emb := range imgs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, emb render.Embedded) {
			defer wg.Done()
			defer func() { <-sem }()
			perImage[i] = o.recognizeTable(ctx, emb.Image, emb.Page)
		}(i, emb)
	}
	wg.Wait()

	var entries []staffing.Entry
	for _, pe := range perImage {
		entries = append(entries, pe...)
	}
	o.logger.Info("embedded image OCR tier complete",
		"path", path, "images", len(imgs), "entries", len(entries))
	return entries
}

// recognizeTable OCRs one image and parses any staffing table found in it.
// The full image goes first; if it yields nothing, the anchor-cropped
// variant gets a second pass since shrinking the region often rescues noisy
// full-page recognition.
func (o *Orchestrator) recognizeTable(ctx context.Context, img image.Image, page int) []staffing.Entry {
	variants := []image.Image{img}
	if cropped := o.recognizer.CropBelowAnchor(ctx, img, nil); cropped != nil && cropped != img {
		variants = append(variants, cropped)
	}

	for _, v := range variants {
		tokens, err := o.recognizer.Tokens(ctx, v)
		if err != nil {
			o.logger.Warn("OCR failed for image variant", "page", page, "error", err)
			continue
		}
		lines := layout.ReconstructLines(tokens, o.cfg.Layout)
		if len(lines) == 0 {
			continue
		}
		headerLine := tabular.FindStaffingHeaderLine(lines)
		m := tabular.MatrixFromLines(lines[headerLine:])
		if entries := o.parseMatrix(m, page, 1); len(entries) > 0 {
			return entries
		}
	}
	return nil
}

// parseMatrix canonicalizes a table's header and parses its data rows into
// entries. Single-row matrices carry no data and parse to nothing.
func (o *Orchestrator) parseMatrix(m tabular.Matrix, page, tableIndex int) []staffing.Entry {
	if len(m) < 2 {
		return nil
	}
	headerIdx := tabular.DetectHeaderRow(m)
	headers := tabular.CanonicalHeaders(m, headerIdx)
	return tabular.ParseRows(m, headerIdx, headers, o.norm, page, tableIndex)
}
