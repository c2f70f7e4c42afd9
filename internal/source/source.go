// Package source extracts native text and structured tables from SOW
// documents without rendering or OCR: DOCX table objects directly, PDF text
// through poppler's layout-preserving extraction.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/staffingtools/sow-extractor/constants"
	"github.com/staffingtools/sow-extractor/internal/execrun"
	"github.com/staffingtools/sow-extractor/internal/tabular"
)

// MinNativeTextChars is the text yield below which native extraction is
// considered insufficient and the pipeline moves on to rendering.
const MinNativeTextChars = 500

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
}

// Table is one native table together with the page it was found on.
type Table struct {
	Page   int
	Matrix tabular.Matrix
}

// Native is the result of structure-preserving extraction.
type Native struct {
	Text   string
	Pages  int
	Tables []Table
}

// Sufficient reports whether the text yield clears the minimum threshold.
// Image-only PDFs land well under it.
func (n Native) Sufficient() bool {
	return len(strings.TrimSpace(n.Text)) >= MinNativeTextChars
}

// Adapter extracts text and tables from document files.
type Adapter struct {
	cfg    Config
	runner execrun.Runner
	logger *slog.Logger
}

func NewAdapter(cfg Config, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Adapter{cfg: cfg, runner: execrun.Exec{Logger: logger}, logger: logger}
}

// WithRunner swaps the command runner. Tests use this to avoid invoking
// pdftotext.
func (a *Adapter) WithRunner(r execrun.Runner) *Adapter {
	a.runner = r
	return a
}

// ExtractNative returns paragraph text and any structured tables the format
// exposes directly. Pure transformation of the file contents; no rendering
// or OCR is involved.
func (a *Adapter) ExtractNative(ctx context.Context, path, format string) (Native, error) {
	switch format {
	case constants.DOCX:
		text, matrices, err := parseDocx(path)
		if err != nil {
			return Native{}, err
		}
		tables := make([]Table, 0, len(matrices))
		for _, m := range matrices {
			tables = append(tables, Table{Page: 1, Matrix: m})
		}
		return Native{Text: text, Pages: 1, Tables: tables}, nil
	case constants.PDF:
		text, pages, err := a.pdfText(ctx, path)
		if err != nil {
			return Native{}, err
		}
		var tables []Table
		for i, pageText := range strings.Split(text, "\f") {
			for _, m := range recoverLayoutTables(pageText) {
				tables = append(tables, Table{Page: i + 1, Matrix: m})
			}
		}
		return Native{Text: text, Pages: pages, Tables: tables}, nil
	default:
		return Native{}, fmt.Errorf("unsupported format: %q", format)
	}
}
