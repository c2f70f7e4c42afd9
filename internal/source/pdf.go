package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/staffingtools/sow-extractor/internal/tabular"
)

var reColumnGap = regexp.MustCompile(`\s{2,}`)

// pdfText extracts layout-preserving text via pdftotext. Pages are separated
// by form feeds in the output.
func (a *Adapter) pdfText(ctx context.Context, path string) (string, int, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := a.runner.Run(ctx, a.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, fmt.Errorf("pdftotext: %w (stderr: %s)", err, errb)
	}
	text := string(out)
	pages := 1 + strings.Count(text, "\f")
	return text, pages, nil
}

// recoverLayoutTables mines pdftotext -layout output for tabular regions:
// runs of consecutive lines that split into two or more columns on wide
// whitespace. A run qualifies as a table when it is at least two lines deep
// and its first line looks like a staffing header or any of its lines carry
// tabular keywords.
func recoverLayoutTables(pageText string) []tabular.Matrix {
	var (
		tables []tabular.Matrix
		run    [][]string
	)
	flush := func() {
		if len(run) >= 2 && runLooksTabular(run) {
			if m := tabular.NewMatrix(run); m != nil {
				tables = append(tables, m)
			}
		}
		run = nil
	}

	for _, line := range strings.Split(pageText, "\n") {
		cells := reColumnGap.Split(strings.TrimSpace(line), -1)
		if len(cells) >= 2 {
			run = append(run, cells)
			continue
		}
		flush()
	}
	flush()
	return tables
}

// runLooksTabular requires some row (normally the header) to carry both a
// title-ish and an allocation-ish cell, so prose laid out in columns does
// not get mistaken for a staffing table.
func runLooksTabular(run [][]string) bool {
	for _, row := range run {
		if tabular.LooksLikeStaffingHeader(row) {
			return true
		}
	}
	return false
}
