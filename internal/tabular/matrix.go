// Package tabular turns raw table matrices (native cells or gap-reconstructed
// OCR lines) into typed staffing entries via header canonicalization.
package tabular

import (
	"regexp"
	"strings"
)

// Matrix is a rectangular rows-by-columns table with "" for missing cells.
// Every row has the same column count and cells never contain newlines.
type Matrix [][]string

var reWS = regexp.MustCompile(`\s+`)

// NewMatrix builds a Matrix from raw rows, trimming cells, collapsing any
// embedded newlines into spaces, and padding short rows to the widest width.
func NewMatrix(rows [][]string) Matrix {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if width == 0 {
		return nil
	}
	m := make(Matrix, 0, len(rows))
	for _, r := range rows {
		row := make([]string, width)
		for i, cell := range r {
			row[i] = strings.TrimSpace(reWS.ReplaceAllString(cell, " "))
		}
		m = append(m, row)
	}
	return m
}

// MatrixFromLines builds a Matrix out of reconstructed pseudo-rows, splitting
// each on the "|" column separators inserted during gap reconstruction.
func MatrixFromLines(lines []string) Matrix {
	rows := make([][]string, 0, len(lines))
	for _, ln := range lines {
		cells := strings.Split(ln, "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, cells)
	}
	return NewMatrix(rows)
}

// FindStaffingHeaderLine scans the first few reconstructed lines for one that
// looks like a staffing table header (a title-ish and an allocation-ish
// column). Returns 0 when nothing qualifies, treating the first line as the
// header by default.
func FindStaffingHeaderLine(lines []string) int {
	limit := len(lines)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		cells := strings.Split(lines[i], "|")
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		if LooksLikeStaffingHeader(cells) {
			return i
		}
	}
	return 0
}
