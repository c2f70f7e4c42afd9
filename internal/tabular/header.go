package tabular

import (
	"regexp"
	"strings"
)

// Canonical header fields. A raw header cell maps to at most one of these;
// anything unmapped stays as its lowercase raw text and is not treated as a
// defined field.
const (
	FieldName        = "name"
	FieldRole        = "role"
	FieldPrimaryRole = "primary_role"
	FieldLevel       = "level"
	FieldLocation    = "location"
	FieldWorkstream  = "workstream"
	FieldPercentage  = "percentage"
	FieldHours       = "hours"
)

var (
	reTitleHeader = regexp.MustCompile(`(?i)name|title|role|personnel`)
	reAllocHeader = regexp.MustCompile(`(?i)hours|%\s*time|fte|allocation`)
	reNumericCell = regexp.MustCompile(`^\d{1,4}(?:[.,]\d+)?$`)
)

// CanonicalizeHeader maps one raw header cell onto the canonical vocabulary,
// by keyword priority. "Billable hours per annum" deliberately does not map
// to hours: it is an annual capacity figure, not an allocation.
func CanonicalizeHeader(cell string) string {
	h := strings.ToLower(strings.TrimSpace(cell))
	h = reWS.ReplaceAllString(h, " ")
	switch {
	case containsAny(h, "name", "personnel", "staff"):
		return FieldName
	case containsAny(h, "title", "role", "position"):
		if strings.Contains(h, "primary role") {
			return FieldPrimaryRole
		}
		return FieldRole
	case strings.Contains(h, "%") || strings.Contains(h, "percent"):
		return FieldPercentage
	case strings.Trim(h, " #") == "hours" || strings.Contains(h, "# hours"):
		return FieldHours
	case strings.Contains(h, "billable hours per annum"):
		return "bhpa"
	case strings.Contains(h, "hour"):
		return FieldHours
	case strings.Contains(h, "location"):
		return FieldLocation
	case strings.Contains(h, "level"):
		return FieldLevel
	case containsAny(h, "workstream", "discipline", "department"):
		return FieldWorkstream
	default:
		return h
	}
}

// DetectHeaderRow scores the first up-to-3 rows by staffing keyword hits and
// returns the index of the best one. This recovers tables where OCR left a
// spurious partial line above the real header. Ties keep the earlier row.
func DetectHeaderRow(m Matrix) int {
	limit := len(m)
	if limit > 3 {
		limit = 3
	}
	best, bestScore := 0, scoreHeaderRow(m[0])
	for i := 1; i < limit; i++ {
		if s := scoreHeaderRow(m[i]); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

func scoreHeaderRow(row []string) int {
	score := 0
	for _, cell := range row {
		t := strings.ToLower(strings.TrimSpace(cell))
		if containsAny(t, "name", "personnel", "staff") {
			score += 3
		}
		if containsAny(t, "title", "role", "position") {
			score += 3
		}
		if strings.Contains(t, "level") {
			score++
		}
		if strings.Contains(t, "%") || strings.Contains(t, "percent") {
			score += 2
		}
		if strings.Contains(t, "# hours") || strings.Trim(t, " #") == "hours" {
			score += 3
		}
	}
	return score
}

// CanonicalHeaders canonicalizes the header row at headerIdx. Blank header
// cells get their semantic role inferred from up to 5 data rows below: a "%"
// anywhere makes the column percentage, pure numerics make it hours.
func CanonicalHeaders(m Matrix, headerIdx int) []string {
	headers := make([]string, len(m[headerIdx]))
	for i, cell := range m[headerIdx] {
		headers[i] = CanonicalizeHeader(cell)
	}

	for c := range headers {
		if headers[c] != "" {
			continue
		}
		var samples []string
		for r := headerIdx + 1; r < len(m) && r <= headerIdx+5; r++ {
			if c < len(m[r]) {
				samples = append(samples, strings.TrimSpace(m[r][c]))
			}
		}
		headers[c] = inferBlankHeader(samples)
	}
	return headers
}

func inferBlankHeader(samples []string) string {
	for _, v := range samples {
		if strings.Contains(v, "%") {
			return FieldPercentage
		}
	}
	for _, v := range samples {
		if v == "" {
			continue
		}
		if reNumericCell.MatchString(strings.ReplaceAll(v, ",", "")) {
			return FieldHours
		}
	}
	return ""
}

// LooksLikeStaffingHeader reports whether a header row carries both a
// title-ish and an allocation-ish column, the minimum for a staffing table.
func LooksLikeStaffingHeader(cells []string) bool {
	var hasTitle, hasAlloc bool
	for _, c := range cells {
		if reTitleHeader.MatchString(c) {
			hasTitle = true
		}
		if reAllocHeader.MatchString(c) {
			hasAlloc = true
		}
	}
	return hasTitle && hasAlloc
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
