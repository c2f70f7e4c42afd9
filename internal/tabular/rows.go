package tabular

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/staffingtools/sow-extractor/internal/allocation"
	"github.com/staffingtools/sow-extractor/internal/staffing"
)

var (
	rePctValue    = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*%`)
	reFTEValue    = regexp.MustCompile(`(?i)(\d(?:\.\d+)?)\s*fte`)
	reHoursValue  = regexp.MustCompile(`(?i)(\d{1,4}(?:\.\d+)?)\s*(?:hours|hrs|hr)\b`)
	reBareNumeric = regexp.MustCompile(`^\d{1,4}(?:\.\d+)?$`)
	// OCR sometimes renders a 4-digit hour figure with a stray decimal point
	// every three digits, e.g. "1.800".
	reDottedThousands = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	reTotalRow        = regexp.MustCompile(`(?i)^total\b`)
	reRedactedName    = regexp.MustCompile(`(?i)^\[?\s*(blacked\s*out|redacted)\s*\]?$`)
)

// ParseRows converts the data rows of a matrix into staffing entries using
// the canonical header map. Blank rows and totals/summary rows are skipped;
// rows where neither a percentage nor hours can be recovered are dropped.
func ParseRows(m Matrix, headerIdx int, headers []string, norm allocation.Normalizer, page, tableIndex int) []staffing.Entry {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	get := func(field string, row []string) string {
		j, ok := idx[field]
		if !ok || j >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[j])
	}

	rawHeaders := m[headerIdx]
	var entries []staffing.Entry
	for offset, row := range m[headerIdx+1:] {
		if blankRow(row) || totalsRow(row) {
			continue
		}

		name := get(FieldName, row)
		if name == "" || reRedactedName.MatchString(name) {
			// Covers redacted personnel tables, which occur in practice.
			name = "N/A"
		}
		role := get(FieldRole, row)
		primaryRole := get(FieldPrimaryRole, row)

		pctText := get(FieldPercentage, row)
		hoursText := get(FieldHours, row)
		pct := extractPercentage(pctText)
		hours := extractHours(cleanHoursText(hoursText))

		// Cross-fill from the other cell before giving up: OCR column
		// splits routinely land a value in its neighbor.
		if pct == nil && hoursText != "" {
			pct = extractPercentage(hoursText)
		}
		if hours == nil && pctText != "" {
			hours = extractHours(cleanHoursText(pctText))
		}
		if pct == nil && hours == nil {
			continue
		}

		if reTotalRow.MatchString(strings.ToLower(firstNonEmpty(name, role, primaryRole))) {
			continue
		}

		alloc := norm.Reconcile(allocation.Allocation{Hours: hours, Percentage: pct})

		rawRow := make(map[string]string, len(rawHeaders))
		for i, h := range rawHeaders {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			rawRow[strings.TrimSpace(h)] = v
		}

		entries = append(entries, staffing.Entry{
			Name:        name,
			Role:        firstNonEmpty(role, primaryRole),
			PrimaryRole: primaryRole,
			Level:       get(FieldLevel, row),
			Workstream:  get(FieldWorkstream, row),
			Location:    get(FieldLocation, row),
			Percentage:  alloc.Percentage,
			Hours:       alloc.Hours,
			Provenance: staffing.Provenance{
				Page:       page,
				TableIndex: tableIndex,
				RowIndex:   offset + 1,
				RawRow:     rawRow,
			},
		})
	}
	return entries
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func totalsRow(row []string) bool {
	for _, cell := range row {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(cell)), "total") {
			return true
		}
	}
	return false
}

func extractPercentage(text string) *float64 {
	if text == "" {
		return nil
	}
	if m := rePctValue.FindStringSubmatch(text); m != nil {
		return parseFloat(m[1])
	}
	if m := reFTEValue.FindStringSubmatch(text); m != nil {
		if v := parseFloat(m[1]); v != nil {
			pct := *v * 100
			return &pct
		}
	}
	return nil
}

func extractHours(text string) *float64 {
	if text == "" {
		return nil
	}
	if m := reHoursValue.FindStringSubmatch(text); m != nil {
		return parseFloat(m[1])
	}
	if reBareNumeric.MatchString(strings.TrimSpace(text)) {
		return parseFloat(strings.TrimSpace(text))
	}
	return nil
}

// cleanHoursText strips thousands separators and collapses the dotted
// OCR artifact ("1.800" -> "1800") before numeric extraction.
func cleanHoursText(text string) string {
	s := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if reDottedThousands.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
