package staffing

import (
	"math"
	"strings"
)

// MinimalEntry is the reduced projection handed to downstream reporting.
// Values are rounded to one decimal; Title is always resolvable or the
// source entry is dropped during projection.
type MinimalEntry struct {
	Name        *string  `json:"name"`
	Level       *string  `json:"level"`
	Title       string   `json:"title"`
	PrimaryRole *string  `json:"primary_role"`
	Hours       *float64 `json:"hours"`
	HoursPct    *float64 `json:"hours_pct"` // 0-100 on the FTE basis
}

// Minimalize projects entries onto the minimal schema. Entries whose title
// cannot be resolved from role, primary role, or level are dropped. When
// both a percentage and hours are present, the percentage wins and hours
// are re-derived from the basis.
func Minimalize(entries []Entry, basis float64) []MinimalEntry {
	out, _ := MinimalizeIndexed(entries, basis)
	return out
}

// MinimalizeIndexed projects like Minimalize and additionally reports, for
// each projection, the index of the source entry it came from. Dropped
// entries shift positions, so consumers that need provenance must pair
// through these indexes rather than by position.
func MinimalizeIndexed(entries []Entry, basis float64) ([]MinimalEntry, []int) {
	out := make([]MinimalEntry, 0, len(entries))
	src := make([]int, 0, len(entries))
	for i, e := range entries {
		name := nullIfNA(e.Name)
		level := nullIfNA(e.Level)
		role := nullIfNA(e.Role)
		primary := nullIfNA(e.PrimaryRole)

		title := firstNonNil(role, primary, level)
		if title == "" {
			continue
		}

		hours := e.Hours
		pct := e.Percentage
		if pct != nil {
			p := math.Min(math.Max(*pct, 0), 100)
			pct = &p
			h := (p / 100) * basis
			hours = &h
		} else if hours != nil {
			p := (*hours / basis) * 100
			pct = &p
		}

		out = append(out, MinimalEntry{
			Name:        name,
			Level:       level,
			Title:       title,
			PrimaryRole: primary,
			Hours:       round1(hours),
			HoursPct:    round1(pct),
		})
		src = append(src, i)
	}
	return out, src
}

func nullIfNA(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" || strings.EqualFold(v, "N/A") || strings.EqualFold(v, "NA") {
		return nil
	}
	return &v
}

func firstNonNil(vals ...*string) string {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return ""
}

func round1(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*10) / 10
	return &r
}
