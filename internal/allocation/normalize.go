// Package allocation converts raw time-allocation text (hours, percentages,
// FTE multipliers, month multiples) into a single consistent unit system.
package allocation

import (
	"regexp"
	"strconv"
)

// DefaultFTEYearlyHours is the hours-per-year basis for one full-time
// equivalent. Empirical standard carried over from the source data set.
const DefaultFTEYearlyHours = 1800

var (
	rePct         = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%`)
	reHours       = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*h(?:ours?|rs?)?\b`)
	reFTE         = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*fte`)
	reMonthsMult  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*x\s*(\d+(?:\.\d+)?)\s*months?`)
	reMonthsPlain = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*months?`)
)

// Allocation is a normalized time allocation. Fields are nil when the input
// carried no signal for them.
type Allocation struct {
	Hours      *float64 `json:"hours"`
	Percentage *float64 `json:"percentage"` // 0-100
	Months     *float64 `json:"months"`
}

// Normalizer converts allocation notations against a fixed FTE basis.
// The zero value is not usable; construct with NewNormalizer.
type Normalizer struct {
	basis float64
}

// NewNormalizer returns a Normalizer on the given hours-per-year basis,
// falling back to DefaultFTEYearlyHours when basis is not positive.
func NewNormalizer(basis float64) Normalizer {
	if basis <= 0 {
		basis = DefaultFTEYearlyHours
	}
	return Normalizer{basis: basis}
}

// Basis returns the hours-per-year basis this normalizer converts against.
func (n Normalizer) Basis() float64 { return n.basis }

// Normalize parses every notation found in text and reconciles hours and
// percentage against the FTE basis. Recognized notations: "N%", "N hours",
// "N hrs", "N h", "N FTE", "A x B months", "N months". When only one of
// hours/percentage is known the other is derived; percentages are clamped
// to [0,100] before hours are back-derived.
func (n Normalizer) Normalize(text string) Allocation {
	var out Allocation
	if text == "" {
		return out
	}

	if m := rePct.FindStringSubmatch(text); m != nil {
		out.Percentage = parseFloat(m[1])
	}
	if m := reHours.FindStringSubmatch(text); m != nil {
		out.Hours = parseFloat(m[1])
	}
	if m := reFTE.FindStringSubmatch(text); m != nil {
		if v := parseFloat(m[1]); v != nil {
			pct := *v * 100
			hours := *v * n.basis
			out.Percentage = &pct
			out.Hours = &hours
		}
	}
	if m := reMonthsMult.FindStringSubmatch(text); m != nil {
		a, b := parseFloat(m[1]), parseFloat(m[2])
		if a != nil && b != nil {
			months := *a * *b
			out.Months = &months
		}
	} else if m := reMonthsPlain.FindStringSubmatch(text); m != nil {
		out.Months = parseFloat(m[1])
	}

	return n.Reconcile(out)
}

// Reconcile derives the missing one of hours/percentage from the other.
func (n Normalizer) Reconcile(a Allocation) Allocation {
	if a.Percentage != nil {
		p := *a.Percentage
		if p < 0 {
			p = 0
		}
		if p > 100 {
			p = 100
		}
		a.Percentage = &p
		if a.Hours == nil {
			h := (p / 100) * n.basis
			a.Hours = &h
		}
	} else if a.Hours != nil {
		p := (*a.Hours / n.basis) * 100
		a.Percentage = &p
	}
	return a
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
