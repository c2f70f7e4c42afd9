package staffing

// Plan types reported to the caller.
const (
	PlanTypeTable = "table"
	PlanTypeList  = "list"
	PlanTypeMixed = "mixed"
	PlanTypeNone  = "none"
)

// Totals aggregates allocation across all entries of a result.
type Totals struct {
	Hours *float64 `json:"hours"`
	// FTEYearlyHoursBasis is the hours-per-year basis every percentage in
	// the result was computed against.
	FTEYearlyHoursBasis float64 `json:"fte_yearly_hours_basis"`
}

// Result is the caller-visible outcome of extraction. Absence of a staffing
// plan is a normal result (PlanPresent=false, empty Entries), not an error.
type Result struct {
	PlanPresent bool    `json:"staffing_plan_present"`
	PlanType    string  `json:"plan_type"`
	Entries     []Entry `json:"entries"`
	Totals      Totals  `json:"totals"`
}

// NewResult assembles a Result from parsed entries, computing totals.
func NewResult(entries []Entry, basis float64) Result {
	res := Result{
		PlanPresent: len(entries) > 0,
		PlanType:    PlanTypeNone,
		Entries:     entries,
		Totals:      Totals{FTEYearlyHoursBasis: basis},
	}
	if len(entries) == 0 {
		res.Entries = []Entry{}
		return res
	}
	res.PlanType = PlanTypeTable
	var sum float64
	var seen bool
	for _, e := range entries {
		if e.Hours != nil {
			sum += *e.Hours
			seen = true
		}
	}
	if seen {
		res.Totals.Hours = &sum
	}
	return res
}
