// Package staffing holds the value types produced by the extraction pipeline.
package staffing

// Provenance records where an entry came from, for auditability.
type Provenance struct {
	Page       int `json:"page"`
	TableIndex int `json:"source_table_index"`
	RowIndex   int `json:"row_index"`
	// RawRow maps the raw (pre-canonicalization) header text to the cell
	// value it selected, so bad reconstructions stay visible downstream.
	RawRow map[string]string `json:"column_values"`
}

// Entry is one parsed staffing table row. Entries are immutable once built;
// at least one of Percentage or Hours is always set (rows where both fail to
// parse are dropped by the row parser).
type Entry struct {
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	PrimaryRole string     `json:"primary_role"`
	Level       string     `json:"level"`
	Workstream  string     `json:"workstream"`
	Location    string     `json:"location"`
	Percentage  *float64   `json:"percentage"` // 0-100
	Hours       *float64   `json:"hours"`      // >= 0
	Months      *float64   `json:"months"`
	Provenance  Provenance `json:"provenance"`
}

// Valid reports whether the entry carries at least one allocation value.
func (e Entry) Valid() bool {
	return e.Percentage != nil || e.Hours != nil
}

// Float returns a pointer to v. Convenience for building entries and tests.
func Float(v float64) *float64 { return &v }
