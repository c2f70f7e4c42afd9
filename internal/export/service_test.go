package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/staffingtools/sow-extractor/internal/staffing"
)

func exportFixture() []DocumentEntries {
	return []DocumentEntries{
		{
			SourceFile: "Acme_SOW_2024.pdf",
			Tier:       "native",
			Entries: []staffing.Entry{
				{
					Name:       "Alice Smith",
					Role:       "Account Director",
					Percentage: staffing.Float(50),
					Hours:      staffing.Float(900),
					Provenance: staffing.Provenance{Page: 3, TableIndex: 1, RowIndex: 1},
				},
				{
					Name:       "N/A",
					Role:       "Analyst",
					Hours:      staffing.Float(450),
					Provenance: staffing.Provenance{Page: 3, TableIndex: 1, RowIndex: 2},
				},
			},
		},
		{
			SourceFile: "Beta_SOW.docx",
			Tier:       "render_ocr",
			Entries: []staffing.Entry{
				{
					Name:       "Carol",
					Role:       "Strategist",
					Percentage: staffing.Float(25),
					Provenance: staffing.Provenance{Page: 1, TableIndex: 1, RowIndex: 1},
				},
			},
		},
	}
}

func TestStaffingXLSX(t *testing.T) {
	svc := NewService(nil)
	data, err := svc.StaffingXLSX(exportFixture(), 1800)
	if err != nil {
		t.Fatalf("StaffingXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Staffing")
	if err != nil {
		t.Fatalf("read Staffing sheet: %v", err)
	}
	if len(rows) != 4 { // header + 3 entries
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "Source File" || rows[0][3] != "Title" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	if rows[1][0] != "Acme_SOW_2024.pdf" || rows[1][2] != "Alice Smith" {
		t.Fatalf("unexpected first entry row: %v", rows[1])
	}
	// redacted name exports as an empty cell, not "N/A"
	if len(rows[2]) > 2 && rows[2][2] != "" {
		t.Fatalf("expected empty name cell for redacted entry, got %q", rows[2][2])
	}
}

func TestStaffingXLSXProvenanceAfterDroppedEntry(t *testing.T) {
	// The first entry has no resolvable title and is dropped by the
	// projection; the survivor must still carry its own page, not the
	// dropped entry's.
	docs := []DocumentEntries{
		{
			SourceFile: "Gamma_SOW.pdf",
			Tier:       "native",
			Entries: []staffing.Entry{
				{
					Name:       "Untitled",
					Hours:      staffing.Float(100),
					Provenance: staffing.Provenance{Page: 7, TableIndex: 1, RowIndex: 1},
				},
				{
					Name:       "Bob",
					Role:       "Analyst",
					Hours:      staffing.Float(450),
					Provenance: staffing.Provenance{Page: 9, TableIndex: 2, RowIndex: 3},
				},
			},
		},
	}

	svc := NewService(nil)
	data, err := svc.StaffingXLSX(docs, 1800)
	if err != nil {
		t.Fatalf("StaffingXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Staffing")
	if err != nil {
		t.Fatalf("read Staffing sheet: %v", err)
	}
	if len(rows) != 2 { // header + Bob; the title-less entry is dropped
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1][2] != "Bob" {
		t.Fatalf("expected Bob's row, got %v", rows[1])
	}
	if rows[1][7] != "9" || rows[1][8] != "2" || rows[1][9] != "3" {
		t.Fatalf("provenance does not match Bob's source entry: %v", rows[1])
	}
}

func TestStaffingXLSXTotalsSheet(t *testing.T) {
	svc := NewService(nil)
	data, err := svc.StaffingXLSX(exportFixture(), 1800)
	if err != nil {
		t.Fatalf("StaffingXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Totals")
	if err != nil {
		t.Fatalf("read Totals sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus one row per document, got %d", len(rows))
	}
	if rows[1][0] != "Acme_SOW_2024.pdf" || rows[1][2] != "1350" {
		t.Fatalf("unexpected totals row: %v", rows[1])
	}
	// Beta_SOW has a percentage-only entry, so no hour totals
	if len(rows[2]) > 2 && rows[2][2] != "" {
		t.Fatalf("expected empty total hours for Beta_SOW, got %v", rows[2])
	}
}

func TestStaffingXLSXEmptyInput(t *testing.T) {
	svc := NewService(nil)
	data, err := svc.StaffingXLSX(nil, 1800)
	if err != nil {
		t.Fatalf("StaffingXLSX failed on empty input: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Staffing")
	if err != nil {
		t.Fatalf("read Staffing sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
