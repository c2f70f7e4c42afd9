// Package export renders extraction results as XLSX workbooks for the
// staffing reports finance teams consume.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/staffingtools/sow-extractor/internal/staffing"
)

// DocumentEntries pairs a source document with its parsed staffing entries.
type DocumentEntries struct {
	SourceFile string
	Tier       string
	Entries    []staffing.Entry
}

// Service produces XLSX bytes for staffing exports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// StaffingXLSX returns an XLSX workbook (as bytes) with one row per staffing
// entry across all given documents, plus a per-document totals sheet.
func (s *Service) StaffingXLSX(docs []DocumentEntries, basis float64) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Staffing"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Source File",
		"Extraction Tier",
		"Name",
		"Title",
		"Level",
		"Hours",
		"% Time",
		"Page",
		"Table",
		"Row",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	var total int
	for _, doc := range docs {
		minimal, src := staffing.MinimalizeIndexed(doc.Entries, basis)
		for i, m := range minimal {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, v)
			}

			write(1, doc.SourceFile)
			write(2, doc.Tier)
			write(3, strOrEmpty(m.Name))
			write(4, m.Title)
			write(5, strOrEmpty(m.Level))
			if m.Hours != nil {
				write(6, *m.Hours)
			}
			if m.HoursPct != nil {
				write(7, *m.HoursPct)
			}
			p := doc.Entries[src[i]].Provenance
			write(8, p.Page)
			write(9, p.TableIndex)
			write(10, p.RowIndex)
			row++
			total++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 40) // source file
	_ = f.SetColWidth(sheet, "B", "B", 18) // tier
	_ = f.SetColWidth(sheet, "C", "C", 24) // name
	_ = f.SetColWidth(sheet, "D", "D", 34) // title
	_ = f.SetColWidth(sheet, "E", "E", 14) // level
	_ = f.SetColWidth(sheet, "F", "G", 10) // allocation

	if err := s.writeTotalsSheet(f, docs, basis); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"documents", len(docs),
		"rows", total,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeTotalsSheet(f *excelize.File, docs []DocumentEntries, basis float64) error {
	const sheet = "Totals"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for i, h := range []string{"Source File", "Entries", "Total Hours", "Total FTE"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, doc := range docs {
		res := staffing.NewResult(doc.Entries, basis)
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, doc.SourceFile)
		write(2, len(doc.Entries))
		if res.Totals.Hours != nil {
			write(3, *res.Totals.Hours)
			write(4, *res.Totals.Hours/basis)
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 40)
	return nil
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
