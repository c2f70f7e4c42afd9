package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/staffingtools/sow-extractor/internal/artifact"
	"github.com/staffingtools/sow-extractor/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <artifact.json> [artifact.json...]",
	Short: "Render extraction artifacts as an XLSX staffing report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var docs []export.DocumentEntries
		basis := cfg.Pipeline.FTEYearlyHours

		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return exitErr(fmt.Errorf("read artifact %s: %w", path, err))
			}
			var art artifact.Artifact
			if err := json.Unmarshal(data, &art); err != nil {
				return exitErr(fmt.Errorf("parse artifact %s: %w", path, err))
			}
			if b := art.Staffing.Totals.FTEYearlyHoursBasis; b > 0 {
				basis = b
			}
			docs = append(docs, export.DocumentEntries{
				SourceFile: art.SourceFile,
				Tier:       art.Tier,
				Entries:    art.Staffing.Entries,
			})
		}

		svc := export.NewService(logger)
		data, err := svc.StaffingXLSX(docs, basis)
		if err != nil {
			return exitErr(err)
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return exitErr(fmt.Errorf("write workbook: %w", err))
		}
		logger.Info("workbook written", "path", exportOut, "documents", len(docs))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "staffing.xlsx", "output workbook path")
}
