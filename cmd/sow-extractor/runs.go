package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/staffingtools/sow-extractor/constants"
	"github.com/staffingtools/sow-extractor/internal/catalog"
)

var runsStatus string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List extraction runs recorded in the local catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := constants.RunStatus(strings.ToUpper(runsStatus))
		switch status {
		case constants.RunStatusQueued, constants.RunStatusRunning,
			constants.RunStatusDone, constants.RunStatusFailed:
		default:
			return exitErr(fmt.Errorf("unknown run status %q", runsStatus))
		}

		db, err := catalog.Open(cfg.Catalog.Path)
		if err != nil {
			return exitErr(fmt.Errorf("open run catalog: %w", err))
		}
		defer db.Close()

		runs, err := catalog.RunsByStatus(db, status)
		if err != nil {
			return exitErr(err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, r := range runs {
			if err := enc.Encode(r); err != nil {
				return exitErr(err)
			}
		}
		logger.Info("catalog runs listed", "status", status, "count", len(runs))
		return nil
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "FAILED", "run status to list: QUEUED, RUNNING, DONE, FAILED")
}
