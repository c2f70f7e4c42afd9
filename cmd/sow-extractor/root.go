package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/staffingtools/sow-extractor/internal/common"
)

var (
	cfgFile  string
	logLevel string
	outDir   string

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sow-extractor",
	Short: "Staffing table extraction from SOW documents",
	Long: `sow-extractor pulls staffing plan tables out of statement-of-work
documents and normalizes them into structured JSON.

Extraction runs through tiers, cheapest first:
  - native text and table structure (pdftotext, DOCX table objects)
  - full-page rendering plus OCR (pdftoppm, tesseract)
  - OCR of images embedded in the PDF (screenshots of staffing tables)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(logLevel)
		slog.SetDefault(logger)

		var err error
		cfg, err = common.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if outDir != "" {
			cfg.Artifact.OutDir = outDir
		}
		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: environment only)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn, error",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outDir, "out-dir", "o", "", "directory for JSON artifacts (default: next to each document)",
	)

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(dbCmd)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func exitErr(err error) error {
	fmt.Fprintln(os.Stderr, "error:", err)
	return err
}
