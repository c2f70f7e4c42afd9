package main

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/staffingtools/sow-extractor/internal/catalog"
	"github.com/staffingtools/sow-extractor/internal/ingest"
	"github.com/staffingtools/sow-extractor/internal/services/extraction"
)

var (
	batchSkipHidden bool
	batchNoCatalog  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract staffing tables from every SOW document under a directory",
	Long: `Walks the directory, extracts every PDF and DOCX found, and records
each run in a local SQLite catalog so re-running skips documents that
already finished.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		root := args[0]

		svc := extraction.NewService(cfg, logger)
		cleanup, err := openStoreIfConfigured(ctx, svc)
		if err != nil {
			return exitErr(err)
		}
		defer cleanup()

		if !batchNoCatalog {
			db, err := catalog.Open(cfg.Catalog.Path)
			if err != nil {
				return exitErr(fmt.Errorf("open run catalog: %w", err))
			}
			defer db.Close()
			svc.WithCatalog(db)
		}

		var processed, skipped, failed, entries int
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				logger.Warn("walk error", "path", path, "error", walkErr)
				return nil
			}
			if batchSkipHidden && ingest.IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !ingest.AllowedExt(filepath.Ext(path)) {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			out, err := svc.ExtractFile(ctx, path)
			switch {
			case err != nil:
				failed++
			case out.Skipped:
				skipped++
			default:
				processed++
				entries += len(out.Result.Entries)
			}
			return nil
		})
		if err != nil {
			return exitErr(err)
		}

		logger.Info("batch complete",
			"root", root,
			"processed", processed,
			"skipped", skipped,
			"failed", failed,
			"entries", entries)
		if failed > 0 {
			return fmt.Errorf("%d documents failed", failed)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().BoolVar(&batchSkipHidden, "skip-hidden", true, "skip hidden files and directories")
	batchCmd.Flags().BoolVar(&batchNoCatalog, "no-catalog", false, "disable the local run catalog (re-extract everything)")
}
