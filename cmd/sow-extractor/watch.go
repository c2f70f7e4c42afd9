package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/staffingtools/sow-extractor/internal/async"
	"github.com/staffingtools/sow-extractor/internal/catalog"
	"github.com/staffingtools/sow-extractor/internal/ingest"
	"github.com/staffingtools/sow-extractor/internal/services/extraction"
)

var (
	watchInitialScan bool
	watchDebounce    time.Duration
	watchWorkers     int
	watchForce       bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir> [dir...]",
	Short: "Watch directories and extract SOW documents as they appear",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc := extraction.NewService(cfg, logger)
		cleanup, err := openStoreIfConfigured(ctx, svc)
		if err != nil {
			return exitErr(err)
		}
		defer cleanup()

		db, err := catalog.Open(cfg.Catalog.Path)
		if err != nil {
			return exitErr(fmt.Errorf("open run catalog: %w", err))
		}
		defer db.Close()
		svc.WithCatalog(db)

		queue := async.NewExtractQueue(svc, logger, async.WithWorkers(watchWorkers))
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			queue.Shutdown(sctx)
		}()

		events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       args,
			InitialScan: watchInitialScan,
			Debounce:    watchDebounce,
		}, logger)
		if err != nil {
			return exitErr(err)
		}

		logger.Info("watching for documents", "roots", args)
		for {
			select {
			case <-ctx.Done():
				return nil
			case path, ok := <-events:
				if !ok {
					return nil
				}
				_ = queue.Enqueue(ctx, async.Job{
					Path:        path,
					Force:       watchForce,
					SubmittedAt: time.Now(),
					TraceID:     uuid.NewString(),
				})
			case err, ok := <-errs:
				if ok && err != nil {
					logger.Error("watcher error", "error", err)
				}
			}
		}
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", true, "extract documents already present at startup")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "wait for writes to settle before extracting")
	watchCmd.Flags().IntVar(&watchWorkers, "workers", 2, "concurrent extraction workers")
	watchCmd.Flags().BoolVar(&watchForce, "force", false, "re-extract documents the catalog already marks done")
}
