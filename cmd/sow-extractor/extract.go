package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/staffingtools/sow-extractor/internal/repository"
	"github.com/staffingtools/sow-extractor/internal/services/extraction"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file> [file...]",
	Short: "Extract staffing tables from one or more SOW documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc := extraction.NewService(cfg, logger)
		cleanup, err := openStoreIfConfigured(ctx, svc)
		if err != nil {
			return exitErr(err)
		}
		defer cleanup()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		var failed int
		for _, path := range args {
			out, err := svc.ExtractFile(ctx, path)
			if err != nil {
				logger.Error("extraction failed", "path", path, "error", err)
				failed++
				continue
			}
			summary := map[string]any{
				"path":          out.Path,
				"tier":          out.Tier,
				"plan_present":  out.Result.PlanPresent,
				"plan_type":     out.Result.PlanType,
				"entries":       len(out.Result.Entries),
				"artifact_path": out.ArtifactPath,
			}
			if out.Result.Totals.Hours != nil {
				summary["total_hours"] = *out.Result.Totals.Hours
			}
			if err := enc.Encode(summary); err != nil {
				return exitErr(err)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(args))
		}
		return nil
	},
}

// openStoreIfConfigured attaches Postgres persistence to the service when a
// DSN is configured. Connection attempts retry briefly since the extractor
// often starts alongside the database in compose setups.
func openStoreIfConfigured(ctx context.Context, svc *extraction.Service) (func(), error) {
	if cfg.Database.DSN == "" {
		return func() {}, nil
	}

	var pool *pgxpool.Pool
	err := retry.Do(
		func() error {
			p, err := repository.Open(ctx, repository.Config{
				DSN:              cfg.Database.DSN,
				MaxConns:         cfg.Database.MaxConns,
				MinConns:         cfg.Database.MinConns,
				MaxConnLifetime:  cfg.Database.MaxConnLifetime,
				MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
				DialTimeout:      cfg.Database.DialTimeout,
				StatementTimeout: cfg.Database.StatementTimeout,
			}, logger)
			if err != nil {
				return err
			}
			pool = p
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil {
		return func() {}, err
	}

	if err := repository.Migrate(ctx, pool); err != nil {
		repository.Close(pool, logger)
		return func() {}, err
	}

	docs := repository.NewDocumentRepository(pool, logger)
	extr := repository.NewExtractionRepository(pool, logger)
	svc.WithStore(docs, extr)

	return func() { repository.Close(pool, logger) }, nil
}
