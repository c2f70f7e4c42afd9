package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/staffingtools/sow-extractor/internal/ingest"
	"github.com/staffingtools/sow-extractor/internal/repository"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance commands",
}

var dbPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify database connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateForDB(); err != nil {
			return exitErr(err)
		}
		ctx := cmd.Context()

		pool, err := repository.Open(ctx, repository.Config{
			DSN:         cfg.Database.DSN,
			MaxConns:    1,
			MinConns:    0,
			DialTimeout: cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			return exitErr(err)
		}
		defer repository.Close(pool, logger)

		if err := repository.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
			return exitErr(err)
		}
		logger.Info("database reachable")
		return nil
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the extraction store schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateForDB(); err != nil {
			return exitErr(err)
		}
		ctx := cmd.Context()

		pool, err := repository.Open(ctx, repository.Config{
			DSN:         cfg.Database.DSN,
			MaxConns:    1,
			DialTimeout: cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			return exitErr(err)
		}
		defer repository.Close(pool, logger)

		if err := repository.Migrate(ctx, pool); err != nil {
			return exitErr(err)
		}
		logger.Info("schema applied")
		return nil
	},
}

var dbLatestCmd = &cobra.Command{
	Use:   "latest <file>",
	Short: "Show the latest stored extraction for a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := openDBPool(ctx)
		if err != nil {
			return exitErr(err)
		}
		defer repository.Close(pool, logger)

		hashHex, err := ingest.HashFile(args[0])
		if err != nil {
			return exitErr(err)
		}
		hash, err := hex.DecodeString(hashHex)
		if err != nil {
			return exitErr(err)
		}

		docs := repository.NewDocumentRepository(pool, logger)
		doc, err := docs.GetByHash(ctx, hash)
		if err != nil {
			return exitErr(fmt.Errorf("document not in store: %w", err))
		}

		extr := repository.NewExtractionRepository(pool, logger)
		latest, err := extr.LatestForDocument(ctx, doc.ID)
		if err != nil {
			return exitErr(fmt.Errorf("no extractions for document %s: %w", doc.ID, err))
		}
		rows, err := extr.ListRows(ctx, latest.ID)
		if err != nil {
			return exitErr(err)
		}
		return printJSON(map[string]any{
			"document":   doc,
			"extraction": latest,
			"rows":       rows,
		})
	},
}

var dbExtractionCmd = &cobra.Command{
	Use:   "extraction <id>",
	Short: "Show one stored extraction and its rows by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return exitErr(fmt.Errorf("invalid extraction id: %w", err))
		}

		ctx := cmd.Context()
		pool, err := openDBPool(ctx)
		if err != nil {
			return exitErr(err)
		}
		defer repository.Close(pool, logger)

		extr := repository.NewExtractionRepository(pool, logger)
		ext, err := extr.GetByID(ctx, id)
		if err != nil {
			return exitErr(err)
		}
		rows, err := extr.ListRows(ctx, ext.ID)
		if err != nil {
			return exitErr(err)
		}
		return printJSON(map[string]any{
			"extraction": ext,
			"rows":       rows,
		})
	},
}

var dbIngestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Register every SOW document under a directory without extracting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := openDBPool(ctx)
		if err != nil {
			return exitErr(err)
		}
		defer repository.Close(pool, logger)

		if err := repository.Migrate(ctx, pool); err != nil {
			return exitErr(err)
		}

		docs := repository.NewDocumentRepository(pool, logger)
		var ing ingest.Ingestor = ingest.NewFSIngestor(docs, logger)
		results, stats, err := ing.IngestDirectory(ctx, args[0], true)
		if err != nil {
			return exitErr(err)
		}

		for _, res := range results {
			if res.Err != "" {
				logger.Warn("ingest failed", "path", res.SourcePath, "error", res.Err)
			}
		}
		logger.Info("directory ingested",
			"root", args[0],
			"scanned", stats.Scanned,
			"matched", stats.Matched,
			"succeeded", stats.Succeeded,
			"deduplicated", stats.Deduplicated,
			"failed", stats.Failed)
		if stats.Failed > 0 {
			return fmt.Errorf("%d of %d documents failed to ingest", stats.Failed, stats.Matched)
		}
		return nil
	},
}

func openDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	if err := cfg.ValidateForDB(); err != nil {
		return nil, err
	}
	return repository.Open(ctx, repository.Config{
		DSN:         cfg.Database.DSN,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		DialTimeout: cfg.Database.DialTimeout,
	}, logger)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	dbCmd.AddCommand(dbPingCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbLatestCmd)
	dbCmd.AddCommand(dbExtractionCmd)
	dbCmd.AddCommand(dbIngestCmd)
}
