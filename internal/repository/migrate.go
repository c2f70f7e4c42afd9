package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema idempotently. The tables are small enough that
// a migration framework would be overkill.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id            UUID PRIMARY KEY,
			source_path   TEXT NOT NULL,
			filename      TEXT NOT NULL,
			file_ext      TEXT NOT NULL,
			file_size     BIGINT NOT NULL,
			content_hash  BYTEA NOT NULL,
			uploaded_at   TIMESTAMPTZ NOT NULL,
			UNIQUE (content_hash)
		)`,
		`CREATE TABLE IF NOT EXISTS extractions (
			id            UUID PRIMARY KEY,
			document_id   UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			tier          TEXT NOT NULL,
			plan_present  BOOLEAN NOT NULL,
			plan_type     TEXT NOT NULL,
			entry_count   INT NOT NULL,
			total_hours   DOUBLE PRECISION,
			artifact      JSONB,
			started_at    TIMESTAMPTZ NOT NULL,
			finished_at   TIMESTAMPTZ,
			error_message TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS staffing_rows (
			id            UUID PRIMARY KEY,
			extraction_id UUID NOT NULL REFERENCES extractions(id) ON DELETE CASCADE,
			name          TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT '',
			level         TEXT NOT NULL DEFAULT '',
			workstream    TEXT NOT NULL DEFAULT '',
			location      TEXT NOT NULL DEFAULT '',
			percentage    DOUBLE PRECISION,
			hours         DOUBLE PRECISION,
			months        DOUBLE PRECISION,
			page          INT NOT NULL,
			table_index   INT NOT NULL,
			row_index     INT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_extractions_document ON extractions(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_staffing_rows_extraction ON staffing_rows(extraction_id)`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
