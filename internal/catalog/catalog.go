// Package catalog tracks batch extraction runs in a local SQLite file so a
// re-run of the same directory skips documents that already finished. It is
// deliberately separate from the Postgres store: batch runs work offline.
package catalog

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/staffingtools/sow-extractor/constants"
)

// Run is one document's pass through the batch pipeline.
type Run struct {
	ID           int64               `json:"id"`
	SourcePath   string              `json:"source_path"`
	ContentHash  string              `json:"content_hash"`
	Status       constants.RunStatus `json:"status"`
	Tier         string              `json:"tier,omitempty"`
	EntryCount   int                 `json:"entry_count"`
	ArtifactPath string              `json:"artifact_path,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}

// Open opens (and initializes) the catalog database at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		source_path   TEXT NOT NULL,
		content_hash  TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL,
		tier          TEXT NOT NULL DEFAULT '',
		entry_count   INTEGER NOT NULL DEFAULT 0,
		artifact_path TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		started_at    DATETIME NOT NULL,
		finished_at   DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_runs_source_path ON runs(source_path);
	CREATE INDEX IF NOT EXISTS idx_runs_hash ON runs(content_hash);
	`
	if _, err = db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

// StartRun registers a document as RUNNING and returns the run id.
func StartRun(db *sql.DB, sourcePath, contentHash string) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO runs (source_path, content_hash, status, started_at)
		 VALUES (?, ?, ?, ?)`,
		sourcePath, contentHash, string(constants.RunStatusRunning), time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishRun marks a run DONE with its outcome.
func FinishRun(db *sql.DB, id int64, tier string, entryCount int, artifactPath string) error {
	_, err := db.Exec(
		`UPDATE runs
		 SET status = ?, tier = ?, entry_count = ?, artifact_path = ?, finished_at = ?
		 WHERE id = ?`,
		string(constants.RunStatusDone), tier, entryCount, artifactPath, time.Now().UTC(), id,
	)
	return err
}

// FailRun marks a run FAILED with the error text.
func FailRun(db *sql.DB, id int64, errMsg string) error {
	_, err := db.Exec(
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(constants.RunStatusFailed), errMsg, time.Now().UTC(), id,
	)
	return err
}

// HashDone reports whether a document with this content hash already has a
// DONE run, so batch mode can skip it.
func HashDone(db *sql.DB, contentHash string) (bool, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM runs WHERE content_hash = ? AND status = ?`,
		contentHash, string(constants.RunStatusDone),
	).Scan(&count)
	return count > 0, err
}

// RunsByStatus lists runs with the given status, newest first.
func RunsByStatus(db *sql.DB, status constants.RunStatus) ([]Run, error) {
	rows, err := db.Query(
		`SELECT id, source_path, content_hash, status, tier, entry_count,
		        artifact_path, error_message, started_at, finished_at
		 FROM runs WHERE status = ? ORDER BY started_at DESC, id DESC`,
		string(status),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var status string
		if err := rows.Scan(&r.ID, &r.SourcePath, &r.ContentHash, &status, &r.Tier,
			&r.EntryCount, &r.ArtifactPath, &r.ErrorMessage, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.Status = constants.RunStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}
