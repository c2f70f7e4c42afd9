package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffingtools/sow-extractor/internal/entity"
	"github.com/staffingtools/sow-extractor/internal/staffing"
)

type ExtractionRepository interface {
	Start(ctx context.Context, documentID uuid.UUID) (*entity.Extraction, error)
	FinishSuccess(ctx context.Context, id uuid.UUID, tier string, res staffing.Result, artifact json.RawMessage) error
	FinishFailure(ctx context.Context, id uuid.UUID, errMsg string) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Extraction, error)
	LatestForDocument(ctx context.Context, documentID uuid.UUID) (*entity.Extraction, error)
	ReplaceRows(ctx context.Context, extractionID uuid.UUID, entries []staffing.Entry) error
	ListRows(ctx context.Context, extractionID uuid.UUID) ([]entity.StaffingRow, error)
}

type extractionRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewExtractionRepository(pool *pgxpool.Pool, logger *slog.Logger) ExtractionRepository {
	return &extractionRepo{pool: pool, logger: logger}
}

func (r *extractionRepo) Start(ctx context.Context, documentID uuid.UUID) (*entity.Extraction, error) {
	e := &entity.Extraction{
		ID:         uuid.New(),
		DocumentID: documentID,
		Tier:       "none",
		PlanType:   staffing.PlanTypeNone,
		StartedAt:  time.Now().UTC(),
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO extractions (id, document_id, tier, plan_present, plan_type, entry_count, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.DocumentID, e.Tier, e.PlanPresent, e.PlanType, e.EntryCount, e.StartedAt)
	if err != nil {
		r.logger.Error("failed to start extraction", "document_id", documentID, "error", err)
		return nil, err
	}
	return e, nil
}

func (r *extractionRepo) FinishSuccess(ctx context.Context, id uuid.UUID, tier string, res staffing.Result, artifact json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE extractions
		 SET tier = $2, plan_present = $3, plan_type = $4, entry_count = $5,
		     total_hours = $6, artifact = $7, finished_at = $8, error_message = NULL
		 WHERE id = $1`,
		id, tier, res.PlanPresent, res.PlanType, len(res.Entries),
		res.Totals.Hours, artifact, time.Now().UTC())
	if err != nil {
		r.logger.Error("failed to finish extraction", "extraction_id", id, "error", err)
	}
	return err
}

func (r *extractionRepo) FinishFailure(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE extractions SET finished_at = $2, error_message = $3 WHERE id = $1`,
		id, time.Now().UTC(), errMsg)
	if err != nil {
		r.logger.Error("failed to record extraction failure", "extraction_id", id, "error", err)
	}
	return err
}

const extractionCols = `id, document_id, tier, plan_present, plan_type, entry_count, total_hours, artifact, started_at, finished_at, error_message`

func scanExtraction(row pgx.Row) (*entity.Extraction, error) {
	var e entity.Extraction
	err := row.Scan(&e.ID, &e.DocumentID, &e.Tier, &e.PlanPresent, &e.PlanType,
		&e.EntryCount, &e.TotalHours, &e.Artifact, &e.StartedAt, &e.FinishedAt, &e.ErrorMessage)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *extractionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Extraction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+extractionCols+` FROM extractions WHERE id = $1`, id)
	return scanExtraction(row)
}

func (r *extractionRepo) LatestForDocument(ctx context.Context, documentID uuid.UUID) (*entity.Extraction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+extractionCols+` FROM extractions
		 WHERE document_id = $1 ORDER BY started_at DESC LIMIT 1`, documentID)
	return scanExtraction(row)
}

// ReplaceRows swaps the relational projection of an extraction's entries in
// one transaction so readers never observe a half-written set.
func (r *extractionRepo) ReplaceRows(ctx context.Context, extractionID uuid.UUID, entries []staffing.Entry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM staffing_rows WHERE extraction_id = $1`, extractionID); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO staffing_rows
			 (id, extraction_id, name, role, level, workstream, location,
			  percentage, hours, months, page, table_index, row_index)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			uuid.New(), extractionID, e.Name, e.Role, e.Level, e.Workstream, e.Location,
			e.Percentage, e.Hours, e.Months,
			e.Provenance.Page, e.Provenance.TableIndex, e.Provenance.RowIndex); err != nil {
			r.logger.Error("failed to insert staffing row", "extraction_id", extractionID, "error", err)
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *extractionRepo) ListRows(ctx context.Context, extractionID uuid.UUID) ([]entity.StaffingRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, extraction_id, name, role, level, workstream, location,
		        percentage, hours, months, page, table_index, row_index
		 FROM staffing_rows WHERE extraction_id = $1
		 ORDER BY page, table_index, row_index`, extractionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.StaffingRow
	for rows.Next() {
		var s entity.StaffingRow
		if err := rows.Scan(&s.ID, &s.ExtractionID, &s.Name, &s.Role, &s.Level,
			&s.Workstream, &s.Location, &s.Percentage, &s.Hours, &s.Months,
			&s.Page, &s.TableIndex, &s.RowIndex); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
