package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffingtools/sow-extractor/internal/entity"
)

type DocumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	GetByHash(ctx context.Context, hash []byte) (*entity.Document, error)
	Create(ctx context.Context, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*entity.Document, error)
	UpsertByHash(ctx context.Context, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*entity.Document, bool, error)
}

type documentRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, logger *slog.Logger) DocumentRepository {
	return &documentRepo{pool: pool, logger: logger}
}

const documentCols = `id, source_path, filename, file_ext, file_size, content_hash, uploaded_at`

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	err := row.Scan(&d.ID, &d.SourcePath, &d.Filename, &d.FileExt, &d.FileSize, &d.ContentHash, &d.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+documentCols+` FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

func (r *documentRepo) GetByHash(ctx context.Context, hash []byte) (*entity.Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+documentCols+` FROM documents WHERE content_hash = $1`, hash)
	doc, err := scanDocument(row)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error("failed to get document by hash", "error", err)
	}
	return doc, err
}

func (r *documentRepo) Create(ctx context.Context, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*entity.Document, error) {
	d := &entity.Document{
		ID:          uuid.New(),
		SourcePath:  sourcePath,
		Filename:    filename,
		FileExt:     ext,
		FileSize:    size,
		ContentHash: hash,
		UploadedAt:  uploadedAt,
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO documents (`+documentCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.SourcePath, d.Filename, d.FileExt, d.FileSize, d.ContentHash, d.UploadedAt)
	if err != nil {
		r.logger.Error("failed to create document", "source_path", sourcePath, "filename", filename, "error", err)
		return nil, err
	}
	return d, nil
}

// UpsertByHash returns the existing document when one with the same content
// hash is already registered; the boolean reports whether it pre-existed.
func (r *documentRepo) UpsertByHash(ctx context.Context, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*entity.Document, bool, error) {
	if existing, err := r.GetByHash(ctx, hash); err == nil {
		return existing, true, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	doc, err := r.Create(ctx, sourcePath, filename, ext, size, hash, uploadedAt)
	if err != nil {
		return nil, false, err
	}
	return doc, false, nil
}
