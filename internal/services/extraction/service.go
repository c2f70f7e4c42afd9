// Package extraction is the application service gluing ingestion, the
// tiered pipeline, artifact output, and the run catalog together.
package extraction

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/staffingtools/sow-extractor/internal/artifact"
	"github.com/staffingtools/sow-extractor/internal/async"
	"github.com/staffingtools/sow-extractor/internal/catalog"
	"github.com/staffingtools/sow-extractor/internal/common"
	"github.com/staffingtools/sow-extractor/internal/ingest"
	"github.com/staffingtools/sow-extractor/internal/ocr"
	"github.com/staffingtools/sow-extractor/internal/pipeline"
	"github.com/staffingtools/sow-extractor/internal/render"
	"github.com/staffingtools/sow-extractor/internal/repository"
	"github.com/staffingtools/sow-extractor/internal/source"
	"github.com/staffingtools/sow-extractor/internal/staffing"
)

// Outcome is the per-document result of a service-level extraction.
type Outcome struct {
	Path         string
	Tier         string
	Result       staffing.Result
	ArtifactPath string
	Skipped      bool // already DONE in the run catalog
}

// Service runs extractions and records their outcomes. The catalog and the
// Postgres store are both optional; without them the service just extracts
// and writes artifacts.
type Service struct {
	orch   *pipeline.Orchestrator
	cfg    *common.Config
	cat    *sql.DB
	docs   repository.DocumentRepository
	extr   repository.ExtractionRepository
	logger *slog.Logger
}

// NewService wires the pipeline collaborators from configuration.
func NewService(cfg *common.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	src := source.NewAdapter(source.Config{Pdftotext: cfg.Source.Pdftotext}, logger)
	ras := render.NewRenderer(render.Config{
		Pdftoppm: cfg.Render.Pdftoppm,
		DPI:      cfg.Render.DPI,
		MaxPages: cfg.Render.MaxPages,
	}, logger)
	rec := ocr.NewEngine(ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		Lang:        cfg.OCR.Lang,
		PSM:         cfg.OCR.PSM,
		OEM:         cfg.OCR.OEM,
		TessdataDir: cfg.OCR.TessdataDir,
	}, logger)

	orch := pipeline.NewOrchestrator(pipeline.Config{
		MaxPages:       cfg.Pipeline.MaxPages,
		FTEYearlyHours: cfg.Pipeline.FTEYearlyHours,
		Workers:        cfg.Pipeline.Workers,
	}, src, ras, rec, logger)

	return &Service{orch: orch, cfg: cfg, logger: logger}
}

// WithCatalog enables skip-if-done bookkeeping through the local run catalog.
func (s *Service) WithCatalog(db *sql.DB) *Service {
	s.cat = db
	return s
}

// WithStore enables persistence of documents and extraction results.
func (s *Service) WithStore(docs repository.DocumentRepository, extr repository.ExtractionRepository) *Service {
	s.docs = docs
	s.extr = extr
	return s
}

// ExtractFile runs the full pipeline over one document and records the
// outcome everywhere that is configured.
func (s *Service) ExtractFile(ctx context.Context, path string) (Outcome, error) {
	return s.extract(ctx, path, false)
}

func (s *Service) extract(ctx context.Context, path string, force bool) (Outcome, error) {
	out := Outcome{Path: path}

	ctx, reqID := common.EnsureRequestID(ctx)
	log := s.logger.With("request_id", reqID)

	v := common.NewValidator()
	v.Field("path", path, common.Required)
	v.Field("path", filepath.Ext(path), common.SupportedExtension)
	if err := v.Error(); err != nil {
		return out, err
	}

	var hash string
	var runID int64
	if s.cat != nil {
		h, err := ingest.HashFile(path)
		if err != nil {
			return out, common.WrapError(err, "hash document")
		}
		hash = h

		done, err := catalog.HashDone(s.cat, hash)
		if err != nil {
			return out, common.WrapError(err, "consult run catalog")
		}
		if done && !force {
			log.Info("skipping document, already extracted", "path", path)
			out.Skipped = true
			return out, nil
		}
		runID, err = catalog.StartRun(s.cat, path, hash)
		if err != nil {
			return out, common.WrapError(err, "start catalog run")
		}
	}

	ext, err := s.orch.Extract(ctx, path, filepath.Ext(path))
	if err != nil {
		if s.cat != nil {
			_ = catalog.FailRun(s.cat, runID, err.Error())
		}
		s.persistFailure(ctx, path, err)
		return out, err
	}
	out.Tier = string(ext.Tier)
	out.Result = ext.Result

	art := artifact.New(path, out.Tier, ext.Result)
	artPath, err := art.Write(path, s.cfg.Artifact.OutDir)
	if err != nil {
		if s.cat != nil {
			_ = catalog.FailRun(s.cat, runID, err.Error())
		}
		s.persistFailure(ctx, path, err)
		return out, err
	}
	out.ArtifactPath = artPath

	if s.cat != nil {
		if err := catalog.FinishRun(s.cat, runID, out.Tier, len(ext.Entries), artPath); err != nil {
			log.Warn("failed to finish catalog run", "path", path, "error", err)
		}
	}

	if err := s.persist(ctx, path, art, ext); err != nil {
		// The extraction itself succeeded and the artifact exists; a store
		// failure is reported but does not undo the work.
		log.Error("failed to persist extraction", "path", path, "error", err)
	}

	log.Info("document extracted",
		"path", path,
		"tier", out.Tier,
		"plan_present", ext.PlanPresent,
		"entries", len(ext.Entries),
		"artifact", artPath)
	return out, nil
}

func (s *Service) persist(ctx context.Context, path string, art artifact.Artifact, ext pipeline.Extraction) error {
	if s.docs == nil || s.extr == nil {
		return nil
	}

	ingestor := ingest.NewFSIngestor(s.docs, s.logger)
	res, err := ingestor.IngestPath(ctx, path)
	if err != nil {
		return err
	}

	docID, err := uuid.Parse(res.DocumentID)
	if err != nil {
		return err
	}
	rec, err := s.extr.Start(ctx, docID)
	if err != nil {
		return err
	}
	raw, err := art.Marshal()
	if err != nil {
		return err
	}
	if err := s.extr.FinishSuccess(ctx, rec.ID, string(ext.Tier), ext.Result, raw); err != nil {
		return err
	}
	return s.extr.ReplaceRows(ctx, rec.ID, ext.Entries)
}

// persistFailure records a failed extraction in the store so failures are
// queryable next to successes. Best effort; the pipeline error is what the
// caller sees.
func (s *Service) persistFailure(ctx context.Context, path string, cause error) {
	if s.docs == nil || s.extr == nil {
		return
	}

	ingestor := ingest.NewFSIngestor(s.docs, s.logger)
	res, err := ingestor.IngestPath(ctx, path)
	if err != nil {
		s.logger.Warn("failed to record extraction failure", "path", path, "error", err)
		return
	}
	docID, err := uuid.Parse(res.DocumentID)
	if err != nil {
		return
	}
	rec, err := s.extr.Start(ctx, docID)
	if err != nil {
		s.logger.Warn("failed to record extraction failure", "path", path, "error", err)
		return
	}
	if err := s.extr.FinishFailure(ctx, rec.ID, cause.Error()); err != nil {
		s.logger.Warn("failed to record extraction failure", "path", path, "error", err)
	}
}

// Process implements async.Processor for watch mode. The job's trace id
// becomes the request id so queue and pipeline logs correlate, and Force
// reruns documents the catalog has already marked done.
func (s *Service) Process(ctx context.Context, job async.Job) error {
	if job.TraceID != "" {
		ctx = common.WithRequestID(ctx, job.TraceID)
	}
	_, err := s.extract(ctx, job.Path, job.Force)
	return err
}
