package ingest

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/staffingtools/sow-extractor/internal/entity"
)

// memDocs is an in-memory DocumentRepository keyed by content hash.
type memDocs struct {
	byHash map[string]*entity.Document
}

func newMemDocs() *memDocs {
	return &memDocs{byHash: map[string]*entity.Document{}}
}

func (m *memDocs) GetByID(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	for _, d := range m.byHash {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, os.ErrNotExist
}

func (m *memDocs) GetByHash(_ context.Context, hash []byte) (*entity.Document, error) {
	if d, ok := m.byHash[hex.EncodeToString(hash)]; ok {
		return d, nil
	}
	return nil, os.ErrNotExist
}

func (m *memDocs) Create(_ context.Context, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*entity.Document, error) {
	d := &entity.Document{
		ID:          uuid.New(),
		SourcePath:  sourcePath,
		Filename:    filename,
		FileExt:     ext,
		FileSize:    size,
		ContentHash: hash,
		UploadedAt:  uploadedAt,
	}
	m.byHash[hex.EncodeToString(hash)] = d
	return d, nil
}

func (m *memDocs) UpsertByHash(ctx context.Context, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*entity.Document, bool, error) {
	if d, ok := m.byHash[hex.EncodeToString(hash)]; ok {
		return d, true, nil
	}
	d, err := m.Create(ctx, sourcePath, filename, ext, size, hash, uploadedAt)
	return d, false, err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAllowedExt(t *testing.T) {
	for _, ok := range []string{".pdf", "pdf", ".DOCX"} {
		if !AllowedExt(ok) {
			t.Fatalf("%q should be allowed", ok)
		}
	}
	for _, bad := range []string{".txt", ".xlsx", ""} {
		if AllowedExt(bad) {
			t.Fatalf("%q should not be allowed", bad)
		}
	}
}

func TestIsHidden(t *testing.T) {
	if !IsHidden("/data/.git") || !IsHidden(".DS_Store") {
		t.Fatal("dotfiles should be hidden")
	}
	if IsHidden("/data/sow.pdf") {
		t.Fatal("regular file should not be hidden")
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sow.pdf", "hello")

	// sha256("hello")
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestIngestPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sow.pdf", "%PDF-1.7 content")
	docs := newMemDocs()
	ing := NewFSIngestor(docs, nil)

	res, err := ing.IngestPath(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestPath failed: %v", err)
	}
	if res.Deduplicated {
		t.Fatal("first ingest should not deduplicate")
	}
	if res.FileExt != "pdf" {
		t.Fatalf("unexpected ext: %q", res.FileExt)
	}
	if _, err := uuid.Parse(res.DocumentID); err != nil {
		t.Fatalf("document id is not a UUID: %q", res.DocumentID)
	}

	// same content again, different name
	dup := writeFile(t, dir, "copy.pdf", "%PDF-1.7 content")
	res2, err := ing.IngestPath(context.Background(), dup)
	if err != nil {
		t.Fatalf("IngestPath failed: %v", err)
	}
	if !res2.Deduplicated || res2.DocumentID != res.DocumentID {
		t.Fatalf("expected dedup onto the same document, got %+v", res2)
	}
}

func TestIngestPathRejectsUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "hello")
	ing := NewFSIngestor(newMemDocs(), nil)

	if _, err := ing.IngestPath(context.Background(), path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf", "doc a")
	writeFile(t, dir, "b.docx", "doc b")
	writeFile(t, dir, "skip.txt", "not a document")
	if err := os.Mkdir(filepath.Join(dir, ".hidden"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, ".hidden"), "c.pdf", "hidden doc")

	ing := NewFSIngestor(newMemDocs(), nil)
	results, stats, err := ing.IngestDirectory(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("IngestDirectory failed: %v", err)
	}
	if stats.Matched != 2 || stats.Succeeded != 2 || stats.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestIngestDirectoryEmptyRoot(t *testing.T) {
	ing := NewFSIngestor(newMemDocs(), nil)
	if _, _, err := ing.IngestDirectory(context.Background(), "  ", false); err == nil {
		t.Fatal("expected error for blank root")
	}
}
