package catalog

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/staffingtools/sow-extractor/constants"
)

func openTestCatalog(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunLifecycle(t *testing.T) {
	db := openTestCatalog(t)

	id, err := StartRun(db, "/data/in/sow.pdf", "abc123")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	running, err := RunsByStatus(db, constants.RunStatusRunning)
	if err != nil {
		t.Fatalf("RunsByStatus failed: %v", err)
	}
	if len(running) != 1 || running[0].ID != id || running[0].SourcePath != "/data/in/sow.pdf" {
		t.Fatalf("unexpected running runs: %+v", running)
	}
	if running[0].FinishedAt != nil {
		t.Fatal("running run should have no finish time")
	}

	if err := FinishRun(db, id, "native", 4, "/data/in/sow_parsed.json"); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	done, err := RunsByStatus(db, constants.RunStatusDone)
	if err != nil {
		t.Fatalf("RunsByStatus failed: %v", err)
	}
	if len(done) != 1 {
		t.Fatalf("expected 1 done run, got %d", len(done))
	}
	r := done[0]
	if r.Tier != "native" || r.EntryCount != 4 || r.ArtifactPath != "/data/in/sow_parsed.json" {
		t.Fatalf("unexpected finished run: %+v", r)
	}
	if r.FinishedAt == nil {
		t.Fatal("finished run should carry a finish time")
	}
}

func TestFailRun(t *testing.T) {
	db := openTestCatalog(t)

	id, err := StartRun(db, "/data/in/broken.pdf", "def456")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if err := FailRun(db, id, "pdftotext: exit status 1"); err != nil {
		t.Fatalf("FailRun failed: %v", err)
	}

	failed, err := RunsByStatus(db, constants.RunStatusFailed)
	if err != nil {
		t.Fatalf("RunsByStatus failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ErrorMessage != "pdftotext: exit status 1" {
		t.Fatalf("unexpected failed runs: %+v", failed)
	}
}

func TestHashDone(t *testing.T) {
	db := openTestCatalog(t)

	id, err := StartRun(db, "/data/in/sow.pdf", "abc123")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	done, err := HashDone(db, "abc123")
	if err != nil {
		t.Fatalf("HashDone failed: %v", err)
	}
	if done {
		t.Fatal("hash should not count as done while the run is still running")
	}

	if err := FinishRun(db, id, "native", 2, ""); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	done, err = HashDone(db, "abc123")
	if err != nil {
		t.Fatalf("HashDone failed: %v", err)
	}
	if !done {
		t.Fatal("finished hash should count as done")
	}

	if other, _ := HashDone(db, "unseen"); other {
		t.Fatal("unseen hash should not count as done")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := StartRun(db, "/data/in/sow.pdf", "abc"); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	db.Close()

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	runs, err := RunsByStatus(db2, constants.RunStatusRunning)
	if err != nil {
		t.Fatalf("RunsByStatus failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected the run to survive reopen, got %d", len(runs))
	}
}
