// Package artifact serializes extraction results to the on-disk JSON
// artifact consumed by reporting tools, validating each one against its
// schema before writing.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/staffingtools/sow-extractor/internal/staffing"
)

// Artifact is the persisted form of one document's extraction.
type Artifact struct {
	SourceFile  string                  `json:"source_file"`
	Tier        string                  `json:"extraction_tier"`
	GeneratedAt time.Time               `json:"generated_at"`
	Staffing    staffing.Result         `json:"staffing"`
	Minimal     []staffing.MinimalEntry `json:"minimal_entries"`
}

// New assembles an artifact for a source document, including the minimal
// projection derived from the result's entries.
func New(sourcePath, tier string, res staffing.Result) Artifact {
	minimal := staffing.Minimalize(res.Entries, res.Totals.FTEYearlyHoursBasis)
	if minimal == nil {
		minimal = []staffing.MinimalEntry{}
	}
	return Artifact{
		SourceFile:  filepath.Base(sourcePath),
		Tier:        tier,
		GeneratedAt: time.Now().UTC(),
		Staffing:    res,
		Minimal:     minimal,
	}
}

// Marshal renders the artifact as indented JSON, validated against the
// staffing schema.
func (a Artifact) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	if err := ValidateAgainstSchema(BuildStaffingJSONSchema(), data); err != nil {
		return nil, fmt.Errorf("artifact for %s: %w", a.SourceFile, err)
	}
	return data, nil
}

// Write stores the artifact next to the source document (or under outDir
// when set) as <stem>_parsed.json and returns the written path.
func (a Artifact) Write(sourcePath, outDir string) (string, error) {
	data, err := a.Marshal()
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(sourcePath)
	if outDir != "" {
		dir = outDir
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create artifact dir: %w", err)
		}
	}
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	path := filepath.Join(dir, stem+"_parsed.json")

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}
