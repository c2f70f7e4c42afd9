package render

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Embedded is one image object extracted from a PDF, tagged with the page it
// was embedded on.
type Embedded struct {
	Page  int
	Image image.Image
}

// pdfcpu names extracted images <basename>_<page>_<objname>.<ext>.
var reEmbeddedPage = regexp.MustCompile(`_(\d+)_[^_]*\.\w+$`)

// ExtractEmbeddedImages pulls image objects embedded in the first maxPages
// pages (staffing tables pasted into SOWs as screenshots) and applies the
// OCR preprocessing chain to each. Extraction order follows pdfcpu's
// page-then-object file naming, so results are deterministic.
func (r *Renderer) ExtractEmbeddedImages(ctx context.Context, pdfPath string, maxPages int) ([]Embedded, error) {
	if maxPages <= 0 {
		maxPages = r.cfg.MaxPages
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "sow-embedded-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			r.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", rmErr)
		}
	}()

	// pdfcpu rejects page selections past the end of the document.
	if n, err := PageCount(pdfPath); err == nil && n > 0 && n < maxPages {
		maxPages = n
	}

	pages := []string{fmt.Sprintf("1-%d", maxPages)}
	if err := api.ExtractImagesFile(pdfPath, tmpDir, pages, nil); err != nil {
		return nil, fmt.Errorf("pdfcpu extract images: %w", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	imgs := make([]Embedded, 0, len(names))
	for _, name := range names {
		img, err := imaging.Open(filepath.Join(tmpDir, name))
		if err != nil {
			r.logger.Warn("skipping unreadable embedded image", "name", name, "error", err)
			continue
		}
		page := 0
		if m := reEmbeddedPage.FindStringSubmatch(name); m != nil {
			page, _ = strconv.Atoi(m[1])
		}
		imgs = append(imgs, Embedded{Page: page, Image: Preprocess(img)})
	}
	return imgs, nil
}

// PageCount reports the number of pages in a PDF.
func PageCount(pdfPath string) (int, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return api.PageCount(f, nil)
}
