package pipeline

import (
	"context"
	"errors"
	"image"
	"regexp"
	"strings"
	"testing"

	"github.com/staffingtools/sow-extractor/internal/ocr"
	"github.com/staffingtools/sow-extractor/internal/render"
	"github.com/staffingtools/sow-extractor/internal/source"
	"github.com/staffingtools/sow-extractor/internal/staffing"
	"github.com/staffingtools/sow-extractor/internal/tabular"
)

type stubSourcer struct {
	native source.Native
	err    error
	calls  int
}

func (s *stubSourcer) ExtractNative(context.Context, string, string) (source.Native, error) {
	s.calls++
	return s.native, s.err
}

type stubRasterizer struct {
	pages       []image.Image
	pagesErr    error
	embedded    []render.Embedded
	embErr      error
	renderCalls int
	embCalls    int
}

func (r *stubRasterizer) RenderPages(context.Context, string, int) ([]image.Image, error) {
	r.renderCalls++
	return r.pages, r.pagesErr
}

func (r *stubRasterizer) ExtractEmbeddedImages(context.Context, string, int) ([]render.Embedded, error) {
	r.embCalls++
	return r.embedded, r.embErr
}

type stubRecognizer struct {
	tokens []ocr.Token
	err    error
}

func (r *stubRecognizer) Tokens(context.Context, image.Image) ([]ocr.Token, error) {
	return r.tokens, r.err
}

func (r *stubRecognizer) CropBelowAnchor(_ context.Context, img image.Image, _ *regexp.Regexp) image.Image {
	return img
}

// tableTokens spells out a two-line "Name / Hours" table with column gaps wide
// enough to split during line reconstruction.
func tableTokens() []ocr.Token {
	word := func(text string, line, left, width int) ocr.Token {
		return ocr.Token{Text: text, Block: 1, Line: line, Left: left, Top: line * 40, Width: width, Height: 30, Conf: 90}
	}
	return []ocr.Token{
		word("Name", 1, 0, 80),
		word("Hours", 1, 700, 100),
		word("Alice", 2, 0, 100),
		word("900", 2, 700, 60),
	}
}

func nativeTable() source.Native {
	return source.Native{
		Text:  "Staffing Plan",
		Pages: 1,
		Tables: []source.Table{{
			Page: 1,
			Matrix: tabular.Matrix{
				{"Name", "Title", "Hours"},
				{"Alice", "Manager", "900"},
			},
		}},
	}
}

func testImage() image.Image { return image.NewRGBA(image.Rect(0, 0, 100, 100)) }

func TestExtractNativeTierWins(t *testing.T) {
	src := &stubSourcer{native: nativeTable()}
	ras := &stubRasterizer{pages: []image.Image{testImage()}}
	rec := &stubRecognizer{tokens: tableTokens()}

	o := NewOrchestrator(Config{Workers: 1}, src, ras, rec, nil)
	ext, err := o.Extract(context.Background(), "/tmp/sow.pdf", "pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if ext.Tier != TierNative {
		t.Fatalf("expected native tier, got %s", ext.Tier)
	}
	if len(ext.Entries) != 1 || ext.Entries[0].Name != "Alice" {
		t.Fatalf("unexpected entries: %+v", ext.Entries)
	}
	if ras.renderCalls != 0 || ras.embCalls != 0 {
		t.Fatal("OCR tiers should not run once native yields entries")
	}
}

func TestExtractFallsBackToRenderOCR(t *testing.T) {
	src := &stubSourcer{native: source.Native{Text: "no tables here"}}
	ras := &stubRasterizer{pages: []image.Image{testImage()}}
	rec := &stubRecognizer{tokens: tableTokens()}

	o := NewOrchestrator(Config{Workers: 1}, src, ras, rec, nil)
	ext, err := o.Extract(context.Background(), "/tmp/sow.pdf", "pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if ext.Tier != TierRenderOCR {
		t.Fatalf("expected render OCR tier, got %s", ext.Tier)
	}
	if len(ext.Entries) != 1 || ext.Entries[0].Hours == nil || *ext.Entries[0].Hours != 900 {
		t.Fatalf("unexpected entries: %+v", ext.Entries)
	}
	if ext.Entries[0].Provenance.Page != 1 {
		t.Fatalf("expected page 1 provenance, got %d", ext.Entries[0].Provenance.Page)
	}
	if ras.embCalls != 0 {
		t.Fatal("embedded tier should not run once render OCR yields entries")
	}
}

func TestExtractFallsBackToEmbeddedImages(t *testing.T) {
	src := &stubSourcer{err: errors.New("encrypted xref")}
	ras := &stubRasterizer{
		pagesErr: errors.New("pdftoppm missing"),
		embedded: []render.Embedded{{Page: 4, Image: testImage()}},
	}
	rec := &stubRecognizer{tokens: tableTokens()}

	o := NewOrchestrator(Config{Workers: 1}, src, ras, rec, nil)
	ext, err := o.Extract(context.Background(), "/tmp/sow.pdf", "pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if ext.Tier != TierEmbeddedOCR {
		t.Fatalf("expected embedded image tier, got %s", ext.Tier)
	}
	if len(ext.Entries) != 1 || ext.Entries[0].Provenance.Page != 4 {
		t.Fatalf("expected entry carrying the embedded image page, got %+v", ext.Entries)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	o := NewOrchestrator(Config{}, &stubSourcer{}, nil, nil, nil)
	_, err := o.Extract(context.Background(), "/tmp/x.txt", "txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), `"txt"`) {
		t.Fatalf("error should name the rejected format, got %q", err)
	}
}

func TestExtractEmptyResultIsWellFormed(t *testing.T) {
	src := &stubSourcer{native: source.Native{Text: "no staffing plan in this document"}}

	// nil rasterizer and recognizer disable the OCR tiers
	o := NewOrchestrator(Config{}, src, nil, nil, nil)
	ext, err := o.Extract(context.Background(), "/tmp/sow.pdf", "pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if ext.Tier != TierNone {
		t.Fatalf("expected no tier, got %s", ext.Tier)
	}
	if ext.PlanPresent || ext.PlanType != staffing.PlanTypeNone {
		t.Fatalf("expected absent plan, got %+v", ext.Result)
	}
	if ext.Entries == nil || len(ext.Entries) != 0 {
		t.Fatalf("expected non-nil empty entries, got %v", ext.Entries)
	}
	if ext.Totals.FTEYearlyHoursBasis != 1800 {
		t.Fatalf("expected default basis, got %v", ext.Totals.FTEYearlyHoursBasis)
	}
}

func TestExtractDOCXSkipsOCRTiers(t *testing.T) {
	src := &stubSourcer{native: source.Native{Text: "prose only"}}
	ras := &stubRasterizer{pages: []image.Image{testImage()}}
	rec := &stubRecognizer{tokens: tableTokens()}

	o := NewOrchestrator(Config{Workers: 1}, src, ras, rec, nil)
	ext, err := o.Extract(context.Background(), "/tmp/sow.docx", "docx")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if ext.Tier != TierNone || ras.renderCalls != 0 || ras.embCalls != 0 {
		t.Fatalf("OCR tiers must not run for DOCX, got tier %s, render=%d emb=%d",
			ext.Tier, ras.renderCalls, ras.embCalls)
	}
}

func TestExtractIsRepeatable(t *testing.T) {
	src := &stubSourcer{native: nativeTable()}
	o := NewOrchestrator(Config{}, src, nil, nil, nil)

	first, err := o.Extract(context.Background(), "/tmp/sow.pdf", "pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	second, err := o.Extract(context.Background(), "/tmp/sow.pdf", "pdf")
	if err != nil {
		t.Fatalf("repeat Extract failed: %v", err)
	}
	if first.Tier != second.Tier || len(first.Entries) != len(second.Entries) {
		t.Fatalf("results differ across runs: %+v vs %+v", first, second)
	}
}
