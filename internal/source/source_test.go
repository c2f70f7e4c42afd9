package source

import (
	"context"
	"strings"
	"testing"
)

type stubRunner struct {
	stdout string
	err    error
	calls  [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return []byte(s.stdout), nil, s.err
}

const documentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Statement of Work</w:t></w:r></w:p>
    <w:p><w:r><w:t>Staffing plan below.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Title</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Hours</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Alice</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Account</w:t></w:r><w:r><w:t> Director</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>900</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
    <w:p><w:r><w:t>Signatures follow.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestParseDocumentXML(t *testing.T) {
	text, tables, err := parseDocumentXML(strings.NewReader(documentXML))
	if err != nil {
		t.Fatalf("parseDocumentXML failed: %v", err)
	}
	if !strings.Contains(text, "Statement of Work") || !strings.Contains(text, "Signatures follow.") {
		t.Fatalf("paragraph text incomplete: %q", text)
	}
	if strings.Contains(text, "Alice") {
		t.Fatalf("table content leaked into paragraph text: %q", text)
	}
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	m := tables[0]
	if len(m) != 2 || len(m[0]) != 3 {
		t.Fatalf("unexpected table shape: %v", m)
	}
	if m[1][1] != "Account Director" {
		t.Fatalf("expected joined runs, got %q", m[1][1])
	}
}

func TestParseDocumentXMLNestedTable(t *testing.T) {
	nested := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc>
        <w:tc>
          <w:tbl>
            <w:tr><w:tc><w:p><w:r><w:t>inner</w:t></w:r></w:p></w:tc></w:tr>
          </w:tbl>
          <w:p><w:r><w:t>Hours</w:t></w:r></w:p>
        </w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`
	_, tables, err := parseDocumentXML(strings.NewReader(nested))
	if err != nil {
		t.Fatalf("parseDocumentXML failed: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("expected nested table flattened into host, got %d tables", len(tables))
	}
	if got := tables[0][0][1]; !strings.Contains(got, "inner") || !strings.Contains(got, "Hours") {
		t.Fatalf("expected nested content flattened into cell, got %q", got)
	}
}

func TestExtractNativePDF(t *testing.T) {
	page1 := "STATEMENT OF WORK\n\nThis agreement covers marketing services.\n"
	page2 := strings.Join([]string{
		"Staffing Plan",
		"",
		"Name            Title                              % Time",
		"Alice Smith     Vice President Client Services     67",
		"Bob Jones       Analyst                            25",
		"",
	}, "\n")
	stub := &stubRunner{stdout: page1 + "\f" + page2}

	a := NewAdapter(Config{}, nil).WithRunner(stub)
	n, err := a.ExtractNative(context.Background(), "/tmp/sow.pdf", "PDF")
	if err != nil {
		t.Fatalf("ExtractNative failed: %v", err)
	}
	if n.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", n.Pages)
	}
	if len(n.Tables) != 1 {
		t.Fatalf("expected 1 recovered table, got %d", len(n.Tables))
	}
	if n.Tables[0].Page != 2 {
		t.Fatalf("expected table on page 2, got %d", n.Tables[0].Page)
	}
	m := n.Tables[0].Matrix
	if m[0][0] != "Name" || m[1][1] != "Vice President Client Services" {
		t.Fatalf("unexpected matrix: %v", m)
	}

	if len(stub.calls) != 1 || !strings.Contains(strings.Join(stub.calls[0], " "), "-layout") {
		t.Fatalf("expected layout-preserving pdftotext call, got %v", stub.calls)
	}
}

func TestExtractNativeUnsupportedFormat(t *testing.T) {
	a := NewAdapter(Config{}, nil)
	if _, err := a.ExtractNative(context.Background(), "/tmp/x.txt", "TXT"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestRecoverLayoutTablesIgnoresProseColumns(t *testing.T) {
	pageText := strings.Join([]string{
		"Terms of payment     shall be net thirty",
		"days from invoice    unless agreed otherwise",
	}, "\n")
	if got := recoverLayoutTables(pageText); len(got) != 0 {
		t.Fatalf("expected prose columns rejected, got %v", got)
	}
}

func TestSufficient(t *testing.T) {
	if (Native{Text: "short"}).Sufficient() {
		t.Fatal("short text should be insufficient")
	}
	if !(Native{Text: strings.Repeat("word ", 200)}).Sufficient() {
		t.Fatal("long text should be sufficient")
	}
}
