package source

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/staffingtools/sow-extractor/internal/tabular"
)

// parseDocx streams word/document.xml out of the DOCX zip container and
// collects paragraph text plus native table matrices. Only top-level tables
// become matrices; nested table content is flattened into its host cell.
func parseDocx(path string) (string, []tabular.Matrix, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", nil, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", nil, fmt.Errorf("docx missing word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	return parseDocumentXML(rc)
}

func parseDocumentXML(r io.Reader) (string, []tabular.Matrix, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		tables     []tabular.Matrix
		rows       [][]string
		row        []string
		cell       strings.Builder
		para       strings.Builder
		tblDepth   int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
				if tblDepth == 1 {
					rows = nil
				}
			case "tr":
				if tblDepth == 1 {
					row = nil
				}
			case "tc":
				if tblDepth == 1 {
					cell.Reset()
				}
			case "t":
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return "", nil, fmt.Errorf("parse document.xml: %w", err)
				}
				if tblDepth > 0 {
					cell.WriteString(s)
				} else {
					para.WriteString(s)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if tblDepth > 0 {
					// paragraph break inside a cell
					cell.WriteString(" ")
					break
				}
				if txt := strings.TrimSpace(para.String()); txt != "" {
					paragraphs = append(paragraphs, txt)
				}
				para.Reset()
			case "tc":
				if tblDepth == 1 {
					row = append(row, strings.TrimSpace(cell.String()))
				}
			case "tr":
				if tblDepth == 1 && len(row) > 0 {
					rows = append(rows, row)
				}
			case "tbl":
				tblDepth--
				if tblDepth == 0 && len(rows) > 0 {
					if m := tabular.NewMatrix(rows); m != nil {
						tables = append(tables, m)
					}
				}
			}
		}
	}

	return strings.Join(paragraphs, "\n"), tables, nil
}
