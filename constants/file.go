package constants

import "strings"

// Formats holds the document formats the extraction pipeline accepts.
var Formats = []string{"PDF", "DOCX"}

const (
	PDF  = "PDF"
	DOCX = "DOCX"
)

// AllowedExtensions holds the default allowed file extensions for SOW ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a document format.
// Returns "" for anything the pipeline does not handle.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	default:
		return ""
	}
}
