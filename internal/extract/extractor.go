// Package extract provides plain-text extraction from course material files.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lu4p/cat"
)

// Extractor converts the file formats found in a course repo to plain text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content. Plain text
// files (.txt, .md, .rst) come back as-is, UTF-8 sanitized; PDF, Office, and
// OpenDocument formats are extracted from their binary containers. RTF goes
// through its own file-based extraction since it is neither a zip nor UTF-8.
func (e *Extractor) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".rtf" {
		txt, err := cat.File(path)
		if err != nil {
			return "", fmt.Errorf("extract RTF: %w", err)
		}
		return strings.TrimSpace(strings.ToValidUTF8(txt, "�")), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from in-memory content. ext selects the format
// and includes the leading dot (".pdf"). Unknown extensions are treated as
// plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDocx(content)
	case ".pptx":
		return extractPptx(content)
	case ".xlsx":
		return extractExcel(content)
	case ".odt", ".odp", ".ods":
		return extractOpenDoc(content, ext)
	case ".rtf":
		return "", fmt.Errorf("extract RTF: requires file-based extraction")
	default:
		return extractPlain(content)
	}
}
