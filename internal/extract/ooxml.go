package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Office Open XML containers. Word text lives in <w:t> runs inside the main
// document part; slide text in <a:t> runs under ppt/slides/.
const (
	docxMainDocumentPath = "word/document.xml"
	pptxSlidePathPrefix  = "ppt/slides/slide"
	contentTypesPath     = "[Content_Types].xml"
	docxMainContentType  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

var (
	// Tags may carry attributes such as xml:space="preserve".
	wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

	// Override elements in [Content_Types].xml, both attribute orders.
	partNameFirst = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	partNameLast  = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// docxMainPart locates the main document inside the package by consulting
// [Content_Types].xml; real-world files do not always use word/document.xml.
func docxMainPart(zr *zip.Reader) string {
	for _, f := range zr.File {
		if f.Name != contentTypesPath {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return ""
		}
		if m := partNameFirst.FindSubmatch(data); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
		if m := partNameLast.FindSubmatch(data); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
		return ""
	}
	return ""
}

func joinMatches(b *strings.Builder, matches [][]string) {
	for _, m := range matches {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(m[1]))
	}
}

func extractDocx(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}
	docPath := docxMainPart(zr)
	if docPath == "" {
		docPath = docxMainDocumentPath
	}
	for _, f := range zr.File {
		if f.Name != docPath {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract DOCX: read %s: %w", f.Name, err)
		}
		var b strings.Builder
		joinMatches(&b, wtTag.FindAllStringSubmatch(string(data), -1))
		return strings.TrimSpace(b.String()), nil
	}
	return "", fmt.Errorf("extract DOCX: %s not found", docPath)
}

func extractPptx(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract PPTX: not a zip: %w", err)
	}
	var b strings.Builder
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, pptxSlidePathPrefix) || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract PPTX: read %s: %w", f.Name, err)
		}
		joinMatches(&b, atTag.FindAllStringSubmatch(string(data), -1))
	}
	return strings.TrimSpace(b.String()), nil
}
