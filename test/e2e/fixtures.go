package e2e

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// FixtureExtensions lists every extension the e2e corpus writes. Extraction
// also handles .pdf, .odt, and .rtf: there is no minimal PDF with
// extractable text worth generating, .odt shares the ODF code path with
// .odp/.ods, and RTF extraction is file-based only.
var FixtureExtensions = []string{
	".md", ".txt", ".rst",
	".docx", ".pptx", ".xlsx", ".odp", ".ods",
}

// MinimalFile returns the bytes of a minimal file of the given extension
// whose extracted text is exactly text. Plain extensions return the text
// itself; container formats wrap it in the smallest structure extraction
// recognizes.
func MinimalFile(ext, text string) ([]byte, error) {
	switch ext {
	case ".md", ".txt", ".rst":
		return []byte(text), nil
	case ".docx":
		return zipOneFile("word/document.xml",
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>`+text+`</w:t></w:r></w:p></w:body></w:document>`)
	case ".pptx":
		return zipOneFile("ppt/slides/slide1.xml",
			`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>`+text+`</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
	case ".odp":
		return zipOneFile("content.xml",
			`<office:document><office:body><office:presentation><draw:page><draw:frame><draw:text-box><text:p>`+text+`</text:p></draw:text-box></draw:frame></draw:page></office:presentation></office:body></office:document>`)
	case ".ods":
		return zipOneFile("content.xml",
			`<office:document><office:body><office:spreadsheet><table:table><table:table-row><table:table-cell><text:p>`+text+`</text:p></table:table-cell></table:table-row></table:table></office:spreadsheet></office:body></office:document>`)
	case ".xlsx":
		return minimalXlsx(text)
	default:
		return nil, fmt.Errorf("no fixture generator for %s", ext)
	}
}

func zipOneFile(name, body string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create(name)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write([]byte(body)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func minimalXlsx(text string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellValue("Sheet1", "A1", text); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
