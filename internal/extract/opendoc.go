package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// OpenDocument files (.odt, .odp, .ods) are zips carrying their body in
// content.xml; visible text sits in text:p, text:span, and text:h elements.
const odfContentPath = "content.xml"

var (
	odfTextP    = regexp.MustCompile(`<text:p[^>]*>([^<]*)</text:p>`)
	odfTextSpan = regexp.MustCompile(`<text:span[^>]*>([^<]*)</text:span>`)
	odfTextH    = regexp.MustCompile(`<text:h[^>]*>([^<]*)</text:h>`)
)

func extractOpenDoc(content []byte, ext string) (string, error) {
	kind := strings.ToUpper(strings.TrimPrefix(ext, "."))
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract %s: not a zip: %w", kind, err)
	}
	for _, f := range zr.File {
		if f.Name != odfContentPath {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract %s: read %s: %w", kind, f.Name, err)
		}
		s := string(data)
		var b strings.Builder
		joinMatches(&b, odfTextP.FindAllStringSubmatch(s, -1))
		joinMatches(&b, odfTextSpan.FindAllStringSubmatch(s, -1))
		joinMatches(&b, odfTextH.FindAllStringSubmatch(s, -1))
		return strings.TrimSpace(b.String()), nil
	}
	return "", fmt.Errorf("extract %s: %s not found", kind, odfContentPath)
}
