// Package citation synthesizes canonical citation URLs from document record
// metadata and builds deduplicated citation lists for responses.
package citation

import (
	"strings"
	"unicode"
)

// Slugify converts free text to a URL-safe slug: lower-cased, characters
// outside [a-z0-9], whitespace, and hyphens stripped, runs of whitespace and
// hyphens collapsed to a single hyphen, leading and trailing hyphens trimmed.
// Slugify is idempotent, so already-slugged input passes through unchanged.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = true
		}
	}
	return b.String()
}
