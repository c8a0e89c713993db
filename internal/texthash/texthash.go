// Package texthash provides the cache key for embedded text.
package texthash

import (
	"crypto/md5"
	"encoding/hex"
)

// Sum returns the md5 hex digest of text. Cache entries are keyed by
// (Sum(text), model); this is a cache key, not a security boundary.
func Sum(text string) string {
	h := md5.Sum([]byte(text))
	return hex.EncodeToString(h[:])
}
