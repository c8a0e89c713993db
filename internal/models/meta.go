package models

import (
	"encoding/json"
	"strconv"
)

// metaString returns the first present key's value as a string, or "".
func metaString(meta map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := meta[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// metaInt returns the first present key's value as an int64, or 0.
// Accepts float64 (the default JSON number decoding), json.Number, int-likes,
// and numeric strings.
func metaInt(meta map[string]any, keys ...string) int64 {
	for _, k := range keys {
		v, ok := meta[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int64(n)
		case int:
			return int64(n)
		case int64:
			return n
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i
			}
		case string:
			if i, err := strconv.ParseInt(n, 10, 64); err == nil {
				return i
			}
		}
	}
	return 0
}
