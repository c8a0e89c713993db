// Package cli provides output formatting for the joshu command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/hyperjump/joshu/internal/models"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// OutputText renders for a terminal. Default.
	OutputText OutputFormat = "text"
	// OutputJSON renders the response verbatim for piping into jq and friends.
	OutputJSON OutputFormat = "json"
)

// WriteAnswer writes an ask response to w in the given format.
func WriteAnswer(w io.Writer, resp *models.AskResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	default:
		writeAnswerText(w, resp)
		return nil
	}
}

func writeAnswerText(w io.Writer, resp *models.AskResponse) {
	fmt.Fprintf(w, "\n%s\n", resp.Answer)
	if len(resp.Links) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, link := range resp.Links {
		fmt.Fprintf(w, "%2d. %s\n    %s\n", i+1, link.Text, link.URL)
	}
}

// WriteStatus writes a status report to w in the given format. Text output
// lists keys alphabetically so runs are comparable.
func WriteStatus(w io.Writer, status map[string]any, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	default:
		keys := make([]string, 0, len(status))
		for k := range status {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%-20s %v\n", k+":", status[k])
		}
		return nil
	}
}
