// Package prompt assembles completion prompts from ranked context chunks.
package prompt

import (
	"fmt"
	"strings"
)

// Separator delimits context chunks in the assembled prompt.
const Separator = "\n\n---\n\n"

// System is the system message sent with every completion request.
const System = "You are a helpful teaching assistant."

// Context joins chunk texts in rank order. Nothing is dropped or reordered;
// callers decide how many chunks to pass in.
func Context(texts []string) string {
	return strings.Join(texts, Separator)
}

// User composes the user message around the assembled context.
func User(contextText, question string) string {
	return fmt.Sprintf(
		"Use the context below to answer the user's question.\n\nContext:\n%s\n\nQuestion: %s\nAnswer:",
		contextText, question,
	)
}
