// Package llm provides answer generation via an external OpenAI-compatible
// chat completion service.
package llm

import "context"

// Request is one completion request. Image, when set, is a base64 payload or
// data URL attached to the user message for multimodal models.
type Request struct {
	System string
	User   string
	Image  string
}

// Completer generates an answer for an assembled prompt.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Close() error
}
