package models

import (
	"errors"
	"strings"
)

// ErrEmptyQuestion is returned when an ask request has no question text.
var ErrEmptyQuestion = errors.New("question cannot be empty")

// AskRequest is a question posed to the service. Image is an optional base64
// image payload (used only when multimodal input is enabled); Link is an
// optional URL whose fetched text supplements the prompt context.
type AskRequest struct {
	Question string `json:"question"`
	Image    string `json:"image,omitempty"`
	Link     string `json:"link,omitempty"`
}

// Validate checks the request and normalizes the question.
func (r *AskRequest) Validate() error {
	r.Question = strings.TrimSpace(r.Question)
	if r.Question == "" {
		return ErrEmptyQuestion
	}
	return nil
}

// CitationLink points at a source document backing an answer.
type CitationLink struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// AskResponse is the answer to a question plus its citation links.
// Links is never null in JSON; an answer without citations carries [].
type AskResponse struct {
	Answer string         `json:"answer"`
	Links  []CitationLink `json:"links"`
}
