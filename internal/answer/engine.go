// Package answer runs the question answering pipeline: retrieve context for
// a question, assemble the prompt, call the completion service, and attach
// citation links.
package answer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/joshu/internal/citation"
	"github.com/hyperjump/joshu/internal/config"
	"github.com/hyperjump/joshu/internal/embedding"
	"github.com/hyperjump/joshu/internal/fetch"
	"github.com/hyperjump/joshu/internal/keyword"
	"github.com/hyperjump/joshu/internal/llm"
	"github.com/hyperjump/joshu/internal/models"
	"github.com/hyperjump/joshu/internal/prompt"
	"github.com/hyperjump/joshu/internal/store"
	"github.com/hyperjump/joshu/internal/vector"
)

// ErrUpstream marks failures of the external embedding or completion
// services. The HTTP layer degrades these into an in-band error answer with
// empty links instead of a transport error; everything else stays a hard
// failure.
var ErrUpstream = errors.New("upstream service error")

// Engine answers questions against the loaded store.
type Engine struct {
	store       *store.Store
	embedder    embedding.Embedder
	completer   llm.Completer
	keywords    *keyword.Index
	fetcher     *fetch.Fetcher
	synthesizer *citation.Synthesizer
	ask         *config.AskConfig
	defaults    []models.CitationLink
	logger      *zap.Logger
}

// Params collects the engine's collaborators. Keywords is only consulted in
// keyword retrieval mode, the Embedder only in semantic mode; Fetcher may be
// nil to disable link fetching.
type Params struct {
	Store       *store.Store
	Embedder    embedding.Embedder
	Completer   llm.Completer
	Keywords    *keyword.Index
	Fetcher     *fetch.Fetcher
	Synthesizer *citation.Synthesizer
	Ask         *config.AskConfig
	Defaults    []models.CitationLink
	Logger      *zap.Logger
}

// NewEngine creates an answer engine with the given dependencies.
func NewEngine(p Params) *Engine {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:       p.Store,
		embedder:    p.Embedder,
		completer:   p.Completer,
		keywords:    p.Keywords,
		fetcher:     p.Fetcher,
		synthesizer: p.Synthesizer,
		ask:         p.Ask,
		defaults:    p.Defaults,
		logger:      logger,
	}
}

// Ask answers one question. Failures of the embedding or completion services
// come back wrapped in ErrUpstream; an invalid request comes back as
// models.ErrEmptyQuestion; retrieval contract violations (such as a query
// dimension mismatch) stay hard errors.
func (e *Engine) Ask(ctx context.Context, req *models.AskRequest) (*models.AskResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	texts, links, err := e.retrieve(ctx, req.Question)
	if err != nil {
		return nil, err
	}

	if req.Link != "" {
		if e.fetcher == nil {
			e.logger.Debug("link fetching disabled, ignoring request link", zap.String("link", req.Link))
		} else if body, err := e.fetcher.Text(ctx, req.Link); err != nil {
			// A dead link must not kill the answer.
			e.logger.Warn("failed to fetch request link", zap.String("link", req.Link), zap.Error(err))
		} else if body != "" {
			texts = append(texts, body)
		}
	}

	image := req.Image
	if image != "" && !e.ask.Multimodal {
		e.logger.Debug("multimodal disabled, ignoring request image")
		image = ""
	}

	answer, err := e.completer.Complete(ctx, llm.Request{
		System: prompt.System,
		User:   prompt.User(prompt.Context(texts), req.Question),
		Image:  image,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return &models.AskResponse{Answer: answer, Links: links}, nil
}

// retrieve selects the context texts and citation links for a question
// according to the configured retrieval mode.
func (e *Engine) retrieve(ctx context.Context, question string) ([]string, []models.CitationLink, error) {
	switch e.ask.Retrieval {
	case config.RetrievalSemantic:
		queryEmbedding, err := e.embedder.Embed(ctx, question)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: embedding question: %v", ErrUpstream, err)
		}
		results, err := vector.Rank(queryEmbedding, e.store, e.ask.TopK)
		if err != nil {
			return nil, nil, err
		}
		return recordTexts(results), e.synthesizer.Links(results), nil

	case config.RetrievalKeyword:
		hits, err := e.keywords.Search(ctx, question, e.ask.TopK)
		if err != nil {
			return nil, nil, fmt.Errorf("keyword retrieval: %w", err)
		}
		records := e.store.Records()
		results := make([]models.RankedResult, 0, len(hits))
		for _, hit := range hits {
			if hit.RecordIndex < 0 || hit.RecordIndex >= len(records) {
				continue
			}
			results = append(results, models.RankedResult{Record: &records[hit.RecordIndex], Score: hit.Score})
		}
		return recordTexts(results), e.synthesizer.Links(results), nil

	case config.RetrievalNone:
		head := e.store.Head(e.ask.ContextLimit)
		texts := make([]string, len(head))
		for i := range head {
			texts[i] = head[i].Text
		}
		return texts, e.defaultLinks(), nil

	default:
		return nil, nil, fmt.Errorf("unknown retrieval mode %q", e.ask.Retrieval)
	}
}

func (e *Engine) defaultLinks() []models.CitationLink {
	links := make([]models.CitationLink, len(e.defaults))
	copy(links, e.defaults)
	return links
}

func recordTexts(results []models.RankedResult) []string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Record.Text
	}
	return texts
}
