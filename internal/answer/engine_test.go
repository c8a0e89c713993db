package answer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/joshu/internal/citation"
	"github.com/hyperjump/joshu/internal/config"
	"github.com/hyperjump/joshu/internal/fetch"
	"github.com/hyperjump/joshu/internal/keyword"
	"github.com/hyperjump/joshu/internal/llm"
	"github.com/hyperjump/joshu/internal/models"
	"github.com/hyperjump/joshu/internal/store"
)

type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vec, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		emb, err := s.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return len(s.vec) }
func (s *stubEmbedder) Close() error    { return nil }

type stubCompleter struct {
	answer string
	err    error
	last   llm.Request
	calls  int
}

func (s *stubCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubCompleter) Close() error { return nil }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New([]models.DocumentRecord{
		{
			Text:      "intro chunk text",
			Embedding: []float32{1, 0},
			Source:    models.SourceCourse,
			Meta:      map[string]any{"source": "week1/intro.md"},
		},
		{
			Text:      "hi there chunk text",
			Embedding: []float32{0, 1},
			Source:    models.SourceDiscourse,
			Meta:      map[string]any{"topic_id": 5, "post_number": 2, "topic_title": "Hi There!"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func newTestSynthesizer() *citation.Synthesizer {
	return citation.NewSynthesizer(
		"https://forum.example.org",
		"https://course.example.org",
		"https://forum.example.org/",
	)
}

func askConfig(mode string) *config.AskConfig {
	return &config.AskConfig{Retrieval: mode, TopK: 2, ContextLimit: 30}
}

func TestAsk_semantic(t *testing.T) {
	st := newTestStore(t)
	completer := &stubCompleter{answer: "The answer."}
	engine := NewEngine(Params{
		Store:       st,
		Embedder:    &stubEmbedder{vec: []float32{1, 0}},
		Completer:   completer,
		Synthesizer: newTestSynthesizer(),
		Ask:         askConfig(config.RetrievalSemantic),
	})

	resp, err := engine.Ask(context.Background(), &models.AskRequest{Question: "what is in the intro?"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "The answer." {
		t.Errorf("answer: got %q", resp.Answer)
	}
	if len(resp.Links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(resp.Links))
	}
	if resp.Links[0].URL != "https://course.example.org/#/intro" {
		t.Errorf("first link should be the best match: %q", resp.Links[0].URL)
	}
	if resp.Links[1].URL != "https://forum.example.org/t/hi-there/5/2" {
		t.Errorf("second link: %q", resp.Links[1].URL)
	}

	if completer.last.System != "You are a helpful teaching assistant." {
		t.Errorf("system message: %q", completer.last.System)
	}
	user := completer.last.User
	introPos := strings.Index(user, "intro chunk text")
	hiPos := strings.Index(user, "hi there chunk text")
	if introPos < 0 || hiPos < 0 {
		t.Fatalf("prompt should carry both chunks: %q", user)
	}
	if introPos > hiPos {
		t.Error("context chunks must appear in rank order")
	}
	if !strings.Contains(user, "Question: what is in the intro?") {
		t.Errorf("prompt should end with the question: %q", user)
	}
}

func TestAsk_emptyQuestion(t *testing.T) {
	engine := NewEngine(Params{
		Store:       newTestStore(t),
		Embedder:    &stubEmbedder{vec: []float32{1, 0}},
		Completer:   &stubCompleter{answer: "x"},
		Synthesizer: newTestSynthesizer(),
		Ask:         askConfig(config.RetrievalSemantic),
	})
	_, err := engine.Ask(context.Background(), &models.AskRequest{Question: "   "})
	if !errors.Is(err, models.ErrEmptyQuestion) {
		t.Errorf("expected ErrEmptyQuestion, got %v", err)
	}
}

func TestAsk_embedderFailureIsUpstream(t *testing.T) {
	engine := NewEngine(Params{
		Store:       newTestStore(t),
		Embedder:    &stubEmbedder{err: errors.New("service down")},
		Completer:   &stubCompleter{answer: "x"},
		Synthesizer: newTestSynthesizer(),
		Ask:         askConfig(config.RetrievalSemantic),
	})
	_, err := engine.Ask(context.Background(), &models.AskRequest{Question: "q"})
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestAsk_completerFailureIsUpstream(t *testing.T) {
	completer := &stubCompleter{err: errors.New("model overloaded")}
	engine := NewEngine(Params{
		Store:       newTestStore(t),
		Embedder:    &stubEmbedder{vec: []float32{1, 0}},
		Completer:   completer,
		Synthesizer: newTestSynthesizer(),
		Ask:         askConfig(config.RetrievalSemantic),
	})
	_, err := engine.Ask(context.Background(), &models.AskRequest{Question: "q"})
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("error should carry the cause: %v", err)
	}
}

func TestAsk_dimensionMismatchStaysHard(t *testing.T) {
	engine := NewEngine(Params{
		Store:       newTestStore(t),
		Embedder:    &stubEmbedder{vec: []float32{1, 0, 0}},
		Completer:   &stubCompleter{answer: "x"},
		Synthesizer: newTestSynthesizer(),
		Ask:         askConfig(config.RetrievalSemantic),
	})
	_, err := engine.Ask(context.Background(), &models.AskRequest{Question: "q"})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if errors.Is(err, ErrUpstream) {
		t.Errorf("dimension mismatch must not degrade: %v", err)
	}
}

func TestAsk_keywordMode(t *testing.T) {
	st := newTestStore(t)
	idx, err := keyword.Build(st)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	completer := &stubCompleter{answer: "keyword answer"}
	engine := NewEngine(Params{
		Store: st,
		// A failing embedder proves keyword mode never embeds.
		Embedder:    &stubEmbedder{err: errors.New("must not be called")},
		Completer:   completer,
		Keywords:    idx,
		Synthesizer: newTestSynthesizer(),
		Ask:         askConfig(config.RetrievalKeyword),
	})

	resp, err := engine.Ask(context.Background(), &models.AskRequest{Question: "intro"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "keyword answer" {
		t.Errorf("answer: %q", resp.Answer)
	}
	if len(resp.Links) != 1 {
		t.Fatalf("expected 1 link for the matching record, got %d", len(resp.Links))
	}
	if resp.Links[0].URL != "https://course.example.org/#/intro" {
		t.Errorf("link: %q", resp.Links[0].URL)
	}
	if !strings.Contains(completer.last.User, "intro chunk text") {
		t.Errorf("prompt should carry the matching chunk: %q", completer.last.User)
	}
}

func TestAsk_noneMode(t *testing.T) {
	defaults := []models.CitationLink{
		{URL: "https://forum.example.org/", Text: "Forum"},
	}
	completer := &stubCompleter{answer: "no retrieval answer"}
	engine := NewEngine(Params{
		Store:       newTestStore(t),
		Embedder:    &stubEmbedder{err: errors.New("must not be called")},
		Completer:   completer,
		Synthesizer: newTestSynthesizer(),
		Ask:         askConfig(config.RetrievalNone),
		Defaults:    defaults,
	})

	resp, err := engine.Ask(context.Background(), &models.AskRequest{Question: "anything"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Links) != 1 || resp.Links[0].Text != "Forum" {
		t.Errorf("expected the static default links, got %+v", resp.Links)
	}
	if !strings.Contains(completer.last.User, "intro chunk text") ||
		!strings.Contains(completer.last.User, "hi there chunk text") {
		t.Errorf("prompt should carry the store head: %q", completer.last.User)
	}
}

func TestAsk_linkSupplement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("supplemental page text"))
	}))
	defer srv.Close()

	completer := &stubCompleter{answer: "x"}
	engine := NewEngine(Params{
		Store:       newTestStore(t),
		Embedder:    &stubEmbedder{vec: []float32{1, 0}},
		Completer:   completer,
		Fetcher:     fetch.New(5*time.Second, 1024),
		Synthesizer: newTestSynthesizer(),
		Ask:         askConfig(config.RetrievalSemantic),
	})

	_, err := engine.Ask(context.Background(), &models.AskRequest{Question: "q", Link: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(completer.last.User, "supplemental page text") {
		t.Errorf("fetched link text should join the context: %q", completer.last.User)
	}
}

func TestAsk_deadLinkDoesNotFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	completer := &stubCompleter{answer: "still answered"}
	engine := NewEngine(Params{
		Store:       newTestStore(t),
		Embedder:    &stubEmbedder{vec: []float32{1, 0}},
		Completer:   completer,
		Fetcher:     fetch.New(time.Second, 1024),
		Synthesizer: newTestSynthesizer(),
		Ask:         askConfig(config.RetrievalSemantic),
	})

	resp, err := engine.Ask(context.Background(), &models.AskRequest{Question: "q", Link: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "still answered" {
		t.Errorf("answer: %q", resp.Answer)
	}
}

func TestAsk_multimodalGate(t *testing.T) {
	completer := &stubCompleter{answer: "x"}
	cfg := askConfig(config.RetrievalSemantic)
	engine := NewEngine(Params{
		Store:       newTestStore(t),
		Embedder:    &stubEmbedder{vec: []float32{1, 0}},
		Completer:   completer,
		Synthesizer: newTestSynthesizer(),
		Ask:         cfg,
	})

	if _, err := engine.Ask(context.Background(), &models.AskRequest{Question: "q", Image: "abc"}); err != nil {
		t.Fatal(err)
	}
	if completer.last.Image != "" {
		t.Error("image must be dropped when multimodal is disabled")
	}

	cfg.Multimodal = true
	if _, err := engine.Ask(context.Background(), &models.AskRequest{Question: "q", Image: "abc"}); err != nil {
		t.Fatal(err)
	}
	if completer.last.Image != "abc" {
		t.Errorf("image should pass through when multimodal is enabled: %q", completer.last.Image)
	}
}
