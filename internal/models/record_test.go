package models

import (
	"encoding/json"
	"testing"
)

func TestParseMeta_course(t *testing.T) {
	rec := &DocumentRecord{
		Source: SourceCourse,
		Meta:   map[string]any{"source": "week1/intro.md", "type": "course"},
	}
	rec.ParseMeta()
	if rec.Course == nil {
		t.Fatal("course meta should be parsed")
	}
	if rec.Course.Path != "week1/intro.md" {
		t.Errorf("unexpected path: %q", rec.Course.Path)
	}
	if rec.Discourse != nil {
		t.Error("discourse meta should be nil for course records")
	}
}

func TestParseMeta_discourse(t *testing.T) {
	rec := &DocumentRecord{
		Source: SourceDiscourse,
		Meta: map[string]any{
			"topic_id":    float64(155939),
			"topic_title": "GA5 Question 8 Clarification",
			"post_number": float64(3),
		},
	}
	rec.ParseMeta()
	if rec.Discourse == nil {
		t.Fatal("discourse meta should be parsed")
	}
	if rec.Discourse.TopicID != 155939 || rec.Discourse.PostNumber != 3 {
		t.Errorf("unexpected ids: %+v", rec.Discourse)
	}
	if rec.Discourse.TopicTitle != "GA5 Question 8 Clarification" {
		t.Errorf("unexpected title: %q", rec.Discourse.TopicTitle)
	}
}

func TestParseMeta_postAliasAndCamelCase(t *testing.T) {
	rec := &DocumentRecord{
		Source: SourcePost,
		Meta: map[string]any{
			"topicId":    "42",
			"postNumber": float64(7),
			"slug":       "already-slugged",
		},
	}
	rec.ParseMeta()
	if rec.Discourse == nil {
		t.Fatal("post source should parse as discourse meta")
	}
	if rec.Discourse.TopicID != 42 {
		t.Errorf("numeric string topicId should parse, got %d", rec.Discourse.TopicID)
	}
	if rec.Discourse.PostNumber != 7 {
		t.Errorf("unexpected post number: %d", rec.Discourse.PostNumber)
	}
	if rec.Discourse.Slug != "already-slugged" {
		t.Errorf("unexpected slug: %q", rec.Discourse.Slug)
	}
}

func TestParseMeta_unknownSource(t *testing.T) {
	rec := &DocumentRecord{Source: "wiki", Meta: map[string]any{"source": "x"}}
	rec.ParseMeta()
	if rec.Course != nil || rec.Discourse != nil {
		t.Error("unknown source should leave both views nil")
	}
}

func TestParseMeta_missingFields(t *testing.T) {
	rec := &DocumentRecord{Source: SourceDiscourse, Meta: map[string]any{}}
	rec.ParseMeta()
	if rec.Discourse == nil {
		t.Fatal("discourse meta should be non-nil even when fields are absent")
	}
	if rec.Discourse.TopicID != 0 || rec.Discourse.PostNumber != 0 {
		t.Errorf("absent fields should be zero: %+v", rec.Discourse)
	}
}

func TestDocumentRecord_roundTrip(t *testing.T) {
	raw := `{"text":"a chunk","embedding":[0.1,0.2],"source":"discourse","chunk_index":2,"meta":{"topic_id":5,"post_number":1,"topic_title":"Hi"}}`
	var rec DocumentRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Text != "a chunk" || len(rec.Embedding) != 2 || rec.ChunkIndex != 2 {
		t.Errorf("unexpected record: %+v", rec)
	}
	rec.ParseMeta()
	if rec.Discourse == nil || rec.Discourse.TopicID != 5 {
		t.Errorf("meta should parse after decode: %+v", rec.Discourse)
	}
}

func TestAskRequest_Validate(t *testing.T) {
	req := &AskRequest{Question: "  what is pandas?  "}
	if err := req.Validate(); err != nil {
		t.Fatal(err)
	}
	if req.Question != "what is pandas?" {
		t.Errorf("question should be trimmed, got %q", req.Question)
	}

	empty := &AskRequest{Question: "   "}
	if err := empty.Validate(); err != ErrEmptyQuestion {
		t.Errorf("expected ErrEmptyQuestion, got %v", err)
	}
}
