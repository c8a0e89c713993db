package citation

import (
	"strings"
	"testing"

	"github.com/hyperjump/joshu/internal/models"
)

const (
	testForumBase  = "https://discourse.example.org"
	testCourseBase = "https://course.example.org"
	testDefaultURL = "https://discourse.example.org/"
)

func newTestSynthesizer() *Synthesizer {
	return NewSynthesizer(testForumBase, testCourseBase, testDefaultURL)
}

func TestURL_discourse(t *testing.T) {
	s := newTestSynthesizer()
	rec := &models.DocumentRecord{
		Source: models.SourceDiscourse,
		Discourse: &models.DiscourseMeta{
			TopicID:    5,
			PostNumber: 2,
			TopicTitle: "Hi There!",
		},
	}
	want := testForumBase + "/t/hi-there/5/2"
	if got := s.URL(rec); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestURL_discoursePrecomputedSlug(t *testing.T) {
	s := newTestSynthesizer()
	rec := &models.DocumentRecord{
		Source: models.SourcePost,
		Discourse: &models.DiscourseMeta{
			TopicID:    155939,
			PostNumber: 4,
			TopicTitle: "This Title Is Ignored",
			Slug:       "ga5-question-8-clarification",
		},
	}
	want := testForumBase + "/t/ga5-question-8-clarification/155939/4"
	if got := s.URL(rec); got != want {
		t.Errorf("precomputed slug should win, expected %q, got %q", want, got)
	}
}

func TestURL_discourseMissingFields(t *testing.T) {
	s := newTestSynthesizer()
	cases := []*models.DiscourseMeta{
		nil,
		{PostNumber: 2, TopicTitle: "No Topic"},
		{TopicID: 5, TopicTitle: "No Post Number"},
	}
	for i, meta := range cases {
		rec := &models.DocumentRecord{Source: models.SourceDiscourse, Discourse: meta}
		if got := s.URL(rec); got != testDefaultURL {
			t.Errorf("case %d: expected default URL, got %q", i, got)
		}
	}
}

func TestURL_discourseUnsluggableTitle(t *testing.T) {
	s := newTestSynthesizer()
	rec := &models.DocumentRecord{
		Source:    models.SourceDiscourse,
		Discourse: &models.DiscourseMeta{TopicID: 9, PostNumber: 1, TopicTitle: "!!!"},
	}
	want := testForumBase + "/t/topic/9/1"
	if got := s.URL(rec); got != want {
		t.Errorf("expected placeholder slug, got %q", got)
	}
}

func TestURL_course(t *testing.T) {
	s := newTestSynthesizer()
	cases := []struct {
		path string
		want string
	}{
		{"week1/intro.md", testCourseBase + "/#/intro"},
		{"week2\\Data Sourcing.md", testCourseBase + "/#/data-sourcing"},
		{"large-language-models.md", testCourseBase + "/#/large-language-models"},
		{"nested/dir/notes.tar.gz", testCourseBase + "/#/notestar"},
	}
	for _, c := range cases {
		rec := &models.DocumentRecord{
			Source: models.SourceCourse,
			Course: &models.CourseMeta{Path: c.path},
		}
		if got := s.URL(rec); got != c.want {
			t.Errorf("path %q: expected %q, got %q", c.path, c.want, got)
		}
	}
}

func TestURL_courseMissingPath(t *testing.T) {
	s := newTestSynthesizer()
	rec := &models.DocumentRecord{Source: models.SourceCourse}
	if got := s.URL(rec); got != testDefaultURL {
		t.Errorf("missing course meta should fall back, got %q", got)
	}
	rec.Course = &models.CourseMeta{}
	if got := s.URL(rec); got != testDefaultURL {
		t.Errorf("empty course path should fall back, got %q", got)
	}
}

func TestURL_totalOnUnknownSource(t *testing.T) {
	s := newTestSynthesizer()
	cases := []*models.DocumentRecord{
		nil,
		{Source: ""},
		{Source: "wiki"},
		{Source: "discourse"}, // tag known, meta never parsed
	}
	for i, rec := range cases {
		if got := s.URL(rec); got != testDefaultURL {
			t.Errorf("case %d: expected default URL, got %q", i, got)
		}
	}
}

func TestURL_deterministic(t *testing.T) {
	s := newTestSynthesizer()
	rec := &models.DocumentRecord{
		Source:    models.SourceDiscourse,
		Discourse: &models.DiscourseMeta{TopicID: 7, PostNumber: 3, TopicTitle: "Same Input"},
	}
	first := s.URL(rec)
	for i := 0; i < 100; i++ {
		if got := s.URL(rec); got != first {
			t.Fatalf("URL not deterministic: %q vs %q", first, got)
		}
	}
}

func TestLinks_dedupFirstWins(t *testing.T) {
	s := newTestSynthesizer()
	shared := &models.DiscourseMeta{TopicID: 5, PostNumber: 2, TopicTitle: "Hi There!"}
	results := []models.RankedResult{
		{Record: &models.DocumentRecord{Text: "first chunk", Source: "discourse", Discourse: shared}, Score: 0.9},
		{Record: &models.DocumentRecord{Text: "second chunk same post", Source: "discourse", Discourse: shared}, Score: 0.8},
		{Record: &models.DocumentRecord{Text: "course chunk", Source: "course", Course: &models.CourseMeta{Path: "w1/a.md"}}, Score: 0.7},
	}
	links := s.Links(results)
	if len(links) != 2 {
		t.Fatalf("expected 2 deduplicated links, got %d", len(links))
	}
	if links[0].Text != "first chunk" {
		t.Errorf("first-seen display text should win, got %q", links[0].Text)
	}
	if links[0].URL != testForumBase+"/t/hi-there/5/2" {
		t.Errorf("unexpected first URL: %q", links[0].URL)
	}
	if links[1].URL != testCourseBase+"/#/a" {
		t.Errorf("unexpected second URL: %q", links[1].URL)
	}
}

func TestLinks_displayTextTruncation(t *testing.T) {
	s := newTestSynthesizer()
	long := strings.Repeat("x", 100)
	results := []models.RankedResult{
		{Record: &models.DocumentRecord{Text: long, Source: "course", Course: &models.CourseMeta{Path: "a.md"}}},
	}
	links := s.Links(results)
	if len(links) != 1 {
		t.Fatal("expected one link")
	}
	want := strings.Repeat("x", 80) + "..."
	if links[0].Text != want {
		t.Errorf("expected 80 chars plus ellipsis, got %d chars: %q", len(links[0].Text), links[0].Text)
	}
}

func TestLinks_rankOrderPreserved(t *testing.T) {
	s := newTestSynthesizer()
	results := []models.RankedResult{
		{Record: &models.DocumentRecord{Text: "b", Source: "course", Course: &models.CourseMeta{Path: "b.md"}}},
		{Record: &models.DocumentRecord{Text: "a", Source: "course", Course: &models.CourseMeta{Path: "a.md"}}},
	}
	links := s.Links(results)
	if len(links) != 2 || links[0].Text != "b" || links[1].Text != "a" {
		t.Errorf("links must preserve rank order: %+v", links)
	}
}
