package e2e

import (
	"path/filepath"
	"strings"
	"testing"
)

const (
	testForumBase  = "https://forum.example.edu"
	testCourseBase = "https://course.example.edu"
)

// Exact-text cases only pin the top citation because each question is the
// verbatim, unique text of one source.
func TestBuildCorpus_exactQuestionsMatchOneSource(t *testing.T) {
	c := BuildCorpus(testForumBase, testCourseBase)

	sources := map[string]int{}
	for _, f := range c.CourseFiles {
		sources[f.Text]++
	}
	for _, topic := range c.Topics {
		for _, p := range topic.Posts {
			sources[p.Cooked]++
		}
	}
	for text, n := range sources {
		if n > 1 {
			t.Errorf("source text %q appears %d times; exact matching needs unique texts", text, n)
		}
	}
	for _, tc := range c.ExactCases {
		if sources[tc.Question] != 1 {
			t.Errorf("%s: question is not the verbatim text of exactly one source", tc.Description)
		}
	}
}

func TestBuildCorpus_urlsComposeFromBases(t *testing.T) {
	c := BuildCorpus(testForumBase, testCourseBase)
	for _, tc := range append(c.ExactCases, c.KeywordCases...) {
		forum := strings.HasPrefix(tc.WantURL, testForumBase+"/t/")
		course := strings.HasPrefix(tc.WantURL, testCourseBase+"/#/")
		if !forum && !course {
			t.Errorf("%s: URL %q matches neither base", tc.Description, tc.WantURL)
		}
	}
}

func TestBuildCorpus_fileNamesUniqueAndWritable(t *testing.T) {
	c := BuildCorpus(testForumBase, testCourseBase)
	writable := map[string]bool{}
	for _, ext := range FixtureExtensions {
		writable[ext] = true
	}
	seen := map[string]bool{}
	for _, f := range c.CourseFiles {
		if seen[f.Name] {
			t.Errorf("duplicate course file name %s", f.Name)
		}
		seen[f.Name] = true
		if ext := filepath.Ext(f.Name); !writable[ext] {
			t.Errorf("%s: no fixture generator for %s", f.Name, ext)
		}
	}
}

func TestBuildCorpus_datesRespectScrapeWindow(t *testing.T) {
	c := BuildCorpus(testForumBase, testCourseBase)

	for _, topic := range c.Topics {
		if !inScrapeWindow(topic.CreatedAt) {
			t.Errorf("topic %d created %s, outside the scrape window", topic.ID, topic.CreatedAt)
		}
	}
	for _, p := range c.ExcludedTopic.Posts {
		if inScrapeWindow(p.CreatedAt) {
			t.Errorf("excluded topic post %d created %s, inside the scrape window", p.Number, p.CreatedAt)
		}
	}
	if inScrapeWindow(c.ExcludedTopic.CreatedAt) {
		t.Errorf("excluded topic created %s, inside the scrape window", c.ExcludedTopic.CreatedAt)
	}

	// At least one post of an in-window topic must fall outside the window
	// so the per-post date filter is exercised, not just the topic filter.
	total := 0
	for _, topic := range c.Topics {
		total += len(topic.Posts)
	}
	if in := c.InWindowPostCount(); in >= total {
		t.Errorf("all %d posts are in window; want at least one out-of-window post", total)
	}
}
