// Package e2e drives the whole pipeline the way a deployment would run it:
// a fake Discourse API is scraped, a course repo checkout is rendered and
// embedded, and questions go through the HTTP API against fake
// OpenAI-compatible services.
package e2e

import (
	"fmt"
	"time"
)

// Scrape window used by every e2e config and fixture date.
const (
	ScrapeFrom = "2025-01-01"
	ScrapeTo   = "2025-04-14"
)

// CourseFile is one file in the generated course repo. Text is a single
// line with single spaces so it survives the word-window chunker verbatim;
// asking the exact text then embeds to the identical deterministic vector
// and must rank first.
type CourseFile struct {
	Name string
	Text string
}

// ForumPost is one post served by the fake Discourse API.
type ForumPost struct {
	Number    int64
	CreatedAt string
	Cooked    string
}

// ForumTopic is one topic served by the fake Discourse API.
type ForumTopic struct {
	ID        int64
	Slug      string
	Title     string
	CreatedAt string
	Posts     []ForumPost
}

// AskCase pairs a question with the citation URL the answer must carry.
type AskCase struct {
	Description string
	Question    string
	WantURL     string
}

// Corpus is the full e2e fixture set. ExactCases paste source text verbatim
// and require the top link to be that source; KeywordCases phrase the
// question freely and require the source anywhere in the links.
type Corpus struct {
	CourseFiles []CourseFile
	Topics      []ForumTopic

	// ExcludedTopic is served by the fake API but created after the scrape
	// window; nothing from it may reach the store.
	ExcludedTopic ForumTopic

	ExactCases   []AskCase
	KeywordCases []AskCase
}

// BuildCorpus assembles the fixture set with citation URLs composed against
// the given forum and course bases.
func BuildCorpus(forumBase, courseBase string) *Corpus {
	c := &Corpus{
		CourseFiles: []CourseFile{
			{"data-sourcing.md", "Scrape the Hacker News API with httpx and store the raw JSON responses before cleaning them."},
			{"development-tools.txt", "Use uv to pin the Python version and every dependency of a graded assignment."},
			{"deployment-tools.rst", "Expose a local dashboard through an ngrok tunnel when the grader must reach it."},
			{"large-language-models.docx", "Prompt injection hides adversarial instructions inside documents an assistant retrieves."},
			{"data-preparation.pptx", "Normalize column names to snake case before joining the attendance spreadsheets."},
			{"data-analysis.odp", "A correlation matrix shows which sensor channels move together across the semester."},
			{"data-visualization.ods", "Pick a diverging palette when the metric has a meaningful midpoint such as zero profit."},
			{"project-guidelines.xlsx", "Submissions are graded on reproducibility and a working Dockerfile."},
			{"week-1/overview.md", "Each module ends with a graded assignment reusing the sample datasets from class."},
		},
		Topics: []ForumTopic{
			{
				ID:        101,
				Slug:      "ga4-data-sourcing-discussion-thread-tds-jan-2025",
				Title:     "GA4 - Data Sourcing - Discussion Thread [TDS Jan 2025]",
				CreatedAt: "2025-01-20T10:15:00Z",
				Posts: []ForumPost{
					{1, "2025-01-20T10:15:00Z", "<p>The GA4 deadline moved to Friday after the outage.</p>"},
					{4, "2025-01-22T08:05:00Z", "<p>Partial credit applies when the submitted JSON schema validates.</p>"},
				},
			},
			{
				ID:        112,
				Slug:      "ga5-model-choice-clarification",
				Title:     "GA5 model choice clarification",
				CreatedAt: "2025-02-03T12:00:00Z",
				Posts: []ForumPost{
					{2, "2025-02-03T14:30:00Z", "<p>You must use gpt-4o-mini for grading even when the proxy offers newer models.</p>"},
				},
			},
			{
				ID:        127,
				Slug:      "project-2-docker-image-grading",
				Title:     "Project 2 docker image grading",
				CreatedAt: "2025-02-18T09:00:00Z",
				Posts: []ForumPost{
					{1, "2025-02-18T09:00:00Z", "<p>The grader pulls your Docker image from the registry shortly after midnight.</p>"},
				},
			},
			{
				ID:        133,
				Slug:      "bonus-marks-in-final-grade",
				Title:     "Bonus marks in final grade",
				CreatedAt: "2025-03-02T16:45:00Z",
				Posts: []ForumPost{
					{7, "2025-03-02T16:45:00Z", "<p>Bonus marks from the live sessions carry into the final course grade.</p>"},
				},
			},
			{
				// No slug in the summary; the citation must fall back to a
				// slug derived from the title.
				ID:        152,
				Slug:      "",
				Title:     "Prerequisite confusion ???",
				CreatedAt: "2025-03-10T11:20:00Z",
				Posts: []ForumPost{
					{1, "2025-03-10T11:20:00Z", "<p>The diagnostic quiz only gates enrollment, not the final certificate.</p>"},
				},
			},
			{
				// In-window topic with one post past the window; only the
				// first post may be collected.
				ID:        140,
				Slug:      "office-hours-schedule",
				Title:     "Office hours schedule",
				CreatedAt: "2025-04-01T10:00:00Z",
				Posts: []ForumPost{
					{1, "2025-04-01T10:00:00Z", "<p>Office hours move to Thursday evening during the project weeks.</p>"},
					{9, "2025-05-08T10:00:00Z", "<p>Recordings from May onward live in the new portal.</p>"},
				},
			},
		},
		ExcludedTopic: ForumTopic{
			ID:        160,
			Slug:      "september-reopening",
			Title:     "September reopening",
			CreatedAt: "2025-06-01T09:00:00Z",
			Posts: []ForumPost{
				{1, "2025-06-01T09:00:00Z", "<p>The course reopens in September with fresh datasets.</p>"},
			},
		},
	}

	course := func(name string) string { return courseURL(courseBase, name) }
	forum := func(slug string, topicID, postNumber int64) string {
		return fmt.Sprintf("%s/t/%s/%d/%d", forumBase, slug, topicID, postNumber)
	}

	c.ExactCases = []AskCase{
		{"markdown page", c.CourseFiles[0].Text, course("data-sourcing")},
		{"nested markdown page", c.CourseFiles[8].Text, course("overview")},
		{"pptx page", c.CourseFiles[4].Text, course("data-preparation")},
		{"xlsx page", c.CourseFiles[7].Text, course("project-guidelines")},
		{"first post of a topic", c.Topics[0].Posts[0].Cooked, forum(c.Topics[0].Slug, 101, 1)},
		{"later post of a topic", c.Topics[3].Posts[0].Cooked, forum(c.Topics[3].Slug, 133, 7)},
		{"slug falls back to title", c.Topics[4].Posts[0].Cooked, forum("prerequisite-confusion", 152, 1)},
	}
	c.KeywordCases = []AskCase{
		{"docker grading thread", "docker image registry", forum(c.Topics[2].Slug, 127, 1)},
		{"bonus marks thread", "bonus marks final grade", forum(c.Topics[3].Slug, 133, 7)},
		{"llm course page", "prompt injection", course("large-language-models")},
		{"deployment course page", "ngrok tunnel", course("deployment-tools")},
	}
	return c
}

// InWindowPostCount returns how many fixture posts fall inside the scrape
// window, which is the record count the store must end up with from the
// forum side.
func (c *Corpus) InWindowPostCount() int {
	n := 0
	for _, topic := range c.Topics {
		for _, p := range topic.Posts {
			if inScrapeWindow(p.CreatedAt) {
				n++
			}
		}
	}
	return n
}

// courseURL mirrors how served answers cite course pages: the site is a
// single-page app addressing pages by slug fragment.
func courseURL(base, slug string) string {
	return fmt.Sprintf("%s/#/%s", base, slug)
}

func inScrapeWindow(createdAt string) bool {
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return false
	}
	from, _ := time.Parse("2006-01-02", ScrapeFrom)
	to, _ := time.Parse("2006-01-02", ScrapeTo)
	day := created.UTC().Truncate(24 * time.Hour)
	return !day.Before(from) && !day.After(to)
}
