package citation

import (
	"fmt"
	"strings"

	"github.com/hyperjump/joshu/internal/models"
	"github.com/hyperjump/joshu/pkg/utils"
)

// displayTextLimit is the citation display text length in characters.
const displayTextLimit = 80

// Synthesizer maps a record's metadata to its canonical citation URL.
// URL synthesis is total and deterministic: every record maps to some URL
// (the default when metadata is missing or unrecognized), and identical
// metadata always yields the identical URL.
type Synthesizer struct {
	forumBase  string
	courseBase string
	defaultURL string
}

// NewSynthesizer creates a synthesizer. Trailing slashes on the base URLs
// are trimmed; defaultURL is returned verbatim for unsynthesizable records.
func NewSynthesizer(forumBase, courseBase, defaultURL string) *Synthesizer {
	return &Synthesizer{
		forumBase:  strings.TrimRight(forumBase, "/"),
		courseBase: strings.TrimRight(courseBase, "/"),
		defaultURL: defaultURL,
	}
}

// URL returns the citation URL for a record, dispatching on its source tag.
func (s *Synthesizer) URL(rec *models.DocumentRecord) string {
	if rec == nil {
		return s.defaultURL
	}
	switch rec.Source {
	case models.SourceDiscourse, models.SourcePost:
		return s.discourseURL(rec.Discourse)
	case models.SourceCourse:
		return s.courseURL(rec.Course)
	default:
		return s.defaultURL
	}
}

// discourseURL composes {forum}/t/{slug}/{topicId}/{postNumber}. The slug
// comes from the precomputed Slug when present, else from the topic title;
// both pass through Slugify (a no-op for already-slugged input). A topic ID
// or post number of zero means the field was absent and the default URL is
// returned instead.
func (s *Synthesizer) discourseURL(meta *models.DiscourseMeta) string {
	if meta == nil || meta.TopicID == 0 || meta.PostNumber == 0 {
		return s.defaultURL
	}
	slug := meta.Slug
	if slug == "" {
		slug = meta.TopicTitle
	}
	slug = Slugify(slug)
	if slug == "" {
		// Discourse's own placeholder segment for unsluggable titles.
		slug = "topic"
	}
	return fmt.Sprintf("%s/t/%s/%d/%d", s.forumBase, slug, meta.TopicID, meta.PostNumber)
}

// courseURL composes {course}/#/{slug} from the file's base name without
// extension. Both / and \ count as path separators since the corpus was
// collected across platforms.
func (s *Synthesizer) courseURL(meta *models.CourseMeta) string {
	if meta == nil || meta.Path == "" {
		return s.defaultURL
	}
	slug := Slugify(baseName(meta.Path))
	if slug == "" {
		return s.defaultURL
	}
	return fmt.Sprintf("%s/#/%s", s.courseBase, slug)
}

// baseName returns the final path component with its extension stripped.
// A leading dot is part of the name, not an extension marker.
func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.LastIndex(path, "."); i > 0 {
		path = path[:i]
	}
	return path
}

// Links builds the citation list for ranked results: one link per distinct
// URL in rank order, first-seen display text winning on duplicates. Display
// text is the record text truncated to 80 characters.
func (s *Synthesizer) Links(results []models.RankedResult) []models.CitationLink {
	links := make([]models.CitationLink, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, res := range results {
		url := s.URL(res.Record)
		if seen[url] {
			continue
		}
		seen[url] = true
		links = append(links, models.CitationLink{
			URL:  url,
			Text: utils.Truncate(res.Record.Text, displayTextLimit),
		})
	}
	return links
}
