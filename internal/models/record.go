// Package models defines core data structures for document records, questions, and answers.
package models

// Source tags for DocumentRecord. SourcePost is a legacy alias for discourse
// records produced by earlier collection runs.
const (
	SourceCourse    = "course"
	SourceDiscourse = "discourse"
	SourcePost      = "post"
)

// DocumentRecord is one embedded chunk of the corpus. Records are loaded once
// at startup and never mutated; they are shared read-only across requests.
//
// Meta holds the whole originating scraped document as stored on disk. The
// typed views Course and Discourse are populated from Meta by ParseMeta,
// dispatching on Source; link synthesis reads only the typed views.
type DocumentRecord struct {
	Text       string         `json:"text"`
	Embedding  []float32      `json:"embedding"`
	Source     string         `json:"source"`
	ChunkIndex int            `json:"chunk_index"`
	Meta       map[string]any `json:"meta,omitempty"`

	Course    *CourseMeta    `json:"-"`
	Discourse *DiscourseMeta `json:"-"`
}

// CourseMeta identifies a course material file.
type CourseMeta struct {
	Path string
}

// DiscourseMeta identifies a forum post. TopicID and PostNumber of zero mean
// the field was absent. Slug, when set, is the forum's own topic slug;
// TopicTitle is the raw title to slugify when Slug is absent.
type DiscourseMeta struct {
	TopicID    int64
	PostNumber int64
	TopicTitle string
	Slug       string
}

// ParseMeta fills the typed metadata views from Meta based on Source.
// Parsing is lenient: both snake_case and camelCase keys are accepted and
// numbers may arrive as JSON numbers or numeric strings. Missing or
// unparseable fields are left zero; unknown sources leave both views nil.
func (r *DocumentRecord) ParseMeta() {
	switch r.Source {
	case SourceCourse:
		r.Course = &CourseMeta{Path: metaString(r.Meta, "source", "path")}
	case SourceDiscourse, SourcePost:
		r.Discourse = &DiscourseMeta{
			TopicID:    metaInt(r.Meta, "topic_id", "topicId"),
			PostNumber: metaInt(r.Meta, "post_number", "postNumber"),
			TopicTitle: metaString(r.Meta, "topic_title", "topicTitle"),
			Slug:       metaString(r.Meta, "slug"),
		}
	}
}

// RankedResult pairs a record with its similarity score for one query.
type RankedResult struct {
	Record *DocumentRecord
	Score  float64
}
