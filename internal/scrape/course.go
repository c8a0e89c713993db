package scrape

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/joshu/internal/extract"
	"github.com/hyperjump/joshu/internal/models"
	"github.com/hyperjump/joshu/pkg/utils"
)

// extractExts are the formats routed through the extractor; .md is read raw
// so the indexed text keeps its markdown structure.
var extractExts = []string{".pdf", ".docx", ".pptx", ".xlsx", ".odt", ".odp", ".ods", ".rtf", ".txt", ".rst"}

// WatchedExtensions returns every file extension the course scraper
// recognizes, for change watching.
func WatchedExtensions() []string {
	exts := make([]string, 0, len(extractExts)+1)
	exts = append(exts, ".md")
	return append(exts, extractExts...)
}

// CourseDoc is one course file rendered to text, keyed the way the
// embedding pipeline expects.
type CourseDoc struct {
	Source string `json:"source"`
	Type   string `json:"type"`
	Text   string `json:"text"`
}

// CourseScraper walks a course repo checkout and writes one JSON doc per
// recognized file into the output dir.
type CourseScraper struct {
	repo      string
	outDir    string
	extractor *extract.Extractor
	logger    *zap.Logger
}

func NewCourseScraper(repo, outDir string, logger *zap.Logger) *CourseScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseScraper{
		repo:      repo,
		outDir:    outDir,
		extractor: extract.NewExtractor(),
		logger:    logger,
	}
}

// Run walks the repo and returns the number of docs written. A file that
// fails extraction is skipped with a warning; the walk continues.
func (s *CourseScraper) Run(ctx context.Context) (int, error) {
	absRepo, err := filepath.Abs(s.repo)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absRepo)
	if err != nil {
		return 0, fmt.Errorf("stat course repo: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absRepo)
	}

	n := 0
	err = filepath.WalkDir(absRepo, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		text, ok, err := s.fileText(path)
		if err != nil {
			s.logger.Warn("skipping course file", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(absRepo, path)
		if err != nil {
			return err
		}
		if err := s.writeDoc(rel, text); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, err
	}
	s.logger.Info("course scrape complete", zap.Int("docs", n), zap.String("out", s.outDir))
	return n, nil
}

// fileText returns the file's text and whether its format is recognized.
func (s *CourseScraper) fileText(path string) (string, bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".md" {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", true, err
		}
		return strings.ToValidUTF8(string(content), "�"), true, nil
	}
	for _, e := range extractExts {
		if ext == e {
			text, err := s.extractor.Extract(path)
			return text, true, err
		}
	}
	return "", false, nil
}

func (s *CourseScraper) writeDoc(rel, text string) error {
	doc := CourseDoc{
		Source: rel,
		Type:   models.SourceCourse,
		Text:   text,
	}
	data, err := utils.MarshalJSONPretty(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", rel, err)
	}
	name := strings.NewReplacer("/", "__", "\\", "__").Replace(rel) + ".json"
	return utils.WriteFileAtomic(filepath.Join(s.outDir, name), data, 0644)
}
