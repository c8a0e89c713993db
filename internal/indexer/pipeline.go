package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/joshu/internal/embedding"
	"github.com/hyperjump/joshu/internal/models"
	"github.com/hyperjump/joshu/internal/storage"
	"github.com/hyperjump/joshu/internal/texthash"
	"github.com/hyperjump/joshu/pkg/utils"
)

// Pipeline turns scraped documents into the embedding store file. Chunks
// already in the vector cache are not re-embedded.
type Pipeline struct {
	embedder  embedding.Embedder
	cache     storage.VectorCache
	chunker   *Chunker
	model     string
	batchSize int
	force     bool
	logger    *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithForce makes Run re-embed every chunk instead of consulting the vector
// cache. Fresh vectors still overwrite the cached ones.
func WithForce() PipelineOption {
	return func(p *Pipeline) { p.force = true }
}

// Stats summarizes one pipeline run. Skipped counts chunks dropped because
// their embedding batch failed.
type Stats struct {
	Docs      int
	Chunks    int
	CacheHits int
	Embedded  int
	Skipped   int
}

// NewPipeline creates a pipeline with the given dependencies.
func NewPipeline(embedder embedding.Embedder, cache storage.VectorCache, chunker *Chunker, model string, batchSize int, logger *zap.Logger, opts ...PipelineOption) *Pipeline {
	if batchSize <= 0 {
		batchSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		embedder:  embedder,
		cache:     cache,
		chunker:   chunker,
		model:     model,
		batchSize: batchSize,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run loads scraped docs from courseDir and postsDir, chunks and embeds
// them, and writes the store file to outPath. Course docs keep their text
// under "text", forum posts under "content"; each record's meta is the
// whole originating doc.
func (p *Pipeline) Run(ctx context.Context, courseDir, postsDir, outPath string) (*Stats, error) {
	stats := &Stats{}
	var records []models.DocumentRecord
	var hashes []string

	appendDocs := func(docs []map[string]any, textKey, source string) {
		for _, doc := range docs {
			text, _ := doc[textKey].(string)
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			stats.Docs++
			for i, chunk := range p.chunker.Chunk(text) {
				records = append(records, models.DocumentRecord{
					Text:       chunk,
					Source:     source,
					ChunkIndex: i,
					Meta:       doc,
				})
				hashes = append(hashes, texthash.Sum(chunk))
			}
		}
	}
	appendDocs(p.loadDocs(courseDir), "text", models.SourceCourse)
	appendDocs(p.loadDocs(postsDir), "content", models.SourceDiscourse)
	stats.Chunks = len(records)

	var missIdx []int
	for i := range records {
		if !p.force {
			vec, ok, err := p.cache.Get(ctx, hashes[i], p.model)
			if err != nil {
				return nil, fmt.Errorf("cache lookup: %w", err)
			}
			if ok {
				records[i].Embedding = vec
				stats.CacheHits++
				continue
			}
		}
		missIdx = append(missIdx, i)
	}

	dropped := make(map[int]bool)
	for start := 0; start < len(missIdx); start += p.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + p.batchSize
		if end > len(missIdx) {
			end = len(missIdx)
		}
		batch := missIdx[start:end]
		texts := make([]string, len(batch))
		for j, ri := range batch {
			texts[j] = records[ri].Text
		}
		vecs, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			p.logger.Error("embedding batch failed; its chunks are skipped",
				zap.Int("chunks", len(batch)), zap.Error(err))
			for _, ri := range batch {
				dropped[ri] = true
			}
			stats.Skipped += len(batch)
			continue
		}
		entries := make([]storage.CacheEntry, len(batch))
		for j, ri := range batch {
			records[ri].Embedding = vecs[j]
			entries[j] = storage.CacheEntry{TextHash: hashes[ri], Model: p.model, Vector: vecs[j]}
		}
		if err := p.cache.PutBatch(ctx, entries); err != nil {
			p.logger.Warn("cache write failed", zap.Error(err))
		}
		stats.Embedded += len(batch)
	}

	out := make([]models.DocumentRecord, 0, len(records))
	for i := range records {
		if dropped[i] {
			continue
		}
		out = append(out, records[i])
	}
	data, err := utils.MarshalJSONPretty(out)
	if err != nil {
		return nil, fmt.Errorf("marshal store: %w", err)
	}
	if err := utils.WriteFileAtomic(outPath, data, 0644); err != nil {
		return nil, err
	}
	p.logger.Info("store written",
		zap.String("path", outPath),
		zap.Int("records", len(out)),
		zap.Int("cache_hits", stats.CacheHits),
		zap.Int("embedded", stats.Embedded),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

// loadDocs reads every *.json file in dir. A file may hold one document or
// an array of documents; undecodable files are skipped with a diagnostic.
func (p *Pipeline) loadDocs(dir string) []map[string]any {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil
	}
	var docs []map[string]any
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			p.logger.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
			continue
		}
		var raw any
		if err := json.Unmarshal(data, &raw); err != nil {
			p.logger.Warn("skipping invalid JSON", zap.String("path", path), zap.Error(err))
			continue
		}
		switch v := raw.(type) {
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					docs = append(docs, m)
				}
			}
		case map[string]any:
			docs = append(docs, v)
		default:
			p.logger.Warn("skipping JSON that is neither object nor array", zap.String("path", path))
		}
	}
	return docs
}
