// Package storage persists embedding vectors between pipeline runs.
package storage

import "context"

// VectorCache stores embeddings keyed by text hash and model, so re-running
// the pipeline only pays the external service for new or changed chunks.
type VectorCache interface {
	// Get returns the cached vector, or ok=false when the key is absent.
	Get(ctx context.Context, textHash, model string) (vec []float32, ok bool, err error)
	Put(ctx context.Context, textHash, model string, vec []float32) error
	PutBatch(ctx context.Context, entries []CacheEntry) error
	Count(ctx context.Context) (int64, error)
	Close() error
}

// CacheEntry is one embedding to persist.
type CacheEntry struct {
	TextHash string
	Model    string
	Vector   []float32
}
