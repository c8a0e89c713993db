package embedding

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEmbedder wraps an Embedder with an LRU keyed by question text, so
// repeated questions do not re-call the external service. Batch calls
// bypass it: the indexing path has its own persistent cache.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps inner with a cache of the given capacity.
// Capacities below 1 are raised to 1.
func NewCachedEmbedder(inner Embedder, capacity int) *CachedEmbedder {
	if capacity < 1 {
		capacity = 1
	}
	cache, _ := lru.New[string, []float32](capacity)
	return &CachedEmbedder{inner: inner, cache: cache}
}

// Embed returns the cached embedding for text, calling the inner embedder
// on a miss. Failed calls are not cached.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.cache.Get(text); ok {
		return vec, nil
	}
	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(text, vec)
	return vec, nil
}

// EmbedBatch delegates to the inner embedder.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the inner embedder's vector width.
func (e *CachedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Close closes the inner embedder.
func (e *CachedEmbedder) Close() error {
	return e.inner.Close()
}
