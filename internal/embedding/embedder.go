// Package embedding turns text into vectors. Client calls an external
// OpenAI-compatible embeddings API, CachedEmbedder wraps any Embedder with
// an LRU for the serving path, and MockEmbedder supplies deterministic
// vectors for tests.
package embedding

import "context"

// Embedder produces vector embeddings for text. Embed serves single
// questions; EmbedBatch is the indexing path and returns one vector per
// input, in input order. Dimensions reports the vector width, or zero when
// a remote model has not answered yet.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

var (
	_ Embedder = (*Client)(nil)
	_ Embedder = (*CachedEmbedder)(nil)
	_ Embedder = (*MockEmbedder)(nil)
)
