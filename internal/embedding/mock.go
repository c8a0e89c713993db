package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
)

// MockEmbedder produces deterministic embeddings for tests. The vector for
// a text is a unit-length gaussian sample seeded by the text's FNV hash:
// repeating a stored text as the query ranks that record first with cosine
// score 1, while unrelated texts stay far apart.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns a deterministic embedder of the given width.
// Non-positive dimensions fall back to 384.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns the unit-length vector seeded by the text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, e.dimensions)
	var sum float64
	for i := range vec {
		v := rng.NormFloat64()
		vec[i] = float32(v)
		sum += v * v
	}
	if sum > 0 {
		norm := float32(1 / math.Sqrt(sum))
		for i := range vec {
			vec[i] *= norm
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the vector width.
func (e *MockEmbedder) Dimensions() int { return e.dimensions }

// Close is a no-op.
func (e *MockEmbedder) Close() error { return nil }
