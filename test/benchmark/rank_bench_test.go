package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hyperjump/joshu/internal/citation"
	"github.com/hyperjump/joshu/internal/embedding"
	"github.com/hyperjump/joshu/internal/indexer"
	"github.com/hyperjump/joshu/internal/models"
	"github.com/hyperjump/joshu/internal/store"
	"github.com/hyperjump/joshu/internal/vector"
)

func benchStore(b *testing.B, n, dims int) *store.Store {
	b.Helper()
	records := make([]models.DocumentRecord, n)
	for i := 0; i < n; i++ {
		vec := make([]float32, dims)
		vec[0] = float32(i+1) / float32(n)
		vec[i%dims] = 1.0
		records[i] = models.DocumentRecord{
			Text:      fmt.Sprintf("record %d", i),
			Source:    models.SourceCourse,
			Embedding: vec,
		}
	}
	st, err := store.New(records)
	if err != nil {
		b.Fatal(err)
	}
	return st
}

func BenchmarkRank(b *testing.B) {
	st := benchStore(b, 1000, 384)
	query := make([]float32, 384)
	query[0] = 1.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = vector.Rank(query, st, 10)
	}
}

func BenchmarkChunker(b *testing.B) {
	words := make([]string, 5000)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	text := strings.Join(words, " ")
	chunker := indexer.NewChunker(800, 50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = chunker.Chunk(text)
	}
}

func BenchmarkMockEmbedder_Embed(b *testing.B) {
	e := embedding.NewMockEmbedder(384)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "when is the project 2 deadline and how is it graded")
	}
}

func BenchmarkSlugify(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = citation.Slugify("GA4 - Data Sourcing - Discussion Thread [TDS Jan 2025]")
	}
}
