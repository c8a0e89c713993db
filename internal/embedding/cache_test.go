package embedding

import (
	"context"
	"errors"
	"testing"
)

type countingEmbedder struct {
	*MockEmbedder
	calls int
	err   error
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.MockEmbedder.Embed(ctx, text)
}

func TestCachedEmbedder_hitsSkipInner(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	e := NewCachedEmbedder(inner, 16)
	ctx := context.Background()

	first, err := e.Embed(ctx, "same question")
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Embed(ctx, "same question")
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if len(first) != len(second) {
		t.Fatal("cached embedding has wrong length")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cached embedding differs at %d", i)
		}
	}

	if _, err := e.Embed(ctx, "different question"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
	if e.Dimensions() != 8 {
		t.Errorf("Dimensions: got %d", e.Dimensions())
	}
}

func TestCachedEmbedder_evictsLeastRecent(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	e := NewCachedEmbedder(inner, 2)
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c"} {
		if _, err := e.Embed(ctx, q); err != nil {
			t.Fatal(err)
		}
	}
	// "a" was evicted by "c"; asking again goes back to the inner embedder.
	if _, err := e.Embed(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 4 {
		t.Errorf("inner calls = %d, want 4", inner.calls)
	}
}

func TestCachedEmbedder_errorNotCached(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8), err: errors.New("service down")}
	e := NewCachedEmbedder(inner, 4)
	ctx := context.Background()

	if _, err := e.Embed(ctx, "q"); err == nil {
		t.Fatal("expected error from inner embedder")
	}
	inner.err = nil
	if _, err := e.Embed(ctx, "q"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (errors must not be cached)", inner.calls)
	}
}

func TestCachedEmbedder_batchBypassesCache(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	e := NewCachedEmbedder(inner, 4)

	out, err := e.EmbedBatch(context.Background(), []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d embeddings, want 2", len(out))
	}
	if inner.calls != 0 {
		t.Errorf("batch path must not touch the single-embed cache, calls = %d", inner.calls)
	}
}
