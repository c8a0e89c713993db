package keyword

import (
	"context"
	"testing"

	"github.com/hyperjump/joshu/internal/models"
	"github.com/hyperjump/joshu/internal/store"
)

func newTestStore(t *testing.T, texts []string) *store.Store {
	t.Helper()
	records := make([]models.DocumentRecord, len(texts))
	for i, text := range texts {
		records[i] = models.DocumentRecord{
			Text:      text,
			Embedding: []float32{1, 0},
			Source:    models.SourceCourse,
		}
	}
	st, err := store.New(records)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestBuildAndSearch(t *testing.T) {
	st := newTestStore(t, []string{
		"installing docker on ubuntu",
		"python pandas dataframe tutorial",
		"docker compose networking guide",
	})
	idx, err := Build(st)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	count, err := idx.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("doc count: got %d, want 3", count)
	}

	results, err := idx.Search(context.Background(), "docker", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 hits for %q, got %d", "docker", len(results))
	}
	seen := map[int]bool{}
	for _, r := range results {
		if r.Score <= 0 {
			t.Errorf("hit %d has non-positive score %f", r.RecordIndex, r.Score)
		}
		seen[r.RecordIndex] = true
	}
	if !seen[0] || !seen[2] {
		t.Errorf("expected records 0 and 2, got %v", seen)
	}
}

func TestSearch_limitsToK(t *testing.T) {
	st := newTestStore(t, []string{
		"go routines and channels",
		"go modules explained",
		"go generics deep dive",
	})
	idx, err := Build(st)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	results, err := idx.Search(context.Background(), "go", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) > 2 {
		t.Errorf("expected at most 2 hits, got %d", len(results))
	}
}

func TestSearch_noMatches(t *testing.T) {
	st := newTestStore(t, []string{"alpha beta", "gamma delta"})
	idx, err := Build(st)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	results, err := idx.Search(context.Background(), "zeppelin", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no hits, got %d", len(results))
	}
}
