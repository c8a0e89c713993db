// Package keyword provides a Bleve index over store records for retrieval
// without an embedding call.
package keyword

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/joshu/internal/store"
)

// Index is an in-memory Bleve index over the store's record texts. Document
// IDs are record indices, so hits map straight back to store records. The
// index is built once at startup; the store never changes while serving.
type Index struct {
	index bleve.Index
}

type indexedRecord struct {
	Text string `json:"text"`
}

// Result is one keyword hit.
type Result struct {
	RecordIndex int
	Score       float64
}

// Build indexes every record text in st.
func Build(st *store.Store) (*Index, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so queries like
	// "bayes" match the exact word instead of a stem.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword index: %w", err)
	}

	batch := index.NewBatch()
	records := st.Records()
	for i := range records {
		if err := batch.Index(strconv.Itoa(i), indexedRecord{Text: records[i].Text}); err != nil {
			return nil, fmt.Errorf("failed to index record %d: %w", i, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to build keyword index: %w", err)
	}
	return &Index{index: index}, nil
}

// Search runs a match query and returns up to k record indices by descending
// match score.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = k
	res, err := idx.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	out := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		out = append(out, Result{RecordIndex: i, Score: hit.Score})
	}
	return out, nil
}

// DocCount returns the number of indexed records.
func (idx *Index) DocCount() (uint64, error) {
	return idx.index.DocCount()
}

// Close closes the underlying index.
func (idx *Index) Close() error {
	return idx.index.Close()
}
