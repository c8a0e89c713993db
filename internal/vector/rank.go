package vector

import (
	"fmt"
	"math"
	"sort"

	"github.com/hyperjump/joshu/internal/models"
	"github.com/hyperjump/joshu/internal/store"
)

// Rank scores every record in the store against query by cosine similarity
// and returns the top k results in descending score order. The sort is
// stable: records with exactly equal scores keep their store insertion order.
// Records whose embedding has zero norm score NaN and sort after every real
// score; they are never dropped and never fail the ranking.
//
// Rank is a pure function of its inputs: it never mutates the store and holds
// no state across calls, so it is safe from concurrent requests. Cost is
// O(n·d) over n records of dimension d.
func Rank(query []float32, st *store.Store, k int) ([]models.RankedResult, error) {
	if st == nil || st.Len() == 0 {
		return nil, fmt.Errorf("rank: store is empty")
	}
	if k < 1 {
		return nil, fmt.Errorf("rank: k must be >= 1, got %d", k)
	}
	if len(query) != st.Dimensions() {
		return nil, fmt.Errorf("rank: query dimension mismatch: got %d, store has %d", len(query), st.Dimensions())
	}

	records := st.Records()
	results := make([]models.RankedResult, len(records))
	for i := range records {
		results[i] = models.RankedResult{
			Record: &records[i],
			Score:  CosineSimilarity(query, records[i].Embedding),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		si, sj := results[i].Score, results[j].Score
		if math.IsNaN(si) {
			return false
		}
		if math.IsNaN(sj) {
			return true
		}
		return si > sj
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}
