// Package vector provides cosine-similarity scoring and ranking over the
// document store.
package vector

import "math"

// InnerProduct returns the inner product of two vectors.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns the cosine similarity of a and b: their inner
// product divided by the product of their norms. The result is not clamped;
// opposed vectors score negative. When either vector has zero norm (or the
// lengths differ) the result is NaN; callers rank NaN as least similar.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.NaN()
	}
	denom := L2Norm(a) * L2Norm(b)
	if denom == 0 {
		return math.NaN()
	}
	return InnerProduct(a, b) / denom
}
