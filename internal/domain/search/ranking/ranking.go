// Package ranking scores a query vector against every corpus entry and selects the top K.
package ranking

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/kailas-cloud/plotsearch/internal/domain"
	"github.com/kailas-cloud/plotsearch/internal/domain/corpus"
)

// Scored is a corpus entry with its similarity to the query.
type Scored struct {
	Entry corpus.Entry
	Score float64
}

// Cosine returns dot(a, b) / (|a| * |b|), accumulated in float64.
// A zero-magnitude vector carries no direction and scores 0.
// Callers guarantee len(a) == len(b).
func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every entry of idx against query and returns the best min(k, idx.Len())
// entries by descending score. Equal scores keep corpus order, so the output is
// reproducible for identical inputs. Scores are not clamped.
func Rank(query []float32, idx *corpus.Index, k int) ([]Scored, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidTopK, k)
	}
	if len(query) != idx.Dim() {
		return nil, fmt.Errorf("%w: query has dimension %d, corpus has %d",
			domain.ErrEmbeddingDimension, len(query), idx.Dim())
	}

	scored := make([]Scored, idx.Len())
	for i := range scored {
		e := idx.At(i)
		scored[i] = Scored{Entry: e, Score: Cosine(query, e.Vector)}
	}

	// cmp.Compare orders NaN below every number, keeping the order total.
	slices.SortStableFunc(scored, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}
