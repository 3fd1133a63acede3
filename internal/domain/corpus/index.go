// Package corpus holds the immutable, ordered set of embedded documents that queries are ranked against.
package corpus

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/plotsearch/internal/domain"
)

// Entry is a document paired with its embedding. Position is the load order
// and serves as the tie-break key when ranking.
type Entry struct {
	Position int
	Document domain.Document
	Vector   []float32
}

// Index is an ordered, read-only sequence of entries sharing one dimension.
type Index struct {
	entries     []Entry
	dim         int
	totalTokens int
}

// Build validates docs, embeds every plot once in input order and returns the index.
func Build(ctx context.Context, docs []domain.Document, embedder domain.Embedder) (*Index, error) {
	if len(docs) == 0 {
		return nil, domain.ErrCorpusEmpty
	}

	plots := make([]string, len(docs))
	for i, d := range docs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		plots[i] = d.Plot
	}

	res, err := domain.EmbedAll(ctx, embedder, plots)
	if err != nil {
		return nil, fmt.Errorf("embed plots: %w", err)
	}
	if len(res.Embeddings) != len(docs) {
		return nil, fmt.Errorf("%w: got %d vectors for %d documents",
			domain.ErrEmbeddingProvider, len(res.Embeddings), len(docs))
	}

	dim := len(res.Embeddings[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: document 0 has an empty vector", domain.ErrEmbeddingDimension)
	}

	entries := make([]Entry, len(docs))
	for i, vec := range res.Embeddings {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: document %d has dimension %d, expected %d",
				domain.ErrEmbeddingDimension, i, len(vec), dim)
		}
		entries[i] = Entry{Position: i, Document: docs[i], Vector: vec}
	}

	return &Index{entries: entries, dim: dim, totalTokens: res.TotalTokens}, nil
}

// Len returns the number of entries.
func (x *Index) Len() int { return len(x.entries) }

// Dim returns the shared vector dimension.
func (x *Index) Dim() int { return x.dim }

// At returns the entry at position i.
func (x *Index) At(i int) Entry { return x.entries[i] }

// TotalTokens returns the tokens the provider reported while building the index.
func (x *Index) TotalTokens() int { return x.totalTokens }
