package search

import (
	"context"

	"github.com/kailas-cloud/plotsearch/internal/domain"
)

// Source loads the documents the corpus index is built from.
// Implementations must return documents in a stable order.
type Source interface {
	Load(ctx context.Context) ([]domain.Document, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
