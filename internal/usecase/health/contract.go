package health

import (
	"context"

	"github.com/kailas-cloud/plotsearch/internal/usecase/search"
)

// CorpusReporter reports the corpus lifecycle state.
type CorpusReporter interface {
	State() search.State
	CorpusSize() int
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
