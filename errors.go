package plotsearch

import "github.com/kailas-cloud/plotsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrCorpusEmpty        = domain.ErrCorpusEmpty
	ErrInvalidDocument    = domain.ErrInvalidDocument
	ErrEmbeddingDimension = domain.ErrEmbeddingDimension
	ErrInvalidTopK        = domain.ErrInvalidTopK
	ErrInvalidQuery       = domain.ErrInvalidQuery
	ErrQueryEncoding      = domain.ErrQueryEncoding
	ErrEmbeddingProvider  = domain.ErrEmbeddingProvider
)
