package domain

import "errors"

var (
	// ErrCorpusEmpty signals that the document source produced no documents.
	ErrCorpusEmpty = errors.New("corpus is empty")
	// ErrInvalidDocument signals a document that cannot be indexed (blank plot).
	ErrInvalidDocument = errors.New("invalid document")
	// ErrEmbeddingDimension signals vectors whose dimensions disagree.
	// It indicates a provider defect and is never retried automatically.
	ErrEmbeddingDimension = errors.New("embedding dimension mismatch")
	// ErrInvalidTopK signals a result count below 1.
	ErrInvalidTopK = errors.New("invalid top k")
	// ErrInvalidQuery signals an empty or whitespace-only query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrQueryEncoding signals that the provider failed to encode a well-formed query.
	ErrQueryEncoding = errors.New("query encoding failed")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
)
