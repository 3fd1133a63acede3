package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/plotsearch/internal/domain"
)

// DefaultTopK is the result count used when the caller does not pass one.
const DefaultTopK = 5

// Request is a validated search query.
type Request struct {
	query string
	topK  int
}

// New validates search parameters. Blank queries and topK < 1 are rejected;
// topK above the corpus size is accepted and clamped later by the ranker.
func New(query string, topK int) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if topK < 1 {
		return Request{}, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidTopK, topK)
	}
	return Request{query: query, topK: topK}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// TopK returns the number of results requested.
func (r *Request) TopK() int { return r.topK }
