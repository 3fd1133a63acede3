package chi

// ErrorCode is a machine-readable error code returned in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeInvalidQuery      ErrorCode = "invalid_query"
	ErrorCodeInvalidTopK       ErrorCode = "invalid_top_k"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeQueryEncoding     ErrorCode = "query_encoding_failed"
	ErrorCodeEmbeddingProvider ErrorCode = "embedding_provider_error"
	ErrorCodeCorpusUnavailable ErrorCode = "corpus_unavailable"
	ErrorCodeTimeout           ErrorCode = "timeout"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchParams are the query parameters of GET /api/v1/search.
type SearchParams struct {
	// Q is the free-text query.
	Q string `form:"q" json:"q"`
	// K is the number of results. Server default when absent.
	K *int `form:"k,omitempty" json:"k,omitempty"`
}

// SearchResultItem is a single ranked movie.
type SearchResultItem struct {
	Title string  `json:"title"`
	Plot  string  `json:"plot"`
	Score float64 `json:"score"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	CorpusSize int               `json:"corpus_size"`
}

// VersionResponse is the body of GET /version.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}
