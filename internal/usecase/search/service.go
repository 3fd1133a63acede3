package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plotsearch/internal/domain"
	"github.com/kailas-cloud/plotsearch/internal/domain/corpus"
	"github.com/kailas-cloud/plotsearch/internal/domain/search/ranking"
	"github.com/kailas-cloud/plotsearch/internal/domain/search/request"
	"github.com/kailas-cloud/plotsearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/plotsearch/internal/logger"
	"github.com/kailas-cloud/plotsearch/internal/metrics"
)

// Options tunes a Service.
type Options struct {
	// QueryEmbedder encodes queries. Defaults to the document embedder.
	// It must produce vectors in the same space as the document embedder.
	QueryEmbedder Embedder
	// BuildTimeout bounds a single corpus build attempt. Zero means unbounded.
	BuildTimeout time.Duration
}

// Service ranks a lazily built, immutable corpus against free-text queries.
type Service struct {
	source       Source
	docEmbed     domain.Embedder
	queryEmbed   Embedder
	buildTimeout time.Duration
	logger       *zap.Logger

	mu       sync.Mutex
	state    State
	inflight *initCall
	index    atomic.Pointer[corpus.Index]
}

// New creates a search service. Nothing is loaded until the first Search or Init.
func New(source Source, embedder domain.Embedder, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	queryEmbed := opts.QueryEmbedder
	if queryEmbed == nil {
		queryEmbed = embedder
	}
	return &Service{
		source:       source,
		docEmbed:     embedder,
		queryEmbed:   queryEmbed,
		buildTimeout: opts.BuildTimeout,
		logger:       logger,
	}
}

// Init builds the corpus index if it is not ready yet.
func (s *Service) Init(ctx context.Context) error {
	_, err := s.corpus(ctx)
	return err
}

// State reports the corpus lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CorpusSize returns the number of indexed documents, or 0 before the index is ready.
func (s *Service) CorpusSize() int {
	if idx := s.index.Load(); idx != nil {
		return idx.Len()
	}
	return 0
}

// Search returns the k documents whose plots are most similar to query,
// best first. Fewer than k results are returned when the corpus is smaller.
func (s *Service) Search(ctx context.Context, query string, k int) ([]result.Result, error) {
	req, err := request.New(query, k)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("invalid").Inc()
		return nil, err //nolint:wrapcheck // domain validation error
	}

	idx, err := s.corpus(ctx)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("corpus_error").Inc()
		return nil, err
	}

	start := time.Now()

	emb, err := s.queryEmbed.Embed(ctx, req.Query())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("encoding_error").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrQueryEncoding, err)
	}

	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	scored, err := ranking.Rank(emb.Embedding, idx, req.TopK())
	if err != nil {
		status := "error"
		if errors.Is(err, domain.ErrEmbeddingDimension) {
			status = "encoding_error"
		}
		metrics.SearchRequestsTotal.WithLabelValues(status).Inc()
		return nil, fmt.Errorf("rank: %w", err)
	}

	results := make([]result.Result, len(scored))
	for i, sc := range scored {
		results[i] = result.New(sc.Entry.Document.Title, sc.Entry.Document.Plot, sc.Score)
	}

	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()

	logpkg.FromContextOr(ctx, s.logger).Debug("Search completed",
		zap.Int("top_k", req.TopK()),
		zap.Int("results", len(results)),
		zap.Int("corpus_size", idx.Len()),
	)

	return results, nil
}
