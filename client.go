package plotsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plotsearch/internal/domain"
	"github.com/kailas-cloud/plotsearch/internal/domain/search/result"
	"github.com/kailas-cloud/plotsearch/internal/repository/embcache"
	searchuc "github.com/kailas-cloud/plotsearch/internal/usecase/search"
)

const defaultBuildTimeout = 5 * time.Minute

// Result is a single ranked movie.
type Result struct {
	Title string
	Plot  string
	Score float64
}

// searchUseCase is the internal interface for substitution in tests.
type searchUseCase interface {
	Search(ctx context.Context, query string, k int) ([]result.Result, error)
	Init(ctx context.Context) error
	State() searchuc.State
	CorpusSize() int
}

// Client is the plotsearch entry point. It is safe for concurrent use.
type Client struct {
	svc searchUseCase
	obs *observer
}

// New creates a Client over the given corpus source and embedder.
// Nothing is loaded until the first Search or Init.
func New(src Source, embedder Embedder, opts ...Option) (*Client, error) {
	if src == nil {
		return nil, errors.New("plotsearch: source required")
	}
	if embedder == nil {
		return nil, errors.New("plotsearch: embedder required")
	}

	cfg := &clientConfig{buildTimeout: defaultBuildTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.queryCacheSize < 0 {
		return nil, fmt.Errorf("plotsearch: query cache size must not be negative, got %d", cfg.queryCacheSize)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	logger := newZapLogger(cfg.logger)
	docEmb, queryEmb := buildEmbedders(embedder, cfg, logger)
	svc := searchuc.New(sourceAdapter{inner: src}, docEmb, logger, searchuc.Options{
		QueryEmbedder: queryEmb,
		BuildTimeout:  cfg.buildTimeout,
	})

	return &Client{svc: svc, obs: obs}, nil
}

// buildEmbedders assembles the decorator chains: adapter -> memo -> instruction.
// The instruction prefix is outermost so memo keys include it.
func buildEmbedders(embedder Embedder, cfg *clientConfig, logger *zap.Logger) (doc, query domain.Embedder) {
	doc = adaptEmbedder(embedder)
	query = doc
	if cfg.queryEmbedder != nil {
		query = adaptEmbedder(cfg.queryEmbedder)
	}

	if cfg.queryCacheSize > 0 {
		query = embcache.New(query, embcache.NewMemoryStore(cfg.queryCacheSize), nil, logger)
	}

	if cfg.documentInstruction != "" {
		doc = domain.NewInstructionEmbedder(doc, cfg.documentInstruction)
	}
	if cfg.queryInstruction != "" {
		query = domain.NewInstructionEmbedder(query, cfg.queryInstruction)
	}
	return doc, query
}

// Search returns the k movies whose plots are most similar to query, best first.
// The first call loads and embeds the corpus.
func (c *Client) Search(ctx context.Context, query string, k int) (_ []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	results, err := c.svc.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("plotsearch: search: %w", err)
	}

	out := make([]Result, len(results))
	for i := range results {
		out[i] = Result{
			Title: results[i].Title(),
			Plot:  results[i].Plot(),
			Score: results[i].Score(),
		}
	}
	return out, nil
}

// Init loads and embeds the corpus ahead of the first search.
// It is a no-op once the corpus is ready; a failed attempt can be retried.
func (c *Client) Init(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("init", start, err) }()

	if err := c.svc.Init(ctx); err != nil {
		return fmt.Errorf("plotsearch: init: %w", err)
	}
	return nil
}

// Ready reports whether the corpus is loaded.
func (c *Client) Ready() bool {
	return c.svc.State() == searchuc.Ready
}

// Size returns the number of indexed movies, or 0 before the corpus is ready.
func (c *Client) Size() int {
	return c.svc.CorpusSize()
}
