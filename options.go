package plotsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	queryEmbedder       Embedder
	documentInstruction string
	queryInstruction    string
	queryCacheSize      int
	buildTimeout        time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithQueryEmbedder encodes queries with e instead of the document embedder.
// Both must produce vectors of the same dimension in the same space.
func WithQueryEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryEmbedder = e
	})
}

// WithInstructions prefixes documents and queries before embedding, for
// instruction-tuned embedding models. Empty strings disable a prefix.
func WithInstructions(document, query string) Option {
	return optionFunc(func(c *clientConfig) {
		c.documentInstruction = document
		c.queryInstruction = query
	})
}

// WithQueryCache memoizes up to size query embeddings in process memory.
// Default: disabled.
func WithQueryCache(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryCacheSize = size
	})
}

// WithBuildTimeout bounds a single corpus initialization attempt.
// Default: 5 minutes.
func WithBuildTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.buildTimeout = d
	})
}

// WithLogger enables structured logging for client operations and corpus
// builds (start, size, duration, failures). Pass nil to disable (default).
// Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
