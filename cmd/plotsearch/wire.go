package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plotsearch/internal/config"
	"github.com/kailas-cloud/plotsearch/internal/domain"
	"github.com/kailas-cloud/plotsearch/internal/metrics"
	"github.com/kailas-cloud/plotsearch/internal/repository/embcache"
	"github.com/kailas-cloud/plotsearch/internal/repository/source"
	"github.com/kailas-cloud/plotsearch/internal/transport/hashing"
	openaiEmb "github.com/kailas-cloud/plotsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/plotsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/plotsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/plotsearch/internal/usecase/search"
)

// app holds the wired services shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	source source.Source
	search *searchuc.Service
	health *healthuc.Service
}

// newApp is the composition root.
func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	src, err := source.New(cfg.Corpus, logger)
	if err != nil {
		return nil, fmt.Errorf("create corpus source: %w", err)
	}

	metrics.Register()

	base, provider, model := buildProvider(cfg.Embedding, logger)
	docEmbedder := buildEmbedder(base, provider, model, cfg.Embedding.DocumentInstruction, 0, logger)
	queryEmbedder := buildEmbedder(base, provider, model, cfg.Embedding.QueryInstruction,
		*cfg.Embedding.QueryCacheSize, logger)
	logger.Info("Embedders created",
		zap.String("provider", provider),
		zap.String("model", model),
		zap.String("corpus_source", cfg.Corpus.Source),
	)

	searchSvc := searchuc.New(src, docEmbedder, logger, searchuc.Options{
		QueryEmbedder: queryEmbedder,
		BuildTimeout:  time.Duration(cfg.Corpus.BuildTimeoutSec) * time.Second,
	})
	healthSvc := healthuc.New(searchSvc, newEmbeddingHealthChecker(docEmbedder))

	return &app{
		cfg:    cfg,
		logger: logger,
		source: src,
		search: searchSvc,
		health: healthSvc,
	}, nil
}

// Close releases the corpus source.
func (a *app) Close() {
	if err := a.source.Close(); err != nil {
		a.logger.Warn("Failed to close corpus source", zap.Error(err))
	}
}

// buildProvider creates the base embedding provider (with transport metrics built-in).
func buildProvider(cfg config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, string, string) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.Model,
			Dimensions: cfg.OpenAI.Dimensions,
			Provider:   config.ProviderOpenAI,
			Logger:     logger,
		}), config.ProviderOpenAI, cfg.OpenAI.Model
	default:
		return hashing.NewEmbedder(cfg.Hashing.Dimensions), config.ProviderHashing, hashing.ModelName
	}
}

// buildEmbedder assembles the decorator chain: provider -> Instrumented -> Memo -> Instruction.
// cacheSize 0 disables the memo.
func buildEmbedder(
	base domain.Embedder,
	provider, model, instruction string,
	cacheSize int,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = embeddinguc.NewInstrumentedEmbedder(base, provider, model, logger)

	if cacheSize > 0 {
		embedder = embcache.New(embedder, embcache.NewMemoryStore(cacheSize), metrics.QueryCacheTotal, logger)
	}

	// Instruction prefix (outermost, so memo keys include the instruction)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
