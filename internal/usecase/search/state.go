package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plotsearch/internal/domain/corpus"
	"github.com/kailas-cloud/plotsearch/internal/metrics"
)

// State is the lifecycle state of the corpus index.
type State int

const (
	// Uninitialized means no index exists and no build is running.
	Uninitialized State = iota
	// Initializing means a build attempt is in flight.
	Initializing
	// Ready means the index is built and cached for the process lifetime.
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var errBuildPanic = errors.New("corpus build panicked")

// initCall is one build attempt shared by every caller that arrives while it runs.
type initCall struct {
	done chan struct{}
	idx  *corpus.Index
	err  error
}

// corpus returns the ready index, starting or joining a build when needed.
func (s *Service) corpus(ctx context.Context) (*corpus.Index, error) {
	if idx := s.index.Load(); idx != nil {
		return idx, nil
	}

	s.mu.Lock()
	if s.state == Ready {
		s.mu.Unlock()
		return s.index.Load(), nil
	}
	call := s.inflight
	if call == nil {
		call = &initCall{done: make(chan struct{})}
		s.inflight = call
		s.state = Initializing
		go s.build(context.WithoutCancel(ctx), call)
	}
	s.mu.Unlock()

	select {
	case <-call.done:
		return call.idx, call.err
	case <-ctx.Done():
		return nil, ctx.Err() //nolint:wrapcheck // caller's own cancellation
	}
}

// build runs one attempt on a context no single caller can cancel.
func (s *Service) build(ctx context.Context, call *initCall) {
	if s.buildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.buildTimeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info("Building corpus index")

	var (
		idx *corpus.Index
		err error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", errBuildPanic, r)
			}
		}()
		idx, err = s.load(ctx)
	}()

	duration := time.Since(start)

	// The outcome is logged before waiters are released.
	if err != nil {
		metrics.CorpusBuildDuration.WithLabelValues("error").Observe(duration.Seconds())
		s.logger.Error("Corpus index build failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	} else {
		metrics.CorpusBuildDuration.WithLabelValues("ok").Observe(duration.Seconds())
		metrics.CorpusDocuments.Set(float64(idx.Len()))
		s.logger.Info("Corpus index ready",
			zap.Int("documents", idx.Len()),
			zap.Int("dimensions", idx.Dim()),
			zap.Int("total_tokens", idx.TotalTokens()),
			zap.Duration("duration", duration),
		)
	}

	s.mu.Lock()
	if err != nil {
		s.state = Uninitialized
	} else {
		s.index.Store(idx)
		s.state = Ready
	}
	s.inflight = nil
	call.idx, call.err = idx, err
	s.mu.Unlock()
	close(call.done)
}

func (s *Service) load(ctx context.Context) (*corpus.Index, error) {
	docs, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	idx, err := corpus.Build(ctx, docs, s.docEmbed)
	if err != nil {
		return nil, fmt.Errorf("build corpus: %w", err)
	}
	return idx, nil
}
