package health

import (
	"context"

	"github.com/kailas-cloud/plotsearch/internal/usecase/search"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckPending indicates a component that has not been initialized yet.
	CheckPending CheckResult = "pending"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status     Status
	Checks     map[string]CheckResult
	CorpusSize int
}

// Service coordinates health checks.
type Service struct {
	corpus    CorpusReporter
	embedding EmbeddingChecker
}

// New creates a Service. embedding can be nil.
func New(corpus CorpusReporter, embedding EmbeddingChecker) *Service {
	return &Service{corpus: corpus, embedding: embedding}
}

// Check runs health checks against all components.
// A corpus that is not built yet is pending, not failing: the index builds on first use.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.corpus.State() == search.Ready {
		checks["corpus"] = CheckOK
	} else {
		checks["corpus"] = CheckPending
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, CorpusSize: s.corpus.CorpusSize()}
}
