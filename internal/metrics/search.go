package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and corpus Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plotsearch",
			Name:      "search_requests_total",
			Help:      "Total number of search calls by outcome",
		},
		[]string{"status"}, // ok, invalid, corpus_error, encoding_error, error
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "plotsearch",
			Name:      "search_duration_seconds",
			Help:      "Search latency in seconds, excluding corpus initialization",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	CorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "plotsearch",
			Name:      "corpus_documents",
			Help:      "Number of documents in the ready corpus index",
		},
	)

	CorpusBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "plotsearch",
			Name:      "corpus_build_duration_seconds",
			Help:      "Corpus index build duration in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"status"}, // ok, error
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(CorpusDocuments)
	prometheus.MustRegister(CorpusBuildDuration)
	searchMetricsRegistered = true
}

// Register registers every metric the binary exports.
func Register() {
	RegisterEmbeddingMetrics()
	RegisterSearchMetrics()
}
