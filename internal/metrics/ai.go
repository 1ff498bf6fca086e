package metrics

import "github.com/prometheus/client_golang/prometheus"

// AI service Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thesisrepo",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "thesisrepo",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thesisrepo",
			Name:      "embedding_errors_total",
			Help:      "Total embedding errors",
		},
		[]string{"provider", "error_type"},
	)

	SimilarityRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thesisrepo",
			Name:      "similarity_requests_total",
			Help:      "Total number of similarity scoring requests",
		},
		[]string{"provider", "status"},
	)

	SimilarityRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "thesisrepo",
			Name:      "similarity_request_duration_seconds",
			Help:      "Similarity scoring request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thesisrepo",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var aiMetricsRegistered bool

// RegisterAIMetrics registers Prometheus AI metrics. Must be called once from main.
func RegisterAIMetrics() {
	if aiMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingErrorsTotal)
	prometheus.MustRegister(SimilarityRequestsTotal)
	prometheus.MustRegister(SimilarityRequestDuration)
	prometheus.MustRegister(EmbeddingCacheTotal)
	aiMetricsRegistered = true
}
