package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommender Prometheus metrics.
var (
	RecommendQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wisata",
			Name:      "recommend_queries_total",
			Help:      "Total number of recommendation queries",
		},
		[]string{"mode", "outcome"}, // outcome: ok / empty / not_found / not_ready / error
	)

	RecommendQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wisata",
			Name:      "recommend_query_duration_seconds",
			Help:      "Recommendation query duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
		[]string{"mode"},
	)

	ModelLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wisata",
			Name:      "model_loads_total",
			Help:      "Model generation loads by result",
		},
		[]string{"result"}, // "success" / "failure"
	)

	ModelDocuments = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wisata",
		Name:      "model_documents",
		Help:      "Documents in the served model generation",
	})

	ModelVocabulary = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wisata",
		Name:      "model_vocabulary_terms",
		Help:      "Vocabulary size of the served model generation",
	})

	ModelBuiltTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wisata",
		Name:      "model_built_timestamp_seconds",
		Help:      "Build time of the served model generation",
	})

	DestinationCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wisata",
			Name:      "destination_cache_total",
			Help:      "Destination lookup cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wisata",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	BreakerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wisata",
			Name:      "circuit_breaker_requests_total",
			Help:      "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // success / failure / rejected
	)
)

var recMetricsRegistered bool

// RegisterRecommendMetrics registers recommender metrics. Must be called once from main.
func RegisterRecommendMetrics() {
	if recMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecommendQueriesTotal)
	prometheus.MustRegister(RecommendQueryDuration)
	prometheus.MustRegister(ModelLoadsTotal)
	prometheus.MustRegister(ModelDocuments)
	prometheus.MustRegister(ModelVocabulary)
	prometheus.MustRegister(ModelBuiltTimestamp)
	prometheus.MustRegister(DestinationCacheTotal)
	prometheus.MustRegister(BreakerState)
	prometheus.MustRegister(BreakerRequestsTotal)
	recMetricsRegistered = true
}
