package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	RetrievalRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_rows_total",
			Help:      "Rows returned by retrieval sources before reconciliation",
		},
		[]string{"source"},
	)

	RetrievalFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_failures_total",
			Help:      "Retrieval source failures degraded to zero rows",
		},
		[]string{"source"},
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Retrieval collaborator call duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"source"},
	)

	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Answered queries by terminal relaxation stage",
		},
		[]string{"stage"},
	)

	InterpretationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interpretation_total",
			Help:      "Query interpretation outcomes",
		},
		[]string{"status"}, // "ok" / "empty" / "error"
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalRowsTotal)
	prometheus.MustRegister(RetrievalFailuresTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(InterpretationTotal)
	retrievalMetricsRegistered = true
}
