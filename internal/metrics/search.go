package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docrank",
			Name:      "searches_total",
			Help:      "Total number of search runs",
		},
		[]string{"status"}, // "ok" / "degraded"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docrank",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	DocumentsRankedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docrank",
			Name:      "documents_ranked_total",
			Help:      "Total number of documents scored across all searches",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called
// once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(DocumentsRankedTotal)
	searchMetricsRegistered = true
}
