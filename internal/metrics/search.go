package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	SearchBranchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "globalsearch",
			Name:      "search_branch_duration_seconds",
			Help:      "Executor call duration per collection and operation",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"collection", "op"},
	)

	SearchBranchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "globalsearch",
			Name:      "search_branch_errors_total",
			Help:      "Federated search branches degraded to zero after an executor error",
		},
		[]string{"collection"},
	)

	AutocompleteCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "globalsearch",
			Name:      "autocomplete_cache_total",
			Help:      "Autocomplete cache lookups",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)
)

var registerSearch sync.Once

// RegisterSearchMetrics registers the search metrics with the default
// registry. Later calls are no-ops.
func RegisterSearchMetrics() {
	registerSearch.Do(func() {
		prometheus.MustRegister(SearchBranchDuration, SearchBranchErrorsTotal, AutocompleteCacheTotal)
	})
}
