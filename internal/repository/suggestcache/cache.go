// Package suggestcache stores autocomplete suggestion lists for a short TTL.
package suggestcache

import "github.com/prometheus/client_golang/prometheus"

// Cache result labels.
const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

type counter struct {
	vec *prometheus.CounterVec
}

func (c counter) inc(result string) {
	if c.vec != nil {
		c.vec.WithLabelValues(result).Inc()
	}
}
