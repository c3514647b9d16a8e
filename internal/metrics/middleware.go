package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
)

// noRole labels requests that carry no caller (health, metrics, rejected auth).
const noRole = "none"

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "globalsearch",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route and caller role",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "role"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "globalsearch",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, status and caller role",
		},
		[]string{"method", "route", "status", "role"},
	)

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "globalsearch",
		Name:      "http_requests_in_flight",
		Help:      "Requests currently being served",
	})
)

func init() {
	prometheus.MustRegister(httpRequestDuration, httpRequestsTotal, httpInFlight)
}

// Middleware records request count, duration and in-flight gauge. It must run
// after the caller is resolved to label by role.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routeLabel(r)
			role := roleLabel(r)

			httpRequestDuration.WithLabelValues(r.Method, route, role).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status), role).Inc()
		})
	}
}

// routeLabel uses the chi route pattern so path values never become labels.
func routeLabel(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil || rc.RoutePattern() == "" {
		return "unmatched"
	}
	return rc.RoutePattern()
}

func roleLabel(r *http.Request) string {
	c, ok := caller.FromContext(r.Context())
	if !ok || c.Role() == "" {
		return noRole
	}
	return string(c.Role())
}
