package globalsearch

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected" // caller mistake or access denial
	outcomeError    = "error"
)

// systemRole labels operations that run without a caller.
const systemRole = "system"

type sdkMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "globalsearch",
		Subsystem: "sdk",
		Name:      "calls_total",
		Help:      "SDK calls by operation, caller role and outcome.",
	}, []string{"operation", "role", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "globalsearch",
		Subsystem: "sdk",
		Name:      "call_duration_seconds",
		Help:      "SDK call latency by operation and outcome.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"operation", "outcome"})

	var err error
	if calls, err = register(reg, calls); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &sdkMetrics{calls: calls, duration: duration}, nil
}

// register adds c to reg. Two clients sharing a registry share the collector
// registered first.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, fmt.Errorf("globalsearch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(C)
	if !ok {
		return c, fmt.Errorf("globalsearch: metric registered as %T", are.ExistingCollector)
	}
	return existing, nil
}

// observer records each client call. A nil observer records nothing.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthenticated):
		return outcomeRejected
	default:
		return outcomeError
	}
}

// observe records op for the caller role r; an empty r means systemRole.
func (o *observer) observe(op string, r Role, start time.Time, err error) {
	if o == nil {
		return
	}
	took := time.Since(start)
	res := outcome(err)
	roleName := string(r)
	if roleName == "" {
		roleName = systemRole
	}

	if o.metrics != nil {
		o.metrics.calls.WithLabelValues(op, roleName, res).Inc()
		o.metrics.duration.WithLabelValues(op, res).Observe(took.Seconds())
	}
	if o.logger == nil {
		return
	}

	attrs := []any{"op", op, "role", roleName, "took", took}
	switch res {
	case outcomeOK:
		o.logger.Debug("call completed", attrs...)
	case outcomeRejected:
		o.logger.Info("call rejected", append(attrs, "reason", err)...)
	default:
		o.logger.Warn("call failed", append(attrs, "error", err)...)
	}
}
