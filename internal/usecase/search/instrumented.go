package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
	"github.com/ravi-m-fleetenable/global-search/internal/metrics"
)

// InstrumentedExecutor wraps an Executor with call duration metrics and debug logging.
// Error accounting stays with the callers: a failed call is not always a degraded branch.
type InstrumentedExecutor struct {
	inner   Executor
	backend string
	logger  *zap.Logger
}

// NewInstrumentedExecutor wraps inner. backend names the store in log lines.
func NewInstrumentedExecutor(inner Executor, backend string, logger *zap.Logger) *InstrumentedExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedExecutor{inner: inner, backend: backend, logger: logger}
}

// Search delegates and records the call.
func (e *InstrumentedExecutor) Search(
	ctx context.Context, desc *domcol.Descriptor, plan query.Plan,
) (*result.Page, error) {
	start := time.Now()
	page, err := e.inner.Search(ctx, desc, plan)
	e.observe(desc, "search", start, err)
	return page, err //nolint:wrapcheck // decorator
}

// Count delegates and records the call.
func (e *InstrumentedExecutor) Count(ctx context.Context, desc *domcol.Descriptor, c query.Clause) (int, error) {
	start := time.Now()
	n, err := e.inner.Count(ctx, desc, c)
	e.observe(desc, "count", start, err)
	return n, err //nolint:wrapcheck // decorator
}

// Facets delegates and records the call.
func (e *InstrumentedExecutor) Facets(
	ctx context.Context, desc *domcol.Descriptor, c query.Clause, specs []facet.Spec, now time.Time,
) (map[string][]facet.Bucket, error) {
	start := time.Now()
	out, err := e.inner.Facets(ctx, desc, c, specs, now)
	e.observe(desc, "facets", start, err)
	return out, err //nolint:wrapcheck // decorator
}

func (e *InstrumentedExecutor) observe(desc *domcol.Descriptor, op string, start time.Time, err error) {
	d := time.Since(start)
	metrics.SearchBranchDuration.WithLabelValues(desc.Name(), op).Observe(d.Seconds())
	if err != nil {
		e.logger.Debug("Executor call failed",
			zap.String("backend", e.backend),
			zap.String("collection", desc.Name()),
			zap.String("op", op),
			zap.Duration("duration", d),
			zap.Error(err),
		)
		return
	}
	e.logger.Debug("Executor call completed",
		zap.String("backend", e.backend),
		zap.String("collection", desc.Name()),
		zap.String("op", op),
		zap.Duration("duration", d),
	)
}
