package health

import (
	"context"
	"strings"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the store answers but some indexes are missing.
	Degraded Status = "degraded"
	// Unhealthy indicates the search store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status  Status                 `json:"status"`
	Checks  map[string]CheckResult `json:"checks"`
	Missing []string               `json:"missing_indexes,omitempty"`
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	indexes IndexChecker
}

// New creates a Service. indexes can be nil.
func New(db DBPinger, indexes IndexChecker) *Service {
	return &Service{db: db, indexes: indexes}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		// индексы без базы не проверить
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["database"] = CheckOK

	r := Report{Status: Healthy, Checks: checks}
	if s.indexes == nil {
		return r
	}

	missing, err := s.indexes.MissingIndexes(ctx)
	switch {
	case err != nil:
		checks["indexes"] = CheckError
		r.Status = Degraded
	case len(missing) > 0:
		checks["indexes"] = CheckError
		r.Status = Degraded
		r.Missing = missing
	default:
		checks["indexes"] = CheckOK
	}
	return r
}

// String renders a one-line summary, e.g. "degraded (missing: orders,pods)".
func (r Report) String() string {
	if len(r.Missing) == 0 {
		return string(r.Status)
	}
	return string(r.Status) + " (missing: " + strings.Join(r.Missing, ",") + ")"
}
