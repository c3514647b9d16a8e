package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()

	SearchBranchErrorsTotal.WithLabelValues("orders").Inc()
	if got := testutil.ToFloat64(SearchBranchErrorsTotal.WithLabelValues("orders")); got < 1 {
		t.Errorf("search_branch_errors_total = %f, want >= 1", got)
	}
}
