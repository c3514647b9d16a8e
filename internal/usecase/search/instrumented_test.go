package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
	"github.com/ravi-m-fleetenable/global-search/internal/metrics"
)

func TestInstrumentedExecutor_Delegates(t *testing.T) {
	inner := &mockExecutor{
		searchFn: func(*domcol.Descriptor, query.Plan) (*result.Page, error) {
			return &result.Page{Total: 3}, nil
		},
		countFn: func(*domcol.Descriptor, query.Clause) (int, error) {
			return 0, errors.New("down")
		},
		facetsFn: func(_ *domcol.Descriptor, _ query.Clause, specs []facet.Spec) (map[string][]facet.Bucket, error) {
			return map[string][]facet.Bucket{specs[0].Name: {}}, nil
		},
	}
	e := NewInstrumentedExecutor(inner, "redis", zap.NewNop())
	orders, _ := domcol.Default().Get(domcol.Orders)
	ctx := context.Background()

	page, err := e.Search(ctx, orders, query.Plan{Clause: query.All(), Limit: 1})
	if err != nil || page.Total != 3 {
		t.Errorf("search = %+v, %v", page, err)
	}
	if _, err := e.Count(ctx, orders, query.All()); err == nil {
		t.Error("count error must pass through")
	}
	out, err := e.Facets(ctx, orders, query.All(), orders.Facets(), time.Now())
	if err != nil || len(out) != 1 {
		t.Errorf("facets = %v, %v", out, err)
	}

	if n := testutil.CollectAndCount(metrics.SearchBranchDuration); n < 3 {
		t.Errorf("duration series = %d, want one per op", n)
	}
}

func TestInstrumentedExecutor_NilLogger(t *testing.T) {
	e := NewInstrumentedExecutor(&mockExecutor{}, "bleve", nil)
	orders, _ := domcol.Default().Get(domcol.Orders)
	if _, err := e.Search(context.Background(), orders, query.Plan{}); err != nil {
		t.Fatal(err)
	}
}
