package search

import (
	"context"
	"errors"
	"testing"

	"github.com/ravi-m-fleetenable/global-search/internal/domain"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/role"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/request"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
)

func newAdvanced(t *testing.T, collection string, limit int, raw map[string]any) *request.Advanced {
	t.Helper()
	req, err := request.NewAdvanced(collection, limit, raw, request.Limits{})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return &req
}

func TestAdvanced_Criteria(t *testing.T) {
	exec := &mockExecutor{searchFn: func(*domcol.Descriptor, query.Plan) (*result.Page, error) {
		return &result.Page{Total: 9, Hits: []result.Hit{
			{ID: "o1", Score: 2, Fields: map[string]any{"order_number": "ORD-1"}},
			{ID: "o2", Score: 1},
		}}, nil
	}}
	svc := newTestService(exec, nil)

	res, err := svc.Advanced(context.Background(), admin, newAdvanced(t, "", 5, map[string]any{
		"status":       []any{"pending", "in_transit"},
		"total_weight": map[string]any{"min": 10.0},
		"order_number": "ORD-1",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Collection != domcol.Orders || res.Count != 2 || len(res.Results) != 2 {
		t.Errorf("result = %+v", res)
	}

	plan := exec.plans[domcol.Orders]
	if plan.Limit != 5 || plan.Offset != 0 {
		t.Errorf("window = %d/%d", plan.Offset, plan.Limit)
	}
	c := plan.Clause
	if len(c.Must()) != 2 || len(c.Should()) != 1 || len(c.Filter()) != 0 {
		t.Fatalf("compound = must %d should %d filter %d", len(c.Must()), len(c.Should()), len(c.Filter()))
	}
	if c.Should()[0].Kind() != query.KindText || c.Should()[0].Fuzzy() == nil {
		t.Errorf("scalar criterion must be a fuzzy text clause")
	}
}

func TestAdvanced_NoCriteriaMatchesAllWithinRole(t *testing.T) {
	exec := &mockExecutor{}
	svc := newTestService(exec, nil)

	if _, err := svc.Advanced(context.Background(), dispatcher, newAdvanced(t, domcol.Orders, 0, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plan := exec.plans[domcol.Orders]
	if plan.Limit != request.DefaultLimit {
		t.Errorf("limit = %d, want %d", plan.Limit, request.DefaultLimit)
	}
	c := plan.Clause
	if len(c.Must()) != 1 || c.Must()[0].Kind() != query.KindAll {
		t.Errorf("must = %v, want match-all", c.Must())
	}
	if len(c.Filter()) != 1 {
		t.Errorf("filters = %d, want the dispatcher scope", len(c.Filter()))
	}
}

func TestAdvanced_Errors(t *testing.T) {
	tests := []struct {
		name       string
		caller     caller.Context
		collection string
		raw        map[string]any
		execErr    error
		wantErr    error
	}{
		{"unknown collection", admin, "widgets", nil, nil, domain.ErrUnknownCollection},
		{"forbidden", caller.New("d", role.Driver, "d1"), domcol.Invoices, nil, nil, domain.ErrForbidden},
		{"unknown field", admin, domcol.Orders, map[string]any{"vin": "X"}, nil, domain.ErrValidation},
		{"executor error", admin, domcol.Orders, nil, errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{searchFn: func(*domcol.Descriptor, query.Plan) (*result.Page, error) {
				return nil, tt.execErr
			}}
			_, err := newTestService(exec, nil).Advanced(context.Background(), tt.caller,
				newAdvanced(t, tt.collection, 0, tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.execErr != nil && !errors.Is(err, tt.execErr) {
				t.Errorf("err = %v, want wrapped executor error", err)
			}
		})
	}
}
