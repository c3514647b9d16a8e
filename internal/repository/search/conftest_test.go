package search

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/ravi-m-fleetenable/global-search/internal/db"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/repository/keyspace"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn         func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	searchCountFn    func(ctx context.Context, index, query string) (int, error)
	aggregateCountFn func(ctx context.Context, q *db.GroupCountQuery) ([]db.GroupCount, error)

	calls atomic.Int32
}

func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	m.calls.Add(1)
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	m.calls.Add(1)
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, query)
	}
	return 0, nil
}

func (m *mockStore) AggregateCount(ctx context.Context, q *db.GroupCountQuery) ([]db.GroupCount, error) {
	m.calls.Add(1)
	if m.aggregateCountFn != nil {
		return m.aggregateCountFn(ctx, q)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, keyspace.New("gs:")), ms
}

func orders(t *testing.T) *domcol.Descriptor {
	t.Helper()
	d, ok := domcol.Default().Get(domcol.Orders)
	if !ok {
		t.Fatal("orders collection not registered")
	}
	return d
}
