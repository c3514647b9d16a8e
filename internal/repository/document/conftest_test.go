package document

import (
	"context"
	"testing"

	"github.com/ravi-m-fleetenable/global-search/internal/db"
	"github.com/ravi-m-fleetenable/global-search/internal/repository/keyspace"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error

	batches [][]db.JSONSetItem
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	m.batches = append(m.batches, append([]db.JSONSetItem(nil), items...))
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, keyspace.New("gs:")), ms
}
