package collection

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/ravi-m-fleetenable/global-search/internal/db"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/repository/keyspace"
)

func orders(t *testing.T) *domcol.Descriptor {
	t.Helper()
	d, ok := domcol.Default().Get(domcol.Orders)
	if !ok {
		t.Fatal("orders not registered")
	}
	return d
}

func TestBuildIndex_Orders(t *testing.T) {
	def, err := buildIndex(keyspace.New("gs:"), orders(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "gs:orders_search" {
		t.Errorf("name = %q", def.Name)
	}
	if def.Prefix != "gs:orders:" {
		t.Errorf("prefix = %q", def.Prefix)
	}

	byAlias := make(map[string]db.SchemaField, len(def.Fields))
	for _, f := range def.Fields {
		byAlias[f.As] = f
	}

	tests := []struct {
		alias string
		path  string
		kind  db.FieldKind
	}{
		{"id", "$.id", db.KindTag},
		{"order_number", "$.order_number", db.KindText},
		{"order_number_autocomplete", "$.order_number", db.KindText},
		{"hawb_numbers", "$.hawb_numbers[*]", db.KindText},
		{"hawb_numbers_autocomplete", "$.hawb_numbers[*]", db.KindText},
		{"assigned_dispatcher_id", "$.assigned_dispatcher_id", db.KindTag},
		{"created_at", "$.created_at", db.KindNumeric},
		{"total_weight", "$.total_weight", db.KindNumeric},
	}
	for _, tt := range tests {
		f, ok := byAlias[tt.alias]
		if !ok {
			t.Errorf("missing alias %q", tt.alias)
			continue
		}
		if f.Path != tt.path || f.Kind != tt.kind {
			t.Errorf("%s = %+v, want path %s kind %s", tt.alias, f, tt.path, tt.kind)
		}
	}
	if !byAlias["assigned_dispatcher_id"].IndexMissing {
		t.Error("tag fields must index missing values")
	}
	if !byAlias["created_at"].Sortable {
		t.Error("numeric fields must be sortable")
	}
}

func TestBuildIndex_AllCollections(t *testing.T) {
	for _, d := range domcol.Default().All() {
		if _, err := buildIndex(keyspace.New(""), d); err != nil {
			t.Errorf("%s: %v", d.Name(), err)
		}
	}
}

func TestEnsure_Creates(t *testing.T) {
	repo, ms := newTestRepo(t)

	created, err := repo.Ensure(context.Background(), orders(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created || len(ms.created) != 1 {
		t.Fatalf("created = %v, calls = %d", created, len(ms.created))
	}
}

func TestEnsure_KeepsExisting(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		return name == "gs:orders_search", nil
	}

	created, err := repo.Ensure(context.Background(), orders(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created || len(ms.created) != 0 {
		t.Fatal("existing index must not be recreated")
	}
}

func TestEnsure_RaceIsNotAnError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists }

	created, err := repo.Ensure(context.Background(), orders(t))
	if err != nil || created {
		t.Fatalf("Ensure = %v, %v", created, err)
	}
}

func TestEnsure_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	boom := &db.Error{Op: db.OpCreateIndex, Err: errors.New("boom")}
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return boom }

	_, err := repo.Ensure(context.Background(), orders(t))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
}

func TestEnsureAll(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		return name == "gs:fleets_search", nil
	}

	created, err := repo.EnsureAll(context.Background(), domcol.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != len(domcol.Default().All())-1 || slices.Contains(created, domcol.Fleets) {
		t.Errorf("created = %v", created)
	}
}

func TestDrop(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.dropIndexFn = func(context.Context, string) error { return db.ErrIndexNotFound }
	if err := repo.Drop(context.Background(), orders(t)); err != nil {
		t.Fatalf("missing index should not fail: %v", err)
	}

	ms.dropIndexFn = func(context.Context, string) error { return errors.New("boom") }
	if err := repo.Drop(context.Background(), orders(t)); err == nil {
		t.Fatal("expected error")
	}
}

func TestMissingIndexes(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		return name != "gs:pods_search" && name != "gs:orders_search", nil
	}

	missing, err := repo.Indexes(domcol.Default()).MissingIndexes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(missing, []string{domcol.Orders, domcol.Pods}) {
		t.Errorf("missing = %v", missing)
	}

	ms.indexExistsFn = func(context.Context, string) (bool, error) { return false, errors.New("down") }
	if _, err := repo.Missing(context.Background(), domcol.Default()); err == nil {
		t.Fatal("expected error")
	}
}
