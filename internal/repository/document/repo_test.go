package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/ravi-m-fleetenable/global-search/internal/db"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
)

func orders(t *testing.T) *domcol.Descriptor {
	t.Helper()
	d, ok := domcol.Default().Get(domcol.Orders)
	if !ok {
		t.Fatal("orders not registered")
	}
	return d
}

func TestIndex_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	n, err := repo.Index(context.Background(), orders(t), []map[string]any{
		{"id": "o1", "order_number": "ORD-1", "created_at": "2024-01-02T03:04:05Z", "total_weight": "12.5"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || len(ms.batches) != 1 {
		t.Fatalf("written = %d, batches = %d", n, len(ms.batches))
	}

	item := ms.batches[0][0]
	if item.Key != "gs:orders:o1" || item.Path != "$" {
		t.Errorf("item = %s %s", item.Key, item.Path)
	}
	var doc map[string]any
	if err := json.Unmarshal(item.Data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["created_at"] != float64(1704164645) {
		t.Errorf("created_at = %v, want epoch seconds", doc["created_at"])
	}
	if doc["total_weight"] != 12.5 {
		t.Errorf("total_weight = %v", doc["total_weight"])
	}
}

func TestIndex_Batches(t *testing.T) {
	repo, ms := newTestRepo(t)

	recs := make([]map[string]any, batchSize+3)
	for i := range recs {
		recs[i] = map[string]any{"id": fmt.Sprintf("o%d", i), "created_at": 0}
	}

	n, err := repo.Index(context.Background(), orders(t), recs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(recs) {
		t.Errorf("written = %d", n)
	}
	if len(ms.batches) != 2 || len(ms.batches[1]) != 3 {
		t.Errorf("batches = %d", len(ms.batches))
	}
}

func TestIndex_InvalidRecord(t *testing.T) {
	repo, ms := newTestRepo(t)

	_, err := repo.Index(context.Background(), orders(t), []map[string]any{{"order_number": "no id"}})
	if err == nil {
		t.Fatal("expected error for missing id")
	}
	if len(ms.batches) != 0 {
		t.Error("nothing should be written")
	}
}

func TestIndex_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetMultiFn = func(context.Context, []db.JSONSetItem) error {
		return &db.Error{Op: db.OpJSONSet, Err: errors.New("boom")}
	}

	n, err := repo.Index(context.Background(), orders(t), []map[string]any{{"id": "o1"}})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || n != 0 {
		t.Fatalf("Index = %d, %v", n, err)
	}
}
