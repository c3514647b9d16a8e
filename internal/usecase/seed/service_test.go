package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ravi-m-fleetenable/global-search/internal/domain"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
)

type mockIndexer struct {
	fn    func(desc *domcol.Descriptor, records []map[string]any) (int, error)
	calls []string
	got   map[string][]map[string]any
}

func (m *mockIndexer) Index(_ context.Context, desc *domcol.Descriptor, records []map[string]any) (int, error) {
	m.calls = append(m.calls, desc.Name())
	if m.got == nil {
		m.got = map[string][]map[string]any{}
	}
	m.got[desc.Name()] = records
	if m.fn != nil {
		return m.fn(desc, records)
	}
	return len(records), nil
}

const fixtureYAML = `
pods:
  - id: p1
    pod_number: POD-1
drivers:
  - full_name: Jane Smith
    created_at: 2024-01-02
  - id: 7
    full_name: Bob Stone
orders:
  - id: o1
    order_number: ORD-1
    hawb_numbers: [H-1, H-2]
`

func TestParse(t *testing.T) {
	fx, err := Parse(strings.NewReader(fixtureYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(fx) != 3 || len(fx["drivers"]) != 2 {
		t.Fatalf("fixtures = %v", fx)
	}
	if got := fx["drivers"][0]["created_at"]; got != "2024-01-02" {
		t.Errorf("created_at = %#v, want the raw date string", got)
	}

	empty, err := Parse(strings.NewReader(""))
	if err != nil || len(empty) != 0 {
		t.Errorf("empty doc = %v, %v", empty, err)
	}

	if _, err := Parse(strings.NewReader("orders: [")); err == nil {
		t.Error("expected decode error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(path, []byte(fixtureYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	fx, err := LoadFile(path)
	if err != nil || len(fx) != 3 {
		t.Fatalf("LoadFile = %v, %v", fx, err)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSeed(t *testing.T) {
	fx, _ := Parse(strings.NewReader(fixtureYAML))
	idx := &mockIndexer{}
	svc := New(idx, domcol.Default(), nil)
	svc.newID = func() string { return "generated" }

	written, err := svc.Seed(context.Background(), fx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if strings.Join(idx.calls, ",") != "orders,drivers,pods" {
		t.Errorf("order = %v, want registry order", idx.calls)
	}
	if written["drivers"] != 2 || written["orders"] != 1 {
		t.Errorf("written = %v", written)
	}

	drivers := idx.got["drivers"]
	if drivers[0]["id"] != "generated" {
		t.Errorf("missing id not assigned: %v", drivers[0]["id"])
	}
	if drivers[1]["id"] != "7" {
		t.Errorf("numeric id = %v, want \"7\"", drivers[1]["id"])
	}
	if _, ok := fx["drivers"][0]["id"]; ok {
		t.Error("input fixtures must not be mutated")
	}
}

func TestSeed_DefaultIDsAreUUIDs(t *testing.T) {
	idx := &mockIndexer{}
	_, err := New(idx, domcol.Default(), nil).Seed(context.Background(), Fixtures{
		"pods": {{"pod_number": "POD-1"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if id, _ := idx.got["pods"][0]["id"].(string); len(id) != 36 {
		t.Errorf("id = %q, want a uuid", id)
	}
}

func TestSeed_UnknownCollection(t *testing.T) {
	idx := &mockIndexer{}
	_, err := New(idx, domcol.Default(), nil).Seed(context.Background(), Fixtures{
		"orders":  {{"id": "o1"}},
		"widgets": {{"id": "w1"}},
	})
	if !errors.Is(err, domain.ErrUnknownCollection) {
		t.Errorf("err = %v", err)
	}
	if len(idx.calls) != 0 {
		t.Error("nothing may be written when a collection is unknown")
	}
}

func TestSeed_IndexerError(t *testing.T) {
	idx := &mockIndexer{fn: func(desc *domcol.Descriptor, records []map[string]any) (int, error) {
		if desc.Name() == domcol.Drivers {
			return 0, errors.New("write failed")
		}
		return len(records), nil
	}}
	fx, _ := Parse(strings.NewReader(fixtureYAML))

	written, err := New(idx, domcol.Default(), nil).Seed(context.Background(), fx)
	if err == nil || !strings.Contains(err.Error(), "seed drivers") {
		t.Fatalf("err = %v", err)
	}
	if written["orders"] != 1 {
		t.Errorf("written before failure = %v", written)
	}
}
