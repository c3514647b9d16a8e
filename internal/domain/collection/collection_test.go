package collection

import (
	"strings"
	"testing"
	"time"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/collection/field"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"
)

func minimalSpec() Spec {
	return Spec{
		Name:         "parcels",
		Fields:       []field.Field{text("parcel_number"), tag("status"), date("created_at")},
		Searchable:   []string{"parcel_number", "status"},
		Autocomplete: []string{"parcel_number"},
		StatusField:  "status",
		Display:      []string{"parcel_number", "status", "created_at"},
	}
}

func TestNew_Valid(t *testing.T) {
	d, err := New(minimalSpec())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name() != "parcels" || d.Index() != "parcels_search" {
		t.Errorf("name/index = %q/%q", d.Name(), d.Index())
	}
	if f := d.Fields(); len(f) != 4 || f[0].Name() != IDField {
		t.Errorf("fields = %v, want id first", f)
	}
	ac, ok := d.PrimaryAutocomplete()
	if !ok || ac.Path != "parcel_number_autocomplete" {
		t.Errorf("primary autocomplete = %+v", ac)
	}
	if got := d.TextFields(); len(got) != 1 || got[0] != "status" {
		t.Errorf("TextFields() = %v, want [status]", got)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
		want   string
	}{
		{"bad name", func(s *Spec) { s.Name = "Bad-Name" }, "invalid collection name"},
		{"duplicate field", func(s *Spec) { s.Fields = append(s.Fields, tag("status")) }, "duplicate"},
		{"unknown searchable", func(s *Spec) { s.Searchable = []string{"nope"} }, "not indexed"},
		{"autocomplete on tag", func(s *Spec) { s.Autocomplete = []string{"status"} }, "text field"},
		{"unknown status", func(s *Spec) { s.StatusField = "state" }, "status field"},
		{"no created_at", func(s *Spec) { s.Fields = s.Fields[:2] }, "created_at"},
		{"date facet on tag", func(s *Spec) {
			s.Facets = []facet.Spec{facet.DateSpec("statusFacet", "status")}
		}, "date facet"},
		{"facet unknown field", func(s *Spec) {
			s.Facets = []facet.Spec{facet.StringSpec("xFacet", "x", 5)}
		}, "unknown field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := minimalSpec()
			tt.mutate(&s)
			_, err := New(s)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestFieldType(t *testing.T) {
	d, _ := New(minimalSpec())
	tests := []struct {
		path string
		want field.Type
		ok   bool
	}{
		{"parcel_number", field.Text, true},
		{"parcel_number_autocomplete", field.Text, true},
		{"status", field.Tag, true},
		{"created_at", field.Date, true},
		{"id", field.Tag, true},
		{"missing", "", false},
	}
	for _, tt := range tests {
		got, ok := d.FieldType(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FieldType(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	want := []string{Orders, Accounts, Fleets, Drivers, Billings, Invoices, Pods}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	orders, ok := r.Get(Orders)
	if !ok {
		t.Fatal("orders missing")
	}
	if f, _ := orders.Field("hawb_numbers"); !f.IsMulti() {
		t.Error("hawb_numbers should be multi-valued")
	}
	if len(orders.Autocomplete()) != 2 {
		t.Errorf("orders autocomplete = %v", orders.Autocomplete())
	}

	pods, _ := r.Get(Pods)
	if pods.StatusField() != "delivery_status" {
		t.Errorf("pods status field = %q", pods.StatusField())
	}
	if len(pods.Facets()) != 0 {
		t.Error("pods should have no facets")
	}

	if _, ok := r.Get("users"); ok {
		t.Error("users is not searchable")
	}
}

func TestNewRegistry_Duplicate(t *testing.T) {
	d, _ := New(minimalSpec())
	if _, err := NewRegistry(d, d); err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestNormalize(t *testing.T) {
	orders, _ := Default().Get(Orders)

	rec, err := orders.Normalize(map[string]any{
		"id":           "o1",
		"order_number": "ORD-1",
		"hawb_numbers": []any{"H1", "H2"},
		"created_at":   "2024-01-02T03:04:05Z",
		"total_weight": "12.5",
		"driver_id":    42,
		"origin":       nil,
		"extra":        "kept",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantTS := float64(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Unix())
	if rec["created_at"] != wantTS {
		t.Errorf("created_at = %v, want %v", rec["created_at"], wantTS)
	}
	if rec["total_weight"] != 12.5 {
		t.Errorf("total_weight = %v", rec["total_weight"])
	}
	if rec["driver_id"] != "42" {
		t.Errorf("driver_id = %v", rec["driver_id"])
	}
	if rec["extra"] != "kept" {
		t.Error("unknown fields should be kept")
	}
}

func TestNormalize_Errors(t *testing.T) {
	orders, _ := Default().Get(Orders)
	if _, err := orders.Normalize(map[string]any{"order_number": "x"}); err == nil {
		t.Error("expected error for missing id")
	}
	if _, err := orders.Normalize(map[string]any{"id": "o1", "created_at": "not a date"}); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestProject(t *testing.T) {
	orders, _ := Default().Get(Orders)
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	got := orders.Project(map[string]any{
		"id":                     "o1",
		"order_number":           "ORD-1",
		"created_at":             float64(ts.Unix()),
		"assigned_dispatcher_id": "u1",
	})
	if got["order_number"] != "ORD-1" {
		t.Errorf("order_number = %v", got["order_number"])
	}
	if got["created_at"] != "2024-05-01T00:00:00Z" {
		t.Errorf("created_at = %v", got["created_at"])
	}
	if _, ok := got["assigned_dispatcher_id"]; ok {
		t.Error("non-display field leaked")
	}
}
