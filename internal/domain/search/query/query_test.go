package query

import (
	"testing"
	"time"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestBuilder_Text(t *testing.T) {
	b := NewBuilder("  ORD-TEST  ", DefaultFuzzy())

	c := b.Text([]string{"order_number", "status"}, true)
	if c.Kind() != KindText {
		t.Fatalf("kind = %v, want text", c.Kind())
	}
	if c.Text() != "ORD-TEST" {
		t.Errorf("text = %q, want trimmed query", c.Text())
	}
	if len(c.Paths()) != 2 {
		t.Errorf("paths = %v", c.Paths())
	}
	f := c.Fuzzy()
	if f == nil || f.MaxEdits != DefaultMaxEdits || f.MaxExpansions != DefaultMaxExpansions {
		t.Errorf("fuzzy = %+v", f)
	}

	plain := b.Text([]string{"order_number"}, false)
	if plain.Fuzzy() != nil {
		t.Error("expected no fuzzy config")
	}
}

func TestBuilder_WithFuzzyDoesNotMutate(t *testing.T) {
	b := NewBuilder("x", DefaultFuzzy())
	b2 := b.WithFuzzy(Fuzzy{MaxEdits: 1, MaxExpansions: 10})

	if b.FuzzyConfig().MaxEdits != DefaultMaxEdits {
		t.Error("original builder mutated")
	}
	if got := b2.Autocomplete("p", true).Fuzzy().MaxEdits; got != 1 {
		t.Errorf("override MaxEdits = %d, want 1", got)
	}
}

func TestClauseImmutable(t *testing.T) {
	paths := []string{"a", "b"}
	c := NewBuilder("q", DefaultFuzzy()).Text(paths, true)
	paths[0] = "mutated"
	if c.Paths()[0] != "a" {
		t.Error("clause shares caller's slice")
	}

	got := c.Paths()
	got[1] = "mutated"
	if c.Paths()[1] != "b" {
		t.Error("accessor exposes internal slice")
	}

	f := c.Fuzzy()
	f.MaxEdits = 99
	if c.Fuzzy().MaxEdits == 99 {
		t.Error("accessor exposes internal fuzzy config")
	}
}

func TestAutocompleteWithFallback(t *testing.T) {
	c := NewBuilder("ord", DefaultFuzzy()).AutocompleteWithFallback("order_number_autocomplete", "order_number")
	if c.Kind() != KindCompound {
		t.Fatalf("kind = %v", c.Kind())
	}
	should := c.Should()
	if len(should) != 2 {
		t.Fatalf("should = %d clauses", len(should))
	}
	if should[0].Kind() != KindAutocomplete || should[0].Path() != "order_number_autocomplete" {
		t.Errorf("first should = %v %q", should[0].Kind(), should[0].Path())
	}
	if should[1].Kind() != KindText || should[1].Boost() != FallbackTextBoost {
		t.Errorf("second should = %v boost %v", should[1].Kind(), should[1].Boost())
	}
	if !c.ShouldRequired() {
		t.Error("should-only compound must require one match")
	}
}

func TestFuzzy_OverrideAndClamp(t *testing.T) {
	f := DefaultFuzzy().Override(&FuzzyOverride{MaxEdits: intPtr(5), PrefixLength: intPtr(-1)})
	if f.MaxEdits != 5 {
		t.Fatalf("override not applied: %+v", f)
	}
	f = f.Clamp(1)
	if f.MaxEdits != 1 {
		t.Errorf("MaxEdits = %d, want ceiling 1", f.MaxEdits)
	}
	if f.PrefixLength != 0 {
		t.Errorf("PrefixLength = %d, want 0", f.PrefixLength)
	}

	g := Fuzzy{MaxEdits: -3}.Clamp(0)
	if g.MaxEdits != 0 || g.MaxExpansions != DefaultMaxExpansions {
		t.Errorf("clamp of negative = %+v", g)
	}

	if DefaultFuzzy().Override(nil) != DefaultFuzzy() {
		t.Error("nil override changed config")
	}
}

func TestRange(t *testing.T) {
	c := Range("created_at", floatPtr(1), nil)
	if c.Min() == nil || *c.Min() != 1 || c.Max() != nil {
		t.Errorf("range = %v..%v", c.Min(), c.Max())
	}

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if *TimeBound(ts) != float64(ts.Unix()) {
		t.Error("TimeBound mismatch")
	}
}

func TestUnsatisfiable(t *testing.T) {
	b := NewBuilder("x", DefaultFuzzy())
	text := b.Text([]string{"f"}, false)

	tests := []struct {
		name string
		c    Clause
		want bool
	}{
		{"none", None(), true},
		{"all", All(), false},
		{"text", text, false},
		{"empty in", In("status", nil), true},
		{"in", In("status", []string{"a"}), false},
		{"inverted range", Range("n", floatPtr(5), floatPtr(1)), true},
		{"filter none", Compound([]Clause{text}, nil, nil, []Clause{None()}), true},
		{"must none", Compound([]Clause{None()}, nil, nil, nil), true},
		{"should all none", Compound(nil, []Clause{None(), None()}, nil, nil), true},
		{"should one ok", Compound(nil, []Clause{None(), text}, nil, nil), false},
		{"optional should none", Compound([]Clause{text}, []Clause{None()}, nil, nil), false},
		{"must not none", Compound([]Clause{text}, nil, []Clause{None()}, nil), false},
		{"empty compound", Compound(nil, nil, nil, nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Unsatisfiable(); got != tt.want {
				t.Errorf("Unsatisfiable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScope(t *testing.T) {
	base := All()
	if Scope(base, nil).Kind() != KindAll {
		t.Error("scope without filters should return the clause")
	}
	scoped := Scope(base, []Clause{Equals("driver_id", "d1")})
	if scoped.Kind() != KindCompound || len(scoped.Must()) != 1 || len(scoped.Filter()) != 1 {
		t.Errorf("scoped = %+v", scoped)
	}
}

func TestHighlight(t *testing.T) {
	h := Highlight([]string{"order_number"})
	if h.MaxCharsToExamine != DefaultMaxCharsToExamine || h.MaxNumPassages != DefaultMaxNumPassages {
		t.Errorf("highlight = %+v", h)
	}
}

func TestKindString(t *testing.T) {
	if KindCompound.String() != "compound" || Kind(0).String() != "unknown" {
		t.Error("unexpected kind names")
	}
}
