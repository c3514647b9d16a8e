package search

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/role"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/request"
	usesearch "github.com/ravi-m-fleetenable/global-search/internal/usecase/search"
)

func ptr(f float64) *float64 { return &f }

func TestCompile(t *testing.T) {
	two := query.Fuzzy{MaxEdits: 2}
	one := query.Fuzzy{MaxEdits: 1}
	abc := query.NewBuilder("abc", query.Fuzzy{})

	tests := []struct {
		name   string
		clause query.Clause
		want   string
	}{
		{
			name:   "text over text and tag fields",
			clause: query.NewBuilder("ORD-TEST", two).Text([]string{"order_number", "status"}, true),
			want:   `(@order_number:(%%ord%%|%%test%%)|@status:{ORD\-TEST})`,
		},
		{
			name:   "text skips numeric fields",
			clause: abc.Text([]string{"order_number", "total_weight"}, false),
			want:   `@order_number:(abc)`,
		},
		{
			name:   "autocomplete prefix and fuzzy per term",
			clause: query.NewBuilder("ord te", one).Autocomplete("order_number_autocomplete", true),
			want:   `@order_number_autocomplete:((ord*|%ord%) (te*|%te%))`,
		},
		{
			name:   "autocomplete single rune has no prefix",
			clause: query.NewBuilder("o", one).Autocomplete("order_number_autocomplete", true),
			want:   `@order_number_autocomplete:((o))`,
		},
		{
			name:   "boost",
			clause: abc.Text([]string{"order_number"}, false).WithBoost(2),
			want:   `(@order_number:(abc)) => { $weight: 2; }`,
		},
		{
			name:   "equals unset",
			clause: query.Equals("assigned_dispatcher_id", nil),
			want:   `ismissing(@assigned_dispatcher_id)`,
		},
		{
			name:   "equals tag",
			clause: query.Equals("driver_id", "drv-1"),
			want:   `@driver_id:{drv\-1}`,
		},
		{
			name:   "equals numeric",
			clause: query.Equals("total_weight", 5),
			want:   `@total_weight:[5 5]`,
		},
		{
			name:   "in tags",
			clause: query.In("status", []string{"pending", "in transit"}),
			want:   `@status:{pending|in\ transit}`,
		},
		{
			name:   "open range",
			clause: query.Range("created_at", ptr(100), nil),
			want:   `@created_at:[100 +inf]`,
		},
		{
			name:   "all",
			clause: query.All(),
			want:   `*`,
		},
		{
			name:   "empty compound",
			clause: query.Compound([]query.Clause{query.All()}, nil, nil, nil),
			want:   `*`,
		},
		{
			name: "full compound",
			clause: query.Compound(
				[]query.Clause{abc.Text([]string{"order_number"}, false)},
				[]query.Clause{query.Equals("status", "x")},
				[]query.Clause{query.In("status", []string{"cancelled"})},
				[]query.Clause{query.Range("total_weight", ptr(1), ptr(2))},
			),
			want: `((@order_number:(abc)) (@total_weight:[1 2]) ~(@status:{x}) -(@status:{cancelled}))`,
		},
		{
			name: "should without must is required",
			clause: query.Compound(nil,
				[]query.Clause{query.Equals("assigned_dispatcher_id", "u1"), query.Equals("assigned_dispatcher_id", nil)},
				nil, []query.Clause{query.In("status", []string{"pending"})},
			),
			want: `((@status:{pending}) (@assigned_dispatcher_id:{u1}|ismissing(@assigned_dispatcher_id)))`,
		},
		{
			name: "unsatisfiable should dropped",
			clause: query.Compound(nil,
				[]query.Clause{query.None(), abc.Text([]string{"order_number"}, false)},
				nil, nil,
			),
			want: `(@order_number:(abc))`,
		},
		{
			name: "optional terms dropped without positive part",
			clause: query.Compound(
				[]query.Clause{query.All()},
				[]query.Clause{query.Equals("status", "x")},
				nil, nil,
			),
			want: `*`,
		},
		{
			name: "scoped by role",
			clause: query.Scope(abc.Text([]string{"order_number"}, false), []query.Clause{
				query.Compound(nil, []query.Clause{
					query.Equals("assigned_dispatcher_id", "u1"),
					query.Equals("assigned_dispatcher_id", nil),
				}, nil, nil),
			}),
			want: `((@order_number:(abc)) (@assigned_dispatcher_id:{u1}|ismissing(@assigned_dispatcher_id)))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(orders(t), tt.clause)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Compile() =\n  %s\nwant\n  %s", got, tt.want)
			}
		})
	}
}

func TestCompile_NoMatch(t *testing.T) {
	bang := query.NewBuilder("!!!", query.DefaultFuzzy())
	tokenless := bang.Text([]string{"order_number"}, true)

	tests := []struct {
		name   string
		clause query.Clause
	}{
		{"none", query.None()},
		{"text without terms", tokenless},
		{"autocomplete without terms", query.NewBuilder("-", query.DefaultFuzzy()).Autocomplete("order_number_autocomplete", true)},
		{"fallback without terms", bang.AutocompleteWithFallback("order_number_autocomplete", "order_number")},
		{
			name:   "required should all without terms",
			clause: query.Compound(nil, []query.Clause{tokenless, query.None()}, nil, nil),
		},
		{
			name: "must without terms",
			clause: query.Compound(
				[]query.Clause{tokenless}, nil, nil,
				[]query.Clause{query.In("status", []string{"pending"})},
			),
		},
		{
			name:   "filter without terms",
			clause: query.Compound([]query.Clause{query.All()}, nil, nil, []query.Clause{tokenless}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(orders(t), tt.clause)
			if !errors.Is(err, ErrNoMatch) {
				t.Fatalf("Compile() = %q, %v; want ErrNoMatch", got, err)
			}
		})
	}
}

func TestCompile_MustNotWithoutTermsExcludesNothing(t *testing.T) {
	c := query.Compound(
		[]query.Clause{query.In("status", []string{"pending"})}, nil,
		[]query.Clause{query.NewBuilder("!!!", query.Fuzzy{}).Text([]string{"order_number"}, false)},
		nil,
	)
	got, err := Compile(orders(t), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `(@status:{pending})` {
		t.Errorf("Compile() = %q", got)
	}
}

func TestCompile_CollectionClauseWithoutTerms(t *testing.T) {
	admin := caller.New("a", role.Admin, "")

	golden := map[string]map[string]string{
		"!!!": {domcol.Orders: `(@status:{\!\!\!})`},
		"-":   {domcol.Orders: `(@status:{\-})`},
		"#@":  {domcol.Orders: `(@status:{\#\@})`},
	}

	for q, want := range golden {
		b := query.NewBuilder(q, query.DefaultFuzzy())
		for _, d := range domcol.Default().All() {
			got, err := Compile(d, usesearch.CollectionClause(admin, d, b, request.Filters{}))
			if errors.Is(err, ErrNoMatch) {
				if _, ok := want[d.Name()]; ok {
					t.Errorf("%s %q: ErrNoMatch, want %s", d.Name(), q, want[d.Name()])
				}
				continue
			}
			if err != nil {
				t.Fatalf("%s %q: %v", d.Name(), q, err)
			}
			if got == matchAll || strings.Contains(got, "(*") {
				t.Errorf("%s %q: compiled to match-all %q", d.Name(), q, got)
			}
			if w, ok := want[d.Name()]; ok && got != w {
				t.Errorf("%s %q = %s, want %s", d.Name(), q, got, w)
			}
		}
	}

	pods, _ := domcol.Default().Get(domcol.Pods)
	_, err := Compile(pods, usesearch.CollectionClause(admin, pods, query.NewBuilder("!!!", query.DefaultFuzzy()), request.Filters{}))
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("pods: err = %v, want ErrNoMatch", err)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		clause query.Clause
	}{
		{"unknown field", query.Equals("nope", "x")},
		{"range on text", query.Range("order_number", ptr(1), nil)},
		{"autocomplete on tag", query.NewBuilder("x", query.Fuzzy{}).Autocomplete("status", false)},
		{"non numeric in", query.In("total_weight", []string{"heavy"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(orders(t), tt.clause); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("ORD-TEST/001  x.y, Smith's")
	want := []string{"ord", "test", "001", "x", "y", "smith", "s"}
	if !slices.Equal(got, want) {
		t.Errorf("tokenize = %v, want %v", got, want)
	}
}

func TestFuzzyTerm(t *testing.T) {
	tests := []struct {
		term  string
		fuzzy *query.Fuzzy
		want  string
	}{
		{"smith", nil, "smith"},
		{"smith", &query.Fuzzy{MaxEdits: 0}, "smith"},
		{"smith", &query.Fuzzy{MaxEdits: 1}, "%smith%"},
		{"smith", &query.Fuzzy{MaxEdits: 5}, "%%%smith%%%"},
		{"ab", &query.Fuzzy{MaxEdits: 2}, "ab"},
	}
	for _, tt := range tests {
		if got := fuzzyTerm(tt.term, tt.fuzzy); got != tt.want {
			t.Errorf("fuzzyTerm(%q, %+v) = %q, want %q", tt.term, tt.fuzzy, got, tt.want)
		}
	}
}
