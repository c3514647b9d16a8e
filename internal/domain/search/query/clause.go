// Package query builds immutable query trees targeted at one collection's index.
package query

import (
	"slices"
	"time"
)

// Kind identifies the clause variant.
type Kind int

const (
	// KindText matches analyzed text on one or more fields.
	KindText Kind = iota + 1
	// KindAutocomplete matches prefixes on an autocomplete-indexed path.
	KindAutocomplete
	// KindRange matches numeric or date values within inclusive bounds.
	KindRange
	// KindEquals matches an exact scalar (nil means the field is unset).
	KindEquals
	// KindIn matches any of a set of exact values.
	KindIn
	// KindCompound is a boolean composition of clauses.
	KindCompound
	// KindAll matches every record.
	KindAll
	// KindNone matches no record.
	KindNone
)

var kindNames = map[Kind]string{
	KindText:         "text",
	KindAutocomplete: "autocomplete",
	KindRange:        "range",
	KindEquals:       "equals",
	KindIn:           "in",
	KindCompound:     "compound",
	KindAll:          "all",
	KindNone:         "none",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Clause is one node of a query tree. The zero value is not valid;
// use the constructors in this package.
type Clause struct {
	kind  Kind
	paths []string
	text  string
	fuzzy *Fuzzy
	boost float64

	min, max *float64
	value    any
	values   []string

	must, should, mustNot, filter []Clause
}

// Kind returns the clause variant.
func (c Clause) Kind() Kind { return c.kind }

// Paths returns the target field paths (one for every kind except Text).
func (c Clause) Paths() []string { return slices.Clone(c.paths) }

// Path returns the first target path, or "" for kinds without one.
func (c Clause) Path() string {
	if len(c.paths) == 0 {
		return ""
	}
	return c.paths[0]
}

// Text returns the query text of a Text or Autocomplete clause.
func (c Clause) Text() string { return c.text }

// Fuzzy returns the fuzzy config or nil when fuzzy matching is off.
func (c Clause) Fuzzy() *Fuzzy {
	if c.fuzzy == nil {
		return nil
	}
	f := *c.fuzzy
	return &f
}

// Boost returns the score multiplier. Zero means unboosted.
func (c Clause) Boost() float64 { return c.boost }

// Min returns the inclusive lower bound of a Range clause.
func (c Clause) Min() *float64 { return copyFloat(c.min) }

// Max returns the inclusive upper bound of a Range clause.
func (c Clause) Max() *float64 { return copyFloat(c.max) }

// Value returns the scalar of an Equals clause. Nil means "field is unset".
func (c Clause) Value() any { return c.value }

// Values returns the set of an In clause.
func (c Clause) Values() []string { return slices.Clone(c.values) }

// Must returns required, scoring clauses of a Compound.
func (c Clause) Must() []Clause { return slices.Clone(c.must) }

// Should returns optional clauses of a Compound.
func (c Clause) Should() []Clause { return slices.Clone(c.should) }

// MustNot returns excluding clauses of a Compound.
func (c Clause) MustNot() []Clause { return slices.Clone(c.mustNot) }

// Filter returns required, non-scoring clauses of a Compound.
func (c Clause) Filter() []Clause { return slices.Clone(c.filter) }

// WithBoost returns a copy of the clause with the given boost.
func (c Clause) WithBoost(b float64) Clause {
	c.boost = b
	return c
}

// ShouldRequired reports whether at least one should clause must match:
// a compound without must clauses treats its should list as required.
func (c Clause) ShouldRequired() bool {
	return c.kind == KindCompound && len(c.must) == 0 && len(c.should) > 0
}

// Unsatisfiable reports whether the clause can never match a record.
func (c Clause) Unsatisfiable() bool {
	switch c.kind {
	case KindNone:
		return true
	case KindIn:
		return len(c.values) == 0
	case KindRange:
		return c.min != nil && c.max != nil && *c.min > *c.max
	case KindCompound:
		for _, m := range c.must {
			if m.Unsatisfiable() {
				return true
			}
		}
		for _, f := range c.filter {
			if f.Unsatisfiable() {
				return true
			}
		}
		if c.ShouldRequired() {
			for _, s := range c.should {
				if !s.Unsatisfiable() {
					return false
				}
			}
			return true
		}
		return false
	default:
		return false
	}
}

// Range matches values within inclusive bounds. A nil bound is open.
func Range(path string, lo, hi *float64) Clause {
	return Clause{kind: KindRange, paths: []string{path}, min: copyFloat(lo), max: copyFloat(hi)}
}

// TimeBound converts t into the stored date representation (epoch seconds).
func TimeBound(t time.Time) *float64 {
	v := float64(t.Unix())
	return &v
}

// Equals matches an exact scalar. A nil value matches records where path is unset.
func Equals(path string, value any) Clause {
	return Clause{kind: KindEquals, paths: []string{path}, value: value}
}

// In matches any of values. An empty set matches nothing.
func In(path string, values []string) Clause {
	return Clause{kind: KindIn, paths: []string{path}, values: slices.Clone(values)}
}

// Compound composes clauses. should clauses only affect ranking unless
// must is empty; then at least one of them has to match.
func Compound(must, should, mustNot, filter []Clause) Clause {
	return Clause{
		kind:    KindCompound,
		must:    slices.Clone(must),
		should:  slices.Clone(should),
		mustNot: slices.Clone(mustNot),
		filter:  slices.Clone(filter),
	}
}

// All matches every record.
func All() Clause { return Clause{kind: KindAll} }

// None matches nothing.
func None() Clause { return Clause{kind: KindNone} }

// Scope intersects c with mandatory filter clauses. Without filters c is returned as is.
func Scope(c Clause, filters []Clause) Clause {
	if len(filters) == 0 {
		return c
	}
	return Compound([]Clause{c}, nil, nil, filters)
}

// Plan is a clause plus the execution window handed to an executor.
type Plan struct {
	Clause    Clause
	Offset    int
	Limit     int
	Highlight *HighlightConfig
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
