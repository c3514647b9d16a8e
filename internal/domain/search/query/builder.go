package query

import (
	"slices"
	"strings"
)

// Fuzzy match defaults.
const (
	DefaultMaxEdits      = 2
	DefaultPrefixLength  = 0
	DefaultMaxExpansions = 50
	// MaxEditsCeiling is the hard limit both supported executors accept.
	MaxEditsCeiling = 2

	// FallbackTextBoost weights the plain text half of AutocompleteWithFallback.
	FallbackTextBoost = 0.5
)

// Fuzzy is the edit-distance tolerance attached to Text and Autocomplete clauses.
type Fuzzy struct {
	MaxEdits      int
	PrefixLength  int
	MaxExpansions int
}

// DefaultFuzzy returns the process-wide fallback config.
func DefaultFuzzy() Fuzzy {
	return Fuzzy{
		MaxEdits:      DefaultMaxEdits,
		PrefixLength:  DefaultPrefixLength,
		MaxExpansions: DefaultMaxExpansions,
	}
}

// FuzzyOverride carries optional per-request overrides.
type FuzzyOverride struct {
	MaxEdits      *int
	PrefixLength  *int
	MaxExpansions *int
}

// Override applies non-nil fields of o over f.
func (f Fuzzy) Override(o *FuzzyOverride) Fuzzy {
	if o == nil {
		return f
	}
	if o.MaxEdits != nil {
		f.MaxEdits = *o.MaxEdits
	}
	if o.PrefixLength != nil {
		f.PrefixLength = *o.PrefixLength
	}
	if o.MaxExpansions != nil {
		f.MaxExpansions = *o.MaxExpansions
	}
	return f
}

// Clamp bounds MaxEdits to [0, ceiling] and keeps the other fields sane.
func (f Fuzzy) Clamp(ceiling int) Fuzzy {
	if ceiling <= 0 || ceiling > MaxEditsCeiling {
		ceiling = MaxEditsCeiling
	}
	f.MaxEdits = max(0, min(f.MaxEdits, ceiling))
	f.PrefixLength = max(0, f.PrefixLength)
	if f.MaxExpansions <= 0 {
		f.MaxExpansions = DefaultMaxExpansions
	}
	return f
}

// Builder produces clauses for one query text. It is immutable; With* methods return copies.
type Builder struct {
	text  string
	fuzzy Fuzzy
}

// NewBuilder returns a builder for queryText using the given fuzzy defaults.
func NewBuilder(queryText string, defaults Fuzzy) Builder {
	return Builder{text: strings.TrimSpace(queryText), fuzzy: defaults}
}

// WithFuzzy returns a copy using f for fuzzy clauses.
func (b Builder) WithFuzzy(f Fuzzy) Builder {
	b.fuzzy = f
	return b
}

// QueryText returns the trimmed query text.
func (b Builder) QueryText() string { return b.text }

// FuzzyConfig returns the config attached to fuzzy clauses.
func (b Builder) FuzzyConfig() Fuzzy { return b.fuzzy }

// Text matches the query text against one or more fields.
func (b Builder) Text(paths []string, fuzzy bool) Clause {
	c := Clause{kind: KindText, paths: slices.Clone(paths), text: b.text}
	if fuzzy {
		c.fuzzy = b.fuzzyPtr()
	}
	return c
}

// Autocomplete matches the query text as a prefix on an autocomplete-indexed path.
func (b Builder) Autocomplete(path string, fuzzy bool) Clause {
	c := Clause{kind: KindAutocomplete, paths: []string{path}, text: b.text}
	if fuzzy {
		c.fuzzy = b.fuzzyPtr()
	}
	return c
}

// AutocompleteWithFallback combines a fuzzy autocomplete match with a
// lower-weighted text match so partial queries still surface results.
func (b Builder) AutocompleteWithFallback(autocompletePath, textPath string) Clause {
	return Compound(nil, []Clause{
		b.Autocomplete(autocompletePath, true),
		b.Text([]string{textPath}, true).WithBoost(FallbackTextBoost),
	}, nil, nil)
}

func (b Builder) fuzzyPtr() *Fuzzy {
	f := b.fuzzy
	return &f
}
