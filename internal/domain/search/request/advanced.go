package request

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ravi-m-fleetenable/global-search/internal/domain"
)

// DefaultAdvancedCollection is searched when none is given.
const DefaultAdvancedCollection = "orders"

// CriterionKind selects how a field criterion matches.
type CriterionKind int

const (
	// CriterionList matches any of a set of exact values.
	CriterionList CriterionKind = iota + 1
	// CriterionRange matches inclusive numeric or date bounds.
	CriterionRange
	// CriterionText matches fuzzy text.
	CriterionText
)

// Criterion is one per-field condition of an advanced search.
type Criterion struct {
	Field  string
	Kind   CriterionKind
	Values []string
	Min    *float64
	Max    *float64
	Text   string
}

// Advanced is a validated structured search request.
type Advanced struct {
	collection string
	limit      int
	criteria   []Criterion
}

// NewAdvanced parses raw per-field criteria: a list means "any of", an
// object with min/max means a range, any other scalar means fuzzy text.
// Criteria are ordered by field name.
func NewAdvanced(collection string, limit int, raw map[string]any, limits Limits) (Advanced, error) {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = DefaultAdvancedCollection
	}

	names := make([]string, 0, len(raw))
	for k := range raw {
		names = append(names, k)
	}
	sort.Strings(names)

	criteria := make([]Criterion, 0, len(names))
	for _, name := range names {
		c, skip, err := parseCriterion(name, raw[name])
		if err != nil {
			return Advanced{}, err
		}
		if !skip {
			criteria = append(criteria, c)
		}
	}

	return Advanced{
		collection: collection,
		limit:      limits.Clamp(limit),
		criteria:   criteria,
	}, nil
}

func parseCriterion(name string, v any) (Criterion, bool, error) {
	c := Criterion{Field: name}
	switch t := v.(type) {
	case nil:
		return c, true, nil
	case []any:
		c.Kind = CriterionList
		for _, item := range t {
			c.Values = append(c.Values, fmt.Sprint(item))
		}
	case []string:
		c.Kind = CriterionList
		c.Values = append(c.Values, t...)
	case map[string]any:
		c.Kind = CriterionRange
		var err error
		if c.Min, err = parseBound(name, t["min"]); err != nil {
			return c, false, err
		}
		if c.Max, err = parseBound(name, t["max"]); err != nil {
			return c, false, err
		}
		if c.Min == nil && c.Max == nil {
			return c, false, fmt.Errorf("%w: %s: range needs min or max", domain.ErrValidation, name)
		}
	default:
		s := strings.TrimSpace(fmt.Sprint(t))
		if s == "" {
			return c, true, nil
		}
		c.Kind = CriterionText
		c.Text = s
	}
	return c, false, nil
}

func parseBound(name string, v any) (*float64, error) {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		if n, err := strconv.ParseFloat(t, 64); err == nil {
			f = n
			break
		}
		ts, err := ParseTime(t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		f = float64(ts.Unix())
	default:
		return nil, fmt.Errorf("%w: %s: unsupported bound %T", domain.ErrValidation, name, v)
	}
	return &f, nil
}

// Collection returns the target collection.
func (r *Advanced) Collection() string { return r.collection }

// Limit returns the maximum number of results.
func (r *Advanced) Limit() int { return r.limit }

// Criteria returns the parsed criteria ordered by field.
func (r *Advanced) Criteria() []Criterion {
	out := make([]Criterion, len(r.criteria))
	copy(out, r.criteria)
	return out
}
