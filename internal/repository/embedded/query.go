package embedded

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	bq "github.com/blevesearch/bleve/v2/search/query"

	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/collection/field"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
)

// bleveFuzzyCeiling is the largest edit distance bleve accepts.
const bleveFuzzyCeiling = 2

// errNoMatch marks a clause that can match no record.
var errNoMatch = errors.New("clause matches no record")

type translator struct {
	desc *domcol.Descriptor
}

// translate maps a query tree onto a bleve query for one collection.
func translate(desc *domcol.Descriptor, c query.Clause) (bq.Query, error) {
	q, err := translator{desc: desc}.clause(c)
	if errors.Is(err, errNoMatch) {
		return bleve.NewMatchNoneQuery(), nil
	}
	return q, err
}

func (tr translator) clause(c query.Clause) (bq.Query, error) {
	var (
		q   bq.Query
		err error
	)
	switch c.Kind() {
	case query.KindText:
		q, err = tr.text(c)
	case query.KindAutocomplete:
		q, err = tr.autocomplete(c)
	case query.KindRange:
		q, err = tr.rangeClause(c)
	case query.KindEquals:
		q, err = tr.equals(c)
	case query.KindIn:
		q, err = tr.in(c)
	case query.KindCompound:
		q, err = tr.compound(c)
	case query.KindAll:
		q = bleve.NewMatchAllQuery()
	case query.KindNone:
		return nil, errNoMatch
	default:
		return nil, fmt.Errorf("unsupported clause kind %s", c.Kind())
	}
	if err != nil {
		return nil, err
	}
	if b := c.Boost(); b > 0 && b != 1 {
		if bb, ok := q.(bq.BoostableQuery); ok {
			bb.SetBoost(b)
		}
	}
	return q, nil
}

func (tr translator) fieldType(path string) (field.Type, error) {
	ft, ok := tr.desc.FieldType(path)
	if !ok {
		return "", fmt.Errorf("collection %s: unknown field %q", tr.desc.Name(), path)
	}
	return ft, nil
}

func (tr translator) text(c query.Clause) (bq.Query, error) {
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return nil, errNoMatch
	}
	fz := c.Fuzzy()

	var parts []bq.Query
	for _, p := range c.Paths() {
		ft, err := tr.fieldType(p)
		if err != nil {
			return nil, err
		}
		switch ft {
		case field.Text:
			m := bleve.NewMatchQuery(text)
			m.SetField(p)
			if fz != nil && fz.MaxEdits > 0 {
				m.SetFuzziness(min(fz.MaxEdits, bleveFuzzyCeiling))
				m.SetPrefix(fz.PrefixLength)
			}
			parts = append(parts, m)
		case field.Tag:
			t := bleve.NewTermQuery(text)
			t.SetField(p)
			parts = append(parts, t)
		}
	}

	switch len(parts) {
	case 0:
		return nil, errNoMatch
	case 1:
		return parts[0], nil
	default:
		return bleve.NewDisjunctionQuery(parts...), nil
	}
}

// autocomplete requires every term to prefix-match or fuzzily match.
func (tr translator) autocomplete(c query.Clause) (bq.Query, error) {
	p := c.Path()
	ft, err := tr.fieldType(p)
	if err != nil {
		return nil, err
	}
	if ft != field.Text {
		return nil, fmt.Errorf("autocomplete on non-text field %q", p)
	}

	terms := tokenize(c.Text())
	if len(terms) == 0 {
		return nil, errNoMatch
	}
	fz := c.Fuzzy()

	groups := make([]bq.Query, 0, len(terms))
	for _, t := range terms {
		var alts []bq.Query
		if len([]rune(t)) >= 2 {
			pq := bleve.NewPrefixQuery(t)
			pq.SetField(p)
			alts = append(alts, pq)
		}
		if fz != nil && fz.MaxEdits > 0 {
			fq := bleve.NewFuzzyQuery(t)
			fq.SetField(p)
			fq.SetFuzziness(min(fz.MaxEdits, bleveFuzzyCeiling))
			fq.SetPrefix(fz.PrefixLength)
			alts = append(alts, fq)
		} else {
			tq := bleve.NewTermQuery(t)
			tq.SetField(p)
			alts = append(alts, tq)
		}
		groups = append(groups, bleve.NewDisjunctionQuery(alts...))
	}
	if len(groups) == 1 {
		return groups[0], nil
	}
	return bleve.NewConjunctionQuery(groups...), nil
}

func (tr translator) rangeClause(c query.Clause) (bq.Query, error) {
	p := c.Path()
	ft, err := tr.fieldType(p)
	if err != nil {
		return nil, err
	}
	if ft != field.Numeric && ft != field.Date {
		return nil, fmt.Errorf("range on non-numeric field %q", p)
	}
	return numericRange(p, c.Min(), c.Max()), nil
}

func (tr translator) equals(c query.Clause) (bq.Query, error) {
	p := c.Path()
	ft, err := tr.fieldType(p)
	if err != nil {
		return nil, err
	}
	v := c.Value()

	switch ft {
	case field.Tag:
		term := missingTag
		if v != nil {
			term = fmt.Sprint(v)
		}
		t := bleve.NewTermQuery(term)
		t.SetField(p)
		return t, nil
	case field.Numeric, field.Date:
		if v == nil {
			return nil, fmt.Errorf("unset match is only supported on tag fields, got %q", p)
		}
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", p, err)
		}
		return numericRange(p, &f, &f), nil
	default:
		if v == nil {
			return nil, fmt.Errorf("unset match is only supported on tag fields, got %q", p)
		}
		m := bleve.NewMatchPhraseQuery(fmt.Sprint(v))
		m.SetField(p)
		return m, nil
	}
}

func (tr translator) in(c query.Clause) (bq.Query, error) {
	p := c.Path()
	ft, err := tr.fieldType(p)
	if err != nil {
		return nil, err
	}

	values := c.Values()
	parts := make([]bq.Query, 0, len(values))
	for _, v := range values {
		switch ft {
		case field.Tag:
			t := bleve.NewTermQuery(v)
			t.SetField(p)
			parts = append(parts, t)
		case field.Numeric, field.Date:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", p, err)
			}
			parts = append(parts, numericRange(p, &f, &f))
		default:
			m := bleve.NewMatchPhraseQuery(v)
			m.SetField(p)
			parts = append(parts, m)
		}
	}
	if len(parts) == 0 {
		return bleve.NewMatchNoneQuery(), nil
	}
	return bleve.NewDisjunctionQuery(parts...), nil
}

// compound maps must and filter onto bleve must clauses. A should list
// without must clauses gets an explicit minimum of one. A must or filter
// child that matches nothing, or a required should list left empty, makes
// the whole compound match nothing.
func (tr translator) compound(c query.Clause) (bq.Query, error) {
	b := bleve.NewBooleanQuery()
	positive := 0

	for _, sub := range append(c.Must(), c.Filter()...) {
		q, err := tr.clause(sub)
		if err != nil {
			return nil, err
		}
		b.AddMust(q)
		positive++
	}

	should := 0
	for _, sub := range c.Should() {
		if sub.Unsatisfiable() {
			continue
		}
		q, err := tr.clause(sub)
		if errors.Is(err, errNoMatch) {
			continue
		}
		if err != nil {
			return nil, err
		}
		b.AddShould(q)
		should++
	}
	if c.ShouldRequired() && should == 0 {
		return nil, errNoMatch
	}
	if should > 0 && c.ShouldRequired() {
		b.SetMinShould(1)
		positive++
	}

	for _, sub := range c.MustNot() {
		q, err := tr.clause(sub)
		if errors.Is(err, errNoMatch) {
			continue
		}
		if err != nil {
			return nil, err
		}
		b.AddMustNot(q)
	}

	if positive == 0 {
		b.AddMust(bleve.NewMatchAllQuery())
	}
	return b, nil
}

func numericRange(path string, lo, hi *float64) bq.Query {
	incl := true
	q := bleve.NewNumericRangeInclusiveQuery(lo, hi, &incl, &incl)
	q.SetField(path)
	return q
}

// tokenize lowercases and splits on anything that is not a letter or digit,
// matching the unicode tokenizer closely enough for prefix terms.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}
