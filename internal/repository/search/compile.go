package search

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/collection/field"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
)

// matchAll is the RediSearch wildcard query.
const matchAll = "*"

// redisFuzzyCeiling is the largest Levenshtein distance a %term% accepts.
const redisFuzzyCeiling = 3

// ErrNoMatch reports a tree that can match no record, e.g. a text query
// without a single indexable term. Executors answer it with an empty result.
var ErrNoMatch = errors.New("query matches no record")

// compiler turns a query tree into DIALECT 2 query syntax for one collection.
type compiler struct {
	desc *domcol.Descriptor
}

// Compile renders c against desc. It returns ErrNoMatch when no record can
// match c.
func Compile(desc *domcol.Descriptor, c query.Clause) (string, error) {
	q, err := compiler{desc: desc}.clause(c)
	if err != nil {
		return "", err
	}
	if q == "" {
		return matchAll, nil
	}
	return q, nil
}

func (cp compiler) clause(c query.Clause) (string, error) {
	var (
		q   string
		err error
	)
	switch c.Kind() {
	case query.KindText:
		q, err = cp.text(c)
	case query.KindAutocomplete:
		q, err = cp.autocomplete(c)
	case query.KindRange:
		q, err = cp.rangeClause(c)
	case query.KindEquals:
		q, err = cp.equals(c)
	case query.KindIn:
		q, err = cp.in(c)
	case query.KindCompound:
		q, err = cp.compound(c)
	case query.KindAll:
		return matchAll, nil
	case query.KindNone:
		return "", ErrNoMatch
	default:
		return "", fmt.Errorf("unsupported clause kind %s", c.Kind())
	}
	if err != nil {
		return "", err
	}
	return boost(q, c.Boost()), nil
}

func (cp compiler) fieldType(path string) (field.Type, error) {
	ft, ok := cp.desc.FieldType(path)
	if !ok {
		return "", fmt.Errorf("collection %s: unknown field %q", cp.desc.Name(), path)
	}
	return ft, nil
}

// text matches analyzed fields term-by-term (any term) and keyword fields
// by the whole query text. Numeric and date paths never match text.
func (cp compiler) text(c query.Clause) (string, error) {
	var textPaths, tagPaths []string
	for _, p := range c.Paths() {
		ft, err := cp.fieldType(p)
		if err != nil {
			return "", err
		}
		switch ft {
		case field.Text:
			textPaths = append(textPaths, p)
		case field.Tag:
			tagPaths = append(tagPaths, p)
		}
	}

	var parts []string
	if terms := tokenize(c.Text()); len(terms) > 0 && len(textPaths) > 0 {
		alts := make([]string, len(terms))
		for i, t := range terms {
			alts[i] = fuzzyTerm(t, c.Fuzzy())
		}
		parts = append(parts, fmt.Sprintf("@%s:(%s)", strings.Join(textPaths, "|"), strings.Join(alts, "|")))
	}
	if v := strings.TrimSpace(c.Text()); v != "" {
		for _, p := range tagPaths {
			parts = append(parts, buildTagFilter(p, v))
		}
	}

	switch len(parts) {
	case 0:
		return "", ErrNoMatch
	case 1:
		return parts[0], nil
	default:
		return "(" + strings.Join(parts, "|") + ")", nil
	}
}

// autocomplete requires every query term to prefix-match (or fuzzily
// match) some token of the path.
func (cp compiler) autocomplete(c query.Clause) (string, error) {
	p := c.Path()
	ft, err := cp.fieldType(p)
	if err != nil {
		return "", err
	}
	if ft != field.Text {
		return "", fmt.Errorf("autocomplete on non-text field %q", p)
	}

	terms := tokenize(c.Text())
	if len(terms) == 0 {
		return "", ErrNoMatch
	}
	groups := make([]string, len(terms))
	for i, t := range terms {
		alts := make([]string, 0, 2)
		if len([]rune(t)) >= 2 {
			alts = append(alts, t+"*")
		}
		alts = append(alts, fuzzyTerm(t, c.Fuzzy()))
		groups[i] = "(" + strings.Join(alts, "|") + ")"
	}
	return fmt.Sprintf("@%s:(%s)", p, strings.Join(groups, " ")), nil
}

func (cp compiler) rangeClause(c query.Clause) (string, error) {
	p := c.Path()
	ft, err := cp.fieldType(p)
	if err != nil {
		return "", err
	}
	if ft != field.Numeric && ft != field.Date {
		return "", fmt.Errorf("range on non-numeric field %q", p)
	}
	return buildNumericFilter(p, c.Min(), c.Max()), nil
}

func (cp compiler) equals(c query.Clause) (string, error) {
	p := c.Path()
	ft, err := cp.fieldType(p)
	if err != nil {
		return "", err
	}
	v := c.Value()
	if v == nil {
		return fmt.Sprintf("ismissing(@%s)", p), nil
	}

	switch ft {
	case field.Numeric, field.Date:
		f, err := toFloat(v)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", p, err)
		}
		return buildNumericFilter(p, &f, &f), nil
	case field.Tag:
		return buildTagFilter(p, fmt.Sprint(v)), nil
	default:
		return fmt.Sprintf("@%s:\"%s\"", p, escapeQuery(fmt.Sprint(v))), nil
	}
}

func (cp compiler) in(c query.Clause) (string, error) {
	p := c.Path()
	ft, err := cp.fieldType(p)
	if err != nil {
		return "", err
	}
	values := c.Values()

	switch ft {
	case field.Tag:
		escaped := make([]string, len(values))
		for i, v := range values {
			escaped[i] = tagEscaper.Replace(v)
		}
		return fmt.Sprintf("@%s:{%s}", p, strings.Join(escaped, "|")), nil
	case field.Numeric, field.Date:
		parts := make([]string, 0, len(values))
		for _, v := range values {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return "", fmt.Errorf("field %q: %w", p, err)
			}
			parts = append(parts, buildNumericFilter(p, &f, &f))
		}
		return "(" + strings.Join(parts, "|") + ")", nil
	default:
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = "\"" + escapeQuery(v) + "\""
		}
		return fmt.Sprintf("@%s:(%s)", p, strings.Join(quoted, "|")), nil
	}
}

// compound ANDs must and filter, turns should into a required disjunction
// when there is no must clause (optional ~terms otherwise) and negates mustNot.
// A must or filter child that matches nothing, or a required should list
// whose children all match nothing, makes the compound match nothing.
func (cp compiler) compound(c query.Clause) (string, error) {
	var parts []string

	for _, sub := range append(c.Must(), c.Filter()...) {
		q, err := cp.clause(sub)
		if err != nil {
			return "", err
		}
		if q == matchAll {
			continue
		}
		parts = append(parts, group(q))
	}

	should := make([]string, 0, len(c.Should()))
	for _, sub := range c.Should() {
		if sub.Unsatisfiable() {
			continue
		}
		q, err := cp.clause(sub)
		if errors.Is(err, ErrNoMatch) {
			continue
		}
		if err != nil {
			return "", err
		}
		should = append(should, q)
	}
	if c.ShouldRequired() && len(should) == 0 {
		return "", ErrNoMatch
	}
	if len(should) > 0 {
		if c.ShouldRequired() {
			if !slices.Contains(should, matchAll) {
				parts = append(parts, "("+strings.Join(should, "|")+")")
			}
		} else if len(parts) > 0 {
			// optional terms only rank; with no positive part left they are dropped
			for _, s := range should {
				if s != matchAll {
					parts = append(parts, "~"+group(s))
				}
			}
		}
	}

	for _, sub := range c.MustNot() {
		q, err := cp.clause(sub)
		if errors.Is(err, ErrNoMatch) {
			continue
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, "-"+group(q))
	}

	if len(parts) == 0 {
		return matchAll, nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " ") + ")", nil
}

func boost(q string, b float64) string {
	if b <= 0 || b == 1 || q == matchAll {
		return q
	}
	return fmt.Sprintf("(%s) => { $weight: %s; }", q, strconv.FormatFloat(b, 'f', -1, 64))
}

func group(q string) string {
	if strings.HasPrefix(q, "(") && strings.HasSuffix(q, ")") {
		return q
	}
	return "(" + q + ")"
}

// fuzzyTerm wraps t in one % per allowed edit. Terms no longer than the
// edit distance stay exact.
func fuzzyTerm(t string, f *query.Fuzzy) string {
	if f == nil || f.MaxEdits <= 0 {
		return t
	}
	edits := min(f.MaxEdits, redisFuzzyCeiling)
	if len([]rune(t)) <= edits {
		return t
	}
	pad := strings.Repeat("%", edits)
	return pad + t + pad
}

// tokenize splits s the way the default RediSearch tokenizer does and lowercases.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), isSeparator)
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	return strings.ContainsRune(",.<>{}[]\"':;!@#$%^&*()-+=~|/\\?`", r)
}

func buildTagFilter(key, value string) string {
	return fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(value))
}

func buildNumericFilter(key string, lo, hi *float64) string {
	minBound, maxBound := "-inf", "+inf"
	if lo != nil {
		minBound = strconv.FormatFloat(*lo, 'f', -1, 64)
	}
	if hi != nil {
		maxBound = strconv.FormatFloat(*hi, 'f', -1, 64)
	}
	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

// halfOpenRange renders [lo, hi) for date bucket counts.
func halfOpenRange(key string, lo, hi float64) string {
	return fmt.Sprintf("@%s:[%s (%s]", key,
		strconv.FormatFloat(lo, 'f', -1, 64), strconv.FormatFloat(hi, 'f', -1, 64))
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

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
