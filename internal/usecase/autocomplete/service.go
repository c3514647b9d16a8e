package autocomplete

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ravi-m-fleetenable/global-search/internal/domain"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/access"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/request"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
	"github.com/ravi-m-fleetenable/global-search/internal/fuzzy"
	"github.com/ravi-m-fleetenable/global-search/internal/logger"
)

// CachePrefix starts every suggestion cache key.
const CachePrefix = "autocomplete"

// Config holds the autocomplete settings.
type Config struct {
	Fuzzy           query.Fuzzy
	MaxEditsCeiling int
	// Rerank reorders store hits by edit-distance similarity to the query.
	Rerank bool
}

// Service produces prefix and fuzzy suggestions for one collection.
type Service struct {
	exec  Executor
	reg   *domcol.Registry
	cache Cache
	cfg   Config
	now   func() time.Time
}

// New creates an autocomplete service. cache may be nil.
func New(exec Executor, reg *domcol.Registry, cache Cache, cfg Config) *Service {
	return &Service{exec: exec, reg: reg, cache: cache, cfg: cfg, now: time.Now}
}

// Suggest returns up to req.Limit() suggestions. Short queries, unauthorized
// callers and store failures all yield an empty list.
func (s *Service) Suggest(ctx context.Context, c caller.Context, req *request.Suggest) (*result.Suggestions, error) {
	start := s.now()

	desc, ok := s.reg.Get(req.Collection())
	if !ok {
		return nil, domain.NewUnknownCollection(req.Collection())
	}
	if req.TooShort() || !access.CanSearch(c.Role(), desc.Name()) {
		return result.NoSuggestions(req.Query()), nil
	}
	primary, ok := desc.PrimaryAutocomplete()
	if !ok {
		return result.NoSuggestions(req.Query()), nil
	}

	scope := access.MandatoryClauses(c, desc.Name())
	key := CacheKey(desc.Name(), string(c.Role()), req, scope)
	if s.cache != nil {
		if cached, hit := s.cache.Get(ctx, key); hit {
			return s.respond(req, cached, start), nil
		}
	}

	b := query.NewBuilder(req.Query(), s.cfg.Fuzzy.Clamp(s.cfg.MaxEditsCeiling))
	should := make([]query.Clause, 0, len(desc.Autocomplete()))
	for _, ac := range desc.Autocomplete() {
		should = append(should, b.Autocomplete(ac.Path, true))
	}
	clause := query.Scope(query.Compound(nil, should, nil, nil), scope)

	page, err := s.exec.Search(ctx, desc, query.Plan{Clause: clause, Limit: req.Limit()})
	if err != nil {
		logger.FromContext(ctx).Warn("Autocomplete search failed",
			zap.String("collection", desc.Name()),
			zap.Error(err),
		)
		return result.NoSuggestions(req.Query()), nil
	}

	suggestions := format(desc, primary.Field, page, req.Query())
	if s.cfg.Rerank {
		suggestions = rerank(req.Query(), suggestions)
	}

	if s.cache != nil {
		s.cache.Put(ctx, key, suggestions)
	}
	return s.respond(req, suggestions, start), nil
}

func (s *Service) respond(req *request.Suggest, suggestions []result.Suggestion, start time.Time) *result.Suggestions {
	return &result.Suggestions{
		Success:     true,
		Query:       req.Query(),
		Suggestions: suggestions,
		Count:       len(suggestions),
		QueryTimeMs: math.Round(float64(s.now().Sub(start).Microseconds())/10) / 100,
	}
}

func format(desc *domcol.Descriptor, textField string, page *result.Page, q string) []result.Suggestion {
	out := make([]result.Suggestion, 0)
	if page == nil {
		return out
	}
	for _, h := range page.Hits {
		score := math.Max(0, h.Score)
		out = append(out, result.Suggestion{
			Text:       suggestionText(h.Fields[textField], q),
			Type:       textField,
			Collection: desc.Name(),
			Score:      score,
			Metadata:   result.SuggestionMeta{ID: h.ID, Score: score},
		})
	}
	return out
}

// suggestionText renders a field value. For multi-valued fields the first
// element starting with the query wins.
func suggestionText(v any, q string) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		if len(t) == 0 {
			return ""
		}
		lq := strings.ToLower(q)
		for _, e := range t {
			if s := fmt.Sprint(e); strings.HasPrefix(strings.ToLower(s), lq) {
				return s
			}
		}
		return fmt.Sprint(t[0])
	case []string:
		return suggestionText(anySlice(t), q)
	default:
		return fmt.Sprint(t)
	}
}

func anySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// rerank orders suggestions by similarity of their text to q. Equal
// similarities keep the store order.
func rerank(q string, in []result.Suggestion) []result.Suggestion {
	texts := make([]string, len(in))
	for i, sg := range in {
		texts[i] = sg.Text
	}

	used := make([]bool, len(in))
	out := make([]result.Suggestion, 0, len(in))
	for _, cand := range fuzzy.FilterAndRank(q, texts, 0) {
		for i, sg := range in {
			if !used[i] && sg.Text == cand.Text {
				used[i] = true
				out = append(out, sg)
				break
			}
		}
	}
	return out
}

// CacheKey renders autocomplete:<collection>:<role>:<sha256(query|limit|min_chars|scope)>.
// The scope fingerprint separates callers of one role with different mandatory filters.
func CacheKey(collection, role string, req *request.Suggest, scope []query.Clause) string {
	h := sha256.Sum256([]byte(strings.Join([]string{
		req.Query(), strconv.Itoa(req.Limit()), strconv.Itoa(req.MinChars()), fingerprint(scope),
	}, "|")))
	return CachePrefix + ":" + collection + ":" + role + ":" + hex.EncodeToString(h[:])
}

func fingerprint(clauses []query.Clause) string {
	var sb strings.Builder
	for _, c := range clauses {
		writeClause(&sb, c)
	}
	return sb.String()
}

func writeClause(sb *strings.Builder, c query.Clause) {
	sb.WriteString(c.Kind().String())
	sb.WriteByte('(')
	sb.WriteString(strings.Join(c.Paths(), ","))
	if c.Kind() == query.KindEquals {
		fmt.Fprintf(sb, "=%v", c.Value())
	}
	if vs := c.Values(); len(vs) > 0 {
		sb.WriteString("=" + strings.Join(vs, ","))
	}
	for _, group := range [][]query.Clause{c.Must(), c.Should(), c.MustNot(), c.Filter()} {
		sb.WriteByte('[')
		for _, sub := range group {
			writeClause(sb, sub)
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(')')
}
