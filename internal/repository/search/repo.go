package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ravi-m-fleetenable/global-search/internal/db"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/collection/field"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
	"github.com/ravi-m-fleetenable/global-search/internal/repository/keyspace"
)

// docField is the RETURN name of the whole JSON document.
const docField = "$"

// Highlight markers wrapped around matched terms.
const (
	HighlightOpen  = "<em>"
	HighlightClose = "</em>"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	AggregateCount(ctx context.Context, q *db.GroupCountQuery) ([]db.GroupCount, error)
}

// Repo executes query trees against RediSearch indexes.
type Repo struct {
	store store
	keys  keyspace.Keyspace
}

// New creates a search repository.
func New(s store, keys keyspace.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// Search runs one page of plan against the collection index.
func (r *Repo) Search(ctx context.Context, desc *domcol.Descriptor, plan query.Plan) (*result.Page, error) {
	if plan.Clause.Unsatisfiable() || plan.Limit <= 0 {
		return &result.Page{}, nil
	}

	q, err := Compile(desc, plan.Clause)
	if errors.Is(err, ErrNoMatch) {
		return &result.Page{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", desc.Name(), err)
	}

	sq := &db.SearchQuery{
		IndexName:    r.keys.Index(desc),
		Query:        q,
		Offset:       plan.Offset,
		Limit:        plan.Limit,
		ReturnFields: []string{docField},
	}
	var hl []string
	if plan.Highlight != nil {
		hl = highlightable(desc, plan.Highlight.Paths)
		if len(hl) > 0 {
			sq.ReturnFields = append(sq.ReturnFields, hl...)
			sq.HighlightFields = hl
			sq.HighlightTags = [2]string{HighlightOpen, HighlightClose}
		}
	}

	sr, err := r.store.Search(ctx, sq)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", desc.Name(), err)
	}

	return r.parseHits(desc, sr, plan.Highlight != nil, hl)
}

// Count returns the number of records matching c.
func (r *Repo) Count(ctx context.Context, desc *domcol.Descriptor, c query.Clause) (int, error) {
	if c.Unsatisfiable() {
		return 0, nil
	}
	q, err := Compile(desc, c)
	if errors.Is(err, ErrNoMatch) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("compile %s: %w", desc.Name(), err)
	}
	n, err := r.store.SearchCount(ctx, r.keys.Index(desc), q)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", desc.Name(), err)
	}
	return n, nil
}

// Facets computes the bucket counts of specs over the records matching c.
// Result keys are the facet names.
func (r *Repo) Facets(
	ctx context.Context, desc *domcol.Descriptor, c query.Clause, specs []facet.Spec, now time.Time,
) (map[string][]facet.Bucket, error) {
	out := make(map[string][]facet.Bucket, len(specs))
	if len(specs) == 0 {
		return out, nil
	}
	q, err := Compile(desc, c)
	if c.Unsatisfiable() || errors.Is(err, ErrNoMatch) {
		for _, s := range specs {
			out[s.Name] = emptyBuckets(s, now)
		}
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", desc.Name(), err)
	}
	index := r.keys.Index(desc)

	results := make([][]facet.Bucket, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range specs {
		g.Go(func() error {
			var (
				b   []facet.Bucket
				err error
			)
			switch s.Type {
			case facet.Date:
				b, err = r.dateFacet(gctx, index, q, s, now)
			default:
				b, err = r.stringFacet(gctx, index, q, s)
			}
			if err != nil {
				return fmt.Errorf("facet %s.%s: %w", desc.Name(), s.Name, err)
			}
			results[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, s := range specs {
		out[s.Name] = results[i]
	}
	return out, nil
}

func (r *Repo) stringFacet(ctx context.Context, index, q string, s facet.Spec) ([]facet.Bucket, error) {
	groups, err := r.store.AggregateCount(ctx, &db.GroupCountQuery{
		IndexName: index,
		Query:     q,
		Field:     s.Path,
		Max:       s.NumBuckets,
	})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		counts[g.Value] += g.Count
	}
	return facet.TopN(counts, s.NumBuckets), nil
}

func (r *Repo) dateFacet(ctx context.Context, index, q string, s facet.Spec, now time.Time) ([]facet.Bucket, error) {
	bounds := facet.Boundaries(now)

	total, err := r.store.SearchCount(ctx, index, q)
	if err != nil {
		return nil, err
	}

	base := q
	if base == matchAll {
		base = ""
	} else {
		base = group(base) + " "
	}

	counts := make([]int, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		bq := base + halfOpenRange(s.Path, float64(bounds[i].Unix()), float64(bounds[i+1].Unix()))
		n, err := r.store.SearchCount(ctx, index, bq)
		if err != nil {
			return nil, err
		}
		counts[i] = n
	}

	return facet.DateBuckets(bounds, counts, total), nil
}

func emptyBuckets(s facet.Spec, now time.Time) []facet.Bucket {
	if s.Type != facet.Date {
		return []facet.Bucket{}
	}
	bounds := facet.Boundaries(now)
	return facet.DateBuckets(bounds, make([]int, len(bounds)-1), 0)
}

// parseHits decodes the returned JSON documents and highlighted fields.
// Hits with equal score are ordered by id.
func (r *Repo) parseHits(
	desc *domcol.Descriptor, sr *db.SearchResult, withHighlights bool, hlFields []string,
) (*result.Page, error) {
	if sr == nil {
		return &result.Page{}, nil
	}

	prefix := r.keys.DocPrefix(desc)
	hits := make([]result.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		doc := map[string]any{}
		if raw, ok := e.Fields[docField]; ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), &doc); err != nil {
				return nil, fmt.Errorf("decode %s: %w", e.Key, err)
			}
		}

		id, _ := doc[domcol.IDField].(string)
		if id == "" {
			id = strings.TrimPrefix(e.Key, prefix)
		}

		h := result.Hit{ID: id, Score: e.Score, Fields: doc}
		if withHighlights {
			h.Highlights = map[string]string{}
			for _, f := range hlFields {
				if v := e.Fields[f]; strings.Contains(v, HighlightOpen) {
					h.Highlights[f] = v
				}
			}
		}
		hits = append(hits, h)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	return &result.Page{Total: sr.Total, Hits: hits}, nil
}

// highlightable keeps the paths RediSearch can highlight (TEXT fields).
func highlightable(desc *domcol.Descriptor, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if ft, ok := desc.FieldType(p); ok && ft == field.Text {
			out = append(out, p)
		}
	}
	return out
}
