package embedded

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"

	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/collection/field"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
)

// bleve's html highlighter marks terms with <mark>; results use <em> like Redis.
var markReplacer = strings.NewReplacer("<mark>", "<em>", "</mark>", "</em>")

// sortOrder ranks by score, ties by id.
var sortOrder = []string{"-_score", "_id"}

// Search runs one page of plan against the collection index.
func (e *Engine) Search(ctx context.Context, desc *domcol.Descriptor, plan query.Plan) (*result.Page, error) {
	if plan.Clause.Unsatisfiable() || plan.Limit <= 0 {
		return &result.Page{}, nil
	}
	idx, err := e.index(desc.Name())
	if err != nil {
		return nil, err
	}
	q, err := translate(desc, plan.Clause)
	if err != nil {
		return nil, fmt.Errorf("translate %s: %w", desc.Name(), err)
	}

	req := bleve.NewSearchRequestOptions(q, plan.Limit, max(0, plan.Offset), false)
	req.SortBy(sortOrder)
	req.Fields = []string{sourceField}

	var hl []string
	if plan.Highlight != nil {
		hl = highlightable(desc, plan.Highlight.Paths)
		if len(hl) > 0 {
			req.Highlight = bleve.NewHighlight()
			for _, p := range hl {
				req.Highlight.AddField(p)
			}
		}
	}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", desc.Name(), err)
	}

	page := &result.Page{Total: int(res.Total), Hits: make([]result.Hit, 0, len(res.Hits))}
	for _, h := range res.Hits {
		hit, err := decodeHit(h, plan.Highlight, hl)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", desc.Name(), h.ID, err)
		}
		page.Hits = append(page.Hits, hit)
	}
	return page, nil
}

// Count returns the number of records matching c.
func (e *Engine) Count(ctx context.Context, desc *domcol.Descriptor, c query.Clause) (int, error) {
	if c.Unsatisfiable() {
		return 0, nil
	}
	idx, err := e.index(desc.Name())
	if err != nil {
		return 0, err
	}
	q, err := translate(desc, c)
	if err != nil {
		return 0, fmt.Errorf("translate %s: %w", desc.Name(), err)
	}

	res, err := idx.SearchInContext(ctx, bleve.NewSearchRequestOptions(q, 0, 0, false))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", desc.Name(), err)
	}
	return int(res.Total), nil
}

// Facets computes the bucket counts of specs over the records matching c
// in a single request. Result keys are the facet names.
func (e *Engine) Facets(
	ctx context.Context, desc *domcol.Descriptor, c query.Clause, specs []facet.Spec, now time.Time,
) (map[string][]facet.Bucket, error) {
	out := make(map[string][]facet.Bucket, len(specs))
	if len(specs) == 0 {
		return out, nil
	}

	bounds := facet.Boundaries(now)
	if c.Unsatisfiable() {
		for _, s := range specs {
			if s.Type == facet.Date {
				out[s.Name] = facet.DateBuckets(bounds, make([]int, len(bounds)-1), 0)
			} else {
				out[s.Name] = []facet.Bucket{}
			}
		}
		return out, nil
	}

	idx, err := e.index(desc.Name())
	if err != nil {
		return nil, err
	}
	q, err := translate(desc, c)
	if err != nil {
		return nil, fmt.Errorf("translate %s: %w", desc.Name(), err)
	}

	req := bleve.NewSearchRequestOptions(q, 0, 0, false)
	for _, s := range specs {
		switch s.Type {
		case facet.Date:
			fr := bleve.NewFacetRequest(s.Path, len(bounds))
			for i := 0; i+1 < len(bounds); i++ {
				lo, hi := float64(bounds[i].Unix()), float64(bounds[i+1].Unix())
				fr.AddNumericRange(facet.BucketLabel(bounds[i]), &lo, &hi)
			}
			req.AddFacet(s.Name, fr)
		default:
			// one extra slot for the missing-tag marker
			req.AddFacet(s.Name, bleve.NewFacetRequest(s.Path, s.NumBuckets+1))
		}
	}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("facets %s: %w", desc.Name(), err)
	}

	for _, s := range specs {
		fr := res.Facets[s.Name]
		if s.Type == facet.Date {
			out[s.Name] = dateBuckets(fr, bounds, int(res.Total))
			continue
		}
		counts := map[string]int{}
		if fr != nil && fr.Terms != nil {
			for _, t := range fr.Terms.Terms() {
				if t.Term != missingTag {
					counts[t.Term] = t.Count
				}
			}
		}
		out[s.Name] = facet.TopN(counts, s.NumBuckets)
	}
	return out, nil
}

func dateBuckets(fr *search.FacetResult, bounds []time.Time, total int) []facet.Bucket {
	byLabel := map[string]int{}
	if fr != nil {
		for _, r := range fr.NumericRanges {
			byLabel[r.Name] = r.Count
		}
	}
	counts := make([]int, len(bounds)-1)
	for i := range counts {
		counts[i] = byLabel[facet.BucketLabel(bounds[i])]
	}
	return facet.DateBuckets(bounds, counts, total)
}

// decodeHit rebuilds the stored document. A nil cfg means highlights were
// not requested.
func decodeHit(h *search.DocumentMatch, cfg *query.HighlightConfig, hlFields []string) (result.Hit, error) {
	doc := map[string]any{}
	if src, ok := h.Fields[sourceField].(string); ok && src != "" {
		if err := json.Unmarshal([]byte(src), &doc); err != nil {
			return result.Hit{}, err
		}
	}

	hit := result.Hit{ID: h.ID, Score: h.Score, Fields: doc}
	if cfg != nil {
		hit.Highlights = map[string]string{}
		for _, f := range hlFields {
			frags := h.Fragments[f]
			if len(frags) == 0 {
				continue
			}
			if cfg.MaxNumPassages > 0 && len(frags) > cfg.MaxNumPassages {
				frags = frags[:cfg.MaxNumPassages]
			}
			hit.Highlights[f] = markReplacer.Replace(strings.Join(frags, " "))
		}
	}
	return hit, nil
}

func highlightable(desc *domcol.Descriptor, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if ft, ok := desc.FieldType(p); ok && ft == field.Text {
			out = append(out, p)
		}
	}
	return out
}
