package search

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ravi-m-fleetenable/global-search/internal/domain"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/access"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/request"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
	"github.com/ravi-m-fleetenable/global-search/internal/logger"
	"github.com/ravi-m-fleetenable/global-search/internal/metrics"
)

// Clause weights of the federated query.
const (
	AutocompleteBoost = 2.0
	TextBoost         = 1.0
)

// Config holds the orchestrator settings. Immutable after construction.
type Config struct {
	Fuzzy           query.Fuzzy
	MaxEditsCeiling int
}

// Service fans one query out across the collections a caller may search.
type Service struct {
	exec   Executor
	reg    *domcol.Registry
	facets FacetPlanner
	cfg    Config
	now    func() time.Time
}

// New creates a search service.
func New(exec Executor, reg *domcol.Registry, facets FacetPlanner, cfg Config) *Service {
	return &Service{exec: exec, reg: reg, facets: facets, cfg: cfg, now: time.Now}
}

// branch is one collection's share of the envelope.
type branch struct {
	desc   *domcol.Descriptor
	res    result.CollectionResult
	count  int
	facets map[string][]facet.Bucket
}

// Search executes a federated search. Per-collection failures degrade that
// collection to zero; only request-level problems are returned as errors.
func (s *Service) Search(ctx context.Context, c caller.Context, req *request.Search) (*result.Envelope, error) {
	start := s.now()

	if req.Query() == "" {
		return result.Empty("", req.Page(), req.Limit()), nil
	}

	targets, err := s.targets(c, req)
	if err != nil {
		return nil, err
	}

	b := query.NewBuilder(req.Query(), s.fuzzy(req.Fuzzy()))

	branches := make([]branch, len(targets))
	var g errgroup.Group
	for i, desc := range targets {
		g.Go(func() error {
			branches[i] = s.runBranch(ctx, c, desc, b, req)
			return nil
		})
	}
	_ = g.Wait()

	env := &result.Envelope{
		Success: true,
		Query:   req.Query(),
		Results: make(map[string]result.CollectionResult, len(branches)),
		Facets:  map[string][]facet.Bucket{},
	}
	for _, br := range branches {
		env.TotalResults += br.res.Count
		if br.res.Count > 0 || req.Options().IncludeEmpty {
			env.Results[br.desc.Name()] = br.res
		}
	}

	if req.Options().IncludeFacets {
		typeCounts := make([]facet.Bucket, 0, len(branches))
		for _, br := range branches {
			typeCounts = append(typeCounts, facet.Bucket{Value: br.desc.Name(), Count: br.count})
		}
		env.Facets[facet.CollectionType] = typeCounts
		for _, br := range branches {
			for name, buckets := range br.facets {
				env.Facets[name] = buckets
			}
		}
	}

	env.Pagination = result.NewPagination(req.Page(), req.Limit(), env.TotalResults)
	env.SearchTimeMs = elapsedMs(start, s.now())
	return env, nil
}

// targets resolves searchType into the ordered list of collections to query.
func (s *Service) targets(c caller.Context, req *request.Search) ([]*domcol.Descriptor, error) {
	if req.IsAll() {
		return access.Searchable(c.Role(), s.reg), nil
	}
	desc, ok := s.reg.Get(req.SearchType())
	if !ok {
		return nil, domain.NewUnknownCollection(req.SearchType())
	}
	if !access.CanSearch(c.Role(), desc.Name()) {
		return nil, domain.NewForbidden(desc.Name())
	}
	return []*domcol.Descriptor{desc}, nil
}

func (s *Service) fuzzy(o *query.FuzzyOverride) query.Fuzzy {
	return s.cfg.Fuzzy.Override(o).Clamp(s.cfg.MaxEditsCeiling)
}

func (s *Service) runBranch(
	ctx context.Context, c caller.Context, desc *domcol.Descriptor, b query.Builder, req *request.Search,
) branch {
	out := branch{desc: desc, res: result.CollectionResult{Items: []result.Item{}}}

	clause := CollectionClause(c, desc, b, req.Filters())
	plan := query.Plan{Clause: clause, Offset: req.Offset(), Limit: req.Limit()}
	if req.Options().IncludeHighlights {
		plan.Highlight = query.Highlight(desc.Searchable())
	}

	var g errgroup.Group
	g.Go(func() error {
		page, err := s.exec.Search(ctx, desc, plan)
		if err != nil {
			branchFailed(ctx, desc, "search", err)
			return nil
		}
		out.res = formatPage(desc, page, plan.Highlight != nil)
		return nil
	})

	if req.Options().IncludeFacets {
		g.Go(func() error {
			n, err := s.exec.Count(ctx, desc, clause)
			if err != nil {
				branchFailed(ctx, desc, "count", err)
				return nil
			}
			out.count = n
			return nil
		})
		if s.facets != nil {
			g.Go(func() error {
				out.facets = s.facets.ForCollection(ctx, c, desc)
				return nil
			})
		}
	}

	_ = g.Wait()
	return out
}

// CollectionClause builds the scoped query of one collection: autocomplete
// with text fallback over every autocomplete field, fuzzy text over the
// remaining searchable fields, then role, status and date filters.
func CollectionClause(c caller.Context, desc *domcol.Descriptor, b query.Builder, f request.Filters) query.Clause {
	var should []query.Clause
	covered := make(map[string]bool)
	for _, ac := range desc.Autocomplete() {
		should = append(should, b.AutocompleteWithFallback(ac.Path, ac.Field).WithBoost(AutocompleteBoost))
		covered[ac.Field] = true
	}
	for _, p := range desc.Searchable() {
		if covered[p] {
			continue
		}
		should = append(should, b.Text([]string{p}, true).WithBoost(TextBoost))
	}

	filters := access.MandatoryClauses(c, desc.Name())
	if len(f.Status) > 0 && desc.StatusField() != "" {
		filters = append(filters, query.In(desc.StatusField(), f.Status))
	}
	if dr := f.DateRange; dr != nil {
		var lo, hi *float64
		if dr.From != nil {
			lo = query.TimeBound(*dr.From)
		}
		if dr.To != nil {
			hi = query.TimeBound(*dr.To)
		}
		filters = append(filters, query.Range(desc.DateField(), lo, hi))
	}

	return query.Compound([]query.Clause{query.Compound(nil, should, nil, nil)}, nil, nil, filters)
}

// formatPage projects hits onto the display fields of desc.
func formatPage(desc *domcol.Descriptor, page *result.Page, withHighlights bool) result.CollectionResult {
	if page == nil {
		return result.CollectionResult{Items: []result.Item{}}
	}
	items := make([]result.Item, 0, len(page.Hits))
	for _, h := range page.Hits {
		items = append(items, formatHit(desc, h, withHighlights))
	}
	return result.CollectionResult{Count: page.Total, Items: items}
}

func formatHit(desc *domcol.Descriptor, h result.Hit, withHighlights bool) result.Item {
	var hl map[string]string
	if withHighlights {
		hl = h.Highlights
		if hl == nil {
			hl = map[string]string{}
		}
	}
	return result.NewItem(h.ID, math.Max(0, h.Score), desc.Project(h.Fields), hl)
}

func branchFailed(ctx context.Context, desc *domcol.Descriptor, op string, err error) {
	metrics.SearchBranchErrorsTotal.WithLabelValues(desc.Name()).Inc()
	logger.FromContext(ctx).Warn("Collection search failed",
		zap.String("collection", desc.Name()),
		zap.String("op", op),
		zap.Error(err),
	)
}

func elapsedMs(start, end time.Time) float64 {
	return math.Round(float64(end.Sub(start).Microseconds())/10) / 100
}
