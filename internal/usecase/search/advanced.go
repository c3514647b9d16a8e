package search

import (
	"context"
	"fmt"

	"github.com/ravi-m-fleetenable/global-search/internal/domain"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/access"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/request"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
)

// Advanced runs a structured per-field search on one collection.
func (s *Service) Advanced(ctx context.Context, c caller.Context, req *request.Advanced) (*result.Advanced, error) {
	desc, ok := s.reg.Get(req.Collection())
	if !ok {
		return nil, domain.NewUnknownCollection(req.Collection())
	}
	if !access.CanSearch(c.Role(), desc.Name()) {
		return nil, domain.NewForbidden(desc.Name())
	}

	clause, err := s.advancedClause(c, desc, req.Criteria())
	if err != nil {
		return nil, err
	}

	page, err := s.exec.Search(ctx, desc, query.Plan{Clause: clause, Limit: req.Limit()})
	if err != nil {
		return nil, fmt.Errorf("advanced search %s: %w", desc.Name(), err)
	}

	formatted := formatPage(desc, page, false)
	return &result.Advanced{
		Success:    true,
		Collection: desc.Name(),
		Count:      len(formatted.Items),
		Results:    formatted.Items,
	}, nil
}

// advancedClause maps criteria onto a compound: lists and ranges are required,
// free text only ranks unless it is the sole criterion kind.
func (s *Service) advancedClause(
	c caller.Context, desc *domcol.Descriptor, criteria []request.Criterion,
) (query.Clause, error) {
	var must, should []query.Clause
	for _, cr := range criteria {
		if _, ok := desc.Field(cr.Field); !ok {
			return query.Clause{}, fmt.Errorf("%w: %s has no indexed field %q",
				domain.ErrValidation, desc.Name(), cr.Field)
		}
		switch cr.Kind {
		case request.CriterionList:
			must = append(must, query.In(cr.Field, cr.Values))
		case request.CriterionRange:
			must = append(must, query.Range(cr.Field, cr.Min, cr.Max))
		case request.CriterionText:
			b := query.NewBuilder(cr.Text, s.fuzzy(nil))
			should = append(should, b.Text([]string{cr.Field}, true))
		}
	}
	if len(must) == 0 && len(should) == 0 {
		must = []query.Clause{query.All()}
	}
	return query.Compound(must, should, nil, access.MandatoryClauses(c, desc.Name())), nil
}
