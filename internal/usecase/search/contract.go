package search

import (
	"context"
	"time"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
)

// Executor runs query trees against a search store.
// Implemented by repository/search (RediSearch) and repository/embedded (bleve).
type Executor interface {
	Search(ctx context.Context, desc *domcol.Descriptor, plan query.Plan) (*result.Page, error)
	Count(ctx context.Context, desc *domcol.Descriptor, c query.Clause) (int, error)
	Facets(
		ctx context.Context, desc *domcol.Descriptor, c query.Clause, specs []facet.Spec, now time.Time,
	) (map[string][]facet.Bucket, error)
}

// FacetPlanner computes the role-scoped facets of one collection.
// Failures degrade to an empty map.
type FacetPlanner interface {
	ForCollection(ctx context.Context, c caller.Context, desc *domcol.Descriptor) map[string][]facet.Bucket
}
