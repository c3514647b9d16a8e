package facet

import (
	"context"
	"time"

	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	domfacet "github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
)

// Executor computes facet buckets for a scoped clause.
type Executor interface {
	Facets(
		ctx context.Context, desc *domcol.Descriptor, c query.Clause, specs []domfacet.Spec, now time.Time,
	) (map[string][]domfacet.Bucket, error)
}
