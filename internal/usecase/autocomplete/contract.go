package autocomplete

import (
	"context"

	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
)

// Executor runs the suggestion query.
type Executor interface {
	Search(ctx context.Context, desc *domcol.Descriptor, plan query.Plan) (*result.Page, error)
}

// Cache stores formatted suggestion lists. Implementations swallow their own
// failures: a broken cache only costs a store round trip.
type Cache interface {
	Get(ctx context.Context, key string) ([]result.Suggestion, bool)
	Put(ctx context.Context, key string, s []result.Suggestion)
}
