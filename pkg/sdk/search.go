package globalsearch

import (
	"context"
	"time"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/request"
)

// Search runs one federated search on behalf of who.
func (c *Client) Search(ctx context.Context, who Caller, p SearchParams) (env *Envelope, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", who.Role(), start, err) }()

	dr, err := request.ParseDateRange(p.From, p.To)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}
	req, err := request.New(
		p.Query, p.Type, p.Page, p.Limit,
		request.Options{
			IncludeHighlights: !p.NoHighlights,
			IncludeFacets:     p.IncludeFacets,
			IncludeEmpty:      p.IncludeEmpty,
		},
		request.Filters{Status: p.Status, DateRange: dr},
		p.Fuzzy,
		c.limits,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.app.Search.Search(ctx, who, &req) //nolint:wrapcheck // domain error
}

// Suggest returns autocomplete suggestions for a prefix in one collection.
// A zero limit uses the client default.
func (c *Client) Suggest(ctx context.Context, who Caller, prefix, collection string, limit int) (s *Suggestions, err error) {
	start := time.Now()
	defer func() { c.obs.observe("suggest", who.Role(), start, err) }()

	req, err := request.NewSuggest(prefix, collection, limit, 0, c.suggest.MaxResults, c.suggest.MinChars)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.app.Autocomplete.Suggest(ctx, who, &req) //nolint:wrapcheck // domain error
}

// Facets returns the facet buckets of one collection over the records who may see.
func (c *Client) Facets(ctx context.Context, who Caller, collection string) (f map[string][]FacetBucket, err error) {
	start := time.Now()
	defer func() { c.obs.observe("facets", who.Role(), start, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.app.Facets.Build(ctx, who, collection) //nolint:wrapcheck // domain error
}

// Advanced runs a structured criteria query against one collection.
// Nil criteria match every visible record.
func (c *Client) Advanced(
	ctx context.Context, who Caller, collection string, limit int, criteria map[string]any,
) (res *AdvancedResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("advanced", who.Role(), start, err) }()

	req, err := request.NewAdvanced(collection, limit, criteria, c.limits)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.app.Search.Advanced(ctx, who, &req) //nolint:wrapcheck // domain error
}
