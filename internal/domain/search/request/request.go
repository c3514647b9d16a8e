package request

import (
	"fmt"
	"math"
	"strings"

	"github.com/ravi-m-fleetenable/global-search/internal/domain"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 20
	MaxLimit       = 100

	// SearchTypeAll targets every collection the caller may search.
	SearchTypeAll = "all"
)

// Limits bounds page sizes; zero values fall back to the package defaults.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
}

func (l Limits) normalize() Limits {
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = DefaultLimit
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = MaxLimit
	}
	if l.DefaultLimit > l.MaxLimit {
		l.DefaultLimit = l.MaxLimit
	}
	return l
}

// Clamp coerces limit into [1, max], using the default for non-positive values.
func (l Limits) Clamp(limit int) int {
	l = l.normalize()
	if limit <= 0 {
		return l.DefaultLimit
	}
	return min(limit, l.MaxLimit)
}

// Options toggles the optional parts of a federated search.
type Options struct {
	IncludeHighlights bool
	IncludeFacets     bool
	IncludeEmpty      bool
}

// Search is a validated federated search request.
type Search struct {
	query      string
	searchType string
	page       int
	limit      int
	options    Options
	filters    Filters
	fuzzy      *query.FuzzyOverride
}

// New validates and normalizes federated search parameters.
// Defaults: searchType=all, page=1, limit from limits. An empty query is valid.
func New(
	q, searchType string,
	page, limit int,
	opts Options,
	filters Filters,
	fuzzy *query.FuzzyOverride,
	limits Limits,
) (Search, error) {
	q = strings.TrimSpace(q)
	if len(q) > MaxQueryLength {
		return Search{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrValidation, MaxQueryLength)
	}
	searchType = strings.TrimSpace(searchType)
	if searchType == "" {
		searchType = SearchTypeAll
	}
	if page < 1 {
		page = 1
	}
	limit = limits.Clamp(limit)
	// page*limit must stay representable so Offset and Offset+Limit cannot wrap.
	if page > math.MaxInt/limit {
		return Search{}, fmt.Errorf("%w: page %d out of range for limit %d", domain.ErrValidation, page, limit)
	}
	if err := filters.validate(); err != nil {
		return Search{}, err
	}
	return Search{
		query:      q,
		searchType: searchType,
		page:       page,
		limit:      limit,
		options:    opts,
		filters:    filters,
		fuzzy:      fuzzy,
	}, nil
}

// Query returns the trimmed query text.
func (r *Search) Query() string { return r.query }

// SearchType returns "all" or a collection name.
func (r *Search) SearchType() string { return r.searchType }

// IsAll reports whether every accessible collection is targeted.
func (r *Search) IsAll() bool { return r.searchType == SearchTypeAll }

// Page returns the 1-based page number.
func (r *Search) Page() int { return r.page }

// Limit returns the page size.
func (r *Search) Limit() int { return r.limit }

// Offset returns the per-collection skip for the page.
func (r *Search) Offset() int { return (r.page - 1) * r.limit }

// Options returns the include flags.
func (r *Search) Options() Options { return r.options }

// Filters returns the structured filters.
func (r *Search) Filters() Filters { return r.filters }

// Fuzzy returns the per-request fuzzy override (nil when none).
func (r *Search) Fuzzy() *query.FuzzyOverride { return r.fuzzy }
