package request

import (
	"fmt"
	"strings"

	"github.com/ravi-m-fleetenable/global-search/internal/domain"
)

// Autocomplete parameter limits.
const (
	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 50
	DefaultMinChars     = 2
)

// Suggest is a validated autocomplete request.
type Suggest struct {
	query      string
	collection string
	limit      int
	minChars   int
}

// NewSuggest validates autocomplete parameters. limit and minChars fall back
// to the given defaults when non-positive.
func NewSuggest(q, collection string, limit, minChars, defaultLimit, defaultMinChars int) (Suggest, error) {
	q = strings.TrimSpace(q)
	if len(q) > MaxQueryLength {
		return Suggest{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrValidation, MaxQueryLength)
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return Suggest{}, fmt.Errorf("%w: type is required", domain.ErrValidation)
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultSuggestLimit
	}
	if defaultMinChars <= 0 {
		defaultMinChars = DefaultMinChars
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if minChars <= 0 {
		minChars = defaultMinChars
	}
	return Suggest{
		query:      q,
		collection: collection,
		limit:      min(limit, MaxSuggestLimit),
		minChars:   minChars,
	}, nil
}

// Query returns the partial query.
func (r *Suggest) Query() string { return r.query }

// Collection returns the target collection name.
func (r *Suggest) Collection() string { return r.collection }

// Limit returns the maximum number of suggestions.
func (r *Suggest) Limit() int { return r.limit }

// MinChars returns the minimum query length in runes.
func (r *Suggest) MinChars() int { return r.minChars }

// TooShort reports whether the query is below the minimum length.
func (r *Suggest) TooShort() bool {
	return len([]rune(r.query)) < r.minChars
}
