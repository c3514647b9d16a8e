package result

import "github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"

// Pagination summarizes the page window. TotalPages is derived from the
// summed per-collection counts, each collection being paginated on its own.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	Limit       int `json:"limit"`
	TotalCount  int `json:"total_count"`
}

// NewPagination computes total pages as ceil(total/limit).
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{CurrentPage: page, TotalPages: pages, Limit: limit, TotalCount: total}
}

// Envelope is the federated search response.
type Envelope struct {
	Success      bool                        `json:"success"`
	Query        string                      `json:"query"`
	TotalResults int                         `json:"total_results"`
	SearchTimeMs float64                     `json:"search_time_ms"`
	Results      map[string]CollectionResult `json:"results"`
	Facets       map[string][]facet.Bucket   `json:"facets"`
	Pagination   Pagination                  `json:"pagination"`
}

// Empty returns an envelope with no results.
func Empty(q string, page, limit int) *Envelope {
	return &Envelope{
		Success:    true,
		Query:      q,
		Results:    map[string]CollectionResult{},
		Facets:     map[string][]facet.Bucket{},
		Pagination: NewPagination(page, limit, 0),
	}
}

// SuggestionMeta identifies the record behind a suggestion.
type SuggestionMeta struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Text       string         `json:"text"`
	Type       string         `json:"type"`
	Collection string         `json:"collection"`
	Score      float64        `json:"score"`
	Metadata   SuggestionMeta `json:"metadata"`
}

// Suggestions is the autocomplete response.
type Suggestions struct {
	Success     bool         `json:"success"`
	Query       string       `json:"query"`
	Suggestions []Suggestion `json:"suggestions"`
	Count       int          `json:"count"`
	QueryTimeMs float64      `json:"query_time_ms"`
}

// NoSuggestions returns an empty autocomplete response.
func NoSuggestions(q string) *Suggestions {
	return &Suggestions{Success: true, Query: q, Suggestions: []Suggestion{}}
}

// Advanced is the structured search response.
type Advanced struct {
	Success    bool   `json:"success"`
	Collection string `json:"collection"`
	Count      int    `json:"count"`
	Results    []Item `json:"results"`
}

// Facets is the standalone facets response.
type Facets struct {
	Success    bool                      `json:"success"`
	Collection string                    `json:"collection"`
	Facets     map[string][]facet.Bucket `json:"facets"`
}
