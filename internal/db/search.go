package db

// SearchQuery is the input for a scored, paginated FT.SEARCH.
type SearchQuery struct {
	IndexName    string
	Query        string
	Offset       int
	Limit        int
	ReturnFields []string

	// HighlightFields wraps matched terms of these fields in HighlightTags.
	HighlightFields []string
	HighlightTags   [2]string
}

// GroupCountQuery is the input for an FT.AGGREGATE distinct value count.
type GroupCountQuery struct {
	IndexName string
	Query     string
	Field     string
	Max       int
}

// GroupCount is one distinct value and the number of matching documents.
type GroupCount struct {
	Value string
	Count int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
