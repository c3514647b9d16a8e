package result

import (
	"encoding/json"
	"maps"
)

// Hit is a single raw match returned by a search executor.
type Hit struct {
	ID         string
	Score      float64
	Fields     map[string]any
	Highlights map[string]string
}

// Page is an executor's answer: the total number of matches and one window of hits.
type Page struct {
	Total int
	Hits  []Hit
}

// Item is a formatted record in a collection result.
type Item struct {
	id         string
	score      float64
	fields     map[string]any
	highlights map[string]string
}

// NewItem creates a formatted item. A nil highlights map means highlights
// were not requested.
func NewItem(id string, score float64, fields map[string]any, highlights map[string]string) Item {
	return Item{id: id, score: score, fields: fields, highlights: highlights}
}

// ID returns the record identifier.
func (i Item) ID() string { return i.id }

// Score returns the relevance score.
func (i Item) Score() float64 { return i.score }

// Fields returns the projected record fields.
func (i Item) Fields() map[string]any { return i.fields }

// Highlights returns field -> snippet.
func (i Item) Highlights() map[string]string { return i.highlights }

// MarshalJSON flattens the record fields next to id, search_score and
// search_highlights.
func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.fields)+3)
	maps.Copy(out, i.fields)
	out["id"] = i.id
	out["search_score"] = i.score
	if i.highlights != nil {
		out["search_highlights"] = i.highlights
	}
	return json.Marshal(out)
}

// CollectionResult is one collection's contribution to the envelope.
type CollectionResult struct {
	Count int    `json:"count"`
	Items []Item `json:"items"`
}
