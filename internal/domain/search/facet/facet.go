// Package facet describes bucketed count breakdowns over a collection field.
package facet

import (
	"sort"
	"strings"
	"time"
)

// Type is the bucketing strategy.
type Type string

const (
	// String buckets by distinct value, top-N by count.
	String Type = "string"
	// Date buckets by trailing time windows.
	Date Type = "date"
)

// Other is the catch-all bucket for date facets.
const Other = "other"

// CollectionType is the cross-collection facet computed by federated search.
const CollectionType = "collection_type"

const nameSuffix = "Facet"

// Spec defines one facet of a collection.
type Spec struct {
	Name       string
	Type       Type
	Path       string
	NumBuckets int
}

// StringSpec is a top-n distinct value facet.
func StringSpec(name, path string, n int) Spec {
	return Spec{Name: name, Type: String, Path: path, NumBuckets: n}
}

// DateSpec is a trailing time window facet.
func DateSpec(name, path string) Spec {
	return Spec{Name: name, Type: Date, Path: path}
}

// DisplayName strips the "Facet" suffix: statusFacet -> status.
func (s Spec) DisplayName() string {
	return DisplayName(s.Name)
}

// DisplayName strips the "Facet" suffix from a facet name.
func DisplayName(name string) string {
	return strings.TrimSuffix(name, nameSuffix)
}

// Bucket is one {value, count} pair.
type Bucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Boundaries returns the date facet edges relative to now, oldest first:
// 1 year, 6 months, 3 months, 1 month and 1 week ago, then now.
func Boundaries(now time.Time) []time.Time {
	return []time.Time{
		now.AddDate(-1, 0, 0),
		now.AddDate(0, -6, 0),
		now.AddDate(0, -3, 0),
		now.AddDate(0, -1, 0),
		now.AddDate(0, 0, -7),
		now,
	}
}

// BucketLabel formats a date bucket's lower boundary.
func BucketLabel(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// TopN sorts counts by count desc then value asc and keeps at most n.
func TopN(counts map[string]int, n int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for v, c := range counts {
		if c <= 0 {
			continue
		}
		out = append(out, Bucket{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DateBuckets shapes per-window counts plus the catch-all. counts[i] is the
// number of records in [bounds[i], bounds[i+1]).
func DateBuckets(bounds []time.Time, counts []int, total int) []Bucket {
	out := make([]Bucket, 0, len(bounds))
	sum := 0
	for i := 0; i+1 < len(bounds) && i < len(counts); i++ {
		out = append(out, Bucket{Value: BucketLabel(bounds[i]), Count: counts[i]})
		sum += counts[i]
	}
	out = append(out, Bucket{Value: Other, Count: max(0, total-sum)})
	return out
}

// Rename converts a spec-name keyed map into display-name keys.
func Rename(raw map[string][]Bucket) map[string][]Bucket {
	out := make(map[string][]Bucket, len(raw))
	for name, buckets := range raw {
		out[DisplayName(name)] = buckets
	}
	return out
}
