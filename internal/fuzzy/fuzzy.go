// Package fuzzy scores approximate string matches with Levenshtein distance.
package fuzzy

import (
	"math"
	"sort"
	"strings"
)

// Suggestion defaults.
const (
	DefaultMaxSuggestions      = 5
	DefaultSuggestionThreshold = 60.0
	DefaultFilterRankThreshold = 70.0
	maxSimilarity              = 100.0
)

// Candidate is a scored candidate string.
type Candidate struct {
	Text       string
	Similarity float64
	Distance   int
}

// Distance returns the Levenshtein edit distance between case-folded a and b.
func Distance(a, b string) int {
	return distance(fold(a), fold(b))
}

func fold(s string) []rune { return []rune(strings.ToLower(s)) }

func distance(ra, rb []rune) int {
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// two-row DP table
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Similarity returns a 0-100 score rounded to two decimals.
// Two empty strings are identical.
// Lengths are measured on the case-folded runes Distance compares.
func Similarity(a, b string) float64 {
	ra, rb := fold(a), fold(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return maxSimilarity
	}
	score := (1 - float64(distance(ra, rb))/float64(maxLen)) * maxSimilarity
	score = math.Max(0, math.Min(maxSimilarity, score))
	return math.Round(score*100) / 100
}

// Match reports whether a and b are at least threshold similar.
func Match(a, b string, threshold float64) bool {
	return Similarity(a, b) >= threshold
}

// FilterAndRank drops candidates below threshold and sorts the rest by
// similarity, highest first. Equal scores keep their input order.
func FilterAndRank(query string, candidates []string, threshold float64) []Candidate {
	out := score(query, candidates, threshold)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	return out
}

// GenerateSuggestions returns at most maxResults candidates above threshold,
// ordered by similarity desc then edit distance asc.
func GenerateSuggestions(query string, candidates []string, maxResults int, threshold float64) []Candidate {
	if maxResults <= 0 {
		maxResults = DefaultMaxSuggestions
	}
	out := score(query, candidates, threshold)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Distance < out[j].Distance
	})
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

func score(query string, candidates []string, threshold float64) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		sim := Similarity(query, c)
		if sim < threshold {
			continue
		}
		out = append(out, Candidate{Text: c, Similarity: sim, Distance: Distance(query, c)})
	}
	return out
}
