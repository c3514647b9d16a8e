package query

import "slices"

// Highlight defaults.
const (
	DefaultMaxCharsToExamine = 500000
	DefaultMaxNumPassages    = 5
)

// HighlightConfig selects the paths to produce snippets for.
type HighlightConfig struct {
	Paths             []string
	MaxCharsToExamine int
	MaxNumPassages    int
}

// Highlight returns a highlight spec for paths.
func Highlight(paths []string) *HighlightConfig {
	return &HighlightConfig{
		Paths:             slices.Clone(paths),
		MaxCharsToExamine: DefaultMaxCharsToExamine,
		MaxNumPassages:    DefaultMaxNumPassages,
	}
}
