package request

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/ravi-m-fleetenable/global-search/internal/domain"
)

// DateRange bounds created_at; either end may be open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Filters are the structured filters of a federated search.
type Filters struct {
	Status    []string
	DateRange *DateRange
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return len(f.Status) == 0 && f.DateRange == nil
}

func (f Filters) validate() error {
	if slices.Contains(f.Status, "") {
		return fmt.Errorf("%w: empty status filter value", domain.ErrValidation)
	}
	if f.DateRange != nil && f.DateRange.From != nil && f.DateRange.To != nil &&
		f.DateRange.From.After(*f.DateRange.To) {
		return fmt.Errorf("%w: date_range start is after end", domain.ErrValidation)
	}
	return nil
}

// ParseDateRange parses loosely formatted start/end strings. Both empty
// yields nil.
func ParseDateRange(start, end string) (*DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}
	var dr DateRange
	if start != "" {
		t, err := ParseTime(start)
		if err != nil {
			return nil, err
		}
		dr.From = &t
	}
	if end != "" {
		t, err := ParseTime(end)
		if err != nil {
			return nil, err
		}
		dr.To = &t
	}
	return &dr, nil
}

// ParseTime parses a date in any common layout.
func ParseTime(s string) (time.Time, error) {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrValidation, s)
	}
	return t, nil
}
