package collection

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/collection/field"
)

// Normalize converts a raw record into its stored shape: dates become epoch
// seconds, numbers become float64, tags become strings. Unknown fields are
// kept as is. The record must carry a non-empty id.
func (d *Descriptor) Normalize(rec map[string]any) (map[string]any, error) {
	id, _ := rec[IDField].(string)
	if id == "" {
		return nil, fmt.Errorf("%s: record id is required", d.name)
	}

	out := make(map[string]any, len(rec))
	for k, v := range rec {
		f, ok := d.byName[k]
		if !ok || v == nil {
			out[k] = v
			continue
		}
		nv, err := normalizeValue(f, v)
		if err != nil {
			return nil, fmt.Errorf("%s %s: field %q: %w", d.name, id, k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func normalizeValue(f field.Field, v any) (any, error) {
	if list, ok := v.([]any); ok {
		out := make([]any, 0, len(list))
		for _, item := range list {
			nv, err := normalizeScalar(f.FieldType(), item)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	}
	return normalizeScalar(f.FieldType(), v)
}

func normalizeScalar(ft field.Type, v any) (any, error) {
	switch ft {
	case field.Date:
		return toEpoch(v)
	case field.Numeric:
		return toFloat(v)
	case field.Tag:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	default:
		return v, nil
	}
}

func toEpoch(v any) (float64, error) {
	switch t := v.(type) {
	case time.Time:
		return float64(t.Unix()), nil
	case string:
		ts, err := dateparse.ParseAny(t)
		if err != nil {
			return 0, fmt.Errorf("parse date %q: %w", t, err)
		}
		return float64(ts.Unix()), nil
	default:
		return toFloat(v)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("parse number %q: %w", n, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported value %T", v)
	}
}

// Project picks the display fields out of a stored record and renders
// dates as RFC 3339 strings.
func (d *Descriptor) Project(rec map[string]any) map[string]any {
	out := make(map[string]any, len(d.display))
	for _, name := range d.display {
		v, ok := rec[name]
		if !ok {
			continue
		}
		if f, known := d.byName[name]; known && f.FieldType() == field.Date {
			v = renderDate(v)
		}
		out[name] = v
	}
	return out
}

func renderDate(v any) any {
	secs, err := toFloat(v)
	if err != nil || math.IsNaN(secs) {
		return v
	}
	return time.Unix(int64(secs), 0).UTC().Format(time.RFC3339)
}
