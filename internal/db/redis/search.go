package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/ravi-m-fleetenable/global-search/internal/db"
)

// Search runs a scored, paginated FT.SEARCH.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	args := buildSearchArgs(q)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseScoredResult(raw)
}

func buildSearchArgs(q *db.SearchQuery) []string {
	args := []string{q.IndexName, q.Query, "WITHSCORES"}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	if len(q.HighlightFields) > 0 {
		args = append(args, "HIGHLIGHT", "FIELDS", strconv.Itoa(len(q.HighlightFields)))
		args = append(args, q.HighlightFields...)
		if q.HighlightTags[0] != "" {
			args = append(args, "TAGS", q.HighlightTags[0], q.HighlightTags[1])
		}
	}

	return append(args,
		"LIMIT", strconv.Itoa(max(0, q.Offset)), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)
}

// SearchCount returns document count via FT.SEARCH with LIMIT 0 0.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(index, query, "LIMIT", "0", "0", "DIALECT", "2").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// AggregateCount groups matching documents by one field via FT.AGGREGATE and
// returns at most q.Max groups ordered by count desc.
func (s *Store) AggregateCount(ctx context.Context, q *db.GroupCountQuery) ([]db.GroupCount, error) {
	if q.IndexName == "" || q.Field == "" {
		return nil, fmt.Errorf("index name and field are required")
	}
	query := q.Query
	if query == "" {
		query = "*"
	}
	field := "@" + q.Field

	args := []string{
		q.IndexName, query,
		"LOAD", "1", field,
		"GROUPBY", "1", field,
		"REDUCE", "COUNT", "0", "AS", "count",
		"SORTBY", "2", "@count", "DESC",
	}
	if q.Max > 0 {
		args = append(args, "MAX", strconv.Itoa(q.Max))
	}
	args = append(args, "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	return parseGroupCounts(raw, q.Field), nil
}

// --- Result parsing ---

func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

// parseGroupCounts reads [n, [field, value, count, c], ...] rows.
func parseGroupCounts(raw []rueidis.RedisMessage, field string) []db.GroupCount {
	if len(raw) < 2 {
		return nil
	}
	out := make([]db.GroupCount, 0, len(raw)-1)
	for _, row := range raw[1:] {
		pairs, err := row.ToArray()
		if err != nil {
			continue
		}
		m := parseFieldPairs(pairs)
		value, ok := m[field]
		if !ok || value == "" {
			continue
		}
		count, err := strconv.Atoi(m["count"])
		if err != nil {
			continue
		}
		out = append(out, db.GroupCount{Value: value, Count: count})
	}
	return out
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
