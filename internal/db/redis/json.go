package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/ravi-m-fleetenable/global-search/internal/db"
)

// maxPipeline bounds the JSON.SET commands sent in one DoMulti round trip.
const maxPipeline = 500

// JSONSetMulti writes documents with pipelined JSON.SET, maxPipeline per
// round trip. It stops at the first failed chunk; earlier chunks stay written.
func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	for start := 0; start < len(items); start += maxPipeline {
		end := min(start+maxPipeline, len(items))
		if err := s.jsonSetChunk(ctx, items[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) jsonSetChunk(ctx context.Context, items []db.JSONSetItem) error {
	cmds := make(rueidis.Commands, len(items))
	for i, item := range items {
		path := item.Path
		if path == "" {
			path = "$"
		}
		cmds[i] = s.b().Arbitrary("JSON.SET").Keys(item.Key).Args(path, string(item.Data)).Build()
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}
