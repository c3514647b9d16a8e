package redis

import (
	"context"
	"strconv"

	"github.com/ravi-m-fleetenable/global-search/internal/db"
)

// CreateIndex issues FT.CREATE ... ON JSON for def.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(createArgs(def)...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes an FT index. Indexed documents are left in place.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists probes with FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// createArgs renders a validated definition:
// name ON JSON PREFIX 1 prefix SCHEMA path AS name KIND [INDEXMISSING] [SORTABLE] ...
func createArgs(def *db.IndexDefinition) []string {
	args := make([]string, 0, 7+6*len(def.Fields))
	args = append(args, def.Name, "ON", "JSON", "PREFIX", strconv.Itoa(1), def.Prefix, "SCHEMA")
	for _, f := range def.Fields {
		args = append(args, f.Path, "AS", f.As, f.Kind.String())
		if f.IndexMissing {
			args = append(args, "INDEXMISSING")
		}
		if f.Sortable {
			args = append(args, "SORTABLE")
		}
	}
	return args
}
