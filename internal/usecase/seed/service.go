// Package seed loads fixture records into the search store.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ravi-m-fleetenable/global-search/internal/domain"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
)

// Fixtures maps a collection name to its raw records.
type Fixtures map[string][]map[string]any

// Parse decodes a YAML fixture document.
func Parse(r io.Reader) (Fixtures, error) {
	var fx Fixtures
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil {
		if err == io.EOF {
			return Fixtures{}, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if fx == nil {
		fx = Fixtures{}
	}
	return fx, nil
}

// LoadFile reads and parses a fixture file.
func LoadFile(path string) (Fixtures, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from trusted config/flags
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Service indexes fixtures collection by collection.
type Service struct {
	idx    Indexer
	reg    *domcol.Registry
	logger *zap.Logger
	newID  func() string
}

// New creates a seed service.
func New(idx Indexer, reg *domcol.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{idx: idx, reg: reg, logger: logger, newID: func() string { return uuid.NewString() }}
}

// Seed indexes every collection of fx in registry order and returns the
// number of records written per collection. Unknown collections are rejected
// before anything is written.
func (s *Service) Seed(ctx context.Context, fx Fixtures) (map[string]int, error) {
	for name := range fx {
		if _, ok := s.reg.Get(name); !ok {
			return nil, domain.NewUnknownCollection(name)
		}
	}

	written := make(map[string]int, len(fx))
	for _, desc := range s.reg.All() {
		records, ok := fx[desc.Name()]
		if !ok || len(records) == 0 {
			continue
		}

		prepared := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			prepared = append(prepared, s.withID(rec))
		}

		n, err := s.idx.Index(ctx, desc, prepared)
		if err != nil {
			return written, fmt.Errorf("seed %s: %w", desc.Name(), err)
		}
		written[desc.Name()] = n
		s.logger.Info("Collection seeded",
			zap.String("collection", desc.Name()),
			zap.Int("records", n),
		)
	}
	return written, nil
}

// withID copies rec and makes sure it carries a string id.
func (s *Service) withID(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	switch id := out[domcol.IDField].(type) {
	case string:
		if id != "" {
			return out
		}
	case nil:
	default:
		out[domcol.IDField] = fmt.Sprint(id)
		return out
	}
	out[domcol.IDField] = s.newID()
	return out
}
