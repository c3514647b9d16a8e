package facet

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ravi-m-fleetenable/global-search/internal/domain"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/access"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	domfacet "github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/logger"
)

// Service builds the facet breakdowns of a collection as seen by a caller.
type Service struct {
	exec Executor
	reg  *domcol.Registry
	now  func() time.Time
}

// New creates a facet service.
func New(exec Executor, reg *domcol.Registry) *Service {
	return &Service{exec: exec, reg: reg, now: time.Now}
}

// Build returns the facets of collection keyed by display name.
func (s *Service) Build(ctx context.Context, c caller.Context, collection string) (map[string][]domfacet.Bucket, error) {
	desc, ok := s.reg.Get(collection)
	if !ok {
		return nil, domain.NewUnknownCollection(collection)
	}
	if !access.CanSearch(c.Role(), desc.Name()) {
		return nil, domain.NewForbidden(desc.Name())
	}
	return s.ForCollection(ctx, c, desc), nil
}

// ForCollection computes the facets without the authorization gate.
// Executor failures yield an empty map.
func (s *Service) ForCollection(ctx context.Context, c caller.Context, desc *domcol.Descriptor) map[string][]domfacet.Bucket {
	specs := desc.Facets()
	if len(specs) == 0 {
		return map[string][]domfacet.Bucket{}
	}

	clause := query.Compound([]query.Clause{query.All()}, nil, nil, access.MandatoryClauses(c, desc.Name()))
	raw, err := s.exec.Facets(ctx, desc, clause, specs, s.now())
	if err != nil {
		logger.FromContext(ctx).Warn("Facet build failed",
			zap.String("collection", desc.Name()),
			zap.Error(err),
		)
		return map[string][]domfacet.Bucket{}
	}
	return domfacet.Rename(raw)
}
