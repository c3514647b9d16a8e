package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/ravi-m-fleetenable/global-search/internal/db"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/repository/keyspace"
)

// store is the consumer interface for index management (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo creates and drops the FT index of each registered collection.
type Repo struct {
	store store
	keys  keyspace.Keyspace
}

// New creates a collection index repository.
func New(s store, keys keyspace.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// Ensure creates the collection index unless it already exists.
// Reports whether an index was created.
func (r *Repo) Ensure(ctx context.Context, desc *domcol.Descriptor) (bool, error) {
	def, err := buildIndex(r.keys, desc)
	if err != nil {
		return false, fmt.Errorf("build index %s: %w", desc.Name(), err)
	}

	exists, err := r.store.IndexExists(ctx, def.Name)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", def.Name, err)
	}
	if exists {
		return false, nil
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		// concurrent bootstrap won the race
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return true, nil
}

// EnsureAll runs Ensure for every collection of reg in order and returns
// the names of the collections whose index was created.
func (r *Repo) EnsureAll(ctx context.Context, reg *domcol.Registry) ([]string, error) {
	var created []string
	for _, d := range reg.All() {
		ok, err := r.Ensure(ctx, d)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, d.Name())
		}
	}
	return created, nil
}

// Drop removes the collection index. Documents are kept.
// A missing index is not an error.
func (r *Repo) Drop(ctx context.Context, desc *domcol.Descriptor) error {
	name := r.keys.Index(desc)
	if err := r.store.DropIndex(ctx, name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	return nil
}

// Missing returns the collections of reg whose index does not exist.
func (r *Repo) Missing(ctx context.Context, reg *domcol.Registry) ([]string, error) {
	var missing []string
	for _, d := range reg.All() {
		name := r.keys.Index(d)
		ok, err := r.store.IndexExists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("check index %s: %w", name, err)
		}
		if !ok {
			missing = append(missing, d.Name())
		}
	}
	return missing, nil
}

// Indexes binds the repository to one registry for health checks.
type Indexes struct {
	repo *Repo
	reg  *domcol.Registry
}

// Indexes returns the registry-bound view of r.
func (r *Repo) Indexes(reg *domcol.Registry) Indexes {
	return Indexes{repo: r, reg: reg}
}

// MissingIndexes implements the health index check.
func (i Indexes) MissingIndexes(ctx context.Context) ([]string, error) {
	return i.repo.Missing(ctx, i.reg)
}
