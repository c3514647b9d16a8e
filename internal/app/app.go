// Package app is the composition root: it turns a Config into wired services
// over the configured search backend.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ravi-m-fleetenable/global-search/internal/config"
	dbRedis "github.com/ravi-m-fleetenable/global-search/internal/db/redis"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/request"
	"github.com/ravi-m-fleetenable/global-search/internal/metrics"
	collectionrepo "github.com/ravi-m-fleetenable/global-search/internal/repository/collection"
	documentrepo "github.com/ravi-m-fleetenable/global-search/internal/repository/document"
	"github.com/ravi-m-fleetenable/global-search/internal/repository/embedded"
	"github.com/ravi-m-fleetenable/global-search/internal/repository/keyspace"
	searchrepo "github.com/ravi-m-fleetenable/global-search/internal/repository/search"
	"github.com/ravi-m-fleetenable/global-search/internal/repository/suggestcache"
	autocompleteuc "github.com/ravi-m-fleetenable/global-search/internal/usecase/autocomplete"
	facetuc "github.com/ravi-m-fleetenable/global-search/internal/usecase/facet"
	healthuc "github.com/ravi-m-fleetenable/global-search/internal/usecase/health"
	searchuc "github.com/ravi-m-fleetenable/global-search/internal/usecase/search"
	seeduc "github.com/ravi-m-fleetenable/global-search/internal/usecase/seed"
)

// App holds the wired services of one process.
type App struct {
	Registry     *domcol.Registry
	Search       *searchuc.Service
	Autocomplete *autocompleteuc.Service
	Facets       *facetuc.Service
	Health       *healthuc.Service
	Seed         *seeduc.Service
	// Collections manages RediSearch indexes; nil on the embedded backend.
	Collections *collectionrepo.Repo

	closers []func() error
}

// backend is what every driver provides.
type backend struct {
	exec    searchuc.Executor
	indexer seeduc.Indexer
	pinger  healthuc.DBPinger
	indexes healthuc.IndexChecker
	cache   autocompleteuc.Cache
	colls   *collectionrepo.Repo
	closer  func() error
}

// Build connects to the configured backend and wires the services.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.RegisterSearchMetrics()
	reg := domcol.Default()

	var (
		be  backend
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverRedis:
		be, err = redisBackend(ctx, cfg, reg, logger)
	case config.DriverBleve:
		be, err = bleveBackend(cfg, reg)
	default:
		err = fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}

	if !cfg.Cache.Enabled {
		be.cache = nil
	}

	fuzzy := Fuzzy(cfg.Search.Fuzzy)
	exec := searchuc.NewInstrumentedExecutor(be.exec, cfg.Database.Driver, logger)
	facets := facetuc.New(exec, reg)

	a := &App{
		Registry: reg,
		Search: searchuc.New(exec, reg, facets, searchuc.Config{
			Fuzzy:           fuzzy,
			MaxEditsCeiling: cfg.Search.Fuzzy.MaxEditsCeiling,
		}),
		Autocomplete: autocompleteuc.New(exec, reg, be.cache, autocompleteuc.Config{
			Fuzzy:           fuzzy,
			MaxEditsCeiling: cfg.Search.Fuzzy.MaxEditsCeiling,
			Rerank:          cfg.Autocomplete.Rerank,
		}),
		Facets:      facets,
		Health:      healthuc.New(be.pinger, be.indexes),
		Seed:        seeduc.New(be.indexer, reg, logger),
		Collections: be.colls,
		closers:     []func() error{be.closer},
	}
	return a, nil
}

func redisBackend(ctx context.Context, cfg config.Config, reg *domcol.Registry, logger *zap.Logger) (backend, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return backend{}, fmt.Errorf("create redis store: %w", err)
	}

	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return backend{}, fmt.Errorf("database not ready: %w", err)
	}

	keys := keyspace.New(cfg.Storage.KeyPrefix)
	colls := collectionrepo.New(store, keys)

	var cache autocompleteuc.Cache
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		cache = suggestcache.NewRedis(store, keys, cfg.Cache.TTL(), metrics.AutocompleteCacheTotal, logger)
	default:
		cache = suggestcache.NewMemory(cfg.Cache.Size, cfg.Cache.TTL(), metrics.AutocompleteCacheTotal)
	}

	return backend{
		exec:    searchrepo.New(store, keys),
		indexer: documentrepo.New(store, keys),
		pinger:  store,
		indexes: colls.Indexes(reg),
		cache:   cache,
		colls:   colls,
		closer: func() error {
			store.Close()
			return nil
		},
	}, nil
}

func bleveBackend(cfg config.Config, reg *domcol.Registry) (backend, error) {
	engine, err := embedded.Open(cfg.Database.BlevePath, reg)
	if err != nil {
		return backend{}, fmt.Errorf("open embedded indexes: %w", err)
	}
	return backend{
		exec:    engine,
		indexer: engine,
		pinger:  engine,
		cache:   suggestcache.NewMemory(cfg.Cache.Size, cfg.Cache.TTL(), metrics.AutocompleteCacheTotal),
		closer:  engine.Close,
	}, nil
}

// Fuzzy converts the configured fuzzy defaults.
func Fuzzy(f config.FuzzyConfig) query.Fuzzy {
	return query.Fuzzy{
		MaxEdits:      f.Edits(),
		PrefixLength:  f.PrefixLength,
		MaxExpansions: f.MaxExpansions,
	}
}

// Limits converts the configured page sizes.
func Limits(s config.SearchConfig) request.Limits {
	return request.Limits{DefaultLimit: s.DefaultPageSize, MaxLimit: s.MaxPageSize}
}

// Close releases the backend. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
