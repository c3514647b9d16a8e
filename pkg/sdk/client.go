package globalsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ravi-m-fleetenable/global-search/internal/app"
	"github.com/ravi-m-fleetenable/global-search/internal/config"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/request"
	seeduc "github.com/ravi-m-fleetenable/global-search/internal/usecase/seed"
)

// Client is the globalsearch SDK entry point.
type Client struct {
	app     *app.App
	limits  request.Limits
	suggest config.AutocompleteConfig
	timeout time.Duration
	obs     *observer
}

// New creates a Client and connects to the backend chosen with WithRedis or
// WithEmbedded. The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o.apply(cc)
	}

	cfg := cc.cfg
	switch cfg.Database.Driver {
	case "":
		return nil, errors.New("globalsearch: backend required (use WithRedis or WithEmbedded)")
	case config.DriverRedis:
		if len(cfg.Database.Addrs) == 0 || cfg.Database.Addrs[0] == "" {
			return nil, errors.New("globalsearch: database address required")
		}
	}
	cfg.ApplyDefaults()
	if cfg.Search.DefaultPageSize > cfg.Search.MaxPageSize {
		return nil, fmt.Errorf("globalsearch: default page size %d exceeds max %d",
			cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)
	}

	obs, err := newObserver(cc.logger, cc.metricsReg)
	if err != nil {
		return nil, err
	}

	a, err := app.Build(ctx, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("globalsearch: %w", err)
	}

	return &Client{
		app:     a,
		limits:  app.Limits(cfg.Search),
		suggest: cfg.Autocomplete,
		timeout: cfg.Search.Timeout(),
		obs:     obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() error {
	return c.app.Close() //nolint:wrapcheck // joined backend errors
}

// Collections returns the collection names in registry order.
func (c *Client) Collections() []string {
	return c.app.Registry.Names()
}

// Bootstrap creates missing search indexes and returns the ones it created.
// The embedded backend creates its indexes on open, so it returns nil.
func (c *Client) Bootstrap(ctx context.Context) (created []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("bootstrap", "", start, err) }()

	if c.app.Collections == nil {
		return nil, nil
	}
	created, err = c.app.Collections.EnsureAll(ctx, c.app.Registry)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return created, nil
}

// Seed loads YAML fixtures (collection -> list of records) and returns the
// number of records written per collection.
func (c *Client) Seed(ctx context.Context, r io.Reader) (counts map[string]int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("seed", "", start, err) }()

	fx, err := seeduc.Parse(r)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by the parser
	}
	return c.seed(ctx, fx)
}

// SeedFile is Seed over a file path.
func (c *Client) SeedFile(ctx context.Context, path string) (counts map[string]int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("seed", "", start, err) }()

	fx, err := seeduc.LoadFile(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by the loader
	}
	return c.seed(ctx, fx)
}

func (c *Client) seed(ctx context.Context, fx seeduc.Fixtures) (map[string]int, error) {
	if c.app.Collections != nil {
		if _, err := c.app.Collections.EnsureAll(ctx, c.app.Registry); err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
	}
	counts, err := c.app.Seed.Seed(ctx, fx)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by the service
	}
	return counts, nil
}
