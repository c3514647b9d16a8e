package globalsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ravi-m-fleetenable/global-search/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cfg config.Config

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis connects the client to a Redis instance with the search module.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverRedis
		c.cfg.Database.Addrs = []string{addr}
		c.cfg.Database.Password = password
	})
}

// WithEmbedded keeps the indexes in process. An empty dir keeps them in memory.
func WithEmbedded(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverBleve
		c.cfg.Database.BlevePath = dir
	})
}

// WithKeyPrefix sets the Redis key namespace. Default: "gs:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Storage.KeyPrefix = prefix
	})
}

// WithFuzzy sets the default fuzzy matching parameters.
// Defaults: maxEdits=2, prefixLength=0, maxExpansions=50.
func WithFuzzy(maxEdits, prefixLength, maxExpansions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Search.Fuzzy.MaxEdits = &maxEdits
		c.cfg.Search.Fuzzy.PrefixLength = prefixLength
		c.cfg.Search.Fuzzy.MaxExpansions = maxExpansions
	})
}

// WithPageSize sets the default and maximum results per collection.
// Defaults: 20 and 100.
func WithPageSize(defaultSize, maxSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Search.DefaultPageSize = defaultSize
		c.cfg.Search.MaxPageSize = maxSize
	})
}

// WithAutocomplete sets the minimum prefix length and the default number of suggestions.
func WithAutocomplete(minChars, maxResults int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Autocomplete.MinChars = minChars
		c.cfg.Autocomplete.MaxResults = maxResults
	})
}

// WithSuggestionCache caches autocomplete answers in memory.
func WithSuggestionCache(size int, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Cache.Enabled = true
		c.cfg.Cache.Backend = config.CacheMemory
		c.cfg.Cache.Size = size
		c.cfg.Cache.TTLSec = int(ttl.Seconds())
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
