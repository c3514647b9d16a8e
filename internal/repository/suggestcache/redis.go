package suggestcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ravi-m-fleetenable/global-search/internal/db"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
	"github.com/ravi-m-fleetenable/global-search/internal/repository/keyspace"
)

// store is the consumer interface for the suggestion cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Redis caches suggestions as JSON strings with SET EX.
type Redis struct {
	store  store
	keys   keyspace.Keyspace
	ttl    time.Duration
	total  counter
	logger *zap.Logger
}

// NewRedis creates a Redis-backed cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"), passed explicitly.
func NewRedis(
	s store,
	keys keyspace.Keyspace,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Redis {
	return &Redis{store: s, keys: keys, ttl: ttl, total: counter{cacheTotal}, logger: logger}
}

// Get returns the cached list. Store failures count as misses.
func (c *Redis) Get(ctx context.Context, k string) ([]result.Suggestion, bool) {
	key := c.keys.Key(k)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			c.total.inc(resultMiss)
			return nil, false
		}
		c.total.inc(resultError)
		c.logger.Warn("Failed to get cached suggestions", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	var out []result.Suggestion
	if err := json.Unmarshal(data, &out); err != nil {
		c.total.inc(resultError)
		c.logger.Warn("Failed to parse cached suggestions", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	c.total.inc(resultHit)
	return out, true
}

// Put stores the list. Failures are logged and dropped.
func (c *Redis) Put(ctx context.Context, k string, s []result.Suggestion) {
	key := c.keys.Key(k)

	data, err := json.Marshal(s)
	if err != nil {
		c.logger.Warn("Failed to encode suggestions", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.total.inc(resultError)
		c.logger.Warn("Failed to cache suggestions", zap.String("key", key), zap.Error(err))
	}
}
