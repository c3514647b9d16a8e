package suggestcache

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
)

// DefaultSize bounds the in-process cache.
const DefaultSize = 1024

// Memory is an in-process expirable LRU. Safe for concurrent use.
type Memory struct {
	lru   *expirable.LRU[string, []result.Suggestion]
	total counter
}

// NewMemory creates an in-process cache of at most size entries.
func NewMemory(size int, ttl time.Duration, cacheTotal *prometheus.CounterVec) *Memory {
	if size <= 0 {
		size = DefaultSize
	}
	return &Memory{
		lru:   expirable.NewLRU[string, []result.Suggestion](size, nil, ttl),
		total: counter{cacheTotal},
	}
}

// Get returns a copy of the cached list.
func (c *Memory) Get(_ context.Context, k string) ([]result.Suggestion, bool) {
	s, ok := c.lru.Get(k)
	if !ok {
		c.total.inc(resultMiss)
		return nil, false
	}
	c.total.inc(resultHit)
	return slices.Clone(s), true
}

// Put stores a copy of s.
func (c *Memory) Put(_ context.Context, k string, s []result.Suggestion) {
	c.lru.Add(k, slices.Clone(s))
}

// Len reports the number of live entries.
func (c *Memory) Len() int { return c.lru.Len() }
