// Package db defines the search store contract the Redis-backed repositories
// are written against.
package db

import (
	"context"
	"time"
)

// Store is the search store facade. Repositories depend on the narrow
// sub-interfaces only.
type Store interface {
	Pinger
	DocumentWriter
	Cache
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONSetItem is one record to write: key, JSON path and encoded document.
type JSONSetItem struct {
	Key  string
	Path string
	Data []byte
}

// DocumentWriter stores records as JSON documents.
type DocumentWriter interface {
	JSONSetMulti(ctx context.Context, items []JSONSetItem) error
}

// Cache holds short-lived opaque values (autocomplete answers).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs scored searches, counts and group counts over FT indexes.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	AggregateCount(ctx context.Context, q *GroupCountQuery) ([]GroupCount, error)
}
