package seed

import (
	"context"

	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
)

// Indexer writes normalized records into a collection's search store.
// Implemented by repository/document (RedisJSON) and repository/embedded (bleve).
type Indexer interface {
	Index(ctx context.Context, desc *domcol.Descriptor, records []map[string]any) (int, error)
}
