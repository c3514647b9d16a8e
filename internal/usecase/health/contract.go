package health

import "context"

// DBPinger checks search store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports the collections whose search index is missing.
type IndexChecker interface {
	MissingIndexes(ctx context.Context) ([]string, error)
}
