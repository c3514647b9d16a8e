package document

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ravi-m-fleetenable/global-search/internal/db"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/repository/keyspace"
)

// batchSize caps the number of JSON.SET commands per pipeline.
const batchSize = 500

// store is the consumer interface for documents (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
}

// Repo writes collection records as JSON documents.
type Repo struct {
	store store
	keys  keyspace.Keyspace
}

// New creates a document repository.
func New(s store, keys keyspace.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// Index normalizes and stores records under <prefix><collection>:<id>,
// overwriting existing documents. Returns the number of records written.
func (r *Repo) Index(ctx context.Context, desc *domcol.Descriptor, records []map[string]any) (int, error) {
	items := make([]db.JSONSetItem, 0, min(len(records), batchSize))
	written := 0

	flush := func() error {
		if len(items) == 0 {
			return nil
		}
		if err := r.store.JSONSetMulti(ctx, items); err != nil {
			return fmt.Errorf("json.set %s: %w", desc.Name(), err)
		}
		written += len(items)
		items = items[:0]
		return nil
	}

	for _, rec := range records {
		doc, err := desc.Normalize(rec)
		if err != nil {
			return written, err
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return written, fmt.Errorf("marshal document: %w", err)
		}
		items = append(items, db.JSONSetItem{
			Key:  r.keys.DocKey(desc, doc[domcol.IDField].(string)),
			Path: "$",
			Data: data,
		})
		if len(items) == batchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}

	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}
