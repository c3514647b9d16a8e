// Package embedded is an in-process search backend built on bleve. It
// executes the same query trees as the Redis backend and needs no server.
package embedded

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/collection/field"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("embedded: engine is closed")

// Engine holds one bleve index per collection.
type Engine struct {
	mu      sync.RWMutex
	indexes map[string]bleve.Index
	closed  bool
}

// Open creates or opens an index per collection of reg. An empty dir keeps
// everything in memory; otherwise indexes live under dir/<collection>.bleve.
func Open(dir string, reg *domcol.Registry) (*Engine, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index dir %s: %w", dir, err)
		}
	}

	e := &Engine{indexes: make(map[string]bleve.Index, len(reg.All()))}
	for _, d := range reg.All() {
		idx, err := openIndex(dir, d)
		if err != nil {
			_ = e.Close()
			return nil, fmt.Errorf("open %s: %w", d.Name(), err)
		}
		e.indexes[d.Name()] = idx
	}
	return e, nil
}

func openIndex(dir string, d *domcol.Descriptor) (bleve.Index, error) {
	m, err := buildMapping(d)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return bleve.NewMemOnly(m)
	}

	path := filepath.Join(dir, d.Index()+".bleve")
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return bleve.New(path, m)
	}
	return idx, err
}

func (e *Engine) index(name string) (bleve.Index, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, ErrClosed
	}
	idx, ok := e.indexes[name]
	if !ok {
		return nil, fmt.Errorf("embedded: no index for collection %q", name)
	}
	return idx, nil
}

// Index normalizes records and writes them in one batch, replacing documents
// with the same id. Returns the number of records written.
func (e *Engine) Index(ctx context.Context, desc *domcol.Descriptor, records []map[string]any) (int, error) {
	idx, err := e.index(desc.Name())
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	batch := idx.NewBatch()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		doc, err := desc.Normalize(rec)
		if err != nil {
			return 0, err
		}
		id := doc[domcol.IDField].(string)
		bd, err := bleveDoc(desc, doc)
		if err != nil {
			return 0, fmt.Errorf("document %s: %w", id, err)
		}
		if err := batch.Index(id, bd); err != nil {
			return 0, fmt.Errorf("index document %s: %w", id, err)
		}
	}

	if err := idx.Batch(batch); err != nil {
		return 0, fmt.Errorf("execute batch: %w", err)
	}
	return len(records), nil
}

// bleveDoc adds autocomplete copies, missing-tag markers and the JSON
// source to a normalized record.
func bleveDoc(desc *domcol.Descriptor, doc map[string]any) (map[string]any, error) {
	src, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(doc)+len(desc.Autocomplete())+1)
	for _, f := range desc.Fields() {
		v, ok := doc[f.Name()]
		if (!ok || v == nil) && f.FieldType() == field.Tag {
			v = missingTag
		}
		if v != nil {
			out[f.Name()] = v
		}
	}
	for _, a := range desc.Autocomplete() {
		if v, ok := doc[a.Field]; ok && v != nil {
			out[a.Path] = v
		}
	}
	out[sourceField] = string(src)
	return out, nil
}

// DocCount returns the number of documents of a collection.
func (e *Engine) DocCount(desc *domcol.Descriptor) (uint64, error) {
	idx, err := e.index(desc.Name())
	if err != nil {
		return 0, err
	}
	return idx.DocCount()
}

// Ping reports whether the engine is open.
func (e *Engine) Ping(_ context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return ErrClosed
	}
	return nil
}

// Close closes every index. It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	for name, idx := range e.indexes {
		if err := idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
