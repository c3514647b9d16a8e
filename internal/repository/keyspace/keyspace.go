// Package keyspace names the Redis keys and FT indexes a collection lives under.
package keyspace

import domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"

// DefaultPrefix namespaces every key the service writes.
const DefaultPrefix = "gs:"

// Keyspace resolves key and index names under one prefix.
type Keyspace struct {
	prefix string
}

// New returns a keyspace rooted at prefix (DefaultPrefix when empty).
func New(prefix string) Keyspace {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keyspace{prefix: prefix}
}

// Prefix returns the root prefix.
func (k Keyspace) Prefix() string { return k.prefix }

// Index returns the FT index name of a collection: <prefix><name>_search.
func (k Keyspace) Index(d *domcol.Descriptor) string { return k.prefix + d.Index() }

// DocPrefix returns the key prefix of a collection's documents.
func (k Keyspace) DocPrefix(d *domcol.Descriptor) string { return k.prefix + d.Name() + ":" }

// DocKey returns the key of one document.
func (k Keyspace) DocKey(d *domcol.Descriptor, id string) string { return k.DocPrefix(d) + id }

// Key returns an arbitrary namespaced key.
func (k Keyspace) Key(parts ...string) string {
	s := k.prefix
	for i, p := range parts {
		if i > 0 {
			s += ":"
		}
		s += p
	}
	return s
}
