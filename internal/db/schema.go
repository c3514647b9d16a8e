package db

import (
	"errors"
	"fmt"
	"strings"
)

// FieldKind is the RediSearch attribute type a JSON path is indexed as.
type FieldKind int

const (
	// KindText is full-text searchable and fuzzy-matchable.
	KindText FieldKind = iota
	// KindTag is an exact-match keyword.
	KindTag
	// KindNumeric holds numbers and epoch-second dates.
	KindNumeric
)

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "TEXT"
	case KindTag:
		return "TAG"
	case KindNumeric:
		return "NUMERIC"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// SchemaField indexes one JSONPath under an attribute name. The same path may
// appear under several names, e.g. once for search and once for autocomplete.
type SchemaField struct {
	Path string
	As   string
	Kind FieldKind

	// IndexMissing lets queries match documents lacking the field via ismissing().
	IndexMissing bool
	Sortable     bool
}

// IndexDefinition describes an FT index over JSON documents stored under Prefix.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []SchemaField
}

// Validate checks that the definition can be sent as FT.CREATE.
func (d *IndexDefinition) Validate() error {
	if d.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(d.Name) {
		return fmt.Errorf("index name %q contains invalid characters", d.Name)
	}
	if d.Prefix == "" {
		return errors.New("key prefix is required")
	}
	if len(d.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(d.Fields))
	for i, f := range d.Fields {
		if !strings.HasPrefix(f.Path, "$") {
			return fmt.Errorf("field %d: path %q must start with $", i, f.Path)
		}
		if f.As == "" {
			return fmt.Errorf("field %d: path %s needs an attribute name", i, f.Path)
		}
		if _, dup := seen[f.As]; dup {
			return fmt.Errorf("duplicate attribute name: %s", f.As)
		}
		seen[f.As] = struct{}{}
		if f.Kind < KindText || f.Kind > KindNumeric {
			return fmt.Errorf("attribute %s: unknown kind %s", f.As, f.Kind)
		}
	}
	return nil
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == ':' || r == '-':
		default:
			return false
		}
	}
	return true
}

// SchemaBuilder accumulates fields for one JSON index.
type SchemaBuilder struct {
	def IndexDefinition
}

// NewJSONIndex starts a definition for documents whose keys begin with prefix.
func NewJSONIndex(name, prefix string) *SchemaBuilder {
	return &SchemaBuilder{def: IndexDefinition{Name: name, Prefix: prefix}}
}

// Text indexes path as a TEXT attribute.
func (b *SchemaBuilder) Text(path, as string) *SchemaBuilder {
	return b.add(SchemaField{Path: path, As: as, Kind: KindText})
}

// Tag indexes path as a TAG attribute; documents without it stay matchable.
func (b *SchemaBuilder) Tag(path, as string) *SchemaBuilder {
	return b.add(SchemaField{Path: path, As: as, Kind: KindTag, IndexMissing: true})
}

// Numeric indexes path as a sortable NUMERIC attribute.
func (b *SchemaBuilder) Numeric(path, as string) *SchemaBuilder {
	return b.add(SchemaField{Path: path, As: as, Kind: KindNumeric, Sortable: true})
}

func (b *SchemaBuilder) add(f SchemaField) *SchemaBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the definition.
func (b *SchemaBuilder) Build() (*IndexDefinition, error) {
	def := b.def
	def.Fields = append([]SchemaField(nil), b.def.Fields...)
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}
