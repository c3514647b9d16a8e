package field

import (
	"fmt"
	"regexp"
)

// Type is the indexing type of a field.
type Type string

// Field type constants.
const (
	// Text is an analyzed full-text field.
	Text Type = "text"
	// Tag is a tag (exact match) field.
	Tag     Type = "tag"
	Numeric Type = "numeric"
	// Date is stored as epoch seconds and indexed numerically.
	Date Type = "date"
)

var nameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Field is an immutable value object describing an indexed collection field.
type Field struct {
	name      string
	fieldType Type
	multi     bool
}

// New validates and creates a Field.
// Name must be lower snake case, max 64 chars.
func New(name string, ft Type) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 64 {
		return Field{}, fmt.Errorf("field name %q too long (max 64)", name)
	}
	if !nameRegex.MatchString(name) {
		return Field{}, fmt.Errorf("field name %q must be lower snake case", name)
	}
	switch ft {
	case Text, Tag, Numeric, Date:
	default:
		return Field{}, fmt.Errorf("invalid field type %q for %q", ft, name)
	}
	return Field{name: name, fieldType: ft}, nil
}

// MustNew is New for static registries; it panics on error.
func MustNew(name string, ft Type) Field {
	f, err := New(name, ft)
	if err != nil {
		panic(err)
	}
	return f
}

// Multi returns a copy of the field marked as holding an array of values.
func (f Field) Multi() Field {
	f.multi = true
	return f
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldType returns the field's indexing type.
func (f Field) FieldType() Type { return f.fieldType }

// IsMulti reports whether the field holds an array.
func (f Field) IsMulti() bool { return f.multi }

// IsNumeric reports whether values are indexed as numbers.
func (f Field) IsNumeric() bool { return f.fieldType == Numeric || f.fieldType == Date }
