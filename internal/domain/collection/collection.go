package collection

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/collection/field"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"
)

var nameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// IDField is the record id path present in every collection.
const IDField = "id"

// CreatedAtField is the date every collection's date-range filter applies to.
const CreatedAtField = "created_at"

const autocompleteSuffix = "_autocomplete"

// AutocompleteField maps a display field to its autocomplete-indexed path.
type AutocompleteField struct {
	Field string
	Path  string
}

// Descriptor is a registered searchable collection (immutable value object).
type Descriptor struct {
	name         string
	index        string
	fields       []field.Field
	byName       map[string]field.Field
	searchable   []string
	autocomplete []AutocompleteField
	statusField  string
	display      []string
	facets       []facet.Spec
}

// Spec is the static definition a Descriptor is built from.
type Spec struct {
	Name         string
	Fields       []field.Field
	Searchable   []string
	Autocomplete []string
	StatusField  string
	Display      []string
	Facets       []facet.Spec
}

// New validates spec and builds a Descriptor. The index is named <name>_search
// and autocomplete paths are <field>_autocomplete.
func New(spec Spec) (*Descriptor, error) {
	if !nameRegex.MatchString(spec.Name) {
		return nil, fmt.Errorf("invalid collection name %q", spec.Name)
	}

	d := &Descriptor{
		name:        spec.Name,
		index:       spec.Name + "_search",
		byName:      make(map[string]field.Field, len(spec.Fields)+1),
		statusField: spec.StatusField,
		display:     slices.Clone(spec.Display),
		facets:      slices.Clone(spec.Facets),
	}

	d.addField(field.MustNew(IDField, field.Tag))
	for _, f := range spec.Fields {
		if _, dup := d.byName[f.Name()]; dup {
			return nil, fmt.Errorf("%s: duplicate field %q", spec.Name, f.Name())
		}
		d.addField(f)
	}

	for _, s := range spec.Searchable {
		if _, ok := d.byName[s]; !ok {
			return nil, fmt.Errorf("%s: searchable field %q is not indexed", spec.Name, s)
		}
		d.searchable = append(d.searchable, s)
	}
	for _, a := range spec.Autocomplete {
		f, ok := d.byName[a]
		if !ok || f.FieldType() != field.Text {
			return nil, fmt.Errorf("%s: autocomplete field %q must be an indexed text field", spec.Name, a)
		}
		d.autocomplete = append(d.autocomplete, AutocompleteField{Field: a, Path: a + autocompleteSuffix})
	}
	if spec.StatusField != "" {
		if _, ok := d.byName[spec.StatusField]; !ok {
			return nil, fmt.Errorf("%s: status field %q is not indexed", spec.Name, spec.StatusField)
		}
	}
	if _, ok := d.byName[CreatedAtField]; !ok {
		return nil, fmt.Errorf("%s: %s is required", spec.Name, CreatedAtField)
	}
	for _, fs := range spec.Facets {
		f, ok := d.byName[fs.Path]
		if !ok {
			return nil, fmt.Errorf("%s: facet %q on unknown field %q", spec.Name, fs.Name, fs.Path)
		}
		if fs.Type == facet.Date && f.FieldType() != field.Date {
			return nil, fmt.Errorf("%s: date facet %q needs a date field", spec.Name, fs.Name)
		}
	}
	return d, nil
}

func (d *Descriptor) addField(f field.Field) {
	d.fields = append(d.fields, f)
	d.byName[f.Name()] = f
}

// Name returns the collection name.
func (d *Descriptor) Name() string { return d.name }

// Index returns the search index identifier (without any storage prefix).
func (d *Descriptor) Index() string { return d.index }

// Fields returns every indexed field, id first.
func (d *Descriptor) Fields() []field.Field { return slices.Clone(d.fields) }

// Field looks up an indexed field by name.
func (d *Descriptor) Field(name string) (field.Field, bool) {
	f, ok := d.byName[name]
	return f, ok
}

// Searchable returns the plain-text searchable fields in declaration order.
func (d *Descriptor) Searchable() []string { return slices.Clone(d.searchable) }

// Autocomplete returns the autocomplete fields in declaration order.
func (d *Descriptor) Autocomplete() []AutocompleteField { return slices.Clone(d.autocomplete) }

// PrimaryAutocomplete returns the first autocomplete field, used as the
// canonical suggestion source.
func (d *Descriptor) PrimaryAutocomplete() (AutocompleteField, bool) {
	if len(d.autocomplete) == 0 {
		return AutocompleteField{}, false
	}
	return d.autocomplete[0], true
}

// StatusField returns the field status filters apply to.
func (d *Descriptor) StatusField() string { return d.statusField }

// DateField returns the field date-range filters apply to.
func (d *Descriptor) DateField() string { return CreatedAtField }

// Display returns the fields a formatted result carries.
func (d *Descriptor) Display() []string { return slices.Clone(d.display) }

// Facets returns the facet specs, empty when the collection has none.
func (d *Descriptor) Facets() []facet.Spec { return slices.Clone(d.facets) }

// FieldType resolves a query path to its index type. Autocomplete paths
// resolve to text.
func (d *Descriptor) FieldType(path string) (field.Type, bool) {
	if f, ok := d.byName[path]; ok {
		return f.FieldType(), true
	}
	for _, a := range d.autocomplete {
		if a.Path == path {
			return field.Text, true
		}
	}
	return "", false
}

// TextFields returns the searchable fields that have no autocomplete path.
func (d *Descriptor) TextFields() []string {
	out := make([]string, 0, len(d.searchable))
	for _, s := range d.searchable {
		if !d.hasAutocomplete(s) {
			out = append(out, s)
		}
	}
	return out
}

func (d *Descriptor) hasAutocomplete(name string) bool {
	for _, a := range d.autocomplete {
		if a.Field == name {
			return true
		}
	}
	return false
}
