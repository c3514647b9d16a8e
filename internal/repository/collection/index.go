package collection

import (
	"fmt"

	"github.com/ravi-m-fleetenable/global-search/internal/db"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/collection/field"
	"github.com/ravi-m-fleetenable/global-search/internal/repository/keyspace"
)

// buildIndex creates the JSON index definition of a collection.
// Every field is indexed under its own name; autocomplete paths are a second
// TEXT attribute over the same JSON path.
func buildIndex(keys keyspace.Keyspace, desc *domcol.Descriptor) (*db.IndexDefinition, error) {
	b := db.NewJSONIndex(keys.Index(desc), keys.DocPrefix(desc))

	for _, f := range desc.Fields() {
		path := jsonPath(f)
		switch f.FieldType() {
		case field.Text:
			b.Text(path, f.Name())
		case field.Tag:
			b.Tag(path, f.Name())
		case field.Numeric, field.Date:
			b.Numeric(path, f.Name())
		default:
			return nil, fmt.Errorf("unknown field type: %s", f.FieldType())
		}
	}

	for _, a := range desc.Autocomplete() {
		f, ok := desc.Field(a.Field)
		if !ok {
			return nil, fmt.Errorf("autocomplete field %q is not declared", a.Field)
		}
		b.Text(jsonPath(f), a.Path)
	}

	return b.Build()
}

func jsonPath(f field.Field) string {
	if f.IsMulti() {
		return "$." + f.Name() + "[*]"
	}
	return "$." + f.Name()
}
