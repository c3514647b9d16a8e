package embedded

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/collection/field"
)

const (
	// textAnalyzer splits on unicode word boundaries and lowercases, no stop words.
	textAnalyzer = "gs_text"

	// sourceField keeps the original JSON document for hit decoding.
	sourceField = "_source"

	// missingTag is indexed in place of an absent tag value so that
	// "field is unset" is a plain term query.
	missingTag = "\x00missing"
)

// buildMapping derives the index mapping from a collection descriptor.
func buildMapping(desc *domcol.Descriptor) (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(textAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("add analyzer: %w", err)
	}
	im.DefaultAnalyzer = textAnalyzer
	im.IndexDynamic = false
	im.StoreDynamic = false
	im.DocValuesDynamic = false

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false

	for _, f := range desc.Fields() {
		fm, err := fieldMapping(f.FieldType())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name(), err)
		}
		doc.AddFieldMappingsAt(f.Name(), fm)
	}
	for _, a := range desc.Autocomplete() {
		fm, _ := fieldMapping(field.Text)
		doc.AddFieldMappingsAt(a.Path, fm)
	}

	src := bleve.NewTextFieldMapping()
	src.Index = false
	src.Store = true
	src.IncludeInAll = false
	src.IncludeTermVectors = false
	src.DocValues = false
	doc.AddFieldMappingsAt(sourceField, src)

	im.DefaultMapping = doc
	return im, nil
}

func fieldMapping(ft field.Type) (*mapping.FieldMapping, error) {
	switch ft {
	case field.Text:
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = textAnalyzer
		fm.Store = true // highlighting reads stored values
		fm.IncludeInAll = false
		return fm, nil
	case field.Tag:
		fm := bleve.NewKeywordFieldMapping()
		fm.IncludeInAll = false
		return fm, nil
	case field.Numeric, field.Date:
		fm := bleve.NewNumericFieldMapping()
		fm.IncludeInAll = false
		return fm, nil
	default:
		return nil, fmt.Errorf("unknown field type %q", ft)
	}
}
