// Package retrieval queries the vector-search backend and narrows the result
// set to passages usable as answer context.
package retrieval

import (
	"encoding/json"
)

// Metadata keys lifted onto first-class fields.
const (
	metaModelKey      = "model_key"
	metaModelSlug     = "model_slug"
	metaModelName     = "model_name"
	metaDocumentTitle = "document_title"
	metaPageStart     = "page_start"
	metaPageEnd       = "page_end"
	metaSourceFile    = "source_file"
)

// Passage is a normalized unit of evidence retrieved from the search backend.
// Immutable after construction; lives only for the duration of one request.
type Passage struct {
	Text  string   `json:"text"`
	Score *float64 `json:"score,omitempty"`
	Meta  Meta     `json:"metadata"`
}

// Meta holds passage metadata. Recognized fields are lifted from the raw
// metadata map; every other key is preserved in Extra and re-emitted on
// marshal.
type Meta struct {
	ModelKey      string
	ModelSlug     string
	ModelName     string
	DocumentTitle string
	PageStart     *int
	PageEnd       *int
	SourceFile    string
	Extra         map[string]interface{}
}

// MarshalJSON renders the metadata as a single flat object, recognized fields
// alongside the passthrough keys.
func (m Meta) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Extra)+7)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.ModelKey != "" {
		out[metaModelKey] = m.ModelKey
	}
	if m.ModelSlug != "" {
		out[metaModelSlug] = m.ModelSlug
	}
	if m.ModelName != "" {
		out[metaModelName] = m.ModelName
	}
	if m.DocumentTitle != "" {
		out[metaDocumentTitle] = m.DocumentTitle
	}
	if m.PageStart != nil {
		out[metaPageStart] = *m.PageStart
	}
	if m.PageEnd != nil {
		out[metaPageEnd] = *m.PageEnd
	}
	if m.SourceFile != "" {
		out[metaSourceFile] = m.SourceFile
	}
	return json.Marshal(out)
}

// metaFromMap lifts recognized keys from a raw metadata map. Recognized keys
// carrying an unexpected type are dropped; everything else passes through.
func metaFromMap(raw map[string]interface{}) Meta {
	meta := Meta{
		ModelKey:      stringField(raw, metaModelKey),
		ModelSlug:     stringField(raw, metaModelSlug),
		ModelName:     stringField(raw, metaModelName),
		DocumentTitle: stringField(raw, metaDocumentTitle),
		PageStart:     pageField(raw, metaPageStart),
		PageEnd:       pageField(raw, metaPageEnd),
		SourceFile:    stringField(raw, metaSourceFile),
	}
	for k, v := range raw {
		switch k {
		case metaModelKey, metaModelSlug, metaModelName, metaDocumentTitle,
			metaPageStart, metaPageEnd, metaSourceFile:
			continue
		}
		if meta.Extra == nil {
			meta.Extra = make(map[string]interface{})
		}
		meta.Extra[k] = v
	}
	return meta
}

func stringField(raw map[string]interface{}, key string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}

func pageField(raw map[string]interface{}, key string) *int {
	if f, ok := raw[key].(float64); ok {
		n := int(f)
		return &n
	}
	return nil
}

// scoreFields is the priority order for resolving a numeric score from a raw
// search item. The first numeric match wins; semantics vary by backend (some
// report similarities, some distances).
var scoreFields = []string{"score", "distance", "relevance", "_similarity"}

func resolveScore(item map[string]interface{}) *float64 {
	for _, field := range scoreFields {
		if f, ok := item[field].(float64); ok {
			v := f
			return &v
		}
	}
	return nil
}
