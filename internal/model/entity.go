package model

import (
	"maps"
	"sort"
	"strings"
)

// Entity is a single record loaded from the remote API.
type Entity struct {
	// Name is the display name, unique within a fetch batch by convention only
	Name string `json:"name"`

	// Category is the collection the entity was loaded from
	Category Category `json:"category"`

	// URL is the source URL of the record when the API provides one
	URL string `json:"url,omitempty"`

	// Attributes holds the remaining scalar fields as strings
	Attributes map[string]string `json:"attributes,omitempty"`

	// Color is a presentation-only attribute changed by the user
	Color string `json:"color,omitempty"`
}

// Attr returns the attribute value or "n/a" when absent.
func (e Entity) Attr(key string) string {
	if v, ok := e.Attributes[key]; ok && v != "" {
		return v
	}

	return "n/a"
}

// Summary returns the card summary attributes of the entity's category.
func (e Entity) Summary() []Attribute {
	fields := e.Category.SummaryFields()
	out := make([]Attribute, 0, len(fields))

	for _, f := range fields {
		out = append(out, Attribute{Key: f, Label: Label(f), Value: e.Attr(f)})
	}

	return out
}

// SortedAttributes returns every attribute ordered by key.
func (e Entity) SortedAttributes() []Attribute {
	keys := make([]string, 0, len(e.Attributes))
	for k := range e.Attributes {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make([]Attribute, 0, len(keys))
	for _, k := range keys {
		out = append(out, Attribute{Key: k, Label: Label(k), Value: e.Attributes[k]})
	}

	return out
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	e.Attributes = maps.Clone(e.Attributes)

	return e
}

// Attribute is a labelled entity field.
type Attribute struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Label turns a snake_case field name into a display label ("eye_color" -> "Eye color").
func Label(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
