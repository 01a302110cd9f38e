package mf2

import (
	"reflect"
	"sort"
)

// Properties maps a property name to its ordered values. Every value is a
// sequence; a property with no values is removed rather than stored empty.
type Properties map[string][]any

// Item is a microformats2 object: vocabulary types plus properties.
type Item struct {
	Type       []string   `json:"type,omitempty" bson:"type"`
	Properties Properties `json:"properties" bson:"properties"`
}

// Document is the canonical in-memory representation of a post.
// Path and URL are assigned once when the post is created.
type Document struct {
	Type string `json:"type" bson:"postType"`
	Path string `json:"path" bson:"path"`
	URL  string `json:"url" bson:"url"`
	Mf2  *Item  `json:"mf2" bson:"mf2"`
}

// Clone returns a copy of the properties whose value slices are not shared
// with p. Nil stays nil.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = append([]any(nil), v...)
	}
	return out
}

// Names returns the property names in sorted order.
func (p Properties) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// First returns the first value of a property, if any.
func (p Properties) First(name string) (any, bool) {
	v, ok := p[name]
	if !ok || len(v) == 0 {
		return nil, false
	}
	return v[0], true
}

// FirstString returns the first value of a property when it is a string.
func (p Properties) FirstString(name string) string {
	v, ok := p.First(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Set stores values under name, or removes name when values is empty.
func (p Properties) Set(name string, values []any) {
	if len(values) == 0 {
		delete(p, name)
		return
	}
	p[name] = values
}

// Append adds values to the end of name's sequence, creating it if needed.
func (p Properties) Append(name string, values ...any) {
	if len(values) == 0 {
		return
	}
	p[name] = append(append([]any(nil), p[name]...), values...)
}

// Without returns the values of name with every value equal to one of
// remove taken out.
func (p Properties) Without(name string, remove []any) []any {
	out := make([]any, 0, len(p[name]))
	for _, v := range p[name] {
		if !containsValue(remove, v) {
			out = append(out, v)
		}
	}
	return out
}

func containsValue(values []any, v any) bool {
	for _, candidate := range values {
		if reflect.DeepEqual(candidate, v) {
			return true
		}
	}
	return false
}

// Clone deep-copies the item's type list and property sequences.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	return &Item{
		Type:       append([]string(nil), i.Type...),
		Properties: i.Properties.Clone(),
	}
}

// Filter returns an item holding only the named properties. With no names
// the whole item is returned unchanged. A filtered item omits the type
// list, as Micropub source queries do when properties are requested.
func (i *Item) Filter(names []string) *Item {
	if i == nil || len(names) == 0 {
		return i
	}
	out := &Item{Properties: Properties{}}
	for _, name := range names {
		if v, ok := i.Properties[name]; ok {
			out.Properties[name] = append([]any(nil), v...)
		}
	}
	return out
}

// Clone returns a copy of d whose mf2 item can be modified freely.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Mf2 = d.Mf2.Clone()
	return &c
}

// Properties returns the document's properties, or nil without an mf2 item.
func (d *Document) Properties() Properties {
	if d == nil || d.Mf2 == nil {
		return nil
	}
	return d.Mf2.Properties
}
