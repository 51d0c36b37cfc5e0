package manifest

import (
	"fmt"
	"sort"
)

// Document is a parsed YAML mapping that remembers key order. Nested
// mappings are *Document as well; sequences are []any; scalars keep the
// type the YAML decoder assigned (string, int, float64, bool, nil).
type Document struct {
	keys   []string
	values map[string]any
}

func newDocument(capacity int) *Document {
	return &Document{
		keys:   make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

// set appends key. Returns false if key was already present.
func (d *Document) set(key string, value any) bool {
	if _, dup := d.values[key]; dup {
		return false
	}
	d.keys = append(d.keys, key)
	d.values[key] = value
	return true
}

// Keys returns the keys in document order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// String returns the value under key if it is present and a string.
func (d *Document) String(key string) (string, bool) {
	v, ok := d.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Map converts the document to plain Go maps and slices, dropping key order.
func (d *Document) Map() map[string]any {
	out := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		out[k] = plain(d.values[k])
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.Map()
	case []any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = plain(item)
		}
		return items
	default:
		return v
	}
}

// FromMap builds a Document from a programmatic mapping, for callers that
// already hold parsed data. Keys are ordered lexically since Go maps carry
// no order. Nested map[string]any and string-keyed maps become *Document;
// []string and []any become []any.
func FromMap(m map[string]any) *Document {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := newDocument(len(keys))
	for _, k := range keys {
		d.set(k, normalize(m[k]))
	}
	return d
}

func normalize(v any) any {
	switch t := v.(type) {
	case *Document:
		return t
	case map[string]any:
		return FromMap(t)
	case map[string]bool:
		m := make(map[string]any, len(t))
		for k, b := range t {
			m[k] = b
		}
		return FromMap(m)
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return FromMap(m)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = item
		}
		return FromMap(m)
	case []any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = normalize(item)
		}
		return items
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return items
	default:
		return v
	}
}
