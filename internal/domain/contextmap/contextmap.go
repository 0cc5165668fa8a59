// Package contextmap is the schema-less, insertion-ordered context tree used for
// request context, interpretation hints and content rows.
//
// A Map is immutable from the outside: every mutator returns a new Map. Values
// can be marked soft (inferred rather than supplied); soft values enrich the
// context but never act as hard filters.
package contextmap

import (
	"slices"
	"sort"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind int

// Value kinds.
const (
	KindScalar Kind = iota
	KindList
	KindMap
)

// Value is a tagged union: a scalar string, a list of strings or a nested Map.
type Value struct {
	kind   Kind
	scalar string
	list   []string
	nested Map
}

// Scalar creates a scalar value.
func Scalar(s string) Value { return Value{kind: KindScalar, scalar: s} }

// List creates a list value. Blank items and duplicates are dropped, first-seen order kept.
func List(items ...string) Value { return Value{kind: KindList, list: unionStrings(nil, items)} }

// Nested creates a map value.
func Nested(m Map) Value { return Value{kind: KindMap, nested: m} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// String returns the scalar, or "" for other kinds.
func (v Value) String() string {
	if v.kind != KindScalar {
		return ""
	}
	return v.scalar
}

// Strings returns the list items; a scalar is returned as a one-element list.
func (v Value) Strings() []string {
	switch v.kind {
	case KindList:
		return slices.Clone(v.list)
	case KindScalar:
		if isBlank(v.scalar) {
			return nil
		}
		return []string{v.scalar}
	default:
		return nil
	}
}

// Map returns the nested map, or an empty Map for other kinds.
func (v Value) Map() Map {
	if v.kind != KindMap {
		return Map{}
	}
	return v.nested
}

// IsBlank reports whether the value carries nothing: a blank scalar, an empty list or an empty map.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindScalar:
		return isBlank(v.scalar)
	case KindList:
		return len(v.list) == 0
	default:
		return v.nested.IsEmpty()
	}
}

// Map is an insertion-ordered string-keyed tree.
type Map struct {
	keys   []string
	values map[string]Value
	soft   map[string]struct{} // keys of this level holding soft values
}

// New returns an empty Map.
func New() Map { return Map{} }

// Len returns the number of top-level keys.
func (m Map) Len() int { return len(m.keys) }

// IsEmpty reports whether the map has no keys.
func (m Map) IsEmpty() bool { return len(m.keys) == 0 }

// Keys returns the top-level keys in insertion order.
func (m Map) Keys() []string { return slices.Clone(m.keys) }

// Get is the single deep-read primitive: it follows path through nested maps.
func (m Map) Get(path ...string) (Value, bool) {
	if len(path) == 0 {
		return Value{}, false
	}
	v, ok := m.values[path[0]]
	if !ok {
		return Value{}, false
	}
	if len(path) == 1 {
		return v, true
	}
	if v.kind != KindMap {
		return Value{}, false
	}
	return v.nested.Get(path[1:]...)
}

// String reads a scalar at path; missing or non-scalar yields "".
func (m Map) String(path ...string) string {
	v, ok := m.Get(path...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.String())
}

// IsSoft reports whether the value at path (or one of its ancestors) was marked soft.
func (m Map) IsSoft(path ...string) bool {
	if len(path) == 0 {
		return false
	}
	if _, ok := m.soft[path[0]]; ok {
		return true
	}
	if len(path) == 1 {
		return false
	}
	v, ok := m.values[path[0]]
	if !ok || v.kind != KindMap {
		return false
	}
	return v.nested.IsSoft(path[1:]...)
}

// With returns a copy of m with v stored at path. Intermediate maps are created as needed.
func (m Map) With(v Value, path ...string) Map {
	return m.set(v, false, path)
}

// WithSoft is With but marks the stored value soft.
func (m Map) WithSoft(v Value, path ...string) Map {
	return m.set(v, true, path)
}

func (m Map) set(v Value, soft bool, path []string) Map {
	if len(path) == 0 {
		return m
	}
	out := m.clone()
	key := path[0]
	if len(path) == 1 {
		out.put(key, v)
		delete(out.soft, key)
		if soft {
			out.markSoft(key)
		}
		return out
	}
	child := Map{}
	if existing, ok := out.values[key]; ok && existing.kind == KindMap {
		child = existing.nested
	}
	out.put(key, Nested(child.set(v, soft, path[1:])))
	return out
}

// HardScalars returns the top-level scalar entries that are not soft.
func (m Map) HardScalars() map[string]string {
	out := make(map[string]string)
	for _, k := range m.keys {
		v := m.values[k]
		if v.kind == KindScalar && !v.IsBlank() && !m.IsSoft(k) {
			out[k] = strings.TrimSpace(v.scalar)
		}
	}
	return out
}

// FromAny converts a decoded JSON object into a Map. Keys are sorted because Go
// maps carry no order; use UnmarshalJSON to keep document order.
func FromAny(raw map[string]any) Map {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := Map{}
	for _, k := range keys {
		if v, ok := valueFromAny(raw[k]); ok {
			out.put(k, v)
		}
	}
	return out
}

// ToAny converts the Map back into plain Go values (for JSON encoding or logging).
func (m Map) ToAny() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		v := m.values[k]
		switch v.kind {
		case KindScalar:
			out[k] = v.scalar
		case KindList:
			out[k] = slices.Clone(v.list)
		case KindMap:
			out[k] = v.nested.ToAny()
		}
	}
	return out
}

func (m Map) clone() Map {
	out := Map{
		keys:   slices.Clone(m.keys),
		values: make(map[string]Value, len(m.values)+1),
	}
	for k, v := range m.values {
		out.values[k] = v
	}
	if len(m.soft) > 0 {
		out.soft = make(map[string]struct{}, len(m.soft))
		for p := range m.soft {
			out.soft[p] = struct{}{}
		}
	}
	return out
}

// put stores v under key, appending key on first insert. Callers own the receiver.
func (m *Map) put(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *Map) markSoft(key string) {
	if m.soft == nil {
		m.soft = make(map[string]struct{})
	}
	m.soft[key] = struct{}{}
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func unionStrings(dst, items []string) []string {
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || slices.Contains(dst, it) {
			continue
		}
		dst = append(dst, it)
	}
	return dst
}
