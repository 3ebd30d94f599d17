package mapping

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// OrderedMap is a string-keyed map that remembers insertion order.
// It is the output structure built by the Engine.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

// NewOrderedMap creates an empty OrderedMap with room for n keys.
func NewOrderedMap(n int) *OrderedMap {
	return &OrderedMap{
		keys:   make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

// Set stores value under key. A new key is appended; an existing key keeps
// its position.
func (m *OrderedMap) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.values[key] = value
}

// Get returns the value stored under key.
func (m *OrderedMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	return slices.Clone(m.keys)
}

// Len returns the number of keys.
func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// Put writes value under the nested key sequence, creating intermediate maps.
// An intermediate that is not an *OrderedMap is replaced.
func (m *OrderedMap) Put(keys []string, value any) {
	if len(keys) == 0 {
		return
	}

	cur := m
	last := len(keys) - 1

	for _, key := range keys[:last] {
		v, _ := cur.Get(key)

		next, ok := v.(*OrderedMap)
		if !ok {
			next = NewOrderedMap(4)
			cur.Set(key, next)
		}

		cur = next
	}

	cur.Set(keys[last], value)
}

// ToMap converts the OrderedMap, recursively, into plain maps.
func (m *OrderedMap) ToMap() map[string]any {
	out := make(map[string]any, len(m.keys))

	for _, k := range m.keys {
		if nested, ok := m.values[k].(*OrderedMap); ok {
			out[k] = nested.ToMap()
			continue
		}

		out[k] = m.values[k]
	}

	return out
}

// MarshalJSON writes the keys in insertion order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}

		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// sortedKeys returns the keys of a plain map in sorted order.
func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
