// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package ast

import "iter"

// A Map is a collection of key/value entries. Any Value may serve as a key,
// including containers; two keys that are structurally equal address the
// same entry. Entries preserve insertion order, and storing through an
// existing key replaces its value without moving the entry.
//
// A nil *Map is valid for read operations and behaves as an empty map.
type Map struct {
	entries []Entry
	index   map[string]int // canonical key text to entries offset
}

// An Entry is a single key/value pair of a Map.
type Entry struct {
	Key   Value
	Value Value
}

// NewMap constructs a Map from the given entries. Later entries with
// duplicate keys replace earlier ones.
func NewMap(entries ...Entry) *Map {
	m := &Map{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

func (m *Map) Kind() Kind { return MapKind }

func (m *Map) String() string { return Text(m) }

func (*Map) sealed() {}

// Clone returns a deep copy of m.
func (m *Map) Clone() Value {
	if m == nil {
		return (*Map)(nil)
	}
	out := &Map{
		entries: make([]Entry, len(m.entries)),
		index:   make(map[string]int, len(m.entries)),
	}
	for i, e := range m.entries {
		out.entries[i] = Entry{Key: e.Key.Clone(), Value: e.Value.Clone()}
	}
	for k, i := range m.index {
		out.index[k] = i
	}
	return out
}

// Len reports the number of entries in m.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Get reports whether key is present in m, and if so returns its value.
func (m *Map) Get(key Value) (Value, bool) {
	if m == nil || len(m.entries) == 0 {
		return nil, false
	}
	i, ok := m.index[Text(key)]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Set stores value under key. If key is already present its value is
// replaced in place; otherwise a new entry is appended.
func (m *Map) Set(key, value Value) {
	ks := Text(key)
	if i, ok := m.index[ks]; ok {
		m.entries[i].Value = value
		return
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	m.index[ks] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Delete removes the entry for key, and reports whether an entry was
// removed.
func (m *Map) Delete(key Value) bool {
	if m == nil || len(m.entries) == 0 {
		return false
	}
	ks := Text(key)
	i, ok := m.index[ks]
	if !ok {
		return false
	}
	delete(m.index, ks)
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	for k, j := range m.index {
		if j > i {
			m.index[k] = j - 1
		}
	}
	return true
}

// Entries returns the entries of m in insertion order. The slice is a copy;
// modifying it does not affect m, but the keys and values are shared.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// All ranges over the entries of m in insertion order.
func (m *Map) All() iter.Seq2[Value, Value] {
	return func(yield func(Value, Value) bool) {
		if m == nil {
			return
		}
		for _, e := range m.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Keys returns the keys of m in insertion order.
func (m *Map) Keys() []Value {
	if m == nil {
		return nil
	}
	out := make([]Value, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Key
	}
	return out
}

func (m *Map) equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	if m == nil || o == nil {
		return true
	}
	for _, e := range m.entries {
		ov, ok := o.Get(e.Key)
		if !ok || !Equal(e.Value, ov) {
			return false
		}
	}
	return true
}
