// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package ast

import (
	"strconv"
	"strings"

	edn "github.com/alex-dixon/serde-edn"
)

// Pointer resolves a slash-delimited path against v and reports whether the
// target exists. The empty path names v itself; otherwise the path must
// begin with a slash. Each path token selects a map entry whose key is the
// string, keyword, or symbol with that name, or an element of a list or
// vector by decimal index. Tokens escape "/" as "~1" and "~" as "~0".
func Pointer(v Value, path string) (Value, bool) {
	if path == "" {
		return v, true
	}
	if !strings.HasPrefix(path, "/") {
		return nil, false
	}
	for _, tok := range strings.Split(path[1:], "/") {
		next, ok := descend(v, unescapeToken(tok))
		if !ok {
			return nil, false
		}
		v = next
	}
	return v, true
}

// Get selects a child of v: an element by int index for a list or vector,
// or a map entry by key. A string key matches a map key that is the string,
// keyword, or symbol of that name. A negative index counts backward from
// the end of the sequence.
func Get(v Value, key any) (Value, bool) {
	switch k := key.(type) {
	case int:
		seq, ok := sequence(v)
		if !ok {
			return nil, false
		}
		if k < 0 {
			k += len(seq)
		}
		if k < 0 || k >= len(seq) {
			return nil, false
		}
		return seq[k], true
	case string:
		m, ok := v.(*Map)
		if !ok {
			return nil, false
		}
		return getNamed(m, k)
	case Value:
		m, ok := v.(*Map)
		if !ok {
			return nil, false
		}
		return m.Get(k)
	}
	return nil, false
}

// Take replaces *v with nil and returns the original value.
func Take(v *Value) Value {
	old := *v
	*v = Nil{}
	return old
}

// Put stores nv at the location path names within *v, creating intermediate
// maps as needed. A path token addressing a map that lacks the named key
// inserts a keyword-keyed entry. It reports an error when the path
// traverses a value of the wrong kind or indexes a sequence out of range.
func Put(v *Value, path string, nv Value) error {
	if path == "" {
		*v = nv
		return nil
	}
	if !strings.HasPrefix(path, "/") {
		return edn.DataErrorf("path %q does not begin with a slash", path)
	}
	toks := strings.Split(path[1:], "/")
	for i, tok := range toks {
		toks[i] = unescapeToken(tok)
	}
	out, err := put(*v, toks, nv)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

func put(v Value, toks []string, nv Value) (Value, error) {
	if len(toks) == 0 {
		return nv, nil
	}
	tok := toks[0]
	switch t := v.(type) {
	case nil, Nil:
		m := NewMap()
		child, err := put(Nil{}, toks[1:], nv)
		if err != nil {
			return nil, err
		}
		m.Set(Keyword(tok), child)
		return m, nil
	case *Map:
		key, old := mapSlot(t, tok)
		child, err := put(old, toks[1:], nv)
		if err != nil {
			return nil, err
		}
		t.Set(key, child)
		return t, nil
	case List:
		return putSeq(t, toks, nv, func(s []Value) Value { return List(s) })
	case Vector:
		return putSeq(t, toks, nv, func(s []Value) Value { return Vector(s) })
	}
	return nil, edn.DataErrorf("cannot traverse a %s at %q", v.Kind(), tok)
}

func putSeq(seq []Value, toks []string, nv Value, wrap func([]Value) Value) (Value, error) {
	i, err := strconv.Atoi(toks[0])
	if err != nil {
		return nil, edn.DataErrorf("invalid index %q", toks[0])
	}
	if i < 0 {
		i += len(seq)
	}
	if i < 0 || i > len(seq) {
		return nil, edn.DataErrorf("index %q out of range", toks[0])
	}
	if i == len(seq) {
		seq = append(seq, Nil{})
	}
	child, err := put(seq[i], toks[1:], nv)
	if err != nil {
		return nil, err
	}
	seq[i] = child
	return wrap(seq), nil
}

// mapSlot resolves tok within m, returning the key to store through and the
// current value for that key, Nil if absent.
func mapSlot(m *Map, tok string) (key, old Value) {
	for _, k := range []Value{Keyword(tok), String(tok), Symbol(tok)} {
		if v, ok := m.Get(k); ok {
			return k, v
		}
	}
	return Keyword(tok), Nil{}
}

func descend(v Value, tok string) (Value, bool) {
	switch t := v.(type) {
	case *Map:
		return getNamed(t, tok)
	case List:
		return seqIndex(t, tok)
	case Vector:
		return seqIndex(t, tok)
	}
	return nil, false
}

func getNamed(m *Map, name string) (Value, bool) {
	for _, k := range []Value{Keyword(name), String(name), Symbol(name)} {
		if v, ok := m.Get(k); ok {
			return v, true
		}
	}
	return nil, false
}

func seqIndex(seq []Value, tok string) (Value, bool) {
	i, err := strconv.Atoi(tok)
	if err != nil || i < 0 || i >= len(seq) {
		return nil, false
	}
	return seq[i], true
}

func sequence(v Value) ([]Value, bool) {
	switch t := v.(type) {
	case List:
		return t, true
	case Vector:
		return t, true
	case Set:
		return t, true
	}
	return nil, false
}

func unescapeToken(tok string) string {
	if !strings.Contains(tok, "~") {
		return tok
	}
	tok = strings.ReplaceAll(tok, "~1", "/")
	return strings.ReplaceAll(tok, "~0", "~")
}
