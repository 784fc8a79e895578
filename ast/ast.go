// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

// Package ast defines a generic value model for EDN documents, a parser that
// constructs values from EDN source, and an encoder that renders them back
// to text.
package ast

import (
	"fmt"
	"math"
)

// A Kind identifies the variant of a Value.
type Kind int

// Constants defining the valid Kind values.
const (
	NilKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	CharKind
	KeywordKind
	SymbolKind
	ListKind
	VectorKind
	SetKind
	MapKind
)

var kindStr = [...]string{
	NilKind:     "nil",
	BoolKind:    "bool",
	IntKind:     "integer",
	FloatKind:   "float",
	StringKind:  "string",
	CharKind:    "character",
	KeywordKind: "keyword",
	SymbolKind:  "symbol",
	ListKind:    "list",
	VectorKind:  "vector",
	SetKind:     "set",
	MapKind:     "map",
}

func (k Kind) String() string {
	if int(k) < len(kindStr) {
		return kindStr[k]
	}
	return "invalid"
}

// A Value is an arbitrary EDN value. The set of implementations is closed:
// a Value is one of Nil, Bool, Int, Float, String, Char, Keyword, Symbol,
// List, Vector, Set, or *Map.
type Value interface {
	// Kind reports the variant of the value.
	Kind() Kind

	// Clone returns a deep copy of the value. The copy shares no containers
	// with the original.
	Clone() Value

	// String renders the canonical compact encoding of the value.
	String() string

	sealed()
}

// Nil is the nil value.
type Nil struct{}

// Bool is a boolean value.
type Bool bool

// Int is an integer value. Integer literals and floating-point literals
// decode to distinct kinds, and the distinction is part of value identity.
type Int int64

// Float is a floating-point value.
type Float float64

// String is a string value, stored without quotes and with escape sequences
// decoded.
type String string

// Char is a single code point.
type Char rune

// Keyword is a keyword, stored without its leading colon.
type Keyword string

// Symbol is a bare symbol.
type Symbol string

// List is a sequence of values written with parentheses.
type List []Value

// Vector is a sequence of values written with square brackets.
type Vector []Value

// Set is a collection of values written with #{}. Element order is not
// semantically significant, but insertion order is preserved so that a
// decoded document re-encodes byte-identically.
type Set []Value

func (Nil) Kind() Kind     { return NilKind }
func (Bool) Kind() Kind    { return BoolKind }
func (Int) Kind() Kind     { return IntKind }
func (Float) Kind() Kind   { return FloatKind }
func (String) Kind() Kind  { return StringKind }
func (Char) Kind() Kind    { return CharKind }
func (Keyword) Kind() Kind { return KeywordKind }
func (Symbol) Kind() Kind  { return SymbolKind }
func (List) Kind() Kind    { return ListKind }
func (Vector) Kind() Kind  { return VectorKind }
func (Set) Kind() Kind     { return SetKind }

func (v Nil) Clone() Value     { return v }
func (v Bool) Clone() Value    { return v }
func (v Int) Clone() Value     { return v }
func (v Float) Clone() Value   { return v }
func (v String) Clone() Value  { return v }
func (v Char) Clone() Value    { return v }
func (v Keyword) Clone() Value { return v }
func (v Symbol) Clone() Value  { return v }
func (v List) Clone() Value    { return List(cloneSlice(v)) }
func (v Vector) Clone() Value  { return Vector(cloneSlice(v)) }
func (v Set) Clone() Value     { return Set(cloneSlice(v)) }

func cloneSlice(vs []Value) []Value {
	if vs == nil {
		return nil
	}
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = v.Clone()
	}
	return out
}

func (v Nil) String() string     { return Text(v) }
func (v Bool) String() string    { return Text(v) }
func (v Int) String() string     { return Text(v) }
func (v Float) String() string   { return Text(v) }
func (v String) String() string  { return Text(v) }
func (v Char) String() string    { return Text(v) }
func (v Keyword) String() string { return Text(v) }
func (v Symbol) String() string  { return Text(v) }
func (v List) String() string    { return Text(v) }
func (v Vector) String() string  { return Text(v) }
func (v Set) String() string     { return Text(v) }

func (Nil) sealed()     {}
func (Bool) sealed()    {}
func (Int) sealed()     {}
func (Float) sealed()   {}
func (String) sealed()  {}
func (Char) sealed()    {}
func (Keyword) sealed() {}
func (Symbol) sealed()  {}
func (List) sealed()    {}
func (Vector) sealed()  {}
func (Set) sealed()     {}

// Equal reports whether a and b are structurally equal. Equality is
// tag-sensitive: a List is never equal to a Vector or a Set even when their
// elements agree, and an Int is never equal to a Float. Maps compare as
// unordered collections of entries; the other sequences compare in order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch t := a.(type) {
	case Nil:
		return true
	case Bool:
		return t == b.(Bool)
	case Int:
		return t == b.(Int)
	case Float:
		return t == b.(Float)
	case String:
		return t == b.(String)
	case Char:
		return t == b.(Char)
	case Keyword:
		return t == b.(Keyword)
	case Symbol:
		return t == b.(Symbol)
	case List:
		return equalSlice(t, b.(List))
	case Vector:
		return equalSlice(t, b.(Vector))
	case Set:
		return equalSlice(t, b.(Set))
	case *Map:
		return t.equal(b.(*Map))
	}
	return false
}

func equalSlice(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if !Equal(v, b[i]) {
			return false
		}
	}
	return true
}

// ToValue converts a native Go value to a Value. It accepts nil, booleans,
// integer and floating-point types, strings, []byte, []any, map[string]any,
// and values that are already a Value. It panics for any other type.
func ToValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Nil{}
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(t)
	case int8:
		return Int(t)
	case int16:
		return Int(t)
	case int32:
		return Int(t)
	case int64:
		return Int(t)
	case uint:
		return uintValue(uint64(t))
	case uint8:
		return Int(t)
	case uint16:
		return Int(t)
	case uint32:
		return Int(t)
	case uint64:
		return uintValue(t)
	case float32:
		return Float(t)
	case float64:
		return Float(t)
	case string:
		return String(t)
	case []byte:
		return String(t)
	case []any:
		out := make(Vector, len(t))
		for i, e := range t {
			out[i] = ToValue(e)
		}
		return out
	case map[string]any:
		m := NewMap()
		for k, e := range t {
			m.Set(String(k), ToValue(e))
		}
		return m
	}
	panic(fmt.Sprintf("ast: cannot convert %T to a Value", v))
}

func uintValue(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(u)
	}
	return Int(u)
}
