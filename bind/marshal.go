// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package bind

import (
	"io"
	"reflect"
	"sort"

	edn "github.com/alex-dixon/serde-edn"
	"github.com/alex-dixon/serde-edn/ast"
)

// A Marshaler renders itself as a value. Types implementing it take over
// encoding for any position they occupy.
type Marshaler interface {
	MarshalEDN() (ast.Value, error)
}

var marshalerType = reflect.TypeFor[Marshaler]()

// Marshal renders v as canonical compact EDN text. Structs encode as maps
// with keyword keys taken from the "edn" struct tag, or the field name
// where no tag is present; slices and arrays encode as vectors; Go maps
// encode as maps with entries ordered by key text.
func Marshal(v any) ([]byte, error) {
	av, err := marshalValue(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	return ast.Append(nil, av), nil
}

// MarshalString is Marshal rendered to a string.
func MarshalString(v any) (string, error) {
	data, err := Marshal(v)
	return string(data), err
}

// ToValue converts a native Go value to a generic value by the same rules
// as Marshal.
func ToValue(v any) (ast.Value, error) {
	return marshalValue(reflect.ValueOf(v))
}

// An Encoder writes a sequence of EDN values to a stream, one per line.
type Encoder struct {
	w io.Writer
}

// NewEncoder constructs an encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

// Encode writes the encoding of v followed by a newline.
func (e *Encoder) Encode(v any) error {
	av, err := marshalValue(reflect.ValueOf(v))
	if err != nil {
		return err
	}
	buf := ast.Append(nil, av)
	buf = append(buf, '\n')
	_, err = e.w.Write(buf)
	return err
}

func marshalValue(rv reflect.Value) (ast.Value, error) {
	if !rv.IsValid() {
		return ast.Nil{}, nil
	}
	if rv.Type().Implements(marshalerType) {
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return ast.Nil{}, nil
		}
		return rv.Interface().(Marshaler).MarshalEDN()
	}
	if rv.CanAddr() && rv.Addr().Type().Implements(marshalerType) {
		return rv.Addr().Interface().(Marshaler).MarshalEDN()
	}
	if av, ok := rv.Interface().(ast.Value); ok {
		return av, nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ast.Nil{}, nil
		}
		return marshalValue(rv.Elem())
	case reflect.Bool:
		return ast.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ast.Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > 1<<63-1 {
			return nil, edn.DataErrorf("unsigned value %d overflows the integer range", u)
		}
		return ast.Int(u), nil
	case reflect.Float32, reflect.Float64:
		return ast.Float(rv.Float()), nil
	case reflect.String:
		return ast.String(rv.String()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return ast.String(rv.Bytes()), nil
		}
		if rv.IsNil() {
			return ast.Nil{}, nil
		}
		return marshalSeq(rv)
	case reflect.Array:
		return marshalSeq(rv)
	case reflect.Map:
		if rv.IsNil() {
			return ast.Nil{}, nil
		}
		return marshalMap(rv)
	case reflect.Struct:
		return marshalStruct(rv)
	}
	return nil, edn.DataErrorf("cannot encode a value of type %s", rv.Type())
}

func marshalSeq(rv reflect.Value) (ast.Value, error) {
	out := make(ast.Vector, rv.Len())
	for i := range out {
		ev, err := marshalValue(rv.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = ev
	}
	return out, nil
}

// marshalMap encodes a Go map with entries sorted by the canonical text of
// their keys, so the output is deterministic.
func marshalMap(rv reflect.Value) (ast.Value, error) {
	entries := make([]ast.Entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		kv, err := marshalValue(iter.Key())
		if err != nil {
			return nil, err
		}
		vv, err := marshalValue(iter.Value())
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.Entry{Key: kv, Value: vv})
	}
	sort.Slice(entries, func(i, j int) bool {
		return ast.Text(entries[i].Key) < ast.Text(entries[j].Key)
	})
	return ast.NewMap(entries...), nil
}

func marshalStruct(rv reflect.Value) (ast.Value, error) {
	info := infoFor(rv.Type())
	m := ast.NewMap()
	for _, f := range info.fields {
		fv, ok := structField(rv, f.index)
		if !ok {
			continue // embedded nil pointer
		}
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		ev, err := marshalValue(fv)
		if err != nil {
			return nil, err
		}
		m.Set(ast.Keyword(f.name), ev)
	}
	return m, nil
}

// structField walks an index path without allocating, reporting false when
// an embedded pointer along the path is nil.
func structField(rv reflect.Value, index []int) (reflect.Value, bool) {
	for _, i := range index {
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return reflect.Value{}, false
			}
			rv = rv.Elem()
		}
		rv = rv.Field(i)
	}
	return rv, true
}
