// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

// Package ednjson converts between EDN values and JSON text.
//
// The two formats do not coincide, so conversion follows fixed rules. Going
// to JSON: characters become one-character strings, keywords and symbols
// become strings holding their name, lists, vectors, and sets all become
// arrays, and map keys that are not already textual are rendered as the
// canonical EDN text of the key. Going from JSON: numbers without a
// fraction or exponent become integers, arrays become vectors, and object
// keys become strings unless keywordized by an option.
package ednjson

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"

	edn "github.com/alex-dixon/serde-edn"
	"github.com/alex-dixon/serde-edn/ast"
)

// Options control conversion from JSON.
type Options struct {
	// KeywordKeys converts JSON object keys to keywords instead of strings.
	KeywordKeys bool
}

// ToJSON renders v as compact JSON text. Map entries keep their insertion
// order. Non-finite floats have no JSON form and report an error.
func ToJSON(v ast.Value) ([]byte, error) {
	return appendJSON(nil, v)
}

// ToJSONIndent renders v as indented JSON text.
func ToJSONIndent(v ast.Value, prefix, indent string) ([]byte, error) {
	compact, err := appendJSON(nil, v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gojson.Indent(&buf, compact, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromJSON parses a single JSON value from data into a generic EDN value.
func FromJSON(data []byte) (ast.Value, error) {
	return FromJSONWith(data, Options{})
}

// FromJSONWith is FromJSON with explicit conversion options.
func FromJSONWith(data []byte, o Options) (ast.Value, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := o.decodeValue(dec)
	if err == io.EOF {
		return nil, &edn.Error{Code: edn.CodeEOFWhileParsingValue}
	} else if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, &edn.Error{Code: edn.CodeTrailingCharacters}
	}
	return v, nil
}

func appendJSON(buf []byte, v ast.Value) ([]byte, error) {
	switch t := v.(type) {
	case ast.Nil:
		return append(buf, "null"...), nil
	case ast.Bool:
		return strconv.AppendBool(buf, bool(t)), nil
	case ast.Int:
		return strconv.AppendInt(buf, int64(t), 10), nil
	case ast.Float:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, edn.DataErrorf("float %v has no JSON form", f)
		}
		return strconv.AppendFloat(buf, f, 'g', -1, 64), nil
	case ast.String:
		return appendJSONString(buf, string(t))
	case ast.Char:
		return appendJSONString(buf, string(rune(t)))
	case ast.Keyword:
		return appendJSONString(buf, string(t))
	case ast.Symbol:
		return appendJSONString(buf, string(t))
	case ast.List:
		return appendJSONArray(buf, t)
	case ast.Vector:
		return appendJSONArray(buf, t)
	case ast.Set:
		return appendJSONArray(buf, t)
	case *ast.Map:
		buf = append(buf, '{')
		first := true
		for _, e := range t.Entries() {
			if !first {
				buf = append(buf, ',')
			}
			first = false
			var err error
			buf, err = appendJSONString(buf, objectKey(e.Key))
			if err != nil {
				return nil, err
			}
			buf = append(buf, ':')
			buf, err = appendJSON(buf, e.Value)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	}
	return nil, edn.DataErrorf("invalid value %v", v)
}

func appendJSONArray(buf []byte, vs []ast.Value) ([]byte, error) {
	buf = append(buf, '[')
	for i, v := range vs {
		if i > 0 {
			buf = append(buf, ',')
		}
		var err error
		buf, err = appendJSON(buf, v)
		if err != nil {
			return nil, err
		}
	}
	return append(buf, ']'), nil
}

func appendJSONString(buf []byte, s string) ([]byte, error) {
	data, err := gojson.Marshal(s)
	if err != nil {
		return nil, err
	}
	return append(buf, data...), nil
}

// objectKey renders a map key as a JSON object key. Textual keys use their
// text; anything else uses its canonical EDN encoding.
func objectKey(k ast.Value) string {
	switch t := k.(type) {
	case ast.String:
		return string(t)
	case ast.Keyword:
		return string(t)
	case ast.Symbol:
		return string(t)
	}
	return ast.Text(k)
}

func (o Options) decodeValue(dec *gojson.Decoder) (ast.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return o.fromToken(dec, tok)
}

func (o Options) fromToken(dec *gojson.Decoder, tok gojson.Token) (ast.Value, error) {
	switch t := tok.(type) {
	case nil:
		return ast.Nil{}, nil
	case bool:
		return ast.Bool(t), nil
	case string:
		return ast.String(t), nil
	case gojson.Number:
		return numberValue(t)
	case gojson.Delim:
		switch t {
		case '[':
			out := ast.Vector{}
			for dec.More() {
				v, err := o.decodeValue(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			if _, err := dec.Token(); err != nil { // closing bracket
				return nil, err
			}
			return out, nil
		case '{':
			m := ast.NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				name, ok := keyTok.(string)
				if !ok {
					return nil, edn.DataErrorf("invalid object key %v", keyTok)
				}
				v, err := o.decodeValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(o.key(name), v)
			}
			if _, err := dec.Token(); err != nil { // closing brace
				return nil, err
			}
			return m, nil
		}
	}
	return nil, edn.DataErrorf("unexpected JSON token %v", tok)
}

func (o Options) key(name string) ast.Value {
	if o.KeywordKeys {
		return ast.Keyword(name)
	}
	return ast.String(name)
}

// numberValue keeps a JSON number written without a fraction or exponent as
// an integer, falling back to a float when it does not fit in int64.
func numberValue(n gojson.Number) (ast.Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		z, err := n.Int64()
		if err == nil {
			return ast.Int(z), nil
		}
		if !errors.Is(err, strconv.ErrRange) {
			return nil, edn.DataErrorf("invalid number %q", s)
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, edn.DataErrorf("invalid number %q", s)
	}
	return ast.Float(f), nil
}
