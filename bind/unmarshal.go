// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

// Package bind converts between EDN text and native Go values using
// reflection. Struct fields bind to map entries by field name or by an
// "edn" struct tag; interface targets receive generic ast values.
package bind

import (
	"io"
	"reflect"

	edn "github.com/alex-dixon/serde-edn"
	"github.com/alex-dixon/serde-edn/ast"
)

// An Unmarshaler decodes itself from a parsed value. Types implementing it
// take over decoding for any position they occupy.
type Unmarshaler interface {
	UnmarshalEDN(v ast.Value) error
}

var (
	astValueType    = reflect.TypeFor[ast.Value]()
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
)

// Unmarshal parses a single EDN value from data and stores the result in
// the value pointed to by v. It reports an error if data holds no value or
// if anything besides whitespace follows the first one.
func Unmarshal(data []byte, v any) error {
	return oneValue(edn.NewSliceScanner(data), v)
}

// UnmarshalString parses a single EDN value from s into v, with the same
// contract as Unmarshal.
func UnmarshalString(s string, v any) error {
	return oneValue(edn.NewStringScanner(s), v)
}

func oneValue(s *edn.Scanner, v any) error {
	d := &Decoder{s: s, max: edn.DefaultMaxDepth}
	if err := d.Decode(v); err == io.EOF {
		return &edn.Error{Code: edn.CodeEOFWhileParsingValue}
	} else if err != nil {
		return err
	}
	return d.checkEnd()
}

// A Decoder reads a sequence of top-level EDN values from a stream,
// decoding each into a Go value.
type Decoder struct {
	s   *edn.Scanner
	max int
}

// NewDecoder constructs a decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{s: edn.NewScanner(r), max: edn.DefaultMaxDepth}
}

// AllowComments configures whether the decoder skips line comments.
func (d *Decoder) AllowComments(ok bool) { d.s.AllowComments(ok) }

// SetMaxDepth sets the container nesting limit. A value that nests more
// than n containers deep fails with a recursion limit error. If n <= 0 the
// limit is restored to the default.
func (d *Decoder) SetMaxDepth(n int) {
	if n <= 0 {
		n = edn.DefaultMaxDepth
	}
	d.max = n
}

// Decode reads the next value from the stream into the value pointed to by
// v, which must be a non-nil pointer. At the end of input it returns
// io.EOF.
func (d *Decoder) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return edn.DataErrorf("target is %T, not a non-nil pointer", v)
	}
	if !d.next() {
		if err := d.s.Err(); err != nil {
			return err
		}
		return io.EOF
	}
	return d.value(rv.Elem(), 0)
}

// value decodes the token currently loaded in the scanner into rv.
func (d *Decoder) value(rv reflect.Value, depth int) error {
	// nil zeroes any target, including pointers.
	if d.s.Token() == edn.Nil {
		rv.SetZero()
		return nil
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		if rv.Type().Implements(unmarshalerType) {
			return d.custom(rv, depth)
		}
		rv = rv.Elem()
	}
	if rv.CanAddr() && rv.Addr().Type().Implements(unmarshalerType) {
		return d.custom(rv.Addr(), depth)
	}
	if rv.Type() == astValueType || rv.Kind() == reflect.Interface && rv.NumMethod() == 0 {
		av, err := d.astValue(depth)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(av))
		return nil
	}

	switch tok := d.s.Token(); tok {
	case edn.True, edn.False:
		if rv.Kind() != reflect.Bool {
			return d.dataErr("cannot store a boolean in %s", rv.Type())
		}
		rv.SetBool(tok == edn.True)
		return nil
	case edn.Int:
		return d.intValue(rv)
	case edn.Float:
		return d.floatValue(rv)
	case edn.String:
		return d.stringValue(rv, "string")
	case edn.Keyword:
		return d.stringValue(rv, "keyword")
	case edn.Symbol:
		return d.stringValue(rv, "symbol")
	case edn.Char:
		return d.charValue(rv)
	case edn.LParen:
		return d.seq(rv, depth, edn.RParen, edn.CodeEOFWhileParsingList)
	case edn.LSquare:
		return d.seq(rv, depth, edn.RSquare, edn.CodeEOFWhileParsingVector)
	case edn.SetOpen:
		return d.seq(rv, depth, edn.RBrace, edn.CodeEOFWhileParsingSet)
	case edn.LBrace:
		return d.mapValue(rv, depth)
	default:
		return d.syntaxErr(edn.CodeExpectedValue)
	}
}

func (d *Decoder) custom(rv reflect.Value, depth int) error {
	av, err := d.astValue(depth)
	if err != nil {
		return err
	}
	return rv.Interface().(Unmarshaler).UnmarshalEDN(av)
}

func (d *Decoder) intValue(rv reflect.Value) error {
	z, err := d.s.Int64()
	if err != nil {
		return d.dataErr("integer out of range: %s", d.s.Text())
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.OverflowInt(z) {
			return d.dataErr("integer %d overflows %s", z, rv.Type())
		}
		rv.SetInt(z)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if z < 0 || rv.OverflowUint(uint64(z)) {
			return d.dataErr("integer %d overflows %s", z, rv.Type())
		}
		rv.SetUint(uint64(z))
	case reflect.Float32, reflect.Float64:
		rv.SetFloat(float64(z))
	default:
		return d.dataErr("cannot store an integer in %s", rv.Type())
	}
	return nil
}

func (d *Decoder) floatValue(rv reflect.Value) error {
	f, err := d.s.Float64()
	if err != nil {
		return d.dataErr("invalid float: %s", d.s.Text())
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		if rv.OverflowFloat(f) {
			return d.dataErr("float %v overflows %s", f, rv.Type())
		}
		rv.SetFloat(f)
	default:
		return d.dataErr("cannot store a float in %s", rv.Type())
	}
	return nil
}

func (d *Decoder) stringValue(rv reflect.Value, what string) error {
	switch {
	case rv.Kind() == reflect.String:
		rv.SetString(string(d.s.Text()))
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		rv.SetBytes(d.s.Copy())
	default:
		return d.dataErr("cannot store a %s in %s", what, rv.Type())
	}
	return nil
}

func (d *Decoder) charValue(rv reflect.Value) error {
	r := d.s.Rune()
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.OverflowInt(int64(r)) {
			return d.dataErr("character %q overflows %s", r, rv.Type())
		}
		rv.SetInt(int64(r))
	case reflect.String:
		rv.SetString(string(r))
	default:
		return d.dataErr("cannot store a character in %s", rv.Type())
	}
	return nil
}

func (d *Decoder) seq(rv reflect.Value, depth int, closeTok edn.Token, eofCode edn.Code) error {
	if err := d.enter(depth); err != nil {
		return err
	}
	isSlice := rv.Kind() == reflect.Slice
	if !isSlice && rv.Kind() != reflect.Array {
		return d.dataErr("cannot store a sequence in %s", rv.Type())
	}
	n := 0
	for {
		if err := d.advance(eofCode); err != nil {
			return err
		}
		if d.s.Token() == closeTok {
			break
		}
		if isSlice {
			if n >= rv.Cap() {
				rv.Grow(1)
			}
			rv.SetLen(n + 1)
		} else if n >= rv.Len() {
			// Extra elements beyond the array length are read and dropped.
			if err := d.skipValue(depth + 1); err != nil {
				return err
			}
			n++
			continue
		}
		if err := d.value(rv.Index(n), depth+1); err != nil {
			return err
		}
		n++
	}
	if isSlice {
		if n == 0 && rv.IsNil() {
			rv.Set(reflect.MakeSlice(rv.Type(), 0, 0))
		} else {
			rv.SetLen(n)
		}
		return nil
	}
	for ; n < rv.Len(); n++ {
		rv.Index(n).SetZero()
	}
	return nil
}

func (d *Decoder) mapValue(rv reflect.Value, depth int) error {
	if err := d.enter(depth); err != nil {
		return err
	}
	switch rv.Kind() {
	case reflect.Struct:
		return d.structValue(rv, depth)
	case reflect.Map:
		if rv.IsNil() {
			rv.Set(reflect.MakeMap(rv.Type()))
		}
		kt, vt := rv.Type().Key(), rv.Type().Elem()
		for {
			if err := d.advance(edn.CodeEOFWhileParsingMap); err != nil {
				return err
			}
			if d.s.Token() == edn.RBrace {
				return nil
			}
			if tok := d.s.Token(); tok == edn.Int || tok == edn.Float {
				return d.syntaxErr(edn.CodeInvalidMapKey)
			}
			key := reflect.New(kt).Elem()
			if err := d.value(key, depth+1); err != nil {
				return err
			}
			if err := d.advanceValueForm(); err != nil {
				return err
			}
			val := reflect.New(vt).Elem()
			if err := d.value(val, depth+1); err != nil {
				return err
			}
			rv.SetMapIndex(key, val)
		}
	default:
		return d.dataErr("cannot store a map in %s", rv.Type())
	}
}

func (d *Decoder) structValue(rv reflect.Value, depth int) error {
	info := infoFor(rv.Type())
	for {
		if err := d.advance(edn.CodeEOFWhileParsingMap); err != nil {
			return err
		}
		switch d.s.Token() {
		case edn.RBrace:
			return nil
		case edn.Keyword, edn.String, edn.Symbol:
		case edn.Int, edn.Float:
			return d.syntaxErr(edn.CodeInvalidMapKey)
		default:
			return d.dataErr("%s key cannot name a field of %s",
				tokenKind(d.s.Token()), rv.Type())
		}
		name := string(d.s.Text())
		if err := d.advanceValueForm(); err != nil {
			return err
		}
		if f, ok := info.lookup(name); ok {
			if err := d.value(fieldValue(rv, f.index), depth+1); err != nil {
				return err
			}
		} else if err := d.skipValue(depth + 1); err != nil {
			return err
		}
	}
}

// astValue assembles a generic value from the token currently loaded in the
// scanner.
func (d *Decoder) astValue(depth int) (ast.Value, error) {
	switch d.s.Token() {
	case edn.LParen:
		vs, err := d.astSeq(depth, edn.RParen, edn.CodeEOFWhileParsingList)
		return ast.List(vs), err
	case edn.LSquare:
		vs, err := d.astSeq(depth, edn.RSquare, edn.CodeEOFWhileParsingVector)
		return ast.Vector(vs), err
	case edn.SetOpen:
		vs, err := d.astSeq(depth, edn.RBrace, edn.CodeEOFWhileParsingSet)
		return ast.Set(vs), err
	case edn.LBrace:
		return d.astMap(depth)
	case edn.Nil, edn.True, edn.False, edn.Int, edn.Float,
		edn.String, edn.Keyword, edn.Symbol, edn.Char:
		return ast.TokenValue(d.s)
	default:
		return nil, d.syntaxErr(edn.CodeExpectedValue)
	}
}

func (d *Decoder) astSeq(depth int, closeTok edn.Token, eofCode edn.Code) ([]ast.Value, error) {
	if err := d.enter(depth); err != nil {
		return nil, err
	}
	out := []ast.Value{}
	for {
		if err := d.advance(eofCode); err != nil {
			return nil, err
		}
		if d.s.Token() == closeTok {
			return out, nil
		}
		v, err := d.astValue(depth + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func (d *Decoder) astMap(depth int) (ast.Value, error) {
	if err := d.enter(depth); err != nil {
		return nil, err
	}
	m := ast.NewMap()
	for {
		if err := d.advance(edn.CodeEOFWhileParsingMap); err != nil {
			return nil, err
		}
		if d.s.Token() == edn.RBrace {
			return m, nil
		}
		if tok := d.s.Token(); tok == edn.Int || tok == edn.Float {
			return nil, d.syntaxErr(edn.CodeInvalidMapKey)
		}
		key, err := d.astValue(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := d.advanceValueForm(); err != nil {
			return nil, err
		}
		val, err := d.astValue(depth + 1)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}
}

// skipValue consumes the value whose first token is loaded in the scanner
// without storing it.
func (d *Decoder) skipValue(depth int) error {
	switch d.s.Token() {
	case edn.LParen:
		return d.skipSeq(depth, edn.RParen, edn.CodeEOFWhileParsingList)
	case edn.LSquare:
		return d.skipSeq(depth, edn.RSquare, edn.CodeEOFWhileParsingVector)
	case edn.SetOpen:
		return d.skipSeq(depth, edn.RBrace, edn.CodeEOFWhileParsingSet)
	case edn.LBrace:
		return d.skipMap(depth)
	case edn.RParen, edn.RSquare, edn.RBrace, edn.Invalid:
		return d.syntaxErr(edn.CodeExpectedValue)
	}
	return nil
}

// skipMap skips a map, still enforcing the grammar: no numeric keys, and an
// even number of forms.
func (d *Decoder) skipMap(depth int) error {
	if err := d.enter(depth); err != nil {
		return err
	}
	n := 0
	for {
		if err := d.advance(edn.CodeEOFWhileParsingMap); err != nil {
			return err
		}
		if d.s.Token() == edn.RBrace {
			if n%2 != 0 {
				return d.syntaxErr(edn.CodeOddMapForms)
			}
			return nil
		}
		if tok := d.s.Token(); n%2 == 0 && (tok == edn.Int || tok == edn.Float) {
			return d.syntaxErr(edn.CodeInvalidMapKey)
		}
		if err := d.skipValue(depth + 1); err != nil {
			return err
		}
		n++
	}
}

func (d *Decoder) skipSeq(depth int, closeTok edn.Token, eofCode edn.Code) error {
	if err := d.enter(depth); err != nil {
		return err
	}
	for {
		if err := d.advance(eofCode); err != nil {
			return err
		}
		if d.s.Token() == closeTok {
			return nil
		}
		if err := d.skipValue(depth + 1); err != nil {
			return err
		}
	}
}

// next advances the scanner to the next significant token, discarding any
// comment tokens.
func (d *Decoder) next() bool {
	for d.s.Next() {
		if d.s.Token() != edn.LineComment {
			return true
		}
	}
	return false
}

// advance moves the scanner to the next token, converting end of input into
// the given EOF code.
func (d *Decoder) advance(eofCode edn.Code) error {
	if d.next() {
		return nil
	}
	if err := d.s.Err(); err != nil {
		return err
	}
	return &edn.Error{Code: eofCode, Pos: d.s.Location().Last}
}

// advanceValueForm reads the token after a map key, rejecting a close brace
// that would leave the map with an odd number of forms.
func (d *Decoder) advanceValueForm() error {
	if err := d.advance(edn.CodeEOFWhileParsingMap); err != nil {
		return err
	}
	if d.s.Token() == edn.RBrace {
		return d.syntaxErr(edn.CodeOddMapForms)
	}
	return nil
}

func (d *Decoder) enter(depth int) error {
	if depth >= d.max {
		return d.syntaxErr(edn.CodeRecursionLimitExceeded)
	}
	return nil
}

// checkEnd verifies that nothing but whitespace remains in the input.
func (d *Decoder) checkEnd() error {
	if d.next() {
		return d.syntaxErr(edn.CodeTrailingCharacters)
	}
	if err := d.s.Err(); err != nil {
		pos := edn.LineCol{}
		if e, ok := err.(*edn.Error); ok {
			pos = e.Pos
		}
		return &edn.Error{Code: edn.CodeTrailingCharacters, Pos: pos}
	}
	return nil
}

func (d *Decoder) syntaxErr(code edn.Code) error {
	return &edn.Error{Code: code, Pos: d.s.Location().First}
}

func (d *Decoder) dataErr(format string, args ...any) error {
	e := edn.DataErrorf(format, args...)
	e.Pos = d.s.Location().First
	return e
}

func tokenKind(tok edn.Token) string {
	switch tok {
	case edn.Int, edn.Float:
		return "a numeric"
	case edn.Char:
		return "a character"
	case edn.True, edn.False:
		return "a boolean"
	case edn.Nil:
		return "a nil"
	}
	return "a composite"
}
