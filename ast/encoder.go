// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	edn "github.com/alex-dixon/serde-edn"
)

// Text renders the canonical compact encoding of v: a single space between
// adjacent elements and no other layout. Parsing the result yields a value
// equal to v.
func Text(v Value) string {
	return string(Append(nil, v))
}

// Encode writes the canonical compact encoding of v to w.
func Encode(w io.Writer, v Value) error {
	_, err := w.Write(Append(nil, v))
	return err
}

// Append appends the canonical compact encoding of v to buf, and returns
// the updated slice.
func Append(buf []byte, v Value) []byte {
	switch t := v.(type) {
	case Nil:
		return append(buf, "nil"...)
	case Bool:
		if t {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case Int:
		return strconv.AppendInt(buf, int64(t), 10)
	case Float:
		return appendFloat(buf, float64(t))
	case String:
		return edn.AppendQuoted(buf, string(t))
	case Char:
		return appendChar(buf, rune(t))
	case Keyword:
		buf = append(buf, ':')
		return append(buf, t...)
	case Symbol:
		return append(buf, t...)
	case List:
		return appendSeq(buf, "()", t)
	case Vector:
		return appendSeq(buf, "[]", t)
	case Set:
		buf = append(buf, '#')
		return appendSeq(buf, "{}", t)
	case *Map:
		buf = append(buf, '{')
		for i, e := range t.Entries() {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = Append(buf, e.Key)
			buf = append(buf, ' ')
			buf = Append(buf, e.Value)
		}
		return append(buf, '}')
	}
	panic(fmt.Sprintf("ast: invalid value %T", v))
}

func appendSeq(buf []byte, brackets string, vs []Value) []byte {
	buf = append(buf, brackets[0])
	for i, v := range vs {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = Append(buf, v)
	}
	return append(buf, brackets[1])
}

// appendFloat renders f with the fewest digits that reparse to the same
// value. The text always carries a decimal point or exponent so that it
// scans back as a float rather than an integer.
func appendFloat(buf []byte, f float64) []byte {
	start := len(buf)
	buf = strconv.AppendFloat(buf, f, 'g', -1, 64)
	for _, b := range buf[start:] {
		if b == '.' || b == 'e' || b == 'E' || b == 'N' || b == 'I' {
			return buf
		}
	}
	return append(buf, ".0"...)
}

func appendChar(buf []byte, r rune) []byte {
	buf = append(buf, '\\')
	if name, ok := edn.CharName(r); ok {
		return append(buf, name...)
	}
	return append(buf, string(r)...)
}

// A Formatter renders values with line breaks and indentation. The zero
// value indents nested containers by two spaces.
type Formatter struct {
	// Indent gives the whitespace prepended per nesting level.
	// If empty, two spaces are used.
	Indent string
}

// Format writes an indented rendering of v to w, without a trailing
// newline.
func (f Formatter) Format(w io.Writer, v Value) error {
	_, err := io.WriteString(w, f.String(v))
	return err
}

// String renders an indented encoding of v.
func (f Formatter) String(v Value) string {
	indent := f.Indent
	if indent == "" {
		indent = "  "
	}
	var sb strings.Builder
	formatValue(&sb, v, "", indent)
	return sb.String()
}

// formatLimit is the rendered width within which a container stays on one
// line.
const formatLimit = 72

func formatValue(sb *strings.Builder, v Value, prefix, indent string) {
	flat := Append(nil, v)
	switch v.Kind() {
	case ListKind, VectorKind, SetKind, MapKind:
		if len(flat)+len(prefix) > formatLimit {
			break
		}
		fallthrough
	default:
		sb.Write(flat)
		return
	}

	switch t := v.(type) {
	case List:
		breakSeq(sb, "()", t, prefix, indent)
	case Vector:
		breakSeq(sb, "[]", t, prefix, indent)
	case Set:
		sb.WriteByte('#')
		breakSeq(sb, "{}", t, prefix, indent)
	case *Map:
		inner := prefix + indent
		sb.WriteByte('{')
		for _, e := range t.Entries() {
			sb.WriteString("\n")
			sb.WriteString(inner)
			formatValue(sb, e.Key, inner, indent)
			sb.WriteByte(' ')
			formatValue(sb, e.Value, inner, indent)
		}
		sb.WriteString("\n")
		sb.WriteString(prefix)
		sb.WriteByte('}')
	}
}

func breakSeq(sb *strings.Builder, brackets string, vs []Value, prefix, indent string) {
	inner := prefix + indent
	sb.WriteByte(brackets[0])
	for _, v := range vs {
		sb.WriteString("\n")
		sb.WriteString(inner)
		formatValue(sb, v, inner, indent)
	}
	sb.WriteString("\n")
	sb.WriteString(prefix)
	sb.WriteByte(brackets[1])
}
