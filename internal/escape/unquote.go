// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

// Package escape handles quoting and unquoting of EDN string content.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes string content containing EDN escape sequences. The input
// must have the enclosing quotation marks already removed. Escape sequences
// are replaced with their unescaped equivalents; \uXXXX escapes compose
// surrogate pairs into a single code point.
func Unquote(src mem.RO) ([]byte, error) {
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(nil, src), nil
	}

	dec := make([]byte, 0, src.Len())
	for src.Len() != 0 {
		dec = mem.Append(dec, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}

		b := src.At(0)
		src = src.SliceFrom(1)
		switch b {
		case '"', '\\', '/':
			dec = append(dec, b)
		case 'b':
			dec = append(dec, '\b')
		case 'f':
			dec = append(dec, '\f')
		case 'n':
			dec = append(dec, '\n')
		case 'r':
			dec = append(dec, '\r')
		case 't':
			dec = append(dec, '\t')
		case 'u':
			r, rest, err := decodeHexEscape(src)
			if err != nil {
				return nil, err
			}
			dec = utf8.AppendRune(dec, r)
			src = rest
		default:
			return nil, fmt.Errorf("invalid escape %q", b)
		}

		i = mem.IndexByte(src, '\\')
		if i < 0 {
			dec = mem.Append(dec, src)
			break
		}
	}
	return dec, nil
}

// decodeHexEscape decodes the digits of a \uXXXX escape whose "\u" prefix
// has been removed, consuming a second escape to complete a surrogate pair.
func decodeHexEscape(src mem.RO) (rune, mem.RO, error) {
	n1, err := parseHex4(src)
	if err != nil {
		return 0, src, err
	}
	src = src.SliceFrom(4)
	if n1 >= 0xDC00 && n1 <= 0xDFFF {
		return 0, src, errors.New("lone surrogate in hex escape")
	}
	if n1 < 0xD800 || n1 > 0xDBFF {
		return rune(n1), src, nil
	}

	if src.Len() < 2 || src.At(0) != '\\' || src.At(1) != 'u' {
		return 0, src, errors.New("unpaired leading surrogate")
	}
	src = src.SliceFrom(2)
	n2, err := parseHex4(src)
	if err != nil {
		return 0, src, err
	}
	src = src.SliceFrom(4)
	if n2 < 0xDC00 || n2 > 0xDFFF {
		return 0, src, errors.New("lone surrogate in hex escape")
	}
	r := (rune(n1-0xD800)<<10 | rune(n2-0xDC00)) + 0x10000
	if !utf8.ValidRune(r) {
		return 0, src, errors.New("invalid code point")
	}
	return r, src, nil
}

func parseHex4(src mem.RO) (uint32, error) {
	if src.Len() < 4 {
		return 0, errors.New("incomplete hex escape")
	}
	var n uint32
	for i := 0; i < 4; i++ {
		b := src.At(i)
		var v uint32
		switch {
		case b >= '0' && b <= '9':
			v = uint32(b - '0')
		case b >= 'a' && b <= 'f':
			v = uint32(b - 'a' + 10)
		case b >= 'A' && b <= 'F':
			v = uint32(b - 'A' + 10)
		default:
			return 0, fmt.Errorf("invalid hex digit %q", b)
		}
		n = n<<4 | v
	}
	return n, nil
}
