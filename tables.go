// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package edn

// stringEscape marks the bytes that terminate a batch scan inside a string
// literal: the closing quote, the backslash introducing an escape sequence,
// and the control bytes that must not appear raw. Everything else is copied
// (or skipped, on the zero-copy path) without a per-byte branch.
var stringEscape = func() (t [256]bool) {
	for i := 0; i <= 0x1f; i++ {
		t[i] = true
	}
	t['"'] = true
	t['\\'] = true
	return
}()

// symbolByte marks the bytes that may appear in the body of a symbol or
// keyword: letters, digits, and the symbol punctuation set. A symbol run is
// scanned as a single batch over this table and must end at a delimiter.
var symbolByte = func() (t [256]bool) {
	for c := 'a'; c <= 'z'; c++ {
		t[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		t[c] = true
	}
	for _, c := range []byte(`.*+!-_?$%&=<>`) {
		t[c] = true
	}
	return
}()

// hexValue maps an ASCII byte to its hexadecimal digit value, or 0xff for
// bytes that are not hex digits.
var hexValue = func() (t [256]byte) {
	for i := range t {
		t[i] = 0xff
	}
	for c := byte('0'); c <= '9'; c++ {
		t[c] = c - '0'
	}
	for c := byte('a'); c <= 'f'; c++ {
		t[c] = c - 'a' + 10
	}
	for c := byte('A'); c <= 'F'; c++ {
		t[c] = c - 'A' + 10
	}
	return
}()

// isDelimiter reports whether b may legally terminate a symbol, keyword,
// number, reserved word, or named character literal.
func isDelimiter(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', ',', '(', ')', '[', ']', '{', '}', '"', ';':
		return true
	}
	return false
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', ',':
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
