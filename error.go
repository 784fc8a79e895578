// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package edn

import "fmt"

// A Code identifies the specific failure reported by an Error.
type Code int

// Constants defining the valid Code values.
const (
	CodeUnknown Code = iota

	// CodeIO reports a failure to read or write bytes on an underlying
	// stream. The wrapped error is available via Unwrap.
	CodeIO

	// End-of-input codes, one per construct that was incomplete when the
	// input ran out. These are distinguished from plain syntax errors so
	// that callers feeding input incrementally can retry with more bytes.
	CodeEOFWhileParsingValue
	CodeEOFWhileParsingString
	CodeEOFWhileParsingList
	CodeEOFWhileParsingVector
	CodeEOFWhileParsingSet
	CodeEOFWhileParsingMap

	// Syntax codes.
	CodeExpectedValue
	CodeInvalidEscape
	CodeInvalidNumber
	CodeInvalidKeyword
	CodeInvalidSymbol
	CodeInvalidChar
	CodeInvalidMapKey
	CodeOddMapForms
	CodeControlCharacterInString
	CodeLoneSurrogateInEscape
	CodeUnexpectedEndOfHexEscape
	CodeInvalidUnicodeCodePoint
	CodeTrailingCharacters
	CodeRecursionLimitExceeded

	// CodeDataMismatch reports that well-formed input did not have the shape
	// a typed consumer expected. It is raised by the bind layer, never by
	// the scanner or parser.
	CodeDataMismatch
)

var codeText = map[Code]string{
	CodeUnknown:                  "unknown error",
	CodeIO:                       "io error",
	CodeEOFWhileParsingValue:     "EOF while parsing a value",
	CodeEOFWhileParsingString:    "EOF while parsing a string",
	CodeEOFWhileParsingList:      "EOF while parsing a list",
	CodeEOFWhileParsingVector:    "EOF while parsing a vector",
	CodeEOFWhileParsingSet:       "EOF while parsing a set",
	CodeEOFWhileParsingMap:       "EOF while parsing a map",
	CodeExpectedValue:            "expected value",
	CodeInvalidEscape:            "invalid escape",
	CodeInvalidNumber:            "invalid number",
	CodeInvalidKeyword:           "invalid keyword",
	CodeInvalidSymbol:            "invalid symbol",
	CodeInvalidChar:              "invalid character literal",
	CodeInvalidMapKey:            "invalid map key",
	CodeOddMapForms:              "map literal holds an odd number of forms",
	CodeControlCharacterInString: "control character found while parsing a string",
	CodeLoneSurrogateInEscape:    "lone surrogate in hex escape",
	CodeUnexpectedEndOfHexEscape: "unexpected end of hex escape",
	CodeInvalidUnicodeCodePoint:  "invalid unicode code point",
	CodeTrailingCharacters:       "trailing characters",
	CodeRecursionLimitExceeded:   "recursion limit exceeded",
	CodeDataMismatch:             "data does not match the expected shape",
}

func (c Code) String() string {
	if s, ok := codeText[c]; ok {
		return s
	}
	return codeText[CodeUnknown]
}

// A Category classifies the cause of an Error.
type Category int

const (
	// IO reports a failure to read or write bytes on an underlying stream.
	IO Category = iota + 1

	// Syntax reports input that is not syntactically valid EDN.
	Syntax

	// Data reports input that was well-formed but semantically incorrect
	// for the requested shape, for example a string where a typed decode
	// expected a number.
	Data

	// EOF reports that the input ended before a value was complete.
	// Callers that process streaming input may be interested in retrying
	// once more data is available.
	EOF
)

func (c Category) String() string {
	switch c {
	case IO:
		return "io"
	case Syntax:
		return "syntax"
	case Data:
		return "data"
	case EOF:
		return "eof"
	}
	return "unknown"
}

// Error is the concrete type of all errors reported by this package. It
// records what failed and where. An Error is immutable once constructed.
type Error struct {
	Code Code
	Pos  LineCol // zero for IO and Data errors with no source position

	msg string // optional detail, for data errors
	err error  // wrapped cause, for io errors
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	text := e.Code.String()
	if e.msg != "" {
		text = e.msg
	}
	if e.err != nil {
		text = fmt.Sprintf("%s: %v", text, e.err)
	}
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s at %s", text, e.Pos)
	}
	return text
}

// Unwrap supports error wrapping. It returns the underlying stream error for
// IO errors and nil otherwise.
func (e *Error) Unwrap() error { return e.err }

// Category classifies the cause of e.
func (e *Error) Category() Category {
	switch e.Code {
	case CodeIO:
		return IO
	case CodeEOFWhileParsingValue, CodeEOFWhileParsingString, CodeEOFWhileParsingList,
		CodeEOFWhileParsingVector, CodeEOFWhileParsingSet, CodeEOFWhileParsingMap:
		return EOF
	case CodeDataMismatch:
		return Data
	default:
		return Syntax
	}
}

// IsEOF reports whether err is an *Error in the EOF category.
func IsEOF(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Category() == EOF
}

// syntaxError constructs an Error for code at the given position.
func syntaxError(code Code, pos LineCol) *Error {
	return &Error{Code: code, Pos: pos}
}

// ioError wraps a stream failure.
func ioError(err error) *Error { return &Error{Code: CodeIO, err: err} }

// DataErrorf constructs a Data-category error with a formatted message. It is
// exported for use by the bind layer.
func DataErrorf(format string, args ...any) *Error {
	return &Error{Code: CodeDataMismatch, msg: fmt.Sprintf(format, args...)}
}
