// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package edn

import "io"

// An Anchor represents a location in source text. The methods of an Anchor
// report the location, token type, and decoded content of the anchor.
type Anchor interface {
	Token() Token       // Returns the token type of the anchor
	Text() []byte       // Returns a view of the decoded content of the anchor
	Copy() []byte       // Returns a copy of the decoded content of the anchor
	Rune() rune         // Returns the code point of a Char anchor
	Location() Location // Returns the full location of the anchor
}

// A Handler handles events from parsing an input stream. If a method reports
// an error, parsing stops and that error is returned to the caller. The
// parser ensures containers are correctly balanced and that the forms inside
// a map literal pair up.
//
// The Anchor argument to a Handler method is only valid for the duration of
// that method call. If the method needs to retain information about the
// location after it returns, it must copy the relevant data.
type Handler interface {
	// Begin a new list, whose open parenthesis is at loc.
	BeginList(loc Anchor) error

	// End the most-recently-opened list, whose close parenthesis is at loc.
	EndList(loc Anchor) error

	// Begin a new vector, whose open bracket is at loc.
	BeginVector(loc Anchor) error

	// End the most-recently-opened vector, whose close bracket is at loc.
	EndVector(loc Anchor) error

	// Begin a new set, whose "#{" opener is at loc.
	BeginSet(loc Anchor) error

	// End the most-recently-opened set, whose close brace is at loc.
	EndSet(loc Anchor) error

	// Begin a new map, whose open brace is at loc. Keys and values arrive
	// as alternating events; the parser guarantees their number is even.
	BeginMap(loc Anchor) error

	// End the most-recently-opened map, whose close brace is at loc.
	EndMap(loc Anchor) error

	// Report a data value at the given location. The kind of the value can
	// be recovered from the token; the content from Text or Rune.
	Value(loc Anchor) error

	// EndOfInput reports the end of the input stream.
	EndOfInput(loc Anchor)
}

// CommentHandler is an optional interface that a Handler may implement to
// observe comment tokens. If a handler implements this method and comments
// are enabled in the scanner, Comment is called for each comment token in
// the input. Otherwise comments are silently discarded.
type CommentHandler interface {
	// Process the line comment at the specified location. The comment text
	// includes its leading ";" and trailing newline, if present.
	Comment(loc Anchor)
}

// DefaultMaxDepth is the container nesting limit applied by a Stream unless
// overridden with SetMaxDepth. It bounds stack growth on adversarial input.
const DefaultMaxDepth = 128

// Stream is a stream parser that consumes input and delivers events to a
// Handler corresponding with the structure of the input.
type Stream struct {
	s        *Scanner
	maxDepth int
}

// NewStream constructs a new Stream that consumes input from r.
func NewStream(r io.Reader) *Stream {
	return &Stream{s: NewScanner(r), maxDepth: DefaultMaxDepth}
}

// NewStreamWithScanner constructs a new Stream that consumes input from s.
func NewStreamWithScanner(s *Scanner) *Stream {
	return &Stream{s: s, maxDepth: DefaultMaxDepth}
}

// AllowComments configures the scanner associated with s to report (true) or
// reject (false) comment tokens.
func (st *Stream) AllowComments(ok bool) { st.s.AllowComments(ok) }

// SetMaxDepth sets the container nesting limit for the parser. Values less
// than 1 restore DefaultMaxDepth.
func (st *Stream) SetMaxDepth(n int) {
	if n < 1 {
		n = DefaultMaxDepth
	}
	st.maxDepth = n
}

// Parse parses the input stream and delivers events to h until either an
// error occurs or the input is exhausted. In case of a parse error, the
// returned error has concrete type [*Error].
func (st *Stream) Parse(h Handler) (err error) {
	defer st.recoverParseError(&err)

	for {
		if !st.next(h) {
			h.EndOfInput(st.s)
			return nil
		}
		st.parseValue(h, 0)
	}
}

// ParseOne parses a single value from the input stream and delivers events
// to h until the value is complete or an error occurs. If no further value
// is available from the input, ParseOne returns io.EOF. In case of a parse
// error, the returned error has concrete type [*Error].
func (st *Stream) ParseOne(h Handler) (err error) {
	defer st.recoverParseError(&err)

	if !st.next(h) {
		h.EndOfInput(st.s)
		return io.EOF
	}
	st.parseValue(h, 0)
	return nil
}

func (st *Stream) recoverParseError(errp *error) {
	if p := recover(); p != nil {
		switch err := p.(type) {
		case streamError:
			*errp = err.err
		case handlerError:
			*errp = err.error
		default:
			panic(p)
		}
	}
}

// parseValue consumes a single value of any type.
// Precondition: the scanner is positioned on the value's first token.
func (st *Stream) parseValue(h Handler, depth int) {
	switch tok := st.s.Token(); tok {
	case LParen:
		st.enter(depth)
		st.check(h.BeginList(st.s))
		st.parseSeq(h, depth, RParen, CodeEOFWhileParsingList)
		st.check(h.EndList(st.s))
	case LSquare:
		st.enter(depth)
		st.check(h.BeginVector(st.s))
		st.parseSeq(h, depth, RSquare, CodeEOFWhileParsingVector)
		st.check(h.EndVector(st.s))
	case SetOpen:
		st.enter(depth)
		st.check(h.BeginSet(st.s))
		st.parseSeq(h, depth, RBrace, CodeEOFWhileParsingSet)
		st.check(h.EndSet(st.s))
	case LBrace:
		st.enter(depth)
		st.parseMap(h, depth)
	case String, Int, Float, Keyword, Symbol, Char, True, False, Nil:
		st.check(h.Value(st.s))
	default:
		// Close delimiters and anything unrecognized in value position.
		st.failTok(CodeExpectedValue)
	}
}

// parseSeq consumes zero or more values terminated by closeTok.
// Precondition: the scanner is on the opening token.
// Postcondition: the scanner is on closeTok.
func (st *Stream) parseSeq(h Handler, depth int, closeTok Token, eofCode Code) {
	for {
		if !st.next(h) {
			st.failEnd(eofCode)
		}
		if st.s.Token() == closeTok {
			return
		}
		st.parseValue(h, depth+1)
	}
}

// parseMap consumes alternating key and value forms until the matching close
// brace. Numeric literals are rejected in key position.
func (st *Stream) parseMap(h Handler, depth int) {
	st.check(h.BeginMap(st.s))
	n := 0
	for {
		if !st.next(h) {
			st.failEnd(CodeEOFWhileParsingMap)
		}
		if st.s.Token() == RBrace {
			if n%2 != 0 {
				st.failTok(CodeOddMapForms)
			}
			st.check(h.EndMap(st.s))
			return
		}
		if n%2 == 0 {
			if tok := st.s.Token(); tok == Int || tok == Float {
				st.failTok(CodeInvalidMapKey)
			}
		}
		st.parseValue(h, depth+1)
		n++
	}
}

// enter checks the nesting limit before a container is opened.
func (st *Stream) enter(depth int) {
	if depth >= st.maxDepth {
		st.failTok(CodeRecursionLimitExceeded)
	}
}

// next advances the scanner to the next significant token, delivering any
// comment tokens to h when it implements CommentHandler. It reports false at
// a clean end of input and panics on a scan error.
func (st *Stream) next(h Handler) bool {
	for st.s.Next() {
		if st.s.Token() == LineComment {
			if ch, ok := h.(CommentHandler); ok {
				ch.Comment(st.s)
			}
			continue
		}
		return true
	}
	if err := st.s.Err(); err != nil {
		panic(streamError{err})
	}
	return false
}

// failTok raises a syntax error positioned at the current token.
func (st *Stream) failTok(code Code) {
	panic(streamError{syntaxError(code, st.s.src.position(st.s.pos))})
}

// failEnd raises an error positioned at the end of input.
func (st *Stream) failEnd(code Code) {
	panic(streamError{syntaxError(code, st.s.endPosition())})
}

func (st *Stream) check(err error) {
	if err != nil {
		panic(handlerError{err})
	}
}

type streamError struct{ err error }

type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }
