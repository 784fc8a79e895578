// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package ast

import (
	"errors"
	"io"
	"strconv"

	edn "github.com/alex-dixon/serde-edn"
)

// Parse parses all the top-level values from r, in order of occurrence.
func Parse(r io.Reader) ([]Value, error) {
	return NewParser(edn.NewScanner(r)).parseAll()
}

// ParseSingle parses exactly one value from r. It reports an error if r
// holds no value, or if anything besides whitespace follows the first one.
func ParseSingle(r io.Reader) (Value, error) {
	return NewParser(edn.NewScanner(r)).parseSingle()
}

// ParseString parses exactly one value from s, with the same contract as
// ParseSingle.
func ParseString(s string) (Value, error) {
	return NewParser(edn.NewStringScanner(s)).parseSingle()
}

// ParseBytes parses exactly one value from data, with the same contract as
// ParseSingle. The scanner reads data in place, so parsing a slice does not
// copy string contents that contain no escapes.
func ParseBytes(data []byte) (Value, error) {
	return NewParser(edn.NewSliceScanner(data)).parseSingle()
}

// A Parser reads a sequence of top-level values from a scanner.
type Parser struct {
	s  *edn.Scanner
	st *edn.Stream
	h  parseHandler
}

// NewParser constructs a parser that consumes tokens from s.
func NewParser(s *edn.Scanner) *Parser {
	return &Parser{s: s, st: edn.NewStreamWithScanner(s)}
}

// AllowComments configures whether the parser skips line comments.
func (p *Parser) AllowComments(ok bool) { p.st.AllowComments(ok) }

// SetMaxDepth sets the container nesting limit. See Stream.SetMaxDepth.
func (p *Parser) SetMaxDepth(n int) { p.st.SetMaxDepth(n) }

// Next parses the next value from the input. At the end of input it returns
// io.EOF.
func (p *Parser) Next() (Value, error) {
	p.h.reset()
	if err := p.st.ParseOne(&p.h); err != nil {
		return nil, err
	}
	if len(p.h.done) != 1 {
		return nil, errors.New("incomplete value")
	}
	return p.h.done[0], nil
}

func (p *Parser) parseAll() ([]Value, error) {
	var out []Value
	for {
		v, err := p.Next()
		if err == io.EOF {
			return out, nil
		} else if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func (p *Parser) parseSingle() (Value, error) {
	v, err := p.Next()
	if err == io.EOF {
		return nil, &edn.Error{Code: edn.CodeEOFWhileParsingValue}
	} else if err != nil {
		return nil, err
	}
	return v, p.checkEnd()
}

// checkEnd verifies that nothing but whitespace remains after a complete
// value. Any leftover input, valid or not, is a trailing-characters error at
// the position where it begins.
func (p *Parser) checkEnd() error {
	if p.s.Next() {
		return &edn.Error{Code: edn.CodeTrailingCharacters, Pos: p.s.Location().First}
	}
	if err := p.s.Err(); err != nil {
		pos := edn.LineCol{}
		if e := (*edn.Error)(nil); errors.As(err, &e) {
			pos = e.Pos
		}
		return &edn.Error{Code: edn.CodeTrailingCharacters, Pos: pos}
	}
	return nil
}

// A parseHandler receives stream events and assembles values bottom-up. The
// stack holds one frame per open container; completed top-level values
// accumulate in done.
type parseHandler struct {
	stk  []*frame
	done []Value
}

type frame struct {
	tok    edn.Token // the opening token of the container
	elems  []Value   // elements of a list, vector, or set
	m      *Map      // entries of a map
	key    Value     // pending map key
	hasKey bool
}

func (h *parseHandler) reset() { h.stk = h.stk[:0]; h.done = h.done[:0] }

func (h *parseHandler) BeginList(loc edn.Anchor) error {
	h.push(&frame{tok: edn.LParen})
	return nil
}

func (h *parseHandler) BeginVector(loc edn.Anchor) error {
	h.push(&frame{tok: edn.LSquare})
	return nil
}

func (h *parseHandler) BeginSet(loc edn.Anchor) error {
	h.push(&frame{tok: edn.SetOpen})
	return nil
}

func (h *parseHandler) BeginMap(loc edn.Anchor) error {
	h.push(&frame{tok: edn.LBrace, m: NewMap()})
	return nil
}

func (h *parseHandler) EndList(loc edn.Anchor) error {
	f := h.pop()
	h.add(List(f.seq()))
	return nil
}

func (h *parseHandler) EndVector(loc edn.Anchor) error {
	f := h.pop()
	h.add(Vector(f.seq()))
	return nil
}

func (h *parseHandler) EndSet(loc edn.Anchor) error {
	f := h.pop()
	h.add(Set(f.seq()))
	return nil
}

func (h *parseHandler) EndMap(loc edn.Anchor) error {
	h.add(h.pop().m)
	return nil
}

func (h *parseHandler) Value(loc edn.Anchor) error {
	v, err := TokenValue(loc)
	if err != nil {
		return err
	}
	h.add(v)
	return nil
}

func (h *parseHandler) EndOfInput(loc edn.Anchor) {}

func (h *parseHandler) push(f *frame) { h.stk = append(h.stk, f) }

func (h *parseHandler) pop() *frame {
	f := h.stk[len(h.stk)-1]
	h.stk = h.stk[:len(h.stk)-1]
	return f
}

func (h *parseHandler) add(v Value) {
	if len(h.stk) == 0 {
		h.done = append(h.done, v)
		return
	}
	f := h.stk[len(h.stk)-1]
	if f.m == nil {
		f.elems = append(f.elems, v)
	} else if !f.hasKey {
		f.key, f.hasKey = v, true
	} else {
		f.m.Set(f.key, v)
		f.key, f.hasKey = nil, false
	}
}

func (f *frame) seq() []Value {
	if f.elems == nil {
		return []Value{}
	}
	return f.elems
}

// TokenValue converts the scalar token at loc into its value. Integer
// literals outside the int64 range convert to the nearest Float.
func TokenValue(loc edn.Anchor) (Value, error) {
	text := loc.Text()
	switch loc.Token() {
	case edn.String:
		return String(text), nil
	case edn.Int:
		z, err := strconv.ParseInt(string(text), 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			// Out of int64 range; fall back to the nearest float.
			f, _ := strconv.ParseFloat(string(text), 64)
			return Float(f), nil
		} else if err != nil {
			return nil, &edn.Error{Code: edn.CodeInvalidNumber, Pos: loc.Location().First}
		}
		return Int(z), nil
	case edn.Float:
		f, err := strconv.ParseFloat(string(text), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, &edn.Error{Code: edn.CodeInvalidNumber, Pos: loc.Location().First}
		}
		return Float(f), nil
	case edn.Keyword:
		return Keyword(text), nil
	case edn.Symbol:
		return Symbol(text), nil
	case edn.Char:
		return Char(loc.Rune()), nil
	case edn.True:
		return Bool(true), nil
	case edn.False:
		return Bool(false), nil
	case edn.Nil:
		return Nil{}, nil
	}
	return nil, errors.New("invalid token " + loc.Token().String())
}
