// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package edn

import (
	"io"
	"strconv"
	"unicode/utf8"

	"go4.org/mem"
)

// Token is the type of a lexical token in the EDN grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LParen               // left parenthesis "("
	RParen               // right parenthesis ")"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	SetOpen              // set opener "#{"
	String               // quoted string
	Int                  // number: integer with no fraction or exponent
	Float                // number with fraction and/or exponent
	Keyword              // keyword, marked with a leading ":"
	Symbol               // bare symbol
	Char                 // character literal, marked with a leading "\"
	True                 // reserved word: true
	False                // reserved word: false
	Nil                  // reserved word: nil

	LineComment // comment: ; ... <LF>
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LParen:  `"("`,
	RParen:  `")"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	SetOpen: `"#{"`,
	String:  "string",
	Int:     "integer",
	Float:   "float",
	Keyword: "keyword",
	Symbol:  "symbol",
	Char:    "character",
	True:    "true",
	False:   "false",
	Nil:     "nil",

	LineComment: "line comment",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// The reserved words, matched against a completed symbol run.
var (
	wordTrue  = mem.S("true")
	wordFalse = mem.S("false")
	wordNil   = mem.S("nil")
)

// A Scanner reads lexical tokens from an input source. Each call to Next
// advances the scanner to the next token, or reports an error.
//
// When the scanner is constructed over a byte slice or a string, the text of
// a token that required no escape processing is a window into the original
// input, and producing it allocates nothing.
type Scanner struct {
	src      source
	sl       *sliceSource // non-nil when src is slice-backed
	comments bool         // allow comments

	scratch []byte // reused across tokens for escape-processed text
	tok     Token
	text    []byte // decoded token content; window or scratch
	ch      rune   // value of a Char token

	pos, end int // start and end offsets of the current token
	err      error
}

// NewScanner constructs a scanner that consumes input from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{src: newReaderSource(r)}
}

// NewSliceScanner constructs a scanner that consumes the bytes of data.
// The caller must not modify data until the scanner is no longer in use.
func NewSliceScanner(data []byte) *Scanner {
	sl := newSliceSource(data)
	return &Scanner{src: sl, sl: sl}
}

// NewStringScanner constructs a scanner that consumes the text of s.
func NewStringScanner(s string) *Scanner { return NewSliceScanner([]byte(s)) }

// AllowComments configures the scanner to report (true) or reject (false)
// comment tokens. If enabled, a semicolon begins a comment that runs to the
// end of the line, reported as a single LineComment token.
func (s *Scanner) AllowComments(ok bool) { s.comments = ok }

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next. At a clean end of input, Err
// returns nil.
func (s *Scanner) Err() error { return s.err }

// Text returns the decoded content of the current token: the unescaped body
// of a string, the name of a keyword or symbol without its sigil, the
// literal text of a number, or the body of a character literal. The return
// value is shared with the scanner and is only valid until the next call of
// Next; the caller must copy it if it is needed beyond that.
func (s *Scanner) Text() []byte { return s.text }

// Copy returns a copy of the decoded content of the current token.
func (s *Scanner) Copy() []byte { return append([]byte(nil), s.text...) }

// Rune returns the code point denoted by the current token. It is only
// meaningful when Token is Char.
func (s *Scanner) Rune() rune { return s.ch }

// Int64 parses the current token as a signed 64-bit integer. It is only
// meaningful when Token is Int.
func (s *Scanner) Int64() (int64, error) {
	return strconv.ParseInt(string(s.text), 10, 64)
}

// Float64 parses the current token as a 64-bit floating-point value. It is
// meaningful when Token is Int or Float.
func (s *Scanner) Float64() (float64, error) {
	return strconv.ParseFloat(string(s.text), 64)
}

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.pos, End: s.end} }

// Location returns the complete location of the current token. Line and
// column offsets are computed on demand by scanning the input; the cost is
// linear in the offset of the token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: s.src.position(s.pos),
		Last:  s.src.position(s.end),
	}
}

// endPosition reports the position just past the last consumed byte. It is
// used for errors reported at the end of input.
func (s *Scanner) endPosition() LineCol { return s.src.position(s.src.byteOffset()) }

// Next advances s to the next token of the input and reports whether one is
// available. At the end of the input it returns false with a nil Err; if
// scanning fails it returns false and Err returns the cause.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	s.tok = Invalid
	s.text = nil
	s.ch = 0

	for {
		b, err := s.src.peek()
		if err == io.EOF {
			s.pos = s.src.byteOffset()
			s.end = s.pos
			return false
		} else if err != nil {
			s.err = ioError(err)
			return false
		}

		// Whitespace and commas separate tokens and are otherwise ignored.
		if isWhitespace(b) {
			s.src.discard()
			continue
		}

		s.pos = s.src.byteOffset()
		s.src.mark()
		ok := s.scanToken(b)
		s.end = s.src.byteOffset()
		return ok
	}
}

// scanToken dispatches on the first byte of a token, which has been peeked
// but not consumed.
func (s *Scanner) scanToken(b byte) bool {
	switch {
	case b == '(':
		return s.punct(LParen)
	case b == ')':
		return s.punct(RParen)
	case b == '[':
		return s.punct(LSquare)
	case b == ']':
		return s.punct(RSquare)
	case b == '{':
		return s.punct(LBrace)
	case b == '}':
		return s.punct(RBrace)
	case b == '#':
		s.src.discard()
		nb, err := s.src.peek()
		if err == io.EOF {
			return s.failAt(CodeEOFWhileParsingValue, s.pos)
		} else if err != nil {
			s.err = ioError(err)
			return false
		} else if nb != '{' {
			return s.failHere(CodeExpectedValue)
		}
		s.src.discard()
		s.tok = SetOpen
		s.text = []byte("#{")
		return true
	case b == '"':
		s.src.discard()
		return s.scanString()
	case b == ':':
		s.src.discard()
		return s.scanName(s.src.byteOffset(), Keyword)
	case b == '\\':
		s.src.discard()
		return s.scanChar()
	case b == ';':
		if !s.comments {
			return s.failHere(CodeExpectedValue)
		}
		return s.scanComment()
	case isDigit(b):
		return s.scanNumber(0)
	case b == '+' || b == '-':
		s.src.discard()
		nb, err := s.src.peek()
		if err == nil && isDigit(nb) {
			return s.scanNumber(b)
		} else if err != nil && err != io.EOF {
			s.err = ioError(err)
			return false
		}
		// A bare sign begins a symbol: "-", "+x", "-main".
		return s.scanSymbolTail(s.pos, []byte{b}, Symbol)
	case symbolByte[b]:
		if !s.scanName(s.pos, Symbol) {
			return false
		}
		// A run that spells a reserved word is that reserved word; a run
		// that merely starts with one remains a symbol ("truex", "tru").
		switch got := mem.B(s.text); {
		case got.Equal(wordTrue):
			s.tok = True
		case got.Equal(wordFalse):
			s.tok = False
		case got.Equal(wordNil):
			s.tok = Nil
		}
		return true
	default:
		return s.failHere(CodeExpectedValue)
	}
}

func (s *Scanner) punct(tok Token) bool {
	s.src.discard()
	s.tok = tok
	s.text = punctText[tok]
	return true
}

var punctText = map[Token][]byte{
	LParen:  []byte("("),
	RParen:  []byte(")"),
	LSquare: []byte("["),
	RSquare: []byte("]"),
	LBrace:  []byte("{"),
	RBrace:  []byte("}"),
}

// scanString scans a string literal whose opening quote has been consumed,
// decoding escape sequences into the scratch buffer. On the slice-backed
// path the content is returned as a window into the input when no escape was
// present.
func (s *Scanner) scanString() bool {
	if sl := s.sl; sl != nil {
		chunk := sl.idx // first byte not yet copied into scratch
		copied := false
		s.scratch = s.scratch[:0]
		for {
			for sl.idx < len(sl.data) && !stringEscape[sl.data[sl.idx]] {
				sl.idx++
			}
			if sl.idx == len(sl.data) {
				return s.failAt(CodeEOFWhileParsingString, sl.idx)
			}
			switch b := sl.data[sl.idx]; b {
			case '"':
				if copied {
					s.scratch = append(s.scratch, sl.data[chunk:sl.idx]...)
					s.text = s.scratch
				} else {
					s.text = sl.window(chunk, sl.idx)
				}
				sl.idx++
				s.tok = String
				return true
			case '\\':
				s.scratch = append(s.scratch, sl.data[chunk:sl.idx]...)
				copied = true
				sl.idx++
				if !s.appendEscape() {
					return false
				}
				chunk = sl.idx
			default:
				return s.failAt(CodeControlCharacterInString, sl.idx)
			}
		}
	}

	s.scratch = s.scratch[:0]
	for {
		b, err := s.src.next()
		if err == io.EOF {
			return s.failHere(CodeEOFWhileParsingString)
		} else if err != nil {
			s.err = ioError(err)
			return false
		}
		if !stringEscape[b] {
			s.scratch = append(s.scratch, b)
			continue
		}
		switch b {
		case '"':
			s.text = s.scratch
			s.tok = String
			return true
		case '\\':
			if !s.appendEscape() {
				return false
			}
		default:
			return s.failPrev(CodeControlCharacterInString)
		}
	}
}

// appendEscape decodes one escape sequence, whose leading backslash has been
// consumed, into the scratch buffer.
func (s *Scanner) appendEscape() bool {
	b, err := s.src.next()
	if err == io.EOF {
		return s.failHere(CodeEOFWhileParsingString)
	} else if err != nil {
		s.err = ioError(err)
		return false
	}
	switch b {
	case '"', '\\', '/':
		s.scratch = append(s.scratch, b)
	case 'b':
		s.scratch = append(s.scratch, '\b')
	case 'f':
		s.scratch = append(s.scratch, '\f')
	case 'n':
		s.scratch = append(s.scratch, '\n')
	case 'r':
		s.scratch = append(s.scratch, '\r')
	case 't':
		s.scratch = append(s.scratch, '\t')
	case 'u':
		r, ok := s.decodeHexRune()
		if !ok {
			return false
		}
		s.scratch = utf8.AppendRune(s.scratch, r)
	default:
		return s.failPrev(CodeInvalidEscape)
	}
	return true
}

// decodeHexRune decodes a \uXXXX escape whose "\u" prefix has been consumed,
// composing surrogate pairs into a single code point.
func (s *Scanner) decodeHexRune() (rune, bool) {
	n1, ok := s.decodeHex4()
	if !ok {
		return 0, false
	}
	if n1 >= 0xDC00 && n1 <= 0xDFFF {
		return 0, s.failPrev(CodeLoneSurrogateInEscape)
	}
	if n1 < 0xD800 || n1 > 0xDBFF {
		return rune(n1), true
	}

	// n1 is a leading surrogate; a second escape must follow.
	for _, want := range []byte{'\\', 'u'} {
		b, err := s.src.next()
		if err == io.EOF {
			return 0, s.failHere(CodeUnexpectedEndOfHexEscape)
		} else if err != nil {
			s.err = ioError(err)
			return 0, false
		} else if b != want {
			return 0, s.failPrev(CodeUnexpectedEndOfHexEscape)
		}
	}
	n2, ok := s.decodeHex4()
	if !ok {
		return 0, false
	}
	if n2 < 0xDC00 || n2 > 0xDFFF {
		return 0, s.failPrev(CodeLoneSurrogateInEscape)
	}
	r := (rune(n1-0xD800)<<10 | rune(n2-0xDC00)) + 0x10000
	if !utf8.ValidRune(r) {
		return 0, s.failPrev(CodeInvalidUnicodeCodePoint)
	}
	return r, true
}

// decodeHex4 reads exactly four hexadecimal digits.
func (s *Scanner) decodeHex4() (uint32, bool) {
	var n uint32
	for i := 0; i < 4; i++ {
		b, err := s.src.next()
		if err == io.EOF {
			return 0, s.failHere(CodeEOFWhileParsingString)
		} else if err != nil {
			s.err = ioError(err)
			return 0, false
		}
		v := hexValue[b]
		if v == 0xff {
			return 0, s.failPrev(CodeInvalidEscape)
		}
		n = n<<4 | uint32(v)
	}
	return n, true
}

// scanName scans a run of symbol-body bytes beginning at the current input
// position and ending at a delimiter or the end of input. start is the
// offset of the first content byte; tok selects the token kind and with it
// the error code for a byte that is neither body nor delimiter.
func (s *Scanner) scanName(start int, tok Token) bool {
	if sl := s.sl; sl != nil {
		for sl.idx < len(sl.data) && symbolByte[sl.data[sl.idx]] {
			sl.idx++
		}
		if sl.idx < len(sl.data) && !isDelimiter(sl.data[sl.idx]) {
			return s.failAt(s.nameErr(tok), sl.idx)
		}
		s.text = sl.window(start, sl.idx)
		if len(s.text) == 0 {
			return s.failAt(s.nameErr(tok), start)
		}
		s.tok = tok
		return true
	}
	return s.scanSymbolTail(start, s.scratch[:0], tok)
}

// scanSymbolTail continues a symbol or keyword whose consumed prefix is in
// seed, accumulating into the scratch buffer. It is the reader-backed slow
// path, and also seeds slice-backed symbols that begin with a sign byte.
func (s *Scanner) scanSymbolTail(start int, seed []byte, tok Token) bool {
	if sl := s.sl; sl != nil {
		// The prefix is still present in the input window; rescan from start.
		return s.scanName(start, tok)
	}
	s.scratch = append(s.scratch[:0], seed...)
	for {
		b, err := s.src.peek()
		if err == io.EOF {
			break
		} else if err != nil {
			s.err = ioError(err)
			return false
		}
		if symbolByte[b] {
			s.src.discard()
			s.scratch = append(s.scratch, b)
			continue
		}
		if !isDelimiter(b) {
			return s.failHere(s.nameErr(tok))
		}
		break
	}
	if len(s.scratch) == 0 {
		return s.failAt(s.nameErr(tok), start)
	}
	s.text = s.scratch
	s.tok = tok
	return true
}

func (s *Scanner) nameErr(tok Token) Code {
	switch tok {
	case Keyword:
		return CodeInvalidKeyword
	case Char:
		return CodeInvalidChar
	}
	return CodeInvalidSymbol
}

// Named character literals and their code points.
var charNames = map[string]rune{
	"newline": '\n',
	"return":  '\r',
	"tab":     '\t',
	"space":   ' ',
}

// CharName reports whether r has a named character literal form, and if so
// returns its name without the leading backslash.
func CharName(r rune) (string, bool) {
	switch r {
	case '\n':
		return "newline", true
	case '\r':
		return "return", true
	case '\t':
		return "tab", true
	case ' ':
		return "space", true
	}
	return "", false
}

// scanChar scans a character literal whose leading backslash has been
// consumed. A body run of a single byte denotes that byte (so \n is the
// letter n); a longer run must be one of the named literals. Bytes above
// 0x7F are decoded as a single UTF-8 code point.
func (s *Scanner) scanChar() bool {
	b, err := s.src.next()
	if err == io.EOF {
		return s.failAt(CodeEOFWhileParsingValue, s.pos)
	} else if err != nil {
		s.err = ioError(err)
		return false
	}

	if b >= utf8.RuneSelf {
		return s.scanCharRune(b)
	}
	switch b {
	case ' ', '\t', '\r', '\n':
		// True whitespace has a named form; a bare \ followed by it is an
		// error. A comma is ordinary punctuation here, not a separator.
		return s.failPrev(CodeInvalidChar)
	}
	if !symbolByte[b] {
		// Punctuation taken literally: \( is the character '('.
		s.ch = rune(b)
		s.setCharText(string(b))
		s.tok = Char
		return true
	}

	nb, err := s.src.peek()
	atEnd := err == io.EOF
	if err != nil && err != io.EOF {
		s.err = ioError(err)
		return false
	}
	if atEnd || !symbolByte[nb] {
		if !atEnd && !isDelimiter(nb) {
			return s.failHere(CodeInvalidChar)
		}
		s.ch = rune(b)
		s.setCharText(string(b))
		s.tok = Char
		return true
	}

	// A multi-byte run must spell a named literal.
	if !s.scanSymbolTailAny(s.pos+1, b) {
		return false
	}
	r, ok := charNames[string(s.text)]
	if !ok {
		return s.failAt(CodeInvalidChar, s.pos)
	}
	s.ch = r
	s.tok = Char
	return true
}

// scanSymbolTailAny scans the remainder of a symbol run whose first byte has
// been consumed, setting s.text without committing to a token kind.
func (s *Scanner) scanSymbolTailAny(start int, first byte) bool {
	if s.sl != nil {
		return s.scanName(start, Char)
	}
	return s.scanSymbolTail(start, []byte{first}, Char)
}

func (s *Scanner) setCharText(body string) {
	s.scratch = append(s.scratch[:0], body...)
	s.text = s.scratch
}

// scanCharRune completes a character literal whose first byte b opens a
// multi-byte UTF-8 sequence.
func (s *Scanner) scanCharRune(b byte) bool {
	buf := [utf8.UTFMax]byte{b}
	n := 1
	for !utf8.FullRune(buf[:n]) && n < len(buf) {
		nb, err := s.src.next()
		if err == io.EOF {
			return s.failAt(CodeInvalidChar, s.pos)
		} else if err != nil {
			s.err = ioError(err)
			return false
		}
		buf[n] = nb
		n++
	}
	r, size := utf8.DecodeRune(buf[:n])
	if r == utf8.RuneError && size <= 1 {
		return s.failAt(CodeInvalidChar, s.pos)
	}
	s.ch = r
	s.setCharText(string(buf[:n]))
	s.tok = Char
	return true
}

// scanNumber scans an integer or floating-point literal. A nonzero sign is
// the leading sign byte, which has already been consumed.
func (s *Scanner) scanNumber(sign byte) bool {
	start := s.pos
	if s.sl == nil {
		s.scratch = s.scratch[:0]
		if sign != 0 {
			s.scratch = append(s.scratch, sign)
		}
	}

	intDigits, ok := s.digits()
	if !ok {
		return false
	}
	if intDigits == 0 {
		return s.failHere(CodeInvalidNumber)
	}
	if s.hasLeadingZero(start, sign != 0, intDigits) {
		return s.failAt(CodeInvalidNumber, start)
	}

	isFloat := false
	b, atEnd, ok := s.peekNum()
	if !ok {
		return false
	}
	if !atEnd && b == '.' {
		s.takeNum()
		frac, ok := s.digits()
		if !ok {
			return false
		}
		if frac == 0 {
			return s.failHere(CodeInvalidNumber)
		}
		isFloat = true
		b, atEnd, ok = s.peekNum()
		if !ok {
			return false
		}
	}
	if !atEnd && (b == 'e' || b == 'E') {
		s.takeNum()
		b, atEnd, ok = s.peekNum()
		if !ok {
			return false
		}
		if !atEnd && (b == '+' || b == '-') {
			s.takeNum()
		}
		exp, ok := s.digits()
		if !ok {
			return false
		}
		if exp == 0 {
			return s.failHere(CodeInvalidNumber)
		}
		isFloat = true
		b, atEnd, ok = s.peekNum()
		if !ok {
			return false
		}
	}
	if !atEnd && !isDelimiter(b) {
		return s.failHere(CodeInvalidNumber)
	}

	if sl := s.sl; sl != nil {
		s.text = sl.window(start, sl.idx)
	} else {
		s.text = s.scratch
	}
	if isFloat {
		s.tok = Float
	} else {
		s.tok = Int
	}
	return true
}

// digits consumes a run of decimal digits, reporting how many were seen.
func (s *Scanner) digits() (int, bool) {
	n := 0
	for {
		b, atEnd, ok := s.peekNum()
		if !ok {
			return n, false
		}
		if atEnd || !isDigit(b) {
			return n, true
		}
		s.takeNum()
		n++
	}
}

// peekNum peeks the next byte of a numeric literal. atEnd reports a clean
// end of input.
func (s *Scanner) peekNum() (b byte, atEnd, ok bool) {
	b, err := s.src.peek()
	if err == io.EOF {
		return 0, true, true
	} else if err != nil {
		s.err = ioError(err)
		return 0, false, false
	}
	return b, false, true
}

// takeNum consumes the peeked byte of a numeric literal, copying it to
// scratch on the reader-backed path.
func (s *Scanner) takeNum() {
	if s.sl == nil {
		b, _ := s.src.peek()
		s.scratch = append(s.scratch, b)
	}
	s.src.discard()
}

// hasLeadingZero reports whether the integer part scanned since start has a
// redundant leading zero: 0 and 0.5 are fine, 01 is not.
func (s *Scanner) hasLeadingZero(start int, signed bool, intDigits int) bool {
	if intDigits < 2 {
		return false
	}
	var first byte
	if sl := s.sl; sl != nil {
		i := start
		if signed {
			i++
		}
		first = sl.data[i]
	} else {
		i := 0
		if signed {
			i = 1
		}
		first = s.scratch[i]
	}
	return first == '0'
}

// scanComment scans a line comment from its leading semicolon through the
// terminating newline, if present.
func (s *Scanner) scanComment() bool {
	if sl := s.sl; sl != nil {
		start := sl.idx
		for sl.idx < len(sl.data) && sl.data[sl.idx] != '\n' {
			sl.idx++
		}
		if sl.idx < len(sl.data) {
			sl.idx++ // include the newline
		}
		s.text = sl.window(start, sl.idx)
		s.tok = LineComment
		return true
	}
	s.scratch = s.scratch[:0]
	for {
		b, err := s.src.next()
		if err == io.EOF {
			break
		} else if err != nil {
			s.err = ioError(err)
			return false
		}
		s.scratch = append(s.scratch, b)
		if b == '\n' {
			break
		}
	}
	s.text = s.scratch
	s.tok = LineComment
	return true
}

// failAt records a syntax error positioned at byte offset off.
func (s *Scanner) failAt(code Code, off int) bool {
	s.err = syntaxError(code, s.src.position(off))
	return false
}

// failHere records a syntax error at the next unconsumed byte.
func (s *Scanner) failHere(code Code) bool { return s.failAt(code, s.src.byteOffset()) }

// failPrev records a syntax error at the most recently consumed byte.
func (s *Scanner) failPrev(code Code) bool { return s.failAt(code, s.src.byteOffset()-1) }
