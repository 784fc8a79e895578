// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package edn_test

import (
	"errors"
	"strings"
	"testing"

	edn "github.com/alex-dixon/serde-edn"
	"github.com/google/go-cmp/cmp"
)

// scanAll collects the tokens of input, scanning it both from a string and
// through an io.Reader and requiring the two paths to agree.
func scanAll(t *testing.T, input string, comments bool) ([]edn.Token, []string) {
	t.Helper()

	run := func(s *edn.Scanner) (toks []edn.Token, texts []string, err error) {
		s.AllowComments(comments)
		for s.Next() {
			toks = append(toks, s.Token())
			texts = append(texts, string(s.Text()))
		}
		return toks, texts, s.Err()
	}
	toks, texts, err := run(edn.NewStringScanner(input))
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	rtoks, rtexts, rerr := run(edn.NewScanner(strings.NewReader(input)))
	if rerr != nil {
		t.Fatalf("Next (reader) failed: %v", rerr)
	}
	if diff := cmp.Diff(toks, rtoks); diff != "" {
		t.Errorf("Input: %#q\nReader tokens differ: (-string, +reader)\n%s", input, diff)
	}
	if diff := cmp.Diff(texts, rtexts); diff != "" {
		t.Errorf("Input: %#q\nReader text differs: (-string, +reader)\n%s", input, diff)
	}
	return toks, texts
}

func TestScanner(t *testing.T) {
	tests := []struct {
		input string
		want  []edn.Token
	}{
		// Empty inputs
		{"", nil},
		{"  ", nil},
		{",,, \n,\t \r\n", nil},

		// Reserved words
		{"true false nil", []edn.Token{edn.True, edn.False, edn.Nil}},

		// Symbols that merely begin with a reserved word stay symbols.
		{"truex tru falsey nils", []edn.Token{edn.Symbol, edn.Symbol, edn.Symbol, edn.Symbol}},

		// Punctuation
		{"( ) [ ] { } #{", []edn.Token{
			edn.LParen, edn.RParen, edn.LSquare, edn.RSquare,
			edn.LBrace, edn.RBrace, edn.SetOpen,
		}},

		// Strings
		{`"" "a b c" "a\nb\tc"`, []edn.Token{edn.String, edn.String, edn.String}},
		{`"\"\\\/\b\f\n\r\t"`, []edn.Token{edn.String}},
		{`" Ǽꪜ"`, []edn.Token{edn.String}},

		// Numbers
		{`0 -1 +5 5139 2.3 5e+9 3.6E-4 -0.001`, []edn.Token{
			edn.Int, edn.Int, edn.Int, edn.Int,
			edn.Float, edn.Float, edn.Float, edn.Float,
		}},

		// Keywords and symbols
		{`:a :key-word x -main + - .hidden *ns*`, []edn.Token{
			edn.Keyword, edn.Keyword, edn.Symbol, edn.Symbol,
			edn.Symbol, edn.Symbol, edn.Symbol, edn.Symbol,
		}},

		// Characters
		{`\a \n \newline \space \( \1`, []edn.Token{
			edn.Char, edn.Char, edn.Char, edn.Char, edn.Char, edn.Char,
		}},

		// Mixed forms, with commas as whitespace
		{`{:a 1, :b [nil, true #{x}]}`, []edn.Token{
			edn.LBrace, edn.Keyword, edn.Int, edn.Keyword,
			edn.LSquare, edn.Nil, edn.True, edn.SetOpen, edn.Symbol, edn.RBrace,
			edn.RSquare, edn.RBrace,
		}},

		// Adjacent tokens split by delimiters rather than whitespace.
		{`(def"x"[1]{})`, []edn.Token{
			edn.LParen, edn.Symbol, edn.String, edn.LSquare, edn.Int,
			edn.RSquare, edn.LBrace, edn.RBrace, edn.RParen,
		}},
	}

	for _, test := range tests {
		got, _ := scanAll(t, test.input, false)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nTokens: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestScannerText(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`"a\tb c"`, []string{"a\tb c"}},
		{`"plain text"`, []string{"plain text"}},
		{`"😀"`, []string{"\U0001f600"}}, // surrogate pair
		{`:keyword`, []string{"keyword"}},
		{`some-symbol`, []string{"some-symbol"}},
		{`-12.5e3`, []string{"-12.5e3"}},
		{`+42`, []string{"+42"}},
		{`\newline \n \*`, []string{"newline", "n", "*"}},
	}
	for _, test := range tests {
		_, got := scanAll(t, test.input, false)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nText: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestScannerChar(t *testing.T) {
	tests := []struct {
		input string
		want  rune
	}{
		{`\a`, 'a'},
		{`\n`, 'n'}, // a single letter is that letter, not an escape
		{`\newline`, '\n'},
		{`\return`, '\r'},
		{`\tab`, '\t'},
		{`\space`, ' '},
		{`\1`, '1'},
		{`\(`, '('},
		{`\,`, ','},
		{`\;`, ';'},
		{`\\`, '\\'},
		{`\é`, 'é'},
		{`\日`, '日'},
	}
	for _, test := range tests {
		for _, s := range []*edn.Scanner{
			edn.NewStringScanner(test.input),
			edn.NewScanner(strings.NewReader(test.input)),
		} {
			if !s.Next() {
				t.Fatalf("Next %#q failed: %v", test.input, s.Err())
			}
			if s.Token() != edn.Char {
				t.Errorf("Input %#q: got token %v, want character", test.input, s.Token())
			}
			if got := s.Rune(); got != test.want {
				t.Errorf("Input %#q: got %q, want %q", test.input, got, test.want)
			}
		}
	}
}

func TestScannerErrors(t *testing.T) {
	tests := []struct {
		input string
		code  edn.Code
		pos   edn.LineCol
	}{
		{`"unterminated`, edn.CodeEOFWhileParsingString, edn.LineCol{Line: 1, Column: 14}},
		{"\"raw\ncontrol\"", edn.CodeControlCharacterInString, edn.LineCol{Line: 1, Column: 5}},
		{`"\q"`, edn.CodeInvalidEscape, edn.LineCol{Line: 1, Column: 3}},
		{`"\u00"`, edn.CodeInvalidEscape, edn.LineCol{Line: 1, Column: 6}},
		{`"\udc00"`, edn.CodeLoneSurrogateInEscape, edn.LineCol{Line: 1, Column: 7}},
		{`"\ud800 "`, edn.CodeUnexpectedEndOfHexEscape, edn.LineCol{Line: 1, Column: 8}},
		{`01`, edn.CodeInvalidNumber, edn.LineCol{Line: 1, Column: 1}},
		{`-01`, edn.CodeInvalidNumber, edn.LineCol{Line: 1, Column: 1}},
		{`1.`, edn.CodeInvalidNumber, edn.LineCol{Line: 1, Column: 3}},
		{`1.5e`, edn.CodeInvalidNumber, edn.LineCol{Line: 1, Column: 5}},
		{`12x`, edn.CodeInvalidNumber, edn.LineCol{Line: 1, Column: 3}},
		{`:`, edn.CodeInvalidKeyword, edn.LineCol{Line: 1, Column: 2}},
		{`:a/b`, edn.CodeInvalidKeyword, edn.LineCol{Line: 1, Column: 3}},
		{`ab@cd`, edn.CodeInvalidSymbol, edn.LineCol{Line: 1, Column: 3}},
		{`\ x`, edn.CodeInvalidChar, edn.LineCol{Line: 1, Column: 2}},
		{`\nx`, edn.CodeInvalidChar, edn.LineCol{Line: 1, Column: 1}},
		{`#x`, edn.CodeExpectedValue, edn.LineCol{Line: 1, Column: 2}},
		{`@`, edn.CodeExpectedValue, edn.LineCol{Line: 1, Column: 1}},
		{`; comment`, edn.CodeExpectedValue, edn.LineCol{Line: 1, Column: 1}},
	}
	for _, test := range tests {
		for name, s := range map[string]*edn.Scanner{
			"string": edn.NewStringScanner(test.input),
			"reader": edn.NewScanner(strings.NewReader(test.input)),
		} {
			for s.Next() {
			}
			var e *edn.Error
			if err := s.Err(); !errors.As(err, &e) {
				t.Errorf("Input %#q (%s): got error %v, want *Error", test.input, name, err)
				continue
			}
			if e.Code != test.code {
				t.Errorf("Input %#q (%s): got code %v, want %v", test.input, name, e.Code, test.code)
			}
			if e.Pos != test.pos {
				t.Errorf("Input %#q (%s): got position %v, want %v", test.input, name, e.Pos, test.pos)
			}
		}
	}
}

func TestScannerComments(t *testing.T) {
	const input = "; header\n[1 ; trailing\n2]\n; eof comment"

	toks, texts := scanAll(t, input, true)
	wantToks := []edn.Token{
		edn.LineComment, edn.LSquare, edn.Int, edn.LineComment,
		edn.Int, edn.RSquare, edn.LineComment,
	}
	if diff := cmp.Diff(wantToks, toks); diff != "" {
		t.Errorf("Tokens: (-want, +got)\n%s", diff)
	}
	wantTexts := []string{"; header\n", "[", "1", "; trailing\n", "2", "]", "; eof comment"}
	if diff := cmp.Diff(wantTexts, texts); diff != "" {
		t.Errorf("Text: (-want, +got)\n%s", diff)
	}
}

func TestScannerLoc(t *testing.T) {
	type tokPos struct {
		Tok  edn.Token
		Span edn.Span
		Pos  edn.LineCol
	}
	tests := []struct {
		input string
		want  []tokPos
	}{
		{"", nil},
		{"{ }", []tokPos{
			{edn.LBrace, edn.Span{Pos: 0, End: 1}, edn.LineCol{Line: 1, Column: 1}},
			{edn.RBrace, edn.Span{Pos: 2, End: 3}, edn.LineCol{Line: 1, Column: 3}},
		}},
		{"\"foo\"\n :bar", []tokPos{
			{edn.String, edn.Span{Pos: 0, End: 5}, edn.LineCol{Line: 1, Column: 1}},
			{edn.Keyword, edn.Span{Pos: 7, End: 11}, edn.LineCol{Line: 2, Column: 2}},
		}},
		{"[12\n 3.5]", []tokPos{
			{edn.LSquare, edn.Span{Pos: 0, End: 1}, edn.LineCol{Line: 1, Column: 1}},
			{edn.Int, edn.Span{Pos: 1, End: 3}, edn.LineCol{Line: 1, Column: 2}},
			{edn.Float, edn.Span{Pos: 5, End: 8}, edn.LineCol{Line: 2, Column: 2}},
			{edn.RSquare, edn.Span{Pos: 8, End: 9}, edn.LineCol{Line: 2, Column: 5}},
		}},
	}
	for _, test := range tests {
		var got []tokPos
		s := edn.NewStringScanner(test.input)
		for s.Next() {
			loc := s.Location()
			got = append(got, tokPos{s.Token(), loc.Span, loc.First})
		}
		if s.Err() != nil {
			t.Errorf("Next failed: %v", s.Err())
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nTokens: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", `""`},
		{" ", `" "`},
		{"a\t\nb", `"a\t\nb"`},
		{"\x00\x01\x02", `"\u0000\u0001\u0002"`},
		{`a "b" c\d`, `"a \"b\" c\\d"`},
		{"héllo", `"héllo"`},
		{"ends with control\v", `"ends with control\u000b"`},
	}
	for _, test := range tests {
		if got := edn.Quote(test.input); got != test.want {
			t.Errorf("Quote(%#q): got %#q, want %#q", test.input, got, test.want)
		}
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		input string
		want  string
		fail  bool
	}{
		{``, ``, true},            // missing quotes
		{`"missing`, ``, true},    // missing quotes
		{`missing"`, ``, true},    // missing quotes
		{`""`, ``, false},         // ok
		{`"ok go"`, "ok go", false},
		{`"a\nb\tc"`, "a\nb\tc", false},
		{`"\b\f\n\r\t"`, "\b\f\n\r\t", false},
		{`"a & b"`, "a & b", false},
		{`"😀"`, "\U0001f600", false}, // surrogate pair
		{`"\u"`, ``, true},                      // incomplete hex escape
		{`"\u00x9"`, ``, true},                  // invalid hex digit
		{`"\ud800 z"`, ``, true},                // unpaired leading surrogate
		{`"\q"`, ``, true},                      // unknown escape
		{`"a\"b"`, `a"b`, false},
	}
	for _, test := range tests {
		got, err := edn.Unquote(test.input)
		if err != nil {
			if !test.fail {
				t.Errorf("Unquote(%#q): got error %v, want %#q", test.input, err, test.want)
			}
			continue
		}
		if test.fail {
			t.Errorf("Unquote(%#q): got %#q, want error", test.input, got)
		} else if string(got) != test.want {
			t.Errorf("Unquote(%#q): got %#q, want %#q", test.input, got, test.want)
		}
	}
}
