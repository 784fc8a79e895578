// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package ast_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/go-cmp/cmp"

	edn "github.com/alex-dixon/serde-edn"
	"github.com/alex-dixon/serde-edn/ast"
)

func mustParse(t *testing.T, input string) ast.Value {
	t.Helper()
	v, err := ast.ParseString(input)
	if err != nil {
		t.Fatalf("ParseString(%#q) failed: %v", input, err)
	}
	return v
}

func TestParseRoundTrip(t *testing.T) {
	// Each input is in canonical form and must re-encode byte-identically.
	tests := []string{
		`nil`, `true`, `false`,
		`0`, `-15`, `9000`,
		`2.5`, `-0.125`, `1e+100`,
		`""`, `"a b c"`, `"say \"when\""`,
		`:kw`, `sym`, `-main`,
		`\a`, `\newline`, `\space`, `\(`,
		`()`, `[]`, `#{}`, `{}`,
		`(1 2 3)`, `[x y]`, `#{:only}`,
		`{:a 1 :b [2 3] :c {:d #{}}}`,
		`[nil true 1 2.5 "s" :k sym \c () {}]`,
		`{{:a 1} "map key" [1 2] "vector key"}`,
	}
	for _, input := range tests {
		v := mustParse(t, input)
		if got := ast.Text(v); got != input {
			t.Errorf("Text: got %#q, want %#q", got, input)
		}
	}
}

func TestParseValues(t *testing.T) {
	tests := []struct {
		input string
		want  ast.Value
	}{
		{` nil `, ast.Nil{}},
		{"42", ast.Int(42)},
		{"+42", ast.Int(42)},
		{"42.0", ast.Float(42)},
		{`"A"`, ast.String("A")},
		{`\n`, ast.Char('n')},
		{`\newline`, ast.Char('\n')},
		{`\,`, ast.Char(',')},
		{"truex", ast.Symbol("truex")},
		{"tru", ast.Symbol("tru")},
		{"true", ast.Bool(true)},
		{"[1,2,,3]", ast.Vector{ast.Int(1), ast.Int(2), ast.Int(3)}},

		// An integer too large for int64 becomes a float.
		{"92233720368547758080", ast.Float(9.223372036854776e19)},
		{"-92233720368547758080", ast.Float(-9.223372036854776e19)},
	}
	for _, test := range tests {
		got := mustParse(t, test.input)
		if !ast.Equal(got, test.want) {
			t.Errorf("ParseString(%#q): got %v, want %v", test.input, got, test.want)
		}
	}
}

func TestParseMap(t *testing.T) {
	// Duplicate keys: the last value wins, at the first occurrence's position.
	m := mustParse(t, `{:a 1 :b 2 :a 3}`).(*ast.Map)
	if got := ast.Text(m); got != `{:a 3 :b 2}` {
		t.Errorf("Text: got %#q, want {:a 3 :b 2}", got)
	}

	// Any value can be a key, looked up by a fresh structurally-equal value.
	v := mustParse(t, `{{:a 1} :found [7] :vec}`).(*ast.Map)
	if got, ok := v.Get(mapOf("a", ast.Int(1))); !ok || !ast.Equal(got, ast.Keyword("found")) {
		t.Errorf("Get(map key): got %v, %v; want :found, true", got, ok)
	}
	if got, ok := v.Get(ast.Vector{ast.Int(7)}); !ok || !ast.Equal(got, ast.Keyword("vec")) {
		t.Errorf("Get(vector key): got %v, %v; want :vec, true", got, ok)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		code  edn.Code
		pos   edn.LineCol
	}{
		{``, edn.CodeEOFWhileParsingValue, edn.LineCol{}},
		{`  `, edn.CodeEOFWhileParsingValue, edn.LineCol{}},
		{`{0}`, edn.CodeInvalidMapKey, edn.LineCol{Line: 1, Column: 2}},
		{`{:a}`, edn.CodeOddMapForms, edn.LineCol{Line: 1, Column: 4}},
		{`[1 2`, edn.CodeEOFWhileParsingVector, edn.LineCol{Line: 1, Column: 5}},
		{`1 2`, edn.CodeTrailingCharacters, edn.LineCol{Line: 1, Column: 3}},
		{`[] x`, edn.CodeTrailingCharacters, edn.LineCol{Line: 1, Column: 4}},
		{`1)`, edn.CodeTrailingCharacters, edn.LineCol{Line: 1, Column: 2}},
		{`01`, edn.CodeInvalidNumber, edn.LineCol{Line: 1, Column: 1}},
	}
	for _, test := range tests {
		_, err := ast.ParseString(test.input)
		var e *edn.Error
		if !errors.As(err, &e) {
			t.Errorf("ParseString(%#q): got %v, want *Error", test.input, err)
			continue
		}
		if e.Code != test.code {
			t.Errorf("ParseString(%#q): got code %v, want %v", test.input, e.Code, test.code)
		}
		if e.Pos != test.pos {
			t.Errorf("ParseString(%#q): got position %v, want %v", test.input, e.Pos, test.pos)
		}
	}

	// The error text carries the position for syntax errors.
	_, err := ast.ParseString(`{0}`)
	if got, want := err.Error(), "invalid map key at line 1 column 2"; got != want {
		t.Errorf("Error: got %q, want %q", got, want)
	}
}

func TestParseDepth(t *testing.T) {
	ok := strings.Repeat("[", 128) + strings.Repeat("]", 128)
	if _, err := ast.ParseString(ok); err != nil {
		t.Errorf("ParseString at the depth limit failed: %v", err)
	}

	deep := strings.Repeat("[", 129) + strings.Repeat("]", 129)
	_, err := ast.ParseString(deep)
	var e *edn.Error
	if !errors.As(err, &e) || e.Code != edn.CodeRecursionLimitExceeded {
		t.Errorf("ParseString past the depth limit: got %v, want recursion limit exceeded", err)
	}
}

func TestParseMulti(t *testing.T) {
	vs, err := ast.Parse(strings.NewReader("1 :two [3] \n {:four 4}"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var got []string
	for _, v := range vs {
		got = append(got, ast.Text(v))
	}
	want := []string{"1", ":two", "[3]", "{:four 4}"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Values: (-want, +got)\n%s", diff)
	}
}

func TestParserNext(t *testing.T) {
	p := ast.NewParser(edn.NewStringScanner("; intro\n1 ; one\n2"))
	p.AllowComments(true)
	var got []ast.Value
	for {
		v, err := p.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		got = append(got, v)
	}
	if diff := cmp.Diff([]ast.Value{ast.Int(1), ast.Int(2)}, got); diff != "" {
		t.Errorf("Values: (-want, +got)\n%s", diff)
	}
}

func TestParseBytesReaderAgree(t *testing.T) {
	// The zero-copy slice path and the reader path must produce equal values.
	inputs := []string{
		`{:name "Ada" :langs [:clj :rust] :age 36}`,
		`#{"plain" "esc\nape" \x}`,
		`(1 2.5 -3 +4 nil)`,
	}
	for _, input := range inputs {
		a, err := ast.ParseBytes([]byte(input))
		if err != nil {
			t.Fatalf("ParseBytes(%#q) failed: %v", input, err)
		}
		b, err := ast.ParseSingle(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ParseSingle(%#q) failed: %v", input, err)
		}
		if !ast.Equal(a, b) {
			t.Errorf("Input %#q: slice %v, reader %v", input, a, b)
		}
	}
}

// randomValue builds an arbitrary value of bounded depth.
func randomValue(f *gofakeit.Faker, depth int) ast.Value {
	if depth <= 0 {
		return randomScalar(f)
	}
	switch f.Number(0, 6) {
	case 0:
		n := f.Number(0, 4)
		out := make(ast.Vector, n)
		for i := range out {
			out[i] = randomValue(f, depth-1)
		}
		return out
	case 1:
		n := f.Number(0, 4)
		out := make(ast.List, n)
		for i := range out {
			out[i] = randomValue(f, depth-1)
		}
		return out
	case 2:
		n := f.Number(0, 3)
		out := make(ast.Set, n)
		for i := range out {
			out[i] = randomValue(f, depth-1)
		}
		return out
	case 3:
		m := ast.NewMap()
		for i := f.Number(0, 3); i > 0; i-- {
			m.Set(randomKey(f), randomValue(f, depth-1))
		}
		return m
	default:
		return randomScalar(f)
	}
}

// randomKey picks a map key. Numeric literals are not legal in key position,
// so keys come from the other kinds.
func randomKey(f *gofakeit.Faker) ast.Value {
	switch f.Number(0, 4) {
	case 0:
		return ast.Keyword(f.Word())
	case 1:
		return ast.String(f.Sentence(2))
	case 2:
		return ast.Symbol(f.Word())
	case 3:
		return ast.Vector{ast.Keyword(f.Word()), ast.Int(f.Number(0, 99))}
	default:
		return ast.Bool(f.Bool())
	}
}

func randomScalar(f *gofakeit.Faker) ast.Value {
	switch f.Number(0, 7) {
	case 0:
		return ast.Nil{}
	case 1:
		return ast.Bool(f.Bool())
	case 2:
		return ast.Int(f.Number(-1000000, 1000000))
	case 3:
		return ast.Float(f.Float64Range(-1e6, 1e6))
	case 4:
		return ast.String(f.Sentence(3))
	case 5:
		return ast.Keyword(f.Word())
	case 6:
		return ast.Symbol(f.Word())
	default:
		chars := []rune{'a', 'Z', '7', '\n', '\t', ' ', '(', ',', 'é'}
		return ast.Char(chars[f.Number(0, len(chars)-1)])
	}
}

func TestRandomRoundTrip(t *testing.T) {
	f := gofakeit.New(20190101)
	for i := 0; i < 200; i++ {
		orig := randomValue(f, 4)
		text := ast.Text(orig)

		back, err := ast.ParseString(text)
		if err != nil {
			t.Fatalf("ParseString(%#q) failed: %v", text, err)
		}
		if !ast.Equal(orig, back) {
			t.Errorf("Round trip: got %v, want %v", back, orig)
		}
		if got := ast.Text(back); got != text {
			t.Errorf("Re-encode: got %#q, want %#q", got, text)
		}
	}
}
