// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package ednjson_test

import (
	"math"
	"testing"

	"github.com/alex-dixon/serde-edn/ast"
	"github.com/alex-dixon/serde-edn/ednjson"
)

func mustParse(t *testing.T, input string) ast.Value {
	t.Helper()
	v, err := ast.ParseString(input)
	if err != nil {
		t.Fatalf("ParseString(%#q) failed: %v", input, err)
	}
	return v
}

func TestToJSON(t *testing.T) {
	tests := []struct {
		input string // EDN
		want  string // JSON
	}{
		{`nil`, `null`},
		{`true`, `true`},
		{`42`, `42`},
		{`-2.5`, `-2.5`},
		{`"text"`, `"text"`},
		{`\c`, `"c"`},
		{`\newline`, `"\n"`},
		{`:kw`, `"kw"`},
		{`sym`, `"sym"`},
		{`(1 2)`, `[1,2]`},
		{`[1 [2]]`, `[1,[2]]`},
		{`#{:a}`, `["a"]`},
		{`{}`, `{}`},
		{`{:a 1 "b" [true nil]}`, `{"a":1,"b":[true,null]}`},

		// Non-textual map keys fall back to their EDN spelling.
		{`{[1 2] "v" {:a 1} "m"}`, `{"[1 2]":"v","{:a 1}":"m"}`},
	}
	for _, test := range tests {
		got, err := ednjson.ToJSON(mustParse(t, test.input))
		if err != nil {
			t.Errorf("ToJSON(%#q) failed: %v", test.input, err)
			continue
		}
		if string(got) != test.want {
			t.Errorf("ToJSON(%#q): got %#q, want %#q", test.input, got, test.want)
		}
	}

	if _, err := ednjson.ToJSON(ast.Float(math.Inf(1))); err == nil {
		t.Error("ToJSON(inf): got nil, want error")
	}
	if _, err := ednjson.ToJSON(ast.Float(math.NaN())); err == nil {
		t.Error("ToJSON(nan): got nil, want error")
	}
}

func TestToJSONIndent(t *testing.T) {
	got, err := ednjson.ToJSONIndent(mustParse(t, `{:a [1 2]}`), "", "  ")
	if err != nil {
		t.Fatalf("ToJSONIndent failed: %v", err)
	}
	const want = "{\n  \"a\": [\n    1,\n    2\n  ]\n}"
	if string(got) != want {
		t.Errorf("ToJSONIndent: got %#q, want %#q", got, want)
	}
}

func TestFromJSON(t *testing.T) {
	tests := []struct {
		input string // JSON
		want  string // canonical EDN
	}{
		{`null`, `nil`},
		{`true`, `true`},
		{`"s"`, `"s"`},

		// Numbers without a fraction or exponent stay integers.
		{`42`, `42`},
		{`-7`, `-7`},
		{`42.0`, `42.0`},
		{`1e2`, `100.0`},
		{`18446744073709551615`, `1.8446744073709552e+19`}, // beyond int64

		{`[1,"two",[false]]`, `[1 "two" [false]]`},
		{`{}`, `{}`},
		{`{"a":1,"b":{"c":null}}`, `{"a" 1 "b" {"c" nil}}`},
	}
	for _, test := range tests {
		got, err := ednjson.FromJSON([]byte(test.input))
		if err != nil {
			t.Errorf("FromJSON(%#q) failed: %v", test.input, err)
			continue
		}
		if text := ast.Text(got); text != test.want {
			t.Errorf("FromJSON(%#q): got %#q, want %#q", test.input, text, test.want)
		}
	}
}

func TestFromJSONKeywordKeys(t *testing.T) {
	got, err := ednjson.FromJSONWith([]byte(`{"a":{"b":1}}`), ednjson.Options{KeywordKeys: true})
	if err != nil {
		t.Fatalf("FromJSONWith failed: %v", err)
	}
	if text := ast.Text(got); text != `{:a {:b 1}}` {
		t.Errorf("FromJSONWith: got %#q, want {:a {:b 1}}", text)
	}
}

func TestFromJSONErrors(t *testing.T) {
	for _, bad := range []string{``, `{`, `[1,]`, `tru`, `1 2`} {
		if v, err := ednjson.FromJSON([]byte(bad)); err == nil {
			t.Errorf("FromJSON(%#q): got %v, want error", bad, v)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	// Values in the common subset of the two formats survive a round trip.
	inputs := []string{
		`nil`, `true`, `-15`, `2.5`, `"s"`,
		`[1 [2.5 "x"] nil]`,
		`{"a" 1 "b" [true {"c" nil}]}`,
	}
	for _, input := range inputs {
		orig := mustParse(t, input)
		data, err := ednjson.ToJSON(orig)
		if err != nil {
			t.Fatalf("ToJSON(%#q) failed: %v", input, err)
		}
		back, err := ednjson.FromJSON(data)
		if err != nil {
			t.Fatalf("FromJSON(%#q) failed: %v", data, err)
		}
		if !ast.Equal(orig, back) {
			t.Errorf("Round trip %#q: got %v, want %v", input, back, orig)
		}
	}
}
