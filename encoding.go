// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package edn

import (
	"errors"
	"strings"

	"github.com/alex-dixon/serde-edn/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as an EDN string literal. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string {
	return `"` + string(escape.Quote(mem.S(src))) + `"`
}

// AppendQuoted appends the EDN string literal for src to buf.
func AppendQuoted(buf []byte, src string) []byte {
	buf = append(buf, '"')
	buf = append(buf, escape.Quote(mem.S(src))...)
	return append(buf, '"')
}

// Unquote decodes an EDN string literal. Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
func Unquote(src string) ([]byte, error) {
	if len(src) < 2 || !strings.HasPrefix(src, `"`) || !strings.HasSuffix(src, `"`) {
		return nil, errors.New("missing quotations")
	}
	return escape.Unquote(mem.S(src[1 : len(src)-1]))
}
