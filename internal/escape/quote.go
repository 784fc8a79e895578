// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package escape

import "go4.org/mem"

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// Quote escapes the content of src for inclusion in an EDN string literal.
// Quotation marks, backslashes, and control bytes are escaped; everything
// else is emitted as-is.
func Quote(src mem.RO) []byte {
	buf := make([]byte, 0, src.Len()+2)
	for i := 0; i < src.Len(); i++ {
		b := src.At(i)
		switch {
		case b == '"' || b == '\\':
			buf = append(buf, '\\', b)
		case b < 0x20:
			if e := controlEsc[b]; e != 0 {
				buf = append(buf, '\\', e)
			} else {
				buf = append(buf, '\\', 'u', '0', '0', hexDigit[b>>4], hexDigit[b&15])
			}
		default:
			buf = append(buf, b)
		}
	}
	return buf
}
