// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package edn

import "fmt"

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// A LineCol describes the line number and column offset of a location in
// source text. Lines are numbered from 1. The first character of the input,
// and the first character after each newline, is in column 1.
type LineCol struct {
	Line   int
	Column int
}

func (lc LineCol) String() string { return fmt.Sprintf("line %d column %d", lc.Line, lc.Column) }

// A Location describes the complete location of a range of source text,
// including line and column offsets.
//
// Line and column offsets are not tracked during scanning; they are computed
// on request, at a cost linear in the offset. Callers on a hot path should
// use Span alone.
type Location struct {
	Span
	First, Last LineCol
}
