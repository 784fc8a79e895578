// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package edn

import (
	"bufio"
	"io"
)

// A source supplies input bytes to the scanner one at a time with one byte of
// lookahead. The set of implementations is closed: a source is either backed
// by an io.Reader, by a byte slice, or by a string, and the scanner is
// constructed over one of the three. The interface is not meant for external
// extension.
type source interface {
	// next returns the next input byte, consuming it. At the end of input it
	// returns io.EOF; any other error is a failure of the underlying stream.
	next() (byte, error)

	// peek returns the next input byte without consuming it.
	peek() (byte, error)

	// discard consumes a byte previously returned by peek.
	discard()

	// byteOffset reports the offset of the next byte that next or peek
	// would return.
	byteOffset() int

	// mark records the current offset as the start of a token, so that its
	// position stays recoverable after more input is consumed.
	mark()

	// position reports the line and column of the byte at offset off. It is
	// called only on the error path and may take time linear in off. For a
	// reader-backed source, off must be the marked offset or within one byte
	// of the current offset.
	position(off int) LineCol
}

// readerSource reads from an io.Reader. Because consumed bytes are gone, it
// tracks line and column incrementally as it reads; the cost is paid during
// scanning, which only matters for this source kind.
type readerSource struct {
	r   *bufio.Reader
	off int

	line, col         int // position of the next unread byte, 1-based
	prevLine, prevCol int // position of the most recently consumed byte

	markOff           int // offset recorded by mark
	markLine, markCol int
}

func newReaderSource(r io.Reader) *readerSource {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &readerSource{r: br, line: 1, col: 1, markLine: 1, markCol: 1}
}

func (r *readerSource) next() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, err
	}
	r.advance(b)
	return b, nil
}

func (r *readerSource) peek() (byte, error) {
	bs, err := r.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return bs[0], nil
}

func (r *readerSource) discard() {
	b, err := r.r.ReadByte()
	if err != nil {
		return // discard is only called after a successful peek
	}
	r.advance(b)
}

func (r *readerSource) advance(b byte) {
	r.off++
	r.prevLine, r.prevCol = r.line, r.col
	if b == '\n' {
		r.line++
		r.col = 1
	} else {
		r.col++
	}
}

func (r *readerSource) byteOffset() int { return r.off }

func (r *readerSource) mark() {
	r.markOff = r.off
	r.markLine, r.markCol = r.line, r.col
}

func (r *readerSource) position(off int) LineCol {
	switch off {
	case r.markOff:
		return LineCol{Line: r.markLine, Column: r.markCol}
	case r.off - 1:
		return LineCol{Line: r.prevLine, Column: r.prevCol}
	}
	return LineCol{Line: r.line, Column: r.col}
}

// sliceSource reads from a byte slice. Peeking is a bounds check, token text
// can be returned as a window into the input without copying, and positions
// are recovered by rescanning the input only when an error is reported.
type sliceSource struct {
	data []byte
	idx  int // offset of the next byte returned by next or peek
}

func newSliceSource(data []byte) *sliceSource { return &sliceSource{data: data} }

func (s *sliceSource) next() (byte, error) {
	if s.idx >= len(s.data) {
		return 0, io.EOF
	}
	b := s.data[s.idx]
	s.idx++
	return b, nil
}

func (s *sliceSource) peek() (byte, error) {
	if s.idx >= len(s.data) {
		return 0, io.EOF
	}
	return s.data[s.idx], nil
}

func (s *sliceSource) discard() { s.idx++ }

func (s *sliceSource) byteOffset() int { return s.idx }

// mark is a no-op: positions are recovered from the retained input.
func (s *sliceSource) mark() {}

func (s *sliceSource) position(off int) LineCol {
	if off > len(s.data) {
		off = len(s.data)
	}
	pos := LineCol{Line: 1, Column: 1}
	for _, b := range s.data[:off] {
		if b == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}

// window returns the input bytes in [start, end) without copying. The result
// is valid for the lifetime of the input slice.
func (s *sliceSource) window(start, end int) []byte { return s.data[start:end] }
