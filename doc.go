// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

// Package edn implements a scanner and event-driven parser for EDN, the
// extensible data notation.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for EDN. Construct a scanner
// from an io.Reader, a byte slice, or a string, and call its Next method to
// iterate over the stream. Next advances to the next input token and reports
// whether one is available:
//
//	s := edn.NewStringScanner(`{:a 1, :b [true nil]}`)
//	for s.Next() {
//	   log.Printf("Next token: %v", s.Token())
//	}
//	if s.Err() != nil {
//	   log.Fatalf("Scanning failed: %v", s.Err())
//	}
//
// Scanners constructed over a byte slice or a string return token text as
// windows into the original input whenever no escape processing was required,
// avoiding a copy on that path.
//
// # Streaming
//
// The Stream type implements an event-driven stream parser. The parser works
// by calling methods on a Handler value to report the structure of the input.
// In case of error, parsing is terminated and an error of concrete type
// *edn.Error is returned.
//
//	st := edn.NewStream(input)
//	if err := st.Parse(handler); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// To parse a single value from the front of the input, call ParseOne. This
// method returns io.EOF if no further values are available.
//
// # Handlers
//
// The methods of a Handler correspond to the syntax of EDN values:
//
//	EDN type   | Methods                   | Description
//	---------- | ------------------------- | ----------------------------------
//	list       | BeginList, EndList        | ( ... )
//	vector     | BeginVector, EndVector    | [ ... ]
//	set        | BeginSet, EndSet          | #{ ... }
//	map        | BeginMap, EndMap          | { key value ... }
//	value      | Value                     | nil, true, 1, 2.0, "s", \c, :k, sym
//	--         | EndOfInput                | end of input
//
// Map keys and values are delivered as alternating events between BeginMap
// and EndMap; the parser guarantees their number is even.
//
// Each method is passed an Anchor that can be used to retrieve location and
// type information. The Anchor passed to a handler method is only valid for
// the duration of that method call; the handler must copy any data it needs
// to retain beyond the lifetime of the call.
//
// The ast subpackage builds generic values from this event stream, and the
// bind subpackage decodes the same stream directly into Go values.
package edn
