package parser

import (
	"bufio"
	"io"
)

// ByteSource wraps an io.Reader with a push-back buffer and an optional
// running XOR checksum, per spec.md §4.1. The grammar is LL(1) after the
// line state machine peels off context, so the state machine itself never
// pushes back more than one byte per decision point (see the design note
// in spec.md §4.1); the real-value reader's function-keyword lookahead
// (spec.md §4.3/§4.4) is the one place that needs to undo a short run of
// already-read bytes at once, so the buffer here is a small stack rather
// than a strict one-byte slot — "at least one" byte of push-back depth is
// the floor the spec requires, not a ceiling.
type ByteSource struct {
	r *bufio.Reader

	// pos is the position of the byte that the *next* call to Next will
	// return.
	pos Position

	pushback []byte

	checksum bool
	sum      byte
}

// NewByteSource builds a ByteSource reading from r. checksum controls
// whether the running XOR accumulator is maintained (the
// parse-checksum dialect).
func NewByteSource(r io.Reader, checksum bool) *ByteSource {
	return &ByteSource{
		r:        bufio.NewReader(r),
		pos:      Position{Line: 1, Column: 1},
		checksum: checksum,
	}
}

// Pos returns the position of the byte that the next call to Next will
// return.
func (s *ByteSource) Pos() Position { return s.pos }

// Next returns the next byte of input. It returns io.EOF when the
// underlying reader is exhausted, or the reader's error unchanged
// otherwise. When a
// byte is returned, the running XOR sum (if enabled) is updated with it
// and the position advances past it.
func (s *ByteSource) Next() (byte, error) {
	var b byte
	if n := len(s.pushback); n > 0 {
		b = s.pushback[n-1]
		s.pushback = s.pushback[:n-1]
	} else {
		var err error
		b, err = s.r.ReadByte()
		if err != nil {
			return 0, err
		}
	}

	if s.checksum {
		s.sum ^= b
	}
	if b == '\n' {
		s.pos.Line++
		s.pos.Column = 1
	} else {
		s.pos.Column++
	}
	s.pos.Offset++
	return b, nil
}

// PushBack places b back at the head of the stream, to be returned again
// by the next call to Next, and rewinds the position to what it was
// before b was consumed; for a pushed-back newline, Line and Offset are
// rewound but Column is set to 1, since the column before the newline is
// not kept. Pushing back when checksum is enabled reverses the XOR
// update for that byte.
func (s *ByteSource) PushBack(b byte) {
	s.pushback = append(s.pushback, b)

	if b == '\n' {
		s.pos.Line--
		s.pos.Column = 1
	} else {
		s.pos.Column--
	}
	s.pos.Offset--

	if s.checksum {
		s.sum ^= b
	}
}

// ResetSum resets the running XOR accumulator to seed. Called by the line
// state machine at the start of each line.
func (s *ByteSource) ResetSum(seed byte) { s.sum = seed }

// Sum returns the current running XOR accumulator.
func (s *ByteSource) Sum() byte { return s.sum }
