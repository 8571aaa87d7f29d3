package parser

import (
	"io"
	"unicode/utf8"
)

// isDigit reports whether b is an ASCII decimal digit.
func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// isSpace reports whether b is a byte the grammar treats as insignificant
// whitespace between tokens of a real value (spaces and tabs only;
// newlines are always significant and never skipped here).
func isSpace(b byte) bool { return b == ' ' || b == '\t' }

// skipSpaces consumes bytes while they are whitespace, per spec.md §4.2
// ("whitespace is skipped"). It returns the first non-whitespace byte.
func skipSpaces(s *ByteSource) (byte, error) {
	for {
		b, err := s.Next()
		if err != nil {
			return 0, err
		}
		if !isSpace(b) {
			return b, nil
		}
	}
}

// takeDigits reads bytes from s while they satisfy isDigit, appending
// them to digits. It returns the first non-digit byte read, or ok=false
// if the stream ended while still inside the digit run (which is not an
// error here: the caller decides what an end-of-stream boundary means).
func takeDigits(s *ByteSource, digits []byte) (out []byte, next byte, ok bool, err error) {
	out = digits
	for {
		b, rerr := s.Next()
		if rerr == io.EOF {
			return out, 0, false, nil
		} else if rerr != nil {
			return out, 0, false, rerr
		}
		if !isDigit(b) {
			return out, b, true, nil
		}
		out = append(out, b)
	}
}

// takeDigitsFrom reads a digit run starting from an already-read byte
// first, including it in the result when it is itself a digit, and
// returns the terminating non-digit byte the same way takeDigits does.
func takeDigitsFrom(s *ByteSource, first byte) (digits []byte, next byte, ok bool, err error) {
	if !isDigit(first) {
		return nil, first, true, nil
	}
	return takeDigits(s, []byte{first})
}

// skipSpacesFrom consumes whitespace starting from an already-read byte
// b, returning the first non-whitespace byte.
func skipSpacesFrom(s *ByteSource, b byte) (byte, bool, error) {
	for isSpace(b) {
		var err error
		b, err = s.Next()
		if err == io.EOF {
			return 0, false, nil
		} else if err != nil {
			return 0, false, err
		}
	}
	return b, true, nil
}

// readNumber implements the grammar in spec.md §4.2:
//
//	('+'|'-')? ( digits ('.' digits?)? | '.' digits )
//
// Any leading sign must already have been consumed by the caller; first
// is the first byte of the numeric body (already read from s).
func readNumber(s *ByteSource, pos Position, sign float64, first byte) (Literal, error) {
	var intDigits, fracDigits []byte
	b, haveByte := first, true

	if isDigit(b) {
		var err error
		intDigits, b, haveByte, err = takeDigitsFrom(s, b)
		if err != nil {
			return Literal{}, inputError(pos, err)
		}
		if haveByte {
			b, haveByte, err = skipSpacesFrom(s, b)
			if err != nil {
				return Literal{}, inputError(pos, err)
			}
		}
	}

	if haveByte && b == '.' {
		next, err := s.Next()
		haveByte = err == nil
		if err != nil && err != io.EOF {
			return Literal{}, inputError(pos, err)
		}
		if haveByte {
			next, haveByte, err = skipSpacesFrom(s, next)
			if err != nil {
				return Literal{}, inputError(pos, err)
			}
		}
		if haveByte {
			fracDigits, b, haveByte, err = takeDigitsFrom(s, next)
			if err != nil {
				return Literal{}, inputError(pos, err)
			}
		}
	}

	if haveByte {
		s.PushBack(b)
	}

	return resolveNumber(pos, sign, intDigits, fracDigits)
}

func resolveNumber(pos Position, sign float64, intDigits, fracDigits []byte) (Literal, error) {
	if len(intDigits) == 0 && len(fracDigits) == 0 {
		return Literal{}, NewError(pos, ErrBadNumberFormat, "numeric literal has no digits")
	}
	if len(intDigits) > 17 {
		return Literal{}, NewError(pos, ErrNumberOverflow, "integer part too large")
	}

	var intPart float64
	for _, d := range intDigits {
		intPart = intPart*10 + float64(d-'0')
	}

	var fracPart float64
	if len(fracDigits) > 0 {
		scale := 1.0
		for _, d := range fracDigits {
			scale *= 10
			fracPart += float64(d-'0') / scale
		}
	}

	return NumberLiteral(sign * (intPart + fracPart)), nil
}

// readSignedLiteral reads a real-number literal, optionally preceded by a
// single +/- sign (with whitespace permitted after the sign). first is
// the first byte already consumed from s by the caller (the real-value
// dispatcher in spec.md §4.3).
func readSignedLiteral(s *ByteSource, pos Position, first byte) (Literal, error) {
	sign := 1.0
	b := first
	if b == '+' || b == '-' {
		if b == '-' {
			sign = -1
		}
		var err error
		b, err = skipSpaces(s)
		if err != nil {
			if err == io.EOF {
				return Literal{}, NewError(pos, ErrBadNumberFormat, "numeric literal has no digits")
			}
			return Literal{}, inputError(pos, err)
		}
	}
	return readNumber(s, pos, sign, b)
}

// readStringLiteral reads a `"`-delimited string literal, per spec.md
// §4.2. The opening quote has already been consumed by the caller. `\`
// escapes exactly one following byte literally (including a literal
// `"`). The decoded byte sequence must be valid UTF-8.
func readStringLiteral(s *ByteSource, pos Position) (Literal, error) {
	var buf []byte
	for {
		b, err := s.Next()
		if err == io.EOF {
			return Literal{}, NewError(pos, ErrUnexpectedByte, "unterminated string literal")
		} else if err != nil {
			return Literal{}, inputError(pos, err)
		}
		if b == '"' {
			break
		}
		if b == '\\' {
			esc, err := s.Next()
			if err != nil {
				if err == io.EOF {
					return Literal{}, NewError(pos, ErrUnexpectedByte, "unterminated string literal")
				}
				return Literal{}, inputError(pos, err)
			}
			buf = append(buf, esc)
			continue
		}
		buf = append(buf, b)
	}
	if !utf8.Valid(buf) {
		return Literal{}, NewError(pos, ErrInvalidUTF8String, "string literal is not valid UTF-8")
	}
	return StringLiteral(buf), nil
}
