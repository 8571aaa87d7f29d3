package parser

import (
	"io"

	"github.com/ngcstream/gcode/config"
)

// isAlpha reports whether b is an ASCII letter.
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

// readKeyword reads a maximal run of ASCII letters starting from the
// already-read byte first, lower-cased. It also reports the byte that
// terminated the run (termOK false means the stream ended exactly at the
// end of the run, with no terminating byte available).
func readKeyword(s *ByteSource, first byte) (word []byte, term byte, termOK bool, err error) {
	word = append(word, lower(first))
	for {
		b, rerr := s.Next()
		if rerr == io.EOF {
			return word, 0, false, nil
		} else if rerr != nil {
			return nil, 0, false, rerr
		}
		if !isAlpha(b) {
			return word, b, true, nil
		}
		word = append(word, lower(b))
	}
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// pushBackKeyword restores every byte of a readKeyword call (the
// terminator, if any, followed by the letters of word in reverse) so that
// the stream yields the same run again. The letters are pushed back as
// they appear in word, which readKeyword has case-folded to lowercase.
func pushBackKeyword(s *ByteSource, word []byte, term byte, termOK bool) {
	if termOK {
		s.PushBack(term)
	}
	for i := len(word) - 1; i >= 0; i-- {
		s.PushBack(word[i])
	}
}

// readRealValue implements the real-value reader of spec.md §4.3: it
// dispatches on the first non-whitespace byte of s to the literal reader,
// the parameter-dereference production, the bracketed expression reader,
// or (when allowNone is true, i.e. the optional-value dialect is active
// and the calling context permits it) to a None value with the
// triggering byte pushed back.
func readRealValue(s *ByteSource, cfg *config.Dialect, allowNone bool) (RealValue, Position, error) {
	b, err := skipSpaces(s)
	pos := s.Pos()
	if err != nil {
		if err == io.EOF {
			if allowNone {
				return RealValue{Kind: RVNone}, pos, nil
			}
			return RealValue{}, pos, NewError(pos, ErrUnexpectedByte, "unexpected end of input in real value")
		}
		return RealValue{}, pos, inputError(pos, err)
	}

	switch {
	case b == '+' || b == '-' || b == '.' || isDigit(b):
		lit, err := readSignedLiteral(s, pos, b)
		if err != nil {
			return RealValue{}, pos, err
		}
		return RealValue{Kind: RVLiteral, Literal: lit}, pos, nil

	case b == '"' && cfg.StringValue:
		lit, err := readStringLiteral(s, pos)
		if err != nil {
			return RealValue{}, pos, err
		}
		return RealValue{Kind: RVLiteral, Literal: lit}, pos, nil

	case b == '#' && cfg.ParseParameters:
		return readParameterDereference(s, cfg, pos)

	case b == '[' && cfg.ParseExpressions:
		expr, err := readBracketExpression(s, cfg)
		if err != nil {
			return RealValue{}, pos, err
		}
		return RealValue{Kind: RVExpression, Expression: expr}, pos, nil

	case isAlpha(b) && cfg.ParseExpressions:
		return readFunctionRealValue(s, cfg, pos, b, allowNone)

	default:
		if allowNone {
			s.PushBack(b)
			return RealValue{Kind: RVNone}, pos, nil
		}
		return RealValue{}, pos, unexpectedByteError(pos, b)
	}
}

// readParameterDereference implements the `#` production of spec.md
// §4.3: one or more consecutive `#` (whitespace permitted between them),
// followed by a real-value id parsed through the full real-value grammar
// (spec.md §4.3 supplemented per SPEC_FULL.md §4: the id is not limited
// to a bare literal — `#[1+2]` and `##x` both parse their id
// recursively). The result encodes N nested dereferences as the id's own
// representation followed by N GetParameter operators, right-associative.
func readParameterDereference(s *ByteSource, cfg *config.Dialect, pos Position) (RealValue, Position, error) {
	count := 0
	var nameStart byte
	for {
		count++
		b, err := skipSpaces(s)
		if err != nil {
			if err == io.EOF {
				return RealValue{}, pos, NewError(pos, ErrUnexpectedByte, "unexpected end of input after #")
			}
			return RealValue{}, pos, inputError(pos, err)
		}
		if b == '#' {
			continue
		}
		nameStart = b
		break
	}

	var idItems []ExprItem
	if nameStart == '<' && cfg.NamedParameters {
		name, err := readParameterName(s, pos)
		if err != nil {
			return RealValue{}, pos, err
		}
		idItems = []ExprItem{{Kind: ExprLiteral, Literal: name}}
	} else {
		s.PushBack(nameStart)
		id, _, err := readRealValue(s, cfg, false)
		if err != nil {
			return RealValue{}, pos, err
		}
		if id.Kind == RVNone {
			return RealValue{}, pos, NewError(pos, ErrInvalidExpression, "parameter id must not be empty")
		}
		idItems = flattenOperand(id)
	}

	items := idItems
	for i := 0; i < count; i++ {
		items = append(items, ExprItem{Kind: ExprOperator, Operator: OpGetParameter})
	}
	return RealValue{Kind: RVExpression, Expression: items}, pos, nil
}

// readParameterName implements the SPEC_FULL.md §4 named/system
// parameter form, `#<name>`: the leading `<` has already been consumed,
// and this reads up to (and consuming) the matching `>`. Nesting and
// end-of-line inside the name are rejected, mirroring the inline-comment
// reader's own delimiter discipline.
func readParameterName(s *ByteSource, pos Position) (Literal, error) {
	var buf []byte
	for {
		b, err := s.Next()
		if err == io.EOF {
			return Literal{}, NewError(pos, ErrUnexpectedByte, "unterminated named parameter")
		} else if err != nil {
			return Literal{}, inputError(pos, err)
		}
		if b == '>' {
			break
		}
		if isEOL(b) || b == '<' {
			return Literal{}, unexpectedByteError(pos, b)
		}
		buf = append(buf, b)
	}
	if len(buf) == 0 {
		return Literal{}, NewError(pos, ErrInvalidExpression, "named parameter must not be empty")
	}
	return StringLiteral(buf), nil
}

// readFunctionRealValue implements the unary-function and atan
// productions of spec.md §4.4 when reached directly as a real value
// (rather than as an expression operand). first is the already-read
// first letter of a potential keyword.
func readFunctionRealValue(s *ByteSource, cfg *config.Dialect, pos Position, first byte, allowNone bool) (RealValue, Position, error) {
	word, term, termOK, err := readKeyword(s, first)
	if err != nil {
		return RealValue{}, pos, inputError(pos, err)
	}
	name := string(word)

	if name == "atan" {
		if termOK {
			s.PushBack(term)
		}
		items, err := readATan(s, cfg)
		if err != nil {
			return RealValue{}, pos, err
		}
		return RealValue{Kind: RVExpression, Expression: items}, pos, nil
	}

	if op, ok := unaryFunctionKeywords[name]; ok {
		if termOK {
			s.PushBack(term)
		}
		operand, err := readFunctionOperand(s, cfg)
		if err != nil {
			return RealValue{}, pos, err
		}
		items := append(flattenOperand(operand), ExprItem{Kind: ExprOperator, Operator: op})
		return RealValue{Kind: RVExpression, Expression: items}, pos, nil
	}

	// Not a known keyword: undo the lookahead and let the caller decide
	// what an unconsumed letter run means. The first letter is restored
	// in its original case; the rest are restored case-folded, which is
	// safe: every grammar production that can follow here (word letters,
	// further keywords) is itself case-insensitive.
	word[0] = first
	pushBackKeyword(s, word, term, termOK)
	if allowNone {
		return RealValue{Kind: RVNone}, pos, nil
	}
	return RealValue{}, pos, unexpectedByteError(pos, first)
}

// flattenOperand converts a parsed real-value operand into the items to
// splice into an enclosing postfix Expression sequence: a literal becomes
// one ExprLiteral item, an already-flat Expression is spliced in (its own
// postfix sequence composes directly), and None is never a valid operand.
func flattenOperand(rv RealValue) []ExprItem {
	switch rv.Kind {
	case RVLiteral:
		return []ExprItem{{Kind: ExprLiteral, Literal: rv.Literal}}
	case RVExpression:
		return append([]ExprItem(nil), rv.Expression...)
	default:
		return nil
	}
}
