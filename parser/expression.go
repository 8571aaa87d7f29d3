package parser

import (
	"io"

	"github.com/ngcstream/gcode/config"
)

// readBracketExpression parses the body of a `[ ... ]` bracketed
// expression per spec.md §4.4, assuming the opening `[` has already been
// consumed by the caller (the `[` case of the real-value dispatcher in
// readRealValue). It returns the flattened postfix Expression sequence.
func readBracketExpression(s *ByteSource, cfg *config.Dialect) (Expression, error) {
	return readBracketBody(s, cfg)
}

// readFunctionOperand requires and consumes a `[ ... ]` group (the
// operand of a unary function call or one half of an atan call) and
// returns its postfix Expression.
func readFunctionOperand(s *ByteSource, cfg *config.Dialect) (Expression, error) {
	b, err := skipSpaces(s)
	if err != nil {
		if err == io.EOF {
			return nil, NewError(s.Pos(), ErrInvalidExpression, "expected '[' after function name")
		}
		return nil, inputError(s.Pos(), err)
	}
	if b != '[' {
		return nil, unexpectedByteError(s.Pos(), b)
	}
	return readBracketBody(s, cfg)
}

// readATan parses the `atan[ rv ] / [ rv ]` production of spec.md §4.4
// and returns its postfix Expression: [left, right, ATan].
func readATan(s *ByteSource, cfg *config.Dialect) (Expression, error) {
	left, err := readFunctionOperand(s, cfg)
	if err != nil {
		return nil, err
	}
	b, err := skipSpaces(s)
	if err != nil {
		if err == io.EOF {
			return nil, NewError(s.Pos(), ErrInvalidExpression, "expected '/' after atan[...]")
		}
		return nil, inputError(s.Pos(), err)
	}
	if b != '/' {
		return nil, unexpectedByteError(s.Pos(), b)
	}
	right, err := readFunctionOperand(s, cfg)
	if err != nil {
		return nil, err
	}
	items := append(append([]ExprItem(nil), left...), right...)
	items = append(items, ExprItem{Kind: ExprOperator, Operator: OpATan})
	return items, nil
}

// readBracketBody parses `real_value ( op real_value )* ]`, the opening
// `[` already consumed, using the shunting-yard discipline referenced in
// spec.md §4.4/§9: operands are emitted to the output as soon as they are
// parsed, and a small operator stack defers operators until every
// higher-or-equal-precedence operator ahead of them (per spec.md §3,
// every binary operator recognized here is left-associative) has been
// flushed to the output. The result is a flat postfix sequence sufficient
// to reconstruct the unique expression tree, matching the worked example
// in spec.md §8 (`[2 + #4]` => `[Literal(2), Literal(4), GetParameter,
// Add]`, not the raw token order).
func readBracketBody(s *ByteSource, cfg *config.Dialect) (Expression, error) {
	var output []ExprItem
	var opStack []Operator

	operand, _, err := readRealValue(s, cfg, false)
	if err != nil {
		return nil, err
	}
	if operand.Kind == RVNone {
		return nil, NewError(s.Pos(), ErrInvalidExpression, "missing operand")
	}
	output = append(output, flattenOperand(operand)...)

	for {
		if cfg.MaxExpressionDepth > 0 && len(output)+len(opStack) > cfg.MaxExpressionDepth {
			return nil, NewError(s.Pos(), ErrNumberOverflow, "expression exceeds maximum length")
		}
		b, err := skipSpaces(s)
		if err != nil {
			if err == io.EOF {
				return nil, NewError(s.Pos(), ErrInvalidExpression, "unterminated expression")
			}
			return nil, inputError(s.Pos(), err)
		}
		if b == ']' {
			for i := len(opStack) - 1; i >= 0; i-- {
				output = append(output, ExprItem{Kind: ExprOperator, Operator: opStack[i]})
			}
			return output, nil
		}

		op, err := readBinaryOperator(s, b)
		if err != nil {
			return nil, err
		}
		for len(opStack) > 0 && opStack[len(opStack)-1].precedenceGroup() >= op.precedenceGroup() {
			output = append(output, ExprItem{Kind: ExprOperator, Operator: opStack[len(opStack)-1]})
			opStack = opStack[:len(opStack)-1]
		}
		opStack = append(opStack, op)

		operand, _, err = readRealValue(s, cfg, false)
		if err != nil {
			return nil, err
		}
		if operand.Kind == RVNone {
			return nil, NewError(s.Pos(), ErrInvalidExpression, "missing operand")
		}
		output = append(output, flattenOperand(operand)...)
	}
}

// readBinaryOperator recognizes one binary operator lexeme (spec.md §3
// groups 1-2, plus `**`), case-insensitively, starting from the
// already-read byte b. Keyword operators are matched by reading a run of
// letters and matching the longest known keyword; an unrecognized letter
// sequence is a parse error, per spec.md §4.4.
func readBinaryOperator(s *ByteSource, b byte) (Operator, error) {
	switch b {
	case '+':
		return OpAdd, nil
	case '-':
		return OpSub, nil
	case '/':
		return OpDiv, nil
	case '*':
		nb, err := s.Next()
		if err == nil {
			if nb == '*' {
				return OpPow, nil
			}
			s.PushBack(nb)
		} else if err != io.EOF {
			return 0, inputError(s.Pos(), err)
		}
		return OpMul, nil
	}

	if isAlpha(b) {
		word, term, termOK, err := readKeyword(s, b)
		if err != nil {
			return 0, inputError(s.Pos(), err)
		}
		if op, ok := binaryOperatorKeywords[string(word)]; ok {
			if termOK {
				s.PushBack(term)
			}
			return op, nil
		}
		pushBackKeyword(s, word, term, termOK)
		return 0, unexpectedByteError(s.Pos(), b)
	}

	return 0, unexpectedByteError(s.Pos(), b)
}
