package parser

import (
	"io"

	"github.com/ngcstream/gcode/config"
)

// forbiddenLetters are the word letters disallowed under the
// non-extended dialect (spec.md §3).
var forbiddenLetters = map[byte]bool{'e': true, 'o': true, 'u': true, 'v': true, 'w': true}

// Parser turns a byte stream into a sequence of Directive values, per
// spec.md §2. It is pull-based: one call to Next produces at most one
// directive, suspending internally at whatever byte the underlying
// ByteSource has not yet produced.
type Parser struct {
	src   *ByteSource
	cfg   *config.Dialect
	state lineState
	first bool
}

// NewParser builds a Parser reading from r under dialect cfg.
func NewParser(r io.Reader, cfg *config.Dialect) *Parser {
	return &Parser{
		src:   NewByteSource(r, cfg.ParseChecksum),
		cfg:   cfg,
		state: stStart,
		first: true,
	}
}

// Next returns the next Directive in the stream, or io.EOF when the
// stream is exhausted with no further directive to yield, or a *Error
// when a parse error is detected — after which the following call to
// Next skips the rest of the faulting line and returns its Execute, and
// parsing resumes on the line that follows.
func (p *Parser) Next() (Directive, error) {
	for {
		switch p.state {
		case stStart:
			d, more, err := p.stepStart()
			if err != nil {
				return Directive{}, err
			}
			if more {
				return d, nil
			}

		case stLineNumberOrSegment:
			d, more, err := p.stepLineNumberOrSegment()
			if err != nil {
				return p.recover(err)
			}
			if more {
				return d, nil
			}

		case stSegment:
			d, more, err := p.stepSegment()
			if err != nil {
				return p.recover(err)
			}
			if more {
				return d, nil
			}

		case stEoLOrTrailingComment:
			d, more, err := p.stepEoLOrTrailingComment()
			if err != nil {
				return p.recover(err)
			}
			if more {
				return d, nil
			}

		case stEndOfLine:
			d, err := p.stepEndOfLine()
			if err != nil {
				return p.recover(err)
			}
			return d, nil

		case stErrorRecovery:
			if err := p.stepErrorRecovery(); err != nil {
				return Directive{}, err
			}
			return Directive{Kind: DirExecute}, nil
		}
	}
}

// recover implements spec.md §4.6: yield the error and enter the
// ErrorRecovery state, in which the next call consumes bytes through the
// next end-of-line (see stepErrorRecovery) and emits Execute.
func (p *Parser) recover(err error) (Directive, error) {
	p.state = stErrorRecovery
	return Directive{}, err
}

// stepErrorRecovery implements spec.md §4.6: silently consume bytes until
// the next end-of-line, then transition directly to Start(true) and emit
// Execute — unlike Segment's own end-of-line handling, the newline here
// is consumed outright rather than pushed back for a separate EndOfLine
// state to see.
func (p *Parser) stepErrorRecovery() error {
	for {
		b, err := p.src.Next()
		if err == io.EOF {
			return io.EOF
		}
		if err != nil {
			return inputError(p.src.Pos(), err)
		}
		if isEOL(b) {
			p.state = stStart
			p.first = true
			p.src.ResetSum(0)
			return nil
		}
	}
}

// stepStart implements the Start(first) states of spec.md §4.5.
func (p *Parser) stepStart() (Directive, bool, error) {
	b, err := p.src.Next()
	if err == io.EOF {
		return Directive{}, false, io.EOF
	}
	if err != nil {
		return Directive{}, false, inputError(p.src.Pos(), err)
	}

	if isEOL(b) {
		p.first = true
		p.src.ResetSum(0)
		return Directive{}, false, nil
	}
	if p.first && b == '/' {
		p.state = stLineNumberOrSegment
		return Directive{Kind: DirBlockDelete, Pos: p.src.Pos()}, true, nil
	}
	if b == ' ' {
		p.first = false
		return Directive{}, false, nil
	}
	p.src.PushBack(b)
	p.state = stLineNumberOrSegment
	return Directive{}, false, nil
}

func (p *Parser) stepLineNumberOrSegment() (Directive, bool, error) {
	b, err := p.src.Next()
	if err == io.EOF {
		return Directive{}, false, io.EOF
	}
	if err != nil {
		return Directive{}, false, inputError(p.src.Pos(), err)
	}

	if b == 'n' || b == 'N' {
		pos := p.src.Pos()
		n, err := readLineNumber(p.src)
		if err != nil {
			return Directive{}, false, err
		}
		p.state = stSegment
		return Directive{Kind: DirLineNumber, LineNumber: n, Pos: pos}, true, nil
	}

	p.src.PushBack(b)
	p.state = stSegment
	return Directive{}, false, nil
}

func (p *Parser) stepSegment() (Directive, bool, error) {
	b, err := p.src.Next()
	if err == io.EOF {
		p.state = stEndOfLine
		return Directive{}, false, nil
	}
	if err != nil {
		return Directive{}, false, inputError(p.src.Pos(), err)
	}

	switch {
	case b == ' ':
		return Directive{}, false, nil

	case isEOL(b):
		p.src.PushBack(b)
		p.state = stEndOfLine
		return Directive{}, false, nil

	case isAlpha(b):
		pos := p.src.Pos()
		letter := lower(b)
		if !p.cfg.Extended && forbiddenLetters[letter] {
			return Directive{}, false, unexpectedByteError(pos, b)
		}
		rv, _, err := readRealValue(p.src, p.cfg, p.cfg.OptionalValue)
		if err != nil {
			return Directive{}, false, err
		}
		return Directive{Kind: DirWord, Letter: letter, Value: rv, Pos: pos}, true, nil

	case b == '#' && p.cfg.ParseParameters:
		pos := p.src.Pos()
		id, _, err := readRealValue(p.src, p.cfg, false)
		if err != nil {
			return Directive{}, false, err
		}
		eq, err := skipSpaces(p.src)
		if err != nil {
			if err == io.EOF {
				return Directive{}, false, NewError(p.src.Pos(), ErrUnexpectedByte, "expected '=' after parameter id")
			}
			return Directive{}, false, inputError(p.src.Pos(), err)
		}
		if eq != '=' {
			return Directive{}, false, unexpectedByteError(p.src.Pos(), eq)
		}
		value, _, err := readRealValue(p.src, p.cfg, false)
		if err != nil {
			return Directive{}, false, err
		}
		return Directive{Kind: DirParameterSet, ParamID: id, ParamValue: value, Pos: pos}, true, nil

	case b == '*' && p.cfg.ParseChecksum:
		if err := readChecksum(p.src); err != nil {
			return Directive{}, false, err
		}
		if p.cfg.ParseTrailingComment || p.cfg.Extended {
			p.state = stEoLOrTrailingComment
		} else {
			p.state = stEndOfLine
		}
		return Directive{}, false, nil

	case b == '(':
		pos := p.src.Pos()
		text, err := readInlineComment(p.src, p.cfg.ParseComments, p.cfg.MaxCommentLength)
		if err != nil {
			return Directive{}, false, err
		}
		if p.cfg.ParseComments {
			return Directive{Kind: DirComment, Comment: text, Pos: pos}, true, nil
		}
		return Directive{}, false, nil

	case b == ';' && (p.cfg.ParseTrailingComment || p.cfg.Extended):
		pos := p.src.Pos()
		text, err := readTrailingComment(p.src, p.cfg.ParseComments, p.cfg.MaxCommentLength)
		if err != nil {
			return Directive{}, false, err
		}
		p.state = stEndOfLine
		if p.cfg.ParseComments {
			return Directive{Kind: DirComment, Comment: text, Pos: pos}, true, nil
		}
		return Directive{}, false, nil

	default:
		return Directive{}, false, unexpectedByteError(p.src.Pos(), b)
	}
}

func (p *Parser) stepEoLOrTrailingComment() (Directive, bool, error) {
	b, err := p.src.Next()
	if err == io.EOF {
		p.state = stEndOfLine
		return Directive{}, false, nil
	}
	if err != nil {
		return Directive{}, false, inputError(p.src.Pos(), err)
	}
	if b == ';' {
		pos := p.src.Pos()
		text, err := readTrailingComment(p.src, p.cfg.ParseComments, p.cfg.MaxCommentLength)
		if err != nil {
			return Directive{}, false, err
		}
		p.state = stEndOfLine
		if p.cfg.ParseComments {
			return Directive{Kind: DirComment, Comment: text, Pos: pos}, true, nil
		}
		return Directive{}, false, nil
	}
	p.src.PushBack(b)
	p.state = stEndOfLine
	return Directive{}, false, nil
}

func (p *Parser) stepEndOfLine() (Directive, error) {
	for {
		b, err := p.src.Next()
		if err == io.EOF {
			return Directive{}, io.EOF
		}
		if err != nil {
			return Directive{}, inputError(p.src.Pos(), err)
		}
		if isEOL(b) {
			p.state = stStart
			p.first = true
			p.src.ResetSum(0)
			return Directive{Kind: DirExecute}, nil
		}
		if b == ' ' {
			continue
		}
		return Directive{}, unexpectedByteError(p.src.Pos(), b)
	}
}

// ValidateAll drains the parser to completion, returning every directive
// produced and an ErrorList of every recovered error, for offline/batch
// use where a caller wants the whole stream's diagnostics at once rather
// than handling one error per Next call.
func (p *Parser) ValidateAll() ([]Directive, *ErrorList) {
	var directives []Directive
	errs := &ErrorList{}
	for {
		d, err := p.Next()
		if err == io.EOF {
			return directives, errs
		}
		if err != nil {
			if perr, ok := err.(*Error); ok {
				errs.AddError(perr)
			}
			continue
		}
		directives = append(directives, d)
	}
}
