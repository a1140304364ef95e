// Package reader implements tinylisp's recursive-descent reader
// (spec.md §4.2): a byte-oriented parser -- no unicode awareness, per the
// dialect's non-goals -- turning source text into heap.Heap values.
package reader

import (
	"io"

	"go.spiff.io/tinylisp/lisp/heap"
	"go.spiff.io/tinylisp/lisp/lisperr"
	"go.spiff.io/tinylisp/lisp/value"
)

const (
	byteQuote      = '\''
	byteQuasiquote = '`'
	byteUnquote    = ','
	byteOpenList   = '('
	byteCloseList  = ')'
	byteString     = '"'
	byteComment    = ';'
	byteDot        = '.'
)

// delimiters are the bytes that end a symbol or integer token. The
// grammar in spec.md §4.2 only names whitespace, ')', '\'', and ';';
// this implementation also treats '(', '"', '`', and ',' as delimiters,
// since without that a token like "a(b)" or "x,y" would otherwise
// swallow an adjoining list or quote-sugar form -- see DESIGN.md.
func isDelimiter(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	case byteOpenList, byteCloseList, byteQuote, byteQuasiquote, byteUnquote, byteString, byteComment:
		return true
	}
	return false
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Reader holds the state of a single parse over a byte buffer.
type Reader struct {
	h    *heap.Heap
	buf  []byte
	pos  int
	line int
}

// New creates a Reader over input starting at byte offset 0, tracking
// line numbers from 1.
func New(h *heap.Heap, input []byte) *Reader {
	return &Reader{h: h, buf: input, pos: 0, line: 1}
}

// Pos returns the current byte offset.
func (r *Reader) Pos() int { return r.pos }

func (r *Reader) eof() bool { return r.pos >= len(r.buf) }

func (r *Reader) peek() (byte, bool) {
	if r.eof() {
		return 0, false
	}
	return r.buf[r.pos], true
}

func (r *Reader) peekAt(offset int) (byte, bool) {
	i := r.pos + offset
	if i < 0 || i >= len(r.buf) {
		return 0, false
	}
	return r.buf[i], true
}

func (r *Reader) advance() byte {
	b := r.buf[r.pos]
	r.pos++
	if b == '\n' {
		r.line++
	}
	return b
}

func (r *Reader) syntaxErr(format string, args ...interface{}) error {
	return lisperr.New(lisperr.Syntax, format, args...).AtLine(r.line)
}

func (r *Reader) eofErr(format string, args ...interface{}) error {
	return lisperr.New(lisperr.EOF, format, args...).AtLine(r.line)
}

// skipSpaceAndComments advances past whitespace and ";"-to-end-of-line
// comments, which spec.md §4.2 says are both skipped between tokens.
func (r *Reader) skipSpaceAndComments() {
	for {
		b, ok := r.peek()
		if !ok {
			return
		}
		if isSpace(b) {
			r.advance()
			continue
		}
		if b == byteComment {
			for {
				b, ok := r.peek()
				if !ok || b == '\n' {
					break
				}
				r.advance()
			}
			continue
		}
		return
	}
}

// ParseValue reads a single value starting at the reader's current
// position, per the `value` production in spec.md §4.2.
func (r *Reader) ParseValue() (value.Value, error) {
	r.skipSpaceAndComments()
	b, ok := r.peek()
	if !ok {
		return nil, r.eofErr("unexpected end of input")
	}

	switch b {
	case byteOpenList:
		return r.readList()
	case byteCloseList:
		return nil, r.syntaxErr("unexpected ')'")
	case byteString:
		return r.readString()
	case byteQuote:
		return r.readQuoted(value.SymQuote)
	case byteQuasiquote:
		return r.readQuoted(value.SymQuasiquote)
	case byteUnquote:
		return r.readQuoted(value.SymUnquote)
	default:
		return r.readAtom()
	}
}

// readQuoted implements the 'x / `x / ,x sugar: ('/'`'/',' followed by a
// value expands to (quote x) / (quasiquote x) / (unquote x).
func (r *Reader) readQuoted(sym string) (value.Value, error) {
	r.advance() // the quote/backtick/comma byte
	v, err := r.ParseValue()
	if err != nil {
		return nil, err
	}
	return r.h.List(r.h.Intern(sym), v), nil
}

// isDotMarker reports whether the reader is positioned at a standalone
// "." token (the dotted-pair separator), as opposed to a "." that is part
// of a longer symbol or integer token.
func (r *Reader) isDotMarker() bool {
	b, ok := r.peek()
	if !ok || b != byteDot {
		return false
	}
	next, ok := r.peekAt(1)
	if !ok {
		return true
	}
	return isDelimiter(next)
}

// readList implements `'(' value* ('.' value)? ')'`.
func (r *Reader) readList() (value.Value, error) {
	r.advance() // '('
	var items []value.Value
	var tail value.Value = r.h.Nil()

	for {
		r.skipSpaceAndComments()
		b, ok := r.peek()
		if !ok {
			return nil, r.eofErr("unexpected end of input inside list")
		}
		if b == byteCloseList {
			r.advance()
			break
		}
		if r.isDotMarker() {
			r.advance() // '.'
			v, err := r.ParseValue()
			if err != nil {
				return nil, err
			}
			tail = v
			r.skipSpaceAndComments()
			b, ok := r.peek()
			if !ok {
				return nil, r.eofErr("unexpected end of input inside list")
			}
			if b != byteCloseList {
				return nil, r.syntaxErr("malformed dotted pair: expected ')' after tail value")
			}
			r.advance()
			break
		}

		v, err := r.ParseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}

	for i := len(items) - 1; i >= 0; i-- {
		tail = r.h.NewCons(items[i], tail)
	}
	return tail, nil
}

// readString implements `'"' ( escape | non-quote-byte )* '"'` and the
// escape table in spec.md §4.2, including the preserved \r -> backspace
// defect.
func (r *Reader) readString() (value.Value, error) {
	r.advance() // opening quote
	var buf []byte
	for {
		b, ok := r.peek()
		if !ok {
			return nil, r.eofErr("unexpected end of input inside string")
		}
		if b == byteString {
			r.advance()
			break
		}
		if b == '\\' {
			r.advance()
			eb, ok := r.peek()
			if !ok {
				return nil, r.eofErr("unexpected end of input inside string")
			}
			r.advance()
			buf = append(buf, escapeByte(eb))
			continue
		}
		buf = append(buf, b)
		r.advance()
	}
	return r.h.NewString(string(buf)), nil
}

// escapeByte reverses one escape sequence per spec.md §4.2. \r is
// deliberately mapped to backspace (0x08), not carriage return -- this
// matches the C reference and must be preserved to stay bit-compatible
// with it (spec.md §9 open question (b)). Any other escaped byte is
// literal.
func escapeByte(b byte) byte {
	switch b {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	case 'r':
		return '\b'
	default:
		return b
	}
}

// readAtom reads a symbol or integer token and, for symbols, applies the
// dotted-attribute-access rewrite.
func (r *Reader) readAtom() (value.Value, error) {
	start := r.pos
	startLine := r.line
	for {
		b, ok := r.peek()
		if !ok || isDelimiter(b) {
			break
		}
		r.advance()
	}
	tok := r.buf[start:r.pos]
	if len(tok) == 0 {
		return nil, r.syntaxErr("empty token")
	}

	if isDigit(tok[0]) || (tok[0] == '-' && len(tok) > 1 && isDigit(tok[1])) {
		return r.readInteger(tok, startLine)
	}

	return r.readSymbol(string(tok), startLine)
}

func (r *Reader) readInteger(tok []byte, line int) (value.Value, error) {
	neg := tok[0] == '-'
	digits := tok
	if neg {
		digits = tok[1:]
	}
	if len(digits) == 0 {
		return nil, (&lisperr.RuntimeError{ErrKind: lisperr.Syntax, Line: line, Msg: "malformed integer: " + string(tok)})
	}
	var n int64
	for _, d := range digits {
		if !isDigit(d) {
			return nil, (&lisperr.RuntimeError{ErrKind: lisperr.Syntax, Line: line, Msg: "malformed integer: " + string(tok)})
		}
		n = n*10 + int64(d-'0')
	}
	if neg {
		n = -n
	}
	return r.h.NewInt(n), nil
}

// readSymbol applies spec.md §4.2's dotted-symbol rewrite: a symbol
// containing one or more '.' not at the first or last position becomes
// nested getattr calls, e.g. a.b.c -> (getattr (getattr a 'b) 'c).
func (r *Reader) readSymbol(tok string, line int) (value.Value, error) {
	dot := -1
	for i := 0; i < len(tok); i++ {
		if tok[i] == byteDot {
			dot = i
			break
		}
	}
	if dot < 0 {
		return r.h.Intern(tok), nil
	}
	if dot == 0 || dot == len(tok)-1 {
		return nil, (&lisperr.RuntimeError{ErrKind: lisperr.Syntax, Line: line, Msg: "leading or trailing '.' in symbol: " + tok})
	}

	parts := splitDots(tok)
	for _, p := range parts {
		if p == "" {
			return nil, (&lisperr.RuntimeError{ErrKind: lisperr.Syntax, Line: line, Msg: "leading or trailing '.' in symbol: " + tok})
		}
	}

	quoteSym := r.h.Intern(value.SymQuote)
	getattrSym := r.h.Intern(value.SymGetattr)

	result := value.Value(r.h.Intern(parts[0]))
	for _, p := range parts[1:] {
		quoted := r.h.List(quoteSym, r.h.Intern(p))
		result = r.h.List(getattrSym, result, quoted)
	}
	return result, nil
}

func splitDots(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == byteDot {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// ParseValueAt parses a single expression from input starting at offset,
// returning the value and the number of bytes consumed -- the
// parse_value(input, offset) embedding entry point from spec.md §6.
func ParseValueAt(h *heap.Heap, input []byte, offset int) (value.Value, int, error) {
	r := &Reader{h: h, buf: input, pos: offset, line: 1}
	v, err := r.ParseValue()
	if err != nil {
		return nil, 0, err
	}
	return v, r.pos - offset, nil
}

// ParseProgram parses every top-level expression in input and wraps them
// in (progn ...), so evaluating the result returns the last expression's
// value. Matches spec.md §4.2's parse_program.
func ParseProgram(h *heap.Heap, input []byte) (value.Value, error) {
	r := New(h, input)
	var exprs []value.Value
	for {
		r.skipSpaceAndComments()
		if r.eof() {
			break
		}
		v, err := r.ParseValue()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, v)
	}
	prognSym := h.Intern(value.SymProgn)
	return h.List(append([]value.Value{prognSym}, exprs...)...), nil
}

// ParseProgramFromStream reads rd to completion and parses it as a
// program, reporting lisperr.FError on any I/O failure -- spec.md §4.2's
// parse_program_from_stream.
func ParseProgramFromStream(h *heap.Heap, rd io.Reader) (value.Value, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, lisperr.Wrap(lisperr.FError, err, "reading program stream")
	}
	return ParseProgram(h, data)
}
