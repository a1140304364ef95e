package value

import (
	"strconv"
	"strings"
)

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// reverseEscapes maps a raw byte to the escape letter that decodes back to
// it, for the handful of control bytes spec.md §4.2 names. Both \b and \r
// decode to the same byte (backspace, 0x08) per the preserved reference
// defect; \b is printed in preference to \r on the way out.
var reverseEscapes = map[byte]byte{
	'\a': 'a',
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\t': 't',
	'\v': 'v',
}

// quoteString renders s as a double-quoted skim string literal, escaping
// quotes, backslashes, and the control bytes spec.md's escape table names,
// so that re-parsing yields the identical byte sequence.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		default:
			if esc, ok := reverseEscapes[c]; ok {
				b.WriteByte('\\')
				b.WriteByte(esc)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// printList renders a cons cell as "(a b c)" or, for an improper list,
// "(a b . c)". The empty list prints as "()".
func printList(c *Cons) string {
	if IsNil(c) {
		return "()"
	}

	var b strings.Builder
	b.WriteByte('(')
	first := true
	var v Value = c
	for {
		cons, ok := v.(*Cons)
		if !ok {
			b.WriteString(" . ")
			b.WriteString(v.String())
			break
		}
		if IsNil(cons) {
			break
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		if cons.Car == nil {
			b.WriteString("()")
		} else {
			b.WriteString(cons.Car.String())
		}
		v = cons.Cdr
		if v == nil {
			break
		}
	}
	b.WriteByte(')')
	return b.String()
}
