package eval

import (
	"go.spiff.io/tinylisp/lisp/lisperr"
	"go.spiff.io/tinylisp/lisp/value"
)

// Argspec codes, per spec.md §4.3's argument-spec mini-language:
//
//	i   one Int
//	s   one String
//	S   one Symbol
//	l   one list (a *Cons -- proper, improper, or nil)
//	d   one value of any kind
//	*   suffix on the preceding code: zero or more of that kind
//	R   the rest of the argument list, unchecked, as a single value
//
// 'R' and a '*'-suffixed code may only appear as the final token -- both
// consume everything left in the argument list, so anything after them
// could never match.
const (
	codeInt    = 'i'
	codeString = 's'
	codeSymbol = 'S'
	codeList   = 'l'
	codeAny    = 'd'
	codeRepeat = '*'
	codeRest   = 'R'
)

// Match binds args against spec, returning the matched values in order.
// A trailing '*'-suffixed code contributes each value it matches (zero
// or more) to the result individually, flattened in; a trailing 'R'
// contributes the unconsumed tail as a single *value.Cons. Builtins that
// need the distinction between a fixed argument and a collected tail
// should count the codes before the trailing '*' group or 'R' to know
// where the fixed prefix ends (for "dl*" that is 1).
func Match(name, spec string, args *value.Cons) ([]value.Value, error) {
	var out []value.Value
	cur := value.Value(args)

	kindName := func(c byte) string {
		switch c {
		case codeInt:
			return "int"
		case codeString:
			return "string"
		case codeSymbol:
			return "symbol"
		case codeList:
			return "list"
		default:
			return "value"
		}
	}

	checkKind := func(c byte, v value.Value) bool {
		switch c {
		case codeInt:
			_, ok := v.(*value.Int)
			return ok
		case codeString:
			_, ok := v.(*value.String)
			return ok
		case codeSymbol:
			_, ok := v.(*value.Symbol)
			return ok
		case codeList:
			_, ok := v.(*value.Cons)
			return ok
		case codeAny:
			return true
		}
		return false
	}

	i := 0
	for i < len(spec) {
		code := spec[i]
		i++

		if code == codeRest {
			if i != len(spec) {
				panic("eval: argspec 'R' must be the final token in " + spec)
			}
			out = append(out, cur)
			return out, nil
		}

		repeat := i < len(spec) && spec[i] == codeRepeat
		if repeat {
			i++
			if i != len(spec) {
				panic("eval: argspec '*' must be the final token in " + spec)
			}
			var group []value.Value
			for !value.IsNil(cur) {
				c, ok := cur.(*value.Cons)
				if !ok {
					return nil, lisperr.New(lisperr.Error, "%s: improper argument list", name)
				}
				if !checkKind(code, c.Car) {
					return nil, lisperr.New(lisperr.Type, "%s: expected %s, got %T", name, kindName(code), c.Car)
				}
				group = append(group, c.Car)
				cur = c.Cdr
			}
			out = append(out, group...)
			return out, nil
		}

		if value.IsNil(cur) {
			return nil, lisperr.New(lisperr.TooFew, "%s: too few arguments", name)
		}
		c, ok := cur.(*value.Cons)
		if !ok {
			return nil, lisperr.New(lisperr.Error, "%s: improper argument list", name)
		}
		if !checkKind(code, c.Car) {
			return nil, lisperr.New(lisperr.Type, "%s: expected %s, got %T", name, kindName(code), c.Car)
		}
		out = append(out, c.Car)
		cur = c.Cdr
	}

	if !value.IsNil(cur) {
		return nil, lisperr.New(lisperr.TooMany, "%s: too many arguments", name)
	}
	return out, nil
}
