package value

import "fmt"

// Car returns the left element of a cons cell. ok is false if v is not a
// *Cons (the caller's job to turn that into a typed error).
func Car(v Value) (Value, bool) {
	c, ok := v.(*Cons)
	if !ok {
		return nil, false
	}
	return c.Car, true
}

// Cdr returns the right element of a cons cell.
func Cdr(v Value) (Value, bool) {
	c, ok := v.(*Cons)
	if !ok {
		return nil, false
	}
	return c.Cdr, true
}

// IsNil reports whether v has nil's shape: a Go nil, or a *Cons with both
// fields empty. It tests shape, not identity: besides the heap's nil
// singleton, any other empty *Cons (such as one from
// heap.Heap.Allocate(KindList)) also counts as nil.
func IsNil(v Value) bool {
	if v == nil {
		return true
	}
	c, ok := v.(*Cons)
	return ok && c.Car == nil && c.Cdr == nil
}

// IsTrue implements the dialect's narrow truthiness rule: only a nonzero
// Int is true. Nil, zero, strings, symbols, and every other kind --
// including non-empty lists -- are false. See spec.md §9 open question
// (a): this is intentionally not generalized to "truthiness".
func IsTrue(v Value) bool {
	i, ok := v.(*Int)
	return ok && i.Val != 0
}

// Walk visits the Car of each cons cell in a proper list, stopping at the
// list's nil terminator. It reports an error if it encounters a non-list,
// non-nil Cdr partway through, i.e. an improper list.
func Walk(list Value, fn func(Value) error) error {
	for v := list; !IsNil(v); {
		c, ok := v.(*Cons)
		if !ok {
			return fmt.Errorf("tinylisp: cannot walk improper list tail of type %T", v)
		}
		if err := fn(c.Car); err != nil {
			return err
		}
		v = c.Cdr
	}
	return nil
}

// Length returns the number of top-level elements in a proper list,
// stopping (without error) at the first non-cons value.
func Length(list Value) int {
	n := 0
	for v := list; !IsNil(v); {
		c, ok := v.(*Cons)
		if !ok {
			break
		}
		n++
		v = c.Cdr
	}
	return n
}

// Slice collects a proper list's elements into a Go slice.
func Slice(list Value) ([]Value, error) {
	var out []Value
	err := Walk(list, func(v Value) error {
		out = append(out, v)
		return nil
	})
	return out, err
}
