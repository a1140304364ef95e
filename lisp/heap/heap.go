// Package heap implements tinylisp's allocator and mark-and-sweep
// collector: the "Heap & Type Registry" and "Collector" components of
// spec.md §4.1 and §4.4.
//
// Per spec.md §9's design note for Go implementations, the collector
// leans on Go's own garbage collector for the last mile -- there is no
// manual free(); Destroy only drops references so unreachable cycles
// don't keep each other "alive" in the bookkeeping list a turn longer
// than necessary. What this package owns is the observable mark/sweep
// protocol spec.md §4.4 and §8 describe and test: an intrusive
// all-objects list, a tri-state mark, and a bounded work queue.
package heap

import "go.spiff.io/tinylisp/lisp/value"

// Heap is the runtime's allocator and collector. It owns the
// all-objects list (threaded through each Value's Header.next) and the
// symbol intern table.
type Heap struct {
	head    value.Value // most recently allocated object
	count   int
	nilCons *value.Cons
	symbols map[string]*value.Symbol
}

// New creates a heap with its nil singleton already allocated.
func New() *Heap {
	h := &Heap{symbols: make(map[string]*value.Symbol)}
	h.nilCons = &value.Cons{}
	h.link(h.nilCons)
	return h
}

// link inserts v at the head of the all-objects list and resets its mark.
func (h *Heap) link(v value.Value) {
	hdr := v.Header()
	hdr.SetMark(value.Unmarked)
	hdr.SetNext(h.head)
	h.head = v
	h.count++
}

// Nil returns the runtime's singleton empty list.
func (h *Heap) Nil() *value.Cons { return h.nilCons }

// Count returns the number of live (linked, not yet swept) objects.
func (h *Heap) Count() int { return h.count }

// Allocate creates a zero-initialized value of the given kind, links it
// into the all-objects list, and returns it. This is spec.md §4.1's
// allocate(type) entry point; Kind is the "type" token.
func (h *Heap) Allocate(kind value.Kind) value.Value {
	var v value.Value
	switch kind {
	case value.KindNil:
		v = &value.Cons{}
	case value.KindList:
		v = value.NewCons(nil, nil)
	case value.KindInt:
		v = value.NewInt(0)
	case value.KindString:
		v = value.NewString("")
	case value.KindSymbol:
		v = value.NewSymbol("")
	case value.KindBuiltin:
		v = value.NewBuiltin("", false, nil, nil)
	case value.KindLambda:
		v = value.NewLambda(nil, nil, nil, value.LambdaFunction)
	case value.KindScope:
		v = value.NewScope(nil)
	default:
		panic("heap: unknown kind")
	}
	h.link(v)
	return v
}

// NewCons allocates a cons cell with the given car and cdr, tagged
// KindList. (The heap's one nil singleton is allocated separately, in
// New, and is never produced by this constructor.)
func (h *Heap) NewCons(car, cdr value.Value) *value.Cons {
	c := value.NewCons(car, cdr)
	h.link(c)
	return c
}

// NewInt allocates an Int.
func (h *Heap) NewInt(v int64) *value.Int {
	i := value.NewInt(v)
	h.link(i)
	return i
}

// NewString allocates a String.
func (h *Heap) NewString(s string) *value.String {
	str := value.NewString(s)
	h.link(str)
	return str
}

// Intern returns the heap's canonical *Symbol for name, allocating one on
// first use. Two calls with the same name return the same pointer, so
// eq? on same-named symbols is true.
func (h *Heap) Intern(name string) *value.Symbol {
	if s, ok := h.symbols[name]; ok {
		return s
	}
	s := value.NewSymbol(name)
	h.link(s)
	h.symbols[name] = s
	return s
}

// NewBuiltin allocates a builtin procedure.
func (h *Heap) NewBuiltin(name string, evalArgs bool, fn value.BuiltinFunc, data interface{}) *value.Builtin {
	b := value.NewBuiltin(name, evalArgs, fn, data)
	h.link(b)
	return b
}

// NewLambda allocates a closure.
func (h *Heap) NewLambda(params, body *value.Cons, env *value.Scope, kind value.LambdaKind) *value.Lambda {
	l := value.NewLambda(params, body, env, kind)
	h.link(l)
	return l
}

// NewScope allocates a scope with the given parent (nil for a global
// scope).
func (h *Heap) NewScope(parent *value.Scope) *value.Scope {
	s := value.NewScope(parent)
	h.link(s)
	return s
}

// List builds a proper list out of items, terminated by the heap's nil
// singleton.
func (h *Heap) List(items ...value.Value) value.Value {
	var tail value.Value = h.Nil()
	for i := len(items) - 1; i >= 0; i-- {
		tail = h.NewCons(items[i], tail)
	}
	return tail
}
