// Package builtins implements tinylisp's primitive operator library
// (spec.md §4.3, §6's new_default_scope): the operators a freshly
// created runtime's global scope is populated with before any program
// is loaded.
//
// Every builtin here is grounded in the teacher's lisp/builtins package
// (let/cond/display/cons/quote and friends) and lisp/builtins/arith.go,
// generalized from skim's float-aware arithmetic to this dialect's
// integer-only numeric tower.
package builtins

import (
	"fmt"
	"io"
	"os"

	"go.spiff.io/tinylisp/lisp/eval"
	"go.spiff.io/tinylisp/lisp/heap"
	"go.spiff.io/tinylisp/lisp/lisperr"
	"go.spiff.io/tinylisp/lisp/reader"
	"go.spiff.io/tinylisp/lisp/value"
)

// BindAll populates rt's global scope with every primitive this package
// defines. This is spec.md §6's new_default_scope.
func BindAll(rt *eval.Runtime) {
	h := rt.RawHeap()
	g := rt.Global()

	bind := func(name string, evalArgs bool, fn value.BuiltinFunc) {
		g.Bind(name, h.NewBuiltin(name, evalArgs, fn, nil))
	}

	bind("car", true, biCar)
	bind("cdr", true, biCdr)
	bind("cons", true, biCons)
	bind("list", true, biList)
	bind("null?", true, biNullP)
	bind("atom?", true, biAtomP)
	bind("list?", true, biListP)
	bind("eq?", true, biEqP)
	bind("not", true, biNot)
	bind("getattr", true, biGetattr)

	bind("display", true, biDisplay)
	bind("newline", true, biNewline)
	bind("print", true, biPrint)
	bind("dump-stack", true, biDumpStack)

	bind("eval", true, biEval)
	bind("apply", true, biApply)
	bind("map", true, biMap)
	bind("reduce", true, biReduce)
	bind("assert", true, biAssert)
	bind("read", true, biRead)

	bindArith(rt, bind)
}

func boolValue(h value.HeapOps, b bool) value.Value {
	if b {
		return h.NewInt(1)
	}
	return h.NewInt(0)
}

func biCar(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("car", "l", args)
	if err != nil {
		return nil, err
	}
	c := matched[0].(*value.Cons)
	if value.IsNil(c) {
		return nil, lisperr.New(lisperr.Error, "car of nil list")
	}
	return c.Car, nil
}

// biCdr, like original_source/src/builtins.c's lisp_builtin_cdr, performs
// no nil check: cdr of nil is nil, not an error. The nil singleton's own
// Cdr field is a bare Go nil rather than the singleton itself, so that
// case is special-cased back to the singleton rather than leaking a bare
// nil value.Value into the rest of the runtime.
func biCdr(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("cdr", "l", args)
	if err != nil {
		return nil, err
	}
	c := matched[0].(*value.Cons)
	if value.IsNil(c) {
		return rt.Heap().Nil(), nil
	}
	return c.Cdr, nil
}

func biCons(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("cons", "dd", args)
	if err != nil {
		return nil, err
	}
	return rt.Heap().NewCons(matched[0], matched[1]), nil
}

func biList(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	items, err := value.Slice(args)
	if err != nil {
		return nil, lisperr.New(lisperr.Error, "list: improper argument list")
	}
	return listOf(rt.Heap(), items), nil
}

func listOf(h value.HeapOps, items []value.Value) value.Value {
	tail := value.Value(h.Nil())
	for i := len(items) - 1; i >= 0; i-- {
		tail = h.NewCons(items[i], tail)
	}
	return tail
}

func biNullP(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("null?", "d", args)
	if err != nil {
		return nil, err
	}
	return boolValue(rt.Heap(), value.IsNil(matched[0])), nil
}

func biAtomP(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("atom?", "d", args)
	if err != nil {
		return nil, err
	}
	c, isCons := matched[0].(*value.Cons)
	return boolValue(rt.Heap(), !isCons || value.IsNil(c)), nil
}

func biListP(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("list?", "d", args)
	if err != nil {
		return nil, err
	}
	_, isCons := matched[0].(*value.Cons)
	return boolValue(rt.Heap(), isCons), nil
}

// biEqP implements eq? as identity comparison. Every Value
// implementation is a pointer type, so Go's == on the interface value
// already is pointer (identity) comparison -- no hand-written predicate
// is needed, per spec.md §9's note that eq? is meant to be cheap.
func biEqP(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("eq?", "dd", args)
	if err != nil {
		return nil, err
	}
	return boolValue(rt.Heap(), matched[0] == matched[1]), nil
}

func biNot(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("not", "d", args)
	if err != nil {
		return nil, err
	}
	return boolValue(rt.Heap(), !value.IsTrue(matched[0])), nil
}

// biGetattr implements the runtime side of the reader's dotted-access
// rewrite (a.b -> (getattr a 'b)): base must be a Scope, and the result
// is whatever is bound to attr's name in it. This is the one semantics
// that makes a Scope a usable namespace/module value from inside the
// language, not just an implementation detail of closures.
func biGetattr(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("getattr", "dS", args)
	if err != nil {
		return nil, err
	}
	scope, ok := matched[0].(*value.Scope)
	if !ok {
		return nil, lisperr.New(lisperr.Type, "getattr: base is not a scope")
	}
	attr := matched[1].(*value.Symbol)
	v, ok := scope.Resolve(attr.Name)
	if !ok {
		return nil, lisperr.New(lisperr.NotFound, "getattr: no attribute %s", attr.Name)
	}
	return v, nil
}

func biDisplay(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	items, err := value.Slice(args)
	if err != nil {
		return nil, lisperr.New(lisperr.Error, "display: improper argument list")
	}
	w := stdoutOf(rt)
	for _, v := range items {
		fmt.Fprint(w, renderDisplay(v))
	}
	return rt.Heap().Nil(), nil
}

// renderDisplay prints strings without surrounding quotes (human-facing
// output), unlike Value.String which always round-trips through the
// reader.
func renderDisplay(v value.Value) string {
	if s, ok := v.(*value.String); ok {
		return s.Val
	}
	return v.String()
}

func biNewline(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	if _, err := eval.Match("newline", "", args); err != nil {
		return nil, err
	}
	fmt.Fprintln(stdoutOf(rt))
	return rt.Heap().Nil(), nil
}

func biPrint(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, data interface{}) (value.Value, error) {
	if _, err := biDisplay(rt, caller, args, data); err != nil {
		return nil, err
	}
	return biNewline(rt, caller, rt.Heap().Nil(), data)
}

func biDumpStack(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	if _, err := eval.Match("dump-stack", "", args); err != nil {
		return nil, err
	}
	if rt2, ok := rt.(*eval.Runtime); ok {
		rt2.DumpStack(stdoutOf(rt))
	}
	return rt.Heap().Nil(), nil
}

// stdoutOf recovers the concrete *eval.Runtime's Stdout sink. The
// BuiltinFunc signature only receives the narrow value.RuntimeOps
// interface (to avoid lisp/value importing lisp/eval), but in practice
// it is always backed by *eval.Runtime, the interface's only
// implementation.
func stdoutOf(rt value.RuntimeOps) io.Writer {
	if r, ok := rt.(*eval.Runtime); ok {
		return r.Stdout
	}
	return os.Stdout
}

// biEval implements (eval x): x has already been evaluated once (to
// strip away any quoting the caller used to construct it), and is now
// evaluated again, against the calling scope -- the usual "eval a piece
// of quoted data" operation.
func biEval(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("eval", "d", args)
	if err != nil {
		return nil, err
	}
	return rt.Eval(caller, matched[0])
}

// quoteEach wraps each already-evaluated value in (quote v), so passing
// it back through Apply -- which re-evaluates arguments for both
// evaluated builtins and function lambdas -- yields the same value back
// rather than evaluating it a second time. apply, map, and reduce all
// need this: their argument lists are already values, not forms.
func quoteEach(h value.HeapOps, items []value.Value) *value.Cons {
	quote := h.Intern(value.SymQuote)
	wrapped := make([]value.Value, len(items))
	for i, v := range items {
		wrapped[i] = h.NewCons(quote, h.NewCons(v, h.Nil()))
	}
	c, _ := listOf(h, wrapped).(*value.Cons)
	return c
}

func biApply(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("apply", "dl", args)
	if err != nil {
		return nil, err
	}
	fn := matched[0]
	items, err := value.Slice(matched[1])
	if err != nil {
		return nil, lisperr.New(lisperr.Error, "apply: improper argument list")
	}
	return rt.Apply(caller, fn, quoteEach(rt.Heap(), items))
}

// biMap implements (map f xs...): f is applied positionally across one or
// more lists in lockstep, stopping as soon as the shortest list is
// exhausted -- spec.md §4.3, exercised by the literal scenario
// (map + '(1 2 3) '(10 20 30)) -> (11 22 33).
func biMap(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("map", "dl*", args)
	if err != nil {
		return nil, err
	}
	if len(matched) < 2 {
		return nil, lisperr.New(lisperr.TooFew, "map: expected a function and at least one list")
	}
	fn := matched[0]
	lists := make([][]value.Value, len(matched)-1)
	shortest := -1
	for i, lv := range matched[1:] {
		items, err := value.Slice(lv)
		if err != nil {
			return nil, lisperr.New(lisperr.Error, "map: improper argument list")
		}
		lists[i] = items
		if shortest < 0 || len(items) < shortest {
			shortest = len(items)
		}
	}
	out := make([]value.Value, shortest)
	for i := 0; i < shortest; i++ {
		row := make([]value.Value, len(lists))
		for j, items := range lists {
			row[j] = items[i]
		}
		r, err := rt.Apply(caller, fn, quoteEach(rt.Heap(), row))
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return listOf(rt.Heap(), out), nil
}

// biAssert implements (assert x message?): raises an error if x is not
// true by the dialect's narrow Int truthiness rule, per
// original_source/'s assert primitive.
func biAssert(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	items, err := value.Slice(args)
	if err != nil || len(items) < 1 || len(items) > 2 {
		return nil, lisperr.New(lisperr.Error, "assert: expected 1 or 2 arguments")
	}
	if value.IsTrue(items[0]) {
		return rt.Heap().Nil(), nil
	}
	msg := "assertion failed"
	if len(items) == 2 {
		if s, ok := items[1].(*value.String); ok {
			msg = s.Val
		} else {
			msg = items[1].String()
		}
	}
	return nil, lisperr.New(lisperr.Error, "%s", msg)
}

// biRead implements (read s): parses the first value out of string s and
// returns it, through lisp/reader.ParseValueAt -- the single-value
// counterpart of ParseProgramFromStream, which cmd/tinylisp loads whole
// programs through (via Runtime.LoadFile).
func biRead(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	matched, err := eval.Match("read", "s", args)
	if err != nil {
		return nil, err
	}
	s := matched[0].(*value.String)
	h, ok := rt.Heap().(*heap.Heap)
	if !ok {
		return nil, lisperr.New(lisperr.Error, "read: heap does not support parsing")
	}
	v, _, err := reader.ParseValueAt(h, []byte(s.Val), 0)
	if err != nil {
		return nil, lisperr.Wrap(lisperr.Syntax, err, "read")
	}
	return v, nil
}

// biReduce implements spec.md §4.3's two reduce call forms: (reduce f xs)
// seeds the fold with xs's first element and requires len(xs) >= 2;
// (reduce f init xs) seeds it with init and requires len(xs) >= 1.
func biReduce(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	top, err := value.Slice(args)
	if err != nil {
		return nil, lisperr.New(lisperr.Error, "reduce: improper argument list")
	}

	var fn, acc value.Value
	var rest []value.Value
	switch len(top) {
	case 2:
		fn = top[0]
		items, err := value.Slice(top[1])
		if err != nil {
			return nil, lisperr.New(lisperr.Error, "reduce: improper argument list")
		}
		if len(items) < 2 {
			return nil, lisperr.New(lisperr.TooFew, "reduce: list must have at least 2 elements")
		}
		acc, rest = items[0], items[1:]
	case 3:
		fn, acc = top[0], top[1]
		items, err := value.Slice(top[2])
		if err != nil {
			return nil, lisperr.New(lisperr.Error, "reduce: improper argument list")
		}
		if len(items) < 1 {
			return nil, lisperr.New(lisperr.TooFew, "reduce: list must have at least 1 element")
		}
		rest = items
	default:
		return nil, lisperr.New(lisperr.Error, "reduce: expected (reduce f xs) or (reduce f init xs)")
	}

	for _, v := range rest {
		r, err := rt.Apply(caller, fn, quoteEach(rt.Heap(), []value.Value{acc, v}))
		if err != nil {
			return nil, err
		}
		acc = r
	}
	return acc, nil
}
