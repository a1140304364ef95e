package eval_test

import (
	"strings"
	"testing"

	"go.spiff.io/tinylisp/lisp/builtins"
	"go.spiff.io/tinylisp/lisp/eval"
	"go.spiff.io/tinylisp/lisp/lisperr"
	"go.spiff.io/tinylisp/lisp/value"
)

func newRuntime(t *testing.T) *eval.Runtime {
	t.Helper()
	rt := eval.New()
	builtins.BindAll(rt)
	return rt
}

func run(t *testing.T, rt *eval.Runtime, src string) (value.Value, error) {
	t.Helper()
	return rt.LoadFile(rt.Global(), strings.NewReader(src))
}

func TestArithmeticAndConditional(t *testing.T) {
	rt := newRuntime(t)
	v, err := run(t, rt, `(if (< 1 2) (+ 1 2 3) (* 1 2 3))`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := v.(*value.Int).Val, int64(6); got != want {
		t.Fatalf("result = %d, want %d", got, want)
	}
}

func TestClosureCapturesDefiningScope(t *testing.T) {
	rt := newRuntime(t)
	src := `
(define make-adder (lambda (n) (lambda (x) (+ x n))))
(define add5 (make-adder 5))
(add5 10)
`
	v, err := run(t, rt, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := v.(*value.Int).Val, int64(15); got != want {
		t.Fatalf("result = %d, want %d", got, want)
	}
}

func TestRecursiveFactorial(t *testing.T) {
	rt := newRuntime(t)
	src := `
(define fact (lambda (n) (if (< n 2) 1 (* n (fact (- n 1))))))
(fact 6)
`
	v, err := run(t, rt, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := v.(*value.Int).Val, int64(720); got != want {
		t.Fatalf("result = %d, want %d", got, want)
	}
}

func TestQuasiquoteUnquote(t *testing.T) {
	rt := newRuntime(t)
	v, err := run(t, rt, "(define x 5) `(a ,x c)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := v.String(), "(a 5 c)"; got != want {
		t.Fatalf("result = %q, want %q", got, want)
	}
}

func TestMacroExpansion(t *testing.T) {
	rt := newRuntime(t)
	// A macro that rewrites (my-if c t e) into (if c t e) and is expanded
	// at call time, then the expansion is evaluated in the caller's scope.
	src := `
(define my-if (macro (c t e) (list (quote if) c t e)))
(my-if (< 1 2) 100 200)
`
	v, err := run(t, rt, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := v.(*value.Int).Val, int64(100); got != want {
		t.Fatalf("result = %d, want %d", got, want)
	}
}

func TestMapAcrossList(t *testing.T) {
	rt := newRuntime(t)
	src := `(map (lambda (x) (* x x)) (list 1 2 3 4))`
	v, err := run(t, rt, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := v.String(), "(1 4 9 16)"; got != want {
		t.Fatalf("result = %q, want %q", got, want)
	}
}

func TestMapAcrossMultipleLists(t *testing.T) {
	rt := newRuntime(t)
	v, err := run(t, rt, `(map + (list 1 2 3) (list 10 20 30))`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := v.String(), "(11 22 33)"; got != want {
		t.Fatalf("result = %q, want %q", got, want)
	}
}

func TestMapStopsAtShortestList(t *testing.T) {
	rt := newRuntime(t)
	v, err := run(t, rt, `(map + (list 1 2 3) (list 10 20))`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := v.String(), "(11 22)"; got != want {
		t.Fatalf("result = %q, want %q", got, want)
	}
}

func TestReduceFold(t *testing.T) {
	rt := newRuntime(t)
	src := `(reduce (lambda (acc x) (+ acc x)) 0 (list 1 2 3 4 5))`
	v, err := run(t, rt, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := v.(*value.Int).Val, int64(15); got != want {
		t.Fatalf("result = %d, want %d", got, want)
	}
}

func TestReduceFoldWithoutSeed(t *testing.T) {
	rt := newRuntime(t)
	v, err := run(t, rt, `(reduce + (list 1 2 3))`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := v.(*value.Int).Val, int64(6); got != want {
		t.Fatalf("result = %d, want %d", got, want)
	}
}

func TestCdrOfNilIsNilNotAnError(t *testing.T) {
	rt := newRuntime(t)
	v, err := run(t, rt, `(cdr (list))`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.IsNil(v) {
		t.Fatalf("(cdr (list)) = %v, want nil", v)
	}
}

func TestCarOfEmptyListIsAnError(t *testing.T) {
	rt := newRuntime(t)
	_, err := run(t, rt, `(car '())`)
	if err == nil {
		t.Fatalf("(car '()) = nil error, want error")
	}
	re, ok := lisperr.As(err)
	if !ok {
		t.Fatalf("(car '()) error %v is not a *lisperr.RuntimeError", err)
	}
	if re.ErrKind != lisperr.Error {
		t.Fatalf("(car '()) error kind = %s, want %s", re.ErrKind, lisperr.Error)
	}
	if !strings.Contains(re.Error(), "car of nil") {
		t.Fatalf("(car '()) error message = %q, want it to mention %q", re.Error(), "car of nil")
	}
	if rt.Err() == nil {
		t.Fatalf("rt.Err() = nil after a failing evaluation, want the recorded error")
	}
	if len(rt.Err().Stack) == 0 {
		t.Fatalf("rt.Err().Stack is empty, want at least the car frame")
	}
}

func TestUndefinedSymbolIsNotFound(t *testing.T) {
	rt := newRuntime(t)
	_, err := run(t, rt, `undefined-name`)
	re, ok := lisperr.As(err)
	if !ok || re.ErrKind != lisperr.NotFound {
		t.Fatalf("error = %v, want a NotFound RuntimeError", err)
	}
}

func TestEmptyProgramEvaluatesToNil(t *testing.T) {
	rt := newRuntime(t)
	v, err := run(t, rt, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.IsNil(v) {
		t.Fatalf("empty program result = %v, want nil", v)
	}
}

func TestDottedAttributeAccess(t *testing.T) {
	rt := newRuntime(t)
	src := `
(define counter (lambda () 0))
(define mod (lambda () (quote unused)))
`
	// getattr requires a Scope value on the left; exercise it directly
	// instead of relying on a user-constructed module, since this
	// dialect has no module-literal syntax of its own.
	_, err := run(t, rt, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := rt.Global()
	attr := rt.RawHeap().Intern("counter")
	v, err := rt.Eval(g, rt.RawHeap().List(rt.RawHeap().Intern("getattr"), g, rt.RawHeap().List(rt.RawHeap().Intern("quote"), attr)))
	if err != nil {
		t.Fatalf("getattr on global scope: unexpected error: %v", err)
	}
	if _, ok := v.(*value.Lambda); !ok {
		t.Fatalf("getattr on global scope returned %T, want *value.Lambda", v)
	}
}

func TestGCReclaimsGarbageAfterEval(t *testing.T) {
	rt := newRuntime(t)
	v, err := run(t, rt, `(+ 1 2)`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := rt.RawHeap().Count()
	rt.Mark(v)
	rt.Sweep()
	after := rt.RawHeap().Count()
	if after > before {
		t.Fatalf("Count() grew across a sweep: %d -> %d", before, after)
	}
}
