// Package eval implements tinylisp's Scope & Evaluator component
// (spec.md §4.3): the apply/eval mutual recursion, the call stack, and
// the special forms. It is built on top of lisp/heap for allocation and
// lisp/value for the data model.
package eval

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"go.spiff.io/tinylisp/internal/debug"
	"go.spiff.io/tinylisp/lisp/heap"
	"go.spiff.io/tinylisp/lisp/lisperr"
	"go.spiff.io/tinylisp/lisp/value"
)

// Runtime owns one heap, one global scope, and one active call stack.
// spec.md §5: a Runtime is owned by exactly one logical caller, and
// values never cross between two coexisting Runtimes. The ID exists so
// that log lines and stack dumps from two coexisting runtimes in the
// same process can be told apart.
type Runtime struct {
	ID uuid.UUID

	heap   *heap.Heap
	global *value.Scope

	stackTop, stackBottom *Frame
	depth                 int

	lastErr *lisperr.RuntimeError

	Stdout io.Writer
	Stderr io.Writer
}

// New creates a runtime with an empty global scope. Callers typically
// follow this with builtins.BindAll(rt) to populate the primitives
// spec.md §4.3 names (new_default_scope in spec.md §6).
func New() *Runtime {
	h := heap.New()
	rt := &Runtime{
		ID:     uuid.New(),
		heap:   h,
		global: h.NewScope(nil),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	debug.Logf("tinylisp: new runtime %s", rt.ID)
	return rt
}

// Heap returns the runtime's heap, satisfying value.RuntimeOps.
func (rt *Runtime) Heap() value.HeapOps { return rt.heap }

// RawHeap returns the concrete *heap.Heap, for callers (builtins, the
// reader, cmd/tinylisp) that need allocation beyond value.HeapOps.
func (rt *Runtime) RawHeap() *heap.Heap { return rt.heap }

// Global returns the runtime's global scope.
func (rt *Runtime) Global() *value.Scope { return rt.global }

// Nil returns the runtime's nil singleton.
func (rt *Runtime) Nil() *value.Cons { return rt.heap.Nil() }

// Err returns the last error recorded on the runtime, or nil.
func (rt *Runtime) Err() *lisperr.RuntimeError { return rt.lastErr }

// ClearError clears the runtime's recorded error, per spec.md §6
// clear_error.
func (rt *Runtime) ClearError() { rt.lastErr = nil }

// PrintError writes the runtime's recorded error (if any) to w, per
// spec.md §6 print_error.
func (rt *Runtime) PrintError(w io.Writer) {
	if rt.lastErr == nil {
		return
	}
	fmt.Fprintln(w, rt.lastErr.Error())
}

// fail normalizes err into a *lisperr.RuntimeError, stamps it with the
// current call stack (unless an inner call already stamped it, so the
// snapshot taken closest to the failure is kept), records it as the
// runtime's last error, and returns it. Every error Eval/Apply/builtins produce passes through
// here, matching spec.md §7: "any core operation that fails ... sets,
// on the runtime, an error kind, a human message ... and an owned copy
// of the current call stack."
func (rt *Runtime) fail(err error) error {
	if err == nil {
		return nil
	}
	re, ok := lisperr.As(err)
	if !ok {
		re = lisperr.New(lisperr.Error, "%s", err.Error())
	}
	if re.Stack == nil {
		re.WithStack(rt.snapshotStack())
	}
	rt.lastErr = re
	return re
}

// Free performs a final mark (rooted at the global scope) and sweep,
// per spec.md §6's runtime_free.
func (rt *Runtime) Free() {
	rt.Mark(rt.global)
	rt.Sweep()
}

// Mark runs the mark phase rooted at root, the runtime's global scope,
// and every value reachable from the active call stack -- "the stack is
// a root of the GC" (spec.md §4.3).
func (rt *Runtime) Mark(root value.Value) {
	roots := make([]value.Value, 0, 2+2*rt.depth)
	roots = append(roots, root, rt.global)
	for f := rt.stackTop; f != nil; f = f.prev {
		roots = append(roots, f.Callable, f.Args)
	}
	rt.heap.Mark(roots...)
}

// Sweep runs the sweep phase, returning the number of values freed.
func (rt *Runtime) Sweep() int { return rt.heap.Sweep() }

// LoadFile reads rd to completion, parses it as a program, and
// evaluates it in scope -- spec.md §6's load_file.
func (rt *Runtime) LoadFile(scope *value.Scope, rd io.Reader) (value.Value, error) {
	prog, err := parseProgramFromStream(rt.heap, rd)
	if err != nil {
		return nil, rt.fail(err)
	}
	return rt.Eval(scope, prog)
}
