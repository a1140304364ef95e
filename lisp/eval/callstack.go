package eval

import (
	"fmt"
	"io"

	"go.spiff.io/tinylisp/lisp/lisperr"
	"go.spiff.io/tinylisp/lisp/value"
)

// Frame is one entry of the runtime's call stack: the callable being
// applied and the argument list it was applied to. Frames form a
// doubly-linked list (spec.md §4.3: "a doubly-linked list of call
// frames") so DumpStack can walk top-to-bottom while Mark can equally
// walk bottom-to-top if ever needed.
type Frame struct {
	Callable value.Value
	Args     *value.Cons
	prev, next *Frame
}

// push adds a new frame on top of the stack. Every call pushes on entry
// and pops on every exit path (see the defer in Apply), which is what
// makes the stack a reliable GC root and a reliable stack trace source
// at the same time.
func (rt *Runtime) push(callable value.Value, args *value.Cons) *Frame {
	f := &Frame{Callable: callable, Args: args, prev: rt.stackTop}
	if rt.stackTop != nil {
		rt.stackTop.next = f
	} else {
		rt.stackBottom = f
	}
	rt.stackTop = f
	rt.depth++
	return f
}

func (rt *Runtime) pop() {
	f := rt.stackTop
	if f == nil {
		return
	}
	rt.stackTop = f.prev
	if rt.stackTop != nil {
		rt.stackTop.next = nil
	} else {
		rt.stackBottom = nil
	}
	f.prev = nil
	rt.depth--
}

// Depth returns the number of frames currently on the call stack.
func (rt *Runtime) Depth() int { return rt.depth }

// snapshotStack copies the live call stack (top-most first) into the
// kind of value lisperr.RuntimeError can carry past the point where the
// live frames have already unwound.
func (rt *Runtime) snapshotStack() []lisperr.Frame {
	if rt.stackTop == nil {
		return nil
	}
	frames := make([]lisperr.Frame, 0, rt.depth)
	for f := rt.stackTop; f != nil; f = f.prev {
		frames = append(frames, lisperr.Frame{
			Callable: f.Callable.String(),
			Args:     f.Args.String(),
		})
	}
	return frames
}

// DumpStack writes a human-readable call stack trace to w, top-most
// frame first -- spec.md §4.3's dump_stack.
func (rt *Runtime) DumpStack(w io.Writer) {
	fmt.Fprintf(w, "call stack (runtime %s):\n", rt.ID)
	if rt.stackTop == nil {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	n := 0
	for f := rt.stackTop; f != nil; f = f.prev {
		fmt.Fprintf(w, "  #%d %s %s\n", n, f.Callable.String(), f.Args.String())
		n++
	}
}
