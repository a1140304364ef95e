// Package lisperr defines the error kinds spec.md §7 enumerates and the
// runtime-scoped error value the reader, evaluator, and collector all
// report through.
package lisperr

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Kind classifies a runtime failure, per spec.md §7.
type Kind string

const (
	Syntax   Kind = "syntax"
	EOF      Kind = "eof"
	FError   Kind = "ferror"
	NotFound Kind = "not-found"
	Type     Kind = "type"
	TooFew   Kind = "too-few"
	TooMany  Kind = "too-many"
	Error    Kind = "error"
)

// Frame is one entry of a captured call-stack snapshot, copied onto a
// RuntimeError at the point it was raised so the embedder can inspect it
// after the fact even once the live call stack has unwound.
type Frame struct {
	Callable string
	Args     string
}

// RuntimeError is the error kind every core operation reports on
// failure, matching spec.md §7: a kind, a human message, an optional
// source line (reader errors), and a copy of the call stack active when
// the error was raised.
type RuntimeError struct {
	ErrKind Kind
	Line    int // 1-based; 0 if not applicable
	Msg     string
	Stack   []Frame
	cause   error
}

// New builds a RuntimeError of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{ErrKind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a RuntimeError of the given kind around an existing error,
// using golang.org/x/xerrors so %w-wrapping carries call-site frame
// information the way xerrors.Errorf does for every other wrapped error
// in this module.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *RuntimeError {
	wrapped := xerrors.Errorf(format+": %w", append(append([]interface{}{}, args...), cause)...)
	return &RuntimeError{ErrKind: kind, Msg: wrapped.Error(), cause: cause}
}

// AtLine attaches a source line number (reader errors).
func (e *RuntimeError) AtLine(line int) *RuntimeError {
	e.Line = line
	return e
}

// WithStack attaches a copy of the call stack active when the error was
// raised.
func (e *RuntimeError) WithStack(frames []Frame) *RuntimeError {
	e.Stack = frames
	return e
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("tinylisp: %s: %s (line %d)", e.ErrKind, e.Msg, e.Line)
	}
	return fmt.Sprintf("tinylisp: %s: %s", e.ErrKind, e.Msg)
}

func (e *RuntimeError) Unwrap() error { return e.cause }

// As reports whether err is (or wraps) a *RuntimeError, returning it.
func As(err error) (*RuntimeError, bool) {
	var re *RuntimeError
	if xerrors.As(err, &re) {
		return re, true
	}
	return nil, false
}
