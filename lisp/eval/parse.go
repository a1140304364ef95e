package eval

import (
	"io"

	"go.spiff.io/tinylisp/lisp/heap"
	"go.spiff.io/tinylisp/lisp/reader"
	"go.spiff.io/tinylisp/lisp/value"
)

// parseProgramFromStream is a thin indirection to lisp/reader, kept
// here so Runtime.LoadFile doesn't need its callers to import
// lisp/reader directly.
func parseProgramFromStream(h *heap.Heap, rd io.Reader) (value.Value, error) {
	return reader.ParseProgramFromStream(h, rd)
}
