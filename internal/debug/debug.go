// Package debug provides a swappable, off-by-default logging hook for
// low-volume diagnostic traces; currently lisp/eval.New logs each
// runtime's creation through it. Nothing in this module logs
// through the standard "log" package directly -- everything routes
// through here so a single call enables or silences it all.
package debug

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
)

func prefix(step int) string {
	_, file, line, ok := runtime.Caller(2 + step)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d: ", filepath.Base(file), line)
}

func SetLogger(fn func(...interface{})) {
	logfunc = fn
}

func SetLoggerf(fn func(string, ...interface{})) {
	if fn != nil {
		logfunc = func(args ...interface{}) {
			fn("%s", fmt.Sprint(args...))
		}
	} else {
		logfunc = nil
	}
}

func Logf(format string, args ...interface{}) {
	if logfunc == nil {
		return
	}
	logfunc(prefix(1), fmt.Sprintf(format, args...))
}

func Log(args ...interface{}) {
	if logfunc == nil {
		return
	}
	logfunc(append(append(make([]interface{}, 0, len(args)+1), prefix(1)), args...)...)
}

// logfunc should follow fmt.Sprint formatting rules
var logfunc = func(...interface{}) {}

// EnableStderr routes all debug logging to os.Stderr via the standard
// "log" package, timestamped. cmd/tinylisp wires this to its -debug
// flag; library callers that embed the evaluator are expected to call
// SetLogger/SetLoggerf themselves if they want logging at all.
func EnableStderr() {
	l := log.New(os.Stderr, "tinylisp: ", log.LstdFlags)
	SetLogger(func(args ...interface{}) { l.Print(args...) })
}
