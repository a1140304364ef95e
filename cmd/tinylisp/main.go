// Command tinylisp is a minimal embedding of the lisp/eval runtime: it
// loads one program, evaluates it, and prints the result or the
// recorded error. It exists to exercise the public embedding surface
// (spec.md §6), not as a REPL or a full language tool.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.spiff.io/tinylisp/internal/debug"
	"go.spiff.io/tinylisp/lisp/builtins"
	"go.spiff.io/tinylisp/lisp/eval"
)

func main() {
	var (
		loadPath = flag.String("load", "", "path to a program to evaluate (default: stdin)")
		gc       = flag.Bool("gc", false, "run a mark-and-sweep collection after evaluation and report objects freed")
		debugLog = flag.Bool("debug", false, "enable diagnostic logging to stderr")
	)
	flag.Parse()

	if *debugLog {
		debug.EnableStderr()
	}

	os.Exit(run(*loadPath, *gc))
}

func run(loadPath string, gc bool) int {
	rt := eval.New()
	builtins.BindAll(rt)

	src, err := openSource(loadPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer src.Close()

	result, err := rt.LoadFile(rt.Global(), src)
	if err != nil {
		rt.PrintError(os.Stderr)
		rt.DumpStack(os.Stderr)
		return 1
	}

	fmt.Fprintln(rt.Stdout, result.String())

	if gc {
		rt.Mark(result)
		freed := rt.Sweep()
		fmt.Fprintf(os.Stderr, "tinylisp: gc freed %d object(s)\n", freed)
	}

	return 0
}

func openSource(path string) (*os.File, error) {
	if path == "" {
		return os.Stdin, nil
	}
	return os.Open(path)
}
