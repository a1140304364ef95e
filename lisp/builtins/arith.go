package builtins

import (
	"go.spiff.io/tinylisp/lisp/eval"
	"go.spiff.io/tinylisp/lisp/lisperr"
	"go.spiff.io/tinylisp/lisp/value"
)

// bindArith registers the dialect's integer-only arithmetic and
// comparison operators, generalized from the teacher's float-aware
// lisp/builtins/arith.go down to this dialect's single numeric kind
// (spec.md's non-goal on floats and bignums).
func bindArith(rt *eval.Runtime, bind func(string, bool, value.BuiltinFunc)) {
	bind("+", true, biAdd)
	bind("-", true, biSub)
	bind("*", true, biMul)
	bind("/", true, biDiv)
	bind("modulo", true, biMod)

	bind("=", true, biNumEq)
	bind("==", true, biNumEq)
	bind("<", true, biLt)
	bind("<=", true, biLe)
	bind(">", true, biGt)
	bind(">=", true, biGe)
}

func intsOf(name string, args *value.Cons) ([]int64, error) {
	vals, err := value.Slice(args)
	if err != nil {
		return nil, lisperr.New(lisperr.Error, "%s: improper argument list", name)
	}
	out := make([]int64, len(vals))
	for i, v := range vals {
		n, ok := v.(*value.Int)
		if !ok {
			return nil, lisperr.New(lisperr.Type, "%s: expected int, got %T", name, v)
		}
		out[i] = n.Val
	}
	return out, nil
}

func biAdd(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	ns, err := intsOf("+", args)
	if err != nil {
		return nil, err
	}
	var sum int64
	for _, n := range ns {
		sum += n
	}
	return rt.Heap().NewInt(sum), nil
}

func biMul(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	ns, err := intsOf("*", args)
	if err != nil {
		return nil, err
	}
	product := int64(1)
	for _, n := range ns {
		product *= n
	}
	return rt.Heap().NewInt(product), nil
}

func biSub(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	ns, err := intsOf("-", args)
	if err != nil {
		return nil, err
	}
	if len(ns) == 0 {
		return nil, lisperr.New(lisperr.TooFew, "-: expected at least 1 argument")
	}
	if len(ns) == 1 {
		return rt.Heap().NewInt(-ns[0]), nil
	}
	acc := ns[0]
	for _, n := range ns[1:] {
		acc -= n
	}
	return rt.Heap().NewInt(acc), nil
}

func biDiv(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	ns, err := intsOf("/", args)
	if err != nil {
		return nil, err
	}
	if len(ns) < 2 {
		return nil, lisperr.New(lisperr.TooFew, "/: expected at least 2 arguments")
	}
	acc := ns[0]
	for _, n := range ns[1:] {
		if n == 0 {
			return nil, lisperr.New(lisperr.Error, "/: division by zero")
		}
		acc /= n
	}
	return rt.Heap().NewInt(acc), nil
}

func biMod(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	ns, err := intsOf("modulo", args)
	if err != nil {
		return nil, err
	}
	if len(ns) != 2 {
		return nil, lisperr.New(lisperr.Error, "modulo: expected 2 arguments")
	}
	if ns[1] == 0 {
		return nil, lisperr.New(lisperr.Error, "modulo: division by zero")
	}
	return rt.Heap().NewInt(ns[0] % ns[1]), nil
}

func chainCompare(name string, args *value.Cons, ok func(a, b int64) bool) (bool, error) {
	ns, err := intsOf(name, args)
	if err != nil {
		return false, err
	}
	for i := 1; i < len(ns); i++ {
		if !ok(ns[i-1], ns[i]) {
			return false, nil
		}
	}
	return true, nil
}

func biNumEq(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	r, err := chainCompare("=", args, func(a, b int64) bool { return a == b })
	if err != nil {
		return nil, err
	}
	return boolValue(rt.Heap(), r), nil
}

func biLt(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	r, err := chainCompare("<", args, func(a, b int64) bool { return a < b })
	if err != nil {
		return nil, err
	}
	return boolValue(rt.Heap(), r), nil
}

func biLe(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	r, err := chainCompare("<=", args, func(a, b int64) bool { return a <= b })
	if err != nil {
		return nil, err
	}
	return boolValue(rt.Heap(), r), nil
}

func biGt(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	r, err := chainCompare(">", args, func(a, b int64) bool { return a > b })
	if err != nil {
		return nil, err
	}
	return boolValue(rt.Heap(), r), nil
}

func biGe(rt value.RuntimeOps, caller *value.Scope, args *value.Cons, _ interface{}) (value.Value, error) {
	r, err := chainCompare(">=", args, func(a, b int64) bool { return a >= b })
	if err != nil {
		return nil, err
	}
	return boolValue(rt.Heap(), r), nil
}
