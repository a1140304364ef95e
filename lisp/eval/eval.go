package eval

import (
	"go.spiff.io/tinylisp/lisp/lisperr"
	"go.spiff.io/tinylisp/lisp/value"
)

// Eval evaluates v in scope, per spec.md §4.3's eval(scope, value):
//
//	nil, Int, String, Builtin, Lambda, Scope -> self-evaluating
//	Symbol                                   -> resolved in scope
//	Cons (non-nil)                           -> special form or application
func (rt *Runtime) Eval(scope *value.Scope, v value.Value) (value.Value, error) {
	switch t := v.(type) {
	case nil:
		return rt.heap.Nil(), nil
	case *value.Symbol:
		if bound, ok := scope.Resolve(t.Name); ok {
			return bound, nil
		}
		return nil, rt.fail(lisperr.New(lisperr.NotFound, "undefined symbol: %s", t.Name))
	case *value.Cons:
		if value.IsNil(t) {
			return t, nil
		}
		return rt.evalList(scope, t)
	case *value.Int, *value.String, *value.Builtin, *value.Lambda, *value.Scope:
		return v, nil
	default:
		return nil, rt.fail(lisperr.New(lisperr.Error, "cannot evaluate value of type %T", v))
	}
}

// specialForm is implemented by every special form: quote, if, lambda,
// macro, define, progn, quasiquote, unquote. It receives the unevaluated
// argument list (the Cdr of the form) and the scope it appeared in.
type specialForm func(rt *Runtime, scope *value.Scope, args *value.Cons) (value.Value, error)

var specialForms = map[string]specialForm{
	value.SymQuote:      evalQuote,
	value.SymIf:         evalIf,
	value.SymLambda:     evalLambda,
	value.SymMacro:      evalMacro,
	value.SymDefine:     evalDefine,
	value.SymProgn:      evalProgn,
	value.SymQuasiquote: evalQuasiquote,
	value.SymUnquote:    evalUnquote,
	// "begin" is not named in spec.md's core special-form list, but
	// original_source/ uses it as a plain alias for progn; supplementing
	// it here costs nothing and matches common Lisp custom.
	"begin": evalProgn,
}

// evalList implements the non-self-evaluating half of eval: either
// dispatch to a special form named by the head symbol, or evaluate the
// head to a callable and apply it to the (unevaluated) argument list --
// spec.md §4.3: "the evaluator decides, by inspecting the head of the
// form, whether it names a special form or an ordinary application."
func (rt *Runtime) evalList(scope *value.Scope, form *value.Cons) (value.Value, error) {
	args, ok := form.Cdr.(*value.Cons)
	if !ok {
		return nil, rt.fail(lisperr.New(lisperr.Error, "malformed form: improper argument list"))
	}

	if sym, ok := form.Car.(*value.Symbol); ok {
		if sf, ok := specialForms[sym.Name]; ok {
			v, err := sf(rt, scope, args)
			if err != nil {
				return nil, rt.fail(err)
			}
			return v, nil
		}
	}

	callable, err := rt.Eval(scope, form.Car)
	if err != nil {
		return nil, err
	}
	return rt.Apply(scope, callable, args)
}

// Apply applies callable to the unevaluated argument list args, first
// evaluating its elements in scope when the callable takes evaluated
// arguments (a builtin with EvalArgs set, or a function lambda), per
// spec.md §4.3's apply(scope, callable, args). It pushes and pops exactly one call frame, which is
// both the stack trace source and a GC root while active.
func (rt *Runtime) Apply(scope *value.Scope, callable value.Value, args *value.Cons) (value.Value, error) {
	rt.push(callable, args)
	defer rt.pop()

	switch fn := callable.(type) {
	case *value.Builtin:
		a := args
		if fn.EvalArgs {
			evaled, err := rt.evalArgs(scope, args)
			if err != nil {
				return nil, rt.fail(err)
			}
			a = evaled
		}
		v, err := fn.Fn(rt, scope, a, fn.Data)
		if err != nil {
			return nil, rt.fail(err)
		}
		return v, nil
	case *value.Lambda:
		v, err := rt.applyLambda(scope, fn, args)
		if err != nil {
			return nil, rt.fail(err)
		}
		return v, nil
	default:
		return nil, rt.fail(lisperr.New(lisperr.Error, "cannot call value of type %T", callable))
	}
}

// evalArgs evaluates every element of a proper argument list in scope,
// left to right, returning a freshly allocated list of the results.
func (rt *Runtime) evalArgs(scope *value.Scope, args *value.Cons) (*value.Cons, error) {
	items, err := value.Slice(args)
	if err != nil {
		return nil, lisperr.New(lisperr.Error, "malformed argument list")
	}
	out := make([]value.Value, len(items))
	for i, it := range items {
		v, err := rt.Eval(scope, it)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	lst := rt.heap.List(out...)
	c, _ := lst.(*value.Cons)
	return c, nil
}

// applyLambda binds args to fn's parameter list in a fresh scope
// parented on the closure's captured environment, then evaluates fn's
// body as an implicit progn -- spec.md §4.3's lambda application. A
// macro lambda receives its arguments unevaluated and has its result
// evaluated again, in the caller's scope, before being returned.
func (rt *Runtime) applyLambda(caller *value.Scope, fn *value.Lambda, args *value.Cons) (value.Value, error) {
	var bound *value.Cons
	if fn.Kind == value.LambdaFunction {
		evaled, err := rt.evalArgs(caller, args)
		if err != nil {
			return nil, err
		}
		bound = evaled
	} else {
		bound = args
	}

	callScope := rt.heap.NewScope(fn.Env)

	params := value.Value(fn.Params)
	if params == nil {
		params = rt.heap.Nil()
	}
	argv := value.Value(bound)

	for !value.IsNil(params) {
		pc, ok := params.(*value.Cons)
		if !ok {
			return nil, lisperr.New(lisperr.Error, "lambda: malformed parameter list")
		}
		sym, ok := pc.Car.(*value.Symbol)
		if !ok {
			return nil, lisperr.New(lisperr.Type, "lambda: parameter is not a symbol")
		}
		if value.IsNil(argv) {
			return nil, lisperr.New(lisperr.TooFew, "too few arguments to lambda")
		}
		ac, ok := argv.(*value.Cons)
		if !ok {
			return nil, lisperr.New(lisperr.Error, "malformed argument list")
		}
		callScope.Bind(sym.Name, ac.Car)
		params = pc.Cdr
		argv = ac.Cdr
	}
	if !value.IsNil(argv) {
		return nil, lisperr.New(lisperr.TooMany, "too many arguments to lambda")
	}

	body := value.Value(fn.Body)
	if body == nil {
		body = rt.heap.Nil()
	}
	bc, ok := body.(*value.Cons)
	if !ok {
		return nil, lisperr.New(lisperr.Error, "lambda: malformed body")
	}
	result, err := rt.evalBody(callScope, bc)
	if err != nil {
		return nil, err
	}

	if fn.Kind == value.LambdaMacro {
		return rt.Eval(caller, result)
	}
	return result, nil
}

// evalBody evaluates each expression of body in scope left to right,
// returning the last value (or nil if body is empty) -- the shared
// implicit-progn semantics of lambda bodies and the progn special form.
func (rt *Runtime) evalBody(scope *value.Scope, body *value.Cons) (value.Value, error) {
	result := value.Value(rt.heap.Nil())
	err := value.Walk(body, func(v value.Value) error {
		r, err := rt.Eval(scope, v)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
