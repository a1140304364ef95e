package eval

import (
	"go.spiff.io/tinylisp/lisp/lisperr"
	"go.spiff.io/tinylisp/lisp/value"
)

// evalQuote implements (quote x) -> x, unevaluated.
func evalQuote(rt *Runtime, scope *value.Scope, args *value.Cons) (value.Value, error) {
	if value.IsNil(args) {
		return nil, lisperr.New(lisperr.TooFew, "quote: expected 1 argument")
	}
	if !value.IsNil(args.Cdr) {
		return nil, lisperr.New(lisperr.TooMany, "quote: expected 1 argument")
	}
	return args.Car, nil
}

// evalIf implements (if cond then else): cond is evaluated, and then or
// else is evaluated depending on value.IsTrue(cond) -- the dialect's
// narrow, Int-only truthiness rule.
func evalIf(rt *Runtime, scope *value.Scope, args *value.Cons) (value.Value, error) {
	vals, err := value.Slice(args)
	if err != nil {
		return nil, lisperr.New(lisperr.Error, "if: malformed form")
	}
	if len(vals) != 3 {
		if len(vals) < 3 {
			return nil, lisperr.New(lisperr.TooFew, "if: expected 3 arguments (cond then else)")
		}
		return nil, lisperr.New(lisperr.TooMany, "if: expected 3 arguments (cond then else)")
	}
	cond, err := rt.Eval(scope, vals[0])
	if err != nil {
		return nil, err
	}
	if value.IsTrue(cond) {
		return rt.Eval(scope, vals[1])
	}
	return rt.Eval(scope, vals[2])
}

// parseLambdaForm splits a (lambda (p...) body...) / (macro (p...)
// body...) argument list into its parameter list and body, validating
// that every parameter is a symbol.
func parseLambdaForm(name string, args *value.Cons) (params, body *value.Cons, err error) {
	if value.IsNil(args) {
		return nil, nil, lisperr.New(lisperr.TooFew, "%s: missing parameter list", name)
	}
	params, ok := args.Car.(*value.Cons)
	if !ok {
		return nil, nil, lisperr.New(lisperr.Type, "%s: parameter list must be a list", name)
	}
	err = value.Walk(params, func(v value.Value) error {
		if _, ok := v.(*value.Symbol); !ok {
			return lisperr.New(lisperr.Type, "%s: parameter %s is not a symbol", name, v.String())
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	rest, ok := args.Cdr.(*value.Cons)
	if !ok {
		return nil, nil, lisperr.New(lisperr.Error, "%s: malformed body", name)
	}
	return params, rest, nil
}

func evalLambda(rt *Runtime, scope *value.Scope, args *value.Cons) (value.Value, error) {
	params, body, err := parseLambdaForm("lambda", args)
	if err != nil {
		return nil, err
	}
	return rt.heap.NewLambda(params, body, scope, value.LambdaFunction), nil
}

func evalMacro(rt *Runtime, scope *value.Scope, args *value.Cons) (value.Value, error) {
	params, body, err := parseLambdaForm("macro", args)
	if err != nil {
		return nil, err
	}
	return rt.heap.NewLambda(params, body, scope, value.LambdaMacro), nil
}

// evalDefine implements (define name expr): binds name, in the scope
// define was invoked in, to the result of evaluating expr, and returns
// that value.
func evalDefine(rt *Runtime, scope *value.Scope, args *value.Cons) (value.Value, error) {
	if value.IsNil(args) {
		return nil, lisperr.New(lisperr.TooFew, "define: missing name")
	}
	sym, ok := args.Car.(*value.Symbol)
	if !ok {
		return nil, lisperr.New(lisperr.Type, "define: name must be a symbol")
	}
	rest, ok := args.Cdr.(*value.Cons)
	if !ok || value.IsNil(rest) {
		return nil, lisperr.New(lisperr.TooFew, "define: missing value expression")
	}
	if !value.IsNil(rest.Cdr) {
		return nil, lisperr.New(lisperr.TooMany, "define: too many arguments")
	}
	v, err := rt.Eval(scope, rest.Car)
	if err != nil {
		return nil, err
	}
	scope.Bind(sym.Name, v)
	return v, nil
}

// evalProgn implements (progn expr...): each expression is evaluated in
// order and the last one's value is returned (nil if there are none).
// This is also exactly the semantics of a lambda/macro body, factored
// out as evalBody.
func evalProgn(rt *Runtime, scope *value.Scope, args *value.Cons) (value.Value, error) {
	return rt.evalBody(scope, args)
}

// evalUnquote implements (unquote x) evaluated outside of a quasiquote
// template: it is equivalent to a plain eval of its single argument.
// Inside a quasiquote template, quasiquoteExpand hands each (unquote x)
// subform to Eval, which dispatches it here, so both paths share this
// one definition of what unquote means.
func evalUnquote(rt *Runtime, scope *value.Scope, args *value.Cons) (value.Value, error) {
	if value.IsNil(args) {
		return nil, lisperr.New(lisperr.TooFew, "unquote: expected 1 argument")
	}
	if !value.IsNil(args.Cdr) {
		return nil, lisperr.New(lisperr.TooMany, "unquote: expected 1 argument")
	}
	return rt.Eval(scope, args.Car)
}

// evalQuasiquote implements (quasiquote template): template is returned
// with every (unquote x) subform replaced by the result of evaluating x
// in scope.
func evalQuasiquote(rt *Runtime, scope *value.Scope, args *value.Cons) (value.Value, error) {
	if value.IsNil(args) {
		return nil, lisperr.New(lisperr.TooFew, "quasiquote: expected 1 argument")
	}
	if !value.IsNil(args.Cdr) {
		return nil, lisperr.New(lisperr.TooMany, "quasiquote: expected 1 argument")
	}
	return rt.quasiquoteExpand(scope, args.Car)
}

// quasiquoteExpand walks a quasiquote template, leaving every value
// alone except a (unquote x) subform, which it replaces by evaluating
// (unquote x) through the ordinary special-form path -- keeping a
// single definition of what unquote means, used whether or not it
// appears nested in a quasiquote.
func (rt *Runtime) quasiquoteExpand(scope *value.Scope, tmpl value.Value) (value.Value, error) {
	c, ok := tmpl.(*value.Cons)
	if !ok || value.IsNil(c) {
		return tmpl, nil
	}
	if sym, ok := c.Car.(*value.Symbol); ok && sym.Name == value.SymUnquote {
		return rt.Eval(scope, c)
	}
	car, err := rt.quasiquoteExpand(scope, c.Car)
	if err != nil {
		return nil, err
	}
	cdr, err := rt.quasiquoteExpand(scope, c.Cdr)
	if err != nil {
		return nil, err
	}
	return rt.heap.NewCons(car, cdr), nil
}
