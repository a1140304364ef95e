package builtins_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.spiff.io/tinylisp/lisp/builtins"
	"go.spiff.io/tinylisp/lisp/eval"
	"go.spiff.io/tinylisp/lisp/lisperr"
	"go.spiff.io/tinylisp/lisp/value"
)

func newRuntime(t *testing.T) (*eval.Runtime, *bytes.Buffer) {
	t.Helper()
	rt := eval.New()
	builtins.BindAll(rt)
	var out bytes.Buffer
	rt.Stdout = &out
	return rt, &out
}

func evalString(t *testing.T, rt *eval.Runtime, src string) (value.Value, error) {
	t.Helper()
	return rt.LoadFile(rt.Global(), strings.NewReader(src))
}

func TestConsCarCdr(t *testing.T) {
	rt, _ := newRuntime(t)
	v, err := evalString(t, rt, `(car (cons 1 2))`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.(*value.Int).Val)

	v, err = evalString(t, rt, `(cdr (cons 1 2))`)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.(*value.Int).Val)
}

func TestCarOnEmptyListErrors(t *testing.T) {
	rt, _ := newRuntime(t)
	_, err := evalString(t, rt, `(car (list))`)
	require.Error(t, err)
	re, ok := lisperr.As(err)
	require.True(t, ok)
	assert.Equal(t, lisperr.Error, re.ErrKind)
	assert.Contains(t, err.Error(), "car of nil")
}

func TestCdrOnEmptyListReturnsNil(t *testing.T) {
	rt, _ := newRuntime(t)
	v, err := evalString(t, rt, `(cdr (list))`)
	require.NoError(t, err)
	assert.True(t, value.IsNil(v))
}

func TestNullPredicate(t *testing.T) {
	rt, _ := newRuntime(t)
	v, err := evalString(t, rt, `(null? (list))`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.(*value.Int).Val)

	v, err = evalString(t, rt, `(null? (list 1))`)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.(*value.Int).Val)
}

func TestAtomAndListPredicates(t *testing.T) {
	rt, _ := newRuntime(t)
	v, err := evalString(t, rt, `(atom? 5)`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.(*value.Int).Val)

	v, err = evalString(t, rt, `(atom? (list 1 2))`)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.(*value.Int).Val)

	v, err = evalString(t, rt, `(list? (list 1 2))`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.(*value.Int).Val)
}

func TestEqIdentity(t *testing.T) {
	rt, _ := newRuntime(t)
	v, err := evalString(t, rt, `(define x (list 1 2)) (eq? x x)`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.(*value.Int).Val)

	v, err = evalString(t, rt, `(eq? (list 1 2) (list 1 2))`)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.(*value.Int).Val, "eq? compares identity, not structure")
}

func TestEqInterningMakesSameNameSymbolsEq(t *testing.T) {
	rt, _ := newRuntime(t)
	v, err := evalString(t, rt, `(eq? (quote foo) (quote foo))`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.(*value.Int).Val)
}

func TestArithmetic(t *testing.T) {
	rt, _ := newRuntime(t)
	cases := map[string]int64{
		"(+ 1 2 3)":  6,
		"(- 10 3 2)": 5,
		"(- 5)":      -5,
		"(* 2 3 4)":  24,
		"(/ 20 2 5)": 2,
		"(modulo 7 3)": 1,
	}
	for src, want := range cases {
		v, err := evalString(t, rt, src)
		require.NoError(t, err, src)
		assert.Equal(t, want, v.(*value.Int).Val, src)
	}
}

func TestDivisionByZero(t *testing.T) {
	rt, _ := newRuntime(t)
	_, err := evalString(t, rt, `(/ 1 0)`)
	require.Error(t, err)
	re, ok := lisperr.As(err)
	require.True(t, ok)
	assert.Equal(t, lisperr.Error, re.ErrKind)
}

func TestComparisonChains(t *testing.T) {
	rt, _ := newRuntime(t)
	v, err := evalString(t, rt, `(< 1 2 3)`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.(*value.Int).Val)

	v, err = evalString(t, rt, `(< 1 3 2)`)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.(*value.Int).Val)
}

func TestDisplayWritesToRuntimeStdout(t *testing.T) {
	rt, out := newRuntime(t)
	_, err := evalString(t, rt, `(display "hello" " " "world")`)
	require.NoError(t, err)
	assert.Equal(t, "hello world", out.String())
}

func TestApplySpreadsListAsArguments(t *testing.T) {
	rt, _ := newRuntime(t)
	v, err := evalString(t, rt, `(apply + (list 1 2 3))`)
	require.NoError(t, err)
	assert.Equal(t, int64(6), v.(*value.Int).Val)
}

func TestMapAcrossSeveralLists(t *testing.T) {
	rt, _ := newRuntime(t)
	v, err := evalString(t, rt, `(map + (quote (1 2 3)) (quote (10 20 30)))`)
	require.NoError(t, err)
	assert.Equal(t, "(11 22 33)", v.String())
}

func TestMapRequiresAtLeastOneList(t *testing.T) {
	rt, _ := newRuntime(t)
	_, err := evalString(t, rt, `(map +)`)
	require.Error(t, err)
}

func TestReduceTwoArgFormSeedsFromFirstElement(t *testing.T) {
	rt, _ := newRuntime(t)
	v, err := evalString(t, rt, `(reduce + (list 1 2 3))`)
	require.NoError(t, err)
	assert.Equal(t, int64(6), v.(*value.Int).Val)
}

func TestReduceTwoArgFormRequiresTwoElements(t *testing.T) {
	rt, _ := newRuntime(t)
	_, err := evalString(t, rt, `(reduce + (list 1))`)
	require.Error(t, err)
}

func TestAssertPassesOnTrue(t *testing.T) {
	rt, _ := newRuntime(t)
	_, err := evalString(t, rt, `(assert (< 1 2))`)
	require.NoError(t, err)
}

func TestAssertFailsWithMessage(t *testing.T) {
	rt, _ := newRuntime(t)
	_, err := evalString(t, rt, `(assert (< 2 1) "one is not less than two")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one is not less than two")
}

func TestReadParsesOneValue(t *testing.T) {
	rt, _ := newRuntime(t)
	v, err := evalString(t, rt, `(read "(+ 1 2)")`)
	require.NoError(t, err)
	assert.Equal(t, "(+ 1 2)", v.String())
}

func TestNotBuiltin(t *testing.T) {
	rt, _ := newRuntime(t)
	v, err := evalString(t, rt, `(not 0)`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.(*value.Int).Val)

	v, err = evalString(t, rt, `(not 1)`)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.(*value.Int).Val)
}
