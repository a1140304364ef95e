package value

import "testing"

func TestIsNil(t *testing.T) {
	nilCons := &Cons{}
	if !IsNil(nilCons) {
		t.Fatalf("IsNil(%v) = false, want true", nilCons)
	}
	if !IsNil(nil) {
		t.Fatalf("IsNil(nil) = false, want true")
	}
	pair := &Cons{Car: NewInt(1), Cdr: nilCons}
	if IsNil(pair) {
		t.Fatalf("IsNil(%v) = true, want false", pair)
	}
}

func TestIsTrue(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{NewInt(0), false},
		{NewInt(1), true},
		{NewInt(-1), true},
		{NewString("x"), false},
		{NewSymbol("x"), false},
		{&Cons{}, false},
	}
	for _, c := range cases {
		if got := IsTrue(c.v); got != c.want {
			t.Errorf("IsTrue(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestConsChildrenExcludesNilSingleton(t *testing.T) {
	n := &Cons{}
	if got := n.Children(); got != nil {
		t.Fatalf("nil singleton Children() = %v, want nil", got)
	}
}

func TestConsChildrenOrdinaryPair(t *testing.T) {
	n := &Cons{}
	i := NewInt(5)
	pair := &Cons{Car: i, Cdr: n}
	children := pair.Children()
	if len(children) != 2 || children[0] != Value(i) || children[1] != Value(n) {
		t.Fatalf("pair.Children() = %v, want [%v %v]", children, i, n)
	}
}

func TestScopeResolveWalksParents(t *testing.T) {
	parent := NewScope(nil)
	parent.Bind("x", NewInt(1))
	child := NewScope(parent)
	child.Bind("y", NewInt(2))

	if v, ok := child.Resolve("x"); !ok || v.(*Int).Val != 1 {
		t.Fatalf("child.Resolve(x) = %v, %v; want 1, true", v, ok)
	}
	if v, ok := child.Resolve("y"); !ok || v.(*Int).Val != 2 {
		t.Fatalf("child.Resolve(y) = %v, %v; want 2, true", v, ok)
	}
	if _, ok := child.Resolve("z"); ok {
		t.Fatalf("child.Resolve(z) = _, true; want false")
	}
}

func TestScopeBindShadowsParent(t *testing.T) {
	parent := NewScope(nil)
	parent.Bind("x", NewInt(1))
	child := NewScope(parent)
	child.Bind("x", NewInt(2))

	if v, _ := child.Resolve("x"); v.(*Int).Val != 2 {
		t.Fatalf("child.Resolve(x) = %v, want 2", v)
	}
	if v, _ := parent.Resolve("x"); v.(*Int).Val != 1 {
		t.Fatalf("parent.Resolve(x) = %v, want 1 (shadowing must not mutate the parent)", v)
	}
}

func TestScopeUnbind(t *testing.T) {
	s := NewScope(nil)
	s.Bind("x", NewInt(1))
	if !s.Unbind("x") {
		t.Fatalf("Unbind(x) = false, want true")
	}
	if _, ok := s.Resolve("x"); ok {
		t.Fatalf("Resolve(x) after Unbind = _, true; want false")
	}
	if s.Unbind("x") {
		t.Fatalf("second Unbind(x) = true, want false")
	}
}

func TestPrintRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"int", NewInt(42), "42"},
		{"negative-int", NewInt(-7), "-7"},
		{"string", NewString("hi"), `"hi"`},
		{"string-with-escapes", NewString("a\nb\tc"), `"a\nb\tc"`},
		{"symbol", NewSymbol("foo"), "foo"},
		{"nil", &Cons{}, "()"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("%s: String() = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestWalkRejectsImproperList(t *testing.T) {
	improper := &Cons{Car: NewInt(1), Cdr: NewInt(2)}
	err := Walk(improper, func(Value) error { return nil })
	if err == nil {
		t.Fatalf("Walk(improper list) = nil error, want error")
	}
}

func TestSliceAndLength(t *testing.T) {
	n := &Cons{}
	list := &Cons{Car: NewInt(1), Cdr: &Cons{Car: NewInt(2), Cdr: n}}
	if got := Length(list); got != 2 {
		t.Fatalf("Length(list) = %d, want 2", got)
	}
	items, err := Slice(list)
	if err != nil {
		t.Fatalf("Slice(list) error: %v", err)
	}
	if len(items) != 2 || items[0].(*Int).Val != 1 || items[1].(*Int).Val != 2 {
		t.Fatalf("Slice(list) = %v, want [1 2]", items)
	}
}
