package vm

import (
	"errors"
	"math"
	"strings"
	"testing"

	scripterrors "bemjs/pkg/errors"
)

func TestGetAndSetOnUndefined(t *testing.T) {
	r := NewRealm()

	_, err := r.Get(Undefined, "foo")
	var typeErr *scripterrors.TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("Get on undefined = %v, want TypeError", err)
	}
	if typeErr.Msg != "Cannot read property 'foo' of undefined" {
		t.Errorf("message = %q", typeErr.Msg)
	}

	_, err = r.Set(Undefined, "foo", True)
	if !errors.As(err, &typeErr) || !strings.HasPrefix(typeErr.Msg, "Cannot set property 'foo'") {
		t.Errorf("Set on undefined = %v", err)
	}
}

func TestStringProperties(t *testing.T) {
	r := NewRealm()
	s := NewString("héllo")
	r.StringPrototype.SetOwn("shout", NewString("method"))

	tests := []struct {
		key  string
		want string
	}{
		{"length", "5"},
		{"1", "é"},
		{"9", "undefined"},
		{"shout", "method"},
	}
	for _, tt := range tests {
		v, err := r.Get(s, tt.key)
		if err != nil {
			t.Fatal(err)
		}
		if v.ToString() != tt.want {
			t.Errorf("%q[%s] = %s, want %s", "héllo", tt.key, v.Inspect(), tt.want)
		}
	}

	// writes to primitives are ignored
	if _, err := r.Set(s, "x", True); err != nil {
		t.Errorf("Set on a string: %v", err)
	}
}

func TestArrayProperties(t *testing.T) {
	r := NewRealm()
	arr := r.NewArray([]Value{NumberValue(1), NumberValue(2)})

	if _, err := r.SetProperty(arr, NumberValue(4), NewString("x")); err != nil {
		t.Fatal(err)
	}
	length, _ := r.Get(arr, "length")
	if length.AsFloat() != 5 {
		t.Errorf("length after sparse write = %v", length.Inspect())
	}

	if _, err := r.Set(arr, "length", NumberValue(1)); err != nil {
		t.Fatal(err)
	}
	if got := arr.Inspect(); got != "[1]" {
		t.Errorf("after length = 1: %s", got)
	}

	if _, err := r.Set(arr, "length", NumberValue(-1)); err == nil {
		t.Errorf("negative length should fail")
	}

	if _, err := r.Set(arr, "tag", NewString("t")); err != nil {
		t.Fatal(err)
	}
	if got := arr.Inspect(); got != `[1, tag: "t"]` {
		t.Errorf("named key on array = %s", got)
	}
	// "01" is a named key, not an index
	r.Set(arr, "01", True)
	if arr.AsArray().Length() != 1 {
		t.Errorf("non-canonical index grew the array")
	}
}

func TestDeleteAndIn(t *testing.T) {
	r := NewRealm()
	obj := r.NewPlainObject()
	r.Set(obj, "a", NumberValue(1))

	ok, err := r.HasProperty(NewString("a"), obj)
	if err != nil || !ok {
		t.Errorf("'a' in obj = %v, %v", ok, err)
	}
	ok, _ = r.HasProperty(NewString("hasOwnProperty"), obj)
	if ok {
		t.Errorf("bare realm has no Object.prototype methods")
	}

	deleted, err := r.DeleteProperty(obj, NewString("a"))
	if err != nil || !deleted {
		t.Errorf("delete obj.a = %v, %v", deleted, err)
	}
	if ok, _ := r.HasProperty(NewString("a"), obj); ok {
		t.Errorf("'a' still present after delete")
	}

	if _, err := r.HasProperty(NewString("a"), NumberValue(1)); err == nil {
		t.Errorf("'in' on a number should be a TypeError")
	}
	if _, err := r.DeleteProperty(Undefined, NewString("a")); err == nil {
		t.Errorf("delete on undefined should be a TypeError")
	}

	arr := r.NewArray([]Value{NumberValue(1), NumberValue(2)})
	r.DeleteProperty(arr, NewString("0"))
	if got := arr.Inspect(); got != "[undefined, 2]" {
		t.Errorf("delete arr[0] = %s", got)
	}
}

func TestUpdate(t *testing.T) {
	r := NewRealm()
	scope := NewScope(nil, true)
	scope.Bind("i", NewString("5"))
	ref := ScopeReference{Scope: scope, Name: "i"}

	old, err := r.Update(ref, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if old.AsFloat() != 5 {
		t.Errorf("postfix result = %v, want 5", old.Inspect())
	}
	now, _ := scope.Get("i")
	if now.AsFloat() != 6 {
		t.Errorf("i after i++ = %v, want 6", now.Inspect())
	}

	updated, _ := r.Update(ref, -1, false)
	if updated.AsFloat() != 5 {
		t.Errorf("prefix result = %v, want 5", updated.Inspect())
	}

	obj := r.NewPlainObject()
	pref := PropertyReference{Base: obj, Key: "n"}
	v, _ := r.Update(pref, 1, false)
	floatsEqual(t, math.NaN(), v.AsFloat(), "undefined + 1")

	if _, err := r.Update(ScopeReference{Scope: scope, Name: "missing"}, 1, true); err == nil {
		t.Errorf("update of an unbound name should be a ReferenceError")
	}
}

func TestAdd(t *testing.T) {
	r := NewRealm()
	tests := []struct {
		a, b Value
		want string
	}{
		{NumberValue(1), NumberValue(2), "3"},
		{NewString("1"), NumberValue(2), "12"},
		{NumberValue(1), NewString("2"), "12"},
		{Undefined, NumberValue(1), "NaN"},
		{True, NumberValue(1), "2"},
		{NewString("a"), Undefined, "aundefined"},
		{r.NewArray([]Value{NumberValue(1), NumberValue(2)}), NewString("!"), "1,2!"},
		{r.NewPlainObject(), NewString(""), "[object Object]"},
	}
	for _, tt := range tests {
		got, err := r.Add(tt.a, tt.b)
		if err != nil {
			t.Fatal(err)
		}
		if got.ToString() != tt.want {
			t.Errorf("%s + %s = %s, want %s", tt.a.Inspect(), tt.b.Inspect(), got.ToString(), tt.want)
		}
	}
}

func TestAddUsesValueOf(t *testing.T) {
	r := NewRealm()
	obj := r.NewPlainObject()
	obj.AsObject().SetOwn("valueOf", r.NewNativeFunction("valueOf", 0, func(r *Realm, this Value, args []Value) (Value, error) {
		return NumberValue(40), nil
	}))
	got, err := r.Add(obj, NumberValue(2))
	if err != nil {
		t.Fatal(err)
	}
	if got.AsFloat() != 42 {
		t.Errorf("obj + 2 = %s, want 42", got.Inspect())
	}
}

func TestArithmeticAndCompare(t *testing.T) {
	r := NewRealm()
	v, _ := r.Arithmetic("%", NumberValue(-7), NumberValue(3))
	floatsEqual(t, -1, v.AsFloat(), "-7 % 3")
	v, _ = r.Arithmetic("/", NumberValue(1), NumberValue(0))
	floatsEqual(t, math.Inf(1), v.AsFloat(), "1 / 0")
	v, _ = r.Arithmetic("*", NewString("3"), NewString("4"))
	floatsEqual(t, 12, v.AsFloat(), `"3" * "4"`)

	tests := []struct {
		op   string
		a, b Value
		want bool
	}{
		{"<", NumberValue(1), NumberValue(2), true},
		{"<", NewString("10"), NewString("9"), true},
		{"<", NewString("10"), NumberValue(9), false},
		{">=", NumberValue(2), NumberValue(2), true},
		{"<", NaN, NumberValue(1), false},
		{">=", NaN, NaN, false},
		{"<=", Undefined, NumberValue(0), false},
	}
	for _, tt := range tests {
		got, err := r.Compare(tt.op, tt.a, tt.b)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("%s %s %s = %v, want %v", tt.a.Inspect(), tt.op, tt.b.Inspect(), got, tt.want)
		}
	}
}

func TestLooseEquals(t *testing.T) {
	r := NewRealm()
	tests := []struct {
		a, b Value
		want bool
	}{
		{NumberValue(1), NewString("1"), true},
		{NewString(""), NumberValue(0), true},
		{True, NumberValue(1), true},
		{True, NewString("1"), true},
		{False, NewString(""), true},
		{Undefined, NumberValue(0), false},
		{Undefined, Undefined, true},
		{NaN, NaN, false},
		{r.NewArray([]Value{NumberValue(7)}), NumberValue(7), true},
		{r.NewPlainObject(), r.NewPlainObject(), false},
	}
	for i, tt := range tests {
		got, err := r.LooseEquals(tt.a, tt.b)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("case %d: %s == %s = %v, want %v", i, tt.a.Inspect(), tt.b.Inspect(), got, tt.want)
		}
	}
}

func TestInstanceOf(t *testing.T) {
	r := NewRealm()
	ctor := r.NewFunction("Point", nil, r.Global, func(r *Realm, this Value, scope *Scope) (Value, error) {
		return Undefined, nil
	})
	p, err := r.New(ctor, nil)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := r.InstanceOf(p, ctor)
	if err != nil || !ok {
		t.Errorf("p instanceof Point = %v, %v", ok, err)
	}
	if ok, _ := r.InstanceOf(NumberValue(1), ctor); ok {
		t.Errorf("primitives are never instances")
	}
	if _, err := r.InstanceOf(p, r.NewPlainObject()); err == nil {
		t.Errorf("instanceof a non-callable should be a TypeError")
	}
}
