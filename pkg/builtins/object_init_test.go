package builtins

import (
	"bytes"
	"testing"

	"github.com/nalgeon/be"

	"bemjs/pkg/vm"
)

func newTestRealm(t *testing.T) *vm.Realm {
	t.Helper()
	r, err := NewRealm()
	be.Err(t, err, nil)
	return r
}

// invoke calls recv[name](args...) the way a compiled method call does.
func invoke(t *testing.T, r *vm.Realm, recv vm.Value, name string, args ...vm.Value) (vm.Value, error) {
	t.Helper()
	fn, err := r.Get(recv, name)
	be.Err(t, err, nil)
	return r.Call(fn, recv, args)
}

// global reads a global binding.
func global(t *testing.T, r *vm.Realm, name string) vm.Value {
	t.Helper()
	v, err := r.Global.Get(name)
	be.Err(t, err, nil)
	return v
}

func str(s string) vm.Value { return vm.NewString(s) }
func num(f float64) vm.Value { return vm.NumberValue(f) }
func list(vs ...vm.Value) []vm.Value { return vs }

func TestObjectInitializer(t *testing.T) {
	var initializer BuiltinInitializer = &ObjectInitializer{}
	be.Equal(t, initializer.Name(), "Object")
	be.Equal(t, initializer.Priority(), PriorityObject)
}

func TestStandardInitializersAreSorted(t *testing.T) {
	inits := GetStandardInitializers()
	be.Equal(t, inits[0].Name(), "Object")
	for i := 1; i < len(inits); i++ {
		be.True(t, inits[i-1].Priority() <= inits[i].Priority())
	}
}

func TestGlobalBootstrap(t *testing.T) {
	r := newTestRealm(t)
	for _, name := range []string{"Object", "Array", "Function", "Number", "String", "Boolean", "RegExp", "console", "Math", "JSON", "true", "false", "NaN", "undefined", "Infinity"} {
		be.True(t, r.Global.Has(name))
	}
	be.Equal(t, global(t, r, "true"), vm.True)
	be.True(t, global(t, r, "undefined").IsUndefined())
}

func TestHasOwnProperty(t *testing.T) {
	r := newTestRealm(t)
	proto := r.NewPlainObject()
	r.Set(proto, "inherited", vm.True)
	obj := vm.NewObject(proto.AsObject()).Value()
	r.Set(obj, "own", vm.True)

	got, err := invoke(t, r, obj, "hasOwnProperty", str("own"))
	be.Err(t, err, nil)
	be.Equal(t, got, vm.True)

	got, _ = invoke(t, r, obj, "hasOwnProperty", str("inherited"))
	be.Equal(t, got, vm.False)

	arr := r.NewArray(list(num(1)))
	got, _ = invoke(t, r, arr, "hasOwnProperty", num(0))
	be.Equal(t, got, vm.True)
	got, _ = invoke(t, r, arr, "hasOwnProperty", str("push"))
	be.Equal(t, got, vm.False)
}

func TestObjectToString(t *testing.T) {
	r := newTestRealm(t)
	toString, _ := r.ObjectPrototype.GetOwn("toString")
	tests := []struct {
		this vm.Value
		want string
	}{
		{r.NewPlainObject(), "[object Object]"},
		{r.NewArray(nil), "[object Array]"},
		{num(1), "[object Number]"},
		{vm.Undefined, "[object Undefined]"},
		{global(t, r, "Object"), "[object Function]"},
	}
	for _, tt := range tests {
		got, err := r.Call(toString, tt.this, nil)
		be.Err(t, err, nil)
		be.Equal(t, got.AsString(), tt.want)
	}
}

func TestObjectStatics(t *testing.T) {
	r := newTestRealm(t)
	object := global(t, r, "Object")

	obj := r.NewPlainObject()
	r.Set(obj, "b", num(1))
	r.Set(obj, "a", num(2))
	keys, err := invoke(t, r, object, "keys", obj)
	be.Err(t, err, nil)
	be.Equal(t, keys.Inspect(), `["b", "a"]`)

	proto := r.NewPlainObject()
	r.Set(proto, "greet", str("hi"))
	child, err := invoke(t, r, object, "create", proto)
	be.Err(t, err, nil)
	greet, _ := r.Get(child, "greet")
	be.Equal(t, greet.AsString(), "hi")

	got, err := invoke(t, r, object, "getPrototypeOf", child)
	be.Err(t, err, nil)
	be.True(t, vm.StrictEquals(got, proto))

	got, _ = invoke(t, r, object, "getPrototypeOf", str("s"))
	be.True(t, vm.StrictEquals(got, r.StringPrototype.Value()))

	_, err = invoke(t, r, object, "keys", vm.Undefined)
	be.Err(t, err, "Cannot convert undefined to object")

	_, err = invoke(t, r, object, "create", num(1))
	be.Err(t, err, "Object prototype may only be an Object")
}

func TestFunctionApplyAndCall(t *testing.T) {
	r := newTestRealm(t)
	var gotThis vm.Value
	var gotArgs []vm.Value
	fn := r.NewNativeFunction("probe", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		gotThis, gotArgs = this, args
		return num(float64(len(args))), nil
	})
	receiver := r.NewPlainObject()

	n, err := invoke(t, r, fn, "apply", receiver, r.NewArray(list(num(1), num(2))))
	be.Err(t, err, nil)
	be.Equal(t, n.AsFloat(), 2.0)
	be.True(t, vm.StrictEquals(gotThis, receiver))

	n, err = invoke(t, r, fn, "call", receiver, num(1), num(2), num(3))
	be.Err(t, err, nil)
	be.Equal(t, n.AsFloat(), 3.0)
	be.Equal(t, gotArgs[2].AsFloat(), 3.0)

	_, err = invoke(t, r, fn, "apply", receiver, num(1))
	be.Err(t, err, "second argument to Function.prototype.apply must be an array")

	apply, _ := r.FunctionPrototype.GetOwn("apply")
	_, err = r.Call(apply, r.NewPlainObject(), nil)
	be.Err(t, err, "not a function")

	_, err = r.Call(global(t, r, "Function"), vm.Undefined, list(str("return 1")))
	be.Err(t, err, "Function constructor is not supported")
}

func TestConsoleLog(t *testing.T) {
	r := newTestRealm(t)
	var out bytes.Buffer
	r.Out = &out

	obj := r.NewPlainObject()
	r.Set(obj, "a", str("x"))
	_, err := invoke(t, r, global(t, r, "console"), "log", str("value:"), num(1), obj, r.NewArray(list(vm.True)))
	be.Err(t, err, nil)
	be.Equal(t, out.String(), "value: 1 {a: \"x\"} [true]\n")
}

func TestGlobalParsers(t *testing.T) {
	r := newTestRealm(t)
	tests := []struct {
		fn   string
		args []vm.Value
		want string
	}{
		{"parseInt", list(str("42px")), "42"},
		{"parseInt", list(str("  -0x1f")), "-31"},
		{"parseInt", list(str("101"), num(2)), "5"},
		{"parseInt", list(str("abc")), "NaN"},
		{"parseFloat", list(str("3.25e2 apples")), "325"},
		{"parseFloat", list(str("-Infinity")), "-Infinity"},
		{"parseFloat", list(str(".5")), "0.5"},
		{"isNaN", list(str("x")), "true"},
		{"isNaN", list(str("12")), "false"},
	}
	for _, tt := range tests {
		got, err := r.Call(global(t, r, tt.fn), vm.Undefined, tt.args)
		be.Err(t, err, nil)
		be.Equal(t, got.ToString(), tt.want)
	}
}
