package builtins

import (
	"strings"

	"bemjs/pkg/errors"
	"bemjs/pkg/vm"
)

type ArrayInitializer struct{}

func (a *ArrayInitializer) Name() string {
	return "Array"
}

func (a *ArrayInitializer) Priority() int {
	return PriorityArray
}

func (a *ArrayInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	proto := r.ArrayPrototype

	method(r, proto, "push", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		arr, err := thisArray(this, "push")
		if err != nil {
			return vm.Undefined, err
		}
		if arr.Length()+len(args) > vm.MaxArrayLength {
			return vm.Undefined, errors.NewRangeError("Invalid array length")
		}
		arr.Append(args...)
		return vm.NumberValue(float64(arr.Length())), nil
	})

	method(r, proto, "pop", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		arr, err := thisArray(this, "pop")
		if err != nil {
			return vm.Undefined, err
		}
		n := arr.Length()
		if n == 0 {
			return vm.Undefined, nil
		}
		last := arr.Get(n - 1)
		if err := arr.SetLength(float64(n - 1)); err != nil {
			return vm.Undefined, err
		}
		return last, nil
	})

	method(r, proto, "shift", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		arr, err := thisArray(this, "shift")
		if err != nil {
			return vm.Undefined, err
		}
		if arr.Length() == 0 {
			return vm.Undefined, nil
		}
		elems := arr.Elements()
		first := elems[0]
		copy(elems, elems[1:])
		if err := arr.SetLength(float64(len(elems) - 1)); err != nil {
			return vm.Undefined, err
		}
		return first, nil
	})

	method(r, proto, "unshift", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		arr, err := thisArray(this, "unshift")
		if err != nil {
			return vm.Undefined, err
		}
		if arr.Length()+len(args) > vm.MaxArrayLength {
			return vm.Undefined, errors.NewRangeError("Invalid array length")
		}
		arr.Prepend(args...)
		return vm.NumberValue(float64(arr.Length())), nil
	})

	method(r, proto, "concat", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		arr, err := thisArray(this, "concat")
		if err != nil {
			return vm.Undefined, err
		}
		result := append([]vm.Value(nil), arr.Elements()...)
		for _, v := range args {
			if v.IsArray() {
				result = append(result, v.AsArray().Elements()...)
			} else {
				result = append(result, v)
			}
		}
		if len(result) > vm.MaxArrayLength {
			return vm.Undefined, errors.NewRangeError("Invalid array length")
		}
		return r.NewArray(result), nil
	})

	join := func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		arr, err := thisArray(this, "join")
		if err != nil {
			return vm.Undefined, err
		}
		sep := ","
		if s := arg(args, 0); !s.IsUndefined() {
			if sep, err = r.ToString(s); err != nil {
				return vm.Undefined, err
			}
		}
		parts := make([]string, arr.Length())
		for i, el := range arr.Elements() {
			if el.IsUndefined() {
				continue
			}
			if parts[i], err = r.ToString(el); err != nil {
				return vm.Undefined, err
			}
		}
		return vm.NewString(strings.Join(parts, sep)), nil
	}
	method(r, proto, "join", 1, join)
	method(r, proto, "toString", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		return join(r, this, nil)
	})

	method(r, proto, "slice", 2, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		arr, err := thisArray(this, "slice")
		if err != nil {
			return vm.Undefined, err
		}
		n := arr.Length()
		start, end := 0, n
		if v := arg(args, 0); !v.IsUndefined() {
			f, err := toInteger(r, v)
			if err != nil {
				return vm.Undefined, err
			}
			start = relativeIndex(f, n)
		}
		if v := arg(args, 1); !v.IsUndefined() {
			f, err := toInteger(r, v)
			if err != nil {
				return vm.Undefined, err
			}
			end = relativeIndex(f, n)
		}
		if start >= end {
			return r.NewArray(nil), nil
		}
		return r.NewArray(append([]vm.Value(nil), arr.Elements()[start:end]...)), nil
	})

	method(r, proto, "indexOf", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		arr, err := thisArray(this, "indexOf")
		if err != nil {
			return vm.Undefined, err
		}
		from := 0
		if v := arg(args, 1); !v.IsUndefined() {
			f, err := toInteger(r, v)
			if err != nil {
				return vm.Undefined, err
			}
			from = relativeIndex(f, arr.Length())
		}
		target := arg(args, 0)
		for i := from; i < arr.Length(); i++ {
			if vm.StrictEquals(arr.Get(i), target) {
				return vm.NumberValue(float64(i)), nil
			}
		}
		return vm.NumberValue(-1), nil
	})

	construct := func(r *vm.Realm, args []vm.Value) (vm.Value, error) {
		if len(args) == 1 && args[0].IsNumber() {
			arr := r.NewArray(nil)
			if err := arr.AsArray().SetLength(args[0].AsFloat()); err != nil {
				return vm.Undefined, err
			}
			return arr, nil
		}
		return r.NewArray(append([]vm.Value(nil), args...)), nil
	}
	ctor := r.NewConstructor("Array", 1, proto,
		func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
			return construct(r, args)
		},
		construct)

	method(r, ctor.AsObject(), "isArray", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		return vm.BooleanValue(arg(args, 0).IsArray()), nil
	})

	return ctx.DefineGlobal("Array", ctor)
}

func thisArray(this vm.Value, name string) (*vm.ArrayObject, error) {
	if !this.IsArray() {
		return nil, errors.NewTypeError(name, "Array.prototype.%s called on %s", name, vm.TypeOf(this))
	}
	return this.AsArray(), nil
}
