package builtins

import (
	"bemjs/pkg/errors"
	"bemjs/pkg/vm"
)

type FunctionInitializer struct{}

func (f *FunctionInitializer) Name() string {
	return "Function"
}

func (f *FunctionInitializer) Priority() int {
	return PriorityFunction
}

func (f *FunctionInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	proto := r.FunctionPrototype

	method(r, proto, "apply", 2, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		return r.Apply(this, arg(args, 0), arg(args, 1))
	})

	method(r, proto, "call", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		if !this.IsCallable() {
			return vm.Undefined, errors.NewTypeError("call", "Function.prototype.call was called on %s, which is not a function", vm.TypeOf(this))
		}
		var rest []vm.Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return r.Call(this, arg(args, 0), rest)
	})

	method(r, proto, "toString", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		if !this.IsCallable() {
			return vm.Undefined, errors.NewTypeError("toString", "Function.prototype.toString requires that 'this' be a Function")
		}
		return vm.NewString(this.ToString()), nil
	})

	noDynamicCode := func(r *vm.Realm, args []vm.Value) (vm.Value, error) {
		return vm.Undefined, errors.NewTypeError("Function", "Function constructor is not supported: code cannot be compiled at runtime")
	}
	ctor := r.NewConstructor("Function", 1, proto,
		func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
			return noDynamicCode(r, args)
		},
		noDynamicCode)

	return ctx.DefineGlobal("Function", ctor)
}
