package builtins

import (
	"bemjs/pkg/errors"
	"bemjs/pkg/vm"
)

type BooleanInitializer struct{}

func (b *BooleanInitializer) Name() string {
	return "Boolean"
}

func (b *BooleanInitializer) Priority() int {
	return PriorityBoolean
}

func (b *BooleanInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	proto := r.BooleanPrototype

	thisBoolean := func(this vm.Value, name string) (vm.Value, error) {
		if !this.IsBoolean() {
			return vm.Undefined, errors.NewTypeError(name, "Boolean.prototype.%s requires that 'this' be a Boolean", name)
		}
		return this, nil
	}

	method(r, proto, "toString", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		v, err := thisBoolean(this, "toString")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(v.ToString()), nil
	})

	method(r, proto, "valueOf", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		return thisBoolean(this, "valueOf")
	})

	construct := func(r *vm.Realm, args []vm.Value) (vm.Value, error) {
		return vm.BooleanValue(arg(args, 0).IsTruthy()), nil
	}
	ctor := r.NewConstructor("Boolean", 1, proto,
		func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
			return construct(r, args)
		},
		construct)

	return ctx.DefineGlobal("Boolean", ctor)
}
