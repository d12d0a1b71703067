package builtins

import (
	"bemjs/pkg/errors"
	"bemjs/pkg/vm"
)

type RegExpInitializer struct{}

func (ri *RegExpInitializer) Name() string {
	return "RegExp"
}

func (ri *RegExpInitializer) Priority() int {
	return PriorityRegExp
}

func (ri *RegExpInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	proto := r.RegExpPrototype

	method(r, proto, "test", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		re, err := thisRegExp(this, "test")
		if err != nil {
			return vm.Undefined, err
		}
		input, err := r.ToString(arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		m, err := re.Exec(input)
		if err != nil {
			return vm.Undefined, regexpError(err)
		}
		return vm.BooleanValue(m != nil), nil
	})

	method(r, proto, "exec", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		re, err := thisRegExp(this, "exec")
		if err != nil {
			return vm.Undefined, err
		}
		input, err := r.ToString(arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		m, err := re.Exec(input)
		if err != nil {
			return vm.Undefined, regexpError(err)
		}
		if m == nil {
			// no null in the language; a failed match is undefined
			return vm.Undefined, nil
		}
		groups := m.Groups()
		elems := make([]vm.Value, len(groups))
		for i, g := range groups {
			elems[i] = groupValue(g)
		}
		result := r.NewArray(elems)
		result.AsObject().SetOwn("index", vm.NumberValue(float64(m.Index)))
		result.AsObject().SetOwn("input", vm.NewString(input))
		return result, nil
	})

	method(r, proto, "toString", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		re, err := thisRegExp(this, "toString")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(re.String()), nil
	})

	construct := func(r *vm.Realm, args []vm.Value) (vm.Value, error) {
		pattern, flags := "(?:)", ""
		p := arg(args, 0)
		switch {
		case p.IsRegExp():
			pattern, flags = p.AsRegExp().Source(), p.AsRegExp().Flags()
		case !p.IsUndefined():
			s, err := r.ToString(p)
			if err != nil {
				return vm.Undefined, err
			}
			pattern = s
		}
		if f := arg(args, 1); !f.IsUndefined() {
			s, err := r.ToString(f)
			if err != nil {
				return vm.Undefined, err
			}
			flags = s
		}
		re, err := r.NewRegExp(pattern, flags)
		if err != nil {
			return vm.Undefined, &errors.SyntaxError{Msg: err.Error(), Cause: err}
		}
		return re, nil
	}
	ctor := r.NewConstructor("RegExp", 2, proto,
		func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
			return construct(r, args)
		},
		construct)

	return ctx.DefineGlobal("RegExp", ctor)
}

func thisRegExp(this vm.Value, name string) (*vm.RegExpObject, error) {
	if !this.IsRegExp() {
		return nil, errors.NewTypeError(name, "RegExp.prototype.%s called on incompatible receiver %s", name, vm.TypeOf(this))
	}
	return this.AsRegExp(), nil
}
