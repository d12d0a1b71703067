package builtins

import (
	"bemjs/pkg/errors"
	"bemjs/pkg/vm"
)

type ObjectInitializer struct{}

func (o *ObjectInitializer) Name() string {
	return "Object"
}

func (o *ObjectInitializer) Priority() int {
	return PriorityObject
}

func (o *ObjectInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	proto := r.ObjectPrototype

	method(r, proto, "hasOwnProperty", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		key, err := r.ToPropertyKey(arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		return vm.BooleanValue(hasOwnProperty(this, key)), nil
	})

	method(r, proto, "toString", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		return vm.NewString("[object " + classOf(this) + "]"), nil
	})

	method(r, proto, "valueOf", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		return this, nil
	})

	ctor := r.NewConstructor("Object", 1, proto,
		func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
			return toObject(r, arg(args, 0)), nil
		},
		func(r *vm.Realm, args []vm.Value) (vm.Value, error) {
			return toObject(r, arg(args, 0)), nil
		})
	ctorObj := ctor.AsObject()

	method(r, ctorObj, "keys", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		target := arg(args, 0)
		if target.IsUndefined() {
			return vm.Undefined, errors.NewTypeError("keys", "Cannot convert undefined to object")
		}
		var keys []vm.Value
		switch {
		case target.IsArray():
			for i := range target.AsArray().Length() {
				keys = append(keys, vm.NewString(vm.IndexKey(i)))
			}
		case target.IsString():
			for _, k := range vm.ForInKeys(target) {
				keys = append(keys, vm.NewString(k))
			}
		}
		if obj := target.AsObject(); obj != nil {
			for _, k := range obj.OwnKeys() {
				keys = append(keys, vm.NewString(k))
			}
		}
		return r.NewArray(keys), nil
	})

	method(r, ctorObj, "create", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		p := arg(args, 0)
		if p.IsUndefined() {
			// there is no null in the language; undefined stands for it
			return vm.NewObject(nil).Value(), nil
		}
		if !p.IsObject() {
			return vm.Undefined, errors.NewTypeError("create", "Object prototype may only be an Object: %s", p.ToString())
		}
		return vm.NewObject(p.AsObject()).Value(), nil
	})

	method(r, ctorObj, "getPrototypeOf", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		target := arg(args, 0)
		var p *vm.Object
		switch target.Type() {
		case vm.TypeUndefined:
			return vm.Undefined, errors.NewTypeError("getPrototypeOf", "Cannot convert undefined to object")
		case vm.TypeNumber:
			p = r.NumberPrototype
		case vm.TypeString:
			p = r.StringPrototype
		case vm.TypeBoolean:
			p = r.BooleanPrototype
		default:
			p = target.AsObject().Prototype()
		}
		if p == nil {
			return vm.Undefined, nil
		}
		return p.Value(), nil
	})

	return ctx.DefineGlobal("Object", ctor)
}

// toObject returns objects unchanged and a fresh plain object for
// undefined. Primitives have no wrapper objects and are returned as is.
func toObject(r *vm.Realm, v vm.Value) vm.Value {
	if v.IsUndefined() {
		return r.NewPlainObject()
	}
	return v
}

func hasOwnProperty(v vm.Value, key string) bool {
	switch v.Type() {
	case vm.TypeUndefined, vm.TypeNumber, vm.TypeBoolean:
		return false
	case vm.TypeString:
		if key == "length" {
			return true
		}
		idx, ok := vm.ArrayIndex(key)
		return ok && idx < len([]rune(v.AsString()))
	case vm.TypeArray:
		if key == "length" {
			return true
		}
		if idx, ok := vm.ArrayIndex(key); ok && idx < v.AsArray().Length() {
			return true
		}
	}
	return v.AsObject().HasOwn(key)
}

// classOf returns the tag Object.prototype.toString reports.
func classOf(v vm.Value) string {
	switch v.Type() {
	case vm.TypeUndefined:
		return "Undefined"
	case vm.TypeNumber:
		return "Number"
	case vm.TypeString:
		return "String"
	case vm.TypeBoolean:
		return "Boolean"
	case vm.TypeArray:
		return "Array"
	case vm.TypeFunction, vm.TypeNativeFunction:
		return "Function"
	case vm.TypeRegExp:
		return "RegExp"
	}
	return "Object"
}
