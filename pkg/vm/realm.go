package vm

import (
	"fmt"
	"io"
	"math/rand"
	"os"

	"bemjs/pkg/errors"
)

// DefaultMaxCallDepth bounds nested calls so that runaway recursion fails
// with a RangeError instead of exhausting the Go stack.
const DefaultMaxCallDepth = 10000

// Realm is one instance of the runtime: the builtin prototypes, the global
// scope and the host facilities builtins use. A realm is not safe for
// concurrent use; compiled units may be shared between realms.
type Realm struct {
	ObjectPrototype   *Object
	FunctionPrototype *Object
	ArrayPrototype    *Object
	StringPrototype   *Object
	NumberPrototype   *Object
	BooleanPrototype  *Object
	RegExpPrototype   *Object

	Global *Scope

	// Out receives console output.
	Out io.Writer
	// Rand backs Math.random.
	Rand *rand.Rand

	MaxCallDepth int
	depth        int
}

// NewRealm creates a realm with empty builtin prototypes linked to
// Object.prototype and an empty global scope. The builtins package fills
// them in.
func NewRealm() *Realm {
	objectProto := NewObject(nil)
	r := &Realm{
		ObjectPrototype:   objectProto,
		FunctionPrototype: NewObject(objectProto),
		ArrayPrototype:    NewObject(objectProto),
		StringPrototype:   NewObject(objectProto),
		NumberPrototype:   NewObject(objectProto),
		BooleanPrototype:  NewObject(objectProto),
		RegExpPrototype:   NewObject(objectProto),
		Global:            NewScope(nil, true),
		Out:               os.Stdout,
		Rand:              rand.New(rand.NewSource(rand.Int63())),
		MaxCallDepth:      DefaultMaxCallDepth,
	}
	return r
}

// NewPlainObject creates an empty object inheriting from Object.prototype.
func (r *Realm) NewPlainObject() Value {
	return NewObject(r.ObjectPrototype).Value()
}

// NewArray creates an array that takes ownership of elements.
func (r *Realm) NewArray(elements []Value) Value {
	if elements == nil {
		elements = []Value{}
	}
	arr := &ArrayObject{Object: *NewObject(r.ArrayPrototype), elements: elements}
	return arr.Value()
}

// Depth returns the current call depth.
func (r *Realm) Depth() int {
	return r.depth
}

// Call invokes fn with the given receiver and arguments.
func (r *Realm) Call(fn Value, this Value, args []Value) (Value, error) {
	if !fn.IsCallable() {
		return Undefined, errors.NewTypeError("", "%s is not a function", describe(fn))
	}
	r.depth++
	defer func() { r.depth-- }()
	if r.MaxCallDepth > 0 && r.depth > r.MaxCallDepth {
		return Undefined, errors.NewRangeError("Maximum call stack size exceeded")
	}

	switch fn.typ {
	case TypeFunction:
		return fn.AsFunction().invoke(r, this, args)
	case TypeNativeFunction:
		return fn.AsNativeFunction().Fn(r, this, args)
	}
	return Undefined, errors.NewInternalError("call of value with unknown tag %s", fn.typ)
}

// Apply is Function.prototype.apply: args must be an array or undefined.
func (r *Realm) Apply(fn Value, this Value, args Value) (Value, error) {
	if !fn.IsCallable() {
		return Undefined, errors.NewTypeError("apply", "Function.prototype.apply was called on %s, which is not a function", describe(fn))
	}
	switch args.typ {
	case TypeUndefined:
		return r.Call(fn, this, nil)
	case TypeArray:
		return r.Call(fn, this, append([]Value(nil), args.AsArray().elements...))
	}
	return Undefined, errors.NewTypeError("apply", "second argument to Function.prototype.apply must be an array")
}

// New implements the new operator. A script constructor gets a fresh
// object whose prototype is ctor.prototype; an object returned explicitly
// by the constructor replaces it.
func (r *Realm) New(ctor Value, args []Value) (Value, error) {
	switch ctor.typ {
	case TypeNativeFunction:
		native := ctor.AsNativeFunction()
		if native.Construct == nil {
			return Undefined, errors.NewTypeError(native.Name, "%s is not a constructor", describe(ctor))
		}
		r.depth++
		defer func() { r.depth-- }()
		if r.MaxCallDepth > 0 && r.depth > r.MaxCallDepth {
			return Undefined, errors.NewRangeError("Maximum call stack size exceeded")
		}
		return native.Construct(r, args)
	case TypeFunction:
		protoValue, _ := ctor.AsObject().Lookup("prototype")
		proto := protoValue.AsObject()
		if proto == nil {
			proto = r.ObjectPrototype
		}
		instance := NewObject(proto).Value()
		result, err := r.Call(ctor, instance, args)
		if err != nil {
			return Undefined, err
		}
		if result.IsObject() {
			return result, nil
		}
		return instance, nil
	}
	return Undefined, errors.NewTypeError("", "%s is not a constructor", describe(ctor))
}

// describe renders a value for error messages.
func describe(v Value) string {
	switch v.typ {
	case TypeString:
		return fmt.Sprintf("%q", v.AsString())
	case TypeFunction, TypeNativeFunction:
		if name := FunctionName(v); name != "" {
			return name
		}
		return "function"
	case TypeObject, TypeArray, TypeRegExp:
		return TypeOf(v)
	}
	return v.ToString()
}
