package vm

// Body is the compiled form of a function body. It runs with the callee's
// fresh function scope and returns the function's result.
type Body func(r *Realm, this Value, scope *Scope) (Value, error)

// FunctionObject is a script function: parameters, the scope it closes
// over and its compiled body. Scopes never point back at functions, so
// closures form no reference cycles through the scope chain.
type FunctionObject struct {
	Object
	Name   string
	Params []string
	Scope  *Scope
	Body   Body
}

// NativeFn is the call contract shared by every builtin.
type NativeFn func(r *Realm, this Value, args []Value) (Value, error)

// NativeFunctionObject wraps a host callable. Construct, when set, is used
// by `new`; natives without it are not constructors.
type NativeFunctionObject struct {
	Object
	Name      string
	Arity     int
	Fn        NativeFn
	Construct func(r *Realm, args []Value) (Value, error)
}

// NewFunction creates a script function with its own prototype object,
// whose constructor property points back at the function.
func (r *Realm) NewFunction(name string, params []string, scope *Scope, body Body) Value {
	fn := &FunctionObject{
		Object: *NewObject(r.FunctionPrototype),
		Name:   name,
		Params: params,
		Scope:  scope,
		Body:   body,
	}
	value := fn.Value()

	proto := NewObject(r.ObjectPrototype)
	proto.DefineHidden("constructor", value)
	fn.DefineHidden("prototype", proto.Value())
	fn.DefineHidden("length", NumberValue(float64(len(params))))
	fn.DefineHidden("name", NewString(name))
	return value
}

// NewNativeFunction creates a builtin function value.
func (r *Realm) NewNativeFunction(name string, arity int, fn NativeFn) Value {
	native := &NativeFunctionObject{
		Object: *NewObject(r.FunctionPrototype),
		Name:   name,
		Arity:  arity,
		Fn:     fn,
	}
	native.DefineHidden("length", NumberValue(float64(arity)))
	native.DefineHidden("name", NewString(name))
	return native.Value()
}

// NewConstructor creates a builtin that can also be used with `new`. The
// prototype object is linked both ways.
func (r *Realm) NewConstructor(name string, arity int, proto *Object, fn NativeFn, construct func(r *Realm, args []Value) (Value, error)) Value {
	value := r.NewNativeFunction(name, arity, fn)
	native := value.AsNativeFunction()
	native.Construct = construct
	native.DefineHidden("prototype", proto.Value())
	proto.DefineHidden("constructor", value)
	return value
}

// FunctionName returns the name of a callable, or "" for anything else.
func FunctionName(v Value) string {
	switch v.typ {
	case TypeFunction:
		return v.AsFunction().Name
	case TypeNativeFunction:
		return v.AsNativeFunction().Name
	}
	return ""
}

// invoke runs a script function: a fresh function scope over the captured
// one, parameters bound positionally (missing ones are undefined), and an
// `arguments` array whose callee is the function itself.
func (f *FunctionObject) invoke(r *Realm, this Value, args []Value) (Value, error) {
	scope := NewScope(f.Scope, true)

	arguments := r.NewArray(append([]Value(nil), args...))
	arguments.AsObject().DefineHidden("callee", f.Value())
	scope.Bind("arguments", arguments)

	for i, p := range f.Params {
		if i < len(args) {
			scope.Bind(p, args[i])
		} else {
			scope.Bind(p, Undefined)
		}
	}
	return f.Body(r, this, scope)
}
