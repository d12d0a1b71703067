package vm

import (
	"math"
	"strconv"

	"bemjs/pkg/errors"
)

// --- Conversions ---

// ToPrimitive converts objects by calling valueOf/toString in the order the
// hint asks for. Objects without either method fall back to their default
// string form.
func (r *Realm) ToPrimitive(v Value, hint string) (Value, error) {
	if v.IsPrimitive() {
		return v, nil
	}
	methods := [2]string{"valueOf", "toString"}
	if hint == "string" {
		methods = [2]string{"toString", "valueOf"}
	}
	found := false
	for _, name := range methods {
		method, _ := v.AsObject().Lookup(name)
		if !method.IsCallable() {
			continue
		}
		found = true
		result, err := r.Call(method, v, nil)
		if err != nil {
			return Undefined, err
		}
		if result.IsPrimitive() {
			return result, nil
		}
	}
	if !found {
		return NewString(v.ToString()), nil
	}
	return Undefined, errors.NewTypeError("", "Cannot convert object to primitive value")
}

// ToString converts any value to a string, running script toString methods
// on objects.
func (r *Realm) ToString(v Value) (string, error) {
	if v.IsPrimitive() {
		return v.ToString(), nil
	}
	prim, err := r.ToPrimitive(v, "string")
	if err != nil {
		return "", err
	}
	return prim.ToString(), nil
}

// ToNumber converts any value to a number.
func (r *Realm) ToNumber(v Value) (float64, error) {
	if v.IsPrimitive() {
		return v.ToFloat(), nil
	}
	prim, err := r.ToPrimitive(v, "number")
	if err != nil {
		return 0, err
	}
	return prim.ToFloat(), nil
}

// ToPropertyKey converts a computed member key to the property name.
func (r *Realm) ToPropertyKey(key Value) (string, error) {
	if key.IsString() {
		return key.AsString(), nil
	}
	return r.ToString(key)
}

// --- Property access ---

// GetProperty evaluates recv[key].
func (r *Realm) GetProperty(recv Value, key Value) (Value, error) {
	name, err := r.ToPropertyKey(key)
	if err != nil {
		return Undefined, err
	}
	return r.Get(recv, name)
}

// Get reads a named property. Primitives delegate to their prototype;
// undefined has no properties.
func (r *Realm) Get(recv Value, name string) (Value, error) {
	switch recv.typ {
	case TypeUndefined:
		return Undefined, errors.NewTypeError(name, "Cannot read property '%s' of undefined", name)
	case TypeString:
		s := recv.AsString()
		if name == "length" {
			return NumberValue(float64(stringLength(s))), nil
		}
		if idx, ok := ArrayIndex(name); ok {
			if ch, ok := charAt(s, idx); ok {
				return NewString(ch), nil
			}
		}
		v, _ := r.StringPrototype.Lookup(name)
		return v, nil
	case TypeNumber:
		v, _ := r.NumberPrototype.Lookup(name)
		return v, nil
	case TypeBoolean:
		v, _ := r.BooleanPrototype.Lookup(name)
		return v, nil
	case TypeArray:
		arr := recv.AsArray()
		if name == "length" {
			return NumberValue(float64(arr.Length())), nil
		}
		if idx, ok := ArrayIndex(name); ok && idx < arr.Length() {
			return arr.elements[idx], nil
		}
	}
	obj := recv.AsObject()
	if obj == nil {
		return Undefined, errors.NewInternalError("property read on value with unknown tag %s", recv.typ)
	}
	v, _ := obj.Lookup(name)
	return v, nil
}

// SetProperty evaluates recv[key] = value and returns value.
func (r *Realm) SetProperty(recv Value, key Value, value Value) (Value, error) {
	name, err := r.ToPropertyKey(key)
	if err != nil {
		return Undefined, err
	}
	return r.Set(recv, name, value)
}

// Set writes a named property. Writes to primitives are ignored.
func (r *Realm) Set(recv Value, name string, value Value) (Value, error) {
	switch recv.typ {
	case TypeUndefined:
		return Undefined, errors.NewTypeError(name, "Cannot set property '%s' of undefined", name)
	case TypeNumber, TypeString, TypeBoolean:
		return value, nil
	case TypeArray:
		arr := recv.AsArray()
		if name == "length" {
			n, err := r.ToNumber(value)
			if err != nil {
				return Undefined, err
			}
			if err := arr.SetLength(n); err != nil {
				return Undefined, err
			}
			return value, nil
		}
		if idx, ok := ArrayIndex(name); ok {
			if err := arr.Set(idx, value); err != nil {
				return Undefined, err
			}
			return value, nil
		}
	}
	obj := recv.AsObject()
	if obj == nil {
		return Undefined, errors.NewInternalError("property write on value with unknown tag %s", recv.typ)
	}
	obj.SetOwn(name, value)
	return value, nil
}

// DeleteProperty evaluates delete recv[key].
func (r *Realm) DeleteProperty(recv Value, key Value) (bool, error) {
	name, err := r.ToPropertyKey(key)
	if err != nil {
		return false, err
	}
	switch recv.typ {
	case TypeUndefined:
		return false, errors.NewTypeError(name, "Cannot convert undefined to object")
	case TypeString:
		if name == "length" {
			return false, nil
		}
		if idx, ok := ArrayIndex(name); ok && idx < stringLength(recv.AsString()) {
			return false, nil
		}
		return true, nil
	case TypeNumber, TypeBoolean:
		return true, nil
	case TypeArray:
		arr := recv.AsArray()
		if name == "length" {
			return false, nil
		}
		if idx, ok := ArrayIndex(name); ok {
			if idx < arr.Length() {
				arr.elements[idx] = Undefined
			}
			return true, nil
		}
	}
	obj := recv.AsObject()
	if obj == nil {
		return false, errors.NewInternalError("delete on value with unknown tag %s", recv.typ)
	}
	obj.DeleteOwn(name)
	return true, nil
}

// HasProperty implements the in operator.
func (r *Realm) HasProperty(key Value, target Value) (bool, error) {
	name, err := r.ToPropertyKey(key)
	if err != nil {
		return false, err
	}
	if !target.IsObject() {
		return false, errors.NewTypeError(name, "Cannot use 'in' operator to search for '%s' in %s", name, target.ToString())
	}
	if target.IsArray() {
		if name == "length" {
			return true, nil
		}
		if idx, ok := ArrayIndex(name); ok && idx < target.AsArray().Length() {
			return true, nil
		}
	}
	_, ok := target.AsObject().Lookup(name)
	return ok, nil
}

// InstanceOf walks v's prototype chain looking for ctor.prototype.
func (r *Realm) InstanceOf(v Value, ctor Value) (bool, error) {
	if !ctor.IsCallable() {
		return false, errors.NewTypeError("", "Right-hand side of 'instanceof' is not callable")
	}
	if !v.IsObject() {
		return false, nil
	}
	protoValue, _ := ctor.AsObject().Lookup("prototype")
	proto := protoValue.AsObject()
	if proto == nil {
		return false, errors.NewTypeError("prototype", "Function has non-object prototype in instanceof check")
	}
	for p := v.AsObject().Prototype(); p != nil; p = p.Prototype() {
		if p == proto {
			return true, nil
		}
	}
	return false, nil
}

// --- References and update ---

// Reference is an assignable location: a variable or a property.
type Reference interface {
	GetValue(r *Realm) (Value, error)
	PutValue(r *Realm, v Value) error
}

// ScopeReference names a variable resolved through a scope chain.
type ScopeReference struct {
	Scope *Scope
	Name  string
}

func (ref ScopeReference) GetValue(r *Realm) (Value, error) {
	return ref.Scope.Get(ref.Name)
}

func (ref ScopeReference) PutValue(r *Realm, v Value) error {
	ref.Scope.Set(ref.Name, v)
	return nil
}

// PropertyReference names a property of an already evaluated base.
type PropertyReference struct {
	Base Value
	Key  string
}

func (ref PropertyReference) GetValue(r *Realm) (Value, error) {
	return r.Get(ref.Base, ref.Key)
}

func (ref PropertyReference) PutValue(r *Realm, v Value) error {
	_, err := r.Set(ref.Base, ref.Key, v)
	return err
}

// Update implements ++ and --: it reads the current value as a number,
// stores current+delta and returns the new value (prefix) or the old one
// (postfix).
func (r *Realm) Update(ref Reference, delta float64, postfix bool) (Value, error) {
	current, err := ref.GetValue(r)
	if err != nil {
		return Undefined, err
	}
	old, err := r.ToNumber(current)
	if err != nil {
		return Undefined, err
	}
	updated := NumberValue(old + delta)
	if err := ref.PutValue(r, updated); err != nil {
		return Undefined, err
	}
	if postfix {
		return NumberValue(old), nil
	}
	return updated, nil
}

// --- Arithmetic and comparison ---

// Add implements +: string concatenation when either primitive operand is
// a string, numeric addition otherwise.
func (r *Realm) Add(a, b Value) (Value, error) {
	if a.IsNumber() && b.IsNumber() {
		return NumberValue(a.AsFloat() + b.AsFloat()), nil
	}
	pa, err := r.ToPrimitive(a, "default")
	if err != nil {
		return Undefined, err
	}
	pb, err := r.ToPrimitive(b, "default")
	if err != nil {
		return Undefined, err
	}
	if pa.IsString() || pb.IsString() {
		return NewString(pa.ToString() + pb.ToString()), nil
	}
	return NumberValue(pa.ToFloat() + pb.ToFloat()), nil
}

// Arithmetic implements the numeric binary operators - * / %.
func (r *Realm) Arithmetic(op string, a, b Value) (Value, error) {
	x, err := r.ToNumber(a)
	if err != nil {
		return Undefined, err
	}
	y, err := r.ToNumber(b)
	if err != nil {
		return Undefined, err
	}
	switch op {
	case "-":
		return NumberValue(x - y), nil
	case "*":
		return NumberValue(x * y), nil
	case "/":
		return NumberValue(x / y), nil
	case "%":
		return NumberValue(math.Mod(x, y)), nil
	}
	return Undefined, errors.NewInternalError("unknown arithmetic operator %s", op)
}

// Compare implements < > <= >=. Two strings compare lexically; anything
// else compares numerically, and NaN makes every comparison false.
func (r *Realm) Compare(op string, a, b Value) (bool, error) {
	pa, err := r.ToPrimitive(a, "number")
	if err != nil {
		return false, err
	}
	pb, err := r.ToPrimitive(b, "number")
	if err != nil {
		return false, err
	}
	if pa.IsString() && pb.IsString() {
		x, y := pa.AsString(), pb.AsString()
		switch op {
		case "<":
			return x < y, nil
		case ">":
			return x > y, nil
		case "<=":
			return x <= y, nil
		case ">=":
			return x >= y, nil
		}
	} else {
		x, y := pa.ToFloat(), pb.ToFloat()
		switch op {
		case "<":
			return x < y, nil
		case ">":
			return x > y, nil
		case "<=":
			return x <= y, nil
		case ">=":
			return x >= y, nil
		}
	}
	return false, errors.NewInternalError("unknown comparison operator %s", op)
}

// StrictEquals implements ===.
func StrictEquals(a, b Value) bool {
	return a.StrictlyEquals(b)
}

// LooseEquals implements ==. Values of one type compare as with ===;
// numbers, strings and booleans are compared numerically after coercion;
// objects are converted to primitives when compared with one. Undefined
// is only equal to undefined.
func (r *Realm) LooseEquals(a, b Value) (bool, error) {
	for {
		if a.typ == b.typ {
			return a.StrictlyEquals(b), nil
		}
		switch {
		case a.IsUndefined() || b.IsUndefined():
			return false, nil
		case a.IsNumber() && b.IsString():
			return a.AsFloat() == b.ToFloat(), nil
		case a.IsString() && b.IsNumber():
			return a.ToFloat() == b.AsFloat(), nil
		case a.IsBoolean():
			a = NumberValue(a.ToFloat())
		case b.IsBoolean():
			b = NumberValue(b.ToFloat())
		case a.IsObject() && b.IsPrimitive():
			prim, err := r.ToPrimitive(a, "default")
			if err != nil {
				return false, err
			}
			a = prim
		case b.IsObject() && a.IsPrimitive():
			prim, err := r.ToPrimitive(b, "default")
			if err != nil {
				return false, err
			}
			b = prim
		default:
			// two objects of different kinds
			return false, nil
		}
	}
}

// IndexKey renders a numeric index as a property key.
func IndexKey(i int) string {
	return strconv.Itoa(i)
}
