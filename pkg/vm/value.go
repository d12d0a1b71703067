package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
	"unsafe"
)

// cleanExponentialFormat removes leading zeros from exponent to match JS format
// e.g., "1e-07" -> "1e-7", "1e+25" -> "1e+25"
func cleanExponentialFormat(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 'e' || s[i] == 'E' {
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				sign := s[i+1]
				j := i + 2
				for j < len(s) && s[j] == '0' {
					j++
				}
				if j >= len(s) {
					return s[:i+2] + "0"
				}
				return s[:i+1] + string(sign) + s[j:]
			}
			break
		}
	}
	return s
}

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNumber
	TypeString
	TypeBoolean

	TypeObject
	TypeArray
	TypeFunction
	TypeNativeFunction
	TypeRegExp
)

// String returns a human-readable string representation of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeFunction:
		return "function"
	case TypeNativeFunction:
		return "native function"
	case TypeRegExp:
		return "regexp"
	default:
		return fmt.Sprintf("<unknown type %d>", uint8(vt))
	}
}

// Value is the tagged representation of every runtime value. Numbers and
// booleans live in payload; strings and objects in obj.
type Value struct {
	typ     ValueType
	payload uint64
	obj     unsafe.Pointer
}

type StringObject struct {
	value string
}

var (
	Undefined = Value{typ: TypeUndefined}
	True      = Value{typ: TypeBoolean, payload: 1}
	False     = Value{typ: TypeBoolean, payload: 0}
	NaN       = Value{typ: TypeNumber, payload: math.Float64bits(math.NaN())}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeNumber, payload: math.Float64bits(value)}
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, obj: unsafe.Pointer(&StringObject{value: value})}
}

func (o *Object) Value() Value {
	return Value{typ: TypeObject, obj: unsafe.Pointer(o)}
}

func (a *ArrayObject) Value() Value {
	return Value{typ: TypeArray, obj: unsafe.Pointer(a)}
}

func (f *FunctionObject) Value() Value {
	return Value{typ: TypeFunction, obj: unsafe.Pointer(f)}
}

func (f *NativeFunctionObject) Value() Value {
	return Value{typ: TypeNativeFunction, obj: unsafe.Pointer(f)}
}

func (re *RegExpObject) Value() Value {
	return Value{typ: TypeRegExp, obj: unsafe.Pointer(re)}
}

// --- Type predicates ---

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsArray() bool     { return v.typ == TypeArray }
func (v Value) IsRegExp() bool    { return v.typ == TypeRegExp }

// IsObject reports whether v is any object-like value: plain objects,
// arrays, functions and regular expressions.
func (v Value) IsObject() bool {
	return v.typ >= TypeObject
}

// IsPrimitive is the complement of IsObject.
func (v Value) IsPrimitive() bool {
	return v.typ < TypeObject
}

func (v Value) IsCallable() bool {
	return v.typ == TypeFunction || v.typ == TypeNativeFunction
}

// --- Accessors ---

func (v Value) AsFloat() float64 {
	if v.typ != TypeNumber {
		panic("value is not a number")
	}
	return math.Float64frombits(v.payload)
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.payload != 0
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return (*StringObject)(v.obj).value
}

func (v Value) AsArray() *ArrayObject {
	if v.typ != TypeArray {
		panic("value is not an array")
	}
	return (*ArrayObject)(v.obj)
}

func (v Value) AsFunction() *FunctionObject {
	if v.typ != TypeFunction {
		panic("value is not a function")
	}
	return (*FunctionObject)(v.obj)
}

func (v Value) AsNativeFunction() *NativeFunctionObject {
	if v.typ != TypeNativeFunction {
		panic("value is not a native function")
	}
	return (*NativeFunctionObject)(v.obj)
}

func (v Value) AsRegExp() *RegExpObject {
	if v.typ != TypeRegExp {
		panic("value is not a regexp")
	}
	return (*RegExpObject)(v.obj)
}

// AsObject returns the property storage shared by every object-like value,
// or nil for primitives.
func (v Value) AsObject() *Object {
	switch v.typ {
	case TypeObject:
		return (*Object)(v.obj)
	case TypeArray:
		return &(*ArrayObject)(v.obj).Object
	case TypeFunction:
		return &(*FunctionObject)(v.obj).Object
	case TypeNativeFunction:
		return &(*NativeFunctionObject)(v.obj).Object
	case TypeRegExp:
		return &(*RegExpObject)(v.obj).Object
	}
	return nil
}

// --- Conversions that never run script code ---

// NumberToString formats a number the way JavaScript's Number::toString does.
func NumberToString(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	// -0 prints as 0
	if f == 0 {
		return "0"
	}
	absF := math.Abs(f)
	if absF < 1e-6 || absF >= 1e21 {
		return cleanExponentialFormat(strconv.FormatFloat(f, 'e', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToString converts a primitive to its string form. Objects use their
// default conversions without consulting user-defined toString methods; the
// realm's ToString does that.
func (v Value) ToString() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNumber:
		return NumberToString(v.AsFloat())
	case TypeString:
		return v.AsString()
	case TypeBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case TypeObject:
		return "[object Object]"
	case TypeArray:
		arr := v.AsArray()
		parts := make([]string, len(arr.elements))
		for i, el := range arr.elements {
			if !el.IsUndefined() {
				parts[i] = el.ToString()
			}
		}
		return strings.Join(parts, ",")
	case TypeFunction:
		return fmt.Sprintf("function %s() { [compiled code] }", v.AsFunction().Name)
	case TypeNativeFunction:
		return fmt.Sprintf("function %s() { [native code] }", v.AsNativeFunction().Name)
	case TypeRegExp:
		return v.AsRegExp().String()
	}
	return fmt.Sprintf("<unknown type %d>", v.typ)
}

// parseStringToNumber converts a string to a number following ECMAScript rules
// Handles hex (0x), octal (0o), binary (0b), and decimal (including scientific notation)
func parseStringToNumber(s string) float64 {
	str := strings.TrimSpace(s)
	if str == "" {
		return 0
	}

	if len(str) > 2 && str[0] == '0' {
		base := 0
		switch str[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if i, err := strconv.ParseUint(str[2:], base, 64); err == nil {
				return float64(i)
			}
			return math.NaN()
		}
	}

	// "Infinity" is case-sensitive, unlike Go's ParseFloat
	switch str {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(str)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.ContainsAny(str, "_xXpP") {
		return math.NaN()
	}

	if f, err := strconv.ParseFloat(str, 64); err == nil {
		return f
	}
	return math.NaN()
}

// ToFloat converts a primitive to a number. Objects yield NaN; the realm's
// ToNumber runs ToPrimitive on them first.
func (v Value) ToFloat() float64 {
	switch v.typ {
	case TypeNumber:
		return v.AsFloat()
	case TypeUndefined:
		return math.NaN()
	case TypeBoolean:
		if v.AsBoolean() {
			return 1
		}
		return 0
	case TypeString:
		return parseStringToNumber(v.AsString())
	default:
		return math.NaN()
	}
}

// IsFalsey follows JavaScript truthiness: undefined, false, 0, -0, NaN and
// "" are false.
func (v Value) IsFalsey() bool {
	switch v.typ {
	case TypeUndefined:
		return true
	case TypeBoolean:
		return !v.AsBoolean()
	case TypeNumber:
		f := v.AsFloat()
		return f == 0 || math.IsNaN(f)
	case TypeString:
		return v.AsString() == ""
	default:
		return false
	}
}

func (v Value) IsTruthy() bool {
	return !v.IsFalsey()
}

// StrictlyEquals implements ===. NaN is never equal to itself; objects
// compare by identity.
func (v Value) StrictlyEquals(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeUndefined:
		return true
	case TypeNumber:
		return v.AsFloat() == other.AsFloat()
	case TypeString:
		return v.AsString() == other.AsString()
	case TypeBoolean:
		return v.payload == other.payload
	default:
		return v.obj == other.obj
	}
}

// TypeOf returns the result of the typeof operator.
func TypeOf(v Value) string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	case TypeFunction, TypeNativeFunction:
		return "function"
	default:
		return "object"
	}
}

// stringLength counts code points.
func stringLength(s string) int {
	return utf8.RuneCountInString(s)
}

// charAt returns the code point at index i as a string.
func charAt(s string, i int) (string, bool) {
	if i < 0 {
		return "", false
	}
	for _, r := range s {
		if i == 0 {
			return string(r), true
		}
		i--
	}
	return "", false
}
