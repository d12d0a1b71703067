package vm

import (
	"fmt"
	"strings"
	"unsafe"
)

const maxInspectDepth = 16

// Inspect renders a value the way console.log shows it. Strings are raw at
// the top level and quoted inside containers.
func (v Value) Inspect() string {
	return v.inspect(false, nil)
}

// InspectNested is used for nested contexts where strings should be quoted
func (v Value) InspectNested() string {
	return v.inspect(true, nil)
}

func (v Value) inspect(nested bool, seen []unsafe.Pointer) string {
	switch v.typ {
	case TypeString:
		if nested {
			return fmt.Sprintf("%q", v.AsString())
		}
		return v.AsString()
	case TypeUndefined, TypeNumber, TypeBoolean:
		return v.ToString()
	case TypeFunction, TypeNativeFunction:
		if name := FunctionName(v); name != "" {
			return fmt.Sprintf("[Function: %s]", name)
		}
		return "[Function (anonymous)]"
	case TypeRegExp:
		return v.AsRegExp().String()
	}

	for _, p := range seen {
		if p == v.obj {
			return "[Circular]"
		}
	}
	if len(seen) >= maxInspectDepth {
		return "[...]"
	}
	seen = append(seen, v.obj)

	var b strings.Builder
	switch v.typ {
	case TypeArray:
		arr := v.AsArray()
		named := arr.OwnKeys()
		if arr.Length() == 0 && len(named) == 0 {
			return "[]"
		}
		b.WriteString("[")
		for i, el := range arr.elements {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(el.inspect(true, seen))
		}
		for i, k := range named {
			if i > 0 || arr.Length() > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k + ": ")
			val, _ := arr.GetOwn(k)
			b.WriteString(val.inspect(true, seen))
		}
		b.WriteString("]")
	case TypeObject:
		obj := v.AsObject()
		keys := obj.OwnKeys()
		if len(keys) == 0 {
			return "{}"
		}
		b.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k + ": ")
			val, _ := obj.GetOwn(k)
			b.WriteString(val.inspect(true, seen))
		}
		b.WriteString("}")
	default:
		return fmt.Sprintf("<unknown type %d>", v.typ)
	}
	return b.String()
}
