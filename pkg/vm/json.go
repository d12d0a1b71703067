package vm

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"unsafe"

	"bemjs/pkg/errors"
)

// MarshalJSON implements json.Marshaler for vm.Value so host code can embed
// script values in Go JSON documents.
func (v Value) MarshalJSON() ([]byte, error) {
	s, ok, err := stringifyJSON(v, "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return []byte("null"), nil
	}
	return []byte(s), nil
}

// JSONStringify implements JSON.stringify(value, replacer, indent). ok is
// false when value has no JSON form (undefined, functions); the result is
// then undefined.
func (r *Realm) JSONStringify(v Value, indent string) (string, bool, error) {
	return stringifyJSON(v, indent)
}

func stringifyJSON(v Value, indent string) (string, bool, error) {
	enc := &jsonEncoder{}
	ok, err := enc.encode(v)
	if err != nil || !ok {
		return "", ok, err
	}
	out := enc.buf.Bytes()
	if indent != "" {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, out, "", indent); err != nil {
			return "", false, errors.NewInternalError("JSON indent: %v", err).CausedBy(err)
		}
		out = pretty.Bytes()
	}
	return string(out), true, nil
}

type jsonEncoder struct {
	buf   bytes.Buffer
	stack []unsafe.Pointer
}

// encode writes v and reports whether it produced output. Undefined and
// functions produce none: object members holding them are skipped and
// array elements become null.
func (e *jsonEncoder) encode(v Value) (bool, error) {
	switch v.typ {
	case TypeUndefined, TypeFunction, TypeNativeFunction:
		return false, nil
	case TypeBoolean, TypeNumber:
		if v.IsNumber() {
			f := v.AsFloat()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				e.buf.WriteString("null")
				return true, nil
			}
		}
		e.buf.WriteString(v.ToString())
		return true, nil
	case TypeString:
		e.writeString(v.AsString())
		return true, nil
	case TypeRegExp:
		e.buf.WriteString("{}")
		return true, nil
	}

	for _, p := range e.stack {
		if p == v.obj {
			return false, errors.NewTypeError("", "Converting circular structure to JSON")
		}
	}
	e.stack = append(e.stack, v.obj)
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()

	if v.IsArray() {
		e.buf.WriteByte('[')
		for i, el := range v.AsArray().elements {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			ok, err := e.encode(el)
			if err != nil {
				return false, err
			}
			if !ok {
				e.buf.WriteString("null")
			}
		}
		e.buf.WriteByte(']')
		return true, nil
	}

	obj := v.AsObject()
	e.buf.WriteByte('{')
	first := true
	for _, k := range obj.OwnKeys() {
		val, _ := obj.GetOwn(k)
		mark := e.buf.Len()
		if !first {
			e.buf.WriteByte(',')
		}
		e.writeString(k)
		e.buf.WriteByte(':')
		ok, err := e.encode(val)
		if err != nil {
			return false, err
		}
		if !ok {
			e.buf.Truncate(mark)
			continue
		}
		first = false
	}
	e.buf.WriteByte('}')
	return true, nil
}

// writeString quotes s with encoding/json, leaving <, > and & unescaped the
// way JSON.stringify does.
func (e *jsonEncoder) writeString(s string) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	e.buf.WriteString(strings.TrimSuffix(b.String(), "\n"))
}
