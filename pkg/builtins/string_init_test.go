package builtins

import (
	"testing"

	"github.com/nalgeon/be"

	"bemjs/pkg/vm"
)

func regexp(t *testing.T, r *vm.Realm, pattern, flags string) vm.Value {
	t.Helper()
	re, err := r.NewRegExp(pattern, flags)
	be.Err(t, err, nil)
	return re
}

func TestStringMethods(t *testing.T) {
	r := newTestRealm(t)
	tests := []struct {
		recv   string
		method string
		args   []vm.Value
		want   string
	}{
		{"hello", "charAt", list(num(1)), "e"},
		{"hello", "charAt", list(num(9)), ""},
		{"héllo", "charCodeAt", list(num(1)), "233"},
		{"hello", "substring", list(num(1), num(3)), "el"},
		{"hello", "substring", list(num(3), num(1)), "el"},
		{"hello", "substring", list(num(-2)), "hello"},
		{"hello", "substring", list(num(2), num(99)), "llo"},
		{"héllo", "substring", list(num(1), num(2)), "é"},
		{"banana", "indexOf", list(str("an")), "1"},
		{"banana", "indexOf", list(str("an"), num(2)), "3"},
		{"banana", "indexOf", list(str("x")), "-1"},
		{"straße", "toUpperCase", nil, "STRASSE"},
		{"ÀB", "toLowerCase", nil, "àb"},
		{"e\u0301", "normalize", nil, "\u00e9"},
		{"\u00e9", "normalize", list(str("NFD")), "e\u0301"},
		{"text", "toString", nil, "text"},
	}
	for _, tt := range tests {
		got, err := invoke(t, r, str(tt.recv), tt.method, tt.args...)
		be.Err(t, err, nil)
		be.Equal(t, got.ToString(), tt.want)
	}

	_, err := invoke(t, r, str("x"), "normalize", str("NFX"))
	be.Err(t, err, "normalization form")
}

func TestStringSplit(t *testing.T) {
	r := newTestRealm(t)
	tests := []struct {
		recv string
		args []vm.Value
		want string
	}{
		{"a,b,,c", list(str(",")), `["a", "b", "", "c"]`},
		{"abc", list(str("")), `["a", "b", "c"]`},
		{"abc", nil, `["abc"]`},
		{"", list(str(",")), `[""]`},
		{"a,b,c", list(str(","), num(2)), `["a", "b"]`},
		{"a1b22c", list(regexp(t, r, `\d+`, "")), `["a", "b", "c"]`},
		{"a1b", list(regexp(t, r, `(\d)`, "")), `["a", "1", "b"]`},
		{"abc", list(regexp(t, r, "", "")), `["a", "b", "c"]`},
	}
	for _, tt := range tests {
		got, err := invoke(t, r, str(tt.recv), "split", tt.args...)
		be.Err(t, err, nil)
		be.Equal(t, got.Inspect(), tt.want)
	}
}

func TestStringReplace(t *testing.T) {
	r := newTestRealm(t)
	upper := r.NewNativeFunction("upper", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		return invoke(t, r, args[0], "toUpperCase")
	})
	offsets := r.NewNativeFunction("offsets", 3, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		// match, group, offset, input
		return str(args[1].AsString() + "@" + args[2].ToString()), nil
	})

	tests := []struct {
		recv    string
		pattern vm.Value
		repl    vm.Value
		want    string
	}{
		{"aaa", str("a"), str("b"), "baa"},
		{"a.b.c", str("."), str("-"), "a-b.c"},
		{"aaa", regexp(t, r, "a", "g"), str("b"), "bbb"},
		{"aAa", regexp(t, r, "a", "gi"), str("_"), "___"},
		{"john smith", regexp(t, r, `(\w+)\s(\w+)`, ""), str("$2, $1"), "smith, john"},
		{"price", str("price"), str("$$5 ($&)"), "$5 (price)"},
		{"abc", str("b"), str("[$`|$']"), "a[a|c]c"},
		{"one two", regexp(t, r, `\w+`, "g"), upper, "ONE TWO"},
		{"x1y2", regexp(t, r, `(\d)`, "g"), offsets, "x1@1y2@3"},
		{"no match", regexp(t, r, "z", "g"), str("!"), "no match"},
		{"héllo", str("l"), str("L"), "héLlo"},
	}
	for _, tt := range tests {
		got, err := invoke(t, r, str(tt.recv), "replace", tt.pattern, tt.repl)
		be.Err(t, err, nil)
		be.Equal(t, got.AsString(), tt.want)
	}
}

func TestStringConstructor(t *testing.T) {
	r := newTestRealm(t)
	ctor := global(t, r, "String")

	got, err := r.Call(ctor, vm.Undefined, list(num(12.5)))
	be.Err(t, err, nil)
	be.Equal(t, got.AsString(), "12.5")

	got, err = r.New(ctor, list(r.NewArray(list(num(1), num(2)))))
	be.Err(t, err, nil)
	be.Equal(t, got.AsString(), "1,2")

	got, _ = r.Call(ctor, vm.Undefined, nil)
	be.Equal(t, got.AsString(), "")
}
