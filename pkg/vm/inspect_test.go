package vm

import (
	"encoding/json"
	"testing"
)

func TestInspect(t *testing.T) {
	r := NewRealm()
	obj := r.NewPlainObject()
	r.Set(obj, "a", NumberValue(1))
	r.Set(obj, "b", NewString("x"))
	r.Set(obj, "list", r.NewArray([]Value{True, Undefined}))

	self := r.NewPlainObject()
	r.Set(self, "me", self)

	re, _ := r.NewRegExp("a+", "gi")

	tests := []struct {
		in   Value
		want string
	}{
		{NewString("plain"), "plain"},
		{obj, `{a: 1, b: "x", list: [true, undefined]}`},
		{r.NewPlainObject(), "{}"},
		{r.NewArray(nil), "[]"},
		{self, "{me: [Circular]}"},
		{re, "/a+/gi"},
		{r.NewNativeFunction("log", 0, nil), "[Function: log]"},
		{r.NewFunction("", nil, r.Global, nil), "[Function (anonymous)]"},
	}
	for _, tt := range tests {
		if got := tt.in.Inspect(); got != tt.want {
			t.Errorf("Inspect = %s, want %s", got, tt.want)
		}
	}
}

func TestJSONStringify(t *testing.T) {
	r := NewRealm()
	obj := r.NewPlainObject()
	r.Set(obj, "n", NumberValue(1.5))
	r.Set(obj, "s", NewString("<a & b>"))
	r.Set(obj, "skip", Undefined)
	r.Set(obj, "fn", r.NewNativeFunction("f", 0, nil))
	r.Set(obj, "list", r.NewArray([]Value{Undefined, NaN, False}))

	got, ok, err := r.JSONStringify(obj, "")
	if err != nil || !ok {
		t.Fatalf("JSONStringify: %v, %v", ok, err)
	}
	want := `{"n":1.5,"s":"<a & b>","list":[null,null,false]}`
	if got != want {
		t.Errorf("JSONStringify = %s, want %s", got, want)
	}

	pretty, _, _ := r.JSONStringify(r.NewArray([]Value{NumberValue(1)}), "  ")
	if pretty != "[\n  1\n]" {
		t.Errorf("indented = %q", pretty)
	}

	if _, ok, _ := r.JSONStringify(Undefined, ""); ok {
		t.Errorf("undefined has no JSON form")
	}

	cyclic := r.NewPlainObject()
	r.Set(cyclic, "self", cyclic)
	if _, _, err := r.JSONStringify(cyclic, ""); err == nil {
		t.Errorf("circular structure should fail")
	}
}

func TestValueMarshalJSON(t *testing.T) {
	r := NewRealm()
	doc := map[string]Value{"v": r.NewArray([]Value{NumberValue(1), NewString("two")})}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"v":[1,"two"]}` {
		t.Errorf("json.Marshal = %s", b)
	}
}
