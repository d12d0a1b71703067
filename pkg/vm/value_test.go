package vm

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// Helper function to check for panics using standard library
func expectPanic(t *testing.T, fn func(), containsMsg string) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("Expected a panic, but function did not panic")
			return
		}
		panicMsg := fmt.Sprintf("%v", r)
		if containsMsg != "" && !strings.Contains(panicMsg, containsMsg) {
			t.Errorf("Panic message mismatch.\nExpected to contain: %q\nActual: %q", containsMsg, panicMsg)
		}
	}()
	fn()
}

// Helper to compare floats, treating two NaNs as equal
func floatsEqual(t *testing.T, expected, actual float64, msgAndArgs ...interface{}) {
	t.Helper()
	if math.IsNaN(expected) {
		if !math.IsNaN(actual) {
			t.Errorf("Expected NaN, got %v. %s", actual, fmt.Sprint(msgAndArgs...))
		}
		return
	}
	if math.IsNaN(actual) {
		t.Errorf("Expected %v, got NaN. %s", expected, fmt.Sprint(msgAndArgs...))
		return
	}
	if expected != actual {
		t.Errorf("Float mismatch. Expected %v, got %v. %s", expected, actual, fmt.Sprint(msgAndArgs...))
	}
}

func TestNumberToString(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-42, "-42"},
		{1.5, "1.5"},
		{0.30000000000000004, "0.30000000000000004"},
		{1e21, "1e+21"},
		{123456789012345680000, "123456789012345680000"},
		{1e-7, "1e-7"},
		{0.000001, "0.000001"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		if got := NumberToString(tt.in); got != tt.want {
			t.Errorf("NumberToString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want float64
	}{
		{"undefined", Undefined, math.NaN()},
		{"true", True, 1},
		{"false", False, 0},
		{"empty string", NewString(""), 0},
		{"blank string", NewString("  \t"), 0},
		{"decimal", NewString(" 12.5 "), 12.5},
		{"exponent", NewString("1e3"), 1000},
		{"hex", NewString("0x1F"), 31},
		{"binary", NewString("0b101"), 5},
		{"octal", NewString("0o17"), 15},
		{"infinity", NewString("-Infinity"), math.Inf(-1)},
		{"lowercase inf", NewString("inf"), math.NaN()},
		{"garbage", NewString("12px"), math.NaN()},
		{"bad hex", NewString("0xZZ"), math.NaN()},
		{"object", NewObject(nil).Value(), math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			floatsEqual(t, tt.want, tt.in.ToFloat())
		})
	}
}

func TestTruthiness(t *testing.T) {
	falsey := []Value{Undefined, False, NumberValue(0), NumberValue(math.Copysign(0, -1)), NaN, NewString("")}
	for _, v := range falsey {
		if !v.IsFalsey() {
			t.Errorf("%s should be falsey", v.Inspect())
		}
	}
	r := NewRealm()
	truthy := []Value{True, NumberValue(-1), NewString("0"), NewString("false"), r.NewPlainObject(), r.NewArray(nil)}
	for _, v := range truthy {
		if !v.IsTruthy() {
			t.Errorf("%s should be truthy", v.Inspect())
		}
	}
}

func TestStrictlyEquals(t *testing.T) {
	r := NewRealm()
	obj := r.NewPlainObject()
	tests := []struct {
		a, b Value
		want bool
	}{
		{Undefined, Undefined, true},
		{NumberValue(1), NumberValue(1), true},
		{NaN, NaN, false},
		{NumberValue(0), NumberValue(math.Copysign(0, -1)), true},
		{NewString("a"), NewString("a"), true},
		{NewString("1"), NumberValue(1), false},
		{True, True, true},
		{True, NumberValue(1), false},
		{obj, obj, true},
		{obj, r.NewPlainObject(), false},
	}
	for i, tt := range tests {
		if got := tt.a.StrictlyEquals(tt.b); got != tt.want {
			t.Errorf("case %d: %s === %s = %v, want %v", i, tt.a.Inspect(), tt.b.Inspect(), got, tt.want)
		}
	}
}

func TestTypeOf(t *testing.T) {
	r := NewRealm()
	re, err := r.NewRegExp("a", "")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		in   Value
		want string
	}{
		{Undefined, "undefined"},
		{NumberValue(3), "number"},
		{NewString("x"), "string"},
		{False, "boolean"},
		{r.NewPlainObject(), "object"},
		{r.NewArray(nil), "object"},
		{re, "object"},
		{r.NewNativeFunction("f", 0, nil), "function"},
		{r.NewFunction("g", nil, r.Global, nil), "function"},
	}
	for _, tt := range tests {
		if got := TypeOf(tt.in); got != tt.want {
			t.Errorf("typeof %s = %q, want %q", tt.in.Inspect(), got, tt.want)
		}
	}
}

func TestValueToString(t *testing.T) {
	r := NewRealm()
	arr := r.NewArray([]Value{NumberValue(1), Undefined, NewString("x")})
	if got := arr.ToString(); got != "1,,x" {
		t.Errorf("array ToString = %q", got)
	}
	if got := r.NewPlainObject().ToString(); got != "[object Object]" {
		t.Errorf("object ToString = %q", got)
	}
	if got := r.NewNativeFunction("max", 2, nil).ToString(); got != "function max() { [native code] }" {
		t.Errorf("native ToString = %q", got)
	}
}

func TestAccessorsPanicOnWrongType(t *testing.T) {
	expectPanic(t, func() { Undefined.AsFloat() }, "not a number")
	expectPanic(t, func() { NumberValue(1).AsString() }, "not a string")
	expectPanic(t, func() { NewString("").AsArray() }, "not an array")
	if NumberValue(1).AsObject() != nil {
		t.Errorf("AsObject on a primitive should be nil")
	}
}

func TestStringIndexing(t *testing.T) {
	if n := stringLength("héllo"); n != 5 {
		t.Errorf("stringLength = %d, want 5", n)
	}
	if ch, ok := charAt("héllo", 1); !ok || ch != "é" {
		t.Errorf("charAt(1) = %q, %v", ch, ok)
	}
	if _, ok := charAt("abc", 3); ok {
		t.Errorf("charAt past the end should fail")
	}
	if _, ok := charAt("abc", -1); ok {
		t.Errorf("charAt(-1) should fail")
	}
}

func TestArrayIndex(t *testing.T) {
	tests := []struct {
		key string
		idx int
		ok  bool
	}{
		{"0", 0, true},
		{"17", 17, true},
		{"", 0, false},
		{"01", 0, false},
		{"-1", 0, false},
		{"1.5", 0, false},
		{"length", 0, false},
		{"4294967295", 0, false},
		{"4294967294", 4294967294, true},
	}
	for _, tt := range tests {
		idx, ok := ArrayIndex(tt.key)
		if ok != tt.ok || (ok && idx != tt.idx) {
			t.Errorf("ArrayIndex(%q) = %d, %v; want %d, %v", tt.key, idx, ok, tt.idx, tt.ok)
		}
	}
}
