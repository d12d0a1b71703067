package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		err  ScriptError
		want string
	}{
		{&SyntaxError{Position: Position{Line: 1, Column: 3}, Msg: "unexpected token"}, "SyntaxError at 1:3: unexpected token"},
		{&CompileError{Msg: "duplicate label 'a'"}, "CompileError: duplicate label 'a'"},
		{NewReferenceError("foo"), "ReferenceError: foo is not defined"},
		{NewTypeError("x", "Cannot read property '%s' of undefined", "x"), "TypeError: Cannot read property 'x' of undefined"},
		{NewRangeError("Invalid array length"), "RangeError: Invalid array length"},
		{NewInternalError("unknown value tag %d", 42), "InternalError: unknown value tag 42"},
		{&AssertionError{Expr: "i == 2"}, "AssertionError: assertion failed: i == 2"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestLocateKeepsInnermostPosition(t *testing.T) {
	err := NewReferenceError("x")
	Locate(err, Position{Line: 4, Column: 2})
	Locate(err, Position{Line: 9, Column: 1})
	if err.Line != 4 || err.Column != 2 {
		t.Errorf("position = %d:%d, want 4:2", err.Line, err.Column)
	}

	wrapped := fmt.Errorf("running: %w", NewTypeError("f", "f is not a function"))
	Locate(wrapped, Position{Line: 2, Column: 5})
	var te *TypeError
	if !stderrors.As(wrapped, &te) || te.Line != 2 {
		t.Errorf("expected wrapped TypeError to be located, got %v", wrapped)
	}
}

func TestAsScriptError(t *testing.T) {
	se := AsScriptError(fmt.Errorf("boom"))
	if se.Kind() != "Internal" || se.Message() != "boom" {
		t.Errorf("got %s %q", se.Kind(), se.Message())
	}
	if IsRuntime(&CompileError{Msg: "x"}) {
		t.Errorf("CompileError is not a runtime error")
	}
	if !IsRuntime(NewRangeError("x")) {
		t.Errorf("RangeError is a runtime error")
	}
}

func TestDisplayErrors(t *testing.T) {
	var b strings.Builder
	src := "var a = 1;\nb = ;\n"
	DisplayErrors(&b, src, []ScriptError{&SyntaxError{Position: Position{Line: 2, Column: 5}, Msg: "unexpected ;"}})
	want := "SyntaxError at 2:5: unexpected ;\n  b = ;\n      ^\n\n"
	if b.String() != want {
		t.Errorf("got %q, want %q", b.String(), want)
	}
}
