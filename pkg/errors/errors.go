package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// ScriptError is the interface implemented by all script errors, static and runtime.
type ScriptError interface {
	error
	Pos() Position
	Kind() string // "Syntax", "Compile", "Reference", "Type", "Range", "Internal", "Assertion"
	// Message returns the error message without position info.
	Message() string
	Unwrap() error
}

func formatError(kind string, pos Position, msg string) string {
	return fmt.Sprintf("%sError%s: %s", kind, pos.location(), msg)
}

// --- Static errors ---

// SyntaxError represents an error during lexing or parsing.
type SyntaxError struct {
	Position
	Msg   string
	Cause error
}

func (e *SyntaxError) Error() string   { return formatError("Syntax", e.Position, e.Msg) }
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// CompileError is raised while lowering the AST. Compilation stops at the
// first one and no unit is produced.
type CompileError struct {
	Position
	Msg   string
	Cause error
}

func (e *CompileError) Error() string   { return formatError("Compile", e.Position, e.Msg) }
func (e *CompileError) Pos() Position   { return e.Position }
func (e *CompileError) Kind() string    { return "Compile" }
func (e *CompileError) Message() string { return e.Msg }
func (e *CompileError) Unwrap() error   { return e.Cause }
func (e *CompileError) CausedBy(cause error) *CompileError {
	e.Cause = cause
	return e
}

// --- Runtime errors ---

// ReferenceError is raised when reading an identifier that no scope binds.
type ReferenceError struct {
	Position
	Name  string
	Cause error
}

func NewReferenceError(name string) *ReferenceError {
	return &ReferenceError{Name: name}
}

func (e *ReferenceError) Error() string   { return formatError("Reference", e.Position, e.Message()) }
func (e *ReferenceError) Pos() Position   { return e.Position }
func (e *ReferenceError) Kind() string    { return "Reference" }
func (e *ReferenceError) Message() string { return e.Name + " is not defined" }
func (e *ReferenceError) Unwrap() error   { return e.Cause }

// TypeError is raised when a value is used in a way its type does not allow:
// indexing or calling undefined, apply/call on a non-callable.
type TypeError struct {
	Position
	Name  string // property or identifier involved, if any
	Msg   string
	Cause error
}

func NewTypeError(name string, format string, args ...any) *TypeError {
	return &TypeError{Name: name, Msg: fmt.Sprintf(format, args...)}
}

func (e *TypeError) Error() string   { return formatError("Type", e.Position, e.Msg) }
func (e *TypeError) Pos() Position   { return e.Position }
func (e *TypeError) Kind() string    { return "Type" }
func (e *TypeError) Message() string { return e.Msg }
func (e *TypeError) Unwrap() error   { return e.Cause }

// RangeError is raised for out-of-range numeric arguments such as an
// invalid array length, and when the call depth limit is exceeded.
type RangeError struct {
	Position
	Msg   string
	Cause error
}

func NewRangeError(format string, args ...any) *RangeError {
	return &RangeError{Msg: fmt.Sprintf(format, args...)}
}

func (e *RangeError) Error() string   { return formatError("Range", e.Position, e.Msg) }
func (e *RangeError) Pos() Position   { return e.Position }
func (e *RangeError) Kind() string    { return "Range" }
func (e *RangeError) Message() string { return e.Msg }
func (e *RangeError) Unwrap() error   { return e.Cause }

// InternalError signals a broken contract between compiled code and the
// runtime, never a mistake in the script itself.
type InternalError struct {
	Position
	Msg   string
	Cause error
}

func NewInternalError(format string, args ...any) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

func (e *InternalError) Error() string   { return formatError("Internal", e.Position, e.Msg) }
func (e *InternalError) Pos() Position   { return e.Position }
func (e *InternalError) Kind() string    { return "Internal" }
func (e *InternalError) Message() string { return e.Msg }
func (e *InternalError) Unwrap() error   { return e.Cause }
func (e *InternalError) CausedBy(cause error) *InternalError {
	e.Cause = cause
	return e
}

// AssertionError is raised by a failing assert(...) statement.
type AssertionError struct {
	Position
	Expr string // source text of the asserted expression
}

func (e *AssertionError) Error() string   { return formatError("Assertion", e.Position, e.Message()) }
func (e *AssertionError) Pos() Position   { return e.Position }
func (e *AssertionError) Kind() string    { return "Assertion" }
func (e *AssertionError) Message() string { return "assertion failed: " + e.Expr }
func (e *AssertionError) Unwrap() error   { return nil }

// Locate attaches pos to err when err is a script error without a position.
// Errors that already carry a location keep the innermost one.
func Locate(err error, pos Position) error {
	if err == nil || pos.IsZero() {
		return err
	}
	var se ScriptError
	if !stderrors.As(err, &se) || !se.Pos().IsZero() {
		return err
	}
	switch e := se.(type) {
	case *SyntaxError:
		e.Position = pos
	case *CompileError:
		e.Position = pos
	case *ReferenceError:
		e.Position = pos
	case *TypeError:
		e.Position = pos
	case *RangeError:
		e.Position = pos
	case *InternalError:
		e.Position = pos
	case *AssertionError:
		e.Position = pos
	}
	return err
}

// AsScriptError unwraps err to a ScriptError, wrapping foreign errors into
// an InternalError so callers always get a kind and a message.
func AsScriptError(err error) ScriptError {
	if err == nil {
		return nil
	}
	var se ScriptError
	if stderrors.As(err, &se) {
		return se
	}
	return NewInternalError("%s", err.Error()).CausedBy(err)
}

// IsRuntime reports whether err happened while running compiled code.
func IsRuntime(err error) bool {
	se := AsScriptError(err)
	if se == nil {
		return false
	}
	switch se.Kind() {
	case "Syntax", "Compile":
		return false
	}
	return true
}

// --- Error Reporting ---

// DisplayErrors writes each error with its source line and a caret marker.
func DisplayErrors(w io.Writer, src string, errs []ScriptError) {
	if len(errs) == 0 {
		return
	}
	lines := strings.Split(src, "\n")

	for _, err := range errs {
		pos := err.Pos()
		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			fmt.Fprintf(w, "%sError: %s\n", err.Kind(), err.Message())
			continue
		}

		sourceLine := strings.TrimRight(lines[lineIdx], "\r\n\t ")
		fmt.Fprintf(w, "%sError at %d:%d: %s\n", err.Kind(), pos.Line, pos.Column, err.Message())
		fmt.Fprintf(w, "  %s\n", sourceLine)
		col := pos.Column - 1
		if col < 0 {
			col = 0
		}
		fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", col))
		fmt.Fprintln(w)
	}
}
