package compiler

import (
	"fmt"
	"strings"

	"bemjs/pkg/errors"
	"bemjs/pkg/lexer"
	"bemjs/pkg/parser"
	"bemjs/pkg/source"
	"bemjs/pkg/vm"
)

// preamble is the first line of every listing.
const preamble = "// runtime: bemjs/pkg/vm (scope chain, operators, loop helpers) + bemjs/pkg/builtins"

// Options controls compilation.
type Options struct {
	// Assertions compiles statement-level assert(expr) calls into checks.
	// When off such statements are dropped.
	Assertions bool
}

// frame is what a compiled closure needs besides its scope: the realm it
// runs in and the receiver of the enclosing function.
type frame struct {
	realm *vm.Realm
	this  vm.Value
}

type expression func(f *frame, s *vm.Scope) (vm.Value, error)

type statement func(f *frame, s *vm.Scope) (vm.Completion, error)

// expr is a compiled expression together with its rendering in the listing.
type expr struct {
	eval expression
	text string
}

// labelEntry is a label active at the current point of compilation.
type labelEntry struct {
	name string
	loop bool
}

// functionState tracks what break, continue and labels may refer to inside
// one function body. Labels never cross function boundaries.
type functionState struct {
	labels   []labelEntry
	loops    int
	switches int
}

func (fs *functionState) findLabel(name string) (labelEntry, bool) {
	for i := len(fs.labels) - 1; i >= 0; i-- {
		if fs.labels[i].name == name {
			return fs.labels[i], true
		}
	}
	return labelEntry{}, false
}

// Compiler transforms a parsed program into a Unit of Go closures.
// A Compiler may be reused for several programs, one at a time.
type Compiler struct {
	opts Options
	src  *source.SourceFile

	unit *Unit
	fn   *functionState
	code *writer
}

// New creates a compiler.
func New(opts Options) *Compiler {
	return &Compiler{opts: opts}
}

// Compile translates program. It stops at the first error, which is
// always a *errors.CompileError, and returns no unit in that case.
func (c *Compiler) Compile(program *parser.Program) (*Unit, error) {
	c.src = program.Source
	c.unit = &Unit{}
	c.fn = &functionState{}
	c.code = &writer{}
	defer func() {
		c.unit, c.fn, c.code = nil, nil, nil
	}()

	unit := c.unit
	for _, stmt := range program.Statements {
		compiled, err := c.compileStatement(stmt)
		if err != nil {
			return nil, err
		}
		if compiled == nil {
			continue
		}
		_, isExpr := stmt.(*parser.ExpressionStatement)
		unit.main = append(unit.main, topLevel{run: compiled, value: isExpr})
	}

	var out strings.Builder
	out.WriteString(preamble)
	out.WriteString("\n")
	for _, fn := range unit.Functions {
		out.WriteString("\n")
		out.WriteString(fn.listing)
	}
	out.WriteString("\n")
	out.WriteString(c.code.String())
	unit.listing = out.String()
	return unit, nil
}

// pos converts a token location to an error position in the program source.
func (c *Compiler) pos(node parser.Node) errors.Position {
	return c.tokenPos(node.StartToken())
}

func (c *Compiler) tokenPos(tok lexer.Token) errors.Position {
	return errors.Position{
		Line:     tok.Line,
		Column:   tok.Column,
		StartPos: tok.StartPos,
		EndPos:   tok.EndPos,
		Source:   c.src,
	}
}

func (c *Compiler) errorf(node parser.Node, format string, args ...any) *errors.CompileError {
	return c.errorAt(node.StartToken(), format, args...)
}

func (c *Compiler) errorAt(tok lexer.Token, format string, args ...any) *errors.CompileError {
	return &errors.CompileError{Position: c.tokenPos(tok), Msg: fmt.Sprintf(format, args...)}
}

// Unit is a compiled program: its top-level statements and the function
// bodies they create, numbered f0, f1, ... in the order they finished
// compiling. A unit holds no runtime state and may be run any number of
// times, in any number of realms.
type Unit struct {
	Functions []*Function

	main    []topLevel
	listing string
}

type topLevel struct {
	run statement
	// value marks expression statements, whose value becomes the result
	// of the unit.
	value bool
}

// Function is one compiled function body.
type Function struct {
	// ID is the listing name, f0, f1, ...
	ID string
	// Name is the declared name, empty for anonymous functions.
	Name   string
	Params []string
	Body   vm.Body

	listing string
}

// Run executes the unit against the realm's global scope. The result is
// the value of a top-level return, otherwise the value of the last
// expression statement, otherwise undefined.
func (u *Unit) Run(r *vm.Realm) (vm.Value, error) {
	return u.RunIn(r, r.Global)
}

// RunIn executes the unit with scope as its top-level scope.
func (u *Unit) RunIn(r *vm.Realm, scope *vm.Scope) (vm.Value, error) {
	f := &frame{realm: r, this: vm.Undefined}
	result := vm.Undefined
	for _, stmt := range u.main {
		c, err := stmt.run(f, scope)
		if err != nil {
			return vm.Undefined, err
		}
		if c.Kind == vm.CompletionReturn {
			return c.Value, nil
		}
		if stmt.value {
			result = c.Value
		}
	}
	return result, nil
}

// Listing renders the lowered program: the preamble, every function body
// and then the top-level statements.
func (u *Unit) Listing() string {
	return u.listing
}

// writer accumulates indented listing lines.
type writer struct {
	lines  []string
	indent int
}

func (w *writer) line(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	w.lines = append(w.lines, strings.Repeat("    ", w.indent)+text)
}

func (w *writer) open(format string, args ...any) {
	w.line(format, args...)
	w.indent++
}

func (w *writer) close(text string) {
	w.indent--
	w.line("%s", text)
}

func (w *writer) String() string {
	if len(w.lines) == 0 {
		return ""
	}
	return strings.Join(w.lines, "\n") + "\n"
}
