package compiler

import (
	"slices"
	"strconv"
	"strings"

	"bemjs/pkg/errors"
	"bemjs/pkg/parser"
	"bemjs/pkg/vm"
)

// compileStatement compiles one statement and writes its listing. A nil
// statement with a nil error means the statement compiles to nothing.
func (c *Compiler) compileStatement(node parser.Statement) (statement, error) {
	switch node := node.(type) {
	case *parser.ExpressionStatement:
		return c.compileExpressionStatement(node)
	case *parser.VarStatement:
		return c.compileVarStatement(node)
	case *parser.FunctionDeclaration:
		return c.compileFunctionDeclaration(node)
	case *parser.ReturnStatement:
		return c.compileReturnStatement(node)
	case *parser.EmptyStatement:
		return nil, nil
	case *parser.BlockStatement:
		c.code.open("{")
		block, err := c.compileStatements(node.Statements)
		if err != nil {
			return nil, err
		}
		c.code.close("}")
		return block, nil
	case *parser.IfStatement:
		return c.compileIfStatement(node)
	case *parser.WhileStatement, *parser.ForStatement, *parser.ForInStatement:
		return c.compileLoop(node, nil)
	case *parser.LabeledStatement:
		return c.compileLabeledStatement(node)
	case *parser.BreakStatement:
		return c.compileBreakStatement(node)
	case *parser.ContinueStatement:
		return c.compileContinueStatement(node)
	case *parser.SwitchStatement:
		return c.compileSwitchStatement(node)
	}
	return nil, c.errorf(node, "unsupported statement %s", node.String())
}

// compileStatements compiles a statement list into one statement that
// runs them in order and stops at the first abrupt completion.
func (c *Compiler) compileStatements(nodes []parser.Statement) (statement, error) {
	stmts := make([]statement, 0, len(nodes))
	for _, node := range nodes {
		stmt, err := c.compileStatement(node)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return func(f *frame, s *vm.Scope) (vm.Completion, error) {
		for _, stmt := range stmts {
			comp, err := stmt(f, s)
			if err != nil || comp.Abrupt() {
				return comp, err
			}
		}
		return vm.Normal, nil
	}, nil
}

// compileBody compiles the body of a compound statement. A block body is
// inlined so the listing does not show a second pair of braces.
func (c *Compiler) compileBody(node parser.Statement) (statement, error) {
	if block, ok := node.(*parser.BlockStatement); ok {
		return c.compileStatements(block.Statements)
	}
	stmt, err := c.compileStatement(node)
	if err != nil || stmt != nil {
		return stmt, err
	}
	return func(*frame, *vm.Scope) (vm.Completion, error) { return vm.Normal, nil }, nil
}

func (c *Compiler) compileExpressionStatement(node *parser.ExpressionStatement) (statement, error) {
	if call, ok := assertCall(node); ok {
		return c.compileAssert(call)
	}
	e, err := c.compileExpression(node.Expression)
	if err != nil {
		return nil, err
	}
	c.code.line("%s", e.text)
	return func(f *frame, s *vm.Scope) (vm.Completion, error) {
		v, err := e.eval(f, s)
		if err != nil {
			return vm.Normal, err
		}
		return vm.Completion{Value: v}, nil
	}, nil
}

// assertCall recognizes the statement assert(expr).
func assertCall(node *parser.ExpressionStatement) (*parser.CallExpression, bool) {
	call, ok := node.Expression.(*parser.CallExpression)
	if !ok {
		return nil, false
	}
	ident, ok := call.Function.(*parser.Identifier)
	return call, ok && ident.Value == "assert"
}

func (c *Compiler) compileAssert(call *parser.CallExpression) (statement, error) {
	if !c.opts.Assertions {
		return nil, nil
	}
	if len(call.Arguments) != 1 {
		return nil, c.errorf(call, "assert expects exactly one argument, got %d", len(call.Arguments))
	}
	arg := call.Arguments[0]
	cond, err := c.compileExpression(arg)
	if err != nil {
		return nil, err
	}
	source := arg.String()
	pos := c.pos(call)
	c.code.line("assert(%s, %s)", cond.text, strconv.Quote(source))
	return func(f *frame, s *vm.Scope) (vm.Completion, error) {
		v, err := cond.eval(f, s)
		if err != nil {
			return vm.Normal, err
		}
		if v.IsFalsey() {
			return vm.Normal, &errors.AssertionError{Position: pos, Expr: source}
		}
		return vm.Normal, nil
	}, nil
}

func (c *Compiler) compileVarStatement(node *parser.VarStatement) (statement, error) {
	type declarator struct {
		name  string
		value expression
	}
	decls := make([]declarator, len(node.Declarations))
	for i, d := range node.Declarations {
		decls[i].name = d.Name.Value
		if d.Value == nil {
			c.code.line("declare(%q)", d.Name.Value)
			continue
		}
		value, err := c.compileExpression(d.Value)
		if err != nil {
			return nil, err
		}
		decls[i].value = value.eval
		c.code.line("declare(%q, %s)", d.Name.Value, value.text)
	}
	return func(f *frame, s *vm.Scope) (vm.Completion, error) {
		for _, d := range decls {
			if d.value == nil {
				// `var x;` leaves an existing x alone
				if !s.Declared(d.name) {
					s.Declare(d.name, vm.Undefined)
				}
				continue
			}
			v, err := d.value(f, s)
			if err != nil {
				return vm.Normal, err
			}
			s.Declare(d.name, v)
		}
		return vm.Normal, nil
	}, nil
}

// compileFunctionDeclaration binds the function when the declaration is
// executed. Declarations are not hoisted.
func (c *Compiler) compileFunctionDeclaration(node *parser.FunctionDeclaration) (statement, error) {
	fn, err := c.compileFunction(node.Function)
	if err != nil {
		return nil, err
	}
	if fn.Name == "" {
		return nil, c.errorf(node, "function declaration requires a name")
	}
	c.code.line("declare(%q, closure(%s))", fn.Name, fn.ID)
	return func(f *frame, s *vm.Scope) (vm.Completion, error) {
		s.Declare(fn.Name, f.realm.NewFunction(fn.Name, fn.Params, s, fn.Body))
		return vm.Normal, nil
	}, nil
}

func (c *Compiler) compileReturnStatement(node *parser.ReturnStatement) (statement, error) {
	if node.ReturnValue == nil {
		c.code.line("return undefined")
		return func(*frame, *vm.Scope) (vm.Completion, error) {
			return vm.Completion{Kind: vm.CompletionReturn, Value: vm.Undefined}, nil
		}, nil
	}
	value, err := c.compileExpression(node.ReturnValue)
	if err != nil {
		return nil, err
	}
	c.code.line("return %s", value.text)
	return func(f *frame, s *vm.Scope) (vm.Completion, error) {
		v, err := value.eval(f, s)
		if err != nil {
			return vm.Normal, err
		}
		return vm.Completion{Kind: vm.CompletionReturn, Value: v}, nil
	}, nil
}

func (c *Compiler) compileIfStatement(node *parser.IfStatement) (statement, error) {
	cond, err := c.compileExpression(node.Condition)
	if err != nil {
		return nil, err
	}
	c.code.open("if truthy(%s) {", cond.text)
	then, err := c.compileBody(node.Consequence)
	if err != nil {
		return nil, err
	}
	var otherwise statement
	if node.Alternative != nil {
		c.code.close("} else {")
		c.code.indent++
		if otherwise, err = c.compileBody(node.Alternative); err != nil {
			return nil, err
		}
	}
	c.code.close("}")

	return func(f *frame, s *vm.Scope) (vm.Completion, error) {
		v, err := cond.eval(f, s)
		if err != nil {
			return vm.Normal, err
		}
		if v.IsTruthy() {
			return then(f, s)
		}
		if otherwise != nil {
			return otherwise(f, s)
		}
		return vm.Normal, nil
	}, nil
}

// --- Loops ---

func labelSuffix(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = strconv.Quote(l)
	}
	return ", labels=[" + strings.Join(quoted, ", ") + "]"
}

// compileLoop compiles a while, for or for-in statement carrying labels.
func (c *Compiler) compileLoop(node parser.Statement, labels []string) (statement, error) {
	switch node := node.(type) {
	case *parser.WhileStatement:
		return c.compileWhileStatement(node, labels)
	case *parser.ForStatement:
		return c.compileForStatement(node, labels)
	case *parser.ForInStatement:
		return c.compileForInStatement(node, labels)
	}
	return nil, c.errorf(node, "not a loop: %s", node.String())
}

// compileLoopBody compiles a loop body with break and continue allowed.
// The result binds the body to a frame for the loop helpers.
func (c *Compiler) compileLoopBody(node parser.Statement) (func(f *frame) vm.StatementFn, error) {
	c.fn.loops++
	defer func() { c.fn.loops-- }()
	body, err := c.compileBody(node)
	if err != nil {
		return nil, err
	}
	return func(f *frame) vm.StatementFn {
		return func(loop *vm.Scope) (vm.Completion, error) { return body(f, loop) }
	}, nil
}

func (c *Compiler) compileWhileStatement(node *parser.WhileStatement, labels []string) (statement, error) {
	cond, err := c.compileExpression(node.Condition)
	if err != nil {
		return nil, err
	}
	c.code.open("whileloop(%s%s) {", cond.text, labelSuffix(labels))
	body, err := c.compileLoopBody(node.Body)
	if err != nil {
		return nil, err
	}
	c.code.close("}")

	return func(f *frame, s *vm.Scope) (vm.Completion, error) {
		test := func(loop *vm.Scope) (bool, error) {
			v, err := cond.eval(f, loop)
			return v.IsTruthy(), err
		}
		return vm.WhileLoop(s, labels, test, body(f), nil)
	}, nil
}

// compileForStatement lowers for (init; test; update) onto the while
// helper: init runs once in the enclosing scope.
func (c *Compiler) compileForStatement(node *parser.ForStatement, labels []string) (statement, error) {
	var init statement
	if node.Initializer != nil {
		var err error
		if init, err = c.compileStatement(node.Initializer); err != nil {
			return nil, err
		}
	}
	var cond, update expr
	condText, updateText := "true", "undefined"
	if node.Condition != nil {
		var err error
		if cond, err = c.compileExpression(node.Condition); err != nil {
			return nil, err
		}
		condText = cond.text
	}
	if node.Update != nil {
		var err error
		if update, err = c.compileExpression(node.Update); err != nil {
			return nil, err
		}
		updateText = update.text
	}

	c.code.open("whileloop(%s, update=%s%s) {", condText, updateText, labelSuffix(labels))
	body, err := c.compileLoopBody(node.Body)
	if err != nil {
		return nil, err
	}
	c.code.close("}")

	return func(f *frame, s *vm.Scope) (vm.Completion, error) {
		if init != nil {
			if _, err := init(f, s); err != nil {
				return vm.Normal, err
			}
		}
		var test func(*vm.Scope) (bool, error)
		if cond.eval != nil {
			test = func(loop *vm.Scope) (bool, error) {
				v, err := cond.eval(f, loop)
				return v.IsTruthy(), err
			}
		}
		var step func(*vm.Scope) error
		if update.eval != nil {
			step = func(loop *vm.Scope) error {
				_, err := update.eval(f, loop)
				return err
			}
		}
		return vm.WhileLoop(s, labels, test, body(f), step)
	}, nil
}

// compileForInStatement binds the loop variable in the loop's own block
// scope. With var, the name is also declared in the function scope.
func (c *Compiler) compileForInStatement(node *parser.ForInStatement, labels []string) (statement, error) {
	subject, err := c.compileExpression(node.Iterable)
	if err != nil {
		return nil, err
	}
	name := node.Variable.Value
	isVar := node.IsVar
	if isVar {
		c.code.line("declare(%q)", name)
	}
	c.code.open("forinloop(%q, %s%s) {", name, subject.text, labelSuffix(labels))
	body, err := c.compileLoopBody(node.Body)
	if err != nil {
		return nil, err
	}
	c.code.close("}")

	return func(f *frame, s *vm.Scope) (vm.Completion, error) {
		if isVar && !s.Declared(name) {
			s.Declare(name, vm.Undefined)
		}
		v, err := subject.eval(f, s)
		if err != nil {
			return vm.Normal, err
		}
		return vm.ForInLoop(s, labels, name, v, body(f))
	}, nil
}

// --- Labels, break and continue ---

func (c *Compiler) compileLabeledStatement(node *parser.LabeledStatement) (statement, error) {
	var labels []string
	var inner parser.Statement = node
	for {
		ls, ok := inner.(*parser.LabeledStatement)
		if !ok {
			break
		}
		name := ls.Label.Value
		if _, active := c.fn.findLabel(name); active || slices.Contains(labels, name) {
			return nil, c.errorf(ls.Label, "Label '%s' has already been declared", name)
		}
		labels = append(labels, name)
		inner = ls.Statement
	}

	var isLoop bool
	switch inner.(type) {
	case *parser.WhileStatement, *parser.ForStatement, *parser.ForInStatement:
		isLoop = true
	}
	saved := len(c.fn.labels)
	for _, name := range labels {
		c.fn.labels = append(c.fn.labels, labelEntry{name: name, loop: isLoop})
	}
	defer func() { c.fn.labels = c.fn.labels[:saved] }()

	if isLoop {
		return c.compileLoop(inner, labels)
	}

	c.code.open("block(%s) {", strings.TrimPrefix(labelSuffix(labels), ", "))
	body, err := c.compileBody(inner)
	if err != nil {
		return nil, err
	}
	c.code.close("}")

	return func(f *frame, s *vm.Scope) (vm.Completion, error) {
		comp, err := body(f, vm.NewScope(s, false))
		if err != nil {
			return vm.Normal, err
		}
		if comp.Kind == vm.CompletionBreak && slices.Contains(labels, comp.Label) {
			return vm.Normal, nil
		}
		return comp, nil
	}, nil
}

func (c *Compiler) compileBreakStatement(node *parser.BreakStatement) (statement, error) {
	var label string
	if node.Label != nil {
		label = node.Label.Value
		if _, ok := c.fn.findLabel(label); !ok {
			return nil, c.errorf(node.Label, "Undefined label '%s'", label)
		}
		c.code.line("return brk(%q)", label)
	} else {
		if c.fn.loops == 0 && c.fn.switches == 0 {
			return nil, c.errorf(node, "Illegal break statement")
		}
		c.code.line("return brk()")
	}
	comp := vm.Completion{Kind: vm.CompletionBreak, Label: label}
	return func(*frame, *vm.Scope) (vm.Completion, error) { return comp, nil }, nil
}

func (c *Compiler) compileContinueStatement(node *parser.ContinueStatement) (statement, error) {
	var label string
	if node.Label != nil {
		label = node.Label.Value
		entry, ok := c.fn.findLabel(label)
		if !ok {
			return nil, c.errorf(node.Label, "Undefined label '%s'", label)
		}
		if !entry.loop {
			return nil, c.errorf(node.Label, "Illegal continue statement: '%s' does not denote an iteration statement", label)
		}
		c.code.line("return cont(%q)", label)
	} else {
		if c.fn.loops == 0 {
			return nil, c.errorf(node, "Illegal continue statement: no surrounding iteration statement")
		}
		c.code.line("return cont()")
	}
	comp := vm.Completion{Kind: vm.CompletionContinue, Label: label}
	return func(*frame, *vm.Scope) (vm.Completion, error) { return comp, nil }, nil
}

// --- switch ---

type switchCase struct {
	test expression // nil for default
	body statement
}

// compileSwitchStatement lowers switch onto a chain of === tests. Matching
// starts at the first case equal to the discriminant, or at default when
// none is, and falls through until a break.
func (c *Compiler) compileSwitchStatement(node *parser.SwitchStatement) (statement, error) {
	disc, err := c.compileExpression(node.Expression)
	if err != nil {
		return nil, err
	}

	c.fn.switches++
	defer func() { c.fn.switches-- }()

	c.code.open("switch %s {", disc.text)
	cases := make([]switchCase, len(node.Cases))
	defaultIndex := -1
	for i, cs := range node.Cases {
		if cs.Condition == nil {
			if defaultIndex >= 0 {
				return nil, c.errorAt(cs.Token, "More than one default clause in switch statement")
			}
			defaultIndex = i
			c.code.line("default:")
		} else {
			test, err := c.compileExpression(cs.Condition)
			if err != nil {
				return nil, err
			}
			cases[i].test = test.eval
			c.code.line("case stricteq(%s):", test.text)
		}
		c.code.indent++
		body, err := c.compileStatements(cs.Body)
		if err != nil {
			return nil, err
		}
		c.code.indent--
		cases[i].body = body
	}
	c.code.close("}")

	return func(f *frame, s *vm.Scope) (vm.Completion, error) {
		v, err := disc.eval(f, s)
		if err != nil {
			return vm.Normal, err
		}
		start := defaultIndex
		for i, cs := range cases {
			if cs.test == nil {
				continue
			}
			t, err := cs.test(f, s)
			if err != nil {
				return vm.Normal, err
			}
			if vm.StrictEquals(v, t) {
				start = i
				break
			}
		}
		if start < 0 {
			return vm.Normal, nil
		}
		for _, cs := range cases[start:] {
			comp, err := cs.body(f, s)
			if err != nil {
				return vm.Normal, err
			}
			if comp.Kind == vm.CompletionBreak && comp.Label == "" {
				return vm.Normal, nil
			}
			if comp.Abrupt() {
				return comp, nil
			}
		}
		return vm.Normal, nil
	}, nil
}
