package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"bemjs/pkg/errors"
	"bemjs/pkg/parser"
	"bemjs/pkg/vm"
)

func (c *Compiler) compileExpression(node parser.Expression) (expr, error) {
	switch node := node.(type) {
	case *parser.Identifier:
		return c.compileIdentifier(node), nil
	case *parser.ThisExpression:
		return expr{
			eval: func(f *frame, s *vm.Scope) (vm.Value, error) { return f.this, nil },
			text: "this",
		}, nil
	case *parser.NumberLiteral:
		return constant(vm.NumberValue(node.Value), vm.NumberToString(node.Value)), nil
	case *parser.BooleanLiteral:
		return constant(vm.BooleanValue(node.Value), strconv.FormatBool(node.Value)), nil
	case *parser.StringLiteral:
		s, err := c.unescape(node)
		if err != nil {
			return expr{}, err
		}
		return constant(vm.NewString(s), strconv.Quote(s)), nil
	case *parser.RegexLiteral:
		return c.compileRegexLiteral(node)
	case *parser.ArrayLiteral:
		return c.compileArrayLiteral(node)
	case *parser.ObjectLiteral:
		return c.compileObjectLiteral(node)
	case *parser.FunctionLiteral:
		return c.compileFunctionLiteral(node)
	case *parser.PrefixExpression:
		return c.compilePrefixExpression(node)
	case *parser.TypeofExpression:
		return c.compileTypeofExpression(node)
	case *parser.DeleteExpression:
		return c.compileDeleteExpression(node)
	case *parser.InfixExpression:
		return c.compileInfixExpression(node)
	case *parser.AssignmentExpression:
		return c.compileAssignmentExpression(node)
	case *parser.UpdateExpression:
		return c.compileUpdateExpression(node)
	case *parser.TernaryExpression:
		return c.compileTernaryExpression(node)
	case *parser.SequenceExpression:
		return c.compileSequenceExpression(node)
	case *parser.CallExpression:
		return c.compileCallExpression(node)
	case *parser.NewExpression:
		return c.compileNewExpression(node)
	case *parser.MemberExpression, *parser.IndexExpression:
		t, _, err := c.compileTarget(node)
		if err != nil {
			return expr{}, err
		}
		return t.get(c.pos(node)), nil
	}
	return expr{}, c.errorf(node, "unsupported expression %s", node.String())
}

func constant(v vm.Value, text string) expr {
	return expr{
		eval: func(*frame, *vm.Scope) (vm.Value, error) { return v, nil },
		text: text,
	}
}

func (c *Compiler) compileIdentifier(node *parser.Identifier) expr {
	name := node.Value
	if name == "undefined" {
		return constant(vm.Undefined, "undefined")
	}
	pos := c.pos(node)
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			v, err := s.Get(name)
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			return v, nil
		},
		text: fmt.Sprintf("get(%q)", name),
	}
}

// --- Assignable locations ---

// target is a compiled variable or property location.
type target struct {
	// name is set for variables
	name string
	// object and key are set for properties; key.eval is nil when the
	// property name is static
	object expr
	key    expr
	static string
}

func (t *target) isVariable() bool {
	return t.object.eval == nil
}

func (t *target) keyText() string {
	if t.key.eval == nil {
		return strconv.Quote(t.static)
	}
	return t.key.text
}

func (t *target) refText() string {
	if t.isVariable() {
		return fmt.Sprintf("ref(%q)", t.name)
	}
	return fmt.Sprintf("propref(%s, %s)", t.object.text, t.keyText())
}

func (t *target) getText() string {
	if t.isVariable() {
		return fmt.Sprintf("get(%q)", t.name)
	}
	return fmt.Sprintf("getprop(%s, %s)", t.object.text, t.keyText())
}

func (t *target) setText(value string) string {
	if t.isVariable() {
		return fmt.Sprintf("set(%q, %s)", t.name, value)
	}
	return fmt.Sprintf("setprop(%s, %s, %s)", t.object.text, t.keyText(), value)
}

// property evaluates the base and the key of a property target.
func (t *target) property(f *frame, s *vm.Scope) (vm.Value, string, error) {
	base, err := t.object.eval(f, s)
	if err != nil {
		return vm.Undefined, "", err
	}
	if t.key.eval == nil {
		return base, t.static, nil
	}
	k, err := t.key.eval(f, s)
	if err != nil {
		return vm.Undefined, "", err
	}
	key, err := f.realm.ToPropertyKey(k)
	if err != nil {
		return vm.Undefined, "", err
	}
	return base, key, nil
}

func (t *target) reference(f *frame, s *vm.Scope) (vm.Reference, error) {
	if t.isVariable() {
		return vm.ScopeReference{Scope: s, Name: t.name}, nil
	}
	base, key, err := t.property(f, s)
	if err != nil {
		return nil, err
	}
	return vm.PropertyReference{Base: base, Key: key}, nil
}

// get reads the location.
func (t *target) get(pos errors.Position) expr {
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			ref, err := t.reference(f, s)
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			v, err := ref.GetValue(f.realm)
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			return v, nil
		},
		text: t.getText(),
	}
}

// compileTarget compiles node as a location. ok is false when node is not
// an identifier or a property access.
func (c *Compiler) compileTarget(node parser.Expression) (t *target, ok bool, err error) {
	switch node := node.(type) {
	case *parser.Identifier:
		return &target{name: node.Value}, true, nil
	case *parser.MemberExpression:
		object, err := c.compileExpression(node.Object)
		if err != nil {
			return nil, false, err
		}
		return &target{object: object, static: node.Property.Value}, true, nil
	case *parser.IndexExpression:
		object, err := c.compileExpression(node.Left)
		if err != nil {
			return nil, false, err
		}
		key, err := c.compileExpression(node.Index)
		if err != nil {
			return nil, false, err
		}
		return &target{object: object, key: key}, true, nil
	}
	return nil, false, nil
}

// --- Operators ---

type binaryOp struct {
	name string
	fn   func(r *vm.Realm, a, b vm.Value) (vm.Value, error)
}

func arithmetic(op string) func(r *vm.Realm, a, b vm.Value) (vm.Value, error) {
	return func(r *vm.Realm, a, b vm.Value) (vm.Value, error) {
		return r.Arithmetic(op, a, b)
	}
}

func comparison(op string) func(r *vm.Realm, a, b vm.Value) (vm.Value, error) {
	return func(r *vm.Realm, a, b vm.Value) (vm.Value, error) {
		ok, err := r.Compare(op, a, b)
		return vm.BooleanValue(ok), err
	}
}

var binaryOps = map[string]binaryOp{
	"+": {"add", func(r *vm.Realm, a, b vm.Value) (vm.Value, error) { return r.Add(a, b) }},
	"-": {"sub", arithmetic("-")},
	"*": {"mul", arithmetic("*")},
	"/": {"div", arithmetic("/")},
	"%": {"mod", arithmetic("%")},

	"<":  {"lt", comparison("<")},
	">":  {"gt", comparison(">")},
	"<=": {"le", comparison("<=")},
	">=": {"ge", comparison(">=")},

	"==": {"eq", func(r *vm.Realm, a, b vm.Value) (vm.Value, error) {
		eq, err := r.LooseEquals(a, b)
		return vm.BooleanValue(eq), err
	}},
	"!=": {"ne", func(r *vm.Realm, a, b vm.Value) (vm.Value, error) {
		eq, err := r.LooseEquals(a, b)
		return vm.BooleanValue(!eq), err
	}},
	"===": {"stricteq", func(r *vm.Realm, a, b vm.Value) (vm.Value, error) {
		return vm.BooleanValue(vm.StrictEquals(a, b)), nil
	}},
	"!==": {"strictne", func(r *vm.Realm, a, b vm.Value) (vm.Value, error) {
		return vm.BooleanValue(!vm.StrictEquals(a, b)), nil
	}},

	"in": {"in", func(r *vm.Realm, a, b vm.Value) (vm.Value, error) {
		ok, err := r.HasProperty(a, b)
		return vm.BooleanValue(ok), err
	}},
	"instanceof": {"instanceof", func(r *vm.Realm, a, b vm.Value) (vm.Value, error) {
		ok, err := r.InstanceOf(a, b)
		return vm.BooleanValue(ok), err
	}},
}

func (c *Compiler) compileInfixExpression(node *parser.InfixExpression) (expr, error) {
	left, err := c.compileExpression(node.Left)
	if err != nil {
		return expr{}, err
	}
	right, err := c.compileExpression(node.Right)
	if err != nil {
		return expr{}, err
	}

	switch node.Operator {
	case "&&":
		return expr{
			eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
				l, err := left.eval(f, s)
				if err != nil || l.IsFalsey() {
					return l, err
				}
				return right.eval(f, s)
			},
			text: fmt.Sprintf("and(%s, %s)", left.text, right.text),
		}, nil
	case "||":
		return expr{
			eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
				l, err := left.eval(f, s)
				if err != nil || l.IsTruthy() {
					return l, err
				}
				return right.eval(f, s)
			},
			text: fmt.Sprintf("or(%s, %s)", left.text, right.text),
		}, nil
	}

	op, ok := binaryOps[node.Operator]
	if !ok {
		return expr{}, c.errorf(node, "unsupported operator %s", node.Operator)
	}
	pos := c.tokenPos(node.Token)
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			a, err := left.eval(f, s)
			if err != nil {
				return vm.Undefined, err
			}
			b, err := right.eval(f, s)
			if err != nil {
				return vm.Undefined, err
			}
			v, err := op.fn(f.realm, a, b)
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			return v, nil
		},
		text: fmt.Sprintf("%s(%s, %s)", op.name, left.text, right.text),
	}, nil
}

func (c *Compiler) compilePrefixExpression(node *parser.PrefixExpression) (expr, error) {
	// fold negative number literals so listings show -1 rather than neg(1)
	if lit, ok := node.Right.(*parser.NumberLiteral); ok && node.Operator == "-" {
		return constant(vm.NumberValue(-lit.Value), vm.NumberToString(-lit.Value)), nil
	}

	operand, err := c.compileExpression(node.Right)
	if err != nil {
		return expr{}, err
	}
	pos := c.pos(node)

	var name string
	var apply func(r *vm.Realm, v vm.Value) (vm.Value, error)
	switch node.Operator {
	case "!":
		name = "not"
		apply = func(r *vm.Realm, v vm.Value) (vm.Value, error) {
			return vm.BooleanValue(v.IsFalsey()), nil
		}
	case "-":
		name = "neg"
		apply = func(r *vm.Realm, v vm.Value) (vm.Value, error) {
			n, err := r.ToNumber(v)
			return vm.NumberValue(-n), err
		}
	case "+":
		name = "tonumber"
		apply = func(r *vm.Realm, v vm.Value) (vm.Value, error) {
			n, err := r.ToNumber(v)
			return vm.NumberValue(n), err
		}
	case "void":
		name = "void"
		apply = func(r *vm.Realm, v vm.Value) (vm.Value, error) {
			return vm.Undefined, nil
		}
	default:
		return expr{}, c.errorf(node, "unsupported operator %s", node.Operator)
	}

	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			v, err := operand.eval(f, s)
			if err != nil {
				return vm.Undefined, err
			}
			result, err := apply(f.realm, v)
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			return result, nil
		},
		text: fmt.Sprintf("%s(%s)", name, operand.text),
	}, nil
}

func (c *Compiler) compileTypeofExpression(node *parser.TypeofExpression) (expr, error) {
	// typeof of an unbound name is "undefined", not a ReferenceError
	if ident, ok := node.Operand.(*parser.Identifier); ok && ident.Value != "undefined" {
		name := ident.Value
		return expr{
			eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
				v, _ := s.Lookup(name)
				return vm.NewString(vm.TypeOf(v)), nil
			},
			text: fmt.Sprintf("typeof(lookup(%q))", name),
		}, nil
	}

	operand, err := c.compileExpression(node.Operand)
	if err != nil {
		return expr{}, err
	}
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			v, err := operand.eval(f, s)
			if err != nil {
				return vm.Undefined, err
			}
			return vm.NewString(vm.TypeOf(v)), nil
		},
		text: fmt.Sprintf("typeof(%s)", operand.text),
	}, nil
}

func (c *Compiler) compileDeleteExpression(node *parser.DeleteExpression) (expr, error) {
	t, ok, err := c.compileTarget(node.Target)
	if err != nil {
		return expr{}, err
	}
	if !ok {
		return expr{}, c.errorf(node.Target, "Invalid delete target %s", node.Target.String())
	}

	if t.isVariable() {
		name := t.name
		return expr{
			eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
				return vm.BooleanValue(s.Delete(name)), nil
			},
			text: fmt.Sprintf("delete(%q)", name),
		}, nil
	}

	pos := c.pos(node)
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			base, key, err := t.property(f, s)
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			ok, err := f.realm.DeleteProperty(base, vm.NewString(key))
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			return vm.BooleanValue(ok), nil
		},
		text: fmt.Sprintf("deleteprop(%s, %s)", t.object.text, t.keyText()),
	}, nil
}

func (c *Compiler) compileAssignmentExpression(node *parser.AssignmentExpression) (expr, error) {
	t, ok, err := c.compileTarget(node.Left)
	if err != nil {
		return expr{}, err
	}
	if !ok {
		return expr{}, c.errorf(node.Left, "Invalid left-hand side in assignment")
	}
	value, err := c.compileExpression(node.Value)
	if err != nil {
		return expr{}, err
	}
	pos := c.tokenPos(node.Token)

	if node.Operator == "=" {
		return expr{
			eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
				ref, err := t.reference(f, s)
				if err != nil {
					return vm.Undefined, errors.Locate(err, pos)
				}
				v, err := value.eval(f, s)
				if err != nil {
					return vm.Undefined, err
				}
				if err := ref.PutValue(f.realm, v); err != nil {
					return vm.Undefined, errors.Locate(err, pos)
				}
				return v, nil
			},
			text: t.setText(value.text),
		}, nil
	}

	op, ok := binaryOps[strings.TrimSuffix(node.Operator, "=")]
	if !ok {
		return expr{}, c.errorf(node, "unsupported assignment operator %s", node.Operator)
	}
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			ref, err := t.reference(f, s)
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			current, err := ref.GetValue(f.realm)
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			v, err := value.eval(f, s)
			if err != nil {
				return vm.Undefined, err
			}
			result, err := op.fn(f.realm, current, v)
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			if err := ref.PutValue(f.realm, result); err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			return result, nil
		},
		text: t.setText(fmt.Sprintf("%s(%s, %s)", op.name, t.getText(), value.text)),
	}, nil
}

func (c *Compiler) compileUpdateExpression(node *parser.UpdateExpression) (expr, error) {
	fixity := "postfix"
	if node.Prefix {
		fixity = "prefix"
	}
	t, ok, err := c.compileTarget(node.Argument)
	if err != nil {
		return expr{}, err
	}
	if !ok {
		return expr{}, c.errorf(node.Argument, "Invalid left-hand side expression in %s operation", fixity)
	}

	delta, sign := 1.0, "+1"
	if node.Operator == "--" {
		delta, sign = -1, "-1"
	}
	postfix := !node.Prefix
	pos := c.pos(node)
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			ref, err := t.reference(f, s)
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			v, err := f.realm.Update(ref, delta, postfix)
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			return v, nil
		},
		text: fmt.Sprintf("update(%s, %s, %s)", t.refText(), sign, fixity),
	}, nil
}

func (c *Compiler) compileTernaryExpression(node *parser.TernaryExpression) (expr, error) {
	cond, err := c.compileExpression(node.Condition)
	if err != nil {
		return expr{}, err
	}
	then, err := c.compileExpression(node.Consequence)
	if err != nil {
		return expr{}, err
	}
	otherwise, err := c.compileExpression(node.Alternative)
	if err != nil {
		return expr{}, err
	}
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			v, err := cond.eval(f, s)
			if err != nil {
				return vm.Undefined, err
			}
			if v.IsTruthy() {
				return then.eval(f, s)
			}
			return otherwise.eval(f, s)
		},
		text: fmt.Sprintf("cond(%s, %s, %s)", cond.text, then.text, otherwise.text),
	}, nil
}

func (c *Compiler) compileSequenceExpression(node *parser.SequenceExpression) (expr, error) {
	parts, texts, err := c.compileExpressionList(node.Expressions)
	if err != nil {
		return expr{}, err
	}
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			v := vm.Undefined
			for _, part := range parts {
				var err error
				if v, err = part(f, s); err != nil {
					return vm.Undefined, err
				}
			}
			return v, nil
		},
		text: fmt.Sprintf("comma(%s)", texts),
	}, nil
}

// compileExpressionList compiles a list of expressions and renders them
// comma separated.
func (c *Compiler) compileExpressionList(nodes []parser.Expression) ([]expression, string, error) {
	evals := make([]expression, len(nodes))
	texts := make([]string, len(nodes))
	for i, node := range nodes {
		e, err := c.compileExpression(node)
		if err != nil {
			return nil, "", err
		}
		evals[i], texts[i] = e.eval, e.text
	}
	return evals, strings.Join(texts, ", "), nil
}

func evalAll(f *frame, s *vm.Scope, evals []expression) ([]vm.Value, error) {
	values := make([]vm.Value, len(evals))
	for i, eval := range evals {
		v, err := eval(f, s)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// --- Calls ---

// call invokes fn, reporting a non-callable value by the source text of
// the callee.
func call(r *vm.Realm, fn, this vm.Value, args []vm.Value, callee string, pos errors.Position) (vm.Value, error) {
	if !fn.IsCallable() {
		return vm.Undefined, errors.Locate(errors.NewTypeError(callee, "%s is not a function", callee), pos)
	}
	v, err := r.Call(fn, this, args)
	if err != nil {
		return vm.Undefined, errors.Locate(err, pos)
	}
	return v, nil
}

func (c *Compiler) compileCallExpression(node *parser.CallExpression) (expr, error) {
	args, argText, err := c.compileExpressionList(node.Arguments)
	if err != nil {
		return expr{}, err
	}
	callee := node.Function.String()
	pos := c.pos(node)

	switch node.Function.(type) {
	case *parser.MemberExpression, *parser.IndexExpression:
		t, _, err := c.compileTarget(node.Function)
		if err != nil {
			return expr{}, err
		}
		return expr{
			eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
				this, key, err := t.property(f, s)
				if err != nil {
					return vm.Undefined, errors.Locate(err, pos)
				}
				method, err := f.realm.Get(this, key)
				if err != nil {
					return vm.Undefined, errors.Locate(err, pos)
				}
				argv, err := evalAll(f, s, args)
				if err != nil {
					return vm.Undefined, err
				}
				return call(f.realm, method, this, argv, callee, pos)
			},
			text: fmt.Sprintf("callmethod(%s, %s, [%s])", t.object.text, t.keyText(), argText),
		}, nil
	}

	fn, err := c.compileExpression(node.Function)
	if err != nil {
		return expr{}, err
	}
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			fv, err := fn.eval(f, s)
			if err != nil {
				return vm.Undefined, err
			}
			argv, err := evalAll(f, s, args)
			if err != nil {
				return vm.Undefined, err
			}
			return call(f.realm, fv, vm.Undefined, argv, callee, pos)
		},
		text: fmt.Sprintf("call(%s, undefined, [%s])", fn.text, argText),
	}, nil
}

func (c *Compiler) compileNewExpression(node *parser.NewExpression) (expr, error) {
	ctor, err := c.compileExpression(node.Constructor)
	if err != nil {
		return expr{}, err
	}
	args, argText, err := c.compileExpressionList(node.Arguments)
	if err != nil {
		return expr{}, err
	}
	pos := c.pos(node)
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			cv, err := ctor.eval(f, s)
			if err != nil {
				return vm.Undefined, err
			}
			argv, err := evalAll(f, s, args)
			if err != nil {
				return vm.Undefined, err
			}
			v, err := f.realm.New(cv, argv)
			if err != nil {
				return vm.Undefined, errors.Locate(err, pos)
			}
			return v, nil
		},
		text: fmt.Sprintf("new(%s, [%s])", ctor.text, argText),
	}, nil
}
