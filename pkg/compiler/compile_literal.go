package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"bemjs/pkg/errors"
	"bemjs/pkg/parser"
	"bemjs/pkg/vm"
)

// unescape decodes the body of a string literal.
func (c *Compiler) unescape(node *parser.StringLiteral) (string, error) {
	raw := node.Raw
	if !strings.ContainsRune(raw, '\\') {
		return raw, nil
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch != '\\' {
			b.WriteByte(ch)
			continue
		}
		i++
		if i == len(raw) {
			return "", c.errorf(node, "unterminated escape sequence in string literal")
		}
		switch esc := raw[i]; esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '9' {
				return "", c.errorf(node, "octal escape sequences are not supported")
			}
			b.WriteByte(0)
		case '\'', '"', '\\', '/':
			b.WriteByte(esc)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		case 'x':
			v, ok := hexValue(raw, i+1, 2)
			if !ok {
				return "", c.errorf(node, "invalid hexadecimal escape sequence")
			}
			b.WriteRune(rune(v))
			i += 2
		case 'u':
			v, ok := hexValue(raw, i+1, 4)
			if !ok {
				return "", c.errorf(node, "invalid Unicode escape sequence")
			}
			i += 4
			r := rune(v)
			if utf16.IsSurrogate(r) && i+2 < len(raw) && raw[i+1] == '\\' && raw[i+2] == 'u' {
				if low, ok := hexValue(raw, i+3, 4); ok {
					if pair := utf16.DecodeRune(r, rune(low)); pair != utf8.RuneError {
						r = pair
						i += 6
					}
				}
			}
			b.WriteRune(r)
		default:
			r, _ := utf8.DecodeRuneInString(raw[i:])
			return "", c.errorf(node, "unknown escape sequence \\%c", r)
		}
	}
	return b.String(), nil
}

// hexValue parses n hex digits of s starting at i.
func hexValue(s string, i, n int) (int, bool) {
	if i+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[i:i+n], 16, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

// propertyName returns the key of an object literal property.
func (c *Compiler) propertyName(key parser.Expression) (string, error) {
	switch key := key.(type) {
	case *parser.Identifier:
		return key.Value, nil
	case *parser.StringLiteral:
		return c.unescape(key)
	case *parser.NumberLiteral:
		return vm.NumberToString(key.Value), nil
	}
	return "", c.errorf(key, "invalid property name %s", key.String())
}

func (c *Compiler) compileRegexLiteral(node *parser.RegexLiteral) (expr, error) {
	pattern, flags := node.Pattern, node.Flags
	if _, err := vm.CompileRegExp(pattern, flags); err != nil {
		return expr{}, (&errors.CompileError{Position: c.pos(node), Msg: err.Error()}).CausedBy(err)
	}
	pos := c.pos(node)
	return expr{
		// every evaluation creates a new RegExp with its own lastIndex
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			re, err := f.realm.NewRegExp(pattern, flags)
			if err != nil {
				return vm.Undefined, errors.Locate(errors.NewInternalError("%s", err.Error()).CausedBy(err), pos)
			}
			return re, nil
		},
		text: fmt.Sprintf("regexp(%q, %q)", pattern, flags),
	}, nil
}

func (c *Compiler) compileArrayLiteral(node *parser.ArrayLiteral) (expr, error) {
	elems, text, err := c.compileExpressionList(node.Elements)
	if err != nil {
		return expr{}, err
	}
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			values, err := evalAll(f, s, elems)
			if err != nil {
				return vm.Undefined, err
			}
			return f.realm.NewArray(values), nil
		},
		text: fmt.Sprintf("array([%s])", text),
	}, nil
}

func (c *Compiler) compileObjectLiteral(node *parser.ObjectLiteral) (expr, error) {
	keys := make([]string, len(node.Properties))
	values := make([]expression, len(node.Properties))
	texts := make([]string, len(node.Properties))
	for i, prop := range node.Properties {
		key, err := c.propertyName(prop.Key)
		if err != nil {
			return expr{}, err
		}
		value, err := c.compileExpression(prop.Value)
		if err != nil {
			return expr{}, err
		}
		keys[i], values[i] = key, value.eval
		texts[i] = fmt.Sprintf("%q: %s", key, value.text)
	}
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			obj := vm.NewObject(f.realm.ObjectPrototype)
			for i, value := range values {
				v, err := value(f, s)
				if err != nil {
					return vm.Undefined, err
				}
				obj.SetOwn(keys[i], v)
			}
			return obj.Value(), nil
		},
		text: fmt.Sprintf("object({%s})", strings.Join(texts, ", ")),
	}, nil
}

// --- Functions ---

func (c *Compiler) compileFunctionLiteral(node *parser.FunctionLiteral) (expr, error) {
	fn, err := c.compileFunction(node)
	if err != nil {
		return expr{}, err
	}
	if fn.Name == "" {
		return expr{
			eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
				return f.realm.NewFunction("", fn.Params, s, fn.Body), nil
			},
			text: fmt.Sprintf("closure(%s)", fn.ID),
		}, nil
	}
	// a named function expression sees its own name, and only it does
	return expr{
		eval: func(f *frame, s *vm.Scope) (vm.Value, error) {
			self := vm.NewScope(s, false)
			v := f.realm.NewFunction(fn.Name, fn.Params, self, fn.Body)
			self.Bind(fn.Name, v)
			return v, nil
		},
		text: fmt.Sprintf("closure(%s, %q)", fn.ID, fn.Name),
	}, nil
}

// compileFunction compiles a function body into a new numbered Function.
// Labels, loops and switches of the enclosing code are not visible inside.
func (c *Compiler) compileFunction(node *parser.FunctionLiteral) (*Function, error) {
	outerFn, outerCode := c.fn, c.code
	c.fn = &functionState{}
	c.code = &writer{indent: 1}
	defer func() {
		c.fn, c.code = outerFn, outerCode
	}()

	params := make([]string, len(node.Parameters))
	for i, p := range node.Parameters {
		params[i] = p.Value
	}
	var name string
	if node.Name != nil {
		name = node.Name.Value
	}

	stmts := node.Body.Statements
	body, err := c.compileStatements(stmts)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 || !isReturn(stmts[len(stmts)-1]) {
		c.code.line("return undefined")
	}

	fn := &Function{
		ID:     fmt.Sprintf("f%d", len(c.unit.Functions)),
		Name:   name,
		Params: params,
		Body: func(r *vm.Realm, this vm.Value, scope *vm.Scope) (vm.Value, error) {
			comp, err := body(&frame{realm: r, this: this}, scope)
			if err != nil {
				return vm.Undefined, err
			}
			if comp.Kind == vm.CompletionReturn {
				return comp.Value, nil
			}
			return vm.Undefined, nil
		},
	}

	header := fmt.Sprintf("function %s(%s) {", fn.ID, strings.Join(params, ", "))
	if name != "" {
		header += " // " + name
	}
	fn.listing = header + "\n" + c.code.String() + "}\n"
	c.unit.Functions = append(c.unit.Functions, fn)
	return fn, nil
}

func isReturn(stmt parser.Statement) bool {
	_, ok := stmt.(*parser.ReturnStatement)
	return ok
}
