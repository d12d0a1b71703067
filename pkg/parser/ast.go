package parser

import (
	"bytes"
	"strconv"
	"strings"

	"bemjs/pkg/lexer"
	"bemjs/pkg/source"
)

// --- Interfaces ---

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string // Returns the literal value of the token associated with the node
	String() string       // Returns a JavaScript rendering of the node (debugging, assertion messages)
	StartToken() lexer.Token
}

// Statement represents a statement node in the AST.
type Statement interface {
	Node
	statementNode()
}

// Expression represents an expression node in the AST.
type Expression interface {
	Node
	expressionNode()
}

// --- Program Node ---

// Program is the root node of the AST.
type Program struct {
	Statements []Statement
	Source     *source.SourceFile
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) StartToken() lexer.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].StartToken()
	}
	return lexer.Token{Type: lexer.EOF}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// --- Statement Nodes ---

// VarDeclarator is one `name = value` pair of a var statement.
type VarDeclarator struct {
	Name  *Identifier
	Value Expression // nil when no initializer
}

// VarStatement represents `var a = 1, b;`.
type VarStatement struct {
	Token        lexer.Token // the VAR token
	Declarations []*VarDeclarator
}

func (vs *VarStatement) statementNode()          {}
func (vs *VarStatement) TokenLiteral() string    { return vs.Token.Literal }
func (vs *VarStatement) StartToken() lexer.Token { return vs.Token }
func (vs *VarStatement) String() string {
	parts := make([]string, len(vs.Declarations))
	for i, d := range vs.Declarations {
		parts[i] = d.Name.String()
		if d.Value != nil {
			parts[i] += " = " + d.Value.String()
		}
	}
	return "var " + strings.Join(parts, ", ") + ";"
}

// ReturnStatement represents `return <value>;`
type ReturnStatement struct {
	Token       lexer.Token
	ReturnValue Expression // nil for a bare return
}

func (rs *ReturnStatement) statementNode()          {}
func (rs *ReturnStatement) TokenLiteral() string    { return rs.Token.Literal }
func (rs *ReturnStatement) StartToken() lexer.Token { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "return;"
	}
	return "return " + rs.ReturnValue.String() + ";"
}

// ExpressionStatement wraps an expression used as a statement.
type ExpressionStatement struct {
	Token      lexer.Token // first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()          {}
func (es *ExpressionStatement) TokenLiteral() string    { return es.Token.Literal }
func (es *ExpressionStatement) StartToken() lexer.Token { return es.Token }
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ";"
	}
	return es.Expression.String() + ";"
}

// EmptyStatement is a lone `;`.
type EmptyStatement struct {
	Token lexer.Token
}

func (es *EmptyStatement) statementNode()          {}
func (es *EmptyStatement) TokenLiteral() string    { return es.Token.Literal }
func (es *EmptyStatement) StartToken() lexer.Token { return es.Token }
func (es *EmptyStatement) String() string          { return ";" }

// BlockStatement represents `{ ... }`.
type BlockStatement struct {
	Token      lexer.Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()          {}
func (bs *BlockStatement) TokenLiteral() string    { return bs.Token.Literal }
func (bs *BlockStatement) StartToken() lexer.Token { return bs.Token }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// IfStatement represents `if (cond) a else b`.
type IfStatement struct {
	Token       lexer.Token
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil without else
}

func (is *IfStatement) statementNode()          {}
func (is *IfStatement) TokenLiteral() string    { return is.Token.Literal }
func (is *IfStatement) StartToken() lexer.Token { return is.Token }
func (is *IfStatement) String() string {
	s := "if (" + is.Condition.String() + ") " + is.Consequence.String()
	if is.Alternative != nil {
		s += " else " + is.Alternative.String()
	}
	return s
}

// WhileStatement represents `while (cond) body`.
type WhileStatement struct {
	Token     lexer.Token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()          {}
func (ws *WhileStatement) TokenLiteral() string    { return ws.Token.Literal }
func (ws *WhileStatement) StartToken() lexer.Token { return ws.Token }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

// ForStatement represents `for (init; cond; update) body`. Any clause may be nil.
type ForStatement struct {
	Token       lexer.Token
	Initializer Statement // *VarStatement or *ExpressionStatement
	Condition   Expression
	Update      Expression
	Body        Statement
}

func (fs *ForStatement) statementNode()          {}
func (fs *ForStatement) TokenLiteral() string    { return fs.Token.Literal }
func (fs *ForStatement) StartToken() lexer.Token { return fs.Token }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if fs.Initializer != nil {
		out.WriteString(strings.TrimSuffix(fs.Initializer.String(), ";"))
	}
	out.WriteString("; ")
	if fs.Condition != nil {
		out.WriteString(fs.Condition.String())
	}
	out.WriteString("; ")
	if fs.Update != nil {
		out.WriteString(fs.Update.String())
	}
	out.WriteString(") ")
	out.WriteString(fs.Body.String())
	return out.String()
}

// ForInStatement represents `for ([var] key in subject) body`.
type ForInStatement struct {
	Token    lexer.Token
	Variable *Identifier
	IsVar    bool
	Iterable Expression
	Body     Statement
}

func (fs *ForInStatement) statementNode()          {}
func (fs *ForInStatement) TokenLiteral() string    { return fs.Token.Literal }
func (fs *ForInStatement) StartToken() lexer.Token { return fs.Token }
func (fs *ForInStatement) String() string {
	decl := ""
	if fs.IsVar {
		decl = "var "
	}
	return "for (" + decl + fs.Variable.String() + " in " + fs.Iterable.String() + ") " + fs.Body.String()
}

// LabeledStatement represents `label: statement`.
type LabeledStatement struct {
	Token     lexer.Token // the label identifier token
	Label     *Identifier
	Statement Statement
}

func (ls *LabeledStatement) statementNode()          {}
func (ls *LabeledStatement) TokenLiteral() string    { return ls.Token.Literal }
func (ls *LabeledStatement) StartToken() lexer.Token { return ls.Token }
func (ls *LabeledStatement) String() string {
	return ls.Label.String() + ": " + ls.Statement.String()
}

// BreakStatement represents `break [label];`.
type BreakStatement struct {
	Token lexer.Token
	Label *Identifier // nil for a plain break
}

func (bs *BreakStatement) statementNode()          {}
func (bs *BreakStatement) TokenLiteral() string    { return bs.Token.Literal }
func (bs *BreakStatement) StartToken() lexer.Token { return bs.Token }
func (bs *BreakStatement) String() string {
	if bs.Label != nil {
		return "break " + bs.Label.String() + ";"
	}
	return "break;"
}

// ContinueStatement represents `continue [label];`.
type ContinueStatement struct {
	Token lexer.Token
	Label *Identifier
}

func (cs *ContinueStatement) statementNode()          {}
func (cs *ContinueStatement) TokenLiteral() string    { return cs.Token.Literal }
func (cs *ContinueStatement) StartToken() lexer.Token { return cs.Token }
func (cs *ContinueStatement) String() string {
	if cs.Label != nil {
		return "continue " + cs.Label.String() + ";"
	}
	return "continue;"
}

// SwitchCase is one `case x:` or `default:` clause.
type SwitchCase struct {
	Token     lexer.Token // CASE or DEFAULT
	Condition Expression  // nil for default
	Body      []Statement
}

func (sc *SwitchCase) String() string {
	var out bytes.Buffer
	if sc.Condition == nil {
		out.WriteString("default:")
	} else {
		out.WriteString("case " + sc.Condition.String() + ":")
	}
	for _, s := range sc.Body {
		out.WriteString(" " + s.String())
	}
	return out.String()
}

// SwitchStatement represents `switch (expr) { cases }`.
type SwitchStatement struct {
	Token      lexer.Token
	Expression Expression
	Cases      []*SwitchCase
}

func (ss *SwitchStatement) statementNode()          {}
func (ss *SwitchStatement) TokenLiteral() string    { return ss.Token.Literal }
func (ss *SwitchStatement) StartToken() lexer.Token { return ss.Token }
func (ss *SwitchStatement) String() string {
	var out bytes.Buffer
	out.WriteString("switch (" + ss.Expression.String() + ") { ")
	for _, c := range ss.Cases {
		out.WriteString(c.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}

// FunctionDeclaration is a named function in statement position.
type FunctionDeclaration struct {
	Token    lexer.Token
	Function *FunctionLiteral
}

func (fd *FunctionDeclaration) statementNode()          {}
func (fd *FunctionDeclaration) TokenLiteral() string    { return fd.Token.Literal }
func (fd *FunctionDeclaration) StartToken() lexer.Token { return fd.Token }
func (fd *FunctionDeclaration) String() string          { return fd.Function.String() }

// --- Expression Nodes ---

// Identifier represents a name reference.
type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()         {}
func (i *Identifier) TokenLiteral() string    { return i.Token.Literal }
func (i *Identifier) StartToken() lexer.Token { return i.Token }
func (i *Identifier) String() string          { return i.Value }

// NumberLiteral represents a numeric literal.
type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()         {}
func (nl *NumberLiteral) TokenLiteral() string    { return nl.Token.Literal }
func (nl *NumberLiteral) StartToken() lexer.Token { return nl.Token }
func (nl *NumberLiteral) String() string          { return nl.Token.Literal }

// StringLiteral holds the raw, still escaped, body of a string literal.
type StringLiteral struct {
	Token lexer.Token
	Raw   string
	Quote byte
}

func (sl *StringLiteral) expressionNode()         {}
func (sl *StringLiteral) TokenLiteral() string    { return sl.Token.Literal }
func (sl *StringLiteral) StartToken() lexer.Token { return sl.Token }
func (sl *StringLiteral) String() string {
	q := string(sl.Quote)
	if q == "\x00" || q == "" {
		q = `"`
	}
	return q + sl.Raw + q
}

// BooleanLiteral represents true/false.
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()         {}
func (bl *BooleanLiteral) TokenLiteral() string    { return bl.Token.Literal }
func (bl *BooleanLiteral) StartToken() lexer.Token { return bl.Token }
func (bl *BooleanLiteral) String() string          { return strconv.FormatBool(bl.Value) }

// RegexLiteral represents /pattern/flags.
type RegexLiteral struct {
	Token   lexer.Token
	Pattern string
	Flags   string
}

func (rl *RegexLiteral) expressionNode()         {}
func (rl *RegexLiteral) TokenLiteral() string    { return rl.Token.Literal }
func (rl *RegexLiteral) StartToken() lexer.Token { return rl.Token }
func (rl *RegexLiteral) String() string          { return "/" + rl.Pattern + "/" + rl.Flags }

// ThisExpression represents `this`.
type ThisExpression struct {
	Token lexer.Token
}

func (te *ThisExpression) expressionNode()         {}
func (te *ThisExpression) TokenLiteral() string    { return te.Token.Literal }
func (te *ThisExpression) StartToken() lexer.Token { return te.Token }
func (te *ThisExpression) String() string          { return "this" }

// FunctionLiteral represents `function [name](params) { body }`.
type FunctionLiteral struct {
	Token      lexer.Token // the FUNCTION token
	Name       *Identifier // nil for anonymous functions
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()         {}
func (fl *FunctionLiteral) TokenLiteral() string    { return fl.Token.Literal }
func (fl *FunctionLiteral) StartToken() lexer.Token { return fl.Token }
func (fl *FunctionLiteral) String() string {
	params := make([]string, len(fl.Parameters))
	for i, p := range fl.Parameters {
		params[i] = p.String()
	}
	name := ""
	if fl.Name != nil {
		name = " " + fl.Name.Value
	}
	return "function" + name + "(" + strings.Join(params, ", ") + ") " + fl.Body.String()
}

// ArrayLiteral represents `[a, b, c]`.
type ArrayLiteral struct {
	Token    lexer.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()         {}
func (al *ArrayLiteral) TokenLiteral() string    { return al.Token.Literal }
func (al *ArrayLiteral) StartToken() lexer.Token { return al.Token }
func (al *ArrayLiteral) String() string {
	elems := make([]string, len(al.Elements))
	for i, e := range al.Elements {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// ObjectProperty is one `key: value` entry. Key is the decoded property name.
type ObjectProperty struct {
	Token lexer.Token
	Key   Expression // *Identifier, *StringLiteral or *NumberLiteral
	Value Expression
}

// ObjectLiteral represents `{ k: v, ... }`.
type ObjectLiteral struct {
	Token      lexer.Token
	Properties []*ObjectProperty
}

func (ol *ObjectLiteral) expressionNode()         {}
func (ol *ObjectLiteral) TokenLiteral() string    { return ol.Token.Literal }
func (ol *ObjectLiteral) StartToken() lexer.Token { return ol.Token }
func (ol *ObjectLiteral) String() string {
	props := make([]string, len(ol.Properties))
	for i, p := range ol.Properties {
		props[i] = p.Key.String() + ": " + p.Value.String()
	}
	return "{" + strings.Join(props, ", ") + "}"
}

// PrefixExpression represents `-x`, `+x`, `!x`, `void x`.
type PrefixExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()         {}
func (pe *PrefixExpression) TokenLiteral() string    { return pe.Token.Literal }
func (pe *PrefixExpression) StartToken() lexer.Token { return pe.Token }
func (pe *PrefixExpression) String() string {
	if pe.Operator == "void" {
		return "(void " + pe.Right.String() + ")"
	}
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// TypeofExpression represents `typeof x`.
type TypeofExpression struct {
	Token   lexer.Token
	Operand Expression
}

func (te *TypeofExpression) expressionNode()         {}
func (te *TypeofExpression) TokenLiteral() string    { return te.Token.Literal }
func (te *TypeofExpression) StartToken() lexer.Token { return te.Token }
func (te *TypeofExpression) String() string          { return "(typeof " + te.Operand.String() + ")" }

// DeleteExpression represents `delete target`.
type DeleteExpression struct {
	Token  lexer.Token
	Target Expression
}

func (de *DeleteExpression) expressionNode()         {}
func (de *DeleteExpression) TokenLiteral() string    { return de.Token.Literal }
func (de *DeleteExpression) StartToken() lexer.Token { return de.Token }
func (de *DeleteExpression) String() string          { return "(delete " + de.Target.String() + ")" }

// InfixExpression represents binary and logical operators.
type InfixExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()         {}
func (ie *InfixExpression) TokenLiteral() string    { return ie.Token.Literal }
func (ie *InfixExpression) StartToken() lexer.Token { return ie.Left.StartToken() }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// AssignmentExpression represents `target op= value`.
type AssignmentExpression struct {
	Token    lexer.Token // the assignment operator token
	Operator string      // "=", "+=", ...
	Left     Expression
	Value    Expression
}

func (ae *AssignmentExpression) expressionNode()         {}
func (ae *AssignmentExpression) TokenLiteral() string    { return ae.Token.Literal }
func (ae *AssignmentExpression) StartToken() lexer.Token { return ae.Left.StartToken() }
func (ae *AssignmentExpression) String() string {
	return ae.Left.String() + " " + ae.Operator + " " + ae.Value.String()
}

// UpdateExpression represents ++x, x++, --x, x--.
type UpdateExpression struct {
	Token    lexer.Token
	Operator string // "++" or "--"
	Prefix   bool
	Argument Expression
}

func (ue *UpdateExpression) expressionNode()      {}
func (ue *UpdateExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UpdateExpression) StartToken() lexer.Token {
	if ue.Prefix {
		return ue.Token
	}
	return ue.Argument.StartToken()
}
func (ue *UpdateExpression) String() string {
	if ue.Prefix {
		return "(" + ue.Operator + ue.Argument.String() + ")"
	}
	return "(" + ue.Argument.String() + ue.Operator + ")"
}

// TernaryExpression represents `cond ? a : b`.
type TernaryExpression struct {
	Token       lexer.Token // the '?' token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (te *TernaryExpression) expressionNode()         {}
func (te *TernaryExpression) TokenLiteral() string    { return te.Token.Literal }
func (te *TernaryExpression) StartToken() lexer.Token { return te.Condition.StartToken() }
func (te *TernaryExpression) String() string {
	return "(" + te.Condition.String() + " ? " + te.Consequence.String() + " : " + te.Alternative.String() + ")"
}

// SequenceExpression represents `a, b, c`.
type SequenceExpression struct {
	Token       lexer.Token
	Expressions []Expression
}

func (se *SequenceExpression) expressionNode()         {}
func (se *SequenceExpression) TokenLiteral() string    { return se.Token.Literal }
func (se *SequenceExpression) StartToken() lexer.Token { return se.Expressions[0].StartToken() }
func (se *SequenceExpression) String() string {
	parts := make([]string, len(se.Expressions))
	for i, e := range se.Expressions {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// CallExpression represents `fn(args)`.
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()         {}
func (ce *CallExpression) TokenLiteral() string    { return ce.Token.Literal }
func (ce *CallExpression) StartToken() lexer.Token { return ce.Function.StartToken() }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExpressions(ce.Arguments) + ")"
}

// NewExpression represents `new Ctor(args)`.
type NewExpression struct {
	Token       lexer.Token
	Constructor Expression
	Arguments   []Expression
}

func (ne *NewExpression) expressionNode()         {}
func (ne *NewExpression) TokenLiteral() string    { return ne.Token.Literal }
func (ne *NewExpression) StartToken() lexer.Token { return ne.Token }
func (ne *NewExpression) String() string {
	return "new " + ne.Constructor.String() + "(" + joinExpressions(ne.Arguments) + ")"
}

// MemberExpression represents `object.property`.
type MemberExpression struct {
	Token    lexer.Token // the '.' token
	Object   Expression
	Property *Identifier
}

func (me *MemberExpression) expressionNode()         {}
func (me *MemberExpression) TokenLiteral() string    { return me.Token.Literal }
func (me *MemberExpression) StartToken() lexer.Token { return me.Object.StartToken() }
func (me *MemberExpression) String() string          { return me.Object.String() + "." + me.Property.Value }

// IndexExpression represents `left[index]`.
type IndexExpression struct {
	Token lexer.Token // the '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()         {}
func (ie *IndexExpression) TokenLiteral() string    { return ie.Token.Literal }
func (ie *IndexExpression) StartToken() lexer.Token { return ie.Left.StartToken() }
func (ie *IndexExpression) String() string {
	return ie.Left.String() + "[" + ie.Index.String() + "]"
}

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
