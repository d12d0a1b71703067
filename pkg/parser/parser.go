package parser

import (
	"fmt"
	"strconv"
	"strings"

	"bemjs/pkg/errors"
	"bemjs/pkg/lexer"
	"bemjs/pkg/source"
)

const debugParser = false

func debugPrint(format string, args ...interface{}) {
	if debugParser {
		fmt.Printf("[Parser Debug] "+format+"\n", args...)
	}
}

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	COMMA       // ,
	ASSIGNMENT  // =, +=, -=, ...
	TERNARY     // ?:
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	EQUALS      // ==, !=, ===, !==
	LESSGREATER // >, <, >=, <=, in, instanceof
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -X, !X, typeof X, ++X
	POSTFIX     // X++, X--
	CALL        // myFunction(X)
	MEMBER      // obj.prop, obj[prop]
)

var precedences = map[lexer.TokenType]int{
	lexer.COMMA: COMMA,

	lexer.ASSIGN:          ASSIGNMENT,
	lexer.PLUS_ASSIGN:     ASSIGNMENT,
	lexer.MINUS_ASSIGN:    ASSIGNMENT,
	lexer.ASTERISK_ASSIGN: ASSIGNMENT,
	lexer.SLASH_ASSIGN:    ASSIGNMENT,
	lexer.PERCENT_ASSIGN:  ASSIGNMENT,

	lexer.QUESTION:    TERNARY,
	lexer.LOGICAL_OR:  LOGICAL_OR,
	lexer.LOGICAL_AND: LOGICAL_AND,

	lexer.EQ:            EQUALS,
	lexer.NOT_EQ:        EQUALS,
	lexer.STRICT_EQ:     EQUALS,
	lexer.STRICT_NOT_EQ: EQUALS,

	lexer.LT:         LESSGREATER,
	lexer.GT:         LESSGREATER,
	lexer.LE:         LESSGREATER,
	lexer.GE:         LESSGREATER,
	lexer.IN:         LESSGREATER,
	lexer.INSTANCEOF: LESSGREATER,

	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.ASTERISK: PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,

	lexer.INC: POSTFIX,
	lexer.DEC: POSTFIX,

	lexer.LPAREN:   CALL,
	lexer.DOT:      MEMBER,
	lexer.LBRACKET: MEMBER,
}

type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression
)

// Parser produces an AST from the token stream of a lexer.
type Parser struct {
	l      *lexer.Lexer
	source *source.SourceFile
	errors []errors.ScriptError

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn

	// incomplete is set when parsing failed only because input ended early.
	incomplete bool
}

// NewParser creates a new Parser.
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		source: l.GetSource(),
		errors: []errors.ScriptError{},
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.REGEX_LITERAL, p.parseRegexLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.THIS, p.parseThisExpression)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.VOID, p.parsePrefixExpression)
	p.registerPrefix(lexer.TYPEOF, p.parseTypeofExpression)
	p.registerPrefix(lexer.DELETE, p.parseDeleteExpression)
	p.registerPrefix(lexer.INC, p.parsePrefixUpdateExpression)
	p.registerPrefix(lexer.DEC, p.parsePrefixUpdateExpression)
	p.registerPrefix(lexer.NEW, p.parseNewExpression)
	p.registerPrefix(lexer.ILLEGAL, p.parseIllegal)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tok := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.PERCENT,
		lexer.EQ, lexer.NOT_EQ, lexer.STRICT_EQ, lexer.STRICT_NOT_EQ,
		lexer.LT, lexer.GT, lexer.LE, lexer.GE, lexer.IN, lexer.INSTANCEOF,
		lexer.LOGICAL_AND, lexer.LOGICAL_OR,
	} {
		p.registerInfix(tok, p.parseInfixExpression)
	}
	for _, tok := range []lexer.TokenType{
		lexer.ASSIGN, lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN,
		lexer.ASTERISK_ASSIGN, lexer.SLASH_ASSIGN, lexer.PERCENT_ASSIGN,
	} {
		p.registerInfix(tok, p.parseAssignmentExpression)
	}
	p.registerInfix(lexer.QUESTION, p.parseTernaryExpression)
	p.registerInfix(lexer.COMMA, p.parseSequenceExpression)
	p.registerInfix(lexer.INC, p.parsePostfixUpdateExpression)
	p.registerInfix(lexer.DEC, p.parsePostfixUpdateExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.DOT, p.parseMemberExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse is a convenience wrapper that lexes and parses a source file.
func Parse(src *source.SourceFile) (*Program, []errors.ScriptError) {
	return NewParser(lexer.NewLexerWithSource(src)).ParseProgram()
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// Errors returns the syntax errors collected so far.
func (p *Parser) Errors() []errors.ScriptError {
	return p.errors
}

// Incomplete reports whether the input ended in the middle of a construct
// (an open block, bracket or comment). The REPL uses it to ask for more lines.
func (p *Parser) Incomplete() bool {
	return p.incomplete
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	debugPrint("nextToken(): cur='%s' (%s), peek='%s' (%s)", p.curToken.Literal, p.curToken.Type, p.peekToken.Literal, p.peekToken.Type)
}

// ParseProgram parses the whole input and returns the program together with
// every syntax error found.
func (p *Parser) ParseProgram() (*Program, []errors.ScriptError) {
	program := &Program{Source: p.source}
	program.Statements = []Statement{}

	for p.curToken.Type != lexer.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		} else if len(p.errors) > 0 {
			// One bad statement tends to cascade; stop at the first.
			break
		}
		p.nextToken()
	}

	return program, p.errors
}

// --- Statements ---
// Every statement parser leaves curToken on the last token of the statement.

func (p *Parser) parseStatement() Statement {
	debugPrint("parseStatement(): cur='%s' (%s)", p.curToken.Literal, p.curToken.Type)
	switch p.curToken.Type {
	case lexer.VAR:
		return p.parseVarStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.BREAK:
		return p.parseBreakStatement()
	case lexer.CONTINUE:
		return p.parseContinueStatement()
	case lexer.SWITCH:
		return p.parseSwitchStatement()
	case lexer.LBRACE:
		if block := p.parseBlockStatement(); block != nil {
			return block
		}
		return nil
	case lexer.SEMICOLON:
		return &EmptyStatement{Token: p.curToken}
	case lexer.FUNCTION:
		if p.peekTokenIs(lexer.IDENT) {
			return p.parseFunctionDeclaration()
		}
		return p.parseExpressionStatement()
	case lexer.IDENT:
		if p.peekTokenIs(lexer.COLON) {
			return p.parseLabeledStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// consumeSemicolon ends a simple statement: an explicit ';', or an inserted
// one before '}', end of input, or a line break.
func (p *Parser) consumeSemicolon() bool {
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return true
	}
	if p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) || p.peekToken.NewlineBefore {
		return true
	}
	p.peekError(lexer.SEMICOLON)
	return false
}

func (p *Parser) parseVarStatement() Statement {
	stmt := &VarStatement{Token: p.curToken}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	if !p.parseVarDeclarators(stmt) {
		return nil
	}
	if !p.consumeSemicolon() {
		return nil
	}
	return stmt
}

// parseVarDeclarators parses `a = 1, b` starting at the first identifier.
func (p *Parser) parseVarDeclarators(stmt *VarStatement) bool {
	for {
		decl := &VarDeclarator{Name: &Identifier{Token: p.curToken, Value: p.curToken.Literal}}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			decl.Value = p.parseExpression(COMMA)
			if decl.Value == nil {
				return false
			}
		}
		stmt.Declarations = append(stmt.Declarations, decl)
		if !p.peekTokenIs(lexer.COMMA) {
			return true
		}
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return false
		}
	}
}

func (p *Parser) parseReturnStatement() Statement {
	stmt := &ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) || p.peekToken.NewlineBefore {
		p.consumeSemicolon()
		return stmt
	}
	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil || !p.consumeSemicolon() {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() Statement {
	stmt := &ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	if !p.consumeSemicolon() {
		return nil
	}
	return stmt
}

func (p *Parser) parseBlockStatement() *BlockStatement {
	block := &BlockStatement{Token: p.curToken}
	block.Statements = []Statement{}
	p.nextToken()

	for !p.curTokenIs(lexer.RBRACE) {
		if p.curTokenIs(lexer.EOF) {
			p.addError(p.curToken, "expected } to close block")
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}
	return block
}

// parseBody parses the statement following a control-flow header.
func (p *Parser) parseBody() Statement {
	p.nextToken()
	if p.curTokenIs(lexer.EOF) {
		p.addError(p.curToken, "expected statement")
		return nil
	}
	return p.parseStatement()
}

func (p *Parser) parseIfStatement() Statement {
	stmt := &IfStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if stmt.Consequence = p.parseBody(); stmt.Consequence == nil {
		return nil
	}
	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		if stmt.Alternative = p.parseBody(); stmt.Alternative == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() Statement {
	stmt := &WhileStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if stmt.Body = p.parseBody(); stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForStatement handles both `for (init; cond; update)` and
// `for ([var] name in subject)`.
func (p *Parser) parseForStatement() Statement {
	forTok := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}

	stmt := &ForStatement{Token: forTok}
	switch {
	case p.peekTokenIs(lexer.SEMICOLON):
		p.nextToken()
	case p.peekTokenIs(lexer.VAR):
		p.nextToken()
		varStmt := &VarStatement{Token: p.curToken}
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		if p.peekTokenIs(lexer.IN) {
			return p.parseForInRest(forTok, true)
		}
		if !p.parseVarDeclarators(varStmt) || !p.expectPeek(lexer.SEMICOLON) {
			return nil
		}
		stmt.Initializer = varStmt
	default:
		p.nextToken()
		if p.curTokenIs(lexer.IDENT) && p.peekTokenIs(lexer.IN) {
			return p.parseForInRest(forTok, false)
		}
		init := &ExpressionStatement{Token: p.curToken}
		if init.Expression = p.parseExpression(LOWEST); init.Expression == nil {
			return nil
		}
		if !p.expectPeek(lexer.SEMICOLON) {
			return nil
		}
		stmt.Initializer = init
	}

	// curToken is the first ';'
	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		if stmt.Condition = p.parseExpression(LOWEST); stmt.Condition == nil {
			return nil
		}
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	if !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		if stmt.Update = p.parseExpression(LOWEST); stmt.Update == nil {
			return nil
		}
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if stmt.Body = p.parseBody(); stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForInRest continues a for-in header with curToken on the variable.
func (p *Parser) parseForInRest(forTok lexer.Token, isVar bool) Statement {
	stmt := &ForInStatement{
		Token:    forTok,
		Variable: &Identifier{Token: p.curToken, Value: p.curToken.Literal},
		IsVar:    isVar,
	}
	p.nextToken() // 'in'
	p.nextToken()
	if stmt.Iterable = p.parseExpression(LOWEST); stmt.Iterable == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if stmt.Body = p.parseBody(); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseLabeledStatement() Statement {
	stmt := &LabeledStatement{
		Token: p.curToken,
		Label: &Identifier{Token: p.curToken, Value: p.curToken.Literal},
	}
	p.nextToken() // ':'
	if stmt.Statement = p.parseBody(); stmt.Statement == nil {
		return nil
	}
	return stmt
}

// parseJumpLabel reads the optional label of break/continue. A label must
// be on the same line as the keyword.
func (p *Parser) parseJumpLabel() *Identifier {
	if p.peekTokenIs(lexer.IDENT) && !p.peekToken.NewlineBefore {
		p.nextToken()
		return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	return nil
}

func (p *Parser) parseBreakStatement() Statement {
	stmt := &BreakStatement{Token: p.curToken}
	stmt.Label = p.parseJumpLabel()
	if !p.consumeSemicolon() {
		return nil
	}
	return stmt
}

func (p *Parser) parseContinueStatement() Statement {
	stmt := &ContinueStatement{Token: p.curToken}
	stmt.Label = p.parseJumpLabel()
	if !p.consumeSemicolon() {
		return nil
	}
	return stmt
}

func (p *Parser) parseSwitchStatement() Statement {
	stmt := &SwitchStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	if stmt.Expression = p.parseExpression(LOWEST); stmt.Expression == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) || !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	p.nextToken()

	hasDefault := false
	for !p.curTokenIs(lexer.RBRACE) {
		clause := &SwitchCase{Token: p.curToken}
		switch p.curToken.Type {
		case lexer.CASE:
			p.nextToken()
			if clause.Condition = p.parseExpression(LOWEST); clause.Condition == nil {
				return nil
			}
		case lexer.DEFAULT:
			if hasDefault {
				p.addError(p.curToken, "more than one default clause in switch statement")
				return nil
			}
			hasDefault = true
		case lexer.EOF:
			p.addError(p.curToken, "expected } to close switch")
			return nil
		default:
			p.addError(p.curToken, fmt.Sprintf("expected case or default, got %s instead", p.curToken.Type))
			return nil
		}
		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()
		for !p.curTokenIs(lexer.CASE) && !p.curTokenIs(lexer.DEFAULT) && !p.curTokenIs(lexer.RBRACE) {
			if p.curTokenIs(lexer.EOF) {
				p.addError(p.curToken, "expected } to close switch")
				return nil
			}
			s := p.parseStatement()
			if s == nil {
				return nil
			}
			clause.Body = append(clause.Body, s)
			p.nextToken()
		}
		stmt.Cases = append(stmt.Cases, clause)
	}
	return stmt
}

func (p *Parser) parseFunctionDeclaration() Statement {
	stmt := &FunctionDeclaration{Token: p.curToken}
	fn, ok := p.parseFunctionLiteral().(*FunctionLiteral)
	if !ok || fn == nil {
		return nil
	}
	stmt.Function = fn
	return stmt
}

// --- Expressions ---

func (p *Parser) parseExpression(precedence int) Expression {
	debugPrint("parseExpression(%d): cur='%s' (%s)", precedence, p.curToken.Literal, p.curToken.Type)
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		// x \n ++y is two statements
		if (p.peekTokenIs(lexer.INC) || p.peekTokenIs(lexer.DEC)) && p.peekToken.NewlineBefore {
			return leftExp
		}
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

func (p *Parser) parseIdentifier() Expression {
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() Expression {
	lit := &NumberLiteral{Token: p.curToken}
	value, err := parseNumber(p.curToken.Literal)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as number", p.curToken.Literal))
		return nil
	}
	lit.Value = value
	return lit
}

// parseNumber converts a numeric lexeme to its float64 value.
func parseNumber(literal string) (float64, error) {
	lower := strings.ToLower(literal)
	for prefix, base := range map[string]int{"0x": 16, "0o": 8, "0b": 2} {
		if strings.HasPrefix(lower, prefix) {
			digits := literal[2:]
			if digits == "" {
				return 0, fmt.Errorf("missing digits")
			}
			u, err := strconv.ParseUint(digits, base, 64)
			if err != nil {
				// too large for uint64; accumulate as float
				f := 0.0
				for _, d := range strings.ToLower(digits) {
					v := strings.IndexRune("0123456789abcdef", d)
					f = f*float64(base) + float64(v)
				}
				return f, nil
			}
			return float64(u), nil
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(literal, "."), 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, nil // +Inf on overflow
		}
		return 0, err
	}
	return f, nil
}

func (p *Parser) parseStringLiteral() Expression {
	lit := &StringLiteral{Token: p.curToken, Raw: p.curToken.Literal, Quote: '"'}
	if input := p.l.Input(); p.curToken.StartPos < len(input) {
		if q := input[p.curToken.StartPos]; q == '\'' || q == '"' {
			lit.Quote = q
		}
	}
	return lit
}

func (p *Parser) parseRegexLiteral() Expression {
	lit := &RegexLiteral{Token: p.curToken}
	body := p.curToken.Literal
	end := strings.LastIndexByte(body, '/')
	if end <= 0 {
		p.addError(p.curToken, "malformed regular expression literal")
		return nil
	}
	lit.Pattern = body[1:end]
	lit.Flags = body[end+1:]
	return lit
}

func (p *Parser) parseBooleanLiteral() Expression {
	return &BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseThisExpression() Expression {
	return &ThisExpression{Token: p.curToken}
}

func (p *Parser) parseIllegal() Expression {
	msg := p.curToken.Literal
	if len(msg) <= 1 {
		msg = fmt.Sprintf("unexpected character %q", p.curToken.Literal)
	}
	p.addError(p.curToken, msg)
	return nil
}

// parseFunctionLiteral parses `function [name](params) { body }`.
func (p *Parser) parseFunctionLiteral() Expression {
	lit := &FunctionLiteral{Token: p.curToken}
	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		lit.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	lit.Parameters = p.parseFunctionParameters()
	if lit.Parameters == nil {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	if lit.Body = p.parseBlockStatement(); lit.Body == nil {
		return nil
	}
	return lit
}

func (p *Parser) parseFunctionParameters() []*Identifier {
	params := []*Identifier{}
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}
	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		params = append(params, &Identifier{Token: p.curToken, Value: p.curToken.Literal})
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseArrayLiteral() Expression {
	array := &ArrayLiteral{Token: p.curToken}
	elements, ok := p.parseExpressionList(lexer.RBRACKET)
	if !ok {
		return nil
	}
	array.Elements = elements
	return array
}

// parseExpressionList parses comma separated expressions up to end. A
// trailing comma is accepted.
func (p *Parser) parseExpressionList(end lexer.TokenType) ([]Expression, bool) {
	list := []Expression{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}
	for {
		p.nextToken()
		expr := p.parseExpression(COMMA)
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(end) {
			break
		}
	}
	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

func (p *Parser) parseObjectLiteral() Expression {
	obj := &ObjectLiteral{Token: p.curToken}
	obj.Properties = []*ObjectProperty{}

	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		prop := &ObjectProperty{Token: p.curToken}
		switch {
		case p.curTokenIs(lexer.STRING):
			prop.Key = p.parseStringLiteral()
		case p.curTokenIs(lexer.NUMBER):
			prop.Key = p.parseNumberLiteral()
		case p.curTokenIs(lexer.IDENT) || lexer.IsKeyword(p.curToken.Literal):
			prop.Key = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		default:
			if p.curTokenIs(lexer.EOF) {
				p.addError(p.curToken, "expected } to close object literal")
			} else {
				p.addError(p.curToken, fmt.Sprintf("invalid property name %s", p.curToken.Literal))
			}
			return nil
		}
		if prop.Key == nil || !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()
		if prop.Value = p.parseExpression(COMMA); prop.Value == nil {
			return nil
		}
		obj.Properties = append(obj.Properties, prop)

		if !p.peekTokenIs(lexer.RBRACE) && !p.expectPeek(lexer.COMMA) {
			return nil
		}
	}
	p.nextToken()
	return obj
}

func (p *Parser) parseGroupedExpression() Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil || !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return exp
}

// parsePrefixExpression handles expressions like !expr, -expr, +expr and void expr.
func (p *Parser) parsePrefixExpression() Expression {
	expression := &PrefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	if expression.Right = p.parseExpression(PREFIX); expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseTypeofExpression() Expression {
	expression := &TypeofExpression{Token: p.curToken}
	p.nextToken()
	if expression.Operand = p.parseExpression(PREFIX); expression.Operand == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseDeleteExpression() Expression {
	expression := &DeleteExpression{Token: p.curToken}
	p.nextToken()
	if expression.Target = p.parseExpression(PREFIX); expression.Target == nil {
		return nil
	}
	return expression
}

func (p *Parser) parsePrefixUpdateExpression() Expression {
	expression := &UpdateExpression{Token: p.curToken, Operator: p.curToken.Literal, Prefix: true}
	p.nextToken()
	if expression.Argument = p.parseExpression(PREFIX); expression.Argument == nil {
		return nil
	}
	return expression
}

// parseNewExpression parses `new Ctor`, `new Ctor(args)` and `new a.b.Ctor(args)`.
func (p *Parser) parseNewExpression() Expression {
	expression := &NewExpression{Token: p.curToken}
	p.nextToken()
	// Member accesses bind to the constructor, the first call is the argument list.
	if expression.Constructor = p.parseExpression(CALL); expression.Constructor == nil {
		return nil
	}
	expression.Arguments = []Expression{}
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		args, ok := p.parseExpressionList(lexer.RPAREN)
		if !ok {
			return nil
		}
		expression.Arguments = args
	}
	return expression
}

func (p *Parser) parseInfixExpression(left Expression) Expression {
	expression := &InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	if expression.Right = p.parseExpression(precedence); expression.Right == nil {
		return nil
	}
	return expression
}

// parseAssignmentExpression is right associative: a = b = c is a = (b = c).
func (p *Parser) parseAssignmentExpression(left Expression) Expression {
	expression := &AssignmentExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	p.nextToken()
	if expression.Value = p.parseExpression(COMMA); expression.Value == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseTernaryExpression(condition Expression) Expression {
	expression := &TernaryExpression{Token: p.curToken, Condition: condition}
	p.nextToken()
	if expression.Consequence = p.parseExpression(COMMA); expression.Consequence == nil {
		return nil
	}
	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	if expression.Alternative = p.parseExpression(COMMA); expression.Alternative == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseSequenceExpression(left Expression) Expression {
	seq, ok := left.(*SequenceExpression)
	if !ok {
		seq = &SequenceExpression{Token: p.curToken, Expressions: []Expression{left}}
	}
	p.nextToken()
	right := p.parseExpression(COMMA)
	if right == nil {
		return nil
	}
	seq.Expressions = append(seq.Expressions, right)
	return seq
}

func (p *Parser) parsePostfixUpdateExpression(left Expression) Expression {
	return &UpdateExpression{Token: p.curToken, Operator: p.curToken.Literal, Argument: left}
}

func (p *Parser) parseCallExpression(function Expression) Expression {
	exp := &CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseExpressionList(lexer.RPAREN)
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

func (p *Parser) parseMemberExpression(object Expression) Expression {
	exp := &MemberExpression{Token: p.curToken, Object: object}
	if !p.peekTokenIs(lexer.IDENT) && !lexer.IsKeyword(p.peekToken.Literal) {
		p.peekError(lexer.IDENT)
		return nil
	}
	p.nextToken()
	exp.Property = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return exp
}

func (p *Parser) parseIndexExpression(left Expression) Expression {
	exp := &IndexExpression{Token: p.curToken, Left: left}
	p.nextToken()
	if exp.Index = p.parseExpression(LOWEST); exp.Index == nil {
		return nil
	}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return exp
}

// --- Helpers ---

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

// expectPeek checks the type of the next token and advances if it matches.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	got := string(p.peekToken.Type)
	if p.peekToken.Type == lexer.ILLEGAL {
		got = p.peekToken.Literal
	}
	msg := fmt.Sprintf("expected next token to be %s, got %s instead", t, got)
	p.addError(p.peekToken, msg)
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	msg := fmt.Sprintf("no prefix parse function for %s found", tok.Type)
	if tok.Type == lexer.EOF {
		msg = "unexpected end of input"
	}
	p.addError(tok, msg)
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	if tok.Type == lexer.EOF || tok.Type == lexer.ILLEGAL && tok.Literal == "unterminated multiline comment" {
		p.incomplete = true
	}
	// Prevent memory exhaustion from infinite error generation
	const maxErrors = 1000
	if len(p.errors) >= maxErrors {
		return
	}
	p.errors = append(p.errors, &errors.SyntaxError{
		Position: errors.Position{
			Line:     tok.Line,
			Column:   tok.Column,
			StartPos: tok.StartPos,
			EndPos:   tok.EndPos,
			Source:   p.source,
		},
		Msg: msg,
	})
}
