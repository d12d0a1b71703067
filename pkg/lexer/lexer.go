package lexer

import (
	"strings"

	"bemjs/pkg/source"
)

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Literal  string // The actual text of the token (lexeme); string bodies are kept raw
	Line     int    // 1-based line number where the token starts
	Column   int    // 1-based column number where the token starts
	StartPos int    // 0-based byte offset where the token starts
	EndPos   int    // 0-based byte offset after the token ends

	// NewlineBefore is set when a line terminator separates this token from
	// the previous one. The parser uses it for automatic semicolon insertion.
	NewlineBefore bool
}

// --- Token Types ---
const (
	// Special
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers + Literals
	IDENT         TokenType = "IDENT"
	NUMBER        TokenType = "NUMBER"
	STRING        TokenType = "STRING" // Literal holds the raw body between the quotes
	REGEX_LITERAL TokenType = "REGEX"  // Literal holds "/body/flags"

	// Operators
	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	BANG     TokenType = "!"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	LT       TokenType = "<"
	GT       TokenType = ">"
	LE       TokenType = "<="
	GE       TokenType = ">="
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	DOT      TokenType = "."

	STRICT_EQ     TokenType = "==="
	STRICT_NOT_EQ TokenType = "!=="

	// Compound Assignment
	PLUS_ASSIGN     TokenType = "+="
	MINUS_ASSIGN    TokenType = "-="
	ASTERISK_ASSIGN TokenType = "*="
	SLASH_ASSIGN    TokenType = "/="
	PERCENT_ASSIGN  TokenType = "%="

	// Increment/Decrement
	INC TokenType = "++"
	DEC TokenType = "--"

	// Logical Operators
	LOGICAL_AND TokenType = "&&"
	LOGICAL_OR  TokenType = "||"

	QUESTION TokenType = "?"

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"

	// Keywords
	VAR        TokenType = "VAR"
	FUNCTION   TokenType = "FUNCTION"
	RETURN     TokenType = "RETURN"
	IF         TokenType = "IF"
	ELSE       TokenType = "ELSE"
	WHILE      TokenType = "WHILE"
	FOR        TokenType = "FOR"
	IN         TokenType = "IN"
	BREAK      TokenType = "BREAK"
	CONTINUE   TokenType = "CONTINUE"
	SWITCH     TokenType = "SWITCH"
	CASE       TokenType = "CASE"
	DEFAULT    TokenType = "DEFAULT"
	NEW        TokenType = "NEW"
	TYPEOF     TokenType = "TYPEOF"
	DELETE     TokenType = "DELETE"
	VOID       TokenType = "VOID"
	INSTANCEOF TokenType = "INSTANCEOF"
	THIS       TokenType = "THIS"
	TRUE       TokenType = "TRUE"
	FALSE      TokenType = "FALSE"
)

var keywords = map[string]TokenType{
	"var":        VAR,
	"function":   FUNCTION,
	"return":     RETURN,
	"if":         IF,
	"else":       ELSE,
	"while":      WHILE,
	"for":        FOR,
	"in":         IN,
	"break":      BREAK,
	"continue":   CONTINUE,
	"switch":     SWITCH,
	"case":       CASE,
	"default":    DEFAULT,
	"new":        NEW,
	"typeof":     TYPEOF,
	"delete":     DELETE,
	"void":       VOID,
	"instanceof": INSTANCEOF,
	"this":       THIS,
	"true":       TRUE,
	"false":      FALSE,
}

// LookupIdent checks the keywords table for an identifier.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return IDENT
}

// IsKeyword reports whether ident is reserved. Property names after '.'
// and object literal keys may still use keywords.
func IsKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}

// punctuators lists multi-character operators, longest first within each
// leading character, so the first prefix match wins.
var punctuators = map[byte][]TokenType{
	'=': {STRICT_EQ, EQ, ASSIGN},
	'!': {STRICT_NOT_EQ, NOT_EQ, BANG},
	'+': {INC, PLUS_ASSIGN, PLUS},
	'-': {DEC, MINUS_ASSIGN, MINUS},
	'*': {ASTERISK_ASSIGN, ASTERISK},
	'%': {PERCENT_ASSIGN, PERCENT},
	'<': {LE, LT},
	'>': {GE, GT},
	'&': {LOGICAL_AND},
	'|': {LOGICAL_OR},
	'?': {QUESTION},
	':': {COLON},
	';': {SEMICOLON},
	',': {COMMA},
	'.': {DOT},
	'(': {LPAREN},
	')': {RPAREN},
	'{': {LBRACE},
	'}': {RBRACE},
	'[': {LBRACKET},
	']': {RBRACKET},
}

// Lexer holds the state of the scanner.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char's byte offset)
	readPosition int  // current reading position in input (byte offset after current char)
	ch           byte // current char under examination
	line         int  // current 1-based line number
	column       int  // current 1-based column number

	prev    TokenType // type of the last token returned, for regex detection
	newline bool      // a line terminator was skipped since the last token

	source *source.SourceFile // may be nil for plain string input
}

// NewLexer creates a new Lexer.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// NewLexerWithSource creates a lexer over a source file so that tokens can
// be traced back to it in diagnostics.
func NewLexerWithSource(src *source.SourceFile) *Lexer {
	l := NewLexer(src.Content)
	l.source = src
	return l
}

// GetSource returns the source file, or nil when the lexer was built from a string.
func (l *Lexer) GetSource() *source.SourceFile {
	return l.source
}

// Input returns the text being scanned.
func (l *Lexer) Input() string {
	return l.input
}

// readChar gives us the next character and advances our position in the input string.
// It also updates the line and column count.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar looks ahead in the input without consuming the character.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace consumes whitespace and comments, remembering whether a
// line terminator was crossed.
func (l *Lexer) skipWhitespace() (illegal bool) {
	for {
		switch {
		case l.ch == '\n':
			l.newline = true
			l.readChar()
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\v' || l.ch == '\f':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			l.skipComment()
		case l.ch == '/' && l.peekChar() == '*':
			if !l.skipMultilineComment() {
				return true
			}
		default:
			return false
		}
	}
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	startLine, startCol, startPos := l.line, l.column, l.position
	if l.skipWhitespace() {
		return l.finish(Token{Type: ILLEGAL, Literal: "unterminated multiline comment", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position})
	}

	// Capture token start position *after* skipping whitespace
	startLine, startCol, startPos = l.line, l.column, l.position
	tok := Token{Line: startLine, Column: startCol, StartPos: startPos}

	switch {
	case l.ch == 0:
		tok.Type = EOF
	case l.ch == '"' || l.ch == '\'':
		body, ok := l.readString(l.ch)
		if ok {
			tok.Type, tok.Literal = STRING, body
		} else {
			tok.Type, tok.Literal = ILLEGAL, "unterminated string literal"
		}
	case l.ch == '/':
		switch {
		case l.regexAllowed():
			lit, ok := l.readRegex()
			if ok {
				tok.Type, tok.Literal = REGEX_LITERAL, lit
			} else {
				tok.Type, tok.Literal = ILLEGAL, "unterminated regular expression literal"
			}
		case l.peekChar() == '=':
			l.readChar()
			l.readChar()
			tok.Type, tok.Literal = SLASH_ASSIGN, "/="
		default:
			l.readChar()
			tok.Type, tok.Literal = SLASH, "/"
		}
	case l.ch == '.' && isDigit(l.peekChar()):
		tok.Type, tok.Literal = NUMBER, l.readNumber()
	case isLetter(l.ch):
		tok.Literal = l.readIdentifier()
		tok.Type = LookupIdent(tok.Literal)
	case isDigit(l.ch):
		tok.Type, tok.Literal = NUMBER, l.readNumber()
	default:
		tok.Type, tok.Literal = l.readPunctuator()
	}

	tok.EndPos = l.position
	return l.finish(tok)
}

func (l *Lexer) finish(tok Token) Token {
	tok.NewlineBefore = l.newline
	l.newline = false
	l.prev = tok.Type
	return tok
}

func (l *Lexer) readPunctuator() (TokenType, string) {
	for _, candidate := range punctuators[l.ch] {
		op := string(candidate)
		if strings.HasPrefix(l.input[l.position:], op) {
			for range op {
				l.readChar()
			}
			return candidate, op
		}
	}
	ch := string(l.ch)
	l.readChar()
	return ILLEGAL, ch
}

// regexAllowed reports whether a '/' at the current position starts a
// regular expression literal rather than a division operator.
func (l *Lexer) regexAllowed() bool {
	if next := l.peekChar(); next == '/' || next == '*' {
		return false
	}
	switch l.prev {
	case IDENT, NUMBER, STRING, REGEX_LITERAL, RPAREN, RBRACKET, THIS, TRUE, FALSE, INC, DEC:
		return false
	}
	return true
}

// readRegex reads /body/flags and returns the whole lexeme. Slashes inside
// a character class or after a backslash do not terminate the body.
func (l *Lexer) readRegex() (string, bool) {
	startPos := l.position
	l.readChar() // opening '/'
	inClass := false
	for {
		switch l.ch {
		case 0, '\n':
			return "", false
		case '\\':
			l.readChar()
			if l.ch == 0 || l.ch == '\n' {
				return "", false
			}
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				l.readChar()
				for isLetter(l.ch) {
					l.readChar()
				}
				return l.input[startPos:l.position], true
			}
		}
		l.readChar()
	}
}

// readIdentifier reads an identifier (letters, digits, _, $) and advances the lexer's position.
func (l *Lexer) readIdentifier() string {
	startPos := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[startPos:l.position]
}

// readNumber reads a number literal: decimal with optional fraction and
// exponent, or hex (0x), octal (0o), binary (0b) integers.
func (l *Lexer) readNumber() string {
	startPos := l.position

	if l.ch == '0' {
		base := 0
		switch l.peekChar() {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			l.readChar()
			l.readChar()
			for isDigitForBase(l.ch, base) {
				l.readChar()
			}
			return l.input[startPos:l.position]
		}
	}

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) || l.ch == '.' && l.position == startPos {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	} else if l.ch == '.' && !isLetter(l.peekChar()) {
		// "1." is a complete number; "1.toString" is not valid here either way
		l.readChar()
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.input[startPos:l.position]
}

// readString reads a string literal enclosed in the given quote character
// and returns its raw body. Escape sequences are left untouched; the
// compiler decodes them so it can reject unknown ones. Advances past the
// closing quote on success.
func (l *Lexer) readString(quote byte) (string, bool) {
	l.readChar() // opening quote
	startPos := l.position
	for {
		switch l.ch {
		case quote:
			body := l.input[startPos:l.position]
			l.readChar()
			return body, true
		case 0, '\n':
			return "", false
		case '\\':
			l.readChar()
			if l.ch == 0 {
				return "", false
			}
		}
		l.readChar()
	}
}

// skipComment reads until the end of the line.
func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// skipMultilineComment consumes /* ... */ and reports whether it was
// terminated before EOF.
func (l *Lexer) skipMultilineComment() bool {
	l.readChar() // '/'
	l.readChar() // '*'
	for {
		switch {
		case l.ch == 0:
			return false
		case l.ch == '*' && l.peekChar() == '/':
			l.readChar()
			l.readChar()
			return true
		case l.ch == '\n':
			l.newline = true
		}
		l.readChar()
	}
}

// isLetter accepts ASCII letters, '_', '$' and any non-ASCII byte so UTF-8
// identifiers pass through whole.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$' || ch >= 0x80
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

// isDigitForBase checks if the character is a valid digit for the given base.
func isDigitForBase(ch byte, base int) bool {
	switch base {
	case 16:
		return isHexDigit(ch)
	case 8:
		return '0' <= ch && ch <= '7'
	case 2:
		return ch == '0' || ch == '1'
	default:
		return isDigit(ch)
	}
}
