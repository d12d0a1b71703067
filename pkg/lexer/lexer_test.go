package lexer

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `var five = 5;
var ten = 10.5;

var add = function(x, y) {
  return x + y;
};

!*-5 / 2 % 1;
if (5 <= 10) {
	return true;
} else {
	return false;
}
a === b !== c == d != e >= f;
"foobar"
'foo \'bar\''
// This is a comment
x += 1; y -= 2; z *= 3; w /= 4; v %= 5;
typeof o.k; delete o[k]; new F(); i++ && j-- || k;
c ? this : void 0;`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
		expectedLine    int
	}{
		{VAR, "var", 1},
		{IDENT, "five", 1},
		{ASSIGN, "=", 1},
		{NUMBER, "5", 1},
		{SEMICOLON, ";", 1},
		{VAR, "var", 2},
		{IDENT, "ten", 2},
		{ASSIGN, "=", 2},
		{NUMBER, "10.5", 2},
		{SEMICOLON, ";", 2},
		{VAR, "var", 4},
		{IDENT, "add", 4},
		{ASSIGN, "=", 4},
		{FUNCTION, "function", 4},
		{LPAREN, "(", 4},
		{IDENT, "x", 4},
		{COMMA, ",", 4},
		{IDENT, "y", 4},
		{RPAREN, ")", 4},
		{LBRACE, "{", 4},
		{RETURN, "return", 5},
		{IDENT, "x", 5},
		{PLUS, "+", 5},
		{IDENT, "y", 5},
		{SEMICOLON, ";", 5},
		{RBRACE, "}", 6},
		{SEMICOLON, ";", 6},
		{BANG, "!", 8},
		{ASTERISK, "*", 8},
		{MINUS, "-", 8},
		{NUMBER, "5", 8},
		{SLASH, "/", 8},
		{NUMBER, "2", 8},
		{PERCENT, "%", 8},
		{NUMBER, "1", 8},
		{SEMICOLON, ";", 8},
		{IF, "if", 9},
		{LPAREN, "(", 9},
		{NUMBER, "5", 9},
		{LE, "<=", 9},
		{NUMBER, "10", 9},
		{RPAREN, ")", 9},
		{LBRACE, "{", 9},
		{RETURN, "return", 10},
		{TRUE, "true", 10},
		{SEMICOLON, ";", 10},
		{RBRACE, "}", 11},
		{ELSE, "else", 11},
		{LBRACE, "{", 11},
		{RETURN, "return", 12},
		{FALSE, "false", 12},
		{SEMICOLON, ";", 12},
		{RBRACE, "}", 13},
		{IDENT, "a", 14},
		{STRICT_EQ, "===", 14},
		{IDENT, "b", 14},
		{STRICT_NOT_EQ, "!==", 14},
		{IDENT, "c", 14},
		{EQ, "==", 14},
		{IDENT, "d", 14},
		{NOT_EQ, "!=", 14},
		{IDENT, "e", 14},
		{GE, ">=", 14},
		{IDENT, "f", 14},
		{SEMICOLON, ";", 14},
		{STRING, "foobar", 15},
		{STRING, `foo \'bar\'`, 16},
		{IDENT, "x", 18},
		{PLUS_ASSIGN, "+=", 18},
		{NUMBER, "1", 18},
		{SEMICOLON, ";", 18},
		{IDENT, "y", 18},
		{MINUS_ASSIGN, "-=", 18},
		{NUMBER, "2", 18},
		{SEMICOLON, ";", 18},
		{IDENT, "z", 18},
		{ASTERISK_ASSIGN, "*=", 18},
		{NUMBER, "3", 18},
		{SEMICOLON, ";", 18},
		{IDENT, "w", 18},
		{SLASH_ASSIGN, "/=", 18},
		{NUMBER, "4", 18},
		{SEMICOLON, ";", 18},
		{IDENT, "v", 18},
		{PERCENT_ASSIGN, "%=", 18},
		{NUMBER, "5", 18},
		{SEMICOLON, ";", 18},
		{TYPEOF, "typeof", 19},
		{IDENT, "o", 19},
		{DOT, ".", 19},
		{IDENT, "k", 19},
		{SEMICOLON, ";", 19},
		{DELETE, "delete", 19},
		{IDENT, "o", 19},
		{LBRACKET, "[", 19},
		{IDENT, "k", 19},
		{RBRACKET, "]", 19},
		{SEMICOLON, ";", 19},
		{NEW, "new", 19},
		{IDENT, "F", 19},
		{LPAREN, "(", 19},
		{RPAREN, ")", 19},
		{SEMICOLON, ";", 19},
		{IDENT, "i", 19},
		{INC, "++", 19},
		{LOGICAL_AND, "&&", 19},
		{IDENT, "j", 19},
		{DEC, "--", 19},
		{LOGICAL_OR, "||", 19},
		{IDENT, "k", 19},
		{SEMICOLON, ";", 19},
		{IDENT, "c", 20},
		{QUESTION, "?", 20},
		{THIS, "this", 20},
		{COLON, ":", 20},
		{VOID, "void", 20},
		{NUMBER, "0", 20},
		{SEMICOLON, ";", 20},
		{EOF, "", 20},
	}

	l := NewLexer(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal: %q, line: %d)",
				i, tt.expectedType, tok.Type, tok.Literal, tok.Line)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q (type: %q, line: %d)",
				i, tt.expectedLiteral, tok.Literal, tok.Type, tok.Line)
		}
		if tok.Line != tt.expectedLine {
			t.Errorf("tests[%d] - line wrong. expected=%d, got=%d (literal: %q)",
				i, tt.expectedLine, tok.Line, tok.Literal)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"42", "42"},
		{"3.25", "3.25"},
		{".5", ".5"},
		{"1e3", "1e3"},
		{"2.5E-2", "2.5E-2"},
		{"0xff", "0xff"},
		{"0b101", "0b101"},
		{"0o17", "0o17"},
	}

	for _, tt := range tests {
		tok := NewLexer(tt.input).NextToken()
		if tok.Type != NUMBER || tok.Literal != tt.want {
			t.Errorf("lex %q: got %s %q, want NUMBER %q", tt.input, tok.Type, tok.Literal, tt.want)
		}
	}
}

func TestNewlineBefore(t *testing.T) {
	l := NewLexer("a\n/* multi\nline */ b c // tail\nd")
	want := []bool{false, true, false, true}
	for i, nl := range want {
		tok := l.NextToken()
		if tok.NewlineBefore != nl {
			t.Errorf("token %d (%q): NewlineBefore = %v, want %v", i, tok.Literal, tok.NewlineBefore, nl)
		}
	}
}

func TestIllegalInput(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{`"open`, "unterminated string literal"},
		{"'line\nbreak'", "unterminated string literal"},
		{"/* never closed", "unterminated multiline comment"},
		{"#", "#"},
		{"a & b", "&"},
	}

	for _, tt := range tests {
		l := NewLexer(tt.input)
		var tok Token
		for tok = l.NextToken(); tok.Type != ILLEGAL && tok.Type != EOF; tok = l.NextToken() {
		}
		if tok.Type != ILLEGAL || tok.Literal != tt.literal {
			t.Errorf("lex %q: got %s %q, want ILLEGAL %q", tt.input, tok.Type, tok.Literal, tt.literal)
		}
	}
}
