package lexer

import (
	"testing"
)

func TestRegexLiterals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
		literals []string
	}{
		{
			name:     "Simple regex",
			input:    "/hello/",
			expected: []TokenType{REGEX_LITERAL, EOF},
			literals: []string{"/hello/", ""},
		},
		{
			name:     "Regex with flags",
			input:    "/world/gi",
			expected: []TokenType{REGEX_LITERAL, EOF},
			literals: []string{"/world/gi", ""},
		},
		{
			name:     "Slash inside class and escape",
			input:    `/a[/]b\/c/m`,
			expected: []TokenType{REGEX_LITERAL, EOF},
			literals: []string{`/a[/]b\/c/m`, ""},
		},
		{
			name:     "Assignment context",
			input:    "var x = /test/i;",
			expected: []TokenType{VAR, IDENT, ASSIGN, REGEX_LITERAL, SEMICOLON, EOF},
			literals: []string{"var", "x", "=", "/test/i", ";", ""},
		},
		{
			name:     "Division vs regex - division",
			input:    "5 / 2",
			expected: []TokenType{NUMBER, SLASH, NUMBER, EOF},
			literals: []string{"5", "/", "2", ""},
		},
		{
			name:     "Division after identifier and paren",
			input:    "a / (b) / c",
			expected: []TokenType{IDENT, SLASH, LPAREN, IDENT, RPAREN, SLASH, IDENT, EOF},
			literals: []string{"a", "/", "(", "b", ")", "/", "c", ""},
		},
		{
			name:     "Regex as call argument",
			input:    "s.replace(/-/g, '')",
			expected: []TokenType{IDENT, DOT, IDENT, LPAREN, REGEX_LITERAL, COMMA, STRING, RPAREN, EOF},
			literals: []string{"s", ".", "replace", "(", "/-/g", ",", "", ")", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(tt.input)

			for i, expectedToken := range tt.expected {
				tok := l.NextToken()
				if tok.Type != expectedToken {
					t.Errorf("test[%d] - tokentype wrong. expected=%q, got=%q", i, expectedToken, tok.Type)
				}
				if tok.Literal != tt.literals[i] {
					t.Errorf("test[%d] - literal wrong. expected=%q, got=%q", i, tt.literals[i], tok.Literal)
				}
			}
		})
	}
}
