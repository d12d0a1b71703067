package vm

import (
	"strings"
	"testing"
)

func TestCompileRegExpFlags(t *testing.T) {
	tests := []struct {
		pattern, flags, input string
		match                 bool
	}{
		{"abc", "", "xabcx", true},
		{"abc", "", "ABC", false},
		{"abc", "i", "ABC", true},
		{"^b$", "", "a\nb", false},
		{"^b$", "m", "a\nb", true},
		{"^B$", "gim", "a\nb", true},
	}
	for _, tt := range tests {
		re, err := CompileRegExp(tt.pattern, tt.flags)
		if err != nil {
			t.Fatalf("CompileRegExp(%q, %q): %v", tt.pattern, tt.flags, err)
		}
		got, err := re.MatchString(tt.input)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.match {
			t.Errorf("/%s/%s on %q = %v, want %v", tt.pattern, tt.flags, tt.input, got, tt.match)
		}
	}
}

func TestCompileRegExpErrors(t *testing.T) {
	tests := []struct {
		pattern, flags, want string
	}{
		{"a", "x", "unsupported regular expression flag"},
		{"a", "gg", "duplicate regular expression flag"},
		{"(", "", "invalid regular expression"},
	}
	for _, tt := range tests {
		_, err := CompileRegExp(tt.pattern, tt.flags)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("CompileRegExp(%q, %q) error = %v, want %q", tt.pattern, tt.flags, err, tt.want)
		}
	}
}
