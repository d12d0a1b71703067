package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	be.Err(t, os.WriteFile(path, []byte(content), 0o644), nil)
	return path
}

func TestExpression(t *testing.T) {
	code, stdout, _ := runCLI(t, "-e", "[1, 2].concat([3]).join('-')")
	be.Equal(t, code, exitOK)
	be.Equal(t, stdout, "1-2-3\n")
}

func TestScriptFile(t *testing.T) {
	path := writeScript(t, "ok.js", "console.log('hi'); 40 + 2")

	code, stdout, _ := runCLI(t, path)
	be.Equal(t, code, exitOK)
	be.Equal(t, stdout, "hi\n")

	code, stdout, _ = runCLI(t, "-print", path)
	be.Equal(t, code, exitOK)
	be.Equal(t, stdout, "hi\n42\n")
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{"syntax error", []string{"-e", "var = ;"}, exitCompile, "SyntaxError"},
		{"compile error", []string{"-e", "continue;"}, exitCompile, "Illegal continue statement"},
		{"runtime error", []string{"-e", "nope()"}, exitRuntime, "ReferenceError at 1:1: nope is not defined"},
		{"assertion", []string{"-e", "assert(1 == 2)"}, exitRuntime, "AssertionError"},
		{"two files", []string{"a.js", "b.js"}, exitUsage, "Usage: bemjs"},
		{"bad flag", []string{"-frobnicate"}, exitUsage, "flag provided but not defined"},
		{"bad log level", []string{"-log-level", "loud", "-e", "1"}, exitUsage, "invalid log level"},
		{"missing config", []string{"-config", "/nonexistent/bemjs.yaml", "-e", "1"}, exitUsage, "config: open"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			be.Equal(t, code, tt.code)
			be.True(t, strings.Contains(stderr, tt.stderr))
		})
	}
}

func TestNoAssert(t *testing.T) {
	code, stdout, _ := runCLI(t, "-no-assert", "-e", "assert(1 == 2); 'done'")
	be.Equal(t, code, exitOK)
	be.Equal(t, stdout, "done\n")
}

func TestConfigFile(t *testing.T) {
	cfgPath := writeScript(t, "bemjs.yaml", "globals:\n  greeting: hello\nassertions: false\n")
	code, stdout, _ := runCLI(t, "-config", cfgPath, "-e", "assert(false); greeting + '!'")
	be.Equal(t, code, exitOK)
	be.Equal(t, stdout, "hello!\n")
}

func TestEncodingFlag(t *testing.T) {
	// "é" in windows-1252
	path := writeScript(t, "latin.js", "'caf\xe9'.length")
	code, _, stderr := runCLI(t, "-print", path)
	be.Equal(t, code, exitRuntime)
	be.True(t, strings.Contains(stderr, "not valid UTF-8"))

	code, stdout, _ := runCLI(t, "-print", "-encoding", "windows-1252", path)
	be.Equal(t, code, exitOK)
	be.Equal(t, stdout, "4\n")
}

func TestListingFlag(t *testing.T) {
	code, _, stderr := runCLI(t, "-listing", "-e", "var x = 1;")
	be.Equal(t, code, exitOK)
	be.True(t, strings.Contains(stderr, `declare("x", 1)`))
}

func TestNeedsMore(t *testing.T) {
	be.True(t, needsMore("function f() {"))
	be.True(t, needsMore("var a = [1,"))
	be.Equal(t, needsMore("var a = 1;"), false)
	be.Equal(t, needsMore("var = ;"), false)
}

func TestCheck(t *testing.T) {
	good := writeScript(t, "good.js", "var a = 1;")
	bad := writeScript(t, "bad.js", "while (x) { continue nope; }")

	code, stdout, _ := runCLI(t, "-check", good)
	be.Equal(t, code, exitOK)
	be.Equal(t, stdout, "ok   "+good+"\n")

	code, stdout, stderr := runCLI(t, "-check", "-j", "2", good, bad)
	be.Equal(t, code, exitCompile)
	be.Equal(t, stdout, "ok   "+good+"\nFAIL "+bad+"\n")
	be.True(t, strings.Contains(stderr, "Undefined label 'nope'"))

	code, _, _ = runCLI(t, "-check")
	be.Equal(t, code, exitUsage)
}
