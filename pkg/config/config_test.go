package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"bemjs/pkg/vm"
)

func TestDecodeEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	be.Err(t, err, nil)
	be.Equal(t, cfg.LogLevel, "warn")
	be.Equal(t, cfg.Encoding, "utf-8")
	be.Equal(t, cfg.Assertions, true)
	be.Equal(t, cfg.MaxCallDepth, vm.DefaultMaxCallDepth)
	be.Equal(t, cfg.Console, ConsoleStdout)
}

func TestDecodeOverrides(t *testing.T) {
	doc := `
log_level: debug
encoding: shift_jis
assertions: false
max_call_depth: 200
console: stderr
globals:
  block: page
  depth: 3
  tags: [a, b]
  opts:
    flag: true
`
	cfg, err := Decode(strings.NewReader(doc))
	be.Err(t, err, nil)
	be.Equal(t, cfg.LogLevel, "debug")
	be.Equal(t, cfg.Encoding, "shift_jis")
	be.Equal(t, cfg.Assertions, false)
	be.Equal(t, cfg.MaxCallDepth, 200)
	be.Equal(t, cfg.Console, ConsoleStderr)
	be.Equal(t, cfg.Globals["block"], any("page"))
	be.Equal(t, cfg.Globals["depth"], any(3))
	be.Equal(t, cfg.Globals["tags"], any([]any{"a", "b"}))
	be.Equal(t, cfg.Globals["opts"], any(map[string]any{"flag": true}))
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("loglevel: debug\n"))
	be.Err(t, err, "field loglevel not found")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad level", "log_level: loud\n", "invalid log level: loud"},
		{"negative depth", "max_call_depth: -1\n", "max_call_depth must not be negative"},
		{"bad global", "globals:\n  1x: 2\n", `"1x" is not an identifier`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			be.Err(t, err, tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bemjs.yaml")
	be.Err(t, os.WriteFile(path, []byte("encoding: windows-1251\n"), 0o644), nil)

	cfg, err := Load(path)
	be.Err(t, err, nil)
	be.Equal(t, cfg.Encoding, "windows-1251")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	be.Err(t, err, "config: open")
}

func TestOpenConsoleFile(t *testing.T) {
	cfg := Default()
	cfg.Console = filepath.Join(t.TempDir(), "out.log")
	w, closeFn, err := cfg.OpenConsole()
	be.Err(t, err, nil)
	_, err = w.Write([]byte("hello\n"))
	be.Err(t, err, nil)
	be.Err(t, closeFn(), nil)

	data, err := os.ReadFile(cfg.Console)
	be.Err(t, err, nil)
	be.Equal(t, string(data), "hello\n")
}
