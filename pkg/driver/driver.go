// Package driver ties the pipeline together: it parses and compiles source,
// bootstraps realms and runs compiled units in them.
package driver

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"bemjs/pkg/builtins"
	"bemjs/pkg/compiler"
	"bemjs/pkg/config"
	"bemjs/pkg/errors"
	"bemjs/pkg/logger"
	"bemjs/pkg/parser"
	"bemjs/pkg/source"
	"bemjs/pkg/vm"
)

// RunOptions selects the debugging dumps printed before a run.
type RunOptions struct {
	ShowAST     bool
	ShowListing bool
	// Dump receives the dumps; nil means stderr.
	Dump io.Writer
}

// Compile parses and compiles src. Syntax errors are all reported; the
// compiler stops at its first error.
func Compile(src *source.SourceFile, opts compiler.Options) (*compiler.Unit, []errors.ScriptError) {
	program, errs := parse(src)
	if len(errs) > 0 {
		return nil, errs
	}
	return compileProgram(compiler.New(opts), program)
}

// CompileString compiles code as an eval source.
func CompileString(code string, opts compiler.Options) (*compiler.Unit, []errors.ScriptError) {
	return Compile(source.NewEvalSource(code), opts)
}

// CompileFile reads, decodes and compiles the file at path.
func CompileFile(path, encoding string, opts compiler.Options) (*compiler.Unit, []errors.ScriptError) {
	src, err := readSource(path, encoding)
	if err != nil {
		return nil, []errors.ScriptError{errors.AsScriptError(err)}
	}
	return Compile(src, opts)
}

func parse(src *source.SourceFile) (*parser.Program, []errors.ScriptError) {
	log := logger.L()
	log.Debug("parsing", "source", src.DisplayPath(), "bytes", len(src.Content))
	program, errs := parser.Parse(src)
	if len(errs) > 0 {
		log.Debug("syntax errors", "source", src.DisplayPath(), "count", len(errs))
		return nil, errs
	}
	return program, nil
}

func compileProgram(c *compiler.Compiler, program *parser.Program) (*compiler.Unit, []errors.ScriptError) {
	unit, err := c.Compile(program)
	if err != nil {
		return nil, []errors.ScriptError{errors.AsScriptError(err)}
	}
	logger.L().Debug("compiled", "source", program.Source.DisplayPath(), "functions", len(unit.Functions))
	return unit, nil
}

func readSource(path, encoding string) (*source.SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInternalError("failed to read file '%s': %s", path, err.Error()).CausedBy(err)
	}
	content, err := source.Decode(data, encoding)
	if err != nil {
		return nil, errors.NewInternalError("%s: %s", path, err.Error()).CausedBy(err)
	}
	return source.FromFile(path, content), nil
}

// NewRealm creates a realm with the standard builtins and the configured
// globals installed.
func NewRealm(cfg *config.Config) (*vm.Realm, error) {
	r := vm.NewRealm()
	r.MaxCallDepth = cfg.MaxCallDepth
	if err := builtins.Install(r); err != nil {
		return nil, fmt.Errorf("failed to initialize runtime: %w", err)
	}

	names := make([]string, 0, len(cfg.Globals))
	for name := range cfg.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := ToValue(r, cfg.Globals[name])
		if err != nil {
			return nil, fmt.Errorf("global %s: %w", name, err)
		}
		r.Global.Declare(name, v)
	}
	return r, nil
}

// ToValue converts decoded YAML data to a script value. Maps become plain
// objects and sequences become arrays; null becomes undefined.
func ToValue(r *vm.Realm, data any) (vm.Value, error) {
	switch d := data.(type) {
	case nil:
		return vm.Undefined, nil
	case bool:
		return vm.BooleanValue(d), nil
	case int:
		return vm.NumberValue(float64(d)), nil
	case int64:
		return vm.NumberValue(float64(d)), nil
	case uint64:
		return vm.NumberValue(float64(d)), nil
	case float64:
		return vm.NumberValue(d), nil
	case string:
		return vm.NewString(d), nil
	case []any:
		elems := make([]vm.Value, len(d))
		for i, item := range d {
			v, err := ToValue(r, item)
			if err != nil {
				return vm.Undefined, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = v
		}
		return r.NewArray(elems), nil
	case map[string]any:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := vm.NewObject(r.ObjectPrototype)
		for _, k := range keys {
			v, err := ToValue(r, d[k])
			if err != nil {
				return vm.Undefined, fmt.Errorf(".%s: %w", k, err)
			}
			obj.SetOwn(k, v)
		}
		return obj.Value(), nil
	}
	return vm.Undefined, fmt.Errorf("unsupported value of type %T", data)
}

// Run executes unit in r. A panic escaping native code is reported as an
// InternalError.
func Run(unit *compiler.Unit, r *vm.Realm) (result vm.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			logger.L().Debug("recovered panic", "panic", p)
			result, err = vm.Undefined, errors.NewInternalError("panic during execution: %v", p)
		}
	}()
	return unit.Run(r)
}

// Session is a realm that keeps its globals between runs, as the REPL and
// the CLI use it.
type Session struct {
	cfg      *config.Config
	realm    *vm.Realm
	compiler *compiler.Compiler
	log      *slog.Logger
	closeOut func() error
}

// NewSession bootstraps a realm from cfg. A nil cfg means the defaults.
func NewSession(cfg *config.Config) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	r, err := NewRealm(cfg)
	if err != nil {
		return nil, err
	}
	out, closeOut, err := cfg.OpenConsole()
	if err != nil {
		return nil, err
	}
	r.Out = out
	return &Session{
		cfg:      cfg,
		realm:    r,
		compiler: compiler.New(compiler.Options{Assertions: cfg.Assertions}),
		log:      logger.L().With("component", "driver"),
		closeOut: closeOut,
	}, nil
}

// Realm returns the session realm.
func (s *Session) Realm() *vm.Realm {
	return s.realm
}

// SetOutput redirects console output.
func (s *Session) SetOutput(w io.Writer) {
	s.realm.Out = w
}

// Close releases the console output file, if any.
func (s *Session) Close() error {
	if s.closeOut == nil {
		return nil
	}
	err := s.closeOut()
	s.closeOut = nil
	return err
}

// RunCode compiles and runs src in the session realm. On any error the
// value is undefined and the errors are returned.
func (s *Session) RunCode(src *source.SourceFile, opts RunOptions) (vm.Value, []errors.ScriptError) {
	dump := opts.Dump
	if dump == nil {
		dump = os.Stderr
	}

	program, errs := parse(src)
	if len(errs) > 0 {
		return vm.Undefined, errs
	}
	if opts.ShowAST {
		fmt.Fprintf(dump, "--- AST (%s) ---\n%s\n", src.DisplayPath(), program.String())
	}

	unit, errs := compileProgram(s.compiler, program)
	if len(errs) > 0 {
		return vm.Undefined, errs
	}
	if opts.ShowListing {
		fmt.Fprintf(dump, "--- Listing (%s) ---\n%s", src.DisplayPath(), unit.Listing())
	}

	s.log.Debug("running", "source", src.DisplayPath())
	value, err := Run(unit, s.realm)
	if err != nil {
		se := errors.AsScriptError(err)
		s.log.Debug("run failed", "source", src.DisplayPath(), "kind", se.Kind())
		return vm.Undefined, []errors.ScriptError{se}
	}
	return value, nil
}

// RunString runs code as an eval source.
func (s *Session) RunString(code string) (vm.Value, []errors.ScriptError) {
	return s.RunCode(source.NewEvalSource(code), RunOptions{})
}

// Eval runs one REPL entry.
func (s *Session) Eval(code string) (vm.Value, []errors.ScriptError) {
	return s.RunCode(source.NewReplSource(code), RunOptions{})
}

// RunFile reads the file at path, decodes it with the configured
// encoding and runs it.
func (s *Session) RunFile(path string, opts RunOptions) (vm.Value, []errors.ScriptError) {
	src, err := readSource(path, s.cfg.Encoding)
	if err != nil {
		return vm.Undefined, []errors.ScriptError{errors.AsScriptError(err)}
	}
	return s.RunCode(src, opts)
}

// DisplayResult prints errs with their source lines, or value when it is
// not undefined. It reports whether there were no errors.
func DisplayResult(w io.Writer, src string, value vm.Value, errs []errors.ScriptError) bool {
	if len(errs) > 0 {
		errors.DisplayErrors(w, src, errs)
		return false
	}
	if !value.IsUndefined() {
		fmt.Fprintln(w, value.Inspect())
	}
	return true
}

// FormatError renders err as "<Kind>Error: <message>".
func FormatError(err errors.ScriptError) string {
	return fmt.Sprintf("%sError: %s", err.Kind(), strings.TrimSpace(err.Message()))
}
