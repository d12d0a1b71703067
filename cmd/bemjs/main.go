// Command bemjs compiles and runs scripts written in the bemjs JavaScript
// subset.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"bemjs/pkg/compiler"
	"bemjs/pkg/config"
	"bemjs/pkg/driver"
	"bemjs/pkg/errors"
	"bemjs/pkg/logger"
	"bemjs/pkg/source"
	"bemjs/pkg/vm"
)

// Exit codes.
const (
	exitOK      = 0
	exitUsage   = 64 // command line usage error
	exitCompile = 65 // syntax or compile error
	exitRuntime = 70 // runtime error
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bemjs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFlag := fs.String("config", "", "Load settings from the given YAML file")
	exprFlag := fs.String("e", "", "Run the given expression and exit")
	encodingFlag := fs.String("encoding", "", "Source file encoding (e.g. shift_jis, windows-1251)")
	astFlag := fs.Bool("ast", false, "Show the AST before running")
	listingFlag := fs.Bool("listing", false, "Show the compiled listing before running")
	logLevelFlag := fs.String("log-level", "", "Log level: debug, info, warn, error")
	noAssertFlag := fs.Bool("no-assert", false, "Drop assert() statements")
	printFlag := fs.Bool("print", false, "Print the result value of a script file")
	checkFlag := fs.Bool("check", false, "Compile the given files without running them")
	jobsFlag := fs.Int("j", 0, "Parallel compile jobs for -check (0: one per CPU)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: bemjs [flags] [script.js] or bemjs -e \"expression\" or bemjs -check files...\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if (!*checkFlag && fs.NArg() > 1) || (*exprFlag != "" && fs.NArg() > 0) || (*checkFlag && fs.NArg() == 0) {
		fs.Usage()
		return exitUsage
	}

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "encoding":
			cfg.Encoding = *encodingFlag
		case "log-level":
			cfg.LogLevel = *logLevelFlag
		case "no-assert":
			cfg.Assertions = !*noAssertFlag
		}
	})
	if err := logger.InitTo(stderr, cfg.LogLevel); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	logger.L().Debug("starting", "config", *configFlag, "encoding", cfg.Encoding, "assertions", cfg.Assertions)

	if *checkFlag {
		return check(fs.Args(), cfg, *jobsFlag, stdout, stderr)
	}

	session, err := driver.NewSession(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer session.Close()
	if cfg.Console == "" || cfg.Console == config.ConsoleStdout {
		session.SetOutput(stdout)
	}
	opts := driver.RunOptions{ShowAST: *astFlag, ShowListing: *listingFlag, Dump: stderr}

	switch {
	case *exprFlag != "":
		value, errs := session.RunCode(source.NewEvalSource(*exprFlag), opts)
		return report(stdout, stderr, *exprFlag, value, errs, true)
	case fs.NArg() == 1:
		path := fs.Arg(0)
		value, errs := session.RunFile(path, opts)
		text := ""
		if len(errs) > 0 && errs[0].Pos().Source != nil {
			text = errs[0].Pos().Source.Content
		}
		return report(stdout, stderr, text, value, errs, *printFlag)
	}
	return runRepl(session, opts, stdout, stderr)
}

// check compiles files in parallel and reports every failure.
func check(paths []string, cfg *config.Config, jobs int, stdout, stderr io.Writer) int {
	results, stats, err := driver.CheckFiles(context.Background(), paths, cfg.Encoding, compiler.Options{Assertions: cfg.Assertions}, jobs)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntime
	}
	logger.L().Debug("check finished", "files", stats.TotalJobs, "failed", stats.FailedJobs, "workers", stats.WorkerCount, "time", stats.TotalTime)

	var failed []errors.ScriptError
	for _, r := range results {
		if len(r.Errors) == 0 {
			fmt.Fprintf(stdout, "ok   %s\n", r.Path)
			continue
		}
		fmt.Fprintf(stdout, "FAIL %s\n", r.Path)
		text := ""
		if src := r.Errors[0].Pos().Source; src != nil {
			text = src.Content
		}
		errors.DisplayErrors(stderr, text, r.Errors)
		failed = append(failed, r.Errors...)
	}
	if len(failed) > 0 {
		return exitCode(failed)
	}
	return exitOK
}

// report prints the outcome of one run and maps it to an exit code.
func report(stdout, stderr io.Writer, text string, value vm.Value, errs []errors.ScriptError, show bool) int {
	if len(errs) > 0 {
		errors.DisplayErrors(stderr, text, errs)
		return exitCode(errs)
	}
	if show {
		driver.DisplayResult(stdout, text, value, nil)
	}
	return exitOK
}

func exitCode(errs []errors.ScriptError) int {
	for _, err := range errs {
		if !errors.IsRuntime(err) {
			return exitCompile
		}
	}
	return exitRuntime
}
