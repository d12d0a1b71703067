package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"bemjs/pkg/driver"
	"bemjs/pkg/lexer"
	"bemjs/pkg/parser"
	"bemjs/pkg/source"
)

const (
	banner      = "bemjs (Ctrl+D to exit, :quit to leave)"
	historyFile = ".bemjs_history"
	promptMain  = "> "
	promptCont  = "... "
)

func runRepl(session *driver.Session, opts driver.RunOptions, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		code, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(stdout)
			return exitOK
		}
		trimmed := strings.TrimSpace(code)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit":
			return exitOK
		case strings.HasPrefix(trimmed, ":"):
			fmt.Fprintln(stdout, "unknown command. Type :quit to exit.")
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		value, errs := session.RunCode(source.NewReplSource(code), opts)
		if len(errs) > 0 {
			driver.DisplayResult(stderr, code, value, errs)
			continue
		}
		driver.DisplayResult(stdout, code, value, nil)
	}
}

// readEntry reads lines until they form a complete program or a syntax
// error that more input cannot fix.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the pending entry
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !needsMore(b.String()) {
			return b.String(), true
		}
	}
}

// needsMore reports whether src ends inside an unfinished construct.
func needsMore(src string) bool {
	p := parser.NewParser(lexer.NewLexerWithSource(source.NewReplSource(src)))
	_, errs := p.ParseProgram()
	return len(errs) > 0 && p.Incomplete()
}
