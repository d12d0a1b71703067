// Package mdtest reads script test cases out of Markdown documents.
//
// A case starts at a heading "Test: <name>" and owns the fenced code blocks
// up to the next such heading. A ```js fence holds the script; the other
// fences hold what running it must produce:
//
//	result   Inspect() of the completion value
//	output   everything written by console.log
//	error    "<Kind>: <message>" of the error the run fails with
//	listing  the compiled listing, without the preamble line
package mdtest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fence languages.
const (
	FenceScript  = "js"
	FenceResult  = "result"
	FenceOutput  = "output"
	FenceError   = "error"
	FenceListing = "listing"
)

// Case is one test case.
type Case struct {
	Name   string
	File   string
	Line   int
	Script string
	// Expect maps a fence language to its trimmed content.
	Expect map[string]string
}

// Has reports whether the case carries an expectation of the given kind.
func (c *Case) Has(kind string) bool {
	_, ok := c.Expect[kind]
	return ok
}

// Parse extracts the cases of one document.
func Parse(file string, doc []byte) ([]Case, error) {
	root := goldmark.New().Parser().Parse(text.NewReader(doc))

	var cases []Case
	var cur *Case
	finish := func() error {
		if cur == nil {
			return nil
		}
		if cur.Script == "" {
			return fmt.Errorf("%s:%d: test %q has no js fence", file, cur.Line, cur.Name)
		}
		if len(cur.Expect) == 0 {
			return fmt.Errorf("%s:%d: test %q has no expectations", file, cur.Line, cur.Name)
		}
		cases = append(cases, *cur)
		return nil
	}

	err := ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, doc)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkSkipChildren, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			cur = &Case{
				Name:   strings.TrimPrefix(heading, "Test: "),
				File:   file,
				Line:   lineOf(n, doc),
				Expect: map[string]string{},
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			lang := string(n.Language(doc))
			line := lineOf(n, doc)
			if lang == "" {
				return ast.WalkContinue, nil
			}
			if cur == nil {
				return ast.WalkStop, fmt.Errorf("%s:%d: %s fence outside of a test", file, line, lang)
			}
			content := strings.TrimRight(blockText(n, doc), "\n")
			switch lang {
			case FenceScript:
				if cur.Script != "" {
					return ast.WalkStop, fmt.Errorf("%s:%d: test %q has more than one js fence", file, line, cur.Name)
				}
				cur.Script = content
			case FenceResult, FenceOutput, FenceError, FenceListing:
				if cur.Has(lang) {
					return ast.WalkStop, fmt.Errorf("%s:%d: test %q repeats the %s fence", file, line, cur.Name, lang)
				}
				cur.Expect[lang] = content
			default:
				return ast.WalkStop, fmt.Errorf("%s:%d: unknown fence language %q in test %q", file, line, lang, cur.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

// Glob reads every document matching pattern, in name order.
func Glob(pattern string) ([]Case, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	var all []Case
	for _, file := range files {
		doc, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		cases, err := Parse(file, doc)
		if err != nil {
			return nil, err
		}
		all = append(all, cases...)
	}
	return all, nil
}

func nodeText(node ast.Node, doc []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(doc))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockText(block *ast.FencedCodeBlock, doc []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(doc))
	}
	return buf.String()
}

// lineOf returns the 1-based line of a block node's first content line.
func lineOf(node ast.Node, doc []byte) int {
	lines := node.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return bytes.Count(doc[:lines.At(0).Start], []byte("\n")) + 1
}
