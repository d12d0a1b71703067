package source

import (
	"path/filepath"
	"strings"
)

// SourceFile represents a script with its content and metadata
type SourceFile struct {
	Name    string // Display name (e.g., "page.js", "<eval>", "<repl>")
	Path    string // Full file path (empty for REPL/eval)
	Content string
	lines   []string
}

// NewSourceFile creates a new source file
func NewSourceFile(name, path, content string) *SourceFile {
	return &SourceFile{
		Name:    name,
		Path:    path,
		Content: content,
	}
}

// NewEvalSource creates a source file for -e expressions and tests
func NewEvalSource(content string) *SourceFile {
	return &SourceFile{Name: "<eval>", Content: content}
}

// NewReplSource creates a source file for REPL input
func NewReplSource(content string) *SourceFile {
	return &SourceFile{Name: "<repl>", Content: content}
}

// FromFile creates a SourceFile from a file path and its decoded content
func FromFile(filePath, content string) *SourceFile {
	return NewSourceFile(filepath.Base(filePath), filePath, content)
}

// Lines returns the source split into lines (cached)
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// Line returns the 1-based line n, or "" when out of range.
func (sf *SourceFile) Line(n int) string {
	lines := sf.Lines()
	if n < 1 || n > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[n-1], "\r")
}

// Slice returns Content[start:end] clamped to the content bounds.
func (sf *SourceFile) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(sf.Content) {
		end = len(sf.Content)
	}
	if start >= end {
		return ""
	}
	return sf.Content[start:end]
}

// DisplayPath returns the best path for display (prefers Path, falls back to Name)
func (sf *SourceFile) DisplayPath() string {
	if sf.Path != "" {
		return sf.Path
	}
	return sf.Name
}
