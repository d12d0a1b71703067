package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"

	"bemjs/pkg/compiler"
)

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		be.Err(t, os.WriteFile(path, []byte(content), 0o644), nil)
		return path
	}
	paths := []string{
		write("a.js", "var a = 1;"),
		write("b.js", "break;"),
		write("c.js", "var = ;"),
		filepath.Join(dir, "missing.js"),
		write("e.js", "function f() { return 2; } f()"),
	}

	results, stats, err := CheckFiles(context.Background(), paths, "", compiler.Options{}, 3)
	be.Err(t, err, nil)
	be.Equal(t, len(results), len(paths))
	for i, r := range results {
		be.Equal(t, r.Path, paths[i])
	}

	be.Equal(t, len(results[0].Errors), 0)
	be.True(t, results[0].Unit != nil)
	be.Equal(t, results[1].Errors[0].Kind(), "Compile")
	be.Equal(t, results[2].Errors[0].Kind(), "Syntax")
	be.Equal(t, results[3].Errors[0].Kind(), "Internal")
	be.Equal(t, len(results[4].Unit.Functions), 1)

	be.Equal(t, stats.WorkerCount, 3)
	be.Equal(t, stats.TotalJobs, 5)
	be.Equal(t, stats.CompletedJobs, 2)
	be.Equal(t, stats.FailedJobs, 3)
	be.Equal(t, stats.ActiveJobs, 0)
}

func TestCheckFilesUnitsRunAnywhere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.js")
	be.Err(t, os.WriteFile(path, []byte("var n = 0; n++; n"), 0o644), nil)

	results, _, err := CheckFiles(context.Background(), []string{path, path}, "", compiler.Options{}, 0)
	be.Err(t, err, nil)
	for _, r := range results {
		s, _ := newSession(t)
		v, err := Run(r.Unit, s.Realm())
		be.Err(t, err, nil)
		be.Equal(t, v.Inspect(), "1")
	}
}

func TestCheckFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := CheckFiles(ctx, []string{"x.js"}, "", compiler.Options{}, 1)
	be.Err(t, err, context.Canceled)
}
