package errors

import (
	"fmt"

	"bemjs/pkg/source"
)

// Position represents a specific location in the source code.
// Line and Column are 1-based, StartPos and EndPos are byte offsets.
type Position struct {
	Line     int
	Column   int
	StartPos int
	EndPos   int
	Source   *source.SourceFile
}

// IsZero reports whether the position carries no location.
func (p Position) IsZero() bool {
	return p.Line == 0
}

func (p Position) location() string {
	if p.IsZero() {
		return ""
	}
	if p.Source != nil {
		return fmt.Sprintf(" at %s:%d:%d", p.Source.DisplayPath(), p.Line, p.Column)
	}
	return fmt.Sprintf(" at %d:%d", p.Line, p.Column)
}
