package vm

import (
	"slices"
	"sort"
	"strconv"
)

// CompletionKind says how a statement finished.
type CompletionKind uint8

const (
	CompletionNormal CompletionKind = iota
	CompletionReturn
	CompletionBreak
	CompletionContinue
)

// Completion is the result of executing a statement. Break and continue
// completions carry the target label ("" when unlabeled) and travel up
// through ordinary returns until a loop, switch or labeled statement
// consumes them. Completions are never values and script code cannot see
// them.
type Completion struct {
	Kind  CompletionKind
	Value Value
	Label string
}

// Normal is the completion of a statement that ran to its end.
var Normal = Completion{}

// Abrupt reports whether execution must stop at this statement.
func (c Completion) Abrupt() bool {
	return c.Kind != CompletionNormal
}

// Targets reports whether a break or continue completion is addressed to
// a statement carrying labels. Unlabeled ones target the innermost loop.
func (c Completion) Targets(labels []string) bool {
	return c.Label == "" || slices.Contains(labels, c.Label)
}

// StatementFn is a compiled statement bound to its realm and receiver.
type StatementFn func(scope *Scope) (Completion, error)

// loopControl handles the completion of one iteration. It reports whether the
// loop should stop and, if the completion must propagate, returns it.
func loopControl(c Completion, labels []string) (stop bool, out Completion) {
	switch c.Kind {
	case CompletionBreak:
		if c.Targets(labels) {
			return true, Normal
		}
		return true, c
	case CompletionContinue:
		if c.Targets(labels) {
			return false, Normal
		}
		return true, c
	case CompletionReturn:
		return true, c
	}
	return false, Normal
}

// WhileLoop runs a while or for loop in a new block scope. test and update
// may be nil. Break and continue completions aimed at this loop (unlabeled,
// or naming one of labels) are consumed; every other abrupt completion is
// returned unchanged for an enclosing statement to handle.
func WhileLoop(scope *Scope, labels []string, test func(*Scope) (bool, error), body StatementFn, update func(*Scope) error) (Completion, error) {
	loop := NewScope(scope, false)
	for {
		if test != nil {
			ok, err := test(loop)
			if err != nil {
				return Normal, err
			}
			if !ok {
				return Normal, nil
			}
		}
		c, err := body(loop)
		if err != nil {
			return Normal, err
		}
		if stop, out := loopControl(c, labels); stop {
			return out, nil
		}
		if update != nil {
			if err := update(loop); err != nil {
				return Normal, err
			}
		}
	}
}

// ForInLoop binds name to each key of subject in turn, in a new block
// scope, and runs body. Keys are collected before the first iteration.
func ForInLoop(scope *Scope, labels []string, name string, subject Value, body StatementFn) (Completion, error) {
	loop := NewScope(scope, false)
	for _, key := range ForInKeys(subject) {
		loop.Bind(name, NewString(key))
		c, err := body(loop)
		if err != nil {
			return Normal, err
		}
		if stop, out := loopControl(c, labels); stop {
			return out, nil
		}
	}
	return Normal, nil
}

// ForInKeys returns the keys a for-in loop visits. Objects give their
// enumerable own keys sorted; arrays give their indices in ascending order
// followed by their sorted named keys; strings give their indices.
// Undefined, numbers and booleans have no keys.
func ForInKeys(v Value) []string {
	switch v.typ {
	case TypeUndefined, TypeNumber, TypeBoolean:
		return nil
	case TypeString:
		n := stringLength(v.AsString())
		keys := make([]string, n)
		for i := range keys {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	case TypeArray:
		arr := v.AsArray()
		keys := make([]string, 0, arr.Length())
		for i := range arr.Length() {
			keys = append(keys, strconv.Itoa(i))
		}
		named := arr.OwnKeys()
		sort.Strings(named)
		return append(keys, named...)
	}
	obj := v.AsObject()
	if obj == nil {
		return nil
	}
	keys := obj.OwnKeys()
	sort.Strings(keys)
	return keys
}
