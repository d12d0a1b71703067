package vm

import (
	"sort"

	"bemjs/pkg/errors"
)

// Scope is one link of the lexical scope chain. Function scopes (the global
// scope is one) receive var declarations; block scopes only hold bindings
// made directly in them, such as a for-in variable.
type Scope struct {
	vars     map[string]Value
	parent   *Scope
	function bool
}

// NewScope creates a scope under parent, which is nil for the global scope.
func NewScope(parent *Scope, function bool) *Scope {
	return &Scope{vars: make(map[string]Value), parent: parent, function: function || parent == nil}
}

// Parent returns the enclosing scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsFunction reports whether the scope receives var declarations.
func (s *Scope) IsFunction() bool {
	return s.function
}

// Declare binds name in the nearest enclosing function scope, overwriting
// any existing binding there.
func (s *Scope) Declare(name string, value Value) {
	cur := s
	for !cur.function && cur.parent != nil {
		cur = cur.parent
	}
	cur.vars[name] = value
}

// Declared reports whether the nearest enclosing function scope binds name.
func (s *Scope) Declared(name string) bool {
	cur := s
	for !cur.function && cur.parent != nil {
		cur = cur.parent
	}
	_, ok := cur.vars[name]
	return ok
}

// Bind binds name in this exact scope.
func (s *Scope) Bind(name string, value Value) {
	s.vars[name] = value
}

// Get resolves name through the chain. An unresolved name is a
// ReferenceError, never undefined.
func (s *Scope) Get(name string) (Value, error) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, nil
		}
	}
	return Undefined, errors.NewReferenceError(name)
}

// Lookup is Get without the error, for callers that treat a missing name
// as undefined (typeof).
func (s *Scope) Lookup(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return Undefined, false
}

// Set assigns to the nearest existing binding. When no scope binds name
// the assignment creates a global, as sloppy-mode scripts expect.
func (s *Scope) Set(name string, value Value) Value {
	cur := s
	for {
		if _, ok := cur.vars[name]; ok || cur.parent == nil {
			cur.vars[name] = value
			return value
		}
		cur = cur.parent
	}
}

// Has reports whether any scope in the chain binds name.
func (s *Scope) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Delete removes the nearest binding of name and reports whether one existed.
func (s *Scope) Delete(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			delete(cur.vars, name)
			return true
		}
	}
	return false
}

// Names returns the names bound directly in this scope, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
