package vm

import (
	"reflect"
	"testing"
)

func TestForInKeys(t *testing.T) {
	r := NewRealm()
	obj := r.NewPlainObject()
	r.Set(obj, "zeta", True)
	r.Set(obj, "alpha", True)
	obj.AsObject().DefineHidden("hidden", True)

	arr := r.NewArray([]Value{True, True})
	r.Set(arr, "name", True)

	tests := []struct {
		name string
		in   Value
		want []string
	}{
		{"object keys are sorted", obj, []string{"alpha", "zeta"}},
		{"array indices then names", arr, []string{"0", "1", "name"}},
		{"string indices", NewString("ab"), []string{"0", "1"}},
		{"undefined", Undefined, nil},
		{"number", NumberValue(3), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForInKeys(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ForInKeys = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWhileLoopCompletions(t *testing.T) {
	scope := NewScope(nil, true)
	scope.Bind("i", NumberValue(0))
	var visited []float64

	test := func(s *Scope) (bool, error) {
		v, _ := s.Get("i")
		return v.AsFloat() < 10, nil
	}
	update := func(s *Scope) error {
		v, _ := s.Get("i")
		s.Set("i", NumberValue(v.AsFloat()+1))
		return nil
	}
	body := func(s *Scope) (Completion, error) {
		v, _ := s.Get("i")
		switch i := v.AsFloat(); {
		case i == 1:
			return Completion{Kind: CompletionContinue}, nil
		case i == 4:
			return Completion{Kind: CompletionBreak, Label: "outer"}, nil
		default:
			visited = append(visited, i)
		}
		return Normal, nil
	}

	c, err := WhileLoop(scope, []string{"outer"}, test, body, update)
	if err != nil {
		t.Fatal(err)
	}
	if c.Abrupt() {
		t.Errorf("labeled break aimed at this loop should be consumed, got %+v", c)
	}
	if !reflect.DeepEqual(visited, []float64{0, 2, 3}) {
		t.Errorf("visited = %v", visited)
	}
	// continue must still run the update clause
	if v, _ := scope.Get("i"); v.AsFloat() != 4 {
		t.Errorf("i = %v, want 4", v.Inspect())
	}
}

func TestWhileLoopPropagatesForeignLabels(t *testing.T) {
	scope := NewScope(nil, true)
	body := func(s *Scope) (Completion, error) {
		return Completion{Kind: CompletionBreak, Label: "elsewhere"}, nil
	}
	c, err := WhileLoop(scope, []string{"here"}, nil, body, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != CompletionBreak || c.Label != "elsewhere" {
		t.Errorf("completion = %+v, want break elsewhere", c)
	}

	ret := func(s *Scope) (Completion, error) {
		return Completion{Kind: CompletionReturn, Value: NumberValue(7)}, nil
	}
	c, _ = WhileLoop(scope, nil, nil, ret, nil)
	if c.Kind != CompletionReturn || c.Value.AsFloat() != 7 {
		t.Errorf("return completion = %+v", c)
	}
}

func TestForInLoopBindsInBlockScope(t *testing.T) {
	r := NewRealm()
	scope := NewScope(nil, true)
	obj := r.NewPlainObject()
	r.Set(obj, "b", True)
	r.Set(obj, "a", True)

	var keys []string
	_, err := ForInLoop(scope, nil, "k", obj, func(s *Scope) (Completion, error) {
		v, err := s.Get("k")
		if err != nil {
			return Normal, err
		}
		keys = append(keys, v.AsString())
		return Normal, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(keys, []string{"a", "b"}) {
		t.Errorf("keys = %v", keys)
	}
	if scope.Has("k") {
		t.Errorf("loop variable leaked into the enclosing scope")
	}
}
