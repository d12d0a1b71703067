package builtins

import (
	"strings"

	"bemjs/pkg/vm"
)

type JSONInitializer struct{}

func (j *JSONInitializer) Name() string {
	return "JSON"
}

func (j *JSONInitializer) Priority() int {
	return PriorityJSON // 101 - After Math
}

func (j *JSONInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	jsonObj := vm.NewObject(r.ObjectPrototype)

	// the replacer argument is accepted and ignored
	method(r, jsonObj, "stringify", 3, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		indent, err := jsonIndent(r, arg(args, 2))
		if err != nil {
			return vm.Undefined, err
		}
		s, ok, err := r.JSONStringify(arg(args, 0), indent)
		if err != nil {
			return vm.Undefined, err
		}
		if !ok {
			return vm.Undefined, nil
		}
		return vm.NewString(s), nil
	})

	return ctx.DefineGlobal("JSON", jsonObj.Value())
}

// jsonIndent turns the space argument into an indent string: a count of
// spaces or a literal, both capped at ten characters.
func jsonIndent(r *vm.Realm, space vm.Value) (string, error) {
	switch {
	case space.IsNumber():
		n, err := toInteger(r, space)
		if err != nil {
			return "", err
		}
		return strings.Repeat(" ", int(max(0, min(n, 10)))), nil
	case space.IsString():
		s := []rune(space.AsString())
		if len(s) > 10 {
			s = s[:10]
		}
		return string(s), nil
	}
	return "", nil
}
