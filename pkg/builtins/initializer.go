package builtins

import (
	"math"

	"bemjs/pkg/vm"
)

// BuiltinInitializer is implemented by each builtin module
type BuiltinInitializer interface {
	// Name returns the module name (e.g., "Array", "String", "Math")
	Name() string

	// Priority returns initialization order (lower = earlier)
	Priority() int

	// InitRuntime creates runtime values in the realm
	InitRuntime(ctx *RuntimeContext) error
}

// RuntimeContext provides everything needed for runtime initialization
type RuntimeContext struct {
	// The realm being populated
	Realm *vm.Realm

	// Define a global value
	DefineGlobal func(name string, value vm.Value) error
}

// Priority constants for initialization order
const (
	PriorityObject   = 0   // Object must be first (base prototype)
	PriorityFunction = 1   // Function second (inherits from Object)
	PriorityArray    = 3   // Array third
	PriorityGlobals  = 5   // true, false, NaN, undefined, Infinity
	PriorityString   = 10  // String primitives
	PriorityNumber   = 11  // Number primitives
	PriorityBoolean  = 12  // Boolean primitives
	PriorityRegExp   = 13  // RegExp constructor
	PriorityMath     = 100 // Math object
	PriorityJSON     = 101 // JSON object
	PriorityConsole  = 102 // Console object
)

// method installs a non-enumerable native method on obj.
func method(r *vm.Realm, obj *vm.Object, name string, arity int, fn vm.NativeFn) {
	obj.DefineHidden(name, r.NewNativeFunction(name, arity, fn))
}

// arg returns args[i], or undefined when the caller passed fewer arguments.
func arg(args []vm.Value, i int) vm.Value {
	if i < len(args) {
		return args[i]
	}
	return vm.Undefined
}

// toInteger converts v to a number and truncates it toward zero. NaN
// becomes 0.
func toInteger(r *vm.Realm, v vm.Value) (float64, error) {
	f, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, nil
	}
	return math.Trunc(f), nil
}

// relativeIndex resolves a possibly negative position against length, the
// way slice does.
func relativeIndex(f float64, length int) int {
	if f < 0 {
		f += float64(length)
		if f < 0 {
			return 0
		}
	}
	if f > float64(length) {
		return length
	}
	return int(f)
}

// clampIndex limits f to [0, length], the way substring does.
func clampIndex(f float64, length int) int {
	if f < 0 {
		return 0
	}
	if f > float64(length) {
		return length
	}
	return int(f)
}
