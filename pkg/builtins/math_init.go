package builtins

import (
	"math"

	"bemjs/pkg/vm"
)

type MathInitializer struct{}

func (m *MathInitializer) Name() string {
	return "Math"
}

func (m *MathInitializer) Priority() int {
	return PriorityMath // 100 - After core types
}

func (m *MathInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	mathObj := vm.NewObject(r.ObjectPrototype)

	// Add constants
	mathObj.DefineHidden("E", vm.NumberValue(math.E))
	mathObj.DefineHidden("LN2", vm.NumberValue(math.Ln2))
	mathObj.DefineHidden("LN10", vm.NumberValue(math.Ln10))
	mathObj.DefineHidden("PI", vm.NumberValue(math.Pi))
	mathObj.DefineHidden("SQRT2", vm.NumberValue(math.Sqrt2))

	unary := func(name string, fn func(float64) float64) {
		method(r, mathObj, name, 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
			x, err := r.ToNumber(arg(args, 0))
			if err != nil {
				return vm.Undefined, err
			}
			return vm.NumberValue(fn(x)), nil
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("round", jsRound)
	unary("sqrt", math.Sqrt)

	method(r, mathObj, "pow", 2, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		x, err := r.ToNumber(arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		y, err := r.ToNumber(arg(args, 1))
		if err != nil {
			return vm.Undefined, err
		}
		if math.IsNaN(y) || (math.Abs(x) == 1 && math.IsInf(y, 0)) {
			return vm.NaN, nil
		}
		return vm.NumberValue(math.Pow(x, y)), nil
	})

	extremum := func(name string, start float64, better func(candidate, best float64) bool) {
		method(r, mathObj, name, 2, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
			best := start
			for _, a := range args {
				x, err := r.ToNumber(a)
				if err != nil {
					return vm.Undefined, err
				}
				if math.IsNaN(x) {
					best = x
					continue
				}
				if !math.IsNaN(best) && better(x, best) {
					best = x
				}
			}
			return vm.NumberValue(best), nil
		})
	}
	extremum("max", math.Inf(-1), func(x, best float64) bool {
		return x > best || (x == 0 && best == 0 && !math.Signbit(x))
	})
	extremum("min", math.Inf(1), func(x, best float64) bool {
		return x < best || (x == 0 && best == 0 && math.Signbit(x))
	})

	method(r, mathObj, "random", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		return vm.NumberValue(r.Rand.Float64()), nil
	})

	return ctx.DefineGlobal("Math", mathObj.Value())
}

// jsRound rounds half up, toward +Infinity, unlike math.Round.
func jsRound(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x == math.Trunc(x) {
		return x
	}
	if x < 0 && x >= -0.5 {
		return math.Copysign(0, -1)
	}
	return math.Floor(x + 0.5)
}
