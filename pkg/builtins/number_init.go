package builtins

import (
	"math"
	"strconv"
	"strings"

	"bemjs/pkg/errors"
	"bemjs/pkg/vm"
)

type NumberInitializer struct{}

func (n *NumberInitializer) Name() string {
	return "Number"
}

func (n *NumberInitializer) Priority() int {
	return PriorityNumber
}

func (n *NumberInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	proto := r.NumberPrototype

	method(r, proto, "toString", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		x, err := thisNumber(this, "toString")
		if err != nil {
			return vm.Undefined, err
		}
		radix := 10
		if v := arg(args, 0); !v.IsUndefined() {
			f, err := toInteger(r, v)
			if err != nil {
				return vm.Undefined, err
			}
			if f < 2 || f > 36 {
				return vm.Undefined, errors.NewRangeError("toString() radix must be between 2 and 36")
			}
			radix = int(f)
		}
		return vm.NewString(formatRadix(x, radix)), nil
	})

	method(r, proto, "toFixed", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		x, err := thisNumber(this, "toFixed")
		if err != nil {
			return vm.Undefined, err
		}
		digits, err := toInteger(r, arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		if digits < 0 || digits > 100 {
			return vm.Undefined, errors.NewRangeError("toFixed() digits argument must be between 0 and 100")
		}
		return vm.NewString(toFixed(x, int(digits))), nil
	})

	method(r, proto, "valueOf", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		x, err := thisNumber(this, "valueOf")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NumberValue(x), nil
	})

	construct := func(r *vm.Realm, args []vm.Value) (vm.Value, error) {
		if len(args) == 0 {
			return vm.NumberValue(0), nil
		}
		f, err := r.ToNumber(args[0])
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NumberValue(f), nil
	}
	ctor := r.NewConstructor("Number", 1, proto,
		func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
			return construct(r, args)
		},
		construct)

	ctorObj := ctor.AsObject()
	ctorObj.DefineHidden("NaN", vm.NaN)
	ctorObj.DefineHidden("POSITIVE_INFINITY", vm.NumberValue(math.Inf(1)))
	ctorObj.DefineHidden("NEGATIVE_INFINITY", vm.NumberValue(math.Inf(-1)))
	ctorObj.DefineHidden("MAX_VALUE", vm.NumberValue(math.MaxFloat64))
	ctorObj.DefineHidden("MIN_VALUE", vm.NumberValue(math.SmallestNonzeroFloat64))

	return ctx.DefineGlobal("Number", ctor)
}

func thisNumber(this vm.Value, name string) (float64, error) {
	if !this.IsNumber() {
		return 0, errors.NewTypeError(name, "Number.prototype.%s requires that 'this' be a Number", name)
	}
	return this.AsFloat(), nil
}

// formatRadix renders x in the given base. Fractions are written with up
// to 52 digits, enough to exhaust a double's mantissa in base 2.
func formatRadix(x float64, radix int) string {
	if radix == 10 || math.IsNaN(x) || math.IsInf(x, 0) {
		return vm.NumberToString(x)
	}
	neg := x < 0
	x = math.Abs(x)
	intPart := math.Floor(x)
	frac := x - intPart

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if intPart < 1<<63 {
		b.WriteString(strconv.FormatUint(uint64(intPart), radix))
	} else {
		var digits []byte
		for intPart >= 1 {
			d := math.Mod(intPart, float64(radix))
			digits = append(digits, strconv.FormatInt(int64(d), radix)[0])
			intPart = math.Floor(intPart / float64(radix))
		}
		for i := len(digits) - 1; i >= 0; i-- {
			b.WriteByte(digits[i])
		}
	}
	if frac > 0 {
		b.WriteByte('.')
		for i := 0; i < 52 && frac > 0; i++ {
			frac *= float64(radix)
			d := int(frac)
			b.WriteString(strconv.FormatInt(int64(d), radix))
			frac -= float64(d)
		}
	}
	return b.String()
}

// toFixed formats x with digits fraction digits. A value exactly halfway
// between two candidates rounds away from zero.
func toFixed(x float64, digits int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= 1e21 {
		return vm.NumberToString(x)
	}
	neg := x < 0
	// the exact decimal expansion of a double fits in 1074 fraction digits
	exact := strconv.FormatFloat(math.Abs(x), 'f', 1074, 64)
	dot := strings.IndexByte(exact, '.')
	intDigits := []byte(exact[:dot])
	fracDigits := []byte(exact[dot+1:])

	kept := append(intDigits, fracDigits[:digits]...)
	if fracDigits[digits] >= '5' {
		i := len(kept) - 1
		for ; i >= 0; i-- {
			if kept[i] == '9' {
				kept[i] = '0'
				continue
			}
			kept[i]++
			break
		}
		if i < 0 {
			kept = append([]byte{'1'}, kept...)
		}
	}
	intLen := len(kept) - digits
	s := string(kept[:intLen])
	if digits > 0 {
		s += "." + string(kept[intLen:])
	}
	if neg {
		s = "-" + s
	}
	return s
}
