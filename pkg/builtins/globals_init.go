package builtins

import (
	"math"
	"strconv"
	"strings"

	"bemjs/pkg/vm"
)

type GlobalsInitializer struct{}

func (g *GlobalsInitializer) Name() string {
	return "Globals"
}

func (g *GlobalsInitializer) Priority() int {
	return PriorityGlobals
}

func (g *GlobalsInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm

	// literal values are ordinary bindings, so scripts may shadow them
	constants := []struct {
		name  string
		value vm.Value
	}{
		{"true", vm.True},
		{"false", vm.False},
		{"NaN", vm.NaN},
		{"undefined", vm.Undefined},
		{"Infinity", vm.NumberValue(math.Inf(1))},
	}
	for _, c := range constants {
		if err := ctx.DefineGlobal(c.name, c.value); err != nil {
			return err
		}
	}

	if err := ctx.DefineGlobal("isNaN", r.NewNativeFunction("isNaN", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		f, err := r.ToNumber(arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		return vm.BooleanValue(math.IsNaN(f)), nil
	})); err != nil {
		return err
	}

	if err := ctx.DefineGlobal("parseFloat", r.NewNativeFunction("parseFloat", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		s, err := r.ToString(arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NumberValue(parseFloatPrefix(s)), nil
	})); err != nil {
		return err
	}

	return ctx.DefineGlobal("parseInt", r.NewNativeFunction("parseInt", 2, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		s, err := r.ToString(arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		radix := 0
		if !arg(args, 1).IsUndefined() {
			f, err := toInteger(r, args[1])
			if err != nil {
				return vm.Undefined, err
			}
			radix = int(f)
		}
		return vm.NumberValue(parseIntPrefix(s, radix)), nil
	}))
}

// parseIntPrefix parses the longest integer prefix of s in the given radix
// (0 means 10, or 16 with a 0x prefix).
func parseIntPrefix(s string, radix int) float64 {
	s = strings.TrimSpace(s)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	if radix == 0 || radix == 16 {
		if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			s = s[2:]
			radix = 16
		}
	}
	if radix == 0 {
		radix = 10
	}
	if radix < 2 || radix > 36 {
		return math.NaN()
	}
	end := 0
	for end < len(s) && digitValue(s[end]) < radix {
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	result := 0.0
	for _, c := range []byte(s[:end]) {
		result = result*float64(radix) + float64(digitValue(c))
	}
	return sign * result
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}

// parseFloatPrefix parses the longest decimal literal prefix of s.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	rest := strings.TrimLeft(s, "+-")
	if strings.HasPrefix(rest, "Infinity") {
		if strings.HasPrefix(s, "-") {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	// try successively shorter prefixes; literals are short
	for end := len(s); end > 0; end-- {
		prefix := s[:end]
		if strings.ContainsAny(prefix, "xXpP_nN") || strings.HasSuffix(prefix, "e") || strings.HasSuffix(prefix, "E") {
			continue
		}
		if f, err := strconv.ParseFloat(prefix, 64); err == nil {
			return f
		}
	}
	return math.NaN()
}
