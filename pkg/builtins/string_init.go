package builtins

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"bemjs/pkg/errors"
	"bemjs/pkg/vm"
)

type StringInitializer struct{}

func (s *StringInitializer) Name() string {
	return "String"
}

func (s *StringInitializer) Priority() int {
	return PriorityString
}

func (s *StringInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	proto := r.StringPrototype

	valueOf := func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		if !this.IsString() {
			return vm.Undefined, errors.NewTypeError("toString", "String.prototype.toString requires that 'this' be a String")
		}
		return this, nil
	}
	method(r, proto, "toString", 0, valueOf)
	method(r, proto, "valueOf", 0, valueOf)

	method(r, proto, "charAt", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		runes, err := thisRunes(r, this, "charAt")
		if err != nil {
			return vm.Undefined, err
		}
		i, err := toInteger(r, arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		if i < 0 || i >= float64(len(runes)) {
			return vm.NewString(""), nil
		}
		return vm.NewString(string(runes[int(i)])), nil
	})

	method(r, proto, "charCodeAt", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		runes, err := thisRunes(r, this, "charCodeAt")
		if err != nil {
			return vm.Undefined, err
		}
		i, err := toInteger(r, arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		if i < 0 || i >= float64(len(runes)) {
			return vm.NaN, nil
		}
		return vm.NumberValue(float64(runes[int(i)])), nil
	})

	method(r, proto, "substring", 2, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		runes, err := thisRunes(r, this, "substring")
		if err != nil {
			return vm.Undefined, err
		}
		n := len(runes)
		startF, err := toInteger(r, arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		start, end := clampIndex(startF, n), n
		if v := arg(args, 1); !v.IsUndefined() {
			endF, err := toInteger(r, v)
			if err != nil {
				return vm.Undefined, err
			}
			end = clampIndex(endF, n)
		}
		if start > end {
			start, end = end, start
		}
		return vm.NewString(string(runes[start:end])), nil
	})

	method(r, proto, "indexOf", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		runes, err := thisRunes(r, this, "indexOf")
		if err != nil {
			return vm.Undefined, err
		}
		search, err := r.ToString(arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		fromF, err := toInteger(r, arg(args, 1))
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NumberValue(float64(runeIndex(runes, []rune(search), clampIndex(fromF, len(runes))))), nil
	})

	method(r, proto, "toUpperCase", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		s, err := thisString(r, this, "toUpperCase")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(cases.Upper(language.Und).String(s)), nil
	})

	method(r, proto, "toLowerCase", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		s, err := thisString(r, this, "toLowerCase")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(cases.Lower(language.Und).String(s)), nil
	})

	method(r, proto, "normalize", 0, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		s, err := thisString(r, this, "normalize")
		if err != nil {
			return vm.Undefined, err
		}
		form := "NFC"
		if v := arg(args, 0); !v.IsUndefined() {
			if form, err = r.ToString(v); err != nil {
				return vm.Undefined, err
			}
		}
		var f norm.Form
		switch form {
		case "NFC":
			f = norm.NFC
		case "NFD":
			f = norm.NFD
		case "NFKC":
			f = norm.NFKC
		case "NFKD":
			f = norm.NFKD
		default:
			return vm.Undefined, errors.NewRangeError("The normalization form should be one of NFC, NFD, NFKC, NFKD.")
		}
		return vm.NewString(f.String(s)), nil
	})

	method(r, proto, "split", 2, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		s, err := thisString(r, this, "split")
		if err != nil {
			return vm.Undefined, err
		}
		limit := -1
		if v := arg(args, 1); !v.IsUndefined() {
			f, err := toInteger(r, v)
			if err != nil {
				return vm.Undefined, err
			}
			if f >= 0 {
				limit = int(min(f, vm.MaxArrayLength))
			}
		}
		parts, err := splitString(r, s, arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		if limit >= 0 && len(parts) > limit {
			parts = parts[:limit]
		}
		return r.NewArray(parts), nil
	})

	method(r, proto, "replace", 2, func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		s, err := thisString(r, this, "replace")
		if err != nil {
			return vm.Undefined, err
		}
		return replace(r, s, arg(args, 0), arg(args, 1))
	})

	construct := func(r *vm.Realm, args []vm.Value) (vm.Value, error) {
		if len(args) == 0 {
			return vm.NewString(""), nil
		}
		s, err := r.ToString(args[0])
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(s), nil
	}
	ctor := r.NewConstructor("String", 1, proto,
		func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
			return construct(r, args)
		},
		construct)

	return ctx.DefineGlobal("String", ctor)
}

func thisString(r *vm.Realm, this vm.Value, name string) (string, error) {
	if this.IsUndefined() {
		return "", errors.NewTypeError(name, "String.prototype.%s called on undefined", name)
	}
	return r.ToString(this)
}

func thisRunes(r *vm.Realm, this vm.Value, name string) ([]rune, error) {
	s, err := thisString(r, this, name)
	if err != nil {
		return nil, err
	}
	return []rune(s), nil
}

// runeIndex finds needle in haystack at or after from, in code points.
func runeIndex(haystack, needle []rune, from int) int {
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func splitString(r *vm.Realm, s string, sep vm.Value) ([]vm.Value, error) {
	if sep.IsUndefined() {
		return []vm.Value{vm.NewString(s)}, nil
	}
	if sep.IsRegExp() {
		return splitRegExp(sep.AsRegExp(), s)
	}
	sepStr, err := r.ToString(sep)
	if err != nil {
		return nil, err
	}
	if s == "" {
		if sepStr == "" {
			return nil, nil
		}
		return []vm.Value{vm.NewString("")}, nil
	}
	var pieces []string
	if sepStr == "" {
		for _, c := range s {
			pieces = append(pieces, string(c))
		}
	} else {
		pieces = strings.Split(s, sepStr)
	}
	out := make([]vm.Value, len(pieces))
	for i, p := range pieces {
		out[i] = vm.NewString(p)
	}
	return out, nil
}

// splitRegExp splits at each match, splicing captured groups into the
// result. Empty matches at the current position are skipped so that
// /(?:)/ splits between code points.
func splitRegExp(re *vm.RegExpObject, s string) ([]vm.Value, error) {
	runes := []rune(s)
	if len(runes) == 0 {
		m, err := re.Regexp().FindRunesMatchStartingAt(runes, 0)
		if err != nil {
			return nil, regexpError(err)
		}
		if m != nil {
			return nil, nil
		}
		return []vm.Value{vm.NewString("")}, nil
	}
	var out []vm.Value
	last := 0
	m, err := re.Regexp().FindRunesMatchStartingAt(runes, 0)
	for ; m != nil && err == nil; m, err = re.Regexp().FindNextMatch(m) {
		end := m.Index + m.Length
		if m.Length == 0 && (m.Index == last || m.Index >= len(runes)) {
			continue
		}
		if end > len(runes) {
			break
		}
		out = append(out, vm.NewString(string(runes[last:m.Index])))
		for _, g := range m.Groups()[1:] {
			out = append(out, groupValue(g))
		}
		last = end
	}
	if err != nil {
		return nil, regexpError(err)
	}
	return append(out, vm.NewString(string(runes[last:]))), nil
}

func groupValue(g regexp2.Group) vm.Value {
	if len(g.Captures) == 0 {
		return vm.Undefined
	}
	return vm.NewString(g.String())
}

func regexpError(err error) error {
	return errors.NewInternalError("regular expression: %v", err).CausedBy(err)
}

// match is one occurrence found by replace: its position in code points,
// the matched text and the capture groups (undefined when not captured).
type match struct {
	index  int
	text   string
	groups []vm.Value
}

func replace(r *vm.Realm, s string, pattern, replacement vm.Value) (vm.Value, error) {
	runes := []rune(s)
	var matches []match

	if pattern.IsRegExp() {
		re := pattern.AsRegExp()
		m, err := re.Regexp().FindRunesMatchStartingAt(runes, 0)
		for ; m != nil && err == nil; m, err = re.Regexp().FindNextMatch(m) {
			found := match{index: m.Index, text: m.String()}
			for _, g := range m.Groups()[1:] {
				found.groups = append(found.groups, groupValue(g))
			}
			matches = append(matches, found)
			if !re.Global() {
				break
			}
		}
		if err != nil {
			return vm.Undefined, regexpError(err)
		}
		if re.Global() {
			re.SetLastIndex(0)
		}
	} else {
		needle, err := r.ToString(pattern)
		if err != nil {
			return vm.Undefined, err
		}
		if i := runeIndex(runes, []rune(needle), 0); i >= 0 {
			matches = append(matches, match{index: i, text: needle})
		}
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(string(runes[last:m.index]))
		if replacement.IsCallable() {
			callArgs := append([]vm.Value{vm.NewString(m.text)}, m.groups...)
			callArgs = append(callArgs, vm.NumberValue(float64(m.index)), vm.NewString(s))
			result, err := r.Call(replacement, vm.Undefined, callArgs)
			if err != nil {
				return vm.Undefined, err
			}
			text, err := r.ToString(result)
			if err != nil {
				return vm.Undefined, err
			}
			b.WriteString(text)
		} else {
			template, err := r.ToString(replacement)
			if err != nil {
				return vm.Undefined, err
			}
			b.WriteString(expandReplacement(template, runes, m))
		}
		last = m.index + len([]rune(m.text))
	}
	b.WriteString(string(runes[last:]))
	return vm.NewString(b.String()), nil
}

// expandReplacement substitutes $$, $&, $`, $' and $n/$nn in template.
func expandReplacement(template string, input []rune, m match) string {
	if !strings.Contains(template, "$") {
		return template
	}
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 >= len(template) {
			b.WriteByte(c)
			continue
		}
		next := template[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '&':
			b.WriteString(m.text)
			i++
		case next == '`':
			b.WriteString(string(input[:m.index]))
			i++
		case next == '\'':
			b.WriteString(string(input[m.index+len([]rune(m.text)):]))
			i++
		case next >= '0' && next <= '9':
			// prefer a two-digit group when it exists
			n, width := 0, 0
			if i+2 < len(template) && template[i+2] >= '0' && template[i+2] <= '9' {
				if two, _ := strconv.Atoi(template[i+1 : i+3]); two >= 1 && two <= len(m.groups) {
					n, width = two, 2
				}
			}
			if width == 0 {
				n, width = int(next-'0'), 1
			}
			if n < 1 || n > len(m.groups) {
				b.WriteByte(c)
				continue
			}
			if g := m.groups[n-1]; !g.IsUndefined() {
				b.WriteString(g.AsString())
			}
			i += width
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
