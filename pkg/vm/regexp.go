package vm

import (
	"fmt"
	"math"
	"strings"

	"github.com/dlclark/regexp2"
)

// RegExpObject is a JavaScript RegExp backed by regexp2 in ECMAScript mode.
// Match positions are code point offsets, the same unit string indexing uses.
type RegExpObject struct {
	Object
	compiled   *regexp2.Regexp
	source     string
	flags      string
	global     bool
	ignoreCase bool
	multiline  bool
}

// CompileRegExp validates flags and compiles pattern. Only g, i and m are
// supported, each at most once.
func CompileRegExp(pattern, flags string) (*regexp2.Regexp, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	seen := map[rune]bool{}
	for _, f := range flags {
		if seen[f] {
			return nil, fmt.Errorf("duplicate regular expression flag %q", f)
		}
		seen[f] = true
		switch f {
		case 'g':
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		default:
			return nil, fmt.Errorf("unsupported regular expression flag %q", f)
		}
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression /%s/: %w", pattern, err)
	}
	return re, nil
}

// NewRegExp creates a RegExp object. Errors describe the bad flag or pattern.
func (r *Realm) NewRegExp(pattern, flags string) (Value, error) {
	compiled, err := CompileRegExp(pattern, flags)
	if err != nil {
		return Undefined, err
	}
	re := &RegExpObject{
		Object:     *NewObject(r.RegExpPrototype),
		compiled:   compiled,
		source:     pattern,
		flags:      flags,
		global:     strings.ContainsRune(flags, 'g'),
		ignoreCase: strings.ContainsRune(flags, 'i'),
		multiline:  strings.ContainsRune(flags, 'm'),
	}
	re.DefineHidden("source", NewString(pattern))
	re.DefineHidden("global", BooleanValue(re.global))
	re.DefineHidden("ignoreCase", BooleanValue(re.ignoreCase))
	re.DefineHidden("multiline", BooleanValue(re.multiline))
	re.DefineHidden("lastIndex", NumberValue(0))
	return re.Value(), nil
}

func (re *RegExpObject) Source() string { return re.source }
func (re *RegExpObject) Flags() string  { return re.flags }
func (re *RegExpObject) Global() bool   { return re.global }

// Regexp exposes the compiled matcher.
func (re *RegExpObject) Regexp() *regexp2.Regexp { return re.compiled }

func (re *RegExpObject) String() string {
	return "/" + re.source + "/" + re.flags
}

// LastIndex returns the lastIndex property as a code point offset.
func (re *RegExpObject) LastIndex() int {
	v, _ := re.GetOwn("lastIndex")
	f := v.ToFloat()
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return int(f)
}

func (re *RegExpObject) SetLastIndex(i int) {
	re.SetOwn("lastIndex", NumberValue(float64(i)))
}

// Exec runs the expression against input the way RegExp.prototype.exec
// does: global expressions start at lastIndex and advance it. It returns
// nil when nothing matched.
func (re *RegExpObject) Exec(input string) (*regexp2.Match, error) {
	start := 0
	if re.global {
		start = re.LastIndex()
		if start > stringLength(input) {
			re.SetLastIndex(0)
			return nil, nil
		}
	}
	m, err := re.compiled.FindRunesMatchStartingAt([]rune(input), start)
	if err != nil {
		return nil, err
	}
	if m == nil {
		if re.global {
			re.SetLastIndex(0)
		}
		return nil, nil
	}
	if re.global {
		end := m.Index + m.Length
		if m.Length == 0 {
			end++
		}
		re.SetLastIndex(end)
	}
	return m, nil
}
