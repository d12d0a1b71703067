package vm

import (
	"math"
	"sort"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: adding a string and a number concatenates the number's string form
func TestPropertyStringNumberConcatenation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("s + n == s + NumberToString(n)", prop.ForAll(
		func(s string, n int) bool {
			r := NewRealm()
			got, err := r.Add(NewString(s), NumberValue(float64(n)))
			if err != nil {
				return false
			}
			return got.IsString() && got.AsString() == s+strconv.Itoa(n)
		},
		gen.AlphaString(),
		gen.IntRange(-100000, 100000),
	))

	properties.Property("undefined + n is NaN", prop.ForAll(
		func(n float64) bool {
			r := NewRealm()
			got, err := r.Add(Undefined, NumberValue(n))
			return err == nil && got.IsNumber() && math.IsNaN(got.AsFloat())
		},
		gen.Float64(),
	))

	properties.TestingRun(t)
}

// Property: appending k elements grows an array by exactly k
func TestPropertyArrayAppendLength(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("length after append is length before plus k", prop.ForAll(
		func(initial []int, k int) bool {
			r := NewRealm()
			elems := make([]Value, len(initial))
			for i, n := range initial {
				elems[i] = NumberValue(float64(n))
			}
			arr := r.NewArray(elems).AsArray()
			before := arr.Length()
			for i := 0; i < k; i++ {
				arr.Append(NumberValue(float64(i)))
			}
			length, err := r.Get(arr.Value(), "length")
			return err == nil && int(length.AsFloat()) == before+k
		},
		gen.SliceOf(gen.Int()),
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}

// Property: a key set only on a prototype is visible through every descendant
func TestPropertyPrototypeLookup(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("inherited lookup finds the nearest definition", prop.ForAll(
		func(key string, depth int, value int) bool {
			root := NewObject(nil)
			root.SetOwn(key, NumberValue(float64(value)))
			obj := root
			for i := 0; i < depth; i++ {
				obj = NewObject(obj)
			}
			v, ok := obj.Lookup(key)
			if !ok || v.AsFloat() != float64(value) {
				return false
			}
			return depth == 0 || !obj.HasOwn(key)
		},
		gen.Identifier(),
		gen.IntRange(0, 20),
		gen.Int(),
	))

	properties.TestingRun(t)
}

// Property: for-in over an object visits its keys in sorted order
func TestPropertyForInSorted(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("ForInKeys is the sorted set of own keys", prop.ForAll(
		func(keys []string) bool {
			obj := NewObject(nil)
			seen := map[string]bool{}
			var unique []string
			for _, k := range keys {
				obj.SetOwn(k, True)
				if !seen[k] {
					seen[k] = true
					unique = append(unique, k)
				}
			}
			got := ForInKeys(obj.Value())
			if len(got) != len(unique) {
				return false
			}
			sort.Strings(unique)
			for i := range got {
				if got[i] != unique[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}

// Property: x++ yields the old value and x ends one greater; ++x yields the new one
func TestPropertyUpdate(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("postfix and prefix increment", prop.ForAll(
		func(n int, postfix bool) bool {
			r := NewRealm()
			scope := NewScope(nil, true)
			scope.Bind("x", NumberValue(float64(n)))
			got, err := r.Update(ScopeReference{Scope: scope, Name: "x"}, 1, postfix)
			if err != nil {
				return false
			}
			after, _ := scope.Get("x")
			if after.AsFloat() != float64(n+1) {
				return false
			}
			if postfix {
				return got.AsFloat() == float64(n)
			}
			return got.AsFloat() == float64(n+1)
		},
		gen.IntRange(-1000000, 1000000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
