package vm

import (
	"math"
	"strconv"

	"bemjs/pkg/errors"
)

// MaxArrayLength bounds the dense element storage. Assignments that would
// grow an array beyond it fail with a RangeError instead of allocating.
const MaxArrayLength = 1 << 24

// ArrayObject is an Object with dense indexed storage. Its length is the
// size of elements and is never stored as a property.
type ArrayObject struct {
	Object
	elements []Value
}

// Length returns the number of elements.
func (a *ArrayObject) Length() int {
	return len(a.elements)
}

// Elements returns the backing slice. Callers must not retain it across
// mutations of the array.
func (a *ArrayObject) Elements() []Value {
	return a.elements
}

// Get returns the element at index, or Undefined when out of range.
func (a *ArrayObject) Get(index int) Value {
	if index < 0 || index >= len(a.elements) {
		return Undefined
	}
	return a.elements[index]
}

// Set stores value at index, padding with Undefined when index is past the end.
func (a *ArrayObject) Set(index int, value Value) error {
	if index >= MaxArrayLength {
		return errors.NewRangeError("Invalid array length")
	}
	if index >= len(a.elements) {
		a.grow(index + 1)
	}
	a.elements[index] = value
	return nil
}

// Append adds values to the end.
func (a *ArrayObject) Append(values ...Value) {
	a.elements = append(a.elements, values...)
}

// Prepend inserts values at the front.
func (a *ArrayObject) Prepend(values ...Value) {
	elems := make([]Value, 0, len(values)+len(a.elements))
	elems = append(elems, values...)
	a.elements = append(elems, a.elements...)
}

// SetLength truncates or pads the array. Negative, fractional and
// non-numeric lengths are rejected.
func (a *ArrayObject) SetLength(length float64) error {
	if length < 0 || math.IsNaN(length) || math.IsInf(length, 0) || length != math.Trunc(length) || length >= MaxArrayLength {
		return errors.NewRangeError("Invalid array length")
	}
	n := int(length)
	if n < len(a.elements) {
		clear(a.elements[n:])
		a.elements = a.elements[:n]
	} else {
		a.grow(n)
	}
	return nil
}

func (a *ArrayObject) grow(n int) {
	for len(a.elements) < n {
		a.elements = append(a.elements, Undefined)
	}
}

// ArrayIndex reports whether key names an array element: a non-negative
// integer written in canonical decimal form. "1" is an index; "01", "-1"
// and "1.5" are ordinary property names.
func ArrayIndex(key string) (int, bool) {
	if key == "" || len(key) > 10 {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	if key[0] == '0' && len(key) > 1 {
		return 0, false
	}
	n, err := strconv.Atoi(key)
	if err != nil || n > math.MaxUint32-1 {
		return 0, false
	}
	return n, true
}
