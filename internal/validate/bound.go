// SPDX-License-Identifier: MIT
package validate

import (
	"fmt"
	"strconv"
)

// Bound is a numeric interval. Each side is optional and may be open or closed.
type Bound struct {
	Min, Max         float64
	HasMin, HasMax   bool
	MinOpen, MaxOpen bool
}

// Any accepts every finite number.
func Any() Bound { return Bound{} }

// AtLeast is [min, +inf).
func AtLeast(min float64) Bound { return Bound{Min: min, HasMin: true} }

// Above is (min, +inf).
func Above(min float64) Bound { return Bound{Min: min, HasMin: true, MinOpen: true} }

// Closed is [min, max].
func Closed(min, max float64) Bound {
	return Bound{Min: min, Max: max, HasMin: true, HasMax: true}
}

// LeftOpen is (min, max].
func LeftOpen(min, max float64) Bound {
	return Bound{Min: min, Max: max, HasMin: true, HasMax: true, MinOpen: true}
}

// Contains reports whether x lies in the interval.
func (b Bound) Contains(x float64) bool {
	if b.HasMin {
		if b.MinOpen && x <= b.Min {
			return false
		}
		if !b.MinOpen && x < b.Min {
			return false
		}
	}
	if b.HasMax {
		if b.MaxOpen && x >= b.Max {
			return false
		}
		if !b.MaxOpen && x > b.Max {
			return false
		}
	}
	return true
}

// String renders the interval, e.g. "> 1", ">= 0" or "in (0, 1]".
func (b Bound) String() string {
	f := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
	switch {
	case b.HasMin && b.HasMax:
		lo, hi := "[", "]"
		if b.MinOpen {
			lo = "("
		}
		if b.MaxOpen {
			hi = ")"
		}
		return fmt.Sprintf("in %s%s, %s%s", lo, f(b.Min), f(b.Max), hi)
	case b.HasMin && b.MinOpen:
		return "> " + f(b.Min)
	case b.HasMin:
		return ">= " + f(b.Min)
	case b.HasMax && b.MaxOpen:
		return "< " + f(b.Max)
	case b.HasMax:
		return "<= " + f(b.Max)
	default:
		return "any finite number"
	}
}
