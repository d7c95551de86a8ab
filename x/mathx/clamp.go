// Package mathx holds the small generic helpers used when narrowing sensor
// readings into the fixed-point fields carried on the bus.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. Reversed bounds are swapped first.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	return min(max(v, lo), hi)
}

// RoundDiv divides n by a positive d, rounding halves away from zero.
func RoundDiv[T constraints.Signed](n, d T) T {
	if n < 0 {
		return -((-n + d/2) / d)
	}
	return (n + d/2) / d
}
