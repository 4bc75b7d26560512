// Package clamp bounds values to a closed range.
package clamp

import "golang.org/x/exp/constraints"

// To returns v limited to [lo, hi].
func To[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Uint8 converts v to a byte, saturating outside [0, 255].
func Uint8[T ~int | ~int32 | ~int64](v T) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
