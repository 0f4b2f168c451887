package util

import "math"

// SaturatingAdd returns a+b, clamped at math.MaxUint64 instead of wrapping.
func SaturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
