// Package fmath provides float32 math utilities for the optimizer.
package fmath

import "math"

// ClipValue bounds every per-coordinate gradient step.
const ClipValue = 4.0

// Clip clamps a value to the range [-ClipValue, ClipValue].
func Clip(val float32) float32 {
	if val > ClipValue {
		return ClipValue
	}
	if val < -ClipValue {
		return -ClipValue
	}
	return val
}

// Pow32 computes x^y for float32.
func Pow32(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

// RDist returns the squared Euclidean distance between a and b, the
// "reduced" distance the optimizer works with. Each product is rounded
// before accumulation so results do not depend on FMA availability.
func RDist(a, b []float32) float32 {
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		sum += float32(diff * diff)
	}
	return sum
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
