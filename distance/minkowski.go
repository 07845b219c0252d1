package distance

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Euclidean computes the standard Euclidean (L2) distance.
// D(x, y) = sqrt(sum((x_i - y_i)^2))
func Euclidean(x, y []float32) float32 {
	if len(x) == 0 {
		return 0
	}
	return vek32.Distance(x, y)
}

// SquaredEuclidean computes the squared Euclidean distance (no sqrt).
// D(x, y) = sum((x_i - y_i)^2)
func SquaredEuclidean(x, y []float32) float32 {
	var sum float32
	for i := range x {
		d := x[i] - y[i]
		sum += d * d
	}
	return sum
}

// Manhattan computes the Manhattan (L1/taxicab) distance.
// D(x, y) = sum(|x_i - y_i|)
func Manhattan(x, y []float32) float32 {
	var sum float32
	for i := range x {
		sum += abs32(x[i] - y[i])
	}
	return sum
}

// Chebyshev computes the Chebyshev (L-infinity) distance.
// D(x, y) = max(|x_i - y_i|)
func Chebyshev(x, y []float32) float32 {
	var maxVal float32
	for i := range x {
		d := abs32(x[i] - y[i])
		if d > maxVal {
			maxVal = d
		}
	}
	return maxVal
}

// Minkowski returns the Minkowski distance of order p as a Kernel.
// D(x, y) = (sum(|x_i - y_i|^p))^(1/p)
func Minkowski(p float32) Kernel {
	switch p {
	case 1:
		return Func(Manhattan)
	case 2:
		return Func(Euclidean)
	}
	return Func(func(x, y []float32) float32 {
		var sum float64
		for i := range x {
			sum += math.Pow(float64(abs32(x[i]-y[i])), float64(p))
		}
		return float32(math.Pow(sum, 1/float64(p)))
	})
}
