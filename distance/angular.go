package distance

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Cosine computes the cosine distance.
// D(x, y) = 1 - (x . y) / (||x|| * ||y||)
func Cosine(x, y []float32) float32 {
	if len(x) == 0 {
		return 1.0
	}
	similarity := vek32.CosineSimilarity(x, y)
	// Zero vectors give NaN
	if math.IsNaN(float64(similarity)) {
		return 1.0
	}
	if similarity > 1.0 {
		similarity = 1.0
	} else if similarity < -1.0 {
		similarity = -1.0
	}
	return 1.0 - similarity
}

// Correlation computes the correlation distance (cosine distance of the
// mean-centered vectors).
func Correlation(x, y []float32) float32 {
	n := len(x)
	if n == 0 {
		return 0
	}
	muX := vek32.Sum(x) / float32(n)
	muY := vek32.Sum(y) / float32(n)

	var dot, normX, normY float32
	for i := range x {
		sx := x[i] - muX
		sy := y[i] - muY
		dot += sx * sy
		normX += sx * sx
		normY += sy * sy
	}
	if normX == 0 && normY == 0 {
		return 0
	}
	if dot == 0 {
		return 1
	}
	return 1 - dot/(sqrt32(normX)*sqrt32(normY))
}
