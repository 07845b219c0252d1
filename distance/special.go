package distance

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Canberra computes the Canberra distance.
// D(x, y) = sum(|x_i - y_i| / (|x_i| + |y_i|))
func Canberra(x, y []float32) float32 {
	var sum float32
	for i := range x {
		denom := abs32(x[i]) + abs32(y[i])
		if denom > 0 {
			sum += abs32(x[i]-y[i]) / denom
		}
	}
	return sum
}

// BrayCurtis computes the Bray-Curtis distance.
// D(x, y) = sum(|x_i - y_i|) / sum(|x_i + y_i|)
func BrayCurtis(x, y []float32) float32 {
	var numerator, denominator float32
	for i := range x {
		numerator += abs32(x[i] - y[i])
		denominator += abs32(x[i] + y[i])
	}
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// Hellinger computes the Hellinger distance between two non-negative
// (probability-like) vectors.
func Hellinger(x, y []float32) float32 {
	if len(x) == 0 {
		return 0
	}
	var result float32
	for i := range x {
		result += sqrt32(x[i] * y[i])
	}
	l1X := vek32.Sum(x)
	l1Y := vek32.Sum(y)
	switch {
	case l1X == 0 && l1Y == 0:
		return 0
	case l1X == 0 || l1Y == 0:
		return 1
	}
	v := 1 - result/sqrt32(l1X*l1Y)
	if v < 0 {
		return 0
	}
	return sqrt32(v)
}

// Haversine computes the great-circle distance on the unit sphere between
// two (latitude, longitude) points given in radians. Other dimensions give 0.
func Haversine(x, y []float32) float32 {
	if len(x) != 2 || len(y) != 2 {
		return 0
	}
	sinLat := math.Sin(float64(x[0]-y[0]) / 2)
	sinLon := math.Sin(float64(x[1]-y[1]) / 2)
	a := sinLat*sinLat + math.Cos(float64(x[0]))*math.Cos(float64(y[0]))*sinLon*sinLon
	a = min(max(a, 0), 1)
	return float32(2 * math.Asin(math.Sqrt(a)))
}
