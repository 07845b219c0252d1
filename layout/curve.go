package layout

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CurveFitConfig configures the Levenberg-Marquardt fit of the embedding
// kernel 1 / (1 + a * x^(2b)).
type CurveFitConfig struct {
	// A0, B0 are the starting parameters
	A0, B0 float64
	// Lambda is the initial damping factor
	Lambda float64
	// MaxIterations caps the number of accepted or rejected steps
	MaxIterations int
	// Tolerance stops the fit once an accepted step improves the cost by
	// less than this fraction
	Tolerance float64
}

// DefaultCurveFitConfig returns default configuration.
func DefaultCurveFitConfig() CurveFitConfig {
	return CurveFitConfig{
		A0:            1.0,
		B0:            1.0,
		Lambda:        1e-3,
		MaxIterations: 200,
		Tolerance:     1.49012e-8,
	}
}

// maxLambda abandons the fit when no step can reduce the cost.
const maxLambda = 1e10

// FindABParams finds parameters a, b such that 1 / (1 + a * d^(2b))
// approximates a curve that is 1 up to minDist and decays as
// exp(-(d - minDist) / spread) beyond it.
func FindABParams(spread, minDist float64) (a, b float64) {
	if spread <= 0 {
		spread = 1.0
	}
	if minDist < 0 {
		minDist = 0
	}

	const nSamples = 300
	xs := make([]float64, nSamples)
	ys := make([]float64, nSamples)
	floats.Span(xs, 0, 3*spread)
	for i, x := range xs {
		if x < minDist {
			ys[i] = 1.0
		} else {
			ys[i] = math.Exp(-(x - minDist) / spread)
		}
	}

	// The samples above are never empty and the start is positive.
	a, b, _ = FitCurve(xs, ys, DefaultCurveFitConfig())
	return a, b
}

// FitCurve fits 1 / (1 + a * x^(2b)) to (xs, ys) by Levenberg-Marquardt
// least squares. Steps that would make a or b non-positive are rejected.
// When the iteration cap is hit the best parameters found are returned.
func FitCurve(xs, ys []float64, config CurveFitConfig) (a, b float64, err error) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return 0, 0, fmt.Errorf("fit curve with %d x and %d y values: %w", len(xs), len(ys), ErrBadParams)
	}
	if config.A0 <= 0 || config.B0 <= 0 {
		return 0, 0, fmt.Errorf("fit curve from (%g, %g): %w", config.A0, config.B0, ErrBadParams)
	}

	n := len(xs)
	residuals := make([]float64, n)
	jacA := make([]float64, n)
	jacB := make([]float64, n)

	a, b = config.A0, config.B0
	cost := curveCost(xs, ys, a, b, residuals)
	lambda := config.Lambda
	if lambda <= 0 {
		lambda = 1e-3
	}

	normal := mat.NewDense(2, 2, nil)
	rhs := mat.NewVecDense(2, nil)
	var step mat.VecDense

	for range config.MaxIterations {
		curveJacobian(xs, a, b, jacA, jacB)

		jaa := floats.Dot(jacA, jacA)
		jab := floats.Dot(jacA, jacB)
		jbb := floats.Dot(jacB, jacB)
		rhs.SetVec(0, -floats.Dot(jacA, residuals))
		rhs.SetVec(1, -floats.Dot(jacB, residuals))

		normal.Set(0, 0, jaa*(1+lambda))
		normal.Set(0, 1, jab)
		normal.Set(1, 0, jab)
		normal.Set(1, 1, jbb*(1+lambda))

		if err := step.SolveVec(normal, rhs); err != nil {
			lambda *= 10
			if lambda > maxLambda {
				break
			}
			continue
		}

		nextA := a + step.AtVec(0)
		nextB := b + step.AtVec(1)
		if nextA <= 0 || nextB <= 0 || math.IsNaN(nextA) || math.IsNaN(nextB) {
			lambda *= 10
			if lambda > maxLambda {
				break
			}
			continue
		}

		nextCost := curveCost(xs, ys, nextA, nextB, residuals)
		if nextCost < cost {
			improvement := (cost - nextCost) / cost
			a, b, cost = nextA, nextB, nextCost
			lambda /= 10
			if improvement < config.Tolerance {
				break
			}
			continue
		}

		// Restore residuals for the current parameters
		curveCost(xs, ys, a, b, residuals)
		lambda *= 10
		if lambda > maxLambda {
			break
		}
	}

	return a, b, nil
}

// curveCost writes f(x) - y into residuals and returns half the sum of
// squared residuals.
func curveCost(xs, ys []float64, a, b float64, residuals []float64) float64 {
	for i, x := range xs {
		residuals[i] = 1/(1+a*math.Pow(x, 2*b)) - ys[i]
	}
	return floats.Dot(residuals, residuals) / 2
}

// curveJacobian writes the partial derivatives of f with respect to a and
// b. Both vanish at x = 0.
func curveJacobian(xs []float64, a, b float64, jacA, jacB []float64) {
	for i, x := range xs {
		if x <= 0 {
			jacA[i] = 0
			jacB[i] = 0
			continue
		}
		x2b := math.Pow(x, 2*b)
		denom := 1 + a*x2b
		denom2 := denom * denom
		jacA[i] = -x2b / denom2
		jacB[i] = -2 * a * x2b * math.Log(x) / denom2
	}
}
