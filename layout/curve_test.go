package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindABParams(t *testing.T) {
	// Reference values from scipy.optimize.curve_fit for spread=1, min_dist=0.1
	expectedA := 1.5769434605754993
	expectedB := 0.8950608781680347

	a, b := FindABParams(1.0, 0.1)

	t.Logf("a = %.15f, b = %.15f", a, b)

	if math.Abs(a-expectedA) > 0.01 {
		t.Errorf("Parameter 'a' too far from expected: got %.6f, expected %.6f", a, expectedA)
	}
	if math.Abs(b-expectedB) > 0.01 {
		t.Errorf("Parameter 'b' too far from expected: got %.6f, expected %.6f", b, expectedB)
	}
}

func TestFindABParamsPositive(t *testing.T) {
	for _, spread := range []float64{0.5, 1, 2, 5} {
		for _, minDist := range []float64{0, 0.001, 0.1, 0.5} {
			if minDist > spread {
				continue
			}
			a, b := FindABParams(spread, minDist)
			assert.Greater(t, a, 0.0, "spread=%v min_dist=%v", spread, minDist)
			assert.Greater(t, b, 0.0, "spread=%v min_dist=%v", spread, minDist)
		}
	}
}

func TestFindABParamsTighterWithLargerMinDist(t *testing.T) {
	// A larger plateau needs a slower initial decay, i.e. a smaller a.
	aSmall, _ := FindABParams(1.0, 0.05)
	aLarge, _ := FindABParams(1.0, 0.5)
	assert.Less(t, aLarge, aSmall)
}

func TestFitCurveRecoversExactParams(t *testing.T) {
	const wantA, wantB = 2.0, 0.7
	xs := make([]float64, 100)
	ys := make([]float64, 100)
	for i := range xs {
		xs[i] = float64(i) * 0.03
		ys[i] = 1 / (1 + wantA*math.Pow(xs[i], 2*wantB))
	}

	a, b, err := FitCurve(xs, ys, DefaultCurveFitConfig())
	require.NoError(t, err)
	assert.InDelta(t, wantA, a, 1e-3)
	assert.InDelta(t, wantB, b, 1e-3)
}

func TestFitCurveIterationCap(t *testing.T) {
	xs := []float64{0, 0.5, 1, 1.5, 2}
	ys := []float64{1, 0.8, 0.4, 0.2, 0.1}

	config := DefaultCurveFitConfig()
	config.MaxIterations = 1
	a, b, err := FitCurve(xs, ys, config)
	require.NoError(t, err)
	assert.Greater(t, a, 0.0)
	assert.Greater(t, b, 0.0)

	config.MaxIterations = 0
	a, b, err = FitCurve(xs, ys, config)
	require.NoError(t, err)
	assert.Equal(t, 1.0, a)
	assert.Equal(t, 1.0, b)
}

func TestFitCurveInvalidInput(t *testing.T) {
	_, _, err := FitCurve(nil, nil, DefaultCurveFitConfig())
	assert.ErrorIs(t, err, ErrBadParams)

	_, _, err = FitCurve([]float64{1, 2}, []float64{1}, DefaultCurveFitConfig())
	assert.ErrorIs(t, err, ErrBadParams)

	config := DefaultCurveFitConfig()
	config.A0 = -1
	_, _, err = FitCurve([]float64{1}, []float64{1}, config)
	assert.ErrorIs(t, err, ErrBadParams)
}
