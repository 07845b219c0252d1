// Package graph provides the sparse matrix containers and the fuzzy
// simplicial set construction that turns a k-NN table into the weighted
// graph the layout optimizer works on.
package graph

import (
	"math"

	"github.com/nozzle/stepumap/internal/parallel"
)

// FuzzySimplicialSetConfig configures fuzzy simplicial set construction.
type FuzzySimplicialSetConfig struct {
	// LocalConnectivity is the number of nearest neighbors assumed to be
	// fully connected; it sets rho.
	LocalConnectivity float64
	// Bandwidth scales the target membership sum log2(k).
	Bandwidth float64
	// SetOpMixRatio controls the blend between fuzzy set union and intersection
	// 0.0 = pure intersection, 1.0 = pure union
	SetOpMixRatio float64
	// ApplySetOperations whether to apply fuzzy set operations
	ApplySetOperations bool
	// NumWorkers for parallel processing (0 = auto)
	NumWorkers int
}

// DefaultFuzzySimplicialSetConfig returns default configuration.
func DefaultFuzzySimplicialSetConfig() FuzzySimplicialSetConfig {
	return FuzzySimplicialSetConfig{
		LocalConnectivity:  1.0,
		Bandwidth:          1.0,
		SetOpMixRatio:      1.0,
		ApplySetOperations: true,
		NumWorkers:         0,
	}
}

// FuzzySimplicialSet constructs a fuzzy simplicial set from k-NN data.
//
// knnIndices and knnDistances hold, for each point, its neighbors sorted by
// ascending distance, excluding the point itself. Negative indices mark
// missing neighbors and are skipped. The result is the symmetric graph
// mix*(A + Aᵗ - A∘Aᵗ) + (1-mix)*(A∘Aᵗ), where A holds the directed
// membership strengths.
func FuzzySimplicialSet(
	knnIndices [][]int32,
	knnDistances [][]float32,
	config FuzzySimplicialSetConfig,
) *SparseMatrix {
	n := len(knnIndices)
	if n == 0 {
		return newEmpty(0, 0, 0)
	}

	sigmas, rhos := SmoothKNNDist(knnDistances, config)

	// Directed memberships
	a := newEmpty(n, n, n*len(knnIndices[0]))
	for i := range n {
		for j, neighbor := range knnIndices[i] {
			if neighbor < 0 || neighbor == int32(i) {
				continue
			}
			a.Set(i, int(neighbor), membership(knnDistances[i][j], rhos[i], sigmas[i]))
		}
	}

	if !config.ApplySetOperations {
		return a
	}

	transpose := a.Transpose()
	product := a.PairwiseMultiply(transpose)
	union := a.Add(transpose).Subtract(product)

	mix := float32(config.SetOpMixRatio)
	if mix == 1 {
		return union.EliminateZeros()
	}
	return union.
		Map(func(v float32, _, _ int) float32 { return mix * v }).
		Add(product.Map(func(v float32, _, _ int) float32 { return (1 - mix) * v })).
		EliminateZeros()
}

// membership is the strength of the directed edge at distance dist.
func membership(dist, rho, sigma float32) float32 {
	if dist-rho <= 0 || sigma == 0 {
		return 1.0
	}
	return float32(math.Exp(-float64(dist-rho) / float64(sigma)))
}

// SmoothKNNDist computes sigma (bandwidth) and rho (distance to the nearest
// neighbor) for every point, in parallel.
func SmoothKNNDist(knnDistances [][]float32, config FuzzySimplicialSetConfig) (sigmas, rhos []float32) {
	n := len(knnDistances)
	sigmas = make([]float32, n)
	rhos = make([]float32, n)

	var total float64
	var count int
	for _, row := range knnDistances {
		for _, d := range row {
			total += float64(d)
			count++
		}
	}
	var meanAll float64
	if count > 0 {
		meanAll = total / float64(count)
	}

	bandwidth := config.Bandwidth
	if bandwidth <= 0 {
		bandwidth = 1.0
	}

	parallel.ParallelFor(0, n, parallel.Resolve(config.NumWorkers), func(i int) {
		sigmas[i], rhos[i] = smoothKNNDist(
			knnDistances[i],
			float64(len(knnDistances[i])),
			config.LocalConnectivity,
			bandwidth,
			meanAll,
		)
	})
	return sigmas, rhos
}

// smoothKNNDist solves sigma and rho for a single point.
//
// rho is the distance to the LocalConnectivity-th non-zero neighbor
// (interpolated for fractional values). sigma is found by binary search so
// that sum_j exp(-max(0, d_j - rho) / sigma) = log2(k) * bandwidth. When the
// search does not converge within nIter steps the last midpoint is used.
func smoothKNNDist(distances []float32, k, localConnectivity, bandwidth, meanAll float64) (float32, float32) {
	const (
		nIter           = 64   // Binary search iterations
		smoothTolerance = 1e-5 // Convergence tolerance
		minKDistScale   = 1e-3 // Minimum sigma as fraction of mean distance
	)

	nonZeroDists := make([]float64, 0, len(distances))
	var meanDist float64
	for _, d := range distances {
		if d > 0 {
			nonZeroDists = append(nonZeroDists, float64(d))
		}
		meanDist += float64(d)
	}
	if len(distances) > 0 {
		meanDist /= float64(len(distances))
	}

	var rho float64
	index := int(math.Floor(localConnectivity))
	interpolation := localConnectivity - float64(index)

	if len(nonZeroDists) >= index && len(nonZeroDists) > 0 {
		if index > 0 {
			rho = nonZeroDists[index-1]
			if interpolation > smoothTolerance && index < len(nonZeroDists) {
				rho += interpolation * (nonZeroDists[index] - nonZeroDists[index-1])
			}
		} else {
			rho = interpolation * nonZeroDists[0]
		}
	} else if len(nonZeroDists) > 0 {
		rho = nonZeroDists[len(nonZeroDists)-1]
	}

	target := math.Log2(k) * bandwidth

	lo := 0.0
	hi := math.Inf(1)
	mid := 1.0

	for range nIter {
		sum := 0.0
		for _, d := range distances {
			gap := float64(d) - rho
			if gap > 0 {
				sum += math.Exp(-gap / mid)
			} else {
				sum += 1.0
			}
		}

		if math.Abs(sum-target) < smoothTolerance {
			break
		}

		if sum > target {
			hi = mid
			mid = (lo + hi) / 2.0
		} else {
			lo = mid
			if math.IsInf(hi, 1) {
				mid *= 2
			} else {
				mid = (lo + hi) / 2.0
			}
		}
	}

	sigma := mid
	if rho > 0 {
		sigma = max(sigma, minKDistScale*meanDist)
	} else {
		sigma = max(sigma, minKDistScale*meanAll)
	}

	return float32(sigma), float32(rho)
}
