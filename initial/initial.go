// Package initial provides initialization methods for UMAP embeddings.
// This includes spectral embedding and random initialization.
package initial

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/nozzle/stepumap/graph"
	"github.com/nozzle/stepumap/random"
)

// Method specifies the initialization method.
type Method string

const (
	// Spectral uses spectral embedding from the graph Laplacian
	Spectral Method = "spectral"
	// Random uses uniform coordinates in [-10, 10]
	Random Method = "random"
)

// ParseMethod resolves a method name.
func ParseMethod(name string) (Method, bool) {
	switch Method(name) {
	case Spectral, Random:
		return Method(name), true
	default:
		return "", false
	}
}

// MaxSpectralSize is the largest graph handled by the dense eigensolver.
// Larger graphs fall back to random initialization.
const MaxSpectralSize = 5000

// SpectralEmbedding computes a spectral embedding of the graph from the
// eigenvectors of its normalized Laplacian, scaled to [-10, 10]. It reports
// false when the graph is too large or too small, or the factorization fails.
func SpectralEmbedding(g *graph.CSRMatrix, dim int) ([][]float32, bool) {
	n := g.NRows
	if n == 0 || n > MaxSpectralSize || dim+1 >= n {
		return nil, false
	}

	// L = I - D^(-1/2) * A * D^(-1/2)
	degrees := make([]float64, n)
	for i := range n {
		start, end := g.Indptr[i], g.Indptr[i+1]
		for j := start; j < end; j++ {
			degrees[i] += float64(g.Data[j])
		}
	}

	dInvSqrt := make([]float64, n)
	for i, deg := range degrees {
		if deg > 0 {
			dInvSqrt[i] = 1.0 / math.Sqrt(deg)
		}
	}

	lData := make([]float64, n*n)
	for i := range n {
		lData[i*n+i] = 1.0

		start, end := g.Indptr[i], g.Indptr[i+1]
		for idx := start; idx < end; idx++ {
			j := int(g.Indices[idx])
			if j == i {
				continue
			}
			lData[i*n+j] = -float64(g.Data[idx]) * dInvSqrt[i] * dInvSqrt[j]
		}
	}

	// Symmetrize by averaging L[i,j] and L[j,i]
	for i := range n {
		for j := i + 1; j < n; j++ {
			avg := (lData[i*n+j] + lData[j*n+i]) / 2
			lData[i*n+j] = avg
			lData[j*n+i] = avg
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(mat.NewSymDense(n, lData), true); !ok {
		return nil, false
	}

	eigenvalues := eig.Values(nil)
	var eigenvectors mat.Dense
	eig.VectorsTo(&eigenvectors)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return eigenvalues[order[a]] < eigenvalues[order[b]]
	})

	// Skip the first (trivial) eigenvector and take the next dim ones
	result := make([][]float32, n)
	for i := range n {
		result[i] = make([]float32, dim)
		for d := range dim {
			result[i][d] = float32(eigenvectors.At(i, order[d+1]))
		}
	}

	scaleAndCenter(result)
	return result, true
}

// RandomEmbedding draws every coordinate uniformly from [-10, 10) using
// src, row by row. With a NumPy-compatible MT19937 source it reproduces
// numpy.random.RandomState(seed).uniform(-10, 10, (n, dim)).
func RandomEmbedding(n, dim int, src random.Source) [][]float32 {
	result := make([][]float32, n)
	for i := range n {
		result[i] = make([]float32, dim)
		for d := range dim {
			result[i][d] = float32(-10 + float64(20*src.Float64()))
		}
	}
	return result
}

// InitializeEmbedding creates an initial embedding based on the method.
// Spectral initialization falls back to random when it is not available.
func InitializeEmbedding(g *graph.CSRMatrix, n, dim int, method Method, src random.Source) [][]float32 {
	if method == Spectral && g != nil {
		if embedding, ok := SpectralEmbedding(g, dim); ok {
			return embedding
		}
	}
	return RandomEmbedding(n, dim, src)
}

// scaleAndCenter centers every dimension on zero and scales the
// embedding so that the largest absolute coordinate is 10.
func scaleAndCenter(embedding [][]float32) {
	if len(embedding) == 0 {
		return
	}

	n := len(embedding)
	dim := len(embedding[0])

	column := make([]float64, n)
	for d := range dim {
		for i := range n {
			column[i] = float64(embedding[i][d])
		}
		mean := floats.Sum(column) / float64(n)
		for i := range n {
			embedding[i][d] -= float32(mean)
		}
	}

	var maxAbs float32
	for i := range n {
		for d := range dim {
			maxAbs = max(maxAbs, float32(math.Abs(float64(embedding[i][d]))))
		}
	}

	if maxAbs > 0 {
		scale := 10.0 / maxAbs
		for i := range n {
			for d := range dim {
				embedding[i][d] *= scale
			}
		}
	}
}

// NormalizeCoordsTo01 normalizes embedding coordinates to [0, 1] range.
func NormalizeCoordsTo01(embedding [][]float32) {
	if len(embedding) == 0 {
		return
	}

	n := len(embedding)
	dim := len(embedding[0])

	mins := make([]float32, dim)
	maxs := make([]float32, dim)
	copy(mins, embedding[0])
	copy(maxs, embedding[0])

	for i := 1; i < n; i++ {
		for d := range dim {
			mins[d] = min(mins[d], embedding[i][d])
			maxs[d] = max(maxs[d], embedding[i][d])
		}
	}

	for d := range dim {
		spread := maxs[d] - mins[d]
		if spread > 0 {
			for i := range n {
				embedding[i][d] = (embedding[i][d] - mins[d]) / spread
			}
		}
	}
}
