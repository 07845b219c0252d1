package initial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nozzle/stepumap/graph"
	"github.com/nozzle/stepumap/random"
)

func TestRandomEmbeddingVsNumpy(t *testing.T) {
	// Expected values from Python:
	// np.random.RandomState(42).uniform(-10, 10, (15, 2))
	expected := [][]float32{
		{-2.5091977, 9.014286},
		{4.6398787, 1.9731697},
		{-6.879627, -6.88011},
		{-8.838327, 7.323523},
		{2.0223002, 4.1614513},
		{-9.58831, 9.398197},
		{6.648853, -5.7532177},
		{-6.3635006, -6.3319097},
		{-3.9151552, 0.49512863},
		{-1.3610996, -4.1754174},
		{2.237058, -7.2101226},
		{-4.157107, -2.672763},
		{-0.8786003, 5.7035193},
		{-6.0065246, 0.28468877},
		{1.8482914, -9.0709915},
	}

	embedding := RandomEmbedding(15, 2, random.NewMT19937(42))

	for i := range expected {
		for d := range 2 {
			if math.Abs(float64(embedding[i][d]-expected[i][d])) > 1e-5 {
				t.Errorf("Mismatch at [%d][%d]: got %.6f, expected %.6f", i, d, embedding[i][d], expected[i][d])
			}
		}
	}
}

func TestParseMethod(t *testing.T) {
	m, ok := ParseMethod("spectral")
	assert.True(t, ok)
	assert.Equal(t, Spectral, m)

	m, ok = ParseMethod("random")
	assert.True(t, ok)
	assert.Equal(t, Random, m)

	_, ok = ParseMethod("pca")
	assert.False(t, ok)
}

// twoClusters builds two dense cliques joined by one weak edge.
func twoClusters(size int) *graph.CSRMatrix {
	n := 2 * size
	var rows, cols []int32
	var vals []float32
	add := func(i, j int, w float32) {
		rows = append(rows, int32(i), int32(j))
		cols = append(cols, int32(j), int32(i))
		vals = append(vals, w, w)
	}
	for c := range 2 {
		for i := range size {
			for j := i + 1; j < size; j++ {
				add(c*size+i, c*size+j, 1)
			}
		}
	}
	add(0, size, 0.01)
	return graph.NewSparseMatrix(rows, cols, vals, n, n).ToCSR()
}

func TestSpectralEmbeddingSeparatesClusters(t *testing.T) {
	const size = 10
	embedding, ok := SpectralEmbedding(twoClusters(size), 2)
	require.True(t, ok)
	require.Len(t, embedding, 2*size)

	// The Fiedler vector puts the two cliques on opposite sides.
	sign := func(v float32) bool { return v > 0 }
	for i := 1; i < size; i++ {
		assert.Equal(t, sign(embedding[0][0]), sign(embedding[i][0]), "point %d", i)
		assert.Equal(t, sign(embedding[size][0]), sign(embedding[size+i][0]), "point %d", size+i)
	}
	assert.NotEqual(t, sign(embedding[0][0]), sign(embedding[size][0]))

	var maxAbs float64
	for _, row := range embedding {
		for _, v := range row {
			maxAbs = math.Max(maxAbs, math.Abs(float64(v)))
		}
	}
	assert.InDelta(t, 10, maxAbs, 1e-4)
}

func TestSpectralEmbeddingUnavailable(t *testing.T) {
	_, ok := SpectralEmbedding(&graph.CSRMatrix{}, 2)
	assert.False(t, ok, "empty graph")

	_, ok = SpectralEmbedding(twoClusters(1), 2)
	assert.False(t, ok, "fewer points than dimensions")

	_, ok = SpectralEmbedding(&graph.CSRMatrix{NRows: MaxSpectralSize + 1, NCols: MaxSpectralSize + 1}, 2)
	assert.False(t, ok, "too large")
}

func TestInitializeEmbeddingFallback(t *testing.T) {
	g := twoClusters(1)
	got := InitializeEmbedding(g, 2, 2, Spectral, random.NewMT19937(42))
	want := RandomEmbedding(2, 2, random.NewMT19937(42))
	assert.Equal(t, want, got)

	got = InitializeEmbedding(twoClusters(5), 10, 2, Random, random.NewMT19937(7))
	assert.Equal(t, RandomEmbedding(10, 2, random.NewMT19937(7)), got)
}

func TestScaleAndCenter(t *testing.T) {
	embedding := [][]float32{{1, 2}, {3, 6}, {5, 10}}
	scaleAndCenter(embedding)

	for d := range 2 {
		var sum float32
		for _, row := range embedding {
			sum += row[d]
		}
		assert.InDelta(t, 0, sum, 1e-5)
	}
	assert.InDelta(t, 10, embedding[2][1], 1e-5)
	assert.InDelta(t, -10, embedding[0][1], 1e-5)
}

func TestNormalizeCoordsTo01(t *testing.T) {
	embedding := [][]float32{{-2, 5}, {2, 5}, {0, 5}}
	NormalizeCoordsTo01(embedding)

	assert.Equal(t, [][]float32{{0, 5}, {1, 5}, {0.5, 5}}, embedding)
}
