package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzySimplicialSet(t *testing.T) {
	// Create simple k-NN data
	knnIndices := [][]int32{
		{1, 2, 3},
		{0, 2, 3},
		{0, 1, 3},
		{0, 1, 2},
	}
	knnDistances := [][]float32{
		{1.0, 2.0, 3.0},
		{1.0, 1.5, 2.5},
		{1.5, 2.0, 2.0},
		{2.0, 2.5, 3.0},
	}

	config := DefaultFuzzySimplicialSetConfig()
	graph := FuzzySimplicialSet(knnIndices, knnDistances, config)

	rows, cols := graph.Dims()
	if rows != 4 || cols != 4 {
		t.Errorf("Expected 4x4 graph, got %dx%d", rows, cols)
	}

	if graph.NNZ() == 0 {
		t.Fatal("Graph has no edges")
	}

	// Symmetric after set operations
	for _, e := range graph.Entries() {
		reverse := graph.Get(int(e.Col), int(e.Row), -1)
		if reverse != e.Value {
			t.Errorf("Edge (%d,%d) = %f, reverse = %f", e.Row, e.Col, e.Value, reverse)
		}
		if e.Value <= 0 || e.Value > 1 {
			t.Errorf("Edge (%d,%d) weight %f outside (0, 1]", e.Row, e.Col, e.Value)
		}
		if e.Row == e.Col {
			t.Errorf("Self loop at %d", e.Row)
		}
	}
}

func TestFuzzySimplicialSetNearestIsFull(t *testing.T) {
	knnIndices := [][]int32{{1, 2}, {0, 2}, {1, 0}}
	knnDistances := [][]float32{{1, 3}, {1, 2}, {2, 3}}

	config := DefaultFuzzySimplicialSetConfig()
	config.ApplySetOperations = false
	graph := FuzzySimplicialSet(knnIndices, knnDistances, config)

	// The first neighbor sits at rho, so its membership is exactly 1.
	for i, row := range knnIndices {
		assert.Equal(t, float32(1), graph.Get(i, int(row[0]), 0), "point %d", i)
	}
}

func TestFuzzySimplicialSetMixRatio(t *testing.T) {
	knnIndices := [][]int32{{1, 2}, {2, 0}, {0, 1}, {0, 1}}
	knnDistances := [][]float32{{1, 2}, {1, 2}, {1.5, 2}, {1, 3}}

	directed := DefaultFuzzySimplicialSetConfig()
	directed.ApplySetOperations = false
	a := FuzzySimplicialSet(knnIndices, knnDistances, directed)

	for _, mix := range []float64{0, 0.5, 1} {
		config := DefaultFuzzySimplicialSetConfig()
		config.SetOpMixRatio = mix
		graph := FuzzySimplicialSet(knnIndices, knnDistances, config)

		for i := range 4 {
			for j := range 4 {
				x := a.Get(i, j, 0)
				y := a.Get(j, i, 0)
				union := x + y - x*y
				inter := x * y
				want := float32(mix)*union + float32(1-mix)*inter
				assert.InDelta(t, want, graph.Get(i, j, 0), 1e-6, "mix=%v (%d,%d)", mix, i, j)
			}
		}
	}

	// Point 3 is nobody's neighbor, so pure intersection isolates it.
	config := DefaultFuzzySimplicialSetConfig()
	config.SetOpMixRatio = 0
	inter := FuzzySimplicialSet(knnIndices, knnDistances, config)
	for j := range 4 {
		assert.False(t, inter.Has(3, j))
	}
}

func TestFuzzySimplicialSetSkipsMissing(t *testing.T) {
	knnIndices := [][]int32{{1, -1}, {0, -1}}
	knnDistances := [][]float32{{1, float32(math.MaxFloat32)}, {1, float32(math.MaxFloat32)}}

	graph := FuzzySimplicialSet(knnIndices, knnDistances, DefaultFuzzySimplicialSetConfig())
	assert.Equal(t, 2, graph.NNZ())
}

func TestFuzzySimplicialSetEmpty(t *testing.T) {
	graph := FuzzySimplicialSet(nil, nil, DefaultFuzzySimplicialSetConfig())
	assert.Equal(t, 0, graph.NNZ())
}

func TestSmoothKNNDist(t *testing.T) {
	distances := []float32{1.0, 2.0, 3.0, 4.0, 5.0}

	sigma, rho := smoothKNNDist(distances, 5.0, 1.0, 1.0, 3.0)

	if sigma <= 0 {
		t.Errorf("Sigma should be positive, got %f", sigma)
	}
	if rho != 1.0 {
		t.Errorf("Rho should be the nearest distance, got %f", rho)
	}

	// Memberships sum to log2(k)
	var sum float64
	for _, d := range distances {
		sum += math.Exp(-math.Max(0, float64(d-rho)) / float64(sigma))
	}
	if math.Abs(sum-math.Log2(5)) > 1e-3 {
		t.Errorf("Membership sum = %f, want %f", sum, math.Log2(5))
	}
}

func TestSmoothKNNDistBandwidth(t *testing.T) {
	distances := []float32{1.0, 2.0, 3.0, 4.0, 5.0}

	narrow, _ := smoothKNNDist(distances, 5.0, 1.0, 1.0, 3.0)
	wide, _ := smoothKNNDist(distances, 5.0, 1.0, 1.5, 3.0)
	assert.Greater(t, wide, narrow)
}

func TestSmoothKNNDistZeroDistances(t *testing.T) {
	// All neighbors are duplicates: rho is 0 and sigma falls back to the
	// global floor.
	distances := []float32{0, 0, 0}
	sigma, rho := smoothKNNDist(distances, 3.0, 1.0, 1.0, 2.0)

	assert.Equal(t, float32(0), rho)
	assert.GreaterOrEqual(t, sigma, float32(2e-3))
}

func TestSmoothKNNDistInterpolatedRho(t *testing.T) {
	distances := []float32{0, 1.0, 3.0}
	_, rho := smoothKNNDist(distances, 3.0, 1.5, 1.0, 1.0)

	// Zero distances are ignored; halfway between 1 and 3.
	assert.InDelta(t, 2.0, rho, 1e-6)
}

func TestSmoothKNNDistParallelMatchesSerial(t *testing.T) {
	knnDistances := make([][]float32, 50)
	for i := range knnDistances {
		knnDistances[i] = []float32{float32(i%3) * 0.1, 1 + float32(i)*0.01, 2, 3 + float32(i%7)}
	}

	config := DefaultFuzzySimplicialSetConfig()
	config.NumWorkers = 1
	s1, r1 := SmoothKNNDist(knnDistances, config)
	config.NumWorkers = 8
	s8, r8 := SmoothKNNDist(knnDistances, config)

	require.Equal(t, s1, s8)
	require.Equal(t, r1, r8)
}

func TestToEpochsPerSample(t *testing.T) {
	graph := &CSRMatrix{
		Indptr:  []int32{0, 2, 4},
		Indices: []int32{1, 2, 0, 2},
		Data:    []float32{1.0, 0.5, 1.0, 0.25},
		NRows:   2,
		NCols:   2,
		NNZ:     4,
	}

	epochs := ToEpochsPerSample(graph)

	if len(epochs) != 4 {
		t.Fatalf("Expected 4 epochs values, got %d", len(epochs))
	}

	// Maximum weight edge is sampled every epoch
	if epochs[0] != 1.0 {
		t.Errorf("Max weight edge should have epochs_per_sample=1.0, got %f", epochs[0])
	}

	if epochs[1] != 2.0 {
		t.Errorf("Half weight edge should have epochs_per_sample=2.0, got %f", epochs[1])
	}

	if epochs[3] != 4.0 {
		t.Errorf("Quarter weight edge should have epochs_per_sample=4.0, got %f", epochs[3])
	}
}

func TestToEpochsPerSampleZeroWeight(t *testing.T) {
	graph := &CSRMatrix{
		Indptr:  []int32{0, 2},
		Indices: []int32{0, 1},
		Data:    []float32{2.0, 0},
		NRows:   1,
		NCols:   2,
		NNZ:     2,
	}

	assert.Equal(t, []float64{1, -1}, ToEpochsPerSample(graph))
	assert.Nil(t, ToEpochsPerSample(&CSRMatrix{Indptr: []int32{0}}))
}

func TestPrune(t *testing.T) {
	m := NewSparseMatrix(
		[]int32{0, 0, 1, 1},
		[]int32{1, 2, 0, 2},
		[]float32{1.0, 0.004, 0.5, 0.01},
		2, 3,
	)

	pruned := Prune(m, 200)

	// Threshold is 1.0/200 = 0.005
	assert.Equal(t, 3, pruned.NNZ())
	assert.False(t, pruned.Has(0, 2))
	assert.True(t, pruned.Has(1, 2))
	assert.Equal(t, 4, m.NNZ(), "input must not change")
}

func TestCSRMatrixGetRow(t *testing.T) {
	graph := &CSRMatrix{
		Indptr:  []int32{0, 2, 4, 5},
		Indices: []int32{1, 2, 0, 2, 1},
		Data:    []float32{1.0, 2.0, 3.0, 4.0, 5.0},
		NRows:   3,
		NCols:   3,
		NNZ:     5,
	}

	// Get row 0
	indices, _ := graph.GetRow(0)
	if len(indices) != 2 {
		t.Errorf("Row 0 should have 2 elements, got %d", len(indices))
	}

	// Get row 1
	indices, _ = graph.GetRow(1)
	if len(indices) != 2 {
		t.Errorf("Row 1 should have 2 elements, got %d", len(indices))
	}

	// Get row 2
	indices, data := graph.GetRow(2)
	if len(indices) != 1 {
		t.Errorf("Row 2 should have 1 element, got %d", len(indices))
	}
	if data[0] != 5.0 {
		t.Errorf("Row 2 data should be 5.0, got %f", data[0])
	}
}

func TestCSRMatrixGetEdges(t *testing.T) {
	m := NewSparseMatrix([]int32{2, 0, 0}, []int32{0, 2, 1}, []float32{3, 2, 1}, 3, 3)
	rows, cols, data := m.ToCSR().GetEdges()

	assert.Equal(t, []int32{0, 0, 2}, rows)
	assert.Equal(t, []int32{1, 2, 0}, cols)
	assert.Equal(t, []float32{1, 2, 3}, data)
}
