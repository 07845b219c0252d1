package nn

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nozzle/stepumap/distance"
	"github.com/nozzle/stepumap/random"
)

func generateTestData(n, dim int, seed int64) [][]float32 {
	data := make([][]float32, n)
	rng := seed
	for i := range n {
		data[i] = make([]float32, dim)
		for j := range dim {
			rng = (rng*6364136223846793005 + 1442695040888963407) & 0x7FFFFFFF
			data[i][j] = float32(rng) / float32(0x7FFFFFFF)
		}
	}
	return data
}

// bruteForceKNN computes exact neighbors for comparison.
func bruteForceKNN(data [][]float32, k int, kernel distance.Kernel) [][]int32 {
	n := len(data)
	out := make([][]int32, n)
	for i := range n {
		type pair struct {
			idx  int32
			dist float32
		}
		pairs := make([]pair, 0, n-1)
		for j := range n {
			if j != i {
				pairs = append(pairs, pair{int32(j), kernel.Distance(data[i], data[j])})
			}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].dist < pairs[b].dist })
		out[i] = make([]int32, k)
		for j := range k {
			out[i][j] = pairs[j].idx
		}
	}
	return out
}

func checkInvariants(t *testing.T, g *KNNGraph, n, k int) {
	t.Helper()
	require.Equal(t, n, g.N)
	require.Equal(t, k, g.K)
	require.Len(t, g.Indices, n)

	for i := range n {
		require.Len(t, g.Indices[i], k, "point %d", i)
		require.Len(t, g.Distances[i], k, "point %d", i)

		seen := make(map[int32]bool, k)
		for j, idx := range g.Indices[i] {
			assert.GreaterOrEqual(t, idx, int32(0), "point %d slot %d unfilled", i, j)
			assert.NotEqual(t, int32(i), idx, "self loop at point %d", i)
			assert.False(t, seen[idx], "duplicate neighbor %d at point %d", idx, i)
			seen[idx] = true
			if j > 0 {
				assert.LessOrEqual(t, g.Distances[i][j-1], g.Distances[i][j], "point %d not sorted", i)
			}
		}
	}
}

func TestNNDescent(t *testing.T) {
	data := generateTestData(200, 10, 42)

	config := DefaultNNDescentConfig()
	config.K = 10
	config.Source = random.NewTausworthe(42)

	graph, err := NNDescent(context.Background(), data, config)
	require.NoError(t, err)
	checkInvariants(t, graph, 200, 10)
}

func TestNNDescentRecall(t *testing.T) {
	data := generateTestData(300, 8, 7)
	const k = 10

	config := DefaultNNDescentConfig()
	config.K = k
	config.Source = random.NewTausworthe(1)

	graph, err := NNDescent(context.Background(), data, config)
	require.NoError(t, err)

	exact := bruteForceKNN(data, k, config.Kernel)
	hits := 0
	for i := range data {
		truth := make(map[int32]bool, k)
		for _, idx := range exact[i] {
			truth[idx] = true
		}
		for _, idx := range graph.Indices[i] {
			if truth[idx] {
				hits++
			}
		}
	}
	recall := float64(hits) / float64(len(data)*k)
	assert.Greater(t, recall, 0.9, "recall %.3f", recall)
}

func TestNNDescentAngular(t *testing.T) {
	data := generateTestData(150, 6, 3)

	config := DefaultNNDescentConfig()
	config.K = 8
	config.Kernel = distance.Registry["cosine"]
	config.Source = random.NewTausworthe(3)

	graph, err := NNDescent(context.Background(), data, config)
	require.NoError(t, err)
	checkInvariants(t, graph, 150, 8)
}

func TestNNDescentClampsK(t *testing.T) {
	data := generateTestData(6, 3, 1)

	config := DefaultNNDescentConfig()
	config.K = 15
	config.Source = random.NewTausworthe(1)

	graph, err := NNDescent(context.Background(), data, config)
	require.NoError(t, err)
	checkInvariants(t, graph, 6, 5)
}

func TestNNDescentSinglePoint(t *testing.T) {
	config := DefaultNNDescentConfig()

	graph, err := NNDescent(context.Background(), [][]float32{{1, 2}}, config)
	require.NoError(t, err)
	assert.Equal(t, 1, graph.N)
	assert.Equal(t, 0, graph.K)
	assert.Empty(t, graph.Indices[0])
}

func TestNNDescentInvalidK(t *testing.T) {
	config := DefaultNNDescentConfig()
	config.K = 0

	_, err := NNDescent(context.Background(), generateTestData(10, 2, 1), config)
	assert.Error(t, err)
}

func TestNNDescentDuplicatePoints(t *testing.T) {
	data := make([][]float32, 40)
	for i := range data {
		data[i] = []float32{1, 1, 1}
	}

	config := DefaultNNDescentConfig()
	config.K = 5
	config.Source = random.NewTausworthe(9)

	graph, err := NNDescent(context.Background(), data, config)
	require.NoError(t, err)
	checkInvariants(t, graph, 40, 5)
	for i := range data {
		for _, d := range graph.Distances[i] {
			assert.Equal(t, float32(0), d)
		}
	}
}

func TestNNDescentDeterministic(t *testing.T) {
	data := generateTestData(250, 5, 11)

	run := func(workers int) *KNNGraph {
		config := DefaultNNDescentConfig()
		config.K = 7
		config.NumWorkers = workers
		config.Source = random.NewTausworthe(5)
		g, err := NNDescent(context.Background(), data, config)
		require.NoError(t, err)
		return g
	}

	serial := run(1)
	assert.Equal(t, serial.Indices, run(1).Indices)
	assert.Equal(t, serial.Indices, run(4).Indices)
	assert.Equal(t, serial.Distances, run(4).Distances)
}

func TestNNDescentProgress(t *testing.T) {
	data := generateTestData(120, 4, 2)

	var fractions []float64
	config := DefaultNNDescentConfig()
	config.K = 6
	config.Source = random.NewTausworthe(2)
	config.Progress = func(f float64) { fractions = append(fractions, f) }

	_, err := NNDescent(context.Background(), data, config)
	require.NoError(t, err)

	require.NotEmpty(t, fractions)
	for i, f := range fractions {
		assert.GreaterOrEqual(t, f, 0.0)
		assert.LessOrEqual(t, f, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, f, fractions[i-1])
		}
	}
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
}

func TestNNDescentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := DefaultNNDescentConfig()
	config.K = 5

	_, err := NNDescent(ctx, generateTestData(100, 3, 1), config)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRPForest(t *testing.T) {
	data := generateTestData(100, 10, 42)

	config := DefaultRPForestConfig()
	config.NumTrees = 5
	config.LeafSize = 10
	config.Source = random.NewTausworthe(42)

	forest := BuildRPForest(data, config)

	if len(forest.Trees) != 5 {
		t.Errorf("Expected 5 trees, got %d", len(forest.Trees))
	}

	// Every tree partitions all points into small leaves
	for ti, tree := range forest.Trees {
		seen := make(map[int32]bool)
		for _, leaf := range tree.Leaves() {
			if len(leaf) > 10 {
				t.Errorf("Tree %d has leaf of size %d", ti, len(leaf))
			}
			for _, idx := range leaf {
				seen[idx] = true
			}
		}
		if len(seen) != 100 {
			t.Errorf("Tree %d covers %d points, expected 100", ti, len(seen))
		}
	}

	// Leaves of a tree are disjoint
	counts := make(map[int32]int)
	for _, leaf := range forest.Trees[0].Leaves() {
		for _, idx := range leaf {
			counts[idx]++
		}
	}
	for idx, c := range counts {
		assert.Equal(t, 1, c, "point %d", idx)
	}
}

func BenchmarkNNDescent(b *testing.B) {
	data := generateTestData(1000, 50, 42)

	config := DefaultNNDescentConfig()
	config.K = 15
	config.MaxIterations = 5

	b.ResetTimer()
	for b.Loop() {
		config.Source = random.NewTausworthe(42)
		_, _ = NNDescent(context.Background(), data, config)
	}
}
