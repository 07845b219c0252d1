package graph

// CSRMatrix represents a sparse matrix in CSR format.
type CSRMatrix struct {
	Indptr  []int32   // Row pointers, len NRows+1
	Indices []int32   // Column indices
	Data    []float32 // Values
	NRows   int       // Number of rows
	NCols   int       // Number of columns
	NNZ     int       // Number of non-zero elements
}

// GetEdges returns the edges of the graph as (row, col, weight) triplets,
// sorted by row then column.
func (g *CSRMatrix) GetEdges() ([]int32, []int32, []float32) {
	rows := make([]int32, g.NNZ)
	cols := make([]int32, g.NNZ)
	data := make([]float32, g.NNZ)

	idx := 0
	for i := 0; i < g.NRows; i++ {
		start := g.Indptr[i]
		end := g.Indptr[i+1]
		for j := start; j < end; j++ {
			rows[idx] = int32(i)
			cols[idx] = g.Indices[j]
			data[idx] = g.Data[j]
			idx++
		}
	}

	return rows, cols, data
}

// GetRow returns the column indices and values for a given row.
func (g *CSRMatrix) GetRow(row int) ([]int32, []float32) {
	start := g.Indptr[row]
	end := g.Indptr[row+1]
	return g.Indices[start:end], g.Data[start:end]
}

// ToEpochsPerSample converts edge weights to epochs per sample for optimization.
// This determines how frequently each edge should be sampled during SGD:
// epochs_per_sample = max_weight / weight, so the heaviest edge is sampled
// every epoch and lighter edges proportionally less often. Edges with a
// non-positive weight get -1 and are never sampled.
func ToEpochsPerSample(g *CSRMatrix) []float64 {
	if g.NNZ == 0 {
		return nil
	}

	maxWeight := float32(0)
	for _, w := range g.Data {
		if w > maxWeight {
			maxWeight = w
		}
	}

	result := make([]float64, g.NNZ)
	for i, w := range g.Data {
		if w > 0 {
			result[i] = float64(maxWeight) / float64(w)
		} else {
			result[i] = -1
		}
	}

	return result
}

// Prune drops every weight below max/nEpochs: such an edge would be
// sampled less than once over the whole optimization.
func Prune(m *SparseMatrix, nEpochs int) *SparseMatrix {
	if nEpochs <= 0 {
		return m.EliminateZeros()
	}
	threshold := m.MaxValue() / float32(nEpochs)
	return m.Map(func(v float32, _, _ int) float32 {
		if v < threshold {
			return 0
		}
		return v
	}).EliminateZeros()
}
