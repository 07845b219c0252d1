package graph

import (
	"cmp"
	"fmt"
	"slices"
)

// Entry is one stored cell of a SparseMatrix.
type Entry struct {
	Row   int32
	Col   int32
	Value float32
}

type entryKey struct {
	row, col int32
}

// SparseMatrix is a map-backed sparse matrix keyed by (row, col).
//
// Element-wise operations return new matrices and never mutate their
// operands. Bounds and shape checks only run in builds tagged umapdebug,
// where a violation panics.
type SparseMatrix struct {
	nRows   int
	nCols   int
	entries map[entryKey]float32
}

// NewSparseMatrix creates an nRows x nCols matrix from COO triplets.
// Later duplicates overwrite earlier ones.
func NewSparseMatrix(rows, cols []int32, values []float32, nRows, nCols int) *SparseMatrix {
	m := &SparseMatrix{
		nRows:   nRows,
		nCols:   nCols,
		entries: make(map[entryKey]float32, len(values)),
	}
	for i := range values {
		m.Set(int(rows[i]), int(cols[i]), values[i])
	}
	return m
}

func newEmpty(nRows, nCols, capacity int) *SparseMatrix {
	return &SparseMatrix{
		nRows:   nRows,
		nCols:   nCols,
		entries: make(map[entryKey]float32, capacity),
	}
}

// Dims returns the shape of the matrix.
func (m *SparseMatrix) Dims() (rows, cols int) {
	return m.nRows, m.nCols
}

// NNZ returns the number of stored cells, including stored zeros.
func (m *SparseMatrix) NNZ() int {
	return len(m.entries)
}

func (m *SparseMatrix) checkIndex(row, col int) {
	if row < 0 || row >= m.nRows || col < 0 || col >= m.nCols {
		panic(fmt.Sprintf("graph: index (%d, %d) out of range for %dx%d matrix", row, col, m.nRows, m.nCols))
	}
}

func (m *SparseMatrix) checkShape(other *SparseMatrix) {
	if m.nRows != other.nRows || m.nCols != other.nCols {
		panic(fmt.Sprintf("graph: shape mismatch %dx%d vs %dx%d", m.nRows, m.nCols, other.nRows, other.nCols))
	}
}

// Get returns the value at (row, col), or def if the cell is not stored.
func (m *SparseMatrix) Get(row, col int, def float32) float32 {
	if debugChecks {
		m.checkIndex(row, col)
	}
	if v, ok := m.entries[entryKey{int32(row), int32(col)}]; ok {
		return v
	}
	return def
}

// Has reports whether (row, col) is stored.
func (m *SparseMatrix) Has(row, col int) bool {
	if debugChecks {
		m.checkIndex(row, col)
	}
	_, ok := m.entries[entryKey{int32(row), int32(col)}]
	return ok
}

// Set stores value at (row, col).
func (m *SparseMatrix) Set(row, col int, value float32) {
	if debugChecks {
		m.checkIndex(row, col)
	}
	m.entries[entryKey{int32(row), int32(col)}] = value
}

// Entries returns the stored cells sorted by row, then column.
func (m *SparseMatrix) Entries() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for k, v := range m.entries {
		out = append(out, Entry{Row: k.row, Col: k.col, Value: v})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(a.Row, b.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Col, b.Col)
	})
	return out
}

// Map returns a matrix of the same shape holding fn(value, row, col) for
// every stored cell.
func (m *SparseMatrix) Map(fn func(value float32, row, col int) float32) *SparseMatrix {
	out := newEmpty(m.nRows, m.nCols, len(m.entries))
	for k, v := range m.entries {
		out.entries[k] = fn(v, int(k.row), int(k.col))
	}
	return out
}

// Transpose returns the transposed matrix.
func (m *SparseMatrix) Transpose() *SparseMatrix {
	out := newEmpty(m.nCols, m.nRows, len(m.entries))
	for k, v := range m.entries {
		out.entries[entryKey{k.col, k.row}] = v
	}
	return out
}

// Add returns m + other over the union of stored cells.
func (m *SparseMatrix) Add(other *SparseMatrix) *SparseMatrix {
	return m.union(other, func(x, y float32) float32 { return x + y })
}

// Subtract returns m - other over the union of stored cells.
func (m *SparseMatrix) Subtract(other *SparseMatrix) *SparseMatrix {
	return m.union(other, func(x, y float32) float32 { return x - y })
}

// PairwiseMultiply returns the element-wise product. Only cells stored in
// both operands are kept, since a missing cell contributes a zero factor.
func (m *SparseMatrix) PairwiseMultiply(other *SparseMatrix) *SparseMatrix {
	if debugChecks {
		m.checkShape(other)
	}
	small, large := m, other
	if len(large.entries) < len(small.entries) {
		small, large = large, small
	}
	out := newEmpty(m.nRows, m.nCols, len(small.entries))
	for k, x := range small.entries {
		if y, ok := large.entries[k]; ok {
			out.entries[k] = x * y
		}
	}
	return out
}

// union applies op over every cell stored in either operand, treating a
// missing cell as zero.
func (m *SparseMatrix) union(other *SparseMatrix, op func(x, y float32) float32) *SparseMatrix {
	if debugChecks {
		m.checkShape(other)
	}
	out := newEmpty(m.nRows, m.nCols, max(len(m.entries), len(other.entries)))
	for k, x := range m.entries {
		out.entries[k] = op(x, other.entries[k])
	}
	for k, y := range other.entries {
		if _, ok := m.entries[k]; !ok {
			out.entries[k] = op(0, y)
		}
	}
	return out
}

// EliminateZeros returns a copy without stored zero cells.
func (m *SparseMatrix) EliminateZeros() *SparseMatrix {
	out := newEmpty(m.nRows, m.nCols, len(m.entries))
	for k, v := range m.entries {
		if v != 0 {
			out.entries[k] = v
		}
	}
	return out
}

// MaxValue returns the largest stored value, or 0 for an empty matrix.
func (m *SparseMatrix) MaxValue() float32 {
	var maxVal float32
	first := true
	for _, v := range m.entries {
		if first || v > maxVal {
			maxVal = v
			first = false
		}
	}
	return maxVal
}

// RowMajor is the compressed row-major export of a SparseMatrix.
//
// Indices and Values are sorted by row then column. RowStarts marks the
// position in Indices/Values where each non-empty row begins; RowIDs holds
// the row number of each of those starts, so len(RowStarts) equals the
// number of rows with at least one stored cell.
type RowMajor struct {
	Indices   []int32
	Values    []float32
	RowStarts []int32
	RowIDs    []int32
}

// ToRowMajor exports the stored cells in compressed row-major order.
func (m *SparseMatrix) ToRowMajor() RowMajor {
	entries := m.Entries()
	rm := RowMajor{
		Indices: make([]int32, len(entries)),
		Values:  make([]float32, len(entries)),
	}
	currentRow := int32(-1)
	for i, e := range entries {
		if e.Row != currentRow {
			currentRow = e.Row
			rm.RowStarts = append(rm.RowStarts, int32(i))
			rm.RowIDs = append(rm.RowIDs, e.Row)
		}
		rm.Indices[i] = e.Col
		rm.Values[i] = e.Value
	}
	return rm
}

// FromRowMajor rebuilds an nRows x nCols matrix from a RowMajor export.
func FromRowMajor(rm RowMajor, nRows, nCols int) *SparseMatrix {
	m := newEmpty(nRows, nCols, len(rm.Values))
	for r, start := range rm.RowStarts {
		end := int32(len(rm.Indices))
		if r+1 < len(rm.RowStarts) {
			end = rm.RowStarts[r+1]
		}
		for i := start; i < end; i++ {
			m.Set(int(rm.RowIDs[r]), int(rm.Indices[i]), rm.Values[i])
		}
	}
	return m
}

// ToCSR converts the matrix to CSR form with one row pointer per row.
func (m *SparseMatrix) ToCSR() *CSRMatrix {
	entries := m.Entries()
	nnz := len(entries)

	indptr := make([]int32, m.nRows+1)
	indices := make([]int32, nnz)
	vals := make([]float32, nnz)

	for i, e := range entries {
		indices[i] = e.Col
		vals[i] = e.Value
		indptr[e.Row+1]++
	}

	// Cumulative sum for indptr
	for i := 1; i <= m.nRows; i++ {
		indptr[i] += indptr[i-1]
	}

	return &CSRMatrix{
		Indptr:  indptr,
		Indices: indices,
		Data:    vals,
		NRows:   m.nRows,
		NCols:   m.nCols,
		NNZ:     nnz,
	}
}
