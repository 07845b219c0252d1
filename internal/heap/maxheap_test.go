package heap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushKeepsSmallest(t *testing.T) {
	h := New(3)
	require.Equal(t, 0, h.Count())

	for i, d := range []float32{5, 1, 4, 2, 3} {
		h.Push(int32(i), d, 1)
	}
	require.Equal(t, 3, h.Count())
	assert.Equal(t, float32(3), h.MaxDist())

	h.Sort()
	assert.Equal(t, []float32{1, 2, 3}, h.Distances)
	assert.Equal(t, []int32{1, 3, 4}, h.Indices)
}

func TestPushRejectsDuplicatesAndWorse(t *testing.T) {
	h := New(2)
	assert.True(t, h.Push(7, 1, 1))
	assert.False(t, h.Push(7, 0.5, 1), "duplicate index")
	assert.True(t, h.Push(8, 2, 1))
	assert.False(t, h.Push(9, 3, 1), "worse than current max")
	assert.True(t, h.Contains(8))
	assert.False(t, h.Contains(9))
}

func TestPushRejectsNaN(t *testing.T) {
	nan := float32(math.NaN())

	h := New(2)
	assert.False(t, h.Push(1, nan, 1), "empty heap")
	assert.Equal(t, 0, h.Count())

	require.True(t, h.Push(2, 1, 1))
	require.True(t, h.Push(3, 2, 1))
	assert.False(t, h.Push(4, nan, 1), "full heap")
	assert.False(t, h.Contains(4))
	assert.Equal(t, float32(2), h.MaxDist())
}

func TestSortPartial(t *testing.T) {
	h := New(4)
	h.Push(2, 0.5, 0)
	h.Push(1, 0.25, 0)
	h.Sort()

	assert.Equal(t, []int32{1, 2, -1, -1}, h.Indices)
	assert.Equal(t, float32(Empty), h.Distances[3])

	h.Reset()
	assert.Equal(t, 0, h.Count())
}

func TestZeroCapacity(t *testing.T) {
	h := New(0)
	assert.False(t, h.Push(1, 1, 0))
	assert.Equal(t, float32(Empty), h.MaxDist())
}
