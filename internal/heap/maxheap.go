// Package heap provides bounded max-heaps for k-NN tracking.
package heap

import "math"

// Empty is the distance stored in unfilled slots.
const Empty = math.MaxFloat32

// MaxHeap keeps the k smallest distances seen so far. The largest kept
// distance is always at the root (index 0); unfilled slots hold index -1.
type MaxHeap struct {
	Indices   []int32
	Distances []float32
	Flags     []uint8 // 0 = old, 1 = new (for NNDescent)
}

// New creates an empty max-heap with capacity k.
func New(k int) MaxHeap {
	h := MaxHeap{
		Indices:   make([]int32, k),
		Distances: make([]float32, k),
		Flags:     make([]uint8, k),
	}
	h.Reset()
	return h
}

// Reset clears the heap.
func (h MaxHeap) Reset() {
	for i := range h.Indices {
		h.Indices[i] = -1
		h.Distances[i] = Empty
		h.Flags[i] = 0
	}
}

// Len returns the capacity of the heap.
func (h MaxHeap) Len() int { return len(h.Indices) }

// Count returns the number of filled slots.
func (h MaxHeap) Count() int {
	count := 0
	for _, idx := range h.Indices {
		if idx >= 0 {
			count++
		}
	}
	return count
}

// MaxDist returns the largest kept distance.
func (h MaxHeap) MaxDist() float32 {
	if len(h.Distances) == 0 {
		return Empty
	}
	return h.Distances[0]
}

// Contains reports whether idx is already kept.
func (h MaxHeap) Contains(idx int32) bool {
	for _, v := range h.Indices {
		if v == idx {
			return true
		}
	}
	return false
}

// Push attempts to add a neighbor. It returns true if the neighbor was
// closer than the current worst and not already present. NaN distances
// are rejected.
func (h MaxHeap) Push(idx int32, dist float32, flag uint8) bool {
	if len(h.Indices) == 0 || !(dist < h.Distances[0]) {
		return false
	}
	if h.Contains(idx) {
		return false
	}

	h.Distances[0] = dist
	h.Indices[0] = idx
	h.Flags[0] = flag
	h.siftDown(0, len(h.Indices))
	return true
}

// siftDown restores the heap property below i for the first n slots.
func (h MaxHeap) siftDown(i, n int) {
	for {
		left := 2*i + 1
		right := 2*i + 2

		if left >= n {
			break
		}

		swap := i
		if h.Distances[left] > h.Distances[swap] {
			swap = left
		}
		if right < n && h.Distances[right] > h.Distances[swap] {
			swap = right
		}

		if swap == i {
			break
		}

		h.Distances[i], h.Distances[swap] = h.Distances[swap], h.Distances[i]
		h.Indices[i], h.Indices[swap] = h.Indices[swap], h.Indices[i]
		h.Flags[i], h.Flags[swap] = h.Flags[swap], h.Flags[i]
		i = swap
	}
}

// Sort converts the heap to ascending distance order in place.
// After sorting, the heap property is no longer maintained.
func (h MaxHeap) Sort() {
	for i := len(h.Indices) - 1; i > 0; i-- {
		h.Distances[0], h.Distances[i] = h.Distances[i], h.Distances[0]
		h.Indices[0], h.Indices[i] = h.Indices[i], h.Indices[0]
		h.Flags[0], h.Flags[i] = h.Flags[i], h.Flags[0]
		h.siftDown(0, i)
	}
}
