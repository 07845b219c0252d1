// Package random provides the pluggable random sources used by every
// stochastic stage of a fit: neighbor search, initialization and
// negative sampling.
package random

import "sync"

// Source supplies uniformly distributed values.
//
// A Source that reports ThreadSafe() == false must only ever be called from
// one goroutine at a time; stages that would otherwise run in parallel fall
// back to a single worker for such sources.
type Source interface {
	// Intn returns an integer in [min, max).
	Intn(min, max int) int
	// Float64 returns a float in [0, 1).
	Float64() float64
	// Fill fills buf with independent values in [0, 1).
	Fill(buf []float64)
	// ThreadSafe reports whether the source may be shared between goroutines.
	ThreadSafe() bool
}

// Synchronized wraps src so that it can be shared by concurrent workers.
func Synchronized(src Source) Source {
	if src.ThreadSafe() {
		return src
	}
	return &lockedSource{src: src}
}

type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func (l *lockedSource) Intn(min, max int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(min, max)
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func (l *lockedSource) Fill(buf []float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.src.Fill(buf)
}

func (l *lockedSource) ThreadSafe() bool { return true }

// Shuffle permutes arr in place (Fisher-Yates) using src.
func Shuffle(src Source, arr []int32) {
	for i := len(arr) - 1; i > 0; i-- {
		j := src.Intn(0, i+1)
		arr[i], arr[j] = arr[j], arr[i]
	}
}

// RejectionSample draws nSamples distinct integers from [0, poolSize).
//
// When the pool is smaller than the requested sample count the result is
// silently truncated to poolSize values.
func RejectionSample(src Source, nSamples, poolSize int) []int32 {
	if nSamples > poolSize {
		nSamples = poolSize
	}
	if nSamples <= 0 {
		return nil
	}
	result := make([]int32, 0, nSamples)
	for len(result) < nSamples {
		j := int32(src.Intn(0, poolSize))
		dup := false
		for _, r := range result {
			if r == j {
				dup = true
				break
			}
		}
		if !dup {
			result = append(result, j)
		}
	}
	return result
}

// bounded maps a raw signed draw onto [min, max).
func bounded(raw int64, min, max int) int {
	n := int64(max - min)
	if n <= 0 {
		return min
	}
	r := raw % n
	if r < 0 {
		r += n
	}
	return min + int(r)
}
