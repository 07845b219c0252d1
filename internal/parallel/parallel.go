// Package parallel provides parallel execution helpers.
package parallel

import (
	"runtime"
	"sync"
)

// NumWorkers returns the default number of workers for parallel operations.
func NumWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Resolve returns n if positive, otherwise the default worker count.
func Resolve(n int) int {
	if n <= 0 {
		return NumWorkers()
	}
	return n
}

// ParallelFor executes fn for indices [start, end) using n workers.
// Each worker receives one contiguous chunk.
func ParallelFor(start, end, n int, fn func(i int)) {
	Ranges(start, end, n, func(_, s, e int) {
		for i := s; i < e; i++ {
			fn(i)
		}
	})
}

// Ranges splits [start, end) into at most n contiguous chunks and calls
// fn(worker, chunkStart, chunkEnd) for each chunk on its own goroutine.
// Chunks never overlap, so fn may write freely to state owned by its range.
func Ranges(start, end, n int, fn func(worker, chunkStart, chunkEnd int)) {
	total := end - start
	if total <= 0 {
		return
	}
	if n <= 1 {
		fn(0, start, end)
		return
	}

	var wg sync.WaitGroup
	chunkSize := (total + n - 1) / n

	for w := 0; w < n; w++ {
		chunkStart := start + w*chunkSize
		chunkEnd := min(chunkStart+chunkSize, end)
		if chunkStart >= chunkEnd {
			break
		}

		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			fn(w, s, e)
		}(w, chunkStart, chunkEnd)
	}

	wg.Wait()
}
