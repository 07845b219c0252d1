// Package nn provides nearest neighbor search for UMAP.
// This includes the NNDescent algorithm for approximate k-NN graph
// construction, seeded from a random projection forest.
package nn

import (
	"context"
	"fmt"
	"math"

	"github.com/nozzle/stepumap/distance"
	"github.com/nozzle/stepumap/internal/heap"
	"github.com/nozzle/stepumap/internal/parallel"
	"github.com/nozzle/stepumap/random"
)

// KNNGraph represents a k-nearest neighbor graph.
type KNNGraph struct {
	Indices   [][]int32   // [n_samples][k] neighbor indices
	Distances [][]float32 // [n_samples][k] neighbor distances
	N         int         // number of samples
	K         int         // number of neighbors per sample
}

// NNDescentConfig configures the NNDescent algorithm.
type NNDescentConfig struct {
	// K is the number of neighbors to find. It is clamped to N-1.
	K int

	// Kernel is the distance to use (nil = euclidean)
	Kernel distance.Kernel

	// Source drives initialization, tree splits and candidate sampling.
	// All draws happen on one goroutine, in a fixed order.
	Source random.Source

	// MaxIterations is the maximum number of NNDescent rounds
	// (0 = max(5, floor(log2 N)))
	MaxIterations int

	// MaxCandidates bounds the new and old candidate lists per point
	MaxCandidates int

	// Delta is the early termination threshold (fraction of updated edges)
	Delta float64

	// Rho is the sampling rate for new candidates
	Rho float64

	// NumTrees in the seeding forest (0 = 5 + round(sqrt(N)/20), <0 = none)
	NumTrees int

	// LeafSize of the seeding forest (0 = max(10, K))
	LeafSize int

	// NumWorkers for parallel processing (0 = auto)
	NumWorkers int

	// Progress, if set, receives the completed fraction in [0, 1]. Values
	// never decrease and the last call reports 1.
	Progress func(fraction float64)
}

// DefaultNNDescentConfig returns default configuration.
func DefaultNNDescentConfig() NNDescentConfig {
	return NNDescentConfig{
		K:             15,
		Kernel:        distance.Registry["euclidean"],
		MaxIterations: 0,
		MaxCandidates: 60,
		Delta:         0.001,
		Rho:           0.5,
		NumWorkers:    0,
	}
}

// update is a proposed edge between two points found by a local join.
type update struct {
	p, q int32
	dist float32
}

// NNDescent builds an approximate k-NN graph. Random neighbors and RP-tree
// leaf mates seed every list, then rounds of local joins explore
// "neighbors of neighbors" until few lists change.
//
// Every row of the result holds exactly min(K, N-1) distinct neighbors,
// never the point itself, sorted by ascending distance.
func NNDescent(ctx context.Context, data [][]float32, config NNDescentConfig) (*KNNGraph, error) {
	if config.K <= 0 {
		return nil, fmt.Errorf("nn: k must be positive, got %d", config.K)
	}

	n := len(data)
	k := min(config.K, n-1)
	if k <= 0 {
		g := &KNNGraph{
			Indices:   make([][]int32, n),
			Distances: make([][]float32, n),
			N:         n,
		}
		for i := range n {
			g.Indices[i] = []int32{}
			g.Distances[i] = []float32{}
		}
		report(config.Progress, 1)
		return g, nil
	}

	kernel := config.Kernel
	if kernel == nil {
		kernel = distance.Registry["euclidean"]
	}
	src := config.Source
	if src == nil {
		src = random.NewTausworthe(42)
	}
	numWorkers := parallel.Resolve(config.NumWorkers)

	maxIter := config.MaxIterations
	if maxIter <= 0 {
		maxIter = max(5, int(math.Log2(float64(n))))
	}
	maxCandidates := config.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 60
	}
	maxCandidates = min(maxCandidates, k)

	heaps := make([]heap.MaxHeap, n)
	for i := range heaps {
		heaps[i] = heap.New(k)
	}

	// Random initialization
	seeds := make([][]int32, n)
	for i := range n {
		seeds[i] = random.RejectionSample(src, k, n)
	}

	// Forest leaf mates
	numTrees := config.NumTrees
	if numTrees == 0 {
		numTrees = 5 + int(math.Round(math.Sqrt(float64(n))/20))
	}
	if numTrees > 0 {
		leafSize := config.LeafSize
		if leafSize <= 0 {
			leafSize = max(10, k)
		}
		forest := BuildRPForest(data, RPForestConfig{
			NumTrees: numTrees,
			LeafSize: leafSize,
			Angular:  kernel.Angular(),
			Source:   src,
		})
		for _, leaf := range forest.Leaves() {
			for _, p := range leaf {
				seeds[p] = append(seeds[p], leaf...)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parallel.ParallelFor(0, n, numWorkers, func(i int) {
		h := heaps[i]
		for _, j := range seeds[i] {
			if int(j) == i {
				continue
			}
			h.Push(j, kernel.Distance(data[i], data[j]), 1)
		}
	})

	// One unit for seeding plus one per round
	totalUnits := float64(maxIter + 1)
	report(config.Progress, 1/totalUnits)

	newCandidates := make([]heap.MaxHeap, n)
	oldCandidates := make([]heap.MaxHeap, n)
	for i := range n {
		newCandidates[i] = heap.New(maxCandidates)
		oldCandidates[i] = heap.New(maxCandidates)
	}
	buffers := make([][]update, numWorkers)

	threshold := config.Delta * float64(n) * float64(k)
	for iter := range maxIter {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		buildCandidates(heaps, newCandidates, oldCandidates, config.Rho, src)

		// Phase 1: propose updates, reading the heaps only
		parallel.Ranges(0, n, numWorkers, func(w, s, e int) {
			buf := buffers[w][:0]
			for i := s; i < e; i++ {
				buf = localJoin(data, kernel, heaps, newCandidates[i], oldCandidates[i], buf)
			}
			buffers[w] = buf
		})

		// Phase 2: each worker applies the updates that target its own points
		counts := make([]int, numWorkers)
		parallel.Ranges(0, n, numWorkers, func(w, s, e int) {
			lo, hi := int32(s), int32(e)
			for _, buf := range buffers {
				for _, u := range buf {
					if u.p >= lo && u.p < hi && heaps[u.p].Push(u.q, u.dist, 1) {
						counts[w]++
					}
					if u.q >= lo && u.q < hi && heaps[u.q].Push(u.p, u.dist, 1) {
						counts[w]++
					}
				}
			}
		})
		for w := range buffers {
			buffers[w] = buffers[w][:0]
		}

		total := 0
		for _, c := range counts {
			total += c
		}

		report(config.Progress, float64(iter+2)/totalUnits)

		if float64(total) <= threshold {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fillMissing(data, kernel, heaps, numWorkers)

	indices := make([][]int32, n)
	distances := make([][]float32, n)
	for i, h := range heaps {
		h.Sort()
		indices[i] = h.Indices
		distances[i] = h.Distances
	}

	report(config.Progress, 1)

	return &KNNGraph{
		Indices:   indices,
		Distances: distances,
		N:         n,
		K:         k,
	}, nil
}

// buildCandidates fills the new and old candidate lists of every point from
// its current neighbors and their reverse edges. Each entry gets a random
// priority, so a full list keeps a uniform sample. Sampled new neighbors are
// flagged old afterwards.
func buildCandidates(heaps, newCandidates, oldCandidates []heap.MaxHeap, rho float64, src random.Source) {
	for i := range heaps {
		newCandidates[i].Reset()
		oldCandidates[i].Reset()
	}

	for i, h := range heaps {
		for j, idx := range h.Indices {
			if idx < 0 {
				continue
			}
			priority := src.Float64()
			if h.Flags[j] == 1 {
				if priority >= rho {
					continue
				}
				d := float32(priority)
				newCandidates[i].Push(idx, d, 0)
				newCandidates[idx].Push(int32(i), d, 0)
			} else {
				d := float32(priority)
				oldCandidates[i].Push(idx, d, 0)
				oldCandidates[idx].Push(int32(i), d, 0)
			}
		}
	}

	for i, h := range heaps {
		for j, idx := range h.Indices {
			if idx >= 0 && h.Flags[j] == 1 && newCandidates[i].Contains(idx) {
				h.Flags[j] = 0
			}
		}
	}
}

// localJoin compares every new candidate of one point with the other new
// candidates and with the old ones, appending pairs that would improve
// either neighbor list.
func localJoin(
	data [][]float32,
	kernel distance.Kernel,
	heaps []heap.MaxHeap,
	newCands, oldCands heap.MaxHeap,
	buf []update,
) []update {
	for a, p := range newCands.Indices {
		if p < 0 {
			continue
		}
		for _, q := range newCands.Indices[a+1:] {
			if q < 0 || q == p {
				continue
			}
			buf = propose(data, kernel, heaps, p, q, buf)
		}
		for _, q := range oldCands.Indices {
			if q < 0 || q == p {
				continue
			}
			buf = propose(data, kernel, heaps, p, q, buf)
		}
	}
	return buf
}

func propose(data [][]float32, kernel distance.Kernel, heaps []heap.MaxHeap, p, q int32, buf []update) []update {
	d := kernel.Distance(data[p], data[q])
	if d < heaps[p].MaxDist() || d < heaps[q].MaxDist() {
		buf = append(buf, update{p: p, q: q, dist: d})
	}
	return buf
}

// fillMissing completes lists that are still short by scanning points in
// index order. This only happens for tiny or degenerate inputs.
func fillMissing(data [][]float32, kernel distance.Kernel, heaps []heap.MaxHeap, numWorkers int) {
	worst := math.Nextafter32(heap.Empty, 0)
	parallel.ParallelFor(0, len(heaps), numWorkers, func(i int) {
		h := heaps[i]
		missing := h.Len() - h.Count()
		for j := 0; j < len(data) && missing > 0; j++ {
			if j == i || h.Contains(int32(j)) {
				continue
			}
			d := kernel.Distance(data[i], data[j])
			if !(d < heap.Empty) {
				d = worst
			}
			if h.Push(int32(j), d, 0) {
				missing--
			}
		}
	})
}

func report(progress func(float64), fraction float64) {
	if progress != nil {
		progress(min(fraction, 1))
	}
}
