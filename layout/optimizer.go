// Package layout provides the optimization layout algorithms for UMAP.
// This implements stochastic gradient descent to optimize the
// low-dimensional embedding, one epoch per Step.
package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/nozzle/stepumap/graph"
	"github.com/nozzle/stepumap/internal/fmath"
	"github.com/nozzle/stepumap/internal/parallel"
	"github.com/nozzle/stepumap/random"
)

// State is the lifecycle stage of an Optimizer.
type State int

const (
	// Uninitialized is the zero state; Step does nothing.
	Uninitialized State = iota
	// Ready means Initialize succeeded and no epoch has run yet.
	Ready
	// Running means at least one epoch has run and more remain.
	Running
	// Done means every epoch has run; Step does nothing.
	Done
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// OptimizerConfig configures the layout optimization.
type OptimizerConfig struct {
	// LearningRate is the initial learning rate (alpha)
	LearningRate float64
	// NegativeSampleRate is the ratio of negative samples per positive sample
	NegativeSampleRate float64
	// RepulsionStrength weights negative samples (gamma)
	RepulsionStrength float64
	// NumWorkers for parallel processing (0 = auto). More than one worker
	// is only used with a thread safe random source. In parallel mode each
	// worker moves only the heads it owns; tails are read from the epoch
	// snapshot and are not pulled.
	NumWorkers int
}

// DefaultOptimizerConfig returns default configuration.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		LearningRate:       1.0,
		NegativeSampleRate: 5,
		RepulsionStrength:  1.0,
		NumWorkers:         0,
	}
}

// Params are the fitted kernel parameters and the epoch budget.
type Params struct {
	A, B    float64
	NEpochs int
}

// Optimizer owns the working embedding and the per-edge sampling schedule.
// It is not safe for concurrent use; Step parallelizes internally.
type Optimizer struct {
	config OptimizerConfig
	state  State

	embedding [][]float32
	snapshot  [][]float32

	heads []int32
	tails []int32

	epochsPerSample      []float64
	epochOfNextSample    []float64
	epochsPerNegSample   []float64
	epochOfNextNegSample []float64

	a, b, gamma float32
	negative    bool
	nEpochs     int
	epoch       int

	src random.Source
	// edgeRanges[w] is the half-open edge range whose heads worker w owns.
	edgeRanges [][2]int
}

// NewOptimizer creates an optimizer in the Uninitialized state.
func NewOptimizer(config OptimizerConfig) *Optimizer {
	return &Optimizer{config: config}
}

// Initialize validates its inputs, copies the embedding and builds the
// edge schedule from g. The optimizer moves to Ready with epoch 0. It may
// be called again to start over with new inputs.
func (o *Optimizer) Initialize(g *graph.CSRMatrix, params Params, embedding [][]float32, src random.Source) error {
	if src == nil {
		return ErrNilSource
	}
	if !(params.A > 0) || !(params.B > 0) || math.IsInf(params.A, 0) || math.IsInf(params.B, 0) {
		return fmt.Errorf("kernel parameters a=%g b=%g: %w", params.A, params.B, ErrBadParams)
	}
	if params.NEpochs <= 0 {
		return fmt.Errorf("epoch count %d: %w", params.NEpochs, ErrBadParams)
	}
	if err := checkEmbedding(embedding, g); err != nil {
		return err
	}

	n := len(embedding)
	dim := len(embedding[0])
	o.embedding = make([][]float32, n)
	for i, row := range embedding {
		o.embedding[i] = make([]float32, dim)
		copy(o.embedding[i], row)
	}

	// Edges that can never be sampled and self loops are dropped up front.
	heads, tails, _ := g.GetEdges()
	epochsPerSample := graph.ToEpochsPerSample(g)
	o.heads = o.heads[:0]
	o.tails = o.tails[:0]
	o.epochsPerSample = o.epochsPerSample[:0]
	for e := range heads {
		if epochsPerSample[e] <= 0 || heads[e] == tails[e] {
			continue
		}
		o.heads = append(o.heads, heads[e])
		o.tails = append(o.tails, tails[e])
		o.epochsPerSample = append(o.epochsPerSample, epochsPerSample[e])
	}

	negRate := o.config.NegativeSampleRate
	nEdges := len(o.heads)
	o.epochOfNextSample = make([]float64, nEdges)
	o.epochsPerNegSample = make([]float64, nEdges)
	o.epochOfNextNegSample = make([]float64, nEdges)
	for e, eps := range o.epochsPerSample {
		o.epochOfNextSample[e] = eps
		if negRate > 0 {
			o.epochsPerNegSample[e] = eps / negRate
			o.epochOfNextNegSample[e] = o.epochsPerNegSample[e]
		}
	}
	o.negative = negRate > 0

	o.a = float32(params.A)
	o.b = float32(params.B)
	o.gamma = float32(o.config.RepulsionStrength)
	o.nEpochs = params.NEpochs
	o.epoch = 0
	o.src = src

	o.edgeRanges = nil
	o.snapshot = nil
	workers := parallel.Resolve(o.config.NumWorkers)
	if src.ThreadSafe() && workers > 1 && nEdges > 0 {
		o.edgeRanges = partitionEdges(o.heads, n, workers)
		o.snapshot = make([][]float32, n)
		for i := range o.snapshot {
			o.snapshot[i] = make([]float32, dim)
		}
	}

	o.state = Ready
	return nil
}

func checkEmbedding(embedding [][]float32, g *graph.CSRMatrix) error {
	if len(embedding) == 0 {
		return fmt.Errorf("empty embedding: %w", ErrBadEmbedding)
	}
	if g == nil {
		return fmt.Errorf("nil graph: %w", ErrBadEmbedding)
	}
	if g.NRows != len(embedding) || g.NCols != len(embedding) {
		return fmt.Errorf("embedding has %d rows, graph is %dx%d: %w",
			len(embedding), g.NRows, g.NCols, ErrBadEmbedding)
	}
	dim := len(embedding[0])
	if dim == 0 {
		return fmt.Errorf("zero-dimensional embedding: %w", ErrBadEmbedding)
	}
	for i, row := range embedding {
		if len(row) != dim {
			return fmt.Errorf("row %d has %d coordinates, want %d: %w", i, len(row), dim, ErrBadEmbedding)
		}
		for _, v := range row {
			if !fmath.IsFinite(v) {
				return fmt.Errorf("row %d has non-finite coordinate: %w", i, ErrBadEmbedding)
			}
		}
	}
	return nil
}

// partitionEdges splits the point range into workers chunks and returns
// the edge range of each chunk. heads must be sorted ascending.
func partitionEdges(heads []int32, n, workers int) [][2]int {
	chunk := (n + workers - 1) / workers
	ranges := make([][2]int, 0, workers)
	start := 0
	for w := 0; w < workers && start < len(heads); w++ {
		limit := int32(min((w+1)*chunk, n))
		end := start + sort.Search(len(heads)-start, func(i int) bool {
			return heads[start+i] >= limit
		})
		if end > start {
			ranges = append(ranges, [2]int{start, end})
		}
		start = end
	}
	return ranges
}

// State returns the current lifecycle stage.
func (o *Optimizer) State() State { return o.state }

// Epoch returns the number of completed epochs.
func (o *Optimizer) Epoch() int { return o.epoch }

// NEpochs returns the epoch budget.
func (o *Optimizer) NEpochs() int { return o.nEpochs }

// Embedding returns a copy of the current coordinates, or nil before
// Initialize.
func (o *Optimizer) Embedding() [][]float32 {
	if o.embedding == nil {
		return nil
	}
	out := make([][]float32, len(o.embedding))
	for i, row := range o.embedding {
		out[i] = make([]float32, len(row))
		copy(out[i], row)
	}
	return out
}

// Step runs exactly one epoch. It reports false, without touching the
// embedding, when the optimizer is uninitialized or done.
func (o *Optimizer) Step() bool {
	if o.state == Uninitialized || o.state == Done {
		return false
	}

	alpha := float32(o.config.LearningRate * (1 - float64(o.epoch)/float64(o.nEpochs)))

	if o.edgeRanges == nil {
		o.runEdges(0, len(o.heads), o.embedding, alpha, true)
	} else {
		for i, row := range o.embedding {
			copy(o.snapshot[i], row)
		}
		parallel.Ranges(0, len(o.edgeRanges), len(o.edgeRanges), func(_, s, e int) {
			for w := s; w < e; w++ {
				r := o.edgeRanges[w]
				o.runEdges(r[0], r[1], o.snapshot, alpha, false)
			}
		})
	}

	o.epoch++
	if o.epoch >= o.nEpochs {
		o.state = Done
	} else {
		o.state = Running
	}
	return true
}

// runEdges processes the due edges in [start, end) for the current epoch.
// Head coordinates are always written live; tails and negative samples
// are read from others, which is the live embedding in serial mode and the
// epoch snapshot in parallel mode. moveOther also pulls the tail.
// Products feeding an addition are converted explicitly so the compiler
// cannot fuse them, keeping trajectories identical across architectures.
func (o *Optimizer) runEdges(start, end int, others [][]float32, alpha float32, moveOther bool) {
	n := len(o.embedding)
	epoch := float64(o.epoch)
	a, b, gamma := o.a, o.b, o.gamma

	for e := start; e < end; e++ {
		if o.epochOfNextSample[e] > epoch {
			continue
		}

		j := o.heads[e]
		current := o.embedding[j]
		other := others[o.tails[e]]
		if moveOther {
			other = o.embedding[o.tails[e]]
		}

		distSq := fmath.RDist(current, other)
		var gradCoeff float32
		if distSq > 0 {
			gradCoeff = -2 * a * b * fmath.Pow32(distSq, b-1)
			gradCoeff /= float32(a*fmath.Pow32(distSq, b)) + 1
		}
		for d := range current {
			gradD := fmath.Clip(gradCoeff * (current[d] - other[d]))
			current[d] += float32(gradD * alpha)
			if moveOther {
				other[d] -= float32(gradD * alpha)
			}
		}

		o.epochOfNextSample[e] += o.epochsPerSample[e]

		if !o.negative {
			continue
		}
		nNeg := int(math.Floor((epoch - o.epochOfNextNegSample[e]) / o.epochsPerNegSample[e]))
		for range nNeg {
			k := int32(o.src.Intn(0, n))
			if k == j {
				continue
			}
			other := others[k]
			if moveOther {
				other = o.embedding[k]
			}

			// Coincident points get the maximum push.
			distSq := fmath.RDist(current, other)
			gradCoeff = 2 * gamma * b
			gradCoeff /= (0.001 + distSq) * (float32(a*fmath.Pow32(distSq, b)) + 1)
			for d := range current {
				gradD := float32(fmath.ClipValue)
				if distSq > 0 {
					gradD = fmath.Clip(gradCoeff * (current[d] - other[d]))
				}
				current[d] += float32(gradD * alpha)
			}
		}
		if nNeg > 0 {
			o.epochOfNextNegSample[e] += float64(float64(nNeg) * o.epochsPerNegSample[e])
		}
	}
}
