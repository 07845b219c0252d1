// Package umap implements the UMAP (Uniform Manifold Approximation and Projection)
// dimensionality reduction algorithm as a step-driven engine.
//
// UMAP is a dimension reduction technique that can be used for visualization
// similarly to t-SNE, but also for general non-linear dimension reduction.
// Initialize runs the neighbor search, builds the fuzzy graph, fits the
// embedding kernel and lays out the starting coordinates; each Step then
// runs one optimization epoch, so the caller controls pacing and can read
// the embedding at any point.
//
// Basic usage:
//
//	model := umap.New(umap.DefaultConfig())
//	epochs, err := model.Initialize(ctx, data)
//	for model.Step() {
//		// model.Embedding() is valid here
//	}
//
// FitTransform runs all of the above in one call.
package umap

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/nozzle/stepumap/distance"
	"github.com/nozzle/stepumap/graph"
	"github.com/nozzle/stepumap/initial"
	"github.com/nozzle/stepumap/layout"
	"github.com/nozzle/stepumap/nn"
	"github.com/nozzle/stepumap/random"
)

// UMAP is the main UMAP model.
type UMAP struct {
	Config Config

	// Learned state after Initialize
	knnGraph  *nn.KNNGraph
	graph     *graph.CSRMatrix
	optimizer *layout.Optimizer
	a, b      float64
}

// New creates a new UMAP model with the given configuration.
func New(config Config) *UMAP {
	return &UMAP{Config: config}
}

// Initialize validates data, then runs the neighbor search, builds the
// fuzzy graph, fits the kernel parameters and creates the initial layout.
// It returns the number of epochs; calling Step that many times completes
// the fit. ctx is checked between neighbor search rounds and phases.
func (u *UMAP) Initialize(ctx context.Context, data [][]float32) (int, error) {
	u.optimizer = nil

	if err := checkData(data); err != nil {
		return 0, err
	}
	n := len(data)
	if err := u.Config.Validate(n); err != nil {
		return 0, err
	}

	kernel, _ := distance.Get(u.Config.Metric)
	method, _ := initial.ParseMethod(u.Config.Init)
	logger := u.logger()
	src, optimizerSource := u.sources()

	// Step 1: Build k-NN graph
	logger.Printf("finding %d nearest neighbors of %d points", u.Config.NNeighbors, n)
	nnConfig := nn.DefaultNNDescentConfig()
	nnConfig.K = u.Config.NNeighbors
	nnConfig.Kernel = kernel
	nnConfig.Source = src
	nnConfig.NumWorkers = u.Config.NumWorkers
	nnConfig.Progress = u.Config.NeighborProgress
	knn, err := nn.NNDescent(ctx, data, nnConfig)
	if err != nil {
		return 0, fmt.Errorf("nearest neighbors: %w", err)
	}
	u.knnGraph = knn

	// Step 2: Construct fuzzy simplicial set
	logger.Printf("building fuzzy simplicial set")
	fuzzyConfig := graph.DefaultFuzzySimplicialSetConfig()
	fuzzyConfig.LocalConnectivity = u.Config.LocalConnectivity
	fuzzyConfig.Bandwidth = u.Config.Bandwidth
	fuzzyConfig.SetOpMixRatio = u.Config.SetOpMixRatio
	fuzzyConfig.NumWorkers = u.Config.NumWorkers
	fuzzy := graph.FuzzySimplicialSet(knn.Indices, knn.Distances, fuzzyConfig)

	nEpochs := u.Config.epochsFor(n)
	u.graph = graph.Prune(fuzzy, nEpochs).ToCSR()
	logger.Printf("graph has %d edges, %d epochs", u.graph.NNZ, nEpochs)

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// Step 3: Fit the low-dimensional kernel
	u.a, u.b = u.Config.A, u.Config.B
	if u.a <= 0 || u.b <= 0 {
		u.a, u.b = layout.FindABParams(u.Config.Spread, u.Config.MinDist)
	}
	logger.Printf("kernel parameters a=%.6f b=%.6f", u.a, u.b)

	// Step 4: Initial layout
	logger.Printf("initializing embedding (%s)", method)
	embedding := initial.InitializeEmbedding(u.graph, n, u.Config.NComponents, method, src)

	// Step 5: Prepare the optimizer
	optimizer := layout.NewOptimizer(layout.OptimizerConfig{
		LearningRate:       u.Config.LearningRate,
		NegativeSampleRate: u.Config.NegativeSampleRate,
		RepulsionStrength:  u.Config.RepulsionStrength,
		NumWorkers:         u.Config.NumWorkers,
	})
	params := layout.Params{A: u.a, B: u.b, NEpochs: nEpochs}
	if err := optimizer.Initialize(u.graph, params, embedding, optimizerSource()); err != nil {
		return 0, fmt.Errorf("optimizer: %w", err)
	}
	u.optimizer = optimizer

	return nEpochs, nil
}

// Step runs one optimization epoch. It reports false, leaving the
// embedding unchanged, before Initialize and once every epoch has run.
func (u *UMAP) Step() bool {
	if u.optimizer == nil || !u.optimizer.Step() {
		return false
	}
	if u.Config.ProgressCallback != nil {
		u.Config.ProgressCallback(u.optimizer.Epoch(), u.optimizer.NEpochs())
	}
	if u.Config.Verbose && u.optimizer.Epoch()%50 == 0 {
		u.logger().Printf("completed %d / %d epochs", u.optimizer.Epoch(), u.optimizer.NEpochs())
	}
	return true
}

// Fit initializes the model and runs every epoch. ctx is checked between
// epochs.
func (u *UMAP) Fit(ctx context.Context, data [][]float32) error {
	if _, err := u.Initialize(ctx, data); err != nil {
		return err
	}
	for u.Step() {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// FitTransform fits the model to the data and returns the embedding.
func (u *UMAP) FitTransform(ctx context.Context, data [][]float32) ([][]float32, error) {
	if err := u.Fit(ctx, data); err != nil {
		return nil, err
	}
	return u.Embedding(), nil
}

// Embedding returns a copy of the current embedding, or nil before
// Initialize.
func (u *UMAP) Embedding() [][]float32 {
	if u.optimizer == nil {
		return nil
	}
	return u.optimizer.Embedding()
}

// Epoch returns the number of completed epochs.
func (u *UMAP) Epoch() int {
	if u.optimizer == nil {
		return 0
	}
	return u.optimizer.Epoch()
}

// NEpochs returns the epoch budget computed by Initialize.
func (u *UMAP) NEpochs() int {
	if u.optimizer == nil {
		return 0
	}
	return u.optimizer.NEpochs()
}

// Params returns the kernel parameters used by the optimizer.
func (u *UMAP) Params() (a, b float64, err error) {
	if u.optimizer == nil {
		return 0, 0, ErrNotInitialized
	}
	return u.a, u.b, nil
}

// Graph returns the pruned fuzzy graph the optimizer samples from.
func (u *UMAP) Graph() (*graph.CSRMatrix, error) {
	if u.optimizer == nil {
		return nil, ErrNotInitialized
	}
	return u.graph, nil
}

// KNNGraph returns the neighbor table found by Initialize.
func (u *UMAP) KNNGraph() (*nn.KNNGraph, error) {
	if u.optimizer == nil {
		return nil, ErrNotInitialized
	}
	return u.knnGraph, nil
}

// sources returns the source for the neighbor search and the initial
// layout, and a function yielding the optimizer source once those are done.
// Without a configured source, an MT19937 seeded with Seed drives the
// first two and then seeds a Tausworthe generator for the optimizer.
func (u *UMAP) sources() (random.Source, func() random.Source) {
	if src := u.Config.Random; src != nil {
		return src, func() random.Source { return src }
	}
	mt := random.NewMT19937(uint32(u.Config.Seed))
	return mt, func() random.Source { return mt.Tausworthe() }
}

func (u *UMAP) logger() *log.Logger {
	if u.Config.Logger == nil || !u.Config.Verbose {
		return log.New(io.Discard, "", 0)
	}
	return u.Config.Logger
}

// checkData rejects empty, ragged and non-finite input.
func checkData(data [][]float32) error {
	if len(data) == 0 {
		return fmt.Errorf("no points: %w", ErrEmptyData)
	}
	dim := len(data[0])
	if dim == 0 {
		return fmt.Errorf("no features: %w", ErrEmptyData)
	}
	for i, row := range data {
		if len(row) != dim {
			return fmt.Errorf("row %d has %d values, want %d: %w", i, len(row), dim, ErrRaggedInput)
		}
		for j, v := range row {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return fmt.Errorf("value at [%d][%d]: %w", i, j, ErrNonFinite)
			}
		}
	}
	return nil
}
