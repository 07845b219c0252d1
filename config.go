package umap

import (
	"fmt"
	"log"
	"math"

	"github.com/nozzle/stepumap/distance"
	"github.com/nozzle/stepumap/initial"
	"github.com/nozzle/stepumap/random"
)

// Config configures the UMAP algorithm.
type Config struct {
	// NNeighbors is the number of neighbors for k-NN graph construction.
	// Larger values capture more global structure but are slower.
	// Default: 15
	NNeighbors int

	// NComponents is the dimensionality of the target embedding.
	// Default: 2
	NComponents int

	// Metric is the distance metric to use.
	// Options: "euclidean", "manhattan", "cosine", "correlation", etc.
	// Default: "euclidean"
	Metric string

	// MinDist is the effective minimum distance between embedded points.
	// Smaller values create tighter clusters but may lose global structure.
	// Default: 0.1
	MinDist float64

	// Spread is the effective scale of embedded points.
	// In combination with MinDist, this controls the clumpiness of the embedding.
	// Default: 1.0
	Spread float64

	// A and B override the fitted kernel parameters when both are positive.
	// Default: 0 (fit from MinDist and Spread)
	A, B float64

	// NEpochs is the number of training epochs.
	// 0 picks 500 for fewer than 10000 points and 200 otherwise.
	// Default: 0
	NEpochs int

	// LearningRate is the initial learning rate for SGD.
	// Default: 1.0
	LearningRate float64

	// NegativeSampleRate is the number of negative samples per positive sample.
	// Default: 5
	NegativeSampleRate float64

	// RepulsionStrength weights the negative samples.
	// Default: 1.0
	RepulsionStrength float64

	// Init is the initialization method.
	// Options: "spectral" or "random"
	// Default: "spectral"
	Init string

	// LocalConnectivity controls how local the connectivity estimate is.
	// Default: 1.0
	LocalConnectivity float64

	// Bandwidth scales the per-point target connectivity log2(k).
	// Default: 1.0
	Bandwidth float64

	// SetOpMixRatio controls the blend between fuzzy set union and intersection.
	// 0.0 = pure intersection, 1.0 = pure union
	// Default: 1.0
	SetOpMixRatio float64

	// Seed for the default random source.
	// Use a fixed seed for reproducible results.
	// Default: 42
	Seed int64

	// Random overrides the default source. When it is not thread safe
	// every stage runs its random draws on a single goroutine and the
	// optimizer runs serially.
	// Default: nil (MT19937 seeded with Seed)
	Random random.Source

	// NumWorkers for parallel processing.
	// 0 = auto-detect based on CPU cores.
	// Default: 0
	NumWorkers int

	// Verbose enables progress output on Logger.
	// Default: false
	Verbose bool

	// Logger receives progress output. nil discards it.
	// Default: nil
	Logger *log.Logger

	// NeighborProgress is called with the completed fraction of the
	// neighbor search.
	// Default: nil
	NeighborProgress func(fraction float64)

	// ProgressCallback is called after each epoch with (epoch, totalEpochs).
	// Default: nil
	ProgressCallback func(epoch, total int)
}

// DefaultConfig returns the default UMAP configuration.
func DefaultConfig() Config {
	return Config{
		NNeighbors:         15,
		NComponents:        2,
		Metric:             "euclidean",
		MinDist:            0.1,
		Spread:             1.0,
		NEpochs:            0,
		LearningRate:       1.0,
		NegativeSampleRate: 5,
		RepulsionStrength:  1.0,
		Init:               string(initial.Spectral),
		LocalConnectivity:  1.0,
		Bandwidth:          1.0,
		SetOpMixRatio:      1.0,
		Seed:               42,
		NumWorkers:         0,
		Verbose:            false,
	}
}

// Validate checks the configuration for a data set of n points.
func (c Config) Validate(n int) error {
	if c.NNeighbors <= 0 {
		return fmt.Errorf("n_neighbors=%d: %w", c.NNeighbors, ErrInvalidNeighbors)
	}
	if c.NNeighbors >= n {
		return fmt.Errorf("n_neighbors=%d with %d points: %w", c.NNeighbors, n, ErrTooFewSamples)
	}
	if c.NComponents <= 0 {
		return fmt.Errorf("n_components=%d: %w", c.NComponents, ErrInvalidComponents)
	}
	if !(c.Spread > 0) || !(c.MinDist >= 0) || c.MinDist > c.Spread {
		return fmt.Errorf("min_dist=%g spread=%g: %w", c.MinDist, c.Spread, ErrInvalidMinDist)
	}
	if _, ok := distance.Get(c.Metric); !ok {
		return fmt.Errorf("metric %q: %w", c.Metric, ErrUnknownMetric)
	}
	if _, ok := initial.ParseMethod(c.Init); !ok {
		return fmt.Errorf("init %q: %w", c.Init, ErrUnknownInit)
	}

	checks := []struct {
		name string
		val  float64
		ok   bool
	}{
		{"learning_rate", c.LearningRate, c.LearningRate > 0},
		{"negative_sample_rate", c.NegativeSampleRate, c.NegativeSampleRate >= 0},
		{"repulsion_strength", c.RepulsionStrength, c.RepulsionStrength >= 0},
		{"local_connectivity", c.LocalConnectivity, c.LocalConnectivity >= 0},
		{"bandwidth", c.Bandwidth, c.Bandwidth > 0},
		{"set_op_mix_ratio", c.SetOpMixRatio, c.SetOpMixRatio >= 0 && c.SetOpMixRatio <= 1},
		{"a", c.A, c.A >= 0},
		{"b", c.B, c.B >= 0},
	}
	for _, check := range checks {
		if !check.ok || math.IsInf(check.val, 0) {
			return fmt.Errorf("%s=%g: %w", check.name, check.val, ErrInvalidParameter)
		}
	}
	if c.NEpochs < 0 {
		return fmt.Errorf("n_epochs=%d: %w", c.NEpochs, ErrInvalidParameter)
	}
	return nil
}

// epochsFor returns the epoch budget for n points.
func (c Config) epochsFor(n int) int {
	if c.NEpochs > 0 {
		return c.NEpochs
	}
	if n < 10000 {
		return 500
	}
	return 200
}
