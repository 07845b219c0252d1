package umap

import "errors"

// Sentinel errors returned by Initialize and Validate. They are always
// wrapped with context; test with errors.Is.
var (
	// ErrEmptyData indicates an input with no points or no features.
	ErrEmptyData = errors.New("umap: empty data")

	// ErrRaggedInput indicates rows of different lengths.
	ErrRaggedInput = errors.New("umap: rows have different lengths")

	// ErrNonFinite indicates a NaN or infinite input value.
	ErrNonFinite = errors.New("umap: non-finite value")

	// ErrInvalidNeighbors indicates a non-positive neighbor count.
	ErrInvalidNeighbors = errors.New("umap: neighbor count must be positive")

	// ErrTooFewSamples indicates a neighbor count of at least the number of points.
	ErrTooFewSamples = errors.New("umap: neighbor count must be less than the number of points")

	// ErrInvalidComponents indicates a non-positive embedding dimension.
	ErrInvalidComponents = errors.New("umap: component count must be positive")

	// ErrInvalidMinDist indicates a negative MinDist, a non-positive Spread
	// or MinDist greater than Spread.
	ErrInvalidMinDist = errors.New("umap: invalid min_dist or spread")

	// ErrInvalidParameter indicates any other out-of-range setting.
	ErrInvalidParameter = errors.New("umap: invalid parameter")

	// ErrUnknownMetric indicates a metric name missing from the registry.
	ErrUnknownMetric = errors.New("umap: unknown metric")

	// ErrUnknownInit indicates an unknown initialization method.
	ErrUnknownInit = errors.New("umap: unknown init method")

	// ErrNotInitialized indicates a call that needs Initialize first.
	ErrNotInitialized = errors.New("umap: not initialized")
)
