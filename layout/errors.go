package layout

import "errors"

var (
	// ErrBadEmbedding indicates an initial embedding that is empty, ragged,
	// non-finite or does not match the graph.
	ErrBadEmbedding = errors.New("layout: invalid embedding")

	// ErrBadParams indicates non-positive or non-finite kernel parameters or
	// epoch count.
	ErrBadParams = errors.New("layout: invalid parameters")

	// ErrNilSource indicates a missing random source.
	ErrNilSource = errors.New("layout: nil random source")
)
