// Package distance provides the distance kernels used to build the
// high-dimensional neighbor graph.
package distance

import (
	"math"
	"sort"
)

// Kernel is a pluggable distance between two points of the source space.
type Kernel interface {
	// Distance returns the distance between x and y. x and y have equal length.
	Distance(x, y []float32) float32
	// Angular reports whether the kernel measures angles, in which case
	// random-projection splits go through the origin.
	Angular() bool
}

// Func adapts a plain distance function to the Kernel interface.
type Func func(x, y []float32) float32

// Distance calls f(x, y).
func (f Func) Distance(x, y []float32) float32 { return f(x, y) }

// Angular reports false; use Angle to wrap angular functions.
func (f Func) Angular() bool { return false }

// Angle adapts an angular distance function to the Kernel interface.
type Angle func(x, y []float32) float32

// Distance calls f(x, y).
func (f Angle) Distance(x, y []float32) float32 { return f(x, y) }

// Angular reports true.
func (f Angle) Angular() bool { return true }

// Registry maps metric names to their kernels.
var Registry = map[string]Kernel{
	// Minkowski family
	"euclidean":   Func(Euclidean),
	"l2":          Func(Euclidean),
	"sqeuclidean": Func(SquaredEuclidean),
	"manhattan":   Func(Manhattan),
	"l1":          Func(Manhattan),
	"taxicab":     Func(Manhattan),
	"chebyshev":   Func(Chebyshev),
	"linfinity":   Func(Chebyshev),
	"linf":        Func(Chebyshev),
	"minkowski":   Minkowski(2),

	// Angular metrics
	"cosine":      Angle(Cosine),
	"correlation": Angle(Correlation),

	// Other metrics
	"canberra":   Func(Canberra),
	"braycurtis": Func(BrayCurtis),
	"hellinger":  Func(Hellinger),
	"haversine":  Func(Haversine),

	// Binary metrics
	"hamming":        Func(Hamming),
	"jaccard":        Func(Jaccard),
	"dice":           Func(Dice),
	"matching":       Func(Hamming),
	"kulsinski":      Func(Kulsinski),
	"rogerstanimoto": Func(RogersTanimoto),
	"russellrao":     Func(RussellRao),
	"sokalmichener":  Func(RogersTanimoto),
	"sokalsneath":    Func(SokalSneath),
	"yule":           Func(Yule),
}

// Get returns the kernel for the given metric name.
func Get(name string) (Kernel, bool) {
	k, ok := Registry[name]
	return k, ok
}

// Names returns the registered metric names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
