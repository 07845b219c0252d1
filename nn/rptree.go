package nn

import (
	"github.com/viterin/vek/vek32"

	"github.com/nozzle/stepumap/random"
)

// RPTree represents a random projection tree for approximate nearest neighbor search.
type RPTree struct {
	// Hyperplane normal for splits (nil for leaf nodes)
	Hyperplane []float32
	// Offset for the hyperplane decision
	Offset float32
	// Left and Right children (nil for leaves)
	Left  *RPTree
	Right *RPTree
	// Indices of points in this leaf (empty for internal nodes)
	Indices []int32
	// IsLeaf indicates if this is a leaf node
	IsLeaf bool
}

// RPForest is a collection of RP-trees over one data set.
type RPForest struct {
	Trees    []*RPTree
	LeafSize int
}

// RPForestConfig configures RP-forest construction.
type RPForestConfig struct {
	// NumTrees is the number of trees to build
	NumTrees int
	// LeafSize is the maximum number of points in a leaf
	LeafSize int
	// Angular splits through the origin on normalized points
	Angular bool
	// Source drives split point selection
	Source random.Source
}

// DefaultRPForestConfig returns default configuration.
func DefaultRPForestConfig() RPForestConfig {
	return RPForestConfig{
		NumTrees: 10,
		LeafSize: 30,
		Angular:  false,
	}
}

// BuildRPForest builds a random projection forest from data. Trees are
// built one after another so that draws from the Source stay in a fixed
// order.
func BuildRPForest(data [][]float32, config RPForestConfig) *RPForest {
	n := len(data)
	if n == 0 || config.NumTrees <= 0 {
		return &RPForest{LeafSize: config.LeafSize}
	}

	src := config.Source
	if src == nil {
		src = random.NewTausworthe(42)
	}
	leafSize := max(config.LeafSize, 2)

	trees := make([]*RPTree, config.NumTrees)
	for t := range trees {
		indices := make([]int32, n)
		for i := range indices {
			indices[i] = int32(i)
		}
		trees[t] = buildRPTree(data, indices, leafSize, config.Angular, src)
	}

	return &RPForest{
		Trees:    trees,
		LeafSize: leafSize,
	}
}

// buildRPTree recursively builds an RP-tree.
func buildRPTree(data [][]float32, indices []int32, leafSize int, angular bool, src random.Source) *RPTree {
	if len(indices) <= leafSize {
		leafIndices := make([]int32, len(indices))
		copy(leafIndices, indices)
		return &RPTree{
			Indices: leafIndices,
			IsLeaf:  true,
		}
	}

	// Two distinct random points define the split
	i := src.Intn(0, len(indices))
	j := src.Intn(0, len(indices)-1)
	if j >= i {
		j++
	}

	hyperplane, offset := splitHyperplane(data[indices[i]], data[indices[j]], angular)

	leftIndices := make([]int32, 0, len(indices)/2)
	rightIndices := make([]int32, 0, len(indices)/2)
	for _, idx := range indices {
		if vek32.Dot(data[idx], hyperplane) < offset {
			leftIndices = append(leftIndices, idx)
		} else {
			rightIndices = append(rightIndices, idx)
		}
	}

	// Duplicate points can put everything on one side
	if len(leftIndices) == 0 || len(rightIndices) == 0 {
		shuffled := make([]int32, len(indices))
		copy(shuffled, indices)
		random.Shuffle(src, shuffled)
		mid := len(shuffled) / 2
		leftIndices = shuffled[:mid]
		rightIndices = shuffled[mid:]
	}

	return &RPTree{
		Hyperplane: hyperplane,
		Offset:     offset,
		Left:       buildRPTree(data, leftIndices, leafSize, angular, src),
		Right:      buildRPTree(data, rightIndices, leafSize, angular, src),
		IsLeaf:     false,
	}
}

// splitHyperplane returns the normal and offset of the plane separating p1
// from p2. Euclidean splits pass through the midpoint; angular splits pass
// through the origin between the normalized points.
func splitHyperplane(p1, p2 []float32, angular bool) ([]float32, float32) {
	if angular {
		n1 := normalized(p1)
		n2 := normalized(p2)
		hyperplane := vek32.Sub(n2, n1)
		if norm := vek32.Norm(hyperplane); norm > 0 {
			vek32.DivNumber_Inplace(hyperplane, norm)
		}
		return hyperplane, 0
	}

	hyperplane := vek32.Sub(p2, p1)
	offset := (vek32.Dot(p1, hyperplane) + vek32.Dot(p2, hyperplane)) / 2
	return hyperplane, offset
}

func normalized(p []float32) []float32 {
	out := make([]float32, len(p))
	copy(out, p)
	if norm := vek32.Norm(out); norm > 0 {
		vek32.DivNumber_Inplace(out, norm)
	}
	return out
}

// Leaves returns the point indices of every leaf, left to right.
func (t *RPTree) Leaves() [][]int32 {
	if t.IsLeaf {
		return [][]int32{t.Indices}
	}
	return append(t.Left.Leaves(), t.Right.Leaves()...)
}

// Leaves returns the leaves of every tree in the forest.
func (f *RPForest) Leaves() [][]int32 {
	var leaves [][]int32
	for _, tree := range f.Trees {
		leaves = append(leaves, tree.Leaves()...)
	}
	return leaves
}
