package dme

// TreeFeature evaluates a split tree: a point descends from the root to a leaf and takes the leaf value.
// Complexity belongs to the instance.
type TreeFeature struct {
	Expectations
	root       *Node
	complexity float64
}

func NewTreeFeature(root *Node) *TreeFeature {
	return &TreeFeature{Expectations: newExpectations(), root: root}
}

func (f *TreeFeature) FeatureMap(point *Point) float64 {
	node := f.root
	for !node.IsLeaf() {
		node = node.Child(point)
	}
	return node.value
}

func (f *TreeFeature) Complexity() float64 {
	return f.complexity
}

func (f *TreeFeature) SetComplexity(value float64) {
	f.complexity = value
}

func (f *TreeFeature) Kind() Kind {
	return KindTree
}

func (f *TreeFeature) Size() int {
	return f.TreeSize()
}

func (f *TreeFeature) Root() *Node {
	return f.root
}

// walk visits the nodes breadth first.
func (f *TreeFeature) walk(visit func(node *Node)) {
	queue := []*Node{f.root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		visit(node)
		if node.left != nil {
			queue = append(queue, node.left)
		}
		if node.right != nil {
			queue = append(queue, node.right)
		}
	}
}

// ComputeTreeExpectations sets both expectations from the aggregates stored in the leaves:
// the population expectation is the sum of value * weight, the sample expectation is the
// count-weighted mean of the leaf values.
func (f *TreeFeature) ComputeTreeExpectations() {
	population := 0.0
	sampleSum := 0.0
	sampleCount := 0.0
	f.walk(func(node *Node) {
		if !node.IsLeaf() {
			return
		}
		count := float64(len(node.samples))
		population += node.value * node.populationWeight
		sampleSum += node.value * count
		sampleCount += count
	})
	f.population = population
	f.sample = sampleSum / sampleCount
}

// TreeSize returns the number of nodes in the tree.
func (f *TreeFeature) TreeSize() int {
	size := 0
	f.walk(func(*Node) { size++ })
	return size
}
