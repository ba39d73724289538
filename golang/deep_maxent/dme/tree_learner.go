package dme

import (
	"cmp"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"
)

// TreeLearnerParams configures a TreeLearner.
type TreeLearnerParams struct {
	NumFeatures int
	Alpha, Beta float64
	// ValueToThresholds maps, per covariate, every observed value to the bin threshold
	// that closes its bin. Values absent from the map fall into the bin 0.
	ValueToThresholds []map[float64]float64
	// ThreadsNum > 1 searches covariates concurrently.
	ThreadsNum int
}

// TreeLearner greedily grows split trees breadth first.
type TreeLearner struct {
	TreeLearnerParams
}

func NewTreeLearner(params TreeLearnerParams) *TreeLearner {
	return &TreeLearner{TreeLearnerParams: params}
}

// BestSplit contains results of the threshold search for one covariate of one node.
type BestSplit struct {
	FeatureIndex int
	Threshold    float64
	Gradient     float64
	LeftValue    float64
	// Diff is the expectation difference of the tree after the split.
	Diff float64
}

// ThresholdBucket is the population weight and the sample count of a node that fall into one bin.
type ThresholdBucket struct {
	Threshold float64
	Weight    float64
	Count     int
}

// Train grows a tree on the current weights. Nodes are split in breadth-first order, and a split
// is kept only while it strictly increases the absolute gradient of the whole tree.
func (l *TreeLearner) Train(space *Space, sample Sample) (Feature, float64) {
	root := NewNode()
	for _, point := range space.points {
		root.AddPoint(point)
	}
	for _, point := range sample {
		root.AddSample(point)
	}
	root.SetValue(0)

	oldDiff := 0.0
	treeSize := 1
	oldGradient := 0.0
	normalizer := root.PopulationWeight()
	sampleSize := len(sample)

	queue := []*Node{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		best, found := l.bestSplit(node, oldDiff, normalizer, sampleSize, treeSize)
		if found && math.Abs(best.Gradient) > math.Abs(oldGradient)+Tolerance {
			oldGradient = best.Gradient
			left, right := l.GrowTree(node, best.Threshold, best.FeatureIndex, best.LeftValue)
			queue = append(queue, left, right)
			treeSize += 2
			oldDiff = best.Diff
		}
	}

	feature := NewTreeFeature(root)
	feature.ComputeTreeExpectations()
	feature.SetComplexity(l.TreeComplexity(treeSize, sampleSize))
	return feature, oldGradient
}

// bestSplit scans every covariate and keeps the first one with a strictly larger absolute gradient.
func (l *TreeLearner) bestSplit(node *Node, oldDiff, normalizer float64, sampleSize, treeSize int) (BestSplit, bool) {
	result := make([]BestSplit, l.NumFeatures)
	if l.ThreadsNum > 1 {
		var group errgroup.Group
		group.SetLimit(l.ThreadsNum)
		for q := 0; q < l.NumFeatures; q++ {
			q := q
			group.Go(func() error {
				result[q] = l.BestThreshold(q, node, oldDiff, normalizer, sampleSize, treeSize)
				return nil
			})
		}
		_ = group.Wait()
	} else {
		for q := 0; q < l.NumFeatures; q++ {
			result[q] = l.BestThreshold(q, node, oldDiff, normalizer, sampleSize, treeSize)
		}
	}

	best := BestSplit{Threshold: math.NaN()}
	found := false
	for _, split := range result {
		if math.Abs(split.Gradient) > math.Abs(best.Gradient)+Tolerance {
			best = split
			found = true
		}
	}
	return best, found
}

// BestThreshold finds the bin threshold of the covariate with the largest absolute gradient when the node
// is split there. The child whose value flips is chosen by the larger absolute gradient, ties go right.
// A node without points and samples yields a zero gradient and a NaN threshold.
func (l *TreeLearner) BestThreshold(featureIndex int, node *Node, oldDiff, normalizer float64, sampleSize, treeSize int) BestSplit {
	split := BestSplit{FeatureIndex: featureIndex, Threshold: math.NaN()}
	buckets := l.BuildThresholdToWeights(node, featureIndex)

	bestAbs := -1.0
	leftWeight := 0.0
	rightWeight := node.PopulationWeight()
	leftCount := 0.0
	rightCount := float64(node.SampleCount())
	flip := 1 - 2*node.Value()
	for _, bucket := range buckets {
		leftWeight += bucket.Weight
		rightWeight -= bucket.Weight
		leftCount += float64(bucket.Count)
		rightCount -= float64(bucket.Count)

		leftDiff := leftWeight/normalizer - leftCount/float64(sampleSize)
		rightDiff := rightWeight/normalizer - rightCount/float64(sampleSize)
		led := oldDiff + flip*leftDiff
		red := oldDiff + flip*rightDiff
		leftGradient := l.Gradient(treeSize+2, sampleSize, led)
		rightGradient := l.Gradient(treeSize+2, sampleSize, red)
		leftWins := math.Abs(leftGradient) > math.Abs(rightGradient)+Tolerance

		gradient := rightGradient
		if leftWins {
			gradient = leftGradient
		}
		if math.Abs(gradient) > bestAbs+Tolerance {
			bestAbs = math.Abs(gradient)
			split.Gradient = gradient
			split.Threshold = bucket.Threshold
			if leftWins {
				split.LeftValue = 1 - node.Value()
				split.Diff = led
			} else {
				split.LeftValue = node.Value()
				split.Diff = red
			}
		}
	}
	return split
}

// Gradient is the penalized gradient of a tree of the given size with the given expectation difference.
func (l *TreeLearner) Gradient(treeSize, sampleSize int, expectationDiff float64) float64 {
	complexity := l.Beta + l.Alpha*l.TreeComplexity(treeSize, sampleSize)
	return penalizedGradient(complexity, expectationDiff)
}

// TreeComplexity is sqrt((4 * size + 2) * log2(k + 2) * ln(m + 1) / m) for k covariates and m observations.
func (l *TreeLearner) TreeComplexity(treeSize, sampleSize int) float64 {
	return math.Sqrt(float64(4*treeSize+2) *
		(math.Log(float64(l.NumFeatures)+2.0) / math.Log(2.0)) *
		math.Log(float64(sampleSize)+1.0) /
		float64(sampleSize))
}

// GrowTree turns the leaf into an internal node asking "covariate < threshold". Points and
// observations move into the children, the left child gets leftValue and the right one 1 - leftValue.
func (l *TreeLearner) GrowTree(node *Node, threshold float64, featureIndex int, leftValue float64) (*Node, *Node) {
	left := NewNode()
	right := NewNode()
	node.SetThreshold(threshold)
	node.SetFeature(featureIndex)
	node.SetLeftChild(left)
	node.SetRightChild(right)
	left.SetValue(leftValue)
	right.SetValue(1 - leftValue)
	for _, point := range node.points {
		if point.RawFeature(featureIndex) < threshold {
			left.AddPoint(point)
		} else {
			right.AddPoint(point)
		}
	}
	for _, point := range node.samples {
		if point.RawFeature(featureIndex) < threshold {
			left.AddSample(point)
		} else {
			right.AddSample(point)
		}
	}
	node.ClearPoints()
	node.ClearSamples()
	return left, right
}

// BuildThresholdToWeights groups the points and observations of the node by the bin threshold of the
// covariate and returns the buckets in ascending threshold order.
func (l *TreeLearner) BuildThresholdToWeights(node *Node, index int) []ThresholdBucket {
	var valueToThreshold map[float64]float64
	if index >= 0 && index < len(l.ValueToThresholds) {
		valueToThreshold = l.ValueToThresholds[index]
	}
	byThreshold := make(map[float64]*ThresholdBucket)
	bucketOf := func(point *Point) *ThresholdBucket {
		threshold := valueToThreshold[point.RawFeature(index)]
		bucket, ok := byThreshold[threshold]
		if !ok {
			bucket = &ThresholdBucket{Threshold: threshold}
			byThreshold[threshold] = bucket
		}
		return bucket
	}
	for _, point := range node.points {
		bucketOf(point).Weight += point.probabilityWeight
	}
	for _, point := range node.samples {
		bucketOf(point).Count++
	}

	buckets := make([]ThresholdBucket, 0, len(byThreshold))
	for _, bucket := range byThreshold {
		buckets = append(buckets, *bucket)
	}
	slices.SortFunc(buckets, func(a, b ThresholdBucket) int {
		return cmp.Compare(a.Threshold, b.Threshold)
	})
	return buckets
}
