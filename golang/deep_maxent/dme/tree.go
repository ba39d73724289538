package dme

import (
	"fmt"
	"strings"
)

// Node is a node of a binary split tree. A leaf keeps the points and the sample observations that
// reach it together with their total probability weight and its value. An internal node keeps
// the question "raw feature < threshold" and both children.
type Node struct {
	feature          int
	threshold        float64
	value            float64
	left, right      *Node
	populationWeight float64
	points, samples  []*Point
}

func NewNode() *Node {
	return &Node{}
}

// GraphDescription returns the description of a node for tree rendering as a graph.
func (node *Node) GraphDescription() string {
	var sb strings.Builder
	if node.IsLeaf() {
		sb.WriteString(fmt.Sprintln("value: ", node.value))
		sb.WriteString(fmt.Sprintln("weight: ", node.populationWeight))
		sb.WriteString(fmt.Sprint("# ", len(node.samples)))
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("f_%d < %6.5f", node.feature, node.threshold))
	return sb.String()
}

// AddPoint stores the point and accumulates its probability weight.
func (node *Node) AddPoint(point *Point) {
	node.points = append(node.points, point)
	node.populationWeight += point.probabilityWeight
}

func (node *Node) AddSample(point *Point) {
	node.samples = append(node.samples, point)
}

// ClearPoints drops the stored points and resets the population weight.
func (node *Node) ClearPoints() {
	node.points = nil
	node.populationWeight = 0.0
}

func (node *Node) ClearSamples() {
	node.samples = nil
}

// IsLeaf returns true when the node has no children.
func (node *Node) IsLeaf() bool {
	return node.left == nil && node.right == nil
}

// Child returns the child the point falls into: the left one iff its split covariate is below the threshold.
// A NaN covariate goes right. A leaf returns nil.
func (node *Node) Child(point *Point) *Node {
	if point.RawFeature(node.feature) < node.threshold {
		return node.left
	}
	return node.right
}

func (node *Node) Value() float64 {
	return node.value
}

func (node *Node) SetValue(value float64) {
	node.value = value
}

func (node *Node) Feature() int {
	return node.feature
}

func (node *Node) SetFeature(index int) {
	node.feature = index
}

func (node *Node) Threshold() float64 {
	return node.threshold
}

func (node *Node) SetThreshold(threshold float64) {
	node.threshold = threshold
}

func (node *Node) LeftChild() *Node {
	return node.left
}

func (node *Node) RightChild() *Node {
	return node.right
}

func (node *Node) SetLeftChild(child *Node) {
	node.left = child
}

func (node *Node) SetRightChild(child *Node) {
	node.right = child
}

func (node *Node) PopulationWeight() float64 {
	return node.populationWeight
}

func (node *Node) SampleCount() int {
	return len(node.samples)
}

func (node *Node) Points() []*Point {
	return node.points
}

func (node *Node) Samples() []*Point {
	return node.samples
}
