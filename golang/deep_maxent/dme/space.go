package dme

import "math"

// Tolerance is the minimal difference between two values that are treated as distinct.
// Every "strictly better" comparison of gradients goes through it.
const Tolerance = 1e-7

// Point is an element of the space. It keeps raw covariates and a probability weight.
// Covariates can be appended until the point is finalized, the weight stays mutable.
type Point struct {
	id                int
	finalized         bool
	probabilityWeight float64
	rawFeatures       []float64
}

// NewPoint creates a point with the given id and the unit weight.
func NewPoint(id int) *Point {
	return &Point{id: id, probabilityWeight: 1.0}
}

// NewPointWithFeatures creates a point, appends the covariates and finalizes it.
func NewPointWithFeatures(id int, rawFeatures ...float64) *Point {
	point := NewPoint(id)
	for _, value := range rawFeatures {
		point.AddRawFeature(value)
	}
	point.Finalize()
	return point
}

// ID returns the caller-assigned identity of the point.
func (p *Point) ID() int {
	return p.id
}

// RawFeature returns the covariate with the given index or NaN when the point has no such covariate.
func (p *Point) RawFeature(index int) float64 {
	if index < 0 || index >= len(p.rawFeatures) {
		return math.NaN()
	}
	return p.rawFeatures[index]
}

// AddRawFeature appends a covariate and returns its index, or -1 if the point is finalized.
func (p *Point) AddRawFeature(value float64) int {
	if p.finalized {
		return -1
	}
	p.rawFeatures = append(p.rawFeatures, value)
	return len(p.rawFeatures) - 1
}

func (p *Point) ProbWeight() float64 {
	return p.probabilityWeight
}

func (p *Point) SetProbWeight(value float64) {
	p.probabilityWeight = value
}

func (p *Point) NumRawFeatures() int {
	return len(p.rawFeatures)
}

func (p *Point) Finalize() {
	p.finalized = true
}

// Space is an ordered collection of points. The position of a point is its key,
// which is independent of the point id.
type Space struct {
	finalized bool
	points    []*Point
}

func NewSpace() *Space {
	return &Space{points: make([]*Point, 0)}
}

// AddPoint appends the point and returns its key, or -1 if the space is finalized.
func (s *Space) AddPoint(point *Point) int {
	if s.finalized {
		return -1
	}
	s.points = append(s.points, point)
	return len(s.points) - 1
}

// Point returns the point stored under the key. An unknown key panics.
func (s *Space) Point(key int) *Point {
	return s.points[key]
}

// Finalize closes the space and every point in it.
func (s *Space) Finalize() {
	for _, point := range s.points {
		point.Finalize()
	}
	s.finalized = true
}

func (s *Space) Finalized() bool {
	return s.finalized
}

func (s *Space) NumPoints() int {
	return len(s.points)
}

// Points returns the points in key order. The slice is shared with the space.
func (s *Space) Points() []*Point {
	return s.points
}

// TotalWeight sums probability weights in key order.
func (s *Space) TotalWeight() float64 {
	total := 0.0
	for _, point := range s.points {
		total += point.probabilityWeight
	}
	return total
}

// Sample is a multiset of observed points. Repeated references count as repeated observations.
type Sample []*Point
