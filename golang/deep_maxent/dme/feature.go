package dme

import (
	"fmt"
	"math"
)

// Kind tags a feature variant. Reporting relies on it instead of type switches.
type Kind int

const (
	KindRaw Kind = iota
	KindProduct
	KindThreshold
	KindTree
	KindMonomial
)

// Kinds lists every feature kind in reporting order.
var Kinds = []Kind{KindRaw, KindProduct, KindThreshold, KindTree, KindMonomial}

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindProduct:
		return "product"
	case KindThreshold:
		return "threshold"
	case KindTree:
		return "tree"
	case KindMonomial:
		return "monomial"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Feature is a map from points to real numbers together with cached expectations.
// The population expectation is not divided by the normalizer of the space.
type Feature interface {
	FeatureMap(point *Point) float64
	Complexity() float64
	SetComplexity(value float64)
	Kind() Kind
	// Size is the structural size of the feature: node count for trees,
	// total degree for monomials and products, 1 otherwise.
	Size() int
	SampleExpectation() float64
	UnnormalizedPopulationExpectation() float64
	expectations() *Expectations
}

// Expectations caches sample and unnormalized population expectations of a feature.
type Expectations struct {
	sample     float64
	population float64
}

func newExpectations() Expectations {
	return Expectations{sample: math.NaN(), population: math.NaN()}
}

func (e *Expectations) SampleExpectation() float64 {
	return e.sample
}

func (e *Expectations) UnnormalizedPopulationExpectation() float64 {
	return e.population
}

func (e *Expectations) expectations() *Expectations {
	return e
}

// ComputeSampleExpectation stores the mean of the feature over the sample.
func ComputeSampleExpectation(feature Feature, sample Sample) {
	sum := 0.0
	count := 0
	for _, example := range sample {
		count++
		sum += feature.FeatureMap(example)
	}
	feature.expectations().sample = sum / float64(count)
}

// ComputeUnnormalizedPopulationExpectation stores the weighted sum of the feature over the space.
// Divide it by the normalizer to obtain the expectation.
func ComputeUnnormalizedPopulationExpectation(feature Feature, space *Space) {
	expectation := 0.0
	for _, point := range space.points {
		expectation += point.probabilityWeight * feature.FeatureMap(point)
	}
	feature.expectations().population = expectation
}

// FeatureClass carries the complexity shared by every feature built with it.
type FeatureClass struct {
	kind       Kind
	complexity float64
}

func NewFeatureClass(kind Kind) *FeatureClass {
	return &FeatureClass{kind: kind}
}

func (c *FeatureClass) Kind() Kind {
	return c.kind
}

func (c *FeatureClass) Complexity() float64 {
	return c.complexity
}

func (c *FeatureClass) SetComplexity(value float64) {
	c.complexity = value
}

// RawFeature is the identity on one covariate.
type RawFeature struct {
	Expectations
	index int
	class *FeatureClass
}

// NewRawFeature creates a raw feature. A nil class gives the feature a class of its own.
func NewRawFeature(index int, class *FeatureClass) *RawFeature {
	if class == nil {
		class = NewFeatureClass(KindRaw)
	}
	return &RawFeature{Expectations: newExpectations(), index: index, class: class}
}

func (f *RawFeature) FeatureMap(point *Point) float64 {
	return point.RawFeature(f.index)
}

func (f *RawFeature) Complexity() float64 {
	return f.class.complexity
}

// SetComplexity updates the complexity of the whole class.
func (f *RawFeature) SetComplexity(value float64) {
	f.class.complexity = value
}

func (f *RawFeature) Kind() Kind {
	return KindRaw
}

func (f *RawFeature) Size() int {
	return 1
}

func (f *RawFeature) Index() int {
	return f.index
}

// ProductFeature multiplies two covariates. Squares are products of a covariate with itself.
type ProductFeature struct {
	Expectations
	firstIndex, secondIndex int
	class                   *FeatureClass
}

func NewProductFeature(first, second int, class *FeatureClass) *ProductFeature {
	if class == nil {
		class = NewFeatureClass(KindProduct)
	}
	return &ProductFeature{Expectations: newExpectations(), firstIndex: first, secondIndex: second, class: class}
}

func (f *ProductFeature) FeatureMap(point *Point) float64 {
	return point.RawFeature(f.firstIndex) * point.RawFeature(f.secondIndex)
}

func (f *ProductFeature) Complexity() float64 {
	return f.class.complexity
}

func (f *ProductFeature) SetComplexity(value float64) {
	f.class.complexity = value
}

func (f *ProductFeature) Kind() Kind {
	return KindProduct
}

func (f *ProductFeature) Size() int {
	return 2
}

func (f *ProductFeature) Indices() (int, int) {
	return f.firstIndex, f.secondIndex
}

// ThresholdFeature is 1 when the covariate is above the threshold and 0 otherwise.
// A missing covariate is never above the threshold.
type ThresholdFeature struct {
	Expectations
	index     int
	threshold float64
	class     *FeatureClass
}

func NewThresholdFeature(index int, threshold float64, class *FeatureClass) *ThresholdFeature {
	if class == nil {
		class = NewFeatureClass(KindThreshold)
	}
	return &ThresholdFeature{Expectations: newExpectations(), index: index, threshold: threshold, class: class}
}

func (f *ThresholdFeature) FeatureMap(point *Point) float64 {
	if point.RawFeature(f.index) > f.threshold {
		return 1
	}
	return 0
}

func (f *ThresholdFeature) Complexity() float64 {
	return f.class.complexity
}

func (f *ThresholdFeature) SetComplexity(value float64) {
	f.class.complexity = value
}

func (f *ThresholdFeature) Kind() Kind {
	return KindThreshold
}

func (f *ThresholdFeature) Size() int {
	return 1
}

func (f *ThresholdFeature) Threshold() (int, float64) {
	return f.index, f.threshold
}
