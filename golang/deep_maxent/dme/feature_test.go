package dme

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTree builds a depth two tree:
// raw_1 < 0 ? (raw_2 < 1 ? 1 : 0) : (raw_3 < -2 ? 0 : 1).
func createTestTree() *Node {
	root := NewNode()
	root.SetLeftChild(NewNode())
	root.SetRightChild(NewNode())
	root.LeftChild().SetLeftChild(NewNode())
	root.LeftChild().SetRightChild(NewNode())
	root.RightChild().SetLeftChild(NewNode())
	root.RightChild().SetRightChild(NewNode())
	root.SetThreshold(0.0)
	root.SetFeature(1)
	root.LeftChild().SetThreshold(1.0)
	root.LeftChild().SetFeature(2)
	root.LeftChild().LeftChild().SetValue(1)
	root.LeftChild().RightChild().SetValue(0)
	root.RightChild().SetThreshold(-2.0)
	root.RightChild().SetFeature(3)
	root.RightChild().LeftChild().SetValue(0)
	root.RightChild().RightChild().SetValue(1)
	return root
}

func createTreeTestPoints() []*Point {
	return []*Point{
		NewPointWithFeatures(1, 1, -1.0, 0.0, 123),
		NewPointWithFeatures(2, 1, -0.5, 123, 3),
		NewPointWithFeatures(3, -1, 0.0, 40, -3),
		NewPointWithFeatures(4, -1, 0.1, -40, 1),
	}
}

func createSpace(points ...*Point) *Space {
	space := NewSpace()
	for _, point := range points {
		space.AddPoint(point)
	}
	space.Finalize()
	return space
}

func TestRawFeatureMap(t *testing.T) {
	point := NewPointWithFeatures(1, -10, 0.5, 123)
	assert.InDelta(t, -10.0, NewRawFeature(0, nil).FeatureMap(point), Tolerance)
	assert.InDelta(t, 0.5, NewRawFeature(1, nil).FeatureMap(point), Tolerance)
	assert.InDelta(t, 123.0, NewRawFeature(2, nil).FeatureMap(point), Tolerance)
	assert.True(t, math.IsNaN(NewRawFeature(3, nil).FeatureMap(point)))
}

func TestProductFeatureMap(t *testing.T) {
	point := NewPointWithFeatures(1, -10, 0.5, 123)
	assert.InDelta(t, 100.0, NewProductFeature(0, 0, nil).FeatureMap(point), Tolerance)
	assert.InDelta(t, 61.5, NewProductFeature(1, 2, nil).FeatureMap(point), Tolerance)
	assert.InDelta(t, -1230.0, NewProductFeature(0, 2, nil).FeatureMap(point), Tolerance)
	assert.True(t, math.IsNaN(NewProductFeature(3, 1, nil).FeatureMap(point)))
}

func TestThresholdFeatureMap(t *testing.T) {
	point := NewPointWithFeatures(1, -10, 0.5, 123)
	assert.InDelta(t, 0.0, NewThresholdFeature(0, 0, nil).FeatureMap(point), Tolerance)
	assert.InDelta(t, 1.0, NewThresholdFeature(1, 0, nil).FeatureMap(point), Tolerance)
	assert.InDelta(t, 0.0, NewThresholdFeature(2, 200, nil).FeatureMap(point), Tolerance)
	assert.InDelta(t, 0.0, NewThresholdFeature(3, 1, nil).FeatureMap(point), Tolerance)
}

func TestTreeFeatureMap(t *testing.T) {
	feature := NewTreeFeature(createTestTree())
	expected := []float64{1.0, 0.0, 0.0, 1.0}
	for index, point := range createTreeTestPoints() {
		assert.InDelta(t, expected[index], feature.FeatureMap(point), Tolerance, "point %d", index)
	}
}

func TestMonomialFeatureMap(t *testing.T) {
	point := NewPointWithFeatures(1, -1, 0.5, 3)
	assert.InDelta(t, 6.75, NewMonomialFeature([]int{0, 2, 3}).FeatureMap(point), Tolerance)
	assert.InDelta(t, -0.125, NewMonomialFeature([]int{3, 3, 0}).FeatureMap(point), Tolerance)
	assert.InDelta(t, 1.5, NewMonomialFeature([]int{2, 1, 1}).FeatureMap(point), Tolerance)
	assert.InDelta(t, -9.0, NewMonomialFeature([]int{1, 0, 2}).FeatureMap(point), Tolerance)
}

func TestSampleExpectation(t *testing.T) {
	cases := []struct {
		name     string
		feature  Feature
		points   []*Point
		expected float64
	}{
		{
			name:    "raw",
			feature: NewRawFeature(1, nil),
			points: []*Point{
				NewPointWithFeatures(1, -10, 0.5, 123),
				NewPointWithFeatures(2, -10, 1.0, 123),
				NewPointWithFeatures(3, -10, 1.5, 123),
			},
			expected: 1.0,
		},
		{
			name:    "product",
			feature: NewProductFeature(1, 1, nil),
			points: []*Point{
				NewPointWithFeatures(1, -10, 3.0, 123),
				NewPointWithFeatures(2, -10, 1.0, 123),
				NewPointWithFeatures(3, -10, 3.0, 123),
			},
			expected: 5.0,
		},
		{
			name:    "threshold",
			feature: NewThresholdFeature(1, 1.1, nil),
			points: []*Point{
				NewPointWithFeatures(1, -10, 3.0, 123),
				NewPointWithFeatures(2, -10, 1.0, 123),
				NewPointWithFeatures(3, -10, 3.0, 123),
			},
			expected: 0.5,
		},
		{
			name:    "monomial",
			feature: NewMonomialFeature([]int{3, 1, 2}),
			points: []*Point{
				NewPointWithFeatures(1, -1, 0.5, 3),
				NewPointWithFeatures(2, -1, 1.0, 2),
				NewPointWithFeatures(3, 1, 1.5, 1),
			},
			expected: -2.75,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, math.IsNaN(tc.feature.SampleExpectation()))
			sample := Sample{tc.points[0], tc.points[1], tc.points[2], tc.points[1]}
			ComputeSampleExpectation(tc.feature, sample)
			assert.InDelta(t, tc.expected, tc.feature.SampleExpectation(), Tolerance)
		})
	}
}

func TestTreeSampleExpectation(t *testing.T) {
	feature := NewTreeFeature(createTestTree())
	require.True(t, math.IsNaN(feature.SampleExpectation()))
	points := createTreeTestPoints()
	ComputeSampleExpectation(feature, Sample{points[0], points[1], points[2], points[3], points[3]})
	assert.InDelta(t, 0.6, feature.SampleExpectation(), Tolerance)
}

func weighted(point *Point, weight float64) *Point {
	point.SetProbWeight(weight)
	return point
}

func TestUnnormalizedPopulationExpectation(t *testing.T) {
	cases := []struct {
		name     string
		feature  Feature
		space    *Space
		expected float64
	}{
		{
			name:    "raw",
			feature: NewRawFeature(1, nil),
			space: createSpace(
				weighted(NewPointWithFeatures(1, -1, 0.5, 123), 2),
				weighted(NewPointWithFeatures(2, 0.0, 1.0, 123), 100),
				weighted(NewPointWithFeatures(3, 1, 1.5, 123), 2/1.5),
			),
			expected: 103.0,
		},
		{
			name:    "product",
			feature: NewProductFeature(0, 1, nil),
			space: createSpace(
				weighted(NewPointWithFeatures(1, -1, 0.5, 123), 2),
				weighted(NewPointWithFeatures(2, 0.0, 1.0, 123), 100),
				weighted(NewPointWithFeatures(3, 1, 1.5, 123), 2/1.5),
			),
			expected: 1.0,
		},
		{
			name:    "threshold",
			feature: NewThresholdFeature(0, 1.1, nil),
			space: createSpace(
				weighted(NewPointWithFeatures(1, -1, 0.5, 123), 2),
				weighted(NewPointWithFeatures(2, 0.0, 1.0, 123), 2),
				weighted(NewPointWithFeatures(3, 4, 1.5, 123), 5),
			),
			expected: 5.0,
		},
		{
			name:    "monomial",
			feature: NewMonomialFeature([]int{3, 1, 2}),
			space: createSpace(
				weighted(NewPointWithFeatures(1, -1, 0.5, 3), 2),
				weighted(NewPointWithFeatures(2, -1, 1.0, 2), 1),
				weighted(NewPointWithFeatures(3, 1, 1.5, 1), 4),
			),
			expected: -7.0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, math.IsNaN(tc.feature.UnnormalizedPopulationExpectation()))
			ComputeUnnormalizedPopulationExpectation(tc.feature, tc.space)
			assert.InDelta(t, tc.expected, tc.feature.UnnormalizedPopulationExpectation(), Tolerance)
		})
	}
}

func TestTreePopulationExpectation(t *testing.T) {
	feature := NewTreeFeature(createTestTree())
	points := createTreeTestPoints()
	for index, weight := range []float64{2.0, 1.0, 4.0, 7.0} {
		points[index].SetProbWeight(weight)
	}
	ComputeUnnormalizedPopulationExpectation(feature, createSpace(points...))
	assert.InDelta(t, 9.0, feature.UnnormalizedPopulationExpectation(), Tolerance)
}

func TestComputeTreeExpectations(t *testing.T) {
	root := createTestTree()
	feature := NewTreeFeature(root)
	assert.Equal(t, 7, feature.TreeSize())
	assert.Equal(t, 7, feature.Size())
	assert.True(t, math.IsNaN(feature.SampleExpectation()))
	assert.True(t, math.IsNaN(feature.UnnormalizedPopulationExpectation()))

	weights := []float64{2, 3, 1, 30, 40, 50, 30, 50, 40, 3, 7, 5}
	points := make([]*Point, len(weights))
	for index, weight := range weights {
		points[index] = weighted(NewPoint(index+1), weight)
	}
	leaves := []*Node{
		root.LeftChild().LeftChild(),
		root.LeftChild().RightChild(),
		root.RightChild().LeftChild(),
		root.RightChild().RightChild(),
	}
	for index, point := range points {
		leaves[index/3].AddPoint(point)
	}
	leaves[0].AddSample(points[0])
	leaves[0].AddSample(points[1])
	leaves[0].AddSample(points[1])
	leaves[1].AddSample(points[3])
	leaves[1].AddSample(points[3])
	leaves[2].AddSample(points[6])

	feature.ComputeTreeExpectations()
	assert.InDelta(t, 21.0, feature.UnnormalizedPopulationExpectation(), Tolerance)
	assert.InDelta(t, 0.5, feature.SampleExpectation(), Tolerance)
}

func TestMonomialSetExpectations(t *testing.T) {
	feature := NewMonomialFeature([]int{1, 0, 2})
	assert.Equal(t, 3, feature.Power())
	assert.Equal(t, 3, feature.Size())
	feature.SetExpectations(4.0, 0.25)
	assert.InDelta(t, 4.0, feature.UnnormalizedPopulationExpectation(), Tolerance)
	assert.InDelta(t, 0.25, feature.SampleExpectation(), Tolerance)
}

func TestComplexity(t *testing.T) {
	thresholdClass := NewFeatureClass(KindThreshold)
	feature1 := NewRawFeature(1, nil)
	feature2 := NewProductFeature(0, 0, nil)
	feature3 := NewThresholdFeature(0, 0.0, thresholdClass)
	feature4 := NewThresholdFeature(1, 1.1, thresholdClass)
	feature5 := NewTreeFeature(NewNode())
	feature6 := NewTreeFeature(NewNode())
	feature7 := NewMonomialFeature([]int{1, 2})
	feature8 := NewMonomialFeature([]int{1, 2})
	feature1.SetComplexity(1.0)
	feature2.SetComplexity(2.0)
	feature3.SetComplexity(3.0)
	feature5.SetComplexity(5.0)
	feature6.SetComplexity(6.0)
	feature7.SetComplexity(7.0)
	feature8.SetComplexity(8.0)
	assert.InDelta(t, 1.0, feature1.Complexity(), Tolerance)
	assert.InDelta(t, 2.0, feature2.Complexity(), Tolerance)
	assert.InDelta(t, 3.0, feature3.Complexity(), Tolerance)
	assert.InDelta(t, 3.0, feature4.Complexity(), Tolerance)
	assert.InDelta(t, 3.0, thresholdClass.Complexity(), Tolerance)
	assert.InDelta(t, 5.0, feature5.Complexity(), Tolerance)
	assert.InDelta(t, 6.0, feature6.Complexity(), Tolerance)
	assert.InDelta(t, 7.0, feature7.Complexity(), Tolerance)
	assert.InDelta(t, 8.0, feature8.Complexity(), Tolerance)
}

func TestKindAndSize(t *testing.T) {
	features := []Feature{
		NewRawFeature(0, nil),
		NewProductFeature(0, 1, nil),
		NewThresholdFeature(0, 0.5, nil),
		NewTreeFeature(NewNode()),
		NewMonomialFeature([]int{2, 0, 1}),
	}
	kinds := []string{"raw", "product", "threshold", "tree", "monomial"}
	sizes := []int{1, 2, 1, 1, 3}
	for index, feature := range features {
		assert.Equal(t, kinds[index], feature.Kind().String())
		assert.Equal(t, sizes[index], feature.Size())
	}
	assert.Equal(t, "kind(42)", Kind(42).String())
}
