package dme

import "math"

// MonomialLearnerParams configures a MonomialLearner.
type MonomialLearnerParams struct {
	NumFeatures int
	Alpha, Beta float64
	// FeatureBound bounds the absolute value of every covariate.
	FeatureBound float64
}

// MonomialLearner grows a monomial one covariate at a time while the gradient strictly improves.
type MonomialLearner struct {
	MonomialLearnerParams
}

func NewMonomialLearner(params MonomialLearnerParams) *MonomialLearner {
	return &MonomialLearner{MonomialLearnerParams: params}
}

// MonomialCandidate is the result of one BestFeature round.
type MonomialCandidate struct {
	Gradient float64
	Feature  int
	// PopulationExpectation is normalized by the total weight of the space.
	PopulationExpectation float64
	SampleExpectation     float64
}

// Train multiplies covariates into the monomial while the absolute gradient grows by more than Tolerance.
func (l *MonomialLearner) Train(space *Space, sample Sample) (Feature, float64) {
	powers := make([]int, l.NumFeatures)
	pointValues := make([]float64, len(space.points))
	normalizer := 0.0
	for index, point := range space.points {
		pointValues[index] = point.probabilityWeight
		normalizer += point.probabilityWeight
	}
	sampleValues := make([]float64, len(sample))
	for index := range sampleValues {
		sampleValues[index] = 1.0
	}

	// The empty monomial is the constant 1.
	bestGradient := 0.0
	populationExpectation := 1.0
	sampleExpectation := 1.0
	power := 0
	for {
		candidate := l.BestFeature(pointValues, sampleValues, space, sample, normalizer, power)
		if math.Abs(candidate.Gradient) <= math.Abs(bestGradient)+Tolerance {
			break
		}
		bestGradient = candidate.Gradient
		populationExpectation = candidate.PopulationExpectation
		sampleExpectation = candidate.SampleExpectation
		powers[candidate.Feature]++
		power++
		for index, point := range space.points {
			pointValues[index] *= point.RawFeature(candidate.Feature)
		}
		for index, point := range sample {
			sampleValues[index] *= point.RawFeature(candidate.Feature)
		}
	}

	feature := NewMonomialFeature(powers)
	feature.SetComplexity(l.MonomialComplexity(power, len(sample)))
	feature.SetExpectations(populationExpectation*normalizer, sampleExpectation)
	return feature, bestGradient
}

// Gradient is the penalized gradient of a monomial of the given power with the given expectation difference.
func (l *MonomialLearner) Gradient(power, sampleSize int, difference float64) float64 {
	complexity := l.Beta + l.Alpha*l.MonomialComplexity(power, sampleSize)
	return penalizedGradient(complexity, difference)
}

// MonomialComplexity is sqrt(2 * bound * power * ln(k) / m).
func (l *MonomialLearner) MonomialComplexity(power, sampleSize int) float64 {
	return math.Sqrt(2 * l.FeatureBound * float64(power) *
		math.Log(float64(l.NumFeatures)) / float64(sampleSize))
}

// BestFeature picks the covariate that gives the largest absolute gradient when multiplied into the
// current monomial. pointValues hold weight * monomial per point, sampleValues hold the monomial per observation.
// The first covariate wins among those within Tolerance of each other.
func (l *MonomialLearner) BestFeature(pointValues, sampleValues []float64, space *Space, sample Sample, normalizer float64, power int) MonomialCandidate {
	var candidate MonomialCandidate
	for feature := 0; feature < l.NumFeatures; feature++ {
		population := 0.0
		for index, point := range space.points {
			population += pointValues[index] * point.RawFeature(feature)
		}
		population /= normalizer
		sampleExpectation := 0.0
		for index, point := range sample {
			sampleExpectation += sampleValues[index] * point.RawFeature(feature)
		}
		sampleExpectation /= float64(len(sample))

		gradient := l.Gradient(power+1, len(sample), population-sampleExpectation)
		if math.Abs(gradient) > math.Abs(candidate.Gradient)+Tolerance {
			candidate = MonomialCandidate{
				Gradient:              gradient,
				Feature:               feature,
				PopulationExpectation: population,
				SampleExpectation:     sampleExpectation,
			}
		}
	}
	return candidate
}
