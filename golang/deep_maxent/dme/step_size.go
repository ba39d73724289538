package dme

import "math"

// findStepSize1 solves the one-dimensional problem exactly for a feature bounded by lambda.
// The denominator of beta is not guarded: it vanishes only for degenerate expectations.
func (m *Model) findStepSize1() {
	weight := m.weightedFeatures[m.direction].Weight
	feature := m.weightedFeatures[m.direction].Feature
	lambda := m.Lambda
	population := feature.UnnormalizedPopulationExpectation() / m.normalizer
	phiPT := lambda + population
	phiMT := -lambda + population
	phiP := lambda + feature.SampleExpectation()
	phiM := -lambda + feature.SampleExpectation()
	decay := math.Exp(-2 * weight * lambda)
	beta := (phiPT*phiM*decay - phiP*phiMT) / (phiPT*decay - phiMT)
	betaK := 2*m.Alpha*feature.Complexity() + m.Beta

	switch {
	case math.Abs(beta) < betaK:
		m.stepSize = -weight
	case beta > betaK:
		m.stepSize = 0.5 * math.Log(phiMT*(betaK-phiP)/(phiPT*(betaK-phiM))) / lambda
	default:
		m.stepSize = 0.5 * math.Log(phiMT*(betaK+phiP)/(phiPT*(betaK+phiM))) / lambda
	}
}

// findStepSize2 minimizes the quadratic upper bound of the objective along the direction.
func (m *Model) findStepSize2() {
	weight := m.weightedFeatures[m.direction].Weight
	feature := m.weightedFeatures[m.direction].Feature
	lambda2 := m.Lambda * m.Lambda
	diff := feature.UnnormalizedPopulationExpectation()/m.normalizer - feature.SampleExpectation()
	betaK := 2*m.Alpha*feature.Complexity() + m.Beta
	beta := weight*lambda2 - diff

	switch {
	case math.Abs(beta) <= betaK:
		m.stepSize = -weight
	case beta > betaK:
		m.stepSize = -(betaK + diff) / lambda2
	default:
		m.stepSize = -(-betaK + diff) / lambda2
	}
}
