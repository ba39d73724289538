package dme

import "math"

// WeakLearner trains a new feature on the current weights of the space. The returned feature
// has its expectations and complexity set, the second result is its penalized gradient.
type WeakLearner interface {
	Train(space *Space, sample Sample) (Feature, float64)
}

// penalizedGradient shrinks the expectation difference towards zero by the complexity penalty.
func penalizedGradient(complexity, difference float64) float64 {
	if math.Abs(difference) < complexity {
		return 0
	}
	return difference - sgn(difference)*complexity
}

// sgn is 1 for positive values and -1 otherwise.
func sgn(value float64) float64 {
	if value > 0 {
		return 1
	}
	return -1
}
