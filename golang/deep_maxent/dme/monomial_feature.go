package dme

import "math"

// MonomialFeature is a product of integer powers of covariates.
type MonomialFeature struct {
	Expectations
	powers     []int
	complexity float64
}

// NewMonomialFeature copies the powers, one per covariate.
func NewMonomialFeature(powers []int) *MonomialFeature {
	return &MonomialFeature{Expectations: newExpectations(), powers: append([]int(nil), powers...)}
}

func (f *MonomialFeature) FeatureMap(point *Point) float64 {
	result := 1.0
	for index, power := range f.powers {
		result *= math.Pow(point.RawFeature(index), float64(power))
	}
	return result
}

func (f *MonomialFeature) Complexity() float64 {
	return f.complexity
}

func (f *MonomialFeature) SetComplexity(value float64) {
	f.complexity = value
}

func (f *MonomialFeature) Kind() Kind {
	return KindMonomial
}

func (f *MonomialFeature) Size() int {
	return f.Power()
}

// SetExpectations stores externally computed expectations. The population one must be unnormalized.
func (f *MonomialFeature) SetExpectations(population, sample float64) {
	f.population = population
	f.sample = sample
}

// Power returns the total degree.
func (f *MonomialFeature) Power() int {
	sum := 0
	for _, power := range f.powers {
		sum += power
	}
	return sum
}

func (f *MonomialFeature) Powers() []int {
	return f.powers
}
