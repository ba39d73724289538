package dataset

import (
	"gonum.org/v1/gonum/floats"

	"github.com/tarstars/deep_maxent/golang/deep_maxent/dme"
)

// sortedKeys returns the point keys ordered by the covariate, ascending.
func sortedKeys(space *dme.Space, index int) []int {
	points := space.Points()
	values := make([]float64, len(points))
	for key, point := range points {
		values[key] = point.RawFeature(index)
	}
	keys := make([]int, len(values))
	floats.Argsort(values, keys)
	return keys
}

// Thresholds cuts every covariate into bins holding about NumPoints / numBins points each.
// A cut is placed halfway between two distinct neighbouring values once the current bin is larger than
// the bin size, so equal values never straddle a cut. Every list ends with the sentinel featureBound + 1.
func Thresholds(space *dme.Space, numBins int, featureBound float64) [][]float64 {
	numRawFeatures := 0
	if space.NumPoints() > 0 {
		numRawFeatures = space.Point(0).NumRawFeatures()
	}
	binSize := space.NumPoints() / numBins
	thresholds := make([][]float64, 0, numRawFeatures)
	for index := 0; index < numRawFeatures; index++ {
		keys := sortedKeys(space, index)
		cuts := make([]float64, 0)
		if len(keys) > 0 {
			binCount := 0
			currentValue := space.Point(keys[0]).RawFeature(index)
			previousValue := currentValue
			for _, key := range keys {
				value := space.Point(key).RawFeature(index)
				if binCount > binSize && value != previousValue {
					cuts = append(cuts, 0.5*(value+previousValue))
					currentValue = value
					previousValue = currentValue
					binCount = 0
				}
				if value != currentValue {
					previousValue = currentValue
					currentValue = value
				}
				binCount++
			}
		}
		thresholds = append(thresholds, append(cuts, featureBound+1))
	}
	return thresholds
}

// ValueToThresholds maps every observed value of every covariate to the threshold closing its bin.
// Values are scanned in ascending order and move to the next threshold once they exceed the current one.
func ValueToThresholds(space *dme.Space, thresholds [][]float64) []map[float64]float64 {
	vtot := make([]map[float64]float64, 0, len(thresholds))
	for index, cuts := range thresholds {
		valueToThreshold := make(map[float64]float64)
		next := 0
		for _, key := range sortedKeys(space, index) {
			value := space.Point(key).RawFeature(index)
			if value > cuts[next] && next < len(cuts)-1 {
				next++
			}
			valueToThreshold[value] = cuts[next]
		}
		vtot = append(vtot, valueToThreshold)
	}
	return vtot
}
