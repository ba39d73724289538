package dataset

import (
	"math/rand"

	"github.com/tarstars/deep_maxent/golang/deep_maxent/dme"
)

// Observations expands the counts into a sample: the point with key i is repeated Counts[i] times, in key order.
func (data *Data) Observations() dme.Sample {
	sample := make(dme.Sample, 0, data.NumObservations())
	for key, count := range data.Counts {
		point := data.Space.Point(key)
		for unused := 0; unused < count; unused++ {
			sample = append(sample, point)
		}
	}
	return sample
}

// Split shuffles all observations with rng and returns the first trainSize of them as the training
// sample and the rest as the test sample.
func Split(data *Data, trainSize int, rng *rand.Rand) (train, test dme.Sample) {
	all := data.Observations()
	rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	if trainSize > len(all) {
		trainSize = len(all)
	}
	if trainSize < 0 {
		trainSize = 0
	}
	return all[:trainSize:trainSize], all[trainSize:]
}
