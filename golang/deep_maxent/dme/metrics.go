package dme

import (
	"cmp"
	"math"
	"slices"
)

// LogLoss returns the sum of -log(p) over the observations, where p is the normalized weight of the point.
func (m *Model) LogLoss(sample Sample) float64 {
	loss := 0.0
	for _, example := range sample {
		loss += math.Log(m.normalizer / example.probabilityWeight)
	}
	return loss
}

// AUC ranks all points of the space by weight and measures how well the points observed in the sample
// (positives) are ranked above the rest. Positives are identified by point id, on equal weights a
// negative ranks below a positive. The result is NaN when every point or no point is positive.
func (m *Model) AUC(sample Sample) float64 {
	positive := make(map[int]bool, len(sample))
	for _, point := range sample {
		positive[point.id] = true
	}
	allPoints := slices.Clone(m.Space.points)
	slices.SortStableFunc(allPoints, func(a, b *Point) int {
		if c := cmp.Compare(a.probabilityWeight, b.probabilityWeight); c != 0 {
			return c
		}
		switch {
		case !positive[a.id] && positive[b.id]:
			return -1
		case positive[a.id] && !positive[b.id]:
			return 1
		}
		return 0
	})

	n := 0.0
	r := 0.0
	for _, point := range allPoints {
		if positive[point.id] {
			r += n
		} else {
			n += 1.0
		}
	}
	return r / (n * (float64(len(allPoints)) - n))
}
