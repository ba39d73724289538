package dataset

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/tarstars/deep_maxent/golang/deep_maxent/dme"
)

// FamilyParams selects the feature families and weak learners of a model.
type FamilyParams struct {
	Space       *dme.Space
	TrainSample dme.Sample
	// TrainSize enters the class complexities, it is the requested size of the training sample.
	TrainSize int

	Raw, Product, Threshold, Monomial, Tree bool

	Alpha, Beta  float64
	FeatureBound float64
	NumBins      int
	ThreadsNum   int
	Logger       *zap.Logger
}

// Family is the result of Build.
type Family struct {
	Features     []dme.Feature
	WeakLearners []dme.WeakLearner
	// Thresholds are the bin cuts per covariate, nil unless threshold features or trees were requested.
	Thresholds [][]float64
}

func classComplexity(factor float64, count, trainSize int) float64 {
	return math.Sqrt(factor * math.Log(float64(count)) / float64(trainSize))
}

// Build creates the requested fixed features with their sample expectations on the training sample,
// and the requested weak learners.
func Build(params FamilyParams) (Family, error) {
	var family Family
	if params.Space == nil || params.Space.NumPoints() == 0 {
		return family, errors.New("space has no points")
	}
	if params.TrainSize < 1 {
		return family, errors.Errorf("train size must be positive, got %d", params.TrainSize)
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	numRawFeatures := params.Space.Point(0).NumRawFeatures()

	addFeature := func(feature dme.Feature) {
		dme.ComputeSampleExpectation(feature, params.TrainSample)
		family.Features = append(family.Features, feature)
	}

	if params.Raw && numRawFeatures > 0 {
		class := dme.NewFeatureClass(dme.KindRaw)
		class.SetComplexity(classComplexity(2, numRawFeatures, params.TrainSize))
		for index := 0; index < numRawFeatures; index++ {
			addFeature(dme.NewRawFeature(index, class))
		}
	}

	if params.Product && numRawFeatures > 0 {
		class := dme.NewFeatureClass(dme.KindProduct)
		class.SetComplexity(classComplexity(4, numRawFeatures, params.TrainSize))
		for first := 0; first < numRawFeatures; first++ {
			for second := 0; second < numRawFeatures; second++ {
				addFeature(dme.NewProductFeature(first, second, class))
			}
		}
	}

	if params.Monomial {
		family.WeakLearners = append(family.WeakLearners, dme.NewMonomialLearner(dme.MonomialLearnerParams{
			NumFeatures:  numRawFeatures,
			Alpha:        params.Alpha,
			Beta:         params.Beta,
			FeatureBound: params.FeatureBound,
		}))
	}

	if params.Threshold || params.Tree {
		if params.NumBins < 2 {
			return family, errors.Errorf("at least 2 bins are required, got %d", params.NumBins)
		}
		family.Thresholds = Thresholds(params.Space, params.NumBins, params.FeatureBound)
		for index, cuts := range family.Thresholds {
			logger.Debug("thresholds", zap.Int("covariate", index), zap.Float64s("cuts", cuts[:len(cuts)-1]))
		}
	}

	if params.Threshold {
		class := dme.NewFeatureClass(dme.KindThreshold)
		count := 0
		for index, cuts := range family.Thresholds {
			for _, threshold := range cuts[:len(cuts)-1] {
				addFeature(dme.NewThresholdFeature(index, threshold, class))
				count++
			}
		}
		if count > 0 {
			class.SetComplexity(classComplexity(2, count, params.TrainSize))
		}
	}

	if params.Tree {
		family.WeakLearners = append(family.WeakLearners, dme.NewTreeLearner(dme.TreeLearnerParams{
			NumFeatures:       numRawFeatures,
			Alpha:             params.Alpha,
			Beta:              params.Beta,
			ValueToThresholds: ValueToThresholds(params.Space, family.Thresholds),
			ThreadsNum:        params.ThreadsNum,
		}))
	}

	logger.Debug("feature family built",
		zap.Int("points", params.Space.NumPoints()),
		zap.Int("raw_features", numRawFeatures),
		zap.Int("features", len(family.Features)),
		zap.Int("weak_learners", len(family.WeakLearners)),
		zap.Int("train_sample", len(params.TrainSample)),
	)
	return family, nil
}
