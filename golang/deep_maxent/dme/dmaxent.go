package dme

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"
)

// StepSizeVersion selects the closed form used for the coordinate step.
type StepSizeVersion int

const (
	// StepSizeV1 is the exact line search for features bounded by lambda.
	StepSizeV1 StepSizeVersion = 1
	// StepSizeV2 is the quadratic upper bound step.
	StepSizeV2 StepSizeVersion = 2
)

// ModelParams collect arguments required to construct a model.
type ModelParams struct {
	Alpha, Beta     float64
	MaxDescentSteps int
	Version         StepSizeVersion
	// Lambda is the uniform bound on feature values.
	Lambda          float64
	StopIfConverged bool
	Space           *Space
	Sample          Sample
	TestSample      Sample
	// Features must have their sample expectations computed.
	Features     []Feature
	WeakLearners []WeakLearner
	// Logger receives per-iteration progress at debug level. Nil disables logging.
	Logger *zap.Logger
	// TrackLearningCurves evaluates train and test metrics after every iteration.
	TrackLearningCurves bool
}

// Validate checks that the parameters describe a model that can be fitted.
func (params ModelParams) Validate() error {
	if params.Space == nil {
		return errors.New("model space is nil")
	}
	if params.Alpha < 0 {
		return errors.Errorf("alpha must be non-negative, got %v", params.Alpha)
	}
	if params.Beta < 0 {
		return errors.Errorf("beta must be non-negative, got %v", params.Beta)
	}
	if params.Lambda < 0 {
		return errors.Errorf("lambda must be non-negative, got %v", params.Lambda)
	}
	if params.MaxDescentSteps <= 0 {
		return errors.Errorf("number of descent steps must be positive, got %d", params.MaxDescentSteps)
	}
	if params.Version != StepSizeV1 && params.Version != StepSizeV2 {
		return errors.Errorf("unknown step size version %d", params.Version)
	}
	return nil
}

// WeightedFeature is a feature of the model together with its coefficient in the exponent.
type WeightedFeature struct {
	Weight  float64
	Feature Feature
}

// Model is a Gibbs density over a space: the weight of a point is proportional to
// exp(sum of weight * feature map). Fit runs regularized coordinate descent on the weights and
// grows new features with the weak learners.
type Model struct {
	ModelParams
	weightedFeatures []WeightedFeature
	normalizer       float64
	stepSize         float64
	gradient         float64
	direction        int
	logger           *zap.Logger
	// curveValues backs curves and grows by one iteration at a time.
	curveValues []float64
	curves      *tensor.Dense
	iterations  int
}

// NewModel creates a model with zero weights for every given feature.
func NewModel(params ModelParams) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model parameters")
	}
	model := &Model{
		ModelParams:      params,
		weightedFeatures: make([]WeightedFeature, 0, len(params.Features)),
		normalizer:       params.Space.TotalWeight(),
		logger:           params.Logger,
	}
	if model.logger == nil {
		model.logger = zap.NewNop()
	}
	for _, feature := range params.Features {
		model.weightedFeatures = append(model.weightedFeatures, WeightedFeature{Weight: 0.0, Feature: feature})
	}
	return model, nil
}

// Fit runs at most MaxDescentSteps iterations of coordinate descent. With StopIfConverged it
// stops after the first iteration whose gradient is below Tolerance.
func (m *Model) Fit() {
	m.iterations = 0
	m.curveValues = m.curveValues[:0]
	m.curves = nil
	for iter := 0; iter < m.MaxDescentSteps; iter++ {
		m.findDescentDirection()
		if m.Version == StepSizeV1 {
			m.findStepSize1()
		} else {
			m.findStepSize2()
		}
		m.updateModel()
		m.iterations++

		m.logger.Debug("completed coordinate descent iteration",
			zap.Int("iteration", iter+1),
			zap.Int("direction", m.direction),
			zap.Float64("step", m.stepSize),
			zap.Float64("gradient", m.gradient),
		)
		if m.TrackLearningCurves {
			m.recordLearningCurves()
		}

		if m.gradient < Tolerance && m.StopIfConverged {
			m.logger.Debug("coordinate descent converged", zap.Int("iteration", iter+1))
			break
		}
	}
}

// findDescentDirection refreshes the population expectations of the features, picks the
// coordinate with the largest absolute subgradient and lets the weak learners propose a new one.
func (m *Model) findDescentDirection() {
	bestIndex := 0
	bestAbsGradient := -1.0
	for index, weighted := range m.weightedFeatures {
		feature := weighted.Feature
		ComputeUnnormalizedPopulationExpectation(feature, m.Space)
		diff := feature.UnnormalizedPopulationExpectation()/m.normalizer - feature.SampleExpectation()
		beta := 2*m.Alpha*feature.Complexity() + m.Beta

		var gradient float64
		switch {
		case math.Abs(weighted.Weight) > Tolerance:
			gradient = beta*sgn(weighted.Weight) + diff
		case math.Abs(diff) < beta:
			gradient = 0
		default:
			gradient = -beta*sgn(diff) + diff
		}
		if math.Abs(gradient) >= bestAbsGradient {
			bestIndex = index
			bestAbsGradient = math.Abs(gradient)
		}
	}

	var newFeature Feature
	for _, learner := range m.WeakLearners {
		feature, gradient := learner.Train(m.Space, m.Sample)
		if math.Abs(gradient) > bestAbsGradient+Tolerance {
			newFeature = feature
			bestIndex = len(m.weightedFeatures)
			bestAbsGradient = math.Abs(gradient)
		}
	}
	if newFeature != nil {
		m.weightedFeatures = append(m.weightedFeatures, WeightedFeature{Weight: 0.0, Feature: newFeature})
	}
	m.gradient = bestAbsGradient
	m.direction = bestIndex
}

// updateModel moves the chosen coordinate and reweights every point of the space.
func (m *Model) updateModel() {
	m.weightedFeatures[m.direction].Weight += m.stepSize
	feature := m.weightedFeatures[m.direction].Feature
	normalizer := 0.0
	for _, point := range m.Space.points {
		weight := point.probabilityWeight * math.Exp(m.stepSize*feature.FeatureMap(point))
		normalizer += weight
		point.probabilityWeight = weight
	}
	m.normalizer = normalizer
}

// DescentDirection returns the index of the feature moved by the last iteration.
func (m *Model) DescentDirection() int {
	return m.direction
}

func (m *Model) StepSize() float64 {
	return m.stepSize
}

// Gradient returns the absolute gradient of the last chosen direction.
func (m *Model) Gradient() float64 {
	return m.gradient
}

// Normalizer returns the sum of the point weights of the space.
func (m *Model) Normalizer() float64 {
	return m.normalizer
}

// Weight returns the coefficient of the feature with the given index, or -1 for an unknown index.
func (m *Model) Weight(index int) float64 {
	if index < 0 || index >= len(m.weightedFeatures) {
		return -1.0
	}
	return m.weightedFeatures[index].Weight
}

// WeightedFeatures returns the features in insertion order. The slice is shared with the model.
func (m *Model) WeightedFeatures() []WeightedFeature {
	return m.weightedFeatures
}

func (m *Model) NumFeatures() int {
	return len(m.weightedFeatures)
}
