package dme

import (
	"math"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ActiveFeature describes a feature with a non-zero weight.
type ActiveFeature struct {
	Index      int
	Weight     float64
	Kind       Kind
	Size       int
	Complexity float64
}

// KindSummary aggregates the active features of one kind.
type KindSummary struct {
	Count           int
	TotalComplexity float64
	TotalSize       int
}

// Report summarizes a fitted model.
type Report struct {
	Active          []ActiveFeature
	ByKind          map[Kind]KindSummary
	TotalComplexity float64
}

// Summarize collects the features whose weights are larger than Tolerance in absolute value.
func (m *Model) Summarize() Report {
	report := Report{ByKind: make(map[Kind]KindSummary)}
	for index, weighted := range m.weightedFeatures {
		if math.Abs(weighted.Weight) <= Tolerance {
			continue
		}
		feature := weighted.Feature
		active := ActiveFeature{
			Index:      index,
			Weight:     weighted.Weight,
			Kind:       feature.Kind(),
			Size:       feature.Size(),
			Complexity: feature.Complexity(),
		}
		report.Active = append(report.Active, active)

		summary := report.ByKind[active.Kind]
		summary.Count++
		summary.TotalComplexity += active.Complexity
		summary.TotalSize += active.Size
		report.ByKind[active.Kind] = summary
		report.TotalComplexity += active.Complexity
	}
	return report
}

// AverageSize returns the mean size of the active features of the kind, 0 when there are none.
// For trees it is the mean node count, for monomials the mean degree.
func (r Report) AverageSize(kind Kind) float64 {
	summary := r.ByKind[kind]
	if summary.Count == 0 {
		return 0
	}
	return float64(summary.TotalSize) / float64(summary.Count)
}

// MarshalLogObject lets the report be logged as a structured zap field.
func (r Report) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("active_features", len(r.Active))
	enc.AddFloat64("total_complexity", r.TotalComplexity)
	for _, kind := range Kinds {
		summary := r.ByKind[kind]
		if err := enc.AddObject(kind.String(), zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
			enc.AddInt("count", summary.Count)
			enc.AddFloat64("complexity", summary.TotalComplexity)
			enc.AddFloat64("average_size", r.AverageSize(kind))
			return nil
		})); err != nil {
			return err
		}
	}
	return nil
}

// Log writes every active feature at debug level and the summary at info level.
func (r Report) Log(logger *zap.Logger) {
	for _, active := range r.Active {
		logger.Debug("active feature",
			zap.Int("index", active.Index),
			zap.Float64("weight", active.Weight),
			zap.Stringer("kind", active.Kind),
			zap.Int("size", active.Size),
			zap.Float64("complexity", active.Complexity),
		)
	}
	logger.Info("model summary", zap.Object("report", r))
}
