package dme

import (
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

const (
	curveTrain = 0
	curveTest  = 1

	curveLogLoss = 0
	curveAUC     = 1
)

// LearningCurveTitles name the columns of a learning curves row.
var LearningCurveTitles = []string{"train log loss", "test log loss", "train AUC", "test AUC"}

// recordLearningCurves appends the metrics of the last completed iteration and reshapes the
// curves to (iterations, part, metric).
func (m *Model) recordLearningCurves() {
	values := [2][2]float64{
		curveTrain: {curveLogLoss: m.LogLoss(m.Sample), curveAUC: m.AUC(m.Sample)},
		curveTest:  {curveLogLoss: m.LogLoss(m.TestSample), curveAUC: m.AUC(m.TestSample)},
	}
	for _, metrics := range values {
		m.curveValues = append(m.curveValues, metrics[:]...)
	}
	m.curves = tensor.New(tensor.WithShape(m.iterations, 2, 2), tensor.WithBacking(m.curveValues))
}

func (m *Model) curveAt(iter, part, metric int) float64 {
	if m.curves == nil {
		return math.NaN()
	}
	value, err := m.curves.At(iter, part, metric)
	if err != nil {
		return math.NaN()
	}
	return value.(float64)
}

// LearningCurves returns one row per completed iteration of the last Fit:
// train log loss, test log loss, train AUC, test AUC. Nil when curves are not tracked.
func (m *Model) LearningCurves() [][]float64 {
	if !m.TrackLearningCurves {
		return nil
	}
	rows := make([][]float64, 0, m.iterations)
	for iter := 0; iter < m.iterations; iter++ {
		rows = append(rows, []float64{
			m.curveAt(iter, curveTrain, curveLogLoss),
			m.curveAt(iter, curveTest, curveLogLoss),
			m.curveAt(iter, curveTrain, curveAUC),
			m.curveAt(iter, curveTest, curveAUC),
		})
	}
	return rows
}

// CurveValue is a float64 that survives JSON when it is NaN or infinite: such values are written as null.
type CurveValue float64

func (v CurveValue) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func (v *CurveValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = CurveValue(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = CurveValue(f)
	return nil
}

// LearningCurvesDump is the JSON layout of dumped learning curves.
type LearningCurvesDump struct {
	Titles []string
	Values [][]CurveValue
}

// NewLearningCurvesDump converts rows of LearningCurves into the dump layout.
func NewLearningCurvesDump(rows [][]float64) LearningCurvesDump {
	dump := LearningCurvesDump{Titles: LearningCurveTitles, Values: make([][]CurveValue, 0, len(rows))}
	for _, row := range rows {
		values := make([]CurveValue, len(row))
		for index, value := range row {
			values[index] = CurveValue(value)
		}
		dump.Values = append(dump.Values, values)
	}
	return dump
}

// Rows converts the dump back into learning curve rows.
func (dump LearningCurvesDump) Rows() [][]float64 {
	rows := make([][]float64, 0, len(dump.Values))
	for _, values := range dump.Values {
		row := make([]float64, len(values))
		for index, value := range values {
			row[index] = float64(value)
		}
		rows = append(rows, row)
	}
	return rows
}

// DumpLearningCurves writes the learning curves of the last Fit as indented JSON.
func (m *Model) DumpLearningCurves(w io.Writer) error {
	if !m.TrackLearningCurves {
		return errors.New("learning curves are not tracked")
	}
	bytesResult, err := json.MarshalIndent(NewLearningCurvesDump(m.LearningCurves()), "", "  ")
	if err != nil {
		return errors.Wrap(err, "can't encode learning curves")
	}
	_, err = w.Write(bytesResult)
	return errors.Wrap(err, "can't write learning curves")
}

// LoadLearningCurves reads a dump written by DumpLearningCurves.
func LoadLearningCurves(r io.Reader) (LearningCurvesDump, error) {
	var dump LearningCurvesDump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return dump, errors.Wrap(err, "can't decode learning curves")
	}
	return dump, nil
}
