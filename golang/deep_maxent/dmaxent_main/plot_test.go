package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarstars/deep_maxent/golang/deep_maxent/dme"
)

func TestCurvePoints(t *testing.T) {
	rows := [][]float64{{1, 2}, {math.NaN(), 3}, {0.5, math.Inf(1)}}
	points := curvePoints(rows, 0)
	require.Len(t, points, 2)
	assert.InDelta(t, 1.0, points[0].X, 1e-12)
	assert.InDelta(t, 3.0, points[1].X, 1e-12)
	assert.InDelta(t, 0.5, points[1].Y, 1e-12)
	assert.Len(t, curvePoints(rows, 1), 2)
	assert.Empty(t, curvePoints(rows, 5))
}

func TestPlotLearningCurves(t *testing.T) {
	dump := dme.NewLearningCurvesDump([][]float64{
		{10, 11, 0.6, 0.55},
		{9, 10.5, 0.7, math.NaN()},
		{8.5, 10.2, 0.75, 0.6},
	})
	path := filepath.Join(t.TempDir(), "curves.png")
	require.NoError(t, plotLearningCurves(dump, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, plotLearningCurves(dme.NewLearningCurvesDump(nil), path))
}
