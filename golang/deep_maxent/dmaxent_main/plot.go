package main

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/tarstars/deep_maxent/golang/deep_maxent/dme"
)

// curveColumns picks the log loss columns and the AUC columns of a learning curves row.
var curveColumns = [][]int{{0, 1}, {2, 3}}

// curvePoints keeps the finite values of one column, x is the iteration number starting at 1.
func curvePoints(rows [][]float64, column int) plotter.XYs {
	points := make(plotter.XYs, 0, len(rows))
	for iter, row := range rows {
		if column >= len(row) || math.IsNaN(row[column]) || math.IsInf(row[column], 0) {
			continue
		}
		points = append(points, plotter.XY{X: float64(iter + 1), Y: row[column]})
	}
	return points
}

// plotLearningCurves draws the log loss and the AUC curves side by side and saves them to path.
func plotLearningCurves(dump dme.LearningCurvesDump, path string) error {
	rows := dump.Rows()
	if len(rows) == 0 {
		return errors.New("no learning curve values to plot")
	}
	titles := dump.Titles
	if len(titles) == 0 {
		titles = dme.LearningCurveTitles
	}

	plots := make([]*plot.Plot, 0, len(curveColumns))
	for _, columns := range curveColumns {
		p := plot.New()
		p.X.Label.Text = "iteration"
		var lines []interface{}
		for _, column := range columns {
			if column >= len(titles) {
				continue
			}
			points := curvePoints(rows, column)
			if len(points) == 0 {
				continue
			}
			lines = append(lines, titles[column], points)
		}
		if len(lines) > 0 {
			if err := plotutil.AddLinePoints(p, lines...); err != nil {
				return errors.Wrap(err, "can't add learning curves")
			}
		}
		plots = append(plots, p)
	}
	plots[0].Title.Text = "log loss"
	plots[1].Title.Text = "AUC"

	img := vgimg.New(8*vg.Inch, 4*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 1, Cols: len(plots), PadX: vg.Millimeter, PadY: vg.Millimeter}
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, dc)
	for index, p := range plots {
		p.Draw(canvases[0][index])
	}

	w, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "can't create %s", path)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "can't write %s", path)
	}
	return errors.Wrapf(w.Close(), "can't close %s", path)
}

func newPlotCmd() *cobra.Command {
	var curvesJSON, out string
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot learning curves dumped by fit",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(curvesJSON)
			if err != nil {
				return errors.Wrapf(err, "can't open %s", curvesJSON)
			}
			defer func() { _ = f.Close() }()

			dump, err := dme.LoadLearningCurves(f)
			if err != nil {
				return errors.Wrapf(err, "can't load %s", curvesJSON)
			}
			return plotLearningCurves(dump, out)
		},
	}
	cmd.Flags().StringVar(&curvesJSON, "curves-json", "", "learning curves written by fit --curves-json")
	cmd.Flags().StringVar(&out, "out", "curves.png", "output PNG file")
	_ = cmd.MarkFlagRequired("curves-json")
	return cmd
}
