package main

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tarstars/deep_maxent/golang/deep_maxent/dataset"
	"github.com/tarstars/deep_maxent/golang/deep_maxent/dme"
)

func loadData(config FitConfig) (*dataset.Data, error) {
	if config.CountsPath != "" {
		return dataset.ReadNpy(config.DataPath, config.CountsPath)
	}
	return dataset.ReadFile(config.DataPath)
}

// runFit loads the data, fits the model and prints the test metrics to out.
func runFit(config FitConfig, logger *zap.Logger, out io.Writer) error {
	data, err := loadData(config)
	if err != nil {
		return err
	}
	train, test := dataset.Split(data, config.TrainSize, rand.New(rand.NewSource(config.Seed)))

	family, err := dataset.Build(dataset.FamilyParams{
		Space:        data.Space,
		TrainSample:  train,
		TrainSize:    config.TrainSize,
		Raw:          config.Raw,
		Product:      config.Product,
		Threshold:    config.Threshold,
		Monomial:     config.Monomial,
		Tree:         config.Tree,
		Alpha:        config.Alpha,
		Beta:         config.Beta,
		FeatureBound: config.FeatureBound,
		NumBins:      config.NumBins,
		ThreadsNum:   config.Threads,
		Logger:       logger,
	})
	if err != nil {
		return errors.Wrap(err, "can't build features")
	}
	logger.Info("data loaded",
		zap.Int("points", data.Space.NumPoints()),
		zap.Int("raw_features", data.NumRawFeatures()),
		zap.Int("features", len(family.Features)),
		zap.Int("observations", data.NumObservations()),
		zap.Int("train", len(train)),
		zap.Int("test", len(test)),
	)

	model, err := dme.NewModel(dme.ModelParams{
		Alpha:               config.Alpha,
		Beta:                config.Beta,
		MaxDescentSteps:     config.NumIterations,
		Version:             dme.StepSizeVersion(config.Version),
		Lambda:              config.FeatureBound,
		StopIfConverged:     config.StopIfConverged,
		Space:               data.Space,
		Sample:              train,
		TestSample:          test,
		Features:            family.Features,
		WeakLearners:        family.WeakLearners,
		Logger:              logger,
		TrackLearningCurves: config.CurvesJSON != "" || config.CurvesPNG != "",
	})
	if err != nil {
		return err
	}
	model.Fit()

	logLoss := model.LogLoss(test)
	auc := model.AUC(test)
	logger.Info("model evaluated", zap.Float64("test_log_loss", logLoss), zap.Float64("test_auc", auc))
	if math.IsNaN(auc) {
		logger.Warn("AUC is undefined: the test sample is empty or covers every point")
	}
	if _, err := fmt.Fprintf(out, "Model log loss: %f\nModel AUC: %f\n", logLoss, auc); err != nil {
		return errors.Wrap(err, "can't print results")
	}
	model.Summarize().Log(logger)

	if err := writeCurves(model, config); err != nil {
		return err
	}
	if config.TreesDir != "" {
		return renderTrees(model, config.TreesDir, config.TreesFormat, logger)
	}
	return nil
}

func writeCurves(model *dme.Model, config FitConfig) error {
	if config.CurvesJSON != "" {
		f, err := os.Create(config.CurvesJSON)
		if err != nil {
			return errors.Wrapf(err, "can't create %s", config.CurvesJSON)
		}
		if err := model.DumpLearningCurves(f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, "can't close %s", config.CurvesJSON)
		}
	}
	if config.CurvesPNG != "" {
		return plotLearningCurves(dme.NewLearningCurvesDump(model.LearningCurves()), config.CurvesPNG)
	}
	return nil
}

// renderTrees draws every tree of the model with a non-zero weight into dir as tree_<index>.<format>.
func renderTrees(model *dme.Model, dir, format string, logger *zap.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "can't create %s", dir)
	}
	for index, weighted := range model.WeightedFeatures() {
		tree, ok := weighted.Feature.(*dme.TreeFeature)
		if !ok || math.Abs(weighted.Weight) <= dme.Tolerance {
			continue
		}
		filename := filepath.Join(dir, fmt.Sprintf("tree_%03d.%s", index, format))
		if err := dme.RenderTree(tree, format, filename); err != nil {
			return err
		}
		logger.Debug("tree rendered", zap.String("file", filename), zap.Int("size", tree.Size()))
	}
	return nil
}

func newFitCmd(rootOptions *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a deep maximum entropy model and evaluate it on the test sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags(), rootOptions.configFile)
			if err != nil {
				return err
			}
			config, err := loadFitConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(rootOptions.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return runFit(config, logger, cmd.OutOrStdout())
		},
	}
	addFitFlags(cmd.Flags())
	return cmd
}
