package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tarstars/deep_maxent/golang/deep_maxent/dme"
)

const envPrefix = "DMAXENT"

// FitConfig holds the settings of the fit command.
type FitConfig struct {
	Alpha           float64 `mapstructure:"alpha"`
	Beta            float64 `mapstructure:"beta"`
	NumIterations   int     `mapstructure:"num-iterations"`
	Version         int     `mapstructure:"dmaxent-version"`
	FeatureBound    float64 `mapstructure:"feature-bound"`
	DataPath        string  `mapstructure:"data-path"`
	CountsPath      string  `mapstructure:"counts-path"`
	Seed            int64   `mapstructure:"seed"`
	TrainSize       int     `mapstructure:"train-size"`
	NumBins         int     `mapstructure:"num-bins"`
	Raw             bool    `mapstructure:"raw"`
	Product         bool    `mapstructure:"prod"`
	Threshold       bool    `mapstructure:"th"`
	Monomial        bool    `mapstructure:"mon"`
	Tree            bool    `mapstructure:"tr"`
	StopIfConverged bool    `mapstructure:"stop-if-converged"`
	Threads         int     `mapstructure:"threads"`
	CurvesJSON      string  `mapstructure:"curves-json"`
	CurvesPNG       string  `mapstructure:"curves-png"`
	TreesDir        string  `mapstructure:"trees-dir"`
	TreesFormat     string  `mapstructure:"trees-format"`
}

func addFitFlags(flags *pflag.FlagSet) {
	flags.Float64("alpha", 0.0, "regularization parameter alpha")
	flags.Float64("beta", 1.0, "regularization parameter beta")
	flags.Int("num-iterations", 1, "number of coordinate descent iterations")
	flags.Int("dmaxent-version", 1, "step size rule, 1 or 2")
	flags.Float64("feature-bound", 1.0, "uniform bound on the features")
	flags.String("data-path", "", "text data file, or the covariates npy file together with --counts-path")
	flags.String("counts-path", "", "npy file with the observation counts")
	flags.Int64("seed", 1, "seed of the train/test shuffle")
	flags.Int("train-size", 1, "number of observations in the training sample")
	flags.Int("num-bins", 10, "number of bins for threshold features and trees")
	flags.Bool("raw", false, "use raw features")
	flags.Bool("prod", false, "use product features")
	flags.Bool("th", false, "use threshold features")
	flags.Bool("mon", false, "use the monomial weak learner")
	flags.Bool("tr", false, "use the tree weak learner")
	flags.Bool("stop-if-converged", true, "stop once the gradient is negligible")
	flags.Int("threads", 1, "number of goroutines searching tree splits")
	flags.String("curves-json", "", "write learning curves as JSON to this file")
	flags.String("curves-png", "", "plot learning curves to this PNG file")
	flags.String("trees-dir", "", "render the trees of the model into this directory")
	flags.String("trees-format", "svg", "tree picture format: png, svg or jpg")
}

// newViper binds the flags to a viper instance that also reads DMAXENT_* variables and an optional config file.
func newViper(flags *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, errors.Wrap(err, "can't bind flags")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "can't read config %s", configFile)
		}
	}
	return v, nil
}

func loadFitConfig(v *viper.Viper) (FitConfig, error) {
	var config FitConfig
	if err := v.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "can't decode fit config")
	}
	return config, config.Validate()
}

// Validate returns the first setting the fit command cannot run with.
func (c FitConfig) Validate() error {
	switch {
	case c.Alpha < 0:
		return errors.Errorf("alpha must be non-negative, got %v", c.Alpha)
	case c.Beta < 0:
		return errors.Errorf("beta must be non-negative, got %v", c.Beta)
	case c.NumIterations < 1:
		return errors.Errorf("num-iterations must be at least 1, got %d", c.NumIterations)
	case c.TrainSize < 1:
		return errors.Errorf("train-size must be at least 1, got %d", c.TrainSize)
	case c.NumBins < 2:
		return errors.Errorf("num-bins must be at least 2, got %d", c.NumBins)
	case dme.StepSizeVersion(c.Version) != dme.StepSizeV1 && dme.StepSizeVersion(c.Version) != dme.StepSizeV2:
		return errors.Errorf("dmaxent-version must be 1 or 2, got %d", c.Version)
	case c.FeatureBound < 0:
		return errors.Errorf("feature-bound must be non-negative, got %v", c.FeatureBound)
	case c.DataPath == "":
		return errors.New("data-path is required")
	case !(c.Raw || c.Product || c.Threshold || c.Monomial || c.Tree):
		return errors.New("at least one of raw, prod, th, mon, tr is required")
	case c.Threads < 1:
		return errors.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	if c.TreesDir != "" {
		if _, ok := dme.GraphvizFormats[c.TreesFormat]; !ok {
			return errors.Errorf("unknown trees-format %q", c.TreesFormat)
		}
	}
	return nil
}
