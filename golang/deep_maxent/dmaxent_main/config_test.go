package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFitFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("fit", pflag.ContinueOnError)
	addFitFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadFitConfigFromFlags(t *testing.T) {
	v, err := newViper(parseFitFlags(t, "--data-path", "data.txt", "--raw", "--alpha", "0.5", "--train-size", "30"), "")
	require.NoError(t, err)
	config, err := loadFitConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "data.txt", config.DataPath)
	assert.True(t, config.Raw)
	assert.False(t, config.Tree)
	assert.InDelta(t, 0.5, config.Alpha, 1e-12)
	assert.InDelta(t, 1.0, config.Beta, 1e-12)
	assert.Equal(t, 30, config.TrainSize)
	assert.Equal(t, 10, config.NumBins)
	assert.Equal(t, 1, config.Version)
	assert.Equal(t, int64(1), config.Seed)
	assert.True(t, config.StopIfConverged)
	assert.Equal(t, "svg", config.TreesFormat)
}

func TestLoadFitConfigFromEnv(t *testing.T) {
	t.Setenv("DMAXENT_DATA_PATH", "env.txt")
	t.Setenv("DMAXENT_NUM_ITERATIONS", "7")
	t.Setenv("DMAXENT_TR", "true")

	v, err := newViper(parseFitFlags(t, "--beta", "0.25"), "")
	require.NoError(t, err)
	config, err := loadFitConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "env.txt", config.DataPath)
	assert.Equal(t, 7, config.NumIterations)
	assert.True(t, config.Tree)
	assert.InDelta(t, 0.25, config.Beta, 1e-12)
}

func TestLoadFitConfigFromFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "fit.json")
	require.NoError(t, os.WriteFile(configFile, []byte(`{"data-path": "file.txt", "mon": true, "dmaxent-version": 2}`), 0o644))

	v, err := newViper(parseFitFlags(t, "--num-bins", "4"), configFile)
	require.NoError(t, err)
	config, err := loadFitConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "file.txt", config.DataPath)
	assert.True(t, config.Monomial)
	assert.Equal(t, 2, config.Version)
	assert.Equal(t, 4, config.NumBins)

	_, err = newViper(parseFitFlags(t), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFitConfigValidate(t *testing.T) {
	valid := FitConfig{
		Beta:          1,
		NumIterations: 1,
		Version:       1,
		FeatureBound:  1,
		DataPath:      "data.txt",
		TrainSize:     1,
		NumBins:       10,
		Raw:           true,
		Threads:       1,
		TreesFormat:   "svg",
	}
	require.NoError(t, valid.Validate())

	zeroBound := valid
	zeroBound.FeatureBound = 0
	assert.NoError(t, zeroBound.Validate())

	for name, mutate := range map[string]func(c *FitConfig){
		"negative alpha":  func(c *FitConfig) { c.Alpha = -1 },
		"negative beta":   func(c *FitConfig) { c.Beta = -1 },
		"no iterations":   func(c *FitConfig) { c.NumIterations = 0 },
		"empty train":     func(c *FitConfig) { c.TrainSize = 0 },
		"one bin":         func(c *FitConfig) { c.NumBins = 1 },
		"unknown version": func(c *FitConfig) { c.Version = 3 },
		"negative bound":  func(c *FitConfig) { c.FeatureBound = -1 },
		"no data":         func(c *FitConfig) { c.DataPath = "" },
		"no features":     func(c *FitConfig) { c.Raw = false },
		"no threads":      func(c *FitConfig) { c.Threads = 0 },
		"unknown format":  func(c *FitConfig) { c.TreesDir, c.TreesFormat = "trees", "bmp" },
	} {
		t.Run(name, func(t *testing.T) {
			config := valid
			mutate(&config)
			assert.Error(t, config.Validate())
		})
	}
}
