package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	hp := cfg.Hyperparameters
	assert.Equal(t, 5, hp.StepsIn)
	assert.Equal(t, 1, hp.StepsOut)
	assert.Equal(t, 1, hp.Features)
	assert.Equal(t, 0.7, hp.TrainRatio)
	assert.Equal(t, 10, hp.Folds)
	assert.Equal(t, 50, hp.Epochs)
	assert.Equal(t, 0.0001, hp.LearningRate)
	assert.Equal(t, []string{"lstm", "conv1d", "gru"}, cfg.Models.Enabled)
	assert.Equal(t, "full", cfg.Scaler.FitScope)
	assert.True(t, cfg.Training.Shuffle)
	assert.Equal(t, "csv", cfg.Data.Source)
	assert.Equal(t, 600, cfg.Data.MockPoints)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
data:
  company: AAPL
hyperparameters:
  epochs: 3
training:
  shuffle: false
models:
  enabled: [gru]
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", cfg.Data.Company)
	assert.Equal(t, 3, cfg.Hyperparameters.Epochs)
	assert.False(t, cfg.Training.Shuffle)
	assert.Equal(t, []string{"gru"}, cfg.Models.Enabled)
	// untouched sections keep their defaults
	assert.Equal(t, 10, cfg.Hyperparameters.Folds)
	assert.Equal(t, 32, cfg.Models.GRU.Units)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FORECAST_COMPANY", "MSFT")
	t.Setenv("FORECAST_EPOCHS", "7")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "MSFT", cfg.Data.Company)
	assert.Equal(t, 7, cfg.Hyperparameters.Epochs)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_BadEnvEpochs(t *testing.T) {
	t.Setenv("FORECAST_EPOCHS", "many")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"ratio one", func(c *Config) { c.Hyperparameters.TrainRatio = 1 }, false},
		{"one fold", func(c *Config) { c.Hyperparameters.Folds = 1 }, false},
		{"two features", func(c *Config) { c.Hyperparameters.Features = 2 }, false},
		{"unknown model", func(c *Config) { c.Models.Enabled = []string{"transformer"} }, false},
		{"duplicate model", func(c *Config) { c.Models.Enabled = []string{"gru", "gru"} }, false},
		{"bad scope", func(c *Config) { c.Scaler.FitScope = "test" }, false},
		{"conv window too short", func(c *Config) { c.Hyperparameters.StepsIn = 4 }, false},
		{"short window without conv", func(c *Config) {
			c.Hyperparameters.StepsIn = 2
			c.Models.Enabled = []string{"lstm", "gru"}
		}, true},
		{"empty company", func(c *Config) { c.Data.Company = "" }, false},
		{"csv without path", func(c *Config) { c.Data.Path = "" }, false},
		{"mock without path", func(c *Config) {
			c.Data.Source = "mock"
			c.Data.Path = ""
		}, true},
		{"unknown source", func(c *Config) { c.Data.Source = "yahoo" }, false},
		{"long delimiter", func(c *Config) { c.Data.Delimiter = ";;" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
