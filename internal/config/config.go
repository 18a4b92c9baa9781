package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Data            Data            `yaml:"data"`
	Hyperparameters Hyperparameters `yaml:"hyperparameters"`
	Training        Training        `yaml:"training"`
	Scaler          Scaler          `yaml:"scaler"`
	Models          Models          `yaml:"models"`
	Report          Report          `yaml:"report"`
	Database        Database        `yaml:"database"`
	Metrics         Metrics         `yaml:"metrics"`
	Schedule        Schedule        `yaml:"schedule"`
	Logging         Logging         `yaml:"logging"`
}

type Data struct {
	// Source is "csv" for a delimited file or "mock" for a generated series.
	Source string `yaml:"source" default:"csv" validate:"oneof=csv mock"`

	Path      string `yaml:"path" default:"data/stock_details_5_years.csv" validate:"required_if=Source csv"`
	Company   string `yaml:"company" default:"NKE" validate:"required"`
	Delimiter string `yaml:"delimiter" default:"," validate:"len=1"`

	// MockPoints is the length of the generated series when Source is "mock".
	MockPoints int `yaml:"mock_points" default:"600" validate:"min=1"`
}

// Hyperparameters are the pipeline constants of a forecasting run.
type Hyperparameters struct {
	StepsIn      int     `yaml:"n_steps_in" default:"5" validate:"min=1"`
	StepsOut     int     `yaml:"n_steps_out" default:"1" validate:"min=1"`
	Features     int     `yaml:"n_features" default:"1" validate:"eq=1"` // only Close is modelled
	TrainRatio   float64 `yaml:"train_ratio" default:"0.7" validate:"gt=0,lt=1"`
	Folds        int     `yaml:"n_folds" default:"10" validate:"min=2"`
	Epochs       int     `yaml:"epochs" default:"50" validate:"min=1"`
	LearningRate float64 `yaml:"learning_rate" default:"0.0001" validate:"gt=0"`
}

type Training struct {
	BatchSize       int     `yaml:"batch_size" default:"32" validate:"min=1"`
	ValidationSplit float64 `yaml:"validation_split" default:"0.3" validate:"gte=0,lt=1"`
	Shuffle         bool    `yaml:"shuffle" default:"true"`
	Seed            uint64  `yaml:"seed" default:"42"`
	ParallelModels  bool    `yaml:"parallel_models"`
}

type Scaler struct {
	// FitScope selects the values the scaler is fit on: the full company
	// series ("full") or the training segment only ("train").
	FitScope string `yaml:"fit_scope" default:"full" validate:"oneof=full train"`
}

type Models struct {
	Enabled []string  `yaml:"enabled" default:"[\"lstm\",\"conv1d\",\"gru\"]" validate:"min=1,unique,dive,oneof=lstm conv1d gru"`
	Conv1D  Conv1D    `yaml:"conv1d"`
	GRU     Recurrent `yaml:"gru"`
	LSTM    Recurrent `yaml:"lstm"`
}

type Conv1D struct {
	Filters    int `yaml:"filters" default:"64" validate:"min=1"`
	KernelSize int `yaml:"kernel_size" default:"3" validate:"min=1"`
}

type Recurrent struct {
	Units  int `yaml:"units" default:"32" validate:"min=1"`
	Layers int `yaml:"layers" default:"2" validate:"min=1"`
}

type Report struct {
	ChartPath   string `yaml:"chart_path" default:"output/forecast.pdf"`
	SummaryPath string `yaml:"summary_path"`
}

type Database struct {
	SQLitePath string `yaml:"sqlite_path"`
}

type Metrics struct {
	TextfilePath string `yaml:"textfile_path"`
}

type Schedule struct {
	// Cron re-runs the pipeline on a six-field (seconds) cron spec. Empty runs once.
	Cron string `yaml:"cron"`
}

type Logging struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `yaml:"output" default:"stdout"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load reads config from a YAML file on top of the defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FORECAST_DATA_PATH"); v != "" {
		cfg.Data.Path = v
	}
	if v := os.Getenv("FORECAST_COMPANY"); v != "" {
		cfg.Data.Company = v
	}
	if v := os.Getenv("FORECAST_EPOCHS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("FORECAST_EPOCHS: %w", err)
		}
		cfg.Hyperparameters.Epochs = n
	}
	if v := os.Getenv("FORECAST_SCALER_SCOPE"); v != "" {
		cfg.Scaler.FitScope = v
	}
	if v := os.Getenv("FORECAST_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and the cross-field shape requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q (value %v)", fe.Namespace(), fe.ActualTag(), fe.Value())
		}
		return err
	}
	if c.ModelEnabled("conv1d") {
		k := c.Models.Conv1D.KernelSize
		if need := 2*(k-1) + 1; c.Hyperparameters.StepsIn < need {
			return fmt.Errorf("hyperparameters.n_steps_in must be >= %d for two conv1d layers of kernel %d", need, k)
		}
	}
	return nil
}

// ModelEnabled reports whether the named architecture is enabled.
func (c *Config) ModelEnabled(name string) bool {
	for _, n := range c.Models.Enabled {
		if n == name {
			return true
		}
	}
	return false
}
