// Package config resolves the run settings: defaults, then an optional YAML
// file, then TICKETS_* environment variables. CLI flags are applied last by
// the caller.
package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"ticket-analytics/pkg/calculator"
	"ticket-analytics/pkg/models"
	"ticket-analytics/pkg/snapshot"
	"ticket-analytics/pkg/timeseries"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TICKETS"

// Config is the resolved configuration of one CLI invocation.
type Config struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	DSN        string `yaml:"dsn" envconfig:"DSN"`
	Table      string `yaml:"table" envconfig:"TABLE"`
	Snapshot   string `yaml:"snapshot" envconfig:"SNAPSHOT"`
	StartMonth string `yaml:"start_month" envconfig:"START_MONTH"`
	EndMonth   string `yaml:"end_month" envconfig:"END_MONTH"`
	LogLevel   string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	Verbose    bool   `yaml:"verbose" ignored:"true"`

	TopN             int               `yaml:"top_n" ignored:"true"`
	CacheSize        int               `yaml:"cache_size" ignored:"true"`
	Smoothing        timeseries.Params `yaml:"smoothing" ignored:"true"`
	AnomalyThreshold float64           `yaml:"anomaly_threshold" ignored:"true"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir:          "src/data",
		Table:            "ticket_orders",
		Snapshot:         snapshot.DefaultPath,
		LogLevel:         "info",
		TopN:             5,
		CacheSize:        8,
		Smoothing:        timeseries.DefaultParams,
		AnomalyThreshold: timeseries.DefaultThreshold,
	}
}

// Load layers the YAML file at path (optional; "" skips it) and the
// environment over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, errors.Wrap(err, "environment")
	}
	return cfg, nil
}

// Validate checks the settings that can be wrong independently of the data.
func (c Config) Validate() error {
	if c.DataDir == "" && c.DSN == "" {
		return errors.New("one of data_dir or dsn is required")
	}
	if (c.StartMonth == "") != (c.EndMonth == "") {
		return errors.New("start_month and end_month must be set together")
	}
	if c.StartMonth != "" {
		if err := calculator.ParseMonth(c.StartMonth); err != nil {
			return errors.Wrap(err, "start_month")
		}
		if err := calculator.ParseMonth(c.EndMonth); err != nil {
			return errors.Wrap(err, "end_month")
		}
	}
	if err := c.Smoothing.Validate(); err != nil {
		return errors.Wrap(err, "smoothing")
	}
	if c.AnomalyThreshold <= 0 {
		return errors.Errorf("anomaly_threshold must be > 0, got %g", c.AnomalyThreshold)
	}
	if c.TopN < 1 {
		return errors.Errorf("top_n must be >= 1, got %d", c.TopN)
	}
	if c.CacheSize < 1 {
		return errors.Errorf("cache_size must be >= 1, got %d", c.CacheSize)
	}
	return nil
}

// Run returns the calculator settings.
func (c Config) Run() models.Config {
	return models.Config{StartMonth: c.StartMonth, EndMonth: c.EndMonth, Verbose: c.Verbose}
}
