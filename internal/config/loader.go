// Package config provides configuration management for the housing predictor.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "config/config.yaml"
	envPrefix         = "HOUSING"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration, tolerating a missing file.
// Defaults and environment variables fill whatever the file leaves out.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "housing-predictor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("paths.data_dir", "data")
	v.SetDefault("paths.model_dir", "models")
	v.SetDefault("paths.reports_dir", "reports")

	v.SetDefault("dataset.raw_file", "HousingData.csv")
	v.SetDefault("dataset.train_file", "train_data.csv")
	v.SetDefault("dataset.backtest_file", "backtest_data.csv")
	v.SetDefault("dataset.backtest_split_size", 0.2)
	v.SetDefault("dataset.stratify_column", "CHAS")

	v.SetDefault("train.target", "MEDV")
	v.SetDefault("train.test_size", 0.2)
	v.SetDefault("train.random_state", 42)
	v.SetDefault("train.automl_budget_secs", 60)
	v.SetDefault("train.cv_folds", 5)
	v.SetDefault("train.features", []string{
		"CRIM", "ZN", "INDUS", "CHAS", "NOX", "RM", "AGE",
		"DIS", "RAD", "TAX", "PTRATIO", "B", "LSTAT",
	})
	v.SetDefault("train.explain_samples", 100)
	v.SetDefault("train.explain_rounds", 20)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.sqlite_path", "data/predictions.db")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 10)
	v.SetDefault("server.degenerate_override", true)
	v.SetDefault("server.prediction_cache_ttl_seconds", 300)
	v.SetDefault("server.prediction_cache_size", 10000)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("redis.channel", "housing:predictions")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("backtest.api_url", "http://localhost:8000/predict")
	v.SetDefault("backtest.timeout_seconds", 10)
	v.SetDefault("backtest.retry_attempts", 0)
	v.SetDefault("backtest.rate_limit", 0)
	v.SetDefault("backtest.report_file", "backtest_report.csv")
	v.SetDefault("backtest.summary_file", "metrics_summary.csv")
	v.SetDefault("backtest.log_file", "backtest.log")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}
