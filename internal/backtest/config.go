// Package backtest replays held-out rows against a running prediction API.
package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/housing-predictor/internal/config"
	"github.com/yourusername/housing-predictor/internal/datasource"
)

// Config holds the settings of one backtest run.
type Config struct {
	APIURL        string
	Timeout       time.Duration
	RetryAttempts int
	RateLimit     float64
	Target        string
	DataPath      string
	ReportPath    string
	SummaryPath   string
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("config is required")
	}
	bt := Config{
		APIURL:        cfg.Backtest.APIURL,
		Timeout:       time.Duration(cfg.Backtest.TimeoutSeconds) * time.Second,
		RetryAttempts: cfg.Backtest.RetryAttempts,
		RateLimit:     cfg.Backtest.RateLimit,
		Target:        cfg.Train.Target,
		DataPath:      cfg.Paths.BacktestDataPath(cfg.Dataset),
		ReportPath:    cfg.Paths.ReportPath(cfg.Backtest.ReportFile),
		SummaryPath:   cfg.Paths.ReportPath(cfg.Backtest.SummaryFile),
	}
	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (c Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	if c.Target == "" {
		return fmt.Errorf("target column is required")
	}
	if c.ReportPath == "" || c.SummaryPath == "" {
		return fmt.Errorf("report and summary paths are required")
	}
	return nil
}

// HTTPClientConfig is the client configuration for the prediction API.
// The circuit breaker stays off so every row is attempted.
func (c Config) HTTPClientConfig() datasource.HTTPClientConfig {
	return datasource.HTTPClientConfig{
		Timeout:      c.Timeout,
		MaxRetries:   c.RetryAttempts,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
		RateLimit:    c.RateLimit,
	}
}
