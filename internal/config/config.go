// Package config provides configuration management for the housing predictor.
package config

import (
	"fmt"
	"path/filepath"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Paths    PathsConfig    `mapstructure:"paths" validate:"required"`
	Dataset  DatasetConfig  `mapstructure:"dataset" validate:"required"`
	Train    TrainConfig    `mapstructure:"train" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
	Backtest BacktestConfig `mapstructure:"backtest" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// PathsConfig holds the fixed directories every artifact lives under.
type PathsConfig struct {
	DataDir    string `mapstructure:"data_dir" validate:"required"`
	ModelDir   string `mapstructure:"model_dir" validate:"required"`
	ReportsDir string `mapstructure:"reports_dir" validate:"required"`
}

// DatasetConfig represents dataset acquisition and split configuration
type DatasetConfig struct {
	SourceURL         string  `mapstructure:"source_url" validate:"omitempty,url"`
	RawFile           string  `mapstructure:"raw_file" validate:"required"`
	TrainFile         string  `mapstructure:"train_file" validate:"required"`
	BacktestFile      string  `mapstructure:"backtest_file" validate:"required"`
	BacktestSplitSize float64 `mapstructure:"backtest_split_size" validate:"required,gt=0,lt=1"`
	StratifyColumn    string  `mapstructure:"stratify_column"`
}

// TrainConfig represents training parameters
type TrainConfig struct {
	Target           string   `mapstructure:"target" validate:"required"`
	TestSize         float64  `mapstructure:"test_size" validate:"required,gt=0,lt=1"`
	RandomState      int64    `mapstructure:"random_state" validate:"gte=0"`
	AutoMLBudgetSecs float64  `mapstructure:"automl_budget_secs" validate:"required,gt=0"`
	CVFolds          int      `mapstructure:"cv_folds" validate:"required,gte=2"`
	Features         []string `mapstructure:"features" validate:"required,min=1,unique"`
	ExplainSamples   int      `mapstructure:"explain_samples" validate:"gte=0"`
	ExplainRounds    int      `mapstructure:"explain_rounds" validate:"gte=0"`
}

// DatabaseConfig represents audit store connection configuration
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver" validate:"required,driver"`
	Host           string `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Driver postgres"`
	User           string `mapstructure:"user" validate:"required_if=Driver postgres"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	SQLitePath     string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

// ServerConfig represents the prediction API configuration
type ServerConfig struct {
	Address               string   `mapstructure:"address" validate:"required"`
	ReadTimeoutSeconds    int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds   int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	DegenerateOverride    bool     `mapstructure:"degenerate_override"`
	PredictionCacheTTLSec int      `mapstructure:"prediction_cache_ttl_seconds" validate:"gte=0"`
	PredictionCacheSize   int      `mapstructure:"prediction_cache_size" validate:"gte=0"`
	CORSAllowedOrigins    []string `mapstructure:"cors_allowed_origins"`
}

// RedisConfig represents the optional prediction event publisher
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url" validate:"required_if=Enabled true"`
	Channel string `mapstructure:"channel" validate:"required_if=Enabled true"`
}

// MetricsConfig represents metrics and health endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	APIURL         string  `mapstructure:"api_url" validate:"required,url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts  int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gte=0"`
	Schedule       string  `mapstructure:"schedule"`
	ReportFile     string  `mapstructure:"report_file" validate:"required"`
	SummaryFile    string  `mapstructure:"summary_file" validate:"required"`
	LogFile        string  `mapstructure:"log_file" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// RawDataPath is the downloaded, unsplit dataset.
func (p PathsConfig) RawDataPath(d DatasetConfig) string {
	return filepath.Join(p.DataDir, d.RawFile)
}

// TrainDataPath is the training partition written by the prepare step.
func (p PathsConfig) TrainDataPath(d DatasetConfig) string {
	return filepath.Join(p.DataDir, d.TrainFile)
}

// BacktestDataPath is the held-out partition replayed by the backtest runner.
func (p PathsConfig) BacktestDataPath(d DatasetConfig) string {
	return filepath.Join(p.DataDir, d.BacktestFile)
}

// ModelPath is the fixed location of the fitted pipeline artifact.
func (p PathsConfig) ModelPath() string {
	return filepath.Join(p.ModelDir, "best_pipeline.gob")
}

// MetricsPath is the fixed location of the training metrics record.
func (p PathsConfig) MetricsPath() string {
	return filepath.Join(p.ReportsDir, "metrics.json")
}

// SummaryPath is the human-readable AutoML summary.
func (p PathsConfig) SummaryPath() string {
	return filepath.Join(p.ReportsDir, "automl_summary.txt")
}

// ImportancePlotPath is the model-based feature importance chart.
func (p PathsConfig) ImportancePlotPath() string {
	return filepath.Join(p.ReportsDir, "feature_importance.png")
}

// ShapPlotPath is the attribution summary chart.
func (p PathsConfig) ShapPlotPath() string {
	return filepath.Join(p.ReportsDir, "shap_summary.png")
}

// MainLogPath is the training log file.
func (p PathsConfig) MainLogPath() string {
	return filepath.Join(p.ReportsDir, "main.log")
}

// ReportPath joins a report file name onto the reports directory.
func (p PathsConfig) ReportPath(name string) string {
	return filepath.Join(p.ReportsDir, name)
}
