// Package main provides the entry point for the prediction API.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/housing-predictor/internal/api"
	"github.com/yourusername/housing-predictor/internal/artifact"
	"github.com/yourusername/housing-predictor/internal/config"
	"github.com/yourusername/housing-predictor/internal/features"
	"github.com/yourusername/housing-predictor/internal/health"
	"github.com/yourusername/housing-predictor/internal/logger"
	"github.com/yourusername/housing-predictor/internal/metrics"
	"github.com/yourusername/housing-predictor/internal/ml"
	"github.com/yourusername/housing-predictor/internal/repository"
	"github.com/yourusername/housing-predictor/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := loadConfigWithSecrets(ctx, *configPath)
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"commit":      GitCommit,
	}).Info("Housing prediction API starting")

	// The API never starts without a model.
	store := artifact.NewStore(cfg.Paths.ModelPath(), cfg.Paths.MetricsPath())
	bundle, err := store.LoadBundle()
	if err != nil {
		appLog.WithError(err).Fatal("Failed to load model artifact")
	}
	appLog.WithFields(logrus.Fields{
		"path":   store.ModelPath(),
		"run_id": bundle.RunID,
	}).Info("Model artifact loaded")

	repo, err := repository.NewPredictionRepository(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to open prediction store")
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLog.WithError(err).Error("Failed to close prediction store")
		}
	}()

	dependencies := map[string]health.Pinger{"database": repo}
	svcCfg := service.Config{
		Contract:   features.Default(),
		Pipeline:   bundle.Pipeline,
		Repository: repo,
		Logger:     appLog,
	}
	if cfg.Server.DegenerateOverride {
		svcCfg.Rule = service.DefaultDegenerateInputRule()
	}
	if cfg.Server.PredictionCacheTTLSec > 0 {
		ttl := time.Duration(cfg.Server.PredictionCacheTTLSec) * time.Second
		svcCfg.Cache = ml.NewPredictionCache(ttl, cfg.Server.PredictionCacheSize)
	}
	if cfg.Redis.Enabled {
		publisher, err := service.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Channel)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to configure prediction publisher")
		}
		defer publisher.Close()
		svcCfg.Publisher = publisher
		dependencies["redis"] = publisher
	}

	svc, err := service.NewPredictionService(svcCfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create prediction service")
	}
	metrics.SetModelLoaded(true)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		healthServer := health.NewServer(health.Config{
			ServiceName:    cfg.App.Name,
			Version:        Version,
			Port:           cfg.Metrics.Port,
			Logger:         appLog,
			Dependencies:   dependencies,
			MetricsPath:    cfg.Metrics.Path,
			MetricsHandler: metrics.Handler(),
		})
		healthServer.SetModel(svc.ModelName())
		if err := healthServer.Start(ctx); err != nil {
			appLog.WithError(err).Fatal("Failed to start health server")
		}
	}

	server := api.NewServer(cfg.Server, svc, appLog)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		appLog.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			appLog.WithError(err).Error("Prediction API stopped unexpectedly")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Graceful shutdown failed")
	}
	metrics.SetModelLoaded(false)
	appLog.Info("Housing prediction API stopped")
}

func loadConfigWithSecrets(ctx context.Context, path string) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			logrus.Fatal("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			logrus.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}
