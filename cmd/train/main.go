// Package main provides the entry point for the training workflow.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/housing-predictor/internal/config"
	"github.com/yourusername/housing-predictor/internal/logger"
	"github.com/yourusername/housing-predictor/internal/training"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		dataPath   = flag.String("data", "", "Override the training dataset path")
		budget     = flag.Duration("budget", 0, "Override the AutoML time budget")
	)
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	logFile, err := logger.WithFile(appLog, cfg.Paths.MainLogPath())
	if err != nil {
		appLog.WithError(err).Fatal("Failed to open training log")
	}
	defer logFile.Close()

	opts := training.OptionsFromConfig(cfg)
	if *dataPath != "" {
		opts.DataPath = *dataPath
	}
	if *budget > 0 {
		opts.Budget = *budget
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	appLog.WithFields(logrus.Fields{
		"data":   opts.DataPath,
		"target": opts.Target,
		"budget": opts.Budget,
	}).Info("Starting training")

	result, err := training.NewOrchestrator(opts, appLog).Run(ctx)
	if err != nil {
		appLog.WithError(err).Error("Training failed")
		logFile.Close()
		os.Exit(1)
	}

	fmt.Printf("Best model: %s\n", result.Metrics.BestModelName)
	fmt.Printf("Test R2: %.4f  RMSE: %.4f  MAE: %.4f\n",
		result.Metrics.Test.R2, result.Metrics.Test.RMSE, result.Metrics.Test.MAE)
	fmt.Printf("Model saved to %s (run %s)\n", result.ModelPath, result.RunID)
}
