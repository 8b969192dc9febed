// Package main provides the dataset acquisition and preparation CLI.
package main

import (
	"fmt"
	"log"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/housing-predictor/internal/config"
	"github.com/yourusername/housing-predictor/internal/dataset"
	"github.com/yourusername/housing-predictor/internal/datasource"
	"github.com/yourusername/housing-predictor/internal/logger"
)

var (
	configFile string
	sourceURL  string

	cfg    *config.Config
	appLog *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	fetchCmd.Flags().StringVar(&sourceURL, "source", "", "Override the dataset URL or local path")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(prepareCmd)
}

var rootCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Download and split the housing dataset",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the raw dataset into the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		location := cfg.Dataset.SourceURL
		if sourceURL != "" {
			location = sourceURL
		}
		if location == "" {
			return fmt.Errorf("dataset.source_url is not configured")
		}

		client := datasource.NewRateLimitedHTTPClient(datasource.DefaultHTTPClientConfig(), appLog)
		defer client.Close()

		src, err := datasource.NewSource(location, client)
		if err != nil {
			return err
		}
		_, err = dataset.Fetch(cmd.Context(), src, cfg.Paths.RawDataPath(cfg.Dataset), appLog)
		return err
	},
}

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Split the raw dataset into training and backtest partitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := dataset.Load(cfg.Paths.RawDataPath(cfg.Dataset))
		if err != nil {
			return err
		}
		train, held, err := dataset.Prepare(raw, dataset.PrepareOptions{
			BacktestSize:   cfg.Dataset.BacktestSplitSize,
			Seed:           cfg.Train.RandomState,
			StratifyColumn: cfg.Dataset.StratifyColumn,
		})
		if err != nil {
			return fmt.Errorf("failed to split dataset: %w", err)
		}

		trainPath := cfg.Paths.TrainDataPath(cfg.Dataset)
		backtestPath := cfg.Paths.BacktestDataPath(cfg.Dataset)
		if err := dataset.Save(trainPath, train); err != nil {
			return err
		}
		if err := dataset.Save(backtestPath, held); err != nil {
			return err
		}

		appLog.WithFields(logrus.Fields{
			"train_rows":    train.Len(),
			"backtest_rows": held.Len(),
			"train_path":    trainPath,
			"backtest_path": backtestPath,
		}).Info("Dataset prepared")
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
