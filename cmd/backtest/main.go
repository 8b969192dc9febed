// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/housing-predictor/internal/backtest"
	"github.com/yourusername/housing-predictor/internal/config"
	"github.com/yourusername/housing-predictor/internal/logger"
	"github.com/yourusername/housing-predictor/internal/ml"
	"github.com/yourusername/housing-predictor/internal/scheduler"
)

var (
	configFile string
	apiURL     string
	dataFile   string

	cfg     *config.Config
	appLog  *logrus.Logger
	logFile io.Closer
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Override the prediction endpoint")
	rootCmd.PersistentFlags().StringVar(&dataFile, "data", "", "Override the backtest dataset path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
}

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay held-out rows against the prediction API",
	Long:  `Posts every row of the backtest dataset to the running prediction API, writes a per-row report and appends MAE/MSE to the metrics history.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if apiURL != "" {
			cfg.Backtest.APIURL = apiURL
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}

		appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		logFile, err = logger.WithFile(appLog, cfg.Paths.ReportPath(cfg.Backtest.LogFile))
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single backtest",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, closer, err := newRunner()
		if err != nil {
			return err
		}
		defer closer.Close()

		if outcome := runner.RunSafely(cmd.Context()); outcome != nil {
			fmt.Print(backtest.GenerateConsoleReport(outcome))
		}
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run backtests on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Backtest.Schedule == "" {
			return fmt.Errorf("backtest.schedule is not configured")
		}
		runner, closer, err := newRunner()
		if err != nil {
			return err
		}
		defer closer.Close()

		sched := scheduler.NewScheduler(appLog)
		if err := sched.ScheduleBacktest(cfg.Backtest.Schedule, runner); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		appLog.WithField("next_run", sched.GetNextRun()).Info("Waiting for scheduled backtests")

		<-cmd.Context().Done()
		return sched.Stop()
	},
}

func newRunner() (*backtest.Runner, io.Closer, error) {
	btCfg, err := backtest.FromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if dataFile != "" {
		btCfg.DataPath = dataFile
	}
	client := ml.NewPredictionClient(btCfg.APIURL, btCfg.HTTPClientConfig(), appLog)
	runner, err := backtest.NewRunner(btCfg, client, appLog)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return runner, client, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("Error: %v", err)
		cancel()
		os.Exit(1)
	}
}
