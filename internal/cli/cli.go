//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-forecast.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-forecast/internal/config"
	"github.com/pgEdge/pgedge-forecast/internal/logging"
	"github.com/pgEdge/pgedge-forecast/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-forecast",
		Short: "PostgreSQL sales warehouse and revenue forecasting pipeline",
		Long: `pgedge-forecast is a CLI tool that rebuilds a star-schema sales
warehouse from raw transaction tables, derives monthly revenue aggregates at
global, per-customer, and per-product granularity, trains one linear trend
model per entity with enough history, and serves next-month revenue forecasts
from the persisted models.

The warehouse is rebuilt in full on every refresh and published atomically,
so concurrent readers never observe a partial build.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-forecast.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(forecastCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
