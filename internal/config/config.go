//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-forecast.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for pgedge-forecast.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Simulate holds configuration for the simulate subcommand.
	Simulate SimulateConfig `mapstructure:"simulate"`

	// Train holds configuration for the train subcommand.
	Train TrainConfig `mapstructure:"train"`
}

// InitConfig holds configuration for raw schema initialization.
type InitConfig struct {
	// Rows is the number of seed transactions to generate.
	Rows int `mapstructure:"rows"`

	// Months is the number of trailing months seed transactions span.
	Months int `mapstructure:"months"`

	// Seed makes seed data reproducible when non-zero.
	Seed uint64 `mapstructure:"seed"`

	// DropExisting drops existing raw tables before initialization.
	DropExisting bool `mapstructure:"drop_existing"`
}

// SimulateConfig holds configuration for the transaction simulator.
type SimulateConfig struct {
	// Rows is the number of simulated transactions per batch.
	Rows int `mapstructure:"rows"`

	// Schedule is an optional cron expression; when set the simulator keeps
	// running and inserts one batch per tick.
	Schedule string `mapstructure:"schedule"`
}

// TrainConfig holds configuration for model training.
type TrainConfig struct {
	// Workers is the number of concurrent per-entity training workers.
	Workers int `mapstructure:"workers"`

	// Refresh rebuilds the warehouse before training instead of reading the
	// previously published aggregates.
	Refresh bool `mapstructure:"refresh"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Init: InitConfig{
			Rows:   5000,
			Months: 12,
		},
		Simulate: SimulateConfig{
			Rows: 100,
		},
		Train: TrainConfig{
			Workers: 4,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-forecast.yaml
// 3. ~/.config/pgedge-forecast/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-forecast")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-forecast"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateInit checks configuration required for the init command.
func (c *Config) ValidateInit() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Init.Rows < 1 {
		return fmt.Errorf("init rows must be at least 1")
	}
	if c.Init.Months < 1 {
		return fmt.Errorf("init months must be at least 1")
	}
	return nil
}

// ValidateSimulate checks configuration required for the simulate command.
func (c *Config) ValidateSimulate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Simulate.Rows < 1 {
		return fmt.Errorf("simulate rows must be at least 1")
	}
	return nil
}

// ValidateTrain checks configuration required for the train command.
func (c *Config) ValidateTrain() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Train.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	return nil
}
