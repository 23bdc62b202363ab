//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-forecast/internal/datagen"
	"github.com/pgEdge/pgedge-forecast/internal/db"
	"github.com/pgEdge/pgedge-forecast/internal/logging"
)

var (
	simulateRows     int
	simulateSchedule string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Append simulated transactions to the raw sales log",
	Long: `Append a batch of simulated transactions to raw_sales_log, standing in
for the live feed that would normally land there. With --schedule the command
keeps running and inserts one batch per cron tick until interrupted.

Example:
  pgedge-forecast simulate --rows 100
  pgedge-forecast simulate --rows 100 --schedule "*/10 * * * *"`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simulateRows, "rows", 0,
		"number of simulated transactions per batch")
	simulateCmd.Flags().StringVar(&simulateSchedule, "schedule", "",
		"cron expression; when set, insert one batch per tick until interrupted")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if simulateRows > 0 {
		cfg.Simulate.Rows = simulateRows
	}
	if simulateSchedule != "" {
		cfg.Simulate.Schedule = simulateSchedule
	}

	if err := cfg.ValidateSimulate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	gen := datagen.NewGenerator(0)

	if cfg.Simulate.Schedule == "" {
		return gen.SimulateBatch(ctx, pool, cfg.Simulate.Rows)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	_, err = c.AddFunc(cfg.Simulate.Schedule, func() {
		if err := gen.SimulateBatch(ctx, pool, cfg.Simulate.Rows); err != nil {
			logging.Error().Err(err).Msg("Simulation batch failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Simulate.Schedule, err)
	}

	logging.Info().
		Str("schedule", cfg.Simulate.Schedule).
		Int("rows", cfg.Simulate.Rows).
		Msg("Simulation scheduler started, press Ctrl+C to stop")

	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()

	logging.Info().Msg("Simulation scheduler stopped")
	return nil
}
