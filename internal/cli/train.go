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

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-forecast/internal/db"
	"github.com/pgEdge/pgedge-forecast/internal/forecast"
	"github.com/pgEdge/pgedge-forecast/internal/logging"
	"github.com/pgEdge/pgedge-forecast/internal/warehouse"
)

var (
	trainWorkers int
	trainRefresh bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train forecast models for every entity with enough history",
	Long: `Train one linear trend model for the global series and for every
customer and product with at least five monthly observations. Entities below
the threshold are skipped. Models are persisted in the model_artifacts table,
superseding any previous model for the same entity.

Example:
  pgedge-forecast train --workers 8
  pgedge-forecast train --refresh`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&trainWorkers, "workers", 0,
		"number of concurrent training workers")
	trainCmd.Flags().BoolVar(&trainRefresh, "refresh", false,
		"rebuild the warehouse before training")
}

func runTrain(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if trainWorkers > 0 {
		cfg.Train.Workers = trainWorkers
	}
	if trainRefresh {
		cfg.Train.Refresh = true
	}

	if err := cfg.ValidateTrain(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.ConnectWithMaxConns(ctx, cfg.Connection, int32(cfg.Train.Workers)+2)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	store := warehouse.NewStore(pool)
	cache := warehouse.NewCache(store.ReadAggregates)

	if cfg.Train.Refresh {
		if _, err := refreshWarehouse(ctx, pool); err != nil {
			return err
		}
		cache.Invalidate()
	}

	aggs, err := cache.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load aggregates (run 'refresh' first?): %w", err)
	}
	if len(aggs.Global) == 0 {
		logging.Warn().Msg("Aggregates are empty; nothing to train")
		return nil
	}

	artifacts := forecast.NewPGStore(pool)
	if err := artifacts.EnsureSchema(ctx); err != nil {
		return err
	}

	trainer := forecast.NewTrainer(artifacts, cfg.Train.Workers)
	report, err := trainer.TrainAll(ctx, aggs)
	if err != nil {
		return err
	}

	cmd.Printf("Trained %d models (%d entities skipped)\n", report.Trained, report.Skipped)
	return nil
}
