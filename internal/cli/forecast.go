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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-forecast/internal/db"
	"github.com/pgEdge/pgedge-forecast/internal/forecast"
	"github.com/pgEdge/pgedge-forecast/internal/warehouse"
)

var forecastEntity string

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print the next-month revenue forecast for an entity",
	Long: `Print the next-month revenue point estimate and 95% band for an
entity, using the model persisted by 'train'. Entity keys are "global",
"customer_<id>", or "product_<sanitized-name>".

Example:
  pgedge-forecast forecast --entity global
  pgedge-forecast forecast --entity customer_12042
  pgedge-forecast forecast --entity product_white_hanging_heart`,
	RunE: runForecast,
}

func init() {
	forecastCmd.Flags().StringVar(&forecastEntity, "entity", forecast.GlobalKey,
		"entity key to forecast")
}

func runForecast(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	store := warehouse.NewStore(pool)
	cache := warehouse.NewCache(store.ReadAggregates)

	aggs, err := cache.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load aggregates (run 'refresh' first?): %w", err)
	}

	series, err := forecast.SeriesFor(aggs, forecastEntity)
	if err != nil {
		return err
	}

	svc := forecast.NewService(forecast.NewPGStore(pool))
	prediction, err := svc.Forecast(ctx, forecastEntity, series)
	if errors.Is(err, forecast.ErrNotFound) {
		cmd.Printf("No model available for %s. Train the model first.\n", forecastEntity)
		return nil
	}
	if err != nil {
		return err
	}

	cmd.Printf("Forecast next month revenue for %s: %.2f (95%% band: %.2f - %.2f)\n",
		forecastEntity, prediction.PointEstimate, prediction.Lower95, prediction.Upper95)
	return nil
}
