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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-forecast/internal/db"
	"github.com/pgEdge/pgedge-forecast/internal/forecast"
	"github.com/pgEdge/pgedge-forecast/internal/logging"
	"github.com/pgEdge/pgedge-forecast/internal/warehouse"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the warehouse from the raw sales tables",
	Long: `Rebuild the star-schema warehouse and the three monthly aggregate
views from the raw sales tables. The rebuild is written to a staging schema
and published atomically; readers never see a partial warehouse.

Example:
  pgedge-forecast refresh --connection "postgres://..."`,
	RunE: runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if last, err := db.GetMetadataValue(ctx, pool, "last_refresh_at"); err == nil {
		logging.Info().Str("last_refresh_at", last).Msg("Previous refresh found")
	}

	aggs, err := refreshWarehouse(ctx, pool)
	if err != nil {
		return err
	}

	if n := len(aggs.Global); n >= 2 {
		prev := aggs.Global[n-2]
		cur := aggs.Global[n-1]
		logging.Info().
			Str("month", cur.Month).
			Float64("revenue", cur.Revenue).
			Float64("change_pct", forecast.PercentChange(prev.Revenue, cur.Revenue)).
			Msg("Latest monthly revenue")
	}

	return nil
}

// refreshWarehouse runs the full ETL: load raw rows, build the star schema
// and aggregates in memory, publish atomically, record run metadata.
func refreshWarehouse(ctx context.Context, pool *pgxpool.Pool) (*warehouse.AggregateSet, error) {
	store := warehouse.NewStore(pool)

	raws, err := store.LoadRaw(ctx)
	if err != nil {
		return nil, err
	}

	tables := warehouse.Build(raws)
	if tables.DroppedRows > 0 {
		logging.Info().
			Int("dropped_rows", tables.DroppedRows).
			Msg("Dropped incomplete raw rows")
	}
	if len(tables.Facts) == 0 {
		logging.Warn().Msg("No complete transactions after cleaning; aggregates will be empty")
	}

	aggs := warehouse.BuildAggregates(tables)

	if err := store.Publish(ctx, tables, aggs); err != nil {
		return nil, err
	}
	if err := db.SaveRefreshMetadata(ctx, pool, len(raws), tables.DroppedRows); err != nil {
		return nil, err
	}

	logging.Info().
		Int("months", len(aggs.Global)).
		Int("customer_points", len(aggs.ByCustomer)).
		Int("product_points", len(aggs.ByProduct)).
		Msg("Aggregates rebuilt")

	return aggs, nil
}
