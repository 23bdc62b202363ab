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

	"github.com/pgEdge/pgedge-forecast/internal/datagen"
	"github.com/pgEdge/pgedge-forecast/internal/db"
	"github.com/pgEdge/pgedge-forecast/internal/logging"
	"github.com/pgEdge/pgedge-forecast/internal/warehouse"
)

var (
	initRows         int
	initMonths       int
	initSeed         uint64
	initDropExisting bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the raw sales tables and seed them with transactions",
	Long: `Initialize the raw_sales and raw_sales_log tables and seed them with
generated retail transactions spread over the trailing months. A non-zero
seed makes the generated data reproducible.

Example:
  pgedge-forecast init --rows 50000 --months 18 --connection "postgres://..."`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().IntVar(&initRows, "rows", 0,
		"number of seed transactions to generate")
	initCmd.Flags().IntVar(&initMonths, "months", 0,
		"number of trailing months the seed transactions span")
	initCmd.Flags().Uint64Var(&initSeed, "seed", 0,
		"random seed for reproducible data (0 = random)")
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing raw tables before initialization")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initRows > 0 {
		cfg.Init.Rows = initRows
	}
	if initMonths > 0 {
		cfg.Init.Months = initMonths
	}
	if initSeed != 0 {
		cfg.Init.Seed = initSeed
	}
	if initDropExisting {
		cfg.Init.DropExisting = true
	}

	if err := cfg.ValidateInit(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Init.DropExisting {
		logging.Info().Msg("Dropping existing raw tables")
		if err := warehouse.DropRawSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop raw tables: %w", err)
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	logging.Info().Msg("Creating raw tables")
	if err := warehouse.CreateRawSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create raw tables: %w", err)
	}

	gen := datagen.NewGenerator(cfg.Init.Seed)
	if err := gen.SeedSales(ctx, pool, cfg.Init.Rows, cfg.Init.Months); err != nil {
		return fmt.Errorf("failed to seed raw sales: %w", err)
	}

	logging.Info().
		Int("rows", cfg.Init.Rows).
		Int("months", cfg.Init.Months).
		Msg("Initialization complete")

	return nil
}
