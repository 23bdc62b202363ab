//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-forecast/internal/logging"
	"github.com/pgEdge/pgedge-forecast/pkg/version"
)

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS forecast_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// SaveRefreshMetadata records the outcome of a warehouse refresh.
func SaveRefreshMetadata(ctx context.Context, pool *pgxpool.Pool, rawRows, droppedRows int) error {
	_, err := pool.Exec(ctx, createMetadataTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	metadata := map[string]string{
		"version":         version.Short(),
		"last_refresh_at": time.Now().UTC().Format(time.RFC3339),
		"raw_rows":        strconv.Itoa(rawRows),
		"dropped_rows":    strconv.Itoa(droppedRows),
	}

	for key, value := range metadata {
		_, err := pool.Exec(ctx, `
            INSERT INTO forecast_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().
		Int("raw_rows", rawRows).
		Int("dropped_rows", droppedRows).
		Msg("Saved refresh metadata")

	return nil
}

// GetMetadataValue reads a single metadata value.
func GetMetadataValue(ctx context.Context, pool *pgxpool.Pool, key string) (string, error) {
	var value string
	err := pool.QueryRow(ctx,
		"SELECT value FROM forecast_metadata WHERE key = $1", key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("failed to read metadata %s: %w", key, err)
	}
	return value, nil
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "DROP TABLE IF EXISTS forecast_metadata")
	return err
}
