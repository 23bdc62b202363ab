//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package forecast

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createArtifactTableSQL = `
CREATE TABLE IF NOT EXISTS model_artifacts (
    entity_key TEXT PRIMARY KEY,
    intercept  DOUBLE PRECISION NOT NULL,
    slope      DOUBLE PRECISION NOT NULL,
    num_months INTEGER NOT NULL,
    last_index INTEGER NOT NULL,
    mse        DOUBLE PRECISION NOT NULL,
    trained_at TIMESTAMPTZ NOT NULL
)`

// PGStore is the PostgreSQL-backed ArtifactStore.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates an artifact store over the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsureSchema creates the artifact table if it does not exist.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createArtifactTableSQL); err != nil {
		return fmt.Errorf("failed to create artifact table: %w", err)
	}
	return nil
}

// Put upserts the artifact for its entity key. The previous artifact, if
// any, is superseded wholesale.
func (s *PGStore) Put(ctx context.Context, a *Artifact) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO model_artifacts
            (entity_key, intercept, slope, num_months, last_index, mse, trained_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (entity_key) DO UPDATE SET
            intercept  = EXCLUDED.intercept,
            slope      = EXCLUDED.slope,
            num_months = EXCLUDED.num_months,
            last_index = EXCLUDED.last_index,
            mse        = EXCLUDED.mse,
            trained_at = EXCLUDED.trained_at
    `, a.EntityKey, a.Intercept, a.Slope, a.NumMonths, a.LastIndex, a.MSE, a.TrainedAt)
	if err != nil {
		return fmt.Errorf("failed to store artifact %s: %w", a.EntityKey, err)
	}
	return nil
}

// Get returns the artifact for an entity, or ErrNotFound.
func (s *PGStore) Get(ctx context.Context, entityKey string) (*Artifact, error) {
	a := &Artifact{}
	err := s.pool.QueryRow(ctx, `
        SELECT entity_key, intercept, slope, num_months, last_index, mse, trained_at
        FROM model_artifacts
        WHERE entity_key = $1
    `, entityKey).Scan(
		&a.EntityKey, &a.Intercept, &a.Slope,
		&a.NumMonths, &a.LastIndex, &a.MSE, &a.TrainedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("entity %s: %w", entityKey, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact %s: %w", entityKey, err)
	}
	return a, nil
}

// List returns all stored entity keys, sorted.
func (s *PGStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT entity_key FROM model_artifacts ORDER BY entity_key")
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan artifact key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return keys, nil
}
