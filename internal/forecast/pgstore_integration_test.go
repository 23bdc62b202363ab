//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Integration tests for the PostgreSQL artifact store.
// Run with: go test -tags=integration ./internal/forecast/...
// Requires PostgreSQL to be available.
// Set PGEDGE_FORECAST_TEST_CONN environment variable to override connection string.

package forecast_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-forecast/internal/forecast"
	"github.com/pgEdge/pgedge-forecast/internal/testutil"
)

func TestPGStoreRoundTrip(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)
	connStr := testutil.CreateTestDB(t, baseConnStr, "artifacts")
	dbName := testutil.GetDBNameFromConnStr(connStr)

	cleanup := testutil.NewTestCleanup(t, baseConnStr, dbName)
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := forecast.NewPGStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	// EnsureSchema is idempotent.
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("Second EnsureSchema failed: %v", err)
	}

	if _, err := store.Get(ctx, "global"); !errors.Is(err, forecast.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for missing artifact, got %v", err)
	}

	artifact := &forecast.Artifact{
		EntityKey: "customer_42",
		Intercept: 103.5,
		Slope:     8.25,
		NumMonths: 6,
		LastIndex: 5,
		MSE:       12.5,
		TrainedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := store.Put(ctx, artifact); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "customer_42")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Intercept != artifact.Intercept || got.Slope != artifact.Slope {
		t.Errorf("Expected coefficients (%.2f, %.2f), got (%.2f, %.2f)",
			artifact.Intercept, artifact.Slope, got.Intercept, got.Slope)
	}
	if got.NumMonths != 6 || got.LastIndex != 5 {
		t.Errorf("Expected 6 months / last index 5, got %d / %d", got.NumMonths, got.LastIndex)
	}
	if !got.TrainedAt.Equal(artifact.TrainedAt) {
		t.Errorf("Expected trained_at %v, got %v", artifact.TrainedAt, got.TrainedAt)
	}

	// Put supersedes the previous artifact for the same key.
	retrained := *artifact
	retrained.Slope = 9.0
	retrained.NumMonths = 7
	retrained.LastIndex = 6
	if err := store.Put(ctx, &retrained); err != nil {
		t.Fatalf("Second Put failed: %v", err)
	}
	got, err = store.Get(ctx, "customer_42")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Slope != 9.0 || got.LastIndex != 6 {
		t.Errorf("Expected superseded artifact, got %+v", got)
	}

	if err := store.Put(ctx, &forecast.Artifact{EntityKey: "global", TrainedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	keys, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"customer_42", "global"}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Errorf("Expected keys %v, got %v", want, keys)
	}
}
