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

// Integration tests for the warehouse store.
// Run with: go test -tags=integration ./internal/warehouse/...
// Requires PostgreSQL to be available.
// Set PGEDGE_FORECAST_TEST_CONN environment variable to override connection string.

package warehouse_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-forecast/internal/testutil"
	"github.com/pgEdge/pgedge-forecast/internal/warehouse"
)

func TestStoreRefreshRoundTrip(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)
	connStr := testutil.CreateTestDB(t, baseConnStr, "warehouse")
	dbName := testutil.GetDBNameFromConnStr(connStr)

	cleanup := testutil.NewTestCleanup(t, baseConnStr, dbName)
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := warehouse.CreateRawSchema(ctx, pool); err != nil {
		t.Fatalf("CreateRawSchema failed: %v", err)
	}

	_, err := pool.Exec(ctx, `
        INSERT INTO raw_sales
            (invoice_id, stock_code, description, quantity, invoice_date, unit_price, customer_id, country)
        VALUES
            ('536365', '85123A', 'WHITE HANGING HEART', 6, '2024-01-15T08:26:00Z', 2.55, 17850, 'United Kingdom'),
            ('536366', '71053',  'WHITE METAL LANTERN', 3, '2024-02-20T09:01:00Z', 3.39, 13047, 'France'),
            ('536367', '85123A', 'WHITE HANGING HEART', 2, '2024-02-25T10:30:00Z', 2.55, NULL,  'United Kingdom')
    `)
	if err != nil {
		t.Fatalf("Failed to insert raw rows: %v", err)
	}
	_, err = pool.Exec(ctx, `
        INSERT INTO raw_sales_log
            (invoice_id, stock_code, description, quantity, invoice_date, unit_price, customer_id, country, source)
        VALUES
            ('536368', '71053', 'WHITE METAL LANTERN', 1, '2024-03-02T14:00:00Z', 3.39, 13047, 'France', 'auto_simulation')
    `)
	if err != nil {
		t.Fatalf("Failed to insert raw log rows: %v", err)
	}

	store := warehouse.NewStore(pool)

	raws, err := store.LoadRaw(ctx)
	if err != nil {
		t.Fatalf("LoadRaw failed: %v", err)
	}
	if len(raws) != 4 {
		t.Fatalf("Expected 4 raw rows across both tables, got %d", len(raws))
	}

	tables := warehouse.Build(raws)
	if tables.DroppedRows != 1 {
		t.Errorf("Expected 1 dropped row (NULL customer), got %d", tables.DroppedRows)
	}
	aggs := warehouse.BuildAggregates(tables)

	if err := store.Publish(ctx, tables, aggs); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got, err := store.ReadAggregates(ctx)
	if err != nil {
		t.Fatalf("ReadAggregates failed: %v", err)
	}
	if !reflect.DeepEqual(got, aggs) {
		t.Errorf("Read aggregates differ from published ones:\n got %+v\nwant %+v", got, aggs)
	}

	// Republishing from the same raw input is idempotent.
	if err := store.Publish(ctx, tables, aggs); err != nil {
		t.Fatalf("Second publish failed: %v", err)
	}
	again, err := store.ReadAggregates(ctx)
	if err != nil {
		t.Fatalf("ReadAggregates failed: %v", err)
	}
	if !reflect.DeepEqual(again, got) {
		t.Error("Republishing identical input changed the aggregates")
	}

	var factCount int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM fact_sales").Scan(&factCount); err != nil {
		t.Fatalf("Failed to count facts: %v", err)
	}
	if factCount != 3 {
		t.Errorf("Expected 3 fact rows after rebuild, got %d", factCount)
	}

	// The staging schema must not survive a publish.
	var stagingExists bool
	err = pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM information_schema.schemata WHERE schema_name = $1
        )
    `, warehouse.StagingSchema).Scan(&stagingExists)
	if err != nil {
		t.Fatalf("Failed to check staging schema: %v", err)
	}
	if stagingExists {
		t.Error("Staging schema left behind after publish")
	}
}

func TestStorePublishEmptyWarehouse(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)
	connStr := testutil.CreateTestDB(t, baseConnStr, "warehouse_empty")
	dbName := testutil.GetDBNameFromConnStr(connStr)

	cleanup := testutil.NewTestCleanup(t, baseConnStr, dbName)
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := warehouse.CreateRawSchema(ctx, pool); err != nil {
		t.Fatalf("CreateRawSchema failed: %v", err)
	}

	store := warehouse.NewStore(pool)
	raws, err := store.LoadRaw(ctx)
	if err != nil {
		t.Fatalf("LoadRaw failed: %v", err)
	}

	tables := warehouse.Build(raws)
	aggs := warehouse.BuildAggregates(tables)
	if err := store.Publish(ctx, tables, aggs); err != nil {
		t.Fatalf("Publish of empty warehouse failed: %v", err)
	}

	got, err := store.ReadAggregates(ctx)
	if err != nil {
		t.Fatalf("ReadAggregates failed: %v", err)
	}
	if len(got.Global) != 0 || len(got.ByCustomer) != 0 || len(got.ByProduct) != 0 {
		t.Errorf("Expected empty aggregates, got %+v", got)
	}
}
