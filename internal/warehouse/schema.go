//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StagingSchema is where a rebuild is written before it is published.
// Readers only ever see the public tables.
const StagingSchema = "forecast_staging"

// Raw sales tables. These are the upstream boundary: the tool is agnostic to
// how rows arrive (seed command, external import, scheduled simulation), it
// only relies on the column set. Columns are nullable on purpose; cleaning
// happens in the builder, not at the database boundary.
const createRawSchemaSQL = `
CREATE TABLE IF NOT EXISTS raw_sales (
    invoice_id   TEXT,
    stock_code   TEXT,
    description  TEXT,
    quantity     BIGINT,
    invoice_date TIMESTAMPTZ,
    unit_price   DOUBLE PRECISION,
    customer_id  BIGINT,
    country      TEXT
);

CREATE TABLE IF NOT EXISTS raw_sales_log (
    invoice_id   TEXT,
    stock_code   TEXT,
    description  TEXT,
    quantity     BIGINT,
    invoice_date TIMESTAMPTZ,
    unit_price   DOUBLE PRECISION,
    customer_id  BIGINT,
    country      TEXT,
    inserted_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    source       TEXT NOT NULL DEFAULT 'initial_import'
);

CREATE INDEX IF NOT EXISTS idx_raw_sales_invoice_date ON raw_sales(invoice_date);
CREATE INDEX IF NOT EXISTS idx_raw_sales_log_invoice_date ON raw_sales_log(invoice_date);
`

const dropRawSchemaSQL = `
DROP TABLE IF EXISTS raw_sales CASCADE;
DROP TABLE IF EXISTS raw_sales_log CASCADE;
`

// Star schema plus the three derived aggregate views, created inside the
// staging schema during a rebuild and swapped into public on publish.
const createWarehouseSQL = `
CREATE TABLE forecast_staging.dim_date (
    date_id TEXT PRIMARY KEY,
    year    INTEGER NOT NULL,
    month   TEXT NOT NULL,
    quarter TEXT NOT NULL
);

CREATE TABLE forecast_staging.dim_customer (
    customer_id BIGINT PRIMARY KEY,
    country     TEXT NOT NULL
);

CREATE TABLE forecast_staging.dim_product (
    stock_code  TEXT PRIMARY KEY,
    description TEXT NOT NULL
);

CREATE TABLE forecast_staging.fact_sales (
    date_id     TEXT NOT NULL REFERENCES forecast_staging.dim_date(date_id),
    customer_id BIGINT NOT NULL REFERENCES forecast_staging.dim_customer(customer_id),
    stock_code  TEXT NOT NULL REFERENCES forecast_staging.dim_product(stock_code),
    quantity    BIGINT NOT NULL,
    revenue     DOUBLE PRECISION NOT NULL
);

CREATE TABLE forecast_staging.agg_monthly_sales (
    month   TEXT NOT NULL,
    revenue DOUBLE PRECISION NOT NULL
);

CREATE TABLE forecast_staging.agg_monthly_customer (
    month       TEXT NOT NULL,
    customer_id BIGINT NOT NULL,
    revenue     DOUBLE PRECISION NOT NULL
);

CREATE TABLE forecast_staging.agg_monthly_product (
    month       TEXT NOT NULL,
    description TEXT NOT NULL,
    revenue     DOUBLE PRECISION NOT NULL
);

CREATE INDEX idx_fact_sales_date ON forecast_staging.fact_sales(date_id);
CREATE INDEX idx_fact_sales_customer ON forecast_staging.fact_sales(customer_id);
CREATE INDEX idx_agg_monthly_customer ON forecast_staging.agg_monthly_customer(customer_id);
CREATE INDEX idx_agg_monthly_product ON forecast_staging.agg_monthly_product(description);
`

// warehouseTables lists every table swapped on publish, in dependency order.
var warehouseTables = []string{
	"dim_date",
	"dim_customer",
	"dim_product",
	"fact_sales",
	"agg_monthly_sales",
	"agg_monthly_customer",
	"agg_monthly_product",
}

// CreateRawSchema creates the raw sales tables.
func CreateRawSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createRawSchemaSQL)
	return err
}

// DropRawSchema drops the raw sales tables.
func DropRawSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, dropRawSchemaSQL)
	return err
}
