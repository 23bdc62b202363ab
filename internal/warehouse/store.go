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
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-forecast/internal/logging"
)

// defaultBatchSize is the number of rows per multi-row INSERT.
const defaultBatchSize = 1000

// Store persists warehouse builds and reads them back. All writes go through
// Publish, which stages the full rebuild and swaps it in atomically: readers
// either see the previous warehouse or the new one, never a partial build.
type Store struct {
	pool      *pgxpool.Pool
	batchSize int
}

// NewStore creates a warehouse store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, batchSize: defaultBatchSize}
}

// LoadRaw reads every row from raw_sales and raw_sales_log. NULLs are
// preserved as nil fields for the builder's cleaning pass.
func (s *Store) LoadRaw(ctx context.Context) ([]*RawTransaction, error) {
	const query = `
        SELECT invoice_id, stock_code, description, quantity,
               invoice_date, unit_price, customer_id, country
        FROM raw_sales
        UNION ALL
        SELECT invoice_id, stock_code, description, quantity,
               invoice_date, unit_price, customer_id, country
        FROM raw_sales_log
    `

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw sales: %w", err)
	}
	defer rows.Close()

	var raws []*RawTransaction
	for rows.Next() {
		raw := &RawTransaction{}
		err := rows.Scan(
			&raw.InvoiceID, &raw.StockCode, &raw.Description, &raw.Quantity,
			&raw.InvoiceDate, &raw.UnitPrice, &raw.CustomerID, &raw.Country,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raw sales row: %w", err)
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read raw sales: %w", err)
	}

	logging.Debug().Int("rows", len(raws)).Msg("Loaded raw transactions")
	return raws, nil
}

// Publish writes the full rebuild into the staging schema and swaps it into
// public inside a single transaction. Any failure rolls the whole publish
// back, leaving the previous warehouse untouched.
func (s *Store) Publish(ctx context.Context, t *Tables, aggs *AggregateSet) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin publish transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, "DROP SCHEMA IF EXISTS "+StagingSchema+" CASCADE"); err != nil {
		return fmt.Errorf("failed to reset staging schema: %w", err)
	}
	if _, err := tx.Exec(ctx, "CREATE SCHEMA "+StagingSchema); err != nil {
		return fmt.Errorf("failed to create staging schema: %w", err)
	}
	if _, err := tx.Exec(ctx, createWarehouseSQL); err != nil {
		return fmt.Errorf("failed to create staging tables: %w", err)
	}

	if err := s.writeTables(ctx, tx, t, aggs); err != nil {
		return err
	}

	// Swap staging into public. Foreign keys follow their tables across the
	// schema rename, so the swap order only matters for the drops.
	for _, table := range warehouseTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS public.%s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to drop old table %s: %w", table, err)
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf("ALTER TABLE %s.%s SET SCHEMA public", StagingSchema, table)); err != nil {
			return fmt.Errorf("failed to publish table %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(ctx, "DROP SCHEMA "+StagingSchema); err != nil {
		return fmt.Errorf("failed to drop staging schema: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit publish: %w", err)
	}

	logging.Info().
		Int("dates", len(t.Dates)).
		Int("customers", len(t.Customers)).
		Int("products", len(t.Products)).
		Int("facts", len(t.Facts)).
		Int("dropped_rows", t.DroppedRows).
		Msg("Warehouse published")

	return nil
}

func (s *Store) writeTables(ctx context.Context, tx pgx.Tx, t *Tables, aggs *AggregateSet) error {
	batch := make([]string, 0, s.batchSize)

	flush := func(table, columns string) error {
		if err := executeBatchInsert(ctx, tx, StagingSchema+"."+table, columns, batch); err != nil {
			return fmt.Errorf("failed to write %s: %w", table, err)
		}
		batch = batch[:0]
		return nil
	}

	for _, d := range t.Dates {
		batch = append(batch, fmt.Sprintf("('%s', %d, '%s', '%s')",
			d.DateID, d.Year, d.Month, d.Quarter))
		if len(batch) >= s.batchSize {
			if err := flush("dim_date", "(date_id, year, month, quarter)"); err != nil {
				return err
			}
		}
	}
	if err := flush("dim_date", "(date_id, year, month, quarter)"); err != nil {
		return err
	}

	for _, c := range t.Customers {
		batch = append(batch, fmt.Sprintf("(%d, '%s')",
			c.CustomerID, escapeSingleQuote(c.Country)))
		if len(batch) >= s.batchSize {
			if err := flush("dim_customer", "(customer_id, country)"); err != nil {
				return err
			}
		}
	}
	if err := flush("dim_customer", "(customer_id, country)"); err != nil {
		return err
	}

	for _, p := range t.Products {
		batch = append(batch, fmt.Sprintf("('%s', '%s')",
			escapeSingleQuote(p.StockCode), escapeSingleQuote(p.Description)))
		if len(batch) >= s.batchSize {
			if err := flush("dim_product", "(stock_code, description)"); err != nil {
				return err
			}
		}
	}
	if err := flush("dim_product", "(stock_code, description)"); err != nil {
		return err
	}

	for _, f := range t.Facts {
		batch = append(batch, fmt.Sprintf("('%s', %d, '%s', %d, %s)",
			f.DateID, f.CustomerID, escapeSingleQuote(f.StockCode),
			f.Quantity, formatFloat(f.Revenue)))
		if len(batch) >= s.batchSize {
			if err := flush("fact_sales", "(date_id, customer_id, stock_code, quantity, revenue)"); err != nil {
				return err
			}
		}
	}
	if err := flush("fact_sales", "(date_id, customer_id, stock_code, quantity, revenue)"); err != nil {
		return err
	}

	for _, a := range aggs.Global {
		batch = append(batch, fmt.Sprintf("('%s', %s)", a.Month, formatFloat(a.Revenue)))
		if len(batch) >= s.batchSize {
			if err := flush("agg_monthly_sales", "(month, revenue)"); err != nil {
				return err
			}
		}
	}
	if err := flush("agg_monthly_sales", "(month, revenue)"); err != nil {
		return err
	}

	for _, a := range aggs.ByCustomer {
		batch = append(batch, fmt.Sprintf("('%s', %d, %s)",
			a.Month, a.CustomerID, formatFloat(a.Revenue)))
		if len(batch) >= s.batchSize {
			if err := flush("agg_monthly_customer", "(month, customer_id, revenue)"); err != nil {
				return err
			}
		}
	}
	if err := flush("agg_monthly_customer", "(month, customer_id, revenue)"); err != nil {
		return err
	}

	for _, a := range aggs.ByProduct {
		batch = append(batch, fmt.Sprintf("('%s', '%s', %s)",
			a.Month, escapeSingleQuote(a.Product), formatFloat(a.Revenue)))
		if len(batch) >= s.batchSize {
			if err := flush("agg_monthly_product", "(month, description, revenue)"); err != nil {
				return err
			}
		}
	}
	return flush("agg_monthly_product", "(month, description, revenue)")
}

// ReadAggregates reads the three published aggregate views, ordered the same
// way the builder produces them.
func (s *Store) ReadAggregates(ctx context.Context) (*AggregateSet, error) {
	aggs := &AggregateSet{}

	rows, err := s.pool.Query(ctx,
		"SELECT month, revenue FROM agg_monthly_sales ORDER BY month")
	if err != nil {
		return nil, fmt.Errorf("failed to read monthly sales: %w", err)
	}
	for rows.Next() {
		var p AggregatePoint
		if err := rows.Scan(&p.Month, &p.Revenue); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan monthly sales: %w", err)
		}
		aggs.Global = append(aggs.Global, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read monthly sales: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		"SELECT month, customer_id, revenue FROM agg_monthly_customer ORDER BY month, customer_id")
	if err != nil {
		return nil, fmt.Errorf("failed to read customer sales: %w", err)
	}
	for rows.Next() {
		var p AggregatePoint
		if err := rows.Scan(&p.Month, &p.CustomerID, &p.Revenue); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan customer sales: %w", err)
		}
		aggs.ByCustomer = append(aggs.ByCustomer, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read customer sales: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT month, description, revenue FROM agg_monthly_product ORDER BY month, description COLLATE "C"`)
	if err != nil {
		return nil, fmt.Errorf("failed to read product sales: %w", err)
	}
	for rows.Next() {
		var p AggregatePoint
		if err := rows.Scan(&p.Month, &p.Product, &p.Revenue); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan product sales: %w", err)
		}
		aggs.ByProduct = append(aggs.ByProduct, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product sales: %w", err)
	}

	return aggs, nil
}

func executeBatchInsert(ctx context.Context, tx pgx.Tx, table, columns string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	sql := fmt.Sprintf("INSERT INTO %s %s VALUES %s", table, columns, strings.Join(values, ", "))
	_, err := tx.Exec(ctx, sql)
	return err
}

func escapeSingleQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
