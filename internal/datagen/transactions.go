//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-forecast/internal/logging"
)

// BatchInsertConfig configures batch insert behavior.
type BatchInsertConfig struct {
	// BatchSize is the number of rows per batch insert.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultBatchConfig returns default batch insert configuration.
func DefaultBatchConfig() BatchInsertConfig {
	return BatchInsertConfig{
		BatchSize:        1000,
		ProgressInterval: 100000,
	}
}

// Catalog sizes for generated reference data. Transactions draw from fixed
// pools so the same customers and products recur across months, which is
// what gives the per-entity series enough history to train on.
const (
	numProducts  = 250
	numCustomers = 400
)

// nullCustomerRate is the fraction of transactions generated without a
// customer id, mimicking guest checkouts in real retail exports. These rows
// are dropped by the warehouse cleaning pass.
const nullCustomerRate = 0.03

type product struct {
	stockCode   string
	description string
}

type customer struct {
	id      int64
	country string
}

// Generator produces raw sales transactions.
type Generator struct {
	faker     *Faker
	cfg       BatchInsertConfig
	products  []product
	customers []customer
}

// NewGenerator creates a transaction generator. A non-zero seed makes the
// generated catalog and transactions reproducible.
func NewGenerator(seed uint64) *Generator {
	faker := NewFaker()
	if seed != 0 {
		faker = NewFakerWithSeed(seed)
	}

	g := &Generator{
		faker: faker,
		cfg:   DefaultBatchConfig(),
	}

	for i := 0; i < numProducts; i++ {
		g.products = append(g.products, product{
			stockCode:   fmt.Sprintf("%05d%s", 10000+i, faker.LetterN(1)),
			description: strings.ToUpper(Truncate(faker.ProductName(), 35)),
		})
	}
	for i := 0; i < numCustomers; i++ {
		g.customers = append(g.customers, customer{
			id:      int64(12000 + i),
			country: faker.Country(),
		})
	}

	return g
}

// SeedSales generates rows transactions spread over the trailing months and
// inserts them into raw_sales.
func (g *Generator) SeedSales(ctx context.Context, pool *pgxpool.Pool, rows, months int) error {
	logging.Info().Int("rows", rows).Int("months", months).Msg("Seeding raw sales")
	return g.insertTransactions(ctx, pool, "raw_sales",
		"(invoice_id, stock_code, description, quantity, invoice_date, unit_price, customer_id, country)",
		rows, months, "")
}

// SimulateBatch generates one batch of simulated transactions dated within
// the last few days and appends them to raw_sales_log.
func (g *Generator) SimulateBatch(ctx context.Context, pool *pgxpool.Pool, rows int) error {
	logging.Info().Int("rows", rows).Msg("Simulating transactions")
	return g.insertTransactions(ctx, pool, "raw_sales_log",
		"(invoice_id, stock_code, description, quantity, invoice_date, unit_price, customer_id, country, source)",
		rows, 1, "auto_simulation")
}

func (g *Generator) insertTransactions(ctx context.Context, pool *pgxpool.Pool, table, columns string, rows, months int, source string) error {
	batch := make([]string, 0, g.cfg.BatchSize)
	progress := NewProgressReporter(table, int64(rows), g.cfg.ProgressInterval)

	now := time.Now().UTC()
	earliest := now.AddDate(0, -months, 0)
	window := int(now.Sub(earliest) / time.Second)

	for i := 0; i < rows; i++ {
		p := Choose(g.faker, g.products)
		c := Choose(g.faker, g.customers)

		customerID := fmt.Sprintf("%d", c.id)
		if g.faker.Float64(0, 1) < nullCustomerRate {
			customerID = "NULL"
		}

		invoiceDate := earliest.Add(time.Duration(g.faker.Int(0, window)) * time.Second)

		values := fmt.Sprintf("('%s', '%s', '%s', %d, '%s', %.2f, %s, '%s'",
			g.faker.DigitN(6),
			p.stockCode,
			escapeSingleQuote(p.description),
			g.faker.Int(1, 48),
			invoiceDate.Format(time.RFC3339),
			g.faker.Price(0.25, 40),
			customerID,
			escapeSingleQuote(c.country),
		)
		if source != "" {
			values += fmt.Sprintf(", '%s'", source)
		}
		values += ")"
		batch = append(batch, values)

		if len(batch) >= g.cfg.BatchSize {
			if err := executeBatchInsert(ctx, pool, table, columns, batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := executeBatchInsert(ctx, pool, table, columns, batch); err != nil {
			return err
		}
		progress.Update(int64(len(batch)))
	}
	progress.Done()
	return nil
}

func executeBatchInsert(ctx context.Context, pool *pgxpool.Pool, table, columns string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	sql := fmt.Sprintf("INSERT INTO %s %s VALUES %s", table, columns, strings.Join(values, ", "))
	_, err := pool.Exec(ctx, sql)
	return err
}

func escapeSingleQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// ProgressReporter tracks and reports data generation progress.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(tableName string, totalRows int64, interval int64) *ProgressReporter {
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Info().
			Str("table", p.tableName).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Generating data")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Debug().
		Str("table", p.tableName).
		Int64("rows", p.currentRow).
		Msg("Table complete")
}
