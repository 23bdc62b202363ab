//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse implements the star-schema warehouse builder: cleaning
// raw transactions, deriving dimension and fact tables, and computing the
// three monthly revenue aggregates consumed by the trainer and the dashboard.
package warehouse

import "time"

// RawTransaction is one row read from the raw sales tables. Fields are
// pointers because the raw tables allow NULLs; a row missing any required
// field is dropped during cleaning. Country is carried into the customer
// dimension but is not required.
type RawTransaction struct {
	InvoiceID   *string
	StockCode   *string
	Description *string
	Quantity    *int64
	InvoiceDate *time.Time
	UnitPrice   *float64
	CustomerID  *int64
	Country     *string
}

// complete reports whether all required fields are present.
func (r *RawTransaction) complete() bool {
	return r.InvoiceID != nil &&
		r.StockCode != nil &&
		r.Description != nil &&
		r.Quantity != nil &&
		r.InvoiceDate != nil &&
		r.UnitPrice != nil &&
		r.CustomerID != nil
}

// DateDim is one row of the date dimension, keyed by calendar date.
type DateDim struct {
	DateID  string // "2006-01-02"
	Year    int
	Month   string // "2006-01"
	Quarter string // "2006-Q1"
}

// CustomerDim is one row of the customer dimension.
type CustomerDim struct {
	CustomerID int64
	Country    string
}

// ProductDim is one row of the product dimension. A stock code can carry
// several descriptions in the raw data; the first-seen pairing wins.
type ProductDim struct {
	StockCode   string
	Description string
}

// FactRow is one cleaned transaction projected onto the star schema.
type FactRow struct {
	DateID     string
	CustomerID int64
	StockCode  string
	Quantity   int64
	Revenue    float64
}

// Tables holds one full warehouse build. Every build is a complete rebuild;
// tables are replaced, never merged.
type Tables struct {
	Dates     []DateDim
	Customers []CustomerDim
	Products  []ProductDim
	Facts     []FactRow

	// DroppedRows counts raw rows rejected during cleaning.
	DroppedRows int
}

// AggregatePoint is one row of a monthly revenue aggregate. CustomerID is
// zero and Product empty for views that do not carry them.
type AggregatePoint struct {
	Month      string
	CustomerID int64
	Product    string
	Revenue    float64
}

// AggregateSet holds the three monthly aggregate views, each sorted
// ascending with month as the primary key.
type AggregateSet struct {
	Global     []AggregatePoint
	ByCustomer []AggregatePoint
	ByProduct  []AggregatePoint
}
