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
	"fmt"
	"sort"
)

// Build cleans raw transactions and derives the dimension and fact tables.
// Rows missing a required field are dropped and counted, never an error.
// Building twice from the same input yields identical tables.
func Build(raws []*RawTransaction) *Tables {
	t := &Tables{}

	dates := make(map[string]DateDim)
	customers := make(map[int64]CustomerDim)
	products := make(map[string]ProductDim)

	for _, raw := range raws {
		if raw == nil || !raw.complete() {
			t.DroppedRows++
			continue
		}

		day := raw.InvoiceDate.Format("2006-01-02")
		if _, ok := dates[day]; !ok {
			year := raw.InvoiceDate.Year()
			quarter := (int(raw.InvoiceDate.Month())-1)/3 + 1
			dates[day] = DateDim{
				DateID:  day,
				Year:    year,
				Month:   raw.InvoiceDate.Format("2006-01"),
				Quarter: fmt.Sprintf("%d-Q%d", year, quarter),
			}
		}

		if _, ok := customers[*raw.CustomerID]; !ok {
			country := ""
			if raw.Country != nil {
				country = *raw.Country
			}
			customers[*raw.CustomerID] = CustomerDim{
				CustomerID: *raw.CustomerID,
				Country:    country,
			}
		}

		// First-seen description wins for a stock code.
		if _, ok := products[*raw.StockCode]; !ok {
			products[*raw.StockCode] = ProductDim{
				StockCode:   *raw.StockCode,
				Description: *raw.Description,
			}
		}

		t.Facts = append(t.Facts, FactRow{
			DateID:     day,
			CustomerID: *raw.CustomerID,
			StockCode:  *raw.StockCode,
			Quantity:   *raw.Quantity,
			Revenue:    float64(*raw.Quantity) * *raw.UnitPrice,
		})
	}

	t.Dates = make([]DateDim, 0, len(dates))
	for _, d := range dates {
		t.Dates = append(t.Dates, d)
	}
	sort.Slice(t.Dates, func(i, j int) bool { return t.Dates[i].DateID < t.Dates[j].DateID })

	t.Customers = make([]CustomerDim, 0, len(customers))
	for _, c := range customers {
		t.Customers = append(t.Customers, c)
	}
	sort.Slice(t.Customers, func(i, j int) bool { return t.Customers[i].CustomerID < t.Customers[j].CustomerID })

	t.Products = make([]ProductDim, 0, len(products))
	for _, p := range products {
		t.Products = append(t.Products, p)
	}
	sort.Slice(t.Products, func(i, j int) bool { return t.Products[i].StockCode < t.Products[j].StockCode })

	return t
}

// BuildAggregates recomputes the three monthly views from the fact table by
// joining back to the date and product dimensions. An empty warehouse yields
// three empty views; downstream consumers treat that as "no forecast
// possible".
func BuildAggregates(t *Tables) *AggregateSet {
	months := make(map[string]string, len(t.Dates))
	for _, d := range t.Dates {
		months[d.DateID] = d.Month
	}
	descriptions := make(map[string]string, len(t.Products))
	for _, p := range t.Products {
		descriptions[p.StockCode] = p.Description
	}

	type customerKey struct {
		month      string
		customerID int64
	}
	type productKey struct {
		month   string
		product string
	}

	global := make(map[string]float64)
	byCustomer := make(map[customerKey]float64)
	byProduct := make(map[productKey]float64)

	for _, f := range t.Facts {
		month := months[f.DateID]
		global[month] += f.Revenue
		byCustomer[customerKey{month, f.CustomerID}] += f.Revenue
		byProduct[productKey{month, descriptions[f.StockCode]}] += f.Revenue
	}

	aggs := &AggregateSet{}

	for month, revenue := range global {
		aggs.Global = append(aggs.Global, AggregatePoint{Month: month, Revenue: revenue})
	}
	sort.Slice(aggs.Global, func(i, j int) bool {
		return aggs.Global[i].Month < aggs.Global[j].Month
	})

	for k, revenue := range byCustomer {
		aggs.ByCustomer = append(aggs.ByCustomer, AggregatePoint{
			Month:      k.month,
			CustomerID: k.customerID,
			Revenue:    revenue,
		})
	}
	sort.Slice(aggs.ByCustomer, func(i, j int) bool {
		a, b := aggs.ByCustomer[i], aggs.ByCustomer[j]
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.CustomerID < b.CustomerID
	})

	for k, revenue := range byProduct {
		aggs.ByProduct = append(aggs.ByProduct, AggregatePoint{
			Month:   k.month,
			Product: k.product,
			Revenue: revenue,
		})
	}
	sort.Slice(aggs.ByProduct, func(i, j int) bool {
		a, b := aggs.ByProduct[i], aggs.ByProduct[j]
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Product < b.Product
	})

	return aggs
}
