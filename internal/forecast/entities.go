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
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pgEdge/pgedge-forecast/internal/logging"
	"github.com/pgEdge/pgedge-forecast/internal/warehouse"
)

// Entity is one training unit: an entity key plus its monthly series,
// sorted ascending by month.
type Entity struct {
	Key    string
	Series []warehouse.AggregatePoint
}

// Entities partitions the aggregate views into training units: the global
// series, one series per customer, one per product. The aggregate views are
// month-ordered, so per-entity series come out sorted without re-sorting.
func Entities(aggs *warehouse.AggregateSet) []Entity {
	entities := []Entity{{Key: GlobalKey, Series: aggs.Global}}

	byCustomer := make(map[int64][]warehouse.AggregatePoint)
	for _, p := range aggs.ByCustomer {
		byCustomer[p.CustomerID] = append(byCustomer[p.CustomerID], p)
	}
	customerIDs := make([]int64, 0, len(byCustomer))
	for id := range byCustomer {
		customerIDs = append(customerIDs, id)
	}
	sort.Slice(customerIDs, func(i, j int) bool { return customerIDs[i] < customerIDs[j] })
	for _, id := range customerIDs {
		entities = append(entities, Entity{Key: CustomerKey(id), Series: byCustomer[id]})
	}

	byProduct := make(map[string][]warehouse.AggregatePoint)
	for _, p := range aggs.ByProduct {
		byProduct[p.Product] = append(byProduct[p.Product], p)
	}
	products := make([]string, 0, len(byProduct))
	for desc := range byProduct {
		products = append(products, desc)
	}
	sort.Strings(products)
	for _, desc := range products {
		entities = append(entities, Entity{Key: ProductKey(desc), Series: byProduct[desc]})
	}

	return entities
}

// SeriesFor resolves an entity key back to its monthly series. Product keys
// are matched by re-sanitizing every product description; when several
// descriptions collide on the same key the first in sort order is used,
// mirroring how colliding artifacts overwrite each other in the store.
// An entity with no observations yields an empty series, not an error.
func SeriesFor(aggs *warehouse.AggregateSet, entityKey string) ([]warehouse.AggregatePoint, error) {
	if entityKey == GlobalKey {
		return aggs.Global, nil
	}

	if raw, ok := strings.CutPrefix(entityKey, "customer_"); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid customer entity key %q", entityKey)
		}
		var series []warehouse.AggregatePoint
		for _, p := range aggs.ByCustomer {
			if p.CustomerID == id {
				series = append(series, p)
			}
		}
		return series, nil
	}

	if strings.HasPrefix(entityKey, "product_") {
		matches := make(map[string]struct{})
		for _, p := range aggs.ByProduct {
			if ProductKey(p.Product) == entityKey {
				matches[p.Product] = struct{}{}
			}
		}
		if len(matches) == 0 {
			return nil, nil
		}
		descriptions := make([]string, 0, len(matches))
		for desc := range matches {
			descriptions = append(descriptions, desc)
		}
		sort.Strings(descriptions)
		if len(descriptions) > 1 {
			logging.Warn().
				Str("entity", entityKey).
				Strs("descriptions", descriptions).
				Msg("Sanitized key matches multiple products")
		}

		var series []warehouse.AggregatePoint
		for _, p := range aggs.ByProduct {
			if p.Product == descriptions[0] {
				series = append(series, p)
			}
		}
		return series, nil
	}

	return nil, fmt.Errorf("unrecognized entity key %q", entityKey)
}
