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
	"strings"
	"unicode"
)

// GlobalKey is the entity key for the all-customers, all-products model.
const GlobalKey = "global"

// maxProductKeyLen bounds the sanitized product name inside a product key.
// Two descriptions can sanitize to the same key; lookups then resolve to one
// model for both. That collision is accepted, matching the historic artifact
// naming, rather than widened with a hash suffix.
const maxProductKeyLen = 30

// CustomerKey returns the entity key for a customer model.
func CustomerKey(customerID int64) string {
	return fmt.Sprintf("customer_%d", customerID)
}

// ProductKey returns the entity key for a product model. The description is
// lower-cased, every rune outside [a-z0-9_] becomes an underscore, and the
// result is truncated to maxProductKeyLen runes. The mapping is deterministic
// so the same description always resolves to the same key.
func ProductKey(description string) string {
	return "product_" + SanitizeProduct(description)
}

// SanitizeProduct applies the product key sanitization rule to a description.
func SanitizeProduct(description string) string {
	var b strings.Builder
	b.Grow(len(description))

	n := 0
	for _, r := range description {
		if n >= maxProductKeyLen {
			break
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		n++
	}
	return b.String()
}
