//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package forecast

import (
	"strings"
	"testing"
)

func TestCustomerKey(t *testing.T) {
	if got := CustomerKey(17850); got != "customer_17850" {
		t.Errorf("Expected customer_17850, got %s", got)
	}
}

func TestSanitizeProduct(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{
			name:        "spaces and punctuation",
			description: "WHITE HANGING HEART T-LIGHT",
			want:        "white_hanging_heart_t_light",
		},
		{
			name:        "slash",
			description: "SET/6 RED SPOTTY CUPS",
			want:        "set_6_red_spotty_cups",
		},
		{
			name:        "underscores kept",
			description: "Red_Mug",
			want:        "red_mug",
		},
		{
			name:        "truncated to thirty runes",
			description: "WHITE HANGING HEART T-LIGHT HOLDER LARGE",
			want:        "white_hanging_heart_t_light_ho",
		},
		{
			name:        "empty",
			description: "",
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeProduct(tt.description)
			if got != tt.want {
				t.Errorf("SanitizeProduct(%q) = %q, want %q", tt.description, got, tt.want)
			}
			if len(got) > maxProductKeyLen {
				t.Errorf("Sanitized key %q exceeds %d runes", got, maxProductKeyLen)
			}
		})
	}
}

func TestSanitizeProductDeterministic(t *testing.T) {
	desc := "Glass Star Frosted T-Light Holder"
	first := ProductKey(desc)
	for i := 0; i < 5; i++ {
		if got := ProductKey(desc); got != first {
			t.Fatalf("ProductKey is not deterministic: %q vs %q", first, got)
		}
	}
	if !strings.HasPrefix(first, "product_") {
		t.Errorf("Expected product_ prefix, got %q", first)
	}
}

func TestSanitizeProductKnownCollision(t *testing.T) {
	// Distinct descriptions collapsing to one key is accepted behavior.
	a := ProductKey("Red Mug!!")
	b := ProductKey("Red_Mug  ")
	if a != b {
		t.Errorf("Expected %q and %q to collide, got %q vs %q", "Red Mug!!", "Red_Mug  ", a, b)
	}
}
