//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates raw sales transactions for seeding and
// simulating the upstream boundary.
package datagen

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// Country generates a random country name.
func (f *Faker) Country() string {
	return f.faker.Country()
}

// ProductName generates a random product name.
func (f *Faker) ProductName() string {
	return f.faker.ProductName()
}

// Price generates a random price between min and max.
func (f *Faker) Price(min, max float64) float64 {
	return f.faker.Price(min, max)
}

// Int generates a random integer in [min, max].
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Float64 generates a random float in [min, max].
func (f *Faker) Float64(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// DigitN generates a string of n random digits.
func (f *Faker) DigitN(n uint) string {
	return f.faker.DigitN(n)
}

// LetterN generates a string of n random letters.
func (f *Faker) LetterN(n uint) string {
	return f.faker.LetterN(n)
}

// Choose picks a random element from a slice.
func Choose[T any](f *Faker, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// Truncate limits a string to maxLen bytes.
func Truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}
