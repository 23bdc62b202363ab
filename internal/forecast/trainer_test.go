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
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/pgEdge/pgedge-forecast/internal/warehouse"
)

func monthlySeries(t *testing.T, months []string, revenues []float64) []warehouse.AggregatePoint {
	t.Helper()
	if len(months) != len(revenues) {
		t.Fatalf("test series mismatch: %d months, %d revenues", len(months), len(revenues))
	}
	series := make([]warehouse.AggregatePoint, len(months))
	for i := range months {
		series[i] = warehouse.AggregatePoint{Month: months[i], Revenue: revenues[i]}
	}
	return series
}

func TestTrainSkipsShortSeries(t *testing.T) {
	months := []string{"2024-01", "2024-02", "2024-03", "2024-04"}
	revenues := []float64{100, 110, 120, 130}

	for n := 0; n < MinMonths; n++ {
		artifact, skip := Train(monthlySeries(t, months[:n], revenues[:n]), "customer_7")
		if artifact != nil {
			t.Errorf("Series of %d months: expected no artifact, got %+v", n, artifact)
		}
		if skip == nil {
			t.Fatalf("Series of %d months: expected skip reason", n)
		}
		if skip.NumMonths != n {
			t.Errorf("Expected skip NumMonths %d, got %d", n, skip.NumMonths)
		}
		if skip.EntityKey != "customer_7" {
			t.Errorf("Expected skip entity customer_7, got %s", skip.EntityKey)
		}
	}
}

func TestFactorizeOrdinalIndices(t *testing.T) {
	// Gaps in the calendar do not produce gaps in the index: the index is
	// positional, not date arithmetic.
	series := monthlySeries(t,
		[]string{"2023-11", "2024-01", "2024-02", "2024-06", "2024-07", "2024-12"},
		[]float64{10, 20, 30, 40, 50, 60})

	indices, distinct := factorize(series)
	if distinct != 6 {
		t.Fatalf("Expected 6 distinct months, got %d", distinct)
	}
	for i, idx := range indices {
		if idx != i {
			t.Errorf("Expected index %d at position %d, got %d", i, i, idx)
		}
	}
}

func TestFactorizeRepeatedMonthsShareIndex(t *testing.T) {
	series := monthlySeries(t,
		[]string{"2024-01", "2024-01", "2024-02"},
		[]float64{10, 20, 30})

	indices, distinct := factorize(series)
	if distinct != 2 {
		t.Fatalf("Expected 2 distinct months, got %d", distinct)
	}
	want := []int{0, 0, 1}
	for i := range want {
		if indices[i] != want[i] {
			t.Errorf("Position %d: expected index %d, got %d", i, want[i], indices[i])
		}
	}
}

func TestTrainLinearScenario(t *testing.T) {
	series := monthlySeries(t,
		[]string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"},
		[]float64{100, 120, 110, 130, 125, 140})

	artifact, skip := Train(series, "customer_42")
	if skip != nil {
		t.Fatalf("Unexpected skip: %s", skip)
	}
	if artifact.NumMonths != 6 {
		t.Errorf("Expected 6 months, got %d", artifact.NumMonths)
	}
	if artifact.LastIndex != 5 {
		t.Errorf("Expected last index 5, got %d", artifact.LastIndex)
	}
	if artifact.Slope <= 0 {
		t.Errorf("Expected positive trend, got slope %.4f", artifact.Slope)
	}

	// Next-month extrapolation should land near the linear trend.
	point := artifact.Intercept + artifact.Slope*6
	if point < 140 || point > 155 {
		t.Errorf("Expected extrapolation near 145-150, got %.2f", point)
	}
	if math.IsNaN(artifact.MSE) || artifact.MSE < 0 {
		t.Errorf("Expected non-negative MSE, got %v", artifact.MSE)
	}
}

func TestTrainUnsortedInput(t *testing.T) {
	sorted := monthlySeries(t,
		[]string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05"},
		[]float64{100, 110, 120, 130, 140})
	shuffled := monthlySeries(t,
		[]string{"2024-03", "2024-01", "2024-05", "2024-02", "2024-04"},
		[]float64{120, 100, 140, 110, 130})

	a1, skip := Train(sorted, GlobalKey)
	if skip != nil {
		t.Fatalf("Unexpected skip: %s", skip)
	}
	a2, skip := Train(shuffled, GlobalKey)
	if skip != nil {
		t.Fatalf("Unexpected skip: %s", skip)
	}

	if a1.Intercept != a2.Intercept || a1.Slope != a2.Slope {
		t.Errorf("Expected order-independent fit, got (%.4f, %.4f) vs (%.4f, %.4f)",
			a1.Intercept, a1.Slope, a2.Intercept, a2.Slope)
	}
}

func TestTrainMinimumSeries(t *testing.T) {
	// Five months: one-point holdout, fit on four. Must not fail.
	series := monthlySeries(t,
		[]string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05"},
		[]float64{100, 200, 150, 250, 300})

	artifact, skip := Train(series, GlobalKey)
	if skip != nil {
		t.Fatalf("Unexpected skip: %s", skip)
	}
	if artifact.LastIndex != 4 {
		t.Errorf("Expected last index 4, got %d", artifact.LastIndex)
	}
	if math.IsNaN(artifact.Intercept) || math.IsNaN(artifact.Slope) {
		t.Errorf("Expected finite coefficients, got %+v", artifact)
	}
}

func trainAllFixture(t *testing.T) *warehouse.AggregateSet {
	t.Helper()
	aggs := &warehouse.AggregateSet{}
	months := []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"}

	for i, m := range months {
		revenue := 100.0 + float64(i)*10
		aggs.Global = append(aggs.Global, warehouse.AggregatePoint{Month: m, Revenue: revenue * 3})
		aggs.ByCustomer = append(aggs.ByCustomer, warehouse.AggregatePoint{
			Month: m, CustomerID: 42, Revenue: revenue,
		})
		aggs.ByProduct = append(aggs.ByProduct, warehouse.AggregatePoint{
			Month: m, Product: "WHITE HANGING HEART", Revenue: revenue * 2,
		})
	}
	// Customer 7 has too little history and must be skipped.
	for _, m := range months[:3] {
		aggs.ByCustomer = append(aggs.ByCustomer, warehouse.AggregatePoint{
			Month: m, CustomerID: 7, Revenue: 50,
		})
	}
	return aggs
}

func TestTrainAll(t *testing.T) {
	store := NewMemStore()
	trainer := NewTrainer(store, 4)

	report, err := trainer.TrainAll(context.Background(), trainAllFixture(t))
	if err != nil {
		t.Fatalf("TrainAll failed: %v", err)
	}
	if report.Trained != 3 {
		t.Errorf("Expected 3 trained entities, got %d", report.Trained)
	}
	if report.Skipped != 1 {
		t.Errorf("Expected 1 skipped entity, got %d", report.Skipped)
	}

	keys, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"customer_42", "global", "product_white_hanging_heart"}
	if len(keys) != len(want) {
		t.Fatalf("Expected keys %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Expected key %s, got %s", want[i], keys[i])
		}
	}

	// No artifact for the skipped entity.
	if _, err := store.Get(context.Background(), "customer_7"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for skipped entity, got %v", err)
	}
}

type failingStore struct{}

func (failingStore) Put(context.Context, *Artifact) error { return fmt.Errorf("disk full") }
func (failingStore) Get(context.Context, string) (*Artifact, error) {
	return nil, ErrNotFound
}
func (failingStore) List(context.Context) ([]string, error) { return nil, nil }

func TestTrainAllPersistenceFailureAborts(t *testing.T) {
	trainer := NewTrainer(failingStore{}, 2)
	_, err := trainer.TrainAll(context.Background(), trainAllFixture(t))
	if err == nil {
		t.Fatal("Expected persistence failure to abort the run")
	}
}

func TestTrainAllRetrainSupersedes(t *testing.T) {
	store := NewMemStore()
	trainer := NewTrainer(store, 2)
	ctx := context.Background()

	if _, err := trainer.TrainAll(ctx, trainAllFixture(t)); err != nil {
		t.Fatalf("TrainAll failed: %v", err)
	}
	first, err := store.Get(ctx, GlobalKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Retrain with another month of history; the artifact is replaced.
	aggs := trainAllFixture(t)
	aggs.Global = append(aggs.Global, warehouse.AggregatePoint{Month: "2024-07", Revenue: 500})
	if _, err := trainer.TrainAll(ctx, aggs); err != nil {
		t.Fatalf("TrainAll failed: %v", err)
	}
	second, err := store.Get(ctx, GlobalKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if second.NumMonths != first.NumMonths+1 {
		t.Errorf("Expected retrained artifact with %d months, got %d",
			first.NumMonths+1, second.NumMonths)
	}
}
