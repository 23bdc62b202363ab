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
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-forecast/internal/logging"
	"github.com/pgEdge/pgedge-forecast/internal/warehouse"
)

// MinMonths is the eligibility threshold: entities with fewer distinct
// monthly observations are skipped, not failed.
const MinMonths = 5

// holdoutFraction is the chronological tail held out for evaluation.
const holdoutFraction = 0.2

// SkipReason explains why an entity was not trained. Skipping is policy,
// not a fault.
type SkipReason struct {
	EntityKey string
	NumMonths int
}

func (r *SkipReason) String() string {
	return fmt.Sprintf("%s: %d monthly observations, need %d",
		r.EntityKey, r.NumMonths, MinMonths)
}

// factorize assigns each point the zero-based first-occurrence index of its
// month within the series order. Indices are strictly increasing by one per
// distinct month; repeated months share an index.
func factorize(series []warehouse.AggregatePoint) (indices []int, distinct int) {
	indices = make([]int, len(series))
	seen := make(map[string]int, len(series))
	for i, p := range series {
		idx, ok := seen[p.Month]
		if !ok {
			idx = len(seen)
			seen[p.Month] = idx
		}
		indices[i] = idx
	}
	return indices, len(seen)
}

// Train fits a linear trend of revenue on the ordinal month index for one
// entity. Exactly one of the results is non-nil: the artifact when the
// entity has enough history, the skip reason otherwise.
//
// The leading 80% of the series fits the model and the trailing 20% is held
// out for an informational MSE; the holdout never gates persistence and may
// legitimately be tiny for short series.
func Train(series []warehouse.AggregatePoint, entityKey string) (*Artifact, *SkipReason) {
	sorted := make([]warehouse.AggregatePoint, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Month < sorted[j].Month })

	indices, distinct := factorize(sorted)
	if distinct < MinMonths {
		return nil, &SkipReason{EntityKey: entityKey, NumMonths: distinct}
	}

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i := range sorted {
		xs[i] = float64(indices[i])
		ys[i] = sorted[i].Revenue
	}

	holdout := int(math.Ceil(float64(len(sorted)) * holdoutFraction))
	split := len(sorted) - holdout

	intercept, slope := fitOLS(xs[:split], ys[:split])
	mse := meanSquaredError(intercept, slope, xs[split:], ys[split:])

	return &Artifact{
		EntityKey: entityKey,
		Intercept: intercept,
		Slope:     slope,
		NumMonths: distinct,
		LastIndex: distinct - 1,
		MSE:       mse,
		TrainedAt: time.Now().UTC(),
	}, nil
}

// Report summarizes one training run.
type Report struct {
	Trained int
	Skipped int
}

// Trainer trains every eligible entity and persists the resulting artifacts.
type Trainer struct {
	store   ArtifactStore
	workers int
}

// NewTrainer creates a trainer writing to the given store with at most
// workers concurrent fits.
func NewTrainer(store ArtifactStore, workers int) *Trainer {
	if workers < 1 {
		workers = 1
	}
	return &Trainer{store: store, workers: workers}
}

// TrainAll trains the global model plus one model per customer and per
// product. Each entity's fit is independent and owns a disjoint slice of the
// aggregates, so the loop fans out across a bounded worker pool. Entities
// below the eligibility threshold are skipped; a persistence failure aborts
// the run. Artifacts for entities that have since fallen below the threshold
// are left in place.
func (t *Trainer) TrainAll(ctx context.Context, aggs *warehouse.AggregateSet) (*Report, error) {
	entities := Entities(aggs)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)

	var mu sync.Mutex
	report := &Report{}

	for _, e := range entities {
		g.Go(func() error {
			artifact, skip := Train(e.Series, e.Key)
			if skip != nil {
				logging.Debug().
					Str("entity", skip.EntityKey).
					Int("months", skip.NumMonths).
					Msg("Entity skipped")
				mu.Lock()
				report.Skipped++
				mu.Unlock()
				return nil
			}

			if err := t.store.Put(ctx, artifact); err != nil {
				return fmt.Errorf("failed to persist model for %s: %w", e.Key, err)
			}
			logging.Debug().
				Str("entity", e.Key).
				Int("months", artifact.NumMonths).
				Float64("mse", artifact.MSE).
				Msg("Model trained")
			mu.Lock()
			report.Trained++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Info().
		Int("entities", len(entities)).
		Int("trained", report.Trained).
		Int("skipped", report.Skipped).
		Msg("Training complete")

	return report, nil
}
