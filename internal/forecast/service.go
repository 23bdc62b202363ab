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
	"sort"

	"github.com/pgEdge/pgedge-forecast/internal/warehouse"
)

// Prediction is a next-month revenue forecast in the same currency unit as
// the input revenue.
type Prediction struct {
	PointEstimate float64
	Lower95       float64
	Upper95       float64
}

// Service serves point forecasts from persisted artifacts. It performs no
// writes and is safe for concurrent use across entity keys.
type Service struct {
	store ArtifactStore
}

// NewService creates a forecast service reading from the given store.
func NewService(store ArtifactStore) *Service {
	return &Service{store: store}
}

// Forecast predicts next-month revenue for an entity. The next index is one
// past the highest ordinal index of the entity's observed months, assigned
// by the same first-occurrence rule used in training; deriving it from
// calendar arithmetic instead would drift on series with gaps. When no
// series is supplied the index stored in the artifact is used.
//
// Missing artifacts surface as ErrNotFound: a "not yet available" state for
// the caller, never a fault.
func (s *Service) Forecast(ctx context.Context, entityKey string, series []warehouse.AggregatePoint) (*Prediction, error) {
	artifact, err := s.store.Get(ctx, entityKey)
	if err != nil {
		return nil, err
	}

	nextIndex := artifact.LastIndex + 1
	if len(series) > 0 {
		sorted := make([]warehouse.AggregatePoint, len(series))
		copy(sorted, series)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Month < sorted[j].Month })
		_, distinct := factorize(sorted)
		nextIndex = distinct
	}

	point := artifact.Intercept + artifact.Slope*float64(nextIndex)

	// Crude normal-approximation band over raw revenue dispersion, not a
	// regression prediction interval. Revenue cannot go negative, so the
	// lower bound is floored at zero.
	revenues := make([]float64, len(series))
	for i, p := range series {
		revenues[i] = p.Revenue
	}
	band := 1.96 * sampleStdDev(revenues)

	lower := point - band
	if lower < 0 {
		lower = 0
	}

	return &Prediction{
		PointEstimate: point,
		Lower95:       lower,
		Upper95:       point + band,
	}, nil
}
