//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package forecast implements per-entity model training and next-month
// revenue prediction over the warehouse's monthly aggregates.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when no artifact has been trained for an entity.
// Callers are expected to render this as "train the model first", not fail.
var ErrNotFound = errors.New("model artifact not found")

// Artifact is a fitted linear trend model for one entity. Artifacts are
// immutable once persisted; retraining supersedes them wholesale.
type Artifact struct {
	// EntityKey is "global", "customer_<id>" or "product_<sanitized>".
	EntityKey string

	// Intercept and Slope define revenue = Intercept + Slope*index, where
	// index is the zero-based ordinal month index assigned at training time.
	Intercept float64
	Slope     float64

	// NumMonths is the number of distinct months the model was trained on.
	NumMonths int

	// LastIndex is the highest ordinal index observed at training time.
	LastIndex int

	// MSE is the holdout mean squared error. Informational only; it never
	// gates persistence and is zero when the holdout set was empty.
	MSE float64

	TrainedAt time.Time
}

// ArtifactStore is a keyed store for trained models. Put replaces any
// existing artifact for the same entity.
type ArtifactStore interface {
	Put(ctx context.Context, a *Artifact) error
	Get(ctx context.Context, entityKey string) (*Artifact, error)
	List(ctx context.Context) ([]string, error)
}

// MemStore is an in-memory ArtifactStore, used in tests and anywhere a
// database-backed store is not wanted.
type MemStore struct {
	mu        sync.RWMutex
	artifacts map[string]Artifact
}

// NewMemStore creates an empty in-memory artifact store.
func NewMemStore() *MemStore {
	return &MemStore{artifacts: make(map[string]Artifact)}
}

// Put stores a copy of the artifact, replacing any previous one.
func (s *MemStore) Put(_ context.Context, a *Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[a.EntityKey] = *a
	return nil
}

// Get returns the artifact for an entity, or ErrNotFound.
func (s *MemStore) Get(_ context.Context, entityKey string) (*Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artifacts[entityKey]
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", entityKey, ErrNotFound)
	}
	return &a, nil
}

// List returns all stored entity keys, sorted.
func (s *MemStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.artifacts))
	for k := range s.artifacts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
