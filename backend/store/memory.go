// ABOUTME: In-memory calculation store used when no database is configured
// ABOUTME: Guards a map with an RWMutex and copies records in and out

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

type MemoryStore struct {
	mu    sync.RWMutex
	table map[string]models.SavedCalculation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{table: make(map[string]models.SavedCalculation)}
}

func (s *MemoryStore) Save(_ context.Context, calc models.SavedCalculation) (models.SavedCalculation, error) {
	calc = stamp(calc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[calc.ID] = clone(calc)
	return calc, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.SavedCalculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if calc, ok := s.table[id]; ok {
		return clone(calc), nil
	}
	return models.SavedCalculation{}, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, kind models.CalculationKind) ([]models.SavedCalculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calcs := make([]models.SavedCalculation, 0, len(s.table))
	for _, calc := range s.table {
		if kind == "" || calc.Kind == kind {
			calcs = append(calcs, clone(calc))
		}
	}
	sort.Slice(calcs, func(i, j int) bool {
		if calcs[i].CreatedAt.Equal(calcs[j].CreatedAt) {
			return calcs[i].ID < calcs[j].ID
		}
		return calcs[i].CreatedAt.After(calcs[j].CreatedAt)
	})
	return calcs, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.table[id]; !ok {
		return ErrNotFound
	}
	delete(s.table, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Close() error { return nil }

func clone(calc models.SavedCalculation) models.SavedCalculation {
	calc.Input = append([]byte(nil), calc.Input...)
	calc.Result = append([]byte(nil), calc.Result...)
	return calc
}
