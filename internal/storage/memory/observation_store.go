package memory

import (
	"context"
	"sort"
	"sync"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/storage"
)

// ObservationStore is an in-memory implementation of storage.ObservationStore.
type ObservationStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.Observation // keyed by ID
}

// NewObservationStore creates a new in-memory observation store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{
		data: make(map[int64]*domain.Observation),
	}
}

// Insert adds a new observation. Returns ErrDuplicateKey if the ID exists.
func (s *ObservationStore) Insert(_ context.Context, o *domain.Observation) error {
	if o == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[o.ID]; exists {
		return storage.ErrDuplicateKey
	}
	obsCopy := *o
	s.data[o.ID] = &obsCopy
	return nil
}

// InsertBulk adds multiple observations atomically. Fails entire batch on any
// duplicate.
func (s *ObservationStore) InsertBulk(_ context.Context, obs []*domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track IDs in this batch to detect intra-batch duplicates
	batchIDs := make(map[int64]struct{}, len(obs))

	// First pass: check for duplicates (existing + intra-batch)
	for _, o := range obs {
		if o == nil {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[o.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchIDs[o.ID]; exists {
			return storage.ErrDuplicateKey
		}
		batchIDs[o.ID] = struct{}{}
	}

	// Second pass: insert all
	for _, o := range obs {
		obsCopy := *o
		s.data[o.ID] = &obsCopy
	}

	return nil
}

// GetAll retrieves all observations, ordered by ID ASC.
func (s *ObservationStore) GetAll(_ context.Context) ([]*domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Observation
	for _, o := range s.data {
		obsCopy := *o
		result = append(result, &obsCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// GetByCountry retrieves all observations for a country, ordered by ID ASC.
func (s *ObservationStore) GetByCountry(_ context.Context, country string) ([]*domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Observation
	for _, o := range s.data {
		if o.Country == country {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

var _ storage.ObservationStore = (*ObservationStore)(nil)
