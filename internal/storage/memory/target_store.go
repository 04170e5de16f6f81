package memory

import (
	"context"
	"sort"
	"sync"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/storage"
)

// TargetStore is an in-memory implementation of storage.TargetStore.
type TargetStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.Target // keyed by ID
}

// NewTargetStore creates a new in-memory target store.
func NewTargetStore() *TargetStore {
	return &TargetStore{
		data: make(map[int64]*domain.Target),
	}
}

// InsertBulk adds multiple targets atomically. Fails entire batch on any
// duplicate ID.
func (s *TargetStore) InsertBulk(_ context.Context, targets []*domain.Target) error {
	if len(targets) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchIDs := make(map[int64]struct{}, len(targets))
	for _, t := range targets {
		if t == nil {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[t.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchIDs[t.ID]; exists {
			return storage.ErrDuplicateKey
		}
		batchIDs[t.ID] = struct{}{}
	}

	for _, t := range targets {
		targetCopy := *t
		s.data[t.ID] = &targetCopy
	}

	return nil
}

// GetAll retrieves all targets, ordered by ID ASC.
func (s *TargetStore) GetAll(_ context.Context) ([]*domain.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Target
	for _, t := range s.data {
		targetCopy := *t
		result = append(result, &targetCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

var _ storage.TargetStore = (*TargetStore)(nil)
