package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[string]*domain.FeatureCell // keyed by (id, feature)
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{
		data: make(map[string]*domain.FeatureCell),
	}
}

// featureKey generates a unique key for a feature cell.
func featureKey(id int64, feature string) string {
	return fmt.Sprintf("%d|%s", id, feature)
}

// InsertBulk adds multiple cells. Fails entire batch on duplicate (id, feature).
func (s *FeatureStore) InsertBulk(_ context.Context, cells []*domain.FeatureCell) error {
	if len(cells) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(cells))
	for _, c := range cells {
		if c == nil || c.Feature == "" {
			return storage.ErrInvalidInput
		}
		key := featureKey(c.ID, c.Feature)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, c := range cells {
		cellCopy := *c
		if c.Value != nil {
			v := *c.Value
			cellCopy.Value = &v
		}
		s.data[featureKey(c.ID, c.Feature)] = &cellCopy
	}

	return nil
}

// GetByID retrieves all cells of one row, ordered by feature name ASC.
func (s *FeatureStore) GetByID(_ context.Context, id int64) ([]*domain.FeatureCell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureCell
	for _, c := range s.data {
		if c.ID == id {
			result = append(result, copyCell(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Feature < result[j].Feature
	})

	return result, nil
}

// GetByFeature retrieves one column across all rows, ordered by ID ASC.
func (s *FeatureStore) GetByFeature(_ context.Context, feature string) ([]*domain.FeatureCell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureCell
	for _, c := range s.data {
		if c.Feature == feature {
			result = append(result, copyCell(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func copyCell(c *domain.FeatureCell) *domain.FeatureCell {
	cellCopy := *c
	if c.Value != nil {
		v := *c.Value
		cellCopy.Value = &v
	}
	return &cellCopy
}

var _ storage.FeatureStore = (*FeatureStore)(nil)
