package ingestion

import (
	"context"
	"errors"
	"log"
	"sort"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/frame"
	"power-vol-lab/internal/storage"
)

// Manager orchestrates ingestion from sources to storage.
// It enforces deterministic ordering and uses the storage layer for
// duplicate rejection.
type Manager struct {
	obsSource    ObservationSource
	targetSource TargetSource

	obsStore    storage.ObservationStore
	targetStore storage.TargetStore
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	ObservationSource ObservationSource
	TargetSource      TargetSource

	ObservationStore storage.ObservationStore
	TargetStore      storage.TargetStore
}

// NewManager creates a new ingestion manager with the provided sources and stores.
func NewManager(opts ManagerOptions) *Manager {
	return &Manager{
		obsSource:    opts.ObservationSource,
		targetSource: opts.TargetSource,
		obsStore:     opts.ObservationStore,
		targetStore:  opts.TargetStore,
	}
}

// IngestObservations fetches the observation table from the source and stores
// it. Rows are ordered by ID before insert. Returns count of ingested rows.
// Duplicates are rejected by the storage layer (ErrDuplicateKey).
func (m *Manager) IngestObservations(ctx context.Context) (int, error) {
	if m.obsSource == nil || m.obsStore == nil {
		return 0, nil
	}

	df, err := m.obsSource.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	if df.Len() == 0 {
		return 0, nil
	}

	df.SortByID()
	obs := observationsFromFrame(df)

	if err := m.obsStore.InsertBulk(ctx, obs); err != nil {
		return 0, err
	}

	return len(obs), nil
}

// IngestTargets fetches targets from the source and stores them.
// Rows are ordered by ID before insert. Returns count of ingested rows.
func (m *Manager) IngestTargets(ctx context.Context) (int, error) {
	if m.targetSource == nil || m.targetStore == nil {
		return 0, nil
	}

	targets, err := m.targetSource.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	if len(targets) == 0 {
		return 0, nil
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].ID < targets[j].ID })

	if err := m.targetStore.InsertBulk(ctx, targets); err != nil {
		return 0, err
	}

	return len(targets), nil
}

// IngestStream consumes observations from a live feed channel and stores them
// one at a time. Duplicates are skipped, other storage errors abort the
// stream. Returns the count of stored observations when the channel closes or
// the context is cancelled.
func (m *Manager) IngestStream(ctx context.Context, obsCh <-chan *domain.Observation) (int, error) {
	if m.obsStore == nil {
		return 0, nil
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		case o, ok := <-obsCh:
			if !ok {
				return count, nil
			}
			if err := m.obsStore.Insert(ctx, o); err != nil {
				if errors.Is(err, storage.ErrDuplicateKey) {
					log.Printf("[ingest] SKIP duplicate observation id=%d", o.ID)
					continue
				}
				return count, err
			}
			count++
		}
	}
}

// observationsFromFrame converts frame rows back to wide observations. Cells
// are copied so the stored rows do not alias frame storage.
func observationsFromFrame(df *frame.Frame) []*domain.Observation {
	cols := df.Columns()
	obs := make([]*domain.Observation, 0, df.Len())

	for i := 0; i < df.Len(); i++ {
		o := &domain.Observation{
			ID:      df.ID(i),
			DayID:   df.Day(i),
			Country: df.Country(i),
		}
		for _, col := range cols {
			if v := df.Value(col, i); v != nil {
				cell := *v
				o.SetRawValue(col, &cell)
			}
		}
		obs = append(obs, o)
	}

	return obs
}
