package storage

import (
	"context"

	"power-vol-lab/internal/domain"
)

// ObservationStore provides access to raw observation storage.
type ObservationStore interface {
	// Insert adds a new observation. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, o *domain.Observation) error

	// InsertBulk adds multiple observations atomically. Fails entire batch on
	// any duplicate.
	InsertBulk(ctx context.Context, obs []*domain.Observation) error

	// GetAll retrieves all observations, ordered by ID ASC.
	GetAll(ctx context.Context) ([]*domain.Observation, error)

	// GetByCountry retrieves all observations for a country, ordered by ID ASC.
	GetByCountry(ctx context.Context, country string) ([]*domain.Observation, error)
}

// TargetStore provides access to target (volatility) storage.
type TargetStore interface {
	// InsertBulk adds multiple targets atomically. Fails entire batch on any
	// duplicate ID.
	InsertBulk(ctx context.Context, targets []*domain.Target) error

	// GetAll retrieves all targets, ordered by ID ASC.
	GetAll(ctx context.Context) ([]*domain.Target, error)
}

// FeatureStore provides access to the built feature table, stored in long
// format as one cell per (id, feature).
type FeatureStore interface {
	// InsertBulk adds multiple cells. Fails entire batch on duplicate
	// (id, feature).
	InsertBulk(ctx context.Context, cells []*domain.FeatureCell) error

	// GetByID retrieves all cells of one row, ordered by feature name ASC.
	GetByID(ctx context.Context, id int64) ([]*domain.FeatureCell, error)

	// GetByFeature retrieves one column across all rows, ordered by ID ASC.
	GetByFeature(ctx context.Context, feature string) ([]*domain.FeatureCell, error)
}
